// Package config - Loads imagekit settings from an optional YAML file,
// IMAGEKIT_* environment variables and defaults.
package config

import (
	"image/color"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/nvr-ai/go-imagekit/codec"
	"github.com/nvr-ai/go-imagekit/images"
	"github.com/nvr-ai/go-imagekit/overlay"
	"github.com/nvr-ai/go-imagekit/segmentation"
)

// EnvPrefix prefixes every environment override, e.g. IMAGEKIT_LOG_LEVEL.
const EnvPrefix = "IMAGEKIT"

// FileName is the config file searched for when no path is given.
const FileName = "imagekit"

// Config is the full application configuration.
type Config struct {
	Log          LogConfig          `mapstructure:"log"`
	Encode       EncodeConfig       `mapstructure:"encode"`
	Compression  CompressionConfig  `mapstructure:"compression"`
	Segmentation SegmentationConfig `mapstructure:"segmentation"`
	Fonts        FontsConfig        `mapstructure:"fonts"`
	// Workers is the row parallelism inside filter stages and the batch
	// concurrency.
	Workers int `mapstructure:"workers"`
}

// LogConfig controls the logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// EncodeConfig holds output defaults.
type EncodeConfig struct {
	// Format is the output format; empty keeps the source format.
	Format     string  `mapstructure:"format"`
	Quality    float64 `mapstructure:"quality"`
	Background string  `mapstructure:"background"`
}

// CompressionConfig holds the size-constrained loop defaults.
type CompressionConfig struct {
	MaxSizeMB        float64 `mapstructure:"max_size_mb"`
	MaxWidthOrHeight int     `mapstructure:"max_width_or_height"`
	Quality          float64 `mapstructure:"quality"`
}

// SegmentationConfig selects and tunes the background removal model.
type SegmentationConfig struct {
	Backend             string `mapstructure:"backend"`
	segmentation.Config `mapstructure:",squash"`
	SmoothRadius        int `mapstructure:"smooth_radius"`
}

// FontsConfig registers extra TrueType files by family name.
type FontsConfig struct {
	Files map[string]string `mapstructure:"files"`
}

// New returns a viper instance with defaults and environment binding set up.
// Callers may bind command-line flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("encode.format", "")
	v.SetDefault("encode.quality", codec.DefaultConvertQuality)
	v.SetDefault("encode.background", "#ffffff")
	v.SetDefault("compression.max_size_mb", 1.0)
	v.SetDefault("compression.max_width_or_height", 0)
	v.SetDefault("compression.quality", codec.DefaultStartQuality)
	v.SetDefault("segmentation.backend", segmentation.BackendORT)
	v.SetDefault("segmentation.model_path", "")
	v.SetDefault("segmentation.library_path", "")
	v.SetDefault("segmentation.input_size", segmentation.DefaultInputSize)
	v.SetDefault("segmentation.input_name", "")
	v.SetDefault("segmentation.output_name", "")
	v.SetDefault("segmentation.provider", segmentation.ProviderCPU)
	v.SetDefault("segmentation.intra_op_threads", 0)
	v.SetDefault("segmentation.inter_op_threads", 0)
	v.SetDefault("segmentation.smooth_radius", 2)
	v.SetDefault("fonts.files", map[string]string{})
	v.SetDefault("workers", 1)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file into v and decodes the result.
//
// Arguments:
//   - v: A viper instance from New, possibly with flags bound.
//   - path: An explicit config file; empty searches "." and "./config" for
//     imagekit.yaml and tolerates its absence.
//
// Returns:
//   - *Config: The decoded, validated configuration.
//   - error: An error if the file is unreadable or a value is invalid.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.Wrap(err, "read config")
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks values that cannot be clamped sensibly.
func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(err, "log.level")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.Errorf("log.format: want text or json, got %q", c.Log.Format)
	}
	if c.Encode.Format != "" {
		if _, err := images.ParseFormat(c.Encode.Format); err != nil {
			return errors.Wrap(err, "encode.format")
		}
	}
	if _, err := images.ParseColor(c.Encode.Background); err != nil {
		return errors.Wrap(err, "encode.background")
	}
	if c.Encode.Quality < 0 || c.Encode.Quality > 1 {
		return errors.Errorf("encode.quality: want [0, 1], got %v", c.Encode.Quality)
	}
	if c.Compression.Quality < 0 || c.Compression.Quality > 1 {
		return errors.Errorf("compression.quality: want [0, 1], got %v", c.Compression.Quality)
	}
	if c.Compression.MaxSizeMB < 0 {
		return errors.Errorf("compression.max_size_mb: must not be negative, got %v", c.Compression.MaxSizeMB)
	}
	if c.Workers < 1 {
		return errors.Errorf("workers: must be at least 1, got %d", c.Workers)
	}
	return nil
}

// Logger builds a logger with the configured level and formatter.
func (c *Config) Logger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if lvl, err := logrus.ParseLevel(c.Log.Level); err == nil {
		log.SetLevel(lvl)
	}
	if c.Log.Format == "json" {
		log.SetFormatter(new(logrus.JSONFormatter))
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}

// Background returns the configured flattening color.
func (c *Config) Background() color.NRGBA {
	bg, err := images.ParseColor(c.Encode.Background)
	if err != nil {
		return images.White
	}
	return bg
}

// EncodeRequest returns the default encode request. Its Format is zero when
// the source format should be kept.
func (c *Config) EncodeRequest() codec.EncodeRequest {
	var format images.ImageFormat
	if c.Encode.Format != "" {
		format, _ = images.ParseFormat(c.Encode.Format)
	}
	bg := c.Background()
	return codec.EncodeRequest{Format: format, Quality: c.Encode.Quality, Background: &bg}
}

// CompressionOptions returns the default compression options.
func (c *Config) CompressionOptions() codec.CompressionOptions {
	bg := c.Background()
	return codec.CompressionOptions{
		MaxSizeMB:        c.Compression.MaxSizeMB,
		MaxWidthOrHeight: c.Compression.MaxWidthOrHeight,
		Quality:          c.Compression.Quality,
		Background:       &bg,
	}
}

// RegisterFonts loads every configured font file into reg.
func (c *Config) RegisterFonts(reg *overlay.FontRegistry) error {
	for family, path := range c.Fonts.Files {
		if err := reg.RegisterFile(family, path); err != nil {
			return err
		}
	}
	return nil
}
