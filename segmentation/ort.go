package segmentation

import (
	"context"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/nvr-ai/go-imagekit/images"
)

// Execution providers understood by the ORT adapter.
const (
	ProviderCPU      = "cpu"
	ProviderCoreML   = "coreml"
	ProviderOpenVINO = "openvino"
)

// Config describes a segmentation model.
type Config struct {
	// ModelPath is the ONNX model file.
	ModelPath string `json:"model_path" yaml:"model_path" mapstructure:"model_path"`
	// LibraryPath is the onnxruntime shared library; empty picks a per-platform default.
	LibraryPath string `json:"library_path" yaml:"library_path" mapstructure:"library_path"`
	// InputSize is the square model input edge; 0 picks 320.
	InputSize int `json:"input_size" yaml:"input_size" mapstructure:"input_size"`
	// InputName and OutputName default to the model's first input and output.
	InputName  string `json:"input_name" yaml:"input_name" mapstructure:"input_name"`
	OutputName string `json:"output_name" yaml:"output_name" mapstructure:"output_name"`
	// Provider is one of cpu, coreml, openvino.
	Provider string `json:"provider" yaml:"provider" mapstructure:"provider"`
	// IntraOpThreads and InterOpThreads tune onnxruntime; 0 uses its defaults.
	IntraOpThreads int `json:"intra_op_threads" yaml:"intra_op_threads" mapstructure:"intra_op_threads"`
	InterOpThreads int `json:"inter_op_threads" yaml:"inter_op_threads" mapstructure:"inter_op_threads"`
}

func (c Config) inputSize() int {
	if c.InputSize <= 0 {
		return DefaultInputSize
	}
	return c.InputSize
}

// DefaultLibraryPath returns the conventional onnxruntime library location for
// the running platform.
func DefaultLibraryPath() string {
	switch runtime.GOOS {
	case "windows":
		return "./third_party/onnxruntime.dll"
	case "darwin":
		return "./third_party/libonnxruntime.dylib"
	default:
		if runtime.GOARCH == "arm64" {
			return "./third_party/onnxruntime_arm64.so"
		}
		return "./third_party/onnxruntime.so"
	}
}

// Stats are cumulative inference counters.
type Stats struct {
	Runs      int64
	TotalTime time.Duration
}

// Average returns the mean inference time.
func (s Stats) Average() time.Duration {
	if s.Runs == 0 {
		return 0
	}
	return s.TotalTime / time.Duration(s.Runs)
}

// ORTSegmenter runs a single-input, single-output ONNX model through
// onnxruntime. The session and its tensors are shared, so runs are serialized.
type ORTSegmenter struct {
	mu      sync.Mutex
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
	size    int
	stats   Stats
	log     logrus.FieldLogger
}

var ortInit sync.Mutex

// initEnvironment loads the shared library once per process.
func initEnvironment(libPath string) error {
	ortInit.Lock()
	defer ortInit.Unlock()
	if ort.IsInitialized() {
		return nil
	}
	if _, err := os.Stat(libPath); err != nil {
		return errors.Wrapf(err, "onnxruntime library not found at %s", libPath)
	}
	ort.SetSharedLibraryPath(libPath)
	return errors.Wrap(ort.InitializeEnvironment(), "initialize onnxruntime environment")
}

// NewORTSegmenter loads the model and allocates its tensors.
//
// Arguments:
//   - cfg: The model configuration.
//   - log: The logger; nil uses the standard logger.
//
// Returns:
//   - *ORTSegmenter: The segmenter; call Close when done.
//   - error: ErrSegmentationFailure if the runtime or model cannot be loaded.
func NewORTSegmenter(cfg Config, log logrus.FieldLogger) (*ORTSegmenter, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	fail := func(param string, value any, err error) error {
		return images.WrapOp("segment", param, value, images.ErrSegmentationFailure, err)
	}

	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fail("model_path", cfg.ModelPath, err)
	}
	libPath := cfg.LibraryPath
	if libPath == "" {
		libPath = DefaultLibraryPath()
	}
	if err := initEnvironment(libPath); err != nil {
		return nil, fail("library_path", libPath, err)
	}

	inName, outName := cfg.InputName, cfg.OutputName
	if inName == "" || outName == "" {
		inputs, outputs, err := ort.GetInputOutputInfo(cfg.ModelPath)
		if err != nil {
			return nil, fail("model_path", cfg.ModelPath, err)
		}
		if len(inputs) == 0 || len(outputs) == 0 {
			return nil, fail("model_path", cfg.ModelPath, errors.New("model has no inputs or outputs"))
		}
		if inName == "" {
			inName = inputs[0].Name
		}
		if outName == "" {
			outName = outputs[0].Name
		}
	}

	size := cfg.inputSize()
	input, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 3, int64(size), int64(size)))
	if err != nil {
		return nil, fail("input_size", size, err)
	}
	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 1, int64(size), int64(size)))
	if err != nil {
		input.Destroy()
		return nil, fail("input_size", size, err)
	}

	options, err := sessionOptions(cfg)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, fail("provider", cfg.Provider, err)
	}
	defer options.Destroy()

	session, err := ort.NewAdvancedSession(
		cfg.ModelPath,
		[]string{inName},
		[]string{outName},
		[]ort.ArbitraryTensor{input},
		[]ort.ArbitraryTensor{output},
		options,
	)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, fail("model_path", cfg.ModelPath, err)
	}

	log.WithFields(logrus.Fields{
		"model":    cfg.ModelPath,
		"input":    inName,
		"output":   outName,
		"size":     size,
		"provider": cfg.Provider,
	}).Debug("onnxruntime segmenter ready")

	return &ORTSegmenter{session: session, input: input, output: output, size: size, log: log}, nil
}

func sessionOptions(cfg Config) (*ort.SessionOptions, error) {
	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, errors.Wrap(err, "create session options")
	}
	if cfg.IntraOpThreads > 0 {
		if err := options.SetIntraOpNumThreads(cfg.IntraOpThreads); err != nil {
			options.Destroy()
			return nil, err
		}
	}
	if cfg.InterOpThreads > 0 {
		if err := options.SetInterOpNumThreads(cfg.InterOpThreads); err != nil {
			options.Destroy()
			return nil, err
		}
	}
	if err := options.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableExtended); err != nil {
		options.Destroy()
		return nil, err
	}

	switch cfg.Provider {
	case "", ProviderCPU:
	case ProviderCoreML:
		err = options.AppendExecutionProviderCoreML(0)
	case ProviderOpenVINO:
		err = options.AppendExecutionProviderOpenVINO(map[string]string{
			"device_type": "CPU",
			"precision":   "FP32",
		})
	default:
		err = errors.Errorf("unknown execution provider %q", cfg.Provider)
	}
	if err != nil {
		options.Destroy()
		return nil, err
	}
	return options, nil
}

// Segment implements Segmenter.
func (s *ORTSegmenter) Segment(ctx context.Context, img *images.RasterImage) (*Mask, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tensor := Preprocess(img, s.size)

	s.mu.Lock()
	if s.session == nil {
		s.mu.Unlock()
		return nil, images.NewOpError("segment", "session", nil, images.ErrSegmentationFailure)
	}
	copy(s.input.GetData(), tensor)
	start := time.Now()
	err := s.session.Run()
	elapsed := time.Since(start)
	raw := make([]float32, s.size*s.size)
	copy(raw, s.output.GetData())
	s.stats.Runs++
	s.stats.TotalTime += elapsed
	s.mu.Unlock()

	if err != nil {
		return nil, images.WrapOp("segment", "run", nil, images.ErrSegmentationFailure, err)
	}
	s.log.WithFields(logrus.Fields{
		"op":       "segment",
		"width":    img.Width,
		"height":   img.Height,
		"duration": elapsed,
	}).Debug("onnxruntime inference")

	return postprocess(raw, s.size, img.Width, img.Height), nil
}

// Stats returns the cumulative inference counters.
func (s *ORTSegmenter) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Close releases the session and tensors. It is safe to call more than once.
func (s *ORTSegmenter) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.input != nil {
		s.input.Destroy()
		s.input = nil
	}
	if s.output != nil {
		s.output.Destroy()
		s.output = nil
	}
	if s.session != nil {
		err := s.session.Destroy()
		s.session = nil
		return err
	}
	return nil
}
