package segmentation

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Segmentation backends.
const (
	BackendORT = "ort"
	BackendDNN = "dnn"
)

// Model is a Segmenter that owns native resources and counts its runs.
type Model interface {
	Segmenter
	Stats() Stats
	Close() error
}

// Open loads cfg with the named backend; the empty name selects onnxruntime.
func Open(backend string, cfg Config, log logrus.FieldLogger) (Model, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendORT:
		return NewORTSegmenter(cfg, log)
	case BackendDNN:
		return NewDNNSegmenter(cfg, log)
	default:
		return nil, errors.Errorf("unknown segmentation backend %q", backend)
	}
}
