package segmentation

import (
	"context"
	"encoding/binary"
	"math"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-imagekit/images"
)

// DNNSegmenter runs the model through the OpenCV DNN module. It needs no
// onnxruntime library, at the cost of narrower operator support.
type DNNSegmenter struct {
	mu   sync.Mutex
	net  gocv.Net
	size int
	open  bool
	stats Stats
	log   logrus.FieldLogger
}

// NewDNNSegmenter loads cfg.ModelPath with gocv.ReadNetFromONNX. Only
// ModelPath and InputSize are used.
func NewDNNSegmenter(cfg Config, log logrus.FieldLogger) (*DNNSegmenter, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, images.WrapOp("segment", "model_path", cfg.ModelPath, images.ErrSegmentationFailure, err)
	}

	net := gocv.ReadNetFromONNX(cfg.ModelPath)
	if net.Empty() {
		return nil, images.WrapOp("segment", "model_path", cfg.ModelPath, images.ErrSegmentationFailure,
			errors.New("opencv could not load the model"))
	}
	net.SetPreferableBackend(gocv.NetBackendOpenCV)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	log.WithFields(logrus.Fields{"model": cfg.ModelPath, "size": cfg.inputSize()}).Debug("opencv dnn segmenter ready")
	return &DNNSegmenter{net: net, size: cfg.inputSize(), open: true, log: log}, nil
}

// blob packs a CHW tensor into a 1x3xSxS float32 Mat.
func blob(tensor []float32, size int) (gocv.Mat, error) {
	buf := make([]byte, len(tensor)*4)
	for i, v := range tensor {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return gocv.NewMatWithSizesFromBytes([]int{1, 3, size, size}, gocv.MatTypeCV32F, buf)
}

// Segment implements Segmenter.
func (s *DNNSegmenter) Segment(ctx context.Context, img *images.RasterImage) (*Mask, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	in, err := blob(Preprocess(img, s.size), s.size)
	if err != nil {
		return nil, images.WrapOp("segment", "input", nil, images.ErrSegmentationFailure, err)
	}
	defer in.Close()

	s.mu.Lock()
	if !s.open {
		s.mu.Unlock()
		return nil, images.NewOpError("segment", "net", nil, images.ErrSegmentationFailure)
	}
	start := time.Now()
	s.net.SetInput(in, "")
	out := s.net.Forward("")
	elapsed := time.Since(start)
	s.stats.Runs++
	s.stats.TotalTime += elapsed
	s.mu.Unlock()
	defer out.Close()

	data, err := out.DataPtrFloat32()
	if err != nil {
		return nil, images.WrapOp("segment", "output", nil, images.ErrSegmentationFailure, err)
	}
	if len(data) < s.size*s.size {
		return nil, images.NewOpError("segment", "output", len(data), images.ErrSegmentationFailure)
	}

	s.log.WithFields(logrus.Fields{
		"op":       "segment",
		"width":    img.Width,
		"height":   img.Height,
		"duration": elapsed,
	}).Debug("opencv dnn inference")

	return postprocess(data, s.size, img.Width, img.Height), nil
}

// Stats returns the cumulative inference counters.
func (s *DNNSegmenter) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Close releases the network. It is safe to call more than once.
func (s *DNNSegmenter) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return nil
	}
	s.open = false
	return s.net.Close()
}
