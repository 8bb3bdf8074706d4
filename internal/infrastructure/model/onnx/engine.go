package onnx

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/ragul2105/plant-disease-api/internal/core/domain"
)

// Metadata is the JSON sidecar written by the training toolchain next to
// the model file. Shapes are NHWC / [1, N].
type Metadata struct {
	InputShape  []int64 `json:"input_shape"`
	OutputShape []int64 `json:"output_shape"`
	ImageSize   int     `json:"image_size"`
	InputName   string  `json:"input_name"`
	OutputName  string  `json:"output_name"`
}

// Validate checks the sidecar against the class taxonomy. A mismatch is a
// configuration error surfaced at load time, never swallowed.
func (m Metadata) Validate(classCount int) error {
	if len(m.InputShape) != 4 || m.InputShape[0] != 1 || m.InputShape[3] != 3 {
		return fmt.Errorf("input shape %v is not a (1,H,W,3) batch", m.InputShape)
	}
	if m.InputShape[1] != m.InputShape[2] {
		return fmt.Errorf("input shape %v is not square", m.InputShape)
	}
	if m.ImageSize <= 0 {
		m.ImageSize = int(m.InputShape[1])
	}
	if int64(m.ImageSize) != m.InputShape[1] {
		return fmt.Errorf("image_size %d contradicts input shape %v", m.ImageSize, m.InputShape)
	}
	if len(m.OutputShape) != 2 || m.OutputShape[0] != 1 {
		return fmt.Errorf("output shape %v is not a (1,N) vector", m.OutputShape)
	}
	if int(m.OutputShape[1]) != classCount {
		return fmt.Errorf("model outputs %d classes, taxonomy has %d", m.OutputShape[1], classCount)
	}
	return nil
}

func loadMetadata(path string, classCount int) (Metadata, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("read model metadata: %w", err)
	}
	var meta Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return Metadata{}, fmt.Errorf("parse model metadata: %w", err)
	}
	if meta.ImageSize == 0 && len(meta.InputShape) == 4 {
		meta.ImageSize = int(meta.InputShape[1])
	}
	if meta.InputName == "" {
		meta.InputName = "input"
	}
	if meta.OutputName == "" {
		meta.OutputName = "output"
	}
	if err := meta.Validate(classCount); err != nil {
		return Metadata{}, err
	}
	return meta, nil
}

// The ONNX runtime environment is process-wide.
var (
	ortInitOnce sync.Once
	ortInitErr  error
)

func initRuntime() error {
	ortInitOnce.Do(func() {
		ortInitErr = ort.InitializeEnvironment()
	})
	return ortInitErr
}

// Engine owns the loaded model handle. Loading is lazy and serialized, so
// when the model file shows up after startup the next call picks it up. A
// DynamicAdvancedSession with per-call tensors keeps concurrent Infer
// calls independent.
type Engine struct {
	modelPath    string
	metadataPath string
	classCount   int

	mu      sync.Mutex
	session *ort.DynamicAdvancedSession
	meta    Metadata
}

func NewEngine(modelPath, metadataPath string, classCount int) *Engine {
	return &Engine{
		modelPath:    modelPath,
		metadataPath: metadataPath,
		classCount:   classCount,
	}
}

// ensureLoaded serializes load attempts behind the mutex. Failed attempts
// are not cached: the model may simply not be on disk yet.
func (e *Engine) ensureLoaded() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session != nil {
		return nil
	}
	return e.loadLocked()
}

func (e *Engine) loadLocked() error {
	meta, err := loadMetadata(e.metadataPath, e.classCount)
	if err != nil {
		return err
	}
	if err := initRuntime(); err != nil {
		return fmt.Errorf("initialize onnx runtime: %w", err)
	}

	session, err := ort.NewDynamicAdvancedSession(
		e.modelPath,
		[]string{meta.InputName},
		[]string{meta.OutputName},
		nil,
	)
	if err != nil {
		return fmt.Errorf("create onnx session: %w", err)
	}

	e.session = session
	e.meta = meta
	return nil
}

func (e *Engine) Ready() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session != nil
}

// InputSize returns the spatial resolution the loaded model expects,
// attempting a lazy load first.
func (e *Engine) InputSize() (int, error) {
	if err := e.ensureLoaded(); err != nil {
		return 0, domain.WrapError(domain.ErrModelUnavailable, "model input size", err)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.meta.ImageSize, nil
}

// Infer runs one forward pass. Tensors are created per call so concurrent
// invocations never share buffers.
func (e *Engine) Infer(ctx context.Context, tensor domain.ImageTensor) ([]float32, error) {
	if err := e.ensureLoaded(); err != nil {
		return nil, domain.WrapError(domain.ErrModelUnavailable, "infer", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	session := e.session
	meta := e.meta
	e.mu.Unlock()

	if tensor.Size != meta.ImageSize {
		return nil, domain.WrapError(domain.ErrPredictionFailed, "infer",
			fmt.Errorf("tensor size %d does not match model input %d", tensor.Size, meta.ImageSize))
	}
	expected := meta.ImageSize * meta.ImageSize * 3
	if len(tensor.Data) != expected {
		return nil, domain.WrapError(domain.ErrPredictionFailed, "infer",
			fmt.Errorf("tensor has %d values, model expects %d", len(tensor.Data), expected))
	}

	input, err := ort.NewTensor(ort.NewShape(meta.InputShape...), tensor.Data)
	if err != nil {
		return nil, domain.WrapError(domain.ErrPredictionFailed, "create input tensor", err)
	}
	defer input.Destroy()

	outputs := []ort.Value{nil}
	if err := session.Run([]ort.Value{input}, outputs); err != nil {
		return nil, domain.WrapError(domain.ErrPredictionFailed, "run inference", err)
	}
	defer outputs[0].Destroy()

	output, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, domain.WrapError(domain.ErrPredictionFailed, "read output",
			fmt.Errorf("unexpected output tensor type %T", outputs[0]))
	}

	data := output.GetData()
	if len(data) != e.classCount {
		return nil, domain.WrapError(domain.ErrPredictionFailed, "read output",
			fmt.Errorf("model returned %d scores, taxonomy has %d", len(data), e.classCount))
	}

	vector := make([]float32, len(data))
	copy(vector, data)
	return vector, nil
}

// Reload drops the current handle and loads the model again from disk.
func (e *Engine) Reload(ctx context.Context) error {
	e.mu.Lock()
	if e.session != nil {
		e.session.Destroy()
		e.session = nil
	}
	e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := e.ensureLoaded(); err != nil {
		return domain.WrapError(domain.ErrModelUnavailable, "reload model", err)
	}
	return nil
}

// Close releases the session. Safe to call when the model never loaded.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session != nil {
		e.session.Destroy()
		e.session = nil
	}
}
