package vision

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/ragul2105/plant-disease-api/internal/core/domain"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func greenLeaf(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 30, G: 160, B: 60, A: 255})
		}
	}
	return img
}

func assertTensorShape(t *testing.T, tensor domain.ImageTensor, size int) {
	t.Helper()
	if tensor.Size != size {
		t.Fatalf("expected size %d, got %d", size, tensor.Size)
	}
	if len(tensor.Data) != size*size*3 {
		t.Fatalf("expected %d values, got %d", size*size*3, len(tensor.Data))
	}
	for i, v := range tensor.Data {
		if v < 0 || v > 1 {
			t.Fatalf("value %d out of [0,1]: %v", i, v)
		}
	}
}

func TestPreprocessRGBAShapeAndRange(t *testing.T) {
	p := NewPreprocessor()
	tensor, err := p.Preprocess(encodePNG(t, greenLeaf(50, 50)), 160)
	if err != nil {
		t.Fatalf("Preprocess() error = %v", err)
	}
	assertTensorShape(t, tensor, 160)
}

func TestPreprocessGrayscale(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			gray.SetGray(x, y, color.Gray{Y: uint8(x + y)})
		}
	}

	p := NewPreprocessor()
	tensor, err := p.Preprocess(encodePNG(t, gray), 224)
	if err != nil {
		t.Fatalf("Preprocess() error = %v", err)
	}
	assertTensorShape(t, tensor, 224)
}

func TestPreprocessJPEG(t *testing.T) {
	p := NewPreprocessor()
	tensor, err := p.Preprocess(encodeJPEG(t, greenLeaf(50, 50)), 160)
	if err != nil {
		t.Fatalf("Preprocess() error = %v", err)
	}
	assertTensorShape(t, tensor, 160)
}

func TestPreprocessIsDeterministic(t *testing.T) {
	data := encodeJPEG(t, greenLeaf(37, 91))
	p := NewPreprocessor()

	first, err := p.Preprocess(data, 160)
	if err != nil {
		t.Fatalf("Preprocess() error = %v", err)
	}
	second, err := p.Preprocess(data, 160)
	if err != nil {
		t.Fatalf("Preprocess() error = %v", err)
	}
	for i := range first.Data {
		if first.Data[i] != second.Data[i] {
			t.Fatalf("non-deterministic output at %d: %v != %v", i, first.Data[i], second.Data[i])
		}
	}
}

func TestPreprocessZeroBytes(t *testing.T) {
	p := NewPreprocessor()
	_, err := p.Preprocess(nil, 160)
	if !domain.IsKind(err, domain.ErrInvalidImage) {
		t.Fatalf("expected ErrInvalidImage, got %v", err)
	}
}

func TestPreprocessTruncatedImage(t *testing.T) {
	data := encodePNG(t, greenLeaf(50, 50))
	p := NewPreprocessor()
	_, err := p.Preprocess(data[:20], 160)
	if !domain.IsKind(err, domain.ErrInvalidImage) {
		t.Fatalf("expected ErrInvalidImage, got %v", err)
	}
}

func TestPreprocessGarbageBytes(t *testing.T) {
	p := NewPreprocessor()
	_, err := p.Preprocess([]byte("definitely not an image"), 160)
	if !domain.IsKind(err, domain.ErrInvalidImage) {
		t.Fatalf("expected ErrInvalidImage, got %v", err)
	}
}
