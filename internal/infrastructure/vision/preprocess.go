package vision

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/ragul2105/plant-disease-api/internal/core/domain"
)

// Preprocessor converts raw upload bytes into the model's input tensor:
// decode, normalize to RGB, Lanczos resize to size x size, scale channels
// to [0,1] and shape as a single-example NHWC batch. Pure function of its
// inputs.
type Preprocessor struct{}

func NewPreprocessor() *Preprocessor {
	return &Preprocessor{}
}

func (p *Preprocessor) Preprocess(data []byte, size int) (domain.ImageTensor, error) {
	if size <= 0 {
		return domain.ImageTensor{}, fmt.Errorf("invalid target size %d", size)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return domain.ImageTensor{}, domain.WrapError(domain.ErrInvalidImage, "decode image", err)
	}

	// Lanczos3 keeps the resize deterministic and avoids aliasing that
	// would shift classification.
	resized := resize.Resize(uint(size), uint(size), img, resize.Lanczos3)

	buf := make([]float32, size*size*3)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			// RGBA flattens grayscale, palette and alpha modes to
			// 16-bit channels; dividing by the 16-bit max lands in [0,1].
			r, g, b, _ := resized.At(x, y).RGBA()
			idx := (y*size + x) * 3
			buf[idx] = float32(r) / 65535.0
			buf[idx+1] = float32(g) / 65535.0
			buf[idx+2] = float32(b) / 65535.0
		}
	}

	return domain.ImageTensor{Data: buf, Size: size}, nil
}
