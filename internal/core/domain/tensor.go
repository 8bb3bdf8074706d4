package domain

// ImageTensor is a single-example NHWC batch of a preprocessed leaf image:
// shape (1, Size, Size, 3), float32 channel values in [0,1]. Data length is
// always 1*Size*Size*3.
type ImageTensor struct {
	Data []float32
	Size int
}
