// Package filter implements the image operations shared by the cloud and
// blur passes on float RGBA buffers:
//   - separable Gaussian blur, one axis per call, edges clamped
//   - bilinear resampling between buffer sizes
//   - affine color grading with a lightness floor and backing color
//
// Blur and resample run as device dispatches over 8×8 tiles.
package filter
