package filter

import (
	"math"

	"github.com/gogpu/cloudfx/internal/cache"
)

// GaussianKernel returns a normalized 1D Gaussian kernel with sigma equal
// to radius and 2*ceil(3*radius)+1 taps. A radius <= 0 yields the identity
// kernel [1].
func GaussianKernel(radius float64) []float32 {
	if radius <= 0 {
		return []float32{1}
	}
	half := int(math.Ceil(radius * 3))
	kernel := make([]float32, half*2+1)

	twoSigmaSq := 2 * radius * radius
	var sum float64
	for i := range kernel {
		x := float64(i - half)
		v := math.Exp(-(x * x) / twoSigmaSq)
		kernel[i] = float32(v)
		sum += v
	}
	inv := float32(1 / sum)
	for i := range kernel {
		kernel[i] *= inv
	}
	return kernel
}

// KernelSize returns the tap count GaussianKernel uses for radius.
func KernelSize(radius float64) int {
	if radius <= 0 {
		return 1
	}
	return int(math.Ceil(radius*3))*2 + 1
}

// Radii are quantized to 1/100 pixel for caching.
var kernels = cache.New[int, []float32](64)

// CachedGaussianKernel returns a shared kernel for radius. Callers must not
// modify it.
func CachedGaussianKernel(radius float64) []float32 {
	key := int(math.Round(radius * 100))
	k, _ := kernels.GetOrCreate(key, func() ([]float32, error) {
		return GaussianKernel(float64(key) / 100), nil
	})
	return k
}
