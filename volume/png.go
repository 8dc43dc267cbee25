package volume

import (
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/imgio"
)

// Atlas returns the density channel as an 8-bit gray image n wide and n*n
// tall, slice z occupying rows [z*n, (z+1)*n).
func (f *Field) Atlas() *image.Gray {
	n := f.size
	img := image.NewGray(image.Rect(0, 0, n, n*n))
	for row := 0; row < n*n; row++ {
		for x := 0; x < n; x++ {
			v := f.data[(row*n+x)*f.channels]
			img.SetGray(x, row, color.Gray{Y: uint8(min(max(v, 0), 1)*255 + 0.5)})
		}
	}
	return img
}

// PNG atlases are lossy previews and cannot be loaded back.
func writePNGAtlas(path string, f *Field) error {
	return imgio.Save(path, f.Atlas(), imgio.PNGEncoder())
}
