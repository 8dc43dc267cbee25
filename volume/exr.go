package volume

import (
	"fmt"
	"os"
	"strconv"

	"github.com/gogpu/gputypes"
	"github.com/mrjoshuak/go-openexr/exr"
)

// OpenEXR layout: the volume is stored as a 2D atlas n wide and n*n tall,
// slice z occupying rows [z*n, (z+1)*n). Values are 32-bit float so a
// round trip is bit-exact. Generation parameters travel as header
// attributes.
const (
	attrResolution = "cloudfx.resolution"
	attrDivisions  = "cloudfx.divisions"
	attrWeight     = "cloudfx.weight"
	attrCenters    = "cloudfx.centers"
	attrSeed       = "cloudfx.seed"
)

var exrChannels = [4]string{"R", "G", "B", "A"}

func writeEXR(path string, f *Field) error {
	n := f.size
	h := exr.NewScanlineHeader(n, n*n)
	h.SetCompression(exr.CompressionZIP)

	cl := exr.NewChannelList()
	for c := 0; c < f.channels; c++ {
		cl.Add(exr.NewChannel(exrChannels[c], exr.PixelTypeFloat))
	}
	h.SetChannels(cl)

	cfg := f.cfg
	h.Set(&exr.Attribute{Name: attrResolution, Type: exr.AttrTypeInt, Value: int32(cfg.Resolution)})
	for i := range cfg.Divisions {
		h.Set(&exr.Attribute{Name: attrDivisions + strconv.Itoa(i), Type: exr.AttrTypeInt, Value: int32(cfg.Divisions[i])})
		h.Set(&exr.Attribute{Name: attrWeight + strconv.Itoa(i), Type: exr.AttrTypeFloat, Value: cfg.Weights[i]})
	}
	centers := int32(0)
	if cfg.GenerateCenters {
		centers = 1
	}
	h.Set(&exr.Attribute{Name: attrCenters, Type: exr.AttrTypeInt, Value: centers})
	h.Set(&exr.Attribute{Name: attrSeed, Type: exr.AttrTypeString, Value: strconv.FormatInt(cfg.Seed, 10)})

	fb := exr.NewFrameBuffer()
	voxels := f.Voxels()
	for c := 0; c < f.channels; c++ {
		plane := make([]float32, voxels)
		for i := range plane {
			plane[i] = f.data[i*f.channels+c]
		}
		fb.Set(exrChannels[c], exr.NewSliceFromFloat32(plane, n, n*n))
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	sw, err := exr.NewScanlineWriter(out, h)
	if err != nil {
		out.Close()
		return err
	}
	sw.SetFrameBuffer(fb)
	dw := h.DataWindow()
	if err := sw.WritePixels(int(dw.Min.Y), int(dw.Max.Y)); err != nil {
		sw.Close()
		out.Close()
		return err
	}
	if err := sw.Close(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func readEXR(path string) (*Field, error) {
	file, err := exr.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	hdr := file.Header(0)
	cfg := DefaultConfig()
	cfg.FixedSeed = true

	res, err := exrInt(hdr, attrResolution)
	if err != nil {
		return nil, err
	}
	cfg.Resolution = int(res)
	for i := range cfg.Divisions {
		d, err := exrInt(hdr, attrDivisions+strconv.Itoa(i))
		if err != nil {
			return nil, err
		}
		cfg.Divisions[i] = int(d)
		a := hdr.Get(attrWeight + strconv.Itoa(i))
		w, ok := attrValue[float32](a)
		if !ok {
			return nil, fmt.Errorf("missing attribute %s%d", attrWeight, i)
		}
		cfg.Weights[i] = w
	}
	centers, err := exrInt(hdr, attrCenters)
	if err != nil {
		return nil, err
	}
	cfg.GenerateCenters = centers != 0
	seed, ok := attrValue[string](hdr.Get(attrSeed))
	if !ok {
		return nil, fmt.Errorf("missing attribute %s", attrSeed)
	}
	if cfg.Seed, err = strconv.ParseInt(seed, 10, 64); err != nil {
		return nil, fmt.Errorf("attribute %s: %w", attrSeed, err)
	}

	channels := hdr.Channels().Len()
	switch channels {
	case 1:
		cfg.Format = gputypes.TextureFormatR32Float
	case 4:
		cfg.Format = gputypes.TextureFormatRGBA32Float
	default:
		return nil, fmt.Errorf("unsupported channel count %d", channels)
	}

	n := cfg.Resolution
	if n <= 0 || n > 4096 {
		return nil, fmt.Errorf("resolution %d out of range", n)
	}
	voxels := n * n * n
	fb := exr.NewFrameBuffer()
	planes := make([]exr.Slice, channels)
	for c := 0; c < channels; c++ {
		s := exr.NewSliceFromFloat32(make([]float32, voxels), n, n*n)
		planes[c] = s
		fb.Set(exrChannels[c], s)
	}

	sr, err := exr.NewScanlineReader(file)
	if err != nil {
		return nil, err
	}
	sr.SetFrameBuffer(fb)
	dw := hdr.DataWindow()
	if err := sr.ReadPixels(int(dw.Min.Y), int(dw.Max.Y)); err != nil {
		return nil, err
	}

	data := make([]float32, voxels*channels)
	for row := 0; row < n*n; row++ {
		for x := 0; x < n; x++ {
			base := (row*n + x) * channels
			for c := range planes {
				data[base+c] = planes[c].GetFloat32(x, row)
			}
		}
	}
	return newField(cfg, data, nil), nil
}

func exrInt(hdr *exr.Header, name string) (int32, error) {
	v, ok := attrValue[int32](hdr.Get(name))
	if !ok {
		return 0, fmt.Errorf("missing attribute %s", name)
	}
	return v, nil
}

func attrValue[T any](a *exr.Attribute) (T, bool) {
	var zero T
	if a == nil {
		return zero, false
	}
	v, ok := a.Value.(T)
	return v, ok
}
