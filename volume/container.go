package volume

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gogpu/gputypes"
	"github.com/klauspost/compress/zstd"
)

// The .vol container is a fixed little-endian header followed by a zstd
// stream of float32 voxels in Field order.
var volMagic = [8]byte{'C', 'F', 'X', 'V', 'O', 'L', '0', '1'}

type volHeader struct {
	Magic      [8]byte
	Resolution uint32
	Divisions  [3]uint32
	Weights    [3]float32
	Centers    uint8
	Channels   uint8
	_          [2]byte
	Seed       int64
}

var errBadContainer = errors.New("not a cloud volume container")

func writeContainer(path string, f *Field) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()

	hdr := volHeader{
		Magic:      volMagic,
		Resolution: uint32(f.size),
		Weights:    f.cfg.Weights,
		Channels:   uint8(f.channels),
		Seed:       f.cfg.Seed,
	}
	for i, d := range f.cfg.Divisions {
		hdr.Divisions[i] = uint32(d)
	}
	if f.cfg.GenerateCenters {
		hdr.Centers = 1
	}

	w := bufio.NewWriter(out)
	if err := binary.Write(w, binary.LittleEndian, &hdr); err != nil {
		return err
	}
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	if err := binary.Write(enc, binary.LittleEndian, f.data); err != nil {
		enc.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return w.Flush()
}

func readContainer(path string) (*Field, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	r := bufio.NewReader(in)
	var hdr volHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("%w: %v", errBadContainer, err)
	}
	if hdr.Magic != volMagic {
		return nil, errBadContainer
	}

	cfg := Config{
		Resolution:      int(hdr.Resolution),
		Weights:         hdr.Weights,
		GenerateCenters: hdr.Centers != 0,
		Seed:            hdr.Seed,
		FixedSeed:       true,
	}
	for i, d := range hdr.Divisions {
		cfg.Divisions[i] = int(d)
	}
	switch hdr.Channels {
	case 1:
		cfg.Format = gputypes.TextureFormatR32Float
	case 4:
		cfg.Format = gputypes.TextureFormatRGBA32Float
	default:
		return nil, fmt.Errorf("%w: %d channels", errBadContainer, hdr.Channels)
	}
	n := cfg.Resolution
	if n <= 0 || n > 4096 {
		return nil, fmt.Errorf("%w: resolution %d", errBadContainer, n)
	}

	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	data := make([]float32, n*n*n*int(hdr.Channels))
	if err := binary.Read(dec, binary.LittleEndian, data); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: truncated voxel data", errBadContainer)
		}
		return nil, err
	}
	return newField(cfg, data, nil), nil
}
