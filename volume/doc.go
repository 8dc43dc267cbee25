// Package volume generates and persists the cellular noise volume that
// shapes the clouds.
//
// A [Generator] owns at most one live [Field]. Fields are immutable: a
// regeneration builds a complete new field on the device and then swaps
// it in, so passes still reading the previous field keep a consistent
// view until their frame ends.
//
//	gen := volume.NewGenerator(dev, volume.DefaultConfig())
//	field, err := gen.Ensure(ctx) // generates on first use
//
// Fields can be saved as OpenEXR (".exr", lossless float32 z-slice atlas),
// as the native zstd container (".vol") or as an 8-bit PNG atlas (".png",
// for inspection only). EXR and ".vol" load back bit-identical.
package volume
