// Package cloud renders volumetric clouds inside a box over the camera
// color buffer.
//
// Each frame the pass records five stages: validate buffers, copy color,
// raymarch at the quality scale, blur (below full quality only) and
// composite. The raymarch writes premultiplied scattered light and
// transmittance, and the composite computes background*T + cloud.
//
//	gen := volume.NewGenerator(dev, volume.DefaultConfig())
//	pass := cloud.NewPass(config.DefaultCloud(), cloud.WithGenerator(gen))
//	drv := cloudfx.NewDriver("clouds", pass, dev)
package cloud
