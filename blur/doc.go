// Package blur implements a separable blur post-process that can be
// restricted to the objects of selected layers.
//
// Unmasked, the pass blurs the whole color buffer. Masked, it renders a
// layer mask every frame and blends a graded blur over the untouched
// source through it. Inverting the mask swaps the two regions exactly.
package blur
