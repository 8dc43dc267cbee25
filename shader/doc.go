// Package shader embeds the WGSL compute kernels used by the cloud and blur
// passes and compiles them to SPIR-V with naga.
//
// Compiled words are cached per kernel name. The CPU device executes Go
// versions of the same kernels, so a kernel that fails to compile is
// reported and rendering continues.
package shader
