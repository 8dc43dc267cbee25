package noise

// splitmix64 is the finalizer of the SplitMix64 generator. It is a
// bijection on uint64 with good avalanche, so chaining it over the cell
// coordinates gives independent-looking values per cell.
func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// cellHash hashes a lattice cell of one layer under a seed.
func cellHash(seed int64, layer, cx, cy, cz int) uint64 {
	h := splitmix64(uint64(seed))
	h = splitmix64(h ^ uint64(layer))
	h = splitmix64(h ^ uint64(cx))
	h = splitmix64(h ^ uint64(cy))
	return splitmix64(h ^ uint64(cz))
}

// unitFloat maps the top 24 bits of h to [0, 1).
func unitFloat(h uint64) float32 {
	return float32(h>>40) / (1 << 24)
}
