package pmm

import sigar "github.com/cloudfoundry/gosigar"

// SuggestedRegionSize returns a region size in bytes sized as fraction of
// the host's free RAM, for callers who don't already have a
// region-shaped buffer sitting around. It never returns less than
// layout.MinRegionSize. Grounded on the teacher's own getsysmem/
// llrb.Defaultsettings pattern of sizing arenas off gosigar.Mem.
func SuggestedRegionSize(fraction float64) uint64 {
	if fraction <= 0 {
		fraction = 0.1
	} else if fraction > 1 {
		fraction = 1
	}

	mem := sigar.Mem{}
	size := minRegionSize()
	if err := mem.Get(); err == nil {
		if suggested := uint64(float64(mem.Free) * fraction); suggested > size {
			size = suggested
		}
	}
	return size
}
