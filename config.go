package pmm

import (
	s "github.com/prataprc/gosettings"

	"github.com/konard/netkeep80-PersistMemoryManager/layout"
)

// Settings configures a Manager, the same shape as the teacher's
// malloc.Defaultsettings(minblock, maxblock): a small set of typed
// fields plus the raw gosettings.Settings they were read from, so
// callers can still inspect/override the underlying map.
//
// "checksum.enabled" (bool, default: true)
//		Verify (on Load) and maintain (on every mutation) the region
//		header's xxhash64 checksum.
//
// "log.level" (string, default: "info")
//		Level passed to NewLogger, which DefaultSettings and Mixin use to
//		build Logger. A Settings built directly with a nil Logger logs
//		nothing.
type Settings struct {
	ChecksumEnabled bool
	Logger          Logger

	raw s.Settings
}

// DefaultSettings returns the settings a Manager uses when the caller
// doesn't need anything unusual, mirroring malloc.Defaultsettings's role
// in the teacher package.
func DefaultSettings() Settings {
	raw := s.Settings{
		"checksum.enabled": true,
		"log.level":        "info",
	}
	return settingsFromRaw(raw)
}

// Mixin overrides fields of a Settings from a raw gosettings.Settings,
// the same pattern llrb.Defaultsettings uses to layer
// malloc.Defaultsettings for its node/value arenas:
// "setts = setts.Mixin(nodesetts, valsetts)".
func (c Settings) Mixin(overrides s.Settings) Settings {
	return settingsFromRaw(c.raw.Mixin(overrides))
}

func settingsFromRaw(raw s.Settings) Settings {
	c := Settings{
		ChecksumEnabled: raw.Bool("checksum.enabled"),
		raw:             raw,
	}
	c.Logger = NewLogger(raw.String("log.level"))
	return c
}

// normalize fills in a Logger when the caller built Settings directly
// (Settings{ChecksumEnabled: true}) instead of through DefaultSettings,
// so Create/Load never have to nil-check c.Logger themselves.
func (c *Settings) normalize() {
	if c.Logger == nil {
		c.Logger = noopLogger{}
	}
}

// minRegionSize is layout.MinRegionSize, the floor Create/Load enforce;
// SuggestedRegionSize never returns less.
func minRegionSize() uint64 {
	return layout.MinRegionSize
}
