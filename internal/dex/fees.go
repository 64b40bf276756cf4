package dex

// Global tick bounds of the protocol's representable price range.
// Deployments share these values, but they stay configurable upstream.
const (
	DefaultMinTick int32 = -887272
	DefaultMaxTick int32 = 887272
)

// DefaultTickSpacings maps each legal fee tier (hundredths of a bip) to its
// tick spacing.
func DefaultTickSpacings() map[uint32]int32 {
	return map[uint32]int32{
		100:   1,
		500:   10,
		3000:  60,
		10000: 200,
	}
}

// FullRangeTicks floors the global tick bounds to multiples of the fee
// tier's tick spacing. The position manager rejects unaligned ticks, so a
// full-range position uses the widest aligned interval inside the bounds.
func FullRangeTicks(minTick, maxTick, spacing int32) (int32, int32) {
	if spacing <= 0 {
		return minTick, maxTick
	}
	return (minTick / spacing) * spacing, (maxTick / spacing) * spacing
}
