package ast

// combine folds a child hash into an accumulator using the node's own
// (seed, multiplier) pair. Order matters: callers combine rhs before lhs
// per the table in the hashing design, so that swapping operands changes
// the hash.
func combine(seed, mul uint64, parts ...uint64) uint64 {
	h := seed
	for _, p := range parts {
		h = h*mul + p
	}
	return h
}

func fnv64(s string) uint64 {
	const offset64 = 14695981039346656037
	const prime64 = 1099511628211
	h := uint64(offset64)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime64
	}
	return h
}

// Per-node-kind seed/multiplier table.
const (
	seedPriceBarOpen  = 17
	mulPriceBarOpen   = 53
	seedPriceBarHigh  = 19
	mulPriceBarHigh   = 59
	seedPriceBarLow   = 23
	mulPriceBarLow    = 61
	seedPriceBarClose = 29
	mulPriceBarClose  = 67
	seedVolume        = 37
	mulVolume         = 73
	seedRoc1          = 41
	mulRoc1           = 79
	seedMeander       = 43
	mulMeander        = 83
	seedVChartLow     = 47
	mulVChartLow      = 89
	seedVChartHigh    = 53
	mulVChartHigh     = 97

	seedCompareGT = 37
	mulCompareGT  = 71
	seedAnd       = 41
	mulAnd        = 79

	seedProfitTarget = 43
	mulProfitTarget  = 97
	seedStopLoss     = 47
	mulStopLoss      = 101

	hashLongEntry  = 53
	hashShortEntry = 59

	seedPattern = 181
	mulPattern  = 31
)

// IBS1/2/3 are not given dedicated rows in the design table; they hash
// like the other single-bar components, seeded off Roc1's family so that
// they remain distinguishable from every other component and from each
// other via the offset mixed in by barRefHash.
const (
	seedIBS1 = 61
	mulIBS1  = 103
	seedIBS2 = 67
	mulIBS2  = 107
	seedIBS3 = 71
	mulIBS3  = 109
)

func barRefHash(component PriceComponent, offset uint32) uint64 {
	var seed, mul uint64
	switch component {
	case ComponentOpen:
		seed, mul = seedPriceBarOpen, mulPriceBarOpen
	case ComponentHigh:
		seed, mul = seedPriceBarHigh, mulPriceBarHigh
	case ComponentLow:
		seed, mul = seedPriceBarLow, mulPriceBarLow
	case ComponentClose:
		seed, mul = seedPriceBarClose, mulPriceBarClose
	case ComponentVolume:
		seed, mul = seedVolume, mulVolume
	case ComponentRoc1:
		seed, mul = seedRoc1, mulRoc1
	case ComponentIBS1:
		seed, mul = seedIBS1, mulIBS1
	case ComponentIBS2:
		seed, mul = seedIBS2, mulIBS2
	case ComponentIBS3:
		seed, mul = seedIBS3, mulIBS3
	case ComponentMeander:
		seed, mul = seedMeander, mulMeander
	case ComponentVChartLow:
		seed, mul = seedVChartLow, mulVChartLow
	case ComponentVChartHigh:
		seed, mul = seedVChartHigh, mulVChartHigh
	default:
		panic("ast: unknown price component")
	}
	return combine(seed, mul, uint64(offset))
}
