package ast

// PriceComponent identifies which value a PriceBarRef reads off a bar.
type PriceComponent int

const (
	ComponentOpen PriceComponent = iota
	ComponentHigh
	ComponentLow
	ComponentClose
	ComponentVolume
	ComponentRoc1
	ComponentIBS1
	ComponentIBS2
	ComponentIBS3
	ComponentMeander
	ComponentVChartLow
	ComponentVChartHigh
)

func (c PriceComponent) String() string {
	switch c {
	case ComponentOpen:
		return "O"
	case ComponentHigh:
		return "H"
	case ComponentLow:
		return "L"
	case ComponentClose:
		return "C"
	case ComponentVolume:
		return "Volume"
	case ComponentRoc1:
		return "Roc1"
	case ComponentIBS1:
		return "IBS1"
	case ComponentIBS2:
		return "IBS2"
	case ComponentIBS3:
		return "IBS3"
	case ComponentMeander:
		return "Meander"
	case ComponentVChartLow:
		return "VChartLow"
	case ComponentVChartHigh:
		return "VChartHigh"
	default:
		return "Unknown"
	}
}

// componentOrder gives the tiebreak ordering O<H<L<C used by the
// enumeration generator when two triples share a value; components
// outside O/H/L/C sort after them in declaration order.
func (c PriceComponent) componentOrder() int {
	switch c {
	case ComponentOpen:
		return 0
	case ComponentHigh:
		return 1
	case ComponentLow:
		return 2
	case ComponentClose:
		return 3
	default:
		return 4 + int(c)
	}
}

// ExtraBarsNeeded is the non-negative count of additional historical bars
// a component requires beyond its own offset to be computable.
func (c PriceComponent) ExtraBarsNeeded() int {
	switch c {
	case ComponentRoc1:
		return 1
	case ComponentMeander:
		return 5
	case ComponentVChartLow, ComponentVChartHigh:
		return 6
	default:
		return 0
	}
}

// PriceBarRef refers to one component of one bar, offset from an anchor.
// Interned by (Component, Offset); instances are only ever constructed by
// a Manager.
type PriceBarRef struct {
	Component PriceComponent
	Offset    uint32
	hash      uint64
}

// Hash returns the interned structural hash of this reference.
func (r *PriceBarRef) Hash() uint64 { return r.hash }

// MaxBarsBack returns the bar offset this reference touches.
func (r *PriceBarRef) MaxBarsBack() uint32 { return r.Offset }

// Predicate is the tagged sum of GreaterThanExpr and AndExpr. It is
// implemented as an interface rather than a class hierarchy: generators
// type-switch on the concrete variant instead of dispatching virtually.
type Predicate interface {
	Hash() uint64
	MaxBarsBack() uint32
	isPredicate()
}

// GreaterThanExpr is a strict inequality between two bar references.
type GreaterThanExpr struct {
	Lhs, Rhs *PriceBarRef
	hash     uint64
}

func (g *GreaterThanExpr) Hash() uint64 { return g.hash }
func (g *GreaterThanExpr) MaxBarsBack() uint32 {
	if g.Lhs.Offset > g.Rhs.Offset {
		return g.Lhs.Offset
	}
	return g.Rhs.Offset
}
func (*GreaterThanExpr) isPredicate() {}

// AndExpr is a conjunction of two predicates.
type AndExpr struct {
	Lhs, Rhs Predicate
	hash     uint64
}

func (a *AndExpr) Hash() uint64 { return a.hash }
func (a *AndExpr) MaxBarsBack() uint32 {
	l, r := a.Lhs.MaxBarsBack(), a.Rhs.MaxBarsBack()
	if l > r {
		return l
	}
	return r
}
func (*AndExpr) isPredicate() {}

// EntrySide distinguishes long and short entries.
type EntrySide int

const (
	EntryLong EntrySide = iota
	EntryShort
)

// Entry is one of the two process-wide market-on-open entry singletons.
type Entry struct {
	Side EntrySide
	hash uint64
}

func (e *Entry) Hash() uint64 { return e.hash }

// StopSide distinguishes stop-loss/profit-target direction.
type StopSide int

const (
	SideLong StopSide = iota
	SideShort
)

// StopLoss is a percent-of-entry stop, interned per (side, value).
type StopLoss struct {
	Side    StopSide
	Percent Decimal
	hash    uint64
}

func (s *StopLoss) Hash() uint64 { return s.hash }

// ProfitTarget mirrors StopLoss.
type ProfitTarget struct {
	Side    StopSide
	Percent Decimal
	hash    uint64
}

func (p *ProfitTarget) Hash() uint64 { return p.hash }

// VolatilityAttribute classifies a pattern's historical volatility bucket.
type VolatilityAttribute int

const (
	VolatilityNone VolatilityAttribute = iota
	VolatilityLow
	VolatilityNormal
	VolatilityHigh
	VolatilityVeryHigh
)

// PortfolioAttribute restricts which side of a portfolio a pattern may
// trade in.
type PortfolioAttribute int

const (
	PortfolioNone PortfolioAttribute = iota
	PortfolioFilterLong
	PortfolioFilterShort
)

// PatternDescription carries the bookkeeping metadata attached to a
// Pattern: its source filename, index position, and observed performance.
type PatternDescription struct {
	Filename          string
	Index             uint32
	IndexDate         string
	PercentLong       Decimal
	PercentShort      Decimal
	NumTrades         uint32
	ConsecutiveLosses uint32
}

func (d *PatternDescription) hash() uint64 {
	h := fnv64(d.Filename)
	h = h*31 + uint64(d.Index)
	h = h*31 + fnv64(d.IndexDate)
	h = h*31 + fnv64(d.PercentLong.CanonicalString())
	h = h*31 + fnv64(d.PercentShort.CanonicalString())
	h = h*31 + uint64(d.NumTrades)
	h = h*31 + uint64(d.ConsecutiveLosses)
	return h
}

// Pattern is a fully-built candidate: predicate, entry, exit rules,
// description, and derived attributes. Patterns are hashable and compared
// for equality via their hash.
type Pattern struct {
	Predicate    Predicate
	Entry        *Entry
	ProfitTarget *ProfitTarget
	StopLoss     *StopLoss
	Description  *PatternDescription
	Volatility   VolatilityAttribute
	Portfolio    PortfolioAttribute
	MaxBarsBack  uint32
	PayoffRatio  Decimal
	hash         uint64
}

func (p *Pattern) Hash() uint64 { return p.hash }

// IsLong reports whether the pattern enters on the long side.
func (p *Pattern) IsLong() bool { return p.Entry.Side == EntryLong }

// IsShort reports whether the pattern enters on the short side.
func (p *Pattern) IsShort() bool { return p.Entry.Side == EntryShort }

// Strategy binds a Pattern to a name and owns a stable per-invocation
// identity distinct from the pattern's content hash.
type Strategy struct {
	Name         string
	Pattern      *Pattern
	Portfolio    PortfolioAttribute
	InstanceUUID string
	PatternHash  uint64
}
