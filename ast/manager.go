package ast

import (
	"fmt"
	"sync"
)

// PreallocationBound is the bar offset below which bar references are
// served from a fixed array rather than the general intern map.
const PreallocationBound = 15

// Manager interns every AST node so that structurally identical requests
// return identical handles. It is safe for concurrent read-only use by
// many discovery goroutines; the intern maps are guarded so that a cache
// miss on an offset beyond PreallocationBound is still race-free.
type Manager struct {
	mu sync.RWMutex

	// fast path: [component][offset] for offset < PreallocationBound
	fastBars [12][PreallocationBound]*PriceBarRef
	// overflow path for offset >= PreallocationBound
	barOverflow map[barKey]*PriceBarRef

	decimals map[string]Decimal

	longTargets  map[string]*ProfitTarget
	shortTargets map[string]*ProfitTarget
	longStops    map[string]*StopLoss
	shortStops   map[string]*StopLoss

	longEntry  *Entry
	shortEntry *Entry
}

type barKey struct {
	component PriceComponent
	offset    uint32
}

// NewManager builds an empty resource manager with the two entry
// singletons pre-interned.
func NewManager() *Manager {
	m := &Manager{
		barOverflow:  make(map[barKey]*PriceBarRef),
		decimals:     make(map[string]Decimal),
		longTargets:  make(map[string]*ProfitTarget),
		shortTargets: make(map[string]*ProfitTarget),
		longStops:    make(map[string]*StopLoss),
		shortStops:   make(map[string]*StopLoss),
	}
	m.longEntry = &Entry{Side: EntryLong, hash: hashLongEntry}
	m.shortEntry = &Entry{Side: EntryShort, hash: hashShortEntry}
	return m
}

// GetPriceBarRef returns the interned reference for (component, offset).
func (m *Manager) GetPriceBarRef(component PriceComponent, offset uint32) *PriceBarRef {
	if offset < PreallocationBound {
		m.mu.RLock()
		ref := m.fastBars[int(component)][offset]
		m.mu.RUnlock()
		if ref != nil {
			return ref
		}
		m.mu.Lock()
		defer m.mu.Unlock()
		if ref := m.fastBars[int(component)][offset]; ref != nil {
			return ref
		}
		ref = &PriceBarRef{Component: component, Offset: offset, hash: barRefHash(component, offset)}
		m.fastBars[int(component)][offset] = ref
		return ref
	}

	key := barKey{component, offset}
	m.mu.RLock()
	ref, ok := m.barOverflow[key]
	m.mu.RUnlock()
	if ok {
		return ref
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if ref, ok := m.barOverflow[key]; ok {
		return ref
	}
	ref = &PriceBarRef{Component: component, Offset: offset, hash: barRefHash(component, offset)}
	m.barOverflow[key] = ref
	return ref
}

func (m *Manager) GetPriceOpen(offset uint32) *PriceBarRef   { return m.GetPriceBarRef(ComponentOpen, offset) }
func (m *Manager) GetPriceHigh(offset uint32) *PriceBarRef   { return m.GetPriceBarRef(ComponentHigh, offset) }
func (m *Manager) GetPriceLow(offset uint32) *PriceBarRef    { return m.GetPriceBarRef(ComponentLow, offset) }
func (m *Manager) GetPriceClose(offset uint32) *PriceBarRef  { return m.GetPriceBarRef(ComponentClose, offset) }
func (m *Manager) GetVolume(offset uint32) *PriceBarRef      { return m.GetPriceBarRef(ComponentVolume, offset) }
func (m *Manager) GetRoc1(offset uint32) *PriceBarRef        { return m.GetPriceBarRef(ComponentRoc1, offset) }
func (m *Manager) GetIBS1(offset uint32) *PriceBarRef        { return m.GetPriceBarRef(ComponentIBS1, offset) }
func (m *Manager) GetIBS2(offset uint32) *PriceBarRef        { return m.GetPriceBarRef(ComponentIBS2, offset) }
func (m *Manager) GetIBS3(offset uint32) *PriceBarRef        { return m.GetPriceBarRef(ComponentIBS3, offset) }
func (m *Manager) GetMeander(offset uint32) *PriceBarRef     { return m.GetPriceBarRef(ComponentMeander, offset) }
func (m *Manager) GetVChartLow(offset uint32) *PriceBarRef   { return m.GetPriceBarRef(ComponentVChartLow, offset) }
func (m *Manager) GetVChartHigh(offset uint32) *PriceBarRef  { return m.GetPriceBarRef(ComponentVChartHigh, offset) }

// GetDecimal interns a decimal by its canonical string representation.
func (m *Manager) GetDecimal(s string) (Decimal, error) {
	d, err := NewDecimalFromString(s)
	if err != nil {
		return Decimal{}, err
	}
	return m.internDecimal(d), nil
}

// GetDecimalFromInt interns a decimal built from an integer.
func (m *Manager) GetDecimalFromInt(i int64) Decimal {
	return m.internDecimal(NewDecimalFromInt(i))
}

func (m *Manager) internDecimal(d Decimal) Decimal {
	key := d.CanonicalString()
	m.mu.RLock()
	if existing, ok := m.decimals[key]; ok {
		m.mu.RUnlock()
		return existing
	}
	m.mu.RUnlock()
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.decimals[key]; ok {
		return existing
	}
	m.decimals[key] = d
	return d
}

// GetLongProfitTarget interns a long-side profit target by decimal value.
func (m *Manager) GetLongProfitTarget(percent Decimal) *ProfitTarget {
	return m.internTarget(m.longTargets, SideLong, percent)
}

// GetShortProfitTarget interns a short-side profit target by decimal value.
func (m *Manager) GetShortProfitTarget(percent Decimal) *ProfitTarget {
	return m.internTarget(m.shortTargets, SideShort, percent)
}

func (m *Manager) internTarget(table map[string]*ProfitTarget, side StopSide, percent Decimal) *ProfitTarget {
	percent = m.internDecimal(percent)
	key := percent.CanonicalString()
	m.mu.RLock()
	if existing, ok := table[key]; ok {
		m.mu.RUnlock()
		return existing
	}
	m.mu.RUnlock()
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := table[key]; ok {
		return existing
	}
	t := &ProfitTarget{Side: side, Percent: percent, hash: combine(seedProfitTarget, mulProfitTarget, fnv64(key))}
	table[key] = t
	return t
}

// GetLongStopLoss interns a long-side stop loss by decimal value.
func (m *Manager) GetLongStopLoss(percent Decimal) *StopLoss {
	return m.internStop(m.longStops, SideLong, percent)
}

// GetShortStopLoss interns a short-side stop loss by decimal value.
func (m *Manager) GetShortStopLoss(percent Decimal) *StopLoss {
	return m.internStop(m.shortStops, SideShort, percent)
}

func (m *Manager) internStop(table map[string]*StopLoss, side StopSide, percent Decimal) *StopLoss {
	percent = m.internDecimal(percent)
	key := percent.CanonicalString()
	m.mu.RLock()
	if existing, ok := table[key]; ok {
		m.mu.RUnlock()
		return existing
	}
	m.mu.RUnlock()
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := table[key]; ok {
		return existing
	}
	s := &StopLoss{Side: side, Percent: percent, hash: combine(seedStopLoss, mulStopLoss, fnv64(key))}
	table[key] = s
	return s
}

// GetLongEntryOnOpen returns the process-wide long-entry singleton.
func (m *Manager) GetLongEntryOnOpen() *Entry { return m.longEntry }

// GetShortEntryOnOpen returns the process-wide short-entry singleton.
func (m *Manager) GetShortEntryOnOpen() *Entry { return m.shortEntry }

// CreateGreaterThan builds the strict-inequality predicate lhs > rhs. The
// hash combines rhs before lhs per the design table, so swapping operands
// yields a different hash. Predicates are not interned: every call returns
// a new node, so structurally equal predicates share a hash but not a
// pointer.
func (m *Manager) CreateGreaterThan(lhs, rhs *PriceBarRef) *GreaterThanExpr {
	h := combine(seedCompareGT, mulCompareGT, rhs.Hash(), lhs.Hash())
	return &GreaterThanExpr{Lhs: lhs, Rhs: rhs, hash: h}
}

// CreateAnd builds the conjunction lhs AND rhs; like CreateGreaterThan it
// returns a new, non-interned node on every call.
func (m *Manager) CreateAnd(lhs, rhs Predicate) *AndExpr {
	h := combine(seedAnd, mulAnd, rhs.Hash(), lhs.Hash())
	return &AndExpr{Lhs: lhs, Rhs: rhs, hash: h}
}

// CreatePattern constructs a Pattern value; it does not store it anywhere.
// max_bars_back and payoff_ratio are derived, not supplied.
func (m *Manager) CreatePattern(
	description *PatternDescription,
	predicate Predicate,
	entry *Entry,
	target *ProfitTarget,
	stop *StopLoss,
	volatility VolatilityAttribute,
	portfolio PortfolioAttribute,
) (*Pattern, error) {
	if predicate == nil || entry == nil || target == nil || stop == nil || description == nil {
		return nil, fmt.Errorf("ast: CreatePattern requires non-nil predicate, entry, target, stop, description")
	}
	if !target.Percent.IsPositive() || !stop.Percent.IsPositive() {
		return nil, fmt.Errorf("ast: CreatePattern requires strictly positive target and stop")
	}
	payoff := target.Percent.Div(stop.Percent)
	h := combine(seedPattern, mulPattern,
		fnv64(description.Filename),
		predicate.Hash(),
		description.hash(),
		entry.Hash(),
		target.Hash(),
		stop.Hash(),
	)
	return &Pattern{
		Predicate:    predicate,
		Entry:        entry,
		ProfitTarget: target,
		StopLoss:     stop,
		Description:  description,
		Volatility:   volatility,
		Portfolio:    portfolio,
		MaxBarsBack:  predicate.MaxBarsBack(),
		PayoffRatio:  payoff,
		hash:         h,
	}, nil
}
