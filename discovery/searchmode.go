// Package discovery implements the exhaustive per-anchor-bar pattern
// enumeration engine: search modes, the enumeration algorithm, the
// performance filter, and the SearchConfiguration/PerformanceCriteria
// surface discovery consumes.
package discovery

import "github.com/chidi150c/palvalidator/series"

// SearchMode selects the window-length range and which bar components
// participate in enumeration.
type SearchMode int

const (
	SearchUnknown SearchMode = iota
	SearchMixed
	SearchDeep
	SearchBasic
	SearchExtended
	SearchCloseOnly
	SearchHighLowOnly
	SearchOpenCloseOnly
)

// LengthRange is the inclusive [Lmin, Lmax] window-length range for a mode.
type LengthRange struct {
	Min, Max int
}

// modeTable holds the exact (Lmin,Lmax) and enabled-components sets from
// the search-mode design table. Unknown/Mixed/Deep share a row.
var modeTable = map[SearchMode]struct {
	lengths    LengthRange
	components []series.Component
}{
	SearchUnknown:      {LengthRange{2, 9}, []series.Component{series.Open, series.High, series.Low, series.Close}},
	SearchMixed:        {LengthRange{2, 9}, []series.Component{series.Open, series.High, series.Low, series.Close}},
	SearchDeep:         {LengthRange{2, 9}, []series.Component{series.Open, series.High, series.Low, series.Close}},
	SearchBasic:        {LengthRange{2, 4}, []series.Component{series.Open, series.High, series.Low, series.Close}},
	SearchExtended:     {LengthRange{2, 6}, []series.Component{series.Open, series.High, series.Low, series.Close}},
	SearchCloseOnly:    {LengthRange{3, 9}, []series.Component{series.Close}},
	SearchHighLowOnly:  {LengthRange{3, 9}, []series.Component{series.High, series.Low}},
	SearchOpenCloseOnly: {LengthRange{3, 9}, []series.Component{series.Open, series.Close}},
}

// LengthRange returns the (Lmin,Lmax) range for a search mode.
func (m SearchMode) LengthRange() LengthRange { return modeTable[m].lengths }

// Components returns the bar components enabled by a search mode, in a
// stable declaration order.
func (m SearchMode) Components() []series.Component {
	c := modeTable[m].components
	out := make([]series.Component, len(c))
	copy(out, c)
	return out
}
