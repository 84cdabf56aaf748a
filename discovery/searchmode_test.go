package discovery

import (
	"testing"

	"github.com/chidi150c/palvalidator/series"
)

func TestSearchModeLengthRanges(t *testing.T) {
	cases := []struct {
		mode SearchMode
		want LengthRange
	}{
		{SearchUnknown, LengthRange{2, 9}},
		{SearchMixed, LengthRange{2, 9}},
		{SearchDeep, LengthRange{2, 9}},
		{SearchBasic, LengthRange{2, 4}},
		{SearchExtended, LengthRange{2, 6}},
		{SearchCloseOnly, LengthRange{3, 9}},
		{SearchHighLowOnly, LengthRange{3, 9}},
		{SearchOpenCloseOnly, LengthRange{3, 9}},
	}
	for _, c := range cases {
		if got := c.mode.LengthRange(); got != c.want {
			t.Fatalf("mode %v: LengthRange() = %+v, want %+v", c.mode, got, c.want)
		}
	}
}

func TestSearchModeComponents(t *testing.T) {
	if got := SearchCloseOnly.Components(); len(got) != 1 || got[0] != series.Close {
		t.Fatalf("SearchCloseOnly.Components() = %v, want [Close]", got)
	}
	if got := SearchHighLowOnly.Components(); len(got) != 2 || got[0] != series.High || got[1] != series.Low {
		t.Fatalf("SearchHighLowOnly.Components() = %v, want [High Low]", got)
	}
	if got := SearchOpenCloseOnly.Components(); len(got) != 2 || got[0] != series.Open || got[1] != series.Close {
		t.Fatalf("SearchOpenCloseOnly.Components() = %v, want [Open Close]", got)
	}
	if got := SearchBasic.Components(); len(got) != 4 {
		t.Fatalf("SearchBasic.Components() = %v, want 4 components", got)
	}
}

func TestSearchModeComponentsReturnsIndependentSlice(t *testing.T) {
	a := SearchBasic.Components()
	a[0] = series.Close
	b := SearchBasic.Components()
	if b[0] != series.Open {
		t.Fatalf("mutating one Components() result leaked into another call")
	}
}
