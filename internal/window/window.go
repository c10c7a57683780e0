// Package window computes the visible slice of a large ordered list from
// scroll position and viewport geometry. The math is pure; the browse
// surface recomputes it whenever scroll position or viewport size changes
// and renders only rows in [Start, End).
package window

// Params describes the scroll state of a list.
type Params struct {
	ScrollOffset   int
	ItemHeight     int
	ViewportHeight int
	Overscan       int
	TotalCount     int
}

// Slice is the computed window. Invariant: 0 ≤ Start ≤ End ≤ TotalCount.
type Slice struct {
	Start         int
	End           int
	TotalExtent   int
	LeadingOffset int
}

// Count returns the number of rows in the window.
func (s Slice) Count() int {
	return s.End - s.Start
}

// Compute derives the visible slice. Degenerate inputs clamp rather than
// producing negative indices: an empty list yields the zero slice and a
// non-positive item height is treated as height one.
func Compute(p Params) Slice {
	if p.TotalCount <= 0 {
		return Slice{}
	}

	height := p.ItemHeight
	if height <= 0 {
		height = 1
	}
	overscan := p.Overscan
	if overscan < 0 {
		overscan = 0
	}
	scroll := p.ScrollOffset
	if scroll < 0 {
		scroll = 0
	}
	viewport := p.ViewportHeight
	if viewport < 0 {
		viewport = 0
	}

	first := scroll / height
	start := first - overscan
	if start < 0 {
		start = 0
	}

	visible := (viewport + height - 1) / height
	end := first + visible + overscan
	if end > p.TotalCount {
		end = p.TotalCount
	}
	if start > end {
		start = end
	}

	return Slice{
		Start:         start,
		End:           end,
		TotalExtent:   p.TotalCount * height,
		LeadingOffset: start * height,
	}
}
