// Package gap provides inclusive height ranges and helpers to find the ones missing from storage.
package gap

import (
	"fmt"
	"sort"
)

// Range is an inclusive range of heights or block numbers.
type Range struct {
	Start uint64
	End   uint64
}

// String returns the range in "start-end" format.
func (r Range) String() string {
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// Len returns the number of heights in the range.
func (r Range) Len() uint64 {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

// Heights lists every height of the range in ascending order.
func (r Range) Heights() []uint64 {
	if r.End < r.Start {
		return nil
	}
	heights := make([]uint64, 0, r.Len())
	for h := r.Start; ; h++ {
		heights = append(heights, h)
		if h == r.End {
			break
		}
	}
	return heights
}

// Split cuts the range into consecutive windows of at most size heights.
func (r Range) Split(size uint64) []Range {
	if r.End < r.Start {
		return nil
	}
	if size == 0 || r.Len() <= size {
		return []Range{r}
	}

	var windows []Range
	for from := r.Start; ; {
		to := r.End
		if r.End-from >= size {
			to = from + size - 1
		}
		windows = append(windows, Range{Start: from, End: to})
		if to == r.End {
			return windows
		}
		from = to + 1
	}
}

// Find returns the ascending, disjoint ranges of [floor, to] that are absent from present.
// present must be sorted ascending; duplicates and values outside [floor, to] are ignored.
func Find(present []uint64, floor, to uint64) []Range {
	if to < floor {
		return nil
	}

	var gaps []Range
	next := floor
	for _, h := range present {
		if h < next {
			continue
		}
		if h > to {
			break
		}
		if h > next {
			gaps = append(gaps, Range{Start: next, End: h - 1})
		}
		if h == to {
			return gaps
		}
		next = h + 1
	}
	return append(gaps, Range{Start: next, End: to})
}

// Merge sorts ranges and joins overlapping or adjacent ones.
func Merge(ranges []Range) []Range {
	if len(ranges) <= 1 {
		return ranges
	}

	sorted := make([]Range, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	merged := []Range{sorted[0]}
	for _, current := range sorted[1:] {
		last := &merged[len(merged)-1]
		if current.Start <= last.End || current.Start-last.End == 1 {
			if current.End > last.End {
				last.End = current.End
			}
			continue
		}
		merged = append(merged, current)
	}
	return merged
}

// Heights flattens ranges into their heights, keeping the ranges' order.
func Heights(ranges []Range) []uint64 {
	var total uint64
	for _, r := range ranges {
		total += r.Len()
	}
	heights := make([]uint64, 0, total)
	for _, r := range ranges {
		heights = append(heights, r.Heights()...)
	}
	return heights
}
