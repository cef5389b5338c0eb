// Package align merges two independently timed caption tracks into one
// bilingual sequence by nearest-midpoint matching.
package align

import (
	"strings"

	"github.com/lingoreel/lingoreel/internal/subtitle"
)

// DefaultThreshold is the maximum midpoint distance, in seconds, for a
// secondary segment to be matched onto a primary one.
const DefaultThreshold = 10.0

// Align annotates each primary segment with the text of the secondary
// segments whose midpoints land closest to it, producing one record per
// primary segment. Both inputs must be sorted by start time. A secondary
// segment whose nearest primary midpoint is further than threshold seconds
// away is dropped: omitting a translation beats mis-pairing it with a
// distant line. A primary segment can collect several secondary texts; they
// are joined with single spaces.
//
// The walk is greedy and monotonic, O(n+m). It relies on both tracks
// roughly co-progressing, which holds because they describe the same media
// timeline. Role swapping for an empty primary is the caller's decision.
func Align(primary, secondary []subtitle.Segment, threshold float64) []subtitle.Record {
	if len(primary) == 0 {
		return []subtitle.Record{}
	}

	midpoints := make([]float64, len(primary))
	for i, segment := range primary {
		midpoints[i] = segment.Midpoint()
	}

	matched := make([][]string, len(primary))
	cursor := 0
	for _, sec := range secondary {
		mid := sec.Midpoint()

		for cursor < len(primary)-1 {
			distCurr := abs(midpoints[cursor] - mid)
			distNext := abs(midpoints[cursor+1] - mid)
			if distNext <= distCurr {
				cursor++
			} else {
				break
			}
		}

		if abs(midpoints[cursor]-mid) <= threshold {
			matched[cursor] = append(matched[cursor], sec.Text)
		}
	}

	records := make([]subtitle.Record, len(primary))
	for i, segment := range primary {
		records[i] = subtitle.Record{
			Start:         segment.Start,
			End:           segment.End,
			PrimaryText:   segment.Text,
			SecondaryText: strings.Join(matched[i], " "),
		}
	}
	return records
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
