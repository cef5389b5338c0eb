package subtitle

import "sort"

// Format identifies a subtitle text format.
type Format string

const (
	FormatSRT Format = "SRT"
	FormatVTT Format = "VTT"
)

// Segment is one parsed cue from a single-language subtitle track.
// Times are seconds from the start of the media.
type Segment struct {
	Index int     `json:"index"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Midpoint returns the temporal center of the segment.
func (s Segment) Midpoint() float64 {
	return (s.Start + s.End) / 2.0
}

// SortByStart orders segments by start time in place. Parsing preserves
// file order, so callers needing the canonical timeline sort explicitly.
func SortByStart(segments []Segment) {
	sort.SliceStable(segments, func(i, j int) bool {
		return segments[i].Start < segments[j].Start
	})
}

// Record is one bilingual caption line owned by a video. SecondaryText may
// be empty when no counterpart line was matched or translated.
type Record struct {
	Start         float64 `json:"start"`
	End           float64 `json:"end"`
	PrimaryText   string  `json:"primary_text"`
	SecondaryText string  `json:"secondary_text"`
}
