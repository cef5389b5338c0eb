package platform

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lingoreel/lingoreel/internal/subtitle"
)

// json3 is YouTube's timed-text format: a list of events carrying start
// offset, duration and utf8 text segments.
type json3Document struct {
	Events []json3Event `json:"events"`
}

type json3Event struct {
	StartMs    int64      `json:"tStartMs"`
	DurationMs int64      `json:"dDurationMs"`
	Segs       []json3Seg `json:"segs"`
}

type json3Seg struct {
	UTF8 string `json:"utf8"`
}

// ParseJSON3 converts a json3 caption document into segments. Events without
// text (music cues, window styling) are skipped; indices are assigned by
// output position.
func ParseJSON3(data []byte) ([]subtitle.Segment, error) {
	var doc json3Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode json3: %w", err)
	}

	segments := make([]subtitle.Segment, 0, len(doc.Events))
	for _, event := range doc.Events {
		if len(event.Segs) == 0 {
			continue
		}
		var builder strings.Builder
		for _, seg := range event.Segs {
			builder.WriteString(seg.UTF8)
		}
		text := strings.Join(strings.Fields(builder.String()), " ")
		if text == "" {
			continue
		}
		start := float64(event.StartMs) / 1000.0
		segments = append(segments, subtitle.Segment{
			Index: len(segments) + 1,
			Start: start,
			End:   start + float64(event.DurationMs)/1000.0,
			Text:  text,
		})
	}
	return segments, nil
}
