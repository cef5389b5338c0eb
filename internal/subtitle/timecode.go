package subtitle

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidTimecode reports a timestamp that does not match HH:MM:SS.mmm.
var ErrInvalidTimecode = errors.New("invalid timecode")

var timecodePattern = regexp.MustCompile(`^(\d{1,2}):(\d{2}):(\d{2}(?:\.\d{1,3})?)$`)

// ParseTimecode converts an SRT/VTT timestamp to seconds. Both fractional
// separators are accepted: SRT uses a comma, WebVTT a period.
func ParseTimecode(text string) (float64, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(text), ",", ".")
	matches := timecodePattern.FindStringSubmatch(normalized)
	if matches == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimecode, text)
	}

	hours, _ := strconv.Atoi(matches[1])
	minutes, _ := strconv.Atoi(matches[2])
	seconds, err := strconv.ParseFloat(matches[3], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimecode, text)
	}

	return float64(hours)*3600 + float64(minutes)*60 + seconds, nil
}

// FormatTimecode renders seconds as a zero-padded WebVTT timestamp
// (HH:MM:SS.mmm). Sub-millisecond remainders are truncated, not rounded.
func FormatTimecode(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	// Rounding at microsecond precision first keeps float artifacts like
	// 4.26 -> 4.259999... from losing a whole millisecond.
	millis := int64(math.Round(seconds*1e6)) / 1000
	hours := millis / 3600000
	minutes := (millis % 3600000) / 60000
	secs := (millis % 60000) / 1000
	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, secs, millis%1000)
}
