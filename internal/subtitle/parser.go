package subtitle

import (
	"regexp"
	"strings"
)

var (
	blockSplitPattern = regexp.MustCompile(`\n\s*\n`)
	vttHeaderPattern  = regexp.MustCompile(`(?i)^WEBVTT[^\n]*\n`)
	htmlTagPattern    = regexp.MustCompile(`<[^>]+>`)
	srtTimePattern    = regexp.MustCompile(`\d{1,2}:\d{2}:\d{2}[,.]\d{3}`)
	vttTimePattern    = regexp.MustCompile(`\d{0,2}:?\d{2}:\d{2}\.\d{3}`)
)

// DetectFormat reports whether raw content looks like WebVTT or SRT. WebVTT
// files are required to open with a WEBVTT header; anything else is treated
// as SRT.
func DetectFormat(content string) Format {
	head := strings.TrimPrefix(strings.TrimSpace(content), "\uFEFF")
	if len(head) > 16 {
		head = head[:16]
	}
	if strings.HasPrefix(strings.ToUpper(head), "WEBVTT") {
		return FormatVTT
	}
	return FormatSRT
}

// Parse auto-detects the format of content and parses it.
func Parse(content string) []Segment {
	if DetectFormat(content) == FormatVTT {
		return ParseVTT(content)
	}
	return ParseSRT(content)
}

// ParseSRT parses SRT content into segments in file order. Malformed blocks
// (no timing line, unparseable timestamps, empty text after tag stripping)
// are skipped rather than failing the whole parse.
func ParseSRT(content string) []Segment {
	return parseBlocks(content, srtTimePattern, false)
}

// ParseVTT parses WebVTT content. The WEBVTT header line is dropped before
// block splitting, and timestamps without an hours component are accepted.
func ParseVTT(content string) []Segment {
	content = normalizeNewlines(content)
	content = vttHeaderPattern.ReplaceAllString(strings.TrimLeft(content, "\uFEFF"), "")
	return parseBlocks(content, vttTimePattern, true)
}

func parseBlocks(content string, timePattern *regexp.Regexp, padHours bool) []Segment {
	content = normalizeNewlines(content)

	segments := make([]Segment, 0)
	for _, block := range blockSplitPattern.Split(strings.TrimSpace(content), -1) {
		lines := make([]string, 0)
		for _, line := range strings.Split(block, "\n") {
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				lines = append(lines, trimmed)
			}
		}
		if len(lines) < 2 {
			continue
		}

		timingIdx := -1
		for i, line := range lines {
			if strings.Contains(line, "-->") {
				timingIdx = i
				break
			}
		}
		if timingIdx == -1 {
			continue
		}

		text := cleanText(strings.Join(lines[timingIdx+1:], " "))
		if text == "" {
			continue
		}

		times := timePattern.FindAllString(lines[timingIdx], -1)
		if len(times) < 2 {
			continue
		}
		start, err := ParseTimecode(padTimecode(times[0], padHours))
		if err != nil {
			continue
		}
		end, err := ParseTimecode(padTimecode(times[1], padHours))
		if err != nil {
			continue
		}
		if end <= start {
			continue
		}

		segments = append(segments, Segment{
			Index: len(segments) + 1,
			Start: start,
			End:   end,
			Text:  text,
		})
	}
	return segments
}

func normalizeNewlines(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	return strings.ReplaceAll(content, "\r", "\n")
}

// padTimecode prefixes a missing hours component so MM:SS.mmm timestamps
// parse as 00:MM:SS.mmm.
func padTimecode(ts string, padHours bool) string {
	if padHours && strings.Count(ts, ":") == 1 {
		return "00:" + ts
	}
	return ts
}

// cleanText strips HTML-style markup and collapses whitespace runs.
func cleanText(text string) string {
	text = htmlTagPattern.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}
