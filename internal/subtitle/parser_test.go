package subtitle

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSRTSingleBlock(t *testing.T) {
	content := "1\n00:00:04,260 --> 00:00:19,190\n<i>Hello</i>\n\n"

	segments := ParseSRT(content)
	require.Len(t, segments, 1)
	assert.Equal(t, 1, segments[0].Index)
	assert.InDelta(t, 4.26, segments[0].Start, 1e-9)
	assert.InDelta(t, 19.19, segments[0].End, 1e-9)
	assert.Equal(t, "Hello", segments[0].Text)
}

func TestParseSRTMultipleBlocks(t *testing.T) {
	content := strings.Join([]string{
		"1",
		"00:00:01,000 --> 00:00:02,000",
		"First line",
		"continued here",
		"",
		"2",
		"00:00:03,000 --> 00:00:04,000",
		"Second",
		"",
	}, "\n")

	segments := ParseSRT(content)
	require.Len(t, segments, 2)
	assert.Equal(t, "First line continued here", segments[0].Text)
	assert.Equal(t, "Second", segments[1].Text)
	assert.Equal(t, 2, segments[1].Index)
}

func TestParseSRTSkipsMalformedBlocks(t *testing.T) {
	content := strings.Join([]string{
		"1",
		"no timing line here",
		"",
		"2",
		"00:00:01,000 --> 00:00:02,000",
		"<b></b>", // empty after tag stripping
		"",
		"3",
		"00:00:05,000 --> 00:00:06,000",
		"Survivor",
		"",
		"4",
		"00:00:09,000 --> 00:00:08,000", // end before start
		"Backwards",
		"",
	}, "\n")

	segments := ParseSRT(content)
	require.Len(t, segments, 1)
	assert.Equal(t, "Survivor", segments[0].Text)
	// Index is re-derived from output position, not the source numbering.
	assert.Equal(t, 1, segments[0].Index)
}

func TestParseSRTWindowsAndMacNewlines(t *testing.T) {
	content := "1\r\n00:00:01,000 --> 00:00:02,000\r\nCRLF text\r\n\r\n2\r00:00:03,000 --> 00:00:04,000\rCR text\r\r"

	segments := ParseSRT(content)
	require.Len(t, segments, 2)
	assert.Equal(t, "CRLF text", segments[0].Text)
	assert.Equal(t, "CR text", segments[1].Text)
}

func TestParseSRTSegmentInvariants(t *testing.T) {
	content := strings.Join([]string{
		"1",
		"00:00:10,500 --> 00:00:12,000",
		"  spaced   out  ",
		"",
		"2",
		"00:01:00,000 --> 00:01:03,250",
		"<font color=\"red\">styled</font> text",
		"",
	}, "\n")

	segments := ParseSRT(content)
	require.Len(t, segments, 2)
	for _, segment := range segments {
		assert.Greater(t, segment.End, segment.Start)
		assert.NotEmpty(t, segment.Text)
		assert.NotContains(t, segment.Text, "  ")
	}
	assert.Equal(t, "spaced out", segments[0].Text)
	assert.Equal(t, "styled text", segments[1].Text)
}

func TestParseVTT(t *testing.T) {
	content := strings.Join([]string{
		"WEBVTT",
		"",
		"00:00:01.000 --> 00:00:02.500",
		"First cue",
		"",
		"00:04.000 --> 00:06.000",
		"Hour-less cue",
		"",
	}, "\n")

	segments := ParseVTT(content)
	require.Len(t, segments, 2)
	assert.InDelta(t, 1.0, segments[0].Start, 1e-9)
	assert.InDelta(t, 2.5, segments[0].End, 1e-9)
	assert.Equal(t, "First cue", segments[0].Text)
	assert.InDelta(t, 4.0, segments[1].Start, 1e-9)
	assert.InDelta(t, 6.0, segments[1].End, 1e-9)
}

func TestParseVTTWithCueIdentifiers(t *testing.T) {
	content := strings.Join([]string{
		"WEBVTT - some header note",
		"",
		"intro",
		"00:00:01.000 --> 00:00:02.000",
		"Identified cue",
		"",
	}, "\n")

	segments := ParseVTT(content)
	require.Len(t, segments, 1)
	assert.Equal(t, "Identified cue", segments[0].Text)
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    Format
	}{
		{name: "webvtt header", content: "WEBVTT\n\n00:00:01.000 --> 00:00:02.000\nHi\n", want: FormatVTT},
		{name: "lowercase header", content: "webvtt\n", want: FormatVTT},
		{name: "bom prefixed", content: "\uFEFFWEBVTT\n", want: FormatVTT},
		{name: "srt", content: "1\n00:00:01,000 --> 00:00:02,000\nHi\n", want: FormatSRT},
		{name: "empty", content: "", want: FormatSRT},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectFormat(tt.content))
		})
	}
}

func TestParseDispatchesOnFormat(t *testing.T) {
	vtt := "WEBVTT\n\n00:00:01.000 --> 00:00:02.000\nvtt cue\n"
	srt := "1\n00:00:01,000 --> 00:00:02,000\nsrt cue\n"

	require.Len(t, Parse(vtt), 1)
	require.Len(t, Parse(srt), 1)
	assert.Equal(t, "vtt cue", Parse(vtt)[0].Text)
	assert.Equal(t, "srt cue", Parse(srt)[0].Text)
}

func TestParseEmptyContent(t *testing.T) {
	assert.Empty(t, ParseSRT(""))
	assert.Empty(t, ParseVTT("WEBVTT\n"))
}
