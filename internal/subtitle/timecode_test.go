package subtitle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimecode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    float64
		wantErr bool
	}{
		{name: "srt comma", input: "00:00:04,260", want: 4.26},
		{name: "vtt period", input: "00:00:19.190", want: 19.19},
		{name: "hours", input: "01:02:03.000", want: 3723},
		{name: "single digit hour", input: "1:02:03.500", want: 3723.5},
		{name: "no millis", input: "00:01:30", want: 90},
		{name: "surrounding spaces", input: " 00:00:01.000 ", want: 1},
		{name: "garbage", input: "abc", wantErr: true},
		{name: "missing minutes", input: "04,260", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimecode(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidTimecode)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestFormatTimecode(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
		want    string
	}{
		{name: "zero", seconds: 0, want: "00:00:00.000"},
		{name: "millis", seconds: 4.26, want: "00:00:04.260"},
		{name: "hours", seconds: 3723.5, want: "01:02:03.500"},
		{name: "truncates sub-millisecond", seconds: 1.23456, want: "00:00:01.234"},
		{name: "exact millis kept", seconds: 12.042, want: "00:00:12.042"},
		{name: "exact millis kept high", seconds: 19.19, want: "00:00:19.190"},
		{name: "negative clamped", seconds: -5, want: "00:00:00.000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatTimecode(tt.seconds))
		})
	}
}

func TestTimecodeRoundTrip(t *testing.T) {
	for _, seconds := range []float64{0, 1.5, 4.26, 59.999, 3600, 7261.042} {
		formatted := FormatTimecode(seconds)
		parsed, err := ParseTimecode(formatted)
		require.NoError(t, err)
		assert.InDelta(t, seconds, parsed, 0.001, "round trip of %v via %s", seconds, formatted)
	}
}
