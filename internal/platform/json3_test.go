package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON3(t *testing.T) {
	t.Parallel()

	data := []byte(`{
		"events": [
			{"tStartMs": 0, "dDurationMs": 2000},
			{"tStartMs": 4260, "dDurationMs": 14930, "segs": [{"utf8": "Hello "}, {"utf8": "world"}]},
			{"tStartMs": 20000, "dDurationMs": 2500, "segs": [{"utf8": "\n"}]},
			{"tStartMs": 23000, "dDurationMs": 1000, "segs": [{"utf8": "second   line"}]}
		]
	}`)

	segments, err := ParseJSON3(data)
	require.NoError(t, err)
	require.Len(t, segments, 2)

	assert.Equal(t, 1, segments[0].Index)
	assert.InDelta(t, 4.26, segments[0].Start, 1e-9)
	assert.InDelta(t, 19.19, segments[0].End, 1e-9)
	assert.Equal(t, "Hello world", segments[0].Text)

	assert.Equal(t, 2, segments[1].Index)
	assert.Equal(t, "second line", segments[1].Text)
}

func TestParseJSON3Invalid(t *testing.T) {
	t.Parallel()

	_, err := ParseJSON3([]byte("not json"))
	require.Error(t, err)
}

func TestParseJSON3Empty(t *testing.T) {
	t.Parallel()

	segments, err := ParseJSON3([]byte(`{"events": []}`))
	require.NoError(t, err)
	assert.Empty(t, segments)
}

func TestTrackFor(t *testing.T) {
	t.Parallel()

	meta := &Metadata{Tracks: map[string]TrackKind{"en": TrackManual, "vi": TrackAuto}}
	assert.Equal(t, TrackManual, meta.TrackFor("en"))
	assert.Equal(t, TrackAuto, meta.TrackFor("vi"))
	assert.Equal(t, TrackNone, meta.TrackFor("fr"))

	var nilMeta *Metadata
	assert.Equal(t, TrackNone, nilMeta.TrackFor("en"))
}

func TestBaseLang(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "en", baseLang("en-orig"))
	assert.Equal(t, "vi", baseLang("vi"))
	assert.Equal(t, "pt", baseLang("pt_BR"))
}
