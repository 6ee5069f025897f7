package activity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityMarshalKeepsZeroCategory(t *testing.T) {
	act := &Activity{ApplicationID: "100", Name: "SomeGame", Type: CategoryPlaying, Flags: FlagInstance}
	act.prune()

	data, err := json.Marshal(act)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))

	// The category code must survive even at its zero value; the host
	// rejects payloads without it.
	v, ok := fields["type"]
	require.True(t, ok)
	assert.Equal(t, float64(0), v)
}

func TestActivityMarshalDropsEmptyFields(t *testing.T) {
	act := &Activity{
		ApplicationID: "100",
		Name:          "SomeGame",
		Type:          CategoryWatching,
		Flags:         FlagInstance,
		Assets:        &Assets{},
		Timestamps:    &Timestamps{},
		Buttons:       []string{},
		Metadata:      &Metadata{ButtonURLs: []string{}},
	}
	act.prune()

	data, err := json.Marshal(act)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))

	for _, key := range []string{"state", "details", "assets", "timestamps", "buttons", "metadata"} {
		_, ok := fields[key]
		assert.False(t, ok, "expected %q to be pruned", key)
	}
}

func TestTimestampsOmitAbsentBounds(t *testing.T) {
	data, err := json.Marshal(&Timestamps{Start: 1000})
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":1000}`, string(data))

	data, err = json.Marshal(&Timestamps{End: 2000})
	require.NoError(t, err)
	assert.JSONEq(t, `{"end":2000}`, string(data))
}

func TestParseCategory(t *testing.T) {
	cases := map[string]Category{
		"playing":   CategoryPlaying,
		"Listening": CategoryListening,
		" watching": CategoryWatching,
		"COMPETING": CategoryCompeting,
	}
	for input, want := range cases {
		got, err := ParseCategory(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got)
	}

	_, err := ParseCategory("streaming")
	assert.Error(t, err)
	_, err = ParseCategory("")
	assert.Error(t, err)
}

func TestCategoryString(t *testing.T) {
	assert.Equal(t, "playing", CategoryPlaying.String())
	assert.Equal(t, "listening", CategoryListening.String())
	assert.Equal(t, "watching", CategoryWatching.String())
	assert.Equal(t, "competing", CategoryCompeting.String())
	assert.Equal(t, "unknown", Category(42).String())
}

func TestRawActivityDecode(t *testing.T) {
	payload := `{
		"application_id": "100",
		"state": "browsing",
		"timestamps": {"start": 1000},
		"assets": {"large_image": "cover", "small_text": "hd"},
		"buttons": ["Watch"],
		"metadata": {"button_urls": ["https://example.com"]}
	}`

	var raw RawActivity
	require.NoError(t, json.Unmarshal([]byte(payload), &raw))
	assert.Equal(t, "100", raw.ApplicationID)
	assert.Equal(t, "browsing", raw.State)
	require.NotNil(t, raw.Timestamps)
	assert.Equal(t, int64(1000), raw.Timestamps.Start)
	require.NotNil(t, raw.Assets)
	assert.Equal(t, "cover", raw.Assets.LargeImage)
	assert.Equal(t, "hd", raw.Assets.SmallText)
	assert.Equal(t, []string{"Watch"}, raw.Buttons)
	require.NotNil(t, raw.Metadata)
	assert.Equal(t, []string{"https://example.com"}, raw.Metadata.ButtonURLs)
}
