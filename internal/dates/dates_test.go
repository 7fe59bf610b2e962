package dates

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freezeNow(t *testing.T, at time.Time) {
	t.Helper()
	prev := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = prev })
}

func TestNormalizeSameInstantAcrossShapes(t *testing.T) {
	instant := time.Date(2024, time.January, 15, 14, 30, 45, 123000000, time.UTC)

	inputs := map[string]Input{
		"native":         FromTime(instant.In(time.FixedZone("EST", -5*3600))),
		"iso":            FromISO("2024-01-15T14:30:45.123Z"),
		"iso offset":     FromISO("2024-01-15T09:30:45.123-05:00"),
		"epoch":          FromEpochMillis(float64(instant.UnixMilli())),
		"seconds object": FromSeconds(instant.Unix(), int64(instant.Nanosecond())),
	}
	for name, in := range inputs {
		got := Normalize(in)
		assert.Truef(t, got.Equal(instant), "%s: got %s want %s", name, got, instant)
		assert.Equalf(t, time.UTC, got.Location(), "%s: expected UTC", name)
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	for _, in := range []Input{
		FromISO("2023-06-01"),
		FromEpochMillis(1700000000000),
		FromSeconds(1700000000, 5),
		FromTime(time.Date(2020, 2, 29, 23, 59, 59, 0, time.Local)),
	} {
		once := Normalize(in)
		twice := Normalize(FromTime(once))
		assert.True(t, once.Equal(twice))
		assert.Equal(t, once, twice)
	}
}

func TestNormalizeFallsBackToNow(t *testing.T) {
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	freezeNow(t, fixed)

	for _, in := range []Input{
		FromISO("not a date"),
		FromEpochMillis(math.NaN()),
		FromEpochMillis(math.Inf(1)),
		FromEpochMillis(1e30),
		FromEpochMillis(-1e30),
		FromEpochMillis(9.3e18),
		Parse(nil),
		Parse(struct{}{}),
		Parse(map[string]any{"foo": 1}),
	} {
		assert.True(t, Normalize(in).Equal(fixed), "kind %s", in.Kind())
	}
}

func TestParseDynamicValues(t *testing.T) {
	instant := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(`{"d":{"seconds":1715328000,"nanoseconds":0}}`), &decoded))

	cases := []any{
		instant,
		&instant,
		"2024-05-10T08:00:00Z",
		instant.UnixMilli(),
		float64(instant.UnixMilli()),
		json.Number("1715328000000"),
		decoded["d"],
		map[string]any{"_seconds": "1715328000"},
	}
	for _, c := range cases {
		assert.Truef(t, NormalizeAny(c).Equal(instant), "input %#v", c)
	}
}

func TestKindTags(t *testing.T) {
	assert.Equal(t, KindNative, Parse(time.Now()).Kind())
	assert.Equal(t, KindISOString, Parse("2024-01-01").Kind())
	assert.Equal(t, KindEpochNumber, Parse(42).Kind())
	assert.Equal(t, KindSecondsObject, Parse(map[string]any{"seconds": 1.0}).Kind())
	assert.Equal(t, "invalid", Parse(nil).Kind().String())
}
