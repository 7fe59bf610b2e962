// Package dates normalizes heterogeneous date values and formats them for
// display.
package dates

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"job-tracker/internal/shared/telemetry"
)

// Kind tags the shape a date arrived in.
type Kind int

const (
	KindNative Kind = iota
	KindISOString
	KindEpochNumber
	KindSecondsObject
	kindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindNative:
		return "native"
	case KindISOString:
		return "iso_string"
	case KindEpochNumber:
		return "epoch_number"
	case KindSecondsObject:
		return "seconds_object"
	default:
		return "invalid"
	}
}

// Input is a date in one of the accepted shapes. Build it with FromTime,
// FromISO, FromEpochMillis, FromSeconds or Parse.
type Input struct {
	kind    Kind
	native  time.Time
	iso     string
	epochMs float64
	seconds int64
	nanos   int64
	raw     any
}

// Kind returns the shape tag.
func (in Input) Kind() Kind { return in.kind }

func FromTime(t time.Time) Input { return Input{kind: KindNative, native: t} }

func FromISO(s string) Input { return Input{kind: KindISOString, iso: s} }

// FromEpochMillis takes milliseconds since the Unix epoch.
func FromEpochMillis(ms float64) Input { return Input{kind: KindEpochNumber, epochMs: ms} }

// FromSeconds takes a backend timestamp split into seconds and nanoseconds.
func FromSeconds(seconds, nanos int64) Input {
	return Input{kind: KindSecondsObject, seconds: seconds, nanos: nanos}
}

var now = time.Now

var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

// maxEpochMs bounds epoch input to +/-100,000,000 days around 1970, the
// range a browser Date accepts. Larger values would overflow int64 millis.
const maxEpochMs = 8.64e15

// Normalize converts an Input to a UTC time. It never fails: input that
// cannot be interpreted yields the current time and a warning log.
func Normalize(in Input) time.Time {
	switch in.kind {
	case KindNative:
		return in.native.UTC()
	case KindISOString:
		s := strings.TrimSpace(in.iso)
		for _, layout := range isoLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC()
			}
		}
		return fallback(in.kind, in.iso)
	case KindEpochNumber:
		if math.IsNaN(in.epochMs) || math.Abs(in.epochMs) > maxEpochMs {
			return fallback(in.kind, in.epochMs)
		}
		ms := int64(in.epochMs)
		return time.UnixMilli(ms).UTC()
	case KindSecondsObject:
		return time.Unix(in.seconds, in.nanos).UTC()
	default:
		return fallback(in.kind, in.raw)
	}
}

func fallback(kind Kind, raw any) time.Time {
	telemetry.Warn("dates.unparseable", map[string]any{
		"kind":  kind.String(),
		"input": raw,
	})
	return now().UTC()
}

// Parse maps a dynamic value, such as a decoded JSON field, onto an Input.
// Unrecognized values produce an Input that normalizes to now.
func Parse(v any) Input {
	switch x := v.(type) {
	case Input:
		return x
	case time.Time:
		return FromTime(x)
	case *time.Time:
		if x == nil {
			return Input{kind: kindInvalid}
		}
		return FromTime(*x)
	case string:
		return FromISO(x)
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return FromEpochMillis(f)
		}
		return Input{kind: kindInvalid, raw: x.String()}
	case int:
		return FromEpochMillis(float64(x))
	case int64:
		return FromEpochMillis(float64(x))
	case float64:
		return FromEpochMillis(x)
	case map[string]any:
		if in, ok := secondsFromMap(x); ok {
			return in
		}
		return Input{kind: kindInvalid, raw: x}
	default:
		return Input{kind: kindInvalid, raw: v}
	}
}

// NormalizeAny is Normalize(Parse(v)).
func NormalizeAny(v any) time.Time {
	return Normalize(Parse(v))
}

func secondsFromMap(m map[string]any) (Input, bool) {
	var secRaw, nanoRaw any
	var ok bool
	for _, k := range []string{"seconds", "_seconds"} {
		if secRaw, ok = m[k]; ok {
			break
		}
	}
	if !ok {
		return Input{}, false
	}
	for _, k := range []string{"nanoseconds", "_nanoseconds", "nanos"} {
		if v, has := m[k]; has {
			nanoRaw = v
			break
		}
	}
	sec, ok := toInt64(secRaw)
	if !ok {
		return Input{}, false
	}
	nanos, _ := toInt64(nanoRaw)
	return FromSeconds(sec, nanos), true
}

func toInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int64:
		return x, true
	case float64:
		return int64(x), true
	case json.Number:
		n, err := x.Int64()
		if err != nil {
			f, ferr := x.Float64()
			return int64(f), ferr == nil
		}
		return n, true
	case string:
		n, err := strconv.ParseInt(x, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}
