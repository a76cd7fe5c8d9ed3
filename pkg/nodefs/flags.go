package nodefs

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// FlagsToBits converts an open flag to open(2) bits.
//
// The six canonical strings map as follows:
//
//	r   O_RDONLY
//	r+  O_RDWR
//	w   O_TRUNC | O_CREAT | O_WRONLY
//	w+  O_TRUNC | O_CREAT | O_RDWR
//	a   O_APPEND | O_CREAT | O_WRONLY
//	a+  O_APPEND | O_CREAT | O_RDWR
//
// An x (wx, ax, wx+, ax+, in either letter order) adds O_EXCL and an s
// (as, as+, rs+) adds O_SYNC. Any other string yields O_RDONLY rather than an error. Integers pass
// through unchanged and nil means O_RDONLY. Other kinds fail with
// [ErrInvalidArgument].
func FlagsToBits(flag any) (int, error) {
	if flag == nil {
		return O_RDONLY, nil
	}

	if s, ok := flag.(string); ok {
		switch s {
		case "r":
			return O_RDONLY, nil
		case "r+":
			return O_RDWR, nil
		case "w":
			return O_TRUNC | O_CREAT | O_WRONLY, nil
		case "w+":
			return O_TRUNC | O_CREAT | O_RDWR, nil
		case "a":
			return O_APPEND | O_CREAT | O_WRONLY, nil
		case "a+":
			return O_APPEND | O_CREAT | O_RDWR, nil
		case "rs+", "sr+":
			return O_RDWR | O_SYNC, nil
		case "wx", "xw":
			return O_TRUNC | O_CREAT | O_WRONLY | O_EXCL, nil
		case "wx+", "xw+":
			return O_TRUNC | O_CREAT | O_RDWR | O_EXCL, nil
		case "ax", "xa":
			return O_APPEND | O_CREAT | O_WRONLY | O_EXCL, nil
		case "ax+", "xa+":
			return O_APPEND | O_CREAT | O_RDWR | O_EXCL, nil
		case "as", "sa":
			return O_APPEND | O_CREAT | O_WRONLY | O_SYNC, nil
		case "as+", "sa+":
			return O_APPEND | O_CREAT | O_RDWR | O_SYNC, nil
		default:
			return O_RDONLY, nil
		}
	}

	if n, ok := asInt(flag); ok {
		return int(n), nil
	}

	return 0, invalidArgType("flags", "string or an integer", flag)
}

// dateLayouts are tried in order for non-numeric time strings.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	time.ANSIC,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// TimeToEpochSeconds converts a timestamp to seconds since the Unix epoch.
//
// A [time.Time] converts with sub-second precision. Numbers are already
// seconds. A string holding a number parses as seconds; any other string is
// parsed as a date. Unparsable strings and unsupported kinds yield 0.
func TimeToEpochSeconds(v any) float64 {
	switch t := v.(type) {
	case time.Time:
		return timeSeconds(t)
	case *time.Time:
		if t == nil {
			return 0
		}

		return timeSeconds(*t)
	case float64:
		return t
	case float32:
		return float64(t)
	case string:
		s := strings.TrimSpace(t)

		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) {
			return f
		}

		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return timeSeconds(parsed)
			}
		}

		return 0
	}

	if n, ok := asInt(v); ok {
		return float64(n)
	}

	return 0
}

func timeSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

// asInt reports v as an int64 when it holds an integer kind, or a float
// with no fractional part.
func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), uint64(n) <= math.MaxInt64
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), n <= math.MaxInt64
	case float64:
		if math.IsInf(n, 0) || math.IsNaN(n) || n != math.Trunc(n) {
			return 0, false
		}

		return int64(n), true
	case float32:
		return asInt(float64(n))
	}

	return 0, false
}

// parseMode accepts an integer or an octal string such as "755".
func parseMode(name string, v any) (uint32, error) {
	if s, ok := v.(string); ok {
		m, err := strconv.ParseUint(s, 8, 32)
		if err != nil {
			return 0, invalidArgValue(name, v, "must be a 32-bit unsigned integer or an octal string")
		}

		return uint32(m), nil
	}

	n, ok := asInt(v)
	if !ok {
		return 0, invalidArgType(name, "integer", v)
	}

	if n < 0 || n > math.MaxUint32 {
		return 0, outOfRange(name, ">= 0 && <= 4294967295", v)
	}

	return uint32(n), nil
}
