package nodefs

import (
	"errors"
	"math"
	"testing"
	"time"
)

func Test_FlagsToBits_Maps_Canonical_Strings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		flag any
		want int
	}{
		{"r", O_RDONLY},
		{"r+", O_RDWR},
		{"w", O_TRUNC | O_CREAT | O_WRONLY},
		{"w+", O_TRUNC | O_CREAT | O_RDWR},
		{"a", O_APPEND | O_CREAT | O_WRONLY},
		{"a+", O_APPEND | O_CREAT | O_RDWR},
		{"wx", O_TRUNC | O_CREAT | O_WRONLY | O_EXCL},
		{"xw+", O_TRUNC | O_CREAT | O_RDWR | O_EXCL},
		{"ax", O_APPEND | O_CREAT | O_WRONLY | O_EXCL},
		{"sa+", O_APPEND | O_CREAT | O_RDWR | O_SYNC},
		{"rs+", O_RDWR | O_SYNC},
		{nil, O_RDONLY},
		{O_WRONLY | O_EXCL, O_WRONLY | O_EXCL},
		{float64(O_RDWR), O_RDWR},
	}

	for _, tt := range tests {
		got, err := FlagsToBits(tt.flag)
		if err != nil {
			t.Fatalf("FlagsToBits(%v): %v", tt.flag, err)
		}

		if got != tt.want {
			t.Fatalf("FlagsToBits(%v)=%d, want %d", tt.flag, got, tt.want)
		}
	}
}

func Test_FlagsToBits_Returns_ReadOnly_When_String_Unknown(t *testing.T) {
	t.Parallel()

	for _, flag := range []string{"", "rw", "x", "ws", "R"} {
		got, err := FlagsToBits(flag)
		if err != nil {
			t.Fatalf("FlagsToBits(%q): %v", flag, err)
		}

		if got != O_RDONLY {
			t.Fatalf("FlagsToBits(%q)=%d, want O_RDONLY", flag, got)
		}
	}
}

func Test_FlagsToBits_Returns_InvalidArgument_When_Kind_Unsupported(t *testing.T) {
	t.Parallel()

	for _, flag := range []any{true, []byte("r"), 1.5, struct{}{}} {
		if _, err := FlagsToBits(flag); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("FlagsToBits(%v) err=%v, want ErrInvalidArgument", flag, err)
		}
	}
}

func Test_TimeToEpochSeconds_Converts_Supported_Kinds(t *testing.T) {
	t.Parallel()

	moment := time.Date(2024, 3, 1, 12, 0, 0, 500_000_000, time.UTC)
	base := float64(moment.Unix())

	tests := []struct {
		name string
		in   any
		want float64
	}{
		{"time", moment, base + 0.5},
		{"time pointer", &moment, base + 0.5},
		{"nil time pointer", (*time.Time)(nil), 0},
		{"float seconds", 1.25, 1.25},
		{"int seconds", 42, 42},
		{"numeric string", "1700000000.5", 1700000000.5},
		{"rfc3339", "2024-03-01T12:00:00.5Z", base + 0.5},
		{"date only", "2024-03-01", float64(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).Unix())},
		{"garbage", "not a date", 0},
		{"partial number", "12abc", 0},
		{"unsupported kind", []int{1}, 0},
	}

	for _, tt := range tests {
		got := TimeToEpochSeconds(tt.in)
		if math.Abs(got-tt.want) > 1e-6 {
			t.Fatalf("%s: TimeToEpochSeconds(%v)=%v, want %v", tt.name, tt.in, got, tt.want)
		}
	}
}

func Test_ParseMode_Accepts_Integers_And_Octal_Strings(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		in   any
		want uint32
	}{
		{0o644, 0o644},
		{"644", 0o644},
		{"0755", 0o755},
		{uint32(0o600), 0o600},
	} {
		got, err := parseMode("mode", tt.in)
		if err != nil {
			t.Fatalf("parseMode(%v): %v", tt.in, err)
		}

		if got != tt.want {
			t.Fatalf("parseMode(%v)=%o, want %o", tt.in, got, tt.want)
		}
	}

	for _, in := range []any{"9", -1, "rwx", 1.5} {
		if _, err := parseMode("mode", in); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("parseMode(%v) err=%v, want ErrInvalidArgument", in, err)
		}
	}
}

func Test_Constants_Table_Matches_Declared_Values(t *testing.T) {
	t.Parallel()

	for name, want := range map[string]int{
		"O_RDONLY":      0,
		"O_CREAT":       64,
		"O_TRUNC":       512,
		"O_APPEND":      1024,
		"O_SYNC":        1052672,
		"O_SYMLINK":     2097152,
		"S_IFMT":        0o170000,
		"F_OK":          0,
		"X_OK":          1,
		"COPYFILE_EXCL": 1,
	} {
		if got, ok := Constants[name]; !ok || got != want {
			t.Fatalf("Constants[%q]=%d (present %v), want %d", name, got, ok, want)
		}
	}
}
