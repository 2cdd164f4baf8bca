package flowdsl

import "testing"

func TestParseDurationMillis(t *testing.T) {
	cases := []struct {
		literal string
		want    int64
	}{
		{"0ms", 0},
		{"500ms", 500},
		{"1s", 1000},
		{"2s", 2000},
		{"1m", 60000},
		{"90s", 90000},
	}
	for _, tc := range cases {
		got, err := ParseDurationMillis(tc.literal)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.literal, err)
		}
		if got != tc.want {
			t.Fatalf("parse %q: got %d want %d", tc.literal, got, tc.want)
		}
	}
}

func TestParseDurationMillisRejectsForeignForms(t *testing.T) {
	for _, literal := range []string{"", "ms", "1h", "1.5s", "-1s", "1h30m", "10", "2 s"} {
		if _, err := ParseDurationMillis(literal); err == nil {
			t.Fatalf("expected rejection of %q", literal)
		}
	}
}

func TestFormatDurationMillisUsesLargestEvenUnit(t *testing.T) {
	cases := []struct {
		millis int64
		want   string
	}{
		{0, "0ms"},
		{500, "500ms"},
		{1000, "1s"},
		{1500, "1500ms"},
		{60000, "1m"},
		{90000, "90s"},
		{120000, "2m"},
	}
	for _, tc := range cases {
		if got := FormatDurationMillis(tc.millis); got != tc.want {
			t.Fatalf("format %d: got %q want %q", tc.millis, got, tc.want)
		}
	}
}

func TestParseScalarTypes(t *testing.T) {
	cases := []struct {
		token string
		want  any
	}{
		{`"hello world"`, "hello world"},
		{`'single'`, "single"},
		{"true", true},
		{"false", false},
		{"42", int64(42)},
		{"-7", int64(-7)},
		{"2.5", 2.5},
		{"2.0", 2.0},
		{"1e5", 100000.0},
		{"nan", "nan"},
		{"inf", "inf"},
		{"-inf", "-inf"},
		{"bare_token", "bare_token"},
		{`"42"`, "42"},
	}
	for _, tc := range cases {
		if got := ParseScalar(tc.token); got != tc.want {
			t.Fatalf("parse %q: got %#v want %#v", tc.token, got, tc.want)
		}
	}
}

func TestFormatScalarRoundTrips(t *testing.T) {
	values := []any{
		"plain",
		"two words",
		"",
		"true",
		"42",
		true,
		false,
		int64(0),
		int64(-12),
		2.5,
		float64(2),
		float64(-7),
		1e21,
	}
	for _, value := range values {
		token := FormatScalar(value)
		if got := ParseScalar(token); got != value {
			t.Fatalf("round trip %#v: formatted %q reparsed as %#v", value, token, got)
		}
	}
}

func TestFormatScalarKeepsFloatsDecimal(t *testing.T) {
	cases := []struct {
		value float64
		want  string
	}{
		{2, "2.0"},
		{-7, "-7.0"},
		{2.5, "2.5"},
		{1e21, "1e+21"},
	}
	for _, tc := range cases {
		if got := FormatScalar(tc.value); got != tc.want {
			t.Fatalf("format %v: got %q want %q", tc.value, got, tc.want)
		}
	}
}
