package media

import "testing"

func TestParseStreamInfo(t *testing.T) {
	info, err := parseStreamInfo("1920,1080,30000/1001\n")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if info.Width != 1920 || info.Height != 1080 {
		t.Fatalf("dimensions = %dx%d, want 1920x1080", info.Width, info.Height)
	}
	if info.FPS < 29.96 || info.FPS > 29.98 {
		t.Fatalf("fps = %f, want ~29.97", info.FPS)
	}
}

func TestParseStreamInfoTrailingComma(t *testing.T) {
	// Some containers emit a trailing field separator.
	info, err := parseStreamInfo("640,480,30/1,\n")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if info.Width != 640 || info.Height != 480 || info.FPS != 30 {
		t.Fatalf("unexpected info: %+v", info)
	}
}

func TestParseStreamInfoGarbage(t *testing.T) {
	for _, raw := range []string{"", "abc", "640,480", "a,b,c"} {
		if _, err := parseStreamInfo(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestParseRate(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
	}{
		{"30/1", 30},
		{"25", 25},
		{"24000/1001", 23.976023976023978},
	}
	for _, tc := range cases {
		got, err := parseRate(tc.raw)
		if err != nil {
			t.Fatalf("parseRate(%q): %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("parseRate(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}

	for _, raw := range []string{"", "x/1", "30/0", "30/x"} {
		if _, err := parseRate(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}
