package crawler

import "testing"

func TestAtoiOr(t *testing.T) {
	cases := []struct {
		in   string
		def  int
		want int
	}{
		{"0", 0, 0},
		{"3", 0, 3},
		{" 2 ", 0, 2},
		{"", 0, 0},
		{"abc", 0, 0},
		{"1.5", 7, 7},
	}
	for _, c := range cases {
		if got := atoiOr(c.in, c.def); got != c.want {
			t.Errorf("atoiOr(%q, %d) = %d, want %d", c.in, c.def, got, c.want)
		}
	}
}

func TestExtractArea(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"철근콘크리트조 84.98㎡", "84.98"},
		{"59.95㎡ (18평형)", "59.95"},
		{"면적 정보 없음", ""},
		{"", ""},
		{"101동 1503호 101.22㎡ 중 34.01㎡", "101.22"},
	}
	for _, c := range cases {
		if got := extractArea(c.in); got != c.want {
			t.Errorf("extractArea(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestDottedDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"20241105", "2024.11.05"},
		{"20250101", "2025.01.01"},
		{"", ""},
		{"2024", "2024"}, // unexpected length passes through
	}
	for _, c := range cases {
		if got := dottedDate(c.in); got != c.want {
			t.Errorf("dottedDate(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
