package format

import "testing"

func TestInterpolate(t *testing.T) {
	got := Interpolate("Most reacted messages (%current/%total)", map[string]interface{}{
		"current": 2,
		"total":   4,
	})
	if got != "Most reacted messages (2/4)" {
		t.Fatalf("unexpected result %q", got)
	}
}

func TestInterpolateLeavesUnknownMarkers(t *testing.T) {
	got := Interpolate("%count reactions for %who", map[string]interface{}{"count": 3})
	if got != "3 reactions for %who" {
		t.Fatalf("unexpected result %q", got)
	}
}

func TestEllipsis(t *testing.T) {
	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 50, "short"},
		{"exactly-ten", 11, "exactly-ten"},
		{"this one is definitely longer than ten", 10, "this on..."},
		{"héllo wörld with ünïcode content here", 12, "héllo wör..."},
		{"ab", 1, "a"},
	}
	for _, c := range cases {
		if got := Ellipsis(c.in, c.max); got != c.want {
			t.Fatalf("Ellipsis(%q, %d) = %q, want %q", c.in, c.max, got, c.want)
		}
	}
}
