package dom

import "testing"

func TestHeadingLevel(t *testing.T) {
	tests := []struct {
		tag  string
		want int
	}{
		{"h1", 1},
		{"h2", 2},
		{"H3", 3},
		{"h4", 4},
		{"h5", 5},
		{"H6", 6},
		{"h7", 0},
		{"p", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := HeadingLevel(tt.tag); got != tt.want {
			t.Errorf("tag=%q: expected %d, got %d", tt.tag, tt.want, got)
		}
	}
}
