package assess

import "testing"

func TestNetWPM(t *testing.T) {
	cases := []struct {
		typed, mistakes, taken, want int
	}{
		{25, 0, 30, 10},
		{6, 1, 60, 0},
		{0, 0, 60, 0},
		{50, 0, 0, 0},
		{10, 9, 60, 0},
		{300, 4, 60, 56},
	}
	for _, tc := range cases {
		if got := NetWPM(tc.typed, tc.mistakes, tc.taken); got != tc.want {
			t.Fatalf("NetWPM(%d, %d, %d) = %d, want %d", tc.typed, tc.mistakes, tc.taken, got, tc.want)
		}
	}
}

func TestAccuracy(t *testing.T) {
	if got := Accuracy(0, 0); got != 0 {
		t.Fatalf("expected 0 for empty input, got %d", got)
	}
	if got := Accuracy(6, 1); got != 83 {
		t.Fatalf("expected 83, got %d", got)
	}
	if got := Accuracy(200, 20); got != 90 {
		t.Fatalf("expected 90, got %d", got)
	}
	if got := Accuracy(4, 4); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}
