package perm

import (
	"fmt"
	"testing"
)

func TestGenerateCounts(t *testing.T) {
	tests := []struct {
		n, limit, want int
	}{
		{0, 0, 1},
		{1, 0, 1},
		{4, 0, 24},
		{5, 7, 7},
		{6, -1, 720},
	}
	for _, tt := range tests {
		got := Generate(tt.n, tt.limit)
		if len(got) != tt.want {
			t.Errorf("Generate(%d, %d) returned %d, want %d", tt.n, tt.limit, len(got), tt.want)
		}
	}
}

func TestGenerateUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, p := range Generate(5, 0) {
		key := fmt.Sprint(p)
		if seen[key] {
			t.Fatalf("duplicate permutation %v", p)
		}
		seen[key] = true
	}
	if len(seen) != Factorial(5) {
		t.Errorf("got %d permutations, want %d", len(seen), Factorial(5))
	}
}

func TestSeq(t *testing.T) {
	if got := Seq(-2); len(got) != 0 {
		t.Errorf("Seq(-2) = %v", got)
	}
	if got := fmt.Sprint(Seq(3)); got != "[0 1 2]" {
		t.Errorf("Seq(3) = %s", got)
	}
}
