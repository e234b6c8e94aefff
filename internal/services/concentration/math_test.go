package concentration

import (
	"math"
	"testing"
)

func almostEqual(a, b, eps float64) bool { return math.Abs(a-b) <= eps }

func TestSharesAndHHIWorkedExample(t *testing.T) {
	// counts {china: 80, korea: 20}
	shares, total := Shares([]float64{80, 20})
	if total != 100 {
		t.Fatalf("total = %v, want 100", total)
	}
	if !almostEqual(shares[0], 0.8, 1e-12) || !almostEqual(shares[1], 0.2, 1e-12) {
		t.Fatalf("shares = %v", shares)
	}
	if got := HHI(shares); !almostEqual(got, 0.68, 1e-12) {
		t.Fatalf("HHI = %v, want 0.68", got)
	}
	entropy := Entropy(shares)
	if !almostEqual(entropy, 0.5004, 1e-4) {
		t.Fatalf("entropy = %v, want ~0.5004", entropy)
	}
	norm := NormalizedEntropy(entropy, 2)
	if !almostEqual(norm, 0.722, 1e-3) {
		t.Fatalf("normalized entropy = %v, want ~0.722", norm)
	}
	if got := Top1(shares); !almostEqual(got, 0.8, 1e-12) {
		t.Fatalf("top1 = %v, want 0.8", got)
	}
}

func TestSharesZeroTotal(t *testing.T) {
	shares, total := Shares([]float64{0, 0, 0})
	if total != 0 {
		t.Fatalf("total = %v, want 0", total)
	}
	for i, s := range shares {
		if s != 0 {
			t.Fatalf("share[%d] = %v, want 0", i, s)
		}
	}
}

func TestHHIBounds(t *testing.T) {
	cases := [][]float64{
		{1, 1, 1, 1},
		{100, 0, 0},
		{3, 7},
		{5, 5, 5, 5, 5, 5},
	}
	for _, counts := range cases {
		shares, total := Shares(counts)
		if total <= 0 {
			continue
		}
		hhi := HHI(shares)
		n := float64(ActiveCount(counts))
		if hhi < 1/n-1e-12 || hhi > 1+1e-12 {
			t.Fatalf("HHI %v out of [1/N, 1] for %v", hhi, counts)
		}
	}
}

func TestHHIEqualsOneForSingleCategory(t *testing.T) {
	shares, _ := Shares([]float64{0, 42, 0})
	if got := HHI(shares); !almostEqual(got, 1.0, 1e-12) {
		t.Fatalf("HHI = %v, want 1", got)
	}
	if got := Entropy(shares); !almostEqual(got, 0, 1e-12) {
		t.Fatalf("entropy = %v, want 0", got)
	}
}

func TestNormalizedEntropySingleActive(t *testing.T) {
	if got := NormalizedEntropy(0, 1); got != 0 {
		t.Fatalf("normalized entropy = %v, want 0 for one active category", got)
	}
	if got := NormalizedEntropy(0.5, 0); got != 0 {
		t.Fatalf("normalized entropy = %v, want 0 for no active categories", got)
	}
}

func TestNormalizedEntropyWithinUnit(t *testing.T) {
	shares, _ := Shares([]float64{10, 20, 30, 40})
	norm := NormalizedEntropy(Entropy(shares), 4)
	if norm < 0 || norm > 1 {
		t.Fatalf("normalized entropy %v out of [0,1]", norm)
	}
}

func TestTopKFewerThanK(t *testing.T) {
	shares, _ := Shares([]float64{60, 40})
	if got := TopK(shares, 10); !almostEqual(got, 1.0, 1e-12) {
		t.Fatalf("top10 over 2 facilities = %v, want 1", got)
	}
}

func TestTop1NotAboveTopK(t *testing.T) {
	shares, _ := Shares([]float64{5, 30, 25, 10, 30})
	top1 := Top1(shares)
	top10 := TopK(shares, 10)
	if top1 > top10 {
		t.Fatalf("top1 %v > top10 %v", top1, top10)
	}
	if top1 < 1/float64(ActiveCount(shares)) {
		t.Fatalf("top1 %v below 1/N_active", top1)
	}
}

func TestTop1Index(t *testing.T) {
	if idx := Top1Index([]float64{3, 9, 1}); idx != 1 {
		t.Fatalf("idx = %d, want 1", idx)
	}
	if idx := Top1Index(nil); idx != -1 {
		t.Fatalf("idx = %d, want -1 for empty", idx)
	}
}
