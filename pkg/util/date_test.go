package util

import "testing"

func TestPrevMonthJanuary(t *testing.T) {
    y, m := PrevMonth(2025, 1)
    if y != 2024 || m != 12 {
        t.Fatalf("expected 2024-12, got %d-%d", y, m)
    }
}

func TestAddMonthsAcrossYearBoundary(t *testing.T) {
    y, m := AddMonths(2024, 11, 3)
    if y != 2025 || m != 2 {
        t.Fatalf("expected 2025-02, got %d-%d", y, m)
    }
}

func TestAddMonthsZeroStep(t *testing.T) {
    y, m := AddMonths(2025, 6, 0)
    if y != 2025 || m != 6 {
        t.Fatalf("expected identity, got %d-%d", y, m)
    }
}

func TestMonthDate(t *testing.T) {
    if got := MonthDate(2025, 3); got != "2025-03-01" {
        t.Fatalf("unexpected month date %q", got)
    }
}

func TestMonthIndexOrdering(t *testing.T) {
    if MonthIndex(2024, 12) >= MonthIndex(2025, 1) {
        t.Fatalf("expected 2024-12 to sort before 2025-01")
    }
}
