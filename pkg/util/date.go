package util

import "fmt"

// PrevMonth returns the calendar month preceding (year, month).
func PrevMonth(year, month int) (int, int) {
    if month == 1 {
        return year - 1, 12
    }
    return year, month - 1
}

// NextMonth returns the calendar month following (year, month).
func NextMonth(year, month int) (int, int) {
    if month == 12 {
        return year + 1, 1
    }
    return year, month + 1
}

// AddMonths advances (year, month) by step months. Step must be >= 0.
func AddMonths(year, month, step int) (int, int) {
    y, m := year, month
    for i := 0; i < step; i++ {
        y, m = NextMonth(y, m)
    }
    return y, m
}

// MonthDate formats (year, month) as the first-of-month date string used across payloads.
func MonthDate(year, month int) string {
    return fmt.Sprintf("%04d-%02d-01", year, month)
}

// MonthIndex maps (year, month) onto a monotonically increasing counter,
// useful for ordering panel slices without building time.Time values.
func MonthIndex(year, month int) int {
    return year*12 + (month - 1)
}
