package forecast

// History is the append-only rolling buffer fed into each recursive
// step. Predicted steps are appended as if realized, so step N+1 sees
// step N's output as history. Runs must not share a buffer: Clone
// before each scenario run.
type History struct {
	growths          []float64
	currentTotal     float64
	prevTotal        float64
	activeFacilities int

	// Facility concentration of the base period. Predicted steps roll
	// totals forward but not the per-facility split, so these stay the
	// latest known values for the whole run.
	hhi  float64
	top1 float64
}

// NewHistory seeds the buffer from realized observations. Growths are
// ordered oldest first.
func NewHistory(currentTotal, prevTotal float64, activeFacilities int, hhi, top1 float64, growths []float64) *History {
	return &History{
		growths:          append([]float64{}, growths...),
		currentTotal:     currentTotal,
		prevTotal:        prevTotal,
		activeFacilities: activeFacilities,
		hhi:              hhi,
		top1:             top1,
	}
}

// Clone returns an independent copy so scenario runs stay isolated.
func (h *History) Clone() *History {
	return NewHistory(h.currentTotal, h.prevTotal, h.activeFacilities, h.hhi, h.top1, h.growths)
}

// Append records a predicted growth rate and rolls the totals forward.
func (h *History) Append(growth float64) {
	h.growths = append(h.growths, growth)
	h.prevTotal = h.currentTotal
	h.currentTotal = h.currentTotal * (1 + growth)
}

// Last returns the most recent growth observation, 0 when empty.
func (h *History) Last() float64 {
	if len(h.growths) == 0 {
		return 0
	}
	return h.growths[len(h.growths)-1]
}

// Len is the number of growth observations in the buffer.
func (h *History) Len() int { return len(h.growths) }

// Growths returns a copy of the buffer, oldest first.
func (h *History) Growths() []float64 {
	return append([]float64{}, h.growths...)
}
