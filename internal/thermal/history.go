package thermal

// Sample is one decimated reading of the temperature field. Max and min
// cover the whole field; the average covers material voxels only and
// falls back to ambient while nothing is deposited.
type Sample struct {
	Time    float64 `json:"time"`
	MaxTemp float64 `json:"max_temp"`
	MinTemp float64 `json:"min_temp"`
	AvgTemp float64 `json:"avg_temp"`
}

// History is the append-only decimated trace of a run. Samples are
// appended by the stepper once every interval steps; readers get copies.
type History struct {
	samples []Sample
}

func (h *History) append(s Sample) {
	h.samples = append(h.samples, s)
}

func (h *History) Len() int {
	return len(h.samples)
}

// Samples returns a copy of the trace, oldest first.
func (h *History) Samples() []Sample {
	out := make([]Sample, len(h.samples))
	copy(out, h.samples)
	return out
}
