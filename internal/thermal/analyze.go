package thermal

import "fmt"

// Issue flags a process anomaly found in the simulation results.
type Issue struct {
	Type      string  `json:"type"`
	Value     float64 `json:"value"`
	Threshold float64 `json:"threshold"`
	Message   string  `json:"message"`
}

type TemperatureStats struct {
	FinalMax float64 `json:"final_max"`
	FinalMin float64 `json:"final_min"`
	FinalAvg float64 `json:"final_avg"`
}

type CoolingStats struct {
	MaxCoolingRate float64 `json:"max_cooling_rate"`
	AvgCoolingRate float64 `json:"avg_cooling_rate"`
}

// Report is the immutable analysis output handed to the persistence
// collaborator. Field names are the report contract shared with the
// platform backend.
type Report struct {
	SimulationTime   float64          `json:"simulation_time"`
	NumSteps         int              `json:"num_steps"`
	TemperatureStats TemperatureStats `json:"temperature_stats"`
	CoolingStats     CoolingStats     `json:"cooling_stats"`
	PotentialIssues  []Issue          `json:"potential_issues"`
	History          []Sample         `json:"history"`
}

// Analyze derives the report from the current temperature field and the
// history trace. Cooling rates come from consecutive trace samples;
// pairs with a non-positive time delta are skipped. Final statistics
// cover material voxels, falling back to the field-wide values while
// nothing is deposited.
func (s *Simulator) Analyze() (*Report, error) {
	if s.grid == nil {
		return nil, ErrNoSimulationData
	}

	samples := s.history.Samples()

	rates := make([]float64, 0, len(samples))
	for i := 1; i < len(samples); i++ {
		dt := samples[i].Time - samples[i-1].Time
		if dt <= 0 {
			continue
		}
		rates = append(rates, (samples[i-1].MaxTemp-samples[i].MaxTemp)/dt)
	}

	maxRate, sumRate := 0.0, 0.0
	for i, r := range rates {
		if i == 0 || r > maxRate {
			maxRate = r
		}
		sumRate += r
	}
	avgRate := 0.0
	if len(rates) > 0 {
		avgRate = sumRate / float64(len(rates))
	}

	issues := make([]Issue, 0, 2)
	if maxRate > s.cfg.CoolingRateThreshold {
		issues = append(issues, Issue{
			Type:      "high_cooling_rate",
			Value:     maxRate,
			Threshold: s.cfg.CoolingRateThreshold,
			Message:   fmt.Sprintf("high cooling rate detected: %.2f°C/s", maxRate),
		})
	}

	fieldMax := s.fieldMax()
	if fieldMax > s.cfg.MaxTempThreshold {
		issues = append(issues, Issue{
			Type:      "high_temperature",
			Value:     fieldMax,
			Threshold: s.cfg.MaxTempThreshold,
			Message:   fmt.Sprintf("high temperature detected: %.2f°C", fieldMax),
		})
	}

	return &Report{
		SimulationTime:   s.clock,
		NumSteps:         s.steps,
		TemperatureStats: s.materialStats(),
		CoolingStats:     CoolingStats{MaxCoolingRate: maxRate, AvgCoolingRate: avgRate},
		PotentialIssues:  issues,
		History:          samples,
	}, nil
}

func (s *Simulator) fieldMax() float64 {
	maxT := s.grid.temp[0]
	for _, t := range s.grid.temp {
		if t > maxT {
			maxT = t
		}
	}
	return maxT
}

func (s *Simulator) materialStats() TemperatureStats {
	g := s.grid
	sum, count := 0.0, 0
	var maxT, minT float64

	for idx, t := range g.temp {
		if !g.occ[idx] {
			continue
		}
		if count == 0 || t > maxT {
			maxT = t
		}
		if count == 0 || t < minT {
			minT = t
		}
		sum += t
		count++
	}

	if count == 0 {
		// Nothing deposited: the whole field sits at its initial values.
		return TemperatureStats{
			FinalMax: s.fieldMax(),
			FinalMin: s.fieldMin(),
			FinalAvg: s.cfg.AmbientTemp,
		}
	}
	return TemperatureStats{FinalMax: maxT, FinalMin: minT, FinalAvg: sum / float64(count)}
}

func (s *Simulator) fieldMin() float64 {
	minT := s.grid.temp[0]
	for _, t := range s.grid.temp {
		if t < minT {
			minT = t
		}
	}
	return minT
}
