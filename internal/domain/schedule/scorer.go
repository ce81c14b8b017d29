package schedule

import (
	"fmt"
	"math"
	"strings"
)

// Scorer turns a weather sample into a 0-100 score using a weight table.
type Scorer struct {
	weights Weights
}

// NewScorer builds a scorer for the given weight table.
func NewScorer(weights Weights) Scorer {
	return Scorer{weights: weights}
}

// Score starts at 100 and deducts the precipitation, wind, temperature and
// condition penalties independently.
func (s Scorer) Score(w WeatherSample, t Thresholds) int {
	w8 := s.weights
	penalty := math.Min(w.PrecipitationChance/math.Max(t.MaxPrecipitation, 1), 1) * w8.Precipitation
	if t.MaxWindSpeed != nil {
		penalty += math.Min(w.WindSpeedKph/math.Max(*t.MaxWindSpeed, 1), 1) * w8.Wind
	}
	penalty += math.Min(math.Abs(w.TemperatureC-IdealTemperatureC)*w8.PerDegree, w8.Temperature)
	if _, avoided := matchAvoided(w.Condition, t.AvoidConditions); avoided {
		penalty += w8.Condition
	}
	return clampScore(100 - penalty)
}

func clampScore(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(math.Round(math.Max(0, math.Min(100, v))))
}

// IsAcceptable is the hard filter. Values exactly at a threshold pass.
func IsAcceptable(w WeatherSample, t Thresholds) bool {
	if w.PrecipitationChance > t.MaxPrecipitation {
		return false
	}
	if t.MaxWindSpeed != nil && w.WindSpeedKph > *t.MaxWindSpeed {
		return false
	}
	if t.MinTemperature != nil && w.TemperatureC < *t.MinTemperature {
		return false
	}
	if t.MaxTemperature != nil && w.TemperatureC > *t.MaxTemperature {
		return false
	}
	_, avoided := matchAvoided(w.Condition, t.AvoidConditions)
	return !avoided
}

// QualityFor maps a score onto its tier; each band includes its lower edge.
func QualityFor(score int) Quality {
	switch {
	case score >= 80:
		return QualityExcellent
	case score >= 60:
		return QualityGood
	case score >= 40:
		return QualityFair
	default:
		return QualityPoor
	}
}

// RejectionReasons explains every hard constraint the sample fails.
func RejectionReasons(w WeatherSample, t Thresholds) []string {
	var reasons []string
	if w.PrecipitationChance > t.MaxPrecipitation {
		reasons = append(reasons, fmt.Sprintf("Precipitation chance %d%% exceeds your limit of %d%%",
			whole(w.PrecipitationChance), whole(t.MaxPrecipitation)))
	}
	if t.MaxWindSpeed != nil && w.WindSpeedKph > *t.MaxWindSpeed {
		reasons = append(reasons, fmt.Sprintf("Wind speed %d km/h exceeds your limit of %d km/h",
			whole(w.WindSpeedKph), whole(*t.MaxWindSpeed)))
	}
	if t.MinTemperature != nil && w.TemperatureC < *t.MinTemperature {
		reasons = append(reasons, fmt.Sprintf("Temperature %d°C is below your minimum of %d°C",
			whole(w.TemperatureC), whole(*t.MinTemperature)))
	}
	if t.MaxTemperature != nil && w.TemperatureC > *t.MaxTemperature {
		reasons = append(reasons, fmt.Sprintf("Temperature %d°C is above your maximum of %d°C",
			whole(w.TemperatureC), whole(*t.MaxTemperature)))
	}
	if match, avoided := matchAvoided(w.Condition, t.AvoidConditions); avoided {
		reasons = append(reasons, fmt.Sprintf("Conditions (%s) include %q, which you prefer to avoid", w.Condition, match))
	}
	return reasons
}

// matchAvoided returns the first avoided string found in condition, case-insensitively.
func matchAvoided(condition string, avoid []string) (string, bool) {
	lower := strings.ToLower(condition)
	for _, a := range avoid {
		needle := strings.ToLower(strings.TrimSpace(a))
		if needle == "" {
			continue
		}
		if strings.Contains(lower, needle) {
			return a, true
		}
	}
	return "", false
}

func whole(v float64) int {
	return int(math.Round(v))
}
