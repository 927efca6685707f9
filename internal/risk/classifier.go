package risk

// Level buckets a 0-100 risk score
type Level string

const (
	LevelLow      Level = "low"
	LevelMedium   Level = "medium"
	LevelHigh     Level = "high"
	LevelCritical Level = "critical"
)

// String returns the string representation of Level
func (l Level) String() string {
	return string(l)
}

// Glyph returns the marker used in formatted summaries
func (l Level) Glyph() string {
	switch l {
	case LevelLow:
		return "✓"
	case LevelMedium:
		return "~"
	case LevelHigh:
		return "!"
	case LevelCritical:
		return "!!"
	default:
		return "?"
	}
}

// Classify maps a numeric score to a risk level. The impact analyzer and
// the blast radius engine share these breakpoints.
func Classify(score float64) Level {
	switch {
	case score < 25:
		return LevelLow
	case score < 50:
		return LevelMedium
	case score < 75:
		return LevelHigh
	default:
		return LevelCritical
	}
}

// ClampScore bounds a risk score to [0, 100]
func ClampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// ClampConfidence bounds a confidence value to [0, 1]
func ClampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
