package emotion

import (
	"math"
	"strings"
)

type Mood string

const (
	MoodCalm     Mood = "calm"
	MoodFocused  Mood = "focused"
	MoodCurious  Mood = "curious"
	MoodHype     Mood = "hype"
	MoodCare     Mood = "care"
	MoodStressed Mood = "stressed"
)

// DefaultIntensity replaces any intensity that is not a finite number.
const DefaultIntensity = 0.5

var allMoods = []Mood{MoodCalm, MoodFocused, MoodCurious, MoodHype, MoodCare, MoodStressed}

type Emotion struct {
	Mood      Mood    `json:"mood" yaml:"mood"`
	Intensity float64 `json:"intensity" yaml:"intensity"`
}

func Moods() []Mood {
	return append([]Mood(nil), allMoods...)
}

func (m Mood) Valid() bool {
	for _, candidate := range allMoods {
		if m == candidate {
			return true
		}
	}
	return false
}

// ParseMood maps free-form input onto the closed mood set. Unknown input
// reports ok=false and yields calm.
func ParseMood(raw string) (Mood, bool) {
	mood := Mood(strings.ToLower(strings.TrimSpace(raw)))
	if mood.Valid() {
		return mood, true
	}
	return MoodCalm, false
}

func ClampIntensity(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return DefaultIntensity
	}
	switch {
	case x < 0:
		return 0
	case x > 1:
		return 1
	default:
		return x
	}
}

func Neutral() Emotion {
	return Emotion{Mood: MoodCalm, Intensity: DefaultIntensity}
}

func New(mood Mood, intensity float64) Emotion {
	return Emotion{Mood: mood, Intensity: intensity}.Normalized()
}

func (e Emotion) Normalized() Emotion {
	mood, _ := ParseMood(string(e.Mood))
	return Emotion{Mood: mood, Intensity: ClampIntensity(e.Intensity)}
}
