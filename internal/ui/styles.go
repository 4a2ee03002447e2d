package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ashwch/etherea/internal/emotion"
)

var moodColors = map[emotion.Mood]lipgloss.Color{
	emotion.MoodCalm:     lipgloss.Color("117"),
	emotion.MoodFocused:  lipgloss.Color("75"),
	emotion.MoodCurious:  lipgloss.Color("141"),
	emotion.MoodHype:     lipgloss.Color("208"),
	emotion.MoodCare:     lipgloss.Color("218"),
	emotion.MoodStressed: lipgloss.Color("203"),
}

// MoodStyle colors a reply by mood. Intensity above 0.7 renders bold.
func MoodStyle(e emotion.Emotion) lipgloss.Style {
	e = e.Normalized()
	color, ok := moodColors[e.Mood]
	if !ok {
		color = moodColors[emotion.MoodCalm]
	}
	return lipgloss.NewStyle().Foreground(color).Bold(e.Intensity > 0.7)
}

// MoodBadge renders "[mood 0.62]".
func MoodBadge(e emotion.Emotion) string {
	e = e.Normalized()
	return MoodStyle(e).Render(moodLabel(e))
}

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("99")).
			Padding(1, 2)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("141"))

	confirmTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("203"))

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("153"))

	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("248"))

	bodyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("109"))

	userStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252"))

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("114"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))
)
