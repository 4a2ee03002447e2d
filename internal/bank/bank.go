package bank

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ashwch/etherea/internal/emotion"
)

// DefaultIntentID names the fallback intent every bank must carry. It is
// never tried by pattern, it is only used when nothing else matches.
const DefaultIntentID = "default"

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForPath picks YAML for .yaml/.yml files and JSON otherwise.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

type document struct {
	Intents    map[string]intentDoc `json:"intents" yaml:"intents"`
	MicroLines map[string][]string  `json:"microLines" yaml:"microLines"`
}

type intentDoc struct {
	Patterns  []string `json:"patterns" yaml:"patterns"`
	Responses []string `json:"responses" yaml:"responses"`
	Emotion   *struct {
		Mood      string  `json:"mood" yaml:"mood"`
		Intensity float64 `json:"intensity" yaml:"intensity"`
	} `json:"emotion" yaml:"emotion"`
	Priority int `json:"priority" yaml:"priority"`
}

type Intent struct {
	ID        string
	Patterns  []string
	Responses []string
	Emotion   emotion.Emotion
	Priority  int

	matchers []*regexp.Regexp
}

// Matches reports whether any pattern matches text, case-insensitively.
func (i Intent) Matches(text string) bool {
	for _, matcher := range i.matchers {
		if matcher.MatchString(text) {
			return true
		}
	}
	return false
}

// Bank is an immutable, validated intent table.
type Bank struct {
	source     string
	ordered    []Intent
	fallback   Intent
	microLines map[emotion.Mood][]string
}

func (b *Bank) Source() string {
	return b.source
}

// Intents returns the matchable intents in matching order followed by the
// default intent.
func (b *Bank) Intents() []Intent {
	out := make([]Intent, 0, len(b.ordered)+1)
	out = append(out, b.ordered...)
	return append(out, b.fallback)
}

func (b *Bank) Default() Intent {
	return b.fallback
}

// Match returns the first intent whose patterns match text, or the default.
func (b *Bank) Match(text string) Intent {
	for _, intent := range b.ordered {
		if intent.Matches(text) {
			return intent
		}
	}
	return b.fallback
}

func (b *Bank) MicroLines(mood emotion.Mood) []string {
	lines := b.microLines[mood]
	return append([]string(nil), lines...)
}

// Parse decodes and validates a bank document. Any invalid intent rejects
// the whole bank.
func Parse(payload []byte, format Format, source string) (*Bank, error) {
	var doc document
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(payload, &doc); err != nil {
			return nil, fmt.Errorf("could not parse intent bank YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(payload, &doc); err != nil {
			return nil, fmt.Errorf("could not parse intent bank JSON: %w", err)
		}
	}
	return build(doc, source)
}

func build(doc document, source string) (*Bank, error) {
	if len(doc.Intents) == 0 {
		return nil, fmt.Errorf("intent bank has no intents")
	}
	b := &Bank{source: source, microLines: map[emotion.Mood][]string{}}

	hasDefault := false
	for id, raw := range doc.Intents {
		intent, err := buildIntent(strings.TrimSpace(id), raw)
		if err != nil {
			return nil, err
		}
		if intent.ID == DefaultIntentID {
			b.fallback = intent
			hasDefault = true
			continue
		}
		b.ordered = append(b.ordered, intent)
	}
	if !hasDefault {
		return nil, fmt.Errorf("intent bank missing %q intent", DefaultIntentID)
	}
	sort.Slice(b.ordered, func(i, j int) bool {
		if b.ordered[i].Priority != b.ordered[j].Priority {
			return b.ordered[i].Priority > b.ordered[j].Priority
		}
		return b.ordered[i].ID < b.ordered[j].ID
	})

	for rawMood, lines := range doc.MicroLines {
		mood, ok := emotion.ParseMood(rawMood)
		if !ok {
			return nil, fmt.Errorf("micro lines for unknown mood %q", rawMood)
		}
		lines = trimNonEmpty(lines)
		if len(lines) > 0 {
			b.microLines[mood] = lines
		}
	}
	return b, nil
}

func buildIntent(id string, raw intentDoc) (Intent, error) {
	if id == "" {
		return Intent{}, fmt.Errorf("intent bank has an intent with an empty id")
	}
	intent := Intent{
		ID:        id,
		Patterns:  trimNonEmpty(raw.Patterns),
		Responses: trimNonEmpty(raw.Responses),
		Priority:  raw.Priority,
	}
	if len(intent.Patterns) == 0 {
		return Intent{}, fmt.Errorf("intent %q has no patterns", id)
	}
	if len(intent.Responses) == 0 {
		return Intent{}, fmt.Errorf("intent %q has no responses", id)
	}
	if raw.Emotion == nil {
		return Intent{}, fmt.Errorf("intent %q has no emotion", id)
	}
	mood, ok := emotion.ParseMood(raw.Emotion.Mood)
	if !ok {
		return Intent{}, fmt.Errorf("intent %q has unknown mood %q", id, raw.Emotion.Mood)
	}
	intent.Emotion = emotion.Emotion{Mood: mood, Intensity: raw.Emotion.Intensity}

	for _, pattern := range intent.Patterns {
		matcher, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			return Intent{}, fmt.Errorf("intent %q has invalid pattern %q: %w", id, pattern, err)
		}
		intent.matchers = append(intent.matchers, matcher)
	}
	return intent, nil
}

func trimNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		out = append(out, value)
	}
	return out
}
