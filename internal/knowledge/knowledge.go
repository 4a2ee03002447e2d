package knowledge

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
)

//go:embed lessons.json
var lessonsJSON []byte

const topicPlaceholder = "{topic}"

// Lesson is a short structured explanation. Text fields may contain the
// {topic} placeholder until Render fills it in.
type Lesson struct {
	Definition string   `json:"definition"`
	Example    string   `json:"example"`
	Steps      []string `json:"steps"`
	Questions  []string `json:"questions"`
	Exercise   string   `json:"exercise"`
}

type catalog struct {
	Generic Lesson            `json:"generic"`
	Topics  map[string]Lesson `json:"topics"`
}

var (
	catalogOnce  sync.Once
	catalogCache catalog
	catalogErr   error
)

func loadCatalog() (catalog, error) {
	catalogOnce.Do(func() {
		var c catalog
		if err := json.Unmarshal(lessonsJSON, &c); err != nil {
			catalogErr = fmt.Errorf("could not parse lessons JSON: %w", err)
			return
		}
		if err := c.Generic.validate(); err != nil {
			catalogErr = fmt.Errorf("generic lesson: %w", err)
			return
		}
		normalized := make(map[string]Lesson, len(c.Topics))
		for topic, lesson := range c.Topics {
			if err := lesson.validate(); err != nil {
				catalogErr = fmt.Errorf("lesson %q: %w", topic, err)
				return
			}
			normalized[normalizeTopic(topic)] = lesson
		}
		c.Topics = normalized
		catalogCache = c
	})
	return catalogCache, catalogErr
}

func (l Lesson) validate() error {
	switch {
	case strings.TrimSpace(l.Definition) == "":
		return fmt.Errorf("missing definition")
	case strings.TrimSpace(l.Example) == "":
		return fmt.Errorf("missing example")
	case len(l.Steps) == 0:
		return fmt.Errorf("missing steps")
	case len(l.Questions) == 0 || len(l.Questions) > 2:
		return fmt.Errorf("needs one or two check questions")
	case strings.TrimSpace(l.Exercise) == "":
		return fmt.Errorf("missing exercise")
	}
	return nil
}

func normalizeTopic(topic string) string {
	return strings.Join(strings.Fields(strings.ToLower(topic)), " ")
}

// Topics lists the topics with a tailored lesson, sorted.
func Topics() []string {
	c, err := loadCatalog()
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(c.Topics))
	for topic := range c.Topics {
		out = append(out, topic)
	}
	sort.Strings(out)
	return out
}

// For returns the tailored lesson for topic, or the generic template. The
// bool reports whether a tailored lesson existed.
func For(topic string) (Lesson, bool, error) {
	c, err := loadCatalog()
	if err != nil {
		return Lesson{}, false, err
	}
	if lesson, ok := c.Topics[normalizeTopic(topic)]; ok {
		return lesson, true, nil
	}
	return c.Generic, false, nil
}

// Render lays the lesson out one section per line, with topic inserted
// verbatim.
func (l Lesson) Render(topic string) string {
	fill := func(s string) string {
		return strings.ReplaceAll(s, topicPlaceholder, topic)
	}
	steps := make([]string, 0, len(l.Steps))
	for i, step := range l.Steps {
		steps = append(steps, fmt.Sprintf("(%d) %s", i+1, fill(step)))
	}
	questions := make([]string, 0, len(l.Questions))
	for _, q := range l.Questions {
		questions = append(questions, fill(q))
	}
	return strings.Join([]string{
		"Definition: " + fill(l.Definition),
		"Example: " + fill(l.Example),
		"Steps: " + strings.Join(steps, ", "),
		"Check questions: " + strings.Join(questions, " "),
		"Exercise: " + fill(l.Exercise),
	}, "\n")
}
