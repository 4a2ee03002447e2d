package safety

import (
	"regexp"
	"strings"
)

// DefaultBannedPhrases never reach the user. Apostrophes match straight,
// curly, or missing.
var DefaultBannedPhrases = []string{
	"as an ai",
	"language model",
	"i can't because i'm ai",
	"i am an ai",
	"i'm an ai",
}

var horizontalSpace = regexp.MustCompile(`[ \t]+`)

type Sanitizer struct {
	phrases []*regexp.Regexp
}

// NewSanitizer bans the default phrases plus extra, in that order. Blank and
// duplicate phrases are skipped.
func NewSanitizer(extra ...string) *Sanitizer {
	s := &Sanitizer{}
	seen := map[string]struct{}{}
	for _, phrase := range append(append([]string(nil), DefaultBannedPhrases...), extra...) {
		phrase = strings.ToLower(strings.TrimSpace(phrase))
		if phrase == "" {
			continue
		}
		if _, ok := seen[phrase]; ok {
			continue
		}
		seen[phrase] = struct{}{}
		s.phrases = append(s.phrases, phrasePattern(phrase))
	}
	return s
}

func phrasePattern(phrase string) *regexp.Regexp {
	quoted := regexp.QuoteMeta(phrase)
	quoted = strings.ReplaceAll(quoted, "'", `['’]?`)
	quoted = strings.ReplaceAll(quoted, " ", `\s+`)
	if isWordByte(phrase[0]) {
		quoted = `\b` + quoted
	}
	if isWordByte(phrase[len(phrase)-1]) {
		quoted += `\b`
	}
	return regexp.MustCompile(`(?i)` + quoted)
}

func isWordByte(b byte) bool {
	return b == '_' || ('0' <= b && b <= '9') || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

// Sanitize removes every banned phrase and tidies the leftover whitespace.
// It runs to a fixpoint, so Sanitize(Sanitize(x)) == Sanitize(x).
func (s *Sanitizer) Sanitize(text string) string {
	for {
		next := text
		for _, phrase := range s.phrases {
			next = phrase.ReplaceAllString(next, "")
		}
		next = tidy(next)
		if next == text {
			return next
		}
		text = next
	}
}

func tidy(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(horizontalSpace.ReplaceAllString(line, " "))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Sanitize uses the default phrase list.
func Sanitize(text string) string {
	return defaultSanitizer.Sanitize(text)
}

var defaultSanitizer = NewSanitizer()
