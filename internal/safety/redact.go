package safety

import "regexp"

const secretWords = `(?:token|secret|password|passwd|passcode|pin|api[_-]?key|access[_-]?key)`

const secretValue = `([^\s"']+|"[^"]*"|'[^']*')`

type redactionRule struct {
	pattern     *regexp.Regexp
	replacement string
}

// Ordered: assignments first so "password=x" is not caught by the looser
// conversational rules.
var secretRedactionRules = []redactionRule{
	{
		pattern:     regexp.MustCompile(`(?i)\b([a-z0-9_]*` + secretWords + `[a-z0-9_]*)\s*[=:]\s*` + secretValue),
		replacement: `$1=<redacted>`,
	},
	{
		pattern:     regexp.MustCompile(`(?i)\b(authorization\s*:\s*bearer)\s+([^\s"']+)`),
		replacement: `$1 <redacted>`,
	},
	{
		pattern:     regexp.MustCompile(`(?i)\b(my\s+` + secretWords + `\s+(?:is|was))\s+` + secretValue),
		replacement: `$1 <redacted>`,
	},
	{
		pattern:     regexp.MustCompile(`(?i)\b(sk|ghp|gho|xox[abp])[-_][a-z0-9_-]{10,}`),
		replacement: `<redacted>`,
	},
}

// RedactText scrubs secret-looking values from text before it is written to
// the memory journal.
func RedactText(input string) string {
	redacted := input
	for _, rule := range secretRedactionRules {
		redacted = rule.pattern.ReplaceAllString(redacted, rule.replacement)
	}
	return redacted
}
