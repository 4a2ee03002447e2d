package command

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// SlashListDepth is the depth /list and "list files" ask for when none is given.
const SlashListDepth = 4

type rule struct {
	id      string
	pattern *regexp.Regexp
	extract func(match []string) Command
}

// Parser turns raw input into at most one command. Slash input is handled by
// the verb table only; everything else goes through the ordered rules, first
// match wins.
type Parser struct {
	rules []rule
}

func NewParser() *Parser {
	return &Parser{rules: naturalRules()}
}

var defaultParser = NewParser()

// Parse uses the default rule set.
func Parse(text string) Command {
	return defaultParser.Parse(text)
}

// Parse returns nil when no command is recognised.
func (p *Parser) Parse(text string) Command {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if strings.HasPrefix(text, "/") {
		return parseSlash(text[1:])
	}
	for _, r := range p.rules {
		if match := r.pattern.FindStringSubmatch(text); match != nil {
			return r.extract(match)
		}
	}
	return nil
}

// RuleIDs lists the natural-language rules in evaluation order.
func (p *Parser) RuleIDs() []string {
	ids := make([]string, 0, len(p.rules))
	for _, r := range p.rules {
		ids = append(ids, r.id)
	}
	return ids
}

func parseSlash(body string) Command {
	body = strings.TrimSpace(body)
	verb, arg := body, ""
	if idx := strings.IndexFunc(body, unicode.IsSpace); idx >= 0 {
		verb, arg = body[:idx], strings.TrimSpace(body[idx:])
	}
	switch strings.ToLower(verb) {
	case "create":
		return CreateFile{Path: arg}
	case "edit":
		return EditFile{Path: arg}
	case "summarize":
		return SummarizeFile{Path: arg}
	case "list":
		if depth, err := strconv.Atoi(arg); err == nil && depth > 0 {
			return ListFiles{Depth: depth}
		}
		return ListFiles{Depth: SlashListDepth}
	case "theme":
		if arg == "" {
			return nil
		}
		return SetTheme{Preset: Ptr(strings.ToLower(arg))}
	case "motion":
		switch strings.ToLower(arg) {
		case "reduce", "reduced", "off":
			return SetTheme{ReducedMotion: Ptr(true)}
		case "on", "full":
			return SetTheme{ReducedMotion: Ptr(false)}
		}
		return nil
	case "help":
		return Help{}
	default:
		return nil
	}
}

func rx(pattern string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + pattern)
}

func constant(cmd Command) func([]string) Command {
	return func([]string) Command { return cmd }
}

// The order here is part of the contract: it decides which rule wins when
// more than one could match.
func naturalRules() []rule {
	return []rule{
		{
			id:      "create_file",
			pattern: rx(`create file\s+(\S+)(?:\s+with\s+([\s\S]+))?`),
			extract: func(m []string) Command { return CreateFile{Path: m[1], Content: m[2]} },
		},
		{
			id:      "edit_file",
			pattern: rx(`edit file\s+(\S+)\s+with\s+([\s\S]+)`),
			extract: func(m []string) Command { return EditFile{Path: m[1], Content: m[2]} },
		},
		{
			id:      "summarize_file",
			pattern: rx(`summarize file\s+(\S+)`),
			extract: func(m []string) Command { return SummarizeFile{Path: m[1]} },
		},
		{
			id:      "open_file",
			pattern: rx(`open file\s+(\S+)`),
			extract: func(m []string) Command { return OpenFile{Path: m[1]} },
		},
		{
			id:      "list_files",
			pattern: rx(`^list files(?:\s+(?:to\s+)?depth\s+(\d+))?`),
			extract: func(m []string) Command {
				if depth, err := strconv.Atoi(m[1]); err == nil && depth > 0 {
					return ListFiles{Depth: depth}
				}
				return ListFiles{Depth: SlashListDepth}
			},
		},
		{
			id:      "allow_workspace_root",
			pattern: rx(`allow workspace root(?:\s+(\S+))?`),
			extract: func(m []string) Command { return AllowWorkspaceRoot{Root: m[1]} },
		},
		{
			id:      "reduce_motion",
			pattern: rx(`toggle reduced motion`),
			extract: func([]string) Command { return SetTheme{ReducedMotion: Ptr(true)} },
		},
		{
			id:      "restore_motion",
			pattern: rx(`disable reduced motion`),
			extract: func([]string) Command { return SetTheme{ReducedMotion: Ptr(false)} },
		},
		{
			id:      "theme_preset",
			pattern: rx(`set theme preset\s+([\w-]+)`),
			extract: func(m []string) Command { return SetTheme{Preset: Ptr(strings.ToLower(m[1]))} },
		},
		{
			id:      "accent",
			pattern: rx(`set accent\s+(#[0-9a-f]{6})\b`),
			extract: func(m []string) Command { return SetTheme{Accent: Ptr(strings.ToLower(m[1]))} },
		},
		{
			id:      "voice_on",
			pattern: rx(`voice output on\b`),
			extract: constant(SetVoiceOutput{Enabled: true}),
		},
		{
			id:      "voice_off",
			pattern: rx(`voice output off\b`),
			extract: constant(SetVoiceOutput{Enabled: false}),
		},
		{
			id:      "mic_on",
			pattern: rx(`mic opt-in on\b|enable mic`),
			extract: constant(SetMicOptIn{Enabled: true}),
		},
		{
			id:      "mic_off",
			pattern: rx(`mic opt-in off\b|disable mic`),
			extract: constant(SetMicOptIn{Enabled: false}),
		},
	}
}
