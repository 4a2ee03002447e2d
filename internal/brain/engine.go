package brain

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/ashwch/etherea/internal/bank"
	"github.com/ashwch/etherea/internal/command"
	"github.com/ashwch/etherea/internal/emotion"
	"github.com/ashwch/etherea/internal/knowledge"
	"github.com/ashwch/etherea/internal/safety"
)

const (
	EmptyReply = "I'm listening. Say a command or ask for a lesson."

	introReply = "Emotional intelligence means noticing state, naming it, then choosing a useful action. " +
		"Etherea maps your cues to mood, adapts UI motion, and keeps the full loop local by default."

	quietReply = "Tell me your target. I will route the next action."
)

var (
	teachPattern = regexp.MustCompile(`(?i)\bteach(?:\s+me)?(?:\s+about)?\s+(.+)`)
	teachFiller  = regexp.MustCompile(`(?i)^(?:me\b\s*)?(?:about\b\s*)?`)
	introPattern = regexp.MustCompile(`(?i)what is emotional intelligence|\bei intro\b|\bexplain ei\b|^ei$`)
)

var (
	teachEmotion = emotion.Emotion{Mood: emotion.MoodFocused, Intensity: 0.72}
	introEmotion = emotion.Emotion{Mood: emotion.MoodCare, Intensity: 0.62}
)

// Result is one reply. It is built fresh for every call.
type Result struct {
	Response      string
	Command       command.Command
	SaveMemory    map[string]any
	EmotionUpdate emotion.Emotion
}

func (r Result) MarshalJSON() ([]byte, error) {
	cmd, err := command.Marshal(r.Command)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		Response      string          `json:"response"`
		Command       json.RawMessage `json:"command"`
		SaveMemory    map[string]any  `json:"save_memory"`
		EmotionUpdate emotion.Emotion `json:"emotion_update"`
	}{
		Response:      r.Response,
		Command:       cmd,
		SaveMemory:    r.SaveMemory,
		EmotionUpdate: r.EmotionUpdate,
	})
}

type Engine struct {
	provider   *bank.Provider
	sanitizer  *safety.Sanitizer
	parser     *command.Parser
	logger     *zap.Logger
	microLines bool
}

type Option func(*Engine)

func WithProvider(p *bank.Provider) Option {
	return func(e *Engine) {
		if p != nil {
			e.provider = p
		}
	}
}

func WithSanitizer(s *safety.Sanitizer) Option {
	return func(e *Engine) {
		if s != nil {
			e.sanitizer = s
		}
	}
}

func WithParser(p *command.Parser) Option {
	return func(e *Engine) {
		if p != nil {
			e.parser = p
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMicroLines toggles the mood suffix line on intent replies.
func WithMicroLines(enabled bool) Option {
	return func(e *Engine) {
		e.microLines = enabled
	}
}

func New(opts ...Option) *Engine {
	e := &Engine{
		sanitizer:  safety.NewSanitizer(),
		parser:     command.NewParser(),
		logger:     zap.NewNop(),
		microLines: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.provider == nil {
		e.provider = bank.NewProvider(nil, bank.WithLogger(e.logger))
	}
	return e
}

// Speak never fails. Identical text against the same bank always produces
// the same result.
func (e *Engine) Speak(ctx context.Context, input string) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("brain recovered from panic", zap.Any("panic", r))
			result = emptyResult()
		}
	}()

	text := strings.TrimSpace(input)
	if text == "" {
		return emptyResult()
	}

	cmd := e.parser.Parse(text)

	if m := teachPattern.FindStringSubmatch(text); m != nil {
		if res, ok := e.teach(strings.TrimSpace(m[1]), cmd); ok {
			return res
		}
	}

	if introPattern.MatchString(text) {
		return Result{
			Response:      e.sanitizer.Sanitize(introReply),
			Command:       cmd,
			SaveMemory:    map[string]any{"topic": "ei_intro", "used": true},
			EmotionUpdate: introEmotion,
		}
	}

	b := e.provider.Get(ctx)
	intent := b.Match(text)
	lowered := strings.ToLower(text)

	reply := pick(intent.ID+":"+lowered, intent.Responses)
	if e.microLines {
		if line := pick(lowered, b.MicroLines(intent.Emotion.Mood)); line != "" {
			reply += " " + line
		}
	}
	reply = e.sanitizer.Sanitize(reply)
	if reply == "" {
		reply = quietReply
	}

	mood := intent.Emotion.Normalized()
	e.logger.Debug("intent selected",
		zap.String("intent", intent.ID),
		zap.String("mood", string(mood.Mood)),
		zap.Bool("command", cmd != nil),
	)
	return Result{
		Response:      reply,
		Command:       cmd,
		SaveMemory:    map[string]any{"last_intent": intent.ID, "last_intent_mood": string(mood.Mood)},
		EmotionUpdate: mood,
	}
}

func (e *Engine) teach(topic string, cmd command.Command) (Result, bool) {
	topic = strings.TrimRight(teachFiller.ReplaceAllString(topic, ""), ".!? ")
	if topic == "" {
		return Result{}, false
	}
	lesson, _, err := knowledge.For(topic)
	if err != nil {
		e.logger.Warn("lesson catalog unavailable", zap.Error(err))
		return Result{}, false
	}
	return Result{
		Response:      e.sanitizer.Sanitize(lesson.Render(topic)),
		Command:       cmd,
		SaveMemory:    map[string]any{"topic": strings.ToLower(topic), "used": true},
		EmotionUpdate: teachEmotion,
	}, true
}

// BankSource reports which bank the engine resolved.
func (e *Engine) BankSource(ctx context.Context) string {
	return e.provider.Source(ctx)
}

// BankLoadError is the failure that caused the built-in bank to be used.
func (e *Engine) BankLoadError(ctx context.Context) error {
	return e.provider.LoadError(ctx)
}

// Bank exposes the resolved bank for inspection.
func (e *Engine) Bank(ctx context.Context) *bank.Bank {
	return e.provider.Get(ctx)
}

func emptyResult() Result {
	return Result{
		Response:      EmptyReply,
		EmotionUpdate: emotion.Neutral(),
	}
}
