package assistant

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/ashwch/etherea/internal/brain"
	"github.com/ashwch/etherea/internal/executor"
	"github.com/ashwch/etherea/internal/memory"
	"github.com/ashwch/etherea/internal/settings"
)

// SettingsSaver persists settings after a command changed them.
type SettingsSaver interface {
	SaveSettings(settings.Settings) error
}

// Journal receives save_memory records.
type Journal interface {
	Append(ctx context.Context, rec memory.Record) (memory.Record, error)
}

// Turn is one round-trip: the brain reply plus whatever the command did.
type Turn struct {
	Input  string
	Result brain.Result
	// Message is the executor confirmation. Empty when nothing ran.
	Message  string
	Executed bool
	Settings settings.Settings
	// CommandError is the typed executor failure, if any. The reply in
	// Result is still valid when it is set.
	CommandError error
}

type Assistant struct {
	engine   *brain.Engine
	executor *executor.Executor
	saver    SettingsSaver
	journal  Journal
	logger   *zap.Logger
	dryRun   bool

	mu       sync.Mutex
	settings settings.Settings
}

type Option func(*Assistant)

func WithSettings(s settings.Settings) Option {
	return func(a *Assistant) {
		a.settings = s.Normalize()
	}
}

func WithSaver(saver SettingsSaver) Option {
	return func(a *Assistant) {
		a.saver = saver
	}
}

func WithJournal(journal Journal) Option {
	return func(a *Assistant) {
		a.journal = journal
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(a *Assistant) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithDryRun keeps parsed commands from being executed.
func WithDryRun(enabled bool) Option {
	return func(a *Assistant) {
		a.dryRun = enabled
	}
}

func New(engine *brain.Engine, exec *executor.Executor, opts ...Option) *Assistant {
	if engine == nil {
		engine = brain.New()
	}
	if exec == nil {
		exec = executor.New(nil)
	}
	a := &Assistant{
		engine:   engine,
		executor: exec,
		logger:   zap.NewNop(),
		settings: settings.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Assistant) Engine() *brain.Engine {
	return a.engine
}

func (a *Assistant) Executor() *executor.Executor {
	return a.executor
}

func (a *Assistant) Settings() settings.Settings {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.settings.Clone()
}

// Handle runs one round-trip. The returned error is reserved for failures
// to persist settings; command failures land in Turn.CommandError.
func (a *Assistant) Handle(ctx context.Context, text string) (Turn, error) {
	if err := ctx.Err(); err != nil {
		return Turn{}, err
	}
	result := a.engine.Speak(ctx, text)

	a.mu.Lock()
	defer a.mu.Unlock()

	turn := Turn{Input: text, Result: result, Settings: a.settings.Clone()}
	if result.Command != nil && !a.dryRun {
		outcome, err := a.executor.Execute(ctx, result.Command, a.settings)
		turn.Executed = err == nil
		turn.Message = outcome.Message
		turn.Settings = outcome.Settings
		if err != nil {
			turn.CommandError = err
			a.logger.Debug("command failed", zap.String("command", string(result.Command.Name())), zap.Error(err))
		}
		if err == nil && outcome.Changed {
			if a.saver != nil {
				if err := a.saver.SaveSettings(outcome.Settings); err != nil {
					return turn, err
				}
			}
			a.settings = outcome.Settings.Clone()
		}
	}

	a.remember(ctx, text, result)
	return turn, nil
}

func (a *Assistant) remember(ctx context.Context, text string, result brain.Result) {
	if a.journal == nil || len(result.SaveMemory) == 0 {
		return
	}
	rec := memory.Record{
		Input: text,
		Data:  result.SaveMemory,
		Mood:  string(result.EmotionUpdate.Mood),
	}
	if _, err := a.journal.Append(ctx, rec); err != nil {
		a.logger.Warn("could not journal memory record", zap.Error(err))
	}
}
