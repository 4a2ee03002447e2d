package assistant

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/ashwch/etherea/internal/appdirs"
	"github.com/ashwch/etherea/internal/apperr"
	"github.com/ashwch/etherea/internal/bank"
	"github.com/ashwch/etherea/internal/brain"
	"github.com/ashwch/etherea/internal/config"
	"github.com/ashwch/etherea/internal/executor"
	"github.com/ashwch/etherea/internal/kv"
	"github.com/ashwch/etherea/internal/memory"
	"github.com/ashwch/etherea/internal/safety"
	"github.com/ashwch/etherea/internal/workspace"
)

// Session owns everything opened for one process: the workspace backend,
// the journal and the assistant wired on top of them.
type Session struct {
	*Assistant
	Store   *workspace.Store
	Journal *memory.Journal
	closers []func() error
}

type SessionOptions struct {
	Config     config.Config
	ConfigPath string
	Logger     *zap.Logger
	DryRun     bool
}

func Open(opts SessionOptions) (*Session, error) {
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Session{}
	backend, closer, err := OpenBackend(cfg)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		s.closers = append(s.closers, closer)
	}
	s.Store = workspace.NewStore(backend)

	if cfg.Memory.Journal {
		journal, err := memory.OpenDefault(memory.WithRedaction(cfg.Memory.Redact))
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		s.Journal = journal
	}

	provider := bank.NewProvider(
		bank.LoaderFor(bank.Sources{File: cfg.Brain.BankPath, URL: cfg.Brain.BankURL}),
		bank.WithLogger(logger.Named("bank")),
	)
	engine := brain.New(
		brain.WithProvider(provider),
		brain.WithSanitizer(safety.NewSanitizer(cfg.Brain.BannedPhrases...)),
		brain.WithMicroLines(cfg.Brain.MicroLines),
		brain.WithLogger(logger.Named("brain")),
	)
	exec := executor.New(s.Store, executor.WithLogger(logger.Named("executor")))

	assistantOpts := []Option{
		WithSettings(cfg.Settings),
		WithLogger(logger),
		WithDryRun(opts.DryRun),
	}
	if opts.ConfigPath != "" {
		assistantOpts = append(assistantOpts, WithSaver(&config.FileSaver{Path: opts.ConfigPath, Base: cfg}))
	}
	if s.Journal != nil {
		assistantOpts = append(assistantOpts, WithJournal(s.Journal))
	}
	s.Assistant = New(engine, exec, assistantOpts...)
	return s, nil
}

// OpenBackend picks the workspace backend named in the config. The returned
// closer is nil for backends that hold no resources.
func OpenBackend(cfg config.Config) (workspace.Backend, func() error, error) {
	path, err := cfg.WorkspacePath()
	if err != nil {
		return nil, nil, err
	}
	switch cfg.Workspace.Backend {
	case config.WorkspaceMemory:
		return workspace.NewMemoryBackend(), nil, nil
	case config.WorkspaceKV:
		if cfg.Workspace.Path == "" {
			if _, err := appdirs.EnsureStateDir(); err != nil {
				return nil, nil, apperr.StorageUnavailable("could not open workspace", err)
			}
		}
		store, err := kv.OpenFile(path)
		if err != nil {
			return nil, nil, apperr.StorageUnavailable("could not open workspace", err)
		}
		return workspace.NewKVBackend(store, workspace.DefaultKVKey), nil, nil
	case config.WorkspaceSQLite:
		if cfg.Workspace.Path == "" {
			if _, err := appdirs.EnsureStateDir(); err != nil {
				return nil, nil, apperr.StorageUnavailable("could not open workspace", err)
			}
		} else if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, nil, apperr.StorageUnavailable("could not create workspace dir", err)
		}
		db, err := workspace.OpenSQLite(path)
		if err != nil {
			return nil, nil, apperr.StorageUnavailable("could not open workspace", err)
		}
		return db, db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown workspace backend: %s", cfg.Workspace.Backend)
	}
}

func (s *Session) Close() error {
	var err error
	for i := len(s.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, s.closers[i]())
	}
	s.closers = nil
	return err
}
