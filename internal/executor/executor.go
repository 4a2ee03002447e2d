package executor

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/ashwch/etherea/internal/apperr"
	"github.com/ashwch/etherea/internal/command"
	"github.com/ashwch/etherea/internal/settings"
	"github.com/ashwch/etherea/internal/workspace"
)

const (
	DefaultListDepth = 3
	PreviewRunes     = 120

	EmptyWorkspaceMessage = "Workspace is empty."
	NoActionMessage       = "No action executed."
)

// Outcome is what a command did. Settings is always the full record to use
// from now on, Changed reports whether it differs from the input.
type Outcome struct {
	Message  string
	Settings settings.Settings
	Changed  bool
}

type Executor struct {
	store  *workspace.Store
	logger *zap.Logger
}

type Option func(*Executor)

func WithLogger(logger *zap.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func New(store *workspace.Store, opts ...Option) *Executor {
	if store == nil {
		store = workspace.NewStore(nil)
	}
	e := &Executor{store: store, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Executor) Store() *workspace.Store {
	return e.store
}

// Execute runs cmd against the workspace and current settings. Only fields
// the command is about are touched.
func (e *Executor) Execute(ctx context.Context, cmd command.Command, current settings.Settings) (Outcome, error) {
	current = current.Clone()
	unchanged := Outcome{Settings: current}
	if cmd == nil {
		unchanged.Message = NoActionMessage
		return unchanged, nil
	}
	e.logger.Debug("executing command", zap.String("command", string(cmd.Name())))

	switch c := cmd.(type) {
	case command.CreateFile:
		return e.writeFile(ctx, c.Path, c.Content, "Created", current)
	case command.EditFile:
		return e.writeFile(ctx, c.Path, c.Content, "Updated", current)
	case command.SummarizeFile:
		msg, err := e.summarize(ctx, c.Path)
		unchanged.Message = msg
		return unchanged, err
	case command.ListFiles:
		msg, err := e.list(ctx, c.Depth)
		unchanged.Message = msg
		return unchanged, err
	case command.OpenFile:
		path := workspace.NormalizePath(c.Path)
		if path == "" {
			return unchanged, apperr.InvalidArgument("open_file needs a path")
		}
		unchanged.Message = "Opening " + path + "."
		return unchanged, nil
	case command.SetTheme:
		return e.setTheme(c, current)
	case command.SetMicOptIn:
		return e.setMic(c, current)
	case command.SetVoiceOutput:
		next := current.Clone()
		next.VoiceOutputEnabled = c.Enabled
		return changed(current, next, "Voice output "+onOff(c.Enabled)+"."), nil
	case command.AllowWorkspaceRoot:
		return e.allowRoot(c, current)
	case command.Help:
		unchanged.Message = HelpMessage()
		return unchanged, nil
	default:
		e.logger.Debug("ignoring unknown command", zap.String("command", string(cmd.Name())))
		unchanged.Message = NoActionMessage
		return unchanged, nil
	}
}

// HelpMessage lists the whole command vocabulary.
func HelpMessage() string {
	names := command.Names()
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, string(name))
	}
	return "Commands: " + strings.Join(parts, ", ") + "."
}

func (e *Executor) writeFile(ctx context.Context, rawPath, content, verb string, current settings.Settings) (Outcome, error) {
	path := workspace.NormalizePath(rawPath)
	if path == "" {
		return Outcome{Settings: current}, apperr.InvalidArgument("a file path is required")
	}
	node, err := e.store.Upsert(ctx, workspace.Node{Path: path, Content: content, Type: workspace.TypeFile})
	if err != nil {
		return Outcome{Settings: current}, err
	}
	return Outcome{
		Message:  fmt.Sprintf("%s %s.", verb, node.Path),
		Settings: current,
	}, nil
}

func (e *Executor) summarize(ctx context.Context, rawPath string) (string, error) {
	path := workspace.NormalizePath(rawPath)
	if path == "" {
		return "", apperr.InvalidArgument("summarize_file needs a path")
	}
	node, ok, err := e.store.Get(ctx, path)
	if err != nil {
		return "", err
	}
	if !ok || node.IsFolder() {
		return "", apperr.NotFound("No file at " + path + ".").WithContext("path", path)
	}
	return Summarize(node), nil
}

// Summarize renders "<path>: N lines, M chars. Preview: ...". Empty lines
// are not counted; whitespace-only lines are.
func Summarize(node workspace.Node) string {
	lines := 0
	for _, line := range strings.Split(node.Content, "\n") {
		if line != "" {
			lines++
		}
	}
	chars := utf8.RuneCountInString(node.Content)
	return fmt.Sprintf("%s: %d lines, %d chars. Preview: %s", node.Path, lines, chars, preview(node.Content))
}

func preview(content string) string {
	if utf8.RuneCountInString(content) <= PreviewRunes {
		return content
	}
	return string([]rune(content)[:PreviewRunes])
}

func (e *Executor) list(ctx context.Context, depth int) (string, error) {
	if depth <= 0 {
		depth = DefaultListDepth
	}
	nodes, err := e.store.List(ctx)
	if err != nil {
		return "", err
	}
	var lines []string
	for _, node := range nodes {
		if node.Depth() > depth {
			continue
		}
		icon := "📄"
		if node.IsFolder() {
			icon = "📁"
		}
		lines = append(lines, icon+" "+node.Path)
	}
	if len(lines) == 0 {
		return EmptyWorkspaceMessage, nil
	}
	return strings.Join(lines, "\n"), nil
}

func (e *Executor) setTheme(c command.SetTheme, current settings.Settings) (Outcome, error) {
	next := current.Clone()
	if c.Preset != nil {
		preset := strings.ToLower(strings.TrimSpace(*c.Preset))
		if preset != "" {
			next.Preset = preset
			if c.Accent == nil {
				if accent, ok := settings.AccentFor(preset); ok {
					next.Accent = accent
				}
			}
		}
	}
	if c.Accent != nil {
		accent := strings.ToLower(strings.TrimSpace(*c.Accent))
		if settings.ValidAccent(accent) {
			next.Accent = accent
		}
	}
	if c.Glow != nil {
		next.Glow = settings.ClampGlow(*c.Glow)
	}
	if c.Rounded != nil && *c.Rounded >= 0 {
		next.Rounded = *c.Rounded
	}
	if c.ReducedMotion != nil {
		next.ReducedMotion = *c.ReducedMotion
	}
	return changed(current, next, describeTheme(next)), nil
}

func describeTheme(s settings.Settings) string {
	motion := "full"
	if s.ReducedMotion {
		motion = "reduced"
	}
	return fmt.Sprintf("Theme set: %s (%s), glow %.2f, rounded %d, motion %s.", s.Preset, s.Accent, s.Glow, s.Rounded, motion)
}

func (e *Executor) setMic(c command.SetMicOptIn, current settings.Settings) (Outcome, error) {
	if c.Enabled && current.PrivacyKillSwitch {
		e.logger.Warn("mic opt-in blocked by privacy kill-switch")
		return Outcome{Settings: current}, apperr.PolicyViolation("mic cannot be enabled while the privacy kill-switch is on")
	}
	next := current.Clone()
	next.MicOptIn = c.Enabled
	return changed(current, next, "Mic opt-in "+onOff(c.Enabled)+"."), nil
}

func (e *Executor) allowRoot(c command.AllowWorkspaceRoot, current settings.Settings) (Outcome, error) {
	root := strings.TrimSpace(c.Root)
	if root == "" {
		return Outcome{Settings: current}, apperr.InvalidArgument("allow_workspace_root needs a root")
	}
	if current.HasWorkspaceRoot(root) {
		return Outcome{Message: "Workspace root " + root + " is already allowed.", Settings: current}, nil
	}
	next := current.Clone()
	next.WorkspaceRoots = append(next.WorkspaceRoots, root)
	return changed(current, next, "Workspace root "+root+" allowed."), nil
}

func changed(before, after settings.Settings, msg string) Outcome {
	return Outcome{Message: msg, Settings: after, Changed: !equal(before, after)}
}

func equal(a, b settings.Settings) bool {
	if !slices.Equal(a.WorkspaceRoots, b.WorkspaceRoots) {
		return false
	}
	a.WorkspaceRoots, b.WorkspaceRoots = nil, nil
	return reflect.DeepEqual(a, b)
}

func onOff(enabled bool) string {
	if enabled {
		return "on"
	}
	return "off"
}
