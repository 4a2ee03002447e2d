package executor

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ashwch/etherea/internal/apperr"
	"github.com/ashwch/etherea/internal/command"
	"github.com/ashwch/etherea/internal/settings"
	"github.com/ashwch/etherea/internal/workspace"
)

func newExecutor() *Executor {
	clock := func() time.Time { return time.UnixMilli(1_700_000_000_000) }
	return New(workspace.NewStore(workspace.NewMemoryBackend(), workspace.WithClock(clock)))
}

func TestCreateEditAndSummarize(t *testing.T) {
	ctx := context.Background()
	exec := newExecutor()
	current := settings.Default()

	out, err := exec.Execute(ctx, command.CreateFile{Path: "notes/today.md"}, current)
	require.NoError(t, err)
	require.Equal(t, "Created notes/today.md.", out.Message)
	require.False(t, out.Changed)

	_, err = exec.Execute(ctx, command.EditFile{Path: "notes/today.md", Content: "first line\n\n  \nsecond line"}, current)
	require.NoError(t, err)

	out, err = exec.Execute(ctx, command.SummarizeFile{Path: "notes/today.md"}, current)
	require.NoError(t, err)
	require.Equal(t, "notes/today.md: 3 lines, 26 chars. Preview: first line\n\n  \nsecond line", out.Message)

	node, ok, err := exec.Store().Get(ctx, "notes/today.md")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(1_700_000_000_000), node.UpdatedAt)
}

func TestSummarizePreviewIsTruncated(t *testing.T) {
	long := strings.Repeat("é", 150)
	got := Summarize(workspace.Node{Path: "long.txt", Content: long})
	require.Equal(t, "long.txt: 1 lines, 150 chars. Preview: "+strings.Repeat("é", PreviewRunes), got)
}

func TestSummarizeMissingFileIsNotFound(t *testing.T) {
	_, err := newExecutor().Execute(context.Background(), command.SummarizeFile{Path: "ghost.md"}, settings.Default())
	require.Error(t, err)
	require.True(t, apperr.IsCode(err, apperr.CodeNotFound))
}

func TestEmptyPathIsInvalidArgument(t *testing.T) {
	exec := newExecutor()
	for _, cmd := range []command.Command{
		command.CreateFile{Path: "   "},
		command.EditFile{Path: ""},
		command.SummarizeFile{Path: "/"},
		command.OpenFile{},
		command.AllowWorkspaceRoot{},
	} {
		_, err := exec.Execute(context.Background(), cmd, settings.Default())
		require.Truef(t, apperr.IsCode(err, apperr.CodeInvalidArgument), "%s: got %v", cmd.Name(), err)
	}
}

func TestListFilesDepthAndOrder(t *testing.T) {
	ctx := context.Background()
	exec := newExecutor()
	store := exec.Store()
	for _, node := range []workspace.Node{
		{Path: "zeta.md"},
		{Path: "docs", Type: workspace.TypeFolder},
		{Path: "docs/a/b/deep.md"},
		{Path: "docs/guide.md"},
		{Path: "alpha.md"},
	} {
		_, err := store.Upsert(ctx, node)
		require.NoError(t, err)
	}

	out, err := exec.Execute(ctx, command.ListFiles{}, settings.Default())
	require.NoError(t, err)
	require.Equal(t, "📄 alpha.md\n📁 docs\n📄 docs/guide.md\n📄 zeta.md", out.Message)

	out, err = exec.Execute(ctx, command.ListFiles{Depth: 4}, settings.Default())
	require.NoError(t, err)
	require.Contains(t, out.Message, "📄 docs/a/b/deep.md")

	out, err = exec.Execute(ctx, command.ListFiles{Depth: 1}, settings.Default())
	require.NoError(t, err)
	require.Equal(t, "📄 alpha.md\n📁 docs\n📄 zeta.md", out.Message)
}

func TestListEmptyWorkspace(t *testing.T) {
	out, err := newExecutor().Execute(context.Background(), command.ListFiles{Depth: 4}, settings.Default())
	require.NoError(t, err)
	require.Equal(t, EmptyWorkspaceMessage, out.Message)
}

func TestOpenFileEchoesPath(t *testing.T) {
	exec := newExecutor()
	out, err := exec.Execute(context.Background(), command.OpenFile{Path: "docs/readme.md"}, settings.Default())
	require.NoError(t, err)
	require.Equal(t, "Opening docs/readme.md.", out.Message)
	nodes, err := exec.Store().List(context.Background())
	require.NoError(t, err)
	require.Empty(t, nodes)
}

func TestSetThemePresetResolvesAccent(t *testing.T) {
	current := settings.Default()
	current.MicOptIn = true
	current.Mode = "playful"

	out, err := newExecutor().Execute(context.Background(), command.SetTheme{Preset: command.Ptr("Sunset")}, current)
	require.NoError(t, err)
	require.True(t, out.Changed)
	require.Equal(t, "sunset", out.Settings.Preset)
	require.Equal(t, "#f97316", out.Settings.Accent)
	require.Equal(t, current.Glow, out.Settings.Glow)
	require.True(t, out.Settings.MicOptIn)
	require.Equal(t, "playful", out.Settings.Mode)
}

func TestSetThemeMergesExplicitFields(t *testing.T) {
	current := settings.Default()
	cmd := command.SetTheme{
		Preset:        command.Ptr("forest"),
		Accent:        command.Ptr("#ABCDEF"),
		Glow:          command.Ptr(3.0),
		Rounded:       command.Ptr(4),
		ReducedMotion: command.Ptr(true),
	}
	out, err := newExecutor().Execute(context.Background(), cmd, current)
	require.NoError(t, err)
	require.Equal(t, "forest", out.Settings.Preset)
	require.Equal(t, "#abcdef", out.Settings.Accent)
	require.Equal(t, 1.0, out.Settings.Glow)
	require.Equal(t, 4, out.Settings.Rounded)
	require.True(t, out.Settings.ReducedMotion)

	out, err = newExecutor().Execute(context.Background(), command.SetTheme{Accent: command.Ptr("teal")}, current)
	require.NoError(t, err)
	require.False(t, out.Changed)
	require.Equal(t, current.Accent, out.Settings.Accent)
}

func TestMicBlockedByKillSwitch(t *testing.T) {
	current := settings.Default()
	current.PrivacyKillSwitch = true

	out, err := newExecutor().Execute(context.Background(), command.SetMicOptIn{Enabled: true}, current)
	require.Error(t, err)
	require.True(t, apperr.IsCode(err, apperr.CodePolicyViolation))
	require.False(t, out.Settings.MicOptIn)
	require.False(t, out.Changed)

	out, err = newExecutor().Execute(context.Background(), command.SetMicOptIn{Enabled: false}, current)
	require.NoError(t, err)
	require.False(t, out.Settings.MicOptIn)
}

func TestMicAndVoiceToggles(t *testing.T) {
	exec := newExecutor()
	out, err := exec.Execute(context.Background(), command.SetMicOptIn{Enabled: true}, settings.Default())
	require.NoError(t, err)
	require.True(t, out.Changed)
	require.True(t, out.Settings.MicOptIn)
	require.Equal(t, "Mic opt-in on.", out.Message)

	out, err = exec.Execute(context.Background(), command.SetVoiceOutput{Enabled: true}, out.Settings)
	require.NoError(t, err)
	require.True(t, out.Settings.VoiceOutputEnabled)
	require.True(t, out.Settings.MicOptIn)
}

func TestAllowWorkspaceRoot(t *testing.T) {
	exec := newExecutor()
	out, err := exec.Execute(context.Background(), command.AllowWorkspaceRoot{Root: "~/src"}, settings.Default())
	require.NoError(t, err)
	require.True(t, out.Changed)
	require.Equal(t, []string{"~/src"}, out.Settings.WorkspaceRoots)

	again, err := exec.Execute(context.Background(), command.AllowWorkspaceRoot{Root: "~/src"}, out.Settings)
	require.NoError(t, err)
	require.False(t, again.Changed)
	require.Equal(t, []string{"~/src"}, again.Settings.WorkspaceRoots)
}

func TestHelpAndUnknown(t *testing.T) {
	exec := newExecutor()
	out, err := exec.Execute(context.Background(), command.Help{}, settings.Default())
	require.NoError(t, err)
	for _, name := range command.Names() {
		require.Contains(t, out.Message, string(name))
	}
	require.True(t, strings.HasPrefix(out.Message, "Commands: "))

	out, err = exec.Execute(context.Background(), command.Unknown{Raw: "reboot"}, settings.Default())
	require.NoError(t, err)
	require.Equal(t, NoActionMessage, out.Message)

	out, err = exec.Execute(context.Background(), nil, settings.Default())
	require.NoError(t, err)
	require.Equal(t, NoActionMessage, out.Message)
}
