package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ashwch/etherea/internal/settings"
)

// OnboardingDecision is what the first-run screen changed.
type OnboardingDecision struct {
	KillSwitch    bool
	VoiceOutput   bool
	WorkspaceRoot string
}

// Apply merges the decision into s.
func (d OnboardingDecision) Apply(s settings.Settings) settings.Settings {
	s = s.Clone()
	if d.KillSwitch {
		s.PrivacyKillSwitch = true
	}
	if d.VoiceOutput {
		s.VoiceOutputEnabled = true
	}
	if root := strings.TrimSpace(d.WorkspaceRoot); root != "" && !s.HasWorkspaceRoot(root) {
		s.WorkspaceRoots = append(s.WorkspaceRoots, root)
	}
	return s.Normalize()
}

type onboardingMode int

const (
	onboardingModeMenu onboardingMode = iota
	onboardingModeEditRoot
)

type onboardingModel struct {
	current    settings.Settings
	rootInput  textinput.Model
	mode       onboardingMode
	decision   OnboardingDecision
	done       bool
	frameIndex int
}

type onboardingTickMsg struct{}

// Onboarding shows the first-run privacy screen. Only bubbletea renders it;
// used is false otherwise.
func Onboarding(backend string, current settings.Settings) (OnboardingDecision, bool, error) {
	if !IsInteractiveBackend(backend) {
		return OnboardingDecision{}, false, nil
	}
	var firstErr error
	for _, candidate := range backendCandidates(backend) {
		if candidate != BackendBubbleTea {
			continue
		}
		final, err := tea.NewProgram(newOnboardingModel(current), tea.WithAltScreen()).Run()
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		out, ok := final.(onboardingModel)
		if !ok {
			return OnboardingDecision{}, true, nil
		}
		return out.decision, true, nil
	}
	return OnboardingDecision{}, false, firstErr
}

func newOnboardingModel(current settings.Settings) onboardingModel {
	rootInput := textinput.New()
	rootInput.Placeholder = "~/notes"
	rootInput.CharLimit = 240
	rootInput.Width = 60
	return onboardingModel{current: current, rootInput: rootInput}
}

func (m onboardingModel) Init() tea.Cmd {
	return onboardingTickCmd()
}

func (m onboardingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch k := msg.(type) {
	case onboardingTickMsg:
		if m.done {
			return m, nil
		}
		m.frameIndex = (m.frameIndex + 1) % len(onboardingFrames)
		return m, onboardingTickCmd()
	case tea.KeyMsg:
		if m.mode == onboardingModeEditRoot {
			return m.updateEditMode(k)
		}
		return m.updateMenuMode(k)
	}
	if m.mode == onboardingModeEditRoot {
		var cmd tea.Cmd
		m.rootInput, cmd = m.rootInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m onboardingModel) updateMenuMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch strings.ToLower(msg.String()) {
	case "enter", "esc", "q", "ctrl+c":
		m.done = true
		return m, tea.Quit
	case "k":
		m.decision.KillSwitch = !m.decision.KillSwitch
	case "v":
		m.decision.VoiceOutput = !m.decision.VoiceOutput
	case "r":
		m.mode = onboardingModeEditRoot
		m.rootInput.Focus()
		return m, textinput.Blink
	}
	return m, nil
}

func (m onboardingModel) updateEditMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch strings.ToLower(msg.String()) {
	case "enter":
		m.decision.WorkspaceRoot = strings.TrimSpace(m.rootInput.Value())
		m.mode = onboardingModeMenu
		m.rootInput.Blur()
		return m, nil
	case "esc":
		m.mode = onboardingModeMenu
		m.rootInput.Blur()
		return m, nil
	case "ctrl+c":
		m.done = true
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.rootInput, cmd = m.rootInput.Update(msg)
	return m, cmd
}

func (m onboardingModel) View() string {
	if m.mode == onboardingModeEditRoot {
		return cardStyle.Render(strings.Join([]string{
			titleStyle.Render("etherea: workspace root"),
			"",
			bodyStyle.Render("Name a folder the assistant may treat as a workspace root."),
			"",
			m.rootInput.View(),
			"",
			hintStyle.Render("[enter] keep  [esc] back"),
		}, "\n"))
	}

	lines := []string{
		titleStyle.Render("etherea"),
		"",
		subtleStyle.Render(onboardingFrames[m.frameIndex%len(onboardingFrames)] + " everything stays on this machine"),
		"",
		sectionStyle.Render("privacy"),
		bodyStyle.Render(fmt.Sprintf("kill-switch (blocks mic): %s", onOff(m.decision.KillSwitch || m.current.PrivacyKillSwitch))),
		bodyStyle.Render(fmt.Sprintf("voice output:             %s", onOff(m.decision.VoiceOutput || m.current.VoiceOutputEnabled))),
		bodyStyle.Render(fmt.Sprintf("workspace root:           %s", orNone(m.decision.WorkspaceRoot))),
		"",
		hintStyle.Render("[k] toggle kill-switch  [v] toggle voice  [r] add root"),
		hintStyle.Render("[enter] continue"),
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}

func onboardingTickCmd() tea.Cmd {
	return tea.Tick(700*time.Millisecond, func(time.Time) tea.Msg {
		return onboardingTickMsg{}
	})
}

var onboardingFrames = []string{"·", "•", "●", "•"}

func onOff(enabled bool) string {
	if enabled {
		return "on"
	}
	return "off"
}

func orNone(value string) string {
	if strings.TrimSpace(value) == "" {
		return "none"
	}
	return value
}
