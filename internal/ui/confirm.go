package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/rivo/tview"
)

// ErrConfirmationRequired is returned when a destructive action needs a
// prompt but stdin is not a terminal.
var ErrConfirmationRequired = errors.New("confirmation requires an interactive terminal; rerun with --yes")

// ShouldProceed gates a destructive workspace action. yes skips the prompt.
// The plain backend reads a y/N answer from in.
func ShouldProceed(backend string, yes bool, action, detail string, in io.Reader, out io.Writer) (bool, error) {
	if yes {
		return true, nil
	}
	if !stdinIsInteractive() {
		return false, ErrConfirmationRequired
	}
	if NormalizeBackend(backend) != BackendPlain {
		approved, used, err := ConfirmDestructive(backend, action, detail)
		if used {
			return approved, nil
		}
		if err != nil {
			return false, err
		}
	}
	return confirmPlain(action, detail, in, out)
}

// ConfirmDestructive asks through the first backend that starts. used is
// false when no interactive backend could run.
func ConfirmDestructive(backend string, action string, detail string) (bool, bool, error) {
	var firstErr error
	for _, candidate := range backendCandidates(backend) {
		var (
			approved bool
			err      error
		)
		switch candidate {
		case BackendBubbleTea:
			approved, err = confirmWithBubbleTea(action, detail)
		case BackendHuh:
			approved, err = confirmWithHuh(action, detail)
		case BackendTView:
			approved, err = confirmWithTView(action, detail)
		default:
			continue
		}
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		return approved, true, nil
	}
	return false, false, firstErr
}

func confirmPlain(action, detail string, in io.Reader, out io.Writer) (bool, error) {
	fmt.Fprintf(out, "%s\n%s\nProceed? [y/N]: ", confirmTitle(action), strings.TrimSpace(detail))
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

func confirmTitle(action string) string {
	return fmt.Sprintf("%s?", strings.TrimSpace(action))
}

type bubbleConfirmModel struct {
	action   string
	detail   string
	approved bool
	done     bool
}

func (m bubbleConfirmModel) Init() tea.Cmd { return nil }

func (m bubbleConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch k := msg.(type) {
	case tea.KeyMsg:
		switch strings.ToLower(k.String()) {
		case "y":
			m.approved = true
			m.done = true
			return m, tea.Quit
		case "n", "esc", "ctrl+c", "enter":
			m.approved = false
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m bubbleConfirmModel) View() string {
	lines := []string{
		confirmTitleStyle.Render(confirmTitle(m.action)),
		"",
		m.detail,
		"",
		hintStyle.Render("[y] proceed  [n] cancel"),
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}

func confirmWithBubbleTea(action string, detail string) (bool, error) {
	model := bubbleConfirmModel{action: strings.TrimSpace(action), detail: strings.TrimSpace(detail)}
	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return false, err
	}
	out, ok := final.(bubbleConfirmModel)
	if !ok || !out.done {
		return false, nil
	}
	return out.approved, nil
}

func confirmWithHuh(action string, detail string) (bool, error) {
	approved := false
	prompt := huh.NewConfirm().
		Title(confirmTitle(action)).
		Description(strings.TrimSpace(detail)).
		Affirmative("Proceed").
		Negative("Cancel").
		Value(&approved).
		WithTheme(huh.ThemeCharm())
	if err := prompt.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return approved, nil
}

func confirmWithTView(action string, detail string) (bool, error) {
	app := tview.NewApplication()
	approved := false
	done := false

	text := fmt.Sprintf("%s\n\n%s", confirmTitle(action), strings.TrimSpace(detail))
	modal := tview.NewModal().
		SetText(text).
		AddButtons([]string{"Proceed", "Cancel"}).
		SetDoneFunc(func(_ int, label string) {
			done = true
			approved = strings.EqualFold(strings.TrimSpace(label), "proceed")
			app.Stop()
		})

	if err := app.SetRoot(modal, true).Run(); err != nil {
		return false, err
	}
	if !done {
		return false, nil
	}
	return approved, nil
}
