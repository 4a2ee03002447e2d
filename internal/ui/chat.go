package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/ashwch/etherea/internal/apperr"
	"github.com/ashwch/etherea/internal/emotion"
)

// Exchange is one rendered round-trip.
type Exchange struct {
	Reply   string
	Emotion emotion.Emotion
	// Notice is the confirmation of an executed command.
	Notice string
	// Err is a command failure. It is shown and the session continues.
	Err error
}

// Responder answers one line of input. A returned error is shown like
// Exchange.Err; it does not end the session.
type Responder func(ctx context.Context, input string) (Exchange, error)

type ChatOptions struct {
	Backend  string
	Greeting string
	In       io.Reader
	Out      io.Writer
}

// Chat runs an interactive session until the user quits, input ends or ctx
// is cancelled. Backends are tried in order; plain is the last resort.
func Chat(ctx context.Context, opts ChatOptions, respond Responder) error {
	if opts.In == nil {
		opts.In = strings.NewReader("")
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}

	var firstErr error
	for _, candidate := range chatCandidates(opts.Backend) {
		var err error
		switch candidate {
		case BackendBubbleTea:
			err = chatWithBubbleTea(ctx, opts, respond)
		case BackendHuh:
			err = chatWithHuh(ctx, opts, respond)
		case BackendTView:
			err = chatWithTView(ctx, opts, respond)
		case BackendPlain:
			return chatPlain(ctx, opts, respond)
		}
		if err == nil {
			return nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// IsQuit reports whether input ends the session.
func IsQuit(input string) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "/quit", "/exit", "quit", "exit", ":q":
		return true
	default:
		return false
	}
}

func moodLabel(e emotion.Emotion) string {
	return fmt.Sprintf("[%s %.2f]", e.Mood, e.Intensity)
}

func answer(ctx context.Context, respond Responder, input string) Exchange {
	ex, err := respond(ctx, input)
	if err != nil && ex.Err == nil {
		ex.Err = err
	}
	return ex
}

// plainLines renders an exchange without styling.
func plainLines(ex Exchange) []string {
	lines := []string{fmt.Sprintf("etherea %s %s", moodLabel(ex.Emotion.Normalized()), ex.Reply)}
	if ex.Notice != "" {
		lines = append(lines, "  -> "+ex.Notice)
	}
	if ex.Err != nil {
		lines = append(lines, "  !! "+apperr.UserMessage(ex.Err))
	}
	return lines
}

func styledLines(ex Exchange) []string {
	lines := []string{MoodBadge(ex.Emotion) + " " + MoodStyle(ex.Emotion).Render(ex.Reply)}
	if ex.Notice != "" {
		lines = append(lines, noticeStyle.Render("  -> "+ex.Notice))
	}
	if ex.Err != nil {
		lines = append(lines, errorStyle.Render("  !! "+apperr.UserMessage(ex.Err)))
	}
	return lines
}

func chatPlain(ctx context.Context, opts ChatOptions, respond Responder) error {
	if opts.Greeting != "" {
		fmt.Fprintln(opts.Out, opts.Greeting)
	}
	scanner := bufio.NewScanner(opts.In)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		fmt.Fprint(opts.Out, "you> ")
		if !scanner.Scan() {
			fmt.Fprintln(opts.Out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if IsQuit(line) {
			return nil
		}
		for _, out := range plainLines(answer(ctx, respond, line)) {
			fmt.Fprintln(opts.Out, out)
		}
	}
}

func chatWithHuh(ctx context.Context, opts ChatOptions, respond Responder) error {
	if opts.Greeting != "" {
		fmt.Fprintln(opts.Out, opts.Greeting)
	}
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		line := ""
		prompt := huh.NewInput().
			Title("you").
			Placeholder("say something, /help, or /quit").
			Value(&line).
			WithTheme(huh.ThemeCharm())
		if err := prompt.Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if IsQuit(line) {
			return nil
		}
		fmt.Fprintln(opts.Out, userStyle.Render("you: ")+line)
		for _, out := range styledLines(answer(ctx, respond, line)) {
			fmt.Fprintln(opts.Out, out)
		}
	}
}

func chatWithTView(ctx context.Context, opts ChatOptions, respond Responder) error {
	app := tview.NewApplication()
	transcript := tview.NewTextView().
		SetDynamicColors(false).
		SetScrollable(true).
		SetWrap(true)
	transcript.SetBorder(true).SetTitle("etherea")
	if opts.Greeting != "" {
		fmt.Fprintln(transcript, opts.Greeting)
	}

	input := tview.NewInputField().SetLabel("you> ")
	input.SetDoneFunc(func(tcell.Key) {
		line := strings.TrimSpace(input.GetText())
		input.SetText("")
		if line == "" {
			return
		}
		if IsQuit(line) {
			app.Stop()
			return
		}
		fmt.Fprintln(transcript, "you: "+line)
		for _, out := range plainLines(answer(ctx, respond, line)) {
			fmt.Fprintln(transcript, out)
		}
		transcript.ScrollToEnd()
	})

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(transcript, 0, 1, false).
		AddItem(input, 1, 0, true)

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			app.Stop()
		case <-stop:
		}
	}()
	return app.SetRoot(layout, true).SetFocus(input).Run()
}

type exchangeMsg struct {
	input string
	ex    Exchange
}

type chatModel struct {
	ctx      context.Context
	respond  Responder
	input    textinput.Model
	view     viewport.Model
	lines    []string
	pending  bool
	quitting bool
}

func newChatModel(ctx context.Context, opts ChatOptions, respond Responder) chatModel {
	input := textinput.New()
	input.Placeholder = "say something, /help, or /quit"
	input.CharLimit = 4096
	input.Prompt = "you> "
	input.Focus()

	m := chatModel{
		ctx:     ctx,
		respond: respond,
		input:   input,
		view:    viewport.New(80, 20),
	}
	if opts.Greeting != "" {
		m.lines = append(m.lines, subtleStyle.Render(opts.Greeting))
	}
	m.view.SetContent(strings.Join(m.lines, "\n"))
	return m
}

func (m chatModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m chatModel) ask(line string) tea.Cmd {
	return func() tea.Msg {
		return exchangeMsg{input: line, ex: answer(m.ctx, m.respond, line)}
	}
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch k := msg.(type) {
	case tea.WindowSizeMsg:
		m.view.Width = k.Width
		m.view.Height = max(k.Height-3, 3)
		m.input.Width = max(k.Width-8, 10)
		m.view.SetContent(strings.Join(m.lines, "\n"))
		m.view.GotoBottom()
		return m, nil
	case exchangeMsg:
		m.pending = false
		m.lines = append(m.lines, userStyle.Render("you: ")+k.input)
		m.lines = append(m.lines, styledLines(k.ex)...)
		m.view.SetContent(strings.Join(m.lines, "\n"))
		m.view.GotoBottom()
		return m, nil
	case tea.KeyMsg:
		switch k.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			line := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			if line == "" || m.pending {
				return m, nil
			}
			if IsQuit(line) {
				m.quitting = true
				return m, tea.Quit
			}
			m.pending = true
			return m, m.ask(line)
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.view, cmd = m.view.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m chatModel) View() string {
	status := hintStyle.Render("[enter] send  [pgup/pgdown] scroll  [esc] quit")
	if m.pending {
		status = subtleStyle.Render("thinking...")
	}
	return strings.Join([]string{m.view.View(), m.input.View(), status}, "\n")
}

func chatWithBubbleTea(ctx context.Context, opts ChatOptions, respond Responder) error {
	_, err := tea.NewProgram(
		newChatModel(ctx, opts, respond),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
