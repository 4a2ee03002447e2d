package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/rivo/tview"

	"github.com/ashwch/etherea/internal/settings"
)

type presetOption struct {
	Label  string
	Preset string
}

// SelectPreset lets the user pick a theme preset. used is false when no
// interactive backend ran; an empty preset with used=true means cancelled.
func SelectPreset(backend string, current string) (string, bool, error) {
	options := buildPresetOptions(current)

	var firstErr error
	for _, candidate := range backendCandidates(backend) {
		var (
			selected string
			used     bool
			err      error
		)
		switch candidate {
		case BackendBubbleTea:
			selected, used, err = selectWithBubbleTea(options)
		case BackendHuh:
			selected, used, err = selectWithHuh(current, options)
		case BackendTView:
			selected, used, err = selectWithTView(options)
		default:
			continue
		}
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if used {
			return selected, true, nil
		}
	}
	return "", false, firstErr
}

// buildPresetOptions lists presets alphabetically with the current one first.
func buildPresetOptions(current string) []presetOption {
	current = strings.ToLower(strings.TrimSpace(current))
	options := make([]presetOption, 0, len(settings.PresetAccents))
	for _, preset := range settings.Presets() {
		label := fmt.Sprintf("%s  %s", preset, settings.PresetAccents[preset])
		if preset == current {
			options = append([]presetOption{{Label: "[current] " + label, Preset: preset}}, options...)
			continue
		}
		options = append(options, presetOption{Label: label, Preset: preset})
	}
	return options
}

func selectWithHuh(current string, options []presetOption) (string, bool, error) {
	huhOptions := make([]huh.Option[string], 0, len(options))
	for _, option := range options {
		huhOptions = append(huhOptions, huh.NewOption(option.Label, option.Preset))
	}
	choice := options[0].Preset

	prompt := huh.NewSelect[string]().
		Title("etherea theme").
		Description(fmt.Sprintf("Current preset: %s", current)).
		Options(huhOptions...).
		Height(huhSelectHeight(len(huhOptions))).
		Value(&choice).
		WithTheme(huh.ThemeCharm())

	if err := prompt.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", true, nil
		}
		return "", false, err
	}
	return choice, true, nil
}

type bubblePresetItem struct {
	label  string
	preset string
}

func (i bubblePresetItem) Title() string       { return i.label }
func (i bubblePresetItem) Description() string { return "" }
func (i bubblePresetItem) FilterValue() string { return i.preset }

type bubbleSelectorModel struct {
	list      list.Model
	selection string
	cancelled bool
	options   int
}

func (m bubbleSelectorModel) Init() tea.Cmd { return nil }

func (m bubbleSelectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch k := msg.(type) {
	case tea.WindowSizeMsg:
		width, height := bubblePickerSize(k.Width, k.Height, m.options)
		m.list.SetSize(width, height)
		return m, nil
	case tea.KeyMsg:
		switch k.String() {
		case "q", "esc", "ctrl+c":
			m.cancelled = true
			return m, tea.Quit
		case "enter":
			if item, ok := m.list.SelectedItem().(bubblePresetItem); ok {
				m.selection = item.preset
			}
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m bubbleSelectorModel) View() string {
	return m.list.View()
}

func newBubbleSelectorModel(options []presetOption) bubbleSelectorModel {
	items := make([]list.Item, 0, len(options))
	for _, option := range options {
		items = append(items, bubblePresetItem{label: option.Label, preset: option.Preset})
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)

	width, height := bubblePickerSize(80, 24, len(items))
	picker := list.New(items, delegate, width, height)
	picker.Title = "etherea theme"
	picker.SetShowHelp(false)
	picker.SetFilteringEnabled(false)
	return bubbleSelectorModel{list: picker, options: len(items)}
}

func selectWithBubbleTea(options []presetOption) (string, bool, error) {
	final, err := tea.NewProgram(newBubbleSelectorModel(options), tea.WithAltScreen()).Run()
	if err != nil {
		return "", false, err
	}
	out, ok := final.(bubbleSelectorModel)
	if !ok || out.cancelled {
		return "", true, nil
	}
	return out.selection, true, nil
}

func selectWithTView(options []presetOption) (string, bool, error) {
	app := tview.NewApplication()
	listView := tview.NewList()
	listView.SetBorder(true)
	listView.SetTitle("etherea theme")
	listView.ShowSecondaryText(false)

	selected := ""
	for _, option := range options {
		current := option
		listView.AddItem(current.Label, "", 0, func() {
			selected = current.Preset
			app.Stop()
		})
	}
	listView.SetDoneFunc(func() {
		app.Stop()
	})

	if err := app.SetRoot(listView, true).SetFocus(listView).Run(); err != nil {
		return "", false, err
	}
	return selected, true, nil
}

func clampInt(v, minV, maxV int) int {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

func bubblePickerSize(termWidth, termHeight, optionCount int) (int, int) {
	if termWidth <= 0 {
		termWidth = 80
	}
	if termHeight <= 0 {
		termHeight = 24
	}
	if optionCount < 1 {
		optionCount = 1
	}

	minWidth := min(32, termWidth)
	width := clampInt(termWidth-4, minWidth, termWidth)

	desiredHeight := clampInt(optionCount, 3, 12) + 6
	maxHeight := termHeight - 2
	if maxHeight <= 0 {
		maxHeight = max(termHeight, 1)
	}
	minHeight := min(8, maxHeight)
	return width, clampInt(desiredHeight, minHeight, maxHeight)
}

func huhSelectHeight(optionCount int) int {
	return clampInt(max(optionCount, 1)+1, 4, 10)
}
