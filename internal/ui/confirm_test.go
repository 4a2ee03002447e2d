package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestShouldProceedYesBypassesPrompt(t *testing.T) {
	withInteractive(t, false)
	ok, err := ShouldProceed("auto", true, "Delete notes", "2 nodes", strings.NewReader(""), &bytes.Buffer{})
	if err != nil || !ok {
		t.Fatalf("expected --yes to proceed, got ok=%v err=%v", ok, err)
	}
}

func TestShouldProceedRequiresTerminal(t *testing.T) {
	withInteractive(t, false)
	_, err := ShouldProceed("auto", false, "Delete notes", "", strings.NewReader("y\n"), &bytes.Buffer{})
	if !errors.Is(err, ErrConfirmationRequired) {
		t.Fatalf("expected ErrConfirmationRequired, got %v", err)
	}
}

func TestShouldProceedPlainReadsAnswer(t *testing.T) {
	withInteractive(t, true)
	for input, want := range map[string]bool{"y\n": true, "YES\n": true, "n\n": false, "\n": false, "": false} {
		var out bytes.Buffer
		ok, err := ShouldProceed("plain", false, "Delete notes", "removes 3 nodes", strings.NewReader(input), &out)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", input, err)
		}
		if ok != want {
			t.Fatalf("input %q: expected %v, got %v", input, want, ok)
		}
		if !strings.Contains(out.String(), "Delete notes?") || !strings.Contains(out.String(), "[y/N]") {
			t.Fatalf("unexpected prompt %q", out.String())
		}
	}
}

func TestBubbleConfirmModelKeys(t *testing.T) {
	model := bubbleConfirmModel{action: "Delete notes"}
	updated, _ := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})
	out := updated.(bubbleConfirmModel)
	if !out.done || !out.approved {
		t.Fatalf("expected approval on y")
	}

	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	out = updated.(bubbleConfirmModel)
	if !out.done || out.approved {
		t.Fatalf("expected enter to cancel")
	}
	if !strings.Contains(model.View(), "Delete notes?") {
		t.Fatalf("view should carry the action")
	}
}
