package ui

import (
	"os"
	"strings"
)

const (
	BackendAuto      = "auto"
	BackendBubbleTea = "bubbletea"
	BackendHuh       = "huh"
	BackendTView     = "tview"
	BackendPlain     = "plain"
)

// stdinIsInteractive is swapped out in tests.
var stdinIsInteractive = isStdinInteractive

func NormalizeBackend(backend string) string {
	switch b := strings.ToLower(strings.TrimSpace(backend)); b {
	case BackendBubbleTea, BackendHuh, BackendTView, BackendPlain:
		return b
	default:
		return BackendAuto
	}
}

// IsInteractiveBackend reports whether backend draws a terminal UI. Auto
// degrades to plain when stdin is not a terminal.
func IsInteractiveBackend(backend string) bool {
	switch NormalizeBackend(backend) {
	case BackendPlain:
		return false
	case BackendAuto:
		return stdinIsInteractive()
	default:
		return true
	}
}

func backendCandidates(backend string) []string {
	switch NormalizeBackend(backend) {
	case BackendBubbleTea:
		return []string{BackendBubbleTea, BackendHuh, BackendTView}
	case BackendHuh:
		return []string{BackendHuh, BackendBubbleTea, BackendTView}
	case BackendTView:
		return []string{BackendTView, BackendBubbleTea, BackendHuh}
	case BackendPlain:
		return []string{BackendPlain}
	default:
		return []string{BackendBubbleTea, BackendHuh, BackendTView}
	}
}

// chatCandidates always ends in plain so a session can run on a pipe.
func chatCandidates(backend string) []string {
	if !IsInteractiveBackend(backend) {
		return []string{BackendPlain}
	}
	candidates := backendCandidates(backend)
	return append(candidates, BackendPlain)
}

func isStdinInteractive() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}
