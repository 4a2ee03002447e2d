package ui

import "testing"

func withInteractive(t *testing.T, interactive bool) {
	t.Helper()
	previous := stdinIsInteractive
	stdinIsInteractive = func() bool { return interactive }
	t.Cleanup(func() {
		stdinIsInteractive = previous
	})
}

func TestBackendCandidatesAuto(t *testing.T) {
	got := backendCandidates("auto")
	want := []string{BackendBubbleTea, BackendHuh, BackendTView}
	assertBackendOrder(t, got, want)
}

func TestBackendCandidatesHuhFallsBack(t *testing.T) {
	got := backendCandidates("huh")
	want := []string{BackendHuh, BackendBubbleTea, BackendTView}
	assertBackendOrder(t, got, want)
}

func TestBackendCandidatesTViewFallsBack(t *testing.T) {
	got := backendCandidates("TView ")
	want := []string{BackendTView, BackendBubbleTea, BackendHuh}
	assertBackendOrder(t, got, want)
}

func TestBackendCandidatesPlain(t *testing.T) {
	got := backendCandidates("plain")
	want := []string{BackendPlain}
	assertBackendOrder(t, got, want)
}

func TestNormalizeBackendUnknownIsAuto(t *testing.T) {
	if got := NormalizeBackend("neon-ui"); got != BackendAuto {
		t.Fatalf("expected auto, got %q", got)
	}
}

func TestChatCandidatesEndInPlain(t *testing.T) {
	withInteractive(t, true)
	got := chatCandidates("bubbletea")
	want := []string{BackendBubbleTea, BackendHuh, BackendTView, BackendPlain}
	assertBackendOrder(t, got, want)
}

func TestChatCandidatesAutoWithoutTerminalIsPlain(t *testing.T) {
	withInteractive(t, false)
	assertBackendOrder(t, chatCandidates("auto"), []string{BackendPlain})
	assertBackendOrder(t, chatCandidates("huh"), []string{BackendHuh, BackendBubbleTea, BackendTView, BackendPlain})
}

func assertBackendOrder(t *testing.T, got []string, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("unexpected candidate length: got=%d want=%d", len(got), len(want))
	}
	for idx := range want {
		if got[idx] != want[idx] {
			t.Fatalf("candidate[%d] mismatch: got=%q want=%q", idx, got[idx], want[idx])
		}
	}
}
