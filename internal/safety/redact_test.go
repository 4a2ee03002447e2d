package safety

import (
	"strings"
	"testing"
)

func TestRedactTextRedactsAssignments(t *testing.T) {
	input := "create file env.txt with API_KEY=abc123 token: xyz password='hunter2'"
	got := RedactText(input)

	for _, secret := range []string{"abc123", "xyz", "hunter2"} {
		if strings.Contains(got, secret) {
			t.Fatalf("expected %q to be redacted, got %q", secret, got)
		}
	}
	if !strings.Contains(got, "API_KEY=<redacted>") {
		t.Fatalf("expected API_KEY assignment to be redacted, got %q", got)
	}
	if !strings.HasPrefix(got, "create file env.txt with ") {
		t.Fatalf("expected command words to survive, got %q", got)
	}
}

func TestRedactTextRedactsBearerToken(t *testing.T) {
	got := RedactText("Authorization: Bearer verysecrettoken")
	if strings.Contains(got, "verysecrettoken") {
		t.Fatalf("expected bearer token to be redacted, got %q", got)
	}
}

func TestRedactTextRedactsConversationalSecrets(t *testing.T) {
	got := RedactText("remember that my password is hunter2 please")
	if strings.Contains(got, "hunter2") {
		t.Fatalf("expected password to be redacted, got %q", got)
	}
	if !strings.Contains(got, "my password is <redacted> please") {
		t.Fatalf("unexpected redaction shape, got %q", got)
	}
}

func TestRedactTextRedactsProviderKeys(t *testing.T) {
	got := RedactText("edit file keys.md with sk-abcdefghijklmnop")
	if strings.Contains(got, "abcdefghijklmnop") {
		t.Fatalf("expected provider key to be redacted, got %q", got)
	}
}

func TestRedactTextLeavesRegularInput(t *testing.T) {
	for _, input := range []string{
		"set accent #22c55e",
		"teach regression",
		"list files depth 2",
		"mic opt-in off",
	} {
		if got := RedactText(input); got != input {
			t.Fatalf("expected %q unchanged, got %q", input, got)
		}
	}
}
