package safety

import "testing"

func TestSanitizeRemovesBannedPhrases(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "As an AI, I think so.", want: ", I think so."},
		{in: "I'm an AI   but   here we go", want: "but here we go"},
		{in: "I can’t because I’m AI.", want: "."},
		{in: "i cant because im ai", want: ""},
		{in: "A large LANGUAGE  MODEL wrote this", want: "A large wrote this"},
		{in: "Locked in.", want: "Locked in."},
		{in: "She works as an aide.", want: "She works as an aide."},
		{in: "  line one \n\t line two  ", want: "line one\nline two"},
	}
	for _, tc := range cases {
		if got := Sanitize(tc.in); got != tc.want {
			t.Fatalf("Sanitize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeIsIdempotent(t *testing.T) {
	inputs := []string{
		"as an as an ai ai",
		"language languagemodel model",
		"I am an AI. I am an AI.",
		"\t\tspaced   out\n\n text ",
		"plain reply",
		"",
	}
	for _, in := range inputs {
		once := Sanitize(in)
		if twice := Sanitize(once); twice != once {
			t.Fatalf("not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	}
}

func TestSanitizerExtraPhrases(t *testing.T) {
	s := NewSanitizer("  chatbot ", "", "As an AI")
	if got := s.Sanitize("Your friendly Chatbot is here"); got != "Your friendly is here" {
		t.Fatalf("unexpected output %q", got)
	}
	if len(s.phrases) != len(DefaultBannedPhrases)+1 {
		t.Fatalf("expected duplicates and blanks skipped, got %d phrases", len(s.phrases))
	}
}
