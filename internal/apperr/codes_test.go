package apperr

import (
	"fmt"
	"io"
	"testing"
)

func TestIsCodeSeesThroughWrapping(t *testing.T) {
	base := NotFound("File not found: a.txt")
	wrapped := fmt.Errorf("execute summarize_file: %w", base)
	if !IsCode(wrapped, CodeNotFound) {
		t.Fatalf("expected wrapped error to carry NOT_FOUND")
	}
	if IsCode(wrapped, CodePolicyViolation) {
		t.Fatalf("did not expect POLICY_VIOLATION")
	}
	if IsCode(io.EOF, CodeNotFound) {
		t.Fatalf("foreign errors carry no code")
	}
}

func TestErrorStringIncludesCause(t *testing.T) {
	err := StorageUnavailable("could not write node", io.ErrClosedPipe)
	want := "[STORAGE_UNAVAILABLE] could not write node: io: read/write on closed pipe"
	if err.Error() != want {
		t.Fatalf("got %q want %q", err.Error(), want)
	}
	if CodeOf(err, CodeInvalidArgument) != CodeStorageUnavailable {
		t.Fatalf("unexpected code")
	}
	if CodeOf(io.EOF, CodeInvalidArgument) != CodeInvalidArgument {
		t.Fatalf("expected fallback code for foreign errors")
	}
}

func TestUserMessage(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{err: InvalidArgument("path is required"), want: "Invalid request: path is required"},
		{err: PolicyViolation("mic cannot be enabled"), want: "Blocked: mic cannot be enabled"},
		{err: NotFound("File not found: x"), want: "File not found: x"},
		{err: io.EOF, want: "EOF"},
		{err: nil, want: ""},
	}
	for _, tc := range cases {
		if got := UserMessage(tc.err); got != tc.want {
			t.Fatalf("got %q want %q", got, tc.want)
		}
	}
}

func TestWithContext(t *testing.T) {
	err := InvalidArgument("bad").WithContext("command", "create_file")
	if err.Context["command"] != "create_file" {
		t.Fatalf("expected context to be recorded")
	}
}
