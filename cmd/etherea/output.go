package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ashwch/etherea/internal/apperr"
	"github.com/ashwch/etherea/internal/assistant"
	"github.com/ashwch/etherea/internal/brain"
	"github.com/ashwch/etherea/internal/command"
)

type response struct {
	Message    string   `json:"message,omitempty"`
	Results    any      `json:"results,omitempty"`
	ConfigPath string   `json:"config_path,omitempty"`
	Lines      []string `json:"lines,omitempty"`
}

func printResponse(w io.Writer, payload response, asJSON bool) {
	if asJSON {
		encoded, _ := json.MarshalIndent(payload, "", "  ")
		fmt.Fprintln(w, string(encoded))
		return
	}
	if payload.Message != "" {
		fmt.Fprintln(w, payload.Message)
	}
	for _, line := range payload.Lines {
		fmt.Fprintln(w, line)
	}
	if payload.Results != nil {
		encoded, _ := json.MarshalIndent(payload.Results, "", "  ")
		fmt.Fprintln(w, string(encoded))
	}
	if payload.ConfigPath != "" {
		fmt.Fprintf(w, "config: %s\n", payload.ConfigPath)
	}
}

type turnPayload struct {
	Result    brain.Result `json:"result"`
	Executed  bool         `json:"executed"`
	Message   string       `json:"message,omitempty"`
	Error     string       `json:"error,omitempty"`
	ErrorCode string       `json:"error_code,omitempty"`
}

func newTurnPayload(turn assistant.Turn) turnPayload {
	payload := turnPayload{
		Result:   turn.Result,
		Executed: turn.Executed,
		Message:  turn.Message,
	}
	if turn.CommandError != nil {
		payload.Error = apperr.UserMessage(turn.CommandError)
		payload.ErrorCode = string(apperr.CodeOf(turn.CommandError, ""))
	}
	return payload
}

func printTurn(w io.Writer, turn assistant.Turn, asJSON bool) {
	if asJSON {
		encoded, _ := json.MarshalIndent(newTurnPayload(turn), "", "  ")
		fmt.Fprintln(w, string(encoded))
		return
	}
	mood := turn.Result.EmotionUpdate
	fmt.Fprintf(w, "[%s %.2f] %s\n", mood.Mood, mood.Intensity, turn.Result.Response)
	if turn.Message != "" {
		fmt.Fprintf(w, "-> %s\n", turn.Message)
	}
	if turn.Result.Command != nil && !turn.Executed && turn.CommandError == nil {
		encoded, _ := command.Marshal(turn.Result.Command)
		fmt.Fprintf(w, "command (not executed): %s\n", encoded)
	}
}
