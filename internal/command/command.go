package command

import (
	"encoding/json"
	"fmt"
)

// Args is the loose key/value form of a command, used on the wire and for
// hand-built commands.
type Args map[string]any

// Command is one of the typed variants below. The set is closed.
type Command interface {
	Name() Name
	Args() Args
	isCommand()
}

type CreateFile struct {
	Path    string
	Content string
}

type EditFile struct {
	Path    string
	Content string
}

type SummarizeFile struct {
	Path string
}

// ListFiles with a zero Depth lets the executor pick its default.
type ListFiles struct {
	Depth int
}

type OpenFile struct {
	Path string
}

// SetTheme carries only the fields the user asked to change.
type SetTheme struct {
	Preset        *string
	Accent        *string
	Glow          *float64
	Rounded       *int
	ReducedMotion *bool
}

type SetMicOptIn struct {
	Enabled bool
}

type SetVoiceOutput struct {
	Enabled bool
}

type AllowWorkspaceRoot struct {
	Root string
}

type Help struct{}

// Unknown keeps a hand-built command whose name is outside the vocabulary.
type Unknown struct {
	Raw     string
	RawArgs Args
}

func (CreateFile) Name() Name         { return NameCreateFile }
func (EditFile) Name() Name           { return NameEditFile }
func (SummarizeFile) Name() Name      { return NameSummarizeFile }
func (ListFiles) Name() Name          { return NameListFiles }
func (OpenFile) Name() Name           { return NameOpenFile }
func (SetTheme) Name() Name           { return NameSetTheme }
func (SetMicOptIn) Name() Name        { return NameSetMicOptIn }
func (SetVoiceOutput) Name() Name     { return NameSetVoiceOutput }
func (AllowWorkspaceRoot) Name() Name { return NameAllowWorkspaceRoot }
func (Help) Name() Name               { return NameHelp }
func (u Unknown) Name() Name          { return Name(u.Raw) }

func (CreateFile) isCommand()         {}
func (EditFile) isCommand()           {}
func (SummarizeFile) isCommand()      {}
func (ListFiles) isCommand()          {}
func (OpenFile) isCommand()           {}
func (SetTheme) isCommand()           {}
func (SetMicOptIn) isCommand()        {}
func (SetVoiceOutput) isCommand()     {}
func (AllowWorkspaceRoot) isCommand() {}
func (Help) isCommand()               {}
func (Unknown) isCommand()            {}

func (c CreateFile) Args() Args {
	return Args{"path": c.Path, "content": c.Content}
}

func (c EditFile) Args() Args {
	return Args{"path": c.Path, "content": c.Content}
}

func (c SummarizeFile) Args() Args {
	return Args{"path": c.Path}
}

func (c ListFiles) Args() Args {
	if c.Depth <= 0 {
		return Args{}
	}
	return Args{"depth": c.Depth}
}

func (c OpenFile) Args() Args {
	return Args{"path": c.Path}
}

func (c SetTheme) Args() Args {
	args := Args{}
	if c.Preset != nil {
		args["preset"] = *c.Preset
	}
	if c.Accent != nil {
		args["accent"] = *c.Accent
	}
	if c.Glow != nil {
		args["glow"] = *c.Glow
	}
	if c.Rounded != nil {
		args["rounded"] = *c.Rounded
	}
	if c.ReducedMotion != nil {
		args["reducedMotion"] = *c.ReducedMotion
	}
	return args
}

func (c SetMicOptIn) Args() Args {
	return Args{"enabled": c.Enabled}
}

func (c SetVoiceOutput) Args() Args {
	return Args{"enabled": c.Enabled}
}

func (c AllowWorkspaceRoot) Args() Args {
	if c.Root == "" {
		return Args{}
	}
	return Args{"root": c.Root}
}

func (Help) Args() Args {
	return Args{}
}

func (u Unknown) Args() Args {
	out := Args{}
	for k, v := range u.RawArgs {
		out[k] = v
	}
	return out
}

// Ptr is a helper for filling the optional SetTheme fields.
func Ptr[T any](v T) *T {
	return &v
}

type envelope struct {
	Name Name `json:"name"`
	Args Args `json:"args"`
}

// Marshal renders {"name": ..., "args": {...}}.
func Marshal(cmd Command) ([]byte, error) {
	if cmd == nil {
		return []byte("null"), nil
	}
	return json.Marshal(envelope{Name: cmd.Name(), Args: cmd.Args()})
}

// Unmarshal is the inverse of Marshal. A JSON null yields a nil command.
func Unmarshal(payload []byte) (Command, error) {
	var env *envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("could not parse command JSON: %w", err)
	}
	if env == nil {
		return nil, nil
	}
	return Decode(string(env.Name), env.Args)
}
