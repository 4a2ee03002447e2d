package command

import (
	"math"
	"strconv"
	"strings"

	"github.com/ashwch/etherea/internal/apperr"
)

// Decode builds a typed command from a name and a loose argument bag. Values
// may arrive as their real types or as strings (CLI key=value pairs). Unknown
// names decode to Unknown without error. Presence of required fields is left
// to the executor.
func Decode(name string, args Args) (Command, error) {
	d := decoder{name: strings.TrimSpace(name), args: args}
	switch Name(d.name) {
	case NameCreateFile:
		return CreateFile{Path: d.str("path"), Content: d.str("content")}, d.err
	case NameEditFile:
		return EditFile{Path: d.str("path"), Content: d.str("content")}, d.err
	case NameSummarizeFile:
		return SummarizeFile{Path: d.str("path")}, d.err
	case NameOpenFile:
		return OpenFile{Path: d.str("path")}, d.err
	case NameListFiles:
		depth := d.optInt("depth")
		cmd := ListFiles{}
		if depth != nil {
			cmd.Depth = *depth
		}
		return cmd, d.err
	case NameSetTheme:
		cmd := SetTheme{
			Preset:        d.optStr("preset"),
			Accent:        d.optStr("accent"),
			Glow:          d.optFloat("glow"),
			Rounded:       d.optInt("rounded"),
			ReducedMotion: d.optBool("reducedMotion"),
		}
		return cmd, d.err
	case NameSetMicOptIn:
		return SetMicOptIn{Enabled: d.reqBool("enabled")}, d.err
	case NameSetVoiceOutput:
		return SetVoiceOutput{Enabled: d.reqBool("enabled")}, d.err
	case NameAllowWorkspaceRoot:
		return AllowWorkspaceRoot{Root: d.str("root")}, d.err
	case NameHelp:
		return Help{}, nil
	default:
		raw := Args{}
		for k, v := range args {
			raw[k] = v
		}
		return Unknown{Raw: d.name, RawArgs: raw}, nil
	}
}

type decoder struct {
	name string
	args Args
	err  error
}

func (d *decoder) fail(key, want string) {
	if d.err != nil {
		return
	}
	d.err = apperr.InvalidArgument(d.name + ": " + key + " must be " + want).
		WithContext("command", d.name).
		WithContext("arg", key)
}

func (d *decoder) lookup(key string) (any, bool) {
	v, ok := d.args[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func (d *decoder) str(key string) string {
	v := d.optStr(key)
	if v == nil {
		return ""
	}
	return *v
}

func (d *decoder) optStr(key string) *string {
	v, ok := d.lookup(key)
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		d.fail(key, "a string")
		return nil
	}
	return &s
}

func (d *decoder) optInt(key string) *int {
	v, ok := d.lookup(key)
	if !ok {
		return nil
	}
	switch n := v.(type) {
	case int:
		return &n
	case int64:
		i := int(n)
		return &i
	case float64:
		if n == math.Trunc(n) && !math.IsInf(n, 0) {
			i := int(n)
			return &i
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return &i
		}
	}
	d.fail(key, "an integer")
	return nil
}

func (d *decoder) optFloat(key string) *float64 {
	v, ok := d.lookup(key)
	if !ok {
		return nil
	}
	switch n := v.(type) {
	case float64:
		return &n
	case int:
		f := float64(n)
		return &f
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return &f
		}
	}
	d.fail(key, "a number")
	return nil
}

func (d *decoder) optBool(key string) *bool {
	v, ok := d.lookup(key)
	if !ok {
		return nil
	}
	switch b := v.(type) {
	case bool:
		return &b
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "on", "yes", "1":
			return Ptr(true)
		case "false", "off", "no", "0":
			return Ptr(false)
		}
	}
	d.fail(key, "a boolean")
	return nil
}

func (d *decoder) reqBool(key string) bool {
	b := d.optBool(key)
	if b == nil {
		d.fail(key, "set to true or false")
		return false
	}
	return *b
}
