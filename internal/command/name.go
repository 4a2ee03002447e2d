package command

// Name is the closed vocabulary of actions a command can carry.
type Name string

const (
	NameCreateFile         Name = "create_file"
	NameEditFile           Name = "edit_file"
	NameSummarizeFile      Name = "summarize_file"
	NameListFiles          Name = "list_files"
	NameOpenFile           Name = "open_file"
	NameSetTheme           Name = "set_theme"
	NameSetMicOptIn        Name = "set_mic_opt_in"
	NameSetVoiceOutput     Name = "set_voice_output"
	NameAllowWorkspaceRoot Name = "allow_workspace_root"
	NameHelp               Name = "help"
)

var allNames = []Name{
	NameCreateFile,
	NameEditFile,
	NameSummarizeFile,
	NameListFiles,
	NameOpenFile,
	NameSetTheme,
	NameSetMicOptIn,
	NameSetVoiceOutput,
	NameAllowWorkspaceRoot,
	NameHelp,
}

// Names returns the vocabulary in declaration order.
func Names() []Name {
	return append([]Name(nil), allNames...)
}

func (n Name) Valid() bool {
	for _, candidate := range allNames {
		if n == candidate {
			return true
		}
	}
	return false
}
