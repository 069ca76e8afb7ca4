package app

import (
	"strconv"
	"strings"

	"pm-quiz-runner/internal/domain"
)

// CommandKind enumerates participant commands.
type CommandKind int

const (
	CmdAnswer CommandKind = iota
	CmdNext
	CmdPrevious
	CmdGoto
	CmdSubmit
	CmdQuit
	CmdHelp
)

// Command is one parsed input line.
type Command struct {
	Kind  CommandKind
	Index int
	Text  string
	Raw   string
}

// ParseCommand interprets a line of terminal input. Anything that is not a
// known command is an answer for the current question.
func ParseCommand(line string) Command {
	raw := line
	trimmed := strings.TrimSpace(line)
	fields := strings.Fields(trimmed)
	if len(fields) == 0 {
		return Command{Kind: CmdAnswer, Text: raw, Raw: raw}
	}

	switch strings.ToLower(fields[0]) {
	case "n", "next", ">":
		if len(fields) == 1 {
			return Command{Kind: CmdNext, Raw: raw}
		}
	case "p", "prev", "previous", "<":
		if len(fields) == 1 {
			return Command{Kind: CmdPrevious, Raw: raw}
		}
	case "g", "goto":
		if len(fields) == 2 {
			if n, err := strconv.Atoi(fields[1]); err == nil {
				return Command{Kind: CmdGoto, Index: n - 1, Raw: raw}
			}
		}
	case "s", "submit", "finish":
		if len(fields) == 1 {
			return Command{Kind: CmdSubmit, Raw: raw}
		}
	case "q", "quit", "exit":
		if len(fields) == 1 {
			return Command{Kind: CmdQuit, Raw: raw}
		}
	case "?", "h", "help":
		if len(fields) == 1 {
			return Command{Kind: CmdHelp, Raw: raw}
		}
	}
	return Command{Kind: CmdAnswer, Text: raw, Raw: raw}
}

// ResolveAnswer maps typed text to an input value for the view. For multiple
// choice the trimmed text is matched against the options first, so numeric
// options select themselves; otherwise a 1-based option number selects that
// option. Free text is returned as typed.
func ResolveAnswer(view domain.View, text string) (string, bool) {
	if view.Mode != domain.InputMultipleChoice {
		if strings.TrimSpace(text) == "" {
			return "", false
		}
		return text, true
	}
	trimmed := strings.TrimSpace(text)
	for _, opt := range view.Options {
		if opt == trimmed {
			return opt, true
		}
	}
	if n, err := strconv.Atoi(trimmed); err == nil && n >= 1 && n <= len(view.Options) {
		return view.Options[n-1], true
	}
	return "", false
}

// IsAffirmative reports whether a confirmation reply means yes.
func IsAffirmative(reply string) bool {
	switch strings.ToLower(strings.TrimSpace(reply)) {
	case "y", "yes":
		return true
	}
	return false
}

// PendingInput is an Input holding the value typed since the last render.
type PendingInput struct {
	value string
	set   bool
}

func (p *PendingInput) Set(value string) {
	p.value = value
	p.set = true
}

func (p *PendingInput) Reset() {
	p.value = ""
	p.set = false
}

func (p *PendingInput) Value() (string, bool) {
	return p.value, p.set
}
