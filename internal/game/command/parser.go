package command

import (
	"strings"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

// NoArg stands in for a missing first argument.
const NoArg = "-"

// ParseResult holds the parsed command name and arguments from a text line.
type ParseResult struct {
	// Command is the first word of the input, lowercased.
	Command string
	// Arg is the first argument, lowercased, or NoArg when the line has none.
	Arg string
	// Args are the remaining words after the command, lowercased.
	Args []string
}

// Parse splits a text line into a command and arguments. Words beyond the
// first argument are kept in Args but ignored by the battle and lobby.
//
// Postcondition: Returns a ParseResult. If line is blank, Command is empty and Arg is NoArg.
func Parse(line string) ParseResult {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return ParseResult{Arg: NoArg}
	}

	result := ParseResult{Command: fields[0], Arg: NoArg}
	if len(fields) > 1 {
		result.Args = fields[1:]
		result.Arg = fields[1]
	}
	return result
}

// Submission converts the parse into the structured command the battle engine accepts.
func (p ParseResult) Submission() combat.Command {
	return combat.Command{Action: p.Command, Target: p.Arg}
}
