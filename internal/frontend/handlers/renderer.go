package handlers

import (
	"strings"

	"github.com/cory-johannsen/skirmish/internal/frontend/telnet"
)

// lineStyle pairs a substring found in battle output with the color for lines containing it.
type lineStyle struct {
	marker string
	color  string
}

// battleStyles is checked in order; the first matching marker wins.
var battleStyles = []lineStyle{
	{"You win!", telnet.Bold + telnet.BrightYellow},
	{"You were defeated.", telnet.Bold + telnet.BrightRed},
	{"is incapacitated!", telnet.Red},
	{"damage!", telnet.BrightRed},
	{"evades the attack", telnet.Yellow},
	{"is healed by", telnet.BrightGreen},
	{"HP.", telnet.Green},
	{"is defending.", telnet.Cyan},
	{"'s turn", telnet.Bold + telnet.BrightWhite},
	{"Invalid", telnet.Magenta},
	{"Actions available:", telnet.Cyan},
	{"A battle begins.", telnet.BrightYellow},
}

// RenderLine colors one output entry for a Telnet client. Entries that match no
// style are returned unchanged.
//
// Postcondition: telnet.StripANSI(RenderLine(s)) == s.
func RenderLine(line string) string {
	for _, st := range battleStyles {
		if strings.Contains(line, st.marker) {
			return telnet.Colorize(st.color, line)
		}
	}
	return line
}

// RenderOutput renders every entry of one input cycle's output. When color is
// false the entries are returned as-is.
//
// Postcondition: len(result) == len(lines).
func RenderOutput(lines []string, color bool) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		if color {
			l = RenderLine(l)
		}
		out[i] = l
	}
	return out
}
