// Package command provides the command registry, parser, and built-in command definitions.
package command

import (
	"fmt"
	"sort"
	"strings"
)

// Categories for organizing commands.
const (
	CategoryLobby  = "lobby"
	CategoryBattle = "battle"
	CategorySystem = "system"
)

// Handler identifiers mapping commands to session handlers.
const (
	HandlerAdd     = "add"
	HandlerStart   = "start"
	HandlerClear   = "clear"
	HandlerHelp    = "help"
	HandlerStats   = "stats"
	HandlerEnemies = "enemies"
	HandlerAllies  = "allies"
	HandlerQuit    = "quit"
)

// Command defines a player-invocable command that is not a battle skill.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Help is the short help text displayed to players.
	Help string
	// Category groups the command (lobby, battle, system).
	Category string
	// Handler maps to the session handler.
	Handler string
}

// BuiltinCommands returns all built-in commands.
func BuiltinCommands() []Command {
	return []Command{
		// Lobby commands
		{Name: "add", Help: "add a character to the party", Category: CategoryLobby, Handler: HandlerAdd},
		{Name: "start", Help: "begin the battle", Category: CategoryLobby, Handler: HandlerStart},
		{Name: "clear", Help: "reset the player list", Category: CategoryLobby, Handler: HandlerClear},

		// Battle queries
		{Name: "help", Aliases: []string{"?"}, Help: "show this help", Category: CategoryBattle, Handler: HandlerHelp},
		{Name: "stats", Help: "list ally stats", Category: CategoryBattle, Handler: HandlerStats},
		{Name: "team", Aliases: []string{"allies"}, Help: "list current allies", Category: CategoryBattle, Handler: HandlerAllies},
		{Name: "enemies", Aliases: []string{"enemy"}, Help: "list current enemies", Category: CategoryBattle, Handler: HandlerEnemies},

		// System commands
		{Name: "quit", Aliases: []string{"exit"}, Help: "disconnect", Category: CategorySystem, Handler: HandlerQuit},
	}
}

// WelcomeText is shown when a new lobby opens.
const WelcomeText = `Welcome!
Please select a character by typing 'add' + the character.
ex. 'add knight'
Type 'clear' to reset the player list.

Type 'start' to begin.`

// LobbyHelpText is shown for unrecognized lobby input.
const LobbyHelpText = `Select a character by typing 'add' + the character.
ex. 'add knight'
Type 'clear' to reset the player list.

Type 'start' to begin.`

// BattleHelp renders the in-battle help, listing the registry's battle queries.
//
// Postcondition: Returns a multi-line string ending in a newline.
func BattleHelp(r *Registry) string {
	var b strings.Builder
	b.WriteString("Defeat all enemies to win.\n")
	b.WriteString("Type an action + the target's name or position to attack\n")
	b.WriteString("ex. 'attack goblin1' or 'attack 1'\n\n")
	b.WriteString("Not all actions require a target\n")
	b.WriteString("ex. 'defend' (halves damage taken for 1 turn)\n\n")
	b.WriteString("Additional commands:\n")

	queries := r.CommandsByCategory()[CategoryBattle]
	sort.Slice(queries, func(i, j int) bool { return queries[i].Name < queries[j].Name })
	for _, cmd := range queries {
		if cmd.Handler == HandlerHelp {
			continue
		}
		fmt.Fprintf(&b, "'%s' - %s\n", cmd.Name, cmd.Help)
	}
	return b.String()
}
