// Package command provides the command registry, parser, and interpreter for
// driving an encounter from a line-oriented console.
package command

// Categories for organizing commands.
const (
	CategoryMovement = "movement"
	CategoryCombat   = "combat"
	CategoryTurn     = "turn"
	CategoryInfo     = "info"
	CategorySystem   = "system"
)

// Handler identifiers mapping commands to interpreter actions.
const (
	HandlerMove   = "move"
	HandlerReach  = "reach"
	HandlerAttack = "attack"
	HandlerAuto   = "auto"
	HandlerNext   = "next"
	HandlerEnd    = "end"
	HandlerStatus = "status"
	HandlerMap    = "map"
	HandlerFloor  = "floor"
	HandlerLog    = "log"
	HandlerHelp   = "help"
	HandlerQuit   = "quit"
)

// Command defines a player-invocable command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Usage shows the argument form, e.g. "move <id> <x> <y>".
	Usage string
	// Help is the short help text displayed to players.
	Help string
	// Category groups the command.
	Category string
	// Handler maps to an interpreter action.
	Handler string
}

// BuiltinCommands returns all built-in commands.
func BuiltinCommands() []Command {
	return []Command{
		{Name: "move", Aliases: []string{"m", "mv"}, Usage: "move <id> <x> <y>", Help: "Move a creature along the cheapest path", Category: CategoryMovement, Handler: HandlerMove},
		{Name: "reach", Aliases: []string{"r"}, Usage: "reach <id>", Help: "List the tiles a creature can reach", Category: CategoryMovement, Handler: HandlerReach},

		{Name: "attack", Aliases: []string{"a", "att"}, Usage: "attack <id> <target> [weapon]", Help: "Attack a target, optionally with a named weapon or spell", Category: CategoryCombat, Handler: HandlerAttack},
		{Name: "auto", Aliases: nil, Usage: "auto <id>", Help: "Let the engine play a creature's turn", Category: CategoryCombat, Handler: HandlerAuto},

		{Name: "next", Aliases: []string{"n"}, Usage: "next", Help: "Pass to the next creature that can act", Category: CategoryTurn, Handler: HandlerNext},
		{Name: "end", Aliases: []string{"e", "done"}, Usage: "end", Help: "End the turn; the enemy acts and a new round begins", Category: CategoryTurn, Handler: HandlerEnd},

		{Name: "status", Aliases: []string{"st", "who"}, Usage: "status", Help: "Show every creature's state", Category: CategoryInfo, Handler: HandlerStatus},
		{Name: "map", Aliases: []string{"look", "l"}, Usage: "map", Help: "Draw the battle map", Category: CategoryInfo, Handler: HandlerMap},
		{Name: "floor", Aliases: nil, Usage: "floor <x> <y>", Help: "List items lying on a tile", Category: CategoryInfo, Handler: HandlerFloor},
		{Name: "log", Aliases: nil, Usage: "log", Help: "Replay the message log", Category: CategoryInfo, Handler: HandlerLog},

		{Name: "help", Aliases: []string{"?"}, Usage: "help", Help: "Show available commands", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "quit", Aliases: []string{"q", "exit"}, Usage: "quit", Help: "Leave the skirmish", Category: CategorySystem, Handler: HandlerQuit},
	}
}
