package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cory-johannsen/skirmish/internal/game/world"
)

// ParseResult holds the parsed command name and arguments from a text line.
type ParseResult struct {
	// Command is the first word of the input, lowercased.
	Command string
	// Args are the remaining words after the command.
	Args []string
	// RawArgs is the raw text after the command.
	RawArgs string
}

// Parse splits a text line into a command and arguments.
//
// Postcondition: Returns a ParseResult. If line is empty, Command is empty.
func Parse(line string) ParseResult {
	line = strings.TrimSpace(line)
	if line == "" {
		return ParseResult{}
	}

	spaceIdx := strings.IndexAny(line, " \t")
	if spaceIdx < 0 {
		return ParseResult{
			Command: strings.ToLower(line),
		}
	}

	cmd := strings.ToLower(line[:spaceIdx])
	rest := strings.TrimSpace(line[spaceIdx+1:])

	var args []string
	if rest != "" {
		args = strings.Fields(rest)
	}

	return ParseResult{
		Command: cmd,
		Args:    args,
		RawArgs: rest,
	}
}

// ParsePoint reads a tile from two integer arguments.
//
// Postcondition: Returns an error if either argument is not an integer.
func ParsePoint(xs, ys string) (world.Point, error) {
	x, err := strconv.Atoi(xs)
	if err != nil {
		return world.Point{}, fmt.Errorf("x %q is not a number", xs)
	}
	y, err := strconv.Atoi(ys)
	if err != nil {
		return world.Point{}, fmt.Errorf("y %q is not a number", ys)
	}
	return world.Pt(x, y), nil
}
