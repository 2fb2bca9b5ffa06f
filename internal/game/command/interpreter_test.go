package command

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/encounter"
)

type sixes struct{}

func (sixes) Intn(n int) int { return n - 1 }

// crypt starts the repository's crypt scenario with every die rolling 6.
func crypt(t *testing.T) (*Interpreter, *encounter.Encounter, *bytes.Buffer) {
	t.Helper()
	cfg := config.Default()
	cfg.Content.Root = filepath.Join("..", "..", "..")
	content, err := encounter.LoadContent(cfg.Content)
	require.NoError(t, err)
	enc, err := encounter.New(content, "crypt", dice.NewLoggedRoller(sixes{}, zap.NewNop()), encounter.Options{Engine: cfg.Engine, Scripting: cfg.Scripting}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(enc.Close)
	var out bytes.Buffer
	return NewInterpreter(DefaultRegistry(), enc, &out, zap.NewNop()), enc, &out
}

func run(t *testing.T, in *Interpreter, line string) {
	t.Helper()
	quit, err := in.Execute(context.Background(), line)
	require.NoError(t, err, line)
	require.False(t, quit)
}

func TestExecute_Empty(t *testing.T) {
	in, _, out := crypt(t)
	quit, err := in.Execute(context.Background(), "   ")
	assert.NoError(t, err)
	assert.False(t, quit)
	assert.Empty(t, out.String())
}

func TestExecute_UnknownCommand(t *testing.T) {
	in, _, _ := crypt(t)
	_, err := in.Execute(context.Background(), "teleport brannoc")
	assert.True(t, errors.Is(err, ErrUnknownCommand))
}

func TestExecute_Usage(t *testing.T) {
	in, enc, _ := crypt(t)
	for _, line := range []string{"move brannoc", "move brannoc a 1", "attack brannoc", "auto", "reach", "floor 1"} {
		_, err := in.Execute(context.Background(), line)
		assert.True(t, errors.Is(err, ErrUsage), line)
	}
	b, _ := enc.Creature("brannoc")
	assert.Equal(t, 2, b.Position.X)
}

func TestExecute_HelpAndQuit(t *testing.T) {
	in, _, out := crypt(t)
	run(t, in, "help")
	assert.Contains(t, out.String(), "move <id> <x> <y>")

	quit, err := in.Execute(context.Background(), "Q")
	require.NoError(t, err)
	assert.True(t, quit)
}

func TestExecute_StatusFlushesLog(t *testing.T) {
	in, _, out := crypt(t)
	run(t, in, "status")
	s := out.String()
	assert.Contains(t, s, "Round 1, ongoing")
	assert.Contains(t, s, "Active: ysolde")
	assert.Contains(t, s, "Into the Sunken Crypt begins.")
	assert.Contains(t, s, "Cave Ogre")

	out.Reset()
	run(t, in, "status")
	assert.NotContains(t, out.String(), "begins.")
}

func TestExecute_Map(t *testing.T) {
	in, _, out := crypt(t)
	run(t, in, "log")
	out.Reset()
	run(t, in, "map")
	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, lines, 8)
	assert.Equal(t, "############", lines[0])
	assert.Equal(t, "#.@......X.#", lines[3])
}

func TestExecute_MoveAndReach(t *testing.T) {
	in, enc, out := crypt(t)
	run(t, in, "reach brannoc")
	assert.Contains(t, out.String(), "(4,3):2")

	run(t, in, "move brannoc 4 3")
	assert.Contains(t, out.String(), "Brannoc the Bold moves to (4,3).")
	b, _ := enc.Creature("brannoc")
	assert.Equal(t, 4, b.Position.X)

	_, err := in.Execute(context.Background(), "move ogre-1 8 3")
	assert.True(t, errors.Is(err, encounter.ErrNotPlayerControlled))
}

func TestExecute_AttackErrors(t *testing.T) {
	in, _, _ := crypt(t)
	_, err := in.Execute(context.Background(), "attack brannoc ogre-1 halberd")
	assert.True(t, errors.Is(err, encounter.ErrUnknownWeapon))
	_, err = in.Execute(context.Background(), "attack brannoc nobody")
	assert.True(t, errors.Is(err, encounter.ErrUnknownCreature))
}

func TestExecute_NextAndEnd(t *testing.T) {
	in, enc, out := crypt(t)
	run(t, in, "next")
	assert.Contains(t, out.String(), "Brannoc the Bold is up.")

	run(t, in, "end")
	assert.Equal(t, 2, enc.Round())
	assert.Contains(t, out.String(), "Round 2 begins.")
}

func TestExecute_FloorAndAuto(t *testing.T) {
	in, _, out := crypt(t)
	run(t, in, "floor 1 1")
	assert.Contains(t, out.String(), "Nothing lies at (1,1).")

	run(t, in, "auto brannoc")
	_, err := in.Execute(context.Background(), "auto ogre-1")
	assert.True(t, errors.Is(err, encounter.ErrNotPlayerControlled))
}
