package encounter_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/encounter"
	"github.com/cory-johannsen/skirmish/internal/game/pathing"
	"github.com/cory-johannsen/skirmish/internal/game/world"
)

// maxSource rolls a 6 on every die.
type maxSource struct{}

func (maxSource) Intn(n int) int { return n - 1 }

func roller() *dice.Roller { return dice.NewLoggedRoller(maxSource{}, zap.NewNop()) }

const fieldMap = `
map:
  id: field
  name: Field
  legend:
    ".": floor
    "#": wall
  rows:
    - "........"
    - "....#..."
    - "........"
    - "........"
`

const knightPreset = `
id: knight
name: Knight
kind: hero
attributes:
  combat: 3
  strength: 2
  agility: 2
movement: 4
actions: 1
vitality: 10
weapons: [sword]
`

const goblinPreset = `
id: goblin
name: Goblin
kind: monster
size: small
attributes:
  combat: 1
  strength: 1
  agility: 3
movement: 4
actions: 1
vitality: 2
weapons: [sword]
inventory: [copper_coins]
behavior: brute
`

const defaultPlacements = `
    - {id: knight, preset: knight, group: heroes, at: [0, 0], facing: east}
    - {id: scout, preset: knight, group: heroes, at: [0, 3], facing: east}
    - {id: gob, preset: goblin, group: goblins, at: [1, 0], facing: west}
`

func scenarioYAML(script, placements string) string {
	s := `
scenario:
  id: skirmish
  name: Skirmish
  map: field
`
	if script != "" {
		s += "  script: " + script + "\n"
	}
	return s + `  groups:
    - {id: heroes, name: Heroes, faction: player, control: player, hostile_to: [enemy]}
    - {id: goblins, name: Goblins, faction: enemy, control: ai, hostile_to: [player]}
  placements:
` + strings.TrimPrefix(placements, "\n")
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(strings.TrimPrefix(body, "\n")), 0o644))
}

// writeContent lays out a complete content tree and returns its config.
func writeContent(t *testing.T, scenario, script string) config.ContentConfig {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "maps", "field.yaml"), fieldMap)
	writeFile(t, filepath.Join(root, "weapons", "sword.yaml"), "id: sword\nname: Sword\nclass: melee\ndamage: 2\nmin_range: 1\nmax_range: 1\n")
	writeFile(t, filepath.Join(root, "behaviors", "brute.yaml"), "id: brute\ntype: melee\n")
	writeFile(t, filepath.Join(root, "presets", "knight.yaml"), knightPreset)
	writeFile(t, filepath.Join(root, "presets", "goblin.yaml"), goblinPreset)
	writeFile(t, filepath.Join(root, "scenarios", "skirmish.yaml"), scenario)
	if script != "" {
		writeFile(t, filepath.Join(root, "scripts", "skirmish.lua"), script)
	}
	return config.ContentConfig{
		Root:         root,
		TerrainDir:   "terrain",
		MapsDir:      "maps",
		WeaponsDir:   "weapons",
		BehaviorsDir: "behaviors",
		PresetsDir:   "presets",
		ScenariosDir: "scenarios",
		ScriptsDir:   "scripts",
	}
}

func newEncounter(t *testing.T, script string) *encounter.Encounter {
	t.Helper()
	scriptName := ""
	if script != "" {
		scriptName = "skirmish.lua"
	}
	content, err := encounter.LoadContent(writeContent(t, scenarioYAML(scriptName, defaultPlacements), script))
	require.NoError(t, err)
	e, err := encounter.New(content, "skirmish", roller(), encounter.Options{Engine: config.Default().Engine}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

func logContains(e *encounter.Encounter, want string) bool {
	for _, line := range e.Log().Lines() {
		if strings.Contains(line, want) {
			return true
		}
	}
	return false
}

func TestLoadContent_Counts(t *testing.T) {
	content, err := encounter.LoadContent(writeContent(t, scenarioYAML("", defaultPlacements), ""))
	require.NoError(t, err)
	assert.Equal(t, encounter.Counts{
		Terrain:   len(world.DefaultTerrain()),
		Maps:      1,
		Weapons:   1,
		Behaviors: 1,
		Presets:   2,
		Scenarios: 1,
	}, content.Counts())
	assert.Equal(t, []string{"skirmish"}, content.ScenarioIDs())
	_, ok := content.Scenario("skirmish")
	assert.True(t, ok)
}

func TestLoadContent_RejectsUnbuildableScenarios(t *testing.T) {
	cases := map[string]struct {
		placements string
		want       string
	}{
		"overlap": {
			placements: `
    - {preset: knight, group: heroes, at: [0, 0]}
    - {preset: goblin, group: goblins, at: [0, 0]}
`,
			want: "already occupied",
		},
		"impassable": {
			placements: "    - {preset: knight, group: heroes, at: [4, 1]}\n",
			want:       "impassable",
		},
		"off map": {
			placements: "    - {preset: knight, group: heroes, at: [8, 0]}\n",
			want:       "off the map",
		},
		"unknown preset": {
			placements: "    - {preset: dragon, group: heroes, at: [0, 0]}\n",
			want:       "dragon",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := encounter.LoadContent(writeContent(t, scenarioYAML("", tc.placements), ""))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoadContent_UnknownMap(t *testing.T) {
	yml := strings.Replace(scenarioYAML("", defaultPlacements), "map: field", "map: swamp", 1)
	_, err := encounter.LoadContent(writeContent(t, yml, ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown map "swamp"`)
}

func TestLoadScenarioFromBytes_Validation(t *testing.T) {
	cases := map[string]struct {
		yml  string
		want string
	}{
		"no player group": {
			yml: `
scenario:
  id: s
  map: m
  groups:
    - {id: g, faction: enemy, control: ai}
`,
			want: "player",
		},
		"duplicate group": {
			yml: `
scenario:
  id: s
  map: m
  groups:
    - {id: g, faction: player, control: player}
    - {id: g, faction: enemy, control: ai}
`,
			want: `duplicate group "g"`,
		},
		"bad facing": {
			yml: `
scenario:
  id: s
  map: m
  groups:
    - {id: g, faction: player, control: player}
  placements:
    - {preset: p, group: g, at: [0, 0], facing: up}
`,
			want: `unknown facing "up"`,
		},
		"bad at": {
			yml: `
scenario:
  id: s
  map: m
  groups:
    - {id: g, faction: player, control: player}
  placements:
    - {preset: p, group: g, at: [0]}
`,
			want: "at must be [x, y]",
		},
		"unknown field": {
			yml: `
scenario:
  id: s
  map: m
  weather: rain
  groups:
    - {id: g, faction: player, control: player}
`,
			want: "weather",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := encounter.LoadScenarioFromBytes([]byte(tc.yml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestNew_UnknownScenario(t *testing.T) {
	content, err := encounter.LoadContent(writeContent(t, scenarioYAML("", defaultPlacements), ""))
	require.NoError(t, err)
	_, err = encounter.New(content, "nope", roller(), encounter.Options{}, zap.NewNop())
	assert.True(t, errors.Is(err, encounter.ErrUnknownScenario))
}

func TestNew_MissingScriptFails(t *testing.T) {
	content, err := encounter.LoadContent(writeContent(t, scenarioYAML("missing.lua", defaultPlacements), ""))
	require.NoError(t, err)
	_, err = encounter.New(content, "skirmish", roller(), encounter.Options{}, zap.NewNop())
	assert.Error(t, err)
}

func TestNew_StartsRoundOne(t *testing.T) {
	e := newEncounter(t, "")
	assert.Equal(t, 1, e.Round())
	assert.Equal(t, []string{"Skirmish begins."}, e.Log().Lines())
	assert.Len(t, e.Creatures(), 3)
	assert.Len(t, e.Groups(), 2)

	gob, ok := e.Creature("gob")
	require.True(t, ok)
	assert.Equal(t, world.Pt(1, 0), gob.Position)
	assert.Equal(t, world.West, gob.Facing)
	assert.True(t, gob.IsAIControlled())

	require.NotNil(t, e.Active())
	assert.Equal(t, "knight", e.Active().ID)
	require.NotNil(t, e.NextCreature())
	assert.Equal(t, "scout", e.Active().ID)
	assert.Equal(t, encounter.OutcomeOngoing, e.Outcome())
}

func TestPlayerMove(t *testing.T) {
	e := newEncounter(t, "")

	reach, err := e.Reachable("scout")
	require.NoError(t, err)
	_, ok := reach.PathTo(world.Pt(3, 3))
	require.True(t, ok)

	res, err := e.PlayerMove("scout", world.Pt(3, 3))
	require.NoError(t, err)
	assert.Equal(t, pathing.MoveComplete, res.Status)
	scout, _ := e.Creature("scout")
	assert.Equal(t, world.Pt(3, 3), scout.Position)
	assert.True(t, logContains(e, "Knight moves to"))
}

func TestPlayerMove_Unreachable(t *testing.T) {
	e := newEncounter(t, "")
	res, err := e.PlayerMove("scout", world.Pt(7, 0))
	require.NoError(t, err)
	assert.Equal(t, pathing.MoveRejected, res.Status)
	scout, _ := e.Creature("scout")
	assert.Equal(t, world.Pt(0, 3), scout.Position)
	assert.True(t, logContains(e, "cannot move to"))
}

func TestPlayerMove_Errors(t *testing.T) {
	e := newEncounter(t, "")
	_, err := e.PlayerMove("gob", world.Pt(2, 0))
	assert.True(t, errors.Is(err, encounter.ErrNotPlayerControlled))
	_, err = e.PlayerMove("nobody", world.Pt(2, 0))
	assert.True(t, errors.Is(err, encounter.ErrUnknownCreature))
	_, err = e.Reachable("nobody")
	assert.True(t, errors.Is(err, encounter.ErrUnknownCreature))
}

func TestPlayerAttack_KillDropsInventory(t *testing.T) {
	e := newEncounter(t, "")
	res, err := e.PlayerAttack("knight", "gob", "sword")
	require.NoError(t, err)
	assert.Equal(t, combat.StatusResolved, res.Status)
	assert.True(t, res.Hit)
	assert.True(t, res.TargetDefeated)

	items := e.Floor().ItemsAt(world.Pt(1, 0))
	require.Len(t, items, 1)
	assert.Equal(t, "copper_coins", items[0].ItemID)
	assert.True(t, logContains(e, "Goblin drops copper_coins."))
	assert.Equal(t, encounter.OutcomeVictory, e.Outcome())
}

func TestPlayerAttack_Rejected(t *testing.T) {
	e := newEncounter(t, "")
	before := e.Log().Total()
	res, err := e.PlayerAttack("scout", "gob", "")
	require.NoError(t, err)
	assert.Equal(t, combat.StatusRejected, res.Status)
	assert.NotEmpty(t, res.Reason)
	assert.Greater(t, e.Log().Total(), before)
	gob, _ := e.Creature("gob")
	assert.Equal(t, 2, gob.Vitality)
}

func TestPlayerAttack_Errors(t *testing.T) {
	e := newEncounter(t, "")
	_, err := e.PlayerAttack("knight", "gob", "longbow")
	assert.True(t, errors.Is(err, encounter.ErrUnknownWeapon))
	_, err = e.PlayerAttack("knight", "nobody", "")
	assert.True(t, errors.Is(err, encounter.ErrUnknownCreature))
	_, err = e.PlayerAttack("gob", "knight", "")
	assert.True(t, errors.Is(err, encounter.ErrNotPlayerControlled))
}

func TestEndTurn_AdvancesRound(t *testing.T) {
	e := newEncounter(t, "")
	require.NoError(t, e.EndTurn(context.Background()))
	assert.Equal(t, 2, e.Round())
	assert.True(t, logContains(e, "Round 2 begins."))
	// The goblin attacked and missed: 6+6+1 against 6+6+3.
	knight, _ := e.Creature("knight")
	assert.Equal(t, 10, knight.Vitality)
	assert.True(t, logContains(e, "Goblin attacks Knight"))
}

func TestEndTurn_Cancelled(t *testing.T) {
	e := newEncounter(t, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := e.EndTurn(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestOutcome_Defeat(t *testing.T) {
	e := newEncounter(t, "")
	for _, id := range []string{"knight", "scout"} {
		c, _ := e.Creature(id)
		c.ApplyDamage(100)
	}
	assert.Equal(t, encounter.OutcomeDefeat, e.Outcome())
	assert.Len(t, e.Living(), 1)
}

func TestAutoPlay_RestoresAIState(t *testing.T) {
	e := newEncounter(t, "")
	acted, err := e.AutoPlay(context.Background(), "knight")
	require.NoError(t, err)
	assert.True(t, acted)

	knight, _ := e.Creature("knight")
	assert.Nil(t, knight.AI)
	gob, _ := e.Creature("gob")
	assert.False(t, gob.Alive())

	_, err = e.AutoPlay(context.Background(), "gob")
	assert.True(t, errors.Is(err, encounter.ErrNotPlayerControlled))
}

const hookScript = `
function on_group_start(group_id, round)
  engine.message(group_id .. " rally in round " .. round)
end

function on_defeat(id)
  local c = engine.creature(id)
  engine.message(c.name .. " falls with " .. c.vitality .. " vitality")
end
`

func TestScriptHooks_ReachTheLog(t *testing.T) {
	e := newEncounter(t, hookScript)
	require.NoError(t, e.EndTurn(context.Background()))
	assert.True(t, logContains(e, "heroes rally in round 2"))

	_, err := e.PlayerAttack("knight", "gob", "")
	require.NoError(t, err)
	assert.True(t, logContains(e, "Goblin falls with 0 vitality"))
}

func TestLog_RingEvictsOldest(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := encounter.NewLog(3, zap.New(core))
	for _, m := range []string{"a", "b", "c", "d", "e"} {
		l.Message(m)
	}
	assert.Equal(t, []string{"c", "d", "e"}, l.Lines())
	assert.Equal(t, 5, l.Total())
	assert.Equal(t, []string{"d", "e"}, l.Since(3))
	assert.Equal(t, []string{"c", "d", "e"}, l.Since(0))
	assert.Empty(t, l.Since(5))

	require.Equal(t, 5, logs.Len())
	assert.Equal(t, "encounter", logs.All()[0].ContextMap()["component"])
}

func TestLog_SinceTotalSeesEverything(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		size := rapid.IntRange(1, 10).Draw(rt, "size")
		l := encounter.NewLog(size, zap.NewNop())
		var seen []string
		mark := 0
		for i, n := range rapid.SliceOfN(rapid.IntRange(0, 3), 1, 20).Draw(rt, "batches") {
			for j := 0; j < n && j < size; j++ {
				l.Message(strings.Repeat("x", i+1))
			}
			seen = append(seen, l.Since(mark)...)
			mark = l.Total()
		}
		assert.Len(rt, seen, l.Total())
		assert.LessOrEqual(rt, len(l.Lines()), size)
	})
}

func TestRepoContent_LoadsAndPlays(t *testing.T) {
	cfg := config.Default()
	cfg.Content.Root = filepath.Join("..", "..", "..")
	content, err := encounter.LoadContent(cfg.Content)
	require.NoError(t, err)
	assert.Equal(t, []string{"ambush", "crypt"}, content.ScenarioIDs())

	for _, id := range content.ScenarioIDs() {
		t.Run(id, func(t *testing.T) {
			r := dice.NewLoggedRoller(dice.NewSeededSource(7), zap.NewNop())
			e, err := encounter.New(content, id, r, encounter.Options{Engine: cfg.Engine, Scripting: cfg.Scripting}, zap.NewNop())
			require.NoError(t, err)
			defer e.Close()
			for i := 0; i < 5 && e.Outcome() == encounter.OutcomeOngoing; i++ {
				require.NoError(t, e.EndTurn(context.Background()))
			}
			assert.GreaterOrEqual(t, e.Round(), 2)
		})
	}
}
