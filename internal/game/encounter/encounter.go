package encounter

import (
	"context"
	"errors"
	"fmt"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/game/ai"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/creature"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/inventory"
	"github.com/cory-johannsen/skirmish/internal/game/pathing"
	"github.com/cory-johannsen/skirmish/internal/game/turn"
	"github.com/cory-johannsen/skirmish/internal/game/world"
	"github.com/cory-johannsen/skirmish/internal/scripting"
)

var (
	// ErrUnknownScenario is returned by New for a scenario ID not in content.
	ErrUnknownScenario = errors.New("encounter: unknown scenario")
	// ErrUnknownCreature is returned when an operation names a creature that is not in the encounter.
	ErrUnknownCreature = errors.New("encounter: unknown creature")
	// ErrNotPlayerControlled is returned when a player operation names an AI creature.
	ErrNotPlayerControlled = errors.New("encounter: creature is not player controlled")
	// ErrUnknownWeapon is returned when PlayerAttack names a weapon the attacker does not carry.
	ErrUnknownWeapon = errors.New("encounter: unknown weapon")
)

// Outcome is the state of the fight.
type Outcome string

const (
	OutcomeOngoing Outcome = "ongoing"
	OutcomeVictory Outcome = "victory"
	OutcomeDefeat  Outcome = "defeat"
)

// Options tunes an Encounter.
type Options struct {
	Engine    config.EngineConfig
	Scripting config.ScriptingConfig
	// LogSize bounds the message log; 0 uses DefaultLogSize.
	LogSize int
	// Presenter, when set, sees every AI action as it happens.
	Presenter ai.Presenter
}

// Encounter is one fight in progress.
type Encounter struct {
	scenario  *Scenario
	board     *world.Board
	creatures []*creature.Creature
	groups    []*creature.Group
	floor     *inventory.Floor
	log       *Log
	pc        *turn.PhaseContext

	resolver     *combat.Resolver
	executor     *ai.Executor
	orchestrator *turn.Orchestrator
	scripts      *scripting.Manager
	logger       *zap.Logger
}

// New builds the encounter for scenarioID: groups and creatures are spawned
// from content, the scenario script (if any) is loaded into its own Lua scope,
// and round 1 begins.
//
// Precondition: content, roller and logger must not be nil.
// Postcondition: an unknown scenario returns an error wrapping ErrUnknownScenario.
func New(content *Content, scenarioID string, roller *dice.Roller, opts Options, logger *zap.Logger) (*Encounter, error) {
	if content == nil || roller == nil || logger == nil {
		panic("encounter.New: content, roller and logger must not be nil")
	}
	s, ok := content.Scenario(scenarioID)
	if !ok {
		return nil, fmt.Errorf("encounter.New: %q: %w", scenarioID, ErrUnknownScenario)
	}
	b, ok := content.Maps.Board(s.Map)
	if !ok {
		return nil, fmt.Errorf("encounter.New: scenario %q: unknown map %q", s.ID, s.Map)
	}

	e := &Encounter{
		scenario: s,
		board:    b,
		floor:    inventory.NewFloor(),
		log:      NewLog(opts.LogSize, logger),
		logger:   logger.With(zap.String("scenario", s.ID)),
	}
	for _, g := range s.Groups {
		e.groups = append(e.groups, &creature.Group{
			ID:         g.ID,
			Name:       g.Name,
			Faction:    g.Faction,
			Controller: g.Control,
			HostileTo:  append([]creature.Faction(nil), g.HostileTo...),
		})
	}
	if err := e.spawn(content); err != nil {
		return nil, err
	}

	var hooks []turn.GroupHooks
	var policy ai.KillPolicy
	if s.Script != "" {
		e.scripts = scripting.NewManager(roller, logger)
		e.scripts.GetCreature = e.creatureInfo
		e.scripts.Message = e.log.Message
		if err := e.scripts.LoadFiles(s.ID, []string{content.ScriptPath(s.Script)}, opts.Scripting.InstructionLimit); err != nil {
			return nil, fmt.Errorf("encounter.New: %w", err)
		}
		policy = ai.NewScriptedKillPolicy(e.scripts, s.ID, nil, logger)
	}
	radius := opts.Engine.EngageRadius
	if radius < 1 {
		radius = config.Default().Engine.EngageRadius
	}
	tracker := turn.NewCombatTracker(turn.Config{EngageRadius: radius}, logger)
	hooks = append(hooks, tracker)
	if e.scripts != nil {
		hooks = append(hooks, turn.NewScriptHooks(e.scripts, s.ID, logger))
	}

	vision := opts.Engine.VisionRange
	if vision < 1 {
		vision = pathing.DefaultVisionRange
	}
	weights := ai.DefaultWeights()
	if opts.Engine.AttackBonus > 0 {
		weights = ai.Weights{
			Distance: opts.Engine.DistanceWeight,
			Attack:   opts.Engine.AttackBonus,
			Stay:     opts.Engine.StayBias,
			Pack:     opts.Engine.PackWeight,
		}
	}
	e.resolver = combat.NewResolver(roller, logger)
	e.executor = ai.NewExecutor(ai.NewEngine(weights, vision), e.resolver, policy, ai.ExecutorConfig{MaxIterations: opts.Engine.MaxAIIterations}, logger)
	e.orchestrator = turn.NewOrchestrator(e.executor, logger, hooks...)

	e.pc = &turn.PhaseContext{
		Creatures: e.creatures,
		Groups:    e.groups,
		Board:     e.board,
		Turn:      turn.InitializeTurnState(e.creatures),
		Sink:      e.log,
		Presenter: opts.Presenter,
		OnDefeat:  e.onDefeat,
	}
	tracker.Update(e.groups, e.creatures)
	e.logger.Info("encounter started", zap.Int("creatures", len(e.creatures)), zap.Int("groups", len(e.groups)))
	e.log.Message(fmt.Sprintf("%s begins.", e.title()))
	return e, nil
}

func (e *Encounter) title() string {
	if e.scenario.Name != "" {
		return e.scenario.Name
	}
	return e.scenario.ID
}

func (e *Encounter) spawn(content *Content) error {
	used := make(map[world.Point]bool)
	for i, p := range e.scenario.Placements {
		g, _ := e.scenario.Group(p.Group)
		control := g.Control
		if p.Control != "" {
			control = p.Control
		}
		at := p.Point()
		if !e.board.InBounds(at) || !e.board.Passable(at) || used[at] {
			return fmt.Errorf("encounter.New: placement %d: %s cannot hold a creature", i, at)
		}
		used[at] = true
		c, err := content.Creatures.Spawn(p.Preset, creature.SpawnOptions{
			ID:         p.ID,
			Name:       p.Name,
			Controller: control,
			Faction:    g.Faction,
			GroupID:    g.ID,
			HostileTo:  g.HostileTo,
			At:         &at,
			Facing:     p.Facing,
		})
		if err != nil {
			return fmt.Errorf("encounter.New: placement %d: %w", i, err)
		}
		e.creatures = append(e.creatures, c)
	}
	return nil
}

func (e *Encounter) creatureInfo(id string) *scripting.CreatureInfo {
	c := creature.Find(e.creatures, id)
	if c == nil {
		return nil
	}
	return &scripting.CreatureInfo{
		ID:          c.ID,
		Name:        c.Name,
		Faction:     string(c.Faction),
		GroupID:     c.GroupID,
		Vitality:    c.Vitality,
		MaxVitality: c.MaxVitality,
		Mana:        c.Mana,
		X:           c.Position.X,
		Y:           c.Position.Y,
		OnBoard:     c.OnBoard,
	}
}

// onDefeat drops the creature's inventory on its tile and tells the script.
func (e *Encounter) onDefeat(c *creature.Creature) {
	e.logger.Info("creature defeated", zap.String("creature", c.ID))
	if c.Placed() {
		for _, itemID := range c.Inventory {
			e.floor.Drop(c.Position, itemID)
			e.log.Message(fmt.Sprintf("%s drops %s.", combat.DisplayName(c), itemID))
		}
		c.Inventory = nil
	}
	if e.scripts != nil {
		if _, err := e.scripts.CallHook(e.scenario.ID, "on_defeat", lua.LString(c.ID)); err != nil {
			e.logger.Warn("on_defeat hook failed", zap.String("creature", c.ID), zap.Error(err))
		}
	}
}

func (e *Encounter) playerCreature(id string) (*creature.Creature, error) {
	c := creature.Find(e.creatures, id)
	if c == nil {
		return nil, fmt.Errorf("%q: %w", id, ErrUnknownCreature)
	}
	if !c.IsPlayerControlled() {
		return nil, fmt.Errorf("%q: %w", id, ErrNotPlayerControlled)
	}
	return c, nil
}

// Reachable returns the tiles creature id could move to now.
func (e *Encounter) Reachable(id string) (pathing.Result, error) {
	c := creature.Find(e.creatures, id)
	if c == nil {
		return pathing.Result{}, fmt.Errorf("encounter.Reachable: %q: %w", id, ErrUnknownCreature)
	}
	return pathing.GetReachableTiles(c, e.creatures, e.board), nil
}

// PlayerMove moves a player creature to `to` along the cheapest path.
//
// Postcondition: an unreachable destination is logged and returned as a
// rejected MoveResult with nothing changed; errors are reserved for unknown or
// AI-controlled creatures.
func (e *Encounter) PlayerMove(id string, to world.Point) (pathing.MoveResult, error) {
	c, err := e.playerCreature(id)
	if err != nil {
		return pathing.MoveResult{}, fmt.Errorf("encounter.PlayerMove: %w", err)
	}
	reach := pathing.GetReachableTiles(c, e.creatures, e.board)
	path, ok := reach.PathTo(to)
	if !ok || len(path) == 0 {
		res := pathing.MoveResult{Status: pathing.MoveRejected, Reason: fmt.Sprintf("%s is not reachable", to)}
		e.log.Message(fmt.Sprintf("%s cannot move to %s.", combat.DisplayName(c), to))
		return res, nil
	}
	res := pathing.ApplyMove(c, path, e.creatures, e.board)
	switch res.Status {
	case pathing.MoveRejected:
		e.log.Message(fmt.Sprintf("%s cannot move to %s: %s.", combat.DisplayName(c), to, res.Reason))
	default:
		e.log.Message(fmt.Sprintf("%s moves to %s.", combat.DisplayName(c), c.Position))
		if res.Engaged {
			e.log.Message(fmt.Sprintf("%s is engaged and stops.", combat.DisplayName(c)))
		}
	}
	return res, nil
}

// PlayerAttack has a player creature attack targetID. weaponRef names a
// weapon or spell by instance ID or definition ID; empty picks the first
// armament that can make the attack.
//
// Postcondition: a rejected attack logs its reason and changes nothing.
func (e *Encounter) PlayerAttack(attackerID, targetID, weaponRef string) (combat.Result, error) {
	c, err := e.playerCreature(attackerID)
	if err != nil {
		return combat.Result{}, fmt.Errorf("encounter.PlayerAttack: %w", err)
	}
	target := creature.Find(e.creatures, targetID)
	if target == nil {
		return combat.Result{}, fmt.Errorf("encounter.PlayerAttack: %q: %w", targetID, ErrUnknownCreature)
	}
	var weapon *inventory.Weapon
	if weaponRef != "" {
		for _, w := range c.Armaments() {
			if w.InstanceID == weaponRef || w.Def.ID == weaponRef {
				weapon = w
				break
			}
		}
		if weapon == nil {
			return combat.Result{}, fmt.Errorf("encounter.PlayerAttack: %q: %w", weaponRef, ErrUnknownWeapon)
		}
	} else {
		weapon, _ = e.executor.Engine().ChooseArmament(c, target, e.creatures, e.board, nil)
	}

	res := e.resolver.ResolveAttack(c, target, weapon, e.creatures, e.board)
	for _, line := range res.Narrative {
		e.log.Message(line)
	}
	if res.TargetDefeated {
		e.onDefeat(target)
	}
	return res, nil
}

// AutoPlay runs a player creature's turn through the AI executor, as if it
// had a behavior suited to its armaments. Used for unattended play.
//
// Postcondition: c.AI is restored afterwards; returns whether anything happened.
func (e *Encounter) AutoPlay(ctx context.Context, id string) (bool, error) {
	c, err := e.playerCreature(id)
	if err != nil {
		return false, fmt.Errorf("encounter.AutoPlay: %w", err)
	}
	saved := c.AI
	st := creature.AIState{Behavior: creature.BehaviorMelee}
	if prefs := ai.Preferred(c); len(prefs) > 0 {
		switch {
		case prefs[0].Def.IsRanged():
			st = creature.AIState{Behavior: creature.BehaviorRanged, KeepDistance: true}
		case prefs[0].Def.IsSpell():
			st = creature.AIState{Behavior: creature.BehaviorCaster, KeepDistance: true}
		}
	}
	c.AI = &st
	defer func() { c.AI = saved }()
	acted, err := e.executor.ExecuteAITurnForCreature(ctx, c, e.tc())
	if err != nil {
		return acted, fmt.Errorf("encounter.AutoPlay: %w", err)
	}
	return acted, nil
}

func (e *Encounter) tc() *ai.TurnContext {
	return &ai.TurnContext{
		Creatures: e.creatures,
		Board:     e.board,
		Sink:      e.log,
		Presenter: e.pc.Presenter,
		OnDefeat:  e.onDefeat,
	}
}

// Active returns the creature whose turn it is, or nil when nobody can act.
func (e *Encounter) Active() *creature.Creature {
	if !e.pc.Turn.HasActive() {
		return nil
	}
	return creature.Find(e.creatures, e.pc.Turn.ActiveID)
}

// NextCreature passes the turn to the next creature that can act.
func (e *Encounter) NextCreature() *creature.Creature {
	e.pc.Turn = turn.AdvanceToNextCreature(e.pc.Turn, e.creatures)
	return e.Active()
}

// EndTurn ends the player phase: the AI groups act, then a new round begins.
//
// Postcondition: on success Round has incremented.
func (e *Encounter) EndTurn(ctx context.Context) error {
	if err := e.orchestrator.EndTurn(ctx, e.pc); err != nil {
		return fmt.Errorf("encounter.EndTurn: %w", err)
	}
	return nil
}

// Outcome reports defeat once no player-controlled creature lives, victory once
// none of them faces a living hostile, and ongoing otherwise.
func (e *Encounter) Outcome() Outcome {
	var players []*creature.Creature
	for _, c := range creature.Living(e.creatures) {
		if c.IsPlayerControlled() {
			players = append(players, c)
		}
	}
	if len(players) == 0 {
		return OutcomeDefeat
	}
	for _, c := range creature.Living(e.creatures) {
		for _, p := range players {
			if c.IsHostileTo(p) {
				return OutcomeOngoing
			}
		}
	}
	return OutcomeVictory
}

// Creature returns the creature with the given ID.
func (e *Encounter) Creature(id string) (*creature.Creature, bool) {
	c := creature.Find(e.creatures, id)
	return c, c != nil
}

// Creatures returns every creature, living or dead, in placement order.
func (e *Encounter) Creatures() []*creature.Creature {
	return append([]*creature.Creature(nil), e.creatures...)
}

// Living returns the creatures with vitality left.
func (e *Encounter) Living() []*creature.Creature { return creature.Living(e.creatures) }

// Groups returns the encounter's groups.
func (e *Encounter) Groups() []*creature.Group { return append([]*creature.Group(nil), e.groups...) }

// Board returns the battle map.
func (e *Encounter) Board() *world.Board { return e.board }

// Floor returns the items lying on the map.
func (e *Encounter) Floor() *inventory.Floor { return e.floor }

// Log returns the message log.
func (e *Encounter) Log() *Log { return e.log }

// Turn returns the current turn state.
func (e *Encounter) Turn() turn.TurnState { return e.pc.Turn }

// Round returns the current round number.
func (e *Encounter) Round() int { return e.pc.Turn.Round }

// Close releases the scenario's script VM.
func (e *Encounter) Close() {
	if e.scripts != nil {
		e.scripts.Close()
	}
}
