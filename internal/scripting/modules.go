package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules registers all engine.* Lua tables into L:
//
//	engine.log.debug/info/warn/error(msg)
//	engine.dice.roll(expr) -> total
//	engine.creature(id) -> table or nil
//	engine.message(text)
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()

	logTbl := L.NewTable()
	for name, fn := range map[string]func(string, ...zap.Field){
		"debug": m.logger.Debug,
		"info":  m.logger.Info,
		"warn":  m.logger.Warn,
		"error": m.logger.Error,
	} {
		logFn := fn
		L.SetField(logTbl, name, L.NewFunction(func(L *lua.LState) int {
			logFn("lua: "+L.CheckString(1), zap.String("source", "script"))
			return 0
		}))
	}
	L.SetField(engine, "log", logTbl)

	diceTbl := L.NewTable()
	L.SetField(diceTbl, "roll", L.NewFunction(m.luaRoll))
	L.SetField(engine, "dice", diceTbl)

	L.SetField(engine, "creature", L.NewFunction(m.luaCreature))
	L.SetField(engine, "message", L.NewFunction(m.luaMessage))

	L.SetGlobal("engine", engine)
}

func (m *Manager) luaRoll(L *lua.LState) int {
	res, err := m.roller.RollExpr(L.CheckString(1))
	if err != nil {
		L.RaiseError("engine.dice.roll: %s", err.Error())
		return 0
	}
	L.Push(lua.LNumber(res.Total()))
	return 1
}

func (m *Manager) luaCreature(L *lua.LState) int {
	id := L.CheckString(1)
	if m.GetCreature == nil {
		L.Push(lua.LNil)
		return 1
	}
	info := m.GetCreature(id)
	if info == nil {
		L.Push(lua.LNil)
		return 1
	}
	t := L.NewTable()
	L.SetField(t, "id", lua.LString(info.ID))
	L.SetField(t, "name", lua.LString(info.Name))
	L.SetField(t, "faction", lua.LString(info.Faction))
	L.SetField(t, "group", lua.LString(info.GroupID))
	L.SetField(t, "vitality", lua.LNumber(info.Vitality))
	L.SetField(t, "max_vitality", lua.LNumber(info.MaxVitality))
	L.SetField(t, "mana", lua.LNumber(info.Mana))
	L.SetField(t, "x", lua.LNumber(info.X))
	L.SetField(t, "y", lua.LNumber(info.Y))
	L.SetField(t, "on_board", lua.LBool(info.OnBoard))
	L.SetField(t, "alive", lua.LBool(info.Vitality > 0))
	L.Push(t)
	return 1
}

func (m *Manager) luaMessage(L *lua.LState) int {
	msg := L.CheckString(1)
	if m.Message != nil {
		m.Message(msg)
	}
	return 0
}
