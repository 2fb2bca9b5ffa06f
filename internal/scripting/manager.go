package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

// globalScopeID is the reserved key for shared scripts loaded via LoadGlobal.
// CallHook falls back to this VM when no scope VM is found.
const globalScopeID = "__global__"

// CreatureInfo is a snapshot of a creature's state passed to Lua callbacks.
type CreatureInfo struct {
	ID          string
	Name        string
	Faction     string
	GroupID     string
	Vitality    int
	MaxVitality int
	Mana        int
	X, Y        int
	OnBoard     bool
}

// vm is one scope's interpreter. Each LState is single-threaded, so calls
// into the same scope serialize on mu.
type vm struct {
	mu    sync.Mutex
	L     *lua.LState
	limit int
}

// Manager owns one sandboxed LState per scope (normally one per scenario) and
// exposes hook dispatch.
//
// Manager is safe for concurrent CallHook after all Load calls complete.
type Manager struct {
	mu     sync.RWMutex
	vms    map[string]*vm
	roller *dice.Roller
	logger *zap.Logger

	// Injected after construction. nil = no-op in engine.* modules.
	GetCreature func(id string) *CreatureInfo
	Message     func(msg string)
}

// NewManager creates a Manager.
//
// Precondition: roller and logger must be non-nil.
// Postcondition: Returns a non-nil Manager with no scopes loaded.
func NewManager(roller *dice.Roller, logger *zap.Logger) *Manager {
	if roller == nil {
		panic("scripting.NewManager: roller must not be nil")
	}
	if logger == nil {
		panic("scripting.NewManager: logger must not be nil")
	}
	return &Manager{
		vms:    make(map[string]*vm),
		roller: roller,
		logger: logger,
	}
}

// LoadScope creates a sandboxed VM for scopeID, registers all engine.* modules,
// then executes every *.lua file in scriptDir in lexicographic order.
//
// Precondition: scopeID must be non-empty; scriptDir must be a readable directory.
// Postcondition: the scope VM is registered, replacing any previous one; returns
// error on Lua load failure.
func (m *Manager) LoadScope(scopeID, scriptDir string, instLimit int) error {
	files, err := luaFiles(scriptDir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q for %q: %w", scriptDir, scopeID, err)
	}
	return m.loadInto(scopeID, files, instLimit)
}

// LoadFiles creates a sandboxed VM for scopeID from the given files, in order.
//
// Precondition: scopeID must be non-empty.
// Postcondition: as LoadScope.
func (m *Manager) LoadFiles(scopeID string, paths []string, instLimit int) error {
	return m.loadInto(scopeID, paths, instLimit)
}

// LoadGlobal creates the "__global__" VM for shared scripts accessible as a
// CallHook fallback from any scope.
//
// Precondition: scriptDir must be a readable directory.
// Postcondition: Global VM is registered; returns error on Lua load failure.
func (m *Manager) LoadGlobal(scriptDir string, instLimit int) error {
	return m.LoadScope(globalScopeID, scriptDir, instLimit)
}

func luaFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *Manager) loadInto(key string, paths []string, instLimit int) error {
	if key == "" {
		return fmt.Errorf("scripting: scope id must not be empty")
	}
	L := NewSandboxedState(instLimit)
	m.RegisterModules(L)

	for _, path := range paths {
		err := WithBudget(L, instLimit, func() error { return L.DoFile(path) })
		if err != nil {
			L.Close()
			return fmt.Errorf("scripting: loading %q for %q: %w", path, key, err)
		}
	}

	m.mu.Lock()
	if old, ok := m.vms[key]; ok {
		old.mu.Lock()
		old.L.Close()
		old.mu.Unlock()
	}
	m.vms[key] = &vm{L: L, limit: instLimit}
	m.mu.Unlock()
	m.logger.Debug("scripting: scope loaded", zap.String("scope", key), zap.Int("files", len(paths)))
	return nil
}

// HasScope reports whether a VM is registered for scopeID.
func (m *Manager) HasScope(scopeID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.vms[scopeID]
	return ok
}

// CallHook calls the named Lua global function in scopeID's VM. If the scope
// has no VM, the __global__ VM is tried as a fallback. Returns (LNil, nil) if
// the hook is not defined or no VM exists. Lua runtime errors, including an
// exhausted instruction budget, are logged at Warn level and never propagated.
//
// Precondition: args must be valid lua.LValue instances.
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(scopeID, hook string, args ...lua.LValue) (lua.LValue, error) {
	m.mu.RLock()
	v, ok := m.vms[scopeID]
	if !ok {
		v = m.vms[globalScopeID]
	}
	m.mu.RUnlock()

	if v == nil {
		m.logger.Info("scripting: no VM for scope",
			zap.String("scope", scopeID),
			zap.String("hook", hook),
		)
		return lua.LNil, nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	fn := v.L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, nil
	}

	err := WithBudget(v.L, v.limit, func() error {
		return v.L.CallByParam(lua.P{
			Fn:      fn,
			NRet:    1,
			Protect: true,
		}, args...)
	})
	if err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("scope", scopeID),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}

	ret := v.L.Get(-1)
	v.L.Pop(1)
	return ret, nil
}

// Close releases every VM.
//
// Postcondition: no scopes remain; CallHook returns LNil until the next Load.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, v := range m.vms {
		v.mu.Lock()
		v.L.Close()
		v.mu.Unlock()
		delete(m.vms, key)
	}
}
