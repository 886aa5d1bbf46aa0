// Package symbols implements the compile-time symbol table: global macros
// and routines, plus the scoping rules the main parser (component G) needs
// to detect duplicate routine names, duplicate parameter names, and nested
// routine definitions. Runtime variable bindings live in the VM's call
// stack (package vm), not here — macros and routines are the only symbols
// that exist before the program runs.
package symbols

import "github.com/EmonFan/bardolph/internal/vm"

// Kind distinguishes the symbol categories the spec names.
type Kind int

const (
	KindMacro Kind = iota
	KindVar
	KindParam
	KindRoutine
)

// Routine is a global symbol binding a name to where its body starts and
// what parameters it declares.
type Routine struct {
	Name    string
	Address int
	Params  []string
}

// paramScope tracks the parameter/variable names declared while compiling
// one routine body, so duplicate parameter names are caught before code
// generation proceeds.
type paramScope struct {
	names map[string]Kind
}

// Table is the global symbol table: macros and routines (global, looked up
// first) plus a stack of per-routine parameter scopes and a nesting depth
// used to reject routines defined inside other routines.
type Table struct {
	macros      map[string]vm.Value
	routines    map[string]*Routine
	scopes      []*paramScope
	routineDepth int
}

// New returns an empty symbol table.
func New() *Table {
	return &Table{
		macros:   map[string]vm.Value{},
		routines: map[string]*Routine{},
		scopes:   []*paramScope{{names: map[string]Kind{}}},
	}
}

// Clear resets the table to empty, as between independent compiles.
func (t *Table) Clear() {
	t.macros = map[string]vm.Value{}
	t.routines = map[string]*Routine{}
	t.scopes = []*paramScope{{names: map[string]Kind{}}}
	t.routineDepth = 0
}

// Push opens a new parameter scope, entered when compiling a routine body.
func (t *Table) Push() {
	t.scopes = append(t.scopes, &paramScope{names: map[string]Kind{}})
}

// Pop closes the innermost parameter scope.
func (t *Table) Pop() {
	if len(t.scopes) > 1 {
		t.scopes = t.scopes[:len(t.scopes)-1]
	}
}

func (t *Table) top() *paramScope { return t.scopes[len(t.scopes)-1] }

// EnterRoutine/ExitRoutine/InRoutine track routine-definition nesting so the
// parser can reject a "define" found inside another routine's body.
func (t *Table) EnterRoutine() { t.routineDepth++ }
func (t *Table) ExitRoutine()  { t.routineDepth-- }
func (t *Table) InRoutine() bool { return t.routineDepth > 0 }

// AddGlobal binds a macro's compile-time constant value.
func (t *Table) AddGlobal(name string, value vm.Value) {
	t.macros[name] = value
}

// GetMacro looks up a macro by name.
func (t *Table) GetMacro(name string) (vm.Value, bool) {
	v, ok := t.macros[name]
	return v, ok
}

// AddRoutine binds a routine name, failing if it's already bound — a
// routine name may be bound at most once.
func (t *Table) AddRoutine(r Routine) error {
	if _, exists := t.routines[r.Name]; exists {
		return duplicateRoutineError(r.Name)
	}
	cp := r
	t.routines[r.Name] = &cp
	return nil
}

// GetRoutine looks up a routine by name.
func (t *Table) GetRoutine(name string) (Routine, bool) {
	r, ok := t.routines[name]
	if !ok {
		return Routine{}, false
	}
	return *r, true
}

// AddVariable declares a variable name in the current parameter scope.
func (t *Table) AddVariable(name string) {
	t.top().names[name] = KindVar
}

// AddParam declares a parameter name in the current scope, failing on a
// duplicate within the same routine's parameter list.
func (t *Table) AddParam(name string) error {
	if _, exists := t.top().names[name]; exists {
		return duplicateParamError(name)
	}
	t.top().names[name] = KindParam
	return nil
}

// HasSymbolTyped reports whether name is declared, in the current scope, as
// the given kind.
func (t *Table) HasSymbolTyped(name string, kind Kind) bool {
	if kind == KindMacro {
		_, ok := t.macros[name]
		return ok
	}
	if kind == KindRoutine {
		_, ok := t.routines[name]
		return ok
	}
	k, ok := t.top().names[name]
	return ok && k == kind
}
