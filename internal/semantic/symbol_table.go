package semantic

import "github.com/mkerian10/pluto/internal/types"

// Symbol is one binding in scope.
type Symbol struct {
	Name    string
	Type    types.Type
	Mutable bool
}

// SymbolTable is a lexically scoped symbol table. Inner scopes shadow outer
// ones; nullable narrowing is expressed by redefining a binding with its
// unwrapped type in the narrowed scope.
type SymbolTable struct {
	outer   *SymbolTable
	symbols map[string]*Symbol
}

// NewSymbolTable creates a root scope.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{symbols: make(map[string]*Symbol)}
}

// NewEnclosedSymbolTable creates a child scope.
func NewEnclosedSymbolTable(outer *SymbolTable) *SymbolTable {
	return &SymbolTable{outer: outer, symbols: make(map[string]*Symbol)}
}

// Define binds a name in the current scope.
func (s *SymbolTable) Define(name string, typ types.Type, mutable bool) *Symbol {
	sym := &Symbol{Name: name, Type: typ, Mutable: mutable}
	s.symbols[name] = sym
	return sym
}

// Resolve looks a name up through enclosing scopes.
func (s *SymbolTable) Resolve(name string) (*Symbol, bool) {
	if sym, ok := s.symbols[name]; ok {
		return sym, true
	}
	if s.outer != nil {
		return s.outer.Resolve(name)
	}
	return nil, false
}

// ResolveLocal looks a name up in the current scope only.
func (s *SymbolTable) ResolveLocal(name string) (*Symbol, bool) {
	sym, ok := s.symbols[name]
	return sym, ok
}
