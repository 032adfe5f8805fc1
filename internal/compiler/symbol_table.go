package compiler

type SymbolScope string

const GlobalScope SymbolScope = "GLOBAL"
const LocalScope SymbolScope = "LOCAL"
const FreeScope SymbolScope = "FREE"
const FunctionScope SymbolScope = "FUNCTION"

type Symbol struct {
	Name  string
	Scope SymbolScope
	Index int
}

// SymbolTable resolves names for one function body. The outermost table of
// a file holds the module's globals, indexed by their program-wide slot.
type SymbolTable struct {
	Outer          *SymbolTable
	store          map[string]Symbol
	numDefinitions int
	FreeSymbols    []Symbol
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{store: map[string]Symbol{}}
}

func NewEnclosedSymbolTable(outer *SymbolTable) *SymbolTable {
	st := NewSymbolTable()
	st.Outer = outer
	return st
}

// DefineGlobal binds name to an existing program global slot.
func (st *SymbolTable) DefineGlobal(name string, slot int) Symbol {
	sym := Symbol{Name: name, Scope: GlobalScope, Index: slot}
	st.store[name] = sym
	return sym
}

func (st *SymbolTable) Define(name string) Symbol {
	sym := Symbol{Name: name, Scope: LocalScope, Index: st.numDefinitions}
	st.store[name] = sym
	st.numDefinitions++
	return sym
}

// DefineFunctionName lets a named nested function refer to itself.
func (st *SymbolTable) DefineFunctionName(name string) Symbol {
	sym := Symbol{Name: name, Scope: FunctionScope, Index: 0}
	st.store[name] = sym
	return sym
}

func (st *SymbolTable) defineFree(original Symbol) Symbol {
	st.FreeSymbols = append(st.FreeSymbols, original)
	sym := Symbol{Name: original.Name, Index: len(st.FreeSymbols) - 1, Scope: FreeScope}
	st.store[original.Name] = sym
	return sym
}

func (st *SymbolTable) Resolve(name string) (Symbol, bool) {
	if sym, ok := st.store[name]; ok {
		return sym, true
	}
	if st.Outer == nil {
		return Symbol{}, false
	}

	outerSym, ok := st.Outer.Resolve(name)
	if !ok {
		return Symbol{}, false
	}

	if outerSym.Scope == GlobalScope {
		return outerSym, true
	}

	free := st.defineFree(outerSym)
	return free, true
}
