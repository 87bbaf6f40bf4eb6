package asmengine

import (
	"errors"
	"fmt"
)

// ErrCircularEQU is returned by SymbolTable.ExpandEqu (and, lazily, by
// the EQU expansion Value.Finalize runs, which reports it as a
// diagnostic) when expanding a symbol's EQU expression would
// recurse back into itself (diag err_equ_circular_reference).
var ErrCircularEQU = errors.New("circular EQU reference")

// SymbolVisibility is a combinable bitmask of symbol visibility
// flags. The zero value is local-only visibility.
type SymbolVisibility uint8

const (
	VisGlobal SymbolVisibility = 1 << iota
	VisCommon
	VisExtern
	VisDLocal
)

func (v SymbolVisibility) String() string {
	if v == 0 {
		return "local"
	}
	s := ""
	for _, f := range []struct {
		bit  SymbolVisibility
		name string
	}{
		{VisGlobal, "global"}, {VisCommon, "common"}, {VisExtern, "extern"}, {VisDLocal, "dlocal"},
	} {
		if v&f.bit != 0 {
			if s != "" {
				s += "+"
			}
			s += f.name
		}
	}
	return s
}

// SymbolKind is the closed set of ways a symbol can be defined.
type SymbolKind int

const (
	SymUnknown SymbolKind = iota
	SymEqu
	SymLabel
	SymSpecial
)

func (k SymbolKind) String() string {
	switch k {
	case SymUnknown:
		return "unknown"
	case SymEqu:
		return "equ"
	case SymLabel:
		return "label"
	case SymSpecial:
		return "special"
	default:
		return "unknown-kind"
	}
}

// SymbolRedefinedError reports a second, conflicting definition of a
// symbol, carrying the original definition's source for a
// note_previous_definition companion diagnostic.
type SymbolRedefinedError struct {
	Name string
	Prev SourceRange
}

func (e *SymbolRedefinedError) Error() string {
	return fmt.Sprintf("symbol %q redefined (previously defined at %s)", e.Name, e.Prev)
}

// ReportSymbolError bridges a Go error returned by Declare/DefineEqu/
// DefineLabel/DefineSpecial into Diagnostics: a *SymbolRedefinedError
// raises err_symbol_redefined at source plus a note_previous_definition
// companion at its carried Prev location; any other error raises
// err_symbol_redefined alone. Returns true if err was nil (nothing to
// report).
func ReportSymbolError(diags Diagnostics, source SourceRange, err error) bool {
	if err == nil {
		return true
	}
	if diags == nil {
		return false
	}
	if redef, ok := err.(*SymbolRedefinedError); ok {
		diags.Report(ErrSymbolRedefined, source, redef.Error())
		diags.Report(NotePreviousDefinition, redef.Prev, fmt.Sprintf("%q previously defined here", redef.Name))
		return false
	}
	diags.Report(ErrSymbolRedefined, source, err.Error())
	return false
}

// Symbol is one entry in a SymbolTable. Visibility and
// definition are tracked independently: a symbol may be declared
// extern before ever being referenced, or defined as a label before
// being declared global.
type Symbol struct {
	Name string
	Vis  SymbolVisibility
	Kind SymbolKind

	EquExpr *Expression
	Label   Location

	Defined bool
	Valued  bool
	Used    bool

	DeclSource     SourceRange
	DefSource      SourceRange
	FirstUseSource SourceRange
}

// NewSymbol constructs an undefined, purely-local symbol; callers
// normally go through SymbolTable.Declare/DefineEqu/DefineLabel instead
// of calling this directly.
func NewSymbol(name string) *Symbol {
	return &Symbol{Name: name, Kind: SymUnknown}
}

func (s *Symbol) MarkUsed(source SourceRange) {
	if !s.Used {
		s.Used = true
		s.FirstUseSource = source
	}
}

// Declare adds visibility flags. Global is always addable. Common and
// extern are mutually exclusive with each other and with any
// definition (EQU/label/special); a redundant declaration of a flag the
// symbol already carries is silently allowed.
func (s *Symbol) Declare(vis SymbolVisibility, source SourceRange) error {
	if vis&VisGlobal != 0 {
		s.Vis |= VisGlobal
	}
	if vis&VisDLocal != 0 {
		s.Vis |= VisDLocal
	}
	if vis&VisCommon != 0 {
		if s.Vis&VisExtern != 0 {
			return fmt.Errorf("symbol %q: cannot be both common and extern", s.Name)
		}
		if s.Defined {
			return &SymbolRedefinedError{Name: s.Name, Prev: s.DefSource}
		}
		s.Vis |= VisCommon
	}
	if vis&VisExtern != 0 {
		if s.Vis&VisCommon != 0 {
			return fmt.Errorf("symbol %q: cannot be both common and extern", s.Name)
		}
		if s.Defined {
			return &SymbolRedefinedError{Name: s.Name, Prev: s.DefSource}
		}
		s.Vis |= VisExtern
	}
	if s.DeclSource == (SourceRange{}) {
		s.DeclSource = source
	}
	return nil
}

func (s *Symbol) checkDefinable() error {
	if s.Vis&(VisExtern|VisCommon) != 0 {
		return fmt.Errorf("symbol %q: cannot define an extern/common symbol", s.Name)
	}
	if s.Defined {
		return &SymbolRedefinedError{Name: s.Name, Prev: s.DefSource}
	}
	return nil
}

// DefineEqu defines s as an EQU alias for expr.
func (s *Symbol) DefineEqu(expr Expression, source SourceRange) error {
	if err := s.checkDefinable(); err != nil {
		return err
	}
	cloned := expr.Clone()
	s.Kind = SymEqu
	s.EquExpr = &cloned
	s.Defined = true
	s.Valued = true
	s.DefSource = source
	return nil
}

// DefineLabel defines s as a label attached to loc.
func (s *Symbol) DefineLabel(loc Location, source SourceRange) error {
	if err := s.checkDefinable(); err != nil {
		return err
	}
	s.Kind = SymLabel
	s.Label = loc
	s.Defined = true
	s.Valued = true
	s.DefSource = source
	return nil
}

// DefineSpecial defines s as a special (object-format-owned, e.g. the
// absolute-address pseudo-symbol) symbol with no value of its own.
func (s *Symbol) DefineSpecial(source SourceRange) error {
	if err := s.checkDefinable(); err != nil {
		return err
	}
	s.Kind = SymSpecial
	s.Defined = true
	s.DefSource = source
	return nil
}

// SymbolTable owns every Symbol in an Object: a name-keyed dictionary
// for lookup, plus an append-only vector preserving declaration order
// for deterministic output-symbol-table iteration.
type SymbolTable struct {
	byName    map[string]*Symbol
	all       []*Symbol
	expanding map[string]bool
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{byName: make(map[string]*Symbol)}
}

// Lookup returns the symbol named name without creating it.
func (t *SymbolTable) Lookup(name string) (*Symbol, bool) {
	s, ok := t.byName[name]
	return s, ok
}

// Use returns the symbol named name, creating an undefined one (and
// recording it in declaration order) on first reference. This mirrors
// yasm's "referencing an undeclared symbol implicitly creates it with
// local visibility" behavior.
func (t *SymbolTable) Use(name string) *Symbol {
	if s, ok := t.byName[name]; ok {
		return s
	}
	s := NewSymbol(name)
	t.byName[name] = s
	t.all = append(t.all, s)
	return s
}

// All returns every symbol in declaration order.
func (t *SymbolTable) All() []*Symbol {
	return t.all
}

// ExpandEqu fully inlines s's EQU expression, recursively expanding any
// EQU symbols it references, detecting cycles via a currently-expanding
// set.
func (t *SymbolTable) ExpandEqu(s *Symbol) (Expression, error) {
	if s.Kind != SymEqu || s.EquExpr == nil {
		return Expression{}, fmt.Errorf("symbol %q: not an EQU symbol", s.Name)
	}
	return t.expandEquExpr(s)
}

// ExpandExpr expands every EQU symbol reference anywhere in e (not
// just a top-level EQU definition), used by Value.Finalize before
// scanning an expression for its relative parts.
func (t *SymbolTable) ExpandExpr(e Expression) (Expression, error) {
	out := e.Clone()
	for {
		idx := -1
		for i, term := range out.Terms {
			if term.Kind == TermSymbol && term.Sym != nil && term.Sym.Kind == SymEqu {
				idx = i
				break
			}
		}
		if idx < 0 {
			break
		}
		sub, err := t.expandEquExpr(out.Terms[idx].Sym)
		if err != nil {
			return Expression{}, err
		}
		repl := cloneTerms(sub.Terms)
		rebaseDepth(repl, 0, len(repl)-1, out.Terms[idx].Depth)
		out.Terms = spliceTerms(out.Terms, idx, idx, repl)
	}
	return out, nil
}

func (t *SymbolTable) expandEquExpr(sym *Symbol) (Expression, error) {
	if t.expanding == nil {
		t.expanding = make(map[string]bool)
	}
	if t.expanding[sym.Name] {
		return Expression{}, ErrCircularEQU
	}
	t.expanding[sym.Name] = true
	defer delete(t.expanding, sym.Name)

	out := sym.EquExpr.Clone()
	for {
		idx := -1
		for i, term := range out.Terms {
			if term.Kind == TermSymbol && term.Sym != nil && term.Sym.Kind == SymEqu {
				idx = i
				break
			}
		}
		if idx < 0 {
			break
		}
		sub, err := t.expandEquExpr(out.Terms[idx].Sym)
		if err != nil {
			return Expression{}, fmt.Errorf("expanding %q: %w", sym.Name, err)
		}
		repl := cloneTerms(sub.Terms)
		rebaseDepth(repl, 0, len(repl)-1, out.Terms[idx].Depth)
		out.Terms = spliceTerms(out.Terms, idx, idx, repl)
	}
	return out, nil
}
