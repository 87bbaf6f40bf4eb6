package asmengine

// TermKind tags which field of an ExprTerm is inhabited: exactly one
// tag is inhabited at a time.
type TermKind int

const (
	TermNone TermKind = iota
	TermInteger
	TermFloat
	TermRegister
	TermSymbol
	TermLocation
	TermSubst
	TermOperator
)

func (k TermKind) String() string {
	switch k {
	case TermNone:
		return "none"
	case TermInteger:
		return "integer"
	case TermFloat:
		return "float"
	case TermRegister:
		return "register"
	case TermSymbol:
		return "symbol"
	case TermLocation:
		return "location"
	case TermSubst:
		return "subst"
	case TermOperator:
		return "operator"
	default:
		return "unknown-kind"
	}
}

// ExprTerm is one entry in an Expression's flat RPN buffer. Unlike
// yasm's own parent-pointer tree, ExprTerm carries no parent/child
// pointers: structure is implied purely by Depth and linear position.
type ExprTerm struct {
	Kind TermKind

	Int   BigInt
	Float BigFloat
	Reg   RegisterRef
	Sym   *Symbol
	Loc   Location
	Subst uint32

	Op    Operator
	Arity int

	// Depth is the distance from the virtual root: root is 0, its
	// immediate children are 1, and so on. AppendOp bumps every existing
	// term's depth by one before appending the new operator at depth 0.
	Depth int

	Source SourceRange
}

// IsEmpty reports whether the term is a cleared (NONE-tagged) hole, the
// transient state Cleanup removes.
func (t ExprTerm) IsEmpty() bool { return t.Kind == TermNone }

// IsOp reports whether the term is an operator, optionally of a specific
// Operator when op != OpNone is also checked by the caller via Op field.
func (t ExprTerm) IsOp() bool { return t.Kind == TermOperator }

// TermInt constructs an Integer term at depth 0 (AppendOp/leveling will
// adjust depth as the term is woven into a larger tree).
func TermInt(v BigInt, source SourceRange) ExprTerm {
	return ExprTerm{Kind: TermInteger, Int: v, Source: source}
}

func TermFlt(v BigFloat, source SourceRange) ExprTerm {
	return ExprTerm{Kind: TermFloat, Float: v, Source: source}
}

func TermReg(r RegisterRef, source SourceRange) ExprTerm {
	return ExprTerm{Kind: TermRegister, Reg: r, Source: source}
}

func TermSym(s *Symbol, source SourceRange) ExprTerm {
	return ExprTerm{Kind: TermSymbol, Sym: s, Source: source}
}

func TermLoc(l Location, source SourceRange) ExprTerm {
	return ExprTerm{Kind: TermLocation, Loc: l, Source: source}
}

func TermSubstPlaceholder(idx uint32, source SourceRange) ExprTerm {
	return ExprTerm{Kind: TermSubst, Subst: idx, Source: source}
}

func TermOp(op Operator, arity int, source SourceRange) ExprTerm {
	return ExprTerm{Kind: TermOperator, Op: op, Arity: arity, Source: source}
}

// termTypeMask is a bitmask form of TermKind, used by Expression.Contains
// so callers can test for several kinds in one pass.
type termTypeMask uint32

const (
	MaskNone     termTypeMask = 1 << TermNone
	MaskInteger  termTypeMask = 1 << TermInteger
	MaskFloat    termTypeMask = 1 << TermFloat
	MaskRegister termTypeMask = 1 << TermRegister
	MaskSymbol   termTypeMask = 1 << TermSymbol
	MaskLocation termTypeMask = 1 << TermLocation
	MaskSubst    termTypeMask = 1 << TermSubst
	MaskOperator termTypeMask = 1 << TermOperator
)

func (t ExprTerm) matches(mask termTypeMask) bool {
	return mask&(1<<t.Kind) != 0
}
