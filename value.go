package asmengine

import (
	"errors"
	"fmt"
)

// ErrTooComplexValue is returned internally by finalizeScan when an
// expression's relative parts can't be reduced to the bounded
// abs/rel/sub/wrt shape Value supports (diag
// err_too_complex_expression / err_too_complex_jump).
var ErrTooComplexValue = errors.New("expression too complex for a relocatable value")

// SubPart is the subtractive relative operand of a Value: either a
// defined symbol or a bare Location (e.g. "current position", used by
// CalcPCRelSub).
type SubPart struct {
	Sym    *Symbol
	Loc    Location
	HasLoc bool
}

func (s SubPart) Empty() bool { return s.Sym == nil && !s.HasLoc }

// Value is a bounded relocatable expression: at most one additive
// relative symbol (Rel), at most one subtractive relative part (Sub),
// at most one WRT reference frame (Wrt), plus a purely absolute residue
// (Abs) and output-field geometry (Size/Shift/RShift/Sign).
type Value struct {
	Abs *Expression
	Rel *Symbol
	Sub SubPart
	Wrt *Symbol

	Size   uint
	Shift  uint
	RShift uint
	Sign   bool

	SegOf      bool
	IPRel      bool
	JumpTarget bool
	SectionRel bool
	NoWarn     bool

	InsnStart uint64

	nextInsn    uint64
	hasNextInsn bool

	Valued bool
}

func NewValue(size uint) *Value { return &Value{Size: size} }

func NewValueExpr(size uint, e Expression) *Value {
	cloned := e.Clone()
	return &Value{Size: size, Abs: &cloned}
}

func NewValueSymbol(size uint, s *Symbol, source SourceRange) *Value {
	e := NewExprSymbol(s, source)
	return &Value{Size: size, Abs: &e}
}

// NextInsn returns the recorded offset of the instruction following the
// one this value belongs to, used by PC-relative jump targets.
func (v *Value) NextInsn() (uint64, bool) { return v.nextInsn, v.hasNextInsn }

func (v *Value) SetNextInsn(off uint64) {
	v.nextInsn = off
	v.hasNextInsn = true
}

// ClearRelative resets every relative-part field to its zero value so
// the Value can be re-finalized from its original Abs expression.
//
// REDESIGN FLAG: older yasm recomputed next_insn here from scratch on
// every re-finalization; this engine follows the newer behavior of
// preserving whatever next_insn was last set, since recomputation
// requires bytecode-length information that may not be settled yet
// during an in-progress optimizer iteration.
func (v *Value) ClearRelative() {
	v.Rel = nil
	v.Sub = SubPart{}
	v.Wrt = nil
	v.SegOf = false
	v.IPRel = false
	v.JumpTarget = false
	v.SectionRel = false
}

func (v *Value) claim(ssymOk, negated bool, sym *Symbol, loc Location, hasLoc bool) error {
	if v.Rel == nil {
		if hasLoc {
			return fmt.Errorf("bare location cannot be the primary relative term: %w", ErrTooComplexValue)
		}
		v.Rel = sym
		return nil
	}
	if !negated || !ssymOk || !v.Sub.Empty() {
		return ErrTooComplexValue
	}
	if hasLoc {
		v.Sub = SubPart{Loc: loc, HasLoc: true}
	} else {
		v.Sub = SubPart{Sym: sym}
	}
	return nil
}

// collapseIfTrivial compacts e after finalizeScan clears claimed
// subtrees: an operator left with zero operands becomes integer 0,
// exactly one becomes that operand (MakeIdent), otherwise its Arity is
// refreshed to the surviving count.
func collapseIfTrivial(e *Expression) {
	e.Cleanup()
	if len(e.Terms) == 0 {
		*e = NewExprInt(NewBigInt(0), SourceRange{})
		return
	}
	root, rootIdx, ok := e.root()
	if !ok || root.Kind != TermOperator {
		return
	}
	children := immediateChildren(e.Terms, rootIdx)
	switch len(children) {
	case 0:
		*e = NewExprInt(NewBigInt(0), root.Source)
	case 1:
		ci := children[0]
		start := subtreeStart(e.Terms, ci)
		*e = extractSubtree(e.Terms, start, ci)
	default:
		e.Terms[rootIdx].Arity = len(children)
	}
}

// finalizeScan recursively extracts Rel/Sub/Wrt/SegOf/RShift from e,
// leaving whatever remains purely absolute in e.
func (v *Value) finalizeScan(e *Expression, ssymOk bool) error {
	if e == nil || len(e.Terms) == 0 {
		return nil
	}
	root, rootIdx, ok := e.root()
	if !ok {
		return nil
	}

	if root.Kind == TermSymbol {
		if err := v.claim(ssymOk, false, root.Sym, Location{}, false); err != nil {
			return err
		}
		e.Terms = nil
		return nil
	}
	if root.Kind == TermLocation {
		if err := v.claim(ssymOk, false, nil, root.Loc, true); err != nil {
			return err
		}
		e.Terms = nil
		return nil
	}
	if root.Kind != TermOperator {
		return nil
	}

	switch root.Op {
	case OpWrt:
		rhs, ok := e.ExtractWRT()
		if !ok {
			return ErrTooComplexValue
		}
		sym, isSym := rhs.AsSymbol()
		if !isSym {
			return fmt.Errorf("WRT right-hand side must be a plain symbol: %w", ErrTooComplexValue)
		}
		v.Wrt = sym
		return v.finalizeScan(e, ssymOk)

	case OpSeg:
		children := immediateChildren(e.Terms, rootIdx)
		if len(children) != 1 {
			return ErrTooComplexValue
		}
		v.SegOf = true
		ci := children[0]
		start := subtreeStart(e.Terms, ci)
		*e = extractSubtree(e.Terms, start, ci)
		return v.finalizeScan(e, ssymOk)

	case OpShr:
		children := immediateChildren(e.Terms, rootIdx)
		if len(children) != 2 {
			return ErrTooComplexValue
		}
		lhsIdx, rhsIdx := children[0], children[1]
		rhsStart := subtreeStart(e.Terms, rhsIdx)
		rhsExpr := extractSubtree(e.Terms, rhsStart, rhsIdx)
		amt, isInt := rhsExpr.AsIntNum()
		if !isInt || amt.Sign() < 0 {
			return ErrTooComplexValue
		}
		lhsStart := subtreeStart(e.Terms, lhsIdx)
		lhsExpr := extractSubtree(e.Terms, lhsStart, lhsIdx)
		// REDESIGN FLAG: the left-hand side may be a bare symbol or a
		// recursed sub-expression (e.g. "(a+b) >> 3"); recurse either way
		// instead of requiring a bare symbol.
		if err := v.finalizeScan(&lhsExpr, ssymOk); err != nil {
			return err
		}
		v.RShift += uint(amt.Int64())
		*e = lhsExpr
		return nil

	case OpAdd:
		children := immediateChildren(e.Terms, rootIdx)
		for _, ci := range children {
			t := e.Terms[ci]
			switch {
			case t.Kind == TermSymbol:
				if err := v.claim(ssymOk, false, t.Sym, Location{}, false); err != nil {
					return err
				}
				clearSubtree(e.Terms, ci, ci)
			case t.Kind == TermLocation:
				if err := v.claim(ssymOk, false, nil, t.Loc, true); err != nil {
					return err
				}
				clearSubtree(e.Terms, ci, ci)
			case t.Kind == TermOperator && t.Op == OpMul:
				mulKids := immediateChildren(e.Terms, ci)
				if len(mulKids) != 2 {
					continue
				}
				negOne := false
				relIdx := -1
				for _, mk := range mulKids {
					if e.Terms[mk].Kind == TermInteger && e.Terms[mk].Int.Int64() == -1 {
						negOne = true
					} else if e.Terms[mk].Kind == TermSymbol || e.Terms[mk].Kind == TermLocation {
						relIdx = mk
					}
				}
				if !negOne || relIdx < 0 {
					continue
				}
				rt := e.Terms[relIdx]
				var err error
				if rt.Kind == TermSymbol {
					err = v.claim(ssymOk, true, rt.Sym, Location{}, false)
				} else {
					err = v.claim(ssymOk, true, nil, rt.Loc, true)
				}
				if err != nil {
					return err
				}
				start := subtreeStart(e.Terms, ci)
				clearSubtree(e.Terms, start, ci)
			}
		}
		collapseIfTrivial(e)
		if e.Contains(MaskSymbol | MaskLocation) {
			return ErrTooComplexValue
		}
		return nil

	default:
		if e.Contains(MaskSymbol | MaskLocation) {
			return ErrTooComplexValue
		}
		return nil
	}
}

// Finalize reduces v.Abs into the abs/rel/sub/wrt decomposition,
// expanding EQU references, stripping a provably-redundant exact-width
// AND mask, and folding Location differences where possible. It
// reports a diagnostic and returns false on failure.
func (v *Value) Finalize(table *SymbolTable, diags Diagnostics, source SourceRange) bool {
	if v.Abs == nil {
		v.Valued = true
		return true
	}

	expanded, err := table.ExpandExpr(*v.Abs)
	if err != nil {
		if diags != nil {
			diags.Report(ErrEquCircularReference, source, err.Error())
		}
		return false
	}
	v.Abs = &expanded

	// AND-mask stripping: "x AND full-width-ones" is a no-op once the
	// result is truncated to Size bits at output time.
	//
	// REDESIGN FLAG: the mask must be EXACTLY all-ones for the field
	// width, not merely "large enough" -- a smaller mask changes the
	// value, and a larger one may hide genuine truncation that output
	// should still warn about.
	if root, rootIdx, ok := v.Abs.root(); ok && root.Kind == TermOperator && root.Op == OpAnd {
		children := immediateChildren(v.Abs.Terms, rootIdx)
		if len(children) == 2 {
			for _, ci := range children {
				if v.Abs.Terms[ci].Kind == TermInteger && v.Abs.Terms[ci].Int.Equal(onesMask(v.Size)) {
					other := children[0]
					if other == ci {
						other = children[1]
					}
					start := subtreeStart(v.Abs.Terms, other)
					*v.Abs = extractSubtree(v.Abs.Terms, start, other)
					v.NoWarn = true
					break
				}
			}
		}
	}

	v.Abs.Simplify(diags, false, SimplifyCalcDistNoBC)

	if _, ok := v.Abs.AsIntNum(); ok {
		v.Valued = true
		return true
	}
	if sym, ok := v.Abs.AsSymbol(); ok {
		v.Rel = sym
		v.Abs = nil
		v.Valued = true
		return true
	}

	if err := v.finalizeScan(v.Abs, true); err != nil {
		if diags != nil {
			diags.Report(ErrTooComplexExpression, source, err.Error())
		}
		return false
	}

	v.Abs.Simplify(diags, false, SimplifyCalcDist)
	if iv, ok := v.Abs.AsIntNum(); ok && iv.IsZero() {
		v.Abs = nil
	}
	v.Valued = true
	return true
}

// SubRelative subtracts subLoc from v's relative part, folding
// immediately into Abs when v.Rel is already a resolved label,
// otherwise keeping it symbolic in Sub for
// CalcPCRelSub to resolve once all offsets are known.
func (v *Value) SubRelative(obj *Object, subLoc Location) error {
	if v.Rel == nil {
		return fmt.Errorf("SubRelative: value has no relative part to subtract from")
	}
	if v.Rel.Kind == SymLabel {
		if d, ok := CalcDist(subLoc, v.Rel.Label); ok {
			sum := NewExprInt(d, SourceRange{})
			if v.Abs != nil {
				sum = v.Abs.Calc(OpAdd, &sum, SourceRange{})
			}
			v.Abs = &sum
			v.Rel = nil
			v.SectionRel = true
			return nil
		}
	}
	v.Sub = SubPart{Loc: subLoc, HasLoc: true}
	v.SectionRel = true
	return nil
}

// CalcPCRelSub computes the final rel-minus-sub distance (plus any
// residual Abs integer), used at Output time for IP-relative fields
// once the optimizer has assigned concrete offsets.
// curLoc is used as the subtractive part when Sub was never set
// explicitly (i.e. "relative to the value's own position").
func (v *Value) CalcPCRelSub(curLoc Location) (BigInt, bool) {
	if v.Rel == nil || v.Rel.Kind != SymLabel {
		return BigInt{}, false
	}
	relLoc := v.Rel.Label

	var subLoc Location
	switch {
	case v.Sub.HasLoc:
		subLoc = v.Sub.Loc
	case v.Sub.Sym != nil:
		if v.Sub.Sym.Kind != SymLabel {
			return BigInt{}, false
		}
		subLoc = v.Sub.Sym.Label
	default:
		subLoc = curLoc
	}

	dist, ok := CalcDist(subLoc, relLoc)
	if !ok {
		return BigInt{}, false
	}
	if v.Abs != nil {
		iv, isInt := v.Abs.AsIntNum()
		if !isInt {
			return BigInt{}, false
		}
		dist = dist.Add(iv)
	}
	return dist, true
}

// OutputBasic writes v into dest via numOut, provided v has no
// remaining WRT and either no relative part or a relative part fully
// resolvable via CalcPCRelSub. It returns false when the caller must
// instead emit a Relocation.
func (v *Value) OutputBasic(numOut *NumericOutput, dest []byte, bigEndian bool, curLoc Location, diags Diagnostics, source SourceRange) bool {
	if v.Wrt != nil {
		return false
	}

	var iv BigInt
	switch {
	case v.Rel == nil && v.Sub.Empty():
		if v.Abs != nil {
			var ok bool
			iv, ok = v.Abs.AsIntNum()
			if !ok {
				return false
			}
		}
	case v.Rel != nil:
		var ok bool
		iv, ok = v.CalcPCRelSub(curLoc)
		if !ok {
			return false
		}
	default:
		return false
	}

	numOut.Size = v.Size
	numOut.Shift = v.Shift
	numOut.RShift = v.RShift
	numOut.Sign = v.Sign
	numOut.WarnEnabled = !v.NoWarn
	numOut.OutputInteger(dest, bigEndian, iv)
	numOut.EmitWarnings(diags, source)
	return true
}
