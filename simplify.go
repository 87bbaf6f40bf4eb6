package asmengine

// Simplify reduces e in place: TransformNeg first rewrites every SUB
// and NEG into ADD/MUL(-1) form, then a fixed-point pass applies
// functor at every operator position (used by callers to fold
// Location-Location differences) interleaved with LevelOp-style
// constant folding, associative leveling, and identity removal.
// simplifyRegMul gates whether a bare "REG*1" is simplified away: some
// addressing-mode contexts rely on the explicit *1 marker to
// distinguish a base register from an index register, so the caller
// decides per call site whether that marker may be dropped.
//
// Grounded on yasm's yasmx/Expr.h documented Level/Simplify contract.
func (e *Expression) Simplify(diags Diagnostics, simplifyRegMul bool, functor func(*Expression, int)) {
	e.TransformNeg()

	const maxPasses = 128
	for pass := 0; pass < maxPasses; pass++ {
		changed := false
		for i := 0; i < len(e.Terms); i++ {
			if e.Terms[i].Kind != TermOperator {
				continue
			}
			origLen := len(e.Terms)
			if functor != nil {
				functor(e, i)
			}
			e.Cleanup()
			if len(e.Terms) != origLen {
				changed = true
				break
			}
			if e.levelOp(i, simplifyRegMul, diags) {
				e.Cleanup()
				changed = true
				break
			}
		}
		if !changed {
			break
		}
	}
	e.Cleanup()
}

// TransformNeg rewrites every SUB(a,b) into ADD(a, MUL(b,-1)) and every
// NEG(a) into MUL(a,-1), throughout the whole tree. Run once before
// LevelOp so constant folding and associative leveling only ever have to
// reason about ADD/MUL.
func (e *Expression) TransformNeg() {
	for {
		progressed := false
		for i, t := range e.Terms {
			if t.Kind != TermOperator {
				continue
			}
			switch t.Op {
			case OpSub:
				children := immediateChildren(e.Terms, i)
				if len(children) != 2 {
					continue
				}
				aIdx, bIdx := children[0], children[1]
				aStart := subtreeStart(e.Terms, aIdx)
				aExpr := extractSubtree(e.Terms, aStart, aIdx)
				bStart := subtreeStart(e.Terms, bIdx)
				bExpr := extractSubtree(e.Terms, bStart, bIdx)
				negOne := NewExprInt(NewBigInt(-1), t.Source)
				negB := bExpr.Calc(OpMul, &negOne, t.Source)
				replacement := aExpr.Calc(OpAdd, &negB, t.Source)
				e.spliceReplace(i, replacement)
				progressed = true
			case OpNeg:
				children := immediateChildren(e.Terms, i)
				if len(children) != 1 {
					continue
				}
				aIdx := children[0]
				aStart := subtreeStart(e.Terms, aIdx)
				aExpr := extractSubtree(e.Terms, aStart, aIdx)
				negOne := NewExprInt(NewBigInt(-1), t.Source)
				replacement := aExpr.Calc(OpMul, &negOne, t.Source)
				e.spliceReplace(i, replacement)
				progressed = true
			default:
				continue
			}
			break
		}
		if !progressed {
			return
		}
	}
}

// spliceReplace replaces the subtree rooted at opIdx with replacement,
// rebasing replacement's depths to opIdx's original position.
func (e *Expression) spliceReplace(opIdx int, replacement Expression) {
	start := subtreeStart(e.Terms, opIdx)
	repTerms := cloneTerms(replacement.Terms)
	rebaseDepth(repTerms, 0, len(repTerms)-1, e.Terms[opIdx].Depth)
	e.Terms = spliceTerms(e.Terms, start, opIdx, repTerms)
}

// levelOp applies one round of constant folding / associative leveling /
// identity removal at opIdx, reporting whether anything changed. Callers
// re-scan from the top after a change since indices shift.
func (e *Expression) levelOp(opIdx int, simplifyRegMul bool, diags Diagnostics) bool {
	t := e.Terms[opIdx]
	if t.Kind != TermOperator {
		return false
	}
	op := t.Op
	childIdx := immediateChildren(e.Terms, opIdx)
	if len(childIdx) == 0 {
		return false
	}
	children := make([]Expression, len(childIdx))
	for i, ci := range childIdx {
		start := subtreeStart(e.Terms, ci)
		children[i] = extractSubtree(e.Terms, start, ci)
	}

	flatChanged := false
	if op.IsAssociative() {
		children, flatChanged = flattenChildren(op, children)
	}

	newChildren, foldChanged := foldOperands(op, children, simplifyRegMul, t.Source, diags)
	if !flatChanged && !foldChanged && !(len(newChildren) == 1 && op.IsVariadic()) {
		return false
	}

	var result Expression
	switch len(newChildren) {
	case 0:
		if op == OpMul {
			result = NewExprInt(NewBigInt(1), t.Source)
		} else {
			result = NewExprInt(NewBigInt(0), t.Source)
		}
	case 1:
		result = newChildren[0]
	default:
		result = rebuildFlatOp(op, t.Source, newChildren)
	}

	e.spliceReplace(opIdx, result)
	return true
}

// flattenChildren absorbs any child whose root is the same associative
// op into the parent's operand list, recursively, to preserve the
// n-ary operator shape.
func flattenChildren(op Operator, children []Expression) ([]Expression, bool) {
	var out []Expression
	changed := false
	for _, c := range children {
		r, ridx, ok := c.root()
		if !ok || r.Kind != TermOperator || r.Op != op {
			out = append(out, c)
			continue
		}
		changed = true
		subIdx := immediateChildren(c.Terms, ridx)
		sub := make([]Expression, len(subIdx))
		for i, si := range subIdx {
			start := subtreeStart(c.Terms, si)
			sub[i] = extractSubtree(c.Terms, start, si)
		}
		flat, _ := flattenChildren(op, sub)
		out = append(out, flat...)
	}
	return out, changed
}

// rebuildFlatOp reassembles children into a single n-ary operator node,
// reusing Expression.AppendOp's depth-bumping so the result is a
// well-formed flat RPN subtree.
func rebuildFlatOp(op Operator, source SourceRange, children []Expression) Expression {
	if len(children) == 0 {
		return NewExprInt(NewBigInt(0), source)
	}
	if len(children) == 1 {
		return children[0]
	}
	merged := make([]ExprTerm, 0)
	for _, c := range children {
		merged = append(merged, cloneTerms(c.Terms)...)
	}
	out := Expression{Terms: merged}
	out.AppendOp(op, len(children), source)
	return out
}

// foldOperands applies op's identity/constant-folding rule to children,
// reporting whether anything changed. ADD and MUL combine every Integer
// operand into one constant (dropping it entirely when it is the
// identity and another operand remains); every other binary op folds
// only when both operands are Integer; SEG/WRT/SEGOFF are never folded
// here since they carry structural meaning Value.Finalize extracts
// separately. A DIV/MOD by zero caught during folding is reported
// through diags and the whole subtree collapses to the integer 0
// rather than being left unfolded.
func foldOperands(op Operator, children []Expression, simplifyRegMul bool, source SourceRange, diags Diagnostics) ([]Expression, bool) {
	switch op {
	case OpAdd:
		return foldAdd(children)
	case OpMul:
		return foldMul(children, simplifyRegMul)
	case OpNot, OpLnot:
		if len(children) != 1 {
			return children, false
		}
		iv, ok := children[0].AsIntNum()
		if !ok {
			return children, false
		}
		v, ok := evalIntUnary(op, iv)
		if !ok {
			return children, false
		}
		return []Expression{NewExprInt(v, lastSource(children[0]))}, true
	case OpSeg, OpWrt, OpSegOff:
		return children, false
	default:
		if len(children) != 2 {
			return children, false
		}
		a, aok := children[0].AsIntNum()
		b, bok := children[1].AsIntNum()
		if !aok || !bok {
			return children, false
		}
		v, ok, err := evalIntBinary(op, a, b)
		if err != nil {
			if _, isArith := err.(*ArithmeticError); isArith && diags != nil {
				diags.Report(ErrDivideByZero, source, err.Error())
				return []Expression{NewExprInt(NewBigInt(0), source)}, true
			}
			return children, false
		}
		if !ok {
			return children, false
		}
		return []Expression{NewExprInt(v, lastSource(children[0]))}, true
	}
}

func lastSource(e Expression) SourceRange {
	if len(e.Terms) == 0 {
		return SourceRange{}
	}
	return e.Terms[len(e.Terms)-1].Source
}

func foldAdd(children []Expression) ([]Expression, bool) {
	var ints []BigInt
	var rest []Expression
	var src SourceRange
	for _, c := range children {
		if iv, ok := c.AsIntNum(); ok {
			ints = append(ints, iv)
			src = lastSource(c)
		} else {
			rest = append(rest, c)
		}
	}
	if len(ints) == 0 {
		return children, false
	}
	sum := NewBigInt(0)
	for _, iv := range ints {
		sum = sum.Add(iv)
	}
	dropZero := sum.IsZero() && len(rest) > 0
	if len(ints) <= 1 && !dropZero {
		return children, false
	}
	var out []Expression
	if !dropZero {
		out = append(out, NewExprInt(sum, src))
	}
	out = append(out, rest...)
	return out, true
}

func foldMul(children []Expression, simplifyRegMul bool) ([]Expression, bool) {
	var ints []BigInt
	var rest []Expression
	var src SourceRange
	for _, c := range children {
		if iv, ok := c.AsIntNum(); ok {
			ints = append(ints, iv)
			src = lastSource(c)
		} else {
			rest = append(rest, c)
		}
	}
	if len(ints) == 0 {
		return children, false
	}
	prod := NewBigInt(1)
	for _, iv := range ints {
		prod = prod.Mul(iv)
	}
	if prod.IsZero() {
		return []Expression{NewExprInt(NewBigInt(0), src)}, true
	}
	isOne := prod.Cmp(NewBigInt(1)) == 0
	dropOne := isOne && len(rest) > 0
	if dropOne && len(rest) == 1 && !simplifyRegMul {
		if _, isReg := rest[0].AsRegister(); isReg {
			dropOne = false
		}
	}
	if len(ints) <= 1 && !dropOne {
		return children, false
	}
	var out []Expression
	if !dropOne {
		out = append(out, NewExprInt(prod, src))
	}
	out = append(out, rest...)
	return out, true
}

// evalIntBinary evaluates a closed-form binary integer operator. The
// bool result is false for operators this function does not fold
// (SEG/WRT/SEGOFF, handled by callers separately) as well as for a
// negative shift amount.
func evalIntBinary(op Operator, a, b BigInt) (BigInt, bool, error) {
	switch op {
	case OpAdd:
		return a.Add(b), true, nil
	case OpMul:
		return a.Mul(b), true, nil
	case OpDiv:
		v, err := a.DivUnsigned(b)
		return v, err == nil, err
	case OpSignDiv:
		v, err := a.DivSigned(b)
		return v, err == nil, err
	case OpMod:
		v, err := a.ModUnsigned(b)
		return v, err == nil, err
	case OpSignMod:
		v, err := a.ModSigned(b)
		return v, err == nil, err
	case OpOr:
		return a.Or(b), true, nil
	case OpAnd:
		return a.And(b), true, nil
	case OpXor:
		return a.Xor(b), true, nil
	case OpXnor:
		return a.Xor(b).Not(), true, nil
	case OpNor:
		return a.Or(b).Not(), true, nil
	case OpShl:
		n := b.Int64()
		if n < 0 {
			return BigInt{}, false, nil
		}
		return a.Shl(uint(n)), true, nil
	case OpShr:
		n := b.Int64()
		if n < 0 {
			return BigInt{}, false, nil
		}
		return a.Ashr(uint(n)), true, nil
	case OpLor:
		return boolInt(!a.IsZero() || !b.IsZero()), true, nil
	case OpLand:
		return boolInt(!a.IsZero() && !b.IsZero()), true, nil
	case OpLxor:
		return boolInt(!a.IsZero() != !b.IsZero()), true, nil
	case OpLxnor:
		return boolInt(!a.IsZero() == !b.IsZero()), true, nil
	case OpLnor:
		return boolInt(a.IsZero() && b.IsZero()), true, nil
	case OpLt:
		return boolInt(a.Cmp(b) < 0), true, nil
	case OpGt:
		return boolInt(a.Cmp(b) > 0), true, nil
	case OpEq:
		return boolInt(a.Cmp(b) == 0), true, nil
	case OpLe:
		return boolInt(a.Cmp(b) <= 0), true, nil
	case OpGe:
		return boolInt(a.Cmp(b) >= 0), true, nil
	case OpNe:
		return boolInt(a.Cmp(b) != 0), true, nil
	default:
		return BigInt{}, false, nil
	}
}

func evalIntUnary(op Operator, a BigInt) (BigInt, bool) {
	switch op {
	case OpNot:
		return a.Not(), true
	case OpLnot:
		return boolInt(a.IsZero()), true
	default:
		return BigInt{}, false
	}
}

func boolInt(b bool) BigInt {
	if b {
		return NewBigInt(1)
	}
	return NewBigInt(0)
}
