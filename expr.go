package asmengine

// Expression is an ordered sequence of ExprTerms stored in reverse Polish
// notation: operator terms follow their operands, and the last term is
// the root. Grounded algorithmically on yasm's yasmx/Expr.h and
// Expr.cpp, with flapc's tagged-enum idiom (its types.go) used for
// every closed type involved.
type Expression struct {
	Terms []ExprTerm
}

// NewExprTerm wraps a single ExprTerm as a one-term expression.
func NewExprTerm(t ExprTerm) Expression {
	t.Depth = 0
	return Expression{Terms: []ExprTerm{t}}
}

func NewExprInt(v BigInt, source SourceRange) Expression {
	return NewExprTerm(TermInt(v, source))
}

func NewExprFloat(v BigFloat, source SourceRange) Expression {
	return NewExprTerm(TermFlt(v, source))
}

func NewExprSymbol(s *Symbol, source SourceRange) Expression {
	return NewExprTerm(TermSym(s, source))
}

func NewExprLocation(l Location, source SourceRange) Expression {
	return NewExprTerm(TermLoc(l, source))
}

func NewExprRegister(r RegisterRef, source SourceRange) Expression {
	return NewExprTerm(TermReg(r, source))
}

// Clone copies the expression's term slice. Embedded BigFloat/BigInt
// terms are copied by value, which shares their math/big backing
// storage with the original; the engine never mutates a term's number
// in place, so the copy and the original do not affect each other.
func (e Expression) Clone() Expression {
	out := Expression{Terms: make([]ExprTerm, len(e.Terms))}
	copy(out.Terms, e.Terms)
	return out
}

// Append is the low-level RPN builder: it appends term as-is, leaving
// depth bookkeeping to the caller. Used to assemble operand lists
// before wrapping them with AppendOp.
func (e *Expression) Append(t ExprTerm) {
	e.Terms = append(e.Terms, t)
}

// AppendOp increments the depth of every existing term by one, then
// appends the new operator term at depth 0.
func (e *Expression) AppendOp(op Operator, arity int, source SourceRange) {
	for i := range e.Terms {
		e.Terms[i].Depth++
	}
	e.Terms = append(e.Terms, TermOp(op, arity, source))
}

// Calc applies a binary (rhs != nil) or unary (rhs == nil) operator
// between e and rhs, producing a new root expression.
func (e Expression) Calc(op Operator, rhs *Expression, source SourceRange) Expression {
	merged := make([]ExprTerm, 0, len(e.Terms)+termsLen(rhs))
	merged = append(merged, cloneTerms(e.Terms)...)
	if rhs != nil {
		merged = append(merged, cloneTerms(rhs.Terms)...)
	}
	out := Expression{Terms: merged}
	arity := 1
	if rhs != nil {
		arity = 2
	}
	out.AppendOp(op, arity, source)
	return out
}

func termsLen(e *Expression) int {
	if e == nil {
		return 0
	}
	return len(e.Terms)
}

func cloneTerms(terms []ExprTerm) []ExprTerm {
	out := make([]ExprTerm, len(terms))
	copy(out, terms)
	return out
}

// Contains scans linearly for any term matching the mask.
func (e Expression) Contains(mask termTypeMask) bool {
	for _, t := range e.Terms {
		if t.matches(mask) {
			return true
		}
	}
	return false
}

func (e Expression) root() (ExprTerm, int, bool) {
	if len(e.Terms) == 0 {
		return ExprTerm{}, -1, false
	}
	return e.Terms[len(e.Terms)-1], len(e.Terms) - 1, true
}

// IsIntNum reports whether e is, after simplification, a single Integer
// term.
func (e Expression) IsIntNum() bool {
	r, _, ok := e.root()
	return ok && len(e.Terms) == 1 && r.Kind == TermInteger
}

// AsIntNum returns the integer value if IsIntNum.
func (e Expression) AsIntNum() (BigInt, bool) {
	if !e.IsIntNum() {
		return BigInt{}, false
	}
	return e.Terms[0].Int, true
}

// IsFloat reports whether e is a single Float term.
func (e Expression) IsFloat() bool {
	r, _, ok := e.root()
	return ok && len(e.Terms) == 1 && r.Kind == TermFloat
}

func (e Expression) AsFloat() (BigFloat, bool) {
	if !e.IsFloat() {
		return BigFloat{}, false
	}
	return e.Terms[0].Float, true
}

// IsSymbol reports whether e is a single Symbol term.
func (e Expression) IsSymbol() bool {
	r, _, ok := e.root()
	return ok && len(e.Terms) == 1 && r.Kind == TermSymbol
}

func (e Expression) AsSymbol() (*Symbol, bool) {
	if !e.IsSymbol() {
		return nil, false
	}
	return e.Terms[0].Sym, true
}

// IsRegister reports whether e is a single Register term.
func (e Expression) IsRegister() bool {
	r, _, ok := e.root()
	return ok && len(e.Terms) == 1 && r.Kind == TermRegister
}

func (e Expression) AsRegister() (RegisterRef, bool) {
	if !e.IsRegister() {
		return nil, false
	}
	return e.Terms[0].Reg, true
}

// --- subtree navigation helpers ---

// subtreeStart returns the first index of the contiguous subtree whose
// root is terms[end]: every index in [start,end) has depth strictly
// greater than terms[end].Depth.
func subtreeStart(terms []ExprTerm, end int) int {
	d := terms[end].Depth
	i := end
	for i-1 >= 0 && terms[i-1].Depth > d {
		i--
	}
	return i
}

// immediateChildren returns, left to right, the indices of opIdx's
// immediate (depth+1) child roots, skipping NONE-tagged holes: scanning
// backward from it skipping NONE-tagged terms yields exactly k
// immediate-child operands.
func immediateChildren(terms []ExprTerm, opIdx int) []int {
	rootDepth := terms[opIdx].Depth
	var rev []int
	i := opIdx - 1
	for i >= 0 {
		if terms[i].IsEmpty() {
			i--
			continue
		}
		if terms[i].Depth <= rootDepth {
			break
		}
		if terms[i].Depth == rootDepth+1 {
			rev = append(rev, i)
			i = subtreeStart(terms, i) - 1
			continue
		}
		i--
	}
	out := make([]int, len(rev))
	for j, v := range rev {
		out[len(rev)-1-j] = v
	}
	return out
}

// clearSubtree marks every term in [start,end] NONE, preserving Depth
// labels so in-flight scans over the hole still work.
func clearSubtree(terms []ExprTerm, start, end int) {
	for i := start; i <= end; i++ {
		terms[i].Kind = TermNone
	}
}

// rebaseDepth adds delta to the Depth of every term in [start,end].
func rebaseDepth(terms []ExprTerm, start, end int, delta int) {
	for i := start; i <= end; i++ {
		terms[i].Depth += delta
	}
}

// spliceTerms replaces terms[start:end+1] with replacement.
func spliceTerms(terms []ExprTerm, start, end int, replacement []ExprTerm) []ExprTerm {
	out := make([]ExprTerm, 0, len(terms)-(end-start+1)+len(replacement))
	out = append(out, terms[:start]...)
	out = append(out, replacement...)
	out = append(out, terms[end+1:]...)
	return out
}

// extractSubtree copies terms[start:end+1], rebasing depths so the
// subtree's own root sits at depth 0 (i.e. it becomes a standalone,
// well-formed Expression).
func extractSubtree(terms []ExprTerm, start, end int) Expression {
	out := make([]ExprTerm, end-start+1)
	copy(out, terms[start:end+1])
	baseDepth := terms[end].Depth
	for i := range out {
		out[i].Depth -= baseDepth
	}
	return Expression{Terms: out}
}

// --- ExtractSegOff / ExtractWRT / ExtractDeepSegOff ---

// ExtractSegOff splits e at its top-level SEGOFF operator, returning the
// segment (RHS) subtree and leaving the offset (LHS) in e. Returns
// false if e's root is not a SEGOFF.
func (e *Expression) ExtractSegOff() (Expression, bool) {
	return e.extractBinaryRHS(OpSegOff)
}

// ExtractWRT splits e at its top-level WRT operator, returning the
// reference-frame (RHS) subtree and leaving the base offset (LHS) in e.
func (e *Expression) ExtractWRT() (Expression, bool) {
	return e.extractBinaryRHS(OpWrt)
}

func (e *Expression) extractBinaryRHS(op Operator) (Expression, bool) {
	root, rootIdx, ok := e.root()
	if !ok || root.Kind != TermOperator || root.Op != op {
		return Expression{}, false
	}
	children := immediateChildren(e.Terms, rootIdx)
	if len(children) != 2 {
		return Expression{}, false
	}
	lhsIdx, rhsIdx := children[0], children[1]
	rhsStart := subtreeStart(e.Terms, rhsIdx)
	rhs := extractSubtree(e.Terms, rhsStart, rhsIdx)

	lhsStart := subtreeStart(e.Terms, lhsIdx)
	lhs := extractSubtree(e.Terms, lhsStart, lhsIdx)

	*e = lhs
	return rhs, true
}

// ExtractDeepSegOff behaves like ExtractSegOff, but also looks one level
// down through a top-level ADD for a SEGOFF among its immediate
// children (the "SEG:OFF + displacement" form), splicing the SEGOFF's
// offset part back into the ADD in place of the removed node.
func (e *Expression) ExtractDeepSegOff() (Expression, bool) {
	if seg, ok := e.ExtractSegOff(); ok {
		return seg, true
	}
	root, rootIdx, ok := e.root()
	if !ok || root.Kind != TermOperator || root.Op != OpAdd {
		return Expression{}, false
	}
	for _, ci := range immediateChildren(e.Terms, rootIdx) {
		if e.Terms[ci].Kind != TermOperator || e.Terms[ci].Op != OpSegOff {
			continue
		}
		start := subtreeStart(e.Terms, ci)
		sub := extractSubtree(e.Terms, start, ci)
		seg, ok := sub.ExtractSegOff()
		if !ok {
			continue
		}
		// sub is now just the offset part; splice it back in place of
		// the SEGOFF node, rebased to the child's original depth.
		offsetTerms := cloneTerms(sub.Terms)
		rebaseDepth(offsetTerms, 0, len(offsetTerms)-1, e.Terms[ci].Depth)
		e.Terms = spliceTerms(e.Terms, start, ci, offsetTerms)
		return seg, true
	}
	return Expression{}, false
}

// Substitute replaces every Subst(i) term with terms[i], rebasing the
// replacement's depth to the placeholder's position.
func (e *Expression) Substitute(replacements []Expression) {
	for {
		idx := -1
		var which uint32
		for i, t := range e.Terms {
			if t.Kind == TermSubst {
				idx = i
				which = t.Subst
				break
			}
		}
		if idx < 0 {
			return
		}
		if int(which) >= len(replacements) {
			// No replacement available; clear so we don't loop forever.
			e.Terms[idx].Kind = TermNone
			continue
		}
		repl := cloneTerms(replacements[which].Terms)
		rebaseDepth(repl, 0, len(repl)-1, e.Terms[idx].Depth)
		e.Terms = spliceTerms(e.Terms, idx, idx, repl)
	}
}

// Cleanup compacts away NONE-tagged holes, preserving the remaining
// terms' Depth labels.
func (e *Expression) Cleanup() {
	out := e.Terms[:0:0]
	for _, t := range e.Terms {
		if t.Kind == TermNone {
			continue
		}
		out = append(out, t)
	}
	e.Terms = out
}
