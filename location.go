package asmengine

// Location identifies a point in the bytecode stream: a specific
// Bytecode plus a byte offset within its *expanded* contents. Locations
// are produced by the label-definition path and consumed
// by distance calculations once the optimizer has assigned offsets.
type Location struct {
	Bc     *Bytecode
	Offset uint64
}

// Valid reports whether the location names a real bytecode.
func (l Location) Valid() bool { return l.Bc != nil }

// CalcDist computes b-a as an absolute byte distance, requiring both
// bytecodes to belong to the same container and to already have a
// known (post-optimize) offset. It returns false if
// either requirement fails — callers fall back to keeping the
// Location pair symbolic.
func CalcDist(a, b Location) (BigInt, bool) {
	if !a.Valid() || !b.Valid() {
		return BigInt{}, false
	}
	if a.Bc.containerKey() != b.Bc.containerKey() {
		return BigInt{}, false
	}
	aOff, aOK := a.Bc.resolvedOffset()
	bOff, bOK := b.Bc.resolvedOffset()
	if !aOK || !bOK {
		return BigInt{}, false
	}
	dist := int64(bOff+b.Offset) - int64(aOff+a.Offset)
	return NewBigInt(dist), true
}

// CalcDistNoBC computes b-a without requiring the container's offsets
// to be resolved, valid only when a and b name the very same bytecode
// (the common case of two labels attached to one
// instruction/data bytecode).
func CalcDistNoBC(a, b Location) (BigInt, bool) {
	if !a.Valid() || !b.Valid() || a.Bc != b.Bc {
		return BigInt{}, false
	}
	return NewBigInt(int64(b.Offset) - int64(a.Offset)), true
}

// findLocDiffPair scans op's immediate children for the canonical
// "B + (-1*A)" shape TransformNeg produces for B-A, where both B and A
// are Location terms. It returns the indices of the bare Location child
// (b) and of the MUL(-1) wrapper around the other Location child (a),
// or ok=false if the pattern isn't present.
func findLocDiffPair(terms []ExprTerm, opIdx int) (bChild, mulChild, aInnerIdx int, ok bool) {
	if terms[opIdx].Kind != TermOperator || terms[opIdx].Op != OpAdd {
		return 0, 0, 0, false
	}
	children := immediateChildren(terms, opIdx)
	for _, bi := range children {
		if terms[bi].Kind != TermLocation {
			continue
		}
		for _, mi := range children {
			if mi == bi || terms[mi].Kind != TermOperator || terms[mi].Op != OpMul {
				continue
			}
			mulKids := immediateChildren(terms, mi)
			if len(mulKids) != 2 {
				continue
			}
			var negOne, locIdx int = -1, -1
			for _, k := range mulKids {
				switch terms[k].Kind {
				case TermInteger:
					negOne = k
				case TermLocation:
					locIdx = k
				}
			}
			if negOne < 0 || locIdx < 0 {
				continue
			}
			v, isInt := terms[negOne].Int.Int64(), terms[negOne].Kind == TermInteger
			if !isInt || v != -1 {
				continue
			}
			return bi, mi, locIdx, true
		}
	}
	return 0, 0, 0, false
}

// simplifyCalcDistGeneric is the shared body of SimplifyCalcDist and
// SimplifyCalcDistNoBC: used as a Simplify functor, it looks for the
// B-A Location-difference pattern at the current operator and, when the
// distance function succeeds, collapses it to a plain Integer term.
func simplifyCalcDistGeneric(e *Expression, opIdx int, dist func(a, b Location) (BigInt, bool)) {
	bIdx, mulIdx, aIdx, ok := findLocDiffPair(e.Terms, opIdx)
	if !ok {
		return
	}
	b := e.Terms[bIdx].Loc
	a := e.Terms[aIdx].Loc
	d, ok := dist(a, b)
	if !ok {
		return
	}
	bStart := subtreeStart(e.Terms, bIdx)
	clearSubtree(e.Terms, bStart, bIdx)
	mulStart := subtreeStart(e.Terms, mulIdx)
	clearSubtree(e.Terms, mulStart, mulIdx)
	e.Terms[mulIdx] = TermInt(d, e.Terms[opIdx].Source)
	e.Terms[mulIdx].Depth = e.Terms[bIdx].Depth
	e.Terms[opIdx].Arity -= 1
}

// SimplifyCalcDist is a Simplify functor collapsing Location-Location
// subtractions into Integer constants via CalcDist, in the style of
// yasm's Location_util.cpp SimplifyCalcDist.
func SimplifyCalcDist(e *Expression, opIdx int) {
	simplifyCalcDistGeneric(e, opIdx, CalcDist)
}

// SimplifyCalcDistNoBC is the CalcDistNoBC-backed counterpart, usable
// before the optimizer has assigned offsets.
func SimplifyCalcDistNoBC(e *Expression, opIdx int) {
	simplifyCalcDistGeneric(e, opIdx, CalcDistNoBC)
}

// SubstDist freezes every Location-Location difference pattern found in
// e as a Subst placeholder, invoking record(a, b) for each and using
// its return value as the placeholder's index. Used when an expression
// is built before the optimizer has assigned bytecode offsets: the
// placeholders are resolved later by calling Expression.Substitute once
// CalcDist can succeed.
func SubstDist(e *Expression, record func(a, b Location) uint32) bool {
	found := false
	for {
		progressed := false
		for i, t := range e.Terms {
			if !t.IsOp() {
				continue
			}
			bIdx, mulIdx, aIdx, ok := findLocDiffPair(e.Terms, i)
			if !ok {
				continue
			}
			b := e.Terms[bIdx].Loc
			a := e.Terms[aIdx].Loc
			idx := record(a, b)

			bStart := subtreeStart(e.Terms, bIdx)
			clearSubtree(e.Terms, bStart, bIdx)
			mulStart := subtreeStart(e.Terms, mulIdx)
			depth := e.Terms[mulIdx].Depth
			clearSubtree(e.Terms, mulStart, mulIdx)
			e.Terms[mulIdx] = TermSubstPlaceholder(idx, e.Terms[i].Source)
			e.Terms[mulIdx].Depth = depth
			e.Terms[i].Arity -= 1

			found = true
			progressed = true
			break
		}
		if !progressed {
			return found
		}
	}
}
