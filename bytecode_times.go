package asmengine

import "fmt"

// TimesContents implements the TIMES construct: Inner is repeated Count
// times, where Count may itself be a symbolic expression (the classic
// `times (end-start)/4 nop` idiom). Grounded on the optimizer's own
// span machinery: until Count folds to a plain integer, the multiplier
// is assumed 0 and tracked as a span-id-0 ("primary") term so Optimize
// re-Expands it as soon as the dependency it relies on (typically a
// forward label difference) becomes computable.
//
// Inner's own CalcLen is only consulted once, for a representative
// per-iteration length; a TIMES'd bytecode whose own encoding is itself
// span-dependent (e.g. `times N jmp short somewhere`) isn't tracked
// separately from the multiplier span.
type TimesContents struct {
	Count *Expression
	Inner Contents

	innerLen uint64
	n        uint64

	distA, distB Location
	haveDist     bool
}

func NewTimesContents(count *Expression, inner Contents) *TimesContents {
	return &TimesContents{Count: count, Inner: inner}
}

// resolveLabelSymbols rewrites every label-symbol term in e into the
// bare Location it names, now that every label in the object has a
// defined (if not yet offset-resolved) Bc/Offset pair. A count built
// from a forward label reference (`times (end-start)/4 ...`, parsed
// before `end` exists) carries a Symbol term until this point; Finalize
// runs only once every bytecode has been appended, so every label is
// already defined by the time it does.
func resolveLabelSymbols(e *Expression) {
	for i, t := range e.Terms {
		if t.Kind == TermSymbol && t.Sym != nil && t.Sym.Kind == SymLabel {
			e.Terms[i] = TermLoc(t.Sym.Label, t.Source)
			e.Terms[i].Depth = t.Depth
		}
	}
}

func (c *TimesContents) Finalize(bc *Bytecode, table *SymbolTable, diags Diagnostics) bool {
	expanded, err := table.ExpandExpr(*c.Count)
	if err != nil {
		if diags != nil {
			diags.Report(ErrEquCircularReference, bc.Source, err.Error())
		}
		return false
	}
	c.Count = &expanded
	resolveLabelSymbols(c.Count)
	c.Count.Simplify(diags, false, SimplifyCalcDistNoBC)
	return c.Inner.Finalize(bc, table, diags)
}

// bcIndexRange returns the ordered [lo, hi] bytecode-index span two
// Locations straddle.
func bcIndexRange(a, b Location) (int, int) {
	lo, hi := a.Bc.Index, b.Bc.Index
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo, hi
}

// CalcLen evaluates Count if it already folds to a constant; otherwise
// it freezes any Location-Location difference Count depends on (via
// SubstDist) and registers a span-id-0 term, assuming a multiplier of 0
// until that difference resolves. A count whose own dependency range
// encloses this bytecode is a circular reference (a TIMES whose count
// depends on its own length) and is reported rather than looped on.
func (c *TimesContents) CalcLen(bc *Bytecode, addSpan func(SpanTerm), diags Diagnostics) (uint64, bool) {
	innerLen, ok := c.Inner.CalcLen(bc, func(SpanTerm) {}, diags)
	if !ok {
		return 0, false
	}
	c.innerLen = innerLen

	if iv, ok := c.Count.AsIntNum(); ok {
		return c.resolve(bc, iv, diags)
	}

	SubstDist(c.Count, func(a, b Location) uint32 {
		c.distA, c.distB = a, b
		c.haveDist = true
		return 0
	})

	if c.haveDist {
		lo, hi := bcIndexRange(c.distA, c.distB)
		if lo <= bc.Index && bc.Index <= hi {
			if diags != nil {
				diags.Report(ErrOptimizerCircularReference, bc.Source, "times count depends on its own length")
			}
			return 0, false
		}
	}

	c.n = 0
	addSpan(SpanTerm{ID: 0})
	return 0, true
}

func (c *TimesContents) resolve(bc *Bytecode, iv BigInt, diags Diagnostics) (uint64, bool) {
	n := iv.Int64()
	if n < 0 {
		if diags != nil {
			diags.Report(ErrTooComplexExpression, bc.Source, "times count is negative")
		}
		return 0, false
	}
	c.n = uint64(n)
	return c.n * c.innerLen, true
}

// Expand re-evaluates Count now that CalcDist may be able to resolve
// the frozen Location difference, absorbing the new multiplier into
// this bytecode's length. It reports still-dependent (keep=true) until
// the difference becomes computable.
func (c *TimesContents) Expand(bc *Bytecode, spanID int, diags Diagnostics) (uint64, bool, error) {
	if !c.haveDist {
		return bc.Len, false, nil
	}
	d, ok := CalcDist(c.distA, c.distB)
	if !ok {
		return bc.Len, true, nil
	}
	resolved := c.Count.Clone()
	resolved.Substitute([]Expression{NewExprInt(d, bc.Source)})
	resolved.Simplify(diags, false, nil)
	iv, ok := resolved.AsIntNum()
	if !ok {
		return bc.Len, false, fmt.Errorf("times count did not resolve to an integer")
	}
	newLen, ok := c.resolve(bc, iv, diags)
	if !ok {
		return bc.Len, false, fmt.Errorf("times count resolved to an unusable value")
	}
	return newLen, false, nil
}

// Output renders Inner's bytes n times in sequence. Inner's own Output
// is expected to be idempotent (it's called against the same
// zero-relative byte slice cut n times out of bc's rendered contents).
func (c *TimesContents) Output(bc *Bytecode, out *ByteBuffer, obj *Object, bigEndian bool, diags Diagnostics) bool {
	for i := uint64(0); i < c.n; i++ {
		if !c.Inner.Output(bc, out, obj, bigEndian, diags) {
			return false
		}
	}
	return true
}

func (*TimesContents) Special() SpecialKind { return SpecialNone }
