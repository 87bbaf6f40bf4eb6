package asmengine

// Optimizer implements the iterative span-resolution pass that settles
// every bytecode's final length, grounded on yasm's Robertson-derived
// optimizer. CalcLenAll drives Contents.CalcLen
// over every bytecode, registering a span for each length-dependent
// term; Optimize then repeatedly re-derives offsets and re-Expands
// affected spans until a fixed point, using an IntervalTree to find
// which spans a given bytecode's length change might affect and two
// FIFO queues (qa for id==0 "primary" spans, qb for everything else) to
// drive convergence, mirroring the QA/QB split in the original
// algorithm's termination argument. TimesContents registers its
// multiplier as an id==0 span, so a TIMES count absorbs before any
// non-multiplier bytecode in qb attempts to grow; TimesContents.CalcLen
// itself rejects (err_optimizer_circular_reference) a count whose own
// dependency range encloses its bytecode, since that can never
// converge.
type Optimizer struct {
	obj   *Object
	diags Diagnostics

	tree  *IntervalTree
	spans []*optSpan
}

type optSpan struct {
	bc     *Bytecode
	termID int
}

func NewOptimizer(obj *Object, diags Diagnostics) *Optimizer {
	return &Optimizer{obj: obj, diags: diags, tree: NewIntervalTree()}
}

// CalcLenAll runs Contents.CalcLen over every bytecode in the object, in
// section order, assigning each an initial (possibly span-dependent)
// length. Returns false if any bytecode's Finalize-derived Contents
// reported a hard failure.
func (o *Optimizer) CalcLenAll() bool {
	ok := true
	for _, sec := range o.obj.Sections {
		lastIdx := len(sec.Bytecodes) - 1
		for _, bc := range sec.Bytecodes {
			if bc.Contents == nil {
				continue
			}
			addSpan := func(term SpanTerm) {
				sp := &optSpan{bc: bc, termID: term.ID}
				o.spans = append(o.spans, sp)
				// A span's range names the index interval whose offset
				// changes could require re-Expanding it: conservatively,
				// from the span's own bytecode through the end of its
				// section ([bc.Index, lastIdx]), since the tracked
				// Value's dependency bytecode isn't
				// generally known until it resolves.
				o.tree.Insert(bc.Index, lastIdx, sp)
			}
			length, success := bc.Contents.CalcLen(bc, addSpan, o.diags)
			if !success {
				ok = false
				continue
			}
			bc.Len = length
		}
	}
	return ok
}

// updateOffsetsSection walks sec's bytecodes in order, resolving
// OffsetSetterContents (align/org) against the running offset and
// assigning every bytecode's final Offset.
func (o *Optimizer) updateOffsetsSection(sec *Section) {
	var cur uint64
	for _, bc := range sec.Bytecodes {
		if os, ok := bc.Contents.(OffsetSetterContents); ok {
			bc.Len = os.ResolveOffset(bc, cur)
		}
		bc.SetOffset(cur)
		cur += bc.Len
	}
}

func (o *Optimizer) updateAllOffsets() {
	for _, sec := range o.obj.Sections {
		o.updateOffsetsSection(sec)
	}
}

// UpdateOffsets is the public entry point the orchestrator calls after
// Optimize (and once more, standalone, if no bytecode is span-dependent
// at all) to assign final Offsets object-wide.
func (o *Optimizer) UpdateOffsets() { o.updateAllOffsets() }

const optimizerMaxIterations = 10000

// Optimize repeatedly re-derives offsets and re-Expands spans whose
// bytecode range was touched by a preceding length change, until no
// further change occurs. It reports false (with a
// err_optimizer_secondary_expansion diagnostic) if convergence wasn't
// reached within a generous iteration budget -- the two-queue structure
// means a well-formed module converges in at most a handful of passes
// per span, so hitting the budget indicates a genuine oscillation, not
// merely a slow-but-valid module.
func (o *Optimizer) Optimize() bool {
	o.updateAllOffsets()

	var qa, qb []*optSpan
	for _, sp := range o.spans {
		if sp.termID == 0 {
			qa = append(qa, sp)
		} else {
			qb = append(qb, sp)
		}
	}

	iterations := 0
	converged := true
	process := func(queue []*optSpan) {
		for len(queue) > 0 {
			sp := queue[0]
			queue = queue[1:]
			iterations++
			if iterations > optimizerMaxIterations {
				if o.diags != nil {
					o.diags.Report(ErrOptimizerSecondaryExpansion, sp.bc.Source, "optimizer did not converge")
				}
				converged = false
				return
			}
			newLen, keep, err := sp.bc.Contents.Expand(sp.bc, sp.termID, o.diags)
			if err != nil {
				if o.diags != nil {
					o.diags.Report(ErrTooComplexJump, sp.bc.Source, err.Error())
				}
				continue
			}
			if !keep {
				o.tree.Remove(func(data any) bool { return data.(*optSpan) == sp })
			}
			if newLen == sp.bc.Len {
				continue
			}
			sp.bc.Len = newLen
			o.updateAllOffsets()
			idx := sp.bc.Index
			o.tree.Enumerate(idx, idx, func(data any) {
				other := data.(*optSpan)
				if other != sp {
					queue = append(queue, other)
				}
			})
		}
	}
	process(qa)
	process(qb)
	o.updateAllOffsets()
	return converged
}
