package asmengine

// InstructionContents wraps one opaque, architecture-specific
// instruction payload. Its length is span-dependent exactly when one
// of its fixups can't yet resolve to a concrete value (the classic
// short-vs-near-jump scenario): CalcLen registers a single span for
// the instruction when any fixup is unresolved, and Expand re-encodes
// via the architecture module as bounds tighten.
type InstructionContents struct {
	Arch Architecture
	Insn any

	fixed  []byte
	fixups []Fixup
}

func NewInstructionContents(arch Architecture, insn any) *InstructionContents {
	return &InstructionContents{Arch: arch, Insn: insn}
}

func (c *InstructionContents) Finalize(bc *Bytecode, table *SymbolTable, diags Diagnostics) bool {
	fixed, fixups, err := c.Arch.ToBytes(c.Insn, false)
	if err != nil {
		if diags != nil {
			diags.Report(ErrTooComplexExpression, bc.Source, err.Error())
		}
		return false
	}
	c.fixed = fixed
	c.fixups = fixups
	ok := true
	for _, fx := range c.fixups {
		if !fx.Val.Finalize(table, diags, bc.Source) {
			ok = false
		}
	}
	return ok
}

func (c *InstructionContents) CalcLen(bc *Bytecode, addSpan func(SpanTerm), diags Diagnostics) (uint64, bool) {
	allResolved := true
	for _, fx := range c.fixups {
		if fx.Val.Rel != nil || fx.Val.Wrt != nil {
			allResolved = false
		}
	}
	if allResolved {
		bc.Fixed = c.fixed
		bc.Fixups = c.fixups
		return uint64(len(c.fixed)), true
	}
	addSpan(SpanTerm{ID: 0})
	return uint64(c.Arch.MinInsnLen()), true
}

func (c *InstructionContents) Expand(bc *Bytecode, spanID int, diags Diagnostics) (uint64, bool, error) {
	fixed, fixups, err := c.Arch.ToBytes(c.Insn, false)
	if err != nil {
		return bc.Len, false, err
	}
	c.fixed = fixed
	c.fixups = fixups
	bc.Fixed = fixed
	bc.Fixups = fixups
	stillSpanning := false
	for _, fx := range c.fixups {
		if fx.Val.Rel != nil || fx.Val.Wrt != nil {
			stillSpanning = true
		}
	}
	return uint64(len(fixed)), stillSpanning, nil
}

func (c *InstructionContents) Output(bc *Bytecode, out *ByteBuffer, obj *Object, bigEndian bool, diags Diagnostics) bool {
	bc.Fixed = c.fixed
	bc.Fixups = c.fixups
	return outputFixedWithFixups(bc, out, obj, bigEndian, diags)
}

func (*InstructionContents) Special() SpecialKind { return SpecialNone }
