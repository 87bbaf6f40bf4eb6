package asmengine

// OffsetSetterContents is implemented by bytecode kinds the optimizer
// must treat as fixing the running offset rather than contributing a
// span-resolved length of their own (SpecialOffset).
// UpdateOffsets calls ResolveOffset with the concrete offset the
// bytecode starts at, once every preceding bytecode's length is final.
type OffsetSetterContents interface {
	ResolveOffset(bc *Bytecode, curOffset uint64) uint64
}

// AlignContents pads to the next multiple of Boundary with FillByte,
// skipping the pad entirely if it would exceed MaxSkip (0 = unlimited)
// at assembly time.
type AlignContents struct {
	Boundary uint64
	FillByte byte
	MaxSkip  uint64
}

func (*AlignContents) Finalize(bc *Bytecode, table *SymbolTable, diags Diagnostics) bool { return true }

// CalcLen returns 0: the real length is only known once UpdateOffsets
// reaches this bytecode and calls ResolveOffset.
func (*AlignContents) CalcLen(bc *Bytecode, addSpan func(SpanTerm), diags Diagnostics) (uint64, bool) {
	return 0, true
}

func (*AlignContents) Expand(bc *Bytecode, spanID int, diags Diagnostics) (uint64, bool, error) {
	return bc.Len, false, nil
}

func (c *AlignContents) ResolveOffset(bc *Bytecode, curOffset uint64) uint64 {
	if c.Boundary <= 1 {
		return 0
	}
	rem := curOffset % c.Boundary
	if rem == 0 {
		return 0
	}
	pad := c.Boundary - rem
	if c.MaxSkip != 0 && pad > c.MaxSkip {
		return 0
	}
	return pad
}

func (c *AlignContents) Output(bc *Bytecode, out *ByteBuffer, obj *Object, bigEndian bool, diags Diagnostics) bool {
	for i := uint64(0); i < bc.Len; i++ {
		out.WriteByte(c.FillByte)
	}
	return true
}

func (*AlignContents) Special() SpecialKind { return SpecialOffset }

// OrgContents sets the running offset to an absolute Target, padding
// with FillByte. Org can only move the offset
// forward; ResolveOffset clamps a backward org to zero padding and
// records the conflict so Output can raise a diagnostic instead of
// silently truncating.
type OrgContents struct {
	Target   uint64
	FillByte byte

	backwards bool
}

func (*OrgContents) Finalize(bc *Bytecode, table *SymbolTable, diags Diagnostics) bool { return true }

func (*OrgContents) CalcLen(bc *Bytecode, addSpan func(SpanTerm), diags Diagnostics) (uint64, bool) {
	return 0, true
}

func (*OrgContents) Expand(bc *Bytecode, spanID int, diags Diagnostics) (uint64, bool, error) {
	return bc.Len, false, nil
}

func (c *OrgContents) ResolveOffset(bc *Bytecode, curOffset uint64) uint64 {
	if curOffset > c.Target {
		c.backwards = true
		return 0
	}
	c.backwards = false
	return c.Target - curOffset
}

func (c *OrgContents) Output(bc *Bytecode, out *ByteBuffer, obj *Object, bigEndian bool, diags Diagnostics) bool {
	if c.backwards {
		if diags != nil {
			diags.Report(ErrInvalidJumpTarget, bc.Source, "org target is behind the current offset")
		}
		return false
	}
	for i := uint64(0); i < bc.Len; i++ {
		out.WriteByte(c.FillByte)
	}
	return true
}

func (*OrgContents) Special() SpecialKind { return SpecialOffset }
