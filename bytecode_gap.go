package asmengine

// GapContents reserves Count bytes without emitting meaningful content
// (RESB/RESW-style directives land here). Object formats that support
// a BSS-like section may call obj's gap-output path instead of writing
// literal zero bytes; Output hands the gap to the object format when
// one is set and writes zeros otherwise.
type GapContents struct {
	Count uint64
}

func (*GapContents) Finalize(bc *Bytecode, table *SymbolTable, diags Diagnostics) bool { return true }

func (c *GapContents) CalcLen(bc *Bytecode, addSpan func(SpanTerm), diags Diagnostics) (uint64, bool) {
	return c.Count, true
}

func (c *GapContents) Expand(bc *Bytecode, spanID int, diags Diagnostics) (uint64, bool, error) {
	return c.Count, false, nil
}

func (c *GapContents) Output(bc *Bytecode, out *ByteBuffer, obj *Object, bigEndian bool, diags Diagnostics) bool {
	if diags != nil && bc.container != nil && bc.container.Flags&SectionBSS == 0 {
		diags.Report(WarnUninitContents, bc.Source, "uninitialized space reserved in a code or data section")
	}
	if obj != nil && obj.Format != nil {
		obj.Format.OutputGap(out, c.Count)
		return true
	}
	out.WriteZeros(int(c.Count))
	return true
}

func (*GapContents) Special() SpecialKind { return SpecialNone }
