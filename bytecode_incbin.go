package asmengine

// IncbinContents embeds a slice of externally-read file bytes. Reading
// the file itself belongs to the external collaborator that drives the
// engine; this type only carries the already-read bytes plus the
// optional start/maxlen window.
type IncbinContents struct {
	Data     []byte
	Start    uint64
	MaxLen   uint64
	HasMax   bool
}

func (c *IncbinContents) slice() []byte {
	start := c.Start
	if start > uint64(len(c.Data)) {
		start = uint64(len(c.Data))
	}
	end := uint64(len(c.Data))
	if c.HasMax && start+c.MaxLen < end {
		end = start + c.MaxLen
	}
	return c.Data[start:end]
}

func (*IncbinContents) Finalize(bc *Bytecode, table *SymbolTable, diags Diagnostics) bool { return true }

func (c *IncbinContents) CalcLen(bc *Bytecode, addSpan func(SpanTerm), diags Diagnostics) (uint64, bool) {
	return uint64(len(c.slice())), true
}

func (c *IncbinContents) Expand(bc *Bytecode, spanID int, diags Diagnostics) (uint64, bool, error) {
	return uint64(len(c.slice())), false, nil
}

func (c *IncbinContents) Output(bc *Bytecode, out *ByteBuffer, obj *Object, bigEndian bool, diags Diagnostics) bool {
	out.Write(c.slice())
	return true
}

func (*IncbinContents) Special() SpecialKind { return SpecialNone }
