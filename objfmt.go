package asmengine

// ObjectFormat is the external collaborator that owns container-format
// concerns the core stays agnostic to: ELF/Mach-O/PE/bin section
// layout, symbol-table serialization, and relocation wire formats are
// all out of scope here.
type ObjectFormat interface {
	// AppendSection creates (or returns an existing) Section named
	// name, applying whatever format-specific defaults apply (e.g. a
	// bin format placing .bss in a gap-only region).
	AppendSection(obj *Object, name string) *Section

	// ConvertValueToBytes renders a Value the core couldn't resolve on
	// its own into final bytes plus a Reloc, letting the format decide
	// relocation-entry shape per its own wire format.
	ConvertValueToBytes(v *Value, bc *Bytecode, bigEndian bool) ([]byte, *Reloc, error)

	// OutputGap and OutputBytes let the format intercept raw output,
	// e.g. to skip writing real zero bytes for a BSS-like section.
	OutputGap(out *ByteBuffer, count uint64)
	OutputBytes(out *ByteBuffer, data []byte)
}
