package asmengine

// Architecture is the external collaborator that knows how to encode
// instructions into bytes: instruction-encoding tables are explicitly
// out of scope for this engine, so Insn is an opaque payload the
// architecture module alone understands. The core only needs
// address/length geometry and a way to ask for bytes.
type Architecture interface {
	// AddressSize is the native address width in bits (e.g. 64).
	AddressSize() uint
	// MinInsnLen is the shortest any instruction can possibly encode
	// to, used as the optimizer's initial conservative length guess.
	MinInsnLen() uint
	SetEndian(bigEndian bool)
	// ToBytes encodes insn; it is given no resolved operand distances.
	// It returns the literal bytes plus any fixups (Value operands
	// whose output bytes get patched into those bytes) at their byte
	// offsets within the returned slice.
	ToBytes(insn any, bigEndian bool) (fixed []byte, fixups []Fixup, err error)
}
