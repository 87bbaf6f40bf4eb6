package main

import (
	"fmt"

	"github.com/xyproto/asmengine"
)

// demoInsn is the opaque instruction payload demoArch understands: a
// one-byte opcode optionally followed by an ImmSize-byte immediate
// operand (Imm nil means no operand at all). It stands in for the
// real mnemonic-table encoders a production architecture module would
// carry.
type demoInsn struct {
	Opcode  byte
	Imm     *asmengine.Value
	ImmSize uint
}

// demoArch is a minimal asmengine.Architecture: just enough encoding to
// drive the pipeline end to end without a real instruction set.
type demoArch struct {
	bigEndian bool
}

func (a *demoArch) AddressSize() uint { return 64 }
func (a *demoArch) MinInsnLen() uint  { return 1 }
func (a *demoArch) SetEndian(bigEndian bool) { a.bigEndian = bigEndian }

func (a *demoArch) ToBytes(insn any, bigEndian bool) ([]byte, []asmengine.Fixup, error) {
	in, ok := insn.(demoInsn)
	if !ok {
		return nil, nil, fmt.Errorf("demoArch: unsupported instruction payload %T", insn)
	}
	fixed := make([]byte, 1+in.ImmSize)
	fixed[0] = in.Opcode
	var fixups []asmengine.Fixup
	if in.Imm != nil {
		fixups = []asmengine.Fixup{{Offset: 1, Val: in.Imm}}
	}
	return fixed, fixups, nil
}
