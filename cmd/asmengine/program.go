package main

import (
	"github.com/xyproto/asmengine"
)

// buildDemoProgram assembles a small, fixed object exercising several
// bytecode kinds the core supports: an instruction with a
// forward-referenced immediate, literal data, alignment padding, a
// LEB128-encoded constant, and a reserved (gap) buffer. Org, incbin
// and TIMES bytecodes are not part of it. It stands in for
// what a real front end would hand the core after parsing source text;
// lexing and parsing live outside this engine entirely.
func buildDemoProgram(format asmengine.ObjectFormat) *asmengine.Object {
	obj := asmengine.NewObject(format)
	text := obj.AppendSection(".text")

	startSym := obj.Symbols.Use("start")
	_ = startSym.Declare(asmengine.VisGlobal, asmengine.SourceRange{})

	valueSym := obj.Symbols.Use("value")

	// mov-like instruction: opcode 0xB8 followed by a 4-byte immediate
	// that forward-references `value`.
	immExpr := asmengine.NewExprSymbol(valueSym, asmengine.SourceRange{})
	immVal := asmengine.NewValueExpr(32, immExpr)
	insn := demoInsn{Opcode: 0xB8, Imm: immVal, ImmSize: 4}
	insnBC := asmengine.NewBytecode(asmengine.NewInstructionContents(&demoArch{}, insn), asmengine.SourceRange{})
	text.Append(insnBC)
	_ = startSym.DefineLabel(insnBC.Location(), asmengine.SourceRange{})

	// literal bytes: "Hi\0"
	greet := asmengine.NewFixedContents()
	greetBC := asmengine.NewBytecode(greet, asmengine.SourceRange{})
	greetBC.Fixed = []byte("Hi\x00")
	text.Append(greetBC)

	// pad to the next 4-byte boundary
	alignBC := asmengine.NewBytecode(&asmengine.AlignContents{Boundary: 4}, asmengine.SourceRange{})
	text.Append(alignBC)

	// the `value` label: a 4-byte literal field, little-endian 42
	valData := asmengine.NewFixedContents()
	valBC := asmengine.NewBytecode(valData, asmengine.SourceRange{})
	valBC.Fixed = []byte{42, 0, 0, 0}
	text.Append(valBC)
	_ = valueSym.DefineLabel(valBC.Location(), asmengine.SourceRange{})

	// a LEB128-encoded constant, unrelated to the above, demonstrating
	// the variable-length bytecode kind.
	lebVal := asmengine.NewValueExpr(32, asmengine.NewExprInt(asmengine.NewBigInt(624485), asmengine.SourceRange{}))
	lebBC := asmengine.NewBytecode(&asmengine.Leb128Contents{Val: lebVal}, asmengine.SourceRange{})
	text.Append(lebBC)

	// reserve 8 bytes of uninitialized space
	gapBC := asmengine.NewBytecode(&asmengine.GapContents{Count: 8}, asmengine.SourceRange{})
	text.Append(gapBC)

	return obj
}
