package asmengine

import (
	"bytes"
	"testing"
)

// TestAssembleEndToEnd builds a small object exercising a forward
// label reference, literal data, alignment, and a LEB128 constant, and
// checks the fully-assembled .text bytes byte-for-byte.
func TestAssembleEndToEnd(t *testing.T) {
	obj := NewObject(nil)
	text := obj.AppendSection(".text")

	startSym := obj.Symbols.Use("start")
	if err := startSym.Declare(VisGlobal, sr()); err != nil {
		t.Fatalf("Declare(start): %v", err)
	}
	valueSym := obj.Symbols.Use("value")

	// opcode 0xB8 followed by a 4-byte immediate forward-referencing `value`.
	immVal := NewValueExpr(32, NewExprSymbol(valueSym, sr()))
	insnBC := NewBytecode(NewFixedContents(), sr())
	insnBC.Fixed = []byte{0xB8, 0, 0, 0, 0}
	insnBC.Fixups = []Fixup{{Offset: 1, Val: immVal}}
	text.Append(insnBC)
	if err := startSym.DefineLabel(insnBC.Location(), sr()); err != nil {
		t.Fatalf("DefineLabel(start): %v", err)
	}

	greetBC := NewBytecode(NewFixedContents(), sr())
	greetBC.Fixed = []byte("Hi\x00")
	text.Append(greetBC)

	alignBC := NewBytecode(&AlignContents{Boundary: 4}, sr())
	text.Append(alignBC)

	valBC := NewBytecode(NewFixedContents(), sr())
	valBC.Fixed = []byte{42, 0, 0, 0}
	text.Append(valBC)
	if err := valueSym.DefineLabel(valBC.Location(), sr()); err != nil {
		t.Fatalf("DefineLabel(value): %v", err)
	}

	lebBC := NewBytecode(&Leb128Contents{Val: NewValueExpr(32, NewExprInt(NewBigInt(624485), sr()))}, sr())
	text.Append(lebBC)

	gapBC := NewBytecode(&GapContents{Count: 8}, sr())
	text.Append(gapBC)

	diags := &MemoryDiagnostics{}
	sections, ok := Assemble(obj, diags, false)
	if !ok {
		t.Fatalf("Assemble failed: %v", diags.Entries)
	}

	want := []byte{
		0xB8, 0x08, 0x00, 0x00, 0x00, // instruction + resolved forward ref (offset 8)
		'H', 'i', 0x00, // literal greeting
		42, 0, 0, 0, // value label contents
		0xe5, 0x8e, 0x26, // LEB128(624485)
		0, 0, 0, 0, 0, 0, 0, 0, // 8-byte gap
	}
	got := sections[".text"]
	if !bytes.Equal(got, want) {
		t.Fatalf("got %x, want %x", got, want)
	}
}

func TestAssembleStopsOnFinalizeError(t *testing.T) {
	obj := NewObject(nil)
	text := obj.AppendSection(".text")

	a := obj.Symbols.Use("a")
	b := obj.Symbols.Use("b")
	c := obj.Symbols.Use("c")
	aRef := NewExprSymbol(a, sr())
	bRef := NewExprSymbol(b, sr())
	cRef := NewExprSymbol(c, sr())
	expr := aRef.Calc(OpAdd, &bRef, sr())
	expr = expr.Calc(OpAdd, &cRef, sr())

	bc := NewBytecode(NewFixedContents(), sr())
	bc.Fixed = make([]byte, 4)
	bc.Fixups = []Fixup{{Offset: 0, Val: NewValueExpr(32, expr)}}
	text.Append(bc)

	diags := &MemoryDiagnostics{}
	_, ok := Assemble(obj, diags, false)
	if ok {
		t.Fatal("Assemble should fail when a Value is too complex to finalize")
	}
	if !diags.HasErrorOccurred() {
		t.Error("expected an error diagnostic")
	}
}

func TestOptimizerUpdateOffsetsAssignsSequentialOffsets(t *testing.T) {
	obj := NewObject(nil)
	sec := obj.AppendSection(".text")
	a := NewBytecode(NewFixedContents(), sr())
	a.Fixed = []byte{1, 2, 3}
	sec.Append(a)
	b := NewBytecode(NewFixedContents(), sr())
	b.Fixed = []byte{4, 5}
	sec.Append(b)

	opt := NewOptimizer(obj, &MemoryDiagnostics{})
	if !opt.CalcLenAll() {
		t.Fatal("CalcLenAll failed")
	}
	opt.UpdateOffsets()

	if off, ok := a.resolvedOffset(); !ok || off != 0 {
		t.Errorf("a offset: got %v,%v, want 0,true", off, ok)
	}
	if off, ok := b.resolvedOffset(); !ok || off != 3 {
		t.Errorf("b offset: got %v,%v, want 3,true", off, ok)
	}
}
