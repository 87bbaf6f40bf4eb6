package asmengine

import "testing"

func TestGapContentsCalcLenAndOutput(t *testing.T) {
	c := &GapContents{Count: 5}
	bc := NewBytecode(c, sr())
	n, ok := c.CalcLen(bc, func(SpanTerm) {}, nil)
	if !ok || n != 5 {
		t.Fatalf("CalcLen: got %d,%v, want 5,true", n, ok)
	}
	var buf ByteBuffer
	if !c.Output(bc, &buf, nil, false, nil) {
		t.Fatal("Output should succeed")
	}
	if len(buf.Bytes()) != 5 {
		t.Errorf("expected 5 zero bytes, got %d", len(buf.Bytes()))
	}
}

func TestAlignContentsResolveOffset(t *testing.T) {
	c := &AlignContents{Boundary: 4, FillByte: 0x90}
	bc := NewBytecode(c, sr())
	if pad := c.ResolveOffset(bc, 5); pad != 3 {
		t.Errorf("ResolveOffset(5): got %d, want 3", pad)
	}
	if pad := c.ResolveOffset(bc, 8); pad != 0 {
		t.Errorf("ResolveOffset(8) (already aligned): got %d, want 0", pad)
	}
}

func TestAlignContentsMaxSkip(t *testing.T) {
	c := &AlignContents{Boundary: 16, FillByte: 0, MaxSkip: 2}
	bc := NewBytecode(c, sr())
	// offset 1 needs 15 bytes of padding, exceeding MaxSkip=2.
	if pad := c.ResolveOffset(bc, 1); pad != 0 {
		t.Errorf("ResolveOffset should skip alignment beyond MaxSkip, got pad=%d", pad)
	}
}

func TestOrgContentsForwardAndBackward(t *testing.T) {
	c := &OrgContents{Target: 100, FillByte: 0}
	bc := NewBytecode(c, sr())
	if pad := c.ResolveOffset(bc, 50); pad != 50 {
		t.Errorf("forward org: got pad %d, want 50", pad)
	}
	bc.Len = 50
	var buf ByteBuffer
	if !c.Output(bc, &buf, nil, false, nil) {
		t.Fatal("forward org Output should succeed")
	}

	c2 := &OrgContents{Target: 10, FillByte: 0}
	bc2 := NewBytecode(c2, sr())
	if pad := c2.ResolveOffset(bc2, 50); pad != 0 {
		t.Errorf("backward org: got pad %d, want 0", pad)
	}
	diags := &MemoryDiagnostics{}
	var buf2 ByteBuffer
	if c2.Output(bc2, &buf2, nil, false, diags) {
		t.Error("backward org Output should fail")
	}
	if !diags.HasErrorOccurred() {
		t.Error("backward org should report err_invalid_jump_target")
	}
}

func TestLeb128ContentsResolvedConstant(t *testing.T) {
	v := NewValueExpr(32, NewExprInt(NewBigInt(624485), sr()))
	tbl := NewSymbolTable()
	diags := &MemoryDiagnostics{}
	if !v.Finalize(tbl, diags, sr()) {
		t.Fatalf("Finalize failed: %v", diags.Entries)
	}
	c := &Leb128Contents{Val: v}
	bc := NewBytecode(c, sr())
	n, ok := c.CalcLen(bc, func(SpanTerm) {}, diags)
	if !ok || n != 3 {
		t.Fatalf("CalcLen: got %d,%v, want 3,true", n, ok)
	}
	bc.Len = n
	var buf ByteBuffer
	if !c.Output(bc, &buf, nil, false, diags) {
		t.Fatalf("Output failed: %v", diags.Entries)
	}
	want := []byte{0xe5, 0x8e, 0x26}
	got := buf.Bytes()
	if len(got) != len(want) {
		t.Fatalf("got %x, want %x", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("byte %d: got %#x, want %#x", i, got[i], want[i])
		}
	}
}

func TestIncbinContentsWindow(t *testing.T) {
	c := &IncbinContents{Data: []byte("0123456789"), Start: 2, MaxLen: 3, HasMax: true}
	bc := NewBytecode(c, sr())
	n, _ := c.CalcLen(bc, func(SpanTerm) {}, nil)
	if n != 3 {
		t.Fatalf("CalcLen: got %d, want 3", n)
	}
	var buf ByteBuffer
	c.Output(bc, &buf, nil, false, nil)
	if string(buf.Bytes()) != "234" {
		t.Errorf("got %q, want %q", buf.Bytes(), "234")
	}
}

func TestInstructionContentsFixedLen(t *testing.T) {
	arch := &testArch{}
	insn := testInsn{opcode: 0x90}
	c := NewInstructionContents(arch, insn)
	bc := NewBytecode(c, sr())
	tbl := NewSymbolTable()
	diags := &MemoryDiagnostics{}
	if !c.Finalize(bc, tbl, diags) {
		t.Fatalf("Finalize failed: %v", diags.Entries)
	}
	n, ok := c.CalcLen(bc, func(SpanTerm) {}, diags)
	if !ok || n != 1 {
		t.Fatalf("CalcLen: got %d,%v, want 1,true", n, ok)
	}
}

// testArch/testInsn are a minimal Architecture used only by this test
// file, independent of cmd/asmengine's demoArch.
type testInsn struct {
	opcode byte
}

type testArch struct{}

func (testArch) AddressSize() uint         { return 64 }
func (testArch) MinInsnLen() uint          { return 1 }
func (testArch) SetEndian(bigEndian bool)  {}
func (testArch) ToBytes(insn any, bigEndian bool) ([]byte, []Fixup, error) {
	in := insn.(testInsn)
	return []byte{in.opcode}, nil, nil
}
