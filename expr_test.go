package asmengine

import "testing"

func sr() SourceRange { return SourceRange{} }

func TestExpressionBuildAndCalc(t *testing.T) {
	a := NewExprInt(NewBigInt(3), sr())
	b := NewExprInt(NewBigInt(4), sr())
	sum := a.Calc(OpAdd, &b, sr())

	if len(sum.Terms) != 3 {
		t.Fatalf("expected 3 terms (2 operands + 1 op), got %d", len(sum.Terms))
	}
	root, idx, ok := sum.root()
	if !ok || root.Kind != TermOperator || root.Op != OpAdd {
		t.Fatalf("root should be ADD operator, got %+v", root)
	}
	if idx != len(sum.Terms)-1 {
		t.Fatalf("root should be last term")
	}
	children := immediateChildren(sum.Terms, idx)
	if len(children) != 2 {
		t.Fatalf("expected 2 immediate children, got %d", len(children))
	}
}

func TestExpressionUnaryCalc(t *testing.T) {
	a := NewExprInt(NewBigInt(5), sr())
	neg := a.Calc(OpNeg, nil, sr())
	root, idx, ok := neg.root()
	if !ok || root.Op != OpNeg || root.Arity != 1 {
		t.Fatalf("expected unary NEG root, got %+v", root)
	}
	children := immediateChildren(neg.Terms, idx)
	if len(children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(children))
	}
}

func TestExpressionClone(t *testing.T) {
	a := NewExprInt(NewBigInt(1), sr())
	b := NewExprInt(NewBigInt(2), sr())
	sum := a.Calc(OpAdd, &b, sr())
	clone := sum.Clone()
	clone.Terms[0].Int = NewBigInt(999)
	if sum.Terms[0].Int.Int64() == 999 {
		t.Error("Clone should not alias the original's term slice")
	}
}

func TestExpressionContains(t *testing.T) {
	a := NewExprInt(NewBigInt(1), sr())
	reg := NewExprRegister(&SimpleRegister{Name: "rax", ID: 0}, sr())
	sum := a.Calc(OpAdd, &reg, sr())

	if !sum.Contains(MaskRegister) {
		t.Error("expected Contains(MaskRegister) true")
	}
	if sum.Contains(MaskFloat) {
		t.Error("expected Contains(MaskFloat) false")
	}
}

func TestExtractSegOff(t *testing.T) {
	seg := NewExprInt(NewBigInt(0x1000), sr())
	off := NewExprInt(NewBigInt(0x20), sr())
	e := off.Calc(OpSegOff, &seg, sr())

	extractedSeg, ok := e.ExtractSegOff()
	if !ok {
		t.Fatal("ExtractSegOff should succeed on a SEGOFF root")
	}
	segVal, ok := extractedSeg.AsIntNum()
	if !ok || segVal.Int64() != 0x1000 {
		t.Errorf("segment: got %v, want 0x1000", segVal)
	}
	offVal, ok := e.AsIntNum()
	if !ok || offVal.Int64() != 0x20 {
		t.Errorf("remaining offset: got %v, want 0x20", offVal)
	}
}

func TestExtractSegOffFailsOnNonSegOff(t *testing.T) {
	e := NewExprInt(NewBigInt(1), sr())
	_, ok := e.ExtractSegOff()
	if ok {
		t.Error("ExtractSegOff should fail when root is not SEGOFF")
	}
}

func TestExtractDeepSegOff(t *testing.T) {
	seg := NewExprInt(NewBigInt(0x1000), sr())
	off := NewExprInt(NewBigInt(0x20), sr())
	segoff := off.Calc(OpSegOff, &seg, sr())
	disp := NewExprInt(NewBigInt(4), sr())
	e := segoff.Calc(OpAdd, &disp, sr())

	extractedSeg, ok := e.ExtractDeepSegOff()
	if !ok {
		t.Fatal("ExtractDeepSegOff should find SEGOFF nested under ADD")
	}
	segVal, _ := extractedSeg.AsIntNum()
	if segVal.Int64() != 0x1000 {
		t.Errorf("segment: got %v, want 0x1000", segVal)
	}
}

func TestSubstitute(t *testing.T) {
	var e Expression
	e.Append(TermSubstPlaceholder(0, sr()))
	repl := NewExprInt(NewBigInt(42), sr())
	e.Substitute([]Expression{repl})
	v, ok := e.AsIntNum()
	if !ok || v.Int64() != 42 {
		t.Errorf("Substitute: got %+v, want IntNum(42)", e)
	}
}

func TestCleanupRemovesHoles(t *testing.T) {
	a := NewExprInt(NewBigInt(1), sr())
	b := NewExprInt(NewBigInt(2), sr())
	sum := a.Calc(OpAdd, &b, sr())
	clearSubtree(sum.Terms, 0, 0)
	sum.Cleanup()
	for _, term := range sum.Terms {
		if term.IsEmpty() {
			t.Error("Cleanup should remove all NONE-tagged holes")
		}
	}
}
