package asmengine

import "testing"

func TestValueFinalizePureConstant(t *testing.T) {
	tbl := NewSymbolTable()
	v := NewValueExpr(32, NewExprInt(NewBigInt(42), sr()))
	diags := &MemoryDiagnostics{}
	if !v.Finalize(tbl, diags, sr()) {
		t.Fatalf("Finalize failed: %v", diags.Entries)
	}
	iv, ok := v.Abs.AsIntNum()
	if !ok || iv.Int64() != 42 {
		t.Errorf("expected Abs==42, got %+v", v.Abs)
	}
	if v.Rel != nil {
		t.Error("pure constant should have no Rel")
	}
}

func TestValueFinalizeBareSymbolBecomesRel(t *testing.T) {
	tbl := NewSymbolTable()
	sym := tbl.Use("target")
	_ = sym.DefineLabel(Location{Bc: NewBytecode(NewFixedContents(), sr())}, sr())

	v := NewValueExpr(32, NewExprSymbol(sym, sr()))
	diags := &MemoryDiagnostics{}
	if !v.Finalize(tbl, diags, sr()) {
		t.Fatalf("Finalize failed: %v", diags.Entries)
	}
	if v.Rel != sym {
		t.Errorf("expected Rel==target symbol, got %+v", v.Rel)
	}
	if v.Abs != nil {
		t.Errorf("expected Abs to be cleared for a bare-symbol value, got %+v", v.Abs)
	}
}

func TestValueFinalizeRelMinusSub(t *testing.T) {
	tbl := NewSymbolTable()
	targetSym := tbl.Use("target")
	baseSym := tbl.Use("base")
	_ = targetSym.DefineLabel(Location{Bc: NewBytecode(NewFixedContents(), sr())}, sr())
	_ = baseSym.DefineLabel(Location{Bc: NewBytecode(NewFixedContents(), sr())}, sr())

	targetRef := NewExprSymbol(targetSym, sr())
	baseRef := NewExprSymbol(baseSym, sr())
	expr := targetRef.Calc(OpSub, &baseRef, sr())

	v := NewValueExpr(32, expr)
	diags := &MemoryDiagnostics{}
	if !v.Finalize(tbl, diags, sr()) {
		t.Fatalf("Finalize failed: %v", diags.Entries)
	}
	if v.Rel != targetSym {
		t.Errorf("expected Rel==target, got %+v", v.Rel)
	}
	if v.Sub.Sym != baseSym {
		t.Errorf("expected Sub.Sym==base, got %+v", v.Sub)
	}
}

func TestValueFinalizeTooComplexExpression(t *testing.T) {
	tbl := NewSymbolTable()
	a := tbl.Use("a")
	b := tbl.Use("b")
	c := tbl.Use("c")

	// a + b + c: three additive relative symbols is too complex (at most
	// one Rel and one Sub are supported).
	aRef := NewExprSymbol(a, sr())
	bRef := NewExprSymbol(b, sr())
	cRef := NewExprSymbol(c, sr())
	expr := aRef.Calc(OpAdd, &bRef, sr())
	expr = expr.Calc(OpAdd, &cRef, sr())

	v := NewValueExpr(32, expr)
	diags := &MemoryDiagnostics{}
	if v.Finalize(tbl, diags, sr()) {
		t.Fatal("Finalize should fail for an over-complex relative expression")
	}
	if !diags.HasErrorOccurred() {
		t.Error("expected an error diagnostic to be reported")
	}
}

func TestValueFinalizeStripsExactWidthAndMask(t *testing.T) {
	// An exactly-all-ones mask for the field width is stripped entirely
	// (the residual value is left unmasked in Abs) rather than folded,
	// since NumericOutput re-applies the same field mask at output time
	// regardless -- see the REDESIGN FLAG note in value.go.
	tbl := NewSymbolTable()
	sym := tbl.Use("x")
	_ = sym.DefineEqu(NewExprInt(NewBigInt(0x1FF), sr()), sr())

	symRef := NewExprSymbol(sym, sr())
	mask := NewExprInt(onesMask(8), sr())
	expr := symRef.Calc(OpAnd, &mask, sr())

	v := NewValueExpr(8, expr)
	diags := &MemoryDiagnostics{}
	if !v.Finalize(tbl, diags, sr()) {
		t.Fatalf("Finalize failed: %v", diags.Entries)
	}
	iv, ok := v.Abs.AsIntNum()
	if !ok || iv.Int64() != 0x1FF {
		t.Errorf("expected the mask stripped (residual value left as 0x1FF), got %+v", v.Abs)
	}
	if !v.NoWarn {
		t.Error("stripping an exact-width mask should set NoWarn")
	}

	var numOut NumericOutput
	numOut.WarnEnabled = !v.NoWarn
	dest := make([]byte, 1)
	if !v.OutputBasic(&numOut, dest, false, Location{}, diags, sr()) {
		t.Fatal("OutputBasic should succeed for a fully-resolved constant")
	}
	if dest[0] != 0xFF {
		t.Errorf("output should still truncate to the field width: got %#x, want 0xff", dest[0])
	}
	if diags.HasErrorOccurred() {
		t.Errorf("NoWarn should suppress the truncation warning, got %v", diags.Entries)
	}
}

func TestValueOutputBasicPureConstant(t *testing.T) {
	tbl := NewSymbolTable()
	v := NewValueExpr(16, NewExprInt(NewBigInt(0x1234), sr()))
	diags := &MemoryDiagnostics{}
	if !v.Finalize(tbl, diags, sr()) {
		t.Fatalf("Finalize failed: %v", diags.Entries)
	}
	var numOut NumericOutput
	numOut.WarnEnabled = true
	dest := make([]byte, 2)
	ok := v.OutputBasic(&numOut, dest, false, Location{}, diags, sr())
	if !ok {
		t.Fatal("OutputBasic should succeed for a fully-resolved constant")
	}
	if dest[0] != 0x34 || dest[1] != 0x12 {
		t.Errorf("got %x, want 34 12", dest)
	}
}

func TestValueOutputBasicFailsWithUnresolvedWRT(t *testing.T) {
	tbl := NewSymbolTable()
	wrtSym := tbl.Use("wrtframe")
	target := tbl.Use("target")
	targetRef := NewExprSymbol(target, sr())
	wrtRef := NewExprSymbol(wrtSym, sr())
	expr := targetRef.Calc(OpWrt, &wrtRef, sr())

	v := NewValueExpr(32, expr)
	diags := &MemoryDiagnostics{}
	if !v.Finalize(tbl, diags, sr()) {
		t.Fatalf("Finalize failed: %v", diags.Entries)
	}
	if v.Wrt != wrtSym {
		t.Fatalf("expected Wrt==wrtframe, got %+v", v.Wrt)
	}
	var numOut NumericOutput
	dest := make([]byte, 4)
	if v.OutputBasic(&numOut, dest, false, Location{}, diags, sr()) {
		t.Error("OutputBasic should refuse to resolve a value with an unresolved WRT")
	}
}
