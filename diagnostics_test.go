package asmengine

import "testing"

func TestMemoryDiagnosticsHasErrorOccurred(t *testing.T) {
	d := &MemoryDiagnostics{}
	if d.HasErrorOccurred() {
		t.Fatal("fresh MemoryDiagnostics should report no errors")
	}
	d.Report(WarnTruncated, sr(), "truncated value")
	if d.HasErrorOccurred() {
		t.Fatal("a warning alone should not count as an error")
	}
	d.Report(ErrTooComplexExpression, sr(), "too complex")
	if !d.HasErrorOccurred() {
		t.Fatal("an err_* diagnostic should mark HasErrorOccurred true")
	}
	if len(d.Entries) != 2 {
		t.Errorf("expected 2 recorded entries, got %d", len(d.Entries))
	}
}

func TestDiagIDIsError(t *testing.T) {
	errs := []DiagID{
		ErrTooComplexExpression, ErrTooComplexJump, ErrInvalidJumpTarget,
		ErrEquCircularReference, ErrOptimizerCircularReference,
		ErrOptimizerSecondaryExpansion, ErrSymbolRedefined,
		ErrRelocContainsFloat, ErrRelocTooComplex,
	}
	for _, id := range errs {
		if !id.IsError() {
			t.Errorf("%v should be IsError() == true", id)
		}
	}
	warns := []DiagID{
		WarnSignedOverflow, WarnUnsignedOverflow, WarnFloatOverflow,
		WarnFloatUnderflow, WarnTruncated, WarnUninitContents,
		WarnExternDefined, NotePreviousDefinition,
	}
	for _, id := range warns {
		if id.IsError() {
			t.Errorf("%v should be IsError() == false", id)
		}
	}
}
