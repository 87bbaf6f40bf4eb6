package asmengine

import "testing"

func TestBigFloatArithmetic(t *testing.T) {
	a := NewBigFloatFromFloat64(1.5)
	b := NewBigFloatFromFloat64(2.25)
	sum := a.Add(b)
	v, _ := sum.ToSemantics(SemanticsDouble)
	if v != 3.75 {
		t.Errorf("Add: got %v, want 3.75", v)
	}
	diff := b.Sub(a)
	v, _ = diff.ToSemantics(SemanticsDouble)
	if v != 0.75 {
		t.Errorf("Sub: got %v, want 0.75", v)
	}
}

func TestBigFloatDivByZero(t *testing.T) {
	a := NewBigFloatFromFloat64(1)
	_, err := a.Div(NewBigFloatFromFloat64(0))
	if err == nil {
		t.Error("expected division-by-zero error")
	}
}

func TestBigFloatBitCastDoubleRoundTrip(t *testing.T) {
	a := NewBigFloatFromFloat64(3.14159265358979)
	bits, status := a.BitCast(SemanticsDouble)
	if status.Overflow || status.Underflow {
		t.Fatalf("unexpected status: %+v", status)
	}
	back := BigFloatFromBytes(bits.ToBytes(64, false), SemanticsDouble, false)
	v, _ := back.ToSemantics(SemanticsDouble)
	if v != 3.14159265358979 {
		t.Errorf("round trip: got %v", v)
	}
}

func TestBigFloatBitCastSingleRoundTrip(t *testing.T) {
	a := NewBigFloatFromFloat64(1.5) // exactly representable in single
	bits, _ := a.BitCast(SemanticsSingle)
	back := BigFloatFromBytes(bits.ToBytes(32, false), SemanticsSingle, false)
	v, _ := back.ToSemantics(SemanticsDouble)
	if v != 1.5 {
		t.Errorf("round trip: got %v, want 1.5", v)
	}
}

func TestX87ExtendedRoundTrip(t *testing.T) {
	a := NewBigFloatFromFloat64(2.5)
	bits, _ := a.BitCast(SemanticsX87Extended)
	back := X87ExtendedFromBits(bits)
	v, _ := back.ToSemantics(SemanticsDouble)
	if v != 2.5 {
		t.Errorf("x87 round trip: got %v, want 2.5", v)
	}
}

func TestX87ExtendedZero(t *testing.T) {
	a := BigFloat{}
	bits, _ := a.BitCast(SemanticsX87Extended)
	if bits.Int64() != 0 {
		t.Errorf("zero should bit-cast to 0, got %v", bits)
	}
}

func TestFloatSemanticsBits(t *testing.T) {
	cases := map[FloatSemantics]uint{
		SemanticsHalf:         16,
		SemanticsSingle:       32,
		SemanticsDouble:       64,
		SemanticsX87Extended:  80,
	}
	for sem, want := range cases {
		if got := sem.Bits(); got != want {
			t.Errorf("%v.Bits(): got %d, want %d", sem, got, want)
		}
	}
}
