package asmengine

import "math/big"

// OutputWarning is a bitset of the warning conditions a single
// NumericOutput can accumulate across calls before EmitWarnings flushes
// them.
type OutputWarning uint32

const (
	WarnBitSignedOverflow OutputWarning = 1 << iota
	WarnBitUnsignedOverflow
	WarnBitTruncated
	WarnBitFloatOverflow
	WarnBitFloatUnderflow
)

// NumericOutput holds the destination-field geometry for one value
// being packed into an output buffer: its bit width (Size), its bit
// offset within the destination byte span (Shift), an arithmetic
// right-shift applied to the source value before fitting (RShift, used
// for e.g. PC-relative values measured in instruction units), and
// whether the value is interpreted as signed.
type NumericOutput struct {
	Size      uint
	Shift     uint
	RShift    uint
	Sign      bool
	WarnEnabled bool

	warnings OutputWarning
}

func NewNumericOutput(size uint) *NumericOutput {
	return &NumericOutput{Size: size, WarnEnabled: true}
}

func onesMask(bits uint) BigInt {
	if bits == 0 {
		return NewBigInt(0)
	}
	var m big.Int
	m.Lsh(big.NewInt(1), bits)
	m.Sub(&m, big.NewInt(1))
	return BigIntFromBig(&m)
}

func lowBitsNonZero(v BigInt, n uint) bool {
	if n == 0 {
		return false
	}
	return !v.And(onesMask(n)).IsZero()
}

// OutputInteger deposits v into dest (the exact byte span the field
// occupies), honoring RShift, Sign, Size, and Shift, OR-merging into
// any bits already present outside the field window. The fast path
// (Shift==0 and Size spans dest exactly) skips the read-modify-write
// and overwrites dest outright.
func (n *NumericOutput) OutputInteger(dest []byte, bigEndian bool, v BigInt) {
	destBits := uint(len(dest)) * 8

	value := v
	if n.RShift > 0 {
		if n.WarnEnabled && lowBitsNonZero(v, n.RShift) {
			n.warnings |= WarnBitTruncated
		}
		value = v.Ashr(n.RShift)
	}

	mode := FitUnsigned
	if n.Sign {
		mode = FitSigned
	}
	if n.WarnEnabled && !value.FitsInSize(n.Size, 0, mode) {
		if n.Sign {
			n.warnings |= WarnBitSignedOverflow
		} else {
			n.warnings |= WarnBitUnsignedOverflow
		}
	}

	fieldMask := onesMask(n.Size)
	fieldVal := value.And(fieldMask)

	if n.Shift == 0 && n.Size == destBits {
		copy(dest, fieldVal.ToBytes(destBits, bigEndian))
		return
	}

	fieldMaskShifted := fieldMask.Shl(n.Shift)
	fieldValShifted := fieldVal.Shl(n.Shift)
	clearMask := onesMask(destBits).Xor(fieldMaskShifted)

	cur := BigIntFromBytes(dest, bigEndian, false)
	merged := cur.And(clearMask).Or(fieldValShifted)
	copy(dest, merged.ToBytes(destBits, bigEndian))
}

// OutputFloat bit-casts f to sem and reuses OutputInteger, folding any
// IEEE overflow/underflow the cast raised into the warning bitset.
func (n *NumericOutput) OutputFloat(dest []byte, bigEndian bool, f BigFloat, sem FloatSemantics) {
	bits, status := f.BitCast(sem)
	if n.WarnEnabled {
		if status.Overflow {
			n.warnings |= WarnBitFloatOverflow
		}
		if status.Underflow {
			n.warnings |= WarnBitFloatUnderflow
		}
	}
	savedSign := n.Sign
	n.Sign = false
	n.OutputInteger(dest, bigEndian, bits)
	n.Sign = savedSign
}

// EmitWarnings reports every warning accumulated since the last call,
// at source, then clears the bitset.
func (n *NumericOutput) EmitWarnings(diags Diagnostics, source SourceRange) {
	if diags == nil {
		n.warnings = 0
		return
	}
	if n.warnings&WarnBitSignedOverflow != 0 {
		diags.Report(WarnSignedOverflow, source, "value does not fit in signed field")
	}
	if n.warnings&WarnBitUnsignedOverflow != 0 {
		diags.Report(WarnUnsignedOverflow, source, "value does not fit in unsigned field")
	}
	if n.warnings&WarnBitTruncated != 0 {
		diags.Report(WarnTruncated, source, "right-shift discarded set bits")
	}
	if n.warnings&WarnBitFloatOverflow != 0 {
		diags.Report(WarnFloatOverflow, source, "float value overflowed target format")
	}
	if n.warnings&WarnBitFloatUnderflow != 0 {
		diags.Report(WarnFloatUnderflow, source, "float value underflowed target format")
	}
	n.warnings = 0
}
