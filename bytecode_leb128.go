package asmengine

import "fmt"

// Leb128Contents encodes Val as LEB128, wire format grounded on
// yasm's libyasmx/Bytes_leb128.cpp. Its length is span-dependent
// whenever Val isn't already a resolved integer: the optimizer tracks
// it like any other length-dependent bytecode, shrinking/growing as
// neighboring spans settle.
type Leb128Contents struct {
	Val    *Value
	Signed bool
}

func (c *Leb128Contents) Finalize(bc *Bytecode, table *SymbolTable, diags Diagnostics) bool {
	return c.Val.Finalize(table, diags, bc.Source)
}

func (c *Leb128Contents) sizeFor(v BigInt) uint64 {
	if c.Signed {
		return uint64(v.SizeSLEB128())
	}
	return uint64(v.SizeULEB128())
}

func (c *Leb128Contents) CalcLen(bc *Bytecode, addSpan func(SpanTerm), diags Diagnostics) (uint64, bool) {
	if c.Val.Abs != nil {
		if iv, ok := c.Val.Abs.AsIntNum(); ok {
			return c.sizeFor(iv), true
		}
	}
	if c.Val.Abs == nil && c.Val.Rel == nil {
		return c.sizeFor(NewBigInt(0)), true
	}
	// Length depends on a not-yet-resolved relative value; register a
	// span so the optimizer re-Expands this bytecode as neighboring
	// offsets settle.
	addSpan(SpanTerm{ID: 0})
	return 1, true
}

// Expand re-derives the LEB128 length from bc's current location,
// falling back to the widest plausible size when the value still
// isn't resolvable (e.g. before any offset has been assigned).
func (c *Leb128Contents) Expand(bc *Bytecode, spanID int, diags Diagnostics) (uint64, bool, error) {
	if c.Val.Abs != nil {
		if iv, ok := c.Val.Abs.AsIntNum(); ok {
			return c.sizeFor(iv), false, nil
		}
	}
	if iv, ok := c.Val.CalcPCRelSub(bc.Location()); ok {
		return c.sizeFor(iv), true, nil
	}
	return c.sizeFor(NewBigInt(1 << 32)), true, nil
}

func (c *Leb128Contents) Output(bc *Bytecode, out *ByteBuffer, obj *Object, bigEndian bool, diags Diagnostics) bool {
	var iv BigInt
	if c.Val.Abs != nil {
		v, ok := c.Val.Abs.AsIntNum()
		if !ok {
			if diags != nil {
				diags.Report(ErrTooComplexExpression, bc.Source, "LEB128 operand did not resolve to an integer")
			}
			return false
		}
		iv = v
	} else if c.Val.Rel != nil {
		v, ok := c.Val.CalcPCRelSub(bc.Location())
		if !ok {
			if diags != nil {
				diags.Report(ErrTooComplexExpression, bc.Source, "LEB128 operand is still relocatable")
			}
			return false
		}
		iv = v
	}
	var buf []byte
	if c.Signed {
		iv.EncodeSLEB128(&buf)
	} else {
		iv.EncodeULEB128(&buf)
	}
	if uint64(len(buf)) != bc.Len {
		if diags != nil {
			diags.Report(ErrOptimizerSecondaryExpansion, bc.Source, fmt.Sprintf("LEB128 encoded length %d does not match reserved length %d", len(buf), bc.Len))
		}
	}
	out.Write(buf)
	return true
}

func (*Leb128Contents) Special() SpecialKind { return SpecialNone }
