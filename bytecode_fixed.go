package asmengine

// FixedContents is a bytecode whose length is known up front: literal
// data bytes (DB/DW/DD-style) possibly interleaved with relocatable
// Values patched in via Bytecode.Fixups.
type FixedContents struct {
	numOut NumericOutput
}

func NewFixedContents() *FixedContents {
	return &FixedContents{numOut: NumericOutput{WarnEnabled: true}}
}

func (*FixedContents) Finalize(bc *Bytecode, table *SymbolTable, diags Diagnostics) bool {
	ok := true
	for _, fx := range bc.Fixups {
		if !fx.Val.Finalize(table, diags, bc.Source) {
			ok = false
		}
	}
	return ok
}

func (*FixedContents) CalcLen(bc *Bytecode, addSpan func(SpanTerm), diags Diagnostics) (uint64, bool) {
	return uint64(len(bc.Fixed)), true
}

func (*FixedContents) Expand(bc *Bytecode, spanID int, diags Diagnostics) (uint64, bool, error) {
	return uint64(len(bc.Fixed)), false, nil
}

// outputFixedWithFixups renders bc.Fixed, patching each fixup's
// resolved Value into the corresponding byte span, used by every
// Contents kind that stores literal bytes plus fixups.
func outputFixedWithFixups(bc *Bytecode, out *ByteBuffer, obj *Object, bigEndian bool, diags Diagnostics) bool {
	dest := make([]byte, len(bc.Fixed))
	copy(dest, bc.Fixed)
	ok := true
	var numOut NumericOutput
	for _, fx := range bc.Fixups {
		numOut = NumericOutput{WarnEnabled: true}
		end := fx.Offset + uint64((fx.Val.Size+7)/8)
		if end > uint64(len(dest)) {
			ok = false
			continue
		}
		if !fx.Val.OutputBasic(&numOut, dest[fx.Offset:end], bigEndian, bc.Location(), diags, bc.Source) {
			if obj != nil && obj.Format != nil {
				if fmtBytes, reloc, err := obj.Format.ConvertValueToBytes(fx.Val, bc, bigEndian); err == nil {
					copy(dest[fx.Offset:end], fmtBytes)
					if reloc != nil && bc.container != nil {
						bc.container.Relocs = append(bc.container.Relocs, *reloc)
					}
					continue
				}
			}
			if obj != nil && fx.Val.Rel != nil {
				obj.AddRelocation(bc.container, bc.Offset+fx.Offset, fx.Val, diags, bc.Source)
			} else {
				ok = false
			}
		}
	}
	out.Write(dest)
	return ok
}

func (*FixedContents) Output(bc *Bytecode, out *ByteBuffer, obj *Object, bigEndian bool, diags Diagnostics) bool {
	return outputFixedWithFixups(bc, out, obj, bigEndian, diags)
}

func (*FixedContents) Special() SpecialKind { return SpecialNone }
