package main

import (
	"fmt"
	"os"

	"github.com/xyproto/asmengine"
)

// demoFormat is a minimal asmengine.ObjectFormat: a flat binary layout
// with no real relocation table, just enough to exercise every hook the
// core calls into. Verbose traces every call to stderr, the same
// gated-Fprintf idiom flapc uses for its own ELF writer.
type demoFormat struct {
	Verbose bool
}

func (f *demoFormat) trace(format string, args ...any) {
	if f.Verbose {
		fmt.Fprintf(os.Stderr, "demoFormat: "+format+"\n", args...)
	}
}

func (f *demoFormat) AppendSection(obj *asmengine.Object, name string) *asmengine.Section {
	f.trace("append section %q", name)
	return asmengine.NewSection(name)
}

// ConvertValueToBytes renders a still-symbolic Value as zero-filled
// placeholder bytes plus a Reloc (PC-relative for IP-relative values,
// absolute otherwise), standing in for a real
// format's wire-format relocation record.
func (f *demoFormat) ConvertValueToBytes(v *asmengine.Value, bc *asmengine.Bytecode, bigEndian bool) ([]byte, *asmengine.Reloc, error) {
	if v.Size == 0 {
		return nil, nil, fmt.Errorf("demoFormat: value has no declared size")
	}
	nbytes := (v.Size + 7) / 8
	f.trace("convert unresolved value (size %d bits) to placeholder + reloc", v.Size)
	kind := asmengine.RelocAbsolute
	if v.IPRel {
		kind = asmengine.RelocPCRelative
	}
	return make([]byte, nbytes), &asmengine.Reloc{Value: v, Kind: kind}, nil
}

func (f *demoFormat) OutputGap(out *asmengine.ByteBuffer, count uint64) {
	f.trace("gap of %d bytes", count)
	out.WriteZeros(int(count))
}

func (f *demoFormat) OutputBytes(out *asmengine.ByteBuffer, data []byte) {
	out.Write(data)
}
