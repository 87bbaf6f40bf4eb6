package asmengine

// Assemble drives the full pipeline over obj: Finalize every bytecode's
// Values against the symbol table, compute initial lengths and register
// spans, run the optimizer to a fixed point, assign final offsets, then
// render every section's bytes, in pipeline order: Finalize ->
// CalcLen+AddSpan -> Optimize -> UpdateOffsets -> Output. It polls
// diags.HasErrorOccurred() between phases and stops early once an error
// has been reported, since later phases assume earlier ones succeeded.
//
// Returns the rendered bytes per section name, plus whether the whole
// pipeline completed without error.
func Assemble(obj *Object, diags Diagnostics, bigEndian bool) (map[string][]byte, bool) {
	if !finalizeAll(obj, diags) {
		return nil, false
	}
	if diags != nil && diags.HasErrorOccurred() {
		return nil, false
	}

	opt := NewOptimizer(obj, diags)
	if !opt.CalcLenAll() {
		return nil, false
	}
	if diags != nil && diags.HasErrorOccurred() {
		return nil, false
	}
	if !opt.Optimize() {
		return nil, false
	}
	opt.UpdateOffsets()
	if diags != nil && diags.HasErrorOccurred() {
		return nil, false
	}

	return outputAll(obj, diags, bigEndian)
}

func finalizeAll(obj *Object, diags Diagnostics) bool {
	ok := true
	for _, sec := range obj.Sections {
		for _, bc := range sec.Bytecodes {
			if bc.Contents == nil {
				continue
			}
			if !bc.Contents.Finalize(bc, obj.Symbols, diags) {
				ok = false
			}
		}
	}
	return ok
}

func outputAll(obj *Object, diags Diagnostics, bigEndian bool) (map[string][]byte, bool) {
	ok := true
	result := make(map[string][]byte, len(obj.Sections))
	for _, sec := range obj.Sections {
		out := NewByteBuffer(bigEndian)
		for _, bc := range sec.Bytecodes {
			if bc.Contents == nil {
				continue
			}
			if !bc.Contents.Output(bc, out, obj, bigEndian, diags) {
				ok = false
			}
		}
		result[sec.Name] = out.Bytes()
	}
	if diags != nil && diags.HasErrorOccurred() {
		ok = false
	}
	return result, ok
}
