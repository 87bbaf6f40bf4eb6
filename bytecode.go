package asmengine

// SpecialKind flags bytecodes the optimizer/object-format must treat
// specially.
type SpecialKind int

const (
	SpecialNone SpecialKind = iota
	// SpecialOffset marks an offset-setter bytecode (Align or Org): the
	// optimizer treats it as fixing the running offset rather than
	// contributing its own length to it.
	SpecialOffset
)

// Contents is the polymorphic behavior of a Bytecode: each concrete
// kind (fixed bytes, gap, data, align, org, LEB128,
// incbin, instruction) implements it. The Bytecode envelope holds the
// shared bookkeeping (fixups, length, offset, source) and dispatches to
// Contents for the kind-specific parts.
type Contents interface {
	// Finalize resolves any Values owned by the contents (e.g. an
	// instruction's immediate operands) against table, reporting
	// diagnostics on failure. Called once, before any length is final.
	Finalize(bc *Bytecode, table *SymbolTable, diags Diagnostics) bool

	// CalcLen computes the bytecode's initial length. If the length
	// depends on a not-yet-resolved Value, it calls addSpan once per
	// length-dependent term and returns the minimum possible length.
	CalcLen(bc *Bytecode, addSpan func(term SpanTerm), diags Diagnostics) (uint64, bool)

	// Expand re-derives the contents' length for span spanID from
	// bc's current (possibly still-changing) Offset, returning the new
	// length and whether the span remains length-dependent.
	Expand(bc *Bytecode, spanID int, diags Diagnostics) (newLen uint64, keep bool, err error)

	// Output renders the final bytes into out (already sized to the
	// bytecode's final Len), resolving any relative Values against obj
	// and emitting Relocations as needed.
	Output(bc *Bytecode, out *ByteBuffer, obj *Object, bigEndian bool, diags Diagnostics) bool

	// Special reports whether this kind needs special optimizer
	// treatment.
	Special() SpecialKind
}

// SpanTerm identifies which part of a bytecode's Contents a tracked
// optimizer span corresponds to, opaque to the optimizer itself.
type SpanTerm struct {
	ID int
}

// Bytecode is one entry in a Section's ordered sequence.
// Fixed, already-known bytes live in Fixed; Fixups are Values whose
// final bytes are deposited into Fixed at Output time (fix-up
// patching, used by fixed and instruction contents that emit a mix of
// literal bytes and relocatable fields).
type Bytecode struct {
	Contents Contents
	Fixed    []byte
	Fixups   []Fixup

	Len    uint64
	Offset uint64
	hasOffset bool

	Index  int
	Source SourceRange

	container *Section
}

// Fixup is a Value whose output bytes land at a fixed byte offset
// within the bytecode's rendered contents.
type Fixup struct {
	Offset uint64
	Val    *Value
}

func NewBytecode(contents Contents, source SourceRange) *Bytecode {
	return &Bytecode{Contents: contents, Source: source}
}

func (bc *Bytecode) SetContainer(s *Section) { bc.container = s }
func (bc *Bytecode) Container() *Section     { return bc.container }

// containerKey and resolvedOffset back Location.CalcDist/CalcDistNoBC:
// two locations are comparable only within the same container, and
// only once that container has assigned concrete offsets.
func (bc *Bytecode) containerKey() *Section { return bc.container }

func (bc *Bytecode) resolvedOffset() (uint64, bool) {
	if bc == nil || !bc.hasOffset {
		return 0, false
	}
	return bc.Offset, true
}

func (bc *Bytecode) SetOffset(off uint64) {
	bc.Offset = off
	bc.hasOffset = true
}

func (bc *Bytecode) ClearOffset() { bc.hasOffset = false }

// Location returns a Location naming the start of this bytecode's
// rendered contents.
func (bc *Bytecode) Location() Location { return Location{Bc: bc, Offset: 0} }

func (bc *Bytecode) Special() SpecialKind {
	if bc.Contents == nil {
		return SpecialNone
	}
	return bc.Contents.Special()
}
