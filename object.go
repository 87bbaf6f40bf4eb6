package asmengine

// Object is the top-level container: every Section plus the shared
// SymbolTable. Object owns an always-present "absolute" pseudo-symbol
// so bin-style absolute output has a symbol identity to key off of
// even when no object-format module defines one.
type Object struct {
	Sections []*Section
	Symbols  *SymbolTable
	Format   ObjectFormat

	absSym *Symbol
}

func NewObject(format ObjectFormat) *Object {
	obj := &Object{Symbols: NewSymbolTable(), Format: format}
	obj.absSym = obj.Symbols.Use(".absolute")
	_ = obj.absSym.DefineSpecial(SourceRange{})
	return obj
}

// AbsoluteSymbol returns the pseudo-symbol representing "no section",
// used by bin-style object formats for absolute addressing.
func (o *Object) AbsoluteSymbol() *Symbol { return o.absSym }

// AppendSection creates a new section, delegating to the object format
// for any format-specific defaults when one is configured.
func (o *Object) AppendSection(name string) *Section {
	var sec *Section
	if o.Format != nil {
		sec = o.Format.AppendSection(o, name)
	} else {
		sec = NewSection(name)
	}
	o.Sections = append(o.Sections, sec)
	return sec
}

// FindSection returns the section named name, if any.
func (o *Object) FindSection(name string) (*Section, bool) {
	for _, s := range o.Sections {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// AddRelocation records a Reloc on sec for a Value the core could not
// resolve on its own.
func (o *Object) AddRelocation(sec *Section, offset uint64, v *Value, diags Diagnostics, source SourceRange) {
	if sec == nil {
		return
	}
	if v.Abs != nil && v.Abs.Contains(MaskFloat) {
		if diags != nil {
			diags.Report(ErrRelocContainsFloat, source, "relocation target contains a floating-point term")
		}
		return
	}
	kind := RelocAbsolute
	if v.IPRel {
		kind = RelocPCRelative
	}
	sec.Relocs = append(sec.Relocs, Reloc{Offset: offset, Value: v, Kind: kind})
}
