package asmengine

// SectionFlags is a combinable bitmask of section attributes.
type SectionFlags uint8

const (
	SectionCode SectionFlags = 1 << iota
	SectionBSS
	SectionReadOnly
)

// Section is an ordered Container of Bytecodes sharing one address
// space. Every section starts with an empty head bytecode so a
// Location can always name "the very start of the section" without a
// nil-bytecode special case.
type Section struct {
	Name  string
	VMA   uint64
	LMA   uint64
	Align uint64
	Flags SectionFlags

	Bytecodes []*Bytecode
	Relocs    []Reloc
}

func NewSection(name string) *Section {
	s := &Section{Name: name}
	head := NewBytecode(NewFixedContents(), SourceRange{})
	s.Append(head)
	return s
}

// Append adds bc to the end of the section, wiring its container
// back-pointer and index. A Gap bytecode appended right after another
// Gap is mergeable: it folds into the existing reservation instead of
// becoming a second bytecode.
func (s *Section) Append(bc *Bytecode) {
	if len(s.Bytecodes) > 0 {
		if newGap, ok := bc.Contents.(*GapContents); ok {
			if prevGap, ok := s.Bytecodes[len(s.Bytecodes)-1].Contents.(*GapContents); ok {
				prevGap.Count += newGap.Count
				return
			}
		}
	}
	bc.SetContainer(s)
	bc.Index = len(s.Bytecodes)
	s.Bytecodes = append(s.Bytecodes, bc)
}

// Head returns the section's first (empty, offset-0) bytecode.
func (s *Section) Head() *Bytecode {
	if len(s.Bytecodes) == 0 {
		return nil
	}
	return s.Bytecodes[0]
}

// Len returns the section's total rendered length, valid once every
// bytecode's Len has been finalized.
func (s *Section) Len() uint64 {
	var total uint64
	for _, bc := range s.Bytecodes {
		total += bc.Len
	}
	return total
}
