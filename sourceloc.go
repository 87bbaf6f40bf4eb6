package asmengine

import "fmt"

// SourceLocation is an opaque handle into whatever source-tracking table
// the parser (an external collaborator) maintains. The core never
// interprets it beyond carrying it around for diagnostics.
type SourceLocation uint32

// NoSource is the zero value: "no location available".
const NoSource SourceLocation = 0

// SourceRange is a half-open [Begin, End) span of SourceLocations, used
// on ExprTerms and Values for diagnostic underlines.
type SourceRange struct {
	Begin, End SourceLocation
}

// Valid reports whether the range carries real location info.
func (r SourceRange) Valid() bool {
	return r.Begin != NoSource || r.End != NoSource
}

func (r SourceRange) String() string {
	if !r.Valid() {
		return "<no source>"
	}
	return fmt.Sprintf("[%d,%d)", r.Begin, r.End)
}
