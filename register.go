package asmengine

// RegisterRef is an opaque reference to a register or segment register,
// owned by the architecture module. The core never inspects a
// register's name or width; it only compares identity and hashes it
// for map keys.
//
// Shaped after a flat register-table idiom (name/size/encoding fields
// behind a lookup map), but pushed behind an interface because the
// core stays architecture-agnostic: instruction-encoding tables (and
// therefore concrete register sets) live outside this package.
type RegisterRef interface {
	// Num returns an architecture-defined hash/identity; two RegisterRef
	// values naming the same physical register must return the same Num.
	Num() uint32
	// String is for diagnostics only; the core must not parse it.
	String() string
}

// SameRegister reports whether a and b refer to the same register,
// including the case where either is nil.
func SameRegister(a, b RegisterRef) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Num() == b.Num()
}

// SimpleRegister is a minimal RegisterRef implementation, used by this
// package's own tests; real architecture modules supply their own.
type SimpleRegister struct {
	Name string
	ID   uint32
}

func (r SimpleRegister) Num() uint32    { return r.ID }
func (r SimpleRegister) String() string { return r.Name }
