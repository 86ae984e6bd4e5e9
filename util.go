package atomics

import (
	"unsafe"
)

// noCopy may be added to structs which must not be copied
// after the first use.
//
// See https://golang.org/issues/8005#issuecomment-190753527
// for details.
//
// Note that it must not be embedded, due to the Lock and Unlock methods.
type noCopy struct{}

// Lock is a no-op used by -copylocks checker from `go vet`.
func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// noescape hides a pointer from escape analysis. noescape is
// the identity function, but escape analysis doesn't think the
// output depends on the input. noescape is inlined and currently
// compiles down to zero instructions.
// USE CAREFULLY!
//
//go:nosplit
//go:nocheckptr
func noescape(p unsafe.Pointer) unsafe.Pointer {
	x := uintptr(p)
	//nolint:all
	//goland:noinspection ALL
	return unsafe.Pointer(x ^ 0)
}

// ============================================================================
// Runtime type introspection
// ============================================================================

// iType mirrors the prefix of the runtime type descriptor. Only PtrBytes is
// consumed here; the remaining fields keep the layout in sync with the
// runtime.
//
// This relies on Go's internal type representation and should be verified
// against each Go version upgrade.
type iType struct {
	Size_       uintptr
	PtrBytes    uintptr // number of (prefix) bytes in the type that can contain pointers
	Hash        uint32  // hash of type; avoids computation in hash tables
	TFlag       uint8   // extra type information flags
	Align_      uint8   // alignment of variable with this type
	FieldAlign_ uint8   // alignment of struct field with this type
	Kind_       uint8   // enumeration for C
	Equal       func(unsafe.Pointer, unsafe.Pointer) bool
	GCData      *byte
	Str         int32
	PtrToThis   int32
}

type iEmptyInterface struct {
	Type *iType
	Data unsafe.Pointer
}

func iTypeOf(a any) *iType {
	eface := *(*iEmptyInterface)(unsafe.Pointer(&a))
	// Types are either static or heap-allocated but always reachable, so
	// there is no need to escape them; noescape keeps the boxed value off
	// the heap.
	return (*iType)(noescape(unsafe.Pointer(eface.Type)))
}

// typeHasPointers reports whether values of T contain pointer words the
// garbage collector must be able to see. Interface types (no static
// descriptor for the zero value) are conservatively treated as pointerful.
func typeHasPointers[T any]() bool {
	var v T
	t := iTypeOf(v)
	if t == nil {
		return true
	}
	return t.PtrBytes != 0
}
