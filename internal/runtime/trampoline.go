package runtime

import "reflect"

// trampolineEntry is implemented in trampoline_amd64.s. It has no Go
// body: it is a fixed-address routine meant to be called the way
// JITted code calls any other function table entry — with the
// function id in RDI — not the way Go code calls a Go function. Its
// address is what every function table slot is initialized to.
func trampolineEntry()

// callEntry is implemented in trampoline_amd64.s. It bridges a normal
// Go call into the entry protocol fn expects: the id argument lands in
// RDI before fn is called, matching what Invoke-compiled code and the
// trampoline both do when calling through the function table.
func callEntry(fn uintptr, id uint32)

// trampolineEntryAddr returns the raw code address of trampolineEntry,
// suitable for storing directly in the function table: the table never
// calls through a Go func value, only through a bare code address.
func trampolineEntryAddr() uintptr {
	return reflect.ValueOf(trampolineEntry).Pointer()
}
