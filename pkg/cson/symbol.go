// SPDX-FileCopyrightText: 2026 Murphy Proxy Contributors
// SPDX-License-Identifier: Apache-2.0

// Package cson implements the reference-counted, polymorphic value
// container used to build and inspect resource proxy wire messages: a
// symbol table for interned object-member names, and the Value type
// with its compact/boxed dual representation.
package cson

import (
	"sync"

	"github.com/murphyproxy/resource-proxy/pkg/logging"
)

// Symbol is an interned object-member name.
type Symbol struct {
	Name string
	ID   uint32
	// Hash is the one-hot bit this symbol contributes to an Object's
	// Bloom membership mask: 1 << ((ID-1) mod 32).
	Hash uint32

	refcount uint32
}

// Table interns member names into numeric ids. The zero value is not
// usable; construct one with NewTable.
type Table struct {
	mu        sync.Mutex
	byName    map[string]*Symbol
	byID      map[uint32]*Symbol
	nextID    uint32
	expectAll uint32
	logger    logging.Logger
}

// NewTable creates an empty symbol table that discards diagnostic
// logging. Use NewTableWithLogger to observe logic errors like an
// unbalanced ForgetAll.
func NewTable() *Table {
	return NewTableWithLogger(nil)
}

// NewTableWithLogger creates an empty symbol table that reports logic
// errors (an unbalanced ForgetAll) through logger. A nil logger
// discards them, same as NewTable.
func NewTableWithLogger(logger logging.Logger) *Table {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Table{
		byName: make(map[string]*Symbol),
		byID:   make(map[uint32]*Symbol),
		nextID: 1,
		logger: logger,
	}
}

func symbolHash(id uint32) uint32 {
	return 1 << ((id - 1) % 32)
}

// Intern returns the id for name, creating it on first use. Every
// call increments the symbol's refcount; callers that don't already
// hold a balancing Release (e.g. a one-shot lookup) must call
// Release when done.
func (t *Table) Intern(name string) uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()

	if sym, ok := t.byName[name]; ok {
		sym.refcount++
		return sym.ID
	}

	id := t.nextID
	t.nextID++

	sym := &Symbol{Name: name, ID: id, Hash: symbolHash(id), refcount: 1 + t.expectAll}
	t.byName[name] = sym
	t.byID[id] = sym
	return id
}

// LookupByName returns the symbol for name without affecting its
// refcount, or false if it isn't currently interned.
func (t *Table) LookupByName(name string) (Symbol, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	sym, ok := t.byName[name]
	if !ok {
		return Symbol{}, false
	}
	return *sym, true
}

// LookupByID returns the name for id, or false if it isn't currently
// interned.
func (t *Table) LookupByID(id uint32) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	sym, ok := t.byID[id]
	if !ok {
		return "", false
	}
	return sym.Name, true
}

// Release decrements name's refcount, removing it from the table once
// it reaches zero. A Release on a name that isn't interned is a no-op.
func (t *Table) Release(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.releaseLocked(name)
}

func (t *Table) releaseLocked(name string) {
	sym, ok := t.byName[name]
	if !ok {
		return
	}
	if sym.refcount > 0 {
		sym.refcount--
	}
	if sym.refcount == 0 {
		delete(t.byName, name)
		delete(t.byID, sym.ID)
	}
}

// Expect pre-interns name and pins it with an extra reference that
// has no matching Intern call, so ordinary traffic can come and go
// without evicting it.
func (t *Table) Expect(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	sym, ok := t.byName[name]
	if !ok {
		id := t.nextID
		t.nextID++
		sym = &Symbol{Name: name, ID: id, Hash: symbolHash(id), refcount: t.expectAll}
		t.byName[name] = sym
		t.byID[id] = sym
	}
	sym.refcount++
}

// Forget reverses a prior Expect.
func (t *Table) Forget(name string) {
	t.Release(name)
}

// ExpectAll increments the process-wide pin counter: every symbol
// interned from this point on starts with one extra reference.
func (t *Table) ExpectAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.expectAll++
}

// ForgetAll decrements the pin counter. Decrementing below zero is
// logged and clamped at zero (spec §4.A); callers should treat that as
// a logic error in the caller, not a fatal condition.
func (t *Table) ForgetAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.expectAll == 0 {
		t.logger.Warn("forget(ALL) called with no matching expect(ALL) pin outstanding")
		return
	}
	t.expectAll--
}

// Len reports how many distinct names are currently interned.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.byName)
}

// All returns a snapshot of every currently interned symbol, used by
// pkg/debug's /symbols introspection endpoint.
func (t *Table) All() []Symbol {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Symbol, 0, len(t.byID))
	for _, sym := range t.byID {
		out = append(out, *sym)
	}
	return out
}

// Default is the process-wide symbol table used by Value construction
// helpers that don't take an explicit Table, mirroring the original
// implementation's single global symbol table (spec §5 "global_ctx").
var Default = NewTable()
