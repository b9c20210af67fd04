// SPDX-FileCopyrightText: 2026 Murphy Proxy Contributors
// SPDX-License-Identifier: Apache-2.0

package cson

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/murphyproxy/resource-proxy/pkg/logging"
)

func TestTable_InternDeterministic(t *testing.T) {
	table := NewTable()

	id1 := table.Intern("priority")
	id2 := table.Intern("priority")

	assert.Equal(t, id1, id2)
	assert.Equal(t, uint32(1<<((id1-1)%32)), symbolHash(id1))
}

func TestTable_InternAssignsMonotonicIDs(t *testing.T) {
	table := NewTable()

	idA := table.Intern("a")
	idB := table.Intern("b")

	assert.Less(t, idA, idB)
}

func TestTable_ReleaseRemovesAtZero(t *testing.T) {
	table := NewTable()

	table.Intern("zone")
	table.Release("zone")

	_, ok := table.LookupByName("zone")
	assert.False(t, ok)
}

func TestTable_ReleaseKeepsSharedReference(t *testing.T) {
	table := NewTable()

	table.Intern("zone")
	table.Intern("zone")
	table.Release("zone")

	_, ok := table.LookupByName("zone")
	assert.True(t, ok, "symbol with an outstanding reference must survive one release")
}

func TestTable_ExpectPinsWithoutMatchingIntern(t *testing.T) {
	table := NewTable()

	table.Expect("class")
	table.Intern("class") // ordinary use on top of the pin

	_, ok := table.LookupByName("class")
	require.True(t, ok)

	table.Release("class") // drops the ordinary reference, pin remains
	_, ok = table.LookupByName("class")
	assert.True(t, ok, "Expect's pin must survive a single ordinary release")

	table.Forget("class") // drops the pin
	_, ok = table.LookupByName("class")
	assert.False(t, ok)
}

func TestTable_ExpectAllPinsFutureSymbols(t *testing.T) {
	table := NewTable()
	table.ExpectAll()

	table.Intern("future")
	table.Release("future")

	_, ok := table.LookupByName("future")
	assert.True(t, ok, "ExpectAll must add an extra reference to symbols created afterward")
}

func TestTable_ForgetAllClampsAtZero(t *testing.T) {
	table := NewTable()

	table.ForgetAll()
	table.ForgetAll()

	assert.Equal(t, uint32(0), table.expectAll)
}

type recordingLogger struct {
	logging.NoOpLogger
	warnings []string
}

func (l *recordingLogger) Warn(msg string, args ...any) {
	l.warnings = append(l.warnings, msg)
}

func TestTable_ForgetAllLogsUnderflow(t *testing.T) {
	logger := &recordingLogger{}
	table := NewTableWithLogger(logger)

	table.ForgetAll()

	require.Len(t, logger.warnings, 1)
}

func TestTable_LookupByID(t *testing.T) {
	table := NewTable()
	id := table.Intern("resource")

	name, ok := table.LookupByID(id)
	require.True(t, ok)
	assert.Equal(t, "resource", name)

	_, ok = table.LookupByID(id + 1000)
	assert.False(t, ok)
}
