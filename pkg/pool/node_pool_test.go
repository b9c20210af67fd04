// SPDX-FileCopyrightText: 2026 Murphy Proxy Contributors
// SPDX-License-Identifier: Apache-2.0

package pool

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testNode struct {
	Value int
	Tag   string
}

func newTestPool() *NodePool[testNode] {
	return NewNodePool(NodePoolConfig[testNode]{
		New: func() *testNode { return &testNode{} },
		Reset: func(n *testNode) {
			n.Value = 0
			n.Tag = ""
		},
	})
}

func TestNodePool_GetAllocatesWhenEmpty(t *testing.T) {
	p := newTestPool()

	n := p.Get()
	require.NotNil(t, n)

	stats := p.Stats()
	assert.Equal(t, int64(1), stats.Gets)
	assert.Equal(t, int64(1), stats.News)
}

func TestNodePool_PutResetsAndReuses(t *testing.T) {
	p := newTestPool()

	n := p.Get()
	n.Value = 42
	n.Tag = "dirty"
	p.Put(n)

	reused := p.Get()
	assert.Equal(t, 0, reused.Value)
	assert.Equal(t, "", reused.Tag)
}

func TestNodePool_PutNilIsNoop(t *testing.T) {
	p := newTestPool()
	p.Put(nil)

	assert.Equal(t, int64(0), p.Stats().Puts)
}

func TestStats_ReuseRatio(t *testing.T) {
	assert.Equal(t, float64(0), Stats{Gets: 0}.ReuseRatio())
	assert.Equal(t, 0.5, Stats{Gets: 2, News: 1}.ReuseRatio())
	assert.Equal(t, float64(1), Stats{Gets: 5, News: 0}.ReuseRatio())
}

func TestNodePool_StartStopMonitoring(t *testing.T) {
	p := newTestPool()
	p.StartMonitoring(time.Millisecond)
	defer p.StopMonitoring()

	p.Get()
	time.Sleep(5 * time.Millisecond)
}

func TestNodePool_NewPanicsWithoutConstructor(t *testing.T) {
	assert.Panics(t, func() {
		NewNodePool(NodePoolConfig[testNode]{})
	})
}
