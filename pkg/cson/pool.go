// SPDX-FileCopyrightText: 2026 Murphy Proxy Contributors
// SPDX-License-Identifier: Apache-2.0

package cson

import "github.com/murphyproxy/resource-proxy/pkg/pool"

// objectPool/arrayPool recycle boxed Object/Array nodes. Resource set
// definitions and wire-decoded events allocate and discard a steady
// stream of small objects and arrays; pooling them cuts allocator
// churn the way the node pool this descends from cut *http.Client
// churn for the teacher's connection manager.
var (
	objectPool = pool.NewNodePool(pool.NodePoolConfig[Object]{
		New:   func() *Object { return &Object{} },
		Reset: func(o *Object) { o.reset() },
	})

	arrayPool = pool.NewNodePool(pool.NodePoolConfig[Array]{
		New:   func() *Array { return &Array{} },
		Reset: func(a *Array) { a.reset() },
	})
)

func getObject(table *Table) *Object {
	o := objectPool.Get()
	o.refcount = 1
	o.table = table
	return o
}

func putObject(o *Object) {
	objectPool.Put(o)
}

func getArray() *Array {
	a := arrayPool.Get()
	a.refcount = 1
	return a
}

func putArray(a *Array) {
	arrayPool.Put(a)
}

// PoolStats reports allocator pressure for the boxed node pools, used
// by pkg/debug's introspection endpoint.
type PoolStats struct {
	Objects pool.Stats
	Arrays  pool.Stats
}

// Stats returns current object/array pool statistics.
func Stats() PoolStats {
	return PoolStats{Objects: objectPool.Stats(), Arrays: arrayPool.Stats()}
}
