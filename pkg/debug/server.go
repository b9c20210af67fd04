// SPDX-FileCopyrightText: 2026 Murphy Proxy Contributors
// SPDX-License-Identifier: Apache-2.0

// Package debug exposes a small, read-only HTTP introspection surface
// over the resource proxy's live state: handshake readiness, every
// tracked resource set, and the interned symbol table. It has no
// teacher file to ground on directly — the teacher ships no debug
// surface — but the mux.Router-over-handler-funcs wiring follows the
// same shape as the teacher's streaming/websocket handler
// registration (DESIGN.md "pkg/debug").
package debug

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/murphyproxy/resource-proxy/internal/proxy"
	"github.com/murphyproxy/resource-proxy/pkg/cson"
	"github.com/murphyproxy/resource-proxy/pkg/metrics"
	"github.com/murphyproxy/resource-proxy/pkg/resource"
)

// Server serves read-only JSON introspection of a running client's
// registry, resource model and symbol table. It never mutates any of
// them: every handler is a GET.
type Server struct {
	router   *mux.Router
	registry *proxy.Registry
	model    *resource.Model
	symbols  *cson.Table
	metrics  metrics.Collector
}

// NewServer builds a Server wired to the given client state. symbols
// may be nil, in which case /symbols reports an empty table (callers
// that never touch pkg/cson directly, e.g. numeric-only attribute
// payloads, have nothing to intern).
func NewServer(registry *proxy.Registry, model *resource.Model, symbols *cson.Table, collector metrics.Collector) *Server {
	if symbols == nil {
		symbols = cson.NewTable()
	}
	if collector == nil {
		collector = metrics.NoOpCollector{}
	}

	s := &Server{
		registry: registry,
		model:    model,
		symbols:  symbols,
		metrics:  collector,
	}

	r := mux.NewRouter()
	r.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/resourcesets", s.handleResourceSets).Methods(http.MethodGet)
	r.HandleFunc("/symbols", s.handleSymbols).Methods(http.MethodGet)
	s.router = r

	return s
}

// Handler returns the http.Handler to mount, e.g. via http.ListenAndServe.
func (s *Server) Handler() http.Handler {
	return s.router
}

type statusResponse struct {
	Ready     bool           `json:"ready"`
	Classes   []string       `json:"classes"`
	Zones     []string       `json:"zones"`
	Resources []string       `json:"resources"`
	Metrics   *metrics.Stats `json:"metrics"`
	Pools     cson.PoolStats `json:"pools"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Ready:     s.model.Ready(),
		Classes:   s.model.ClassNames(),
		Zones:     s.model.ZoneNames(),
		Resources: s.model.ResourceNames(),
		Metrics:   s.metrics.GetStats(),
		Pools:     cson.Stats(),
	}
	writeJSON(w, resp)
}

type resourceSetView struct {
	LocalID     uint32   `json:"local_id"`
	ServerID    uint32   `json:"server_id"`
	ClientID    string   `json:"client_id"`
	Class       string   `json:"class"`
	Zone        string   `json:"zone"`
	State       string   `json:"state"`
	GrantMask   uint32   `json:"grant_mask"`
	AdviceMask  uint32   `json:"advice_mask"`
	Resources   []string `json:"resources"`
	AutoRelease bool     `json:"auto_release"`
}

func (s *Server) handleResourceSets(w http.ResponseWriter, r *http.Request) {
	sets := s.registry.AllSets()
	views := make([]resourceSetView, 0, len(sets))
	for _, set := range sets {
		snap := set.Snapshot()
		names := make([]string, 0, len(snap.Resources))
		for _, res := range snap.Resources {
			names = append(names, res.Def.Name)
		}
		views = append(views, resourceSetView{
			LocalID:     snap.LocalID,
			ServerID:    snap.ServerID,
			ClientID:    snap.ClientID,
			Class:       snap.Class,
			Zone:        snap.Zone,
			State:       snap.State.String(),
			GrantMask:   snap.GrantMask,
			AdviceMask:  snap.AdviceMask,
			Resources:   names,
			AutoRelease: snap.AutoRelease,
		})
	}
	writeJSON(w, views)
}

type symbolView struct {
	Name string `json:"name"`
	ID   uint32 `json:"id"`
	Hash uint32 `json:"bloom_bit"`
}

func (s *Server) handleSymbols(w http.ResponseWriter, r *http.Request) {
	syms := s.symbols.All()
	views := make([]symbolView, 0, len(syms))
	for _, sym := range syms {
		views = append(views, symbolView{Name: sym.Name, ID: sym.ID, Hash: sym.Hash})
	}
	writeJSON(w, views)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
