// SPDX-FileCopyrightText: 2026 Murphy Proxy Contributors
// SPDX-License-Identifier: Apache-2.0

package debug

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/murphyproxy/resource-proxy/internal/proxy"
	"github.com/murphyproxy/resource-proxy/pkg/cson"
	"github.com/murphyproxy/resource-proxy/pkg/metrics"
	"github.com/murphyproxy/resource-proxy/pkg/resource"
)

func TestServer_StatusReportsModelState(t *testing.T) {
	registry := proxy.NewRegistry()
	model := resource.NewModel("zone0")
	model.PopulateClasses([]resource.AppClass{{Name: "player"}})
	model.PopulateResources([]resource.ResourceDef{{ID: 1, Name: "audio_playback"}})

	srv := NewServer(registry, model, nil, nil)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	srv.Handler().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp statusResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Ready)
	assert.Equal(t, []string{"player"}, resp.Classes)
	assert.Equal(t, []string{"audio_playback"}, resp.Resources)
	assert.NotNil(t, resp.Metrics)
	assert.GreaterOrEqual(t, resp.Pools.Objects.Gets, int64(0))
}

func TestServer_ResourceSetsReflectsRegistry(t *testing.T) {
	registry := proxy.NewRegistry()
	model := resource.NewModel("zone0")
	s := registry.CreateSet("client-a", "player", "zone0")
	s.SetResources([]resource.Resource{{Def: resource.ResourceDef{Name: "audio_playback"}}})

	srv := NewServer(registry, model, nil, metrics.NoOpCollector{})
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/resourcesets", nil)
	srv.Handler().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var views []resourceSetView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &views))
	require.Len(t, views, 1)
	assert.Equal(t, "client-a", views[0].ClientID)
	assert.Equal(t, "player", views[0].Class)
	assert.Equal(t, []string{"audio_playback"}, views[0].Resources)
	assert.Equal(t, "fresh", views[0].State)
}

func TestServer_SymbolsReportsInternedTable(t *testing.T) {
	registry := proxy.NewRegistry()
	model := resource.NewModel("zone0")
	symbols := cson.NewTable()
	symbols.Intern("audio_playback")

	srv := NewServer(registry, model, symbols, nil)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/symbols", nil)
	srv.Handler().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var views []symbolView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &views))
	require.Len(t, views, 1)
	assert.Equal(t, "audio_playback", views[0].Name)
}

func TestServer_NilSymbolsDefaultsToEmptyTable(t *testing.T) {
	registry := proxy.NewRegistry()
	model := resource.NewModel("zone0")

	srv := NewServer(registry, model, nil, nil)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/symbols", nil)
	srv.Handler().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var views []symbolView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &views))
	assert.Empty(t, views)
}
