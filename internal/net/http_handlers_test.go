package net

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/WolfTailVale/ItemCreator/internal/config"
	"github.com/WolfTailVale/ItemCreator/internal/server"
	"github.com/WolfTailVale/ItemCreator/logging"
)

const document = `{
  "items": {
    "heal_stone": {"material": "EMERALD", "abilities": {"mend": {"type": "heal", "heal": 6}}},
    "box_of_gunpowder": {"material": "BARREL"}
  },
  "bundles": {
    "gunpowder": {"item": "gunpowder", "box-id": "box_of_gunpowder"}
  }
}`

func newHandler(t *testing.T) (http.Handler, *server.Hub) {
	t.Helper()
	root, err := config.Decode([]byte(document))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	store, err := config.NewMemoryStore(root)
	if err != nil {
		t.Fatalf("store failed: %v", err)
	}
	hub := server.NewHub(server.Config{Store: store})
	if _, err := hub.Reload(context.Background()); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	return NewHTTPHandler(hub, HTTPHandlerConfig{Metrics: &logging.Metrics{}, TickRate: 20}), hub
}

func serve(handler http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func TestHealth(t *testing.T) {
	handler, _ := newHandler(t)
	resp := serve(handler, http.MethodGet, "/health", nil)
	if resp.Code != http.StatusOK || resp.Body.String() != "ok" {
		t.Fatalf("expected ok, got %d %q", resp.Code, resp.Body.String())
	}
}

func TestDiagnosticsReportsRegistries(t *testing.T) {
	handler, _ := newHandler(t)
	resp := serve(handler, http.MethodGet, "/diagnostics", nil)
	if contentType := resp.Header().Get("Content-Type"); contentType != "application/json" {
		t.Fatalf("expected Content-Type application/json, got %q", contentType)
	}
	var payload struct {
		TickRate int                `json:"tickRate"`
		Hub      server.Diagnostics `json:"hub"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode diagnostics: %v", err)
	}
	if payload.TickRate != 20 || payload.Hub.Templates != 2 || payload.Hub.Bundles != 1 || payload.Hub.Recipes != 2 {
		t.Fatalf("unexpected diagnostics %+v", payload)
	}
}

func TestListingRoutes(t *testing.T) {
	handler, _ := newHandler(t)

	var items struct {
		Items []server.ItemView `json:"items"`
	}
	resp := serve(handler, http.MethodGet, "/items", nil)
	if err := json.Unmarshal(resp.Body.Bytes(), &items); err != nil {
		t.Fatalf("failed to decode items: %v", err)
	}
	if len(items.Items) != 2 || items.Items[0].ID != "heal_stone" || len(items.Items[0].Abilities) != 1 {
		t.Fatalf("unexpected items %+v", items.Items)
	}

	var bundles struct {
		Bundles []server.BundleView `json:"bundles"`
	}
	resp = serve(handler, http.MethodGet, "/bundles", nil)
	if err := json.Unmarshal(resp.Body.Bytes(), &bundles); err != nil {
		t.Fatalf("failed to decode bundles: %v", err)
	}
	if len(bundles.Bundles) != 1 || bundles.Bundles[0].Count != 9 {
		t.Fatalf("unexpected bundles %+v", bundles.Bundles)
	}

	if resp := serve(handler, http.MethodPost, "/items", nil); resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.Code)
	}
}

func TestReloadRoute(t *testing.T) {
	handler, _ := newHandler(t)
	if resp := serve(handler, http.MethodGet, "/reload", nil); resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.Code)
	}
	resp := serve(handler, http.MethodPost, "/reload", nil)
	var payload struct {
		Status string              `json:"status"`
		Report server.ReloadReport `json:"report"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode reload: %v", err)
	}
	if payload.Status != "ok" || payload.Report.Templates != 2 || payload.Report.Removed != 2 {
		t.Fatalf("unexpected reload payload %+v", payload)
	}
}

func TestAuthorRoute(t *testing.T) {
	handler, hub := newHandler(t)
	body, _ := json.Marshal(map[string]any{
		"id":       "Emerald_Block",
		"shaped":   true,
		"grid":     []string{"emerald", "emerald", "", "emerald", "emerald", "", "", "", ""},
		"output":   "custom",
		"material": "emerald",
		"name":     "&aGreen Brick",
	})
	resp := serve(handler, http.MethodPost, "/recipes", body)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created authorResponse
	json.Unmarshal(resp.Body.Bytes(), &created)
	if created.Key != "itemcreator:custom_emerald_block" || created.Output != "custom:emerald_block_output" {
		t.Fatalf("unexpected response %+v", created)
	}
	if _, err := hub.Stack("custom:emerald_block_output"); err != nil {
		t.Fatalf("expected output template to exist: %v", err)
	}

	resp = serve(handler, http.MethodPost, "/recipes", body)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected duplicate to be rejected, got %d", resp.Code)
	}

	bad, _ := json.Marshal(map[string]any{"id": "x", "grid": []string{"unobtainium"}, "output": "vanilla", "material": "stone"})
	if resp := serve(handler, http.MethodPost, "/recipes", bad); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected unknown ingredient to be rejected, got %d", resp.Code)
	}

	var listed struct {
		Recipes []server.RecipeView `json:"recipes"`
	}
	json.Unmarshal(serve(handler, http.MethodGet, "/recipes", nil).Body.Bytes(), &listed)
	if len(listed.Recipes) != 3 {
		t.Fatalf("expected bundle pair plus authored recipe, got %+v", listed.Recipes)
	}
}
