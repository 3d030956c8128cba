// Package net exposes the hub over HTTP: operator views of the registries,
// configuration reload, recipe authoring, and the player websocket.
package net

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	nethttp "net/http"
	"strings"
	"time"

	"github.com/WolfTailVale/ItemCreator/internal/items"
	"github.com/WolfTailVale/ItemCreator/internal/net/ws"
	"github.com/WolfTailVale/ItemCreator/internal/recipes"
	"github.com/WolfTailVale/ItemCreator/internal/server"
	"github.com/WolfTailVale/ItemCreator/internal/telemetry"
	"github.com/WolfTailVale/ItemCreator/logging"
)

type HTTPHandlerConfig struct {
	Logger   telemetry.Logger
	Metrics  *logging.Metrics
	TickRate int
	// Loop stages websocket commands. The /ws route is only mounted when set.
	Loop ws.Enqueuer
}

// authorRequest is the JSON form of recipes.AuthorRequest. Grid cells hold
// item specifications; empty strings are empty cells.
type authorRequest struct {
	ID              string    `json:"id"`
	Shaped          bool      `json:"shaped"`
	Grid            [9]string `json:"grid"`
	Output          string    `json:"output"`
	Material        string    `json:"material"`
	Amount          int       `json:"amount"`
	Name            string    `json:"name"`
	Lore            []string  `json:"lore"`
	CustomModelData *int      `json:"customModelData"`
	Placeable       *bool     `json:"placeable"`
	Author          string    `json:"author"`
}

type authorResponse struct {
	Status string `json:"status"`
	Key    string `json:"key,omitempty"`
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

func NewHTTPHandler(hub *server.Hub, cfg HTTPHandlerConfig) nethttp.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.LoggerFunc(nil)
	}

	mux := nethttp.NewServeMux()

	mux.HandleFunc("/health", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/diagnostics", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		payload := struct {
			Status     string             `json:"status"`
			ServerTime int64              `json:"serverTime"`
			TickRate   int                `json:"tickRate"`
			Hub        server.Diagnostics `json:"hub"`
			Telemetry  map[string]uint64  `json:"telemetry"`
		}{
			Status:     "ok",
			ServerTime: time.Now().UnixMilli(),
			TickRate:   cfg.TickRate,
			Hub:        hub.Diagnostics(),
			Telemetry:  cfg.Metrics.Snapshot(),
		}
		writeJSON(w, nethttp.StatusOK, payload)
	})

	mux.HandleFunc("/items", getOnly(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		writeJSON(w, nethttp.StatusOK, map[string]any{"items": hub.Items()})
	}))

	mux.HandleFunc("/bundles", getOnly(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		writeJSON(w, nethttp.StatusOK, map[string]any{"bundles": hub.Bundles()})
	}))

	mux.HandleFunc("/reload", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodPost {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		report, err := hub.Reload(r.Context())
		if err != nil {
			logger.Printf("[reload] failed: %v", err)
			httpError(w, err.Error(), nethttp.StatusInternalServerError)
			return
		}
		writeJSON(w, nethttp.StatusOK, map[string]any{"status": "ok", "report": report})
	})

	mux.HandleFunc("/recipes", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		switch r.Method {
		case nethttp.MethodGet:
			writeJSON(w, nethttp.StatusOK, map[string]any{"recipes": hub.Recipes()})
		case nethttp.MethodPost:
			handleAuthor(r.Context(), w, r, hub)
		default:
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
		}
	})

	if cfg.Loop != nil {
		handler := ws.NewHandler(hub, cfg.Loop, ws.HandlerConfig{Logger: logger})
		mux.HandleFunc("/ws", handler.Handle)
	}

	return mux
}

func handleAuthor(ctx context.Context, w nethttp.ResponseWriter, r *nethttp.Request, hub *server.Hub) {
	var body authorRequest
	if r.Body != nil {
		defer r.Body.Close()
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && err != io.EOF {
			httpError(w, "invalid payload", nethttp.StatusBadRequest)
			return
		}
	}

	req := recipes.AuthorRequest{
		ID:              body.ID,
		Shaped:          body.Shaped,
		Output:          recipes.OutputKind(strings.ToLower(body.Output)),
		Amount:          body.Amount,
		Name:            body.Name,
		Lore:            body.Lore,
		CustomModelData: body.CustomModelData,
		Placeable:       body.Placeable,
	}
	if body.Author != "" {
		req.Actor = logging.PlayerRef(body.Author)
	}
	for i, spec := range body.Grid {
		if strings.TrimSpace(spec) == "" {
			continue
		}
		stack, err := hub.Stack(spec)
		if err != nil {
			writeJSON(w, nethttp.StatusBadRequest, authorResponse{Status: "rejected", Error: err.Error()})
			return
		}
		req.Grid[i] = stack
	}
	if body.Material != "" {
		m, ok := items.MatchMaterial(body.Material)
		if !ok {
			writeJSON(w, nethttp.StatusBadRequest, authorResponse{Status: "rejected", Error: "unknown material " + body.Material})
			return
		}
		req.Material = m
	}

	result := hub.Author(ctx, req)
	switch {
	case result.OK:
		writeJSON(w, nethttp.StatusCreated, authorResponse{Status: "ok", Key: result.Key.String(), Output: result.Output})
	case errors.Is(result.Err, recipes.ErrRejected):
		writeJSON(w, nethttp.StatusBadRequest, authorResponse{Status: "rejected", Error: result.Err.Error()})
	default:
		writeJSON(w, nethttp.StatusInternalServerError, authorResponse{Status: "failed", Error: result.Err.Error()})
	}
}

func getOnly(next nethttp.HandlerFunc) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodGet {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		next(w, r)
	}
}

func writeJSON(w nethttp.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		httpError(w, "failed to encode", nethttp.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(data)
}

func httpError(w nethttp.ResponseWriter, msg string, code int) {
	nethttp.Error(w, msg, code)
}
