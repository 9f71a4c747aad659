package handlers

import (
	"net/http"
	"strings"

	"coursegen-backend/internal/gateway"
	"coursegen-backend/internal/repository"
)

// ConnectionCounter reports open websocket sessions. Implemented by
// websocket.Hub.
type ConnectionCounter interface {
	Connections() int
}

type DashboardHandler struct {
	store      *repository.ContentStore
	gateway    *gateway.Gateway
	sockets    ConnectionCounter
	strategies []string
}

func NewDashboardHandler(store *repository.ContentStore, gw *gateway.Gateway, sockets ConnectionCounter, strategies []string) *DashboardHandler {
	return &DashboardHandler{store: store, gateway: gw, sockets: sockets, strategies: strategies}
}

func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"content":               h.store.Stats(r.Context()),
		"gateway":               h.gateway.Status(),
		"transcript_strategies": h.strategies,
	}
	if h.sockets != nil {
		resp["websocket_connections"] = h.sockets.Connections()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *DashboardHandler) GatewayStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.gateway.Status())
}

// UpdateGatewayConfig swaps provider settings at runtime. The API key is
// write-only: it is never echoed back.
func (h *DashboardHandler) UpdateGatewayConfig(w http.ResponseWriter, r *http.Request) {
	var req gateway.Config
	if !decodeBody(w, r, &req) {
		return
	}

	req.Provider = strings.ToLower(strings.TrimSpace(req.Provider))
	if req.Provider == "" {
		req.Provider = gateway.ProviderOpenAI
	}

	fields := map[string]string{}
	if req.Provider != gateway.ProviderOpenAI && req.Provider != gateway.ProviderGemini {
		fields["provider"] = "Provider must be openai or gemini"
	}
	if strings.TrimSpace(req.Model) == "" {
		fields["model"] = "A model name is required"
	}
	if len(fields) > 0 {
		validationError(w, r, fields)
		return
	}

	// An omitted key keeps the current one so the model can change alone.
	current := h.gateway.Config()
	if req.APIKey == "" {
		req.APIKey = current.APIKey
	}
	if req.BaseURL == "" && req.Provider == current.Provider {
		req.BaseURL = current.BaseURL
	}

	h.gateway.Configure(req)
	writeJSON(w, http.StatusOK, h.gateway.Status())
}
