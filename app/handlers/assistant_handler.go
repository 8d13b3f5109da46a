package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/tiendaluna/go-tienda/app/services"
	"github.com/unrolled/render"
)

type AssistantHandler struct {
	assistant services.AssistantClient
	render    *render.Render
}

func NewAssistantHandler(assistant services.AssistantClient, render *render.Render) *AssistantHandler {
	return &AssistantHandler{
		assistant: assistant,
		render:    render,
	}
}

type assistantRequest struct {
	Message string                `json:"message"`
	Context services.StoreContext `json:"context"`
}

// Ask relays a visitor question plus the page's store snapshot to the
// generation API. Errors come back structured, never as a partial answer.
func (h *AssistantHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req assistantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = h.render.JSON(w, http.StatusBadRequest, map[string]interface{}{"error": "Cuerpo de la solicitud no válido."})
		return
	}
	if req.Message == "" {
		_ = h.render.JSON(w, http.StatusBadRequest, map[string]interface{}{"error": "El mensaje no puede estar vacío."})
		return
	}

	reply, err := h.assistant.Ask(r.Context(), req.Message, req.Context)
	if err != nil {
		if errors.Is(err, services.ErrMissingAPIKey) {
			log.Printf("AssistantHandler.Ask: %v", err)
			_ = h.render.JSON(w, http.StatusInternalServerError, map[string]interface{}{"error": "API Key no configurada."})
			return
		}
		var upstreamErr *services.UpstreamError
		if errors.As(err, &upstreamErr) {
			log.Printf("AssistantHandler.Ask: upstream failure: %v", upstreamErr)
			_ = h.render.JSON(w, http.StatusBadGateway, map[string]interface{}{"error": "Error de conexión con la API."})
			return
		}
		log.Printf("AssistantHandler.Ask: unexpected error: %v", err)
		_ = h.render.JSON(w, http.StatusInternalServerError, map[string]interface{}{"error": "Error inesperado."})
		return
	}

	_ = h.render.JSON(w, http.StatusOK, map[string]interface{}{"response": reply})
}
