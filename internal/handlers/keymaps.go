package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"keymap-engine/internal/keymaps"
)

// Key map management handlers

// ListKeyMaps returns every stored key map.
func (h *Handlers) ListKeyMaps(w http.ResponseWriter, r *http.Request) {
	kms, err := h.service.ListKeyMaps(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	resp := make([]keyMapResponse, 0, len(kms))
	for _, km := range kms {
		item, err := toResponse(km)
		if err != nil {
			respondError(w, err)
			return
		}
		resp = append(resp, item)
	}
	respondJSON(w, http.StatusOK, resp)
}

// CreateKeyMap creates an enabled key map with an empty trigger and no
// actions.
func (h *Handlers) CreateKeyMap(w http.ResponseWriter, r *http.Request) {
	km, err := h.service.CreateKeyMap(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondKeyMap(w, http.StatusCreated, km)
}

// GetKeyMap returns one key map by UID.
func (h *Handlers) GetKeyMap(w http.ResponseWriter, r *http.Request) {
	km, err := h.service.GetKeyMap(r.Context(), mux.Vars(r)["uid"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondKeyMap(w, http.StatusOK, km)
}

// DeleteKeyMap removes a key map.
func (h *Handlers) DeleteKeyMap(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteKeyMap(r.Context(), mux.Vars(r)["uid"]); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetEnabled toggles whether a key map participates in detection.
func (h *Handlers) SetEnabled(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	km, err := h.service.SetEnabled(r.Context(), mux.Vars(r)["uid"], req.Enabled)
	if err != nil {
		respondError(w, err)
		return
	}
	respondKeyMap(w, http.StatusOK, km)
}

// SetActions replaces a key map's action list.
func (h *Handlers) SetActions(w http.ResponseWriter, r *http.Request) {
	var entities []keymaps.ActionEntity
	if !decodeBody(w, r, &entities) {
		return
	}

	km, err := h.service.SetActions(r.Context(), mux.Vars(r)["uid"], keymaps.ActionsFromEntities(entities))
	if err != nil {
		respondError(w, err)
		return
	}
	respondKeyMap(w, http.StatusOK, km)
}

// SetConstraints replaces a key map's constraint state.
func (h *Handlers) SetConstraints(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mode        string               `json:"mode,omitempty"`
		Constraints []keymaps.Constraint `json:"constraints,omitempty"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	state := keymaps.ConstraintState{
		Mode:        keymaps.ParseConstraintMode(req.Mode),
		Constraints: req.Constraints,
	}
	km, err := h.service.SetConstraints(r.Context(), mux.Vars(r)["uid"], state)
	if err != nil {
		respondError(w, err)
		return
	}
	respondKeyMap(w, http.StatusOK, km)
}
