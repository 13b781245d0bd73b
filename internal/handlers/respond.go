package handlers

import (
	"encoding/json"
	"net/http"

	apperrors "keymap-engine/internal/common/errors"
	"keymap-engine/internal/common/logging"
	"keymap-engine/internal/keymaps"
	"keymap-engine/internal/trigger"
)

// keyMapResponse is the wire form of a key map. The trigger uses its
// persistence entity shape; actions and constraints use theirs.
type keyMapResponse struct {
	UID         string          `json:"uid"`
	Enabled     bool            `json:"enabled"`
	Trigger     trigger.Entity  `json:"trigger"`
	Actions     json.RawMessage `json:"actions"`
	Constraints json.RawMessage `json:"constraints,omitempty"`
}

func toResponse(km keymaps.KeyMap) (keyMapResponse, error) {
	actions, err := keymaps.EncodeActions(km.Actions)
	if err != nil {
		return keyMapResponse{}, err
	}
	constraints, err := keymaps.EncodeConstraints(km.Constraints)
	if err != nil {
		return keyMapResponse{}, err
	}
	return keyMapResponse{
		UID:         km.UID,
		Enabled:     km.Enabled,
		Trigger:     trigger.ToEntity(km.Trigger),
		Actions:     actions,
		Constraints: constraints,
	}, nil
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			logging.Error("Failed to encode response", err)
		}
	}
}

func respondKeyMap(w http.ResponseWriter, status int, km keymaps.KeyMap) {
	resp, err := toResponse(km)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, status, resp)
}

// respondError maps application error types onto HTTP status codes.
func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case apperrors.IsType(err, apperrors.ErrTypeNotFound):
		status = http.StatusNotFound
	case apperrors.IsType(err, apperrors.ErrTypeValidation),
		apperrors.IsType(err, apperrors.ErrTypeInvalidArgument):
		status = http.StatusBadRequest
	case apperrors.IsType(err, apperrors.ErrTypeAuth):
		status = http.StatusUnauthorized
	}

	if status == http.StatusInternalServerError {
		logging.Error("Request failed", err)
	}

	respondJSON(w, status, map[string]string{"error": err.Error()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, apperrors.ValidationError("invalid JSON body"))
		return false
	}
	return true
}
