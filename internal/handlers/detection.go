package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Detection handlers

// FireKeyMap feeds one detected trigger into the execution controller. The
// action list runs asynchronously; the response only acknowledges the
// detection.
func (h *Handlers) FireKeyMap(w http.ResponseWriter, r *http.Request) {
	km, err := h.service.GetKeyMap(r.Context(), mux.Vars(r)["uid"])
	if err != nil {
		respondError(w, err)
		return
	}

	h.controller.OnDetected(km)
	w.WriteHeader(http.StatusAccepted)
}

// ResetDetection cancels all running repeat and perform jobs and releases
// any keys the controller is holding down.
func (h *Handlers) ResetDetection(w http.ResponseWriter, r *http.Request) {
	h.controller.Reset()
	w.WriteHeader(http.StatusNoContent)
}
