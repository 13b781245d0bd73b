package app

import (
	"net/http"

	"github.com/gorilla/mux"

	"keymap-engine/internal/handlers"
	"keymap-engine/internal/middleware"
)

// SetupRoutes configures all HTTP routes for the application
func SetupRoutes(router *mux.Router, h *handlers.Handlers, authMiddleware func(http.Handler) http.Handler) {
	// Add logging middleware to all routes
	router.Use(middleware.LoggingMiddleware)

	// Health check (no auth required)
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")

	// Protected routes - require authentication
	protected := router.NewRoute().Subrouter()
	protected.Use(authMiddleware)

	api := protected.PathPrefix("/api").Subrouter()

	// Timing defaults currently in effect
	api.HandleFunc("/defaults", h.GetDefaults).Methods("GET")

	// Key map management endpoints
	api.HandleFunc("/keymaps", h.ListKeyMaps).Methods("GET")
	api.HandleFunc("/keymaps", h.CreateKeyMap).Methods("POST")
	api.HandleFunc("/keymaps/{uid}", h.GetKeyMap).Methods("GET")
	api.HandleFunc("/keymaps/{uid}", h.DeleteKeyMap).Methods("DELETE")
	api.HandleFunc("/keymaps/{uid}/enabled", h.SetEnabled).Methods("PUT")
	api.HandleFunc("/keymaps/{uid}/actions", h.SetActions).Methods("PUT")
	api.HandleFunc("/keymaps/{uid}/constraints", h.SetConstraints).Methods("PUT")

	// Trigger editing endpoints
	api.HandleFunc("/keymaps/{uid}/trigger/keys", h.AddTriggerKey).Methods("POST")
	api.HandleFunc("/keymaps/{uid}/trigger/keys/move", h.MoveTriggerKey).Methods("PUT")
	api.HandleFunc("/keymaps/{uid}/trigger/keys/{keyUID}", h.RemoveTriggerKey).Methods("DELETE")
	api.HandleFunc("/keymaps/{uid}/trigger/keys/{keyUID}/click-type", h.SetKeyClickType).Methods("PUT")
	api.HandleFunc("/keymaps/{uid}/trigger/keys/{keyUID}/device", h.SetKeyDevice).Methods("PUT")
	api.HandleFunc("/keymaps/{uid}/trigger/keys/{keyUID}/consume", h.SetKeyConsumeEvent).Methods("PUT")
	api.HandleFunc("/keymaps/{uid}/trigger/keys/{keyUID}/assistant-type", h.SetAssistantType).Methods("PUT")
	api.HandleFunc("/keymaps/{uid}/trigger/keys/{keyUID}/gesture", h.SetFingerprintGesture).Methods("PUT")
	api.HandleFunc("/keymaps/{uid}/trigger/keys/{keyUID}/scan-code", h.SetScanCodeDetection).Methods("PUT")
	api.HandleFunc("/keymaps/{uid}/trigger/mode", h.SetTriggerMode).Methods("PUT")
	api.HandleFunc("/keymaps/{uid}/trigger/click-type", h.SetTriggerClickType).Methods("PUT")
	api.HandleFunc("/keymaps/{uid}/trigger/options", h.SetTriggerOptions).Methods("PUT")

	// Detection endpoints
	api.HandleFunc("/keymaps/{uid}/fire", h.FireKeyMap).Methods("POST")
	api.HandleFunc("/detection/reset", h.ResetDetection).Methods("POST")
}
