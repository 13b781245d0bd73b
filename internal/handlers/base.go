// Package handlers implements the HTTP API for managing key maps and
// driving detection.
package handlers

import (
	"keymap-engine/internal/keymaps"
	"keymap-engine/internal/storage"
)

type Handlers struct {
	service    *keymaps.Service
	controller *keymaps.Controller
	storage    storage.Storage
	defaults   keymaps.Defaults
}

func New(service *keymaps.Service, controller *keymaps.Controller, store storage.Storage, defaults keymaps.Defaults) *Handlers {
	return &Handlers{
		service:    service,
		controller: controller,
		storage:    store,
		defaults:   defaults,
	}
}
