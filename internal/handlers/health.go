package handlers

import (
	"net/http"
)

// HealthCheck reports service and storage health.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.storage.Health(); err != nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetDefaults returns the timing defaults currently in effect. Durations
// are whole milliseconds.
func (h *Handlers) GetDefaults(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"long_press_delay_ms":   h.defaults.LongPressDelay().Milliseconds(),
		"double_press_delay_ms": h.defaults.DoublePressDelay().Milliseconds(),
		"sequence_timeout_ms":   h.defaults.SequenceTimeout().Milliseconds(),
		"vibrate_duration_ms":   h.defaults.VibrateDuration().Milliseconds(),
		"repeat_rate_ms":        h.defaults.RepeatRate().Milliseconds(),
		"hold_down_duration_ms": h.defaults.HoldDownDuration().Milliseconds(),
		"force_vibrate":         h.defaults.ForceVibrate(),
	})
}
