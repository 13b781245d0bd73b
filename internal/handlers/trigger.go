package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	apperrors "keymap-engine/internal/common/errors"
	"keymap-engine/internal/keymaps"
	"keymap-engine/internal/trigger"
)

// Trigger editing handlers. Every operation runs the composition rules and
// re-validates the trigger before persisting, so responses always carry a
// repaired trigger.

type deviceRequest struct {
	Kind       string `json:"kind"`
	Descriptor string `json:"descriptor,omitempty"`
	Name       string `json:"name,omitempty"`
}

func deviceFromRequest(d *deviceRequest) (trigger.DeviceScope, error) {
	if d == nil {
		return trigger.AnyDevice(), nil
	}
	switch d.Kind {
	case "", "any":
		return trigger.AnyDevice(), nil
	case "internal":
		return trigger.InternalDevice(), nil
	case "external":
		if d.Descriptor == "" {
			return trigger.DeviceScope{}, apperrors.ValidationError("external device requires a descriptor")
		}
		return trigger.ExternalDevice(d.Descriptor, d.Name), nil
	default:
		return trigger.DeviceScope{}, apperrors.ValidationError("unknown device kind: " + d.Kind)
	}
}

type addKeyRequest struct {
	Kind string `json:"kind"`

	// key_code and raw_event keys
	KeyCode  int            `json:"key_code,omitempty"`
	ScanCode int            `json:"scan_code,omitempty"`
	Device   *deviceRequest `json:"device,omitempty"`

	// key_code keys only
	RequiresIME bool `json:"requires_ime,omitempty"`

	// raw_event keys only
	DeviceName    string `json:"device_name,omitempty"`
	DeviceBus     int    `json:"device_bus,omitempty"`
	DeviceVendor  int    `json:"device_vendor,omitempty"`
	DeviceProduct int    `json:"device_product,omitempty"`

	// assistant keys
	AssistantType string `json:"assistant_type,omitempty"`

	// fingerprint keys
	Gesture string `json:"gesture,omitempty"`

	// floating button keys
	ButtonUID   string `json:"button_uid,omitempty"`
	ButtonLabel string `json:"button_label,omitempty"`
	LayoutName  string `json:"layout_name,omitempty"`
}

// AddTriggerKey appends a key to a key map's trigger. The key variant is
// selected by the "kind" field of the request body.
func (h *Handlers) AddTriggerKey(w http.ResponseWriter, r *http.Request) {
	var req addKeyRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx := r.Context()
	uid := mux.Vars(r)["uid"]

	var km keymaps.KeyMap
	var err error
	switch req.Kind {
	case "key_code":
		var device trigger.DeviceScope
		device, err = deviceFromRequest(req.Device)
		if err == nil {
			km, err = h.service.AddKeyCodeKey(ctx, uid, req.KeyCode, req.ScanCode, device, req.RequiresIME)
		}
	case "raw_event":
		info := trigger.DeviceInfo{
			Name:    req.DeviceName,
			Bus:     req.DeviceBus,
			Vendor:  req.DeviceVendor,
			Product: req.DeviceProduct,
		}
		km, err = h.service.AddRawEventKey(ctx, uid, req.KeyCode, req.ScanCode, info)
	case "assistant":
		km, err = h.service.AddAssistantKey(ctx, uid, trigger.AssistantType(req.AssistantType))
	case "fingerprint":
		km, err = h.service.AddFingerprintKey(ctx, uid, trigger.FingerprintGesture(req.Gesture))
	case "floating_button":
		var button *trigger.FloatingButtonInfo
		if req.ButtonLabel != "" || req.LayoutName != "" {
			button = &trigger.FloatingButtonInfo{Label: req.ButtonLabel, LayoutName: req.LayoutName}
		}
		km, err = h.service.AddFloatingButtonKey(ctx, uid, req.ButtonUID, button)
	default:
		err = apperrors.ValidationError("unknown trigger key kind: " + req.Kind)
	}
	if err != nil {
		respondError(w, err)
		return
	}
	respondKeyMap(w, http.StatusOK, km)
}

// RemoveTriggerKey removes one key from the trigger by its UID.
func (h *Handlers) RemoveTriggerKey(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	km, err := h.service.RemoveKey(r.Context(), vars["uid"], vars["keyUID"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondKeyMap(w, http.StatusOK, km)
}

// MoveTriggerKey reorders the trigger's key list.
func (h *Handlers) MoveTriggerKey(w http.ResponseWriter, r *http.Request) {
	var req struct {
		From int `json:"from"`
		To   int `json:"to"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	km, err := h.service.MoveKey(r.Context(), mux.Vars(r)["uid"], req.From, req.To)
	if err != nil {
		respondError(w, err)
		return
	}
	respondKeyMap(w, http.StatusOK, km)
}

// SetTriggerMode switches the trigger between parallel, sequence, and
// undefined firing modes.
func (h *Handlers) SetTriggerMode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mode string `json:"mode"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	km, err := h.service.SetMode(r.Context(), mux.Vars(r)["uid"], req.Mode)
	if err != nil {
		respondError(w, err)
		return
	}
	respondKeyMap(w, http.StatusOK, km)
}

// SetTriggerClickType applies one click type to every key in the trigger.
func (h *Handlers) SetTriggerClickType(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ClickType string `json:"click_type"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	km, err := h.service.SetClickType(r.Context(), mux.Vars(r)["uid"], req.ClickType)
	if err != nil {
		respondError(w, err)
		return
	}
	respondKeyMap(w, http.StatusOK, km)
}

// SetKeyClickType changes the click type of one key.
func (h *Handlers) SetKeyClickType(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ClickType string `json:"click_type"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	vars := mux.Vars(r)
	km, err := h.service.SetKeyClickType(r.Context(), vars["uid"], vars["keyUID"],
		trigger.ParseClickType(req.ClickType))
	if err != nil {
		respondError(w, err)
		return
	}
	respondKeyMap(w, http.StatusOK, km)
}

// SetKeyDevice changes the device scope of a key code key.
func (h *Handlers) SetKeyDevice(w http.ResponseWriter, r *http.Request) {
	var req deviceRequest
	if !decodeBody(w, r, &req) {
		return
	}

	device, err := deviceFromRequest(&req)
	if err != nil {
		respondError(w, err)
		return
	}

	vars := mux.Vars(r)
	km, err := h.service.SetKeyDevice(r.Context(), vars["uid"], vars["keyUID"], device)
	if err != nil {
		respondError(w, err)
		return
	}
	respondKeyMap(w, http.StatusOK, km)
}

// SetKeyConsumeEvent toggles whether a key's events are swallowed after
// detection.
func (h *Handlers) SetKeyConsumeEvent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Consume bool `json:"consume"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	vars := mux.Vars(r)
	km, err := h.service.SetKeyConsumeEvent(r.Context(), vars["uid"], vars["keyUID"], req.Consume)
	if err != nil {
		respondError(w, err)
		return
	}
	respondKeyMap(w, http.StatusOK, km)
}

// SetAssistantType changes which assistant an assistant key listens for.
func (h *Handlers) SetAssistantType(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AssistantType string `json:"assistant_type"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	vars := mux.Vars(r)
	km, err := h.service.SetAssistantType(r.Context(), vars["uid"], vars["keyUID"],
		trigger.AssistantType(req.AssistantType))
	if err != nil {
		respondError(w, err)
		return
	}
	respondKeyMap(w, http.StatusOK, km)
}

// SetFingerprintGesture changes the gesture of a fingerprint key.
func (h *Handlers) SetFingerprintGesture(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Gesture string `json:"gesture"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	vars := mux.Vars(r)
	km, err := h.service.SetFingerprintGesture(r.Context(), vars["uid"], vars["keyUID"],
		trigger.FingerprintGesture(req.Gesture))
	if err != nil {
		respondError(w, err)
		return
	}
	respondKeyMap(w, http.StatusOK, km)
}

// SetScanCodeDetection toggles scan code matching on a key code key.
func (h *Handlers) SetScanCodeDetection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	vars := mux.Vars(r)
	km, err := h.service.SetScanCodeDetection(r.Context(), vars["uid"], vars["keyUID"], req.Enabled)
	if err != nil {
		respondError(w, err)
		return
	}
	respondKeyMap(w, http.StatusOK, km)
}

type triggerOptionsRequest struct {
	Vibrate                  *bool  `json:"vibrate,omitempty"`
	LongPressDoubleVibration *bool  `json:"long_press_double_vibration,omitempty"`
	ScreenOffTrigger         *bool  `json:"screen_off_trigger,omitempty"`
	FromOtherApps            *bool  `json:"from_other_apps,omitempty"`
	ShowToast                *bool  `json:"show_toast,omitempty"`
	LongPressDelayMs         *int64 `json:"long_press_delay_ms,omitempty"`
	DoublePressDelayMs       *int64 `json:"double_press_delay_ms,omitempty"`
	VibrateDurationMs        *int64 `json:"vibration_duration_ms,omitempty"`
	SequenceTimeoutMs        *int64 `json:"sequence_timeout_ms,omitempty"`
}

// SetTriggerOptions partially updates a trigger's behaviour options. Absent
// fields are left unchanged.
func (h *Handlers) SetTriggerOptions(w http.ResponseWriter, r *http.Request) {
	var req triggerOptionsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	opts := keymaps.TriggerOptions{
		Vibrate:                  req.Vibrate,
		LongPressDoubleVibration: req.LongPressDoubleVibration,
		ScreenOffTrigger:         req.ScreenOffTrigger,
		FromOtherApps:            req.FromOtherApps,
		ShowToast:                req.ShowToast,
		LongPressDelay:           durationPtr(req.LongPressDelayMs),
		DoublePressDelay:         durationPtr(req.DoublePressDelayMs),
		VibrateDuration:          durationPtr(req.VibrateDurationMs),
		SequenceTimeout:          durationPtr(req.SequenceTimeoutMs),
	}

	km, err := h.service.SetTriggerOptions(r.Context(), mux.Vars(r)["uid"], opts)
	if err != nil {
		respondError(w, err)
		return
	}
	respondKeyMap(w, http.StatusOK, km)
}

func durationPtr(ms *int64) *time.Duration {
	if ms == nil {
		return nil
	}
	d := time.Duration(*ms) * time.Millisecond
	return &d
}
