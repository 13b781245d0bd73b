package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"keymap-engine/internal/common/logging"
)

// Built-in timing defaults, used when no defaults file is configured or a
// value is missing from the file.
const (
	DefaultLongPressDelay   = 500 * time.Millisecond
	DefaultDoublePressDelay = 300 * time.Millisecond
	DefaultSequenceTimeout  = 1000 * time.Millisecond
	DefaultVibrateDuration  = 200 * time.Millisecond
	DefaultRepeatRate       = 50 * time.Millisecond
	DefaultHoldDownDuration = 400 * time.Millisecond
)

// defaultsFile is the YAML shape of the timing defaults file. All durations
// are millisecond integers. Zero or missing values fall back to the built-in
// defaults.
type defaultsFile struct {
	LongPressDelayMs   int64 `yaml:"long_press_delay_ms"`
	DoublePressDelayMs int64 `yaml:"double_press_delay_ms"`
	SequenceTimeoutMs  int64 `yaml:"sequence_timeout_ms"`
	VibrateDurationMs  int64 `yaml:"vibrate_duration_ms"`
	RepeatRateMs       int64 `yaml:"repeat_rate_ms"`
	HoldDownDurationMs int64 `yaml:"hold_down_duration_ms"`
	ForceVibrate       bool  `yaml:"force_vibrate"`
}

// optionSnapshot is an immutable view of the resolved timing defaults.
// OptionDefaults swaps the whole snapshot on reload so readers never see a
// half-applied file.
type optionSnapshot struct {
	longPressDelay   time.Duration
	doublePressDelay time.Duration
	sequenceTimeout  time.Duration
	vibrateDuration  time.Duration
	repeatRate       time.Duration
	holdDownDuration time.Duration
	forceVibrate     bool
}

// OptionDefaults supplies the user-adjustable timing defaults used by trigger
// serialization and action execution. The values are optionally backed by a
// YAML file which can be watched for changes, so edits take effect without a
// restart.
type OptionDefaults struct {
	path   string
	logger logging.Logger

	mu       sync.RWMutex
	snapshot optionSnapshot

	watcher  *fsnotify.Watcher
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewOptionDefaults creates an OptionDefaults backed by the YAML file at
// path. An empty path yields the built-in defaults with no file involvement.
// A configured file that cannot be read is an error; a missing optional value
// inside the file is not.
func NewOptionDefaults(path string, logger logging.Logger) (*OptionDefaults, error) {
	d := &OptionDefaults{
		path:     path,
		logger:   logger,
		snapshot: builtinSnapshot(),
		done:     make(chan struct{}),
	}
	if path == "" {
		return d, nil
	}
	snap, err := loadDefaultsFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load defaults file: %w", err)
	}
	d.snapshot = snap
	return d, nil
}

// Watch starts a background watcher that reloads the defaults file whenever
// it changes. The directory is watched rather than the file itself so that
// atomic saves (rename-over) are picked up. Watch is a no-op when no file is
// configured.
func (d *OptionDefaults) Watch() error {
	if d.path == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create defaults watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(d.path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch defaults directory: %w", err)
	}
	d.watcher = watcher

	d.wg.Add(1)
	go d.watchLoop()
	return nil
}

// Close stops the watcher, if one was started. Safe to call multiple times.
func (d *OptionDefaults) Close() error {
	d.stopOnce.Do(func() { close(d.done) })
	if d.watcher == nil {
		return nil
	}
	err := d.watcher.Close()
	d.wg.Wait()
	return err
}

func (d *OptionDefaults) watchLoop() {
	defer d.wg.Done()

	for {
		select {
		case <-d.done:
			return

		case event, ok := <-d.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != filepath.Clean(d.path) {
				continue
			}
			d.reload()

		case err, ok := <-d.watcher.Errors:
			if !ok {
				return
			}
			d.logger.Warn("Defaults watcher error", logging.Err(err))
		}
	}
}

// reload re-reads the defaults file and swaps the snapshot. A file that fails
// to load leaves the previous snapshot in place.
func (d *OptionDefaults) reload() {
	snap, err := loadDefaultsFile(d.path)
	if err != nil {
		d.logger.Warn("Failed to reload defaults file, keeping previous values",
			logging.String("path", d.path),
			logging.Err(err))
		return
	}

	d.mu.Lock()
	d.snapshot = snap
	d.mu.Unlock()

	d.logger.Info("Reloaded timing defaults", logging.String("path", d.path))
}

func (d *OptionDefaults) current() optionSnapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snapshot
}

func (d *OptionDefaults) LongPressDelay() time.Duration   { return d.current().longPressDelay }
func (d *OptionDefaults) DoublePressDelay() time.Duration { return d.current().doublePressDelay }
func (d *OptionDefaults) SequenceTimeout() time.Duration  { return d.current().sequenceTimeout }
func (d *OptionDefaults) VibrateDuration() time.Duration  { return d.current().vibrateDuration }
func (d *OptionDefaults) RepeatRate() time.Duration       { return d.current().repeatRate }
func (d *OptionDefaults) HoldDownDuration() time.Duration { return d.current().holdDownDuration }
func (d *OptionDefaults) ForceVibrate() bool              { return d.current().forceVibrate }

func builtinSnapshot() optionSnapshot {
	return optionSnapshot{
		longPressDelay:   DefaultLongPressDelay,
		doublePressDelay: DefaultDoublePressDelay,
		sequenceTimeout:  DefaultSequenceTimeout,
		vibrateDuration:  DefaultVibrateDuration,
		repeatRate:       DefaultRepeatRate,
		holdDownDuration: DefaultHoldDownDuration,
	}
}

func loadDefaultsFile(path string) (optionSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return optionSnapshot{}, err
	}

	var file defaultsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return optionSnapshot{}, fmt.Errorf("invalid YAML: %w", err)
	}
	if err := validateDefaultsFile(&file); err != nil {
		return optionSnapshot{}, err
	}

	snap := builtinSnapshot()
	if file.LongPressDelayMs > 0 {
		snap.longPressDelay = time.Duration(file.LongPressDelayMs) * time.Millisecond
	}
	if file.DoublePressDelayMs > 0 {
		snap.doublePressDelay = time.Duration(file.DoublePressDelayMs) * time.Millisecond
	}
	if file.SequenceTimeoutMs > 0 {
		snap.sequenceTimeout = time.Duration(file.SequenceTimeoutMs) * time.Millisecond
	}
	if file.VibrateDurationMs > 0 {
		snap.vibrateDuration = time.Duration(file.VibrateDurationMs) * time.Millisecond
	}
	if file.RepeatRateMs > 0 {
		snap.repeatRate = time.Duration(file.RepeatRateMs) * time.Millisecond
	}
	if file.HoldDownDurationMs > 0 {
		snap.holdDownDuration = time.Duration(file.HoldDownDurationMs) * time.Millisecond
	}
	snap.forceVibrate = file.ForceVibrate
	return snap, nil
}

func validateDefaultsFile(file *defaultsFile) error {
	for name, v := range map[string]int64{
		"long_press_delay_ms":   file.LongPressDelayMs,
		"double_press_delay_ms": file.DoublePressDelayMs,
		"sequence_timeout_ms":   file.SequenceTimeoutMs,
		"vibrate_duration_ms":   file.VibrateDurationMs,
		"repeat_rate_ms":        file.RepeatRateMs,
		"hold_down_duration_ms": file.HoldDownDurationMs,
	} {
		if v < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	return nil
}
