package app

import (
	"os"
	"path/filepath"
	"syscall"
	"time"
)

// HotReloader watches the running binary and invokes a callback once a newer
// build appears on disk. Development convenience only.
type HotReloader struct {
	execPath      string
	baseline      time.Time
	checkInterval time.Duration
	stopCh        chan struct{}
	onNewBinary   func()
}

// NewHotReloader watches the current executable. Returns nil when the
// executable path cannot be resolved.
func NewHotReloader(checkInterval time.Duration) *HotReloader {
	execPath, err := os.Executable()
	if err != nil {
		return nil
	}
	// go build writes a new file; follow the symlink to the real one.
	if realPath, err := filepath.EvalSymlinks(execPath); err == nil {
		execPath = realPath
	}
	info, err := os.Stat(execPath)
	if err != nil {
		return nil
	}
	return &HotReloader{
		execPath:      execPath,
		baseline:      info.ModTime(),
		checkInterval: checkInterval,
		stopCh:        make(chan struct{}),
	}
}

// OnNewBinary sets the callback fired when a newer binary is detected. It runs
// on a background goroutine.
func (h *HotReloader) OnNewBinary(callback func()) {
	h.onNewBinary = callback
}

// Start begins polling in a background goroutine.
func (h *HotReloader) Start() {
	h.stopCh = make(chan struct{})
	go h.watchLoop()
}

// Stop halts the watcher.
func (h *HotReloader) Stop() {
	close(h.stopCh)
}

func (h *HotReloader) watchLoop() {
	ticker := time.NewTicker(h.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.stopCh:
			return
		case <-ticker.C:
			if h.modified() && h.onNewBinary != nil {
				h.onNewBinary()
				// Fire once; the user either restarts or resets the baseline.
				return
			}
		}
	}
}

func (h *HotReloader) modified() bool {
	info, err := os.Stat(h.execPath)
	if err != nil {
		return false
	}
	return info.ModTime().After(h.baseline)
}

// ResetBaseline accepts the current binary as the new reference point. Called
// when the user declines a restart, so it resumes watching quietly.
func (h *HotReloader) ResetBaseline() {
	if info, err := os.Stat(h.execPath); err == nil {
		h.baseline = info.ModTime()
	}
	h.Start()
}

// Restart replaces the current process with a fresh instance of the binary,
// preserving arguments and environment. Does not return on success.
func (h *HotReloader) Restart() error {
	return syscall.Exec(h.execPath, os.Args, os.Environ())
}
