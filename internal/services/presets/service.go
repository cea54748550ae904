// Package presets provides the filter defaults file with file watching.
package presets

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/j-veylop/hospital-dashboard-tui/internal/logger"
	"github.com/j-veylop/hospital-dashboard-tui/internal/models"
)

const debounceInterval = 100 * time.Millisecond

// Event represents a presets service event.
type Event struct {
	Type    EventType
	Presets models.Presets
	Error   error
}

// EventType defines the type of presets event.
type EventType int

const (
	EventPresetsLoaded EventType = iota
	EventPresetsChanged
	EventError
)

// Service holds the current presets and reloads them when the file changes.
type Service struct {
	mu            sync.RWMutex
	presets       models.Presets
	filePath      string
	watcher       *fsnotify.Watcher
	eventChan     chan Event
	stopChan      chan struct{}
	closeOnce     sync.Once
	debounceTimer *time.Timer
}

// New loads the presets file, creating it with defaults if missing, and
// starts watching it.
func New(filePath string) (*Service, error) {
	if filePath == "" {
		return nil, fmt.Errorf("presets path is empty")
	}

	s := &Service{
		presets:   models.DefaultPresets(),
		filePath:  filePath,
		eventChan: make(chan Event, 16),
		stopChan:  make(chan struct{}),
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create presets directory: %w", err)
	}

	if err := s.load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load presets: %w", err)
		}
		if err := s.save(models.DefaultPresets()); err != nil {
			return nil, fmt.Errorf("failed to create presets file: %w", err)
		}
	}

	if err := s.startWatcher(); err != nil {
		return nil, fmt.Errorf("failed to start file watcher: %w", err)
	}

	s.sendEvent(Event{Type: EventPresetsLoaded, Presets: s.Get()})

	return s, nil
}

// Events returns the event channel for subscribing to presets changes.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// Get returns the current presets.
func (s *Service) Get() models.Presets {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.presets
}

// Path returns the presets file location.
func (s *Service) Path() string {
	return s.filePath
}

// Parse decodes a presets document and normalizes unknown values.
func Parse(data []byte) (models.Presets, error) {
	p := models.DefaultPresets()
	if err := json.Unmarshal(data, &p); err != nil {
		return models.Presets{}, fmt.Errorf("failed to parse presets file: %w", err)
	}
	return p.Normalize(), nil
}

func (s *Service) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	p, err := Parse(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.presets = p
	s.mu.Unlock()
	return nil
}

// save writes p atomically through a temp file.
func (s *Service) save(p models.Presets) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal presets: %w", err)
	}

	tmpFile := s.filePath + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpFile, s.filePath); err != nil {
		if removeErr := os.Remove(tmpFile); removeErr != nil {
			logger.Error("failed to remove temp file", "error", removeErr)
		}
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	s.mu.Lock()
	s.presets = p
	s.mu.Unlock()
	return nil
}

func (s *Service) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	s.watcher = watcher

	// Watch the directory so editors that replace the file are caught.
	if err := watcher.Add(filepath.Dir(s.filePath)); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return err
	}

	go s.watchLoop()
	return nil
}

func (s *Service) watchLoop() {
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}

			if filepath.Base(event.Name) != filepath.Base(s.filePath) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				s.mu.Lock()
				if s.debounceTimer != nil {
					s.debounceTimer.Stop()
				}
				s.debounceTimer = time.AfterFunc(debounceInterval, s.handleFileChange)
				s.mu.Unlock()
			}

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.sendEvent(Event{Type: EventError, Error: err})

		case <-s.stopChan:
			return
		}
	}
}

func (s *Service) handleFileChange() {
	select {
	case <-s.stopChan:
		return
	default:
	}

	before := s.Get()
	if err := s.load(); err != nil {
		if os.IsNotExist(err) {
			// Mid-replace; the Create that follows triggers another reload.
			return
		}
		logger.Warn("presets reload failed", "path", s.filePath, "error", err)
		s.sendEvent(Event{Type: EventError, Error: err})
		return
	}

	after := s.Get()
	if after == before {
		return
	}

	logger.Info("presets changed", "range_days", after.RangeDays, "status", after.Status, "granularity", after.Granularity)
	s.sendEvent(Event{Type: EventPresetsChanged, Presets: after})
}

// sendEvent sends an event to the event channel non-blocking.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		// Channel full, drop oldest event
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// Close stops the file watcher and cleans up resources.
func (s *Service) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.stopChan)

		s.mu.Lock()
		if s.debounceTimer != nil {
			s.debounceTimer.Stop()
		}
		s.mu.Unlock()

		if s.watcher != nil {
			err = s.watcher.Close()
		}
	})
	return err
}
