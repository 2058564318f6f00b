// ABOUTME: Driver registry with ordered fallback
// ABOUTME: Initializes the preferred backend or the first one that works
package driver

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Factory creates a fresh, uninitialized driver
type Factory func() Driver

// Manager keeps registered drivers in registration order
type Manager struct {
	mu        sync.Mutex
	names     []string
	factories map[string]Factory
	logger    *slog.Logger
}

// NewManager creates an empty driver manager
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		factories: make(map[string]Factory),
		logger:    logger,
	}
}

// Register adds a driver factory under name
func (m *Manager) Register(name string, factory Factory) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if factory == nil {
		return fmt.Errorf("nil factory for driver %q", name)
	}
	if _, exists := m.factories[name]; exists {
		return fmt.Errorf("driver %q already registered", name)
	}
	m.names = append(m.names, name)
	m.factories[name] = factory
	return nil
}

// Names returns registered driver names in registration order
func (m *Manager) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, len(m.names))
	copy(names, m.names)
	return names
}

// New creates an uninitialized driver by name
func (m *Manager) New(name string) (Driver, error) {
	m.mu.Lock()
	factory, ok := m.factories[name]
	m.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w: unknown driver %q", ErrUnavailable, name)
	}
	return factory(), nil
}

// Init initializes the preferred driver, falling back to the other
// registered drivers in order. An empty preferred name means "first that
// works". The returned driver is initialized but not started.
func (m *Manager) Init(preferred string, cfg Config) (Driver, error) {
	order := m.order(preferred)
	if len(order) == 0 {
		return nil, fmt.Errorf("%w: no drivers registered", ErrUnavailable)
	}

	var errs []error
	for _, name := range order {
		d, err := m.New(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		if err := d.Init(cfg); err != nil {
			m.logger.Warn("audio driver failed to initialize", "driver", name, "error", err)
			d.Finish()
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}

		if preferred != "" && name != preferred {
			m.logger.Info("using fallback audio driver", "driver", name, "preferred", preferred)
		}
		return d, nil
	}

	return nil, fmt.Errorf("%w: all drivers failed: %w", ErrUnavailable, errors.Join(errs...))
}

func (m *Manager) order(preferred string) []string {
	names := m.Names()
	if preferred == "" {
		return names
	}

	found := false
	order := make([]string, 0, len(names))
	for _, name := range names {
		if name == preferred {
			found = true
			continue
		}
		order = append(order, name)
	}
	if !found {
		m.logger.Warn("requested audio driver not registered", "driver", preferred)
		return order
	}
	return append([]string{preferred}, order...)
}
