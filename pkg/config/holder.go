package config

import "sync"

// Observer is notified after the configuration changes. It receives the
// previous and the new value; neither may be modified.
type Observer func(previous, current *Config)

// Holder owns the active configuration. Components keep a reference to the
// Holder rather than a copy of the Config, and subscribe to hear about
// reloads.
type Holder struct {
	mu        sync.RWMutex
	cfg       *Config
	observers []observer
	nextID    int

	// notifyMu keeps notifications from concurrent Updates in order.
	notifyMu sync.Mutex
}

type observer struct {
	id int
	fn Observer
}

// NewHolder creates a Holder with cfg, or defaults when cfg is nil.
func NewHolder(cfg *Config) *Holder {
	if cfg == nil {
		cfg = NewConfig()
	}
	return &Holder{cfg: cfg}
}

// Get returns the current configuration. Callers must treat it as read-only.
func (h *Holder) Get() *Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cfg
}

// Update replaces the configuration and notifies observers in the order
// they subscribed. A nil cfg is ignored.
func (h *Holder) Update(cfg *Config) {
	if cfg == nil {
		return
	}

	h.notifyMu.Lock()
	defer h.notifyMu.Unlock()

	h.mu.Lock()
	previous := h.cfg
	h.cfg = cfg
	observers := make([]observer, len(h.observers))
	copy(observers, h.observers)
	h.mu.Unlock()

	for _, o := range observers {
		o.fn(previous, cfg)
	}
}

// Subscribe registers fn and returns a function that removes it.
func (h *Holder) Subscribe(fn Observer) (unsubscribe func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	h.observers = append(h.observers, observer{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			for i, o := range h.observers {
				if o.id == id {
					h.observers = append(h.observers[:i], h.observers[i+1:]...)
					return
				}
			}
		})
	}
}
