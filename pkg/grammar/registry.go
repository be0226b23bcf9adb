package grammar

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/fsnotify.v1"
	"gopkg.in/yaml.v3"
)

// Registry manages the grammar set: the builtins plus any YAML overlay
// files that retune disambiguator phrases, context windows, or
// classifier indicators without touching the builtin patterns.
// Grammars are immutable once published: overlays apply to a clone
// that replaces the map entry, so pointers handed out by Get stay safe
// for concurrent parses while a watcher reloads overlays.
type Registry struct {
	mu       sync.RWMutex
	grammars map[string]*Grammar
	dir      string
	watcher  *fsnotify.Watcher
	stopChan chan struct{}
	onChange func(event string, id string)
}

// NewRegistry creates a registry seeded with the builtin grammars.
func NewRegistry() *Registry {
	r := &Registry{grammars: make(map[string]*Grammar)}
	for _, g := range Builtin() {
		r.grammars[g.ID()] = g
	}
	return r
}

// NewRegistryWithDirectory creates a registry and applies overlays from dir.
func NewRegistryWithDirectory(dir string) (*Registry, error) {
	r := NewRegistry()
	if err := r.LoadDirectory(dir); err != nil {
		return nil, err
	}
	return r, nil
}

// Get returns the grammar for a family and sub-style.
func (r *Registry) Get(family Family, style SubStyle) (*Grammar, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.grammars[string(family)+"/"+string(style)]
	return g, ok
}

// List returns all registered grammars.
func (r *Registry) List() []*Grammar {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Grammar, 0, len(r.grammars))
	for _, g := range r.grammars {
		out = append(out, g)
	}
	return out
}

// Count returns the number of registered grammars.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.grammars)
}

// LoadDirectory applies all YAML overlay files from a directory. A
// missing directory is not an error; individual file failures are
// collected so one bad overlay does not block the rest.
func (r *Registry) LoadDirectory(dir string) error {
	r.dir = dir

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("checking directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var loadErrors []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		if err := r.LoadFile(filepath.Join(dir, name)); err != nil {
			loadErrors = append(loadErrors, fmt.Sprintf("%s: %v", name, err))
		}
	}

	if len(loadErrors) > 0 {
		return fmt.Errorf("errors loading overlays: %s", strings.Join(loadErrors, "; "))
	}
	return nil
}

// LoadFile applies a single overlay file to its target grammar.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	var overlay Overlay
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}
	if overlay.Family == "" {
		return fmt.Errorf("overlay is missing family")
	}
	if overlay.Style == "" {
		overlay.Style = StyleEnacted
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	id := string(overlay.Family) + "/" + string(overlay.Style)
	g, ok := r.grammars[id]
	if !ok {
		return fmt.Errorf("overlay targets unknown grammar %q", id)
	}
	updated := g.Clone()
	if err := overlay.Apply(updated); err != nil {
		return fmt.Errorf("applying overlay to %q: %w", id, err)
	}
	r.grammars[id] = updated
	return nil
}

// Reload resets to the builtin grammars and reapplies the overlay
// directory.
func (r *Registry) Reload() error {
	if r.dir == "" {
		return fmt.Errorf("no directory configured for reload")
	}

	r.mu.Lock()
	r.grammars = make(map[string]*Grammar)
	for _, g := range Builtin() {
		r.grammars[g.ID()] = g
	}
	r.mu.Unlock()

	return r.LoadDirectory(r.dir)
}

// SetOnChange sets a callback invoked after an overlay file event is
// processed. The id argument is empty for whole-directory reloads.
func (r *Registry) SetOnChange(fn func(event string, id string)) {
	r.onChange = fn
}

// Watch starts watching the overlay directory for changes.
func (r *Registry) Watch() error {
	if r.dir == "" {
		return fmt.Errorf("no directory configured for watching")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	r.watcher = watcher
	r.stopChan = make(chan struct{})

	go r.watchLoop()

	if err := watcher.Add(r.dir); err != nil {
		r.watcher.Close()
		return fmt.Errorf("watching directory %s: %w", r.dir, err)
	}
	return nil
}

// watchLoop handles file system events until StopWatch.
func (r *Registry) watchLoop() {
	for {
		select {
		case <-r.stopChan:
			return

		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(event.Name, ".yaml") && !strings.HasSuffix(event.Name, ".yml") {
				continue
			}
			switch {
			case event.Op&fsnotify.Create == fsnotify.Create:
				r.handleFileChange(event.Name, "create")
			case event.Op&fsnotify.Write == fsnotify.Write:
				r.handleFileChange(event.Name, "modify")
			case event.Op&fsnotify.Remove == fsnotify.Remove,
				event.Op&fsnotify.Rename == fsnotify.Rename:
				r.handleFileRemove()
			}

		case _, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func (r *Registry) handleFileChange(path string, eventType string) {
	if err := r.LoadFile(path); err != nil {
		return
	}
	if r.onChange != nil {
		base := filepath.Base(path)
		id := strings.TrimSuffix(strings.TrimSuffix(base, ".yaml"), ".yml")
		r.onChange(eventType, id)
	}
}

// handleFileRemove rebuilds the whole set; overlays do not record the
// values they replaced, so removal means starting over from the
// builtins.
func (r *Registry) handleFileRemove() {
	if err := r.Reload(); err != nil {
		return
	}
	if r.onChange != nil {
		r.onChange("remove", "")
	}
}

// StopWatch stops watching the overlay directory.
func (r *Registry) StopWatch() {
	if r.stopChan != nil {
		close(r.stopChan)
	}
	if r.watcher != nil {
		r.watcher.Close()
	}
}
