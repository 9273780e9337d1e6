package dispatch

import (
	"errors"
	"sort"
	"sync"

	"github.com/aarondl/ircstate/data"
)

var (
	// ErrAlreadyExist is returned from Add if the network already has a
	// dispatcher.
	ErrAlreadyExist = errors.New("dispatch: network already exists")
)

// Registry holds the dispatcher of every network a process tracks along with
// an optional snapshot store. It implements data.Locker.
type Registry struct {
	metrics *Metrics

	mut         sync.RWMutex
	dispatchers map[string]*Dispatcher
	store       *data.Store
}

var _ data.Locker = &Registry{}

// NewRegistry creates an empty registry. store and metrics may be nil.
func NewRegistry(store *data.Store, metrics *Metrics) *Registry {
	return &Registry{
		metrics:     metrics,
		store:       store,
		dispatchers: make(map[string]*Dispatcher),
	}
}

// Add registers a dispatcher under its network name.
func (r *Registry) Add(d *Dispatcher) error {
	r.mut.Lock()
	defer r.mut.Unlock()

	if _, ok := r.dispatchers[d.Network()]; ok {
		return ErrAlreadyExist
	}
	r.dispatchers[d.Network()] = d
	return nil
}

// Remove forgets a network, the last state is saved to the store first when
// there is one.
func (r *Registry) Remove(network string) (*Dispatcher, error) {
	r.mut.Lock()
	defer r.mut.Unlock()

	d, ok := r.dispatchers[network]
	if !ok {
		return nil, nil
	}
	delete(r.dispatchers, network)
	if r.metrics != nil {
		r.metrics.forget(network)
	}

	if r.store != nil {
		if err := r.store.Save(d.Snapshot()); err != nil {
			return d, err
		}
	}
	return d, nil
}

// Get returns the dispatcher of a network.
func (r *Registry) Get(network string) (*Dispatcher, bool) {
	r.mut.RLock()
	defer r.mut.RUnlock()

	d, ok := r.dispatchers[network]
	return d, ok
}

// Networks lists the registered networks in sorted order.
func (r *Registry) Networks() []string {
	r.mut.RLock()
	defer r.mut.RUnlock()

	networks := make([]string, 0, len(r.dispatchers))
	for n := range r.dispatchers {
		networks = append(networks, n)
	}
	sort.Strings(networks)
	return networks
}

// Save writes a snapshot of every network to the store.
func (r *Registry) Save() error {
	r.mut.RLock()
	defer r.mut.RUnlock()

	if r.store == nil {
		return nil
	}
	for _, d := range r.dispatchers {
		if err := r.store.Save(d.Snapshot()); err != nil {
			return err
		}
	}
	return nil
}

// UsingState calls fn with the state of a network under its lock.
func (r *Registry) UsingState(network string, fn func(*data.State)) bool {
	d, ok := r.Get(network)
	if !ok {
		return false
	}
	d.UsingState(fn)
	return true
}

// UsingStore calls fn with the store if there is one.
func (r *Registry) UsingStore(fn func(*data.Store)) bool {
	r.mut.RLock()
	store := r.store
	r.mut.RUnlock()

	if store == nil {
		return false
	}
	fn(store)
	return true
}
