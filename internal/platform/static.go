package platform

import "sync"

// staticResource is a Resource whose load outcome is fixed at registration.
type staticResource struct {
	loadErr error
}

func (r *staticResource) Load() error {
	return r.loadErr
}

// StaticResolver is a map-backed Resolver. Names registered with Register
// resolve and load successfully; names registered with RegisterBroken resolve
// but fail to load; everything else fails to resolve. Used by tests and by
// deployments that declare their resource set up front.
type StaticResolver struct {
	mu        sync.RWMutex
	resources map[string]*staticResource
}

// NewStaticResolver creates an empty StaticResolver.
func NewStaticResolver() *StaticResolver {
	return &StaticResolver{
		resources: make(map[string]*staticResource),
	}
}

// Register adds a resource that resolves and loads successfully.
func (s *StaticResolver) Register(names ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, name := range names {
		s.resources[name] = &staticResource{}
	}
}

// RegisterBroken adds a resource that resolves but fails to load with err.
func (s *StaticResolver) RegisterBroken(name string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resources[name] = &staticResource{loadErr: err}
}

// Remove deletes a resource so it no longer resolves.
func (s *StaticResolver) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.resources, name)
}

// Resolve implements Resolver.
func (s *StaticResolver) Resolve(name string) (Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res, ok := s.resources[name]
	if !ok {
		return nil, &ResourceError{Name: name}
	}
	return res, nil
}

var _ Resolver = (*StaticResolver)(nil)
