// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package records

import (
	"fmt"
	"sort"
)

// Registry maps collection names to their services.
type Registry struct {
	services map[string]*Service
}

// NewRegistry creates a registry holding services.
func NewRegistry(services ...*Service) *Registry {
	r := &Registry{services: make(map[string]*Service, len(services))}
	for _, s := range services {
		r.Add(s)
	}
	return r
}

// Add registers s under its name, replacing any previous service.
func (r *Registry) Add(s *Service) {
	r.services[s.Name()] = s
}

// Get returns the service registered under name.
func (r *Registry) Get(name string) (*Service, error) {
	s, ok := r.services[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, name)
	}
	return s, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.services))
	for name := range r.services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Services returns the registered services sorted by name.
func (r *Registry) Services() []*Service {
	out := make([]*Service, 0, len(r.services))
	for _, name := range r.Names() {
		out = append(out, r.services[name])
	}
	return out
}

// Len reports the number of registered services.
func (r *Registry) Len() int {
	return len(r.services)
}
