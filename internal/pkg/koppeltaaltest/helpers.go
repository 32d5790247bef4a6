package koppeltaaltest

import (
	"koppeltaal-service/internal/app/models"
	"koppeltaal-service/internal/pkg/constvars"
)

// HeaderStatus is the processing status of the latest version of a header.
func (s *Server) HeaderStatus(id string) models.ProcessingStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.current(key(constvars.ResourceMessageHeader, id))
	if !ok {
		return ""
	}
	return s.statusOf(res)
}

// Versions counts the stored versions of a resource.
func (s *Server) Versions(resourceType, id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history[key(resourceType, id)])
}

// Touch stores an unchanged new version of a resource, which makes every
// client holding the previous version stale.
func (s *Server) Touch(resourceType, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(resourceType, id)
	cur, ok := s.current(k)
	if !ok {
		return false
	}
	s.store(k, cur)
	return true
}

// SetHeaderStatus forces a header into a status without checking the state
// machine, e.g. to simulate another consumer winning a claim.
func (s *Server) SetHeaderStatus(id string, status models.ProcessingStatus) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(constvars.ResourceMessageHeader, id)
	cur, ok := s.current(k)
	if !ok {
		return false
	}
	next := clone(cur)
	s.setStatus(next, status, "")
	s.store(k, next)
	return true
}
