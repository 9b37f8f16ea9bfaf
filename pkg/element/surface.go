package element

import "sync"

// MockSurface records surface calls for tests. Safe for concurrent use since
// the runtime notifies from its consumer goroutine while tests assert.
type MockSurface struct {
	mu       sync.Mutex
	added    []Descriptor
	notified []ID

	// AddErr, when set, is returned by the next AddElements call.
	AddErr error
}

func (s *MockSurface) AddElements(descs []Descriptor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.AddErr != nil {
		err := s.AddErr
		s.AddErr = nil
		return err
	}
	s.added = append(s.added, descs...)
	return nil
}

func (s *MockSurface) NotifyValueChange(ids []ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notified = append(s.notified, ids...)
}

// Added returns all announced descriptors.
func (s *MockSurface) Added() []Descriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Descriptor(nil), s.added...)
}

// Notified returns all notified element ids.
func (s *MockSurface) Notified() []ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ID(nil), s.notified...)
}

// Descriptor reports the announced descriptor for id.
func (s *MockSurface) Descriptor(id ID) (Descriptor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.added {
		if d.ID == id {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Compile-time interface satisfaction check.
var _ Surface = (*MockSurface)(nil)
