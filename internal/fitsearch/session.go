package fitsearch

import (
	"sync"
	"sync/atomic"
)

// Session is the state of one contact-editing session: the source photo, the
// photo currently embedded, the settings that produced it, and whether a
// search is running. Probes overwrite the current photo as they go.
type Session struct {
	mu       sync.Mutex
	source   []byte
	current  string
	settings Candidate

	searching atomic.Bool
}

// NewSession returns an empty session using DefaultCandidate settings.
func NewSession() *Session {
	return &Session{settings: DefaultCandidate}
}

// SetPhoto records the original image bytes, the data URL derived from them,
// and the settings used to derive it. source may be nil when only the data URL
// is known; probes then re-encode from the data URL itself.
func (s *Session) SetPhoto(source []byte, dataURL string, settings Candidate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.source = source
	s.current = dataURL
	s.settings = settings.Clamped()
}

// ClearPhoto drops the photo but keeps the settings.
func (s *Session) ClearPhoto() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.source = nil
	s.current = ""
}

// Reset returns the session to its initial state.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.source = nil
	s.current = ""
	s.settings = DefaultCandidate
}

// Photo returns the data URL currently embedded, or "".
func (s *Session) Photo() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// HasPhoto reports whether a photo is set.
func (s *Session) HasPhoto() bool {
	return s.Photo() != ""
}

// Settings returns the settings that produced the current photo.
func (s *Session) Settings() Candidate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// Searching reports whether a fit search is running.
func (s *Session) Searching() bool {
	return s.searching.Load()
}

func (s *Session) sourceBytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

func (s *Session) setCurrent(dataURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = dataURL
}

func (s *Session) setSettings(c Candidate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = c
}
