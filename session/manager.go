package session

import (
	"crypto/rand"
	"math/big"
	"sort"
	"sync"
)

// Manager holds sessions by join code. Sessions are removed when their last
// player leaves.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	opts     Options
	records  sync.WaitGroup
}

// NewManager drops opts.Rand: one source cannot serve several session
// goroutines. Use opts.NewRand for a per-session source.
func NewManager(opts Options) *Manager {
	opts.Rand = nil
	return &Manager{
		sessions: make(map[string]*Session),
		opts:     opts,
	}
}

// Get returns the running session for code.
func (m *Manager) Get(code string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[code]
	return s, ok
}

func (m *Manager) removeSession(code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[code]; ok {
		s.Stop()
		delete(m.sessions, code)
	}
}

const codeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Create starts a session under a fresh 6-char code.
func (m *Manager) Create() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	for {
		code := generateCode(6)
		if _, exists := m.sessions[code]; exists {
			continue
		}
		s := New(m.opts)
		s.Code = code
		s.OnEmpty = m.removeSession
		s.records = &m.records
		m.sessions[code] = s
		go s.Run()
		return s
	}
}

// List returns every active session, ordered by code.
func (m *Manager) List() []Info {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Info, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s.Info())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Close stops every session and waits for pending result writes, so a
// store closed afterwards sees every finished hunt.
func (m *Manager) Close() {
	m.mu.Lock()
	stopped := make([]*Session, 0, len(m.sessions))
	for code, s := range m.sessions {
		s.Stop()
		stopped = append(stopped, s)
		delete(m.sessions, code)
	}
	m.mu.Unlock()

	for _, s := range stopped {
		<-s.Exited()
	}
	m.records.Wait()
}

func generateCode(n int) string {
	b := make([]byte, n)
	max := big.NewInt(int64(len(codeChars)))
	for i := range b {
		idx, _ := rand.Int(rand.Reader, max)
		b[i] = codeChars[idx.Int64()]
	}
	return string(b)
}
