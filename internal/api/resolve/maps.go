package resolve

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// ErrNoAPIKey is returned by a session cell whose key environment variable
// is unset. Callers convert it into "no result"; it never reaches the UI.
var ErrNoAPIKey = errors.New("maps api key not configured")

// MapsSession is the process-wide handle to the mapping provider: the
// validated API key and a shared bounded-timeout client.
type MapsSession struct {
	APIKey string
	Client *http.Client
}

// SessionCell lazily initializes a MapsSession exactly once across
// concurrent callers: the first caller triggers the load and everyone
// awaits the same in-flight attempt. A failed load caches nothing, so a
// later call retries.
type SessionCell struct {
	loader func(ctx context.Context) (*MapsSession, error)

	mu      sync.RWMutex
	session *MapsSession
	group   singleflight.Group
}

// NewSessionCell builds a cell around a custom loader. Used in tests.
func NewSessionCell(loader func(ctx context.Context) (*MapsSession, error)) *SessionCell {
	return &SessionCell{loader: loader}
}

// NewEnvSessionCell builds the production cell: the key is read from the
// named environment variable on first use.
func NewEnvSessionCell(keyEnvVar string) *SessionCell {
	return NewSessionCell(func(ctx context.Context) (*MapsSession, error) {
		key := os.Getenv(keyEnvVar)
		if key == "" {
			return nil, ErrNoAPIKey
		}
		return &MapsSession{
			APIKey: key,
			Client: &http.Client{Timeout: 15 * time.Second},
		}, nil
	})
}

// Get returns the shared session, loading it on first call.
func (c *SessionCell) Get(ctx context.Context) (*MapsSession, error) {
	c.mu.RLock()
	s := c.session
	c.mu.RUnlock()
	if s != nil {
		return s, nil
	}

	v, err, _ := c.group.Do("session", func() (interface{}, error) {
		// Re-check: a previous flight may have populated the cell.
		c.mu.RLock()
		cached := c.session
		c.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}

		s, err := c.loader(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.session = s
		c.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*MapsSession), nil
}

// Reset clears the cached session so the next Get reloads. Used when the
// provider starts rejecting the key mid-run.
func (c *SessionCell) Reset() {
	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()
}
