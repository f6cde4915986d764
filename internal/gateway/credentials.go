package gateway

import "sync"

// Credentials holds the bearer token the client attaches to every request.
// A 401 from the server invalidates it; the owner acquires a new one.
type Credentials struct {
	mu        sync.RWMutex
	token     string
	listeners []func()
}

// NewCredentials returns credentials holding token; an empty token starts invalid
func NewCredentials(token string) *Credentials {
	return &Credentials{token: token}
}

// Acquire stores a new token
func (c *Credentials) Acquire(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the current token, empty when invalid
func (c *Credentials) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Credentials) Valid() bool {
	return c.Token() != ""
}

// Invalidate drops the token and notifies listeners if one was held
func (c *Credentials) Invalidate() {
	c.mu.Lock()
	had := c.token != ""
	c.token = ""
	listeners := append([]func(){}, c.listeners...)
	c.mu.Unlock()

	if !had {
		return
	}
	for _, fn := range listeners {
		fn()
	}
}

// OnInvalidate registers fn to run whenever a held token is dropped
func (c *Credentials) OnInvalidate(fn func()) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}
