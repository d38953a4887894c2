package cart

import "sync"

// Manager owns the single active cart and serializes access to it. The
// register works one sale at a time; HTTP handlers and the checkout flow all
// go through With.
type Manager struct {
	mu   sync.Mutex
	cart *Cart
}

func NewManager() *Manager {
	return &Manager{cart: New()}
}

// With runs fn against the active cart while holding the lock. fn must not
// retain the cart past its return.
func (m *Manager) With(fn func(*Cart) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(m.cart)
}
