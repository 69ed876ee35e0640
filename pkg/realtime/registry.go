package realtime

import "sync"

// Registry hands the live gateway to code on the HTTP request path. It is
// constructed in main and injected explicitly; before Set is called, Live
// returns nil and callers skip broadcasting. Delivery is best-effort either
// way, so an absent gateway is never an error.
type Registry struct {
	mu sync.RWMutex
	gw *Gateway
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Set installs the gateway. Called once at startup.
func (r *Registry) Set(gw *Gateway) {
	r.mu.Lock()
	r.gw = gw
	r.mu.Unlock()
}

// Live returns the installed gateway, or nil when none exists.
func (r *Registry) Live() *Gateway {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.gw
}
