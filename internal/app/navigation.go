package app

import "sync"

// BackRoute is what RouteRecorder reports after NavigateBack.
const BackRoute = "back"

// RouteRecorder is a Navigator that remembers the last exit route, for callers
// (like the HTTP API) that hand navigation to their own client.
type RouteRecorder struct {
	mu    sync.Mutex
	route string
}

func (r *RouteRecorder) NavigateTo(route string) {
	r.mu.Lock()
	r.route = route
	r.mu.Unlock()
}

func (r *RouteRecorder) NavigateBack() { r.NavigateTo(BackRoute) }

// Route returns the recorded route, empty when the wizard has not exited.
func (r *RouteRecorder) Route() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.route
}
