package logroute

import "sync"

var (
	defaultMu     sync.Mutex
	defaultRouter *Router
)

// Configure constructs the process-wide default router on the first call and
// reconfigures it on later calls. Reconfiguration mutates the existing
// instance: facilities registered before remain registered after, so every
// caller in the process shares one registry.
func Configure(cfg *Config) (*Router, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultRouter == nil {
		r, err := New(cfg)
		if err != nil {
			return nil, err
		}

		defaultRouter = r

		return r, nil
	}

	err := defaultRouter.Reconfigure(cfg)
	if err != nil {
		return nil, err
	}

	return defaultRouter, nil
}

// Default returns the process-wide default router, constructing it with
// default configuration when no [Configure] call has happened yet.
func Default() *Router {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultRouter == nil {
		// NewConfig always validates, so the error is unreachable here.
		defaultRouter, _ = New(NewConfig())
	}

	return defaultRouter
}

// Reset discards the process-wide default router. Intended for tests and
// explicit teardown in composition roots.
func Reset() {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	defaultRouter = nil
}
