package fulfillment

import "context"

// Handler fulfills one intent. It may block on any work it needs; the
// response is delivered only after it returns.
type Handler func(ctx context.Context, agent *Agent) error

// IntentMap maps intent display names to their handlers.
type IntentMap map[string]Handler

// Handle registers h for intent, replacing any previous handler. A nil map
// is allocated, so callers must keep the returned map.
func (m IntentMap) Handle(intent string, h Handler) IntentMap {
	if m == nil {
		m = IntentMap{}
	}
	m[intent] = h
	return m
}

// Lookup returns the handler for intent and true if one is registered.
func (m IntentMap) Lookup(intent string) (Handler, bool) {
	h, ok := m[intent]
	if !ok || h == nil {
		return nil, false
	}
	return h, true
}
