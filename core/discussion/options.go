package discussion

type CoordinatorOption func(*Coordinator)

// WithDirectory sets where participant identities are looked up.
func WithDirectory(directory Directory) CoordinatorOption {
	return func(c *Coordinator) {
		c.directory = directory
	}
}

// WithCancelGate replaces DefaultGate. Coordinators that run concurrently in
// the same process need their own gates.
func WithCancelGate(gate *Gate) CoordinatorOption {
	return func(c *Coordinator) {
		if gate != nil {
			c.gate = gate
		}
	}
}

// WithEnrichment toggles the knowledge enrichment of nominated guests.
func WithEnrichment(enabled bool) CoordinatorOption {
	return func(c *Coordinator) {
		c.enrichment = enabled
	}
}

// WithFeedback toggles sending session feedback once a discussion is handed
// off.
func WithFeedback(enabled bool) CoordinatorOption {
	return func(c *Coordinator) {
		c.feedback = enabled
	}
}

// WithSettings sets the tuning used by every discussion of the coordinator.
func WithSettings(settings Settings) CoordinatorOption {
	return func(c *Coordinator) {
		c.settings = settings
	}
}

// WithEffectErrorCallback registers a callback for failed background effects
// such as enrichment or feedback.
//
// The callback runs on the goroutine of the effect.
func WithEffectErrorCallback(callback func(name string, err error)) CoordinatorOption {
	return func(c *Coordinator) {
		c.onEffectError = callback
	}
}
