package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation.
// This is useful when several deployments or environments share one Redis
// instance.
//
// Example usage:
//
//	staging := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// RecommendationKey generates a prefixed key for completion replies.
func (k *ScopedKeyer) RecommendationKey(model string, opts RecommendationKeyOpts) string {
	return k.prefix + k.inner.RecommendationKey(model, opts)
}

// ArtifactKey generates a prefixed key for rendered artifacts.
func (k *ScopedKeyer) ArtifactKey(catalogHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(catalogHash, opts)
}
