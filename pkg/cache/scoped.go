package cache

// ScopedKeyer wraps a Keyer with a prefix. The command line scopes keys by
// table layout version so that a changed encoding never reads stale entries:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "v1:")
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

// AggregateKey generates a prefixed aggregate table key.
func (k *ScopedKeyer) AggregateKey(canvasHash string, opts AggregateKeyOpts) string {
	return k.prefix + k.inner.AggregateKey(canvasHash, opts)
}
