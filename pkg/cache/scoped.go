package cache

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation.
//
//	tenant := NewScopedKeyer(NewDefaultKeyer(), "tenant:brooklyn:")
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

func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

func (k *ScopedKeyer) DatasetKey(source string) string {
	return k.prefix + k.inner.DatasetKey(source)
}

func (k *ScopedKeyer) ArtifactKey(datasetHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(datasetHash, opts)
}

func (k *ScopedKeyer) AddressKey(source, terms string) string {
	return k.prefix + k.inner.AddressKey(source, terms)
}
