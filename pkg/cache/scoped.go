package cache

// ScopedKeyer prefixes every key of an inner Keyer, giving each family its
// own namespace in a shared cache:
//
//	k := NewScopedKeyer(NewDefaultKeyer(), "family:12:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or a DefaultKeyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(graphHash, opts)
}

func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}

// GeocodeKey is not scoped: places resolve the same for every family.
func (k *ScopedKeyer) GeocodeKey(country, city string) string {
	return k.inner.GeocodeKey(country, city)
}
