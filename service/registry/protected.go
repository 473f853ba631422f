package registry

import "sort"

// Protected represents the set of module names that must never be removed
// from the registry by an isolation session. It covers the builtin host
// modules and the runtime entry module – evicting any of them would leave
// the hosting runtime inoperable.
type Protected map[string]bool

// NewProtected returns a protected set holding the supplied names.
func NewProtected(names ...string) Protected {
	ret := make(Protected, len(names))
	for _, name := range names {
		ret[name] = true
	}
	return ret
}

// Has returns true when name is protected.
func (p Protected) Has(name string) bool {
	return p[name]
}

// Add registers additional protected names.
func (p Protected) Add(names ...string) {
	for _, name := range names {
		p[name] = true
	}
}

// Names returns the sorted protected names.
func (p Protected) Names() []string {
	ret := make([]string, 0, len(p))
	for name := range p {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return ret
}
