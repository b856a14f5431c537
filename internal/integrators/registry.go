package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/tissueheat/internal/heat"
)

// Registry builds schemes by name. All implicit schemes it hands out share one
// MatrixCache.
type Registry struct {
	schemes map[string]func() Scheme
	aliases map[string]string
	cache   *MatrixCache
}

func NewRegistry() *Registry {
	r := &Registry{
		schemes: make(map[string]func() Scheme),
		aliases: map[string]string{
			"euler":          SchemeExplicit,
			"backward-euler": SchemeImplicit,
			"crank-nicolson": SchemeCrank,
			"cn":             SchemeCrank,
		},
		cache: NewMatrixCache(),
	}

	r.schemes[SchemeExplicit] = func() Scheme { return NewExplicit() }
	r.schemes[SchemeImplicit] = func() Scheme { return NewImplicit(r.cache) }
	r.schemes[SchemeCrank] = func() Scheme { return NewCrankNicolson(r.cache) }

	return r
}

// Get returns the scheme registered under name or one of its aliases.
func (r *Registry) Get(name string) (Scheme, error) {
	name, err := r.Resolve(name)
	if err != nil {
		return nil, err
	}
	return r.schemes[name](), nil
}

// Resolve maps an alias to its canonical scheme name.
func (r *Registry) Resolve(name string) (string, error) {
	if canonical, ok := r.aliases[name]; ok {
		name = canonical
	}
	if _, ok := r.schemes[name]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownScheme, name)
	}
	return name, nil
}

// Names lists the canonical scheme names in report order.
func (r *Registry) Names() []string {
	order := map[string]int{SchemeExplicit: 0, SchemeImplicit: 1, SchemeCrank: 2}
	names := make([]string, 0, len(r.schemes))
	for name := range r.schemes {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return order[names[i]] < order[names[j]] })
	return names
}

// Cache exposes the shared matrix cache.
func (r *Registry) Cache() *MatrixCache {
	return r.cache
}

// Ratios returns the configured q tuple for a scheme.
func Ratios(c heat.PhysicalConstants, scheme string) ([]float64, error) {
	switch scheme {
	case SchemeExplicit:
		return c.ExplicitRatios, nil
	case SchemeImplicit:
		return c.ImplicitRatios, nil
	case SchemeCrank:
		return c.CrankRatios, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownScheme, scheme)
}
