package cssgen

import (
	"localfonts/pkg/models"
)

// VariantSource supplies the variants that are wired to CSS selectors.
type VariantSource interface {
	ListAssignedVariants() ([]models.Variant, error)
}

// Cache is the single-slot store for the compiled stylesheet.
type Cache interface {
	Get() (string, bool, error)
	Put(css string) error
}

// Compiler serves the compiled stylesheet, rebuilding it from the
// variant source only when the cache slot is empty.
type Compiler struct {
	source   VariantSource
	cache    Cache
	renderer *Renderer
}

// NewCompiler creates a Compiler over a variant source and a cache.
func NewCompiler(source VariantSource, cache Cache, renderer *Renderer) *Compiler {
	if renderer == nil {
		renderer = &Renderer{}
	}
	return &Compiler{source: source, cache: cache, renderer: renderer}
}

// Compiled returns the current stylesheet. A cached value, including a
// cached empty stylesheet, is served as-is; on a cache miss the
// stylesheet is rebuilt and the cache refilled.
func (c *Compiler) Compiled() (string, error) {
	cached, ok, err := c.cache.Get()
	if err != nil {
		return "", err
	}
	if ok {
		return cached, nil
	}

	variants, err := c.source.ListAssignedVariants()
	if err != nil {
		return "", err
	}

	css := c.renderer.RenderAll(variants)
	if err := c.cache.Put(css); err != nil {
		return "", err
	}

	return css, nil
}
