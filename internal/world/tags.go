package world

import (
	"fmt"

	"github.com/barrage/server/internal/component"
)

// MaxTags is the number of distinct tags a TagMask can carry.
const MaxTags = 32

// TagRegistry maps configured tag names onto TagMask bits in declaration order.
type TagRegistry struct {
	names []string
	bits  map[string]component.TagMask
}

func NewTagRegistry(names []string) (*TagRegistry, error) {
	if len(names) > MaxTags {
		return nil, fmt.Errorf("tag registry: %d tags exceeds limit of %d", len(names), MaxTags)
	}
	r := &TagRegistry{
		names: make([]string, 0, len(names)),
		bits:  make(map[string]component.TagMask, len(names)),
	}
	for i, n := range names {
		if n == "" {
			return nil, fmt.Errorf("tag registry: empty tag name at index %d", i)
		}
		if _, dup := r.bits[n]; dup {
			return nil, fmt.Errorf("tag registry: duplicate tag %q", n)
		}
		r.bits[n] = component.TagMask(1) << uint(i)
		r.names = append(r.names, n)
	}
	return r, nil
}

// Mask ORs together the bits of every named tag.
func (r *TagRegistry) Mask(names ...string) (component.TagMask, error) {
	var m component.TagMask
	for _, n := range names {
		bit, ok := r.bits[n]
		if !ok {
			return 0, fmt.Errorf("unknown tag %q", n)
		}
		m |= bit
	}
	return m, nil
}

// Names lists the tags set in m, in declaration order.
func (r *TagRegistry) Names(m component.TagMask) []string {
	var out []string
	for i, n := range r.names {
		if m&(component.TagMask(1)<<uint(i)) != 0 {
			out = append(out, n)
		}
	}
	return out
}

func (r *TagRegistry) Len() int { return len(r.names) }
