package wiki

import (
	"context"
	"fmt"
	"strings"
)

// Scheme is the link scheme this store handles.
const Scheme = "wiki"

// FollowFunc handles activation of a link for one scheme.
type FollowFunc func(ctx context.Context, target string) error

// LinkRegistry maps link schemes to their follow handlers. It is a plain
// map; callers own registration order and lifetime.
type LinkRegistry map[string]FollowFunc

// Register installs a handler for scheme, replacing any previous one.
func (r LinkRegistry) Register(scheme string, fn FollowFunc) {
	r[scheme] = fn
}

// Follow dispatches a "scheme:target" link to its registered handler.
func (r LinkRegistry) Follow(ctx context.Context, link string) error {
	scheme, target, ok := strings.Cut(link, ":")
	if !ok {
		return fmt.Errorf("links: malformed link %q", link)
	}
	fn, ok := r[scheme]
	if !ok {
		return fmt.Errorf("links: no handler for scheme %q", scheme)
	}
	return fn(ctx, target)
}

// RegisterScheme installs this store's wiki-link handler: following
// [[wiki:target]] visits the target entry.
func (s *Store) RegisterScheme(r LinkRegistry) {
	r.Register(Scheme, s.Visit)
}
