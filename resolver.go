package doorman

import (
	"context"
	"fmt"
)

// ObjectResolver produces the target domain object for a rule that needs
// attribute-sensitive evaluation.
type ObjectResolver interface {
	Resolve(ctx context.Context, ec *ExecContext, r *Rule) (any, error)
}

// NewResolver returns the built-in resolver, which dispatches on the
// rule's load strategy and falls back to the Finder with per-request
// memoization. The finder may be nil when no rule uses the default
// strategy.
func NewResolver(finder Finder) ObjectResolver {
	return &finderResolver{finder: finder, idParam: defaultLoadParam}
}

const defaultLoadParam = "id"

type finderResolver struct {
	finder  Finder
	idParam string
}

func (fr *finderResolver) Resolve(ctx context.Context, ec *ExecContext, r *Rule) (any, error) {
	switch r.loadStrategy {
	case LoadNamed:
		fn, ok := ec.Loader(r.loaderName)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrLoaderNotFound, r.loaderName)
		}
		return fn(ctx, ec)

	case LoadFunc:
		return r.loader(ctx, ec)

	default:
		return fr.find(ctx, ec, r)
	}
}

// find resolves through the Finder, memoizing the object on the execution
// context so repeated evaluations within one request load it at most once.
func (fr *finderResolver) find(ctx context.Context, ec *ExecContext, r *Rule) (any, error) {
	domainType := r.model
	if domainType == "" {
		domainType = singularize(r.effectiveContext())
	}

	if obj, ok := ec.Memoized(domainType); ok {
		return obj, nil
	}
	if fr.finder == nil {
		return nil, fmt.Errorf("%w: rule %s needs the default finder", ErrFinderRequired, r.id)
	}

	objectID := ec.Param(fr.idParam)
	obj, err := fr.finder.Find(ctx, domainType, objectID)
	if err != nil {
		return nil, fmt.Errorf("find %s %q: %w", domainType, objectID, err)
	}
	ec.Memoize(domainType, obj)
	return obj, nil
}
