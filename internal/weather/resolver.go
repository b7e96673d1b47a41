// Package weather resolves a location query to a normalized weekly weather
// summary, trying an ordered chain of sources until one succeeds.
package weather

import (
	"context"
	"errors"
	"log"
)

// Resolver tries each configured source in order and returns the first
// successful summary. ErrLocationNotFound is authoritative and stops the
// chain; other failures fall through to the next source.
type Resolver struct {
	sources []Source
}

func NewResolver(sources ...Source) *Resolver {
	return &Resolver{sources: sources}
}

func (r *Resolver) Resolve(ctx context.Context, q Query) (Summary, error) {
	lastErr := error(ErrProviderUnavailable)

	for _, src := range r.sources {
		summary, err := src.Resolve(ctx, q)
		if err == nil {
			return summary, nil
		}
		if errors.Is(err, ErrLocationNotFound) {
			return Summary{}, err
		}
		log.Printf("weather source %s failed: %v", src.Name(), err)
		lastErr = err
	}
	return Summary{}, lastErr
}
