package batch

import (
	"context"
	"errors"
	"fmt"

	"github.com/amba-hq/amba/internal/config"
	"github.com/amba-hq/amba/internal/logger"
	"github.com/amba-hq/amba/pkg/domain"
	"golang.org/x/sync/errgroup"
)

// Resolver looks genes up. amba.GeneClient satisfies it.
type Resolver interface {
	GetGeneByID(ctx context.Context, id int) (domain.Gene, error)
	GetGeneByAcronym(ctx context.Context, acronym string) (domain.Gene, error)
}

// GeneHandler receives every gene the batch resolves (persist, publish, ...).
type GeneHandler interface {
	HandleGene(ctx context.Context, q Query, g domain.Gene) error
}

// Result is the outcome of one query.
type Result struct {
	Query Query
	Gene  domain.Gene
	Err   error
}

// Service resolves batches of queries against a Resolver.
type Service struct {
	resolver Resolver
	handler  GeneHandler
	settings config.Settings
	workers  int
	log      logger.Logger
}

// NewService wires a batch runner. A nil handler or logger is allowed.
func NewService(resolver Resolver, handler GeneHandler, settings config.Settings, workers int, log logger.Logger) *Service {
	if workers <= 0 {
		workers = 1
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Service{
		resolver: resolver,
		handler:  handler,
		settings: settings,
		workers:  workers,
		log:      log,
	}
}

// Run resolves every query. Results keep the order of queries; the returned
// error joins every per-query failure.
func (s *Service) Run(ctx context.Context, queries []Query) ([]Result, error) {
	if s == nil || s.resolver == nil {
		return nil, fmt.Errorf("batch service is not initialized")
	}

	results := make([]Result, len(queries))
	if s.settings.UseMultithreading && s.workers > 1 {
		var g errgroup.Group
		g.SetLimit(s.workers)
		for i, q := range queries {
			g.Go(func() error {
				results[i] = s.resolve(ctx, q)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, q := range queries {
			results[i] = s.resolve(ctx, q)
		}
	}

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}

	s.log.InfoObj("batch completed", "batch_result", map[string]any{
		"queries":    len(queries),
		"failed":     len(errs),
		"concurrent": s.settings.UseMultithreading && s.workers > 1,
	})
	return results, errors.Join(errs...)
}

func (s *Service) resolve(ctx context.Context, q Query) Result {
	var (
		gene domain.Gene
		err  error
	)
	if q.ByID() {
		gene, err = s.resolver.GetGeneByID(ctx, q.ID)
	} else {
		gene, err = s.resolver.GetGeneByAcronym(ctx, q.Acronym)
	}
	if err != nil {
		s.log.WarnObj("batch query failed", "batch_query_error", map[string]any{
			"line":  q.Line,
			"query": q.String(),
			"error": err.Error(),
		})
		return Result{Query: q, Err: fmt.Errorf("line %d (%s): %w", q.Line, q, err)}
	}

	if s.handler != nil {
		if err := s.handler.HandleGene(ctx, q, gene); err != nil {
			return Result{Query: q, Gene: gene, Err: fmt.Errorf("line %d (%s): handle gene: %w", q.Line, q, err)}
		}
	}
	return Result{Query: q, Gene: gene}
}
