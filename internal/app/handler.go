package app

import (
	"context"
	"fmt"

	"github.com/amba-hq/amba/internal/batch"
	"github.com/amba-hq/amba/internal/logger"
	"github.com/amba-hq/amba/internal/storage"
	"github.com/amba-hq/amba/pkg/domain"
	"github.com/amba-hq/amba/pkg/sinks"
)

// geneHandler saves resolved genes when asked to and forwards them to sinks.
type geneHandler struct {
	store  storage.Store
	fanout *sinks.Fanout
	save   bool
	log    logger.Logger
}

func (a *App) handler(save bool) *geneHandler {
	return &geneHandler{
		store:  a.store,
		fanout: a.fanout,
		save:   save,
		log:    a.log,
	}
}

func (h *geneHandler) HandleGene(ctx context.Context, q batch.Query, g domain.Gene) error {
	if h.save && h.store != nil {
		if err := h.store.SaveGene(g); err != nil {
			return fmt.Errorf("save gene %d: %w", g.ID(), err)
		}
	}

	if h.fanout.Size() == 0 {
		return nil
	}
	source := "acronym"
	if q.ByID() {
		source = "id"
	}
	delivered, err := h.fanout.Publish(ctx, sinks.NewEvent(q.String(), source, g))
	if err != nil {
		h.log.WarnObj("sink delivery failed", "sink_error", map[string]any{
			"gene_id":   g.ID(),
			"delivered": delivered,
			"error":     err.Error(),
		})
		return fmt.Errorf("publish gene %d: %w", g.ID(), err)
	}
	return nil
}
