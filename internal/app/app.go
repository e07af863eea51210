package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/amba-hq/amba/internal/batch"
	"github.com/amba-hq/amba/internal/config"
	"github.com/amba-hq/amba/internal/logger"
	"github.com/amba-hq/amba/internal/storage"
	"github.com/amba-hq/amba/pkg/amba"
	"github.com/amba-hq/amba/pkg/domain"
	"github.com/amba-hq/amba/pkg/httpclient"
	"github.com/amba-hq/amba/pkg/sinks"
	"github.com/prometheus/client_golang/prometheus"
)

// App wires the gene client with the local catalog, sinks and batch runner.
type App struct {
	cfg     *config.Config
	client  amba.GeneClient
	store   storage.Store
	fanout  *sinks.Fanout
	metrics *prometheus.Registry
	log     logger.Logger
}

// Option customizes App construction.
type Option func(*options)

type options struct {
	transport httpclient.Transport
}

// WithTransport replaces the resty transport at the bottom of the stack.
func WithTransport(t httpclient.Transport) Option {
	return func(o *options) { o.transport = t }
}

// New builds an App from config. Everything built before a failure is released.
func New(ctx context.Context, cfg *config.Config, log logger.Logger, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{cfg: cfg, log: log}

	transport, err := a.buildTransport(o.transport)
	if err != nil {
		return nil, err
	}

	client, err := amba.New(cfg.APIVersion, cfg.BaseURL, transport, amba.WithLogger(log))
	if err != nil {
		if c, ok := transport.(io.Closer); ok {
			_ = c.Close()
		}
		return nil, fmt.Errorf("init gene client: %w", err)
	}
	a.client = client
	log.InfoObj("gene client ready", "client_meta", map[string]any{
		"version":  client.Version(),
		"base_url": client.BaseURL(),
		"log_http": cfg.LogHTTP,
		"metrics":  cfg.MetricsEnabled,
	})

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("init storage: %w", err), a.Close())
	}
	a.store = store
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type": cfg.StorageType,
		"path": cfg.BBoltPath,
	})

	if cfg.SinksFile != "" {
		fanout, err := loadSinks(ctx, cfg.SinksFile, log)
		if err != nil {
			return nil, errors.Join(err, a.Close())
		}
		a.fanout = fanout
	}

	return a, nil
}

// buildTransport stacks resty, optional request logging and optional metrics.
func (a *App) buildTransport(base httpclient.Transport) (httpclient.Transport, error) {
	transport := base
	if transport == nil {
		transport = httpclient.NewRestyTransport(
			httpclient.WithTimeout(a.cfg.HTTPTimeout),
			httpclient.WithUserAgent(a.cfg.UserAgent),
			httpclient.WithLogger(a.log),
		)
	}
	if a.cfg.LogHTTP {
		transport = httpclient.NewLoggingTransport(transport, a.log)
	}
	if a.cfg.MetricsEnabled {
		a.metrics = prometheus.NewRegistry()
		inst, err := httpclient.NewInstrumentedTransport(transport, a.metrics)
		if err != nil {
			return nil, fmt.Errorf("instrument transport: %w", err)
		}
		transport = inst
	}
	return transport, nil
}

func loadSinks(ctx context.Context, path string, log logger.Logger) (*sinks.Fanout, error) {
	reg, err := sinks.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load sinks registry: %w", err)
	}
	enabled := reg.Enabled()
	built, err := sinks.BuildAll(ctx, sinks.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build sinks: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, c := range enabled {
		summaries = append(summaries, map[string]string{"id": c.ID, "type": c.Type})
	}
	log.InfoObj("sinks registry loaded", "sinks_meta", map[string]any{
		"count": len(summaries),
		"sinks": summaries,
	})
	return sinks.NewFanout(built), nil
}

// LookupByID resolves one gene by id. save records it in the local catalog.
func (a *App) LookupByID(ctx context.Context, id int, save bool) (domain.Gene, error) {
	if a == nil || a.client == nil {
		return domain.Gene{}, fmt.Errorf("app is not initialized")
	}
	gene, err := a.client.GetGeneByID(ctx, id)
	return a.finishLookup(ctx, batch.Query{ID: id}, gene, err, save)
}

// LookupByAcronym resolves one gene by acronym. save records it in the local catalog.
// The acronym goes to the client untouched so a blank one fails as a usage error.
func (a *App) LookupByAcronym(ctx context.Context, acronym string, save bool) (domain.Gene, error) {
	if a == nil || a.client == nil {
		return domain.Gene{}, fmt.Errorf("app is not initialized")
	}
	gene, err := a.client.GetGeneByAcronym(ctx, acronym)
	return a.finishLookup(ctx, batch.Query{Acronym: acronym}, gene, err, save)
}

func (a *App) finishLookup(ctx context.Context, q batch.Query, gene domain.Gene, err error, save bool) (domain.Gene, error) {
	if err != nil {
		return domain.Gene{}, err
	}
	if err := a.handler(save).HandleGene(ctx, q, gene); err != nil {
		return gene, err
	}
	return gene, nil
}

// RunBatch resolves every query in the file at path.
func (a *App) RunBatch(ctx context.Context, path string, save bool) ([]batch.Result, error) {
	if a == nil || a.client == nil {
		return nil, fmt.Errorf("app is not initialized")
	}
	queries, err := batch.LoadQueries(path, a.cfg.Settings)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	svc := batch.NewService(a.client, a.handler(save), a.cfg.Settings, a.cfg.BatchWorkers, a.log)
	results, err := svc.Run(ctx, queries)
	a.log.InfoObj("batch finished", "batch_meta", map[string]any{
		"file":       path,
		"queries":    len(queries),
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return results, err
}

// Ping checks that the service answers.
func (a *App) Ping(ctx context.Context) error {
	if a == nil || a.client == nil {
		return fmt.Errorf("app is not initialized")
	}
	return a.client.Ping(ctx)
}

// Saved lists the genes in the local catalog.
func (a *App) Saved() ([]domain.Gene, error) {
	if a == nil || a.store == nil {
		return nil, fmt.Errorf("app is not initialized")
	}
	return a.store.Genes()
}

// Close releases the client (and with it the transport), the sinks and the store.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	var errs []error
	if a.client != nil {
		if err := a.client.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close client: %w", err))
		}
	}
	if a.fanout != nil {
		if err := a.fanout.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close sinks: %w", err))
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close storage: %w", err))
		}
	}
	a.logMetrics()
	return errors.Join(errs...)
}

// logMetrics writes a one-shot summary of the transport counters.
func (a *App) logMetrics() {
	if a.metrics == nil {
		return
	}
	families, err := a.metrics.Gather()
	if err != nil {
		a.log.WarnObj("gather metrics failed", "error", err.Error())
		return
	}
	summary := make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				summary[mf.GetName()] += m.GetCounter().GetValue()
			case m.GetHistogram() != nil:
				summary[mf.GetName()+"_count"] += float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	a.log.InfoObj("transport metrics", "metrics", summary)
}
