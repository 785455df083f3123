package tasks

import (
	"context"
	"time"

	"tradinganalysis/src/repository"

	logger "github.com/sirupsen/logrus"
)

// Fanout enumerates the active symbols each period and schedules one
// ingestion job per symbol, staggered to avoid a thundering herd against
// the exchange API.
type Fanout struct {
	symbols *repository.SymbolRepository
	queue   Queue
	stagger time.Duration
	ingest  func(ctx context.Context, symbolName string) error
}

func NewFanout(symbols *repository.SymbolRepository, queue Queue, ingest func(ctx context.Context, symbolName string) error) *Fanout {
	config := GetConfig()
	return &Fanout{
		symbols: symbols,
		queue:   queue,
		stagger: config.StaggerDelay,
		ingest:  ingest,
	}
}

// TriggerAllActiveSymbols submits one fetch job per active symbol. The
// i-th symbol's job is delayed by i*StaggerDelay. It does not wait for any
// job to complete and reports only the count triggered; a symbol's later
// failure never affects the other submissions.
func (f *Fanout) TriggerAllActiveSymbols(ctx context.Context) (int, error) {
	symbols, err := f.symbols.FindActive(ctx)
	if err != nil {
		return 0, err
	}

	triggered := 0
	for i, symbol := range symbols {
		name := symbol.Name
		job := Job{
			Name:  "fetch_candles:" + name,
			Delay: time.Duration(i) * f.stagger,
			Run: func(ctx context.Context) error {
				return f.ingest(ctx, name)
			},
		}

		if err := f.queue.Submit(ctx, job); err != nil {
			logger.WithError(err).WithField("symbol", name).Error("Failed to submit fetch job")
			continue
		}
		triggered++
	}

	logger.WithField("triggered", triggered).Info("Staggered fetching triggered for active symbols")

	return triggered, nil
}
