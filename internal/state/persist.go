package state

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/weatherdeck/weatherdeck/internal/metrics"
	"github.com/weatherdeck/weatherdeck/internal/storage"
)

type persistJob struct {
	slice string
	key   string
	data  []byte
}

// persister is the write-behind queue shared by all slices. Jobs carry a
// serialized snapshot of the then-current full collection, so whichever
// job lands last leaves storage reflecting the most recent state.
// Persistence is best effort: a write that fails after retries is logged
// and dropped, never surfaced to the mutator's caller.
type persister struct {
	kv     *storage.KV
	logger *slog.Logger
	jobs   chan persistJob
	done   chan struct{}
}

func newPersister(kv *storage.KV, logger *slog.Logger) *persister {
	p := &persister{
		kv:     kv,
		logger: logger,
		jobs:   make(chan persistJob, 256),
		done:   make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *persister) run() {
	defer close(p.done)
	for job := range p.jobs {
		op := func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return p.kv.Set(ctx, job.key, job.data)
		}

		bo := backoff.NewExponentialBackOff()
		bo.InitialInterval = 50 * time.Millisecond
		bo.MaxElapsedTime = 10 * time.Second
		if err := backoff.Retry(op, bo); err != nil {
			metrics.PersistWritesTotal.WithLabelValues(job.slice, "error").Inc()
			p.logger.Error("persist failed", "slice", job.slice, "key", job.key, "error", err)
			continue
		}
		metrics.PersistWritesTotal.WithLabelValues(job.slice, "ok").Inc()
	}
}

// submit serializes v and enqueues it. Called with the store mutex held,
// which keeps jobs ordered by mutation; the send never blocks, a full
// queue drops the job with a log line.
func (p *persister) submit(slice, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		p.logger.Error("persist encode failed", "slice", slice, "error", err)
		return
	}

	select {
	case p.jobs <- persistJob{slice: slice, key: key, data: data}:
	default:
		metrics.PersistWritesTotal.WithLabelValues(slice, "dropped").Inc()
		p.logger.Warn("persist queue full, dropping write", "slice", slice)
	}
}

// close stops accepting jobs and waits for the queue to drain.
func (p *persister) close() {
	close(p.jobs)
	<-p.done
}
