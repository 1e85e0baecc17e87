package logbuf

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pontohub/pontohub/internal/remote"
	"github.com/pontohub/pontohub/pkg/errors"
	"github.com/pontohub/pontohub/pkg/logger"
	"github.com/pontohub/pontohub/pkg/telemetry"
)

// LogSource fetches the remote log tail
type LogSource interface {
	TailLogs(ctx context.Context) ([]remote.RawLogEntry, error)
}

// Ingestor periodically pulls the remote log tail into the buffer.
// A failed fetch leaves the buffer untouched and is retried next tick.
type Ingestor struct {
	buffer   *Buffer
	source   LogSource
	interval time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	running bool
	mu      sync.Mutex

	// failing suppresses repeated warnings while the remote stays down
	failing bool

	log *zap.Logger
}

// NewIngestor creates an ingest poller feeding the given buffer
func NewIngestor(ctx context.Context, buffer *Buffer, source LogSource, interval time.Duration) *Ingestor {
	ingestCtx, cancel := context.WithCancel(ctx)
	return &Ingestor{
		buffer:   buffer,
		source:   source,
		interval: interval,
		ctx:      ingestCtx,
		cancel:   cancel,
		log:      logger.Named("logbuf"),
	}
}

// Start begins polling. Safe to call once; repeated calls are no-ops.
func (i *Ingestor) Start() {
	i.mu.Lock()
	if i.running {
		i.mu.Unlock()
		return
	}
	i.running = true
	i.mu.Unlock()

	i.log.Info("Starting log ingest poller", zap.Duration("interval", i.interval))

	i.wg.Add(1)
	go i.loop()
}

// Stop cancels the poll loop and waits for it to exit
func (i *Ingestor) Stop() {
	i.cancel()
	i.wg.Wait()
	i.log.Info("Log ingest poller stopped")
}

func (i *Ingestor) loop() {
	defer i.wg.Done()

	ticker := time.NewTicker(i.interval)
	defer ticker.Stop()

	// Prime the buffer immediately rather than waiting one interval
	i.pollOnce()

	for {
		select {
		case <-i.ctx.Done():
			return
		case <-ticker.C:
			i.pollOnce()
		}
	}
}

func (i *Ingestor) pollOnce() {
	start := time.Now()
	raw, err := i.source.TailLogs(i.ctx)
	telemetry.GetMetrics().RecordPoll("logs", err == nil, time.Since(start).Seconds())

	if err != nil {
		if i.ctx.Err() != nil {
			return
		}
		if errors.IsTransient(err) && i.failing {
			i.log.Debug("Log tail fetch still failing", zap.Error(err))
		} else {
			i.log.Warn("Log tail fetch failed", zap.Error(err))
		}
		i.failing = true
		return
	}
	i.failing = false

	accepted, rejected := i.buffer.Append(raw)
	telemetry.GetMetrics().RecordLogIngest(accepted, rejected, i.buffer.Len())

	if accepted > 0 {
		i.log.Debug("Ingested log entries",
			zap.Int("accepted", accepted),
			zap.Int("rejected", rejected),
			zap.Int("buffer_size", i.buffer.Len()),
		)
	}
}
