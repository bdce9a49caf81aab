package worker

import (
	"context"
	"sync"
	"time"

	"github.com/clipscribe/video-annotator/internal/annotations"
	"github.com/clipscribe/video-annotator/internal/config"
	"github.com/clipscribe/video-annotator/pkg/logger"
	"github.com/clipscribe/video-annotator/pkg/utils"
)

const cpuCheckInterval = 10 * time.Second

// Worker runs a bounded pool of goroutines, each claiming at most one job at
// a time from the queue. No two workers ever process the same job: a claim is
// a destructive dequeue.
type Worker struct {
	cfg          *config.Config
	jobs         annotations.JobStore
	orchestrator *Orchestrator
	logger       logger.Logger
	wg           sync.WaitGroup
	cancel       context.CancelFunc
}

func NewWorker(cfg *config.Config, jobs annotations.JobStore, orchestrator *Orchestrator, log logger.Logger) *Worker {
	return &Worker{
		cfg:          cfg,
		jobs:         jobs,
		orchestrator: orchestrator,
		logger:       log,
	}
}

func (w *Worker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	count := w.cfg.Worker.WorkerCount
	if count <= 0 {
		count = 1
	}
	w.logger.Infof("Starting %d annotation workers", count)
	for i := 0; i < count; i++ {
		w.wg.Add(1)
		go w.loop(ctx)
	}
}

func (w *Worker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}

func (w *Worker) loop(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		maxCPU := w.cfg.Worker.MaxCPUUsage
		if maxCPU <= 0 {
			maxCPU = 90
		}
		if canAcceptJob, usage := utils.CheckCPUUsage(maxCPU); !canAcceptJob {
			w.logger.Infof("CPU usage is high: %.2f%%, waiting", usage)
			select {
			case <-ctx.Done():
				return
			case <-time.After(cpuCheckInterval):
			}
			continue
		}

		jobID, err := w.jobs.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.Errorf("dequeue failed: %v", err)
			time.Sleep(time.Second)
			continue
		}
		w.orchestrator.Process(ctx, jobID)
	}
}
