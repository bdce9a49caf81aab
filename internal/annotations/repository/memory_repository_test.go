package repository

import (
	"context"
	"testing"
	"time"

	"github.com/clipscribe/video-annotator/internal/annotations"
	"github.com/clipscribe/video-annotator/internal/models"
	"github.com/pkg/errors"
)

func newTestJob(id string) *models.Job {
	return &models.Job{
		JobID:       id,
		VideoPath:   "media/videos/" + id + ".mp4",
		FPS:         30,
		State:       models.JobStatePending,
		FramesTotal: 90,
		SubmittedAt: time.Now().UTC(),
	}
}

func TestMemoryStoreCreateAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewJobMemoryStore()

	if err := store.Create(ctx, newTestJob("job-1")); err != nil {
		t.Fatalf("create: %v", err)
	}
	job, err := store.Get(ctx, "job-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if job.State != models.JobStatePending {
		t.Fatalf("state = %s, want pending", job.State)
	}

	if _, err = store.Get(ctx, "missing"); !errors.Is(err, annotations.ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
}

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewJobMemoryStore()
	if err := store.Create(ctx, newTestJob("job-1")); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := store.MarkRunning(ctx, "job-1"); err != nil {
		t.Fatalf("mark running: %v", err)
	}
	if err := store.SetProgress(ctx, "job-1", 45, 90); err != nil {
		t.Fatalf("set progress: %v", err)
	}
	if err := store.MarkSucceeded(ctx, "job-1", 7); err != nil {
		t.Fatalf("mark succeeded: %v", err)
	}

	job, err := store.Get(ctx, "job-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if job.State != models.JobStateSucceeded || job.ResultID != 7 {
		t.Fatalf("unexpected terminal job: %+v", job)
	}
}

func TestMemoryStoreRejectsInvalidTransitions(t *testing.T) {
	ctx := context.Background()
	store := NewJobMemoryStore()
	if err := store.Create(ctx, newTestJob("job-1")); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Succeeded requires running first.
	if err := store.MarkSucceeded(ctx, "job-1", 1); !errors.Is(err, annotations.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	if err := store.MarkRunning(ctx, "job-1"); err != nil {
		t.Fatalf("mark running: %v", err)
	}
	if err := store.MarkRunning(ctx, "job-1"); !errors.Is(err, annotations.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on double start, got %v", err)
	}

	if err := store.MarkFailed(ctx, "job-1", "boom"); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	// Terminal states are final.
	if err := store.MarkSucceeded(ctx, "job-1", 1); err == nil {
		t.Fatal("expected error transitioning out of failed")
	}
	if err := store.MarkCancelled(ctx, "job-1"); !errors.Is(err, annotations.ErrTerminalState) {
		t.Fatalf("expected ErrTerminalState, got %v", err)
	}
}

func TestMemoryStoreQueueOrder(t *testing.T) {
	ctx := context.Background()
	store := NewJobMemoryStore()

	for _, id := range []string{"a", "b", "c"} {
		if err := store.Create(ctx, newTestJob(id)); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
		if err := store.Enqueue(ctx, id); err != nil {
			t.Fatalf("enqueue %s: %v", id, err)
		}
	}

	for _, want := range []string{"a", "b", "c"} {
		got, err := store.Dequeue(ctx)
		if err != nil {
			t.Fatalf("dequeue: %v", err)
		}
		if got != want {
			t.Fatalf("dequeued %s, want %s", got, want)
		}
	}

	cancelCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if _, err := store.Dequeue(cancelCtx); err == nil {
		t.Fatal("expected context error on empty queue")
	}
}

func TestMemoryStoreCancelFlag(t *testing.T) {
	ctx := context.Background()
	store := NewJobMemoryStore()
	if err := store.Create(ctx, newTestJob("job-1")); err != nil {
		t.Fatalf("create: %v", err)
	}

	requested, err := store.CancelRequested(ctx, "job-1")
	if err != nil {
		t.Fatalf("cancel requested: %v", err)
	}
	if requested {
		t.Fatal("cancel flag set on fresh job")
	}

	if err = store.RequestCancel(ctx, "job-1"); err != nil {
		t.Fatalf("request cancel: %v", err)
	}
	requested, err = store.CancelRequested(ctx, "job-1")
	if err != nil {
		t.Fatalf("cancel requested: %v", err)
	}
	if !requested {
		t.Fatal("cancel flag not visible after request")
	}

	if err = store.RequestCancel(ctx, "missing"); !errors.Is(err, annotations.ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
}

func TestMemoryStoreSnapshotIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewJobMemoryStore()
	if err := store.Create(ctx, newTestJob("job-1")); err != nil {
		t.Fatalf("create: %v", err)
	}

	snapshot, err := store.Get(ctx, "job-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	snapshot.State = models.JobStateFailed

	fresh, err := store.Get(ctx, "job-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fresh.State != models.JobStatePending {
		t.Fatal("mutating a snapshot leaked into the store")
	}
}
