package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Shimizu-Technology/paperhub-api/internal/logger"
	"github.com/Shimizu-Technology/paperhub-api/internal/models"
	"github.com/Shimizu-Technology/paperhub-api/internal/services/extraction"
	"github.com/Shimizu-Technology/paperhub-api/internal/store"
)

// stubExtractor returns a fixed result, optionally waiting on a gate.
type stubExtractor struct {
	paper *models.ParsedPaper
	err   error
	gate  chan struct{}
}

func (s *stubExtractor) Extract(ctx context.Context, data []byte, filename string) (*models.ParsedPaper, error) {
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.paper, s.err
}

// waitForStatus polls until the job reaches a terminal state.
func waitForStatus(t *testing.T, s store.JobStore, id string) *models.ExtractionJob {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		j, err := s.GetJob(context.Background(), id)
		if err == nil && j.Done() {
			return j
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s did not finish", id)
	return nil
}

func TestPoolCompletesJob(t *testing.T) {
	mem := store.NewMemory()
	paper := &models.ParsedPaper{CourseCode: "CS101", Questions: []models.Question{{QuestionNumber: "1", Text: "Q"}}}
	pool := NewPool(2, 4, mem, &stubExtractor{paper: paper}, logger.Nop())
	pool.Start()
	defer pool.Stop()

	j, err := pool.Enqueue(context.Background(), "alice", "cs101.pdf", []byte("%PDF-"), 3)
	if err != nil {
		t.Fatal(err)
	}
	if j.Status != models.JobPending || j.ID == "" {
		t.Errorf("queued job = %+v", j)
	}

	done := waitForStatus(t, mem, j.ID)
	if done.Status != models.JobCompleted || done.Result == nil || done.Result.CourseCode != "CS101" {
		t.Errorf("finished job = %+v", done)
	}
	if done.OwnerUID != "alice" || done.PageCount != 3 {
		t.Errorf("job metadata = %+v", done)
	}
}

func TestPoolRecordsFailureReason(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"blocked", &extraction.Failure{Kind: extraction.FailureBlocked, Reason: "SAFETY"}, "Generation failed: SAFETY"},
		{"invalid json", &extraction.Failure{Kind: extraction.FailureInvalidJSON, Reason: "invalid_json"}, "Invalid JSON returned from AI"},
		{"input error", extraction.ErrNotPDF, "File is not a PDF."},
		{"plain error", errors.New("boom"), "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := store.NewMemory()
			pool := NewPool(1, 1, mem, &stubExtractor{err: tt.err}, logger.Nop())
			pool.Start()
			defer pool.Stop()

			j, err := pool.Enqueue(context.Background(), "alice", "", []byte("%PDF-"), 0)
			if err != nil {
				t.Fatal(err)
			}
			done := waitForStatus(t, mem, j.ID)
			if done.Status != models.JobFailed || done.FailureReason != tt.want || done.Result != nil {
				t.Errorf("job = %s %q, want failed %q", done.Status, done.FailureReason, tt.want)
			}
		})
	}
}

func TestPoolQueueFull(t *testing.T) {
	mem := store.NewMemory()
	gate := make(chan struct{})
	pool := NewPool(1, 1, mem, &stubExtractor{gate: gate, paper: &models.ParsedPaper{}}, logger.Nop())
	// Not started: nothing drains the queue

	if _, err := pool.Enqueue(context.Background(), "alice", "", nil, 0); err != nil {
		t.Fatalf("first enqueue: %v", err)
	}
	if _, err := pool.Enqueue(context.Background(), "alice", "", nil, 0); !errors.Is(err, ErrQueueFull) {
		t.Errorf("second enqueue error = %v, want ErrQueueFull", err)
	}
	if pool.QueueSize() != 1 {
		t.Errorf("QueueSize() = %d", pool.QueueSize())
	}

	close(gate)
	pool.Start()
	pool.Stop()

	if _, err := pool.Enqueue(context.Background(), "alice", "", nil, 0); !errors.Is(err, ErrStopped) {
		t.Errorf("enqueue after stop error = %v", err)
	}
}

func TestPoolStopFailsQueuedJobs(t *testing.T) {
	mem := store.NewMemory()
	gate := make(chan struct{})
	pool := NewPool(1, 5, mem, &stubExtractor{gate: gate, paper: &models.ParsedPaper{}}, logger.Nop())
	pool.Start()

	var ids []string
	for i := 0; i < 3; i++ {
		j, err := pool.Enqueue(context.Background(), "alice", "", nil, 0)
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, j.ID)
	}

	// The in-flight extraction is cancelled, the rest are drained
	pool.Stop()

	for _, id := range ids {
		j, _ := mem.GetJob(context.Background(), id)
		if j.Status != models.JobFailed {
			t.Errorf("job %s status = %s after shutdown, want failed", id, j.Status)
		}
	}
}

// flakyJobs fails the first UpdateJob and delegates everything else.
type flakyJobs struct {
	store.JobStore
	mu     sync.Mutex
	failed bool
}

func (f *flakyJobs) UpdateJob(ctx context.Context, j *models.ExtractionJob) error {
	f.mu.Lock()
	first := !f.failed
	f.failed = true
	f.mu.Unlock()
	if first {
		return errors.New("connection reset")
	}
	return f.JobStore.UpdateJob(ctx, j)
}

func TestPoolFailsJobWhenStoreWriteFails(t *testing.T) {
	mem := store.NewMemory()
	jobs := &flakyJobs{JobStore: mem}
	pool := NewPool(1, 1, jobs, &stubExtractor{paper: &models.ParsedPaper{}}, logger.Nop())
	pool.Start()
	defer pool.Stop()

	j, err := pool.Enqueue(context.Background(), "alice", "", []byte("%PDF-"), 0)
	if err != nil {
		t.Fatal(err)
	}

	done := waitForStatus(t, mem, j.ID)
	if done.Status != models.JobFailed || done.FailureReason != "connection reset" {
		t.Errorf("job = %s %q, want failed %q", done.Status, done.FailureReason, "connection reset")
	}
}
