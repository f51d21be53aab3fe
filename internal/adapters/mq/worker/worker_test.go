package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/workmap/internal/adapters/mq/queue"
	worker "github.com/okian/workmap/internal/adapters/mq/worker"
	model "github.com/okian/workmap/internal/domain/model"
	logging "github.com/okian/workmap/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type mockSink struct {
	mu      sync.Mutex
	applied []string
	failOn  string
}

func (s *mockSink) Apply(_ context.Context, b model.Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.SubmissionID == s.failOn {
		return errors.New("boom")
	}
	s.applied = append(s.applied, b.SubmissionID)
	return nil
}

func (s *mockSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.applied)
}

func (s *mockSink) ids() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.applied...)
}

func init() {
	_ = logging.Init()
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker on a queue", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue(queue.WithCapacity(10))
		sink := &mockSink{failOn: "bad"}
		w := worker.NewInMemoryWorker(q, sink, worker.WithName("test-worker"))
		go w.Run(ctx)

		convey.Convey("When batches are enqueued", func() {
			q.Enqueue(ctx, model.Batch{SubmissionID: "a", Week: "2025-W14"})
			q.Enqueue(ctx, model.Batch{SubmissionID: "bad", Week: "2025-W14"})
			q.Enqueue(ctx, model.Batch{SubmissionID: "b", Week: "2025-W15"})

			convey.Convey("Then good batches reach the sink and a failure does not stop the loop", func() {
				convey.So(waitFor(func() bool { return sink.count() == 2 }), convey.ShouldBeTrue)
				convey.So(sink.ids(), convey.ShouldResemble, []string{"a", "b"})
			})
		})

		convey.Convey("When the worker is shut down", func() {
			err := w.Shutdown(context.Background())

			convey.Convey("Then it stops", func() {
				convey.So(err, convey.ShouldBeNil)
				_, open := <-w.Done()
				convey.So(open, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When the context is cancelled", func() {
			cancel()

			convey.Convey("Then the worker stops", func() {
				select {
				case <-w.Done():
				case <-time.After(time.Second):
					t.Fatal("worker did not stop")
				}
			})
		})
	})
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a worker pool", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(100))
		sink := &mockSink{}

		convey.Convey("When created with a non-positive count", func() {
			p := worker.NewPool(0, q, sink)
			convey.So(p.Size(), convey.ShouldBeGreaterThan, 0)
		})

		convey.Convey("When batches are queued and the pool is shut down", func() {
			p := worker.NewPool(4, q, sink)
			for i := 0; i < 50; i++ {
				convey.So(q.Enqueue(ctx, model.Batch{SubmissionID: fmt.Sprintf("s%d", i), Week: "2025-W14"}), convey.ShouldBeTrue)
			}
			p.Start(ctx)
			err := p.Shutdown(ctx)

			convey.Convey("Then the queue is drained before the workers stop", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
				convey.So(sink.count(), convey.ShouldEqual, 50)
			})
		})
	})
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}
