package xlread

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ukaji3/xlread-go/pkg/xlread/models"
)

// Completion is a single-shot signal carrying either a Result or a *Failure.
// It resolves exactly once.
type Completion struct {
	id   string
	once sync.Once
	done chan struct{}

	result *models.Result
	err    error
}

func newCompletion() *Completion {
	return &Completion{
		id:   uuid.NewString(),
		done: make(chan struct{}),
	}
}

// ID identifies the invocation in logs.
func (c *Completion) ID() string {
	return c.id
}

// Done is closed once the completion resolves.
func (c *Completion) Done() <-chan struct{} {
	return c.done
}

// Wait blocks until the completion resolves. Exactly one of the return values is non-nil;
// the error is always a *Failure.
func (c *Completion) Wait() (*models.Result, error) {
	<-c.done
	return c.result, c.err
}

// WaitContext is Wait bounded by ctx. When ctx ends first it returns ctx.Err()
// rather than a *Failure; the invocation is not stopped and still resolves on
// its own.
func (c *Completion) WaitContext(ctx context.Context) (*models.Result, error) {
	select {
	case <-c.done:
		return c.result, c.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// settle resolves the completion. It reports false when the completion was
// already resolved; later calls change nothing.
func (c *Completion) settle(result *models.Result, err error) bool {
	settled := false
	c.once.Do(func() {
		switch {
		case err != nil:
			c.err = newFailure(err)
		case result == nil:
			c.err = newFailure(errors.New("pipeline produced no result"))
		default:
			c.result = result
		}
		settled = true
		close(c.done)
	})
	return settled
}

// Submit starts converting payload on a new goroutine and returns its completion.
// Every stage error, and any panic, resolves the completion as a *Failure.
func (r *Reader) Submit(payload string) *Completion {
	c := newCompletion()
	log := r.log.With("invocation_id", c.id)

	go func() {
		start := time.Now()
		log.Debug("invocation started", "payload_bytes", len(payload))

		defer func() {
			if p := recover(); p != nil {
				log.Error("panic.recovered",
					"where", "xlread.submit",
					"panic", fmt.Sprint(p),
					"stack", string(debug.Stack()),
				)
				c.settle(nil, fmt.Errorf("internal error: %v", p))
			}
		}()

		result, err := r.Read(payload)
		if err != nil {
			log.Warn("invocation failed",
				"stage", stageOf(err),
				"error", err.Error(),
				"duration", time.Since(start),
			)
		} else {
			log.Info("invocation resolved",
				"sheets", len(result.SheetNames),
				"duration", time.Since(start),
			)
		}
		c.settle(result, err)
	}()

	return c
}

// Submit converts payload with opts on a new goroutine.
func Submit(payload string, opts Options) *Completion {
	return NewReader(opts).Submit(payload)
}

func stageOf(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
