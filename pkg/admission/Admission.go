package admission

import "context"

import "github.com/sirgallo/raftclient/pkg/rafterrors"


//=========================================== Admission Gate


/*
	Gate:
		a counting semaphore bounding total outstanding requests across all
		sliding windows. Send acquires one permit before any other work
		and releases it when the request's replyFuture resolves, success
		or failure.
*/

type Gate struct {
	tokens chan struct{}
	capacity int
}

func NewGate(capacity int) *Gate {
	return &Gate{
		tokens: make(chan struct{}, capacity),
		capacity: capacity,
	}
}

/*
	Acquire:
		blocks the calling goroutine until a permit is available or ctx is
		done. a canceled context surfaces as InterruptedAdmission — the
		request is never registered on a window.
*/

func (g *Gate) Acquire(ctx context.Context) error {
	select {
	case g.tokens <- struct{}{}:
		return nil
	case <-ctx.Done():
		return &rafterrors.InterruptedAdmission{Cause: ctx.Err()}
	}
}

/*
	Release:
		idempotent-safe against a single over-release; the completion
		pipeline calls this exactly once per Send regardless of outcome
*/

func (g *Gate) Release() {
	select {
	case <-g.tokens:
	default:
	}
}

/*
	Outstanding / Capacity:
		read-only introspection used by tests to assert that the number of
		in-flight sends never exceeds maxOutstandingRequests
*/

func (g *Gate) Outstanding() int { return len(g.tokens) }

func (g *Gate) Capacity() int { return g.capacity }
