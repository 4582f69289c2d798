package window

import "context"
import "sync"

import "github.com/sirgallo/raftclient/pkg/raftproto"


//=========================================== Reply Future


/*
	ReplyFuture:
		a write-once completion cell. TryComplete is the only way to
		resolve it, so every completion call site (SetReply, Fail) is
		idempotent without a defensive check. Continuations registered
		with OnComplete run without the caller blocking, mirroring Java's
		thenApply/exceptionally chaining without needing a promises library.
*/

type ReplyFuture struct {
	mu sync.Mutex
	done bool
	reply *raftproto.RaftClientReply
	err error
	callbacks []func(*raftproto.RaftClientReply, error)
}

func NewReplyFuture() *ReplyFuture {
	return &ReplyFuture{}
}

/*
	TryComplete:
		resolves the cell with (reply, err) if it is not already resolved.
		returns whether this call was the one that resolved it. registered
		callbacks run synchronously on the caller's goroutine, after the
		lock is released (never awaited inside the critical section)
*/

func (f *ReplyFuture) TryComplete(reply *raftproto.RaftClientReply, err error) bool {
	f.mu.Lock()

	if f.done {
		f.mu.Unlock()
		return false
	}

	f.done = true
	f.reply = reply
	f.err = err
	callbacks := f.callbacks
	f.callbacks = nil

	f.mu.Unlock()

	for _, cb := range callbacks {
		cb(reply, err)
	}

	return true
}

/*
	IsDone:
		used by the orchestrator's already-done guard: late transport
		replies for an already-resolved pending are dropped rather than
		re-delivered
*/

func (f *ReplyFuture) IsDone() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.done
}

/*
	OnComplete:
		register a continuation. if the cell is already resolved, the
		callback runs immediately on the calling goroutine
*/

func (f *ReplyFuture) OnComplete(cb func(*raftproto.RaftClientReply, error)) {
	f.mu.Lock()

	if f.done {
		reply, err := f.reply, f.err
		f.mu.Unlock()
		cb(reply, err)
		return
	}

	f.callbacks = append(f.callbacks, cb)
	f.mu.Unlock()
}

/*
	Wait:
		blocking accessor for the top-level caller returned from
		Client.Send; not used anywhere inside the orchestrator itself
*/

func (f *ReplyFuture) Wait(ctx context.Context) (*raftproto.RaftClientReply, error) {
	done := make(chan struct{})

	var reply *raftproto.RaftClientReply
	var err error

	f.OnComplete(func(r *raftproto.RaftClientReply, e error) {
		reply, err = r, e
		close(done)
	})

	select {
	case <-done:
		return reply, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
