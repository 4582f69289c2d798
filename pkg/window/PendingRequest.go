package window

import "sync"

import "github.com/sirgallo/raftclient/pkg/raftproto"


//=========================================== Pending Request


/*
	RequestBuilder:
		a pure function from SlidingWindowEntry to a concrete request.
		captures type, message, call id, target, and tracing span at
		submission time so every rebuild only varies the SlidingWindowEntry.
*/

type RequestBuilder func(entry raftproto.SlidingWindowEntry) *raftproto.RaftClientRequest

/*
	PendingRequest:
		one in-flight logical call. seq is immutable once assigned by the
		owning SlidingWindow; isFirst is a single-writer flag that only ever
		transitions false->true (never cleared); attemptCount only increases
		and is never touched by a reset.
*/

type PendingRequest struct {
	seq uint64
	builder RequestBuilder

	mu sync.Mutex
	isFirst bool
	lastBuilt *raftproto.RaftClientRequest
	attemptCount int

	Reply *ReplyFuture
}

func NewPendingRequest(seq uint64, builder RequestBuilder) *PendingRequest {
	return &PendingRequest{
		seq: seq,
		builder: builder,
		Reply: NewReplyFuture(),
	}
}

func (p *PendingRequest) Seq() uint64 { return p.seq }

/*
	SetFirstRequest:
		idempotent flag set. safe to call any number of times; once true it
		stays true for the lifetime of this pending.
*/

func (p *PendingRequest) SetFirstRequest() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.isFirst = true
}

func (p *PendingRequest) IsFirstFlag() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.isFirst
}

/*
	Build:
		(re)builds the concrete request using the current isFirst flag and
		seq, and caches the result as lastBuilt for retry/logging
		bookkeeping. does not touch attemptCount -- that is the retry
		orchestrator's job, incremented only at transport submission.
*/

func (p *PendingRequest) Build() *raftproto.RaftClientRequest {
	p.mu.Lock()
	entry := raftproto.SlidingWindowEntry{Seq: p.seq, IsFirst: p.isFirst}
	p.mu.Unlock()

	built := p.builder(entry)

	p.mu.Lock()
	p.lastBuilt = built
	p.mu.Unlock()

	return built
}

func (p *PendingRequest) LastBuilt() *raftproto.RaftClientRequest {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.lastBuilt
}

/*
	IncrementAttempt:
		called by the retry orchestrator immediately before handing the
		built request to the transport, never when merely scheduling a
		retry
*/

func (p *PendingRequest) IncrementAttempt() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.attemptCount++
	return p.attemptCount
}

func (p *PendingRequest) AttemptCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.attemptCount
}

/*
	SetReply / Fail:
		resolve the replyFuture; both route through ReplyFuture.TryComplete,
		so a second call to either is a no-op
*/

func (p *PendingRequest) SetReply(reply *raftproto.RaftClientReply) bool {
	return p.Reply.TryComplete(reply, nil)
}

func (p *PendingRequest) Fail(err error) bool {
	return p.Reply.TryComplete(nil, err)
}

func (p *PendingRequest) HasReply() bool {
	return p.Reply.IsDone()
}
