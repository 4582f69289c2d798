package window

import "sync"

import "github.com/sirgallo/raftclient/pkg/raftproto"


//=========================================== Sliding Window


/*
	SendFunc:
		the orchestrator's re-(send) callback, invoked by the window outside
		its own critical section: a short protected region hands off a
		callback invoked after the lock is released, never awaited inside
		it.
*/

type SendFunc func(*PendingRequest)

/*
	SlidingWindow:
		per-target ordered tracker of outstanding requests. The smallest
		outstanding seq is always exactly the next seq eligible for
		delivery: a pending is only ever removed by ReceiveReply once all
		smaller seqs have already been delivered, so "first outstanding
		seq" and "next delivery seq" are the same value by construction --
		this window tracks a single field, nextSeq, for both roles.
*/

type SlidingWindow struct {
	key string

	mu sync.Mutex
	seqCounter uint64
	outstanding map[uint64]*PendingRequest
	readyReplies map[uint64]*raftproto.RaftClientReply
	nextSeq uint64
	anchored bool
}

func NewSlidingWindow(key string) *SlidingWindow {
	return &SlidingWindow{
		key: key,
		outstanding: make(map[uint64]*PendingRequest),
		readyReplies: make(map[uint64]*raftproto.RaftClientReply),
	}
}

func (w *SlidingWindow) Key() string { return w.key }

func (w *SlidingWindow) String() string { return w.key }

/*
	SubmitNewRequest:
		atomically assign the next seq, build the pending via constructor(seq),
		insert it, flag it if it is now the window's first, then invoke
		sendFn(pending) after the lock is released. Returns the pending so the
		caller can obtain its ReplyFuture.
*/

func (w *SlidingWindow) SubmitNewRequest(constructor func(seq uint64) *PendingRequest, sendFn SendFunc) *PendingRequest {
	w.mu.Lock()

	seq := w.seqCounter
	w.seqCounter++

	pending := constructor(seq)
	w.outstanding[seq] = pending

	becameFirst := !w.anchored || len(w.outstanding) == 1
	if !w.anchored {
		w.anchored = true
		w.nextSeq = seq
	}

	w.mu.Unlock()

	if becameFirst {
		pending.SetFirstRequest()
	}

	sendFn(pending)
	return pending
}

/*
	Retry:
		re-invoke sendFn(pending) without reassigning seq. if the pending is
		currently the window's first, ensure the flag is still set so the
		next build stamps isFirst.
*/

func (w *SlidingWindow) Retry(pending *PendingRequest, sendFn SendFunc) {
	w.mu.Lock()
	isFirst := w.anchored && pending.Seq() == w.nextSeq
	w.mu.Unlock()

	if isFirst {
		pending.SetFirstRequest()
	}

	sendFn(pending)
}

/*
	IsFirst:
		predicate used by the retry orchestrator before building the request
*/

func (w *SlidingWindow) IsFirst(seq uint64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.anchored && seq == w.nextSeq
}

/*
	ReceiveReply:
		record the reply for seq; surface replies to callers in seq order —
		any now-contiguous suffix starting at the window's delivery seq is
		completed and removed. If, after removal, the window still has
		outstanding entries and the first has shifted, the new first is
		flagged and sendFn is invoked on it so it is re-sent with
		isFirst = true.
*/

func (w *SlidingWindow) ReceiveReply(seq uint64, reply *raftproto.RaftClientReply, sendFn SendFunc) {
	w.mu.Lock()

	w.readyReplies[seq] = reply

	type delivery struct {
		pending *PendingRequest
		reply *raftproto.RaftClientReply
	}

	var toDeliver []delivery
	oldFirst := w.nextSeq

	for w.anchored {
		pending, ok := w.outstanding[w.nextSeq]
		if !ok {
			break
		}

		ready, hasReady := w.readyReplies[w.nextSeq]
		if !hasReady {
			break
		}

		delete(w.outstanding, w.nextSeq)
		delete(w.readyReplies, w.nextSeq)
		toDeliver = append(toDeliver, delivery{pending: pending, reply: ready})
		w.nextSeq++
	}

	var newFirst *PendingRequest
	shifted := w.nextSeq != oldFirst
	if shifted && len(w.outstanding) > 0 {
		newFirst = w.outstanding[w.nextSeq]
	}

	w.mu.Unlock()

	for _, d := range toDeliver {
		d.pending.SetReply(d.reply)
	}

	if newFirst != nil {
		newFirst.SetFirstRequest()
		sendFn(newFirst)
	}
}

/*
	Fail:
		mark the pending at seq as terminally failed and propagate the same
		failure to every other outstanding request in the window
		(fate-sharing); the window is left empty and un-anchored so the
		next submission re-anchors from scratch, but seqCounter keeps
		advancing (seqs are never reused).
*/

func (w *SlidingWindow) Fail(seq uint64, err error) {
	w.mu.Lock()

	toFail := make([]*PendingRequest, 0, len(w.outstanding))
	for _, pending := range w.outstanding {
		toFail = append(toFail, pending)
	}

	w.outstanding = make(map[uint64]*PendingRequest)
	w.readyReplies = make(map[uint64]*raftproto.RaftClientReply)
	w.anchored = false

	w.mu.Unlock()

	for _, pending := range toFail {
		pending.Fail(err)
	}
}

/*
	ResetFirstSeqNum:
		instruct the window that the current earliest outstanding seq must
		be re-stamped as isFirst on its next rebuild (used after a leader
		change so the new leader sees a fresh anchor). Idempotent: isFirst
		only ever transitions false->true, so calling this twice in a row
		has the same effect as calling it once.
*/

func (w *SlidingWindow) ResetFirstSeqNum() {
	w.mu.Lock()
	var current *PendingRequest
	if w.anchored {
		current = w.outstanding[w.nextSeq]
	}
	w.mu.Unlock()

	if current != nil {
		current.SetFirstRequest()
	}
}

/*
	Outstanding:
		read-only introspection for tests
*/

func (w *SlidingWindow) Outstanding() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return len(w.outstanding)
}
