package window

import "context"
import "sync"
import "testing"

import "github.com/sirgallo/raftclient/pkg/raftproto"


func newTestPending(seq uint64) *PendingRequest {
	return NewPendingRequest(seq, func(entry raftproto.SlidingWindowEntry) *raftproto.RaftClientRequest {
		return &raftproto.RaftClientRequest{Entry: entry}
	})
}

func noopSend(*PendingRequest) {}

/*
	exactly one outstanding entry has isFirst set after a single
	submission, and the wire entry carries IsFirst = true for seq 0.
*/

func TestSubmitNewRequestFlagsFirst(t *testing.T) {
	w := NewSlidingWindow("t")

	var sent *PendingRequest
	pending := w.SubmitNewRequest(newTestPending, func(p *PendingRequest) { sent = p })

	if !pending.IsFirstFlag() {
		t.Fatalf("expected first submission to be flagged isFirst")
	}

	if sent != pending {
		t.Fatalf("expected sendFn to be invoked with the submitted pending")
	}

	built := pending.Build()
	if !built.Entry.IsFirst || built.Entry.Seq != 0 {
		t.Fatalf("expected wire entry seq=0,isFirst=true, got %+v", built.Entry)
	}
}

/*
	on reply with no exception, the window empties and the reply is
	delivered.
*/

func TestReceiveReplySingleWriteEmptiesWindow(t *testing.T) {
	w := NewSlidingWindow("t")
	pending := w.SubmitNewRequest(newTestPending, noopSend)

	reply := &raftproto.RaftClientReply{CallID: 1, Success: true}
	w.ReceiveReply(0, reply, noopSend)

	if !pending.Reply.IsDone() {
		t.Fatalf("expected replyFuture resolved")
	}

	got, err := pending.Reply.Wait(context.Background())
	_ = err
	if got != reply {
		t.Fatalf("expected the caller's own reply, got %+v", got)
	}

	if w.Outstanding() != 0 {
		t.Fatalf("expected window empty, got %d outstanding", w.Outstanding())
	}
}

/*
	seq 1 resolves before seq 0, but delivery to callers is still
	seq-ascending and nobody's reply gets swapped.
*/

func TestReceiveReplyReordersToSeqAscending(t *testing.T) {
	w := NewSlidingWindow("t")

	p0 := w.SubmitNewRequest(newTestPending, noopSend)
	p1 := w.SubmitNewRequest(newTestPending, noopSend)

	if !p0.IsFirstFlag() {
		t.Fatalf("expected seq 0 to be first")
	}
	if p1.IsFirstFlag() {
		t.Fatalf("expected seq 1 to not be first while seq 0 is outstanding")
	}

	reply1 := &raftproto.RaftClientReply{CallID: 1}
	w.ReceiveReply(1, reply1, noopSend)

	if p1.Reply.IsDone() {
		t.Fatalf("seq 1's reply must be held until seq 0 resolves")
	}
	if p0.Reply.IsDone() {
		t.Fatalf("seq 0 has not received a reply yet")
	}

	reply0 := &raftproto.RaftClientReply{CallID: 0}
	w.ReceiveReply(0, reply0, noopSend)

	got0, _ := p0.Reply.Wait(context.Background())
	got1, _ := p1.Reply.Wait(context.Background())

	if got0 != reply0 {
		t.Fatalf("seq 0 should have received its own reply, got %+v", got0)
	}
	if got1 != reply1 {
		t.Fatalf("seq 1 should have received its own reply, got %+v", got1)
	}

	if w.Outstanding() != 0 {
		t.Fatalf("expected window empty after both delivered")
	}
}

/*
	calling ResetFirstSeqNum twice in a row has the same effect as
	calling it once.
*/

func TestResetFirstSeqNumIdempotent(t *testing.T) {
	w := NewSlidingWindow("t")
	pending := w.SubmitNewRequest(newTestPending, noopSend)

	w.ResetFirstSeqNum()
	firstAfterOne := pending.IsFirstFlag()

	w.ResetFirstSeqNum()
	firstAfterTwo := pending.IsFirstFlag()

	if firstAfterOne != firstAfterTwo || !firstAfterTwo {
		t.Fatalf("expected ResetFirstSeqNum to be idempotent and leave isFirst true")
	}
}

/*
	after a reset, the outstanding first pending is re-flagged and, once
	retried, the new build still stamps isFirst = true.
*/

func TestResetFirstSeqNumReflagsOnRetry(t *testing.T) {
	w := NewSlidingWindow("t")
	p0 := w.SubmitNewRequest(newTestPending, noopSend)
	w.SubmitNewRequest(newTestPending, noopSend)

	w.ResetFirstSeqNum()

	retried := false
	w.Retry(p0, func(p *PendingRequest) { retried = true })

	if !retried {
		t.Fatalf("expected Retry to invoke sendFn")
	}

	built := p0.Build()
	if !built.Entry.IsFirst {
		t.Fatalf("expected seq 0 to rebuild with isFirst = true after reset")
	}
}

/*
	failing one seq fails every other outstanding request in the window
	with the same cause, and the window ends up empty.
*/

func TestFailFailsWholeWindow(t *testing.T) {
	w := NewSlidingWindow("t")
	p0 := w.SubmitNewRequest(newTestPending, noopSend)
	p1 := w.SubmitNewRequest(newTestPending, noopSend)

	cause := &groupMismatchStub{}
	w.Fail(0, cause)

	_, err0 := p0.Reply.Wait(context.Background())
	_, err1 := p1.Reply.Wait(context.Background())

	if err0 != cause || err1 != cause {
		t.Fatalf("expected both pendings to fail with the same cause")
	}

	if w.Outstanding() != 0 {
		t.Fatalf("expected window to be empty after Fail")
	}
}

type groupMismatchStub struct{}

func (*groupMismatchStub) Error() string { return "group mismatch" }

/*
	after Fail, the window re-anchors cleanly from the next seq (seqs are
	never reused, but a fresh submission becomes first again).
*/

func TestWindowReanchorsAfterFail(t *testing.T) {
	w := NewSlidingWindow("t")
	w.SubmitNewRequest(newTestPending, noopSend)
	w.SubmitNewRequest(newTestPending, noopSend)

	w.Fail(0, &groupMismatchStub{})

	next := w.SubmitNewRequest(newTestPending, noopSend)
	if next.Seq() != 2 {
		t.Fatalf("expected seq counter to keep advancing across a reset, got %d", next.Seq())
	}
	if !next.IsFirstFlag() {
		t.Fatalf("expected the next submission after Fail to become first again")
	}
}

/*
	a pending's replyFuture is completed exactly once, even under
	concurrent attempts to complete it.
*/

func TestReplyFutureCompletedExactlyOnce(t *testing.T) {
	f := NewReplyFuture()

	var wg sync.WaitGroup
	successes := make([]bool, 10)

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			successes[i] = f.TryComplete(nil, nil)
		}(i)
	}

	wg.Wait()

	count := 0
	for _, ok := range successes {
		if ok {
			count++
		}
	}

	if count != 1 {
		t.Fatalf("expected exactly one TryComplete to win, got %d", count)
	}
}

/*
	a write targeted at the RAFT window and a stale read targeted at
	server B get independent windows, and both assign seq 0 with
	isFirst = true.
*/

func TestRegistrySeparatesStaleReadWindow(t *testing.T) {
	r := NewRegistry("client-1")

	writeReq := &raftproto.RaftClientRequest{Type: raftproto.Write}
	staleReq := &raftproto.RaftClientRequest{Type: raftproto.StaleRead, ServerID: "server-B"}

	raftWindow := r.WindowFor(writeReq)
	staleWindow := r.WindowFor(staleReq)

	if raftWindow == staleWindow {
		t.Fatalf("expected stale read to be routed to a distinct window")
	}
	if raftWindow.Key() != "client-1->RAFT" {
		t.Fatalf("expected RAFT sentinel key, got %s", raftWindow.Key())
	}
	if staleWindow.Key() != "client-1->server-B" {
		t.Fatalf("expected server-targeted key, got %s", staleWindow.Key())
	}

	p0 := raftWindow.SubmitNewRequest(newTestPending, noopSend)
	p1 := staleWindow.SubmitNewRequest(newTestPending, noopSend)

	if p0.Seq() != 0 || p1.Seq() != 0 {
		t.Fatalf("expected both windows to independently start at seq 0")
	}
	if !p0.IsFirstFlag() || !p1.IsFirstFlag() {
		t.Fatalf("expected both first submissions to be flagged isFirst")
	}

	if same := r.WindowFor(writeReq); same != raftWindow {
		t.Fatalf("expected get-or-create to return the same RAFT window object")
	}
}

/*
	get-or-create is atomic with respect to concurrent callers -- the
	same key never yields two distinct window objects.
*/

func TestRegistryGetOrCreateIsAtomic(t *testing.T) {
	r := NewRegistry("client-1")

	var wg sync.WaitGroup
	windows := make([]*SlidingWindow, 50)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			windows[i] = r.windowForKey("shared")
		}(i)
	}

	wg.Wait()

	first := windows[0]
	for _, w := range windows {
		if w != first {
			t.Fatalf("expected every concurrent get-or-create to return the same window")
		}
	}
}
