package window

import "testing"

import "github.com/sirgallo/raftclient/pkg/raftproto"


/*
	after any number of rebuilds, the pending's seq on the wire is
	unchanged.
*/

func TestBuildPreservesSeqAcrossRebuilds(t *testing.T) {
	p := NewPendingRequest(7, func(entry raftproto.SlidingWindowEntry) *raftproto.RaftClientRequest {
		return &raftproto.RaftClientRequest{Entry: entry}
	})

	first := p.Build()
	p.SetFirstRequest()
	second := p.Build()

	if first.Entry.Seq != 7 || second.Entry.Seq != 7 {
		t.Fatalf("expected seq to stay 7 across rebuilds, got %d and %d", first.Entry.Seq, second.Entry.Seq)
	}
	if first.Entry.IsFirst {
		t.Fatalf("expected the first build (before SetFirstRequest) to not carry isFirst")
	}
	if !second.Entry.IsFirst {
		t.Fatalf("expected the second build (after SetFirstRequest) to carry isFirst")
	}
}

/*
	attemptCount is never decremented and is untouched by the flag or by a
	rebuild; it only advances via IncrementAttempt, which the retry
	orchestrator calls at transport submission.
*/

func TestIncrementAttemptOnlyIncreasesOnSubmission(t *testing.T) {
	p := NewPendingRequest(0, func(entry raftproto.SlidingWindowEntry) *raftproto.RaftClientRequest {
		return &raftproto.RaftClientRequest{Entry: entry}
	})

	p.Build()
	p.SetFirstRequest()
	p.Build()

	if p.AttemptCount() != 0 {
		t.Fatalf("expected Build to never touch attemptCount, got %d", p.AttemptCount())
	}

	first := p.IncrementAttempt()
	second := p.IncrementAttempt()

	if first != 1 || second != 2 {
		t.Fatalf("expected attemptCount to climb 1, 2, got %d, %d", first, second)
	}
}

/*
	a pending's replyFuture is completed at most once -- SetReply after
	Fail (or vice versa) is a no-op.
*/

func TestSetReplyAfterFailIsNoop(t *testing.T) {
	p := NewPendingRequest(0, func(entry raftproto.SlidingWindowEntry) *raftproto.RaftClientRequest {
		return &raftproto.RaftClientRequest{Entry: entry}
	})

	cause := &groupMismatchStub{}
	if !p.Fail(cause) {
		t.Fatalf("expected the first Fail to win")
	}

	reply := &raftproto.RaftClientReply{}
	if p.SetReply(reply) {
		t.Fatalf("expected SetReply after Fail to be a no-op")
	}
}
