package raftclient

import "context"
import "testing"
import "time"

import "github.com/sirgallo/raftclient/pkg/rafterrors"
import "github.com/sirgallo/raftclient/pkg/raftproto"
import "github.com/sirgallo/raftclient/pkg/retry"
import "github.com/sirgallo/raftclient/pkg/scheduler/fakescheduler"
import "github.com/sirgallo/raftclient/pkg/transport"
import "github.com/sirgallo/raftclient/pkg/transport/faketransport"
import "github.com/sirgallo/raftclient/pkg/utils"


//=========================================== Client End To End


func newTestClient(ft *faketransport.Transport, fs *fakescheduler.Scheduler) *Client {
	maxRetries := 5

	return NewClient(ClientOpts{
		Transport: ft,
		Scheduler: fs,
		RetryPolicy: retry.NewExponentialBackoffPolicy(utils.ExpBackoffOpts{MaxRetries: &maxRetries, TimeoutInMilliseconds: 1}),
	})
}

// TestHappyPathSingleWrite: one write, one reply, no retries.
func TestHappyPathSingleWrite(t *testing.T) {
	ft := faketransport.NewTransport()
	fs := fakescheduler.NewScheduler()
	c := newTestClient(ft, fs)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	reply, err := c.Write(ctx, []byte("hello"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if reply == nil || !reply.Success {
		t.Fatalf("expected a successful reply, got %v", reply)
	}

	calls := ft.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected exactly one transport attempt, got %d", len(calls))
	}

	if !calls[0].Entry.IsFirst {
		t.Fatalf("expected the sole outstanding request to be flagged first")
	}
}

// TestRepliesDeliveredInSeqOrderDespiteReorderedArrival: two concurrent writes
// whose replies arrive out of seq order still surface to their own callers
// only once in-order.
func TestRepliesDeliveredInSeqOrderDespiteReorderedArrival(t *testing.T) {
	ft := faketransport.NewTransport()
	fs := fakescheduler.NewScheduler()
	c := newTestClient(ft, fs)

	hold := make(chan struct{})
	release := make(chan struct{})

	ft.QueueForSeq(0, func(request *raftproto.RaftClientRequest) transport.Result {
		close(hold)
		<-release
		return transport.Result{Reply: &raftproto.RaftClientReply{ClientID: request.ClientID, CallID: request.CallID, Success: true}}
	})

	ctx := context.Background()

	f1 := c.SendAsync(ctx, raftproto.Write, []byte("one"), "")
	<-hold

	f2 := c.SendAsync(ctx, raftproto.Write, []byte("two"), "")

	done2 := make(chan struct{})
	go func() {
		f2.Wait(ctx)
		close(done2)
	}()

	select {
	case <-done2:
		t.Fatalf("second reply delivered before the first, seq ordering violated")
	case <-time.After(30 * time.Millisecond):
	}

	close(release)

	r1, err1 := f1.Wait(ctx)
	if err1 != nil || r1 == nil || !r1.Success {
		t.Fatalf("expected first request to succeed, got reply=%v err=%v", r1, err1)
	}

	r2, err2 := f2.Wait(ctx)
	if err2 != nil || r2 == nil || !r2.Success {
		t.Fatalf("expected second request to succeed, got reply=%v err=%v", r2, err2)
	}
}

// TestLeaderChangeMidStreamReanchorsAndRetries: a NotLeaderException on the
// first attempt reschedules a retry against the (implicitly) new leader
// without failing the window.
func TestLeaderChangeMidStreamReanchorsAndRetries(t *testing.T) {
	ft := faketransport.NewTransport()
	fs := fakescheduler.NewScheduler()
	c := newTestClient(ft, fs)

	suggested := "node-2"
	ft.QueueForSeq(0, func(request *raftproto.RaftClientRequest) transport.Result {
		return transport.Result{Err: &rafterrors.NotLeaderException{ServerID: "node-1", SuggestedLeader: &suggested}}
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	future := c.SendAsync(ctx, raftproto.Write, []byte("payload"), "")

	deadline := time.After(500 * time.Millisecond)
	for fs.Pending() == 0 {
		select {
		case <-deadline:
			t.Fatalf("expected a retry to be armed after NotLeaderException")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	fs.Drain(10)

	reply, err := future.Wait(ctx)
	if err != nil {
		t.Fatalf("unexpected terminal error after leader change retry: %v", err)
	}

	if reply == nil || !reply.Success {
		t.Fatalf("expected eventual success once retried against the new leader, got %v", reply)
	}

	calls := ft.Calls()
	if len(calls) < 2 {
		t.Fatalf("expected at least two transport attempts (original + retry), got %d", len(calls))
	}

	retried := calls[len(calls)-1]
	if retried.Entry.Seq != 0 || !retried.Entry.IsFirst {
		t.Fatalf("expected the retry to re-send seq 0 re-anchored with isFirst, got %v", retried.Entry)
	}
}

// TestGroupMismatchFailsWholeWindow: a GroupMismatchException on one request
// terminally fails every other outstanding request sharing its window
// (fate-sharing).
func TestGroupMismatchFailsWholeWindow(t *testing.T) {
	ft := faketransport.NewTransport()
	fs := fakescheduler.NewScheduler()
	c := newTestClient(ft, fs)

	hold := make(chan struct{})
	release := make(chan struct{})

	ft.QueueForSeq(0, func(request *raftproto.RaftClientRequest) transport.Result {
		close(hold)
		<-release
		return transport.Result{Err: &rafterrors.GroupMismatchException{RequestGroupID: "g1", ServerGroupID: "g2"}}
	})

	ctx := context.Background()

	f1 := c.SendAsync(ctx, raftproto.Write, []byte("one"), "")
	<-hold

	f2 := c.SendAsync(ctx, raftproto.Write, []byte("two"), "")

	close(release)

	_, err1 := f1.Wait(ctx)
	if err1 == nil {
		t.Fatalf("expected the mismatching request to fail")
	}

	_, err2 := f2.Wait(ctx)
	if err2 == nil {
		t.Fatalf("expected the sibling request sharing the window to also fail (fate-sharing)")
	}
}

// TestAdmissionGateBoundsOutstandingRequests: the gate never admits more than
// its configured capacity concurrently.
func TestAdmissionGateBoundsOutstandingRequests(t *testing.T) {
	ft := faketransport.NewTransport()
	fs := fakescheduler.NewScheduler()

	maxRetries := 5
	c := NewClient(ClientOpts{
		Transport: ft,
		Scheduler: fs,
		RetryPolicy: retry.NewExponentialBackoffPolicy(utils.ExpBackoffOpts{MaxRetries: &maxRetries, TimeoutInMilliseconds: 1}),
		Options: Options{MaxOutstandingRequests: 1},
	})

	hold := make(chan struct{})
	release := make(chan struct{})

	ft.QueueForSeq(0, func(request *raftproto.RaftClientRequest) transport.Result {
		close(hold)
		<-release
		return transport.Result{Reply: &raftproto.RaftClientReply{ClientID: request.ClientID, CallID: request.CallID, Success: true}}
	})

	f1 := c.SendAsync(context.Background(), raftproto.Write, []byte("one"), "")
	<-hold

	if c.Outstanding() != 1 {
		t.Fatalf("expected outstanding count 1, got %d", c.Outstanding())
	}

	blockedCtx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := c.Send(blockedCtx, raftproto.Write, []byte("two"), "")
	if err == nil {
		t.Fatalf("expected the second send to block on the saturated gate and time out")
	}

	if _, ok := err.(*rafterrors.InterruptedAdmission); !ok {
		if blockedCtx.Err() == nil {
			t.Fatalf("expected either InterruptedAdmission or a context deadline, got %v", err)
		}
	}

	close(release)
	if _, err := f1.Wait(context.Background()); err != nil {
		t.Fatalf("unexpected error draining the held request: %v", err)
	}
}

// TestStaleReadUsesItsOwnServerKeyedWindow: a stale read against a specific
// server gets its own window, independent of the shared RAFT window used by
// writes/reads/watches.
func TestStaleReadUsesItsOwnServerKeyedWindow(t *testing.T) {
	ft := faketransport.NewTransport()
	fs := fakescheduler.NewScheduler()
	c := newTestClient(ft, fs)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if _, err := c.Write(ctx, []byte("one")); err != nil {
		t.Fatalf("unexpected error on write: %v", err)
	}

	if _, err := c.StaleRead(ctx, []byte("two"), "node-3", 0); err != nil {
		t.Fatalf("unexpected error on stale read: %v", err)
	}

	windows := c.registry.Windows()
	if len(windows) != 2 {
		t.Fatalf("expected two distinct windows (RAFT + node-3), got %d", len(windows))
	}

	if _, ok := windows["node-3"]; !ok {
		t.Fatalf("expected a window keyed by the stale read's target server")
	}

	if _, ok := windows["RAFT"]; !ok {
		t.Fatalf("expected the shared RAFT window for the write")
	}
}

// TestStaleReadAndWatchCarryTheirIndexFields: StaleRead's minIndex and
// Watch's index/replication reach the built request, not just the wire codec.
func TestStaleReadAndWatchCarryTheirIndexFields(t *testing.T) {
	ft := faketransport.NewTransport()
	fs := fakescheduler.NewScheduler()
	c := newTestClient(ft, fs)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if _, err := c.StaleRead(ctx, []byte("one"), "node-3", 42); err != nil {
		t.Fatalf("unexpected error on stale read: %v", err)
	}

	if _, err := c.Watch(ctx, []byte("two"), 7, raftproto.All); err != nil {
		t.Fatalf("unexpected error on watch: %v", err)
	}

	var sawStaleRead, sawWatch bool
	for _, call := range ft.Calls() {
		switch call.Type {
		case raftproto.StaleRead:
			sawStaleRead = true
			if call.MinIndex != 42 {
				t.Fatalf("expected StaleRead's minIndex to reach the built request, got %d", call.MinIndex)
			}
		case raftproto.Watch:
			sawWatch = true
			if call.Index != 7 || call.Replication != raftproto.All {
				t.Fatalf("expected Watch's index/replication to reach the built request, got index=%d replication=%v", call.Index, call.Replication)
			}
		}
	}

	if !sawStaleRead || !sawWatch {
		t.Fatalf("expected one StaleRead call and one Watch call, got sawStaleRead=%t sawWatch=%t", sawStaleRead, sawWatch)
	}
}
