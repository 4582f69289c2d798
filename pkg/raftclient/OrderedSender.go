package raftclient

import "context"
import "time"

import "github.com/sirgallo/raftclient/pkg/rafterrors"
import "github.com/sirgallo/raftclient/pkg/raftproto"
import "github.com/sirgallo/raftclient/pkg/retry"
import "github.com/sirgallo/raftclient/pkg/transport"
import "github.com/sirgallo/raftclient/pkg/window"


//=========================================== Retry Orchestrator


/*
	RPCTimeout:
		the per-attempt transport deadline — a stuck attempt must
		eventually surface as a failure so the retry policy gets a chance
		to run, rather than hanging the window forever.
*/

const RPCTimeout = 5 * time.Second

/*
	orderedSender:
		drives one PendingRequest through send -> reply/failure ->
		schedule-retry. One orderedSender is created per Send call, bound
		to the single window that call's request belongs to — it carries
		no per-pending state of its own, all of that lives on
		PendingRequest and SlidingWindow.
*/

type orderedSender struct {
	client *Client
	window *window.SlidingWindow
}

/*
	send:
		the orchestrator's SendFunc, installed as sendFn on every
		SlidingWindow.SubmitNewRequest / Retry call. Guarded by the
		already-done check, stamps isFirst if applicable, builds fresh, and
		hands off to the transport asynchronously.
*/

func (o *orderedSender) send(pending *window.PendingRequest) {
	if pending.Reply.IsDone() {
		return
	}

	if o.window.IsFirst(pending.Seq()) {
		pending.SetFirstRequest()
	}

	request := pending.Build()
	pending.IncrementAttempt()

	ctx, cancel := context.WithTimeout(context.Background(), RPCTimeout)
	resultCh := o.client.transport.SendRequestAsync(ctx, request)

	go o.awaitResult(pending, request, resultCh, cancel)
}

/*
	awaitResult:
		runs on its own goroutine so the orchestrator never blocks a
		caller — a continuation-driven shape standing in for Java-style
		future chaining.
*/

func (o *orderedSender) awaitResult(pending *window.PendingRequest, request *raftproto.RaftClientRequest, resultCh <-chan transport.Result, cancel context.CancelFunc) {
	result := <-resultCh
	defer cancel()

	if pending.Reply.IsDone() {
		return
	}

	if result.Err != nil {
		o.handleError(pending, request, result.Err)
		return
	}

	reply := result.Reply
	if reply == nil {
		o.scheduleRetry(pending, request, o.client.retryPolicy)
		return
	}

	if _, ok := reply.Exception.(*rafterrors.NotLeaderException); ok {
		o.client.hooks.HandleLeaderException(request, reply, o.window.ResetFirstSeqNum)
		o.scheduleRetry(pending, request, o.client.retryPolicy)
		return
	}

	o.window.ReceiveReply(request.Entry.Seq, reply, o.send)
}

/*
	handleError:
		the failed-transport-future branch of awaitResult
*/

func (o *orderedSender) handleError(pending *window.PendingRequest, request *raftproto.RaftClientRequest, err error) {
	switch e := err.(type) {
	case *rafterrors.NotLeaderException:
		o.client.hooks.HandleNotLeaderException(request, e, o.window.ResetFirstSeqNum)
		o.scheduleRetry(pending, request, leaderChangePolicy(o.client.retryPolicy, e.SuggestedLeader))

	case *rafterrors.GroupMismatchException:
		o.window.Fail(request.Entry.Seq, e)

	case *rafterrors.TransientIOError:
		if !o.client.retryPolicy.ShouldRetry(pending.AttemptCount(), request) {
			o.window.Fail(request.Entry.Seq, &rafterrors.RetryExhausted{Attempts: pending.AttemptCount(), Cause: e})
			return
		}

		o.client.hooks.HandleIOException(request, e, nil, o.window.ResetFirstSeqNum)
		o.scheduleRetry(pending, request, o.client.retryPolicy)

	default:
		o.window.Fail(request.Entry.Seq, err)
	}
}

/*
	leaderChangePolicy:
		used only on the failed-future path in handleError, where the
		transport itself rejected with NotLeaderException: forever-no-sleep
		once a suggested leader is known, the configured policy otherwise.
		An embedded not-leader reply (a normal RPC response whose payload
		carries the exception) is the routine case and always retries on
		the plain configured policy instead, never forever-no-sleep.
*/

func leaderChangePolicy(configured retry.Policy, suggestedLeader *string) retry.Policy {
	if suggestedLeader != nil {
		return retry.RetryForeverNoSleep()
	}

	return configured
}

/*
	scheduleRetry:
		never reassigns seq — retry is always driven through window.Retry
		with the same pending.
*/

func (o *orderedSender) scheduleRetry(pending *window.PendingRequest, request *raftproto.RaftClientRequest, policy retry.Policy) {
	attempt := pending.AttemptCount()
	sleep := policy.SleepTime(attempt, request)

	o.client.scheduler.OnTimeout(sleep, func() {
		o.window.Retry(pending, o.send)
	}, o.client.log, func() string {
		return retry.DescribeSleep(attempt, policy, sleep) + " for " + request.String()
	})
}
