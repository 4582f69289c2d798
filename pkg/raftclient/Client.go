package raftclient

import "context"

import "github.com/google/uuid"
import "google.golang.org/protobuf/types/known/timestamppb"

import "github.com/sirgallo/raftclient/pkg/admission"
import "github.com/sirgallo/raftclient/pkg/callid"
import "github.com/sirgallo/raftclient/pkg/logger"
import "github.com/sirgallo/raftclient/pkg/rafterrors"
import "github.com/sirgallo/raftclient/pkg/raftproto"
import "github.com/sirgallo/raftclient/pkg/retry"
import "github.com/sirgallo/raftclient/pkg/scheduler"
import "github.com/sirgallo/raftclient/pkg/tracing"
import "github.com/sirgallo/raftclient/pkg/transport"
import "github.com/sirgallo/raftclient/pkg/utils"
import "github.com/sirgallo/raftclient/pkg/window"


//=========================================== Ordered Async Client


const NAME = "Raft Client"

/*
	ClientOpts:
		everything Send(type, message, target) needs. Unset collaborators
		fall back to this module's own production-ready default:
		NoopTracer, TimerScheduler, ExponentialBackoffPolicy,
		DefaultLeaderHooks, rafterrors.DefaultWrap — built as a literal in
		cmd/raftclient/main.go, the same Opts-struct idiom as
		pkg/connpool.ConnectionPoolOpts.
*/

type ClientOpts struct {
	ClientID uuid.UUID
	GroupID string

	Transport transport.Transport
	RetryPolicy retry.Policy
	Scheduler scheduler.Scheduler
	Tracer tracing.Tracer
	Hooks LeaderHooks
	Wrap rafterrors.WrapFunc

	Options Options
}

/*
	Client:
		the ordered asynchronous client core. Composes the sequence
		generator, sliding-window registry, admission gate, and the
		orderedSender + completion pipeline that the rest of this package
		implements.
*/

type Client struct {
	id uuid.UUID
	groupID string

	callIDs *callid.Generator
	registry *window.Registry
	gate *admission.Gate

	transport transport.Transport
	retryPolicy retry.Policy
	scheduler scheduler.Scheduler
	tracer tracing.Tracer
	hooks LeaderHooks
	wrap rafterrors.WrapFunc

	log *clog.CustomLog
}

func NewClient(opts ClientOpts) *Client {
	clientID := opts.ClientID
	if clientID == uuid.Nil {
		clientID = uuid.New()
	}

	options := opts.Options
	if options.MaxOutstandingRequests <= 0 {
		options = DefaultOptions()
	}

	log := clog.NewCustomLog(NAME)

	retryPolicy := opts.RetryPolicy
	if retryPolicy == nil {
		maxRetries := 10
		retryPolicy = retry.NewExponentialBackoffPolicy(utils.ExpBackoffOpts{MaxRetries: &maxRetries, TimeoutInMilliseconds: 50})
	}

	sched := opts.Scheduler
	if sched == nil {
		sched = scheduler.NewTimerScheduler()
	}

	tracer := opts.Tracer
	if tracer == nil {
		tracer = tracing.NoopTracer{}
	}

	hooks := opts.Hooks
	if hooks == nil {
		hooks = NewDefaultLeaderHooks(log)
	}

	wrap := opts.Wrap
	if wrap == nil {
		wrap = rafterrors.DefaultWrap
	}

	return &Client{
		id: clientID,
		groupID: opts.GroupID,
		callIDs: callid.NewGenerator(),
		registry: window.NewRegistry(clientID.String()),
		gate: admission.NewGate(options.MaxOutstandingRequests),
		transport: opts.Transport,
		retryPolicy: retryPolicy,
		scheduler: sched,
		tracer: tracer,
		hooks: hooks,
		wrap: wrap,
		log: log,
	}
}

func (c *Client) ID() uuid.UUID { return c.id }

func (c *Client) Outstanding() int { return c.gate.Outstanding() }

func (c *Client) Capacity() int { return c.gate.Capacity() }

/*
	SendAsync:
		Acquires an admission permit, assigns a call id, picks (or lazily
		creates) the right window, and submits a new request to it. Returns
		a caller-facing ReplyFuture whose eventual value has already passed
		through the completion pipeline — embedded exceptions wrapped, the
		admission permit released exactly once.
*/

func (c *Client) SendAsync(ctx context.Context, reqType raftproto.RequestType, message []byte, target string) *window.ReplyFuture {
	return c.sendAsync(ctx, reqType, message, target, 0, 0, raftproto.Majority)
}

func (c *Client) sendAsync(ctx context.Context, reqType raftproto.RequestType, message []byte, target string, minIndex uint64, index uint64, replication raftproto.ReplicationLevel) *window.ReplyFuture {
	callerFuture := window.NewReplyFuture()

	if err := c.gate.Acquire(ctx); err != nil {
		callerFuture.TryComplete(nil, err)
		return callerFuture
	}

	callID := c.callIDs.Next()
	span := c.tracer.ActiveSpan(ctx)
	submittedAt := timestamppb.Now()

	probe := &raftproto.RaftClientRequest{Type: reqType, ServerID: target}
	w := c.registry.WindowFor(probe)

	constructor := func(seq uint64) *window.PendingRequest {
		builder := func(entry raftproto.SlidingWindowEntry) *raftproto.RaftClientRequest {
			return &raftproto.RaftClientRequest{
				ClientID: c.id,
				ServerID: target,
				GroupID: c.groupID,
				CallID: callID,
				Type: reqType,
				Message: message,
				MinIndex: minIndex,
				Index: index,
				Replication: replication,
				Entry: entry,
				Span: span,
				SubmittedAt: submittedAt,
			}
		}

		return window.NewPendingRequest(seq, builder)
	}

	sender := &orderedSender{client: c, window: w}
	pending := w.SubmitNewRequest(constructor, sender.send)

	pending.Reply.OnComplete(func(reply *raftproto.RaftClientReply, err error) {
		c.gate.Release()

		finalReply, finalErr := translateCompletion(reply, err, c.wrap)
		callerFuture.TryComplete(finalReply, finalErr)
	})

	return callerFuture
}

/*
	Send:
		the blocking convenience form of SendAsync, for callers that don't
		want to manage a ReplyFuture themselves
*/

func (c *Client) Send(ctx context.Context, reqType raftproto.RequestType, message []byte, target string) (*raftproto.RaftClientReply, error) {
	return c.SendAsync(ctx, reqType, message, target).Wait(ctx)
}

/*
	Write / Read / StaleRead / Watch:
		thin, typed convenience wrappers over Send/SendAsync matching
		RaftClientRequest.Type; StaleRead is the only one that addresses a
		specific server rather than the shared RAFT window. StaleRead carries
		minIndex, the earliest log index the stale read is willing to
		observe; Watch carries index and replication, the log index and
		replication guarantee it is waiting on.
*/

func (c *Client) Write(ctx context.Context, message []byte) (*raftproto.RaftClientReply, error) {
	return c.Send(ctx, raftproto.Write, message, "")
}

func (c *Client) Read(ctx context.Context, message []byte) (*raftproto.RaftClientReply, error) {
	return c.Send(ctx, raftproto.Read, message, "")
}

func (c *Client) StaleRead(ctx context.Context, message []byte, server string, minIndex uint64) (*raftproto.RaftClientReply, error) {
	return c.sendAsync(ctx, raftproto.StaleRead, message, server, minIndex, 0, raftproto.Majority).Wait(ctx)
}

func (c *Client) Watch(ctx context.Context, message []byte, index uint64, replication raftproto.ReplicationLevel) (*raftproto.RaftClientReply, error) {
	return c.sendAsync(ctx, raftproto.Watch, message, "", 0, index, replication).Wait(ctx)
}
