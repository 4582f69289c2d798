package faketransport

import "context"
import "sync"

import "github.com/sirgallo/raftclient/pkg/raftproto"
import "github.com/sirgallo/raftclient/pkg/transport"


//=========================================== Fake Transport


/*
	Handler:
		decides how a single transport attempt resolves for a given built
		request. Scripted per test via Transport.SetDefault/QueueForSeq — a
		handler can return a failing transport.Result (failed future) or a
		successful transport.Result whose Reply.Exception is set (reply
		carrying a leader-change signal). The tests in this module script
		only the failing-Result form.
*/

type Handler func(request *raftproto.RaftClientRequest) transport.Result

/*
	Transport:
		an in-memory Transport for tests. default handler approves every
		request with a plain success reply; per-seq overrides let a test
		script exactly one attempt (e.g. "fail seq 0 with NotLeaderException
		on its first attempt only") without affecting any other seq.
*/

type Transport struct {
	mu sync.Mutex
	defaultHandler Handler
	bySeq map[uint64][]Handler
	calls []*raftproto.RaftClientRequest
}

func NewTransport() *Transport {
	return &Transport{
		defaultHandler: func(request *raftproto.RaftClientRequest) transport.Result {
			return transport.Result{Reply: &raftproto.RaftClientReply{
				ClientID: request.ClientID,
				CallID: request.CallID,
				Success: true,
			}}
		},
		bySeq: make(map[uint64][]Handler),
	}
}

/*
	SetDefault:
		replace the fallback handler used once a seq's scripted queue (if
		any) is exhausted
*/

func (t *Transport) SetDefault(h Handler) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.defaultHandler = h
}

/*
	QueueForSeq:
		push one-shot handlers to run, in order, on successive attempts for
		a given seq; once exhausted, the default handler takes over
*/

func (t *Transport) QueueForSeq(seq uint64, handlers ...Handler) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.bySeq[seq] = append(t.bySeq[seq], handlers...)
}

func (t *Transport) Calls() []*raftproto.RaftClientRequest {
	t.mu.Lock()
	defer t.mu.Unlock()

	return append([]*raftproto.RaftClientRequest{}, t.calls...)
}

func (t *Transport) SendRequestAsync(ctx context.Context, request *raftproto.RaftClientRequest) <-chan transport.Result {
	ch := make(chan transport.Result, 1)

	t.mu.Lock()
	t.calls = append(t.calls, request)

	seq := request.Entry.Seq
	var handler Handler
	if queue := t.bySeq[seq]; len(queue) > 0 {
		handler = queue[0]
		t.bySeq[seq] = queue[1:]
	} else {
		handler = t.defaultHandler
	}
	t.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			ch <- transport.Result{Err: ctx.Err()}
		default:
			ch <- handler(request)
		}
	}()

	return ch
}
