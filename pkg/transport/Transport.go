package transport

import "context"

import "github.com/sirgallo/raftclient/pkg/raftproto"


//=========================================== Transport


/*
	Result:
		the outcome of a single transport attempt. A nil Reply with a nil
		Err is the "no reply yet, retry" signal; a non-nil Err is either a
		well-known raft exception (NotLeaderException,
		GroupMismatchException, from pkg/rafterrors) or a generic I/O
		failure the retry policy may retry.
*/

type Result struct {
	Reply *raftproto.RaftClientReply
	Err error
}

/*
	Transport:
		SendRequestAsync(request) -> <-chan Result. Modeled as a channel
		rather than a promise/future type — goroutines plus channels stand
		in for Java's CompletableFuture chaining. The channel is always
		sent to exactly once.
*/

type Transport interface {
	SendRequestAsync(ctx context.Context, request *raftproto.RaftClientRequest) <-chan Result
}
