package transport

import "context"
import "strings"

import "google.golang.org/grpc"
import "google.golang.org/grpc/codes"
import "google.golang.org/grpc/status"

import "github.com/google/uuid"

import "github.com/sirgallo/raftclient/pkg/connpool"
import "github.com/sirgallo/raftclient/pkg/rafterrors"
import "github.com/sirgallo/raftclient/pkg/raftproto"
import "github.com/sirgallo/raftclient/pkg/utils"


//=========================================== gRPC Transport


/*
	GRPCTransportOpts:
		Port is the fixed port every Raft server in the group listens on;
		addressing beyond that (which host is the current leader) is a
		separate collaborator's job — this transport just dials
		request.ServerID verbatim.
*/

type GRPCTransportOpts struct {
	Pool *connpool.ConnectionPool
	Port int
}

/*
	GRPCTransport:
		the production Transport, built on google.golang.org/grpc client
		connections reused through pkg/connpool.ConnectionPool rather than
		dialing fresh for every attempt.
*/

type GRPCTransport struct {
	pool *connpool.ConnectionPool
	port string
}

func NewGRPCTransport(opts GRPCTransportOpts) *GRPCTransport {
	return &GRPCTransport{
		pool: opts.Pool,
		port: utils.NormalizePort(opts.Port),
	}
}

func (t *GRPCTransport) SendRequestAsync(ctx context.Context, request *raftproto.RaftClientRequest) <-chan Result {
	ch := make(chan Result, 1)

	go func() {
		ch <- t.sendOnce(ctx, request)
	}()

	return ch
}

func (t *GRPCTransport) sendOnce(ctx context.Context, request *raftproto.RaftClientRequest) Result {
	conn, connErr := t.pool.GetConnection(request.ServerID, t.port)
	if connErr != nil {
		return Result{Err: &rafterrors.TransientIOError{Cause: connErr}}
	}

	wireReq := toWireRequest(request)
	reply := new(wireReply)

	invokeErr := conn.Invoke(ctx, SendMethod, wireReq, reply, grpc.CallContentSubtype(CodecName))
	if invokeErr != nil {
		translated := translateRPCError(request, invokeErr)

		if _, ok := translated.(*rafterrors.NotLeaderException); ok {
			t.pool.CloseConnections(request.ServerID)
		} else {
			t.pool.PutConnection(request.ServerID, conn)
		}

		return Result{Err: translated}
	}

	t.pool.PutConnection(request.ServerID, conn)
	return Result{Reply: fromWireReply(reply)}
}

/*
	translateRPCError:
		maps a failed RPC onto the raft exception taxonomy. NotLeader and
		GroupMismatch are carried as gRPC status codes with a structured
		message (see Server.go's NotLeaderStatus/GroupMismatchStatus);
		anything else becomes a plain TransientIOError for the retry policy
		to judge.
*/

func translateRPCError(request *raftproto.RaftClientRequest, err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return &rafterrors.TransientIOError{Cause: err}
	}

	switch st.Code() {
	case codes.FailedPrecondition:
		serverID, suggested := parseNotLeader(st.Message())
		if serverID == "" {
			serverID = request.ServerID
		}

		var suggestedPtr *string
		if suggested != "" {
			suggestedPtr = &suggested
		}

		return &rafterrors.NotLeaderException{ServerID: serverID, SuggestedLeader: suggestedPtr}
	case codes.PermissionDenied:
		reqGroup, serverGroup := parseGroupMismatch(st.Message())
		return &rafterrors.GroupMismatchException{RequestGroupID: reqGroup, ServerGroupID: serverGroup}
	default:
		return &rafterrors.TransientIOError{Cause: err}
	}
}

func parseNotLeader(msg string) (serverID string, suggestedLeader string) {
	const prefix = "not-leader:"
	if !strings.HasPrefix(msg, prefix) {
		return "", ""
	}

	rest := strings.TrimPrefix(msg, prefix)
	parts := strings.SplitN(rest, "|", 2)

	serverID = parts[0]
	if len(parts) > 1 {
		suggestedLeader = parts[1]
	}

	return serverID, suggestedLeader
}

func parseGroupMismatch(msg string) (requestGroup string, serverGroup string) {
	const prefix = "group-mismatch:"
	if !strings.HasPrefix(msg, prefix) {
		return "", ""
	}

	rest := strings.TrimPrefix(msg, prefix)
	parts := strings.SplitN(rest, "|", 2)

	requestGroup = parts[0]
	if len(parts) > 1 {
		serverGroup = parts[1]
	}

	return requestGroup, serverGroup
}

/*
	fromWireReply:
		reconstructs raftproto.RaftClientReply, including an embedded
		exception if the server answered normally but the payload itself
		carries a raft-level failure
*/

func fromWireReply(w *wireReply) *raftproto.RaftClientReply {
	clientID, _ := uuid.Parse(w.ClientID)

	reply := &raftproto.RaftClientReply{
		ClientID: clientID,
		CallID: w.CallID,
		Success: w.Success,
		LogIndex: w.LogIndex,
		Message: w.Message,
	}

	switch w.ExceptionKind {
	case "NotLeader":
		var suggested *string
		if w.SuggestedLeader != nil && *w.SuggestedLeader != "" {
			suggested = w.SuggestedLeader
		}

		reply.Exception = &rafterrors.NotLeaderException{ServerID: w.ExceptionMsg, SuggestedLeader: suggested}
	case "GroupMismatch":
		reply.Exception = &rafterrors.GroupMismatchException{RequestGroupID: w.RequestGroupID, ServerGroupID: w.ServerGroupID}
	case "Other":
		reply.Exception = &rafterrors.TransientIOError{Cause: errString(w.ExceptionMsg)}
	}

	return reply
}

type errString string

func (e errString) Error() string { return string(e) }
