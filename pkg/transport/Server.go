package transport

import "context"
import "net"

import "google.golang.org/grpc"
import "google.golang.org/grpc/codes"
import "google.golang.org/grpc/status"


//=========================================== Server-Side Helpers


/*
	NotLeaderStatus / GroupMismatchStatus:
		the server-side encoding counterpart to GRPCTransport's
		translateRPCError — a demo/test server importing this package uses
		these to fail an RPC the same way a real Raft server would,
		preserving the raft exception taxonomy across the wire.
*/

func NotLeaderStatus(serverID string, suggestedLeader *string) error {
	msg := "not-leader:" + serverID + "|"
	if suggestedLeader != nil {
		msg += *suggestedLeader
	}

	return status.Error(codes.FailedPrecondition, msg)
}

func GroupMismatchStatus(requestGroupID string, serverGroupID string) error {
	return status.Error(codes.PermissionDenied, "group-mismatch:"+requestGroupID+"|"+serverGroupID)
}

/*
	Serve:
		starts a gRPC server exposing handler under ServiceDesc on
		listener, blocking until it stops (grpc.NewServer /
		RegisterService / srv.Serve(listener))
*/

func Serve(listener net.Listener, handler Handler) error {
	srv := grpc.NewServer()
	desc := ServiceDesc(handler)
	srv.RegisterService(&desc, nil)

	return srv.Serve(listener)
}

/*
	EchoHandler:
		a minimal Handler that always succeeds, used by the integration
		tests that exercise GRPCTransport end to end without a real Raft
		cluster
*/

func EchoHandler(ctx context.Context, request *wireRequest) (*wireReply, error) {
	return &wireReply{
		ClientID: request.ClientID,
		CallID: request.CallID,
		Success: true,
		LogIndex: request.Seq,
		Message: request.Message,
	}, nil
}
