package transport

import "context"

import "google.golang.org/grpc"
import "google.golang.org/protobuf/types/known/timestamppb"

import "github.com/sirgallo/raftclient/pkg/raftproto"


//=========================================== Wire Service Descriptor


/*
	wireRequest / wireReply:
		the JSON shape actually carried on the wire. Span is deliberately
		not part of either DTO: the tracing span is an opaque handle
		captured at submission time and threaded through retries on the
		client side only, never serialized to the server.
*/

type wireRequest struct {
	ClientID string
	ServerID string
	GroupID string
	CallID uint64

	Type raftproto.RequestType
	Message []byte

	MinIndex uint64
	Index uint64
	Replication raftproto.ReplicationLevel

	Seq uint64
	IsFirst bool

	SubmittedAt *timestamppb.Timestamp
}

type wireReply struct {
	ClientID string
	CallID uint64

	Success bool
	LogIndex uint64
	Message []byte

	ExceptionKind string
	ExceptionMsg string
	SuggestedLeader *string
	RequestGroupID string
	ServerGroupID string
}

func toWireRequest(r *raftproto.RaftClientRequest) *wireRequest {
	return &wireRequest{
		ClientID: r.ClientID.String(),
		ServerID: r.ServerID,
		GroupID: r.GroupID,
		CallID: r.CallID,
		Type: r.Type,
		Message: r.Message,
		MinIndex: r.MinIndex,
		Index: r.Index,
		Replication: r.Replication,
		Seq: r.Entry.Seq,
		IsFirst: r.Entry.IsFirst,
		SubmittedAt: r.SubmittedAt,
	}
}

/*
	ServiceName / SendMethod:
		the gRPC method this module invokes directly with
		grpc.ClientConn.Invoke, since there is no protoc-generated client
		stub for a struct-based wire message (see Codec.go).
*/

const ServiceName = "raftclient.RaftClientService"
const SendMethod = "/" + ServiceName + "/Send"

/*
	Handler:
		the server-side counterpart a production Raft service implements;
		declared here so a test or demo process can stand one up against
		GRPCTransport end to end.
*/

type Handler func(ctx context.Context, request *wireRequest) (*wireReply, error)

/*
	ServiceDesc:
		a hand-written grpc.ServiceDesc mirroring what protoc-gen-go-grpc
		would emit for a one-method unary service, authored directly
		because the wire types are plain Go structs rather than .proto
		messages.
*/

func ServiceDesc(handler Handler) grpc.ServiceDesc {
	return grpc.ServiceDesc{
		ServiceName: ServiceName,
		HandlerType: (*interface{})(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "Send",
				Handler: func(_ interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
					req := new(wireRequest)
					if err := dec(req); err != nil {
						return nil, err
					}

					if interceptor == nil {
						return handler(ctx, req)
					}

					info := &grpc.UnaryServerInfo{FullMethod: SendMethod}
					return interceptor(ctx, req, info, func(ctx context.Context, req interface{}) (interface{}, error) {
						return handler(ctx, req.(*wireRequest))
					})
				},
			},
		},
		Streams: []grpc.StreamDesc{},
		Metadata: "raftclient.proto",
	}
}
