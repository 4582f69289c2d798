package transport

import "encoding/json"

import "google.golang.org/grpc/encoding"


//=========================================== Wire Codec


/*
	CodecName:
		the gRPC content-subtype this module registers its codec under.
		raftproto.RaftClientRequest / RaftClientReply are plain Go structs,
		not protoc-generated messages, so GRPCTransport selects this codec
		per-call with grpc.CallContentSubtype(CodecName) rather than relying
		on gRPC's default proto codec.
*/

const CodecName = "raftjson"

/*
	jsonCodec:
		marshal/unmarshal the wire DTOs (wireRequest/wireReply, see Wire.go)
		via encoding/json directly, rather than through
		pkg/utils.EncodeStructToBytes / DecodeBytesToStruct.
*/

type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string { return CodecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
