package raftproto

import "fmt"

import "github.com/google/uuid"
import "google.golang.org/protobuf/types/known/timestamppb"

import "github.com/sirgallo/raftclient/pkg/tracing"


//=========================================== Raft Client Wire Types


/*
	RequestType:
		the oneof write / read / staleRead / watch case on a client
		request
*/

type RequestType int

const (
	Write RequestType = iota
	Read
	StaleRead
	Watch
)

func (t RequestType) String() string {
	switch t {
	case Write:
		return "RW"
	case Read:
		return "RO"
	case StaleRead:
		return "StaleRead"
	case Watch:
		return "Watch"
	default:
		return "Unknown"
	}
}

func (t RequestType) IsStaleRead() bool { return t == StaleRead }

/*
	ReplicationLevel:
		the replication guarantee a Watch request is waiting for
*/

type ReplicationLevel int

const (
	Majority ReplicationLevel = iota
	All
)

/*
	SlidingWindowEntry:
		the only bit that must be preserved for server compatibility --
		exactly one entry per window carries IsFirst = true at any time
*/

type SlidingWindowEntry struct {
	Seq uint64
	IsFirst bool
}

func (e SlidingWindowEntry) String() string {
	if e.IsFirst {
		return fmt.Sprintf("seq:%d,first", e.Seq)
	}

	return fmt.Sprintf("seq:%d", e.Seq)
}

/*
	RaftClientRequest:
		built fresh on every (re)attempt by PendingRequest.Build, so the
		SlidingWindowEntry and the IsFirst flag always reflect the window's
		state at the moment of this particular build
*/

type RaftClientRequest struct {
	ClientID uuid.UUID
	ServerID string
	GroupID string
	CallID uint64

	Type RequestType
	Message []byte

	// MinIndex is meaningful only for StaleRead; Index/Replication only for Watch
	MinIndex uint64
	Index uint64
	Replication ReplicationLevel

	Entry SlidingWindowEntry
	Span tracing.Span

	SubmittedAt *timestamppb.Timestamp
}

func (r *RaftClientRequest) String() string {
	return fmt.Sprintf("client=%s,server=%s,cid=%d,%s,%s", r.ClientID, r.ServerID, r.CallID, r.Entry, r.Type)
}

/*
	RaftClientReply:
		Exception is set when the server successfully replied but the
		payload carries a Raft-level failure (leader-change or otherwise);
		a nil reply together with a nil error from Transport means
		"no reply yet, retry"
*/

type RaftClientReply struct {
	ClientID uuid.UUID
	CallID uint64

	Success bool
	LogIndex uint64
	Message []byte

	Exception error
}

func (r *RaftClientReply) String() string {
	return fmt.Sprintf("client=%s,cid=%d,success=%t", r.ClientID, r.CallID, r.Success)
}
