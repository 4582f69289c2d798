package raftclient

import "github.com/sirgallo/raftclient/pkg/rafterrors"
import "github.com/sirgallo/raftclient/pkg/raftproto"


//=========================================== Completion Pipeline


/*
	translateCompletion:
		before handing a reply to the caller, applies the Raft-exception
		translation: a reply carrying an embedded exception (anything other
		than NotLeaderException, which never reaches this point — it is
		consumed by the orchestrator as a retry signal) is wrapped with
		wrap and surfaced as an error instead of a reply. A terminal
		failure cause (err != nil) passes through unwrapped, since
		pkg/window.SlidingWindow.Fail and RetryExhausted already carry a
		self-describing cause.
*/

func translateCompletion(reply *raftproto.RaftClientReply, err error, wrap rafterrors.WrapFunc) (*raftproto.RaftClientReply, error) {
	if err != nil {
		return nil, err
	}

	if reply != nil && reply.Exception != nil {
		return nil, wrap(&rafterrors.EmbeddedReplyException{Cause: reply.Exception})
	}

	return reply, nil
}
