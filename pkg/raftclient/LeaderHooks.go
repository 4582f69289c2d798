package raftclient

import "sync"

import "github.com/sirgallo/raftclient/pkg/logger"
import "github.com/sirgallo/raftclient/pkg/rafterrors"
import "github.com/sirgallo/raftclient/pkg/raftproto"


//=========================================== Leader Hooks


/*
	ResetFunc:
		maps to SlidingWindow.ResetFirstSeqNum on whichever window the
		triggering request belongs to
*/

type ResetFunc func()

/*
	LeaderHooks:
		the three leader-change collaborator hooks. Each may invoke reset,
		which re-anchors the window so the next build stamps isFirst
		against the (possibly new) leader.
*/

type LeaderHooks interface {
	HandleLeaderException(request *raftproto.RaftClientRequest, reply *raftproto.RaftClientReply, reset ResetFunc)
	HandleNotLeaderException(request *raftproto.RaftClientRequest, err *rafterrors.NotLeaderException, reset ResetFunc)
	HandleIOException(request *raftproto.RaftClientRequest, err error, serverID *string, reset ResetFunc)
}

/*
	DefaultLeaderHooks:
		tracks the last known leader and always resets the triggering
		window on a leader-change signal. A caller with its own
		group-routing layer can substitute its own LeaderHooks instead.
*/

type DefaultLeaderHooks struct {
	mu sync.Mutex
	knownLeader string

	Log *clog.CustomLog
}

func NewDefaultLeaderHooks(log *clog.CustomLog) *DefaultLeaderHooks {
	return &DefaultLeaderHooks{Log: log}
}

func (h *DefaultLeaderHooks) KnownLeader() string {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.knownLeader
}

func (h *DefaultLeaderHooks) setKnownLeader(leader string) {
	if leader == "" {
		return
	}

	h.mu.Lock()
	h.knownLeader = leader
	h.mu.Unlock()
}

func (h *DefaultLeaderHooks) HandleLeaderException(request *raftproto.RaftClientRequest, reply *raftproto.RaftClientReply, reset ResetFunc) {
	if nle, ok := reply.Exception.(*rafterrors.NotLeaderException); ok {
		if nle.SuggestedLeader != nil {
			h.setKnownLeader(*nle.SuggestedLeader)
		}

		h.Log.Debug("leader exception embedded in reply for", request.String(), ":", nle.Error())
	}

	reset()
}

func (h *DefaultLeaderHooks) HandleNotLeaderException(request *raftproto.RaftClientRequest, err *rafterrors.NotLeaderException, reset ResetFunc) {
	if err.SuggestedLeader != nil {
		h.setKnownLeader(*err.SuggestedLeader)
	}

	h.Log.Debug("not-leader exception for", request.String(), ":", err.Error())
	reset()
}

/*
	HandleIOException:
		unlike the two leader-change hooks, a plain I/O failure is not
		itself evidence the window's anchor is stale, so the default
		implementation logs and does not invoke reset — it is offered the
		callback only so a caller with its own leader cache can choose to
		use it.
*/

func (h *DefaultLeaderHooks) HandleIOException(request *raftproto.RaftClientRequest, err error, serverID *string, reset ResetFunc) {
	h.Log.Warn("I/O failure for", request.String(), ":", err.Error())
}
