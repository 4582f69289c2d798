package window

import "sync"

import "github.com/sirgallo/raftclient/pkg/raftproto"


//=========================================== Sliding Window Registry


/*
	RaftKey:
		the sentinel window key for all leader-directed requests. Every
		stale read instead keys by its target server's identity, so each
		replica gets its own independent window.
*/

const RaftKey = "RAFT"

/*
	Registry:
		mapping from target key to SlidingWindow; lazy create, atomic with
		respect to concurrent callers so the same key never yields two
		distinct window objects. name prefixes every window's key
		"<clientId>-><key>", for logging.
*/

type Registry struct {
	name string

	mu sync.Mutex
	windows map[string]*SlidingWindow
}

func NewRegistry(name string) *Registry {
	return &Registry{
		name: name,
		windows: make(map[string]*SlidingWindow),
	}
}

/*
	KeyFor:
		key = the target server id for a stale read, otherwise "RAFT"
*/

func KeyFor(req *raftproto.RaftClientRequest) string {
	if req.Type.IsStaleRead() {
		return req.ServerID
	}

	return RaftKey
}

/*
	WindowFor:
		get-or-create semantics, atomic with respect to concurrent callers
*/

func (r *Registry) WindowFor(req *raftproto.RaftClientRequest) *SlidingWindow {
	return r.windowForKey(KeyFor(req))
}

func (r *Registry) windowForKey(key string) *SlidingWindow {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.windows[key]
	if !ok {
		w = NewSlidingWindow(r.name + "->" + key)
		r.windows[key] = w
	}

	return w
}

/*
	Windows:
		a snapshot of every window currently registered, used by tests that
		need to inspect more than one window at once (e.g. a stale read's
		window vs the shared RAFT window)
*/

func (r *Registry) Windows() map[string]*SlidingWindow {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := make(map[string]*SlidingWindow, len(r.windows))
	for k, v := range r.windows {
		snapshot[k] = v
	}

	return snapshot
}
