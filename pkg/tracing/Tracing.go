package tracing

import "context"


//=========================================== Tracing Facade


/*
	Span:
		an opaque handle representing a unit of work in a distributed trace.
		the sequencer never inspects a span's contents, it only captures one
		at submission time and threads it through every retry so a retried
		request still lands in the same trace (see Client.sendAsync in pkg/raftclient/Client.go)
*/

type Span interface {
	Finish()
}

/*
	Tracer:
		the only collaborator the sequencer needs from a tracing system:
		"is there a span active right now, and if so, which one"
*/

type Tracer interface {
	ActiveSpan(ctx context.Context) Span
}

/*
	NoopSpan / NoopTracer:
		the default tracer when the caller hasn't wired a real one in.
		every request still carries a (no-op) span, so adding a real
		tracer later requires no change to pkg/window or pkg/raftclient
*/

type noopSpan struct{}

func (noopSpan) Finish() {}

type NoopTracer struct{}

func (NoopTracer) ActiveSpan(_ context.Context) Span {
	return noopSpan{}
}
