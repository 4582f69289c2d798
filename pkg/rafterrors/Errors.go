package rafterrors

import "fmt"


//=========================================== Error Taxonomy


/*
	InterruptedAdmission:
		the caller was interrupted (context canceled) while waiting for an
		admission permit. surfaced immediately; the request is never
		registered on a sliding window.
*/

type InterruptedAdmission struct {
	Cause error
}

func (e *InterruptedAdmission) Error() string {
	return fmt.Sprintf("interrupted while waiting for an admission permit: %v", e.Cause)
}

func (e *InterruptedAdmission) Unwrap() error { return e.Cause }

/*
	NotLeaderException:
		the addressed server is not the current Raft leader. SuggestedLeader
		is set when the server knows who the leader is; its presence is what
		triggers the forever-no-sleep retry policy in pkg/raftclient.
*/

type NotLeaderException struct {
	ServerID string
	SuggestedLeader *string
}

func (e *NotLeaderException) Error() string {
	if e.SuggestedLeader != nil {
		return fmt.Sprintf("%s is not the leader, suggested leader: %s", e.ServerID, *e.SuggestedLeader)
	}

	return fmt.Sprintf("%s is not the leader", e.ServerID)
}

/*
	GroupMismatchException:
		the server rejected the request's group id. Terminal: the whole
		window fails (fate-sharing, see pkg/window.SlidingWindow.Fail).
*/

type GroupMismatchException struct {
	RequestGroupID string
	ServerGroupID string
}

func (e *GroupMismatchException) Error() string {
	return fmt.Sprintf("group mismatch: request group %s does not match server group %s", e.RequestGroupID, e.ServerGroupID)
}

/*
	TransientIOError:
		an I/O failure the retry policy is free to retry. carries the
		underlying transport error for logging/unwrap.
*/

type TransientIOError struct {
	Cause error
}

func (e *TransientIOError) Error() string {
	return fmt.Sprintf("transient I/O error: %v", e.Cause)
}

func (e *TransientIOError) Unwrap() error { return e.Cause }

/*
	RetryExhausted:
		the retry policy refused further attempts. terminal for the whole
		window (spec: once one request in a window fails terminally, all
		outstanding requests in that window fail with the same cause).
*/

type RetryExhausted struct {
	Attempts int
	Cause error
}

func (e *RetryExhausted) Error() string {
	return fmt.Sprintf("retry policy exhausted after %d attempts: %v", e.Attempts, e.Cause)
}

func (e *RetryExhausted) Unwrap() error { return e.Cause }

/*
	EmbeddedReplyException:
		the server returned a normal reply whose payload carries a
		Raft-level exception. Surfaced to the caller wrapped in CompletionError.
*/

type EmbeddedReplyException struct {
	Cause error
}

func (e *EmbeddedReplyException) Error() string {
	return fmt.Sprintf("reply carried an embedded exception: %v", e.Cause)
}

func (e *EmbeddedReplyException) Unwrap() error { return e.Cause }

/*
	CompletionError:
		the caller-visible wrapping rule applied by the completion pipeline
		(C7) before handing a reply's embedded exception to the caller,
		mirroring the source's CompletionException wrapper.
*/

type CompletionError struct {
	Cause error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("request did not complete normally: %v", e.Cause)
}

func (e *CompletionError) Unwrap() error { return e.Cause }

/*
	WrapFunc:
		the wrapping rule supplied by the surrounding client. defaults to
		CompletionError but a caller can substitute its own.
*/

type WrapFunc func(error) error

func DefaultWrap(cause error) error {
	return &CompletionError{Cause: cause}
}
