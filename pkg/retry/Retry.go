package retry

import "fmt"
import "time"

import "google.golang.org/protobuf/types/known/durationpb"

import "github.com/sirgallo/raftclient/pkg/raftproto"
import "github.com/sirgallo/raftclient/pkg/utils"


//=========================================== Retry Policy


/*
	Policy:
		ShouldRetry(attemptCount, request) -> bool; SleepTime(attemptCount,
		request) -> duration. a pure decision function — the orchestrator
		owns scheduling, the policy only decides.
*/

type Policy interface {
	ShouldRetry(attemptCount int, request *raftproto.RaftClientRequest) bool
	SleepTime(attemptCount int, request *raftproto.RaftClientRequest) time.Duration
	String() string
}

/*
	ExponentialBackoffPolicy:
		wraps utils.ExponentialBackoffStrat, reshaped into a decision
		function rather than a blocking retry loop
*/

type ExponentialBackoffPolicy struct {
	strat *utils.ExponentialBackoffStrat[struct{}]
	maxRetries *int
}

func NewExponentialBackoffPolicy(opts utils.ExpBackoffOpts) *ExponentialBackoffPolicy {
	return &ExponentialBackoffPolicy{
		strat: utils.NewExponentialBackoffStrat[struct{}](opts),
		maxRetries: opts.MaxRetries,
	}
}

func (p *ExponentialBackoffPolicy) ShouldRetry(attemptCount int, _ *raftproto.RaftClientRequest) bool {
	return p.maxRetries == nil || attemptCount < *p.maxRetries
}

func (p *ExponentialBackoffPolicy) SleepTime(attemptCount int, _ *raftproto.RaftClientRequest) time.Duration {
	if attemptCount < 1 {
		attemptCount = 1
	}

	return p.strat.SleepTime(attemptCount)
}

func (p *ExponentialBackoffPolicy) String() string {
	return "ExponentialBackoffPolicy"
}

/*
	forever-no-sleep / no-retry:
		two distinguished policies for the retry orchestrator's special
		cases
*/

type retryForeverNoSleep struct{}

func (retryForeverNoSleep) ShouldRetry(_ int, _ *raftproto.RaftClientRequest) bool { return true }
func (retryForeverNoSleep) SleepTime(_ int, _ *raftproto.RaftClientRequest) time.Duration { return 0 }
func (retryForeverNoSleep) String() string { return "RetryForeverNoSleep" }

/*
	RetryForeverNoSleep:
		used once a leader hint is present on a NotLeaderException: the new
		leader is known, so there is no reason to sleep between attempts
		against it
*/

func RetryForeverNoSleep() Policy { return retryForeverNoSleep{} }

type noRetry struct{}

func (noRetry) ShouldRetry(_ int, _ *raftproto.RaftClientRequest) bool { return false }
func (noRetry) SleepTime(_ int, _ *raftproto.RaftClientRequest) time.Duration { return 0 }
func (noRetry) String() string { return "NoRetry" }

func NoRetry() Policy { return noRetry{} }

/*
	DescribeSleep:
		used by the orchestrator's scheduler describe callback; exercises
		durationpb directly rather than requiring a generated message for
		the retry policy itself
*/

func DescribeSleep(attempt int, policy Policy, sleep time.Duration) string {
	return fmt.Sprintf("attempt #%d with policy %s, sleep=%s", attempt, policy, durationpb.New(sleep).AsDuration())
}
