package fakescheduler

import "sync"
import "time"

import "github.com/sirgallo/raftclient/pkg/logger"
import "github.com/sirgallo/raftclient/pkg/scheduler"


//=========================================== Fake Scheduler


/*
	armed:
		one scheduled-but-not-yet-fired task, recorded together with the
		delay the retry policy computed instead of sleeping for it
*/

type armed struct {
	delay time.Duration
	task scheduler.Task
	describe string
}

/*
	Scheduler:
		a controllable Scheduler for tests (pkg/scheduler.Scheduler). Tasks
		are recorded rather than timer-driven; a test calls FireAll /
		Drain to run them synchronously on its own goroutine, giving
		deterministic control over the retry orchestrator's
		scheduled-retry step without real sleeps.
*/

type Scheduler struct {
	mu sync.Mutex
	pending []*armed
}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

func (s *Scheduler) OnTimeout(delay time.Duration, task scheduler.Task, log *clog.CustomLog, describe func() string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = append(s.pending, &armed{delay: delay, task: task, describe: describe()})
}

/*
	Pending:
		number of armed-but-not-fired tasks
*/

func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.pending)
}

/*
	FireAll:
		runs every currently armed task, in arming order. Tasks armed by a
		fired task (a retry that itself gets rescheduled) are NOT fired by
		this call — call FireAll again, or use Drain, to pump until quiet.
*/

func (s *Scheduler) FireAll() {
	s.mu.Lock()
	toRun := s.pending
	s.pending = nil
	s.mu.Unlock()

	for _, a := range toRun {
		a.task()
	}
}

/*
	Drain:
		repeatedly fires every armed task until none remain, bounded by
		maxRounds so a test that accidentally builds an infinite retry loop
		fails fast instead of hanging
*/

func (s *Scheduler) Drain(maxRounds int) {
	for i := 0; i < maxRounds && s.Pending() > 0; i++ {
		s.FireAll()
	}
}
