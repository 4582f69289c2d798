package scheduler

import "time"

import "github.com/sirgallo/raftclient/pkg/logger"


//=========================================== Scheduler


/*
	Task:
		the retry orchestrator's re-send callback, armed to run once after a
		retry-policy-computed delay
*/

type Task func()

/*
	Scheduler:
		OnTimeout(duration, task, logger, descriptionFn). the orchestrator
		never owns threads itself; every sleep is expressed as a call
		through this interface so tests can substitute a fake that fires
		immediately or records scheduled delays without sleeping.
*/

type Scheduler interface {
	OnTimeout(delay time.Duration, task Task, log *clog.CustomLog, describe func() string)
}

/*
	TimerScheduler:
		production implementation, backed by time.AfterFunc. a panic inside
		the scheduled task is logged and swallowed rather than crashing the
		process, since the task runs on its own goroutine with no caller to
		observe a panic.
*/

type TimerScheduler struct{}

func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{}
}

func (s *TimerScheduler) OnTimeout(delay time.Duration, task Task, log *clog.CustomLog, describe func() string) {
	time.AfterFunc(delay, func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic in scheduled task", describe(), r)
			}
		}()

		task()
	})
}
