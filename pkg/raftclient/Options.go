package raftclient

import "os"
import "strconv"


//=========================================== Options


/*
	Options:
		the one recognized configuration option: maxOutstandingRequests,
		the admission gate's capacity.
*/

type Options struct {
	MaxOutstandingRequests int
}

const DefaultMaxOutstandingRequests = 256

func DefaultOptions() Options {
	return Options{MaxOutstandingRequests: DefaultMaxOutstandingRequests}
}

/*
	OptionsFromEnv:
		reads RAFTCLIENT_MAX_OUTSTANDING_REQUESTS, extending the usual
		literal-Opts-struct-in-main idiom with a thin env loader since
		cmd/raftclient is meant to run standalone without a hand-edited
		Opts literal for every deployment.
*/

func OptionsFromEnv() Options {
	opts := DefaultOptions()

	if raw, ok := os.LookupEnv("RAFTCLIENT_MAX_OUTSTANDING_REQUESTS"); ok {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			opts.MaxOutstandingRequests = parsed
		}
	}

	return opts
}
