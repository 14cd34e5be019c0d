package ipc

import (
	"encoding/json"
	"math"
	"sync"
	"time"

	"github.com/go-logr/logr"
)

// BackoffHandler throttles repeated resolver calls for the same method
// and parameters, so a resolver subprocess that keeps failing on one
// coordinate doesn't get hammered while it recovers.
type BackoffHandler struct {
	failedRequests   map[requestKey]*backoffTimer
	failedRequestsMu sync.Mutex
	logger           logr.Logger
}

func NewBackoffHandler(log logr.Logger) *BackoffHandler {
	return &BackoffHandler{
		failedRequests: make(map[requestKey]*backoffTimer),
		logger:         log,
	}
}

type requestKey struct {
	method string
	params string
}

func newRequestKey(method string, params *json.RawMessage) requestKey {
	k := requestKey{method: method}
	if params != nil {
		k.params = string(*params)
	}
	return k
}

type backoffTimer struct {
	retries           float64
	lastAttemptedTime *time.Time
	lastDurationTime  time.Duration
}

func (b *backoffTimer) next() time.Duration {
	if b.lastAttemptedTime == nil {
		t := time.Now()
		b.lastAttemptedTime = &t
		b.lastDurationTime = time.Duration(0)
		return b.lastDurationTime
	}

	// if backoff exists but more than a minute has passed since the
	// last attempt, reset it.
	if time.Now().After(b.lastAttemptedTime.Add(b.lastDurationTime).Add(time.Minute)) {
		b.retries = 0
		t := time.Now()
		b.lastAttemptedTime = &t
		b.lastDurationTime = time.Duration(0)
		return b.lastDurationTime
	}

	t := time.Now()
	b.lastAttemptedTime = &t
	b.lastDurationTime = time.Second * time.Duration(math.Pow(2, b.retries))
	if b.lastDurationTime >= 5*time.Minute {
		b.lastDurationTime = 5 * time.Minute
	}
	b.retries++
	return b.lastDurationTime
}

// BeforeRequest sleeps for whatever backoff duration is currently owed
// for method/params before a resolver call is sent.
func (b *BackoffHandler) BeforeRequest(method string, params *json.RawMessage) {
	key := newRequestKey(method, params)

	b.failedRequestsMu.Lock()
	timer, ok := b.failedRequests[key]
	if !ok {
		timer = &backoffTimer{}
		b.failedRequests[key] = timer
	}
	b.failedRequestsMu.Unlock()

	d := timer.next()
	b.logger.V(9).Info("starting backing off request", "method", method, "duration", d)
	time.Sleep(d)
	b.logger.V(9).Info("stopping backing off request", "method", method)
}

// AfterRequest clears method/params' backoff entry once it succeeds;
// a failed call leaves the entry in place so the next attempt backs
// off further.
func (b *BackoffHandler) AfterRequest(method string, params *json.RawMessage, err error) {
	if err != nil {
		return
	}
	key := newRequestKey(method, params)
	b.failedRequestsMu.Lock()
	defer b.failedRequestsMu.Unlock()
	b.logger.V(7).Info("clearing resolver backoff", "method", method)
	delete(b.failedRequests, key)
}
