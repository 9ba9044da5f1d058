package sync

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"faculty-sync/internal/config"
	"faculty-sync/internal/httpx"
	"faculty-sync/internal/providers/drupal"
	"faculty-sync/internal/providers/faculty180"
)

func fastRetry() httpx.RetryConfig {
	cfg := httpx.DefaultRetryConfig()
	cfg.Delay = time.Millisecond
	return cfg
}

// drupalTarget counts node-create calls and answers 201 with a fixed nid.
type drupalTarget struct {
	server      *httptest.Server
	loginCalls  atomic.Int32
	createCalls atomic.Int32
	createTimes chan time.Time
	failLogin   bool
}

// createGaps returns the durations between consecutive node creations,
// oldest first.
func (d *drupalTarget) createGaps() []time.Duration {
	var times []time.Time
	for {
		select {
		case ts := <-d.createTimes:
			times = append(times, ts)
		default:
			sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
			var gaps []time.Duration
			for i := 1; i < len(times); i++ {
				gaps = append(gaps, times[i].Sub(times[i-1]))
			}
			return gaps
		}
	}
}

func newDrupalTarget(t *testing.T, failLogin bool) *drupalTarget {
	t.Helper()
	d := &drupalTarget{failLogin: failLogin, createTimes: make(chan time.Time, 32)}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /user/login", func(w http.ResponseWriter, r *http.Request) {
		d.loginCalls.Add(1)
		if d.failLogin {
			http.Error(w, "denied", http.StatusForbidden)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "SESStest", Value: "ok", Path: "/"})
		w.Write([]byte(`{"current_user":{"name":"editor"}}`))
	})
	mux.HandleFunc("GET /rest/session/token", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("tok"))
	})
	mux.HandleFunc("POST /node", func(w http.ResponseWriter, r *http.Request) {
		d.createCalls.Add(1)
		d.createTimes <- time.Now()
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"nid":[{"value":"42"}]}`))
	})

	d.server = httptest.NewServer(mux)
	t.Cleanup(d.server.Close)
	return d
}

func sourceServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	t.Cleanup(s.Close)
	return s
}

func newRunner(t *testing.T, sourceURL, targetURL string) *Runner {
	t.Helper()

	cfg := config.Config{
		FacultyAPIURL:     sourceURL,
		FacultyAPIToken:   "tok",
		DrupalBaseURL:     targetURL,
		DrupalUsername:    "editor",
		DrupalPassword:    "secret",
		DrupalContentType: "faculty_profile",
		HTTPTimeout:       5 * time.Second,
		MaxRetries:        3,
		RetryDelay:        time.Millisecond,
		SyncWorkers:       1,
	}

	target, err := drupal.New(cfg, zap.NewNop())
	require.NoError(t, err)

	return &Runner{
		Cfg:    cfg,
		Source: faculty180.Provider{C: faculty180.New(sourceURL, "tok", 5*time.Second, fastRetry())},
		Target: target,
		Log:    zap.NewNop(),
	}
}

func TestRunSingleRecord(t *testing.T) {
	source := sourceServer(t, `[{"name":"Jane Doe","bio":"PhD"}]`)
	target := newDrupalTarget(t, false)

	runner := newRunner(t, source.URL, target.server.URL)
	report, err := runner.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, report.Total)
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, []string{"42"}, report.NodeIDs)
	assert.Equal(t, "1/1", report.String())
}

func TestRunNoDataIsNoOp(t *testing.T) {
	source := sourceServer(t, `[]`)
	target := newDrupalTarget(t, false)

	runner := newRunner(t, source.URL, target.server.URL)
	report, err := runner.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, report.Total)
	// nothing to sync means no authentication attempt either
	assert.Equal(t, int32(0), target.loginCalls.Load())
}

func TestRunSourceFailureIsNoOp(t *testing.T) {
	source := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad token", http.StatusUnauthorized)
	}))
	t.Cleanup(source.Close)
	target := newDrupalTarget(t, false)

	runner := newRunner(t, source.URL, target.server.URL)
	report, err := runner.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, report.Total)
	assert.Equal(t, int32(0), target.loginCalls.Load())
}

func TestRunSkipsRecordWithoutName(t *testing.T) {
	source := sourceServer(t, `[{"name":"Jane Doe"},{"bio":"no name here"}]`)
	target := newDrupalTarget(t, false)

	runner := newRunner(t, source.URL, target.server.URL)
	report, err := runner.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, "1/2", report.String())
	// the invalid record never reached the target
	assert.Equal(t, int32(1), target.createCalls.Load())
}

func TestRunAbortsOnAuthFailure(t *testing.T) {
	source := sourceServer(t, `[{"name":"Jane Doe"}]`)
	target := newDrupalTarget(t, true)

	runner := newRunner(t, source.URL, target.server.URL)
	_, err := runner.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "authentication failed")
	assert.Equal(t, int32(0), target.createCalls.Load())
}

func TestRunContinuesAfterRejection(t *testing.T) {
	source := sourceServer(t, `[{"name":"A"},{"name":"B"},{"name":"C"}]`)

	var createCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /user/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "SESStest", Value: "ok", Path: "/"})
		w.Write([]byte(`{}`))
	})
	mux.HandleFunc("GET /rest/session/token", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("tok"))
	})
	mux.HandleFunc("POST /node", func(w http.ResponseWriter, r *http.Request) {
		// second record is rejected by the site
		if createCalls.Add(1) == 2 {
			http.Error(w, `{"message":"Unprocessable"}`, http.StatusUnprocessableEntity)
			return
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"nid":[{"value":"7"}]}`))
	})
	target := httptest.NewServer(mux)
	t.Cleanup(target.Close)

	runner := newRunner(t, source.URL, target.URL)
	report, err := runner.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, int32(3), createCalls.Load())
}

func TestRunWithWorkerPool(t *testing.T) {
	source := sourceServer(t, `[{"name":"A"},{"name":"B"},{"name":"C"},{"name":"D"}]`)
	target := newDrupalTarget(t, false)

	runner := newRunner(t, source.URL, target.server.URL)
	runner.Cfg.SyncWorkers = 3

	report, err := runner.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 4, report.Created)
	assert.Equal(t, int32(1), target.loginCalls.Load(), "session is established exactly once")
}

func TestRunThrottlesBetweenCreates(t *testing.T) {
	source := sourceServer(t, `[{"name":"A"},{"name":"B"},{"name":"C"}]`)
	target := newDrupalTarget(t, false)

	runner := newRunner(t, source.URL, target.server.URL)
	runner.Cfg.RecordDelay = 50 * time.Millisecond

	report, err := runner.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, report.Created)

	gaps := target.createGaps()
	require.Len(t, gaps, 2)
	for _, gap := range gaps {
		assert.GreaterOrEqual(t, gap, 35*time.Millisecond, "creates must be spaced by the record delay")
	}
}

func TestRunThrottleAppliesAcrossWorkers(t *testing.T) {
	source := sourceServer(t, `[{"name":"A"},{"name":"B"},{"name":"C"}]`)
	target := newDrupalTarget(t, false)

	runner := newRunner(t, source.URL, target.server.URL)
	runner.Cfg.RecordDelay = 50 * time.Millisecond
	runner.Cfg.SyncWorkers = 3

	report, err := runner.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, report.Created)
	assert.Equal(t, int32(1), target.loginCalls.Load(), "session is established exactly once")

	// the limiter is shared so concurrency must not collapse the spacing
	gaps := target.createGaps()
	require.Len(t, gaps, 2)
	for _, gap := range gaps {
		assert.GreaterOrEqual(t, gap, 35*time.Millisecond, "creates must be spaced by the record delay")
	}
}
