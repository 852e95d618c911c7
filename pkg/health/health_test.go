package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func probe(t *testing.T, handler http.HandlerFunc) (int, probeResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	var resp probeResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec.Code, resp
}

func TestService_NotReadyUntilFlagged(t *testing.T) {
	s := NewService()

	code, resp := probe(t, s.ReadyHandler)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unhealthy", resp.Status)
	assert.Contains(t, resp.Checks, "startup")

	s.SetReady(true)
	code, resp = probe(t, s.ReadyHandler)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, s.IsReady())
}

func TestService_FailingReadinessCheck(t *testing.T) {
	s := NewService()
	s.SetReady(true)
	s.Register("database", Readiness, time.Second, func(context.Context) error {
		return errors.New("connection refused")
	})

	s.runAll(context.Background())

	code, resp := probe(t, s.ReadyHandler)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "connection refused", resp.Checks["database"])
	assert.False(t, s.IsReady())

	// liveness probe is unaffected by readiness failures
	code, _ = probe(t, s.LiveHandler)
	assert.Equal(t, http.StatusOK, code)
}

func TestService_CheckRecovers(t *testing.T) {
	s := NewService()
	s.SetReady(true)

	fail := true
	s.Register("cache", Readiness, time.Second, func(context.Context) error {
		if fail {
			return errors.New("down")
		}
		return nil
	})

	s.runAll(context.Background())
	assert.False(t, s.IsReady())

	fail = false
	s.runAll(context.Background())
	assert.True(t, s.IsReady())
}

func TestService_StartRunsChecks(t *testing.T) {
	s := NewService()
	ran := make(chan struct{})
	s.Register("probe", Liveness, time.Second, func(context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	})

	s.Start(context.Background(), 10*time.Millisecond)
	defer s.Stop()

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("check did not run")
	}
}

func TestGoroutineCountCheck(t *testing.T) {
	require.NoError(t, GoroutineCountCheck(1_000_000)(context.Background()))
	assert.Error(t, GoroutineCountCheck(0)(context.Background()))
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func TestPingCheck(t *testing.T) {
	require.NoError(t, PingCheck(fakePinger{})(context.Background()))

	err := PingCheck(fakePinger{err: errors.New("refused")})(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refused")
}
