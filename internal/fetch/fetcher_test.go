package fetch_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dertown/eventscrape/internal/fetch"
	"github.com/dertown/eventscrape/internal/logger"
)

func TestGetSuccess(t *testing.T) {
	t.Parallel()

	var gotUserAgent, gotReferer string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		gotReferer = r.Header.Get("Referer")
		w.Header().Set("Last-Modified", "Mon, 02 Jan 2006 15:04:05 GMT")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html><body>events</body></html>"))
	}))
	defer server.Close()

	client := fetch.NewClient(0, logger.NewNoOp())
	result, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, "<html><body>events</body></html>", result.Body)
	require.NotNil(t, result.LastModified)
	assert.Equal(t, 2006, result.LastModified.Year())

	assert.Contains(t, gotUserAgent, "Mozilla/5.0", "browser-like user agent is sent")
	assert.NotEmpty(t, gotReferer)
}

func TestGetNoLastModified(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := fetch.NewClient(0, logger.NewNoOp())
	result, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Nil(t, result.LastModified)
}

func TestGetClientErrorNotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := fetch.NewClient(0, logger.NewNoOp())
	_, err := client.Get(context.Background(), server.URL)
	require.ErrorIs(t, err, fetch.ErrHTTPStatus)
	assert.Equal(t, int32(1), calls.Load(), "4xx must not be retried")
}

func TestGetServerErrorRetriedOnce(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("recovered"))
	}))
	defer server.Close()

	client := fetch.NewClient(0, logger.NewNoOp())
	result, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "recovered", result.Body)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGetServerErrorTwiceFails(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := fetch.NewClient(0, logger.NewNoOp())
	_, err := client.Get(context.Background(), server.URL)
	require.ErrorIs(t, err, fetch.ErrHTTPStatus)
	assert.Equal(t, int32(2), calls.Load(), "transient failures get exactly one retry")
}

func TestGetContextCancelledDuringRetry(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	client := fetch.NewClient(0, logger.NewNoOp())
	_, err := client.Get(ctx, server.URL)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHeadReturnsLastModified(t *testing.T) {
	t.Parallel()

	var gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		w.Header().Set("Last-Modified", "Mon, 02 Jan 2006 15:04:05 GMT")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := fetch.NewClient(0, logger.NewNoOp())
	lastModified, err := client.Head(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, http.MethodHead, gotMethod)
	require.NotNil(t, lastModified)
	assert.Equal(t, 2006, lastModified.Year())
}

func TestHeadNoLastModified(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := fetch.NewClient(0, logger.NewNoOp())
	lastModified, err := client.Head(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Nil(t, lastModified)
}

func TestHeadErrorStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := fetch.NewClient(0, logger.NewNoOp())
	_, err := client.Head(context.Background(), server.URL)
	require.ErrorIs(t, err, fetch.ErrHTTPStatus)
	assert.Equal(t, int32(1), calls.Load(), "HEAD checks are not retried")
}

func TestGetTimeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := fetch.NewClient(time.Second, logger.NewNoOp())
	_, err := client.Get(ctx, server.URL)
	require.Error(t, err)
}
