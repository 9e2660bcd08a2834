package main

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tbourn/go-pet-adoption/internal/config"
)

func TestServeUntilDone_DrainsInFlightRequests(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	reqCtxErr := make(chan error, 1)
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
		reqCtxErr <- r.Context().Err()
		w.WriteHeader(http.StatusNoContent)
	})

	srv := newHTTPServer(config.Config{Port: "0"}, h)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, stop := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serveUntilDone(ctx, srv, ln, 5*time.Second) }()

	type result struct {
		status int
		err    error
	}
	resCh := make(chan result, 1)
	go func() {
		resp, err := http.Get("http://" + ln.Addr().String() + "/")
		if err != nil {
			resCh <- result{err: err}
			return
		}
		_ = resp.Body.Close()
		resCh <- result{status: resp.StatusCode}
	}()

	<-started
	// Shutdown signal while the request is still running.
	stop()

	select {
	case err := <-done:
		t.Fatalf("returned before the request finished: %v", err)
	case <-time.After(100 * time.Millisecond):
	}

	close(release)
	require.NoError(t, <-reqCtxErr, "request context must survive the signal")
	res := <-resCh
	require.NoError(t, res.err)
	require.Equal(t, http.StatusNoContent, res.status)
	require.NoError(t, <-done)
}

func TestServeUntilDone_DrainTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	started := make(chan struct{})
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
	})

	srv := newHTTPServer(config.Config{}, h)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, stop := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serveUntilDone(ctx, srv, ln, 50*time.Millisecond) }()
	go func() {
		if resp, err := http.Get("http://" + ln.Addr().String() + "/"); err == nil {
			_ = resp.Body.Close()
		}
	}()

	<-started
	stop()
	require.ErrorIs(t, <-done, context.DeadlineExceeded)
}

func TestNewHTTPServer_UsesConfig(t *testing.T) {
	cfg := config.Config{
		Port:              "8080",
		ReadTimeout:       time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      3 * time.Second,
		IdleTimeout:       4 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}
	srv := newHTTPServer(cfg, http.NotFoundHandler())
	require.Equal(t, ":8080", srv.Addr)
	require.Equal(t, 2*time.Second, srv.ReadHeaderTimeout)
	require.Equal(t, 4*time.Second, srv.IdleTimeout)
	require.Equal(t, 1<<16, srv.MaxHeaderBytes)
	require.Nil(t, srv.BaseContext)
}
