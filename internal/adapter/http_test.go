package adapter

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-bounty-ledger/internal/domain"
)

func TestRealHTTPClient_PostJSON(t *testing.T) {
	var gotBody string
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotKey = r.Header.Get("Idempotency-Key")
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_, _ = w.Write([]byte(`{"tx":"0xabc"}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(5 * time.Second)
	var out struct {
		Tx string `json:"tx"`
	}
	err := c.PostJSON(context.Background(), srv.URL, map[string]string{"Idempotency-Key": "p-1"}, []byte(`{"a":1}`), &out)
	require.NoError(t, err)
	assert.Equal(t, "0xabc", out.Tx)
	assert.Equal(t, `{"a":1}`, gotBody)
	assert.Equal(t, "p-1", gotKey)
}

func TestRealHTTPClient_ClassifiesStatus(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		wantTransient bool
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, wantTransient: true},
		{name: "server error", status: http.StatusBadGateway, wantTransient: true},
		{name: "bad request", status: http.StatusBadRequest, wantTransient: false},
		{name: "not found", status: http.StatusNotFound, wantTransient: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("nope"))
			}))
			defer srv.Close()

			c := NewHTTPClient(5 * time.Second)
			err := c.GetJSON(context.Background(), srv.URL, nil, &struct{}{})
			require.Error(t, err)
			assert.Equal(t, tt.wantTransient, domain.IsTransient(err))

			var statusErr *StatusError
			require.True(t, errors.As(err, &statusErr))
			assert.Equal(t, tt.status, statusErr.StatusCode)
			assert.Equal(t, "nope", statusErr.Body)
		})
	}
}

func TestRealHTTPClient_TimeoutIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewHTTPClient(20 * time.Millisecond)
	err := c.GetJSON(context.Background(), srv.URL, nil, nil)
	require.Error(t, err)
	assert.True(t, domain.IsTransient(err))
}
