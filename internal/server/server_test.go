package server

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNew_Address(t *testing.T) {
	s := New("127.0.0.1", "8081", http.NotFoundHandler(), time.Second, zaptest.NewLogger(t))

	assert.Equal(t, "127.0.0.1:8081", s.server.Addr)
	assert.Zero(t, s.server.WriteTimeout)
}

func TestShutdown_CancelsRequestContexts(t *testing.T) {
	s := New("127.0.0.1", "0", http.NotFoundHandler(), time.Second, zaptest.NewLogger(t))
	ctx := s.server.BaseContext(nil)
	require.NoError(t, ctx.Err())

	require.NoError(t, s.Shutdown())
	assert.Error(t, ctx.Err())
}
