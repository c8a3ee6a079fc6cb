package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReady(t *testing.T) {
	ok := PingFunc(func(context.Context) error { return nil })
	down := PingFunc(func(context.Context) error { return errors.New("connection refused") })

	res := NewService(Deps{Checks: map[string]Pinger{"db": ok, "cache": ok}}).Ready(context.Background())
	assert.True(t, res.Ready())
	assert.Equal(t, map[string]string{"db": "ok", "cache": "ok"}, res.Checks)

	res = NewService(Deps{Checks: map[string]Pinger{"db": ok, "cache": down}}).Ready(context.Background())
	assert.False(t, res.Ready())
	assert.Equal(t, "ok", res.Checks["db"])
	assert.Contains(t, res.Checks["cache"], "connection refused")
}
