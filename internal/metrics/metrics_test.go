package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRegister_Idempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	h, err := Register(Config{Registry: reg})
	require.NoError(t, err)
	require.NotNil(t, h)

	_, err = Register(Config{Registry: reg})
	require.NoError(t, err)
}

func TestEmailsSentCounter(t *testing.T) {
	before := testutil.ToFloat64(EmailsSent.WithLabelValues("sent"))
	EmailsSent.WithLabelValues("sent").Inc()
	require.Equal(t, before+1, testutil.ToFloat64(EmailsSent.WithLabelValues("sent")))
}
