package amqp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dropDatabas3/hellomail/internal/queue"
)

type fakeAck struct {
	acked, nacked, requeued bool
}

func (f *fakeAck) Ack(bool) error {
	f.acked = true
	return nil
}

func (f *fakeAck) Nack(_ bool, requeue bool) error {
	f.nacked = true
	f.requeued = requeue
	return nil
}

func TestAck_Outcomes(t *testing.T) {
	job := queue.Job{CampaignID: "c1"}
	log := zap.NewNop()
	var dropped []string
	onDrop := func(_ context.Context, j queue.Job, _ error) { dropped = append(dropped, j.CampaignID) }

	ok := &fakeAck{}
	ack(context.Background(), log, ok, job, func(context.Context, queue.Job) error { return nil }, onDrop)
	assert.True(t, ok.acked)
	assert.False(t, ok.nacked)

	transient := &fakeAck{}
	ack(context.Background(), log, transient, job, func(context.Context, queue.Job) error { return errors.New("db down") }, onDrop)
	assert.True(t, transient.nacked)
	assert.True(t, transient.requeued)

	perm := &fakeAck{}
	ack(context.Background(), log, perm, job, func(context.Context, queue.Job) error {
		return queue.Permanent(errors.New("gone"))
	}, onDrop)
	assert.True(t, perm.nacked)
	assert.False(t, perm.requeued)

	panicky := &fakeAck{}
	ack(context.Background(), log, panicky, job, func(context.Context, queue.Job) error { panic("boom") }, onDrop)
	assert.True(t, panicky.nacked)
	assert.False(t, panicky.requeued)

	// sólo los rechazos sin requeue avisan
	assert.Equal(t, []string{"c1", "c1"}, dropped)
}

func TestEncodeDecode(t *testing.T) {
	b, err := Encode(queue.Job{CampaignID: "c1", Attempt: 2})
	require.NoError(t, err)
	j, err := Decode(b)
	require.NoError(t, err)
	assert.Equal(t, "c1", j.CampaignID)
	assert.Equal(t, 2, j.Attempt)

	_, err = Decode([]byte(`{"attempt":1}`))
	require.Error(t, err)
	_, err = Decode([]byte(`nope`))
	require.Error(t, err)
}

func TestConfigDefaults(t *testing.T) {
	var c Config
	c.defaults()
	assert.Equal(t, "hellomail", c.Exchange)
	assert.Equal(t, "campaign.dispatch", c.RoutingKey)
	assert.Equal(t, "hellomail.campaign.dispatch", c.Queue)
	assert.Equal(t, 4, c.Prefetch)
}
