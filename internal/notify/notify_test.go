package notify

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/vnb-store/internal/logx"
)

func TestDispatcherDeliversInBackground(t *testing.T) {
	mem := &Memory{}
	d := NewDispatcher(mem, logx.Nop())

	d.Send(TypeOrderPlaced, "order-1", map[string]string{"order_number": "VNB-1"})
	d.Send(TypeContact, "msg-1", map[string]string{"subject": "hi"})
	require.NoError(t, d.Close())

	got := mem.OfType(TypeOrderPlaced)
	require.Len(t, got, 1)
	assert.Equal(t, "order-1", got[0].Key)
	assert.JSONEq(t, `{"order_number":"VNB-1"}`, string(got[0].Data))
	assert.Len(t, mem.Events(), 2)
}

func TestKafkaNotifierSendsKeyedMessage(t *testing.T) {
	cfg := NewKafkaConfig()
	p := mocks.NewSyncProducer(t, cfg)
	p.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var ev Event
		if err := json.Unmarshal(val, &ev); err != nil {
			return err
		}
		if ev.Type != TypeOrderPlaced || ev.Key != "order-9" {
			return sarama.ErrInvalidMessage
		}
		return nil
	})

	k := NewKafkaNotifier(p, "vnb.events")
	ev, err := NewEvent(TypeOrderPlaced, "order-9", map[string]int{"items": 2})
	require.NoError(t, err)
	require.NoError(t, k.Publish(context.Background(), ev))
	require.NoError(t, k.Close())
}
