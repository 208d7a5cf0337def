package consumer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	mu      sync.Mutex
	failIDs map[string]error
	ctxErrs map[string]error
}

func newStubService(failIDs map[string]error) *stubService {
	return &stubService{
		failIDs: failIDs,
		ctxErrs: map[string]error{},
	}
}

func (s *stubService) ProcessMessage(ctx context.Context, messageID string, _ []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ctxErrs[messageID] = ctx.Err()

	return s.failIDs[messageID]
}

type recordingAcknowledger struct {
	mu     sync.Mutex
	acked  []uint64
	nacked []uint64
}

func (a *recordingAcknowledger) Ack(tag uint64, _ bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acked = append(a.acked, tag)

	return nil
}

func (a *recordingAcknowledger) Nack(tag uint64, _ bool, _ bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nacked = append(a.nacked, tag)

	return nil
}

func (a *recordingAcknowledger) Reject(uint64, bool) error {
	return nil
}

func (a *recordingAcknowledger) settled() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return len(a.acked) + len(a.nacked)
}

func newTestConsumer(svc service) *Consumer {
	return &Consumer{
		service: svc,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func TestConsumeFailedDeliveryDoesNotBlockLaterOnes(t *testing.T) {
	svc := newStubService(map[string]error{
		"msg-1": errors.New("smtp unavailable"),
	})
	c := newTestConsumer(svc)

	ack := &recordingAcknowledger{}
	msgs := make(chan amqp.Delivery, 2)
	msgs <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, MessageId: "msg-1"}
	msgs <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 2, MessageId: "msg-2"}

	go c.consume(context.Background(), msgs)

	require.Eventually(t, func() bool {
		return ack.settled() == 2
	}, 2*time.Second, 10*time.Millisecond)

	close(c.stop)
	<-c.done

	ack.mu.Lock()
	defer ack.mu.Unlock()
	assert.Equal(t, []uint64{1}, ack.nacked, "failing delivery must be requeued")
	assert.Equal(t, []uint64{2}, ack.acked, "healthy delivery must be acked")

	svc.mu.Lock()
	defer svc.mu.Unlock()
	require.NoError(t, svc.ctxErrs["msg-2"],
		"a delivery after a failed one must run with a live context")
}

func TestConsumeAcksEveryHealthyDelivery(t *testing.T) {
	svc := newStubService(nil)
	c := newTestConsumer(svc)

	ack := &recordingAcknowledger{}
	msgs := make(chan amqp.Delivery, 3)
	for tag := uint64(1); tag <= 3; tag++ {
		msgs <- amqp.Delivery{Acknowledger: ack, DeliveryTag: tag, MessageId: "ok"}
	}

	go c.consume(context.Background(), msgs)

	require.Eventually(t, func() bool {
		return ack.settled() == 3
	}, 2*time.Second, 10*time.Millisecond)

	close(c.stop)
	<-c.done

	ack.mu.Lock()
	defer ack.mu.Unlock()
	assert.Len(t, ack.acked, 3)
	assert.Empty(t, ack.nacked)
}
