//go:build integration

package messaging_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microfin/loanbook/internal/domain/event"
	"github.com/microfin/loanbook/internal/infrastructure/messaging"
	pkgkafka "github.com/microfin/loanbook/pkg/kafka"
	"github.com/microfin/loanbook/pkg/testutil"
)

func TestKafkaEventPublisher_RoundTrip(t *testing.T) {
	ctx := context.Background()
	container := testutil.NewKafkaContainer(ctx, t)
	t.Cleanup(func() { container.Cleanup(t) })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := pkgkafka.Config{Brokers: container.Brokers, ConsumerGroup: "loanbook-test"}

	producer := pkgkafka.NewProducer(cfg)
	t.Cleanup(func() { _ = producer.Close() })
	publisher := messaging.NewKafkaEventPublisher(producer, "loanbook.events.test", logger)

	var (
		mu       sync.Mutex
		received []pkgkafka.Message
	)
	consumer := pkgkafka.NewConsumer(cfg, "loanbook.events.test", func(ctx context.Context, msg pkgkafka.Message) error {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, msg)
		return nil
	}, logger)

	consumerCtx, stopConsumer := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- consumer.Start(consumerCtx) }()

	evt := event.NewLoanCompleted(testutil.TestLoanID1, testutil.Dec("1100"))
	require.NoError(t, publisher.Publish(ctx, evt))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 1
	}, 30*time.Second, 250*time.Millisecond, "event never arrived")

	stopConsumer()
	require.NoError(t, <-done)

	mu.Lock()
	msg := received[0]
	mu.Unlock()

	assert.Equal(t, testutil.TestLoanID1, string(msg.Key))
	assert.Equal(t, "loanbook.loan.completed", msg.Headers["event_type"])
	assert.Equal(t, "Loan", msg.Headers["aggregate_type"])
	assert.NotEmpty(t, msg.Headers["event_id"])

	var payload struct {
		PaidAmount decimal.Decimal `json:"paid_amount"`
	}
	require.NoError(t, json.Unmarshal(msg.Value, &payload))
	assert.True(t, testutil.Dec("1100").Equal(payload.PaidAmount))
}
