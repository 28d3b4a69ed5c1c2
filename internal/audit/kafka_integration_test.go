//go:build integration

package audit_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"carelink/internal/audit"
	"carelink/pkg/testutil/containers"
)

func TestKafkaPublisher(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	broker := containers.NewRedpandaContainer(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	const topic = "carelink.audit.test"
	publisher, err := audit.NewKafkaPublisher(ctx, []string{broker.Broker}, topic, logger)
	require.NoError(t, err)

	event := audit.Event{
		Kind:      audit.EventLogin,
		AccountID: "account-1",
		Attrs:     map[string]string{"ip": "203.0.113.7"},
	}
	require.NoError(t, publisher.Emit(ctx, event))
	publisher.Close(ctx)

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker.Broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetchCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	fetches := consumer.PollFetches(fetchCtx)
	require.NoError(t, fetches.Err())

	records := fetches.Records()
	require.Len(t, records, 1)
	require.Equal(t, "account-1", string(records[0].Key))

	var got audit.Event
	require.NoError(t, json.Unmarshal(records[0].Value, &got))
	require.Equal(t, audit.EventLogin, got.Kind)
	require.False(t, got.Timestamp.IsZero())
	require.False(t, got.ID.IsNil())
}
