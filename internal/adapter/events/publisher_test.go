package events

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestNoop(t *testing.T) {
	t.Parallel()
	var p Noop
	assert.NoError(t, p.Publish(context.Background(), TopicInquiryCreated, map[string]string{"a": "b"}))
	assert.NoError(t, p.Close())
}

func TestEnvelope_JSON(t *testing.T) {
	t.Parallel()
	env := newEnvelope(TopicReviewSubmitted, map[string]int{"rating": 5})

	raw, err := json.Marshal(env)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "review.submitted", decoded["topic"])
	assert.Equal(t, map[string]any{"rating": float64(5)}, decoded["data"])
	_, err = time.Parse(time.RFC3339Nano, decoded["occurred_at"].(string))
	assert.NoError(t, err)
}

func TestAMQP_PublishRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("rabbitmq tests need docker, skipped in -short mode")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "rabbitmq:3-alpine",
			ExposedPorts: []string{"5672/tcp"},
			WaitingFor:   wait.ForLog("Server startup complete").WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5672")
	require.NoError(t, err)
	url := fmt.Sprintf("amqp://guest:guest@%s:%s/", host, port.Port())

	pub, err := NewAMQP(url, "solarsite.test", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer pub.Close()

	conn, err := amqp.Dial(url)
	require.NoError(t, err)
	defer conn.Close()
	ch, err := conn.Channel()
	require.NoError(t, err)
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	require.NoError(t, err)
	require.NoError(t, ch.QueueBind(q.Name, "inquiry.*", "solarsite.test", false, nil))
	deliveries, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	require.NoError(t, err)

	require.NoError(t, pub.Publish(ctx, TopicInquiryCreated, map[string]string{"name": "Asha"}))

	select {
	case d := <-deliveries:
		assert.Equal(t, TopicInquiryCreated, d.RoutingKey)
		var env map[string]any
		require.NoError(t, json.Unmarshal(d.Body, &env))
		assert.Equal(t, map[string]any{"name": "Asha"}, env["data"])
	case <-time.After(10 * time.Second):
		t.Fatal("no delivery")
	}
}
