//go:build integration

package events

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"

	"loan-intake/internal/common/logger"
	"loan-intake/internal/models"
)

func TestIntegration_OfferIssued(t *testing.T) {
	url := os.Getenv("NATS_URL")
	if url == "" {
		t.Skip("NATS_URL not set, skipping integration test")
	}

	sub, err := nats.Connect(url)
	require.NoError(t, err)
	defer sub.Close()

	received := make(chan *nats.Msg, 1)
	_, err = sub.ChanSubscribe("loan.intake.test.>", received)
	require.NoError(t, err)
	require.NoError(t, sub.Flush())

	p, err := Connect(url, "loan-intake-test", "loan.intake.test", logger.NewTestLogger(t))
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, p.OfferIssued(context.Background(), models.OfferEvent{ApplicationID: "it-1"}))

	select {
	case msg := <-received:
		require.Equal(t, "loan.intake.test.offer.issued", msg.Subject)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for message")
	}
}
