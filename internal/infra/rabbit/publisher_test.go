package rabbit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quran-quiz-service/internal/domain"
	"quran-quiz-service/internal/game"
)

type fakeChannel struct {
	exchange   string
	kind       string
	durable    bool
	declareErr error

	published []published
	closed    bool
}

type published struct {
	exchange, key string
	msg           amqp.Publishing
}

func (c *fakeChannel) ExchangeDeclare(name, kind string, durable, _, _, _ bool, _ amqp.Table) error {
	c.exchange, c.kind, c.durable = name, kind, durable
	return c.declareErr
}

func (c *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	c.published = append(c.published, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

func TestPublisherDeclaresDurableTopicExchange(t *testing.T) {
	ch := &fakeChannel{}
	_, err := NewPublisher(ch)
	require.NoError(t, err)
	assert.Equal(t, "quiz.events", ch.exchange)
	assert.Equal(t, amqp.ExchangeTopic, ch.kind)
	assert.True(t, ch.durable)
}

func TestPublisherDeclareError(t *testing.T) {
	_, err := NewPublisher(&fakeChannel{declareErr: errors.New("access refused")})
	require.Error(t, err)
}

func TestPublishSendsSummaryJSON(t *testing.T) {
	ch := &fakeChannel{}
	p, err := NewPublisher(ch)
	require.NoError(t, err)

	summary := game.Summary{
		SessionID:      "s-1",
		Mode:           domain.ModeGuessSurah,
		Score:          20,
		TotalPoints:    100,
		CorrectCount:   2,
		TotalQuestions: 10,
		Percentage:     20,
		Stars:          1,
		Surrendered:    true,
		FinishedAt:     time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, p.Publish(context.Background(), summary))

	require.Len(t, ch.published, 1)
	got := ch.published[0]
	assert.Equal(t, "quiz.events", got.exchange)
	assert.Equal(t, "session.finished", got.key)
	assert.Equal(t, "application/json", got.msg.ContentType)
	assert.Equal(t, amqp.Persistent, got.msg.DeliveryMode)

	var decoded game.Summary
	require.NoError(t, json.Unmarshal(got.msg.Body, &decoded))
	assert.Equal(t, summary.SessionID, decoded.SessionID)
	assert.True(t, decoded.Surrendered)

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}
