package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"

	"github.com/synccue/synccue/go/internal/outbox"
)

const (
	consumerName          = "synccue-orchestrator"
	consumerMaxDeliver    = 5
	consumerAckWait       = 30 * time.Second
	consumerMaxAckPending = 256
)

// envelope mirrors the relay's published message shape.
type envelope struct {
	EventID   string          `json:"eventId"`
	EventType string          `json:"eventType"`
	SubjectID string          `json:"subjectId"`
	Payload   json.RawMessage `json:"payload"`
}

// WakeConsumer subscribes to relayed timer events and nudges the scheduler
// whenever a deadline may have moved, so a fresh start or adjustment is
// picked up before the idle poll would find it.
type WakeConsumer struct {
	js       jetstream.JetStream
	stream   string
	consumer jetstream.Consumer
	orch     *Orchestrator
}

func NewWakeConsumer(js jetstream.JetStream, streamName string, orch *Orchestrator) *WakeConsumer {
	return &WakeConsumer{
		js:     js,
		stream: streamName,
		orch:   orch,
	}
}

// Start creates (or reuses) the durable consumer and begins delivering.
func (c *WakeConsumer) Start(ctx context.Context) (jetstream.ConsumeContext, error) {
	stream, err := c.js.Stream(ctx, c.stream)
	if err != nil {
		return nil, fmt.Errorf("get stream: %w", err)
	}

	consumerConfig := jetstream.ConsumerConfig{
		Name:          consumerName,
		Durable:       consumerName,
		Description:   "Scheduler wake-up on timer deadline changes",
		FilterSubject: "synccue.events.>",
		DeliverPolicy: jetstream.DeliverNewPolicy,
		AckPolicy:     jetstream.AckExplicitPolicy,
		MaxDeliver:    consumerMaxDeliver,
		AckWait:       consumerAckWait,
		MaxAckPending: consumerMaxAckPending,
		ReplayPolicy:  jetstream.ReplayInstantPolicy,
	}

	consumer, err := stream.Consumer(ctx, consumerName)
	if err != nil {
		consumer, err = stream.CreateConsumer(ctx, consumerConfig)
		if err != nil {
			return nil, fmt.Errorf("create consumer: %w", err)
		}
		log.Info().Msg("created JetStream consumer for orchestrator")
	} else {
		log.Info().Msg("using existing JetStream consumer for orchestrator")
	}
	c.consumer = consumer

	consumeCtx, err := consumer.Consume(func(msg jetstream.Msg) {
		if err := c.processEvent(msg); err != nil {
			log.Error().Err(err).Str("subject", msg.Subject()).Msg("failed to process orchestrator event")
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	})
	if err != nil {
		return nil, fmt.Errorf("start JetStream consumer: %w", err)
	}
	return consumeCtx, nil
}

func (c *WakeConsumer) processEvent(msg jetstream.Msg) error {
	var env envelope
	if err := json.Unmarshal(msg.Data(), &env); err != nil {
		return fmt.Errorf("unmarshal event: %w", err)
	}

	switch env.EventType {
	case outbox.EventTypeTimerStarted, outbox.EventTypeTimerAdjusted, outbox.EventTypeTimerReset:
		log.Debug().
			Str("event_type", env.EventType).
			Str("subject_id", env.SubjectID).
			Msg("deadline may have moved, waking scheduler")
		c.orch.Wake()
	default:
		// Other event types carry no deadline information.
	}
	return nil
}

// ConnectJetStream dials NATS and returns a JetStream handle for consumers.
func ConnectJetStream(natsURL string) (*nats.Conn, jetstream.JetStream, error) {
	opts := []nats.Option{
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(natsURL, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("create JetStream context: %w", err)
	}

	return nc, js, nil
}
