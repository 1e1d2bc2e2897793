package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

const eventSendBufferSize = 16

// EventStreamService fans committed workflow events out to connected admin
// dashboards. Events also cross node boundaries via NATS when a connection is
// configured, so every node sees submissions handled elsewhere.
type EventStreamService interface {
	WorkflowEventPublisher
	Subscribe() (<-chan WorkflowEvent, func())
	ServeConnection(conn *websocket.Conn)
	Start(ctx context.Context)
}

type eventStreamService struct {
	nats        *nats.Conn
	natsSubject string
	logger      zerolog.Logger
	nodeID      string

	mu          sync.RWMutex
	subscribers map[chan WorkflowEvent]struct{}
}

type busEnvelope struct {
	Source string        `json:"source"`
	Event  WorkflowEvent `json:"event"`
	SentAt time.Time     `json:"sent_at"`
}

// NewEventStreamService constructs the event stream. A nil NATS connection
// keeps fan-out local to this node.
func NewEventStreamService(natsConn *nats.Conn, channelBase string, logger zerolog.Logger) EventStreamService {
	subject := ""
	if channelBase != "" {
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".caf.events"
	}

	return &eventStreamService{
		nats:        natsConn,
		natsSubject: subject,
		logger:      logger.With().Str("component", "event_stream_service").Logger(),
		nodeID:      uuid.NewString(),
		subscribers: make(map[chan WorkflowEvent]struct{}),
	}
}

func (s *eventStreamService) Start(ctx context.Context) {
	if s.nats == nil || s.natsSubject == "" {
		return
	}

	sub, err := s.nats.Subscribe(s.natsSubject, func(msg *nats.Msg) {
		var envelope busEnvelope
		if err := json.Unmarshal(msg.Data, &envelope); err != nil {
			s.logger.Warn().Err(err).Msg("failed to decode bus event")
			return
		}
		if envelope.Source == s.nodeID {
			return
		}
		s.fanOut(envelope.Event)
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to subscribe to event subject")
		return
	}

	go func() {
		<-ctx.Done()
		_ = sub.Unsubscribe()
	}()
}

func (s *eventStreamService) PublishWorkflowEvent(ctx context.Context, event WorkflowEvent) {
	s.fanOut(event)

	if s.nats == nil || s.natsSubject == "" {
		return
	}

	payload, err := json.Marshal(busEnvelope{Source: s.nodeID, Event: event, SentAt: time.Now().UTC()})
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode bus event")
		return
	}
	if err := s.nats.Publish(s.natsSubject, payload); err != nil {
		s.logger.Warn().Err(err).Str("kind", event.Kind).Msg("failed to publish workflow event")
	}
}

func (s *eventStreamService) Subscribe() (<-chan WorkflowEvent, func()) {
	ch := make(chan WorkflowEvent, eventSendBufferSize)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}

	return ch, cancel
}

// ServeConnection streams events over one websocket until the peer goes
// away. Slow consumers miss events rather than block the workflow.
func (s *eventStreamService) ServeConnection(conn *websocket.Conn) {
	events, cancel := s.Subscribe()
	defer cancel()
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (s *eventStreamService) fanOut(event WorkflowEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			s.logger.Debug().Str("kind", event.Kind).Msg("dropping event for slow subscriber")
		}
	}
}
