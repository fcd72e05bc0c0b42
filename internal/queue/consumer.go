package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/iliyamo/meeting-room-booking/internal/metrics"
)

// Consumer reads booking events and appends one line per event to an
// audit log file.
type Consumer struct {
	url      string
	queue    string
	auditLog string
	log      zerolog.Logger
	mu       sync.Mutex
}

func NewConsumer(url, queue, auditLog string, log zerolog.Logger) *Consumer {
	return &Consumer{url: url, queue: queue, auditLog: auditLog, log: log}
}

// Run connects to the broker and consumes until ctx is cancelled. Lost
// connections are re-established with exponential backoff capped at 30s.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Warn().Err(err).Dur("retry_in", backoff).Msg("booking consumer: dial failed")
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn().Err(err).Msg("booking consumer: consume loop ended, reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.Warn().Err(err).Msg("booking consumer: set QoS failed")
	}
	if _, err := declare(ch, c.queue); err != nil {
		return err
	}
	msgs, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.HandleMessage(d.Body); err != nil {
				c.log.Error().Err(err).Msg("booking consumer: handle message failed")
				metrics.EventsConsumedTotal.WithLabelValues("nack").Inc()
				_ = d.Nack(false, false) // do not requeue poison messages
				continue
			}
			metrics.EventsConsumedTotal.WithLabelValues("ack").Inc()
			_ = d.Ack(false)
		}
	}
}

// HandleMessage decodes one event and appends it to the audit log.
func (c *Consumer) HandleMessage(body []byte) error {
	var ev BookingEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Type == "" || ev.BookingID == 0 {
		return fmt.Errorf("incomplete event %q", ev.EventID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(c.auditLog), 0o755); err != nil {
		return fmt.Errorf("mkdir audit dir: %w", err)
	}
	f, err := os.OpenFile(c.auditLog, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatAuditLine(ev)); err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	c.log.Info().Str("type", string(ev.Type)).Uint64("booking_id", ev.BookingID).Msg("booking event recorded")
	return nil
}

// FormatAuditLine renders ev as a single human-readable line.
func FormatAuditLine(ev BookingEvent) string {
	return fmt.Sprintf("[%s] %s | booking_id=%d | user_id=%s | room_id=%s | room=%q | start=%s | end=%s | attendees=%d | members=%d | guests=%d\n",
		ev.OccurredAt.Format(time.RFC3339), ev.Type, ev.BookingID, optID(ev.UserID), optID(ev.RoomID), ev.RoomName,
		ev.Start.Format(time.RFC3339), ev.End.Format(time.RFC3339), ev.BookedNum, ev.MemberCount, ev.GuestCount)
}

func optID(id *uint64) string {
	if id == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *id)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
