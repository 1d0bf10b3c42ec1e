package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/honeynil/prop-token-ledger/internal/infrastructure/observability"
	"github.com/honeynil/prop-token-ledger/internal/models"
	"github.com/segmentio/kafka-go"
)

//go:generate mockgen -source=consumer.go -destination=mocks/consumer.go -package=mocks

// Auditor recomputes stored counters from their sources of truth.
type Auditor interface {
	AuditAccount(ctx context.Context, userID string) (*models.AccountAudit, error)
	AuditProperty(ctx context.Context, propertyID string) (*models.PropertyAudit, error)
}

// Consumer reads ledger events and audits the accounts and properties they touched.
type Consumer struct {
	reader  *kafka.Reader
	auditor Auditor
}

func NewConsumer(brokers []string, topic, groupID string, auditor Auditor) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  groupID,
			MinBytes: 10e3,
			MaxBytes: 10e6,
		}),
		auditor: auditor,
	}
}

func (c *Consumer) Consume(ctx context.Context) {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				slog.Info("Kafka consumer stopped", "topic", c.reader.Config().Topic)
				return
			}
			slog.Error("failed to read Kafka message", "topic", c.reader.Config().Topic, "error", err)
			continue
		}

		if err := c.HandleMessage(ctx, msg); err != nil {
			slog.Error("failed to handle ledger event", "topic", msg.Topic, "offset", msg.Offset, "error", err)
		}
	}
}

// HandleMessage audits the account (and property, for spends) behind a completed
// event. Drift is logged and counted; it does not stop consumption.
func (c *Consumer) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var event models.LedgerEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal ledger event: %w", err)
	}
	if event.UserID == "" {
		return fmt.Errorf("ledger event %s has no user_id", event.EventID)
	}

	slog.Debug("ledger event received", "event_id", event.EventID, "transaction_id", event.TransactionID, "status", event.Status)
	if event.Status != models.StatusCompleted {
		return nil
	}

	audit, err := c.auditor.AuditAccount(ctx, event.UserID)
	if err != nil {
		return fmt.Errorf("failed to audit account %s: %w", event.UserID, err)
	}
	if !audit.Consistent {
		observability.LedgerAuditDrift.WithLabelValues("account").Inc()
		slog.Error("account drift detected",
			"user_id", event.UserID,
			"transaction_id", event.TransactionID,
			"balance", audit.Account.Balance,
			"total_purchased", audit.Account.TotalPurchased,
			"total_spent", audit.Account.TotalSpent,
			"journal_purchased", audit.JournalPurchased,
			"journal_spent", audit.JournalSpent)
	}

	if event.Type != models.TypeSpend || event.PropertyID == "" {
		return nil
	}
	propertyAudit, err := c.auditor.AuditProperty(ctx, event.PropertyID)
	if err != nil {
		return fmt.Errorf("failed to audit property %s: %w", event.PropertyID, err)
	}
	if !propertyAudit.Consistent {
		observability.LedgerAuditDrift.WithLabelValues("property").Inc()
		slog.Error("property drift detected",
			"property_id", event.PropertyID,
			"total_tokens", propertyAudit.TotalTokens,
			"available_tokens", propertyAudit.AvailableTokens,
			"active_invested_tokens", propertyAudit.ActiveInvestedTokens)
	}
	return nil
}

func (c *Consumer) Close() error {
	if c.reader == nil {
		return nil
	}
	return c.reader.Close()
}
