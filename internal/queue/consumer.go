package queue

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/revature/expense-manager/internal/model"
	"github.com/revature/expense-manager/internal/repository"
)

// ApprovalWriter reads and inserts approval rows.  Create returns
// repository.ErrDuplicateApproval when the row already exists.
type ApprovalWriter interface {
	GetByExpenseID(ctx context.Context, expenseID int64) (model.Approval, error)
	Create(ctx context.Context, expenseID int64, status model.Status) (model.Approval, error)
}

// ExpenseLookup confirms that a submitted expense was stored.
type ExpenseLookup interface {
	GetByID(ctx context.Context, id int64) (model.Expense, error)
}

// SubmissionConsumer listens on expense.submitted and gives every new
// expense its pending approval so it shows up in the review queue.
type SubmissionConsumer struct {
	URL       string
	Expenses  ExpenseLookup
	Approvals ApprovalWriter
	Log       zerolog.Logger
	// OnCreated runs after a new pending approval was inserted.  Optional.
	OnCreated func(ctx context.Context)
}

// Run connects to the broker, declares the durable queue and consumes until
// ctx is cancelled.  Dial and channel failures are retried with a capped
// exponential backoff so the HTTP server keeps operating without a broker.
func (c *SubmissionConsumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			c.Log.Warn().Err(err).Dur("retry_in", backoff).Msg("submission consumer: dial failed")
			if !sleepCtx(ctx, backoff) {
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
		c.Log.Warn().Err(err).Msg("submission consumer: consume loop ended; reconnecting")
		if !sleepCtx(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *SubmissionConsumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.Log.Warn().Err(err).Msg("submission consumer: set QoS failed")
	}
	if _, err := ch.QueueDeclare(SubmittedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(SubmittedQueue, "", false, false, false, false, nil)
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
			if err := c.handleMessage(ctx, d.Body); err != nil {
				c.Log.Error().Err(err).Msg("submission consumer: handle message failed")
				_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// handleMessage decodes one submission and inserts its pending approval.
// A redelivered submission whose approval already exists is acknowledged;
// a submission for an expense that was never stored is rejected.
func (c *SubmissionConsumer) handleMessage(ctx context.Context, body []byte) error {
	var ev ExpenseSubmittedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.ExpenseID <= 0 {
		return fmt.Errorf("invalid expense_id %d", ev.ExpenseID)
	}
	if _, err := c.Expenses.GetByID(ctx, ev.ExpenseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("expense %d does not exist", ev.ExpenseID)
		}
		return fmt.Errorf("load expense: %w", err)
	}
	_, err := c.Approvals.GetByExpenseID(ctx, ev.ExpenseID)
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("load approval: %w", err)
	}

	a, err := c.Approvals.Create(ctx, ev.ExpenseID, model.StatusPending)
	if errors.Is(err, repository.ErrDuplicateApproval) {
		c.Log.Debug().Int64("expense_id", ev.ExpenseID).Msg("submission consumer: approval already exists")
		return nil
	}
	if err != nil {
		return fmt.Errorf("create approval: %w", err)
	}
	c.Log.Info().Int64("expense_id", ev.ExpenseID).Int64("approval_id", a.ID).Msg("pending approval created")
	if c.OnCreated != nil {
		c.OnCreated(ctx)
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
