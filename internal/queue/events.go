package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventsExchange = "pod.events"
	EventsQueue    = "pod.notifications"

	EmailJobsExchange = "pod.email_jobs"
	EmailJobsQueue    = "pod.email_jobs.send"
	EmailJobsDLQ      = "pod.email_jobs.dlq"
	EmailJobsRK       = "send"
	EmailJobsDeadRK   = "dead"
)

const (
	EventOrderCreated      = "order.created"
	EventParticipantJoined = "group_order.participant_joined"
)

type OrderEvent struct {
	Type        string    `json:"type"`
	OrderID     int64     `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	Participant string    `json:"participant,omitempty"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// EnsureEventsTopology declares the order event fanout: a topic exchange the
// API publishes to and a worker queue bound to every order.* routing key.
func EnsureEventsTopology(ctx context.Context, qc *Client) error {
	if qc == nil {
		return nil
	}
	if err := qc.EnsureExchange(EventsExchange); err != nil {
		return err
	}
	if _, err := qc.EnsureQueue(EventsQueue); err != nil {
		return err
	}
	if err := qc.BindQueue(EventsQueue, EventsExchange, "order.#"); err != nil {
		return err
	}
	return qc.BindQueue(EventsQueue, EventsExchange, "group_order.#")
}

// EnsureEmailJobsTopology declares the direct exchange that carries rendered
// email jobs for the external sender, with a dead-letter queue for jobs that
// exhaust their retries.
func EnsureEmailJobsTopology(ctx context.Context, qc *Client) error {
	if qc == nil {
		return nil
	}

	if err := qc.EnsureExchangeKind(EmailJobsExchange, "direct"); err != nil {
		return err
	}

	if _, err := qc.EnsureQueue(EmailJobsDLQ); err != nil {
		return err
	}
	if err := qc.BindQueue(EmailJobsDLQ, EmailJobsExchange, EmailJobsDeadRK); err != nil {
		return err
	}

	_, err := qc.EnsureQueueWithArgs(EmailJobsQueue, amqp.Table{
		"x-dead-letter-exchange":    EmailJobsExchange,
		"x-dead-letter-routing-key": EmailJobsDeadRK,
	})
	if err != nil {
		return err
	}
	return qc.BindQueue(EmailJobsQueue, EmailJobsExchange, EmailJobsRK)
}

// PublishOrderEvent is best-effort from the API's point of view; callers log
// failures but never fail the request over them.
func PublishOrderEvent(ctx context.Context, qc *Client, evt OrderEvent) error {
	if qc == nil {
		return nil
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	return qc.PublishJSON(ctx, EventsExchange, evt.Type, evt)
}

// ProcessEventToJobs translates an order event into concrete email jobs.
// order.created produces a confirmation email to the buyer; a participant
// join on a group order produces a heads-up email to the order host.
func ProcessEventToJobs(ctx context.Context, db *pgxpool.Pool, qc *Client, body []byte) error {
	if db == nil || qc == nil {
		return nil
	}

	var evt OrderEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		return err
	}
	if strings.TrimSpace(evt.Type) == "" {
		// unknown envelope
		return nil
	}

	switch evt.Type {
	case EventOrderCreated:
		return enqueueConfirmationEmail(ctx, db, qc, evt)
	case EventParticipantJoined:
		return enqueueParticipantJoinedEmail(ctx, db, qc, evt)
	default:
		return nil
	}
}

func enqueueConfirmationEmail(ctx context.Context, db *pgxpool.Pool, qc *Client, evt OrderEvent) error {
	var (
		email        string
		firstName    string
		total        float64
		deliveryDate string
		deliveryTime string
		shareToken   *string
	)
	query := `
		select customer_email, coalesce(customer_first_name, ''), total::float8,
		       coalesce(delivery_date, ''), coalesce(delivery_time, ''), share_token
		from orders
		where id = $1
	`
	if err := db.QueryRow(ctx, query, evt.OrderID).Scan(&email, &firstName, &total, &deliveryDate, &deliveryTime, &shareToken); err != nil {
		return err
	}

	email = strings.TrimSpace(email)
	if email == "" {
		return nil
	}

	job := map[string]any{
		"kind":         "email.order_confirmation",
		"to":           email,
		"firstName":    firstName,
		"orderNumber":  evt.OrderNumber,
		"total":        fmt.Sprintf("%.2f", total),
		"deliveryDate": deliveryDate,
		"deliveryTime": deliveryTime,
		"createdAt":    time.Now().UTC().Format(time.RFC3339),
		"attempt":      1,
	}
	if shareToken != nil && *shareToken != "" {
		job["shareToken"] = *shareToken
	}
	return qc.PublishJSON(ctx, EmailJobsExchange, EmailJobsRK, job)
}

func enqueueParticipantJoinedEmail(ctx context.Context, db *pgxpool.Pool, qc *Client, evt OrderEvent) error {
	var (
		hostEmail string
		hostName  string
	)
	query := `
		select customer_email, coalesce(customer_first_name, '')
		from orders
		where id = $1 and group_order_enabled
	`
	if err := db.QueryRow(ctx, query, evt.OrderID).Scan(&hostEmail, &hostName); err != nil {
		return err
	}

	hostEmail = strings.TrimSpace(hostEmail)
	if hostEmail == "" {
		return nil
	}

	job := map[string]any{
		"kind":        "email.group_order_participant_joined",
		"to":          hostEmail,
		"hostName":    hostName,
		"orderNumber": evt.OrderNumber,
		"participant": evt.Participant,
		"createdAt":   time.Now().UTC().Format(time.RFC3339),
		"attempt":     1,
	}
	return qc.PublishJSON(ctx, EmailJobsExchange, EmailJobsRK, job)
}
