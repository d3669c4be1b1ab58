package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/queue"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/pkg/logger"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/pkg/prom"
)

var errLockHeld = errors.New("delivery lock held by another consumer")

var headerSafe = strings.NewReplacer("\r", " ", "\n", " ")

// Processor turns contact.created stream entries into e-mails.
type Processor struct {
	mailer      Mailer
	idempotency *Idempotency
	recipients  []string
	log         *logger.ZapLogger
}

func NewProcessor(mailer Mailer, idempotency *Idempotency, recipients []string) *Processor {
	return &Processor{
		mailer:      mailer,
		idempotency: idempotency,
		recipients:  recipients,
		log:         logger.GetLogger().With("component", "notifier"),
	}
}

// Handle is a queue.MessageHandler. A nil return acks the entry, an error
// leaves it pending for redelivery.
func (p *Processor) Handle(ctx context.Context, msg *queue.Message) error {
	if t := msg.Metadata["type"]; t != "" && t != queue.EventContactCreated {
		p.log.Warn("unknown event type, dropping", "id", msg.ID, "type", t)
		return nil
	}

	var n queue.ContactNotification
	if err := json.Unmarshal(msg.Data, &n); err != nil {
		prom.IncNotifierDelivery(prom.ResultInvalid)
		p.log.Error("malformed notification", "id", msg.ID, "error", err)
		return fmt.Errorf("decode notification: %w", err)
	}

	key := strconv.FormatInt(n.ContactID, 10)
	delivery, err := p.idempotency.Acquire(ctx, key)
	switch {
	case errors.Is(err, ErrAlreadyDelivered):
		p.log.Info("notification already delivered, skipping", "contact_id", n.ContactID)
		return nil
	case errors.Is(err, ErrMaxRetriesExceeded):
		prom.IncNotifierDelivery(prom.ResultDead)
		p.log.Error("giving up on notification", "contact_id", n.ContactID, "error", err)
		return nil
	case errors.Is(err, ErrLockAcquireFailed):
		return errLockHeld
	case err != nil:
		return err
	}

	if err := p.mailer.Send(ctx, p.compose(n)); err != nil {
		prom.IncNotifierDelivery(prom.ResultRetry)
		p.log.Warn("notification send failed", "contact_id", n.ContactID, "attempt", delivery.RetryCount+1, "error", err)
		if mfErr := p.idempotency.MarkFailed(ctx, delivery); mfErr != nil {
			p.log.Warn("release after failure", "contact_id", n.ContactID, "error", mfErr)
		}
		return err
	}

	if err := p.idempotency.MarkDelivered(ctx, delivery); err != nil {
		// the mail went out; a redelivery may send it twice
		p.log.Warn("mark delivered failed", "contact_id", n.ContactID, "error", err)
	}
	prom.IncNotifierDelivery(prom.ResultSent)
	p.log.Info("notification sent", "contact_id", n.ContactID, "recipients", len(p.recipients))
	return nil
}

// compose builds the message. Name and message were HTML-escaped on
// submission and are embedded as is.
func (p *Processor) compose(n queue.ContactNotification) Mail {
	email := html.EscapeString(n.Email)
	body := fmt.Sprintf(
		"<p><strong>New contact message #%d</strong></p>"+
			"<p>From: %s &lt;%s&gt;<br>Received: %s</p>"+
			"<p>%s</p>",
		n.ContactID, n.Name, email, n.Timestamp.UTC().Format(time.RFC1123), n.Message,
	)
	return Mail{
		To:      p.recipients,
		ReplyTo: n.Email,
		Subject: "New contact message from " + headerSafe.Replace(html.UnescapeString(n.Name)),
		Body:    body,
	}
}
