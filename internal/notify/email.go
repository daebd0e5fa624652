package notify

import (
	"context"
	"time"

	"github.com/clydeside/ticketwatch/internal/model"
	"github.com/samber/oops"
	"github.com/wneessen/go-mail"
)

// EmailChannel delivers match batches as HTML mail over SMTP.
type EmailChannel struct {
	client *mail.Client
	from   string
	to     string
	batch  BatchContext
}

func NewEmailChannel(server string, port int, user, password, to string, batch BatchContext) (*EmailChannel, error) {
	client, err := mail.NewClient(server,
		mail.WithPort(port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(user),
		mail.WithPassword(password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return nil, oops.With("smtp_server", server, "context", "creating mail client").Wrap(err)
	}

	return &EmailChannel{
		client: client,
		from:   user,
		to:     to,
		batch:  batch,
	}, nil
}

func (c *EmailChannel) Name() string { return "email" }

func (c *EmailChannel) Send(ctx context.Context, matches []model.Match) error {
	subject, body := FormatEmail(matches, c.batch, time.Now())
	return c.send(ctx, subject, body, mail.TypeTextHTML)
}

func (c *EmailChannel) Notify(ctx context.Context, subject, text string) error {
	return c.send(ctx, subject, text, mail.TypeTextPlain)
}

func (c *EmailChannel) send(ctx context.Context, subject, body string, contentType mail.ContentType) error {
	msg := mail.NewMsg()
	if err := msg.From(c.from); err != nil {
		return oops.With("context", "setting mail sender").Wrap(err)
	}
	if err := msg.To(c.to); err != nil {
		return oops.With("context", "setting mail recipient").Wrap(err)
	}
	msg.Subject(subject)
	msg.SetBodyString(contentType, body)

	if err := c.client.DialAndSendWithContext(ctx, msg); err != nil {
		return oops.With("subject", subject, "context", "sending mail").Wrap(err)
	}
	return nil
}
