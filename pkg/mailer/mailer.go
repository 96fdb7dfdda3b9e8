// Package mailer sends transactional email. Bodies are written in
// Markdown and rendered to HTML with goldmark; delivery goes through a
// pluggable Sender, with a Resend implementation included.
package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	ErrNoRecipient  = errors.New("mailer: message has no recipient")
	ErrNoSubject    = errors.New("mailer: message has no subject")
	ErrNoBody       = errors.New("mailer: message has no body")
	ErrRenderFailed = errors.New("mailer: markdown rendering failed")
	ErrSendFailed   = errors.New("mailer: send failed")
)

// Message is a fully-prepared email ready for delivery.
type Message struct {
	To      []string
	CC      []string
	BCC     []string
	ReplyTo string
	From    string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers prepared messages. Implementations must be safe for
// concurrent use.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, msg *Message) error

func (f SenderFunc) Send(ctx context.Context, msg *Message) error {
	return f(ctx, msg)
}

// Address formats a display name and email as an RFC 5322 address,
// "Name <email>", or just the email when the name is empty.
func Address(name, email string) string {
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", name, email)
}

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// Compose builds a Message from a Markdown body: the HTML part is the
// rendered Markdown, the text part is the source as-is.
func Compose(subject, body string, to ...string) (*Message, error) {
	if len(to) == 0 {
		return nil, ErrNoRecipient
	}
	if subject == "" {
		return nil, ErrNoSubject
	}
	if body == "" {
		return nil, ErrNoBody
	}

	var buf bytes.Buffer
	if err := markdown.Convert([]byte(body), &buf); err != nil {
		return nil, errors.Join(ErrRenderFailed, err)
	}

	return &Message{
		To:      to,
		Subject: subject,
		HTML:    buf.String(),
		Text:    body,
	}, nil
}
