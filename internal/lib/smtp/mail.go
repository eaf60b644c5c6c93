package smtp

import (
	"context"
	"fmt"
	"strings"
)

// Message — письмо в формате text/plain.
type Message struct {
	To      []string
	Subject string
	Body    string
}

// Build собирает заголовки и тело письма в RFC 5322 виде.
func (m Message) Build(from string) []byte {
	return []byte(strings.Join([]string{
		"From: " + from,
		"To: " + strings.Join(m.To, ", "),
		"Subject: " + m.Subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		m.Body,
	}, "\r\n"))
}

// Send отправляет письмо в отдельной SMTP-сессии.
func Send(ctx context.Context, dialer Dialer, msg Message) error {
	const op = "smtp.Send"
	if len(msg.To) == 0 {
		return fmt.Errorf("%s: no recipients", op)
	}

	client, err := dialer.Dial(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer client.Close()

	from := dialer.From()
	if err := client.Mail(from); err != nil {
		return fmt.Errorf("%s: mail from: %w", op, err)
	}
	for _, addr := range msg.To {
		if err := client.Rcpt(addr); err != nil {
			return fmt.Errorf("%s: rcpt %s: %w", op, addr, err)
		}
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("%s: data: %w", op, err)
	}
	if _, err := wc.Write(msg.Build(from)); err != nil {
		return fmt.Errorf("%s: write body: %w", op, err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("%s: close data: %w", op, err)
	}
	if err := client.Quit(); err != nil {
		return fmt.Errorf("%s: quit: %w", op, err)
	}
	return nil
}
