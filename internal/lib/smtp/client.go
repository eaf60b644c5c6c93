// Package smtp отправляет письма уведомлений через SMTP.
package smtp

import (
	"context"
	"io"
)

// Client — команды SMTP-сессии, нужные для отправки письма.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// Dialer открывает SMTP-сессию и знает адрес отправителя.
type Dialer interface {
	Dial(ctx context.Context) (Client, error)
	From() string
}
