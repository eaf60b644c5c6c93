package smtp

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"time"

	"github.com/magabrotheeeer/content-platform/internal/config"
	"github.com/magabrotheeeer/content-platform/internal/lib/sl"
)

// implicitTLSPort — порт SMTPS, где TLS поднимается до приветствия сервера.
const implicitTLSPort = "465"

// Transport открывает сессии к SMTP-серверу из конфига.
type Transport struct {
	cfg     config.SMTP
	log     *slog.Logger
	timeout time.Duration
}

// NewTransport создает новый экземпляр Transport.
func NewTransport(cfg config.SMTP, log *slog.Logger) *Transport {
	return &Transport{
		cfg:     cfg,
		log:     log.With(slog.String("component", "smtp"), slog.String("host", cfg.SMTPHost)),
		timeout: 10 * time.Second,
	}
}

// Dial подключается к серверу. На порту 465 используется неявный TLS,
// на остальных обязателен STARTTLS. Без SMTPUser аутентификация пропускается.
func (t *Transport) Dial(ctx context.Context) (Client, error) {
	const op = "smtp.Dial"

	addr := net.JoinHostPort(t.cfg.SMTPHost, t.cfg.SMTPPort)
	tlsConfig := &tls.Config{
		ServerName: t.cfg.SMTPHost,
		MinVersion: tls.VersionTLS12,
	}

	dialer := &net.Dialer{Timeout: t.timeout}
	var (
		conn net.Conn
		err  error
	)
	if t.cfg.SMTPPort == implicitTLSPort {
		conn, err = (&tls.Dialer{NetDialer: dialer, Config: tlsConfig}).DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		t.log.Error("failed to dial SMTP server", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, t.cfg.SMTPHost)
	if err != nil {
		_ = conn.Close()
		t.log.Error("failed to create SMTP client", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = t.handshake(client, tlsConfig); err != nil {
		if closeErr := client.Close(); closeErr != nil {
			t.log.Error("failed to close client", sl.Err(closeErr))
		}
		t.log.Error("smtp handshake failed", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return client, nil
}

func (t *Transport) handshake(client *smtp.Client, tlsConfig *tls.Config) error {
	if t.cfg.SMTPPort != implicitTLSPort {
		if ok, _ := client.Extension("STARTTLS"); !ok {
			return fmt.Errorf("server does not support STARTTLS")
		}
		if err := client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}
	if t.cfg.SMTPUser == "" {
		return nil
	}
	auth := smtp.PlainAuth("", t.cfg.SMTPUser, t.cfg.SMTPPass, t.cfg.SMTPHost)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	return nil
}

// From возвращает адрес отправителя.
func (t *Transport) From() string {
	return t.cfg.SMTPUser
}
