// Package notificationsender потребляет напоминания из очереди уведомлений
// и отправляет письма по SMTP.
package notificationsender

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/oficinacloud/oficina-backend/internal/lib/smtp"
	"github.com/oficinacloud/oficina-backend/internal/models"
)

type SenderService struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(transport smtp.TransportInterface, log *slog.Logger) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// HandleMessage обрабатывает сообщение очереди: разбирает напоминание
// и отправляет письмо. Ошибка возвращает сообщение в очередь.
func (s *SenderService) HandleMessage(body []byte) error {
	var notice models.ExpiryNotice
	if err := json.Unmarshal(body, &notice); err != nil {
		return fmt.Errorf("error unmarshalling message: %w", err)
	}
	return s.SendExpiryNotice(notice)
}

// SendExpiryNotice отправляет письмо-напоминание об истекающем доступе.
func (s *SenderService) SendExpiryNotice(notice models.ExpiryNotice) error {
	subject, bodyText := composeEmail(notice)

	msg := strings.Join([]string{
		fmt.Sprintf("From: %s", s.transport.GetSMTPUser()),
		fmt.Sprintf("To: %s", notice.Email),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer func() {
		_ = client.Close()
	}()

	if err = client.Mail(s.transport.GetSMTPUser()); err != nil {
		return fmt.Errorf("failed to set mail sender: %w", err)
	}
	if err = client.Rcpt(notice.Email); err != nil {
		return fmt.Errorf("failed to set recipient %s: %w", notice.Email, err)
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get write closer: %w", err)
	}
	if _, err = wc.Write([]byte(msg)); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err = wc.Close(); err != nil {
		return fmt.Errorf("failed to close write closer: %w", err)
	}

	if err = client.Quit(); err != nil {
		return fmt.Errorf("failed to quit SMTP client: %w", err)
	}

	s.log.Info("email sent successfully", slog.String("to", notice.Email),
		slog.String("kind", notice.Kind))
	return nil
}

// composeEmail формирует тему и текст письма. Письма пользователям
// отправляются на португальском.
func composeEmail(notice models.ExpiryNotice) (subject, body string) {
	date := notice.EndDate.Format("02/01/2006")
	if notice.Kind == models.NoticeKindTrial {
		subject = "Seu período de teste termina amanhã"
		body = fmt.Sprintf(
			"Olá!\n\nSeu período de teste gratuito termina em %s.\n\n"+
				"Assine um plano para continuar usando todos os recursos da sua oficina.",
			date)
		return subject, body
	}

	subject = "Sua assinatura expira amanhã"
	name := notice.Username
	if name == "" {
		name = notice.Email
	}
	body = fmt.Sprintf(
		"Olá, %s!\n\nSua assinatura (%s) expira em %s.\n\n"+
			"Renove para não perder o acesso aos recursos da sua oficina.",
		name, notice.PlanType, date)
	return subject, body
}
