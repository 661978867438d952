// Package notify передает выпущенные токены сброса во внешнюю доставку.
package notify

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	svc "authcore/internal/auth/ports/services"
	"authcore/pkg/logger"
)

// TemplateForgotPassword - шаблон письма для сброса пароля.
const TemplateForgotPassword = "forgot_password"

const (
	msgResetIssued    = "password reset token issued"
	msgResetPublished = "password reset email job published"
	msgErrPublish     = "failed to publish password reset email job"

	errCtxPublishing = "publishing reset email job"
)

// EmailJob - JSON сообщение очереди отправки писем.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Template string         `json:"template,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

// Publisher публикует JSON сообщение.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// RabbitNotifier ставит письмо со ссылкой сброса в очередь RabbitMQ.
type RabbitNotifier struct {
	publisher Publisher
	resetURL  string
}

// NewRabbitNotifier создает уведомитель. resetURL - адрес страницы сброса без токена.
func NewRabbitNotifier(publisher Publisher, resetURL string) svc.ResetNotifier {
	return &RabbitNotifier{publisher: publisher, resetURL: resetURL}
}

// NotifyPasswordReset публикует EmailJob с одноразовой ссылкой.
func (n *RabbitNotifier) NotifyPasswordReset(ctx context.Context, note svc.ResetNotification) error {
	log := logger.Log(ctx).With(zap.String("notifier", "rabbitmq"), zap.String("userID", note.UserID))

	job := EmailJob{
		To:       note.Email,
		Subject:  "Reset your password",
		Template: TemplateForgotPassword,
		Data: map[string]any{
			"username":   note.Username,
			"reset_url":  BuildResetURL(n.resetURL, note.Token),
			"expires_at": note.ExpiresAt.UTC().Format(time.RFC3339),
		},
	}

	if err := n.publisher.PublishJSON(ctx, job); err != nil {
		log.Error(ctx, msgErrPublish, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxPublishing, err)
	}

	log.Info(ctx, msgResetPublished)
	return nil
}

// BuildResetURL добавляет токен в query параметр token.
func BuildResetURL(base, token string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base + "?token=" + url.QueryEscape(token)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}

// LogNotifier только фиксирует факт выпуска токена. Сам токен не логируется.
type LogNotifier struct{}

// NewLogNotifier создает уведомитель для окружений без брокера.
func NewLogNotifier() svc.ResetNotifier {
	return LogNotifier{}
}

// NotifyPasswordReset пишет в лог идентификатор пользователя и срок действия.
func (LogNotifier) NotifyPasswordReset(ctx context.Context, note svc.ResetNotification) error {
	logger.Log(ctx).Info(ctx, msgResetIssued,
		zap.String("userID", note.UserID),
		zap.Time("expiresAt", note.ExpiresAt))
	return nil
}
