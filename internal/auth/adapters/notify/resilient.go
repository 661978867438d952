package notify

import (
	"context"

	svc "authcore/internal/auth/ports/services"
)

// Executor выполняет операцию под политикой отказоустойчивости.
type Executor interface {
	Execute(ctx context.Context, operation func(context.Context) error) error
}

// ResilientNotifier повторяет доставку и размыкает цепь при недоступном брокере.
type ResilientNotifier struct {
	inner  svc.ResetNotifier
	policy Executor
}

// NewResilientNotifier оборачивает inner политикой policy.
func NewResilientNotifier(inner svc.ResetNotifier, policy Executor) svc.ResetNotifier {
	return &ResilientNotifier{inner: inner, policy: policy}
}

// NotifyPasswordReset делегирует доставку inner под политикой.
func (n *ResilientNotifier) NotifyPasswordReset(ctx context.Context, note svc.ResetNotification) error {
	return n.policy.Execute(ctx, func(ctx context.Context) error {
		return n.inner.NotifyPasswordReset(ctx, note)
	})
}
