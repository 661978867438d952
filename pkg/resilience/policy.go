package resilience

import (
	"context"
	"time"
)

// Policy объединяет Circuit Breaker и повторы: каждая серия повторов считается одним вызовом цепи.
type Policy struct {
	breaker *CircuitBreaker
	retry   *Retry
}

// NewPolicy создает политику отказоустойчивости для внешней зависимости name.
func NewPolicy(name string, cb CircuitBreakerConfig, retry RetryConfig, now func() time.Time) *Policy {
	return &Policy{
		breaker: NewCircuitBreaker(name, cb, now),
		retry:   NewRetry(name, retry),
	}
}

// Execute выполняет operation под защитой политики.
func (p *Policy) Execute(ctx context.Context, operation func(context.Context) error) error {
	return p.breaker.Execute(ctx, func(ctx context.Context) error {
		return p.retry.Execute(ctx, operation)
	})
}

// State возвращает состояние цепи.
func (p *Policy) State() CircuitState {
	return p.breaker.State()
}
