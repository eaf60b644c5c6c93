// Package metrics регистрирует Prometheus-метрики платформы.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AccessDecisions — решения о доступе к элементам контента по причинам.
	AccessDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "access_decisions_total",
		Help: "Item access decisions by reason code.",
	}, []string{"reason"})

	// PolicyDenials — отказы в привилегированных операциях.
	PolicyDenials = promauto.NewCounter(prometheus.CounterOpts{
		Name: "policy_denials_total",
		Help: "Privileged operations denied by role policy.",
	})

	// SchedulerDispatch — вызовы сервиса уведомлений из планировщика.
	SchedulerDispatch = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduler_dispatch_total",
		Help: "Scheduler dispatches by job, offset label and result.",
	}, []string{"job", "label", "result"})

	// NotificationsSent — письма, отправленные сервисом рассылки.
	NotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_sent_total",
		Help: "Notification emails by kind and result.",
	}, []string{"kind", "result"})
)
