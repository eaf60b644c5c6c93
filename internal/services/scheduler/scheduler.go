// Package services содержит планировщик напоминаний о событиях и запросов
// обратной связи.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/magabrotheeeer/content-platform/internal/lib/metrics"
	"github.com/magabrotheeeer/content-platform/internal/lib/sl"
	"github.com/magabrotheeeer/content-platform/internal/models"
)

// Имена задач планировщика.
const (
	JobReminder = "reminder"
	JobFeedback = "feedback"
	JobExpiry   = "expiry"
)

// Смещения окон напоминаний в порядке выдачи.
var reminderOffsets = []struct {
	label  models.OffsetLabel
	offset time.Duration
}{
	{models.Offset72h, 72 * time.Hour},
	{models.Offset24h, 24 * time.Hour},
	{models.Offset4h, 4 * time.Hour},
}

// FeedbackDelay — через сколько после окончания события запрашивается обратная связь.
const FeedbackDelay = 24 * time.Hour

// ErrTickSkipped — предыдущий запуск той же задачи ещё не завершён.
var ErrTickSkipped = errors.New("previous tick still running")

// Dispatcher — внешний сервис отправки уведомлений.
type Dispatcher interface {
	SendReminders(ctx context.Context, label models.OffsetLabel, target time.Time) error
	SendFeedbackRequests(ctx context.Context, target time.Time) error
}

// State — состояние задачи планировщика.
type State int32

const (
	StateIdle State = iota
	StateRunning
)

func (s State) String() string {
	if s == StateRunning {
		return "running"
	}
	return "idle"
}

// DispatchResult — результат одного вызова Dispatcher в рамках тика.
type DispatchResult struct {
	Job    string
	Label  models.OffsetLabel
	Target time.Time
	Err    error
}

// ComputeReminderTicks возвращает ровно три окна: now+72h, now+24h, now+4h.
func ComputeReminderTicks(now time.Time) []models.ReminderWindow {
	windows := make([]models.ReminderWindow, 0, len(reminderOffsets))
	for _, o := range reminderOffsets {
		windows = append(windows, models.ReminderWindow{
			OffsetLabel: o.label,
			Offset:      o.offset,
			Target:      now.Add(o.offset),
		})
	}
	return windows
}

// ComputeFeedbackTick возвращает окно now-24h.
func ComputeFeedbackTick(now time.Time) models.FeedbackWindow {
	return models.FeedbackWindow{Target: now.Add(-FeedbackDelay)}
}

// SchedulerService выполняет тики напоминаний и обратной связи.
// Между тиками состояние не хранится, дедупликация выполняется получателем.
type SchedulerService struct {
	dispatcher Dispatcher
	log        *slog.Logger
	now        func() time.Time

	reminderState atomic.Int32
	feedbackState atomic.Int32
}

// Option настраивает SchedulerService.
type Option func(*SchedulerService)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(s *SchedulerService) { s.now = now }
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(dispatcher Dispatcher, log *slog.Logger, opts ...Option) *SchedulerService {
	s := &SchedulerService{
		dispatcher: dispatcher,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State возвращает Running, пока выполняется хотя бы одна задача.
func (s *SchedulerService) State() State {
	if State(s.reminderState.Load()) == StateRunning || State(s.feedbackState.Load()) == StateRunning {
		return StateRunning
	}
	return StateIdle
}

// RunReminderTick рассылает напоминания по трём окнам параллельно.
// Сбой или паника в одном окне не влияет на остальные. Результаты
// возвращаются в порядке окон.
func (s *SchedulerService) RunReminderTick(ctx context.Context) []DispatchResult {
	if !s.reminderState.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		s.log.Warn("reminder tick skipped", sl.Err(ErrTickSkipped))
		return nil
	}
	defer s.reminderState.Store(int32(StateIdle))

	windows := ComputeReminderTicks(s.tickTime())
	results := make([]DispatchResult, len(windows))

	var wg sync.WaitGroup
	for i, w := range windows {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = s.isolate(JobReminder, w.OffsetLabel, w.Target, func() error {
				return s.dispatcher.SendReminders(ctx, w.OffsetLabel, w.Target)
			})
		}()
	}
	wg.Wait()

	return results
}

// RunFeedbackTick запрашивает обратную связь по событиям, завершившимся сутки назад.
func (s *SchedulerService) RunFeedbackTick(ctx context.Context) DispatchResult {
	w := ComputeFeedbackTick(s.tickTime())
	if !s.feedbackState.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		s.log.Warn("feedback tick skipped", sl.Err(ErrTickSkipped))
		return DispatchResult{Job: JobFeedback, Target: w.Target, Err: ErrTickSkipped}
	}
	defer s.feedbackState.Store(int32(StateIdle))

	return s.isolate(JobFeedback, "", w.Target, func() error {
		return s.dispatcher.SendFeedbackRequests(ctx, w.Target)
	})
}

// tickTime возвращает момент срабатывания, усечённый до минуты, чтобы
// окна соседних запусков стыковались без зазоров и перекрытий.
func (s *SchedulerService) tickTime() time.Time {
	return s.now().UTC().Truncate(time.Minute)
}

// isolate выполняет dispatch, перехватывая ошибку и панику.
func (s *SchedulerService) isolate(job string, label models.OffsetLabel, target time.Time, dispatch func() error) (res DispatchResult) {
	res = DispatchResult{Job: job, Label: label, Target: target}
	log := s.log.With(
		slog.String("job", job),
		slog.String("label", string(label)),
		slog.Time("target", target),
	)

	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("dispatch panicked: %v", r)
		}
		result := "ok"
		if res.Err != nil {
			result = "error"
			log.Error("dispatch failed", sl.Err(res.Err))
		} else {
			log.Info("dispatch completed")
		}
		metrics.SchedulerDispatch.WithLabelValues(job, string(label), result).Inc()
	}()

	res.Err = dispatch()
	return res
}
