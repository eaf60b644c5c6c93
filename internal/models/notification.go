package models

import (
	"fmt"
	"time"
)

// OffsetLabel — метка смещения окна напоминания.
type OffsetLabel string

const (
	Offset72h OffsetLabel = "72h"
	Offset24h OffsetLabel = "24h"
	Offset4h  OffsetLabel = "4h"
)

// ReminderWindow — окно напоминаний: события, начинающиеся около Target.
type ReminderWindow struct {
	OffsetLabel OffsetLabel
	Offset      time.Duration
	Target      time.Time
}

// FeedbackWindow — окно запросов обратной связи: события, завершившиеся не позже Target.
type FeedbackWindow struct {
	Target time.Time
}

// ReminderMessage — сообщение очереди напоминаний.
type ReminderMessage struct {
	EventID     int         `json:"event_id"`
	Title       string      `json:"title"`
	Slug        string      `json:"slug"`
	StartsAt    time.Time   `json:"starts_at"`
	OffsetLabel OffsetLabel `json:"offset_label"`
}

// DedupKey — ключ дедупликации по паре (событие, метка смещения).
func (m ReminderMessage) DedupKey() string {
	return fmt.Sprintf("dispatch:reminder:%d:%s", m.EventID, m.OffsetLabel)
}

// FeedbackMessage — сообщение очереди запросов обратной связи.
type FeedbackMessage struct {
	EventID int       `json:"event_id"`
	Title   string    `json:"title"`
	Slug    string    `json:"slug"`
	EndsAt  time.Time `json:"ends_at"`
}

// DedupKey — ключ дедупликации запроса обратной связи по событию.
func (m FeedbackMessage) DedupKey() string {
	return fmt.Sprintf("dispatch:feedback:%d", m.EventID)
}
