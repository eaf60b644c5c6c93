package models

import "time"

// ContentKind — тип элемента контента.
type ContentKind string

const (
	KindBlogPost  ContentKind = "blog_post"
	KindEvent     ContentKind = "event"
	KindCaseStudy ContentKind = "case_study"
	KindResource  ContentKind = "resource"
)

// Valid сообщает, известен ли тип контента.
func (k ContentKind) Valid() bool {
	switch k {
	case KindBlogPost, KindEvent, KindCaseStudy, KindResource:
		return true
	}
	return false
}

// Content — элемент контента с необязательным списком допущенных уровней.
// AllowedTiers либо nil (публичный), либо непустое множество уровней.
type Content struct {
	ID                  int         `json:"id"`
	Kind                ContentKind `json:"kind"`
	Slug                string      `json:"slug"`
	Title               string      `json:"title"`
	Body                string      `json:"body"`
	Locale              string      `json:"locale"`
	AllowedTiers        []Tier      `json:"allowed_tiers,omitempty"`
	PublishedAt         *time.Time  `json:"published_at,omitempty"`
	StartsAt            *time.Time  `json:"starts_at,omitempty"`
	EndsAt              *time.Time  `json:"ends_at,omitempty"`
	FeedbackRequestedAt *time.Time  `json:"feedback_requested_at,omitempty"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`
}

// DummyContent используется для приёма данных из JSON-запроса до
// валидации и преобразования в Content. Уровни и даты приходят строками.
type DummyContent struct {
	Kind         string   `json:"kind" validate:"required,oneof=blog_post event case_study resource"`
	Slug         string   `json:"slug" validate:"required,max=200"`
	Title        string   `json:"title" validate:"required,max=300"`
	Body         string   `json:"body"`
	Locale       string   `json:"locale" validate:"required,min=2,max=10"`
	AllowedTiers []string `json:"allowed_tiers" validate:"omitempty,dive,required"`
	PublishedAt  string   `json:"published_at,omitempty" validate:"omitempty"`
	StartsAt     string   `json:"starts_at,omitempty" validate:"omitempty"`
	EndsAt       string   `json:"ends_at,omitempty" validate:"omitempty"`
}

// Registration — запись участника события.
type Registration struct {
	EventID   int       `json:"event_id"`
	UserUID   string    `json:"user_uid"`
	CreatedAt time.Time `json:"created_at"`
}

// Attendee — получатель уведомлений о событии.
type Attendee struct {
	UserUID  string
	Email    string
	Username string
}
