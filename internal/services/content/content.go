// Package services реализует чтение контента с учётом уровня доступа
// и административные операции над ним.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/magabrotheeeer/content-platform/internal/access"
	"github.com/magabrotheeeer/content-platform/internal/lib/sl"
	"github.com/magabrotheeeer/content-platform/internal/models"
	"github.com/magabrotheeeer/content-platform/internal/storage/repository"
)

var (
	// ErrContentNotFound — элемент не существует. Отличается от отказа в доступе.
	ErrContentNotFound = errors.New("content not found")
	// ErrNotAnEvent — элемент не является событием.
	ErrNotAnEvent = errors.New("content is not an event")
	// ErrSlugTaken — slug уже занят в этой локали.
	ErrSlugTaken = errors.New("slug already exists for locale")
)

const (
	contentCacheTTL = time.Hour
	defaultLimit    = 20
	maxLimit        = 100
)

// ContentRepository — хранилище контента.
type ContentRepository interface {
	CreateContent(ctx context.Context, c models.Content) (int, error)
	ReadContent(ctx context.Context, id int) (*models.Content, error)
	ReadContentBySlug(ctx context.Context, slug, locale string) (*models.Content, error)
	UpdateContent(ctx context.Context, id int, c models.Content) error
	DeleteContent(ctx context.Context, id int) error
	ListContent(ctx context.Context, f models.ContentFilter) ([]*models.Content, error)
	RegisterAttendee(ctx context.Context, eventID int, userUID string) error
}

// Cache — кеш элементов контента.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// ContentService объединяет хранилище, кеш и правила доступа.
type ContentService struct {
	repo  ContentRepository
	cache Cache
	log   *slog.Logger
}

// NewContentService создает новый экземпляр ContentService.
func NewContentService(repo ContentRepository, cache Cache, log *slog.Logger) *ContentService {
	return &ContentService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

func cacheKey(id int) string {
	return "content:" + strconv.Itoa(id)
}

// List возвращает страницу элементов, видимых принципалу по уровню.
func (s *ContentService) List(ctx context.Context, p models.Principal, base models.ContentFilter) ([]*models.Content, error) {
	const op = "services.content.List"
	if base.Limit <= 0 {
		base.Limit = defaultLimit
	}
	if base.Limit > maxLimit {
		base.Limit = maxLimit
	}
	if base.Offset < 0 {
		base.Offset = 0
	}

	items, err := s.repo.ListContent(ctx, access.EvaluateListAccess(p, base))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, nil
}

// Get возвращает элемент и решение о доступе. При отказе элемент не возвращается.
func (s *ContentService) Get(ctx context.Context, p models.Principal, id int) (*models.Content, models.AccessDecision, error) {
	const op = "services.content.Get"
	item, err := s.load(ctx, id)
	if err != nil {
		return nil, models.AccessDecision{}, fmt.Errorf("%s: %w", op, err)
	}
	return decide(p, item)
}

// GetBySlug работает как Get, но ищет по slug и локали.
func (s *ContentService) GetBySlug(ctx context.Context, p models.Principal, slug, locale string) (*models.Content, models.AccessDecision, error) {
	const op = "services.content.GetBySlug"
	item, err := s.repo.ReadContentBySlug(ctx, slug, locale)
	if err != nil {
		return nil, models.AccessDecision{}, fmt.Errorf("%s: %w", op, mapNotFound(err))
	}
	return decide(p, item)
}

func decide(p models.Principal, item *models.Content) (*models.Content, models.AccessDecision, error) {
	decision := access.EvaluateItemAccess(p, *item)
	if !decision.Granted {
		return nil, decision, nil
	}
	return item, decision, nil
}

// RegisterForEvent регистрирует принципала на событие, если оно ему доступно.
func (s *ContentService) RegisterForEvent(ctx context.Context, p models.Principal, eventID int) (models.AccessDecision, error) {
	const op = "services.content.RegisterForEvent"
	item, err := s.load(ctx, eventID)
	if err != nil {
		return models.AccessDecision{}, fmt.Errorf("%s: %w", op, err)
	}
	if item.Kind != models.KindEvent {
		return models.AccessDecision{}, fmt.Errorf("%s: %w", op, ErrNotAnEvent)
	}

	decision := access.EvaluateItemAccess(p, *item)
	if !decision.Granted {
		return decision, nil
	}
	if err := s.repo.RegisterAttendee(ctx, eventID, p.UserUID); err != nil {
		return decision, fmt.Errorf("%s: %w", op, err)
	}
	return decision, nil
}

// Create сохраняет новый элемент.
func (s *ContentService) Create(ctx context.Context, c models.Content) (int, error) {
	const op = "services.content.Create"
	id, err := s.repo.CreateContent(ctx, c)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return 0, fmt.Errorf("%s: %w", op, ErrSlugTaken)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// Update перезаписывает элемент и сбрасывает его кеш.
func (s *ContentService) Update(ctx context.Context, id int, c models.Content) error {
	const op = "services.content.Update"
	if err := s.repo.UpdateContent(ctx, id, c); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return fmt.Errorf("%s: %w", op, ErrSlugTaken)
		}
		return fmt.Errorf("%s: %w", op, mapNotFound(err))
	}
	s.invalidate(ctx, id)
	return nil
}

// Delete удаляет элемент и сбрасывает его кеш.
func (s *ContentService) Delete(ctx context.Context, id int) error {
	const op = "services.content.Delete"
	if err := s.repo.DeleteContent(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, mapNotFound(err))
	}
	s.invalidate(ctx, id)
	return nil
}

// load читает элемент через кеш. Ошибки кеша не прерывают запрос.
func (s *ContentService) load(ctx context.Context, id int) (*models.Content, error) {
	var cached models.Content
	found, err := s.cache.Get(ctx, cacheKey(id), &cached)
	if err != nil {
		s.log.Warn("failed to read content from cache", slog.Int("id", id), sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	item, err := s.repo.ReadContent(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if err := s.cache.Set(ctx, cacheKey(id), item, contentCacheTTL); err != nil {
		s.log.Warn("failed to cache content", slog.Int("id", id), sl.Err(err))
	}
	return item, nil
}

func (s *ContentService) invalidate(ctx context.Context, id int) {
	if err := s.cache.Invalidate(ctx, cacheKey(id)); err != nil {
		s.log.Warn("failed to invalidate content cache", slog.Int("id", id), sl.Err(err))
	}
}

func mapNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrContentNotFound
	}
	return err
}
