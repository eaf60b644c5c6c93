package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/magabrotheeeer/content-platform/internal/models"
)

const contentColumns = `id, kind, slug, title, body, locale, allowed_tiers, published_at,
	starts_at, ends_at, feedback_requested_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Storage) scanContent(row rowScanner) (*models.Content, error) {
	var (
		c                                       models.Content
		kind                                    string
		tiers                                   []string
		published, starts, ends, feedbackMarked sql.NullTime
	)
	if err := row.Scan(&c.ID, &kind, &c.Slug, &c.Title, &c.Body, &c.Locale,
		s.typeMap.SQLScanner(&tiers), &published, &starts, &ends, &feedbackMarked,
		&c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.Kind = models.ContentKind(kind)
	if len(tiers) > 0 {
		c.AllowedTiers = make([]models.Tier, 0, len(tiers))
		for _, t := range tiers {
			c.AllowedTiers = append(c.AllowedTiers, models.Tier(t))
		}
	}
	c.PublishedAt = nullTime(published)
	c.StartsAt = nullTime(starts)
	c.EndsAt = nullTime(ends)
	c.FeedbackRequestedAt = nullTime(feedbackMarked)
	return &c, nil
}

// tiersArg нормализует множество уровней для записи: пустое множество
// сохраняется как NULL, повторы удаляются.
func tiersArg(tiers []models.Tier) any {
	if len(tiers) == 0 {
		return nil
	}
	out := make([]string, 0, len(tiers))
	seen := make(map[models.Tier]struct{}, len(tiers))
	for _, t := range tiers {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t.String())
	}
	return out
}

// CreateContent сохраняет элемент контента и возвращает его ID.
func (s *Storage) CreateContent(ctx context.Context, c models.Content) (int, error) {
	const op = "storage.CreateContent"

	query := `INSERT INTO contents (kind, slug, title, body, locale, allowed_tiers,
				  published_at, starts_at, ends_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  RETURNING id`
	var id int
	if err := s.conn(ctx).QueryRowContext(ctx, query,
		string(c.Kind), c.Slug, c.Title, c.Body, c.Locale, tiersArg(c.AllowedTiers),
		c.PublishedAt, c.StartsAt, c.EndsAt).Scan(&id); err != nil {
		return 0, mapError(op, err)
	}
	return id, nil
}

// ReadContent возвращает элемент контента по ID.
func (s *Storage) ReadContent(ctx context.Context, id int) (*models.Content, error) {
	const op = "storage.ReadContent"

	query := `SELECT ` + contentColumns + ` FROM contents WHERE id = $1`
	c, err := s.scanContent(s.conn(ctx).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(op, err)
	}
	return c, nil
}

// ReadContentBySlug возвращает элемент по slug. Пустая локаль — любая,
// тогда берётся самая ранняя запись.
func (s *Storage) ReadContentBySlug(ctx context.Context, slug, locale string) (*models.Content, error) {
	const op = "storage.ReadContentBySlug"

	query := `SELECT ` + contentColumns + ` FROM contents
			  WHERE slug = $1 AND ($2 = '' OR locale = $2)
			  ORDER BY id
			  LIMIT 1`
	c, err := s.scanContent(s.conn(ctx).QueryRowContext(ctx, query, slug, locale))
	if err != nil {
		return nil, mapError(op, err)
	}
	return c, nil
}

// UpdateContent перезаписывает редактируемые поля элемента.
func (s *Storage) UpdateContent(ctx context.Context, id int, c models.Content) error {
	const op = "storage.UpdateContent"

	query := `UPDATE contents
			  SET kind = $1, slug = $2, title = $3, body = $4, locale = $5,
			      allowed_tiers = $6, published_at = $7, starts_at = $8, ends_at = $9,
			      updated_at = now()
			  WHERE id = $10`
	res, err := s.conn(ctx).ExecContext(ctx, query,
		string(c.Kind), c.Slug, c.Title, c.Body, c.Locale, tiersArg(c.AllowedTiers),
		c.PublishedAt, c.StartsAt, c.EndsAt, id)
	if err != nil {
		return mapError(op, err)
	}
	return checkAffected(op, res)
}

// DeleteContent удаляет элемент контента вместе с регистрациями.
func (s *Storage) DeleteContent(ctx context.Context, id int) error {
	const op = "storage.DeleteContent"

	res, err := s.conn(ctx).ExecContext(ctx, `DELETE FROM contents WHERE id = $1`, id)
	if err != nil {
		return mapError(op, err)
	}
	return checkAffected(op, res)
}

// buildContentWhere рендерит фильтр в условие WHERE и аргументы запроса.
func buildContentWhere(f models.ContentFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Kind != "" {
		conds = append(conds, "kind = "+next(string(f.Kind)))
	}
	if f.Locale != "" {
		conds = append(conds, "locale = "+next(f.Locale))
	}
	if f.Visibility != nil {
		p := next(f.Visibility.Tier.String())
		conds = append(conds, "(allowed_tiers IS NULL OR "+p+" = ANY(allowed_tiers) OR 'FREE' = ANY(allowed_tiers))")
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListContent возвращает страницу элементов, удовлетворяющих фильтру.
func (s *Storage) ListContent(ctx context.Context, f models.ContentFilter) ([]*models.Content, error) {
	const op = "storage.ListContent"

	where, args := buildContentWhere(f)
	query := `SELECT ` + contentColumns + ` FROM contents` + where +
		fmt.Sprintf(" ORDER BY COALESCE(published_at, created_at) DESC, id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, f.Limit, f.Offset)

	rows, err := s.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Content
	for rows.Next() {
		c, err := s.scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
