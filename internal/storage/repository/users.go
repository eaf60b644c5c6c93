package repository

import (
	"context"

	"github.com/magabrotheeeer/content-platform/internal/models"
)

const userColumns = `uid, email, username, password_hash, role_name, role_type, tier, created_at`

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	var tier string
	if err := row.Scan(&u.UUID, &u.Email, &u.Username, &u.PasswordHash,
		&u.RoleName, &u.RoleType, &tier, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Tier = models.Tier(tier)
	return u, nil
}

// RegisterUser сохраняет нового пользователя и возвращает его UID.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"

	roleName, roleType := user.RoleName, user.RoleType
	if roleName == "" {
		roleName = models.RoleAuthenticated.Name
	}
	if roleType == "" {
		roleType = models.RoleAuthenticated.Type
	}
	tier := user.Tier
	if tier == "" {
		tier = models.TierFree
	}

	var newID string
	query := `INSERT INTO users (email, username, password_hash, role_name, role_type, tier)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING uid`
	if err := s.conn(ctx).QueryRowContext(ctx, query,
		user.Email, user.Username, user.PasswordHash, roleName, roleType, tier.String()).Scan(&newID); err != nil {
		return "", mapError(op, err)
	}
	return newID, nil
}

// GetUserByUsername возвращает пользователя по его username.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"

	u, err := scanUser(s.conn(ctx).QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username))
	if err != nil {
		return nil, mapError(op, err)
	}
	return u, nil
}

// GetUser возвращает пользователя по его UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"

	u, err := scanUser(s.conn(ctx).QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE uid = $1`, userUID))
	if err != nil {
		return nil, mapError(op, err)
	}
	return u, nil
}

// UpdateUserTier меняет уровень пользователя.
func (s *Storage) UpdateUserTier(ctx context.Context, userUID string, tier models.Tier) error {
	const op = "storage.UpdateUserTier"

	res, err := s.conn(ctx).ExecContext(ctx, `UPDATE users SET tier = $1 WHERE uid = $2`, tier.String(), userUID)
	if err != nil {
		return mapError(op, err)
	}
	return checkAffected(op, res)
}
