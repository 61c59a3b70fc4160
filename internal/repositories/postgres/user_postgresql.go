package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/maeshaii/backend-wny/internal/models"
	"github.com/maeshaii/backend-wny/internal/repositories"
	"gorm.io/gorm"
)

type UserPostgreSQL struct {
	db *gorm.DB
}

func NewUserPostgreSQL(db *gorm.DB) repositories.UserRepository {
	return &UserPostgreSQL{db: db}
}

func (u *UserPostgreSQL) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).Preload("AccountType").First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserPostgreSQL) GetByCTUID(ctx context.Context, ctuID string) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).
		Preload("AccountType").
		Where("acc_username = ?", strings.TrimSpace(ctuID)).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserPostgreSQL) GetByIDs(ctx context.Context, ids []uint) ([]*models.User, error) {
	var users []*models.User
	if len(ids) == 0 {
		return users, nil
	}
	err := u.db.WithContext(ctx).Preload("AccountType").Where("id IN ?", ids).Order("id ASC").Find(&users).Error
	return users, err
}

func (u *UserPostgreSQL) GetByEmails(ctx context.Context, emails []string) ([]*models.User, error) {
	var users []*models.User
	lowered := make([]string, 0, len(emails))
	for _, e := range emails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			lowered = append(lowered, e)
		}
	}
	if len(lowered) == 0 {
		return users, nil
	}
	err := u.db.WithContext(ctx).Where("LOWER(email) IN ?", lowered).Order("id ASC").Find(&users).Error
	return users, err
}

func (u *UserPostgreSQL) ExistsByCTUID(ctx context.Context, ctuID string) (bool, error) {
	var count int64
	err := u.db.WithContext(ctx).Model(&models.User{}).
		Where("acc_username = ?", strings.TrimSpace(ctuID)).
		Count(&count).Error
	return count > 0, err
}

func (u *UserPostgreSQL) Create(ctx context.Context, user *models.User) error {
	return u.db.WithContext(ctx).Omit("AccountType").Create(user).Error
}

func (u *UserPostgreSQL) Update(ctx context.Context, user *models.User) error {
	return u.db.WithContext(ctx).Omit("AccountType").Save(user).Error
}

func (u *UserPostgreSQL) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	result := u.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("failed to update user %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (u *UserPostgreSQL) ListAlumni(ctx context.Context, filters repositories.AlumniFilters) ([]*models.User, error) {
	var users []*models.User
	err := u.db.WithContext(ctx).
		Scopes(withAccountFlag(flagAlumni), applyAlumniFilters(filters), paginate(filters.Limit, filters.Offset)).
		Order("users.l_name ASC, users.f_name ASC, users.id ASC").
		Find(&users).Error
	return users, err
}

func (u *UserPostgreSQL) CountAlumniByYear(ctx context.Context) ([]models.YearCount, error) {
	return u.countByYear(ctx, flagAlumni)
}

func (u *UserPostgreSQL) CountOJTByYear(ctx context.Context) ([]models.YearCount, error) {
	return u.countByYear(ctx, flagOJT)
}

func (u *UserPostgreSQL) countByYear(ctx context.Context, flag string) ([]models.YearCount, error) {
	var rows []models.YearCount
	err := u.db.WithContext(ctx).Model(&models.User{}).
		Scopes(withAccountFlag(flag)).
		Select("users.year_graduated AS year, COUNT(*) AS count").
		Where("users.year_graduated IS NOT NULL").
		Group("users.year_graduated").
		Order("users.year_graduated DESC").
		Scan(&rows).Error
	return rows, err
}

func (u *UserPostgreSQL) CountAlumniByStatus(ctx context.Context, filters repositories.AlumniFilters) (map[string]int, error) {
	return u.countByStatus(ctx, flagAlumni, "user_status", filters)
}

func (u *UserPostgreSQL) CountOJTByStatus(ctx context.Context, filters repositories.AlumniFilters) (map[string]int, error) {
	return u.countByStatus(ctx, flagOJT, "ojtstatus", filters)
}

// countByStatus groups on a fixed users column, never on caller input.
func (u *UserPostgreSQL) countByStatus(ctx context.Context, flag, column string, filters repositories.AlumniFilters) (map[string]int, error) {
	var rows []struct {
		Status string
		Count  int
	}
	err := u.db.WithContext(ctx).Model(&models.User{}).
		Scopes(withAccountFlag(flag), applyAlumniFilters(filters)).
		Select("COALESCE(users." + column + ", '') AS status, COUNT(*) AS count").
		Group("users." + column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.Status] += r.Count
	}
	return counts, nil
}

func (u *UserPostgreSQL) ListAlumniWithoutResponse(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	err := u.db.WithContext(ctx).
		Scopes(withAccountFlag(flagAlumni)).
		Where("NOT EXISTS (SELECT 1 FROM tracker_responses r WHERE r.user_id = users.id)").
		Order("users.id ASC").
		Find(&users).Error
	return users, err
}

func (u *UserPostgreSQL) ListOJT(ctx context.Context, year *int) ([]*models.User, error) {
	var users []*models.User
	query := u.db.WithContext(ctx).Scopes(withAccountFlag(flagOJT))
	if year != nil {
		query = query.Where("users.year_graduated = ?", *year)
	}
	err := query.Order("users.l_name ASC, users.f_name ASC").Find(&users).Error
	return users, err
}

func (u *UserPostgreSQL) GetAccountType(ctx context.Context, role models.UserRole) (*models.AccountType, error) {
	flag := map[models.UserRole]string{
		models.RoleAdmin:       flagAdmin,
		models.RolePESO:        flagPESO,
		models.RoleAlumni:      flagAlumni,
		models.RoleCoordinator: flagCoordinator,
		models.RoleOJT:         flagOJT,
	}[role]
	if flag == "" {
		return nil, fmt.Errorf("unknown role %q", role)
	}

	var at models.AccountType
	if err := u.db.WithContext(ctx).Where(flag+" = ?", true).Order("id ASC").First(&at).Error; err != nil {
		return nil, err
	}
	return &at, nil
}
