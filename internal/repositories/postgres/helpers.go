package postgres

import (
	"math"
	"strings"

	"github.com/maeshaii/backend-wny/internal/repositories"
	"gorm.io/gorm"
)

// account_types flag columns
const (
	flagAlumni      = "is_user"
	flagOJT         = "ojt"
	flagCoordinator = "coordinator"
	flagAdmin       = "admin"
	flagPESO        = "peso"
)

// withAccountFlag restricts users to one account type.
func withAccountFlag(flag string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Joins("JOIN account_types ON account_types.id = users.account_type_id").
			Where("account_types."+flag+" = ?", true)
	}
}

func applyAlumniFilters(filters repositories.AlumniFilters) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if filters.YearGraduated != nil {
			db = db.Where("users.year_graduated = ?", *filters.YearGraduated)
		}
		if course := strings.TrimSpace(filters.Course); course != "" {
			db = db.Where("users.course = ?", course)
		}
		if q := strings.TrimSpace(filters.Query); q != "" {
			like := "%" + q + "%"
			db = db.Where("CONCAT_WS(' ', users.f_name, users.m_name, users.l_name) ILIKE ? OR CONCAT_WS(' ', users.f_name, users.l_name) ILIKE ? OR users.acc_username ILIKE ?", like, like, like)
		}
		return db
	}
}

func paginate(limit, offset int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if limit > 0 {
			db = db.Limit(limit)
		}
		if offset > 0 {
			db = db.Offset(offset)
		}
		return db
	}
}

func bytesToMB(n int64) float64 {
	return math.Round(float64(n)/(1024*1024)*100) / 100
}
