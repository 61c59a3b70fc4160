package services

import (
	"context"
	"testing"
	"time"

	"github.com/maeshaii/backend-wny/internal/cache"
	"github.com/maeshaii/backend-wny/internal/models"
	"github.com/maeshaii/backend-wny/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func sampleAlumni() []*models.User {
	return []*models.User{
		{ID: 1, UserStatus: "Employed", CompanyNameCurrent: "Accenture", PositionCurrent: "Developer", SalaryCurrent: "25,000", Age: models.IntPtr(24), CivilStatus: "Single", Email: "a@ctu.edu.ph"},
		{ID: 2, UserStatus: "employed", CompanyNameCurrent: "Lexmark", PositionCurrent: "Developer", SalaryCurrent: "35000", Age: models.IntPtr(26), CivilStatus: "Single"},
		{ID: 3, UserStatus: "unemployed", UnemploymentReason: "Further study", PursueFurtherStudy: "Yes", SchoolName: "CTU", Program: "Graduate Studies"},
		{ID: 4, UserStatus: "absorb", CompanyNameCurrent: "Lexmark", SalaryCurrent: "not disclosed"},
		{ID: 5, UserStatus: "high position", CompanyNameCurrent: "Accenture", PursueFurtherStudy: "no"},
	}
}

func TestSafeMode(t *testing.T) {
	company := func(u *models.User) string { return u.CompanyNameCurrent }

	best := SafeMode(sampleAlumni(), company)
	require.NotNil(t, best)
	assert.Equal(t, "Accenture", *best, "ties go to the value seen first")

	assert.Nil(t, SafeMode([]*models.User{{}, {CompanyNameCurrent: "  "}}, company))
}

func TestSafeMean(t *testing.T) {
	salary := func(u *models.User) string { return u.SalaryCurrent }

	mean := SafeMean(sampleAlumni(), salary)
	require.NotNil(t, mean)
	assert.Equal(t, 30000.0, *mean)

	thirds := []*models.User{{SalaryCurrent: "1"}, {SalaryCurrent: "1"}, {SalaryCurrent: "2"}}
	assert.Equal(t, 1.33, *SafeMean(thirds, salary))

	assert.Nil(t, SafeMean([]*models.User{{SalaryCurrent: "n/a"}}, salary))
}

func TestSafeSample(t *testing.T) {
	email := func(u *models.User) string { return u.Email }
	sample := SafeSample(sampleAlumni(), email)
	require.NotNil(t, sample)
	assert.Equal(t, "a@ctu.edu.ph", *sample)
	assert.Nil(t, SafeSample(nil, email))
}

func TestComputeSnapshot(t *testing.T) {
	alumni := sampleAlumni()

	t.Run("QPRO", func(t *testing.T) {
		snap := ComputeSnapshot(models.StatsQPRO, alumni, "2024", "")
		assert.Equal(t, models.StatsQPRO, snap.Type)
		assert.Equal(t, 5, snap.TotalAlumni)
		assert.Equal(t, "2024", snap.Year)
		assert.Equal(t, models.FilterAll, snap.Course)
		assert.Equal(t, 2, *snap.EmployedCount)
		assert.Equal(t, 1, *snap.UnemployedCount)
		assert.Equal(t, 40.0, *snap.EmploymentRate)
		assert.Equal(t, "Developer", *snap.MostCommonPosition)
		assert.Equal(t, "Further study", *snap.MostCommonUnemploymentReason)
		assert.Equal(t, 25.0, *snap.AverageAge)
		assert.Nil(t, snap.AbsorptionRate)
	})

	t.Run("CHED", func(t *testing.T) {
		snap := ComputeSnapshot(models.StatsCHED, alumni, "", "")
		assert.Equal(t, 1, *snap.PursuingFurtherStudy)
		assert.Equal(t, 1, *snap.PostGraduateDegree)
		assert.Equal(t, 20.0, *snap.FurtherStudyRate)
		assert.Equal(t, "CTU", *snap.MostCommonSchool)
		assert.Nil(t, snap.MostCommonCompany)
	})

	t.Run("SUC", func(t *testing.T) {
		snap := ComputeSnapshot(models.StatsSUC, alumni, "", "")
		assert.Equal(t, 1, *snap.HighPositionCount)
		assert.Equal(t, 20.0, *snap.HighPositionRate)
		assert.NotNil(t, snap.MostCommonCompany)
	})

	t.Run("AACUP", func(t *testing.T) {
		snap := ComputeSnapshot(models.StatsAACUP, alumni, "", "")
		assert.Equal(t, 1, *snap.AbsorbedCount)
		assert.Equal(t, 20.0, *snap.AbsorptionRate)
		assert.Equal(t, 40.0, *snap.EmploymentRate)
	})

	t.Run("ALL", func(t *testing.T) {
		snap := ComputeSnapshot(models.StatsAll, alumni, "", "")
		assert.Equal(t, models.StatsAll, snap.Type)
		assert.Equal(t, 1, snap.StatusCounts["Employed"])
		assert.Equal(t, 1, snap.StatusCounts["employed"])
		assert.Nil(t, snap.EmploymentRate)
	})

	t.Run("empty set", func(t *testing.T) {
		snap := ComputeSnapshot(models.StatsQPRO, nil, "", "")
		assert.Equal(t, 0, snap.TotalAlumni)
		assert.Equal(t, 0.0, *snap.EmploymentRate)
		assert.Nil(t, snap.MostCommonCompany)
		assert.Nil(t, snap.AverageSalary)
	})
}

func TestAlumniFilters(t *testing.T) {
	filters, err := alumniFilters("2024", "BSIT")
	require.NoError(t, err)
	require.NotNil(t, filters.YearGraduated)
	assert.Equal(t, 2024, *filters.YearGraduated)
	assert.Equal(t, "BSIT", filters.Course)

	filters, err = alumniFilters("all", "")
	require.NoError(t, err)
	assert.Nil(t, filters.YearGraduated)
	assert.Empty(t, filters.Course)

	_, err = alumniFilters("twenty", "")
	assert.True(t, IsValidation(err))
}

func TestBuildDetailedData(t *testing.T) {
	alumni := []*models.User{
		{ID: 1, CTUID: "1001", FirstName: "Ana", YearGraduated: models.IntPtr(2023)},
		{ID: 2, CTUID: "1002", FirstName: "Ben"},
	}
	questions := map[uint]models.Question{
		10: {ID: 10, Text: "Are you presently employed?"},
		11: {ID: 11, Text: "Skills used"},
		12: {ID: 12, Text: "Certificate"},
		13: {ID: 13, Text: "Never answered"},
	}
	latest := map[uint]*models.TrackerResponse{
		1: {UserID: 1, Answers: datatypes.JSONMap{
			"10": "Yes",
			"11": []interface{}{"Go", "SQL"},
			"12": map[string]interface{}{"type": "file", "filename": "cert.pdf"},
			"99": "unknown question",
		}},
	}

	data := BuildDetailedData(alumni, latest, questions)

	require.Len(t, data.Columns, len(detailedBaseColumns)+3)
	assert.Equal(t, []string{"Are you presently employed?", "Skills used", "Certificate"}, data.Columns[len(detailedBaseColumns):])
	require.Len(t, data.Rows, 2)

	assert.Equal(t, "1001", data.Rows[0]["CTU_ID"])
	assert.Equal(t, "2023", data.Rows[0]["Year_Graduated"])
	assert.Equal(t, "Yes", data.Rows[0]["Are you presently employed?"])
	assert.Equal(t, "Go, SQL", data.Rows[0]["Skills used"])
	assert.Equal(t, "cert.pdf", data.Rows[0]["Certificate"])

	assert.Equal(t, "", data.Rows[1]["Year_Graduated"])
	assert.Equal(t, "", data.Rows[1]["Skills used"])
}

func TestLatestResponses(t *testing.T) {
	older := &models.TrackerResponse{ID: 1, UserID: 5, SubmittedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	newer := &models.TrackerResponse{ID: 2, UserID: 5, SubmittedAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}

	latest := latestResponses([]*models.TrackerResponse{newer, older})
	assert.Equal(t, uint(2), latest[5].ID)
}

func TestStatisticsService_StatisticsCachesSnapshot(t *testing.T) {
	repo := NewMockRepository()
	cacheService := new(MockCacheService)
	service := NewStatisticsService(repo, cacheService, time.Minute, testLogger())

	key := cache.StatsKey("QPRO", "2024", "BSIT")
	year := 2024
	cacheService.On("Get", mock.Anything, key, mock.Anything).Return(cache.ErrCacheMiss).Once()
	repo.users.On("ListAlumni", mock.Anything, repositories.AlumniFilters{YearGraduated: &year, Course: "BSIT"}).
		Return(sampleAlumni(), nil).Once()
	cacheService.On("Set", mock.Anything, key, mock.AnythingOfType("*models.StatsSnapshot"), time.Minute).Return(nil).Once()

	snap, err := service.Statistics(context.Background(), "2024", "BSIT", models.StatsQPRO)

	require.NoError(t, err)
	assert.Equal(t, 5, snap.TotalAlumni)
	assert.Equal(t, "BSIT", snap.Course)
	cacheService.AssertExpectations(t)
	repo.users.AssertExpectations(t)
}

func TestStatisticsService_StatisticsWithoutCache(t *testing.T) {
	repo := NewMockRepository()
	service := NewStatisticsService(repo, nil, time.Minute, testLogger())
	repo.users.On("ListAlumni", mock.Anything, repositories.AlumniFilters{}).Return([]*models.User{}, nil)

	snap, err := service.Statistics(context.Background(), "ALL", "ALL", models.StatsCHED)

	require.NoError(t, err)
	assert.Equal(t, 0, snap.TotalAlumni)
	assert.Equal(t, 0.0, *snap.FurtherStudyRate)
}

func TestStatisticsService_AlumniStatistics(t *testing.T) {
	repo := NewMockRepository()
	service := NewStatisticsService(repo, nil, 0, testLogger())
	repo.users.On("CountAlumniByStatus", mock.Anything, repositories.AlumniFilters{Course: "BSIT"}).
		Return(map[string]int{"employed": 3}, nil)
	repo.users.On("CountAlumniByYear", mock.Anything).
		Return([]models.YearCount{{Year: 2022, Count: 4}, {Year: 2024, Count: 9}}, nil)

	stats, err := service.AlumniStatistics(context.Background(), "", "BSIT")

	require.NoError(t, err)
	assert.Equal(t, 3, stats.StatusCounts["employed"])
	assert.Equal(t, 2024, stats.Years[0].Year)
}

func TestStatisticsService_ExportRejectsUnknownFormat(t *testing.T) {
	repo := NewMockRepository()
	service := NewStatisticsService(repo, nil, 0, testLogger())
	repo.users.On("ListAlumni", mock.Anything, mock.Anything).Return([]*models.User{}, nil)

	_, err := service.Export(context.Background(), "", "", models.StatsQPRO, "csv")

	assert.True(t, IsValidation(err))
}
