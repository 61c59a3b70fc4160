package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/maeshaii/backend-wny/internal/cache"
	"github.com/maeshaii/backend-wny/internal/models"
	"github.com/maeshaii/backend-wny/internal/report"
	"github.com/maeshaii/backend-wny/internal/repositories"
)

type ExportFormat string

const (
	ExportXLSX ExportFormat = "xlsx"
	ExportPDF  ExportFormat = "pdf"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
)

// ExportFile is a generated download.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

type StatisticsService interface {
	AlumniStatistics(ctx context.Context, year, course string) (*models.AlumniStatistics, error)
	Statistics(ctx context.Context, year, course string, statsType models.StatsType) (*models.StatsSnapshot, error)
	Generate(ctx context.Context, year, course string, statsType models.StatsType) (map[models.StatsType]*models.StatsSnapshot, error)
	DetailedAlumniData(ctx context.Context, year, course string) (*models.DetailedData, error)
	Export(ctx context.Context, year, course string, statsType models.StatsType, format ExportFormat) (*ExportFile, error)
}

// Base columns of the detailed export, in order
var detailedBaseColumns = []string{
	"CTU_ID", "First_Name", "Middle_Name", "Last_Name", "Gender", "Birthdate", "Year_Graduated", "Course", "Section",
	"Program", "Status", "Phone_Number", "Email", "Address", "Civil_Status", "Social_Media", "Age",
	"Company_Name_Current", "Position_Current", "Sector_Current", "Employment_Duration_Current", "Salary_Current",
	"Supporting_Document_Current", "Awards_Recognition_Current", "Supporting_Document_Awards_Recognition",
	"Unemployment_Reason", "Pursue_Further_Study", "Date_Started", "School_Name", "Profile_Pic", "Profile_Bio",
	"Profile_Resume",
}

type statisticsService struct {
	repo     repositories.Repository
	cache    cache.CacheService
	cacheTTL time.Duration
	logger   *slog.Logger
}

func NewStatisticsService(repo repositories.Repository, cacheService cache.CacheService, cacheTTL time.Duration, logger *slog.Logger) StatisticsService {
	return &statisticsService{
		repo:     repo,
		cache:    cacheService,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

func (s *statisticsService) AlumniStatistics(ctx context.Context, year, course string) (*models.AlumniStatistics, error) {
	filters, err := alumniFilters(year, course)
	if err != nil {
		return nil, err
	}

	counts, err := s.repo.User().CountAlumniByStatus(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to count alumni by status: %w", err)
	}
	years, err := s.repo.User().CountAlumniByYear(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count alumni by year: %w", err)
	}
	sort.Slice(years, func(i, j int) bool { return years[i].Year > years[j].Year })

	if counts == nil {
		counts = map[string]int{}
	}
	if years == nil {
		years = []models.YearCount{}
	}
	return &models.AlumniStatistics{StatusCounts: counts, Years: years}, nil
}

// Statistics computes one snapshot, served from cache when possible.
func (s *statisticsService) Statistics(ctx context.Context, year, course string, statsType models.StatsType) (*models.StatsSnapshot, error) {
	year, course = normalizeFilter(year), normalizeFilter(course)
	filters, err := alumniFilters(year, course)
	if err != nil {
		return nil, err
	}

	key := cache.StatsKey(string(statsType), year, course)
	if s.cache != nil {
		var cached models.StatsSnapshot
		err := s.cache.Get(ctx, key, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("Statistics cache read failed", "key", key, "error", err)
		}
	}

	alumni, err := s.repo.User().ListAlumni(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list alumni: %w", err)
	}
	snap := ComputeSnapshot(statsType, alumni, year, course)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, snap, s.cacheTTL); err != nil {
			s.logger.Warn("Statistics cache write failed", "key", key, "error", err)
		}
	}
	return snap, nil
}

func (s *statisticsService) Generate(ctx context.Context, year, course string, statsType models.StatsType) (map[models.StatsType]*models.StatsSnapshot, error) {
	return report.NewBuilder(s, s.logger).Generate(ctx, year, course, statsType)
}

func (s *statisticsService) DetailedAlumniData(ctx context.Context, year, course string) (*models.DetailedData, error) {
	filters, err := alumniFilters(year, course)
	if err != nil {
		return nil, err
	}
	alumni, err := s.repo.User().ListAlumni(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list alumni: %w", err)
	}
	responses, err := s.repo.Tracker().ListResponses(ctx, repositories.ResponseFilters{BatchYear: filters.YearGraduated})
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}
	categories, err := s.repo.Tracker().ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return BuildDetailedData(alumni, latestResponses(responses), questionIndex(categories)), nil
}

func (s *statisticsService) Export(ctx context.Context, year, course string, statsType models.StatsType, format ExportFormat) (*ExportFile, error) {
	start := time.Now()
	stats, err := s.Generate(ctx, year, course, statsType)
	if err != nil {
		return nil, err
	}
	types := report.OrderedTypes(stats)
	base := fmt.Sprintf("alumni_statistics_%s_%s_%s", statsType, fileToken(year), fileToken(course))

	switch format {
	case ExportPDF:
		sets := make([]*report.ChartSet, 0, len(types))
		for _, t := range types {
			set, err := report.RenderCharts(t, stats[t])
			if err != nil {
				return nil, fmt.Errorf("failed to render %s charts: %w", t, err)
			}
			sets = append(sets, set)
		}
		data, err := report.ExportPDF(sets)
		if err != nil {
			return nil, fmt.Errorf("failed to build pdf: %w", err)
		}
		s.logger.Info("Statistics PDF exported", "type", statsType, "charts", len(sets), "duration", time.Since(start))
		return &ExportFile{Filename: base + ".pdf", ContentType: contentTypePDF, Data: data}, nil

	case ExportXLSX, "":
		details, err := report.Details(ctx, s, year, course, types)
		if err != nil {
			return nil, err
		}
		data, err := report.ExportWorkbook(stats, details)
		if err != nil {
			return nil, fmt.Errorf("failed to build workbook: %w", err)
		}
		s.logger.Info("Statistics workbook exported", "type", statsType, "sheets", len(types)*2, "duration", time.Since(start))
		return &ExportFile{Filename: base + ".xlsx", ContentType: contentTypeXLSX, Data: data}, nil
	}
	return nil, fieldError("format", "must be xlsx or pdf", format)
}

// ===== AGGREGATION =====

// ComputeSnapshot applies the per-type aggregate rules to a set of alumni.
func ComputeSnapshot(statsType models.StatsType, alumni []*models.User, year, course string) *models.StatsSnapshot {
	total := len(alumni)
	snap := &models.StatsSnapshot{
		Type:        statsType,
		TotalAlumni: total,
		Year:        normalizeFilter(year),
		Course:      normalizeFilter(course),
	}

	company := func(u *models.User) string { return u.CompanyNameCurrent }
	position := func(u *models.User) string { return u.PositionCurrent }
	sector := func(u *models.User) string { return u.SectorCurrent }
	awards := func(u *models.User) string { return u.AwardsRecognitionCurrent }
	school := func(u *models.User) string { return u.SchoolName }
	reason := func(u *models.User) string { return u.UnemploymentReason }
	civil := func(u *models.User) string { return u.CivilStatus }
	program := func(u *models.User) string { return u.Program }
	salary := func(u *models.User) string { return u.SalaryCurrent }
	email := func(u *models.User) string { return u.Email }
	age := func(u *models.User) string {
		if u.Age == nil || *u.Age == 0 {
			return ""
		}
		return strconv.Itoa(*u.Age)
	}

	// Fields shared by every type
	snap.MostCommonAwards = SafeMode(alumni, awards)
	snap.MostCommonCivilStatus = SafeMode(alumni, civil)
	snap.AverageAge = SafeMean(alumni, age)
	snap.SampleEmail = SafeSample(alumni, email)

	professional := func() {
		snap.MostCommonCompany = SafeMode(alumni, company)
		snap.MostCommonPosition = SafeMode(alumni, position)
		snap.MostCommonSector = SafeMode(alumni, sector)
		snap.AverageSalary = SafeMean(alumni, salary)
	}

	switch statsType {
	case models.StatsQPRO:
		employed := countStatus(alumni, models.StatusEmployed)
		unemployed := countStatus(alumni, models.StatusUnemployed)
		snap.EmployedCount = &employed
		snap.UnemployedCount = &unemployed
		snap.EmploymentRate = rate(employed, total)
		professional()
		snap.MostCommonUnemploymentReason = SafeMode(alumni, reason)

	case models.StatsCHED:
		pursuing := countWhere(alumni, func(u *models.User) bool {
			return strings.EqualFold(strings.TrimSpace(u.PursueFurtherStudy), "yes")
		})
		postGrad := countWhere(alumni, func(u *models.User) bool {
			return strings.Contains(strings.ToLower(u.Program), "graduate")
		})
		snap.PursuingFurtherStudy = &pursuing
		snap.PostGraduateDegree = &postGrad
		snap.FurtherStudyRate = rate(pursuing, total)
		snap.MostCommonSchool = SafeMode(alumni, school)
		snap.MostCommonProgram = SafeMode(alumni, program)

	case models.StatsSUC:
		high := countStatus(alumni, models.StatusHighPosition)
		snap.HighPositionCount = &high
		snap.HighPositionRate = rate(high, total)
		professional()

	case models.StatsAACUP:
		employed := countStatus(alumni, models.StatusEmployed)
		absorbed := countStatus(alumni, models.StatusAbsorb)
		high := countStatus(alumni, models.StatusHighPosition)
		snap.EmployedCount = &employed
		snap.AbsorbedCount = &absorbed
		snap.HighPositionCount = &high
		snap.EmploymentRate = rate(employed, total)
		snap.AbsorptionRate = rate(absorbed, total)
		snap.HighPositionRate = rate(high, total)
		professional()
		snap.MostCommonSchool = SafeMode(alumni, school)

	default:
		snap.Type = models.StatsAll
		snap.StatusCounts = statusCounts(alumni)
		professional()
		snap.MostCommonSchool = SafeMode(alumni, school)
		snap.MostCommonUnemploymentReason = SafeMode(alumni, reason)
	}
	return snap
}

// SafeMode returns the most common non-empty value. Ties go to the value
// seen first.
func SafeMode(alumni []*models.User, field func(*models.User) string) *string {
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, u := range alumni {
		v := field(u)
		if strings.TrimSpace(v) == "" {
			continue
		}
		if _, seen := counts[v]; !seen {
			order = append(order, v)
		}
		counts[v]++
	}
	if len(order) == 0 {
		return nil
	}
	best := order[0]
	for _, v := range order[1:] {
		if counts[v] > counts[best] {
			best = v
		}
	}
	return &best
}

// SafeMean averages values that parse as numbers once commas and spaces
// are stripped, rounded to 2 decimals.
func SafeMean(alumni []*models.User, field func(*models.User) string) *float64 {
	var sum float64
	n := 0
	for _, u := range alumni {
		v := field(u)
		if v == "" {
			continue
		}
		cleaned := strings.NewReplacer(",", "", " ", "").Replace(v)
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		sum += f
		n++
	}
	if n == 0 {
		return nil
	}
	mean := round2(sum / float64(n))
	return &mean
}

// SafeSample returns the first non-empty value.
func SafeSample(alumni []*models.User, field func(*models.User) string) *string {
	for _, u := range alumni {
		if v := field(u); v != "" {
			return &v
		}
	}
	return nil
}

func countStatus(alumni []*models.User, status string) int {
	return countWhere(alumni, func(u *models.User) bool {
		return strings.EqualFold(strings.TrimSpace(u.UserStatus), status)
	})
}

func countWhere(alumni []*models.User, pred func(*models.User) bool) int {
	n := 0
	for _, u := range alumni {
		if pred(u) {
			n++
		}
	}
	return n
}

func statusCounts(alumni []*models.User) map[string]int {
	counts := make(map[string]int)
	for _, u := range alumni {
		counts[u.UserStatus]++
	}
	return counts
}

// rate is count/total*100 rounded to 2 decimals, 0 for an empty set.
func rate(count, total int) *float64 {
	r := 0.0
	if total > 0 {
		r = round2(float64(count) / float64(total) * 100)
	}
	return &r
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// ===== DETAILED DATA =====

// BuildDetailedData lays out one row per alumnus: the base profile columns,
// then the text of every question answered in the latest responses.
func BuildDetailedData(alumni []*models.User, latest map[uint]*models.TrackerResponse, questions map[uint]models.Question) *models.DetailedData {
	answered := make(map[uint]bool)
	for _, u := range alumni {
		r, ok := latest[u.ID]
		if !ok {
			continue
		}
		for key := range r.Answers {
			if id, err := strconv.ParseUint(key, 10, 64); err == nil {
				if _, known := questions[uint(id)]; known {
					answered[uint(id)] = true
				}
			}
		}
	}
	qids := make([]uint, 0, len(answered))
	for id := range answered {
		qids = append(qids, id)
	}
	sort.Slice(qids, func(i, j int) bool { return qids[i] < qids[j] })

	columns := append([]string{}, detailedBaseColumns...)
	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		seen[c] = true
	}
	for _, id := range qids {
		text := questions[id].Text
		if !seen[text] {
			columns = append(columns, text)
			seen[text] = true
		}
	}

	rows := make([]models.DetailedRow, 0, len(alumni))
	for _, u := range alumni {
		row := baseRow(u)
		r := latest[u.ID]
		for _, id := range qids {
			text := questions[id].Text
			if _, filled := row[text]; filled {
				continue
			}
			value := ""
			if r != nil {
				value = detailValue(r.Answers[strconv.FormatUint(uint64(id), 10)])
			}
			row[text] = value
		}
		rows = append(rows, row)
	}

	return &models.DetailedData{Columns: columns, Rows: rows}
}

func baseRow(u *models.User) models.DetailedRow {
	row := models.DetailedRow{
		"CTU_ID":                                 u.CTUID,
		"First_Name":                             u.FirstName,
		"Middle_Name":                            u.MiddleName,
		"Last_Name":                              u.LastName,
		"Gender":                                 u.Gender,
		"Birthdate":                              u.BirthdateString(),
		"Course":                                 u.Course,
		"Section":                                u.Section,
		"Program":                                u.Program,
		"Status":                                 u.UserStatus,
		"Phone_Number":                           u.Phone,
		"Email":                                  u.Email,
		"Address":                                u.Address,
		"Civil_Status":                           u.CivilStatus,
		"Social_Media":                           u.SocialMedia,
		"Company_Name_Current":                   u.CompanyNameCurrent,
		"Position_Current":                       u.PositionCurrent,
		"Sector_Current":                         u.SectorCurrent,
		"Employment_Duration_Current":            u.EmploymentDurationCurrent,
		"Salary_Current":                         u.SalaryCurrent,
		"Supporting_Document_Current":            u.SupportingDocumentCurrent,
		"Awards_Recognition_Current":             u.AwardsRecognitionCurrent,
		"Supporting_Document_Awards_Recognition": u.SupportingDocumentAwardsRecognition,
		"Unemployment_Reason":                    u.UnemploymentReason,
		"Pursue_Further_Study":                   u.PursueFurtherStudy,
		"School_Name":                            u.SchoolName,
		"Profile_Pic":                            u.ProfilePic,
		"Profile_Bio":                            u.ProfileBio,
		"Profile_Resume":                         u.ProfileResume,
	}
	row["Year_Graduated"] = ""
	if u.YearGraduated != nil {
		row["Year_Graduated"] = strconv.Itoa(*u.YearGraduated)
	}
	row["Age"] = ""
	if u.Age != nil {
		row["Age"] = strconv.Itoa(*u.Age)
	}
	row["Date_Started"] = ""
	if u.DateStarted != nil {
		row["Date_Started"] = u.DateStarted.Format(models.DateLayout)
	}
	return row
}

// detailValue renders an answer cell. Lists are joined with ", ".
func detailValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case map[string]interface{}:
		if name, ok := val["filename"].(string); ok {
			return name
		}
		return ""
	}
	return answerText(v)
}

// latestResponses keeps the most recent response per user.
func latestResponses(responses []*models.TrackerResponse) map[uint]*models.TrackerResponse {
	latest := make(map[uint]*models.TrackerResponse, len(responses))
	for _, r := range responses {
		if cur, ok := latest[r.UserID]; !ok || r.SubmittedAt.After(cur.SubmittedAt) {
			latest[r.UserID] = r
		}
	}
	return latest
}

// ===== FILTERS =====

func normalizeFilter(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, models.FilterAll) {
		return models.FilterAll
	}
	return s
}

// alumniFilters turns the year and course query values into filters.
// ALL or empty disables a filter.
func alumniFilters(year, course string) (repositories.AlumniFilters, error) {
	var filters repositories.AlumniFilters
	if y := normalizeFilter(year); y != models.FilterAll {
		n, err := strconv.Atoi(y)
		if err != nil {
			return filters, fieldError("year", "must be a four digit year or ALL", year)
		}
		filters.YearGraduated = &n
	}
	if c := normalizeFilter(course); c != models.FilterAll {
		filters.Course = c
	}
	return filters, nil
}

func fileToken(s string) string {
	return strings.ReplaceAll(normalizeFilter(s), " ", "_")
}
