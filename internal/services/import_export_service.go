package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/maeshaii/backend-wny/internal/cache"
	"github.com/maeshaii/backend-wny/internal/events"
	"github.com/maeshaii/backend-wny/internal/models"
	"github.com/maeshaii/backend-wny/internal/repositories"
	"github.com/xuri/excelize/v2"
)

const maxOJTImportErrors = 10

// Columns every import file must carry
var importRequiredColumns = []string{"CTU_ID", "First_Name", "Last_Name", "Gender", "Birthdate"}

// Header row of the downloadable alumni template
var importTemplateHeaders = []string{
	"CTU_ID", "First_Name", "Middle_Name", "Last_Name", "Gender", "Birthdate",
	"Phone_Number", "Address", "Civil Status", "Social Media",
}

// Profile columns of the batch export, tracker question texts follow
var batchExportColumns = []struct {
	header string
	value  func(u *models.User) string
}{
	{"CTU_ID", func(u *models.User) string { return u.CTUID }},
	{"First Name", func(u *models.User) string { return u.FirstName }},
	{"Middle Name", func(u *models.User) string { return u.MiddleName }},
	{"Last Name", func(u *models.User) string { return u.LastName }},
	{"Gender", func(u *models.User) string { return u.Gender }},
	{"Birthdate", func(u *models.User) string { return u.BirthdateString() }},
	{"Phone Number", func(u *models.User) string { return u.Phone }},
	{"Address", func(u *models.User) string { return u.Address }},
	{"Social Media", func(u *models.User) string { return u.SocialMedia }},
	{"Civil Status", func(u *models.User) string { return u.CivilStatus }},
	{"Age", func(u *models.User) string {
		if u.Age == nil {
			return ""
		}
		return strconv.Itoa(*u.Age)
	}},
	{"Email", func(u *models.User) string { return u.Email }},
	{"Program Name", func(u *models.User) string { return u.Program }},
}

// ImportExportService handles spreadsheet imports of alumni and OJT batches
// and the spreadsheet downloads built from them
type ImportExportService interface {
	// Import operations
	ImportAlumni(ctx context.Context, req *ImportRequest) (*models.ImportSummary, error)
	ImportOJT(ctx context.Context, req *ImportRequest) (*models.ImportSummary, error)
	ListImports(ctx context.Context, kind models.ImportKind, limit int) ([]*models.ImportRecord, error)

	// Export operations
	AlumniTemplate(ctx context.Context) (*ExportFile, error)
	ExportBatch(ctx context.Context, batchYear *int) (*ExportFile, error)
}

// ImportRequest is one uploaded batch file with its form fields.
type ImportRequest struct {
	Filename   string
	Content    io.Reader
	BatchYear  string
	Course     string
	ImportedBy string
}

type importExportService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	publisher events.EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewImportExportService(repo repositories.Repository, cacheService cache.CacheService, publisher events.EventPublisher, logger *slog.Logger) ImportExportService {
	return &importExportService{
		repo:      repo,
		cache:     cacheService,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// ===== IMPORT OPERATIONS =====

// importedRow is a validated spreadsheet row ready to become a user.
type importedRow struct {
	CTUID       string
	FirstName   string
	MiddleName  string
	LastName    string
	Gender      string
	Birthdate   time.Time
	Phone       string
	Address     string
	CivilStatus string
	SocialMedia string
	StartDate   *time.Time
	EndDate     *time.Time
	OJTStatus   models.OJTStatus
}

func (s *importExportService) ImportAlumni(ctx context.Context, req *ImportRequest) (*models.ImportSummary, error) {
	if err := checkImportRequest(req, false); err != nil {
		return nil, err
	}
	s.logger.Info("Starting alumni import", "filename", req.Filename, "batch_year", req.BatchYear, "course", req.Course)

	sh, err := readSheet(req.Content, req.Filename)
	if err != nil {
		return nil, fmt.Errorf("%w: Error reading Excel file: %v", ErrValidationFailed, err)
	}
	if missing := sh.missing(importRequiredColumns...); len(missing) > 0 {
		return nil, fmt.Errorf("%w: Missing required columns: %s", ErrValidationFailed, strings.Join(missing, ", "))
	}

	accountType, err := s.repo.User().GetAccountType(ctx, models.RoleAlumni)
	if err != nil {
		return nil, fmt.Errorf("failed to load alumni account type: %w", err)
	}

	created, skipped := 0, 0
	errs := make([]string, 0)
	for i, raw := range sh.rows {
		if blankRow(raw) {
			continue
		}
		rowNum := i + 2

		row, msg := parseAlumniRow(sh, raw, rowNum)
		if msg != "" {
			errs = append(errs, msg)
			continue
		}

		exists, err := s.repo.User().ExistsByCTUID(ctx, row.CTUID)
		if err != nil {
			errs = append(errs, fmt.Sprintf("Row %d: Unexpected error: %v", rowNum, err))
			continue
		}
		if exists {
			errs = append(errs, fmt.Sprintf("Row %d: CTU ID %s already exists (skipped)", rowNum, row.CTUID))
			skipped++
			continue
		}

		user := row.toUser(accountType, req)
		if err := s.repo.User().Create(ctx, user); err != nil {
			errs = append(errs, fmt.Sprintf("Row %d: Unexpected error: %v", rowNum, err))
			continue
		}
		created++
	}

	s.finishImport(ctx, models.ImportKindAlumni, req, created, skipped, errs)

	return &models.ImportSummary{
		Success:      true,
		Message:      fmt.Sprintf("Successfully created %d alumni accounts. Skipped %d duplicates.", created, skipped),
		CreatedCount: created,
		SkippedCount: skipped,
		Errors:       errs,
	}, nil
}

func (s *importExportService) ImportOJT(ctx context.Context, req *ImportRequest) (*models.ImportSummary, error) {
	if err := checkImportRequest(req, true); err != nil {
		return nil, err
	}
	s.logger.Info("Starting OJT import", "filename", req.Filename, "batch_year", req.BatchYear, "coordinator", req.ImportedBy)

	sh, err := readSheet(req.Content, req.Filename)
	if err != nil {
		return nil, fmt.Errorf("%w: Error reading Excel file: %v", ErrValidationFailed, err)
	}
	if missing := sh.missing(importRequiredColumns...); len(missing) > 0 {
		return nil, fmt.Errorf("%w: Missing required OJT columns: %s", ErrValidationFailed, strings.Join(missing, ", "))
	}

	accountType, err := s.repo.User().GetAccountType(ctx, models.RoleOJT)
	if err != nil {
		return nil, fmt.Errorf("failed to load OJT account type: %w", err)
	}

	now := s.now()
	created, skipped := 0, 0
	errs := make([]string, 0)
	for i, raw := range sh.rows {
		if blankRow(raw) {
			continue
		}
		rowNum := i + 2

		row, msg := parseOJTRow(sh, raw, rowNum)
		if msg == "" {
			exists, err := s.repo.User().ExistsByCTUID(ctx, row.CTUID)
			switch {
			case err != nil:
				msg = fmt.Sprintf("Row %d: An unexpected error occurred - %v", rowNum, err)
			case exists:
				msg = fmt.Sprintf("Row %d: CTU ID %s already exists in OJT data", rowNum, row.CTUID)
			}
		}
		if msg != "" {
			errs = append(errs, msg)
			skipped++
			continue
		}

		user := row.toUser(accountType, req)
		user.Age = models.IntPtr(models.AgeAt(row.Birthdate, now))
		user.DateStarted = row.StartDate
		user.OJTEndDate = row.EndDate
		user.OJTStatus = row.OJTStatus
		if err := s.repo.User().Create(ctx, user); err != nil {
			errs = append(errs, fmt.Sprintf("Row %d: An unexpected error occurred - %v", rowNum, err))
			skipped++
			continue
		}
		created++
	}

	s.finishImport(ctx, models.ImportKindOJT, req, created, skipped, errs)

	shown := errs
	if len(shown) > maxOJTImportErrors {
		shown = shown[:maxOJTImportErrors]
	}
	return &models.ImportSummary{
		Success:      true,
		Message:      fmt.Sprintf("OJT import completed. Created: %d, Skipped: %d", created, skipped),
		CreatedCount: created,
		SkippedCount: skipped,
		Errors:       shown,
	}, nil
}

func checkImportRequest(req *ImportRequest, ojt bool) error {
	if req == nil || req.Content == nil {
		return fmt.Errorf("%w: No file uploaded", ErrValidationFailed)
	}
	switch strings.ToLower(filepath.Ext(req.Filename)) {
	case ".xlsx", ".xls":
	default:
		return fmt.Errorf("%w: Please upload an Excel file (.xlsx or .xls)", ErrUnsupportedFile)
	}
	req.BatchYear = strings.TrimSpace(req.BatchYear)
	req.Course = strings.TrimSpace(req.Course)
	if ojt {
		if req.BatchYear == "" || req.Course == "" || strings.TrimSpace(req.ImportedBy) == "" {
			return fmt.Errorf("%w: Batch year, course, and coordinator username are required", ErrValidationFailed)
		}
		return nil
	}
	if req.BatchYear == "" || req.Course == "" {
		return fmt.Errorf("%w: Batch year and course are required", ErrValidationFailed)
	}
	return nil
}

func parseAlumniRow(sh *sheet, raw []string, rowNum int) (*importedRow, string) {
	row := baseImportRow(sh, raw)
	birthRaw := sh.cell(raw, "Birthdate")
	if row.CTUID == "" || row.FirstName == "" || row.LastName == "" || row.Gender == "" || birthRaw == "" {
		return nil, fmt.Sprintf("Row %d: Missing required fields (CTU_ID, First_Name, Last_Name, Gender, Birthdate)", rowNum)
	}
	if row.Gender != "M" && row.Gender != "F" {
		return nil, fmt.Sprintf("Row %d: Gender must be 'M' or 'F'", rowNum)
	}
	birth, ok := ParseSpreadsheetDate(birthRaw, false)
	if !ok {
		return nil, fmt.Sprintf("Row %d: Cannot parse birthdate '%s'. Please check the format.", rowNum, birthRaw)
	}
	row.Birthdate = birth
	return row, ""
}

func parseOJTRow(sh *sheet, raw []string, rowNum int) (*importedRow, string) {
	row := baseImportRow(sh, raw)
	birth, birthOK := ParseSpreadsheetDate(sh.cell(raw, "Birthdate"), false)

	var missing []string
	for _, f := range []struct {
		name    string
		present bool
	}{
		{"CTU_ID", row.CTUID != ""},
		{"First_Name", row.FirstName != ""},
		{"Last_Name", row.LastName != ""},
		{"Gender", row.Gender != ""},
		{"Birthdate", birthOK},
	} {
		if !f.present {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Sprintf("Row %d: Missing or invalid required fields - %s", rowNum, strings.Join(missing, ", "))
	}
	if row.Gender != "M" && row.Gender != "F" {
		return nil, fmt.Sprintf("Row %d: Gender must be 'M' or 'F', but was '%s'", rowNum, row.Gender)
	}

	row.Birthdate = birth
	if t, ok := ParseSpreadsheetDate(sh.cell(raw, "Ojt_Start_Date", "Start_Date"), true); ok {
		row.StartDate = &t
	}
	if t, ok := ParseSpreadsheetDate(sh.cell(raw, "Ojt_End_Date", "End_Date"), true); ok {
		row.EndDate = &t
	}
	row.OJTStatus = models.OJTOngoing
	if value := sh.cell(raw, "Ojt_Status", "Status"); value != "" {
		status, ok := models.ParseOJTStatus(value)
		if !ok {
			return nil, fmt.Sprintf("Row %d: Status must be Ongoing, Completed or Incomplete, but was '%s'", rowNum, value)
		}
		row.OJTStatus = status
	}
	return row, ""
}

func baseImportRow(sh *sheet, raw []string) *importedRow {
	return &importedRow{
		CTUID:       cleanNumber(sh.cell(raw, "CTU_ID")),
		FirstName:   sh.cell(raw, "First_Name"),
		MiddleName:  sh.cell(raw, "Middle_Name"),
		LastName:    sh.cell(raw, "Last_Name"),
		Gender:      strings.ToUpper(sh.cell(raw, "Gender")),
		Phone:       cleanNumber(sh.cell(raw, "Phone_Number")),
		Address:     sh.cell(raw, "Address"),
		CivilStatus: sh.cell(raw, "Civil_Status"),
		SocialMedia: sh.cell(raw, "Social_Media"),
	}
}

func (r *importedRow) toUser(accountType *models.AccountType, req *ImportRequest) *models.User {
	birth := r.Birthdate
	user := &models.User{
		CTUID:         r.CTUID,
		Password:      birth.Format(models.DateLayout),
		AccountTypeID: accountType.ID,
		UserStatus:    models.StatusActive,
		FirstName:     r.FirstName,
		MiddleName:    r.MiddleName,
		LastName:      r.LastName,
		Gender:        r.Gender,
		Birthdate:     &birth,
		Phone:         r.Phone,
		Address:       r.Address,
		CivilStatus:   r.CivilStatus,
		SocialMedia:   r.SocialMedia,
		Course:        req.Course,
	}
	if year, err := strconv.Atoi(req.BatchYear); err == nil {
		user.YearGraduated = &year
	}
	return user
}

// finishImport writes the audit record, drops cached statistics and
// publishes the import event. Failures are logged only.
func (s *importExportService) finishImport(ctx context.Context, kind models.ImportKind, req *ImportRequest, created, skipped int, errs []string) {
	status := models.ImportCompleted
	if len(errs) > 0 {
		status = models.ImportFailed
		if created > 0 {
			status = models.ImportPartial
		}
	}
	year, _ := strconv.Atoi(req.BatchYear)
	record := &models.ImportRecord{
		Kind:            kind,
		ImportedBy:      req.ImportedBy,
		BatchYear:       year,
		Course:          req.Course,
		FileName:        req.Filename,
		RecordsImported: created,
		Status:          status,
		Errors:          errs,
	}
	if err := s.repo.Import().Create(ctx, record); err != nil {
		s.logger.Error("Failed to save import record", "kind", kind, "error", err)
	}

	s.logger.Info("Import completed",
		"kind", kind,
		"created", created,
		"skipped", skipped,
		"errors", len(errs),
		"status", status)

	if created == 0 {
		return
	}
	if s.cache != nil {
		if err := s.cache.DeletePattern(ctx, cache.StatsPattern()); err != nil {
			s.logger.Warn("Failed to invalidate statistics cache", "error", err)
		}
	}
	if s.publisher != nil {
		event := events.NewImportCompletedEvent(kind == models.ImportKindOJT, events.ImportCompletedEvent{
			ImportID:     record.ID,
			BatchYear:    year,
			Course:       req.Course,
			ImportedBy:   req.ImportedBy,
			CreatedCount: created,
			SkippedCount: skipped,
		})
		if err := s.publisher.PublishNotificationEvent(ctx, event); err != nil {
			s.logger.Warn("Failed to publish import event", "kind", kind, "error", err)
		}
	}
}

func (s *importExportService) ListImports(ctx context.Context, kind models.ImportKind, limit int) ([]*models.ImportRecord, error) {
	records, err := s.repo.Import().List(ctx, kind, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list imports: %w", err)
	}
	return records, nil
}

// ===== EXPORT OPERATIONS =====

func (s *importExportService) AlumniTemplate(ctx context.Context) (*ExportFile, error) {
	rows := [][]interface{}{
		toRow(importTemplateHeaders),
		{"1234567", "Juan", "Santos", "Dela Cruz", "M", "2000-01-15", "09123456789", "Cebu City", "Single", "https://facebook.com/juan"},
		{"7654321", "Maria", "", "Reyes", "F", "01/31/2001", "09987654321", "Mandaue City", "Married", ""},
	}
	data, err := writeSheet("Alumni", rows)
	if err != nil {
		return nil, fmt.Errorf("failed to build template: %w", err)
	}
	return &ExportFile{Filename: "alumni_import_template.xlsx", ContentType: contentTypeXLSX, Data: data}, nil
}

// ExportBatch writes the alumni of a batch with the text of every tracker
// question they answered.
func (s *importExportService) ExportBatch(ctx context.Context, batchYear *int) (*ExportFile, error) {
	alumni, err := s.repo.User().ListAlumni(ctx, repositories.AlumniFilters{YearGraduated: batchYear})
	if err != nil {
		return nil, fmt.Errorf("failed to list alumni: %w", err)
	}
	responses, err := s.repo.Tracker().ListResponses(ctx, repositories.ResponseFilters{BatchYear: batchYear})
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}
	categories, err := s.repo.Tracker().ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}

	latest := latestResponses(responses)
	questions := questionIndex(categories)

	answered := make(map[uint]bool)
	for _, r := range latest {
		for key := range r.Answers {
			if id, err := strconv.ParseUint(key, 10, 64); err == nil {
				if _, ok := questions[uint(id)]; ok {
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

	header := make([]string, 0, len(batchExportColumns)+len(qids))
	seen := make(map[string]bool)
	for _, c := range batchExportColumns {
		header = append(header, c.header)
		seen[c.header] = true
	}
	questionCols := make([]uint, 0, len(qids))
	for _, id := range qids {
		if text := questions[id].Text; !seen[text] {
			header = append(header, text)
			seen[text] = true
			questionCols = append(questionCols, id)
		}
	}

	rows := [][]interface{}{toRow(header)}
	for _, u := range alumni {
		row := make([]string, 0, len(header))
		for _, c := range batchExportColumns {
			row = append(row, c.value(u))
		}
		r := latest[u.ID]
		for _, id := range questionCols {
			value := ""
			if r != nil {
				value = detailValue(r.Answers[strconv.FormatUint(uint64(id), 10)])
			}
			row = append(row, value)
		}
		rows = append(rows, toRow(row))
	}

	data, err := writeSheet("Alumni", rows)
	if err != nil {
		return nil, fmt.Errorf("failed to build export: %w", err)
	}
	filename := "alumni_export.xlsx"
	if batchYear != nil {
		filename = fmt.Sprintf("alumni_export_batch_%d.xlsx", *batchYear)
	}
	s.logger.Info("Alumni batch exported", "filename", filename, "rows", len(alumni))
	return &ExportFile{Filename: filename, ContentType: contentTypeXLSX, Data: data}, nil
}

func toRow(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// writeSheet renders rows into a single-sheet workbook.
func writeSheet(name string, rows [][]interface{}) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", name); err != nil {
		return nil, err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return nil, err
		}
	}
	if len(rows) > 0 {
		style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err == nil {
			last, _ := excelize.CoordinatesToCellName(len(rows[0]), 1)
			_ = f.SetCellStyle(name, "A1", last, style)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

