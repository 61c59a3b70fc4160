package models

import (
	"fmt"
	"strings"
)

type StatsType string

const (
	StatsAll   StatsType = "ALL"
	StatsQPRO  StatsType = "QPRO"
	StatsCHED  StatsType = "CHED"
	StatsSUC   StatsType = "SUC"
	StatsAACUP StatsType = "AACUP"
)

// FixedStatsTypes are the accreditation templates fetched by an ALL report.
var FixedStatsTypes = []StatsType{StatsQPRO, StatsCHED, StatsSUC, StatsAACUP}

func ParseStatsType(s string) (StatsType, error) {
	t := StatsType(strings.ToUpper(strings.TrimSpace(s)))
	if t == "" {
		return StatsAll, nil
	}
	switch t {
	case StatsAll, StatsQPRO, StatsCHED, StatsSUC, StatsAACUP:
		return t, nil
	}
	return "", fmt.Errorf("unknown statistics type %q", s)
}

// StatsSnapshot is the aggregate returned for one statistics type. Fields not
// produced by a type are left nil and omitted from JSON.
type StatsSnapshot struct {
	Type        StatsType `json:"type"`
	TotalAlumni int       `json:"total_alumni"`
	Year        string    `json:"year"`
	Course      string    `json:"course"`

	StatusCounts map[string]int `json:"status_counts,omitempty"`

	EmployedCount        *int `json:"employed_count,omitempty"`
	UnemployedCount      *int `json:"unemployed_count,omitempty"`
	AbsorbedCount        *int `json:"absorbed_count,omitempty"`
	HighPositionCount    *int `json:"high_position_count,omitempty"`
	PursuingFurtherStudy *int `json:"pursuing_further_study,omitempty"`
	PostGraduateDegree   *int `json:"post_graduate_degree,omitempty"`

	EmploymentRate   *float64 `json:"employment_rate,omitempty"`
	AbsorptionRate   *float64 `json:"absorption_rate,omitempty"`
	HighPositionRate *float64 `json:"high_position_rate,omitempty"`
	FurtherStudyRate *float64 `json:"further_study_rate,omitempty"`

	MostCommonCompany            *string  `json:"most_common_company,omitempty"`
	MostCommonPosition           *string  `json:"most_common_position,omitempty"`
	MostCommonSector             *string  `json:"most_common_sector,omitempty"`
	MostCommonAwards             *string  `json:"most_common_awards,omitempty"`
	MostCommonSchool             *string  `json:"most_common_school,omitempty"`
	MostCommonProgram            *string  `json:"most_common_program,omitempty"`
	MostCommonUnemploymentReason *string  `json:"most_common_unemployment_reason,omitempty"`
	MostCommonCivilStatus        *string  `json:"most_common_civil_status,omitempty"`
	AverageSalary                *float64 `json:"average_salary,omitempty"`
	AverageAge                   *float64 `json:"average_age,omitempty"`
	SampleEmail                  *string  `json:"sample_email,omitempty"`
}

type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

// AlumniStatistics is the dashboard overview: status breakdown plus batches.
type AlumniStatistics struct {
	StatusCounts map[string]int `json:"status_counts"`
	Years        []YearCount    `json:"years"`
}

// DetailedRow is one alumnus in the detailed export, keyed by column name.
type DetailedRow map[string]string

type DetailedData struct {
	Columns []string      `json:"columns"`
	Rows    []DetailedRow `json:"detailed_data"`
}
