package models

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleAdmin       UserRole = "admin"
	RolePESO        UserRole = "peso"
	RoleAlumni      UserRole = "user"
	RoleCoordinator UserRole = "coordinator"
	RoleOJT         UserRole = "ojt"
)

// Employment status values stored in User.UserStatus
const (
	StatusActive       = "active"
	StatusEmployed     = "employed"
	StatusUnemployed   = "unemployed"
	StatusAbsorb       = "absorb"
	StatusHighPosition = "high position"
)

// OJTStatus is a trainee's on-the-job training progress
type OJTStatus string

const (
	OJTOngoing    OJTStatus = "Ongoing"
	OJTCompleted  OJTStatus = "Completed"
	OJTIncomplete OJTStatus = "Incomplete"
)

var OJTStatuses = []OJTStatus{OJTOngoing, OJTCompleted, OJTIncomplete}

func (s OJTStatus) Valid() bool {
	switch s {
	case OJTOngoing, OJTCompleted, OJTIncomplete:
		return true
	}
	return false
}

// ParseOJTStatus matches a status name ignoring case.
func ParseOJTStatus(s string) (OJTStatus, bool) {
	for _, st := range OJTStatuses {
		if strings.EqualFold(strings.TrimSpace(s), string(st)) {
			return st, true
		}
	}
	return "", false
}

type AccountType struct {
	ID          uint `json:"-" gorm:"primaryKey"`
	Admin       bool `json:"admin" gorm:"default:false"`
	PESO        bool `json:"peso" gorm:"column:peso;default:false"`
	User        bool `json:"user" gorm:"column:is_user;default:false"`
	Coordinator bool `json:"coordinator" gorm:"default:false"`
	OJT         bool `json:"ojt" gorm:"column:ojt;default:false"`
}

func (AccountType) TableName() string {
	return "account_types"
}

// Role returns the highest-privilege role the flags grant.
func (a AccountType) Role() UserRole {
	switch {
	case a.Admin:
		return RoleAdmin
	case a.PESO:
		return RolePESO
	case a.Coordinator:
		return RoleCoordinator
	case a.OJT:
		return RoleOJT
	default:
		return RoleAlumni
	}
}

type User struct {
	ID            uint         `json:"id" gorm:"primaryKey"`
	CTUID         string       `json:"ctu_id" gorm:"column:acc_username;uniqueIndex;not null;size:100"`
	Password      string       `json:"-" gorm:"column:acc_password;size:100"` // birthdate, YYYY-MM-DD
	AccountTypeID uint         `json:"-" gorm:"index"`
	AccountType   *AccountType `json:"account_type,omitempty" gorm:"foreignKey:AccountTypeID"`
	UserStatus    string       `json:"user_status" gorm:"size:50;index"`

	FirstName   string     `json:"first_name" gorm:"column:f_name;size:100"`
	MiddleName  string     `json:"middle_name" gorm:"column:m_name;size:100"`
	LastName    string     `json:"last_name" gorm:"column:l_name;size:100"`
	Gender      string     `json:"gender" gorm:"size:10"`
	Birthdate   *time.Time `json:"birthdate" gorm:"type:date"`
	Age         *int       `json:"age"`
	Phone       string     `json:"phone" gorm:"column:phone_num;size:30"`
	Address     string     `json:"address" gorm:"type:text"`
	Email       string     `json:"email" gorm:"size:255;index"`
	CivilStatus string     `json:"civil_status" gorm:"size:50"`
	SocialMedia string     `json:"social_media" gorm:"size:255"`

	YearGraduated *int   `json:"year_graduated" gorm:"index"`
	Course        string `json:"course" gorm:"size:100;index"`
	Section       string `json:"section" gorm:"size:50"`
	Program       string `json:"program" gorm:"size:255"`
	Status        string `json:"status" gorm:"size:100"`

	ProfilePic    string `json:"profile_pic" gorm:"size:500"`
	ProfileBio    string `json:"profile_bio" gorm:"type:text"`
	ProfileResume string `json:"profile_resume" gorm:"size:500"`

	CompanyNameCurrent                  string `json:"company_name_current" gorm:"size:255"`
	PositionCurrent                     string `json:"position_current" gorm:"size:255"`
	SectorCurrent                       string `json:"sector_current" gorm:"size:255"`
	EmploymentDurationCurrent           string `json:"employment_duration_current" gorm:"size:100"`
	SalaryCurrent                       string `json:"salary_current" gorm:"size:100"`
	SupportingDocumentCurrent           string `json:"supporting_document_current" gorm:"size:500"`
	AwardsRecognitionCurrent            string `json:"awards_recognition_current" gorm:"type:text"`
	SupportingDocumentAwardsRecognition string `json:"supporting_document_awards_recognition" gorm:"size:500"`
	UnemploymentReason                  string `json:"unemployment_reason" gorm:"type:text"`
	PursueFurtherStudy                  string `json:"pursue_further_study" gorm:"size:10"`
	SchoolName                          string `json:"school_name" gorm:"size:255"`

	DateStarted *time.Time `json:"date_started" gorm:"type:date"`
	OJTEndDate  *time.Time `json:"ojt_end_date" gorm:"type:date"`
	OJTStatus   OJTStatus  `json:"ojt_status,omitempty" gorm:"column:ojtstatus;size:20;index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

// FullName joins first, middle and last name, skipping empty parts.
func (u *User) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{u.FirstName, u.MiddleName, u.LastName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// ShortName is "first last", the form used in notifications.
func (u *User) ShortName() string {
	return strings.TrimSpace(fmt.Sprintf("%s %s", u.FirstName, u.LastName))
}

func (u *User) Role() UserRole {
	if u.AccountType == nil {
		return RoleAlumni
	}
	return u.AccountType.Role()
}

func (u *User) BirthdateString() string {
	if u.Birthdate == nil {
		return ""
	}
	return u.Birthdate.Format(DateLayout)
}

// CalculatedAge derives the age from the birthdate at the given instant.
func (u *User) CalculatedAge(now time.Time) *int {
	if u.Birthdate == nil {
		return u.Age
	}
	age := AgeAt(*u.Birthdate, now)
	return &age
}

// AgeAt returns full years elapsed between birth and now.
func AgeAt(birth, now time.Time) int {
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age
}

// ProfileView is returned after a profile update.
type ProfileView struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	ProfilePic string `json:"profile_pic"`
	Bio        string `json:"bio"`
}

// AlumniListItem is one row of the alumni directory.
type AlumniListItem struct {
	ID          uint   `json:"id"`
	CTUID       string `json:"ctu_id"`
	Name        string `json:"name"`
	Course      string `json:"course"`
	Batch       *int   `json:"batch"`
	Status      string `json:"status"`
	Gender      string `json:"gender"`
	Birthdate   string `json:"birthdate,omitempty"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	CivilStatus string `json:"civilStatus"`
	SocialMedia string `json:"socialMedia"`
	ProfilePic  string `json:"profile_pic,omitempty"`
}

// OJTListItem is one trainee in the per-year OJT listing.
type OJTListItem struct {
	ID           uint   `json:"id"`
	CTUID        string `json:"ctu_id"`
	FirstName    string `json:"first_name"`
	MiddleName   string `json:"middle_name"`
	LastName     string `json:"last_name"`
	Gender       string `json:"gender"`
	Birthdate    string `json:"birthdate"`
	Age          *int   `json:"age"`
	Phone        string `json:"phone_number"`
	Address      string `json:"address"`
	CivilStatus  string `json:"civil_status"`
	SocialMedia  string `json:"social_media"`
	Course       string `json:"course"`
	OJTStartDate string `json:"ojt_start_date"`
	OJTEndDate   string `json:"ojt_end_date"`
	OJTStatus    string `json:"ojt_status"`
	BatchYear    *int   `json:"batch_year"`
}

// OJTStatistics is the coordinator overview: progress per status for the
// filtered trainees plus record counts per batch year.
type OJTStatistics struct {
	TotalOJT       int            `json:"total_ojt"`
	StatusCounts   map[string]int `json:"status_counts"`
	CompletionRate float64        `json:"completion_rate"`
	OngoingRate    float64        `json:"ongoing_rate"`
	IncompleteRate float64        `json:"incomplete_rate"`
	Years          []YearCount    `json:"years"`
	TotalRecords   int            `json:"total_records"`
}

type OJTStatusRequest struct {
	Status OJTStatus `json:"ojt_status"`
}

type OJTStatusUpdate struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	UserID    uint      `json:"user_id"`
	NewStatus OJTStatus `json:"new_status"`
}
