package tracker

import (
	"io"
	"strconv"

	"github.com/maeshaii/backend-wny/internal/models"
)

// File is an attachment picked for a file question.
type File struct {
	Name    string
	Content io.Reader
}

// Value is one answer. Text carries text, radio and multiple answers,
// Choices carries checkbox answers and File carries uploads.
type Value struct {
	Text    string
	Choices []string
	File    *File
}

func Text(s string) Value { return Value{Text: s} }

func Choices(c ...string) Value {
	if c == nil {
		c = []string{}
	}
	return Value{Choices: c}
}

func Attachment(name string, r io.Reader) Value {
	return Value{File: &File{Name: name, Content: r}}
}

func (v Value) IsFile() bool { return v.File != nil }

// wire converts the answer to its JSON form in the submission payload.
func (v Value) wire() interface{} {
	switch {
	case v.File != nil:
		return map[string]string{"type": string(models.QuestionFile)}
	case v.Choices != nil:
		return v.Choices
	default:
		return v.Text
	}
}

// Answers is the draft response keyed by question id.
type Answers map[uint]Value

// UserField names an attribute of the signed-in alumni record.
type UserField string

const (
	FieldFirstName   UserField = "first_name"
	FieldMiddleName  UserField = "middle_name"
	FieldLastName    UserField = "last_name"
	FieldCTUID       UserField = "ctu_id"
	FieldCourse      UserField = "course"
	FieldProgram     UserField = "program"
	FieldBatch       UserField = "batch"
	FieldStatus      UserField = "status"
	FieldGender      UserField = "gender"
	FieldBirthdate   UserField = "birthdate"
	FieldPhone       UserField = "phone"
	FieldAddress     UserField = "address"
	FieldEmail       UserField = "email"
	FieldCivilStatus UserField = "civil_status"
	FieldAge         UserField = "age"
	FieldSocialMedia UserField = "social_media"
	FieldSchoolName  UserField = "school_name"
)

// Record is the read-only alumni reference data used for prefill.
type Record map[UserField]string

func RecordFromUser(u *models.User) Record {
	if u == nil {
		return nil
	}
	r := Record{
		FieldFirstName:   u.FirstName,
		FieldMiddleName:  u.MiddleName,
		FieldLastName:    u.LastName,
		FieldCTUID:       u.CTUID,
		FieldCourse:      u.Course,
		FieldProgram:     u.Program,
		FieldStatus:      u.UserStatus,
		FieldGender:      u.Gender,
		FieldBirthdate:   u.BirthdateString(),
		FieldPhone:       u.Phone,
		FieldAddress:     u.Address,
		FieldEmail:       u.Email,
		FieldCivilStatus: u.CivilStatus,
		FieldSocialMedia: u.SocialMedia,
		FieldSchoolName:  u.SchoolName,
	}
	if u.YearGraduated != nil {
		r[FieldBatch] = strconv.Itoa(*u.YearGraduated)
	}
	if u.Age != nil {
		r[FieldAge] = strconv.Itoa(*u.Age)
	}
	return r
}
