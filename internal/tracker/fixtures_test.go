package tracker

import (
	"github.com/maeshaii/backend-wny/internal/models"
)

const (
	qContact      uint = 1
	qCourse       uint = 2
	qBirthdate    uint = 3
	qEmail        uint = 4
	qFacebook     uint = 5
	qFirstName    uint = 6
	qCompanyAddr  uint = 7
	qEmployed     uint = 10
	qCompany      uint = 20
	qReason       uint = 30
	qSchool       uint = 40
	qFurtherStudy uint = 41

	catGeneral      uint = 1
	catEmployment   uint = 2
	catEmployedPart uint = 3
	catUnemployed   uint = 4
	catFurtherStudy uint = 5
	catStudyGate    uint = 6
)

func q(id uint, text string, t models.QuestionType, opts ...string) models.Question {
	return models.Question{ID: id, Text: text, Type: t, Options: opts}
}

func sampleForm() []models.QuestionCategory {
	return []models.QuestionCategory{
		{ID: catGeneral, Title: "PART I: GENERAL INFORMATION", Questions: []models.Question{
			q(qContact, "Contact Number", models.QuestionText),
			q(qCourse, "Course", models.QuestionText),
			q(qBirthdate, "Birthdate", models.QuestionText),
			q(qEmail, "Email Address", models.QuestionText),
			q(qFacebook, "Facebook profile link", models.QuestionText),
			q(qFirstName, "First Name", models.QuestionText),
			q(qCompanyAddr, "Company address of employer after graduation", models.QuestionText),
		}},
		{ID: catEmployment, Title: "PART II: EMPLOYMENT", Questions: []models.Question{
			q(qEmployed, "Are you PRESENTLY employed?", models.QuestionRadio, "Yes", "No"),
		}},
		{ID: catEmployedPart, Title: "PART III: EMPLOYMENT STATUS", Questions: []models.Question{
			q(qCompany, "Company name", models.QuestionText),
		}},
		{ID: catUnemployed, Title: "IF UNEMPLOYED", Questions: []models.Question{
			q(qReason, "Reason", models.QuestionText),
		}},
		{ID: catFurtherStudy, Title: "PART IV: FURTHER STUDY", Questions: []models.Question{
			q(qSchool, "School name", models.QuestionText),
		}},
		{ID: catStudyGate, Title: "PART V: PLANS", Questions: []models.Question{
			q(qFurtherStudy, "Did you pursue further study?", models.QuestionRadio, "Yes", "No"),
		}},
	}
}

func categoryByID(cats []models.QuestionCategory, id uint) models.QuestionCategory {
	for _, c := range cats {
		if c.ID == id {
			return c
		}
	}
	panic("no category")
}

func questionByID(cats []models.QuestionCategory, id uint) models.Question {
	for _, c := range cats {
		for _, qq := range c.Questions {
			if qq.ID == id {
				return qq
			}
		}
	}
	panic("no question")
}
