package tracker

import (
	"testing"

	"github.com/maeshaii/backend-wny/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShouldShowCategory_Unemployed(t *testing.T) {
	form := sampleForm()
	unemployed := categoryByID(form, catUnemployed)

	tests := []struct {
		name    string
		answers Answers
		want    bool
	}{
		{"answered No", Answers{qEmployed: Text("No")}, true},
		{"answered Yes", Answers{qEmployed: Text("Yes")}, false},
		{"lowercase no is not No", Answers{qEmployed: Text("no")}, false},
		{"unanswered", Answers{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldShowCategory(form, unemployed, tt.answers))
		})
	}
}

func TestShouldShowCategory_EmploymentStatusAndFurtherStudy(t *testing.T) {
	form := sampleForm()
	rs := Compile(form)

	employed := Answers{qEmployed: Text("Yes"), qFurtherStudy: Text("Yes")}
	assert.True(t, rs.ShouldShowCategory(categoryByID(form, catEmployedPart), employed))
	assert.False(t, rs.ShouldShowCategory(categoryByID(form, catUnemployed), employed))
	assert.True(t, rs.ShouldShowCategory(categoryByID(form, catFurtherStudy), employed))

	notStudying := Answers{qFurtherStudy: Text("No")}
	assert.False(t, rs.ShouldShowCategory(categoryByID(form, catFurtherStudy), notStudying))

	// Categories without a rule are always shown
	assert.True(t, rs.ShouldShowCategory(categoryByID(form, catGeneral), Answers{}))
}

func TestShouldShowCategory_NoGateQuestionDefaultsVisible(t *testing.T) {
	form := []models.QuestionCategory{
		{ID: 1, Title: "If Unemployed", Questions: []models.Question{q(9, "Reason", models.QuestionText)}},
		{ID: 2, Title: "Employment status if unemployed", Questions: nil},
	}
	rs := Compile(form)

	assert.True(t, rs.ShouldShowCategory(form[0], Answers{}))
	assert.True(t, rs.ShouldShowCategory(form[1], Answers{9: Text("No")}))
	_, ok := rs.Visibility(1)
	assert.False(t, ok)
}

func TestCompile_AmbiguousGateFirstWins(t *testing.T) {
	form := sampleForm()
	form = append(form, models.QuestionCategory{ID: 99, Title: "Extra", Questions: []models.Question{
		q(500, "Are you presently employed abroad?", models.QuestionRadio, "Yes", "No"),
	}})

	rs := Compile(form)

	rule, ok := rs.Visibility(catUnemployed)
	require.True(t, ok)
	assert.Equal(t, qEmployed, rule.GateQuestionID)
	assert.Equal(t, "No", rule.Want)

	require.Len(t, rs.Ambiguities, 1)
	assert.Equal(t, Ambiguity{Keyword: "presently employed", Chosen: qEmployed, Ignored: []uint{500}}, rs.Ambiguities[0])
}

func TestRuleSet_SetVisibilityOverrides(t *testing.T) {
	form := sampleForm()
	rs := Compile(form)
	general := categoryByID(form, catGeneral)

	rs.SetVisibility(catGeneral, VisibilityRule{GateQuestionID: qEmployed, Want: "Yes"})
	assert.False(t, rs.ShouldShowCategory(general, Answers{qEmployed: Text("No")}))
	assert.True(t, rs.ShouldShowCategory(general, Answers{qEmployed: Text("Yes")}))

	rs.ClearVisibility(catGeneral)
	assert.True(t, rs.ShouldShowCategory(general, Answers{qEmployed: Text("No")}))
}

func TestPrefill_PhoneAlwaysFromRecord(t *testing.T) {
	form := sampleForm()
	rs := Compile(form)
	record := Record{FieldPhone: "09171234567"}

	for _, text := range []string{"Contact Number", "Mobile no.", "Phone"} {
		question := q(qContact, text, models.QuestionText)
		got := rs.Prefill(question, Answers{qContact: Text("09999999999")}, record)
		assert.Equal(t, "09171234567", got.Text, text)
	}
}

func TestPrefill_ResolutionOrder(t *testing.T) {
	form := sampleForm()
	rs := Compile(form)
	record := Record{
		FieldCourse:    "BSIT",
		FieldBirthdate: "12/04/2003",
		FieldFirstName: "Ana",
		FieldAddress:   "Cebu City",
	}

	t.Run("birthdate normalized from record", func(t *testing.T) {
		got := rs.Prefill(questionByID(form, qBirthdate), Answers{qBirthdate: Text("2000-01-01")}, record)
		assert.Equal(t, "2003-12-04", got.Text)
	})

	t.Run("course from record over draft", func(t *testing.T) {
		got := rs.Prefill(questionByID(form, qCourse), Answers{qCourse: Text("BSCS")}, record)
		assert.Equal(t, "BSIT", got.Text)
	})

	t.Run("company address never autofilled", func(t *testing.T) {
		question := questionByID(form, qCompanyAddr)
		assert.Equal(t, "", rs.Prefill(question, Answers{}, record).Text)
		assert.Equal(t, "Mandaue", rs.Prefill(question, Answers{qCompanyAddr: Text("Mandaue")}, record).Text)
	})

	t.Run("draft before mapped field", func(t *testing.T) {
		question := questionByID(form, qFirstName)
		assert.Equal(t, "Ana", rs.Prefill(question, Answers{}, record).Text)
		assert.Equal(t, "Anna", rs.Prefill(question, Answers{qFirstName: Text("Anna")}, record).Text)
	})

	t.Run("no record uses draft", func(t *testing.T) {
		got := rs.Prefill(questionByID(form, qCourse), Answers{qCourse: Text("BSCS")}, nil)
		assert.Equal(t, "BSCS", got.Text)
		assert.Equal(t, "", rs.Prefill(questionByID(form, qFirstName), Answers{}, nil).Text)
	})
}

func TestFieldForQuestion(t *testing.T) {
	tests := map[string]UserField{
		"First Name":        FieldFirstName,
		"Civil Status":      FieldCivilStatus,
		"Employment status": FieldStatus,
		"CTU ID":            FieldCTUID,
		"Name of school":    "",
	}
	for text, want := range tests {
		got, _ := FieldForQuestion(text)
		assert.Equal(t, want, got, text)
	}
}

func TestIsReadOnlyField(t *testing.T) {
	assert.True(t, IsReadOnlyField(q(1, "Course", models.QuestionText)))
	assert.True(t, IsReadOnlyField(q(1, "Year Graduated", models.QuestionText)))
	assert.True(t, IsReadOnlyField(q(1, "Batch", models.QuestionText)))
	assert.False(t, IsReadOnlyField(q(1, "Company", models.QuestionText)))
}

func TestRuleSet_GateQuestions(t *testing.T) {
	rs := Compile(sampleForm())

	id, ok := rs.EmploymentQuestion()
	assert.True(t, ok)
	assert.Equal(t, qEmployed, id)

	id, ok = rs.FurtherStudyQuestion()
	assert.True(t, ok)
	assert.Equal(t, qFurtherStudy, id)

	_, ok = Compile(nil).EmploymentQuestion()
	assert.False(t, ok)
}
