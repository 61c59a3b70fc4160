package tracker

import (
	"regexp"
	"strings"

	"github.com/maeshaii/backend-wny/internal/models"
)

// VisibilityRule shows a category only when the gate question's answer
// equals Want exactly.
type VisibilityRule struct {
	GateQuestionID uint   `json:"gate_question_id"`
	Want           string `json:"want"`
}

// Ambiguity records a gate keyword matched by more than one question.
// Chosen is the one the rules use.
type Ambiguity struct {
	Keyword string `json:"keyword"`
	Chosen  uint   `json:"chosen"`
	Ignored []uint `json:"ignored"`
}

type prefillRule struct {
	recordField UserField // record value always wins when a record is loaded
	dateField   bool
	never       bool
	fallback    UserField
}

// RuleSet holds the per-form rules derived once from category titles and
// question text. Evaluation only looks up ids.
type RuleSet struct {
	visibility map[uint]VisibilityRule
	inputs     map[uint]InputProps
	prefill    map[uint]prefillRule
	readOnly   map[uint]bool
	gates      map[string]uint

	Ambiguities []Ambiguity
}

const (
	gatePresentlyEmployed = "presently employed"
	gateFurtherStudy      = "pursue further study"
)

// Checked in order; a title matching a keyword whose gate question is
// missing falls through to the next entry.
var visibilityGates = []struct {
	titleKeyword string
	gateKeyword  string
	want         string
}{
	{"employment status", gatePresentlyEmployed, "Yes"},
	{"unemployed", gatePresentlyEmployed, "No"},
	{"further study", gateFurtherStudy, "Yes"},
}

// Compile derives visibility, input and prefill rules for a form definition.
func Compile(categories []models.QuestionCategory) *RuleSet {
	rs := &RuleSet{
		visibility: make(map[uint]VisibilityRule),
		inputs:     make(map[uint]InputProps),
		prefill:    make(map[uint]prefillRule),
		readOnly:   make(map[uint]bool),
	}

	gates := make(map[string]uint)
	rs.gates = gates
	ignored := make(map[string][]uint)
	for _, cat := range categories {
		for _, q := range cat.Questions {
			text := strings.ToLower(q.Text)
			for _, kw := range []string{gatePresentlyEmployed, gateFurtherStudy} {
				if !strings.Contains(text, kw) {
					continue
				}
				if _, seen := gates[kw]; seen {
					ignored[kw] = append(ignored[kw], q.ID)
				} else {
					gates[kw] = q.ID
				}
			}

			rs.inputs[q.ID] = InputPropsFor(q)
			rs.prefill[q.ID] = compilePrefill(q.Text)
			rs.readOnly[q.ID] = IsReadOnlyField(q)
		}
	}

	for _, kw := range []string{gatePresentlyEmployed, gateFurtherStudy} {
		if ids := ignored[kw]; len(ids) > 0 {
			rs.Ambiguities = append(rs.Ambiguities, Ambiguity{Keyword: kw, Chosen: gates[kw], Ignored: ids})
		}
	}

	for _, cat := range categories {
		title := strings.ToLower(cat.Title)
		for _, g := range visibilityGates {
			if !strings.Contains(title, g.titleKeyword) {
				continue
			}
			if id, ok := gates[g.gateKeyword]; ok {
				rs.visibility[cat.ID] = VisibilityRule{GateQuestionID: id, Want: g.want}
				break
			}
		}
	}

	return rs
}

// EmploymentQuestion is the "presently employed" question, if the form has one.
func (rs *RuleSet) EmploymentQuestion() (uint, bool) {
	id, ok := rs.gates[gatePresentlyEmployed]
	return id, ok
}

// FurtherStudyQuestion is the "pursue further study" question, if any.
func (rs *RuleSet) FurtherStudyQuestion() (uint, bool) {
	id, ok := rs.gates[gateFurtherStudy]
	return id, ok
}

// SetVisibility replaces the derived rule for a category.
func (rs *RuleSet) SetVisibility(categoryID uint, rule VisibilityRule) {
	rs.visibility[categoryID] = rule
}

// ClearVisibility makes a category unconditionally visible.
func (rs *RuleSet) ClearVisibility(categoryID uint) {
	delete(rs.visibility, categoryID)
}

func (rs *RuleSet) Visibility(categoryID uint) (VisibilityRule, bool) {
	r, ok := rs.visibility[categoryID]
	return r, ok
}

func (rs *RuleSet) ShouldShowCategory(category models.QuestionCategory, answers Answers) bool {
	rule, ok := rs.visibility[category.ID]
	if !ok {
		return true
	}
	ans, ok := answers[rule.GateQuestionID]
	return ok && ans.File == nil && ans.Choices == nil && ans.Text == rule.Want
}

// ShouldShowCategory evaluates category visibility against the full form.
func ShouldShowCategory(categories []models.QuestionCategory, category models.QuestionCategory, answers Answers) bool {
	return Compile(categories).ShouldShowCategory(category, answers)
}

// InputFor returns the compiled input props, deriving them for unknown ids.
func (rs *RuleSet) InputFor(q models.Question) InputProps {
	if p, ok := rs.inputs[q.ID]; ok {
		return p
	}
	return InputPropsFor(q)
}

func (rs *RuleSet) IsReadOnly(q models.Question) bool {
	if ro, ok := rs.readOnly[q.ID]; ok {
		return ro
	}
	return IsReadOnlyField(q)
}

// IsReadOnlyField reports whether the question is locked to the alumni
// record in fill-out mode.
func IsReadOnlyField(q models.Question) bool {
	return containsAny(strings.ToLower(q.Text), "course", "year graduated", "batch")
}

var (
	nonAlnum      = regexp.MustCompile(`[^a-z0-9]`)
	nonAlnumSpace = regexp.MustCompile(`[^a-z0-9 ]`)
)

// Label to field, first match wins. "civil status" sits ahead of "status".
var fieldLabels = []struct {
	label string
	field UserField
}{
	{"first name", FieldFirstName},
	{"middle name", FieldMiddleName},
	{"last name", FieldLastName},
	{"ctu id", FieldCTUID},
	{"course", FieldCourse},
	{"program", FieldProgram},
	{"batch", FieldBatch},
	{"civil status", FieldCivilStatus},
	{"status", FieldStatus},
	{"gender", FieldGender},
	{"birthdate", FieldBirthdate},
	{"phone", FieldPhone},
	{"address", FieldAddress},
	{"email", FieldEmail},
	{"age", FieldAge},
	{"social media", FieldSocialMedia},
	{"school name", FieldSchoolName},
}

// FieldForQuestion maps question text to the alumni field it usually asks for.
func FieldForQuestion(text string) (UserField, bool) {
	key := strings.TrimSpace(nonAlnumSpace.ReplaceAllString(strings.ToLower(text), ""))
	for _, fl := range fieldLabels {
		if strings.Contains(key, fl.label) {
			return fl.field, true
		}
	}
	return "", false
}

func compilePrefill(text string) prefillRule {
	compact := nonAlnum.ReplaceAllString(strings.ToLower(text), "")
	rule := prefillRule{}
	rule.fallback, _ = FieldForQuestion(text)

	switch {
	case strings.Contains(compact, "course"):
		rule.recordField = FieldCourse
	case containsAny(compact, "yeargraduated", "batch"):
		rule.recordField = FieldBatch
	case containsAny(compact, "birth", "bday", "dateofbirth", "dob"):
		rule.recordField = FieldBirthdate
		rule.dateField = true
	case containsAny(compact, "phone", "contact", "mobile"):
		rule.recordField = FieldPhone
	}

	if strings.Contains(compact, "companyaddress") && strings.Contains(compact, "employer") && strings.Contains(compact, "graduation") {
		rule.never = true
	}
	return rule
}

// Prefill resolves the initial value for a question: the record for locked
// fields, then the draft answer, then the mapped record field.
func (rs *RuleSet) Prefill(q models.Question, draft Answers, record Record) Value {
	rule, ok := rs.prefill[q.ID]
	if !ok {
		rule = compilePrefill(q.Text)
	}

	if record != nil && rule.recordField != "" {
		v := record[rule.recordField]
		if rule.dateField {
			v = ToYYYYMMDD(v)
		}
		return Text(v)
	}

	if v, ok := draft[q.ID]; ok {
		return v
	}
	if rule.never || record == nil || rule.fallback == "" {
		return Text("")
	}
	return Text(record[rule.fallback])
}
