package intake

import (
	"math"
	"strings"

	"github.com/medipulse/medipulse-backend/internal/models"
)

// AnswerType declares how a question's answer is validated client- and
// server-side.
type AnswerType string

const (
	AnswerText    AnswerType = "text"
	AnswerNumber  AnswerType = "number"
	AnswerBoolean AnswerType = "boolean"
)

// Question is one entry of the fixed intake questionnaire.
type Question struct {
	ID   string
	Text map[models.Language]string
	Type AnswerType
}

// LocalizedQuestion is the caller-facing projection of a Question in one
// language.
type LocalizedQuestion struct {
	ID   string     `json:"id"`
	Text string     `json:"text"`
	Type AnswerType `json:"type"`
}

// Localized renders the question for a language, falling back to the
// default language when a translation is missing.
func (q Question) Localized(lang models.Language) LocalizedQuestion {
	text, ok := q.Text[lang]
	if !ok {
		text = q.Text[models.DefaultLanguage]
	}
	return LocalizedQuestion{ID: q.ID, Text: text, Type: q.Type}
}

// Questions is the ordered intake questionnaire. Order matters: the turn
// processor walks it front to back, one answer per turn.
var Questions = []Question{
	{
		ID: "name",
		Text: map[models.Language]string{
			models.LanguageEnglish: "What is your full name?",
			models.LanguageArabic:  "ما هو اسمك الكامل؟",
		},
		Type: AnswerText,
	},
	{
		ID: "age",
		Text: map[models.Language]string{
			models.LanguageEnglish: "What is your age?",
			models.LanguageArabic:  "كم عمرك؟",
		},
		Type: AnswerNumber,
	},
	{
		ID: "smoker",
		Text: map[models.Language]string{
			models.LanguageEnglish: "Are you currently a smoker?",
			models.LanguageArabic:  "هل أنت مدخن حالياً؟",
		},
		Type: AnswerBoolean,
	},
	{
		ID: "conditions",
		Text: map[models.Language]string{
			models.LanguageEnglish: "Do you have any existing medical conditions?",
			models.LanguageArabic:  "هل لديك أي حالات طبية قائمة؟",
		},
		Type: AnswerBoolean,
	},
	{
		ID: "symptoms",
		Text: map[models.Language]string{
			models.LanguageEnglish: "What specific symptoms are you experiencing?",
			models.LanguageArabic:  "ما هي الأعراض التي تشعر بها تحديداً؟",
		},
		Type: AnswerText,
	},
}

// Accepted yes/no vocabularies per language, compared case-insensitively.
var (
	yesWords = map[models.Language][]string{
		models.LanguageEnglish: {"yes", "y"},
		models.LanguageArabic:  {"نعم", "اي", "ايوه"},
	}
	noWords = map[models.Language][]string{
		models.LanguageEnglish: {"no", "n"},
		models.LanguageArabic:  {"لا", "كلا"},
	}
	canonicalYes = map[models.Language]string{
		models.LanguageEnglish: "Yes",
		models.LanguageArabic:  "نعم",
	}
	canonicalNo = map[models.Language]string{
		models.LanguageEnglish: "No",
		models.LanguageArabic:  "لا",
	}
)

// NormalizeBoolean maps a raw boolean answer onto the canonical yes/no word
// for the language. The second return value is false when the input is not
// in the accepted vocabulary.
func NormalizeBoolean(input string, lang models.Language) (string, bool) {
	if _, supported := yesWords[lang]; !supported {
		lang = models.DefaultLanguage
	}

	normalized := strings.ToLower(strings.TrimSpace(input))
	for _, w := range yesWords[lang] {
		if normalized == w {
			return canonicalYes[lang], true
		}
	}
	for _, w := range noWords[lang] {
		if normalized == w {
			return canonicalNo[lang], true
		}
	}
	return "", false
}

// VocabularyHint is the validation message returned for a boolean answer
// outside the accepted vocabulary.
func VocabularyHint(lang models.Language) string {
	if lang == models.LanguageArabic {
		return "يرجى الإجابة بنعم أو لا"
	}
	return "Please answer Yes or No"
}

// Progress returns the integer-rounded percentage of the questionnaire
// covered once `index` questions are answered out of `total`.
func Progress(index, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(index) / float64(total) * 100))
}
