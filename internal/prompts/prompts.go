// Package prompts owns every instruction and static message sent on behalf
// of the assistant, typed per language and validated at startup so a
// missing translation can never fail a turn at runtime.
package prompts

import (
	"fmt"
	"strings"

	"github.com/medipulse/medipulse-backend/internal/models"
)

// Config is the full slot set needed to assemble the system instruction
// for one language. Every slot is required.
type Config struct {
	RoleDescription    string
	EmergencyResponse  string
	OTCGuidance        string
	DiagnosticDeferral string
	AssessmentOpening  string
	AssessmentClosing  string
	OffTopicDeflection string
}

// missingSlots lists the empty slot names, for validation messages.
func (c Config) missingSlots() []string {
	var missing []string
	for name, value := range map[string]string{
		"role_description":    c.RoleDescription,
		"emergency_response":  c.EmergencyResponse,
		"otc_guidance":        c.OTCGuidance,
		"diagnostic_deferral": c.DiagnosticDeferral,
		"assessment_opening":  c.AssessmentOpening,
		"assessment_closing":  c.AssessmentClosing,
		"off_topic":           c.OffTopicDeflection,
	} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// messages holds the localized static texts that are not part of the
// system instruction.
type messages struct {
	Greeting       string
	Transition     string
	SummaryRequest string
	InternalError  string
	EmptyMessage   string
	SummaryHeader  string
}

// Resolver assembles instruction text for a language, falling back to the
// default language's complete slot set when a translation is incomplete.
type Resolver struct {
	configs map[models.Language]Config
	msgs    map[models.Language]messages
}

// NewResolver builds the resolver from the built-in per-language prompt
// configuration and validates it. An incomplete default-language config is
// a fatal configuration error; incomplete secondary languages are replaced
// wholesale by the default set.
func NewResolver() (*Resolver, error) {
	return newResolver(
		map[models.Language]Config{
			models.LanguageEnglish: englishConfig,
			models.LanguageArabic:  arabicConfig,
		},
		map[models.Language]messages{
			models.LanguageEnglish: englishMessages,
			models.LanguageArabic:  arabicMessages,
		},
	)
}

func newResolver(configs map[models.Language]Config, msgs map[models.Language]messages) (*Resolver, error) {
	r := &Resolver{configs: configs, msgs: msgs}

	if missing := r.configs[models.DefaultLanguage].missingSlots(); len(missing) > 0 {
		return nil, fmt.Errorf("default language prompt config incomplete: missing %s", strings.Join(missing, ", "))
	}
	for _, lang := range models.SupportedLanguages {
		if lang == models.DefaultLanguage {
			continue
		}
		if missing := r.configs[lang].missingSlots(); len(missing) > 0 {
			// Recoverable: serve the complete default set instead.
			r.configs[lang] = r.configs[models.DefaultLanguage]
			r.msgs[lang] = r.msgs[models.DefaultLanguage]
		}
	}
	return r, nil
}

// config resolves a language tag to its slot set. Unknown tags silently get
// the default.
func (r *Resolver) config(lang models.Language) Config {
	if c, ok := r.configs[lang]; ok {
		return c
	}
	return r.configs[models.DefaultLanguage]
}

func (r *Resolver) messages(lang models.Language) messages {
	if m, ok := r.msgs[lang]; ok {
		return m
	}
	return r.msgs[models.DefaultLanguage]
}

// System renders the fully substituted system instruction for a language.
func (r *Resolver) System(lang models.Language) string {
	c := r.config(lang)
	return fmt.Sprintf(`**Medical Assistant Protocol v3.0**

ROLE:
%s

REQUIREMENTS:
1. SAFETY FIRST:
   - %s
   - Never suggest prescription medications
   - For OTC recommendations:
     * Specify exact dosage (e.g., "500mg acetaminophen every 6-8 hours")
     * Add disclaimer: "%s"
   - %s

2. RESPONSE GUIDELINES:
   - Keep responses under 120 words
   - Ask one clear follow-up question at a time
   - Use simple, non-alarming language
   - Maintain professional tone
   - When offering the user a small set of discrete choices, append them as [OPTIONS: first, second]

3. ASSESSMENT FORMAT:
   %s
   After gathering information, provide:
   - Possible conditions (1-3 most likely)
   - Recommended OTC options (when appropriate)
   - When to seek medical attention
   - Final disclaimer: "%s"

4. BOUNDARIES:
   - Only discuss health-related topics
   - For non-medical queries: "%s"`,
		c.RoleDescription,
		c.EmergencyResponse,
		c.OTCGuidance,
		c.DiagnosticDeferral,
		c.AssessmentOpening,
		c.AssessmentClosing,
		c.OffTopicDeflection,
	)
}

// Summary renders the fixed summarization instruction used by the
// end-of-conversation operation.
func (r *Resolver) Summary(lang models.Language) string {
	c := r.config(lang)
	header := r.messages(lang).SummaryHeader
	return fmt.Sprintf(`%s

%s
- Key reported facts (name, age, risk factors)
- Reported symptoms
- Guidance already given
Final disclaimer: "%s"`,
		c.RoleDescription, header, c.AssessmentClosing)
}

// SummaryRequest is the closing user message accompanying the summary
// instruction.
func (r *Resolver) SummaryRequest(lang models.Language) string {
	return r.messages(lang).SummaryRequest
}

// Greeting opens a free-form session.
func (r *Resolver) Greeting(lang models.Language) string {
	return r.messages(lang).Greeting
}

// Transition is returned when the questionnaire completes and the session
// moves to the assessment stage.
func (r *Resolver) Transition(lang models.Language) string {
	return r.messages(lang).Transition
}

// InternalError is the caller-facing text for generation-service failures.
func (r *Resolver) InternalError(lang models.Language) string {
	return r.messages(lang).InternalError
}

// EmptyMessage is the validation text for blank input.
func (r *Resolver) EmptyMessage(lang models.Language) string {
	return r.messages(lang).EmptyMessage
}
