package services

import (
	"context"
	"strings"

	"github.com/medipulse/medipulse-backend/internal/intake"
	"github.com/medipulse/medipulse-backend/internal/models"
	"github.com/medipulse/medipulse-backend/internal/options"
	"github.com/medipulse/medipulse-backend/internal/prompts"
	"github.com/medipulse/medipulse-backend/internal/storage"
)

// ValidationError is a caller mistake recovered locally: the message is
// already localized and safe to return verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// InternalError wraps a generation-service failure with a localized,
// caller-facing message. The underlying cause stays server-side.
type InternalError struct {
	Message string
	Err     error
}

func (e *InternalError) Error() string {
	return e.Err.Error()
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Mode selects which of the two historical conversation shapes a service
// runs: the structured questionnaire followed by assessment, or free-form
// from the first turn.
type Mode string

const (
	ModeStructured Mode = "structured"
	ModeFreeform   Mode = "freeform"
)

// ParseMode maps a config value to a Mode, defaulting to structured.
func ParseMode(v string) Mode {
	if Mode(v) == ModeFreeform {
		return ModeFreeform
	}
	return ModeStructured
}

// ChatService is the turn processor: it owns the session lifecycle and
// decides, for each incoming message, whether to advance the
// questionnaire, flip the stage, or delegate to the generation service.
type ChatService struct {
	store     storage.Store
	generator Generator
	resolver  *prompts.Resolver
	questions []intake.Question
	mode      Mode
}

// NewChatService creates the turn processor.
func NewChatService(store storage.Store, generator Generator, resolver *prompts.Resolver, mode Mode) *ChatService {
	return &ChatService{
		store:     store,
		generator: generator,
		resolver:  resolver,
		questions: intake.Questions,
		mode:      mode,
	}
}

// StartResult is the response payload of the start operation.
type StartResult struct {
	SessionID string
	Language  models.Language
	Greeting  string
	Question  *intake.LocalizedQuestion
	Progress  int
}

// Start creates a fresh session. Structured mode opens on the first intake
// question; free-form mode opens on a greeting with the session already in
// the assessment stage.
func (s *ChatService) Start(ctx context.Context, langTag string) (*StartResult, error) {
	lang, err := models.ParseLanguage(langTag)
	if err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	stage := models.StageQuestions
	if s.mode == ModeFreeform {
		stage = models.StageAssessment
	}

	session, err := s.store.Create(lang, stage)
	if err != nil {
		return nil, err
	}

	result := &StartResult{
		SessionID: session.ID,
		Language:  lang,
	}
	if s.mode == ModeFreeform {
		result.Greeting = s.resolver.Greeting(lang)
	} else {
		q := s.questions[0].Localized(lang)
		result.Question = &q
		result.Progress = intake.Progress(0, len(s.questions))
	}
	return result, nil
}

// TurnResult is the response payload of one chat turn.
type TurnResult struct {
	Stage        models.Stage
	Message      string
	Options      []string
	NextQuestion *intake.LocalizedQuestion
	Progress     int
}

// Chat applies one user message to a session. The session lock spans the
// whole turn, generation call included: conversational turns are
// inherently sequential, so strict ordering wins over lock granularity.
func (s *ChatService) Chat(ctx context.Context, sessionID, message string) (*TurnResult, error) {
	session, err := s.store.Get(sessionID)
	if err != nil {
		return nil, err
	}

	session.Lock()
	defer session.Unlock()

	input := strings.TrimSpace(message)
	if input == "" {
		return nil, &ValidationError{Message: s.resolver.EmptyMessage(session.Language)}
	}

	if session.Stage == models.StageQuestions {
		return s.questionTurn(session, input)
	}
	return s.assessmentTurn(ctx, session, input)
}

// questionTurn records one questionnaire answer and advances the cursor.
// No generation call happens on this path.
func (s *ChatService) questionTurn(session *models.Session, input string) (*TurnResult, error) {
	question := s.questions[session.QuestionIndex]

	answer := input
	if question.Type == intake.AnswerBoolean {
		normalized, ok := intake.NormalizeBoolean(input, session.Language)
		if !ok {
			// No state change: the session stays on the same question.
			return nil, &ValidationError{Message: intake.VocabularyHint(session.Language)}
		}
		answer = normalized
	}

	localized := question.Localized(session.Language)
	session.History = append(session.History, models.Exchange{User: localized.Text, Assistant: answer})
	session.QuestionIndex++
	session.Refresh()

	if session.QuestionIndex >= len(s.questions) {
		session.Stage = models.StageAssessment
		return &TurnResult{
			Stage:    models.StageAssessment,
			Message:  s.resolver.Transition(session.Language),
			Progress: intake.Progress(session.QuestionIndex, len(s.questions)),
		}, nil
	}

	next := s.questions[session.QuestionIndex].Localized(session.Language)
	return &TurnResult{
		Stage:        models.StageQuestions,
		NextQuestion: &next,
		Progress:     intake.Progress(session.QuestionIndex, len(s.questions)),
	}, nil
}

// assessmentTurn delegates to the generation service. History is appended
// only after a successful call, so a failed turn leaves the session
// exactly as the service last saw it.
func (s *ChatService) assessmentTurn(ctx context.Context, session *models.Session, input string) (*TurnResult, error) {
	messages := buildMessages(s.resolver.System(session.Language), session.History, input)

	reply, err := s.generator.Complete(ctx, messages)
	if err != nil {
		return nil, &InternalError{Message: s.resolver.InternalError(session.Language), Err: err}
	}

	session.History = append(session.History, models.Exchange{User: input, Assistant: reply})
	session.Refresh()

	clean, opts := options.Extract(reply)
	return &TurnResult{
		Stage:   models.StageAssessment,
		Message: clean,
		Options: opts,
	}, nil
}

// End produces a closing summary over the full history. The session is
// kept: the caller may continue chatting or simply abandon it to the TTL
// sweeper. The summary turn itself is not recorded.
func (s *ChatService) End(ctx context.Context, sessionID string) (string, error) {
	session, err := s.store.Get(sessionID)
	if err != nil {
		return "", err
	}

	session.Lock()
	defer session.Unlock()

	messages := buildMessages(s.resolver.Summary(session.Language), session.History, s.resolver.SummaryRequest(session.Language))

	summary, err := s.generator.Complete(ctx, messages)
	if err != nil {
		return "", &InternalError{Message: s.resolver.InternalError(session.Language), Err: err}
	}

	session.Refresh()
	return summary, nil
}

// SetLanguage switches a session's language for all subsequent turns.
func (s *ChatService) SetLanguage(ctx context.Context, sessionID, langTag string) (models.Language, error) {
	if langTag == "" {
		return "", &ValidationError{Message: "language is required"}
	}
	lang, err := models.ParseLanguage(langTag)
	if err != nil {
		return "", &ValidationError{Message: err.Error()}
	}

	if err := s.store.Update(sessionID, func(session *models.Session) {
		session.Language = lang
		session.Refresh()
	}); err != nil {
		return "", err
	}
	return lang, nil
}

// buildMessages reconstructs the generation-service payload: system
// instruction first, then the accumulated history in order, then the
// current user message.
func buildMessages(system string, history []models.Exchange, current string) []ChatMessage {
	messages := make([]ChatMessage, 0, len(history)*2+2)
	messages = append(messages, ChatMessage{Role: RoleSystem, Content: system})
	for _, exchange := range history {
		messages = append(messages,
			ChatMessage{Role: RoleUser, Content: exchange.User},
			ChatMessage{Role: RoleAssistant, Content: exchange.Assistant},
		)
	}
	return append(messages, ChatMessage{Role: RoleUser, Content: current})
}
