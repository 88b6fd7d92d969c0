package models

import (
	"fmt"
	"sync"
	"time"
)

// Language identifies one of the supported conversation languages.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageArabic  Language = "ar"

	// DefaultLanguage is used when the caller does not pick one.
	DefaultLanguage = LanguageEnglish
)

// SupportedLanguages is the closed set of language tags the API accepts.
var SupportedLanguages = []Language{LanguageEnglish, LanguageArabic}

// ParseLanguage validates a raw language tag. An empty tag resolves to the
// default language; anything outside the supported set is an error.
func ParseLanguage(tag string) (Language, error) {
	if tag == "" {
		return DefaultLanguage, nil
	}
	for _, lang := range SupportedLanguages {
		if Language(tag) == lang {
			return lang, nil
		}
	}
	return "", fmt.Errorf("unsupported language %q", tag)
}

// Stage is the coarse phase of a session's conversation.
type Stage string

const (
	// StageQuestions walks the fixed intake questionnaire.
	StageQuestions Stage = "questions"
	// StageAssessment forwards every message to the generation service.
	StageAssessment Stage = "assessment"
)

// Exchange is one completed turn: what the user saw or said, and the answer
// recorded against it. History order is meaningful - it is replayed verbatim
// to the generation service on every assessment turn.
type Exchange struct {
	User      string
	Assistant string
}

// Session holds the server-side state of one conversation. It is never
// serialized whole: API responses are assembled field by field in the
// handlers.
type Session struct {
	ID            string
	Language      Language
	Stage         Stage
	QuestionIndex int
	History       []Exchange
	CreatedAt     time.Time
	LastActive    time.Time
	ExpiresAt     time.Time

	ttl time.Duration
	mu  sync.Mutex
}

// NewSession creates a session with empty history, question index zero and a
// TTL-stamped expiry.
func NewSession(id string, lang Language, stage Stage, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		Language:   lang,
		Stage:      stage,
		History:    []Exchange{},
		CreatedAt:  now,
		LastActive: now,
		ExpiresAt:  now.Add(ttl),
		ttl:        ttl,
	}
}

// Lock acquires the per-session turn lock. A turn holds it from the first
// state read until the response is assembled, so concurrent turns on the same
// session serialize instead of interleaving their read-modify-append.
func (s *Session) Lock() {
	s.mu.Lock()
}

// Unlock releases the per-session turn lock.
func (s *Session) Unlock() {
	s.mu.Unlock()
}

// TryLock acquires the per-session turn lock if it is free. The store's
// sweeper uses it to step around sessions with a turn in flight.
func (s *Session) TryLock() bool {
	return s.mu.TryLock()
}

// Refresh pushes the expiry forward after a successful turn. Callers must
// hold the session lock.
func (s *Session) Refresh() {
	now := time.Now()
	s.LastActive = now
	s.ExpiresAt = now.Add(s.ttl)
}

// Expired reports whether the session's TTL has elapsed. It takes the
// session lock, so callers must not already hold it: Refresh writes the
// expiry under that lock, and the two must never overlap.
func (s *Session) Expired(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.After(s.ExpiresAt)
}
