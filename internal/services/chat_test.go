package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medipulse/medipulse-backend/internal/intake"
	"github.com/medipulse/medipulse-backend/internal/models"
	"github.com/medipulse/medipulse-backend/internal/prompts"
	"github.com/medipulse/medipulse-backend/internal/storage"
)

// fakeGenerator is a scriptable Generator that records every call.
type fakeGenerator struct {
	mu    sync.Mutex
	reply func(messages []ChatMessage) (string, error)
	calls [][]ChatMessage
}

func (f *fakeGenerator) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, messages)
	f.mu.Unlock()

	if f.reply == nil {
		return "generated reply", nil
	}
	return f.reply(messages)
}

func (f *fakeGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newTestService(t *testing.T, mode Mode, gen Generator) (*ChatService, storage.Store) {
	t.Helper()

	resolver, err := prompts.NewResolver()
	require.NoError(t, err)

	store := storage.NewMemoryStore(0)
	return NewChatService(store, gen, resolver, mode), store
}

func TestStartStructured(t *testing.T) {
	svc, store := newTestService(t, ModeStructured, &fakeGenerator{})

	result, err := svc.Start(context.Background(), "")
	require.NoError(t, err)

	assert.NotEmpty(t, result.SessionID)
	assert.Equal(t, models.LanguageEnglish, result.Language)
	require.NotNil(t, result.Question)
	assert.Equal(t, "name", result.Question.ID)
	assert.Equal(t, 0, result.Progress)
	assert.Empty(t, result.Greeting)

	session, err := store.Get(result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.StageQuestions, session.Stage)
}

func TestStartFreeform(t *testing.T) {
	svc, store := newTestService(t, ModeFreeform, &fakeGenerator{})

	result, err := svc.Start(context.Background(), "ar")
	require.NoError(t, err)

	assert.Equal(t, models.LanguageArabic, result.Language)
	assert.Nil(t, result.Question)
	assert.NotEmpty(t, result.Greeting)

	session, err := store.Get(result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.StageAssessment, session.Stage)
}

func TestStartUnsupportedLanguage(t *testing.T) {
	svc, _ := newTestService(t, ModeStructured, &fakeGenerator{})

	_, err := svc.Start(context.Background(), "fr")
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestIntakeWalk(t *testing.T) {
	gen := &fakeGenerator{}
	svc, store := newTestService(t, ModeStructured, gen)

	start, err := svc.Start(context.Background(), "en")
	require.NoError(t, err)
	id := start.SessionID

	answers := []string{"Jane Doe", "34", "no", "y", "persistent headache"}
	wantProgress := []int{20, 40, 60, 80}

	for i, answer := range answers[:4] {
		result, err := svc.Chat(context.Background(), id, answer)
		require.NoError(t, err)

		assert.Equal(t, models.StageQuestions, result.Stage)
		require.NotNil(t, result.NextQuestion, "turn %d", i)
		assert.Equal(t, intake.Questions[i+1].ID, result.NextQuestion.ID)
		assert.Equal(t, wantProgress[i], result.Progress)
	}

	// Final answer flips the stage without calling the generation service.
	result, err := svc.Chat(context.Background(), id, answers[4])
	require.NoError(t, err)
	assert.Equal(t, models.StageAssessment, result.Stage)
	assert.Equal(t, "Please describe your symptoms in detail:", result.Message)
	assert.Nil(t, result.NextQuestion)
	assert.Equal(t, 100, result.Progress)
	assert.Equal(t, 0, gen.callCount())

	session, err := store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, models.StageAssessment, session.Stage)
	assert.Equal(t, len(intake.Questions), session.QuestionIndex)

	// One history entry per turn, in order, with boolean answers
	// normalized to their canonical words.
	require.Len(t, session.History, 5)
	wantRecorded := []string{"Jane Doe", "34", "No", "Yes", "persistent headache"}
	for i, exchange := range session.History {
		assert.Equal(t, intake.Questions[i].Text[models.LanguageEnglish], exchange.User)
		assert.Equal(t, wantRecorded[i], exchange.Assistant)
	}
}

func TestBooleanValidationKeepsState(t *testing.T) {
	svc, store := newTestService(t, ModeStructured, &fakeGenerator{})

	start, err := svc.Start(context.Background(), "en")
	require.NoError(t, err)
	id := start.SessionID

	_, err = svc.Chat(context.Background(), id, "Jane Doe")
	require.NoError(t, err)
	_, err = svc.Chat(context.Background(), id, "34")
	require.NoError(t, err)

	// "smoker" expects yes/no.
	_, err = svc.Chat(context.Background(), id, "maybe")
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "Please answer Yes or No", validationErr.Message)

	session, err := store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, 2, session.QuestionIndex)
	assert.Len(t, session.History, 2)

	// The same question accepts a valid answer afterwards.
	result, err := svc.Chat(context.Background(), id, "y")
	require.NoError(t, err)
	assert.Equal(t, "conditions", result.NextQuestion.ID)
}

func TestEmptyMessageRejected(t *testing.T) {
	svc, store := newTestService(t, ModeStructured, &fakeGenerator{})

	start, err := svc.Start(context.Background(), "en")
	require.NoError(t, err)

	_, err = svc.Chat(context.Background(), start.SessionID, "   ")
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)

	session, err := store.Get(start.SessionID)
	require.NoError(t, err)
	assert.Empty(t, session.History)
	assert.Equal(t, 0, session.QuestionIndex)
}

func TestChatUnknownSession(t *testing.T) {
	svc, _ := newTestService(t, ModeStructured, &fakeGenerator{})

	_, err := svc.Chat(context.Background(), "stale-id", "hello")
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
}

func TestAssessmentTurn(t *testing.T) {
	gen := &fakeGenerator{
		reply: func([]ChatMessage) (string, error) {
			return "Take rest. [OPTIONS: Yes, No]", nil
		},
	}
	svc, store := newTestService(t, ModeFreeform, gen)

	start, err := svc.Start(context.Background(), "en")
	require.NoError(t, err)

	result, err := svc.Chat(context.Background(), start.SessionID, "I have a headache")
	require.NoError(t, err)

	assert.Equal(t, "Take rest.", result.Message)
	assert.Equal(t, []string{"Yes", "No"}, result.Options)

	// History records the raw generated text, marker included: that is
	// what the generation service saw and will see again.
	session, err := store.Get(start.SessionID)
	require.NoError(t, err)
	require.Len(t, session.History, 1)
	assert.Equal(t, "I have a headache", session.History[0].User)
	assert.Equal(t, "Take rest. [OPTIONS: Yes, No]", session.History[0].Assistant)
}

func TestGeneratorReceivesOrderedHistory(t *testing.T) {
	gen := &fakeGenerator{}
	svc, _ := newTestService(t, ModeFreeform, gen)

	start, err := svc.Start(context.Background(), "en")
	require.NoError(t, err)
	id := start.SessionID

	_, err = svc.Chat(context.Background(), id, "first message")
	require.NoError(t, err)
	_, err = svc.Chat(context.Background(), id, "second message")
	require.NoError(t, err)

	require.Equal(t, 2, gen.callCount())
	messages := gen.calls[1]

	require.Len(t, messages, 4)
	assert.Equal(t, RoleSystem, messages[0].Role)
	assert.Contains(t, messages[0].Content, "MediPulse")
	assert.Equal(t, ChatMessage{Role: RoleUser, Content: "first message"}, messages[1])
	assert.Equal(t, ChatMessage{Role: RoleAssistant, Content: "generated reply"}, messages[2])
	assert.Equal(t, ChatMessage{Role: RoleUser, Content: "second message"}, messages[3])
}

func TestGenerationFailureLeavesHistoryUntouched(t *testing.T) {
	boom := errors.New("service unavailable")
	gen := &fakeGenerator{}
	svc, store := newTestService(t, ModeFreeform, gen)

	start, err := svc.Start(context.Background(), "ar")
	require.NoError(t, err)
	id := start.SessionID

	_, err = svc.Chat(context.Background(), id, "لدي صداع")
	require.NoError(t, err)

	session, err := store.Get(id)
	require.NoError(t, err)
	before := make([]models.Exchange, len(session.History))
	copy(before, session.History)

	gen.reply = func([]ChatMessage) (string, error) { return "", boom }

	_, err = svc.Chat(context.Background(), id, "هل هذا خطير؟")
	var internalErr *InternalError
	require.ErrorAs(t, err, &internalErr)
	assert.ErrorIs(t, err, boom)
	// Caller-facing message is localized to the session language.
	assert.Equal(t, "حدث خطأ من جهتنا. يرجى المحاولة مرة أخرى.", internalErr.Message)

	session, err = store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, before, session.History)
}

func TestEnd(t *testing.T) {
	gen := &fakeGenerator{
		reply: func(messages []ChatMessage) (string, error) {
			return "Summary: headache, no red flags.", nil
		},
	}
	svc, store := newTestService(t, ModeFreeform, gen)

	start, err := svc.Start(context.Background(), "en")
	require.NoError(t, err)
	id := start.SessionID

	_, err = svc.Chat(context.Background(), id, "I have a headache")
	require.NoError(t, err)

	summary, err := svc.End(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Summary: headache, no red flags.", summary)

	// The summary turn is not recorded and the session survives.
	session, err := store.Get(id)
	require.NoError(t, err)
	assert.Len(t, session.History, 1)

	// The summary call carries the summarization instruction plus the
	// full history.
	messages := gen.calls[len(gen.calls)-1]
	assert.Equal(t, RoleSystem, messages[0].Role)
	assert.Contains(t, messages[0].Content, "Summarize")
	assert.Equal(t, RoleUser, messages[len(messages)-1].Role)
}

func TestEndUnknownSession(t *testing.T) {
	svc, _ := newTestService(t, ModeFreeform, &fakeGenerator{})

	_, err := svc.End(context.Background(), "stale-id")
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
}

func TestSetLanguage(t *testing.T) {
	svc, store := newTestService(t, ModeStructured, &fakeGenerator{})

	start, err := svc.Start(context.Background(), "en")
	require.NoError(t, err)
	id := start.SessionID

	lang, err := svc.SetLanguage(context.Background(), id, "ar")
	require.NoError(t, err)
	assert.Equal(t, models.LanguageArabic, lang)

	session, err := store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, models.LanguageArabic, session.Language)

	// Unsupported tag: error, stored language unchanged.
	_, err = svc.SetLanguage(context.Background(), id, "fr")
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)

	session, err = store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, models.LanguageArabic, session.Language)

	_, err = svc.SetLanguage(context.Background(), "stale-id", "en")
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
}

func TestSequentialTurnsKeepOrder(t *testing.T) {
	gen := &fakeGenerator{
		reply: func(messages []ChatMessage) (string, error) {
			return "echo: " + messages[len(messages)-1].Content, nil
		},
	}
	svc, store := newTestService(t, ModeFreeform, gen)

	start, err := svc.Start(context.Background(), "en")
	require.NoError(t, err)
	id := start.SessionID

	const turns = 20
	for i := 0; i < turns; i++ {
		_, err := svc.Chat(context.Background(), id, fmt.Sprintf("message %02d", i))
		require.NoError(t, err)
	}

	session, err := store.Get(id)
	require.NoError(t, err)
	require.Len(t, session.History, turns)
	for i, exchange := range session.History {
		assert.Equal(t, fmt.Sprintf("message %02d", i), exchange.User)
		assert.Equal(t, "echo: "+exchange.User, exchange.Assistant)
	}
}

// TestConcurrentTurnsSameSession hammers one session from many goroutines
// while the store is read and swept concurrently. The per-session turn lock
// must keep every (input, output) pair intact and lose no turns, and the
// expiry checks in Get and Sweep must not race the refresh each turn
// performs; run with -race to catch interleaved state access.
func TestConcurrentTurnsSameSession(t *testing.T) {
	gen := &fakeGenerator{
		reply: func(messages []ChatMessage) (string, error) {
			return "echo: " + messages[len(messages)-1].Content, nil
		},
	}
	svc, store := newTestService(t, ModeFreeform, gen)

	start, err := svc.Start(context.Background(), "en")
	require.NoError(t, err)
	id := start.SessionID

	const turns = 50
	var wg sync.WaitGroup
	for i := 0; i < turns; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Chat(context.Background(), id, fmt.Sprintf("message %02d", i))
			assert.NoError(t, err)
		}(i)
	}
	for i := 0; i < turns; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Get(id)
			assert.NoError(t, err)
			store.Sweep()
		}()
	}
	wg.Wait()

	session, err := store.Get(id)
	require.NoError(t, err)
	require.Len(t, session.History, turns)

	seen := make(map[string]bool, turns)
	for _, exchange := range session.History {
		assert.True(t, strings.HasPrefix(exchange.User, "message "))
		assert.Equal(t, "echo: "+exchange.User, exchange.Assistant)
		assert.False(t, seen[exchange.User], "turn %q recorded twice", exchange.User)
		seen[exchange.User] = true
	}
}
