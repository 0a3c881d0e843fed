package bot

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/ad/autoreply-bot/internal/config"
	"github.com/ad/autoreply-bot/internal/domain"
	"github.com/ad/autoreply-bot/internal/locale"
	"github.com/ad/autoreply-bot/internal/logger"
	"github.com/ad/autoreply-bot/internal/storage"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

const (
	adminID = int64(100)
	userID  = int64(200)
)

// mediaCall records one media send
type mediaCall struct {
	Type    domain.ContentType
	ChatID  interface{}
	Ref     string
	Caption string
}

// MockMessenger records every outgoing call. Sent messages get increasing IDs.
type MockMessenger struct {
	mu       sync.Mutex
	nextID   int
	sent     []*bot.SendMessageParams
	edits    []*bot.EditMessageTextParams
	deleted  []*bot.DeleteMessageParams
	answers  []*bot.AnswerCallbackQueryParams
	media    []mediaCall
	sendErr  error
	editErr  error
	mediaErr error
}

func newMockMessenger() *MockMessenger {
	return &MockMessenger{nextID: 1000}
}

func (m *MockMessenger) SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return nil, m.sendErr
	}
	m.nextID++
	m.sent = append(m.sent, params)
	return &models.Message{ID: m.nextID}, nil
}

func (m *MockMessenger) EditMessageText(ctx context.Context, params *bot.EditMessageTextParams) (*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.editErr != nil {
		return nil, m.editErr
	}
	m.edits = append(m.edits, params)
	return &models.Message{ID: params.MessageID}, nil
}

func (m *MockMessenger) DeleteMessage(ctx context.Context, params *bot.DeleteMessageParams) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, params)
	return true, nil
}

func (m *MockMessenger) AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.answers = append(m.answers, params)
	return true, nil
}

func (m *MockMessenger) recordMedia(ct domain.ContentType, chatID interface{}, file models.InputFile, caption string) (*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mediaErr != nil {
		return nil, m.mediaErr
	}
	ref := ""
	if f, ok := file.(*models.InputFileString); ok {
		ref = f.Data
	}
	m.nextID++
	m.media = append(m.media, mediaCall{Type: ct, ChatID: chatID, Ref: ref, Caption: caption})
	return &models.Message{ID: m.nextID}, nil
}

func (m *MockMessenger) SendPhoto(ctx context.Context, params *bot.SendPhotoParams) (*models.Message, error) {
	return m.recordMedia(domain.ContentTypePhoto, params.ChatID, params.Photo, params.Caption)
}

func (m *MockMessenger) SendVideo(ctx context.Context, params *bot.SendVideoParams) (*models.Message, error) {
	return m.recordMedia(domain.ContentTypeVideo, params.ChatID, params.Video, params.Caption)
}

func (m *MockMessenger) SendAudio(ctx context.Context, params *bot.SendAudioParams) (*models.Message, error) {
	return m.recordMedia(domain.ContentTypeAudio, params.ChatID, params.Audio, params.Caption)
}

func (m *MockMessenger) SendVoice(ctx context.Context, params *bot.SendVoiceParams) (*models.Message, error) {
	return m.recordMedia(domain.ContentTypeVoice, params.ChatID, params.Voice, params.Caption)
}

func (m *MockMessenger) SendDocument(ctx context.Context, params *bot.SendDocumentParams) (*models.Message, error) {
	return m.recordMedia(domain.ContentTypeDocument, params.ChatID, params.Document, params.Caption)
}

func (m *MockMessenger) SendSticker(ctx context.Context, params *bot.SendStickerParams) (*models.Message, error) {
	return m.recordMedia(domain.ContentTypeSticker, params.ChatID, params.Sticker, "")
}

func (m *MockMessenger) lastSent() *bot.SendMessageParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return nil
	}
	return m.sent[len(m.sent)-1]
}

func (m *MockMessenger) lastEdit() *bot.EditMessageTextParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.edits) == 0 {
		return nil
	}
	return m.edits[len(m.edits)-1]
}

func (m *MockMessenger) lastAnswer() *bot.AnswerCallbackQueryParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.answers) == 0 {
		return nil
	}
	return m.answers[len(m.answers)-1]
}

// lastText returns the text of whichever message was sent or edited last
func (m *MockMessenger) lastText() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var text string
	if len(m.sent) > 0 {
		text = m.sent[len(m.sent)-1].Text
	}
	if len(m.edits) > 0 {
		text = m.edits[len(m.edits)-1].Text
	}
	return text
}

// inlineKeyboard extracts the inline keyboard of a send or edit
func inlineKeyboard(t *testing.T, markup models.ReplyMarkup) *models.InlineKeyboardMarkup {
	t.Helper()
	kb, ok := markup.(*models.InlineKeyboardMarkup)
	require.True(t, ok, "expected inline keyboard, got %T", markup)
	return kb
}

// testEnv wires the handler to a recording messenger and in-memory SQLite
type testEnv struct {
	messenger *MockMessenger
	queue     *storage.DBQueue
	sessions  *storage.FSMStorage
	repo      *storage.TriggerRepository
	catalog   *domain.Catalog
	localizer locale.Localizer
	wizard    *TriggerWizardFSM
	handler   *BotHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	queue := storage.NewDBQueue(db)
	t.Cleanup(func() {
		queue.Close()
		_ = db.Close()
	})
	require.NoError(t, storage.Open(queue))

	log := logger.New(logger.ERROR)
	cfg := &config.Config{
		AdminUserIDs: []int64{adminID},
		Language:     locale.En,
		PageSize:     10,
	}

	localizer, err := locale.NewLocalizer(context.Background(), locale.NewLocale(locale.En))
	require.NoError(t, err)

	partitioner, err := domain.NewPartitioner(1, 500, 25)
	require.NoError(t, err)

	messenger := newMockMessenger()
	sessions := storage.NewFSMStorage(queue, log, storage.DefaultSessionTTL)
	repo := storage.NewTriggerRepository(queue, log)
	catalog := domain.NewCatalog(repo, partitioner, cfg.PageSize, log)
	resolver := domain.NewResolver(repo, log)
	wizard := NewTriggerWizardFSM(sessions, messenger, repo, partitioner, localizer, log)
	browser := NewBrowser(messenger, catalog, localizer, log)

	return &testEnv{
		messenger: messenger,
		queue:     queue,
		sessions:  sessions,
		repo:      repo,
		catalog:   catalog,
		localizer: localizer,
		wizard:    wizard,
		handler:   NewBotHandler(messenger, cfg, wizard, browser, resolver, catalog, localizer, log),
	}
}

func textUpdate(from int64, text string) *models.Update {
	return &models.Update{
		Message: &models.Message{
			ID:   1,
			From: &models.User{ID: from},
			Chat: models.Chat{ID: from},
			Text: text,
		},
	}
}

func callbackUpdate(from int64, data string) *models.Update {
	return &models.Update{
		CallbackQuery: &models.CallbackQuery{
			ID:   "cb-" + data,
			From: models.User{ID: from},
			Message: models.MaybeInaccessibleMessage{
				Message: &models.Message{ID: 500, Chat: models.Chat{ID: from}},
			},
			Data: data,
		},
	}
}

func (e *testEnv) send(from int64, text string) {
	e.handler.HandleMessage(context.Background(), nil, textUpdate(from, text))
}

func (e *testEnv) click(from int64, data string) {
	e.handler.HandleCallback(context.Background(), nil, callbackUpdate(from, data))
}

func (e *testEnv) state(t *testing.T, user int64) string {
	t.Helper()
	state, _, err := e.sessions.Get(context.Background(), user)
	if err != nil {
		return ""
	}
	return state
}

func (e *testEnv) insert(t *testing.T, trigger *domain.Trigger) {
	t.Helper()
	require.NoError(t, e.repo.Insert(context.Background(), trigger))
}

func (e *testEnv) count(t *testing.T) int {
	t.Helper()
	n, err := e.repo.Count(context.Background())
	require.NoError(t, err)
	return n
}

func strPtr(s string) *string { return &s }
