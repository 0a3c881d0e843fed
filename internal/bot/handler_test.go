package bot

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"testing"

	"github.com/ad/autoreply-bot/internal/domain"
	"github.com/ad/autoreply-bot/internal/locale"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textTrigger(key, reply string) *domain.Trigger {
	return &domain.Trigger{Key: key, Kind: domain.TriggerKindText, ContentType: domain.ContentTypeText, ContentRef: reply}
}

func numericTrigger(n int) *domain.Trigger {
	category := "1-25"
	if n > 25 {
		category = "26-50"
	}
	return &domain.Trigger{
		Key:         strconv.Itoa(n),
		Kind:        domain.TriggerKindNumeric,
		ContentType: domain.ContentTypeText,
		ContentRef:  "reply " + strconv.Itoa(n),
		Category:    strPtr(category),
	}
}

func TestHandleStart_AdminSeesMenuWithCount(t *testing.T) {
	env := newTestEnv(t)
	env.insert(t, textTrigger("a", "x"))
	env.insert(t, textTrigger("b", "y"))

	env.handler.HandleStart(context.Background(), nil, textUpdate(adminID, "/start"))

	sent := env.messenger.lastSent()
	require.NotNil(t, sent)
	assert.Equal(t, env.localizer.MustLocalizeWithTemplate(locale.AdminMenuTitle, "2"), sent.Text)
	kb := inlineKeyboard(t, sent.ReplyMarkup)
	assert.Equal(t, ActionAdminCategories, kb.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, ActionAdminAdd, kb.InlineKeyboard[1][0].CallbackData)
}

func TestHandleStart_UserSeesWelcome(t *testing.T) {
	env := newTestEnv(t)

	env.handler.HandleStart(context.Background(), nil, textUpdate(userID, "/start"))

	assert.Equal(t, env.localizer.MustLocalize(locale.UserWelcome), env.messenger.lastSent().Text)
}

func TestAdminCommandsRejectUsers(t *testing.T) {
	env := newTestEnv(t)

	env.handler.HandleAdd(context.Background(), nil, textUpdate(userID, "/add"))

	assert.Equal(t, env.localizer.MustLocalize(locale.AdminOnly), env.messenger.lastSent().Text)
	assert.Equal(t, "", env.state(t, userID))
}

func TestHandleCallback_UserGetsAlert(t *testing.T) {
	env := newTestEnv(t)
	env.insert(t, textTrigger("hello", "Hi there"))

	env.click(userID, "delete-confirm:hello")

	answer := env.messenger.lastAnswer()
	require.NotNil(t, answer)
	assert.True(t, answer.ShowAlert)
	assert.Equal(t, env.localizer.MustLocalize(locale.AdminOnly), answer.Text)
	assert.Equal(t, 1, env.count(t))
}

func TestHandleCallback_MalformedPayload(t *testing.T) {
	env := newTestEnv(t)

	env.click(adminID, "page:1-25:abc")

	assert.Equal(t, env.localizer.MustLocalize(locale.ErrorUnknownAction), env.messenger.lastAnswer().Text)
	assert.Empty(t, env.messenger.edits)
	assert.Empty(t, env.messenger.sent)
}

func TestResolution_TrimmedInputMatches(t *testing.T) {
	env := newTestEnv(t)
	env.insert(t, textTrigger("hello", "Hi there"))

	env.send(userID, "  hello  ")

	assert.Equal(t, "Hi there", env.messenger.lastSent().Text)
}

func TestResolution_NoMatchSendsFallback(t *testing.T) {
	env := newTestEnv(t)

	env.send(userID, "nomatch")

	assert.Equal(t, env.localizer.MustLocalize(locale.ReplyNotFound), env.messenger.lastSent().Text)
}

func TestResolution_AdminWithoutDraftResolves(t *testing.T) {
	env := newTestEnv(t)
	env.insert(t, textTrigger("hello", "Hi there"))

	env.send(adminID, "hello")

	assert.Equal(t, "Hi there", env.messenger.lastSent().Text)
}

func TestResolution_MediaUsesFileIDAndCaption(t *testing.T) {
	env := newTestEnv(t)
	env.insert(t, &domain.Trigger{
		Key:         "12",
		Kind:        domain.TriggerKindNumeric,
		ContentType: domain.ContentTypePhoto,
		ContentRef:  "file-abc",
		Category:    strPtr("1-25"),
	})

	env.send(userID, "12")

	require.Len(t, env.messenger.media, 1)
	call := env.messenger.media[0]
	assert.Equal(t, domain.ContentTypePhoto, call.Type)
	assert.Equal(t, "file-abc", call.Ref)
	assert.Equal(t, "12", call.Caption)
}

func TestResolution_UnsupportedStoredType(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.queue.Execute(func(db *sql.DB) error {
		_, err := db.Exec(`INSERT INTO triggers (key, kind, content_type, content_ref, created_at)
			VALUES ('gif', 'text', 'animation', 'file-gif', '2024-01-01T00:00:00Z')`)
		return err
	}))

	env.send(userID, "gif")

	assert.Equal(t, env.localizer.MustLocalize(locale.ReplyUnsupported), env.messenger.lastSent().Text)
}

func TestResolution_SendFailureIsSwallowed(t *testing.T) {
	env := newTestEnv(t)
	env.insert(t, &domain.Trigger{Key: "v", Kind: domain.TriggerKindText, ContentType: domain.ContentTypeVoice, ContentRef: "voice-1"})
	env.messenger.mediaErr = errors.New("Bad Request: wrong file identifier")

	assert.NotPanics(t, func() { env.send(userID, "v") })
	assert.Empty(t, env.messenger.sent)
}

func TestBrowse_Pagination(t *testing.T) {
	env := newTestEnv(t)
	for i := 1; i <= 25; i++ {
		env.insert(t, numericTrigger(i))
	}

	env.click(adminID, "select-category:1-25")

	edit := env.messenger.lastEdit()
	require.NotNil(t, edit)
	assert.Equal(t, 500, edit.MessageID)
	assert.Equal(t, env.localizer.MustLocalizeWithTemplate(locale.BrowseCategoryTitle, "1-25", "1", "25"), edit.Text)
	kb := inlineKeyboard(t, edit.ReplyMarkup)
	// 10 keys in rows of 5, then navigation, then back
	require.Len(t, kb.InlineKeyboard, 4)
	assert.Equal(t, "select-trigger:1", kb.InlineKeyboard[0][0].CallbackData)
	require.Len(t, kb.InlineKeyboard[2], 1)
	assert.Equal(t, "page:1-25:1", kb.InlineKeyboard[2][0].CallbackData)

	env.click(adminID, "page:1-25:2")

	kb = inlineKeyboard(t, env.messenger.lastEdit().ReplyMarkup)
	require.Len(t, kb.InlineKeyboard, 3)
	assert.Len(t, kb.InlineKeyboard[0], 5)
	assert.Equal(t, "select-trigger:21", kb.InlineKeyboard[0][0].CallbackData)
	require.Len(t, kb.InlineKeyboard[1], 1)
	assert.Equal(t, "page:1-25:1", kb.InlineKeyboard[1][0].CallbackData)
}

func TestBrowse_PagePastTheEndIsEmpty(t *testing.T) {
	env := newTestEnv(t)
	for i := 1; i <= 25; i++ {
		env.insert(t, numericTrigger(i))
	}

	require.NotPanics(t, func() {
		env.click(adminID, "page:1-25:1000000000000000000")
	})

	edit := env.messenger.lastEdit()
	require.NotNil(t, edit)
	assert.Contains(t, edit.Text, env.localizer.MustLocalize(locale.BrowseEmpty))
	kb := inlineKeyboard(t, edit.ReplyMarkup)
	for _, row := range kb.InlineKeyboard {
		for _, btn := range row {
			assert.NotContains(t, btn.CallbackData, "select-trigger:")
		}
	}
}

func TestBrowse_NumericOrderWithinCategory(t *testing.T) {
	env := newTestEnv(t)
	for _, n := range []int{10, 2, 1} {
		env.insert(t, numericTrigger(n))
	}

	env.click(adminID, "select-category:1-25")

	kb := inlineKeyboard(t, env.messenger.lastEdit().ReplyMarkup)
	var keys []string
	for _, b := range kb.InlineKeyboard[0] {
		keys = append(keys, b.Text)
	}
	assert.Equal(t, []string{"1", "2", "10"}, keys)
}

func TestBrowse_UnknownSectionFallsBackToCategories(t *testing.T) {
	env := newTestEnv(t)

	env.click(adminID, "select-category:3-27")

	assert.Equal(t, env.localizer.MustLocalize(locale.BrowseChooseCategory), env.messenger.lastEdit().Text)
}

func TestBrowse_DetailOfMissingTriggerAlerts(t *testing.T) {
	env := newTestEnv(t)

	env.click(adminID, "select-trigger:ghost")

	answer := env.messenger.lastAnswer()
	assert.True(t, answer.ShowAlert)
	assert.Equal(t, env.localizer.MustLocalize(locale.TriggerNotFoundAlert), answer.Text)
	assert.Empty(t, env.messenger.edits)
}

func TestBrowse_DeleteIsTwoPhase(t *testing.T) {
	env := newTestEnv(t)
	env.insert(t, numericTrigger(30))
	ctx := context.Background()

	env.click(adminID, "select-trigger:30")
	kb := inlineKeyboard(t, env.messenger.lastEdit().ReplyMarkup)
	assert.Equal(t, "delete-ask:30", kb.InlineKeyboard[0][1].CallbackData)
	assert.Equal(t, "back-to-list:26-50", kb.InlineKeyboard[1][0].CallbackData)

	env.click(adminID, "delete-ask:30")
	_, err := env.repo.FindByKey(ctx, "30")
	require.NoError(t, err, "asking must not delete")
	assert.Equal(t, env.localizer.MustLocalizeWithTemplate(locale.DeleteConfirmPrompt, "30"), env.messenger.lastEdit().Text)

	env.click(adminID, "delete-confirm:30")
	_, err = env.repo.FindByKey(ctx, "30")
	assert.ErrorIs(t, err, domain.ErrTriggerNotFound)
	assert.Equal(t, env.localizer.MustLocalizeWithTemplate(locale.TriggerDeleted, "30"), env.messenger.lastAnswer().Text)
	assert.Contains(t, env.messenger.lastEdit().Text, "26-50")

	env.click(adminID, "delete-confirm:30")
	assert.Equal(t, env.localizer.MustLocalizeWithTemplate(locale.TriggerAlreadyDeleted, "30"), env.messenger.lastAnswer().Text)
}

func TestBrowse_TextSection(t *testing.T) {
	env := newTestEnv(t)
	env.insert(t, textTrigger("hello", "Hi"))

	env.click(adminID, "select-category:"+domain.TextSection)

	kb := inlineKeyboard(t, env.messenger.lastEdit().ReplyMarkup)
	assert.Equal(t, "select-trigger:hello", kb.InlineKeyboard[0][0].CallbackData)
}

func TestBrowse_EditAnswersWithHint(t *testing.T) {
	env := newTestEnv(t)
	env.insert(t, textTrigger("hello", "Hi"))

	env.click(adminID, "edit:hello")

	answer := env.messenger.lastAnswer()
	assert.True(t, answer.ShowAlert)
	assert.Equal(t, env.localizer.MustLocalize(locale.EditNotSupported), answer.Text)
}

func TestAdminMenuNavigation(t *testing.T) {
	env := newTestEnv(t)

	env.click(adminID, "admin:categories")
	assert.Equal(t, env.localizer.MustLocalize(locale.BrowseChooseCategory), env.messenger.lastEdit().Text)

	env.click(adminID, "admin:menu")
	assert.Equal(t, env.localizer.MustLocalizeWithTemplate(locale.AdminMenuTitle, "0"), env.messenger.lastEdit().Text)

	env.click(adminID, "admin:transfer")
	assert.Equal(t, env.localizer.MustLocalize(locale.ImportExportHelp), env.messenger.lastEdit().Text)

	env.click(adminID, "admin:add")
	assert.Equal(t, StateAwaitingTriggerType, env.state(t, adminID))
}
