package bot

import (
	"context"
	"errors"
	"html"
	"strconv"
	"unicode/utf8"

	"github.com/ad/autoreply-bot/internal/domain"
	"github.com/ad/autoreply-bot/internal/locale"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const previewRunes = 200

// Browser renders the paginated trigger catalog and its delete flow
type Browser struct {
	messenger Messenger
	catalog   *domain.Catalog
	localizer locale.Localizer
	logger    domain.Logger
}

// NewBrowser creates a new Browser
func NewBrowser(messenger Messenger, catalog *domain.Catalog, localizer locale.Localizer, logger domain.Logger) *Browser {
	return &Browser{
		messenger: messenger,
		catalog:   catalog,
		localizer: localizer,
		logger:    logger,
	}
}

// render edits messageID in place, or sends a new message when messageID is 0
func (b *Browser) render(ctx context.Context, chatID int64, messageID int, text string, kb *models.InlineKeyboardMarkup) error {
	return renderHTML(ctx, b.messenger, chatID, messageID, text, kb)
}

func renderHTML(ctx context.Context, m Messenger, chatID int64, messageID int, text string, kb *models.InlineKeyboardMarkup) error {
	var markup models.ReplyMarkup
	if kb != nil {
		markup = kb
	}

	if messageID != 0 {
		_, err := m.EditMessageText(ctx, &bot.EditMessageTextParams{
			ChatID:      chatID,
			MessageID:   messageID,
			Text:        text,
			ParseMode:   models.ParseModeHTML,
			ReplyMarkup: markup,
		})
		if err == nil || isNotModifiedError(err) {
			return nil
		}
		return err
	}

	_, err := m.SendMessage(ctx, sendParams(chatID, text, markup))
	return err
}

func sendParams(chatID int64, text string, markup models.ReplyMarkup) *bot.SendMessageParams {
	return &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: markup,
	}
}

func answer(ctx context.Context, m Messenger, callbackID string, text string, alert bool) {
	_, _ = m.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       alert,
	})
}

// ShowCategories renders the category chooser
func (b *Browser) ShowCategories(ctx context.Context, chatID int64, messageID int) error {
	return b.render(ctx, chatID, messageID,
		b.localizer.MustLocalize(locale.BrowseChooseCategory),
		categoriesKeyboard(b.localizer, b.catalog.ListCategories()),
	)
}

// ShowPage renders one page of a section
func (b *Browser) ShowPage(ctx context.Context, chatID int64, messageID int, section string, page int) error {
	p, err := b.catalog.ListTriggers(ctx, section, page)
	if err != nil {
		return err
	}

	var title string
	pageLabel := strconv.Itoa(p.Number + 1)
	total := strconv.Itoa(p.Total)
	if section == domain.TextSection {
		title = b.localizer.MustLocalizeWithTemplate(locale.BrowseTextTitle, pageLabel, total)
	} else {
		title = b.localizer.MustLocalizeWithTemplate(locale.BrowseCategoryTitle, html.EscapeString(section), pageLabel, total)
	}
	if len(p.Triggers) == 0 {
		title += "\n\n" + b.localizer.MustLocalize(locale.BrowseEmpty)
	}

	return b.render(ctx, chatID, messageID, title, pageKeyboard(b.localizer, p))
}

// ShowDetail renders one trigger. A missing trigger is reported through the
// callback alert and nothing is rendered.
func (b *Browser) ShowDetail(ctx context.Context, callback *models.CallbackQuery, chatID int64, messageID int, key string) error {
	t, err := b.catalog.ShowDetail(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrTriggerNotFound) {
			answer(ctx, b.messenger, callback.ID, b.localizer.MustLocalize(locale.TriggerNotFoundAlert), true)
			return nil
		}
		return err
	}
	answer(ctx, b.messenger, callback.ID, "", false)

	text := b.localizer.MustLocalizeWithTemplate(locale.TriggerDetail,
		html.EscapeString(t.Key),
		kindLabel(b.localizer, t.Kind),
		contentPreview(b.localizer, t.ContentType, t.ContentRef),
		t.CreatedAt.Format("2006-01-02 15:04"),
	)
	return b.render(ctx, chatID, messageID, text, detailKeyboard(b.localizer, t))
}

// AskDelete renders the delete confirmation without touching the store
func (b *Browser) AskDelete(ctx context.Context, callback *models.CallbackQuery, chatID int64, messageID int, key string) error {
	answer(ctx, b.messenger, callback.ID, "", false)
	return b.render(ctx, chatID, messageID,
		b.localizer.MustLocalizeWithTemplate(locale.DeleteConfirmPrompt, html.EscapeString(key)),
		deleteConfirmKeyboard(b.localizer, key),
	)
}

// ConfirmDelete deletes the trigger and shows the first page of its section
func (b *Browser) ConfirmDelete(ctx context.Context, callback *models.CallbackQuery, chatID int64, messageID int, key string) error {
	section, deleted, err := b.catalog.Delete(ctx, key)
	if err != nil {
		return err
	}

	notice := locale.TriggerDeleted
	if !deleted {
		notice = locale.TriggerAlreadyDeleted
	}
	answer(ctx, b.messenger, callback.ID, b.localizer.MustLocalizeWithTemplate(notice, key), false)

	b.logger.Info("trigger deleted by admin", "user_id", callback.From.ID, "key", key, "deleted", deleted)
	return b.ShowPage(ctx, chatID, messageID, section, 0)
}

// Edit answers with the delete-and-recreate hint
func (b *Browser) Edit(ctx context.Context, callback *models.CallbackQuery) {
	answer(ctx, b.messenger, callback.ID, b.localizer.MustLocalize(locale.EditNotSupported), true)
}

// contentPreview is a short HTML-safe description of trigger content
func contentPreview(l locale.Localizer, ct domain.ContentType, ref string) string {
	if ct == domain.ContentTypeText {
		return html.EscapeString(truncate(ref, previewRunes))
	}
	return l.MustLocalizeWithTemplate(locale.WizardSummaryMedia, contentTypeLabel(l, ct))
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "…"
}
