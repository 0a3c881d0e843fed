package bot

import (
	"context"
	"errors"
	"strconv"

	"github.com/ad/autoreply-bot/internal/config"
	"github.com/ad/autoreply-bot/internal/domain"
	"github.com/ad/autoreply-bot/internal/locale"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// BotHandler handles all Telegram bot interactions
type BotHandler struct {
	messenger Messenger
	config    *config.Config
	wizard    *TriggerWizardFSM
	browser   *Browser
	resolver  *domain.Resolver
	catalog   *domain.Catalog
	localizer locale.Localizer
	logger    domain.Logger
	locks     *conversationLocks
}

// NewBotHandler creates a new BotHandler with all dependencies
func NewBotHandler(
	messenger Messenger,
	cfg *config.Config,
	wizard *TriggerWizardFSM,
	browser *Browser,
	resolver *domain.Resolver,
	catalog *domain.Catalog,
	localizer locale.Localizer,
	logger domain.Logger,
) *BotHandler {
	return &BotHandler{
		messenger: messenger,
		config:    cfg,
		wizard:    wizard,
		browser:   browser,
		resolver:  resolver,
		catalog:   catalog,
		localizer: localizer,
		logger:    logger,
		locks:     newConversationLocks(),
	}
}

// requireAdmin checks the allowlist and tells non-admins the command is not
// available to them
func (h *BotHandler) requireAdmin(ctx context.Context, update *models.Update) bool {
	if update.Message == nil || update.Message.From == nil {
		return false
	}
	userID := update.Message.From.ID

	if !h.config.IsAdmin(userID) {
		h.logger.Warn("unauthorized admin command attempt", "user_id", userID)
		h.sendText(ctx, update.Message.Chat.ID, h.localizer.MustLocalize(locale.AdminOnly))
		return false
	}
	return true
}

// sendText sends an HTML message and logs failures
func (h *BotHandler) sendText(ctx context.Context, chatID int64, text string) {
	if _, err := h.messenger.SendMessage(ctx, sendParams(chatID, text, nil)); err != nil {
		h.logger.Error("failed to send message", "chat_id", chatID, "error", err)
	}
}

// showMainMenu renders the admin menu, editing messageID when it is set
func (h *BotHandler) showMainMenu(ctx context.Context, chatID int64, messageID int) error {
	count, err := h.catalog.Count(ctx)
	if err != nil {
		return err
	}
	return renderHTML(ctx, h.messenger, chatID, messageID,
		h.localizer.MustLocalizeWithTemplate(locale.AdminMenuTitle, strconv.Itoa(count)),
		mainMenuKeyboard(h.localizer),
	)
}

// HandleStart handles the /start command
func (h *BotHandler) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	if !h.config.IsAdmin(userID) {
		h.sendText(ctx, chatID, h.localizer.MustLocalize(locale.UserWelcome))
		return
	}

	if err := h.showMainMenu(ctx, chatID, 0); err != nil {
		h.logger.Error("failed to show main menu", "user_id", userID, "error", err)
		h.sendText(ctx, chatID, h.localizer.MustLocalize(locale.ErrorGeneric))
	}
}

// HandleAdd handles the /add command
func (h *BotHandler) HandleAdd(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.requireAdmin(ctx, update) {
		return
	}
	userID := update.Message.From.ID
	defer h.locks.Lock(userID)()

	if err := h.wizard.Start(ctx, userID, update.Message.Chat.ID); err != nil {
		h.logger.Error("failed to start trigger wizard", "user_id", userID, "error", err)
		h.sendText(ctx, update.Message.Chat.ID, h.localizer.MustLocalize(locale.ErrorGeneric))
	}
}

// HandleCancel handles the /cancel command. Without an active draft it does nothing.
func (h *BotHandler) HandleCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.requireAdmin(ctx, update) {
		return
	}
	userID := update.Message.From.ID
	defer h.locks.Lock(userID)()

	cancelled, err := h.wizard.Cancel(ctx, userID, update.Message.Chat.ID)
	if err != nil {
		h.logger.Error("failed to cancel trigger wizard", "user_id", userID, "error", err)
		h.sendText(ctx, update.Message.Chat.ID, h.localizer.MustLocalize(locale.ErrorGeneric))
		return
	}
	if !cancelled {
		h.logger.Debug("cancel without active draft", "user_id", userID)
	}
}

// HandleTriggers handles the /triggers command
func (h *BotHandler) HandleTriggers(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.requireAdmin(ctx, update) {
		return
	}
	if err := h.browser.ShowCategories(ctx, update.Message.Chat.ID, 0); err != nil {
		h.logger.Error("failed to show categories", "user_id", update.Message.From.ID, "error", err)
	}
}

// HandleMessage is the default handler. Admins with an active draft feed
// the wizard; everything else is looked up as a trigger key.
func (h *BotHandler) HandleMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}
	userID := msg.From.ID
	chatID := msg.Chat.ID
	defer h.locks.Lock(userID)()

	if h.config.IsAdmin(userID) {
		handled, err := h.wizard.HandleMessage(ctx, msg)
		if err != nil {
			h.logger.Error("trigger wizard message handling failed", "user_id", userID, "error", err)
			h.sendText(ctx, chatID, h.localizer.MustLocalize(locale.ErrorGeneric))
			return
		}
		if handled {
			return
		}
	}

	if msg.Text == "" {
		return
	}
	h.reply(ctx, userID, chatID, msg.Text)
}

// reply resolves text and sends the stored content or a fallback notice
func (h *BotHandler) reply(ctx context.Context, userID int64, chatID int64, text string) {
	r, err := h.resolver.Resolve(ctx, text)
	switch {
	case errors.Is(err, domain.ErrNoMatch):
		h.sendText(ctx, chatID, h.localizer.MustLocalize(locale.ReplyNotFound))
		return
	case err != nil:
		h.logger.Error("failed to resolve trigger", "user_id", userID, "error", err)
		h.sendText(ctx, chatID, h.localizer.MustLocalize(locale.ErrorGeneric))
		return
	}

	err = sendReply(ctx, h.messenger, chatID, r)
	switch {
	case errors.Is(err, errUnsupportedContent):
		h.logger.Warn("trigger has unsupported content", "user_id", userID, "key", r.Key, "content_type", r.ContentType)
		h.sendText(ctx, chatID, h.localizer.MustLocalize(locale.ReplyUnsupported))
	case err != nil:
		h.logger.Error("failed to send reply", "user_id", userID, "key", r.Key, "error", err)
	default:
		h.logger.Debug("trigger matched", "user_id", userID, "key", r.Key)
	}
}

// HandleCallback handles callback queries (button clicks)
func (h *BotHandler) HandleCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	callback := update.CallbackQuery
	userID := callback.From.ID

	action, ok := ParseAction(callback.Data)
	if !ok {
		h.logger.Warn("malformed callback data", "user_id", userID, "data", callback.Data)
		answer(ctx, h.messenger, callback.ID, h.localizer.MustLocalize(locale.ErrorUnknownAction), false)
		return
	}

	if !h.config.IsAdmin(userID) {
		h.logger.Warn("unauthorized callback", "user_id", userID, "data", callback.Data)
		answer(ctx, h.messenger, callback.ID, h.localizer.MustLocalize(locale.AdminOnly), true)
		return
	}

	defer h.locks.Lock(userID)()

	chatID := userID
	messageID := 0
	if callback.Message.Message != nil {
		chatID = callback.Message.Message.Chat.ID
		messageID = callback.Message.Message.ID
	}

	if err := h.route(ctx, callback, action, chatID, messageID); err != nil {
		h.logger.Error("callback handling failed", "user_id", userID, "action", action.Prefix, "error", err)
		h.sendText(ctx, chatID, h.localizer.MustLocalize(locale.ErrorGeneric))
	}
}

func (h *BotHandler) route(ctx context.Context, callback *models.CallbackQuery, action Action, chatID int64, messageID int) error {
	if action.IsWizard() {
		return h.wizard.HandleCallback(ctx, callback, action)
	}

	switch action.Prefix {
	case ActionSelectTrigger:
		return h.browser.ShowDetail(ctx, callback, chatID, messageID, action.Arg(0))
	case ActionDeleteAsk:
		return h.browser.AskDelete(ctx, callback, chatID, messageID, action.Arg(0))
	case ActionDeleteConfirm:
		return h.browser.ConfirmDelete(ctx, callback, chatID, messageID, action.Arg(0))
	case ActionEdit:
		h.browser.Edit(ctx, callback)
		return nil
	}

	// The remaining actions only navigate, so the spinner is cleared up front
	answer(ctx, h.messenger, callback.ID, "", false)

	switch action.Prefix {
	case ActionAdminMenu:
		return h.showMainMenu(ctx, chatID, messageID)
	case ActionAdminCategories:
		return h.browser.ShowCategories(ctx, chatID, messageID)
	case ActionAdminAdd:
		return h.wizard.Start(ctx, callback.From.ID, chatID)
	case ActionAdminImportExport:
		return renderHTML(ctx, h.messenger, chatID, messageID,
			h.localizer.MustLocalize(locale.ImportExportHelp),
			backToMenuKeyboard(h.localizer),
		)
	case ActionSelectCategory, ActionBackToList:
		return h.showPage(ctx, callback, chatID, messageID, action.Arg(0), 0)
	case ActionPage:
		return h.showPage(ctx, callback, chatID, messageID, action.Arg(0), action.Page())
	}

	h.logger.Warn("unhandled callback action", "user_id", callback.From.ID, "action", action.Prefix)
	return nil
}

// showPage renders a listing page. A section that is no longer a bucket
// label, for instance after the partition settings changed, falls back to
// the category list.
func (h *BotHandler) showPage(ctx context.Context, callback *models.CallbackQuery, chatID int64, messageID int, section string, page int) error {
	err := h.browser.ShowPage(ctx, chatID, messageID, section, page)
	if errors.Is(err, domain.ErrUnknownSection) {
		h.logger.Warn("unknown section requested", "user_id", callback.From.ID, "section", section)
		return h.browser.ShowCategories(ctx, chatID, messageID)
	}
	return err
}
