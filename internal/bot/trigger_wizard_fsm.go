package bot

import (
	"context"
	"errors"
	"html"
	"strconv"
	"time"

	"github.com/ad/autoreply-bot/internal/domain"
	"github.com/ad/autoreply-bot/internal/locale"
	"github.com/ad/autoreply-bot/internal/logger"
	"github.com/ad/autoreply-bot/internal/storage"

	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
)

// FSM state constants. Idle has no constant: it is the absence of a session.
const (
	StateAwaitingTriggerType  = "awaiting_trigger_type"
	StateAwaitingTriggerValue = "awaiting_trigger_value"
	StateAwaitingContentType  = "awaiting_content_type"
	StateAwaitingContent      = "awaiting_content"
	StateAwaitingConfirmation = "awaiting_confirmation"
)

// errSessionExpired is returned by load once the user has been told their
// session expired
var errSessionExpired = errors.New("trigger wizard session expired")

// TriggerWizardFSM walks an admin through authoring one trigger
type TriggerWizardFSM struct {
	storage     *storage.FSMStorage
	messenger   Messenger
	repo        domain.TriggerRepository
	partitioner *domain.Partitioner
	localizer   locale.Localizer
	logger      *logger.Logger
	now         func() time.Time
}

// NewTriggerWizardFSM creates a new wizard
func NewTriggerWizardFSM(
	storage *storage.FSMStorage,
	messenger Messenger,
	repo domain.TriggerRepository,
	partitioner *domain.Partitioner,
	localizer locale.Localizer,
	log *logger.Logger,
) *TriggerWizardFSM {
	return &TriggerWizardFSM{
		storage:     storage,
		messenger:   messenger,
		repo:        repo,
		partitioner: partitioner,
		localizer:   localizer,
		logger:      log.With("component", "trigger_wizard"),
		now:         time.Now,
	}
}

// isWizardState reports whether state belongs to this wizard
func isWizardState(state string) bool {
	switch state {
	case StateAwaitingTriggerType, StateAwaitingTriggerValue, StateAwaitingContentType,
		StateAwaitingContent, StateAwaitingConfirmation:
		return true
	}
	return false
}

// load returns the active session. ok is false when the user is idle. An
// expired session is reported to the user once and returned as
// errSessionExpired.
func (f *TriggerWizardFSM) load(ctx context.Context, userID int64, chatID int64) (state string, draft *domain.TriggerDraft, ok bool, err error) {
	state, data, err := f.storage.Get(ctx, userID)
	switch {
	case errors.Is(err, storage.ErrSessionNotFound):
		return "", nil, false, nil
	case errors.Is(err, storage.ErrSessionExpired):
		f.send(ctx, chatID, f.localizer.MustLocalize(locale.ErrorSessionExpired), nil)
		return "", nil, false, errSessionExpired
	case err != nil:
		return "", nil, false, err
	}

	if !isWizardState(state) {
		f.logger.Warn("unknown session state, discarding", "user_id", userID, "state", state)
		_ = f.storage.Delete(ctx, userID)
		return "", nil, false, nil
	}

	draft = &domain.TriggerDraft{}
	if err := draft.FromMap(data); err != nil {
		f.logger.Error("failed to load draft", "user_id", userID, "state", state, "error", err)
		_ = f.storage.Delete(ctx, userID)
		return "", nil, false, err
	}
	return state, draft, true, nil
}

func (f *TriggerWizardFSM) save(ctx context.Context, userID int64, from, to string, draft *domain.TriggerDraft) error {
	if err := f.storage.Set(ctx, userID, to, draft.ToMap()); err != nil {
		f.logger.Error("failed to store session", "user_id", userID, "state", to, "error", err)
		return err
	}
	if from != to {
		f.logger.Info("state transition", "user_id", userID, "session_id", draft.SessionID, "old_state", from, "new_state", to)
	}
	return nil
}

// send posts an HTML message and returns its ID, or 0 on failure
func (f *TriggerWizardFSM) send(ctx context.Context, chatID int64, text string, kb *models.InlineKeyboardMarkup) int {
	var markup models.ReplyMarkup
	if kb != nil {
		markup = kb
	}
	msg, err := f.messenger.SendMessage(ctx, sendParams(chatID, text, markup))
	if err != nil {
		f.logger.Error("failed to send message", "chat_id", chatID, "error", err)
		return 0
	}
	return msg.ID
}

// replacePrompt removes the previous prompt and posts a new one so only the
// current step carries buttons
func (f *TriggerWizardFSM) replacePrompt(ctx context.Context, draft *domain.TriggerDraft, text string, kb *models.InlineKeyboardMarkup) {
	deleteMessages(ctx, f.messenger, f.logger, draft.ChatID, draft.PromptMessageID)
	draft.PromptMessageID = f.send(ctx, draft.ChatID, text, kb)
}

// editPrompt rewrites the current prompt in place, falling back to a new message
func (f *TriggerWizardFSM) editPrompt(ctx context.Context, draft *domain.TriggerDraft, text string, kb *models.InlineKeyboardMarkup) {
	if err := renderHTML(ctx, f.messenger, draft.ChatID, draft.PromptMessageID, text, kb); err != nil {
		f.logger.Warn("failed to edit prompt, sending a new one", "chat_id", draft.ChatID, "error", err)
		draft.PromptMessageID = f.send(ctx, draft.ChatID, text, kb)
	}
}

// Start resets any draft and asks for the trigger type
func (f *TriggerWizardFSM) Start(ctx context.Context, userID int64, chatID int64) error {
	if state, data, err := f.storage.Get(ctx, userID); err == nil && isWizardState(state) {
		previous := &domain.TriggerDraft{}
		if previous.FromMap(data) == nil {
			deleteMessages(ctx, f.messenger, f.logger, previous.ChatID, previous.PromptMessageID)
		}
		f.logger.Info("restarting wizard, previous draft discarded", "user_id", userID, "old_state", state)
	}

	draft := &domain.TriggerDraft{
		SessionID: uuid.NewString(),
		ChatID:    chatID,
	}
	draft.PromptMessageID = f.send(ctx, chatID, f.localizer.MustLocalize(locale.WizardChooseKind), kindKeyboard(f.localizer))

	if err := f.save(ctx, userID, "", StateAwaitingTriggerType, draft); err != nil {
		return err
	}
	f.logger.Info("wizard started", "user_id", userID, "session_id", draft.SessionID)
	return nil
}

// Cancel discards the draft. It returns false when there was nothing to cancel.
func (f *TriggerWizardFSM) Cancel(ctx context.Context, userID int64, chatID int64) (bool, error) {
	state, draft, ok, err := f.load(ctx, userID, chatID)
	if errors.Is(err, errSessionExpired) {
		return false, nil
	}
	if err != nil || !ok {
		return false, err
	}

	if err := f.storage.Delete(ctx, userID); err != nil {
		return false, err
	}
	f.editPrompt(ctx, draft, f.localizer.MustLocalize(locale.WizardCancelled), nil)
	f.logger.Info("wizard cancelled", "user_id", userID, "session_id", draft.SessionID, "state", state)
	return true, nil
}

// HandleMessage feeds a message into the wizard. It returns false when the
// user has no active session so the caller can treat the message as a lookup.
func (f *TriggerWizardFSM) HandleMessage(ctx context.Context, msg *models.Message) (bool, error) {
	if msg == nil || msg.From == nil {
		return false, nil
	}
	userID := msg.From.ID
	chatID := msg.Chat.ID

	state, draft, ok, err := f.load(ctx, userID, chatID)
	if errors.Is(err, errSessionExpired) {
		// The expiry notice is the response to this message
		return true, nil
	}
	if err != nil || !ok {
		return ok, err
	}
	if draft.ChatID == 0 {
		draft.ChatID = chatID
	}

	switch state {
	case StateAwaitingTriggerValue:
		return true, f.handleValueInput(ctx, userID, msg.Text, draft)
	case StateAwaitingContent:
		return true, f.handleContentInput(ctx, userID, msg, draft)
	case StateAwaitingContentType:
		f.logger.Debug("message ignored while choosing content type", "user_id", userID)
		return true, nil
	default:
		// Button-driven steps ignore free input
		f.send(ctx, chatID, f.localizer.MustLocalize(locale.ErrorUseButtonsAbove), nil)
		f.logger.Debug("message ignored in button state", "user_id", userID, "state", state)
		return true, nil
	}
}

// HandleCallback applies a wizard action. Actions that do not fit the
// current state are ignored.
func (f *TriggerWizardFSM) HandleCallback(ctx context.Context, callback *models.CallbackQuery, action Action) error {
	userID := callback.From.ID
	chatID := userID
	if callback.Message.Message != nil {
		chatID = callback.Message.Message.Chat.ID
	}

	if action.Prefix == ActionWizardCancel {
		answer(ctx, f.messenger, callback.ID, "", false)
		_, err := f.Cancel(ctx, userID, chatID)
		return err
	}

	state, draft, ok, err := f.load(ctx, userID, chatID)
	if errors.Is(err, errSessionExpired) {
		answer(ctx, f.messenger, callback.ID, "", false)
		return nil
	}
	if err != nil {
		answer(ctx, f.messenger, callback.ID, "", false)
		return err
	}
	if !ok {
		answer(ctx, f.messenger, callback.ID, f.localizer.MustLocalize(locale.ErrorMessageOutdated), false)
		return nil
	}
	answer(ctx, f.messenger, callback.ID, "", false)

	switch {
	case action.Prefix == ActionKind && state == StateAwaitingTriggerType:
		return f.handleKind(ctx, userID, domain.TriggerKind(action.Arg(0)), draft)
	case action.Prefix == ActionContent && state == StateAwaitingContentType:
		return f.handleContentType(ctx, userID, domain.ContentType(action.Arg(0)), draft)
	case action.Prefix == ActionConfirm && state == StateAwaitingConfirmation:
		if action.Arg(0) == ConfirmYes {
			return f.commit(ctx, userID, draft)
		}
		return f.discard(ctx, userID, draft)
	}

	f.logger.Debug("callback ignored for state", "user_id", userID, "state", state, "data", callback.Data)
	return nil
}

func (f *TriggerWizardFSM) handleKind(ctx context.Context, userID int64, kind domain.TriggerKind, draft *domain.TriggerDraft) error {
	draft.Kind = kind
	f.editPrompt(ctx, draft, f.valuePrompt(kind), cancelKeyboard(f.localizer))
	return f.save(ctx, userID, StateAwaitingTriggerType, StateAwaitingTriggerValue, draft)
}

func (f *TriggerWizardFSM) valuePrompt(kind domain.TriggerKind) string {
	if kind == domain.TriggerKindNumeric {
		return f.localizer.MustLocalizeWithTemplate(locale.WizardEnterNumericValue,
			strconv.FormatInt(f.partitioner.Min(), 10), strconv.FormatInt(f.partitioner.Max(), 10))
	}
	return f.localizer.MustLocalize(locale.WizardEnterTextValue)
}

// rejectValue returns the localized reason a value is refused, or "" when it
// is acceptable. Store failures are returned as errors.
func (f *TriggerWizardFSM) rejectValue(ctx context.Context, kind domain.TriggerKind, key string) (string, error) {
	if key == "" {
		return f.localizer.MustLocalize(locale.ErrorValueEmpty), nil
	}

	if kind == domain.TriggerKindNumeric {
		n, err := domain.ParseNumericKey(key)
		if err != nil {
			return f.localizer.MustLocalize(locale.ErrorValueNotNumeric), nil
		}
		if !f.partitioner.Contains(n) {
			return f.localizer.MustLocalizeWithTemplate(locale.ErrorValueOutOfRange,
				strconv.FormatInt(f.partitioner.Min(), 10), strconv.FormatInt(f.partitioner.Max(), 10)), nil
		}
	}

	if len(key) > domain.MaxKeyLength || !FitsCallbackData(ActionDeleteConfirm, key) {
		return f.localizer.MustLocalize(locale.ErrorValueTooLong), nil
	}

	_, err := f.repo.FindByKey(ctx, key)
	switch {
	case err == nil:
		return f.localizer.MustLocalizeWithTemplate(locale.ErrorValueExists, html.EscapeString(key)), nil
	case errors.Is(err, domain.ErrTriggerNotFound):
		return "", nil
	default:
		return "", err
	}
}

func (f *TriggerWizardFSM) handleValueInput(ctx context.Context, userID int64, text string, draft *domain.TriggerDraft) error {
	key := domain.NormalizeKey(text)

	reason, err := f.rejectValue(ctx, draft.Kind, key)
	if err != nil {
		f.logger.Error("failed to check trigger value", "user_id", userID, "state", StateAwaitingTriggerValue, "error", err)
		f.send(ctx, draft.ChatID, f.localizer.MustLocalize(locale.ErrorGeneric), nil)
		return nil
	}
	if reason != "" {
		f.logger.Debug("trigger value rejected", "user_id", userID, "kind", draft.Kind)
		f.replacePrompt(ctx, draft, reason, cancelKeyboard(f.localizer))
		return f.save(ctx, userID, StateAwaitingTriggerValue, StateAwaitingTriggerValue, draft)
	}

	draft.Key = key
	f.replacePrompt(ctx, draft,
		f.localizer.MustLocalizeWithTemplate(locale.WizardChooseContentType, html.EscapeString(key)),
		contentTypeKeyboard(f.localizer),
	)
	return f.save(ctx, userID, StateAwaitingTriggerValue, StateAwaitingContentType, draft)
}

func (f *TriggerWizardFSM) handleContentType(ctx context.Context, userID int64, ct domain.ContentType, draft *domain.TriggerDraft) error {
	draft.ContentType = ct
	f.editPrompt(ctx, draft,
		f.localizer.MustLocalizeWithTemplate(locale.WizardSendContent, contentTypeLabel(f.localizer, ct)),
		cancelKeyboard(f.localizer),
	)
	return f.save(ctx, userID, StateAwaitingContentType, StateAwaitingContent, draft)
}

func (f *TriggerWizardFSM) handleContentInput(ctx context.Context, userID int64, msg *models.Message, draft *domain.TriggerDraft) error {
	ref, ok := extractContent(draft.ContentType, msg)
	if !ok {
		f.replacePrompt(ctx, draft,
			f.localizer.MustLocalizeWithTemplate(locale.ErrorContentMismatch, contentTypeLabel(f.localizer, draft.ContentType)),
			cancelKeyboard(f.localizer),
		)
		return f.save(ctx, userID, StateAwaitingContent, StateAwaitingContent, draft)
	}

	draft.ContentRef = ref
	f.replacePrompt(ctx, draft, f.summary(draft), confirmKeyboard(f.localizer))
	return f.save(ctx, userID, StateAwaitingContent, StateAwaitingConfirmation, draft)
}

// category returns the bucket label for numeric drafts and nil for text
func (f *TriggerWizardFSM) category(draft *domain.TriggerDraft) (*string, error) {
	if draft.Kind != domain.TriggerKindNumeric {
		return nil, nil
	}
	n, err := domain.ParseNumericKey(draft.Key)
	if err != nil {
		return nil, err
	}
	label, err := f.partitioner.BucketFor(n)
	if err != nil {
		return nil, err
	}
	return &label, nil
}

func (f *TriggerWizardFSM) summary(draft *domain.TriggerDraft) string {
	categoryText := f.localizer.MustLocalize(locale.WizardNoCategory)
	if category, err := f.category(draft); err == nil && category != nil {
		categoryText = *category
	}
	return f.localizer.MustLocalizeWithTemplate(locale.WizardSummary,
		html.EscapeString(draft.Key),
		kindLabel(f.localizer, draft.Kind),
		categoryText,
		contentPreview(f.localizer, draft.ContentType, draft.ContentRef),
	)
}

// commit inserts the trigger. The session ends whatever the outcome.
func (f *TriggerWizardFSM) commit(ctx context.Context, userID int64, draft *domain.TriggerDraft) error {
	defer func() {
		if err := f.storage.Delete(ctx, userID); err != nil {
			f.logger.Error("failed to delete session after commit", "user_id", userID, "error", err)
		}
	}()

	key := html.EscapeString(draft.Key)

	if err := draft.Complete(); err != nil {
		f.logger.Error("incomplete draft at confirmation", "user_id", userID, "state", StateAwaitingConfirmation, "error", err)
		f.editPrompt(ctx, draft, f.localizer.MustLocalize(locale.WizardSaveFailed), nil)
		return nil
	}

	category, err := f.category(draft)
	if err != nil {
		f.logger.Error("failed to categorize trigger", "user_id", userID, "key", draft.Key, "error", err)
		f.editPrompt(ctx, draft, f.localizer.MustLocalize(locale.WizardSaveFailed), nil)
		return nil
	}

	trigger := &domain.Trigger{
		Key:         draft.Key,
		Kind:        draft.Kind,
		ContentType: draft.ContentType,
		ContentRef:  draft.ContentRef,
		Category:    category,
		CreatedAt:   f.now().UTC(),
	}

	err = f.repo.Insert(ctx, trigger)
	switch {
	case err == nil:
		f.logger.Info("trigger created", "user_id", userID, "session_id", draft.SessionID, "key", trigger.Key, "category", trigger.CategoryOrEmpty())
		f.editPrompt(ctx, draft, f.localizer.MustLocalizeWithTemplate(locale.WizardSaved, key), backToMenuKeyboard(f.localizer))
	case errors.Is(err, domain.ErrTriggerExists):
		f.logger.Warn("trigger created concurrently", "user_id", userID, "key", trigger.Key)
		f.editPrompt(ctx, draft, f.localizer.MustLocalizeWithTemplate(locale.WizardSaveConflict, key), backToMenuKeyboard(f.localizer))
	default:
		f.logger.Error("failed to insert trigger", "user_id", userID, "state", StateAwaitingConfirmation, "key", trigger.Key, "error", err)
		f.editPrompt(ctx, draft, f.localizer.MustLocalize(locale.WizardSaveFailed), nil)
	}
	return nil
}

func (f *TriggerWizardFSM) discard(ctx context.Context, userID int64, draft *domain.TriggerDraft) error {
	if err := f.storage.Delete(ctx, userID); err != nil {
		return err
	}
	f.editPrompt(ctx, draft, f.localizer.MustLocalize(locale.WizardCancelled), nil)
	f.logger.Info("draft discarded at confirmation", "user_id", userID, "session_id", draft.SessionID)
	return nil
}
