package bot

import (
	"strconv"

	"github.com/ad/autoreply-bot/internal/domain"
	"github.com/ad/autoreply-bot/internal/locale"

	"github.com/go-telegram/bot/models"
)

const (
	categoryButtonsPerRow = 3
	numericButtonsPerRow  = 5
	textButtonsPerRow     = 2
)

func button(text string, action Action) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{Text: text, CallbackData: action.String()}
}

func keyboard(rows ...[]models.InlineKeyboardButton) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// chunk lays buttons out in rows of at most n
func chunk(buttons []models.InlineKeyboardButton, n int) [][]models.InlineKeyboardButton {
	var rows [][]models.InlineKeyboardButton
	for start := 0; start < len(buttons); start += n {
		end := start + n
		if end > len(buttons) {
			end = len(buttons)
		}
		rows = append(rows, buttons[start:end])
	}
	return rows
}

func mainMenuKeyboard(l locale.Localizer) *models.InlineKeyboardMarkup {
	return keyboard(
		[]models.InlineKeyboardButton{button(l.MustLocalize(locale.ButtonCategories), NewAction(ActionAdminCategories))},
		[]models.InlineKeyboardButton{button(l.MustLocalize(locale.ButtonAddTrigger), NewAction(ActionAdminAdd))},
		[]models.InlineKeyboardButton{button(l.MustLocalize(locale.ButtonImportExport), NewAction(ActionAdminImportExport))},
	)
}

func backToMenuKeyboard(l locale.Localizer) *models.InlineKeyboardMarkup {
	return keyboard(
		[]models.InlineKeyboardButton{button(l.MustLocalize(locale.ButtonMainMenu), NewAction(ActionAdminMenu))},
	)
}

func cancelKeyboard(l locale.Localizer) *models.InlineKeyboardMarkup {
	return keyboard(
		[]models.InlineKeyboardButton{button(l.MustLocalize(locale.ButtonCancel), NewAction(ActionWizardCancel))},
	)
}

func kindKeyboard(l locale.Localizer) *models.InlineKeyboardMarkup {
	return keyboard(
		[]models.InlineKeyboardButton{
			button(l.MustLocalize(locale.ButtonKindNumeric), NewAction(ActionKind, string(domain.TriggerKindNumeric))),
			button(l.MustLocalize(locale.ButtonKindText), NewAction(ActionKind, string(domain.TriggerKindText))),
		},
		[]models.InlineKeyboardButton{button(l.MustLocalize(locale.ButtonCancel), NewAction(ActionWizardCancel))},
	)
}

func contentTypeKeyboard(l locale.Localizer) *models.InlineKeyboardMarkup {
	buttons := make([]models.InlineKeyboardButton, 0, len(domain.AllContentTypes))
	for _, ct := range domain.AllContentTypes {
		buttons = append(buttons, button(contentTypeLabel(l, ct), NewAction(ActionContent, string(ct))))
	}
	rows := chunk(buttons, 2)
	rows = append(rows, []models.InlineKeyboardButton{button(l.MustLocalize(locale.ButtonCancel), NewAction(ActionWizardCancel))})
	return keyboard(rows...)
}

func confirmKeyboard(l locale.Localizer) *models.InlineKeyboardMarkup {
	return keyboard(
		[]models.InlineKeyboardButton{
			button(l.MustLocalize(locale.ButtonConfirmSave), NewAction(ActionConfirm, ConfirmYes)),
			button(l.MustLocalize(locale.ButtonConfirmDiscard), NewAction(ActionConfirm, ConfirmNo)),
		},
	)
}

func categoriesKeyboard(l locale.Localizer, sections []string) *models.InlineKeyboardMarkup {
	buttons := make([]models.InlineKeyboardButton, 0, len(sections))
	for _, section := range sections {
		text := section
		if section == domain.TextSection {
			text = l.MustLocalize(locale.ButtonTextSection)
		}
		buttons = append(buttons, button(text, NewAction(ActionSelectCategory, section)))
	}
	rows := chunk(buttons, categoryButtonsPerRow)
	rows = append(rows, []models.InlineKeyboardButton{button(l.MustLocalize(locale.ButtonMainMenu), NewAction(ActionAdminMenu))})
	return keyboard(rows...)
}

func pageKeyboard(l locale.Localizer, page *domain.TriggerPage) *models.InlineKeyboardMarkup {
	buttons := make([]models.InlineKeyboardButton, 0, len(page.Triggers))
	for _, t := range page.Triggers {
		buttons = append(buttons, button(t.Key, NewAction(ActionSelectTrigger, t.Key)))
	}
	perRow := numericButtonsPerRow
	if page.Section == domain.TextSection {
		perRow = textButtonsPerRow
	}
	rows := chunk(buttons, perRow)

	var nav []models.InlineKeyboardButton
	if page.HasPrev {
		nav = append(nav, button(l.MustLocalize(locale.ButtonPrevPage), NewAction(ActionPage, page.Section, strconv.Itoa(page.Number-1))))
	}
	if page.HasNext {
		nav = append(nav, button(l.MustLocalize(locale.ButtonNextPage), NewAction(ActionPage, page.Section, strconv.Itoa(page.Number+1))))
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}

	rows = append(rows, []models.InlineKeyboardButton{button(l.MustLocalize(locale.ButtonBackToCategories), NewAction(ActionAdminCategories))})
	return keyboard(rows...)
}

func detailKeyboard(l locale.Localizer, t *domain.Trigger) *models.InlineKeyboardMarkup {
	return keyboard(
		[]models.InlineKeyboardButton{
			button(l.MustLocalize(locale.ButtonEdit), NewAction(ActionEdit, t.Key)),
			button(l.MustLocalize(locale.ButtonDelete), NewAction(ActionDeleteAsk, t.Key)),
		},
		[]models.InlineKeyboardButton{button(l.MustLocalize(locale.ButtonBackToList), NewAction(ActionBackToList, domain.SectionOf(t)))},
	)
}

func deleteConfirmKeyboard(l locale.Localizer, key string) *models.InlineKeyboardMarkup {
	return keyboard(
		[]models.InlineKeyboardButton{
			button(l.MustLocalize(locale.ButtonDeleteYes), NewAction(ActionDeleteConfirm, key)),
			button(l.MustLocalize(locale.ButtonDeleteNo), NewAction(ActionSelectTrigger, key)),
		},
	)
}

// contentTypeLabel returns the localized name of a content type
func contentTypeLabel(l locale.Localizer, ct domain.ContentType) string {
	switch ct {
	case domain.ContentTypeText:
		return l.MustLocalize(locale.ContentTypeText)
	case domain.ContentTypePhoto:
		return l.MustLocalize(locale.ContentTypePhoto)
	case domain.ContentTypeVideo:
		return l.MustLocalize(locale.ContentTypeVideo)
	case domain.ContentTypeAudio:
		return l.MustLocalize(locale.ContentTypeAudio)
	case domain.ContentTypeVoice:
		return l.MustLocalize(locale.ContentTypeVoice)
	case domain.ContentTypeDocument:
		return l.MustLocalize(locale.ContentTypeDocument)
	case domain.ContentTypeSticker:
		return l.MustLocalize(locale.ContentTypeSticker)
	}
	return string(ct)
}

// kindLabel returns the localized name of a trigger kind
func kindLabel(l locale.Localizer, kind domain.TriggerKind) string {
	if kind == domain.TriggerKindNumeric {
		return l.MustLocalize(locale.KindNumeric)
	}
	return l.MustLocalize(locale.KindText)
}
