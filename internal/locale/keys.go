package locale

// Message key constants for localization.
// Every user-facing string goes through one of these.

const (
	// ============================================================================
	// START AND MAIN MENU
	// ============================================================================

	UserWelcome            = "UserWelcome"
	AdminMenuTitle         = "AdminMenuTitle"
	AdminOnly              = "AdminOnly"
	ButtonCategories       = "ButtonCategories"
	ButtonAddTrigger       = "ButtonAddTrigger"
	ButtonImportExport     = "ButtonImportExport"
	ButtonMainMenu         = "ButtonMainMenu"
	ImportExportHelp       = "ImportExportHelp"
	ErrorGeneric           = "ErrorGeneric"
	ErrorUnknownAction     = "ErrorUnknownAction"
	ErrorSessionExpired    = "ErrorSessionExpired"
	ErrorMessageOutdated   = "ErrorMessageOutdated"
	ButtonBackToCategories = "ButtonBackToCategories"

	// ============================================================================
	// TRIGGER WIZARD
	// ============================================================================

	WizardChooseKind        = "WizardChooseKind"
	ButtonKindNumeric       = "ButtonKindNumeric"
	ButtonKindText          = "ButtonKindText"
	ButtonCancel            = "ButtonCancel"
	WizardEnterNumericValue = "WizardEnterNumericValue"
	WizardEnterTextValue    = "WizardEnterTextValue"
	WizardChooseContentType = "WizardChooseContentType"
	WizardSendContent       = "WizardSendContent"
	WizardSummary           = "WizardSummary"
	WizardSummaryMedia      = "WizardSummaryMedia"
	WizardNoCategory        = "WizardNoCategory"
	ButtonConfirmSave       = "ButtonConfirmSave"
	ButtonConfirmDiscard    = "ButtonConfirmDiscard"
	WizardSaved             = "WizardSaved"
	WizardSaveConflict      = "WizardSaveConflict"
	WizardSaveFailed        = "WizardSaveFailed"
	WizardCancelled         = "WizardCancelled"

	// Value validation
	ErrorValueEmpty      = "ErrorValueEmpty"
	ErrorValueNotNumeric = "ErrorValueNotNumeric"
	ErrorValueOutOfRange = "ErrorValueOutOfRange"
	ErrorValueTooLong    = "ErrorValueTooLong"
	ErrorValueExists     = "ErrorValueExists"
	ErrorContentMismatch = "ErrorContentMismatch"
	ErrorUseButtonsAbove = "ErrorUseButtonsAbove"

	// Kind and content type names
	KindNumeric         = "KindNumeric"
	KindText            = "KindText"
	ContentTypeText     = "ContentTypeText"
	ContentTypePhoto    = "ContentTypePhoto"
	ContentTypeVideo    = "ContentTypeVideo"
	ContentTypeAudio    = "ContentTypeAudio"
	ContentTypeVoice    = "ContentTypeVoice"
	ContentTypeDocument = "ContentTypeDocument"
	ContentTypeSticker  = "ContentTypeSticker"

	// ============================================================================
	// BROWSING AND DELETION
	// ============================================================================

	BrowseChooseCategory  = "BrowseChooseCategory"
	ButtonTextSection     = "ButtonTextSection"
	BrowseCategoryTitle   = "BrowseCategoryTitle"
	BrowseTextTitle       = "BrowseTextTitle"
	BrowseEmpty           = "BrowseEmpty"
	ButtonPrevPage        = "ButtonPrevPage"
	ButtonNextPage        = "ButtonNextPage"
	TriggerDetail         = "TriggerDetail"
	ButtonEdit            = "ButtonEdit"
	ButtonDelete          = "ButtonDelete"
	ButtonBackToList      = "ButtonBackToList"
	DeleteConfirmPrompt   = "DeleteConfirmPrompt"
	ButtonDeleteYes       = "ButtonDeleteYes"
	ButtonDeleteNo        = "ButtonDeleteNo"
	TriggerDeleted        = "TriggerDeleted"
	TriggerAlreadyDeleted = "TriggerAlreadyDeleted"
	TriggerNotFoundAlert  = "TriggerNotFoundAlert"
	EditNotSupported      = "EditNotSupported"

	// ============================================================================
	// REPLIES TO USERS
	// ============================================================================

	ReplyNotFound    = "ReplyNotFound"
	ReplyUnsupported = "ReplyUnsupported"
)
