package bot

import (
	"strconv"
	"strings"

	"github.com/ad/autoreply-bot/internal/domain"
)

// MaxCallbackDataLen is the Telegram limit for inline button payloads, in bytes
const MaxCallbackDataLen = 64

// Callback payload prefixes
const (
	ActionSelectCategory = "select-category"
	ActionPage           = "page"
	ActionSelectTrigger  = "select-trigger"
	ActionDeleteAsk      = "delete-ask"
	ActionDeleteConfirm  = "delete-confirm"
	ActionBackToList     = "back-to-list"
	ActionEdit           = "edit"

	ActionKind         = "kind"
	ActionContent      = "content"
	ActionConfirm      = "confirm"
	ActionWizardCancel = "wizard:cancel"

	ActionAdminMenu         = "admin:menu"
	ActionAdminCategories   = "admin:categories"
	ActionAdminAdd          = "admin:add"
	ActionAdminImportExport = "admin:transfer"
)

const (
	ConfirmYes = "yes"
	ConfirmNo  = "no"
)

// actionArity is the number of arguments each prefix takes
var actionArity = map[string]int{
	ActionSelectCategory: 1,
	ActionPage:           2,
	ActionSelectTrigger:  1,
	ActionDeleteAsk:      1,
	ActionDeleteConfirm:  1,
	ActionBackToList:     1,
	ActionEdit:           1,

	ActionKind:         1,
	ActionContent:      1,
	ActionConfirm:      1,
	ActionWizardCancel: 0,

	ActionAdminMenu:         0,
	ActionAdminCategories:   0,
	ActionAdminAdd:          0,
	ActionAdminImportExport: 0,
}

// Action is a decoded callback payload of the form prefix[:arg]*
type Action struct {
	Prefix string
	Args   []string
}

// NewAction builds an action from a prefix and its arguments
func NewAction(prefix string, args ...string) Action {
	return Action{Prefix: prefix, Args: args}
}

// String encodes the action as callback data
func (a Action) String() string {
	if len(a.Args) == 0 {
		return a.Prefix
	}
	return a.Prefix + ":" + strings.Join(a.Args, ":")
}

// Arg returns the i-th argument or ""
func (a Action) Arg(i int) string {
	if i < 0 || i >= len(a.Args) {
		return ""
	}
	return a.Args[i]
}

// Page returns the page number of a page action
func (a Action) Page() int {
	n, _ := strconv.Atoi(a.Arg(1))
	return n
}

// IsWizard reports whether the action belongs to the authoring wizard
func (a Action) IsWizard() bool {
	switch a.Prefix {
	case ActionKind, ActionContent, ActionConfirm, ActionWizardCancel:
		return true
	}
	return false
}

// ParseAction decodes callback data. The last argument keeps any ':' it
// contains. Unknown prefixes, wrong argument counts and invalid values are
// rejected with ok=false.
func ParseAction(data string) (Action, bool) {
	if arity, known := actionArity[data]; known && arity == 0 {
		return Action{Prefix: data}, true
	}

	prefix, rest, found := strings.Cut(data, ":")
	if !found {
		return Action{}, false
	}
	arity, known := actionArity[prefix]
	if !known || arity == 0 {
		return Action{}, false
	}

	args := strings.SplitN(rest, ":", arity)
	if len(args) != arity {
		return Action{}, false
	}
	for _, arg := range args {
		if arg == "" {
			return Action{}, false
		}
	}

	a := Action{Prefix: prefix, Args: args}
	if !a.valid() {
		return Action{}, false
	}
	return a, true
}

func (a Action) valid() bool {
	switch a.Prefix {
	case ActionPage:
		n, err := strconv.Atoi(a.Args[1])
		return err == nil && n >= 0
	case ActionKind:
		return domain.TriggerKind(a.Args[0]).Valid()
	case ActionContent:
		return domain.ContentType(a.Args[0]).Valid()
	case ActionConfirm:
		return a.Args[0] == ConfirmYes || a.Args[0] == ConfirmNo
	}
	return true
}

// FitsCallbackData reports whether prefix:arg fits in one button payload
func FitsCallbackData(prefix, arg string) bool {
	return len(prefix)+1+len(arg) <= MaxCallbackDataLen
}
