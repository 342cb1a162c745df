package hook

// Action identifies what a matched input should do.
type Action string

const (
	ActionTogglePanel       Action = "toggle-visibility"
	ActionShowPreview       Action = "show-preview"
	ActionPastePreview      Action = "paste-current-preview"
	ActionPasteIndex        Action = "paste-history-at-index"
	ActionCancelTranslation Action = "cancel-translation"
	ActionNavigate          Action = "navigation"
	ActionHidePanel         Action = "hide-panel"
	ActionWheel             Action = "preview-wheel"
)

// Nav names a panel navigation move carried by ActionNavigate.
type Nav string

const (
	NavUp          Nav = "up"
	NavDown        Nav = "down"
	NavTabLeft     Nav = "tab-left"
	NavTabRight    Nav = "tab-right"
	NavConfirm     Nav = "confirm"
	NavClose       Nav = "close"
	NavGroupPrev   Nav = "group-prev"
	NavGroupNext   Nav = "group-next"
	NavTogglePin   Nav = "toggle-pin"
	NavFocusSearch Nav = "focus-search"
)

// Event is one decided action, posted from the hook thread to the worker.
type Event struct {
	Action Action
	Index  int // history index for ActionPasteIndex
	Nav    Nav // move for ActionNavigate
	Delta  int // wheel delta for ActionWheel
}
