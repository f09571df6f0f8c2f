// File: page/event.go
package page

// Role is the data-role of the element an event came from.
type Role string

const (
	RoleCard            Role = "card"
	RoleModalClose      Role = "modal-close"
	RoleModalBackdrop   Role = "modal-backdrop"
	RoleTab             Role = "tab"
	RoleAccordionHeader Role = "accordion-header"
	RoleVerify          Role = "verify"
	RoleAnswerInput     Role = "answer-input"
	RoleCounter         Role = "counter"
	RoleSection         Role = "section"
	RoleWindow          Role = "window"
	RoleHamburger       Role = "hamburger"
	RoleNavLink         Role = "nav-link"
	RoleAnchor          Role = "anchor"
)

// Kind is the browser event type.
type Kind string

const (
	KindClick    Kind = "click"
	KindKeypress Kind = "keypress"
	KindVisible  Kind = "visible"
	KindScroll   Kind = "scroll"
)

// Event is one browser event as sent by static/ui.js.
type Event struct {
	Role Role `json:"role"`
	Kind Kind `json:"kind"`
	// Target is the id of the element the listener is attached to.
	Target string `json:"target"`
	// Value is the answer text for verify/keypress events and the scroll offset for scroll.
	Value string `json:"value,omitempty"`
	// Key is the key name for keypress events.
	Key string `json:"key,omitempty"`
}

type eventKey struct {
	role Role
	kind Kind
}

type handlerFunc func(v *View, ev Event)

// dispatch routes (role, kind) pairs to handlers. Pairs not listed are ignored.
var dispatch = map[eventKey]handlerFunc{
	{RoleCard, KindClick}:            (*View).openCollection,
	{RoleModalClose, KindClick}:      (*View).closeModal,
	{RoleModalBackdrop, KindClick}:   (*View).backdropClick,
	{RoleTab, KindClick}:             (*View).selectTab,
	{RoleAccordionHeader, KindClick}: (*View).toggleItem,
	{RoleVerify, KindClick}:          (*View).verifyClick,
	{RoleAnswerInput, KindKeypress}:  (*View).answerKeypress,
	{RoleCounter, KindVisible}:       (*View).counterVisible,
	{RoleSection, KindVisible}:       (*View).sectionVisible,
	{RoleWindow, KindScroll}:         (*View).windowScroll,
	{RoleHamburger, KindClick}:       (*View).toggleMenu,
	{RoleNavLink, KindClick}:         (*View).navLinkClick,
	{RoleAnchor, KindClick}:          (*View).anchorClick,
}

// Handles reports whether the dispatch table has an entry for (role, kind).
func Handles(role Role, kind Kind) bool {
	_, ok := dispatch[eventKey{role, kind}]
	return ok
}
