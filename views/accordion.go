// File: views/accordion.go
package views

import (
	"strconv"
	"strings"

	"ctf-catalog/models"
	"golang.org/x/net/html"
)

// EmptyBucketMessage replaces an accordion with no challenges.
const EmptyBucketMessage = "No challenges available"

// Accordion state classes.
const (
	ActiveClass    = "active"
	CorrectClass   = "correct"
	IncorrectClass = "incorrect"
)

// Per-item element ids, derived from the item handle.
func ItemID(handle string) string     { return "item-" + handle }
func InputID(handle string) string    { return "answer-" + handle }
func ButtonID(handle string) string   { return "verify-" + handle }
func FeedbackID(handle string) string { return "feedback-" + handle }

// HandleFunc returns the item handle for position i of the list being built.
type HandleFunc func(i int) string

// AccordionItems builds the accordion contents for one difficulty bucket:
// exactly one placeholder when empty, otherwise one collapsed item per challenge.
func AccordionItems(collectionID int, challenges []models.Challenge, handle HandleFunc) []*html.Node {
	if len(challenges) == 0 {
		return []*html.Node{
			El("p", []Attr{A("class", "accordion-placeholder")}, EmptyBucketMessage),
		}
	}
	items := make([]*html.Node, 0, len(challenges))
	for i, ch := range challenges {
		items = append(items, AccordionItem(collectionID, ch, handle(i)))
	}
	return items
}

// AccordionItem builds one collapsed challenge item.
func AccordionItem(collectionID int, ch models.Challenge, handle string) *html.Node {
	key := string(models.NewChallengeKey(collectionID, ch.Name))

	body := El("div", []Attr{A("class", "accordion-body")},
		El("p", []Attr{A("class", "challenge-description")}, ch.Description),
	)
	if ch.ImageURL != "" {
		body.AppendChild(El("div", []Attr{A("class", "challenge-image")},
			El("a", []Attr{A("href", ch.ImageURL), A("target", "_blank")},
				El("img", []Attr{A("src", ch.ImageURL), A("alt", ch.Name), A("loading", "lazy")}),
			),
		))
	}
	if len(ch.Files) > 0 {
		body.AppendChild(El("div", []Attr{A("class", "challenge-files")},
			El("strong", nil, "📁 Files:"),
			" "+strings.Join(ch.Files, ", "),
		))
	}
	body.AppendChild(El("div", []Attr{A("class", "challenge-password")},
		El("strong", nil, "🔐 Password Format:"),
		" ",
		El("code", nil, ch.PasswordFormat),
	))
	body.AppendChild(AnswerSection(handle, key))
	if ch.LocalFolder != "" {
		// label only; the folder path is not shown
		body.AppendChild(El("div", []Attr{A("class", "challenge-github-link")},
			El("p", []Attr{A("class", "local-folder")},
				"📂 Challenge files located in: ",
				El("code", nil),
			),
		))
	}

	return El("div", []Attr{
		A("class", "accordion-item"),
		A("id", ItemID(handle)),
		A("data-challenge-name", ch.Name),
		A("data-ctf-id", strconv.Itoa(collectionID)),
	},
		El("div", []Attr{A("class", "accordion-header"), A("data-role", "accordion-header"), A("data-handle", handle)},
			El("h4", nil, "🔍 "+ch.Name),
			El("span", []Attr{A("class", "accordion-icon")}, "▼"),
		),
		El("div", []Attr{A("class", "accordion-content")}, body),
	)
}

// AnswerSection holds the input, Verify button and feedback slot of one item.
func AnswerSection(handle, key string) *html.Node {
	return El("div", []Attr{A("class", "answer-section")},
		El("h5", nil, "🔑 Verify Your Answer"),
		El("div", []Attr{A("class", "answer-input-group")},
			AnswerInput(handle, key, ""),
			VerifyButton(handle, key, false),
		),
		FeedbackNode(handle, Feedback{}),
		El("p", []Attr{A("class", "answer-hint")}, "💡 Hint: Make sure to follow the exact password format shown above"),
	)
}

// AnswerInput renders the answer field; state is "", CorrectClass or IncorrectClass.
func AnswerInput(handle, key, state string) *html.Node {
	class := "answer-input"
	if state != "" {
		class += " " + state
	}
	return El("input", []Attr{
		A("type", "text"),
		A("class", class),
		A("id", InputID(handle)),
		A("placeholder", "Enter your answer here..."),
		A("data-role", "answer-input"),
		A("data-handle", handle),
		A("data-challenge", key),
	})
}

// Verify button labels.
const (
	VerifyLabel   = "Verify"
	CheckingLabel = "Checking..."
)

// VerifyButton renders the trigger; a checking button is disabled.
func VerifyButton(handle, key string, checking bool) *html.Node {
	attrs := []Attr{
		A("class", "btn-verify"),
		A("id", ButtonID(handle)),
		A("data-role", "verify"),
		A("data-handle", handle),
		A("data-input", InputID(handle)),
		A("data-challenge", key),
	}
	label := VerifyLabel
	if checking {
		attrs = append(attrs, A("disabled", ""))
		label = CheckingLabel
	}
	return El("button", attrs, label)
}

// FeedbackKind selects the feedback styling.
type FeedbackKind string

const (
	FeedbackSuccess FeedbackKind = "success"
	FeedbackError   FeedbackKind = "error"
)

// Feedback messages.
const (
	MsgEmptyInput  = "Please enter an answer"
	MsgCorrect     = "🎉 Correct! Well done! You can now use this password to extract the flag from Flag.rar"
	MsgIncorrect   = "❌ Incorrect answer. Please try again!"
	MsgUnavailable = "ℹ️ Answer verification not available. Check the Answers folder locally."
)

// Feedback is the state of one item's feedback slot.
type Feedback struct {
	Message string
	Kind    FeedbackKind
	Shown   bool
}

// FeedbackNode renders the feedback slot.
func FeedbackNode(handle string, f Feedback) *html.Node {
	class := "answer-feedback"
	if f.Shown {
		class += " show"
	}
	if f.Kind != "" {
		class += " " + string(f.Kind)
	}
	return El("div", []Attr{A("class", class), A("id", FeedbackID(handle))}, f.Message)
}

// ToggleItem flips an item's expanded state independently of its siblings.
func ToggleItem(m Mutator, item *html.Node) bool {
	return m.ToggleClass(item, ActiveClass)
}

// ShowFeedback updates the feedback slot of an item in place. Missing slots are ignored.
func ShowFeedback(m Mutator, doc *html.Node, handle string, f Feedback) {
	slot := FindByID(doc, FeedbackID(handle))
	if slot == nil {
		return
	}
	m.SetText(slot, f.Message)
	class := "answer-feedback"
	if f.Shown {
		class += " show"
	}
	if f.Kind != "" {
		class += " " + string(f.Kind)
	}
	m.SetAttr(slot, "class", class)
}

// HideFeedback removes the "show" class, leaving message and kind in place.
func HideFeedback(m Mutator, doc *html.Node, handle string) {
	if slot := FindByID(doc, FeedbackID(handle)); slot != nil {
		m.RemoveClass(slot, "show")
	}
}

// SetChecking disables the Verify button and shows the checking label, or restores it.
func SetChecking(m Mutator, doc *html.Node, handle string, checking bool) {
	btn := FindByID(doc, ButtonID(handle))
	if btn == nil {
		return
	}
	if checking {
		m.SetAttr(btn, "disabled", "")
		m.SetText(btn, CheckingLabel)
		return
	}
	m.RemoveAttr(btn, "disabled")
	m.SetText(btn, VerifyLabel)
}

// MarkInput sets the input to CorrectClass or IncorrectClass, clearing the other.
func MarkInput(m Mutator, doc *html.Node, handle, state string) {
	input := FindByID(doc, InputID(handle))
	if input == nil {
		return
	}
	switch state {
	case CorrectClass:
		m.RemoveClass(input, IncorrectClass)
		m.AddClass(input, CorrectClass)
	case IncorrectClass:
		m.RemoveClass(input, CorrectClass)
		m.AddClass(input, IncorrectClass)
	}
}
