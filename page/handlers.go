// File: page/handlers.go
package page

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"ctf-catalog/logger"
	"ctf-catalog/models"
	"ctf-catalog/services"
	"ctf-catalog/views"
	"golang.org/x/net/html"
)

// target resolves the event's element, or nil.
func (v *View) target(ev Event) *html.Node {
	if ev.Target == "" {
		return nil
	}
	return views.FindByID(v.doc.Root(), ev.Target)
}

// ------------------- catalog & modal -------------------

func (v *View) openCollection(ev Event) {
	card := v.target(ev)
	if card == nil {
		return
	}
	id, err := strconv.Atoi(views.GetAttr(card, "data-ctf-id"))
	if err != nil {
		logger.Warn.Printf("[View.openCollection] page %s: card %s has no collection id", v.ID, ev.Target)
		return
	}
	col, ok := v.snap.Catalog.FindCollection(id)
	if !ok {
		return
	}
	logger.Debug.Printf("[View.openCollection] page %s: opening collection %d", v.ID, id)
	views.PopulateModal(v.doc, v.doc.Root(), *col, v.itemHandle)
}

func (v *View) itemHandle(collectionID int, d models.Difficulty, i int) string {
	h, _ := v.snap.Index.Handle(collectionID, d, i)
	return h
}

func (v *View) closeModal(Event) {
	views.HideModal(v.doc, v.doc.Root())
}

// backdropClick only closes when the overlay itself, not its content, was clicked.
func (v *View) backdropClick(ev Event) {
	if ev.Target != views.ModalID {
		return
	}
	views.HideModal(v.doc, v.doc.Root())
}

func (v *View) selectTab(ev Event) {
	btn := v.target(ev)
	if btn == nil {
		return
	}
	d := models.Difficulty(views.GetAttr(btn, "data-difficulty"))
	if !d.Valid() {
		return
	}
	views.SelectTab(v.doc, v.doc.Root(), d)
}

func (v *View) toggleItem(ev Event) {
	header := v.target(ev)
	if header == nil {
		return
	}
	item := views.FindByID(v.doc.Root(), views.ItemID(views.GetAttr(header, "data-handle")))
	if item == nil {
		return
	}
	views.ToggleItem(v.doc, item)
}

// ------------------- verification -------------------

func (v *View) verifyClick(ev Event) {
	btn := v.target(ev)
	if btn == nil {
		return
	}
	v.startVerify(views.GetAttr(btn, "data-handle"), ev.Value)
}

func (v *View) answerKeypress(ev Event) {
	if ev.Key != "Enter" {
		return
	}
	input := v.target(ev)
	if input == nil {
		return
	}
	v.startVerify(views.GetAttr(input, "data-handle"), ev.Value)
}

func (v *View) startVerify(handle, input string) {
	if handle == "" || views.FindByID(v.doc.Root(), views.InputID(handle)) == nil {
		return
	}
	var taskID int
	task, err := v.verifier.Start(context.Background(), v.owner, handle, input, func(res services.Result) {
		_ = v.enqueue(func() {
			delete(v.tasks, taskID)
			v.finishVerify(res)
		})
	})
	if errors.Is(err, services.ErrEmptyInput) {
		v.showFeedback(handle, views.MsgEmptyInput, views.FeedbackError)
		return
	}
	if err != nil {
		logger.Error.Printf("[View.startVerify] page %s: %v", v.ID, err)
		return
	}
	taskID = v.track(task)
	views.SetChecking(v.doc, v.doc.Root(), handle, true)
}

func (v *View) finishVerify(res services.Result) {
	root := v.doc.Root()
	switch res.Outcome {
	case services.OutcomeCorrect:
		views.MarkInput(v.doc, root, res.Handle, views.CorrectClass)
		v.showFeedback(res.Handle, views.MsgCorrect, views.FeedbackSuccess)
	case services.OutcomeIncorrect:
		views.MarkInput(v.doc, root, res.Handle, views.IncorrectClass)
		v.showFeedback(res.Handle, views.MsgIncorrect, views.FeedbackError)
	default:
		v.showFeedback(res.Handle, views.MsgUnavailable, views.FeedbackError)
	}
	views.SetChecking(v.doc, root, res.Handle, false)
}

// showFeedback displays a message. Error feedback hides itself after the feedback timeout
// unless newer feedback replaced it in the meantime.
func (v *View) showFeedback(handle, msg string, kind views.FeedbackKind) {
	v.feedbackGen[handle]++
	gen := v.feedbackGen[handle]
	views.ShowFeedback(v.doc, v.doc.Root(), handle, views.Feedback{Message: msg, Kind: kind, Shown: true})
	if kind != views.FeedbackError {
		return
	}
	v.after(v.feedbackTimeout, func() {
		if v.feedbackGen[handle] != gen {
			return
		}
		views.HideFeedback(v.doc, v.doc.Root(), handle)
	})
}

// ------------------- effects -------------------

func (v *View) counterVisible(ev Event) {
	counter := v.target(ev)
	if counter == nil || !v.counted.First(ev.Target) {
		return
	}
	v.animateCounter(counter, views.CounterFrames(views.CounterTarget(counter)))
}

func (v *View) animateCounter(counter *html.Node, frames []int) {
	if len(frames) == 0 {
		return
	}
	v.after(views.CounterInterval, func() {
		v.doc.SetText(counter, strconv.Itoa(frames[0]))
		v.animateCounter(counter, frames[1:])
	})
}

func (v *View) sectionVisible(ev Event) {
	section := v.target(ev)
	if section == nil || !v.revealed.First(ev.Target) {
		return
	}
	v.doc.SetAttr(section, "style", views.SectionRevealedStyle)
}

func (v *View) windowScroll(ev Event) {
	y, err := strconv.ParseFloat(strings.TrimSpace(ev.Value), 64)
	if err != nil {
		return
	}
	hero := views.FindFirstByClass(v.doc.Root(), views.HeroContentClass)
	if hero == nil {
		return
	}
	v.doc.SetAttr(hero, "style", views.ParallaxStyle(y))
}

// ------------------- navigation -------------------

const navMenuClass = "nav-menu"

func (v *View) toggleMenu(Event) {
	if menu := views.FindFirstByClass(v.doc.Root(), navMenuClass); menu != nil {
		v.doc.ToggleClass(menu, views.ActiveClass)
	}
}

// navLinkClick closes the mobile menu; in-page links also scroll.
func (v *View) navLinkClick(ev Event) {
	if menu := views.FindFirstByClass(v.doc.Root(), navMenuClass); menu != nil {
		v.doc.RemoveClass(menu, views.ActiveClass)
	}
	v.anchorClick(ev)
}

func (v *View) anchorClick(ev Event) {
	link := v.target(ev)
	if link == nil {
		return
	}
	href := views.GetAttr(link, "href")
	if !strings.HasPrefix(href, "#") || len(href) == 1 {
		return
	}
	id := href[1:]
	if views.FindByID(v.doc.Root(), id) == nil {
		return
	}
	v.doc.Scroll(id)
}
