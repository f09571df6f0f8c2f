// File: views/detail_view.go
package views

import (
	"strconv"

	"ctf-catalog/models"
	"golang.org/x/net/html"
)

// Modal element ids.
const (
	ModalID            = "ctfModal"
	ModalTitleID       = "modal-title"
	ModalStatusID      = "modal-status"
	ModalDescriptionID = "modal-description"
	GithubLinkID       = "github-link"
	AnswersLinkID      = "answers-link"
	TabButtonClass     = "tab-btn"
	TabPaneClass       = "tab-pane"
)

func CountID(d models.Difficulty) string     { return string(d) + "-count" }
func ContainerID(d models.Difficulty) string { return string(d) + "-challenges" }
func PaneID(d models.Difficulty) string      { return string(d) + "-pane" }

// ItemHandles resolves the handle of item i in a collection's bucket.
type ItemHandles func(collectionID int, d models.Difficulty, i int) string

// PopulateModal fills the detail overlay for one collection, resets the tab selection to
// easy and shows the overlay. Missing elements are skipped.
func PopulateModal(m Mutator, doc *html.Node, c models.Collection, handles ItemHandles) {
	if n := FindByID(doc, ModalTitleID); n != nil {
		m.SetText(n, c.Title)
	}
	if n := FindByID(doc, ModalStatusID); n != nil {
		m.SetText(n, string(c.Status))
		m.SetAttr(n, "class", "status-badge "+string(c.Status))
	}
	if n := FindByID(doc, ModalDescriptionID); n != nil {
		m.SetText(n, c.Description)
	}
	if n := FindByID(doc, GithubLinkID); n != nil {
		m.SetAttr(n, "href", c.GithubURL)
	}
	if n := FindByID(doc, AnswersLinkID); n != nil {
		m.SetAttr(n, "href", c.AnswersURL)
	}

	for _, d := range models.Difficulties {
		bucket := c.Challenges.Bucket(d)
		if n := FindByID(doc, CountID(d)); n != nil {
			m.SetText(n, strconv.Itoa(len(bucket)))
		}
		if n := FindByID(doc, ContainerID(d)); n != nil {
			diff := d
			m.SetChildren(n, AccordionItems(c.ID, bucket, func(i int) string {
				return handles(c.ID, diff, i)
			})...)
		}
	}

	SelectTab(m, doc, models.DifficultyEasy)
	ShowModal(m, doc)
}

// SelectTab marks the tab button and pane for d active and every other one inactive.
func SelectTab(m Mutator, doc *html.Node, d models.Difficulty) {
	for _, btn := range FindAllByClass(doc, TabButtonClass) {
		if GetAttr(btn, "data-difficulty") == string(d) {
			m.AddClass(btn, ActiveClass)
		} else {
			m.RemoveClass(btn, ActiveClass)
		}
	}
	for _, pane := range FindAllByClass(doc, TabPaneClass) {
		if GetAttr(pane, "id") == PaneID(d) {
			m.AddClass(pane, ActiveClass)
		} else {
			m.RemoveClass(pane, ActiveClass)
		}
	}
}

// ActiveTab reports which difficulty's button is active, or "" if none.
func ActiveTab(doc *html.Node) models.Difficulty {
	for _, btn := range FindAllByClass(doc, TabButtonClass) {
		if HasClass(btn, ActiveClass) {
			return models.Difficulty(GetAttr(btn, "data-difficulty"))
		}
	}
	return ""
}

// ShowModal makes the overlay visible.
func ShowModal(m Mutator, doc *html.Node) {
	if n := FindByID(doc, ModalID); n != nil {
		m.SetAttr(n, "style", "display: block")
	}
}

// HideModal hides the overlay without tearing down its content.
func HideModal(m Mutator, doc *html.Node) {
	if n := FindByID(doc, ModalID); n != nil {
		m.SetAttr(n, "style", "display: none")
	}
}

// ModalVisible reports whether the overlay is shown.
func ModalVisible(doc *html.Node) bool {
	n := FindByID(doc, ModalID)
	return n != nil && GetAttr(n, "style") == "display: block"
}
