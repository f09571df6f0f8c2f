// file: views/views_test.go
package views

import (
	"strings"
	"testing"

	"ctf-catalog/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func answer(s string) *string { return &s }

func year(y int) *int { return &y }

func loadSkeleton(t *testing.T) *html.Node {
	t.Helper()
	doc, err := ParseSkeleton("")
	require.NoError(t, err)
	return doc
}

func handleByPos(collectionID int, d models.Difficulty, i int) string {
	return string(d) + "-" + string(rune('0'+i))
}

func TestCatalogCards_EmptyCatalogRendersOnePlaceholder(t *testing.T) {
	doc := loadSkeleton(t)
	grid := FindByID(doc, GridID)
	require.NotNil(t, grid)

	RenderGrid(Direct{}, grid, &models.Catalog{})

	kids := ElementChildren(grid)
	require.Len(t, kids, 1)
	assert.Equal(t, EmptyCatalogMessage, TextContent(kids[0]))
	assert.Empty(t, FindAllByClass(grid, "ctf-card"))
}

func TestCatalogCards_SourceOrderAndIdempotent(t *testing.T) {
	doc := loadSkeleton(t)
	grid := FindByID(doc, GridID)
	cat := &models.Catalog{Collections: []models.Collection{
		{ID: 9, Title: "Nine"}, {ID: 2, Title: "Two"}, {ID: 5, Title: "Five"},
	}}

	RenderGrid(Direct{}, grid, cat)
	RenderGrid(Direct{}, grid, cat)

	cards := FindAllByClass(grid, "ctf-card")
	require.Len(t, cards, 3, "re-rendering rebuilds rather than appends")
	assert.Equal(t, CardID(9), GetAttr(cards[0], "id"))
	assert.Equal(t, CardID(2), GetAttr(cards[1], "id"))
	assert.Equal(t, CardID(5), GetAttr(cards[2], "id"))
}

func TestCatalogCard_Content(t *testing.T) {
	card := CatalogCard(models.Collection{
		ID: 1, Title: "Spring", Description: "desc", Status: models.StatusActive, TotalChallenges: 4,
		Challenges: models.Challenges{
			Easy: []models.Challenge{{Name: "a"}},
			Hard: []models.Challenge{{Name: "b"}, {Name: "c"}},
		},
	})
	text := TextContent(card)
	assert.Contains(t, text, "Spring")
	assert.Contains(t, text, "4 Challenges")
	assert.Contains(t, text, models.DefaultYear)
	assert.Contains(t, text, "1 Easy")
	assert.Contains(t, text, "2 Hard")
	assert.NotContains(t, text, "Medium", "zero counts are suppressed")

	badge := FindFirstByClass(card, "status-badge")
	require.NotNil(t, badge)
	assert.True(t, HasClass(badge, "active"))

	withYear := CatalogCard(models.Collection{ID: 2, Year: year(2019)})
	assert.Contains(t, TextContent(withYear), "2019")
}

func TestCatalogCard_EscapesText(t *testing.T) {
	card := CatalogCard(models.Collection{ID: 1, Title: "<script>x</script>"})
	out := RenderString(card)
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
}

func TestAccordionItems_EmptyBucketIsPlaceholderOnly(t *testing.T) {
	nodes := AccordionItems(1, nil, func(int) string { return "unused" })
	require.Len(t, nodes, 1)
	assert.Equal(t, EmptyBucketMessage, TextContent(nodes[0]))
	assert.False(t, HasClass(nodes[0], "accordion-item"))
}

func TestAccordionItem_Content(t *testing.T) {
	item := AccordionItem(3, models.Challenge{
		Name:           "geo-spy",
		Description:    "find it",
		PasswordFormat: "City_Name",
		ImageURL:       "https://img/x.png",
		Files:          []string{"a.jpg", "b.jpg"},
		LocalFolder:    "challenges/geo",
	}, "h1")

	assert.Equal(t, ItemID("h1"), GetAttr(item, "id"))
	assert.False(t, HasClass(item, ActiveClass), "items start collapsed")

	text := TextContent(item)
	assert.Contains(t, text, "geo-spy")
	assert.Contains(t, text, "a.jpg, b.jpg")
	assert.Contains(t, text, "City_Name")
	assert.Contains(t, text, "Challenge files located in")
	assert.NotContains(t, text, "challenges/geo", "the folder path is a label only")

	img := FindFirstByClass(item, "challenge-image")
	require.NotNil(t, img)
	out := RenderString(img)
	assert.Contains(t, out, `loading="lazy"`)
	assert.Contains(t, out, `href="https://img/x.png"`)

	input := FindByID(item, InputID("h1"))
	require.NotNil(t, input)
	assert.Equal(t, "3-geo-spy", GetAttr(input, "data-challenge"))
	assert.NotNil(t, FindByID(item, ButtonID("h1")))
	assert.NotNil(t, FindByID(item, FeedbackID("h1")))
}

func TestAccordionItem_OptionalPartsOmitted(t *testing.T) {
	item := AccordionItem(1, models.Challenge{Name: "plain"}, "h2")
	assert.Nil(t, FindFirstByClass(item, "challenge-image"))
	assert.Nil(t, FindFirstByClass(item, "challenge-files"))
	assert.Nil(t, FindFirstByClass(item, "challenge-github-link"))
	assert.NotNil(t, FindFirstByClass(item, "challenge-password"))
}

func TestToggleItem_Independent(t *testing.T) {
	a := AccordionItem(1, models.Challenge{Name: "a"}, "a")
	b := AccordionItem(1, models.Challenge{Name: "b"}, "b")

	assert.True(t, ToggleItem(Direct{}, a))
	assert.True(t, ToggleItem(Direct{}, b))
	assert.True(t, HasClass(a, ActiveClass), "expanding b leaves a expanded")
	assert.False(t, ToggleItem(Direct{}, a))
	assert.True(t, HasClass(b, ActiveClass))
}

func TestPopulateModal(t *testing.T) {
	doc := loadSkeleton(t)
	col := models.Collection{
		ID: 7, Title: "Autumn", Description: "leaves", Status: models.StatusCompleted,
		GithubURL: "https://github.com/x", AnswersURL: "https://github.com/x/answers",
		Challenges: models.Challenges{
			Easy: []models.Challenge{{Name: "e1", Answer: answer("x")}},
			Hard: []models.Challenge{{Name: "h1"}, {Name: "h2"}},
		},
	}

	SelectTab(Direct{}, doc, models.DifficultyHard)
	PopulateModal(Direct{}, doc, col, handleByPos)

	assert.True(t, ModalVisible(doc))
	assert.Equal(t, models.DifficultyEasy, ActiveTab(doc))
	assert.True(t, HasClass(FindByID(doc, PaneID(models.DifficultyEasy)), ActiveClass))
	assert.False(t, HasClass(FindByID(doc, PaneID(models.DifficultyHard)), ActiveClass))

	assert.Equal(t, "Autumn", TextContent(FindByID(doc, ModalTitleID)))
	assert.True(t, HasClass(FindByID(doc, ModalStatusID), "completed"))
	assert.Equal(t, "https://github.com/x", GetAttr(FindByID(doc, GithubLinkID), "href"))
	assert.Equal(t, "https://github.com/x/answers", GetAttr(FindByID(doc, AnswersLinkID), "href"))
	assert.Equal(t, "1", TextContent(FindByID(doc, CountID(models.DifficultyEasy))))
	assert.Equal(t, "0", TextContent(FindByID(doc, CountID(models.DifficultyMedium))))
	assert.Equal(t, "2", TextContent(FindByID(doc, CountID(models.DifficultyHard))))

	medium := FindByID(doc, ContainerID(models.DifficultyMedium))
	assert.Empty(t, FindAllByClass(medium, "accordion-item"))
	assert.Equal(t, EmptyBucketMessage, strings.TrimSpace(TextContent(medium)))

	hard := FindAllByClass(FindByID(doc, ContainerID(models.DifficultyHard)), "accordion-item")
	require.Len(t, hard, 2)
	assert.Equal(t, ItemID("hard-1"), GetAttr(hard[1], "id"))

	HideModal(Direct{}, doc)
	assert.False(t, ModalVisible(doc))
	assert.Len(t, FindAllByClass(doc, "accordion-item"), 3, "hiding keeps content")
}

func TestPopulateModal_ToleratesMissingElements(t *testing.T) {
	doc := El("div", nil)
	assert.NotPanics(t, func() {
		PopulateModal(Direct{}, doc, models.Collection{ID: 1}, handleByPos)
		HideModal(Direct{}, doc)
		ShowFeedback(Direct{}, doc, "x", Feedback{Message: "m", Shown: true})
		SetChecking(Direct{}, doc, "x", true)
		MarkInput(Direct{}, doc, "x", CorrectClass)
		ApplyHeroStats(Direct{}, doc, 1, 1)
	})
}

func TestAnswerStateHelpers(t *testing.T) {
	doc := El("div", nil, AccordionItem(1, models.Challenge{Name: "w"}, "h"))

	SetChecking(Direct{}, doc, "h", true)
	btn := FindByID(doc, ButtonID("h"))
	assert.Equal(t, CheckingLabel, TextContent(btn))
	_, disabled := attrIndex(btn, "disabled")
	assert.True(t, disabled)

	SetChecking(Direct{}, doc, "h", false)
	assert.Equal(t, VerifyLabel, TextContent(btn))
	_, disabled = attrIndex(btn, "disabled")
	assert.False(t, disabled)

	MarkInput(Direct{}, doc, "h", IncorrectClass)
	MarkInput(Direct{}, doc, "h", CorrectClass)
	input := FindByID(doc, InputID("h"))
	assert.True(t, HasClass(input, CorrectClass))
	assert.False(t, HasClass(input, IncorrectClass))

	ShowFeedback(Direct{}, doc, "h", Feedback{Message: MsgIncorrect, Kind: FeedbackError, Shown: true})
	slot := FindByID(doc, FeedbackID("h"))
	assert.Equal(t, "answer-feedback show error", GetAttr(slot, "class"))
	HideFeedback(Direct{}, doc, "h")
	assert.Equal(t, "answer-feedback error", GetAttr(slot, "class"))
	assert.Equal(t, MsgIncorrect, TextContent(slot))
}

func TestApplyHeroStats(t *testing.T) {
	doc := loadSkeleton(t)
	ApplyHeroStats(Direct{}, doc, 42, 3)
	counters := FindAllByClass(doc, StatNumberClass)
	require.Len(t, counters, 3)
	assert.Equal(t, 42, CounterTarget(counters[0]))
	assert.Equal(t, 3, CounterTarget(counters[1]), "middle counter is left alone")
	assert.Equal(t, 3, CounterTarget(counters[2]))
}

func TestCounterFrames(t *testing.T) {
	frames := CounterFrames(100)
	assert.Equal(t, 100, frames[len(frames)-1])
	assert.Equal(t, 2, frames[0])
	assert.GreaterOrEqual(t, len(frames), CounterSteps)
	assert.LessOrEqual(t, len(frames), CounterSteps+1)
	for i := 1; i < len(frames); i++ {
		assert.GreaterOrEqual(t, frames[i], frames[i-1])
	}
	assert.Equal(t, []int{0}, CounterFrames(0))
}

func TestParallaxStyle(t *testing.T) {
	assert.Equal(t, "transform: translateY(0px); opacity: 1", ParallaxStyle(0))
	assert.Equal(t, "transform: translateY(175px); opacity: 0.5", ParallaxStyle(350))
}

func TestRevealSectionsAndOnce(t *testing.T) {
	doc := loadSkeleton(t)
	assert.Len(t, RevealSections(doc), 3)

	once := Once{}
	assert.True(t, once.First("a"))
	assert.False(t, once.First("a"))
	assert.True(t, once.First("b"))
}

func TestCloneTreeIsDeep(t *testing.T) {
	doc := loadSkeleton(t)
	clone := CloneTree(doc)
	SetText(FindByID(clone, ModalTitleID), "changed")
	assert.Equal(t, "", TextContent(FindByID(doc, ModalTitleID)))
}
