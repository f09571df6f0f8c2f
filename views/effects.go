// File: views/effects.go
package views

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"golang.org/x/net/html"
)

// Counter animation: CounterSteps increments, one every CounterInterval.
const (
	CounterSteps    = 50
	CounterInterval = 30 * time.Millisecond
)

// CounterFrames lists the values a counter shows while animating from 0 to target.
// The last frame is always target.
func CounterFrames(target int) []int {
	if target <= 0 {
		return []int{target}
	}
	increment := float64(target) / CounterSteps
	frames := make([]int, 0, CounterSteps)
	current := 0.0
	for {
		current += increment
		if current >= float64(target) {
			frames = append(frames, target)
			return frames
		}
		frames = append(frames, int(math.Floor(current)))
	}
}

// CounterTarget reads a counter's data-count; malformed values count as 0.
func CounterTarget(n *html.Node) int {
	v, err := strconv.Atoi(GetAttr(n, "data-count"))
	if err != nil {
		return 0
	}
	return v
}

// Parallax settings for the hero block.
const (
	ParallaxFactor   = 0.5
	ParallaxFadeSpan = 700.0
	HeroContentClass = "hero-content"
)

// ParallaxStyle is the hero style for a vertical scroll offset in pixels.
func ParallaxStyle(scrollY float64) string {
	offset := scrollY * ParallaxFactor
	opacity := 1 - scrollY/ParallaxFadeSpan
	return fmt.Sprintf("transform: translateY(%spx); opacity: %s",
		strconv.FormatFloat(offset, 'f', -1, 64),
		strconv.FormatFloat(opacity, 'f', -1, 64))
}

// Section reveal styles.
const (
	SectionHiddenStyle   = "opacity: 0; transform: translateY(50px); transition: opacity 0.6s ease, transform 0.6s ease"
	SectionRevealedStyle = "opacity: 1; transform: translateY(0); transition: opacity 0.6s ease, transform 0.6s ease"
)

// RevealSectionClasses are the sections that fade in when scrolled into view.
var RevealSectionClasses = []string{"ctfs-section", "about-section", "contact-section"}

// RevealSections returns the reveal-on-scroll sections present in doc.
func RevealSections(doc *html.Node) []*html.Node {
	var out []*html.Node
	for _, class := range RevealSectionClasses {
		out = append(out, FindAllByClass(doc, class)...)
	}
	return out
}

// Once tracks which targets already ran an animate-once effect.
type Once map[string]bool

// First marks id and reports whether this is its first time.
func (o Once) First(id string) bool {
	if o[id] {
		return false
	}
	o[id] = true
	return true
}
