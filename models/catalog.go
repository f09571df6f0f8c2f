// Package models defines data structures used across the application.
// File: models/catalog.go
package models

// ----------------------- difficulty -----------------------

// Difficulty names one of the three fixed challenge buckets.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties is the fixed bucket order used for rendering and lookups.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// Label is the capitalised display name ("Easy", "Medium", "Hard").
func (d Difficulty) Label() string {
	switch d {
	case DifficultyEasy:
		return "Easy"
	case DifficultyMedium:
		return "Medium"
	case DifficultyHard:
		return "Hard"
	}
	return string(d)
}

// Valid reports whether d is one of the three buckets.
func (d Difficulty) Valid() bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}

// ----------------------- status -----------------------

// Status is a collection's lifecycle badge. Values beyond the two known ones are tolerated.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// ----------------------- challenge model -----------------------

// Challenge is one puzzle within a collection.
type Challenge struct {
	Name           string   `json:"name" yaml:"name"`
	Description    string   `json:"description" yaml:"description"`
	PasswordFormat string   `json:"passwordFormat" yaml:"passwordFormat"`
	Answer         *string  `json:"answer,omitempty" yaml:"answer,omitempty"` // nil when no answer ships with the data
	ImageURL       string   `json:"imageUrl,omitempty" yaml:"imageUrl,omitempty"`
	Files          []string `json:"files,omitempty" yaml:"files,omitempty"`
	LocalFolder    string   `json:"localFolder,omitempty" yaml:"localFolder,omitempty"`
}

// HasAnswer reports whether the challenge carries a checkable answer.
// An empty string counts as undefined, matching a falsy answer in the source data.
func (c Challenge) HasAnswer() bool {
	return c.Answer != nil && *c.Answer != ""
}

// Challenges partitions a collection's challenges by difficulty.
type Challenges struct {
	Easy   []Challenge `json:"easy" yaml:"easy"`
	Medium []Challenge `json:"medium" yaml:"medium"`
	Hard   []Challenge `json:"hard" yaml:"hard"`
}

// Bucket returns the challenge list for one difficulty.
func (c Challenges) Bucket(d Difficulty) []Challenge {
	switch d {
	case DifficultyEasy:
		return c.Easy
	case DifficultyMedium:
		return c.Medium
	case DifficultyHard:
		return c.Hard
	}
	return nil
}

// ------------------------ collection model -----------------------

// Collection is one CTF event's bundle of challenges, metadata and links.
type Collection struct {
	ID              int        `json:"id" yaml:"id"`
	Title           string     `json:"title" yaml:"title"`
	Description     string     `json:"description" yaml:"description"`
	Status          Status     `json:"status" yaml:"status"`
	TotalChallenges int        `json:"totalChallenges" yaml:"totalChallenges"`
	Year            *int       `json:"year,omitempty" yaml:"year,omitempty"`
	GithubURL       string     `json:"githubUrl" yaml:"githubUrl"`
	AnswersURL      string     `json:"answersUrl" yaml:"answersUrl"`
	Challenges      Challenges `json:"challenges" yaml:"challenges"`
}

// DefaultYear is shown on cards whose collection has no year.
const DefaultYear = "2024"

// ------------------------ catalog -----------------------

// Catalog is the ordered collection list supplied by the data source.
type Catalog struct {
	Collections []Collection `json:"collections" yaml:"collections"`
}

// Count is the number of collections.
func (c *Catalog) Count() int {
	return len(c.Collections)
}

// TotalChallenges sums the declared totalChallenges of every collection.
func (c *Catalog) TotalChallenges() int {
	total := 0
	for _, col := range c.Collections {
		total += col.TotalChallenges
	}
	return total
}

// FindCollection returns the first collection with the given id.
func (c *Catalog) FindCollection(id int) (*Collection, bool) {
	for i := range c.Collections {
		if c.Collections[i].ID == id {
			return &c.Collections[i], true
		}
	}
	return nil, false
}

// FindChallenge searches easy, then medium, then hard; the first name match wins.
func (c *Catalog) FindChallenge(collectionID int, name string) (*Challenge, Difficulty, bool) {
	col, ok := c.FindCollection(collectionID)
	if !ok {
		return nil, "", false
	}
	for _, d := range Difficulties {
		bucket := col.Challenges.Bucket(d)
		for i := range bucket {
			if bucket[i].Name == name {
				return &bucket[i], d, true
			}
		}
	}
	return nil, "", false
}
