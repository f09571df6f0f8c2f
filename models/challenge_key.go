// File: models/challenge_key.go
package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// KeySeparator joins a collection id and a challenge name.
const KeySeparator = "-"

// ErrMalformedKey is returned when a composite key has no numeric id prefix.
var ErrMalformedKey = errors.New("malformed challenge key")

// ChallengeKey is the composite "{collectionID}-{challengeName}" string used for storage.
type ChallengeKey string

// NewChallengeKey builds the composite key for a challenge in a collection.
func NewChallengeKey(collectionID int, name string) ChallengeKey {
	return ChallengeKey(strconv.Itoa(collectionID) + KeySeparator + name)
}

// ParseChallengeKey splits at the first separator: the prefix is the collection id and the
// remainder, separators included, is the challenge name.
// A negative id ("-3-x") cannot round-trip; callers should prefer handles from ChallengeIndex.
func ParseChallengeKey(key ChallengeKey) (int, string, error) {
	idPart, name, found := strings.Cut(string(key), KeySeparator)
	if !found {
		return 0, "", fmt.Errorf("%w: %q", ErrMalformedKey, key)
	}
	id, err := strconv.Atoi(idPart)
	if err != nil {
		return 0, "", fmt.Errorf("%w: %q", ErrMalformedKey, key)
	}
	return id, name, nil
}

// ------------------------ challenge index -----------------------

// ChallengeRef is what a rendered accordion item resolves to.
type ChallengeRef struct {
	Handle       string
	Key          ChallengeKey
	CollectionID int
	Difficulty   Difficulty // bucket of the resolved challenge, first match for Key
	Index        int        // position within that bucket
}

// ChallengeIndex maps opaque item handles to challenges. It is built once per catalog
// snapshot so verification never re-parses keys.
type ChallengeIndex struct {
	catalog *Catalog
	refs    map[string]ChallengeRef
	items   map[itemPos]string
}

type itemPos struct {
	collectionID int
	difficulty   Difficulty
	index        int
}

// NewChallengeIndex assigns a handle to every challenge of every collection.
// Items sharing a composite key resolve to the first match for that key.
func NewChallengeIndex(catalog *Catalog) *ChallengeIndex {
	idx := &ChallengeIndex{
		catalog: catalog,
		refs:    make(map[string]ChallengeRef),
		items:   make(map[itemPos]string),
	}
	seq := 0
	for ci := range catalog.Collections {
		col := &catalog.Collections[ci]
		for _, d := range Difficulties {
			for i, ch := range col.Challenges.Bucket(d) {
				seq++
				handle := "ch" + strconv.Itoa(seq)
				key := NewChallengeKey(col.ID, ch.Name)

				ref := ChallengeRef{Handle: handle, Key: key, CollectionID: col.ID, Difficulty: d, Index: i}
				if _, rd, ok := catalog.FindChallenge(col.ID, ch.Name); ok {
					ref.Difficulty = rd
					ref.Index = bucketIndex(catalog, col.ID, rd, ch.Name)
				}
				idx.refs[handle] = ref
				idx.items[itemPos{col.ID, d, i}] = handle
			}
		}
	}
	return idx
}

func bucketIndex(catalog *Catalog, collectionID int, d Difficulty, name string) int {
	col, _ := catalog.FindCollection(collectionID)
	for i, ch := range col.Challenges.Bucket(d) {
		if ch.Name == name {
			return i
		}
	}
	return -1
}

// Handle returns the handle of the item at position i of a collection's bucket.
func (x *ChallengeIndex) Handle(collectionID int, d Difficulty, i int) (string, bool) {
	h, ok := x.items[itemPos{collectionID, d, i}]
	return h, ok
}

// Ref resolves a handle.
func (x *ChallengeIndex) Ref(handle string) (ChallengeRef, bool) {
	ref, ok := x.refs[handle]
	return ref, ok
}

// Challenge resolves a handle to the challenge it verifies against.
func (x *ChallengeIndex) Challenge(handle string) (*Challenge, ChallengeRef, bool) {
	ref, ok := x.refs[handle]
	if !ok {
		return nil, ChallengeRef{}, false
	}
	col, ok := x.catalog.FindCollection(ref.CollectionID)
	if !ok {
		return nil, ref, false
	}
	bucket := col.Challenges.Bucket(ref.Difficulty)
	if ref.Index < 0 || ref.Index >= len(bucket) {
		return nil, ref, false
	}
	return &bucket[ref.Index], ref, true
}

// Len is the number of indexed items.
func (x *ChallengeIndex) Len() int {
	return len(x.refs)
}
