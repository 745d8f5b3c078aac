// Package campaign holds the pure editing primitives for a campaign
// configuration tree: the top-level patch merge and the sequence helpers
// used for questions, answers, segments and contact fields. Every
// function here returns a new value and never mutates its input, so
// callers can keep older tree versions around for undo or comparison.
package campaign

import (
	"errors"
	"time"

	"campaignkit/internal/models"
)

var (
	// ErrIndexOutOfRange signals an operation addressed a position
	// outside the current sequence bounds. The sequence is unchanged.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrMinimumCount signals a delete would take a sequence below its
	// floor. The sequence is unchanged.
	ErrMinimumCount = errors.New("sequence is at its minimum length")
)

// Sequence floors. A campaign keeps at least one question, and a
// multiple-choice question keeps at least two answers.
const (
	MinQuestions = 1
	MinAnswers   = 2
)

// ApplyUpdate merges a sparse patch into the tree. Only the top level is
// merged: a non-nil patch field replaces the whole corresponding block.
// Callers changing one nested key spread the previous block themselves
// before calling. The returned tree carries a bumped version; unchanged
// blocks are shared with the input. The clear flags run after the sets,
// so a patch that both sets and clears a block ends up without it.
func ApplyUpdate(tree models.Campaign, patch models.CampaignPatch) models.Campaign {
	out := tree
	if patch.Name != nil {
		out.Name = *patch.Name
	}
	if patch.Welcome != nil {
		out.Welcome = *patch.Welcome
	}
	if patch.Contact != nil {
		out.Contact = *patch.Contact
	}
	if patch.Wheel != nil {
		w := *patch.Wheel
		out.Wheel = &w
	}
	if patch.Article != nil {
		a := *patch.Article
		out.Article = &a
	}
	if patch.Ending != nil {
		out.Ending = *patch.Ending
	}
	if patch.Theme != nil {
		out.Theme = *patch.Theme
	}
	if patch.ClearWheel {
		out.Wheel = nil
	}
	if patch.ClearArticle {
		out.Article = nil
	}
	out.Version = tree.Version + 1
	out.UpdatedAt = time.Now()
	return out
}

// item is anything addressable inside an ordered sequence.
type item interface {
	ItemID() string
}

// cloneable items can produce a copy of themselves with fresh ids,
// including fresh ids for any nested items.
type cloneable[T item] interface {
	item
	CloneFresh() T
}

// AddItem appends an item to a sequence, returning a new slice. The
// caller supplies the item with its id already set.
func AddItem[T item](seq []T, it T) []T {
	out := make([]T, 0, len(seq)+1)
	out = append(out, seq...)
	return append(out, it)
}

// DuplicateItem inserts a fresh-id copy of the item at index immediately
// after it. Fails with ErrIndexOutOfRange if index is outside [0, len).
func DuplicateItem[T cloneable[T]](seq []T, index int) ([]T, error) {
	if index < 0 || index >= len(seq) {
		return nil, ErrIndexOutOfRange
	}
	copyItem := seq[index].CloneFresh()
	out := make([]T, 0, len(seq)+1)
	out = append(out, seq[:index+1]...)
	out = append(out, copyItem)
	out = append(out, seq[index+1:]...)
	return out, nil
}

// DeleteItem removes the item at index. Fails with ErrMinimumCount if
// the sequence is already at minCount, and ErrIndexOutOfRange for a bad
// index. On failure the input slice is returned unchanged.
func DeleteItem[T item](seq []T, index, minCount int) ([]T, error) {
	if index < 0 || index >= len(seq) {
		return seq, ErrIndexOutOfRange
	}
	if len(seq) <= minCount {
		return seq, ErrMinimumCount
	}
	out := make([]T, 0, len(seq)-1)
	out = append(out, seq[:index]...)
	out = append(out, seq[index+1:]...)
	return out, nil
}

// ReorderItem moves the item at from to position to. from == to is an
// exact no-op returning the input slice.
func ReorderItem[T item](seq []T, from, to int) ([]T, error) {
	if from < 0 || from >= len(seq) || to < 0 || to >= len(seq) {
		return seq, ErrIndexOutOfRange
	}
	if from == to {
		return seq, nil
	}
	out := make([]T, 0, len(seq))
	out = append(out, seq[:from]...)
	out = append(out, seq[from+1:]...)
	// reinsert at to
	rest := append([]T(nil), out[to:]...)
	out = append(out[:to], seq[from])
	out = append(out, rest...)
	return out, nil
}

// numbered items carry a 1-based display number.
type numbered[T item] interface {
	item
	WithNumber(n int) T
}

// Renumber returns a copy of the sequence with display numbers rewritten
// to the contiguous range 1..N in order. Fixed screens (welcome, ending)
// live outside these sequences and are never counted.
func Renumber[T numbered[T]](seq []T) []T {
	out := make([]T, len(seq))
	for i, it := range seq {
		out[i] = it.WithNumber(i + 1)
	}
	return out
}
