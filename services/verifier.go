// File: services/verifier.go
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"ctf-catalog/logger"
	"ctf-catalog/models"
)

var (
	// ErrEmptyInput is returned synchronously for blank answers; nothing is scheduled.
	ErrEmptyInput = errors.New("please enter an answer")
	// ErrChallengeNotFound means the item handle resolves to no challenge.
	ErrChallengeNotFound = errors.New("challenge not found")
	// ErrAnswerNotDefined means the challenge ships without an answer.
	ErrAnswerNotDefined = errors.New("answer not defined")
)

// DefaultVerifyDelay is the pause before an answer is evaluated.
const DefaultVerifyDelay = 500 * time.Millisecond

// Outcome classifies a finished verification.
type Outcome int

const (
	OutcomeCorrect Outcome = iota
	OutcomeIncorrect
	OutcomeUnavailable
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCorrect:
		return "correct"
	case OutcomeIncorrect:
		return "incorrect"
	case OutcomeUnavailable:
		return "unavailable"
	}
	return "unknown"
}

// Result is delivered to the caller once the delay has elapsed.
type Result struct {
	Handle  string
	Key     models.ChallengeKey
	Outcome Outcome
	// Err explains OutcomeUnavailable (ErrChallengeNotFound or ErrAnswerNotDefined)
	// or carries a storage failure alongside OutcomeCorrect.
	Err error
}

// OutcomeRecorder receives one call per finished verification.
type OutcomeRecorder interface {
	VerificationOutcome(outcome string)
}

// AnswerVerifier compares answers against the values shipped with the catalog.
// It never calls out to a remote service.
type AnswerVerifier struct {
	Index    *models.ChallengeIndex
	Store    SolvedStore
	Delayer  Delayer
	Delay    time.Duration
	Recorder OutcomeRecorder
}

// NewAnswerVerifier wires a verifier with the wall clock and the default delay.
func NewAnswerVerifier(index *models.ChallengeIndex, store SolvedStore) *AnswerVerifier {
	return &AnswerVerifier{Index: index, Store: store, Delayer: ClockDelayer{}, Delay: DefaultVerifyDelay}
}

// NormalizeAnswer case-folds and trims an answer for comparison.
func NormalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Start schedules the verification of input for the item handle and returns its task.
// Blank input fails immediately with ErrEmptyInput. Concurrent starts for the same handle
// are not de-duplicated: each one delivers its own Result to done.
func (v *AnswerVerifier) Start(ctx context.Context, owner, handle, input string, done func(Result)) (Task, error) {
	if strings.TrimSpace(input) == "" {
		logger.Debug.Printf("[AnswerVerifier.Start] empty input for %s", handle)
		return nil, ErrEmptyInput
	}
	task := v.Delayer.AfterFunc(v.Delay, func() {
		done(v.Evaluate(ctx, owner, handle, input))
	})
	return task, nil
}

// Evaluate performs the comparison without any delay.
func (v *AnswerVerifier) Evaluate(ctx context.Context, owner, handle, input string) Result {
	res := v.evaluate(ctx, owner, handle, input)
	if v.Recorder != nil {
		v.Recorder.VerificationOutcome(res.Outcome.String())
	}
	return res
}

func (v *AnswerVerifier) evaluate(ctx context.Context, owner, handle, input string) Result {
	ch, ref, ok := v.Index.Challenge(handle)
	if !ok {
		logger.Warn.Printf("[AnswerVerifier.Evaluate] no challenge for handle %s", handle)
		return Result{Handle: handle, Key: ref.Key, Outcome: OutcomeUnavailable, Err: ErrChallengeNotFound}
	}
	res := Result{Handle: handle, Key: ref.Key}
	if !ch.HasAnswer() {
		res.Outcome = OutcomeUnavailable
		res.Err = ErrAnswerNotDefined
		return res
	}
	if NormalizeAnswer(input) != NormalizeAnswer(*ch.Answer) {
		res.Outcome = OutcomeIncorrect
		return res
	}

	res.Outcome = OutcomeCorrect
	if v.Store != nil {
		if err := v.Store.MarkSolved(ctx, owner, ref.Key); err != nil {
			logger.Error.Printf("[AnswerVerifier.Evaluate] could not record %s for %s: %v", ref.Key, owner, err)
			res.Err = err
		}
	}
	logger.Info.Printf("[AnswerVerifier.Evaluate] %s solved by %s", ref.Key, owner)
	return res
}
