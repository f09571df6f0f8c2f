// Package page runs one Catalog View Controller per open browser page: it owns the page
// document, processes browser events on a single goroutine and reports every DOM change
// as a Patch.
// File: page/view.go
package page

import (
	"context"
	"errors"
	"sync"
	"time"

	"ctf-catalog/logger"
	"ctf-catalog/services"
	"ctf-catalog/views"
	"golang.org/x/net/html"
)

// ErrPageClosed is returned when posting to a page whose loop has stopped.
var ErrPageClosed = errors.New("page closed")

// DataUnavailableMessage is shown in the grid when intake failed.
const DataUnavailableMessage = "Failed to load CTF data. Please check your catalog source."

// DefaultFeedbackTimeout is how long error feedback stays visible.
const DefaultFeedbackTimeout = 5 * time.Second

// PatchSink receives the patches produced by one event.
type PatchSink interface {
	SendPatches(patches []Patch) error
}

// Options configures a View.
type Options struct {
	// Owner namespaces solved-state records; it is the browser identity.
	Owner string
	// Skeleton is the parsed page markup; it is cloned, never modified.
	Skeleton *html.Node
	Snapshot *services.Snapshot
	Store    services.SolvedStore
	Delayer  services.Delayer
	// VerifyDelay and FeedbackTimeout fall back to the defaults when zero.
	VerifyDelay     time.Duration
	FeedbackTimeout time.Duration
	Recorder        services.OutcomeRecorder
	// BodyData is written to <body> as data-* attributes (page id, socket URL).
	BodyData map[string]string
}

// View is the per-page controller. All fields below mu are owned by the loop goroutine.
type View struct {
	ID    string
	owner string

	inbox chan func()
	quit  chan struct{}
	once  sync.Once

	mu           sync.Mutex
	sink         PatchSink
	created      time.Time
	lastActive   time.Time
	everAttached bool

	doc             *Document
	snap            *services.Snapshot
	verifier        *services.AnswerVerifier
	delayer         services.Delayer
	feedbackTimeout time.Duration
	feedbackGen     map[string]int
	counted         views.Once
	revealed        views.Once
	taskSeq         int
	tasks           map[int]services.Task
}

// New builds the page document from the snapshot. Intake failures render the error panel
// and leave the page otherwise usable.
func New(id string, opts Options) (*View, error) {
	skeleton := opts.Skeleton
	if skeleton == nil {
		parsed, err := views.ParseSkeleton("")
		if err != nil {
			return nil, err
		}
		skeleton = parsed
	}
	snap := opts.Snapshot
	if snap == nil {
		snap = services.FailedSnapshot(services.ErrDataUnavailable)
	}
	delayer := opts.Delayer
	if delayer == nil {
		delayer = services.ClockDelayer{}
	}
	verifyDelay := opts.VerifyDelay
	if verifyDelay <= 0 {
		verifyDelay = services.DefaultVerifyDelay
	}
	feedbackTimeout := opts.FeedbackTimeout
	if feedbackTimeout <= 0 {
		feedbackTimeout = DefaultFeedbackTimeout
	}

	now := time.Now()
	v := &View{
		ID:         id,
		owner:      opts.Owner,
		inbox:      make(chan func(), 64),
		quit:       make(chan struct{}),
		created:    now,
		lastActive: now,
		snap:       snap,
		verifier: &services.AnswerVerifier{
			Index:    snap.Index,
			Store:    opts.Store,
			Delayer:  delayer,
			Delay:    verifyDelay,
			Recorder: opts.Recorder,
		},
		delayer:         delayer,
		feedbackTimeout: feedbackTimeout,
		feedbackGen:     make(map[string]int),
		counted:         views.Once{},
		revealed:        views.Once{},
		tasks:           make(map[int]services.Task),
	}
	v.doc = NewDocument(views.CloneTree(skeleton))
	if body := views.FindFirstByTag(v.doc.Root(), "body"); body != nil {
		for k, val := range opts.BodyData {
			views.SetAttr(body, "data-"+k, val)
		}
	}
	v.intake()
	v.doc.Drain()
	return v, nil
}

func (v *View) intake() {
	root := v.doc.Root()
	grid := views.FindByID(root, views.GridID)
	if v.snap.Err != nil {
		logger.Error.Printf("[View.intake] page %s: catalog unavailable: %v", v.ID, v.snap.Err)
		if grid != nil {
			v.doc.SetChildren(grid, views.ErrorPanel(DataUnavailableMessage))
		}
	} else {
		if grid != nil {
			views.RenderGrid(v.doc, grid, v.snap.Catalog)
		}
		views.ApplyHeroStats(v.doc, root, v.snap.Stats.TotalChallenges, v.snap.Stats.CollectionCount)
	}
	for _, section := range views.RevealSections(root) {
		v.doc.SetAttr(section, "style", views.SectionHiddenStyle)
	}
}

// HTML renders the current document. Safe to call before Run or through Do.
func (v *View) HTML() string { return v.doc.HTML() }

// Attach sets the patch sink; nil detaches it. Patches produced without a sink are dropped.
func (v *View) Attach(sink PatchSink) {
	v.mu.Lock()
	v.sink = sink
	v.lastActive = time.Now()
	if sink != nil {
		v.everAttached = true
	}
	v.mu.Unlock()
}

// Detach clears the sink if it is still sink. The idle clock restarts at the disconnect.
func (v *View) Detach(sink PatchSink) {
	v.mu.Lock()
	if v.sink == sink {
		v.sink = nil
		v.lastActive = time.Now()
	}
	v.mu.Unlock()
}

// Liveness is what the registry needs to decide whether a page is still in use.
type Liveness struct {
	Created    time.Time
	LastActive time.Time
	// Attached is true while a socket is bound to the page.
	Attached bool
	// EverAttached is false until the first socket connects.
	EverAttached bool
}

// Liveness reports the page's connection state and activity times.
func (v *View) Liveness() Liveness {
	v.mu.Lock()
	defer v.mu.Unlock()
	return Liveness{
		Created:      v.created,
		LastActive:   v.lastActive,
		Attached:     v.sink != nil,
		EverAttached: v.everAttached,
	}
}

// LastActive is the time of the last event posted to the page, or of the last attach
// or detach.
func (v *View) LastActive() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastActive
}

// Run processes events until ctx is done or Stop is called. Pending timers are cancelled
// on exit.
func (v *View) Run(ctx context.Context) error {
	defer v.cancelTasks()
	for {
		select {
		case <-ctx.Done():
			v.Stop()
			return ctx.Err()
		case <-v.quit:
			return nil
		case fn := <-v.inbox:
			fn()
			v.flush()
		}
	}
}

// Stop ends the loop. It is safe to call more than once.
func (v *View) Stop() {
	v.once.Do(func() { close(v.quit) })
}

// Done is closed once the page is stopped.
func (v *View) Done() <-chan struct{} { return v.quit }

// Post queues a browser event.
func (v *View) Post(ev Event) error {
	v.mu.Lock()
	v.lastActive = time.Now()
	v.mu.Unlock()
	return v.enqueue(func() { v.handle(ev) })
}

// Do runs fn on the loop goroutine and waits for it. Patches fn produces are flushed.
func (v *View) Do(fn func(doc *Document)) error {
	done := make(chan struct{})
	if err := v.enqueue(func() {
		defer close(done)
		fn(v.doc)
	}); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-v.quit:
		return ErrPageClosed
	}
}

func (v *View) enqueue(fn func()) error {
	select {
	case <-v.quit:
		return ErrPageClosed
	default:
	}
	select {
	case v.inbox <- fn:
		return nil
	case <-v.quit:
		return ErrPageClosed
	}
}

func (v *View) handle(ev Event) {
	h, ok := dispatch[eventKey{ev.Role, ev.Kind}]
	if !ok {
		logger.Debug.Printf("[View.handle] page %s: no handler for %s/%s", v.ID, ev.Role, ev.Kind)
		return
	}
	h(v, ev)
}

func (v *View) flush() {
	patches := v.doc.Drain()
	if len(patches) == 0 {
		return
	}
	v.mu.Lock()
	sink := v.sink
	v.mu.Unlock()
	if sink == nil {
		return
	}
	if err := sink.SendPatches(patches); err != nil {
		logger.Warn.Printf("[View.flush] page %s: dropping %d patches: %v", v.ID, len(patches), err)
	}
}

// after runs fn on the loop once d has elapsed, unless the page stops first.
func (v *View) after(d time.Duration, fn func()) {
	v.taskSeq++
	id := v.taskSeq
	v.tasks[id] = v.delayer.AfterFunc(d, func() {
		_ = v.enqueue(func() {
			delete(v.tasks, id)
			fn()
		})
	})
}

func (v *View) track(task services.Task) int {
	v.taskSeq++
	v.tasks[v.taskSeq] = task
	return v.taskSeq
}

func (v *View) cancelTasks() {
	for id, t := range v.tasks {
		t.Cancel()
		delete(v.tasks, id)
	}
}
