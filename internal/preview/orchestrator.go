// Package preview materializes the favorited subset of a conversation
// as a disposable side conversation and guarantees the original view
// is restored on every exit path.
package preview

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/uhhhh15/starmark/internal/host"
	"github.com/uhhhh15/starmark/internal/store"
	"github.com/uhhhh15/starmark/internal/types"
)

// Phase names the orchestrator's current step.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePreparing
	PhaseSwitching
	PhaseRenaming
	PhaseClearing
	PhaseFilling
	PhaseActive
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePreparing:
		return "preparing"
	case PhaseSwitching:
		return "switching"
	case PhaseRenaming:
		return "renaming"
	case PhaseClearing:
		return "clearing"
	case PhaseFilling:
		return "filling"
	case PhaseActive:
		return "active"
	}
	return "unknown"
}

// NamePrefix marks a conversation as a preview conversation.
const NamePrefix = "[Preview] "

// fallbackName is used when the adopted conversation has no
// resolvable display name.
const fallbackName = "Preview"

const (
	switchTimeout     = 5 * time.Second
	clearPollInterval = 50 * time.Millisecond
	clearTimeout      = 2 * time.Second
	frameYield        = 16 * time.Millisecond
	fillBatchSize     = 20
	fillBatchPause    = 50 * time.Millisecond
)

var (
	// ErrBusy rejects reentrant entry while an operation is in flight.
	ErrBusy = errors.New("a preview operation is already in flight")
	// ErrSwitchTimeout means the host never confirmed the expected
	// conversation within the bounded wait.
	ErrSwitchTimeout = errors.New("timed out waiting for conversation switch")
	// ErrDrift means the live conversation changed under the
	// orchestrator between steps.
	ErrDrift = errors.New("conversation changed during preview setup")
	// ErrNoOriginal means return was requested with no recorded
	// original context.
	ErrNoOriginal = errors.New("no original conversation recorded")
)

// Mapping persists the per-entity preview conversation so repeated
// previews reuse one side conversation.
type Mapping interface {
	Get(entityID string) (conversationID string, ok bool, err error)
	Set(entityID, conversationID string) error
}

// UI is the presentation surface toggled around preview mode: hiding
// the composition control and attaching the exit control on enter,
// restoring the normal configuration on exit. Both must be idempotent.
type UI interface {
	EnterPreviewMode()
	ExitPreviewMode()
}

// Notifier reports orchestration outcomes to the user.
type Notifier interface {
	Info(msg string)
	Warn(msg string)
	Error(msg string)
	Success(msg string)
}

// State is the preview state triple. Active is true iff Original and
// ConversationID are both set.
type State struct {
	Active         bool
	Original       *types.ChatContext
	ConversationID string
}

// Orchestrator drives the preview state machine. Single-flight: a
// second Enter while one is in flight returns ErrBusy.
type Orchestrator struct {
	host     host.Host
	store    *store.Store
	mapping  Mapping
	ui       UI
	notifier Notifier
	clock    Clock
	debug    bool

	mu    sync.Mutex
	busy  bool
	phase Phase
	state State
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClock injects a clock, used by tests to simulate waits.
func WithClock(c Clock) Option {
	return func(o *Orchestrator) { o.clock = c }
}

// WithDebug enables stderr diagnostics.
func WithDebug(v bool) Option {
	return func(o *Orchestrator) { o.debug = v }
}

// New creates an idle orchestrator.
func New(h host.Host, st *store.Store, mapping Mapping, ui UI, notifier Notifier, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		host:     h,
		store:    st,
		mapping:  mapping,
		ui:       ui,
		notifier: notifier,
		clock:    SystemClock(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State returns a copy of the preview state triple.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Phase returns the current step.
func (o *Orchestrator) Phase() Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phase
}

// Active reports whether a preview is currently showing.
func (o *Orchestrator) Active() bool {
	return o.State().Active
}

// Enter runs the full preview entry sequence. Any failure after the
// initial checks funnels through the single recovery path, leaving
// the state inactive and the normal UI restored.
func (o *Orchestrator) Enter(ctx context.Context) error {
	o.mu.Lock()
	if o.busy || o.state.Active {
		o.mu.Unlock()
		return ErrBusy
	}
	o.busy = true
	o.phase = PhasePreparing
	o.mu.Unlock()

	err := o.enter(ctx)

	o.mu.Lock()
	o.busy = false
	if !o.state.Active {
		o.phase = PhaseIdle
	}
	o.mu.Unlock()
	return err
}

func (o *Orchestrator) enter(ctx context.Context) error {
	// Step 1: capture the original context and snapshot its message
	// array before anything is switched or cleared.
	original, err := o.host.Context()
	if err != nil || !original.Valid() {
		o.notifier.Warn("select a character or group before previewing")
		return host.ErrNoContext
	}
	records, err := o.store.Collection()
	if err != nil {
		o.notifier.Warn("favorites unavailable")
		return err
	}
	if len(records) == 0 {
		o.notifier.Warn("no favorites to preview")
		return nil
	}
	snapshot := o.host.Messages()

	if err := o.run(ctx, original, records, snapshot); err != nil {
		o.recover()
		return err
	}
	return nil
}

func (o *Orchestrator) run(ctx context.Context, original types.ChatContext, records []types.FavoriteRecord, snapshot []types.Message) error {
	entity := original.EntityID()

	events, cancel := o.host.Bus().Subscribe()
	defer cancel()

	// Step 2: resolve the target preview conversation.
	o.setPhase(PhaseSwitching)
	mapped, ok, err := o.mapping.Get(entity)
	if err != nil {
		return err
	}

	var target string
	adopted := false
	switch {
	case ok && mapped == original.ConversationID:
		// Already live: yield one frame instead of waiting on the
		// lifecycle signal.
		target = mapped
		o.clock.Sleep(frameYield)
	case ok:
		target = mapped
		if err := o.host.SwitchConversation(target); err != nil {
			return fmt.Errorf("switch to preview conversation: %w", err)
		}
		if err := o.awaitConversation(ctx, events, target); err != nil {
			return err
		}
	default:
		adopted = true
		created, err := o.host.CreateConversation(entity)
		if err != nil {
			return fmt.Errorf("create preview conversation: %w", err)
		}
		target = created
		if err := o.mapping.Set(entity, target); err != nil {
			return err
		}
		if err := o.awaitConversation(ctx, events, target); err != nil {
			return err
		}
	}

	// Step 4: mark newly adopted conversations with the preview
	// prefix. Renaming changes the conversation id, so the live id is
	// re-resolved and the mapping updated. Rename failure is not
	// fatal; the pre-rename id stays in effect.
	if adopted {
		o.setPhase(PhaseRenaming)
		name, nameErr := o.host.ConversationName(target)
		if nameErr != nil || name == "" {
			name = fallbackName
		}
		if !strings.HasPrefix(name, NamePrefix) {
			if err := o.host.RenameConversation(NamePrefix + name); err != nil {
				o.notifier.Warn("could not rename preview conversation: " + err.Error())
			} else if cur, curErr := o.host.Context(); curErr == nil && cur.ConversationID != "" {
				target = cur.ConversationID
				if err := o.mapping.Set(entity, target); err != nil {
					return err
				}
			}
		}
	}

	// Step 5: clear the target and poll until it looks empty.
	o.setPhase(PhaseClearing)
	if err := o.host.ClearConversation(); err != nil {
		return fmt.Errorf("clear preview conversation: %w", err)
	}
	deadline := o.clock.Now().Add(clearTimeout)
	for o.host.VisibleCount() > 0 {
		if o.clock.Now().After(deadline) {
			o.notifier.Warn("preview conversation did not clear in time")
			break
		}
		o.clock.Sleep(clearPollInterval)
	}

	// Step 6: re-verify nothing navigated away while clearing.
	if cur, curErr := o.host.Context(); curErr != nil || cur.ConversationID != target {
		return ErrDrift
	}

	// Step 7: preview is now showing; from here the exit control is
	// guaranteed present whenever Active is true.
	o.mu.Lock()
	o.state = State{Active: true, Original: &original, ConversationID: target}
	o.mu.Unlock()
	o.ui.EnterPreviewMode()

	// Step 8: build the fill list from the pre-switch snapshot.
	o.setPhase(PhaseFilling)
	var fill []types.Message
	for _, rec := range store.SortedByIndex(records) {
		idx, convErr := strconv.Atoi(rec.MessageID)
		if convErr != nil || idx < 0 || idx >= len(snapshot) {
			o.debugf("favorite %s: index %q out of range, skipping", rec.ID, rec.MessageID)
			continue
		}
		fill = append(fill, snapshot[idx].Clone())
	}

	// Step 9: fill in fixed-size batches with a pause between batches
	// so the renderer keeps up. Inserts within a batch run in order;
	// positional indices are the message identity, so insertion order
	// must match the sorted fill list.
	if cur, curErr := o.host.Context(); curErr != nil || cur.ConversationID != target {
		return ErrDrift
	}
	inserted := 0
	for start := 0; start < len(fill); start += fillBatchSize {
		end := min(start+fillBatchSize, len(fill))
		for _, msg := range fill[start:end] {
			if err := o.host.InsertMessage(msg); err != nil {
				o.debugf("insert failed: %v", err)
				continue
			}
			inserted++
		}
		if end < len(fill) {
			o.clock.Sleep(fillBatchPause)
		}
	}

	// Step 10: report the outcome.
	o.setPhase(PhaseActive)
	switch {
	case inserted > 0:
		o.notifier.Success(fmt.Sprintf("preview ready: %d message(s)", inserted))
	case len(fill) > 0:
		o.notifier.Warn("prepared messages but none could be inserted")
	default:
		o.notifier.Info("no favorited messages resolved; preview is empty")
	}
	return nil
}

// awaitConversation waits until the host confirms the expected
// conversation id, bounded by switchTimeout.
func (o *Orchestrator) awaitConversation(ctx context.Context, events <-chan host.Event, target string) error {
	timeout := o.clock.After(switchTimeout)
	for {
		if cur, err := o.host.Context(); err == nil && cur.ConversationID == target {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return ErrSwitchTimeout
			}
			if ev.Type == host.EventConversationChanged && ev.ConversationID == target {
				return nil
			}
		case <-timeout:
			o.notifier.Error("conversation switch timed out")
			return ErrSwitchTimeout
		}
	}
}

// TriggerReturn navigates back to the original conversation and always
// runs the recovery path, navigation outcome notwithstanding.
func (o *Orchestrator) TriggerReturn() error {
	o.mu.Lock()
	original := o.state.Original
	o.mu.Unlock()

	if original == nil {
		o.notifier.Error("no original conversation recorded")
		o.recover()
		return ErrNoOriginal
	}

	err := o.host.SwitchConversation(original.ConversationID)
	if err != nil {
		o.notifier.Error("could not return to the original conversation: " + err.Error())
	} else if original.GroupID != "" {
		o.notifier.Success("returned to group conversation")
	} else {
		o.notifier.Success("returned to " + original.CharacterName)
	}
	o.recover()
	return err
}

// HandleConversationChanged is the external-navigation guard: while a
// preview is active, any switch to a conversation other than the
// preview one is treated as a return without the navigation step.
func (o *Orchestrator) HandleConversationChanged(newID string) {
	o.mu.Lock()
	active := o.state.Active
	previewID := o.state.ConversationID
	o.mu.Unlock()

	if !active || newID == previewID {
		return
	}
	o.debugf("external navigation to %s while previewing %s", newID, previewID)
	o.recover()
}

// Watch feeds host lifecycle signals into the navigation guard until
// ctx is cancelled.
func (o *Orchestrator) Watch(ctx context.Context) {
	events, cancel := o.host.Bus().Subscribe()
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Type == host.EventConversationChanged {
				o.HandleConversationChanged(ev.ConversationID)
			}
		}
	}
}

// recover is the single recovery funnel: restore the normal UI and
// reset the preview state. Idempotent.
func (o *Orchestrator) recover() {
	o.ui.ExitPreviewMode()
	o.mu.Lock()
	o.state = State{}
	o.phase = PhaseIdle
	o.mu.Unlock()
}

func (o *Orchestrator) setPhase(p Phase) {
	o.mu.Lock()
	o.phase = p
	o.mu.Unlock()
}

func (o *Orchestrator) debugf(format string, args ...any) {
	if o.debug {
		fmt.Fprintf(os.Stderr, "[preview] "+format+"\n", args...)
	}
}
