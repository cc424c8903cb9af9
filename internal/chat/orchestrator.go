// Copyright (c) 2025 a.d.
// SPDX-License-Identifier: WTFPL

// Package chat coordinates conversations, personalities, the session store
// and the completion API into a single turn-taking surface for the UI.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/aldev/gpterm/internal/model"
	"github.com/aldev/gpterm/internal/personality"
	"github.com/aldev/gpterm/internal/store"
	"github.com/aldev/gpterm/internal/util"
)

var (
	// ErrAwaitingReply is returned when a new turn is started while a
	// previous one has not completed or been abandoned.
	ErrAwaitingReply = errors.New("a reply is still pending")

	// ErrStaleReply is returned when a reply arrives for a turn that no
	// longer matches the conversation, e.g. after a reset or session load.
	// Callers should drop the reply without surfacing an error to the user.
	ErrStaleReply = errors.New("reply is for an abandoned turn")
)

// Sender produces an assistant reply for a conversation history. Satisfied
// by api.Client.
type Sender interface {
	Send(ctx context.Context, systemPrompt string, history []model.Message, modelName string, maxTokens int) (string, error)
}

// =============================================================================
// ORCHESTRATOR
// =============================================================================

// pendingTurn captures everything needed to complete an in-flight turn, so
// the API call can run without holding the orchestrator lock.
type pendingTurn struct {
	seq          int
	generation   uint64
	systemPrompt string
	history      []model.Message
	model        string
	maxTokens    int
}

// Orchestrator owns the active conversation and runs the send/receive
// cycle. All methods are safe for concurrent use.
type Orchestrator struct {
	mu sync.Mutex

	conv    *model.Conversation
	catalog *personality.Catalog
	store   *store.Store
	sender  Sender
	log     zerolog.Logger

	autosave bool
	turnSeq  int
	pending  *pendingTurn

	// onSaveError receives autosave failures, which must not interrupt the
	// chat flow. Nil means they are only logged.
	onSaveError func(error)
}

// Options configures an Orchestrator.
type Options struct {
	Catalog     *personality.Catalog
	Store       *store.Store
	Sender      Sender
	Logger      zerolog.Logger
	Autosave    bool
	OnSaveError func(error)

	// Conversation defaults.
	Model     string
	MaxTokens int
	Lite      bool
}

// New creates an orchestrator with a fresh conversation using the default
// personality from the catalog.
func New(opts Options) *Orchestrator {
	o := &Orchestrator{
		catalog:     opts.Catalog,
		store:       opts.Store,
		sender:      opts.Sender,
		log:         opts.Logger,
		autosave:    opts.Autosave,
		onSaveError: opts.OnSaveError,
	}
	o.conv = model.NewConversation(
		model.WithModel(opts.Model),
		model.WithMaxTokens(opts.MaxTokens),
		model.WithPersonality(o.catalog.DefaultName()),
		model.WithPersonalityCheck(o.catalog.Check),
		model.WithLite(opts.Lite),
	)
	return o
}

// Conversation exposes the active conversation for read access by the UI.
func (o *Orchestrator) Conversation() *model.Conversation {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.conv
}

// =============================================================================
// TURN FLOW
// =============================================================================

// Begin appends the user turn and arms the orchestrator for Complete. It
// returns the appended message so the UI can render it immediately, before
// the network round trip finishes.
func (o *Orchestrator) Begin(text string) (model.Message, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.pending != nil {
		return model.Message{}, ErrAwaitingReply
	}

	systemPrompt, err := o.catalog.SystemPrompt(o.conv.Personality(), o.conv.SystemSuffix())
	if err != nil {
		return model.Message{}, err
	}

	msg, err := o.conv.AppendUser(text)
	if err != nil {
		return model.Message{}, err
	}

	o.turnSeq++
	o.pending = &pendingTurn{
		seq:          o.turnSeq,
		generation:   o.conv.Generation(),
		systemPrompt: systemPrompt,
		history:      o.conv.Messages(),
		model:        o.conv.Model(),
		maxTokens:    o.conv.MaxTokens(),
	}
	return msg, nil
}

// TurnResult carries the API outcome of a fetched turn between Fetch and
// Resolve. Opaque to callers; hand it back unchanged.
type TurnResult struct {
	seq   int
	reply string
	err   error
}

// Fetch runs the API call for the turn armed by Begin. It never touches the
// conversation, so it can run on a background goroutine while the UI keeps
// reading the history. Pass the result to Resolve on the event loop to
// append the reply.
func (o *Orchestrator) Fetch(ctx context.Context) TurnResult {
	o.mu.Lock()
	p := o.pending
	o.mu.Unlock()

	if p == nil {
		return TurnResult{err: ErrStaleReply}
	}
	reply, err := o.sender.Send(ctx, p.systemPrompt, p.history, p.model, p.maxTokens)
	return TurnResult{seq: p.seq, reply: reply, err: err}
}

// Resolve appends a fetched reply to the conversation. If the conversation
// moved on while the call was in flight (reset, session switch, abandon),
// the reply is dropped and ErrStaleReply is returned.
func (o *Orchestrator) Resolve(res TurnResult) (model.Message, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	stale := o.pending == nil || o.pending.seq != res.seq || o.conv.Generation() != o.pending.generation
	if o.pending != nil && o.pending.seq == res.seq {
		o.pending = nil
	}
	if stale {
		o.log.Debug().Int("turn", res.seq).Msg("dropping stale reply")
		return model.Message{}, ErrStaleReply
	}
	if res.err != nil {
		return model.Message{}, res.err
	}

	msg := o.conv.AppendAssistant(normalizeReply(res.reply))
	o.autosaveLocked()
	return msg, nil
}

// Complete runs Fetch and Resolve back to back, for callers without an
// event loop to post the result to.
func (o *Orchestrator) Complete(ctx context.Context) (model.Message, error) {
	return o.Resolve(o.Fetch(ctx))
}

// Send runs a whole turn: Begin followed by Complete.
func (o *Orchestrator) Send(ctx context.Context, text string) (model.Message, error) {
	if _, err := o.Begin(text); err != nil {
		return model.Message{}, err
	}
	return o.Complete(ctx)
}

// Abandon discards the in-flight turn, if any. A reply that later arrives
// for it is dropped. The user message from Begin stays in the history.
func (o *Orchestrator) Abandon() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pending = nil
}

// Awaiting reports whether a turn is in flight.
func (o *Orchestrator) Awaiting() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.pending != nil
}

// =============================================================================
// REPLY NORMALIZATION
// =============================================================================

// markdownMarkers are formatting sequences the model emits despite being
// told not to. The client renders plain text, so they are stripped.
var markdownMarkers = []string{"```", "**", "__", "`", "###", "##"}

// normalizeReply strips markdown formatting from a reply and collapses runs
// of blank lines.
func normalizeReply(text string) string {
	for _, marker := range markdownMarkers {
		text = strings.ReplaceAll(text, marker, "")
	}
	return strings.TrimSpace(util.CollapseBlankLines(text))
}

// =============================================================================
// CONVERSATION CONTROLS
// =============================================================================

// Reset clears the history and the pending turn, keeping settings.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.conv.Reset()
	o.pending = nil
}

// SetPersonality switches the active personality.
func (o *Orchestrator) SetPersonality(name string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.conv.SetPersonality(name)
}

// SetMaxTokens changes the reply length limit.
func (o *Orchestrator) SetMaxTokens(n int) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.conv.SetMaxTokens(n)
}

// SetSystemSuffix sets extra instruction text appended to the system prompt.
func (o *Orchestrator) SetSystemSuffix(text string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.conv.SetSystemSuffix(text)
}

// ToggleLite flips lite mode. Entering or leaving lite mode starts a fresh
// unnamed conversation, so any pending turn is dropped too. Returns the new
// lite state.
func (o *Orchestrator) ToggleLite() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.conv.Lite() {
		o.conv.ExitLite()
	} else {
		o.conv.EnterLite()
	}
	o.pending = nil
	return o.conv.Lite()
}

// =============================================================================
// SESSION OPERATIONS
// =============================================================================

// NewSession starts a fresh unnamed conversation with current settings.
func (o *Orchestrator) NewSession() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.conv.Reset()
	o.conv.ClearSessionName()
	o.pending = nil
}

// LoadSession replaces the conversation with a saved session. Refused in
// lite mode.
func (o *Orchestrator) LoadSession(name string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.conv.Lite() {
		return model.ErrLiteSession
	}

	snap, clean, err := o.store.Load(name)
	if err != nil {
		return err
	}
	o.conv.Restore(snap)
	if err := o.conv.SetSessionName(clean); err != nil {
		return err
	}
	o.pending = nil
	o.log.Info().Str("session", clean).Int("messages", len(snap.Messages)).Msg("session loaded")
	return nil
}

// SaveSessionAs persists the conversation under a name and binds the
// conversation to it, so later autosaves go to the same session. Refused in
// lite mode.
func (o *Orchestrator) SaveSessionAs(name string) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.conv.Lite() {
		return "", model.ErrLiteSession
	}

	clean, err := o.store.Save(name, o.conv.Snapshot())
	if err != nil {
		return "", err
	}
	if err := o.conv.SetSessionName(clean); err != nil {
		return "", err
	}
	o.log.Info().Str("session", clean).Msg("session saved")
	return clean, nil
}

// DeleteSession removes a saved session. If it is the active one, the
// conversation keeps its history but loses its name.
func (o *Orchestrator) DeleteSession(name string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	clean, err := store.SanitizeName(name)
	if err != nil {
		return err
	}
	if err := o.store.Delete(clean); err != nil {
		return err
	}
	if current, ok := o.conv.SessionName(); ok && current == clean {
		o.conv.ClearSessionName()
	}
	return nil
}

// RenameSession renames a saved session, following the active conversation's
// name if it is the one being renamed.
func (o *Orchestrator) RenameSession(oldName, newName string) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	oldClean, err := store.SanitizeName(oldName)
	if err != nil {
		return "", err
	}
	newClean, err := o.store.Rename(oldClean, newName)
	if err != nil {
		return "", err
	}
	if current, ok := o.conv.SessionName(); ok && current == oldClean {
		if err := o.conv.SetSessionName(newClean); err != nil {
			return "", err
		}
	}
	return newClean, nil
}

// Sessions lists saved sessions.
func (o *Orchestrator) Sessions() ([]store.SessionInfo, error) {
	return o.store.List()
}

// autosaveLocked re-saves the active session after a completed turn. Only
// applies when the conversation is bound to a name, is not in lite mode,
// and autosave is enabled. Failures are reported out of band.
func (o *Orchestrator) autosaveLocked() {
	if !o.autosave || o.conv.Lite() {
		return
	}
	name, ok := o.conv.SessionName()
	if !ok {
		return
	}
	if _, err := o.store.Save(name, o.conv.Snapshot()); err != nil {
		o.log.Error().Err(err).Str("session", name).Msg("autosave failed")
		if o.onSaveError != nil {
			o.onSaveError(err)
		}
	}
}
