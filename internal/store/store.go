// Copyright (c) 2025 a.d.
// SPDX-License-Identifier: WTFPL

// Package store persists named chat sessions as JSON files on disk.
//
// Each session is a single file under the store directory, named after the
// sanitized session name. Writes go through an atomic temp-file rename so a
// crash mid-save never corrupts an existing session.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aldev/gpterm/internal/model"
	"github.com/aldev/gpterm/internal/util"
)

// formatVersion is bumped when the on-disk session schema changes.
const formatVersion = 1

// =============================================================================
// ERRORS
// =============================================================================

// SessionError represents a session-store error condition. Use errors.Is
// with one of the sentinel values below to check for it.
type SessionError struct {
	Message string
}

// Error implements the error interface.
func (e *SessionError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing session errors.
func (e *SessionError) Is(target error) bool {
	t, ok := target.(*SessionError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

var (
	// ErrSessionNotFound is returned when no session file exists for a name.
	ErrSessionNotFound = &SessionError{Message: "session not found"}

	// ErrSessionExists is returned by Rename when the target name is taken.
	ErrSessionExists = &SessionError{Message: "session already exists"}

	// ErrInvalidSessionName is returned when a name sanitizes to nothing.
	ErrInvalidSessionName = &SessionError{Message: "invalid session name"}

	// ErrCorruptSession is returned when a session file cannot be decoded.
	ErrCorruptSession = &SessionError{Message: "corrupt session file"}
)

// PersistenceError wraps a filesystem failure during a store operation so
// callers can distinguish I/O trouble from domain errors.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

// Error implements the error interface.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying filesystem error.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// =============================================================================
// STORED SESSION TYPES
// =============================================================================

// sessionRecord is the on-disk schema of a saved session.
type sessionRecord struct {
	Format       int             `json:"format"`
	Name         string          `json:"name"`
	Model        string          `json:"model"`
	MaxTokens    int             `json:"max_tokens"`
	Personality  string          `json:"personality"`
	SystemSuffix string          `json:"system_suffix,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Messages     []storedMessage `json:"messages"`
}

type storedMessage struct {
	ID          string    `json:"id"`
	Role        string    `json:"role"`
	Content     string    `json:"content"`
	Timestamp   time.Time `json:"timestamp"`
	Personality string    `json:"personality,omitempty"`
}

// SessionInfo contains metadata for listing sessions without loading their
// full history into memory for display.
type SessionInfo struct {
	Name         string
	Model        string
	Personality  string
	MessageCount int
	UpdatedAt    time.Time
	Preview      string
}

// =============================================================================
// STORE
// =============================================================================

// ownWriteWindow is how long a session name counts as touched by this
// process, for telling our own file events apart from another process's.
const ownWriteWindow = 2 * time.Second

// Store reads and writes named sessions under a single directory.
type Store struct {
	// Dir is the directory holding session files. Created on first save.
	Dir string

	mu  sync.Mutex
	own map[string]time.Time
}

// New creates a store rooted at dir. The directory is not created until a
// session is actually written, so a read-only run never touches the disk.
func New(dir string) *Store {
	return &Store{Dir: dir}
}

// markOwn records that this process is about to touch a session file.
func (s *Store) markOwn(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.own == nil {
		s.own = make(map[string]time.Time)
	}
	now := time.Now()
	for n, at := range s.own {
		if now.Sub(at) > ownWriteWindow {
			delete(s.own, n)
		}
	}
	s.own[name] = now
}

// ownWrite reports whether this process touched the session recently.
func (s *Store) ownWrite(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	at, ok := s.own[name]
	return ok && time.Since(at) <= ownWriteWindow
}

// SanitizeName converts a user-supplied session name into a safe filename
// stem: lowercased, spaces become underscores, anything outside
// [a-z0-9._-] is dropped.
func SanitizeName(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, " ", "_")

	var sb strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') ||
			r == '.' || r == '_' || r == '-' {
			sb.WriteRune(r)
		}
	}
	clean := strings.Trim(sb.String(), ".")
	if clean == "" {
		return "", ErrInvalidSessionName
	}
	return clean, nil
}

// filePath returns the session file path for an already-sanitized name.
func (s *Store) filePath(name string) string {
	return filepath.Join(s.Dir, name+".json")
}

// =============================================================================
// SAVE
// =============================================================================

// Save persists a conversation snapshot under the given name and returns the
// sanitized name actually used on disk.
func (s *Store) Save(name string, snap model.Snapshot) (string, error) {
	clean, err := SanitizeName(name)
	if err != nil {
		return "", err
	}

	rec := sessionRecord{
		Format:       formatVersion,
		Name:         clean,
		Model:        snap.Model,
		MaxTokens:    snap.MaxTokens,
		Personality:  snap.Personality,
		SystemSuffix: snap.SystemSuffix,
		UpdatedAt:    time.Now(),
		Messages:     make([]storedMessage, 0, len(snap.Messages)),
	}
	for _, msg := range snap.Messages {
		rec.Messages = append(rec.Messages, storedMessage{
			ID:          msg.ID,
			Role:        string(msg.Role),
			Content:     msg.Content,
			Timestamp:   msg.Timestamp,
			Personality: msg.Personality,
		})
	}

	// Preserve the original creation time across re-saves.
	rec.CreatedAt = rec.UpdatedAt
	if prev, err := s.readRecord(clean); err == nil && !prev.CreatedAt.IsZero() {
		rec.CreatedAt = prev.CreatedAt
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", &PersistenceError{Op: "create sessions dir", Path: s.Dir, Err: err}
	}

	path := s.filePath(clean)
	s.markOwn(clean)
	if err := util.AtomicWriteFile(path, data, 0o644); err != nil {
		return "", &PersistenceError{Op: "write session", Path: path, Err: err}
	}
	return clean, nil
}

// =============================================================================
// LOAD
// =============================================================================

// Load retrieves a session by name. The returned snapshot can be fed to
// model.Conversation.Restore; the string is the sanitized session name.
func (s *Store) Load(name string) (model.Snapshot, string, error) {
	clean, err := SanitizeName(name)
	if err != nil {
		return model.Snapshot{}, "", err
	}

	rec, err := s.readRecord(clean)
	if err != nil {
		return model.Snapshot{}, "", err
	}

	snap := model.Snapshot{
		Model:        rec.Model,
		Personality:  rec.Personality,
		MaxTokens:    rec.MaxTokens,
		SystemSuffix: rec.SystemSuffix,
		Messages:     make([]model.Message, 0, len(rec.Messages)),
	}
	for _, m := range rec.Messages {
		snap.Messages = append(snap.Messages, model.Message{
			ID:          m.ID,
			Role:        model.Role(m.Role),
			Content:     m.Content,
			Timestamp:   m.Timestamp,
			Personality: m.Personality,
		})
	}
	return snap, clean, nil
}

func (s *Store) readRecord(clean string) (*sessionRecord, error) {
	path := s.filePath(clean)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSessionNotFound
		}
		return nil, &PersistenceError{Op: "read session", Path: path, Err: err}
	}

	var rec sessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptSession, path, err)
	}
	if rec.Format > formatVersion {
		return nil, fmt.Errorf("%w: %s: unsupported format %d", ErrCorruptSession, path, rec.Format)
	}
	return &rec, nil
}

// =============================================================================
// LIST
// =============================================================================

// List returns metadata for all saved sessions, sorted by name. A missing
// store directory is treated as an empty store. Unreadable files are skipped.
func (s *Store) List() ([]SessionInfo, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []SessionInfo{}, nil
		}
		return nil, &PersistenceError{Op: "list sessions", Path: s.Dir, Err: err}
	}

	infos := make([]SessionInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".json")

		rec, err := s.readRecord(name)
		if err != nil {
			continue
		}

		preview := ""
		for _, m := range rec.Messages {
			if m.Role == string(model.RoleUser) && m.Content != "" {
				preview = util.Truncate(strings.ReplaceAll(m.Content, "\n", " "), 60)
				break
			}
		}

		infos = append(infos, SessionInfo{
			Name:         name,
			Model:        rec.Model,
			Personality:  rec.Personality,
			MessageCount: len(rec.Messages),
			UpdatedAt:    rec.UpdatedAt,
			Preview:      preview,
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})
	return infos, nil
}

// Exists reports whether a session with the given name is on disk.
func (s *Store) Exists(name string) bool {
	clean, err := SanitizeName(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(s.filePath(clean))
	return err == nil
}

// =============================================================================
// DELETE / RENAME
// =============================================================================

// Delete removes a session by name. Deleting a session that does not exist
// returns ErrSessionNotFound.
func (s *Store) Delete(name string) error {
	clean, err := SanitizeName(name)
	if err != nil {
		return err
	}

	path := s.filePath(clean)
	s.markOwn(clean)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return ErrSessionNotFound
		}
		return &PersistenceError{Op: "delete session", Path: path, Err: err}
	}
	return nil
}

// Rename moves a session to a new name and returns the sanitized target
// name. Renaming over an existing session is refused.
func (s *Store) Rename(oldName, newName string) (string, error) {
	oldClean, err := SanitizeName(oldName)
	if err != nil {
		return "", err
	}
	newClean, err := SanitizeName(newName)
	if err != nil {
		return "", err
	}
	if oldClean == newClean {
		return newClean, nil
	}

	if _, err := os.Stat(s.filePath(oldClean)); err != nil {
		if os.IsNotExist(err) {
			return "", ErrSessionNotFound
		}
		return "", &PersistenceError{Op: "stat session", Path: s.filePath(oldClean), Err: err}
	}
	if s.Exists(newClean) {
		return "", ErrSessionExists
	}

	// Rewrite rather than plain-rename so the embedded name stays current.
	rec, err := s.readRecord(oldClean)
	if err != nil {
		return "", err
	}
	rec.Name = newClean
	rec.UpdatedAt = time.Now()

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", err
	}
	newPath := s.filePath(newClean)
	s.markOwn(oldClean)
	s.markOwn(newClean)
	if err := util.AtomicWriteFile(newPath, data, 0o644); err != nil {
		return "", &PersistenceError{Op: "write session", Path: newPath, Err: err}
	}
	if err := os.Remove(s.filePath(oldClean)); err != nil {
		return "", &PersistenceError{Op: "delete session", Path: s.filePath(oldClean), Err: err}
	}
	return newClean, nil
}
