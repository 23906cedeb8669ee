// Package store owns the per-conversation favorites collection.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/uhhhh15/starmark/internal/host"
	"github.com/uhhhh15/starmark/internal/types"
)

// ErrNotFound is returned when no favorite matches the given id.
var ErrNotFound = errors.New("favorite not found")

// Store provides CRUD over the favorites array inside the live
// conversation's metadata. All mutations schedule a debounced save
// through the host and never wait for persistence.
type Store struct {
	host    host.Host
	refresh func()
	debug   bool
}

// New creates a store bound to a host.
func New(h host.Host) *Store {
	return &Store{host: h}
}

// SetRefresh registers a hook invoked after every mutation, used by
// the panel to re-render while open.
func (s *Store) SetRefresh(fn func()) {
	s.refresh = fn
}

// SetDebug enables stderr diagnostics.
func (s *Store) SetDebug(v bool) {
	s.debug = v
}

// Collection returns the live conversation's favorites array, lazily
// initializing it to empty if the metadata lacks one.
func (s *Store) Collection() ([]types.FavoriteRecord, error) {
	meta, err := s.host.Meta()
	if err != nil {
		s.debugf("collection unavailable: %v", err)
		return nil, err
	}
	if meta.Favorites == nil {
		meta.Favorites = []types.FavoriteRecord{}
	}
	return meta.Favorites, nil
}

// Add appends a new favorite with a fresh id and empty note.
func (s *Store) Add(messageID, sender string, role types.Role) (*types.FavoriteRecord, error) {
	meta, err := s.host.Meta()
	if err != nil {
		s.debugf("add failed: %v", err)
		return nil, err
	}
	rec := types.FavoriteRecord{
		ID:        uuid.New().String(),
		MessageID: messageID,
		Sender:    sender,
		Role:      role,
	}
	meta.Favorites = append(meta.Favorites, rec)
	s.changed()
	return &rec, nil
}

// RemoveByID removes the matching record and reports whether removal
// occurred.
func (s *Store) RemoveByID(id string) bool {
	meta, err := s.host.Meta()
	if err != nil {
		s.debugf("remove failed: %v", err)
		return false
	}
	for i, rec := range meta.Favorites {
		if rec.ID == id {
			meta.Favorites = append(meta.Favorites[:i], meta.Favorites[i+1:]...)
			s.changed()
			return true
		}
	}
	return false
}

// RemoveByMessageID removes the first record referencing the message.
func (s *Store) RemoveByMessageID(messageID string) bool {
	meta, err := s.host.Meta()
	if err != nil {
		s.debugf("remove failed: %v", err)
		return false
	}
	for _, rec := range meta.Favorites {
		if rec.MessageID == messageID {
			return s.RemoveByID(rec.ID)
		}
	}
	return false
}

// ByMessageID returns the first record referencing the message.
func (s *Store) ByMessageID(messageID string) (*types.FavoriteRecord, bool) {
	meta, err := s.host.Meta()
	if err != nil {
		return nil, false
	}
	for i := range meta.Favorites {
		if meta.Favorites[i].MessageID == messageID {
			return &meta.Favorites[i], true
		}
	}
	return nil, false
}

// UpdateNote sets the note on the matching record.
func (s *Store) UpdateNote(id, text string) error {
	meta, err := s.host.Meta()
	if err != nil {
		s.debugf("note update failed: %v", err)
		return err
	}
	for i := range meta.Favorites {
		if meta.Favorites[i].ID == id {
			meta.Favorites[i].Note = text
			s.changed()
			return nil
		}
	}
	s.debugf("note update: no favorite with id %s", id)
	return ErrNotFound
}

// PruneInvalid drops records whose message index no longer resolves to
// a live message and returns how many were removed. Records with
// non-numeric indices are dropped too.
func (s *Store) PruneInvalid(liveCount int, exists func(index int) bool) (int, error) {
	meta, err := s.host.Meta()
	if err != nil {
		s.debugf("prune failed: %v", err)
		return 0, err
	}
	valid := meta.Favorites[:0:0]
	removed := 0
	for _, rec := range meta.Favorites {
		idx, convErr := strconv.Atoi(rec.MessageID)
		if convErr != nil || idx < 0 || idx >= liveCount || !exists(idx) {
			removed++
			continue
		}
		valid = append(valid, rec)
	}
	if removed > 0 {
		meta.Favorites = valid
		s.changed()
	}
	return removed, nil
}

// HandleMessageDeleted removes records referencing exactly the deleted
// index. Surviving records keep their original indices; the positional
// reference of favorites after the deleted one now points at shifted
// messages, which PruneInvalid cannot detect. That drift matches the
// positional-id model and is cleaned up only by explicit prune.
func (s *Store) HandleMessageDeleted(index int) int {
	meta, err := s.host.Meta()
	if err != nil {
		s.debugf("deletion reaction failed: %v", err)
		return 0
	}
	target := strconv.Itoa(index)
	kept := meta.Favorites[:0:0]
	removed := 0
	for _, rec := range meta.Favorites {
		if rec.MessageID == target {
			removed++
			continue
		}
		kept = append(kept, rec)
	}
	if removed > 0 {
		meta.Favorites = kept
		s.changed()
	}
	return removed
}

// Listen consumes host lifecycle signals until ctx is cancelled,
// self-pruning on message deletion.
func (s *Store) Listen(ctx context.Context, bus *host.Bus) {
	events, cancel := bus.Subscribe()
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Type == host.EventMessageDeleted {
				s.HandleMessageDeleted(ev.Index)
			}
		}
	}
}

func (s *Store) changed() {
	s.host.SaveDebounced()
	if s.refresh != nil {
		s.refresh()
	}
}

func (s *Store) debugf(format string, args ...any) {
	if s.debug {
		fmt.Fprintf(os.Stderr, "[store] "+format+"\n", args...)
	}
}
