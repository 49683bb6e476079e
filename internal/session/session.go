// Package session ties the block list, its persistence, the sanitizer and the
// preview fetcher together the way an interactive front end drives them.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/law-makers/linkclean/internal/preview"
	"github.com/law-makers/linkclean/internal/sanitize"
	"github.com/law-makers/linkclean/pkg/models"
)

// Persister loads, saves and clears the full block list
type Persister interface {
	Load() (sanitize.BlockList, error)
	Save(list sanitize.BlockList) error
	Clear() error
}

// ErrStale is returned by Preview when a newer input or block list change
// superseded the request before it finished
var ErrStale = errors.New("preview superseded by a newer request")

// ParamError reports a block-list change that was refused for one name
type ParamError struct {
	Name string
	Err  error
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%q: %v", e.Name, e.Err)
}

func (e *ParamError) Unwrap() error {
	return e.Err
}

// Session holds the current input, its sanitized form and the block list
type Session struct {
	mu      sync.Mutex
	blocked sanitize.BlockList
	store   Persister
	fetcher preview.Fetcher
	tracker preview.Tracker

	input  string
	result models.SanitizeResult
}

// New loads the block list from store. A missing or unreadable list falls
// back to the defaults; store may be nil for an in-memory session.
func New(store Persister, fetcher preview.Fetcher) *Session {
	s := &Session{store: store, fetcher: fetcher}
	if store == nil {
		s.blocked = sanitize.DefaultBlockList()
		return s
	}

	list, err := store.Load()
	if err != nil {
		log.Warn().Err(err).Msg("Could not load saved tracking parameters, using defaults")
		list = sanitize.DefaultBlockList()
	}
	s.blocked = list
	return s
}

// Update sanitizes input against the current block list. Any preview still
// in flight for the previous input becomes stale.
func (s *Session) Update(input string) models.SanitizeResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.input = input
	s.resanitizeLocked()
	return s.result
}

// Result returns the latest sanitize result
func (s *Session) Result() models.SanitizeResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Params returns the blocked names sorted for display
func (s *Session) Params() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blocked.Sorted()
}

// BlockList returns a snapshot of the current list
func (s *Session) BlockList() sanitize.BlockList {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blocked.Clone()
}

// AddParams adds each name to the block list, persists it and re-sanitizes.
// Names already present are reported through the returned error but do not
// stop the others from being added.
func (s *Session) AddParams(names ...string) (models.SanitizeResult, []string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var added []string
	var errs []error
	for _, name := range names {
		normalized, err := s.blocked.Add(name)
		if err != nil {
			errs = append(errs, &ParamError{Name: sanitize.NormalizeParam(name), Err: err})
			continue
		}
		added = append(added, normalized)
	}

	if len(added) > 0 {
		if err := s.persistLocked(); err != nil {
			errs = append(errs, err)
		}
	}
	s.resanitizeLocked()
	return s.result, added, errors.Join(errs...)
}

// RemoveParams removes each name from the block list, persists it and
// re-sanitizes. It returns the names that were actually present.
func (s *Session) RemoveParams(names ...string) (models.SanitizeResult, []string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []string
	for _, name := range names {
		normalized := sanitize.NormalizeParam(name)
		if s.blocked.Remove(normalized) {
			removed = append(removed, normalized)
		}
	}

	var err error
	if len(removed) > 0 {
		err = s.persistLocked()
	}
	s.resanitizeLocked()
	return s.result, removed, err
}

// ResetParams restores the default list, persists it and re-sanitizes
func (s *Session) ResetParams() (models.SanitizeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.blocked.Reset()
	err := s.persistLocked()
	s.resanitizeLocked()
	return s.result, err
}

// ClearParams deletes the saved list so the defaults apply, including in
// later sessions, and re-sanitizes
func (s *Session) ClearParams() (models.SanitizeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.blocked.Reset()
	var err error
	if s.store != nil {
		if err = s.store.Clear(); err != nil {
			log.Error().Err(err).Msg("Failed to clear saved tracking parameters")
			err = fmt.Errorf("failed to clear tracking parameters: %w", err)
		}
	}
	s.resanitizeLocked()
	return s.result, err
}

// Preview fetches a preview for the current cleaned URL. It returns false
// when there is nothing to preview (empty input or a sanitize error) and
// ErrStale when a newer Update, Preview or block-list change happened before
// this one finished.
func (s *Session) Preview(ctx context.Context) (models.PreviewResult, bool, error) {
	s.mu.Lock()
	result := s.result
	if s.fetcher == nil || !result.OK() {
		s.mu.Unlock()
		return models.PreviewResult{}, false, nil
	}
	ctx, ticket := s.tracker.Begin(ctx)
	s.mu.Unlock()
	defer ticket.Done()

	res := s.fetcher.Fetch(ctx, result.CleanedURL)
	if !ticket.Current() {
		log.Debug().Str("url", result.CleanedURL).Msg("Discarding stale preview")
		return models.PreviewResult{}, false, ErrStale
	}
	return res, true, nil
}

// resanitizeLocked recomputes the result after the input or the block list
// changed. Previews still in flight for the old result become stale.
// must be called with lock held
func (s *Session) resanitizeLocked() {
	s.tracker.Invalidate()
	if strings.TrimSpace(s.input) == "" {
		s.result = models.SanitizeResult{}
		return
	}
	s.result = sanitize.Sanitize(s.input, s.blocked)
}

// must be called with lock held
func (s *Session) persistLocked() error {
	if s.store == nil {
		return nil
	}
	if err := s.store.Save(s.blocked); err != nil {
		log.Error().Err(err).Msg("Failed to save tracking parameters")
		return fmt.Errorf("failed to save tracking parameters: %w", err)
	}
	return nil
}
