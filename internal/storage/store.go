// Package storage persists room metadata and recent history as two JSON
// documents behind a pluggable backend.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/mmuslimabdulj/goat-rooms/internal/domain"
)

// Document names shared by every backend
const (
	HistoryDocument = "messages"
	RoomsDocument   = "rooms"
)

// ErrNotFound is returned by a backend when a document has never been written
var ErrNotFound = errors.New("document not found")

// Backend reads and writes raw documents
type Backend interface {
	Read(ctx context.Context, name string) ([]byte, error)
	// Write stores every document or none of them
	Write(ctx context.Context, docs map[string][]byte) error
	Close() error
}

// Store encodes snapshots into documents
type Store struct {
	backend Backend
	driver  string
}

// New wraps a backend
func New(driver string, backend Backend) *Store {
	return &Store{backend: backend, driver: driver}
}

// Driver names the backend in use
func (s *Store) Driver() string {
	return s.driver
}

// Load reads both documents. A missing or unparsable document is logged,
// treated as empty and rewritten empty so later loads are clean.
func (s *Store) Load(ctx context.Context) (*domain.Snapshot, error) {
	snap := domain.NewSnapshot()
	reinit := make(map[string][]byte)

	docs := map[string]any{
		HistoryDocument: &snap.History,
		RoomsDocument:   &snap.Rooms,
	}
	for _, name := range sortedNames(docs) {
		ok, err := s.load(ctx, name, docs[name])
		if err != nil {
			return nil, err
		}
		if !ok {
			reinit[name] = []byte("{}")
		}
	}

	// Drop partial decodes, and a literal null that decoded to a nil map
	if _, bad := reinit[HistoryDocument]; bad || snap.History == nil {
		snap.History = make(domain.HistoryDocument)
	}
	if _, bad := reinit[RoomsDocument]; bad || snap.Rooms == nil {
		snap.Rooms = make(domain.RoomsDocument)
	}

	if len(reinit) > 0 {
		if err := s.backend.Write(ctx, reinit); err != nil {
			log.Printf("[storage] re-initializing documents failed: %v", err)
		}
	}
	return snap, nil
}

// load decodes one document into dest. It reports false when the document
// had to be treated as empty.
func (s *Store) load(ctx context.Context, name string, dest any) (bool, error) {
	data, err := s.backend.Read(ctx, name)
	switch {
	case errors.Is(err, ErrNotFound):
		log.Printf("[storage] %s document missing, starting empty", name)
		return false, nil
	case err != nil:
		return false, fmt.Errorf("read %s: %w", name, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		log.Printf("[storage] %s document unreadable, starting empty: %v", name, err)
		return false, nil
	}
	return true, nil
}

// Save writes both documents
func (s *Store) Save(ctx context.Context, snap *domain.Snapshot) error {
	history, err := json.Marshal(snap.History)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	rooms, err := json.Marshal(snap.Rooms)
	if err != nil {
		return fmt.Errorf("encode rooms: %w", err)
	}

	if err := s.backend.Write(ctx, map[string][]byte{
		HistoryDocument: history,
		RoomsDocument:   rooms,
	}); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Close releases the backend
func (s *Store) Close() error {
	return s.backend.Close()
}

func sortedNames[V any](docs map[string]V) []string {
	names := make([]string, 0, len(docs))
	for name := range docs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
