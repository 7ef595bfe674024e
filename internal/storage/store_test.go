package storage

import (
	"context"
	"testing"
	"time"

	"github.com/mmuslimabdulj/goat-rooms/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot() *domain.Snapshot {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	snap := domain.NewSnapshot()
	snap.Rooms["general"] = domain.RoomRecord{DisplayName: "General", CreatorID: domain.SystemAuthorID, CreatedAt: created}
	snap.Rooms["vault"] = domain.RoomRecord{DisplayName: "Vault", PasswordHash: "$2a$04$hash", CreatorID: "conn-1", CreatedAt: created}
	snap.History["general"] = []*domain.Message{
		{ID: "0000000000001-0000-aaaaaaaa", RoomID: "general", AuthorID: "conn-1", AuthorName: "ana", Kind: domain.MessageKindText, Text: "hi", Timestamp: created},
		{ID: "0000000000002-0000-bbbbbbbb", RoomID: "general", AuthorID: "conn-1", AuthorName: "ana", Kind: domain.MessageKindFile,
			File: &domain.FilePayload{FileName: "a.txt", FileType: "text/plain", Blob: "data:text/plain;base64,aGk="}, Timestamp: created},
	}
	return snap
}

// exerciseRoundTrip checks any backend: empty load, save, load again
func exerciseRoundTrip(t *testing.T, store *Store) {
	t.Helper()
	ctx := context.Background()

	empty, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty.History)
	assert.Empty(t, empty.Rooms)

	want := sampleSnapshot()
	require.NoError(t, store.Save(ctx, want))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Rooms, 2)
	assert.Equal(t, want.Rooms["vault"].PasswordHash, got.Rooms["vault"].PasswordHash)
	assert.True(t, want.Rooms["general"].CreatedAt.Equal(got.Rooms["general"].CreatedAt))

	require.Len(t, got.History["general"], 2)
	assert.Equal(t, "hi", got.History["general"][0].Text)
	require.NotNil(t, got.History["general"][1].File)
	assert.Equal(t, "a.txt", got.History["general"][1].File.FileName)
}

// memoryBackend is an in-process Backend for store-level tests
type memoryBackend struct {
	docs   map[string][]byte
	writes int
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{docs: make(map[string][]byte)}
}

func (m *memoryBackend) Read(_ context.Context, name string) ([]byte, error) {
	data, ok := m.docs[name]
	if !ok {
		return nil, ErrNotFound
	}
	return data, nil
}

func (m *memoryBackend) Write(_ context.Context, docs map[string][]byte) error {
	m.writes++
	for name, data := range docs {
		m.docs[name] = data
	}
	return nil
}

func (m *memoryBackend) Close() error { return nil }

func TestStore_RoundTrip(t *testing.T) {
	exerciseRoundTrip(t, New("memory", newMemoryBackend()))
}

func TestStore_MissingDocumentsAreInitialized(t *testing.T) {
	backend := newMemoryBackend()
	store := New("memory", backend)

	_, err := store.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "{}", string(backend.docs[HistoryDocument]))
	assert.Equal(t, "{}", string(backend.docs[RoomsDocument]))
}

func TestStore_CorruptDocumentIsIndependent(t *testing.T) {
	backend := newMemoryBackend()
	store := New("memory", backend)
	require.NoError(t, store.Save(context.Background(), sampleSnapshot()))

	backend.docs[RoomsDocument] = []byte(`{"vault": [not json`)
	writes := backend.writes

	snap, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Rooms, "corrupt rooms document should load empty")
	assert.Len(t, snap.History["general"], 2, "history should survive a corrupt rooms document")

	assert.Equal(t, writes+1, backend.writes)
	assert.Equal(t, "{}", string(backend.docs[RoomsDocument]))
}

func TestStore_WrongShapeLoadsEmpty(t *testing.T) {
	backend := newMemoryBackend()
	backend.docs[HistoryDocument] = []byte(`{"general": "nope"}`)
	backend.docs[RoomsDocument] = []byte(`null`)

	snap, err := New("memory", backend).Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, snap.History)
	assert.Empty(t, snap.History)
	assert.NotNil(t, snap.Rooms)
}
