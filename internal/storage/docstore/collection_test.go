package docstore

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stockroomhq/stockroom-backend/internal/storage"
	"github.com/stockroomhq/stockroom-backend/internal/storage/storagetest"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
)

func TestCollectionContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Collection {
		return NewCollection(newMockCmdable(), "test", "products", time.Second, nil)
	})
}

func TestHashKeyIsNamespaced(t *testing.T) {
	t.Parallel()

	mock := newMockCmdable()
	col := NewCollection(mock, "stockroom", "products", time.Second, nil)

	if _, err := col.InsertOne(context.Background(), storage.Record{"name": "Widget"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, ok := mock.hashes["stockroom:products"]; !ok {
		t.Fatalf("expected documents under stockroom:products, got %v", keysOf(mock.hashes))
	}
}

func TestFindDegradesToEmptyOnReadFailure(t *testing.T) {
	t.Parallel()

	mock := newMockCmdable()
	mock.failNext = errors.New("connection refused")
	col := NewCollection(mock, "test", "products", time.Second, nil)

	recs, err := col.Find(context.Background(), nil)
	if err != nil {
		t.Fatalf("reads must not surface store errors: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("expected empty result, got %d records", len(recs))
	}

	mock.failNext = errors.New("connection refused")
	n, err := col.Count(context.Background(), nil)
	if err != nil || n != 0 {
		t.Fatalf("count should degrade to zero, got n=%d err=%v", n, err)
	}
}

func TestLookupsSurfaceConnectionFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mock := newMockCmdable()
	col := NewCollection(mock, "test", "products", time.Second, nil)

	seeded, err := col.InsertOne(ctx, storage.Record{"name": "Widget"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	// An existing record must not read as absent while the store is down.
	mock.failNext = errors.New("connection refused")
	rec, err := col.FindByID(ctx, storage.RecordID(seeded))
	if !pkgerrors.HasCode(err, pkgerrors.CodeConnection) {
		t.Fatalf("expected CONNECTION_FAILURE from FindByID, got rec=%v err=%v", rec, err)
	}

	mock.failNext = errors.New("connection refused")
	rec, err = col.FindOne(ctx, storage.Query{"name": "Widget"})
	if !pkgerrors.HasCode(err, pkgerrors.CodeConnection) {
		t.Fatalf("expected CONNECTION_FAILURE from FindOne, got rec=%v err=%v", rec, err)
	}
}

func TestWritesFailStrictly(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mock := newMockCmdable()
	col := NewCollection(mock, "test", "products", time.Second, nil)

	seeded, err := col.InsertOne(ctx, storage.Record{"name": "Widget"})
	if err != nil {
		t.Fatalf("seed insert: %v", err)
	}
	id := storage.RecordID(seeded)

	mock.failNext = errors.New("connection refused")
	if _, err := col.InsertOne(ctx, storage.Record{"name": "Gadget"}); !pkgerrors.HasCode(err, pkgerrors.CodeInsert) {
		t.Fatalf("expected INSERT_FAILURE, got %v", err)
	}

	mock.failNext = errors.New("connection refused")
	if _, err := col.UpdateOne(ctx, id, storage.Patch{"stock": 1}); !pkgerrors.HasCode(err, pkgerrors.CodeUpdate) {
		t.Fatalf("expected UPDATE_FAILURE, got %v", err)
	}

	mock.failNext = errors.New("connection refused")
	if _, err := col.DeleteOne(ctx, id); !pkgerrors.HasCode(err, pkgerrors.CodeDelete) {
		t.Fatalf("expected DELETE_FAILURE, got %v", err)
	}
}

func TestDocumentsStoreNativeKey(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mock := newMockCmdable()
	col := NewCollection(mock, "test", "products", time.Second, nil)

	rec, err := col.InsertOne(ctx, storage.Record{"name": "Widget"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	id := storage.RecordID(rec)

	raw := mock.hashes["test:products"][id]
	if raw == "" {
		t.Fatal("document not stored under its id field")
	}
	if want := `"_id":"` + id + `"`; !strings.Contains(raw, want) {
		t.Fatalf("stored document should carry _id, got %s", raw)
	}
	if strings.Contains(raw, `"id":"`) {
		t.Fatalf("stored document must not carry the public id key: %s", raw)
	}
}

func TestFindOrdersByID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mock := newMockCmdable()
	col := NewCollection(mock, "test", "products", time.Second, nil)

	want := make([]string, 0, 3)
	for _, name := range []string{"Widget", "Gadget", "Sprocket"} {
		rec, err := col.InsertOne(ctx, storage.Record{"name": name})
		if err != nil {
			t.Fatalf("insert %s: %v", name, err)
		}
		want = append(want, storage.RecordID(rec))
	}
	sort.Strings(want)

	recs, err := col.Find(ctx, nil)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	got := make([]string, 0, len(recs))
	for _, rec := range recs {
		got = append(got, storage.RecordID(rec))
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d records, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected records ordered by id, got %v want %v", got, want)
		}
	}
}

func keysOf(m map[string]map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// mockCmdable is a map-backed stand-in for the Redis hash commands. Setting
// failNext makes the next command return that error.
type mockCmdable struct {
	hashes   map[string]map[string]string
	failNext error
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{hashes: make(map[string]map[string]string)}
}

func (m *mockCmdable) takeErr() error {
	err := m.failNext
	m.failNext = nil
	return err
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", m.takeErr())
}

func (m *mockCmdable) HSet(ctx context.Context, key string, values ...any) *redis.IntCmd {
	if err := m.takeErr(); err != nil {
		return redis.NewIntResult(0, err)
	}
	hash, ok := m.hashes[key]
	if !ok {
		hash = make(map[string]string)
		m.hashes[key] = hash
	}
	var added int64
	for i := 0; i+1 < len(values); i += 2 {
		field := values[i].(string)
		if _, exists := hash[field]; !exists {
			added++
		}
		switch v := values[i+1].(type) {
		case string:
			hash[field] = v
		case []byte:
			hash[field] = string(v)
		default:
			hash[field] = ""
		}
	}
	return redis.NewIntResult(added, nil)
}

func (m *mockCmdable) HGet(ctx context.Context, key, field string) *redis.StringCmd {
	if err := m.takeErr(); err != nil {
		return redis.NewStringResult("", err)
	}
	val, ok := m.hashes[key][field]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(val, nil)
}

func (m *mockCmdable) HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd {
	if err := m.takeErr(); err != nil {
		return redis.NewMapStringStringResult(nil, err)
	}
	out := make(map[string]string, len(m.hashes[key]))
	for field, val := range m.hashes[key] {
		out[field] = val
	}
	return redis.NewMapStringStringResult(out, nil)
}

func (m *mockCmdable) HDel(ctx context.Context, key string, fields ...string) *redis.IntCmd {
	if err := m.takeErr(); err != nil {
		return redis.NewIntResult(0, err)
	}
	var removed int64
	for _, field := range fields {
		if _, ok := m.hashes[key][field]; ok {
			delete(m.hashes[key], field)
			removed++
		}
	}
	return redis.NewIntResult(removed, nil)
}

func (m *mockCmdable) HLen(ctx context.Context, key string) *redis.IntCmd {
	if err := m.takeErr(); err != nil {
		return redis.NewIntResult(0, err)
	}
	return redis.NewIntResult(int64(len(m.hashes[key])), nil)
}
