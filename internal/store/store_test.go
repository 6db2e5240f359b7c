package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "clario.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestAutoMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	for _, table := range []string{kvTable, eventsTable, "global_sequence"} {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Fatalf("query sqlite_master for %s: %v", table, err)
		}
		if name != table {
			t.Errorf("table name = %q, want %q", name, table)
		}
	}
}

func TestMigrate_IdempotentWithIndexesAndDefaults(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()
	ctx := context.Background()

	if err := migrate(ctx, db); err != nil {
		t.Fatalf("second migrate: %v", err)
	}

	for _, idx := range []string{"session_events_session_id", "session_events_timestamp"} {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='index' AND name=?", idx,
		).Scan(&name)
		if err != nil {
			t.Fatalf("index %s: %v", idx, err)
		}
	}

	// Optional event columns fall back to their defaults.
	if _, err := db.Exec(
		"INSERT INTO session_events (sequence, timestamp, session_id, action) VALUES (1, 0, 's', 'start')",
	); err != nil {
		t.Fatalf("insert event: %v", err)
	}
	var (
		stream, questionID string
		answers            int
	)
	err := db.QueryRow("SELECT stream, question_id, answers FROM session_events WHERE sequence = 1").
		Scan(&stream, &questionID, &answers)
	if err != nil {
		t.Fatalf("read event: %v", err)
	}
	if stream != "" || questionID != "" || answers != 0 {
		t.Errorf("defaults = (%q, %q, %d), want empty", stream, questionID, answers)
	}

	// Sequence numbers are unique and the KV key is the primary key.
	if _, err := db.Exec(
		"INSERT INTO session_events (sequence, timestamp, session_id, action) VALUES (1, 0, 's', 'answer')",
	); err == nil {
		t.Error("expected duplicate sequence to be rejected")
	}
	if _, err := db.Exec("INSERT INTO kv_entries (key, value, updated_at) VALUES ('k', x'00', 0)"); err != nil {
		t.Fatalf("insert kv: %v", err)
	}
	if _, err := db.Exec("INSERT INTO kv_entries (key, value, updated_at) VALUES ('k', x'01', 0)"); err == nil {
		t.Error("expected duplicate key to be rejected")
	}
}

func TestOpenTwiceKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clario.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.KVRepo().Put(ctx, "clario_user_name", []byte(`"Ada"`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	got, ok, err := s.KVRepo().Get(ctx, "clario_user_name")
	if err != nil || !ok {
		t.Fatalf("get after reopen: ok=%v err=%v", ok, err)
	}
	if string(got) != `"Ada"` {
		t.Errorf("value = %s, want \"Ada\"", got)
	}
}

func TestKVRepo_PutGetOverwrite(t *testing.T) {
	s := openTestStore(t)
	repo := s.KVRepo()
	ctx := context.Background()

	if _, ok, err := repo.Get(ctx, "clario_assessment_answers"); err != nil || ok {
		t.Fatalf("get (empty): ok=%v err=%v", ok, err)
	}

	if err := repo.Put(ctx, "clario_assessment_answers", []byte(`[1]`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := repo.Put(ctx, "clario_assessment_answers", []byte(`[1,2]`)); err != nil {
		t.Fatalf("put overwrite: %v", err)
	}

	got, ok, err := repo.Get(ctx, "clario_assessment_answers")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if string(got) != `[1,2]` {
		t.Errorf("value = %s, want [1,2]", got)
	}

	var count int
	if err := s.DB().QueryRow("SELECT COUNT(*) FROM kv_entries").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("rows = %d, want 1", count)
	}
}

func TestKVRepo_UpdatedAt(t *testing.T) {
	s := openTestStore(t)
	repo := s.KVRepo()
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	repo.now = func() time.Time { return at }
	ctx := context.Background()

	if err := repo.Put(ctx, "k", []byte("1")); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, ok, err := repo.UpdatedAt(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("updated at: ok=%v err=%v", ok, err)
	}
	if !got.Equal(at) {
		t.Errorf("updated at = %v, want %v", got, at)
	}
}

func TestKVRepo_DeleteAndDeleteAll(t *testing.T) {
	s := openTestStore(t)
	repo := s.KVRepo()
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		if err := repo.Put(ctx, k, []byte(k)); err != nil {
			t.Fatalf("put %s: %v", k, err)
		}
	}

	if err := repo.Delete(ctx, "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, "missing"); err != nil {
		t.Fatalf("delete missing key should be a no-op: %v", err)
	}
	if _, ok, _ := repo.Get(ctx, "a"); ok {
		t.Error("expected a to be deleted")
	}
	if _, ok, _ := repo.Get(ctx, "b"); !ok {
		t.Error("expected b to survive")
	}

	if err := repo.DeleteAll(ctx); err != nil {
		t.Fatalf("delete all: %v", err)
	}
	for _, k := range []string{"b", "c"} {
		if _, ok, _ := repo.Get(ctx, k); ok {
			t.Errorf("expected %s to be deleted", k)
		}
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()
	ctx := context.Background()

	sc, err := newSequenceCounter(db)
	if err != nil {
		t.Fatalf("new sequence counter: %v", err)
	}

	var seqs []int64
	for i := 0; i < 5; i++ {
		seq, err := sc.Next(ctx)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		seqs = append(seqs, seq)
	}

	// Should be monotonically increasing starting from 1.
	for i, seq := range seqs {
		expected := int64(i + 1)
		if seq != expected {
			t.Errorf("seq[%d] = %d, want %d", i, seq, expected)
		}
	}
}

func TestSessionEvents_AppendAndQuery(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []SessionEventData{
		{SessionID: "s1", Action: "start", Stream: "Science"},
		{SessionID: "s1", Action: "answer", Stream: "Science", QuestionID: "SCI_Q1", Answers: 1},
		{SessionID: "s1", Action: "submit", Stream: "Science", Answers: 1},
		{SessionID: "s2", Action: "start", Stream: "Arts"},
	}
	for i, e := range events {
		if err := repo.AppendSessionEvent(ctx, e); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	all, err := repo.QuerySessionEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("len = %d, want 4", len(all))
	}
	// Newest first.
	if all[0].SessionID != "s2" || all[0].Action != "start" {
		t.Errorf("first = %+v, want s2 start", all[0])
	}
	for i := 1; i < len(all); i++ {
		if all[i].Sequence >= all[i-1].Sequence {
			t.Errorf("sequence not descending at %d: %d >= %d", i, all[i].Sequence, all[i-1].Sequence)
		}
	}
	if all[2].QuestionID != "SCI_Q1" || all[2].Answers != 1 {
		t.Errorf("answer event = %+v", all[2])
	}

	limited, err := repo.QuerySessionEvents(ctx, QueryOpts{Limit: 2, SessionID: "s1"})
	if err != nil {
		t.Fatalf("query limited: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("len = %d, want 2", len(limited))
	}
	if limited[0].Action != "submit" {
		t.Errorf("newest s1 action = %q, want submit", limited[0].Action)
	}

	after, err := repo.QuerySessionEvents(ctx, QueryOpts{After: all[1].Sequence})
	if err != nil {
		t.Fatalf("query after: %v", err)
	}
	if len(after) != 1 || after[0].SessionID != "s2" {
		t.Errorf("after = %+v, want only the s2 event", after)
	}
}

func TestSessionEvents_TimeWindow(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo().(*eventRepo)
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		at := base.Add(time.Duration(i) * time.Hour)
		repo.now = func() time.Time { return at }
		if err := repo.AppendSessionEvent(ctx, SessionEventData{SessionID: "s", Action: "answer"}); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	got, err := repo.QuerySessionEvents(ctx, QueryOpts{From: base.Add(30 * time.Minute), To: base.Add(90 * time.Minute)})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if !got[0].Timestamp.Equal(base.Add(time.Hour)) {
		t.Errorf("timestamp = %v, want %v", got[0].Timestamp, base.Add(time.Hour))
	}
}

func TestSessionEvents_RequireIDAndAction(t *testing.T) {
	s := openTestStore(t)
	err := s.EventRepo().AppendSessionEvent(context.Background(), SessionEventData{Action: "start"})
	if err == nil {
		t.Fatal("expected error for missing session id, got nil")
	}
}

func TestDefaultDBPath_EnvOverride(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "custom.db")
	t.Setenv("CLARIO_DB", p)

	got, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("DefaultDBPath: %v", err)
	}
	if got != p {
		t.Errorf("path = %q, want %q", got, p)
	}
	if _, err := os.Stat(filepath.Dir(p)); err != nil {
		t.Errorf("parent dir not created: %v", err)
	}
}

func TestDefaultDBPath_XDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CLARIO_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)

	got, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("DefaultDBPath: %v", err)
	}
	want := filepath.Join(dir, "clario", "clario.db")
	if got != want {
		t.Errorf("path = %q, want %q", got, want)
	}
	if BadgerDir(got) != filepath.Join(dir, "clario", "badger") {
		t.Errorf("badger dir = %q", BadgerDir(got))
	}
}
