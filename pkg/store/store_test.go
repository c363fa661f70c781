package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/codeGROOVE-dev/rolodex/pkg/person"
)

// memKV is an in-memory KV for tests. TTLs are recorded but not enforced.
type memKV struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
}

func newMemKV() *memKV {
	return &memKV{
		data: make(map[string][]byte),
		ttls: make(map[string]time.Duration),
	}
}

func (m *memKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.data[key]
	return data, ok, nil
}

func (m *memKV) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *memKV) Close() error { return nil }

func TestKey(t *testing.T) {
	tests := []struct {
		name string
		q    person.Query
		want string
	}{
		{
			name: "basic",
			q:    person.Query{FirstName: "Kelly", LastName: "O'Neill", Organization: "Mount Sinai"},
			want: "kelly|o'neill|mount sinai",
		},
		{
			name: "case and spacing normalized",
			q:    person.Query{FirstName: "  KELLY ", LastName: "O'Neill", Organization: "Mount   Sinai"},
			want: "kelly|o'neill|mount sinai",
		},
		{
			name: "no organization",
			q:    person.Query{FirstName: "John", LastName: "Smith"},
			want: "john|smith|",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Key(tt.q); got != tt.want {
				t.Errorf("Key() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	s := New(kv, WithTTL(time.Hour))

	q := person.Query{FirstName: "Kelly", LastName: "O'Neill", Organization: "Mount Sinai"}
	res := person.Result{
		URL:        "https://www.linkedin.com/in/kelly-oneill",
		Score:      88.5,
		Status:     person.StatusFound,
		ResolvedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	if _, found, err := s.Get(ctx, q); err != nil || found {
		t.Fatalf("Get() before Put = found %v, err %v", found, err)
	}

	if err := s.Put(ctx, q, res); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, found, err := s.Get(ctx, q)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found {
		t.Fatal("Get() after Put: not found")
	}
	if diff := cmp.Diff(res, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	if kv.ttls[Key(q)] != time.Hour {
		t.Errorf("entry TTL = %v, want 1h", kv.ttls[Key(q)])
	}
}

func TestStoreExpiry(t *testing.T) {
	ctx := context.Background()
	ttl := 50 * time.Millisecond

	kv, err := OpenKV(ctx, t.TempDir(), ttl)
	if err != nil {
		t.Fatalf("OpenKV() error = %v", err)
	}
	defer func() { _ = kv.Close() }() //nolint:errcheck // error ignored intentionally

	s := New(kv, WithTTL(ttl))
	q := person.Query{FirstName: "Kelly", LastName: "O'Neill", Organization: "Mount Sinai"}
	res := person.Result{
		URL:        "https://www.linkedin.com/in/kelly-oneill",
		Status:     person.StatusVerified,
		ResolvedAt: time.Now().UTC(),
	}

	if err := s.Put(ctx, q, res); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if _, found, err := s.Get(ctx, q); err != nil || !found {
		t.Fatalf("Get() before expiry = found %v, err %v", found, err)
	}

	time.Sleep(3 * ttl)

	_, found, err := s.Get(ctx, q)
	if err != nil {
		t.Fatalf("Get() after expiry error = %v", err)
	}
	if found {
		t.Error("entry older than its TTL must read as a miss")
	}
}

func TestStoreSkipsTransientOutcomes(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	s := New(kv)

	q := person.Query{FirstName: "John", LastName: "Smith"}

	for _, status := range []person.Status{person.StatusNotFound, person.StatusError} {
		if err := s.Put(ctx, q, person.Result{Status: status}); err != nil {
			t.Fatalf("Put(%s) error = %v", status, err)
		}
	}
	if len(kv.data) != 0 {
		t.Errorf("transient outcomes were cached: %d entries", len(kv.data))
	}

	// Review and rejection outcomes are terminal and do cache.
	if err := s.Put(ctx, q, person.Result{Status: person.StatusNeedsReview}); err != nil {
		t.Fatalf("Put(NeedsReview) error = %v", err)
	}
	if err := s.Put(ctx, q, person.Result{Status: person.StatusRejected}); err != nil {
		t.Fatalf("Put(Rejected) error = %v", err)
	}
	if len(kv.data) != 1 {
		t.Errorf("expected 1 entry (same key overwritten), got %d", len(kv.data))
	}
}

func TestStoreRejectsUnknownStatus(t *testing.T) {
	s := New(newMemKV())
	q := person.Query{FirstName: "John", LastName: "Smith"}
	if err := s.Put(context.Background(), q, person.Result{Status: "Bogus"}); err == nil {
		t.Error("Put() with unknown status should fail")
	}
}

func TestStoreCorruptEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	s := New(kv)

	q := person.Query{FirstName: "John", LastName: "Smith"}
	if err := kv.Set(ctx, Key(q), []byte("{not json"), time.Hour); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	_, found, err := s.Get(ctx, q)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Error("corrupt entry should read as a miss")
	}
}

func TestLearnerRecordAndRecommendations(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	l := NewLearner(kv, nil)

	records := []PatternRecord{
		{Strategy: "name+title+org", OrgFormat: "full", Success: true},
		{Strategy: "name+title+org", OrgFormat: "full", Success: true},
		{Strategy: "name+org", OrgFormat: "full", Success: true},
		{Strategy: "name+org", OrgFormat: "abbreviated", Success: false},
		{Strategy: "name+title", OrgFormat: "abbreviated", Success: false},
	}
	for _, rec := range records {
		if err := l.Record(ctx, rec); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	recs, err := l.Recommendations(ctx)
	if err != nil {
		t.Fatalf("Recommendations() error = %v", err)
	}
	if recs.BestStrategy != "name+title+org" {
		t.Errorf("BestStrategy = %q, want name+title+org", recs.BestStrategy)
	}
	if diff := cmp.Diff([]string{"abbreviated"}, recs.FailingOrgs); diff != "" {
		t.Errorf("FailingOrgs mismatch (-want +got):\n%s", diff)
	}
}

func TestLearnerCapsLog(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	l := NewLearner(kv, nil)

	for i := range maxPatternRecords + 20 {
		rec := PatternRecord{Strategy: "name+org", Success: i%2 == 0}
		if err := l.Record(ctx, rec); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	records, err := l.load(ctx)
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}
	if len(records) != maxPatternRecords {
		t.Errorf("log size = %d, want %d", len(records), maxPatternRecords)
	}
}

func TestLearnerCorruptLogRestartsEmpty(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	if err := kv.Set(ctx, patternKey, []byte("garbage"), time.Hour); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	l := NewLearner(kv, nil)
	recs, err := l.Recommendations(ctx)
	if err != nil {
		t.Fatalf("Recommendations() error = %v", err)
	}
	if recs.BestStrategy != "" || len(recs.FailingOrgs) != 0 {
		t.Errorf("expected empty recommendations, got %+v", recs)
	}

	// Recording over a corrupt log succeeds and starts fresh.
	if err := l.Record(ctx, PatternRecord{Strategy: "name+org", Success: true}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	records, err := l.load(ctx)
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}
	if len(records) != 1 {
		t.Errorf("log size = %d, want 1", len(records))
	}
}
