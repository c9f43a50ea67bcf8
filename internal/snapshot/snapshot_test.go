package snapshot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dvloznov/finance-insights/internal/domain"
)

// MockFetcher implements ObjectFetcher for testing.
type MockFetcher struct {
	FetchFunc func(ctx context.Context, bucket, object string) ([]byte, error)
}

func (m *MockFetcher) Fetch(ctx context.Context, bucket, object string) ([]byte, error) {
	return m.FetchFunc(ctx, bucket, object)
}

const sample = `{"transactions": [
  {"id": "1", "kind": "income", "amount": 2500, "category": "Salary", "occurredOn": "2024-04-01"},
  {"id": "2", "kind": "EXPENSE", "amount": "12.40", "category": "Food", "occurredOn": "2024-04-03", "note": "lunch"}
]}`

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    int
		wantErr bool
	}{
		{"wrapped", sample, 2, false},
		{"bare array", `[{"id": "1", "kind": "expense", "amount": 1, "category": "Food", "occurredOn": "2024-04-03"}]`, 1, false},
		{"empty array", `[]`, 0, false},
		{"empty", `  `, 0, true},
		{"bad date", `[{"id": "1", "occurredOn": "April 3rd"}]`, 0, true},
		{"not json", `id,kind,amount`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.data))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Decode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(got) != tt.want {
				t.Errorf("Decode() returned %d records, want %d", len(got), tt.want)
			}
		})
	}
}

func TestDecode_NormalisesKind(t *testing.T) {
	txs, err := Decode([]byte(sample))
	if err != nil {
		t.Fatal(err)
	}
	if txs[0].Kind != domain.KindIncome || txs[1].Kind != domain.KindExpense {
		t.Errorf("kinds = %s/%s", txs[0].Kind, txs[1].Kind)
	}
	if txs[1].Amount.String() != "12.4" || txs[1].Note != "lunch" {
		t.Errorf("unexpected record: %+v", txs[1])
	}
	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			t.Errorf("decoded record invalid: %v", err)
		}
	}
}

func TestLoader_LocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	if err := os.WriteFile(path, []byte(sample), 0o600); err != nil {
		t.Fatal(err)
	}
	fetcher := &MockFetcher{FetchFunc: func(ctx context.Context, bucket, object string) ([]byte, error) {
		t.Error("fetcher must not be used for local paths")
		return nil, nil
	}}

	txs, err := NewLoader(fetcher).Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(txs) != 2 {
		t.Errorf("Load() returned %d records", len(txs))
	}
}

func TestLoader_GCS(t *testing.T) {
	var gotBucket, gotObject string
	fetcher := &MockFetcher{FetchFunc: func(ctx context.Context, bucket, object string) ([]byte, error) {
		gotBucket, gotObject = bucket, object
		return []byte(sample), nil
	}}

	txs, err := NewLoader(fetcher).Load(context.Background(), "gs://snapshots/users/u1/2024-04.json")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if gotBucket != "snapshots" || gotObject != "users/u1/2024-04.json" {
		t.Errorf("fetched %s/%s", gotBucket, gotObject)
	}
	if len(txs) != 2 {
		t.Errorf("Load() returned %d records", len(txs))
	}
}

func TestLoader_Errors(t *testing.T) {
	fetchErr := errors.New("permission denied")
	fetcher := &MockFetcher{FetchFunc: func(ctx context.Context, bucket, object string) ([]byte, error) {
		return nil, fetchErr
	}}
	l := NewLoader(fetcher)

	if _, err := l.Load(context.Background(), "gs://bucket/obj.json"); !errors.Is(err, fetchErr) {
		t.Errorf("expected fetch error to be wrapped, got %v", err)
	}
	if _, err := l.Load(context.Background(), "gs://bucket-only"); err == nil {
		t.Error("expected error for URI without object")
	}
	if _, err := l.Load(context.Background(), filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestParseGCSURI(t *testing.T) {
	tests := []struct {
		uri        string
		wantBucket string
		wantObject string
		wantErr    bool
	}{
		{"gs://b/o.json", "b", "o.json", false},
		{"gs://b/dir/o.json", "b", "dir/o.json", false},
		{"gs://b/", "", "", true},
		{"gs:///o.json", "", "", true},
		{"s3://b/o.json", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			b, o, err := ParseGCSURI(tt.uri)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseGCSURI() error = %v, wantErr %v", err, tt.wantErr)
			}
			if b != tt.wantBucket || o != tt.wantObject {
				t.Errorf("ParseGCSURI() = %s, %s", b, o)
			}
		})
	}
}
