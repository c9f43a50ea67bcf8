// Package snapshot reads a transaction snapshot from a local JSON file or a
// Cloud Storage object.
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/dvloznov/finance-insights/internal/domain"
)

// Loader resolves snapshot locations.
type Loader struct {
	objects ObjectFetcher
}

// NewLoader returns a loader that uses objects for gs:// URIs. A nil
// fetcher uses GCSFetcher.
func NewLoader(objects ObjectFetcher) *Loader {
	if objects == nil {
		objects = GCSFetcher{}
	}
	return &Loader{objects: objects}
}

// Load reads and decodes the snapshot at location, which is either a
// gs:// URI or a local path.
func (l *Loader) Load(ctx context.Context, location string) ([]domain.TransactionRecord, error) {
	var (
		data []byte
		err  error
	)
	if strings.HasPrefix(location, "gs://") {
		bucket, object, perr := ParseGCSURI(location)
		if perr != nil {
			return nil, fmt.Errorf("Load: %w", perr)
		}
		data, err = l.objects.Fetch(ctx, bucket, object)
	} else {
		data, err = os.ReadFile(location)
	}
	if err != nil {
		return nil, fmt.Errorf("Load: reading %s: %w", location, err)
	}

	txs, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("Load: decoding %s: %w", location, err)
	}
	return txs, nil
}

// Decode accepts either a bare JSON array of records or an object with a
// "transactions" array. Kinds are normalised to upper case; other fields
// are passed through and validated later by the aggregator.
func Decode(data []byte) ([]domain.TransactionRecord, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("Decode: empty snapshot")
	}

	var txs []domain.TransactionRecord
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &txs); err != nil {
			return nil, fmt.Errorf("Decode: unmarshal array: %w", err)
		}
	} else {
		var wrapper struct {
			Transactions []domain.TransactionRecord `json:"transactions"`
		}
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return nil, fmt.Errorf("Decode: unmarshal object: %w", err)
		}
		txs = wrapper.Transactions
	}

	NormalizeKinds(txs)
	return txs, nil
}

// NormalizeKinds upper-cases recognisable kinds in place. Unknown kinds are
// left for the aggregator to reject.
func NormalizeKinds(txs []domain.TransactionRecord) {
	for i := range txs {
		if k, err := domain.ParseKind(string(txs[i].Kind)); err == nil {
			txs[i].Kind = k
		}
	}
}
