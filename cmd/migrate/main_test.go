package main

import (
	"strings"
	"testing"
	"testing/fstest"
)

func TestMigrationFilenamePattern(t *testing.T) {
	tests := []struct {
		filename string
		valid    bool
		version  string
		name     string
	}{
		{"0001_create_transactions.sql", true, "0001", "create_transactions"},
		{"001_invalid.sql", false, "", ""},
		{"0001_test", false, "", ""},
		{"0001.sql", false, "", ""},
		{"invalid_0001_test.sql", false, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			matches := migrationPattern.FindStringSubmatch(tt.filename)
			if (matches != nil) != tt.valid {
				t.Fatalf("match = %v, want %v", matches != nil, tt.valid)
			}
			if tt.valid && (matches[1] != tt.version || matches[2] != tt.name) {
				t.Errorf("got version %q name %q", matches[1], matches[2])
			}
		})
	}
}

func TestReadMigrations(t *testing.T) {
	source := fstest.MapFS{
		"0002_second.sql": {Data: []byte("CREATE TABLE `{{PROJECT_ID}}.{{DATASET_ID}}.b` (id INT64);")},
		"0001_first.sql":  {Data: []byte("CREATE TABLE `{{PROJECT_ID}}.{{DATASET_ID}}.a` (id INT64);")},
		"README.md":       {Data: []byte("ignored")},
	}

	migrations, err := readMigrations(source, "proj", "ds")
	if err != nil {
		t.Fatalf("readMigrations failed: %v", err)
	}
	if len(migrations) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(migrations))
	}
	if migrations[0].Version != 1 || migrations[1].Version != 2 {
		t.Errorf("migrations not sorted: %d, %d", migrations[0].Version, migrations[1].Version)
	}
	if !strings.Contains(migrations[0].SQL, "`proj.ds.a`") {
		t.Errorf("placeholders not substituted: %s", migrations[0].SQL)
	}

	// Checksums ignore the target project.
	again, err := readMigrations(source, "other", "elsewhere")
	if err != nil {
		t.Fatalf("readMigrations failed: %v", err)
	}
	if again[0].Checksum != migrations[0].Checksum {
		t.Error("checksum should not depend on placeholders")
	}
}

func TestReadMigrations_DuplicateVersion(t *testing.T) {
	source := fstest.MapFS{
		"0001_a.sql": {Data: []byte("SELECT 1")},
		"0001_b.sql": {Data: []byte("SELECT 2")},
	}
	if _, err := readMigrations(source, "p", "d"); err == nil {
		t.Error("expected duplicate version error")
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	source, err := fsSubSQL()
	if err != nil {
		t.Fatalf("sub: %v", err)
	}
	migrations, err := readMigrations(source, "proj", "finance")
	if err != nil {
		t.Fatalf("readMigrations failed: %v", err)
	}

	want := []string{"create_transactions", "create_insight_runs"}
	if len(migrations) != len(want) {
		t.Fatalf("expected %d embedded migrations, got %d", len(want), len(migrations))
	}
	for i, name := range want {
		if migrations[i].Name != name {
			t.Errorf("migration %d = %s, want %s", i, migrations[i].Name, name)
		}
		if strings.Contains(migrations[i].SQL, "{{") {
			t.Errorf("migration %s has unsubstituted placeholders", name)
		}
	}
}

func TestPendingMigrations(t *testing.T) {
	migrations := []Migration{
		{Version: 1, Name: "a", Checksum: "c1"},
		{Version: 2, Name: "b", Checksum: "c2"},
	}

	tests := []struct {
		name        string
		applied     []AppliedMigration
		wantPending []int
		wantErr     bool
	}{
		{name: "fresh", applied: nil, wantPending: []int{1, 2}},
		{name: "partially applied", applied: []AppliedMigration{{Version: 1, Checksum: "c1"}}, wantPending: []int{2}},
		{name: "legacy row without checksum", applied: []AppliedMigration{{Version: 1}}, wantPending: []int{2}},
		{name: "up to date", applied: []AppliedMigration{{Version: 1, Checksum: "c1"}, {Version: 2, Checksum: "c2"}}},
		{name: "modified after apply", applied: []AppliedMigration{{Version: 1, Checksum: "changed"}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pending, err := pendingMigrations(migrations, tt.applied)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if len(pending) != len(tt.wantPending) {
				t.Fatalf("pending = %d, want %d", len(pending), len(tt.wantPending))
			}
			for i, v := range tt.wantPending {
				if pending[i].Version != v {
					t.Errorf("pending[%d] = %d, want %d", i, pending[i].Version, v)
				}
			}
		})
	}
}
