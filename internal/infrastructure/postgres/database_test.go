package postgres

import (
	"io/fs"
	"testing"
)

func TestSanitizeQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "parameters are kept",
			query: "SELECT id FROM items WHERE user_id = $1 AND id = $2",
			want:  "SELECT id FROM items WHERE user_id = $1 AND id = $2",
		},
		{
			name:  "string literal",
			query: "SELECT id FROM users WHERE github_id = '583231'",
			want:  "SELECT id FROM users WHERE github_id = '?'",
		},
		{
			name:  "escaped quote",
			query: "SELECT 1 FROM items WHERE description = 'it''s'",
			want:  "SELECT ? FROM items WHERE description = '?'",
		},
		{
			name:  "numeric literal",
			query: "SELECT id FROM items WHERE cost > 24.99",
			want:  "SELECT id FROM items WHERE cost > ?",
		},
		{
			name:  "identifier digits untouched",
			query: "SELECT col1 FROM t2",
			want:  "SELECT col1 FROM t2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeQuery(tt.query); got != tt.want {
				t.Errorf("sanitizeQuery(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

func TestExtractSQLVerb(t *testing.T) {
	tests := map[string]string{
		"\n\t\tINSERT INTO items (id) VALUES ($1)": "INSERT",
		"select 1":                                "SELECT",
		"COMMIT":                                  "COMMIT",
	}
	for query, want := range tests {
		if got := extractSQLVerb(query); got != want {
			t.Errorf("extractSQLVerb(%q) = %q, want %q", query, got, want)
		}
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	want := []string{
		"migrations/000001_create_users.down.sql",
		"migrations/000001_create_users.up.sql",
		"migrations/000002_create_items.down.sql",
		"migrations/000002_create_items.up.sql",
	}

	got, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		t.Fatalf("Glob() failed: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("embedded migrations = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("migration %d = %q, want %q", i, got[i], want[i])
		}
	}
}
