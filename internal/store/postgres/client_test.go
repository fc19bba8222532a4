package postgres

import (
	"strings"
	"testing"
	"time"

	"github.com/alanyoungcy/wantlistbot/internal/domain"
)

func TestDSN(t *testing.T) {
	tests := []struct {
		cfg  ClientConfig
		want string
	}{
		{ClientConfig{DSN: "postgres://x"}, "postgres://x"},
		{ClientConfig{Host: "db", User: "u", Password: "p", Database: "wants"}, "postgres://u:p@db:5432/wants?sslmode=disable"},
		{ClientConfig{Host: "db", Port: 6543, User: "u", Database: "w", SSLMode: "require"}, "postgres://u:@db:6543/w?sslmode=require"},
		{ClientConfig{Host: "db", User: "u", Password: "p@ss/word", Database: "w"}, "postgres://u:p%40ss%2Fword@db:5432/w?sslmode=disable"},
	}
	for _, tt := range tests {
		if got := DSN(tt.cfg); got != tt.want {
			t.Errorf("DSN(%+v) = %q; want %q", tt.cfg, got, tt.want)
		}
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	data, err := migrationsFS.ReadFile("migrations/001_init.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	for _, table := range []string{"runs", "audit_log"} {
		if !strings.Contains(string(data), "CREATE TABLE IF NOT EXISTS "+table) {
			t.Errorf("migration does not create %s", table)
		}
	}
}

func TestPendingMigrations(t *testing.T) {
	names, err := migrationFiles()
	if err != nil {
		t.Fatalf("migrationFiles: %v", err)
	}
	if len(names) == 0 || names[0] != "001_init.sql" {
		t.Fatalf("migrationFiles = %v; want 001_init.sql first", names)
	}

	got := pending([]string{"001_a.sql", "002_b.sql", "003_c.sql"}, map[string]bool{"002_b.sql": true})
	if len(got) != 2 || got[0] != "001_a.sql" || got[1] != "003_c.sql" {
		t.Errorf("pending = %v; want [001_a.sql 003_c.sql]", got)
	}
	if got := pending(names, map[string]bool{"001_init.sql": true}); len(got) != len(names)-1 {
		t.Errorf("pending after init = %v", got)
	}
}

func TestBuildAuditQuery(t *testing.T) {
	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	query, args := buildAuditQuery(domain.ListOpts{Since: &since, Limit: 10, Offset: 20})

	want := "SELECT id, event, detail, created_at FROM audit_log WHERE 1=1 AND created_at >= $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3"
	if query != want {
		t.Errorf("query = %q; want %q", query, want)
	}
	if len(args) != 3 || args[1] != 10 || args[2] != 20 {
		t.Errorf("args = %v", args)
	}

	query, args = buildAuditQuery(domain.ListOpts{})
	if strings.Contains(query, "LIMIT") || len(args) != 0 {
		t.Errorf("unfiltered query = %q args %v", query, args)
	}
}
