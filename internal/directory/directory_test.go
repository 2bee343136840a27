package directory

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func ptr(f float64) *float64 { return &f }

func TestStaticFiltersRoles(t *testing.T) {
	dir := NewStatic(
		Provider{ID: 1, Role: RoleProvider},
		Provider{ID: 2, Role: "CLIENT"},
		Provider{ID: 3},
	)

	roster, err := dir.ListProviders(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(roster) != 2 {
		t.Fatalf("expected 2 providers, got %d", len(roster))
	}
	if roster[0].ID != 1 || roster[1].ID != 3 {
		t.Fatalf("unexpected roster: %+v", roster)
	}
}

func TestStaticHonoursCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewStatic(Provider{ID: 1}).ListProviders(ctx); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestProviderRate(t *testing.T) {
	tests := []struct {
		name  string
		rate  *float64
		want  float64
		known bool
	}{
		{name: "nil", rate: nil, known: false},
		{name: "zero", rate: ptr(0), known: false},
		{name: "set", rate: ptr(45), want: 45, known: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Provider{HourlyRate: tt.rate}
			got, known := p.Rate()
			if got != tt.want || known != tt.known {
				t.Fatalf("expected (%v, %v), got (%v, %v)", tt.want, tt.known, got, known)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	p := Provider{FirstName: "Marie", Name: "Dupont", Email: "marie@example.com"}
	if got := p.DisplayName(); got != "Marie Dupont" {
		t.Fatalf("unexpected display name: %q", got)
	}

	p = Provider{Email: "anon@example.com"}
	if got := p.DisplayName(); got != "anon@example.com" {
		t.Fatalf("expected email fallback, got %q", got)
	}
}

func TestFileDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.yaml")
	content := `providers:
  - id: 1
    nom: Dupont
    prenom: Marie
    email: marie.dupont@exemple.com
    role: PRESTATAIRE
    competences: "React, Node.js, TypeScript"
    description: "Développeuse full-stack"
    tarifHoraire: 45
  - id: 2
    nom: Client
    role: CLIENT
  - id: 3
    nom: Martin
    competences: "Figma"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write roster: %v", err)
	}

	roster, err := NewFile(path).ListProviders(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(roster) != 2 {
		t.Fatalf("expected 2 providers, got %d", len(roster))
	}

	marie := roster[0]
	if marie.FirstName != "Marie" || marie.Skills != "React, Node.js, TypeScript" {
		t.Fatalf("unexpected provider: %+v", marie)
	}
	if rate, ok := marie.Rate(); !ok || rate != 45 {
		t.Fatalf("expected rate 45, got %v (%v)", rate, ok)
	}

	if roster[1].HourlyRate != nil {
		t.Fatalf("expected nil rate for provider without tarifHoraire")
	}
}

func TestFileDirectoryErrors(t *testing.T) {
	if _, err := NewFile("").ListProviders(context.Background()); err == nil {
		t.Fatal("expected error for empty path")
	}

	missing := filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := NewFile(missing).ListProviders(context.Background()); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestUserRowToProvider(t *testing.T) {
	skills := "SEO, Google Ads"
	row := userRow{ID: 7, Email: "sophie@example.com", Role: RoleProvider, Competences: &skills, TarifHoraire: ptr(35)}

	p := row.toProvider()
	if p.ID != 7 || p.Skills != skills || p.Description != "" {
		t.Fatalf("unexpected provider: %+v", p)
	}
	if rate, ok := p.Rate(); !ok || rate != 35 {
		t.Fatalf("unexpected rate: %v", rate)
	}
}

func TestExcludedProvidersRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exclude.json")

	excluded, err := GetExcludedProvidersFromFile(path)
	if err != nil {
		t.Fatalf("missing file should not fail: %v", err)
	}
	if excluded.Len() != 0 {
		t.Fatalf("expected empty list, got %d", excluded.Len())
	}

	excluded.Append(NewExcluded(ExcludeActorUser, "", Provider{ID: 1}, Provider{ID: 2}))
	excluded.Append(NewExcluded(ExcludeActorUser, "", Provider{ID: 2}, Provider{ID: 3}))

	if err := excluded.ToFile(path); err != nil {
		t.Fatalf("write exclude file: %v", err)
	}

	loaded, err := GetExcludedProvidersFromFile(path)
	if err != nil {
		t.Fatalf("read exclude file: %v", err)
	}

	ids := loaded.IDs()
	if len(ids) != 3 || ids[0] != 1 || ids[1] != 2 || ids[2] != 3 {
		t.Fatalf("unexpected ids: %v", ids)
	}
}

func TestPostgresProvidersQuery(t *testing.T) {
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost user=matcher dbname=marketplace sslmode=disable"}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	if err != nil {
		t.Fatalf("open dry-run db: %v", err)
	}

	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var rows []userRow
		return providersQuery(tx, &rows)
	})

	for _, want := range []string{`FROM "user"`, "role = 'PRESTATAIRE'", "ORDER BY id"} {
		if !strings.Contains(sql, want) {
			t.Fatalf("expected %q in %q", want, sql)
		}
	}
}

func TestOpenPostgresRequiresDSN(t *testing.T) {
	if _, err := OpenPostgres("  "); err == nil {
		t.Fatal("expected error for empty dsn")
	}

	var p *Postgres
	if _, err := p.ListProviders(context.Background()); err == nil {
		t.Fatal("expected error for nil directory")
	}
	if err := p.Close(); err != nil {
		t.Fatalf("closing nil directory: %v", err)
	}
}
