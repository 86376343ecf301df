package postgres

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"

	ferrors "github.com/matzehuels/stamboom/pkg/errors"
	"github.com/matzehuels/stamboom/pkg/family"
	"github.com/matzehuels/stamboom/pkg/storage"
)

func TestWrap(t *testing.T) {
	err := wrap(pgx.ErrNoRows, storage.KindFamily, 7, "get family")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("ErrNoRows should map to ErrNotFound, got %v", err)
	}
	if got := ferrors.GetCode(err); got != ferrors.ErrCodeFamilyNotFound {
		t.Errorf("code = %s, want %s", got, ferrors.ErrCodeFamilyNotFound)
	}

	boom := errors.New("connection reset")
	err = wrap(boom, storage.KindFamily, 7, "get family")
	if errors.Is(err, storage.ErrNotFound) {
		t.Error("driver failure must not look like not found")
	}
	if !errors.Is(err, boom) {
		t.Error("driver failure should stay in the chain")
	}
}

// TestRepository runs against a live server when STAMBOOM_TEST_POSTGRES_DSN
// is set.
func TestRepository(t *testing.T) {
	dsn := os.Getenv("STAMBOOM_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("STAMBOOM_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	pool, err := NewPool(ctx, dsn, nil)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	repo := New(pool)
	defer repo.Close()
	if err := repo.Migrate(ctx, nil); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	f, err := repo.CreateFamily(ctx, "pgtest")
	if err != nil {
		t.Fatalf("CreateFamily: %v", err)
	}
	a, err := repo.CreatePerson(ctx, f.ID, family.Person{FirstName: "Jan", LastName: "Smit", BirthDate: "1920"})
	if err != nil {
		t.Fatalf("CreatePerson: %v", err)
	}
	m, err := repo.CreateMarriage(ctx, f.ID, family.Marriage{P1: family.ID(a.ID)})
	if err != nil {
		t.Fatalf("CreateMarriage: %v", err)
	}

	ds, err := repo.FetchFamily(ctx, f.ID)
	if err != nil {
		t.Fatalf("FetchFamily: %v", err)
	}
	if len(ds.People) != 1 || ds.People[0].BirthCity != "" || ds.People[0].BirthDate != "1920" {
		t.Errorf("people = %+v", ds.People)
	}
	if len(ds.Marriages) != 1 || ds.Marriages[0].P2 != nil || *ds.Marriages[0].P1 != a.ID {
		t.Errorf("marriages = %+v", ds.Marriages)
	}

	if err := repo.DeleteMarriage(ctx, f.ID, m.ID); err != nil {
		t.Fatalf("DeleteMarriage: %v", err)
	}
	if err := repo.DeleteMarriage(ctx, f.ID, m.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second delete = %v, want not found", err)
	}
}

func TestMigrateURL(t *testing.T) {
	tests := []struct {
		dsn     string
		want    string
		wantErr bool
	}{
		{dsn: "postgres://u:p@localhost:5432/stamboom", want: "pgx5://u:p@localhost:5432/stamboom"},
		{dsn: "postgresql://localhost/stamboom?sslmode=disable", want: "pgx5://localhost/stamboom?sslmode=disable"},
		{dsn: "pgx5://localhost/stamboom", want: "pgx5://localhost/stamboom"},
		{dsn: "host=localhost dbname=stamboom", wantErr: true},
	}
	for _, tt := range tests {
		got, err := migrateURL(tt.dsn)
		if (err != nil) != tt.wantErr {
			t.Errorf("migrateURL(%q) error = %v, wantErr %v", tt.dsn, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("migrateURL(%q) = %q, want %q", tt.dsn, got, tt.want)
		}
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) == 0 || len(entries)%2 != 0 {
		t.Errorf("expected up/down pairs, got %d files", len(entries))
	}
}
