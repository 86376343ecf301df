// Package storage defines the data-access contract for families and their
// records, plus backend-independent operations built on it.
//
// Backends live in subpackages:
//
//   - memory: process-local maps, for tests and `stamboom serve --seed`
//   - postgres: jackc/pgx pool over the family_* tables
//   - mongo: one collection per record type, numeric ids from a counters
//     collection
//
// Every Create method returns the stored record with its assigned id.
// Lookups of missing records fail with an error matching [ErrNotFound].
// Deleting a person does not cascade; see [family.Dependents].
package storage

import (
	"context"
	"errors"

	ferrors "github.com/matzehuels/stamboom/pkg/errors"
	"github.com/matzehuels/stamboom/pkg/family"
)

// ErrNotFound matches every "record does not exist" error from a backend.
var ErrNotFound = errors.New("not found")

// Repository is the data-access contract. Records carry their FamilyID;
// Update methods locate a record by FamilyID and ID.
type Repository interface {
	ListFamilies(ctx context.Context) ([]family.Family, error)
	CreateFamily(ctx context.Context, name string) (family.Family, error)
	// FindFamily looks a family up by exact name.
	FindFamily(ctx context.Context, name string) (family.Family, error)
	GetFamily(ctx context.Context, familyID int64) (family.Family, error)
	FetchFamily(ctx context.Context, familyID int64) (family.Dataset, error)

	CreatePerson(ctx context.Context, familyID int64, p family.Person) (family.Person, error)
	UpdatePerson(ctx context.Context, p family.Person) (family.Person, error)
	DeletePerson(ctx context.Context, familyID, id int64) error

	CreateMarriage(ctx context.Context, familyID int64, m family.Marriage) (family.Marriage, error)
	UpdateMarriage(ctx context.Context, m family.Marriage) (family.Marriage, error)
	DeleteMarriage(ctx context.Context, familyID, id int64) error

	CreateChild(ctx context.Context, familyID int64, c family.Child) (family.Child, error)
	DeleteChild(ctx context.Context, familyID, id int64) error

	Close() error
}

// Record kinds used in error messages.
const (
	KindFamily   = "family"
	KindPerson   = "person"
	KindMarriage = "marriage"
	KindChild    = "child link"
)

// NotFound builds the error backends return for a missing record. It
// matches [ErrNotFound] and carries the error code for its kind.
func NotFound(kind string, id int64) error {
	code := ferrors.ErrCodeNotFound
	switch kind {
	case KindFamily:
		code = ferrors.ErrCodeFamilyNotFound
	case KindPerson:
		code = ferrors.ErrCodePersonNotFound
	}
	return ferrors.Wrap(code, ErrNotFound, "%s %d", kind, id)
}

// Internal wraps a driver failure.
func Internal(err error, action string) error {
	if err == nil {
		return nil
	}
	return ferrors.Wrap(ferrors.ErrCodeInternal, err, "storage: %s", action)
}
