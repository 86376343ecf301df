// Package postgres implements [storage.Repository] on PostgreSQL through a
// jackc/pgx connection pool.
//
// Empty strings are stored as NULL and NULL reads back as "". A missing row,
// or an UPDATE/DELETE touching no row, maps to [storage.NotFound].
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/matzehuels/stamboom/pkg/family"
	"github.com/matzehuels/stamboom/pkg/storage"
)

// Repository is a [storage.Repository] backed by a pgx pool.
type Repository struct {
	db *pgxpool.Pool
}

var _ storage.Repository = (*Repository)(nil)

// New wraps an open pool. Close closes the pool.
func New(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const personColumns = `id, familyid, COALESCE(picture, ''), firstname, lastname,
	COALESCE(birthcity, ''), COALESCE(birthcountry, ''), COALESCE(birthdate, ''),
	COALESCE(deathcity, ''), COALESCE(deathcountry, ''), COALESCE(deathdate, ''),
	COALESCE(comments, '')`

const marriageColumns = `id, familyid, p1, p2, COALESCE(city, ''), COALESCE(date, '')`

func (r *Repository) ListFamilies(ctx context.Context) ([]family.Family, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM family_families ORDER BY id`)
	if err != nil {
		return nil, storage.Internal(err, "list families")
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (family.Family, error) {
		var f family.Family
		err := row.Scan(&f.ID, &f.Name)
		return f, err
	})
	if err != nil {
		return nil, storage.Internal(err, "list families")
	}
	return out, nil
}

func (r *Repository) CreateFamily(ctx context.Context, name string) (family.Family, error) {
	f := family.Family{Name: name}
	err := r.db.QueryRow(ctx, `INSERT INTO family_families (name) VALUES ($1) RETURNING id`, name).Scan(&f.ID)
	if err != nil {
		return family.Family{}, storage.Internal(err, "create family")
	}
	return f, nil
}

func (r *Repository) FindFamily(ctx context.Context, name string) (family.Family, error) {
	var f family.Family
	err := r.db.QueryRow(ctx, `SELECT id, name FROM family_families WHERE name = $1 ORDER BY id LIMIT 1`, name).
		Scan(&f.ID, &f.Name)
	if err != nil {
		return family.Family{}, wrap(err, storage.KindFamily, 0, "find family")
	}
	return f, nil
}

func (r *Repository) GetFamily(ctx context.Context, familyID int64) (family.Family, error) {
	var f family.Family
	err := r.db.QueryRow(ctx, `SELECT id, name FROM family_families WHERE id = $1`, familyID).
		Scan(&f.ID, &f.Name)
	if err != nil {
		return family.Family{}, wrap(err, storage.KindFamily, familyID, "get family")
	}
	return f, nil
}

// FetchFamily reads the three record tables in one transaction so the
// dataset is consistent.
func (r *Repository) FetchFamily(ctx context.Context, familyID int64) (family.Dataset, error) {
	if _, err := r.GetFamily(ctx, familyID); err != nil {
		return family.Dataset{}, err
	}
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly, IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return family.Dataset{}, storage.Internal(err, "begin fetch")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var ds family.Dataset
	rows, err := tx.Query(ctx, `SELECT `+personColumns+` FROM family_members WHERE familyid = $1 ORDER BY id`, familyID)
	if err != nil {
		return family.Dataset{}, storage.Internal(err, "fetch members")
	}
	if ds.People, err = pgx.CollectRows(rows, scanPerson); err != nil {
		return family.Dataset{}, storage.Internal(err, "fetch members")
	}

	rows, err = tx.Query(ctx, `SELECT `+marriageColumns+` FROM family_marriages WHERE familyid = $1 ORDER BY id`, familyID)
	if err != nil {
		return family.Dataset{}, storage.Internal(err, "fetch marriages")
	}
	if ds.Marriages, err = pgx.CollectRows(rows, scanMarriage); err != nil {
		return family.Dataset{}, storage.Internal(err, "fetch marriages")
	}

	rows, err = tx.Query(ctx, `SELECT id, familyid, marriageid, childid FROM family_children WHERE familyid = $1 ORDER BY id`, familyID)
	if err != nil {
		return family.Dataset{}, storage.Internal(err, "fetch children")
	}
	ds.Children, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (family.Child, error) {
		var c family.Child
		err := row.Scan(&c.ID, &c.FamilyID, &c.MarriageID, &c.ChildID)
		return c, err
	})
	if err != nil {
		return family.Dataset{}, storage.Internal(err, "fetch children")
	}
	return ds, tx.Commit(ctx)
}

func (r *Repository) CreatePerson(ctx context.Context, familyID int64, p family.Person) (family.Person, error) {
	const query = `
		INSERT INTO family_members (
			familyid, picture, firstname, lastname, birthcity, birthcountry, birthdate,
			deathcity, deathcountry, deathdate, comments
		) VALUES ($1, NULLIF($2, ''), $3, $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''),
			NULLIF($8, ''), NULLIF($9, ''), NULLIF($10, ''), NULLIF($11, ''))
		RETURNING id`
	if _, err := r.GetFamily(ctx, familyID); err != nil {
		return family.Person{}, err
	}
	p.FamilyID = familyID
	err := r.db.QueryRow(ctx, query, familyID, p.Picture, p.FirstName, p.LastName,
		p.BirthCity, p.BirthCountry, p.BirthDate, p.DeathCity, p.DeathCountry, p.DeathDate, p.Comments,
	).Scan(&p.ID)
	if err != nil {
		return family.Person{}, storage.Internal(err, "create person")
	}
	return p, nil
}

func (r *Repository) UpdatePerson(ctx context.Context, p family.Person) (family.Person, error) {
	const query = `
		UPDATE family_members SET
			picture = NULLIF($3, ''), firstname = $4, lastname = $5,
			birthcity = NULLIF($6, ''), birthcountry = NULLIF($7, ''), birthdate = NULLIF($8, ''),
			deathcity = NULLIF($9, ''), deathcountry = NULLIF($10, ''), deathdate = NULLIF($11, ''),
			comments = NULLIF($12, '')
		WHERE id = $1 AND familyid = $2`
	tag, err := r.db.Exec(ctx, query, p.ID, p.FamilyID, p.Picture, p.FirstName, p.LastName,
		p.BirthCity, p.BirthCountry, p.BirthDate, p.DeathCity, p.DeathCountry, p.DeathDate, p.Comments)
	if err != nil {
		return family.Person{}, storage.Internal(err, "update person")
	}
	if tag.RowsAffected() == 0 {
		return family.Person{}, storage.NotFound(storage.KindPerson, p.ID)
	}
	return p, nil
}

func (r *Repository) DeletePerson(ctx context.Context, familyID, id int64) error {
	return r.delete(ctx, `DELETE FROM family_members WHERE id = $1 AND familyid = $2`, storage.KindPerson, familyID, id)
}

func (r *Repository) CreateMarriage(ctx context.Context, familyID int64, m family.Marriage) (family.Marriage, error) {
	const query = `
		INSERT INTO family_marriages (familyid, p1, p2, city, date)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''))
		RETURNING id`
	if _, err := r.GetFamily(ctx, familyID); err != nil {
		return family.Marriage{}, err
	}
	m.FamilyID = familyID
	if err := r.db.QueryRow(ctx, query, familyID, m.P1, m.P2, m.City, m.Date).Scan(&m.ID); err != nil {
		return family.Marriage{}, storage.Internal(err, "create marriage")
	}
	return m, nil
}

func (r *Repository) UpdateMarriage(ctx context.Context, m family.Marriage) (family.Marriage, error) {
	const query = `
		UPDATE family_marriages SET p1 = $3, p2 = $4, city = NULLIF($5, ''), date = NULLIF($6, '')
		WHERE id = $1 AND familyid = $2`
	tag, err := r.db.Exec(ctx, query, m.ID, m.FamilyID, m.P1, m.P2, m.City, m.Date)
	if err != nil {
		return family.Marriage{}, storage.Internal(err, "update marriage")
	}
	if tag.RowsAffected() == 0 {
		return family.Marriage{}, storage.NotFound(storage.KindMarriage, m.ID)
	}
	return m, nil
}

func (r *Repository) DeleteMarriage(ctx context.Context, familyID, id int64) error {
	return r.delete(ctx, `DELETE FROM family_marriages WHERE id = $1 AND familyid = $2`, storage.KindMarriage, familyID, id)
}

func (r *Repository) CreateChild(ctx context.Context, familyID int64, c family.Child) (family.Child, error) {
	const query = `
		INSERT INTO family_children (familyid, marriageid, childid)
		VALUES ($1, $2, $3)
		RETURNING id`
	if _, err := r.GetFamily(ctx, familyID); err != nil {
		return family.Child{}, err
	}
	c.FamilyID = familyID
	if err := r.db.QueryRow(ctx, query, familyID, c.MarriageID, c.ChildID).Scan(&c.ID); err != nil {
		return family.Child{}, storage.Internal(err, "create child")
	}
	return c, nil
}

func (r *Repository) DeleteChild(ctx context.Context, familyID, id int64) error {
	return r.delete(ctx, `DELETE FROM family_children WHERE id = $1 AND familyid = $2`, storage.KindChild, familyID, id)
}

// Close closes the pool.
func (r *Repository) Close() error {
	r.db.Close()
	return nil
}

func (r *Repository) delete(ctx context.Context, query, kind string, familyID, id int64) error {
	tag, err := r.db.Exec(ctx, query, id, familyID)
	if err != nil {
		return storage.Internal(err, "delete "+kind)
	}
	if tag.RowsAffected() == 0 {
		return storage.NotFound(kind, id)
	}
	return nil
}

func scanPerson(row pgx.CollectableRow) (family.Person, error) {
	var p family.Person
	err := row.Scan(&p.ID, &p.FamilyID, &p.Picture, &p.FirstName, &p.LastName,
		&p.BirthCity, &p.BirthCountry, &p.BirthDate,
		&p.DeathCity, &p.DeathCountry, &p.DeathDate, &p.Comments)
	return p, err
}

func scanMarriage(row pgx.CollectableRow) (family.Marriage, error) {
	var m family.Marriage
	err := row.Scan(&m.ID, &m.FamilyID, &m.P1, &m.P2, &m.City, &m.Date)
	return m, err
}

func wrap(err error, kind string, id int64, action string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.NotFound(kind, id)
	}
	return storage.Internal(err, action)
}
