// Package mongo implements [storage.Repository] on MongoDB.
//
// Each record type has its own collection. Documents use the numeric ids the
// rest of the system expects; they come from a counters collection holding
// one sequence per record type.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/stamboom/pkg/family"
	"github.com/matzehuels/stamboom/pkg/storage"
)

// DefaultDatabase is used when the URI names no database.
const DefaultDatabase = "stamboom"

const (
	collFamilies  = "families"
	collMembers   = "members"
	collMarriages = "marriages"
	collChildren  = "children"
	collCounters  = "counters"

	connectTimeout = 10 * time.Second
)

// Repository is a [storage.Repository] backed by a MongoDB database.
type Repository struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ storage.Repository = (*Repository)(nil)

// Connect dials uri, pings the server and ensures the family indexes exist.
func Connect(ctx context.Context, uri, database string) (*Repository, error) {
	if database == "" {
		database = DefaultDatabase
	}
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}
	r := &Repository{client: client, db: client.Database(database)}
	if err := r.ensureIndexes(connectCtx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return r, nil
}

func (r *Repository) ensureIndexes(ctx context.Context) error {
	for _, name := range []string{collMembers, collMarriages, collChildren} {
		_, err := r.db.Collection(name).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: "familyid", Value: 1}},
		})
		if err != nil {
			return storage.Internal(err, "create index on "+name)
		}
	}
	return nil
}

// nextID increments and returns the sequence for kind.
func (r *Repository) nextID(ctx context.Context, kind string) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := r.db.Collection(collCounters).FindOneAndUpdate(ctx,
		bson.M{"_id": kind},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, storage.Internal(err, "next "+kind+" id")
	}
	return counter.Seq, nil
}

func (r *Repository) ListFamilies(ctx context.Context) ([]family.Family, error) {
	out := []family.Family{}
	if err := r.findAll(ctx, collFamilies, bson.M{}, &out); err != nil {
		return nil, storage.Internal(err, "list families")
	}
	return out, nil
}

func (r *Repository) CreateFamily(ctx context.Context, name string) (family.Family, error) {
	id, err := r.nextID(ctx, storage.KindFamily)
	if err != nil {
		return family.Family{}, err
	}
	f := family.Family{ID: id, Name: name}
	if _, err := r.db.Collection(collFamilies).InsertOne(ctx, f); err != nil {
		return family.Family{}, storage.Internal(err, "create family")
	}
	return f, nil
}

func (r *Repository) FindFamily(ctx context.Context, name string) (family.Family, error) {
	var f family.Family
	opts := options.FindOne().SetSort(bson.D{{Key: "_id", Value: 1}})
	err := r.db.Collection(collFamilies).FindOne(ctx, bson.M{"name": name}, opts).Decode(&f)
	if err != nil {
		return family.Family{}, wrap(err, storage.KindFamily, 0, "find family")
	}
	return f, nil
}

func (r *Repository) GetFamily(ctx context.Context, familyID int64) (family.Family, error) {
	var f family.Family
	err := r.db.Collection(collFamilies).FindOne(ctx, bson.M{"_id": familyID}).Decode(&f)
	if err != nil {
		return family.Family{}, wrap(err, storage.KindFamily, familyID, "get family")
	}
	return f, nil
}

func (r *Repository) FetchFamily(ctx context.Context, familyID int64) (family.Dataset, error) {
	if _, err := r.GetFamily(ctx, familyID); err != nil {
		return family.Dataset{}, err
	}
	filter := bson.M{"familyid": familyID}
	ds := family.Dataset{}
	if err := r.findAll(ctx, collMembers, filter, &ds.People); err != nil {
		return family.Dataset{}, storage.Internal(err, "fetch members")
	}
	if err := r.findAll(ctx, collMarriages, filter, &ds.Marriages); err != nil {
		return family.Dataset{}, storage.Internal(err, "fetch marriages")
	}
	if err := r.findAll(ctx, collChildren, filter, &ds.Children); err != nil {
		return family.Dataset{}, storage.Internal(err, "fetch children")
	}
	return ds, nil
}

func (r *Repository) CreatePerson(ctx context.Context, familyID int64, p family.Person) (family.Person, error) {
	if _, err := r.GetFamily(ctx, familyID); err != nil {
		return family.Person{}, err
	}
	id, err := r.nextID(ctx, storage.KindPerson)
	if err != nil {
		return family.Person{}, err
	}
	p.ID, p.FamilyID = id, familyID
	if _, err := r.db.Collection(collMembers).InsertOne(ctx, p); err != nil {
		return family.Person{}, storage.Internal(err, "create person")
	}
	return p, nil
}

func (r *Repository) UpdatePerson(ctx context.Context, p family.Person) (family.Person, error) {
	if err := r.replace(ctx, collMembers, storage.KindPerson, p.FamilyID, p.ID, p); err != nil {
		return family.Person{}, err
	}
	return p, nil
}

func (r *Repository) DeletePerson(ctx context.Context, familyID, id int64) error {
	return r.delete(ctx, collMembers, storage.KindPerson, familyID, id)
}

func (r *Repository) CreateMarriage(ctx context.Context, familyID int64, m family.Marriage) (family.Marriage, error) {
	if _, err := r.GetFamily(ctx, familyID); err != nil {
		return family.Marriage{}, err
	}
	id, err := r.nextID(ctx, storage.KindMarriage)
	if err != nil {
		return family.Marriage{}, err
	}
	m.ID, m.FamilyID = id, familyID
	if _, err := r.db.Collection(collMarriages).InsertOne(ctx, m); err != nil {
		return family.Marriage{}, storage.Internal(err, "create marriage")
	}
	return m, nil
}

func (r *Repository) UpdateMarriage(ctx context.Context, m family.Marriage) (family.Marriage, error) {
	if err := r.replace(ctx, collMarriages, storage.KindMarriage, m.FamilyID, m.ID, m); err != nil {
		return family.Marriage{}, err
	}
	return m, nil
}

func (r *Repository) DeleteMarriage(ctx context.Context, familyID, id int64) error {
	return r.delete(ctx, collMarriages, storage.KindMarriage, familyID, id)
}

func (r *Repository) CreateChild(ctx context.Context, familyID int64, c family.Child) (family.Child, error) {
	if _, err := r.GetFamily(ctx, familyID); err != nil {
		return family.Child{}, err
	}
	id, err := r.nextID(ctx, storage.KindChild)
	if err != nil {
		return family.Child{}, err
	}
	c.ID, c.FamilyID = id, familyID
	if _, err := r.db.Collection(collChildren).InsertOne(ctx, c); err != nil {
		return family.Child{}, storage.Internal(err, "create child")
	}
	return c, nil
}

func (r *Repository) DeleteChild(ctx context.Context, familyID, id int64) error {
	return r.delete(ctx, collChildren, storage.KindChild, familyID, id)
}

// Close disconnects the client.
func (r *Repository) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	return r.client.Disconnect(ctx)
}

// findAll decodes every document matching filter into out, ordered by id.
func (r *Repository) findAll(ctx context.Context, coll string, filter bson.M, out any) error {
	cur, err := r.db.Collection(coll).Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return err
	}
	return cur.All(ctx, out)
}

func (r *Repository) replace(ctx context.Context, coll, kind string, familyID, id int64, doc any) error {
	res, err := r.db.Collection(coll).ReplaceOne(ctx, bson.M{"_id": id, "familyid": familyID}, doc)
	if err != nil {
		return storage.Internal(err, "update "+kind)
	}
	if res.MatchedCount == 0 {
		return storage.NotFound(kind, id)
	}
	return nil
}

func (r *Repository) delete(ctx context.Context, coll, kind string, familyID, id int64) error {
	res, err := r.db.Collection(coll).DeleteOne(ctx, bson.M{"_id": id, "familyid": familyID})
	if err != nil {
		return storage.Internal(err, "delete "+kind)
	}
	if res.DeletedCount == 0 {
		return storage.NotFound(kind, id)
	}
	return nil
}

func wrap(err error, kind string, id int64, action string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return storage.NotFound(kind, id)
	}
	return storage.Internal(err, action)
}
