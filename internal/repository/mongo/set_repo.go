// internal/repository/mongo/set_repo.go
package mongo

import (
	"alcyxob/sets-tracker/internal/domain"
	"alcyxob/sets-tracker/internal/repository"
	"context"
	"errors"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const setCollectionName = repository.TableSets

// mongoSetRepository implements repository.SetRepository.
// Documents mirror the table columns; the set id lives in "id", not "_id",
// so ids stay client-generated strings.
type mongoSetRepository struct {
	db         *mongo.Database
	collection *mongo.Collection
}

// NewMongoSetRepository creates a new Set repository backed by MongoDB.
func NewMongoSetRepository(db *mongo.Database) repository.SetRepository {
	return &mongoSetRepository{
		db:         db,
		collection: db.Collection(setCollectionName),
	}
}

func tenantFilter(tenant string, extra ...bson.E) bson.D {
	filter := bson.D{{Key: repository.ColDeviceID, Value: tenant}}
	return append(filter, extra...)
}

func toDocument(tenant string, row repository.Row) bson.D {
	doc := bson.D{{Key: repository.ColDeviceID, Value: tenant}}
	for _, c := range row {
		doc = append(doc, bson.E{Key: c.Name, Value: c.Value})
	}
	return doc
}

func decodeSet(raw bson.M) domain.LoggedSet {
	return repository.SetFromValues(map[string]any(raw))
}

// List retrieves the tenant's sets, newest performed/created first.
func (r *mongoSetRepository) List(ctx context.Context, tenant string, limit int) ([]domain.LoggedSet, error) {
	findOptions := options.Find().SetSort(bson.D{
		{Key: repository.ColPerformedAt, Value: -1},
		{Key: repository.ColCreatedAt, Value: -1},
	})
	if limit > 0 {
		findOptions.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, tenantFilter(tenant), findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	sets := make([]domain.LoggedSet, 0, len(docs))
	for _, doc := range docs {
		sets = append(sets, decodeSet(doc))
	}
	return sets, nil
}

// Insert writes a new set document and returns it as stored.
func (r *mongoSetRepository) Insert(ctx context.Context, tenant string, row repository.Row) (*domain.LoggedSet, error) {
	id, ok := row.Get(repository.ColID)
	if !ok || id == "" {
		return nil, errors.New("set id is required for insert")
	}
	if _, err := r.collection.InsertOne(ctx, toDocument(tenant, row)); err != nil {
		return nil, err
	}
	return r.getByID(ctx, tenant, id)
}

func (r *mongoSetRepository) getByID(ctx context.Context, tenant string, id any) (*domain.LoggedSet, error) {
	var raw bson.M
	err := r.collection.FindOne(ctx, tenantFilter(tenant, bson.E{Key: repository.ColID, Value: id})).Decode(&raw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	set := decodeSet(raw)
	return &set, nil
}

// Update applies the row's columns to an existing set.
func (r *mongoSetRepository) Update(ctx context.Context, tenant, id string, row repository.Row) (*domain.LoggedSet, error) {
	if id == "" {
		return nil, errors.New("set ID is required for update")
	}

	set := bson.D{}
	for _, c := range row.Without(repository.ColID) {
		set = append(set, bson.E{Key: c.Name, Value: c.Value})
	}
	if len(set) == 0 {
		return nil, repository.ErrUpdateFailed
	}

	var raw bson.M
	err := r.collection.FindOneAndUpdate(ctx,
		tenantFilter(tenant, bson.E{Key: repository.ColID, Value: id}),
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&raw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound // Set with that ID didn't exist
		}
		return nil, err
	}
	updated := decodeSet(raw)
	return &updated, nil
}

// Upsert replaces each row's document wholesale, inserting it if absent.
func (r *mongoSetRepository) Upsert(ctx context.Context, tenant string, rows []repository.Row) error {
	if len(rows) == 0 {
		return nil
	}
	models := make([]mongo.WriteModel, 0, len(rows))
	for _, row := range rows {
		id, _ := row.Get(repository.ColID)
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(tenantFilter(tenant, bson.E{Key: repository.ColID, Value: id})).
			SetReplacement(toDocument(tenant, row)).
			SetUpsert(true))
	}
	// Unordered: one bad document should not block the rest of a sync batch.
	_, err := r.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	return err
}

// Delete removes sets by id. Ids that do not exist are ignored.
func (r *mongoSetRepository) Delete(ctx context.Context, tenant string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result, err := r.collection.DeleteMany(ctx,
		tenantFilter(tenant, bson.E{Key: repository.ColID, Value: bson.M{"$in": ids}}))
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// Ping verifies the server is reachable.
func (r *mongoSetRepository) Ping(ctx context.Context) error {
	return r.db.Client().Ping(ctx, readpref.Primary())
}

// EnsureSetIndexes creates necessary indexes for the sets collection. Call during startup.
func EnsureSetIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Ids are unique within a tenant
			Keys:    bson.D{{Key: repository.ColDeviceID, Value: 1}, {Key: repository.ColID, Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			// Default listing order
			Keys: bson.D{
				{Key: repository.ColDeviceID, Value: 1},
				{Key: repository.ColPerformedAt, Value: -1},
				{Key: repository.ColCreatedAt, Value: -1},
			},
			Options: options.Index(),
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
