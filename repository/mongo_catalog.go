package repository

import (
	"context"
	"fmt"
	"time"

	"civiclens-be/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoIssueTypeRepository struct {
	coll *mongo.Collection
}

func (r *mongoIssueTypeRepository) Create(ctx context.Context, issueType *models.IssueType) error {
	now := time.Now()
	if issueType.ID.IsZero() {
		issueType.ID = primitive.NewObjectID()
	}
	issueType.CreatedAt = now
	issueType.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, issueType); err != nil {
		return fmt.Errorf("insert issue type: %w", translateError(err))
	}
	return nil
}

func (r *mongoIssueTypeRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.IssueType, error) {
	var issueType models.IssueType
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&issueType); err != nil {
		return nil, translateError(err)
	}
	return &issueType, nil
}

func (r *mongoIssueTypeRepository) FindByKey(ctx context.Context, key string) (*models.IssueType, error) {
	var issueType models.IssueType
	if err := r.coll.FindOne(ctx, bson.M{"key": key}).Decode(&issueType); err != nil {
		return nil, translateError(err)
	}
	return &issueType, nil
}

func (r *mongoIssueTypeRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.IssueType, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cursor, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find issue types: %w", err)
	}
	defer cursor.Close(ctx)

	var types []models.IssueType
	if err := cursor.All(ctx, &types); err != nil {
		return nil, fmt.Errorf("decode issue types: %w", err)
	}
	return types, nil
}

func (r *mongoIssueTypeRepository) List(ctx context.Context, page Page) ([]models.IssueType, error) {
	opts := pageOptions(page).SetSort(bson.D{{Key: "label", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list issue types: %w", err)
	}
	defer cursor.Close(ctx)

	types := []models.IssueType{}
	if err := cursor.All(ctx, &types); err != nil {
		return nil, fmt.Errorf("decode issue types: %w", err)
	}
	return types, nil
}

func (r *mongoIssueTypeRepository) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{})
}

type mongoLocalityRepository struct {
	coll *mongo.Collection
}

func (r *mongoLocalityRepository) Create(ctx context.Context, locality *models.Locality) error {
	now := time.Now()
	if locality.ID.IsZero() {
		locality.ID = primitive.NewObjectID()
	}
	locality.CreatedAt = now
	locality.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, locality); err != nil {
		return fmt.Errorf("insert locality: %w", translateError(err))
	}
	return nil
}

func (r *mongoLocalityRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Locality, error) {
	var locality models.Locality
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&locality); err != nil {
		return nil, translateError(err)
	}
	return &locality, nil
}

func (r *mongoLocalityRepository) FindByName(ctx context.Context, name string) (*models.Locality, error) {
	var locality models.Locality
	if err := r.coll.FindOne(ctx, bson.M{"name": name}).Decode(&locality); err != nil {
		return nil, translateError(err)
	}
	return &locality, nil
}

func (r *mongoLocalityRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Locality, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cursor, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find localities: %w", err)
	}
	defer cursor.Close(ctx)

	var localities []models.Locality
	if err := cursor.All(ctx, &localities); err != nil {
		return nil, fmt.Errorf("decode localities: %w", err)
	}
	return localities, nil
}

func (r *mongoLocalityRepository) List(ctx context.Context, page Page) ([]models.Locality, error) {
	opts := pageOptions(page).SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list localities: %w", err)
	}
	defer cursor.Close(ctx)

	localities := []models.Locality{}
	if err := cursor.All(ctx, &localities); err != nil {
		return nil, fmt.Errorf("decode localities: %w", err)
	}
	return localities, nil
}

func (r *mongoLocalityRepository) WithCoordinates(ctx context.Context) ([]models.Locality, error) {
	filter := bson.M{
		"latitude":  bson.M{"$exists": true, "$ne": nil},
		"longitude": bson.M{"$exists": true, "$ne": nil},
	}
	opts := pageOptions(Page{}).SetSort(bson.D{{Key: "_id", Value: 1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find localities with coordinates: %w", err)
	}
	defer cursor.Close(ctx)

	var localities []models.Locality
	if err := cursor.All(ctx, &localities); err != nil {
		return nil, fmt.Errorf("decode localities: %w", err)
	}
	return localities, nil
}

func (r *mongoLocalityRepository) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{})
}
