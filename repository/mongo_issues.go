package repository

import (
	"context"
	"fmt"
	"time"

	"civiclens-be/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoIssueRepository struct {
	coll *mongo.Collection
}

func issueQuery(filter IssueFilter) bson.M {
	query := bson.M{}
	if filter.Status != nil {
		query["status"] = *filter.Status
	}
	if filter.Locality != nil {
		query["locality"] = *filter.Locality
	}
	if filter.IssueType != nil {
		query["issueType"] = *filter.IssueType
	}
	if filter.Since != nil || filter.Until != nil {
		created := bson.M{}
		if filter.Since != nil {
			created["$gte"] = *filter.Since
		}
		if filter.Until != nil {
			created["$lt"] = *filter.Until
		}
		query["createdAt"] = created
	}
	return query
}

func (r *mongoIssueRepository) Create(ctx context.Context, issue *models.Issue) error {
	now := time.Now()
	if issue.ID.IsZero() {
		issue.ID = primitive.NewObjectID()
	}
	if issue.CreatedAt.IsZero() {
		issue.CreatedAt = now
	}
	issue.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, issue); err != nil {
		return fmt.Errorf("insert issue: %w", translateError(err))
	}
	return nil
}

func (r *mongoIssueRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Issue, error) {
	var issue models.Issue
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&issue); err != nil {
		return nil, translateError(err)
	}
	return &issue, nil
}

func (r *mongoIssueRepository) List(ctx context.Context, filter IssueFilter, sort IssueSort, page Page) ([]models.Issue, error) {
	var order bson.D
	switch sort {
	case MostUpvoted:
		order = bson.D{{Key: "upvotes", Value: -1}, {Key: "createdAt", Value: -1}}
	default:
		order = bson.D{{Key: "createdAt", Value: -1}}
	}

	cursor, err := r.coll.Find(ctx, issueQuery(filter), pageOptions(page).SetSort(order))
	if err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}
	defer cursor.Close(ctx)

	issues := []models.Issue{}
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, fmt.Errorf("decode issues: %w", err)
	}
	return issues, nil
}

func (r *mongoIssueRepository) Count(ctx context.Context, filter IssueFilter) (int64, error) {
	return r.coll.CountDocuments(ctx, issueQuery(filter))
}

func (r *mongoIssueRepository) findAndUpdate(ctx context.Context, id primitive.ObjectID, update bson.M) (*models.Issue, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var issue models.Issue
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&issue); err != nil {
		return nil, translateError(err)
	}
	return &issue, nil
}

func (r *mongoIssueRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status models.IssueStatus) (*models.Issue, error) {
	return r.findAndUpdate(ctx, id, bson.M{
		"$set": bson.M{"status": status, "updatedAt": time.Now()},
	})
}

func (r *mongoIssueRepository) IncrementUpvotes(ctx context.Context, id primitive.ObjectID) (*models.Issue, error) {
	return r.findAndUpdate(ctx, id, bson.M{
		"$inc": bson.M{"upvotes": 1},
		"$set": bson.M{"updatedAt": time.Now()},
	})
}
