package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lastutorials/pdfsplit/internal/document"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo stores documents in a collection keyed by the "documentId"
// field; Mongo's own _id is left to the driver.
type MongoRepo struct {
	col *mongo.Collection
}

// NewMongoRepo ensures the unique documentId index and returns the repo.
func NewMongoRepo(ctx context.Context, col *mongo.Collection) (*MongoRepo, error) {
	idx := mongo.IndexModel{Keys: bson.D{{Key: "documentId", Value: 1}}, Options: options.Index().SetUnique(true)}
	if _, err := col.Indexes().CreateOne(ctx, idx); err != nil {
		return nil, fmt.Errorf("create documentId index: %w", err)
	}
	return &MongoRepo{col: col}, nil
}

func (m *MongoRepo) Create(ctx context.Context, doc *document.Document) error {
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	if _, err := m.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrExists
		}
		return err
	}
	return nil
}

func (m *MongoRepo) Get(ctx context.Context, id document.ID) (*document.Document, error) {
	var d document.Document
	if err := m.col.FindOne(ctx, bson.M{"documentId": id}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (m *MongoRepo) List(ctx context.Context) ([]*document.Document, error) {
	cur, err := m.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "documentId", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*document.Document{}
	for cur.Next(ctx) {
		var d document.Document
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, &d)
	}
	return out, cur.Err()
}

func (m *MongoRepo) Update(ctx context.Context, id document.ID, p Patch) (*document.Document, error) {
	update := mongoUpdate(p, time.Now().UTC())
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var d document.Document
	if err := m.col.FindOneAndUpdate(ctx, bson.M{"documentId": id}, update, opts).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (m *MongoRepo) Delete(ctx context.Context, id document.ID) error {
	res, err := m.col.DeleteOne(ctx, bson.M{"documentId": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// mongoUpdate translates a Patch into $set/$unset operators.
func mongoUpdate(p Patch, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	unset := bson.M{}
	if p.ContentType != nil {
		set["contentType"] = *p.ContentType
	}
	if p.Content != nil {
		if len(*p.Content) == 0 {
			unset["content"] = ""
		} else {
			set["content"] = *p.Content
		}
	}
	if p.ContentKey != nil {
		if *p.ContentKey == "" {
			unset["contentKey"] = ""
		} else {
			set["contentKey"] = *p.ContentKey
		}
	}
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return update
}
