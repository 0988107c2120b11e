package store

import (
	"context"
	"errors"
	"fmt"

	"fertadvisor/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Mongo stores users and recommendations in MongoDB.
type Mongo struct {
	client          *mongo.Client
	users           *mongo.Collection
	recommendations *mongo.Collection
}

// NewMongo connects and ensures indexes.
func NewMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	db := client.Database(database)

	m := &Mongo{
		client:          client,
		users:           db.Collection("users"),
		recommendations: db.Collection("fertilizer_recommendations"),
	}
	// Indexes
	if _, err := m.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("users index: %w", err)
	}
	if _, err := m.recommendations.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "ownerId", Value: 1}, {Key: "createdAt", Value: -1}},
	}); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("recommendations index: %w", err)
	}
	return m, nil
}

func (m *Mongo) CreateUser(ctx context.Context, u *models.User) error {
	res, err := m.users.InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return err
	}
	u.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (m *Mongo) UserByEmail(ctx context.Context, email string) (models.User, error) {
	return m.findUser(ctx, bson.M{"email": email})
}

func (m *Mongo) UserByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	return m.findUser(ctx, bson.M{"_id": id})
}

func (m *Mongo) findUser(ctx context.Context, filter bson.M) (models.User, error) {
	var u models.User
	if err := m.users.FindOne(ctx, filter).Decode(&u); err != nil {
		return models.User{}, mapErr(err)
	}
	return u, nil
}

func (m *Mongo) InsertRecommendation(ctx context.Context, rec *models.RecommendationRecord) error {
	res, err := m.recommendations.InsertOne(ctx, rec)
	if err != nil {
		return err
	}
	rec.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (m *Mongo) ListRecommendations(ctx context.Context, owner primitive.ObjectID, f ListFilter) ([]models.RecommendationRecord, int64, error) {
	filter := bson.M{"ownerId": owner}
	if f.CropType != "" {
		filter["cropType"] = f.CropType
	}

	total, err := m.recommendations.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(f.Offset)).
		SetLimit(int64(f.limit()))
	cur, err := m.recommendations.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	out := []models.RecommendationRecord{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (m *Mongo) GetRecommendation(ctx context.Context, owner, id primitive.ObjectID) (models.RecommendationRecord, error) {
	var rec models.RecommendationRecord
	if err := m.recommendations.FindOne(ctx, bson.M{"_id": id, "ownerId": owner}).Decode(&rec); err != nil {
		return models.RecommendationRecord{}, mapErr(err)
	}
	return rec, nil
}

func (m *Mongo) DeleteRecommendation(ctx context.Context, owner, id primitive.ObjectID) error {
	res, err := m.recommendations.DeleteOne(ctx, bson.M{"_id": id, "ownerId": owner})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func mapErr(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}
