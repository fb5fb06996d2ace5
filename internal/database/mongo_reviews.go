package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"dermodazzle_back_end/internal/apperr"
	"dermodazzle_back_end/internal/models"
	"dermodazzle_back_end/internal/reviews"
)

type ReviewRepository struct{ m *Mongo }

func (m *Mongo) Reviews() *ReviewRepository { return &ReviewRepository{m: m} }

func (r *ReviewRepository) ProductExists(ctx context.Context, productID string) (bool, error) {
	return r.m.Products().Exists(ctx, productID)
}

func (r *ReviewRepository) FindByProductAndUser(ctx context.Context, productID, userID string) (*models.Review, error) {
	var rv models.Review
	err := r.m.col(ColReviews).FindOne(ctx, bson.M{"productId": productID, "userId": userID}).Decode(&rv)
	if err != nil {
		return nil, notFound(err, "Avis introuvable")
	}
	return &rv, nil
}

// Insert s'appuie sur l'index unique (productId, userId).
func (r *ReviewRepository) Insert(ctx context.Context, rv *models.Review) error {
	if rv.ID.IsZero() {
		rv.ID = primitive.NewObjectID()
	}
	_, err := r.m.col(ColReviews).InsertOne(ctx, rv)
	if mongo.IsDuplicateKeyError(err) {
		return apperr.Conflict("Vous avez déjà donné votre avis sur ce produit")
	}
	return err
}

func (r *ReviewRepository) Get(ctx context.Context, id string) (*models.Review, error) {
	oid, err := objectID(id, "avis")
	if err != nil {
		return nil, err
	}
	var rv models.Review
	if err := r.m.col(ColReviews).FindOne(ctx, bson.M{"_id": oid}).Decode(&rv); err != nil {
		return nil, notFound(err, "Avis introuvable")
	}
	return &rv, nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id, "avis")
	if err != nil {
		return err
	}
	res, err := r.m.col(ColReviews).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("Avis introuvable")
	}
	return nil
}

func (r *ReviewRepository) ListByProduct(ctx context.Context, productID string) ([]models.Review, error) {
	cur, err := r.m.col(ColReviews).Find(ctx, bson.M{"productId": productID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	out := []models.Review{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Summarize agrège somme et nombre de notes côté serveur.
func (r *ReviewRepository) Summarize(ctx context.Context, productID string) (reviews.Summary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"productId": productID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"sum":   bson.M{"$sum": "$rating"},
			"count": bson.M{"$sum": 1},
		}}},
	}
	cur, err := r.m.col(ColReviews).Aggregate(ctx, pipeline)
	if err != nil {
		return reviews.Summary{}, err
	}
	defer cur.Close(ctx)

	var row struct {
		Sum   int `bson:"sum"`
		Count int `bson:"count"`
	}
	if cur.Next(ctx) {
		if err := cur.Decode(&row); err != nil {
			return reviews.Summary{}, err
		}
	}
	return reviews.Summary{Sum: row.Sum, Count: row.Count}, cur.Err()
}
