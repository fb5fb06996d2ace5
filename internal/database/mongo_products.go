package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"dermodazzle_back_end/internal/apperr"
	"dermodazzle_back_end/internal/models"
)

type ProductRepository struct{ m *Mongo }

func (m *Mongo) Products() *ProductRepository { return &ProductRepository{m: m} }

func (r *ProductRepository) List(ctx context.Context) ([]models.Product, error) {
	cur, err := r.m.col(ColProducts).Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	products := []models.Product{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *ProductRepository) Get(ctx context.Context, id string) (*models.Product, error) {
	oid, err := objectID(id, "produit")
	if err != nil {
		return nil, err
	}
	var p models.Product
	if err := r.m.col(ColProducts).FindOne(ctx, bson.M{"_id": oid}).Decode(&p); err != nil {
		return nil, notFound(err, "Produit introuvable")
	}
	return &p, nil
}

func (r *ProductRepository) Exists(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}
	n, err := r.m.col(ColProducts).CountDocuments(ctx, bson.M{"_id": oid}, options.Count().SetLimit(1))
	return n > 0, err
}

func (r *ProductRepository) Insert(ctx context.Context, p *models.Product) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	_, err := r.m.col(ColProducts).InsertOne(ctx, p)
	return err
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id, "produit")
	if err != nil {
		return err
	}
	res, err := r.m.col(ColProducts).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("Produit introuvable")
	}
	return nil
}

func (r *ProductRepository) SetRating(ctx context.Context, id string, rating float64, count int) error {
	oid, err := objectID(id, "produit")
	if err != nil {
		return err
	}
	res, err := r.m.col(ColProducts).UpdateByID(ctx, oid, bson.M{"$set": bson.M{"rating": rating, "reviewCount": count}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("Produit introuvable")
	}
	return nil
}
