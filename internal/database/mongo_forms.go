package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"dermodazzle_back_end/internal/apperr"
	"dermodazzle_back_end/internal/models"
)

type SubscriberRepository struct{ m *Mongo }

func (m *Mongo) Subscribers() *SubscriberRepository { return &SubscriberRepository{m: m} }

func (r *SubscriberRepository) Insert(ctx context.Context, s *models.Subscriber) error {
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	_, err := r.m.col(ColSubscribers).InsertOne(ctx, s)
	if mongo.IsDuplicateKeyError(err) {
		return apperr.Conflict("Cet email est déjà inscrit")
	}
	return err
}

type ContactRepository struct{ m *Mongo }

func (m *Mongo) Contacts() *ContactRepository { return &ContactRepository{m: m} }

func (r *ContactRepository) Insert(ctx context.Context, c *models.Contact) error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	_, err := r.m.col(ColContacts).InsertOne(ctx, c)
	return err
}

func (r *ContactRepository) List(ctx context.Context) ([]models.Contact, error) {
	cur, err := r.m.col(ColContacts).Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	out := []models.Contact{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
