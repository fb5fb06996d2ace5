package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"dermodazzle_back_end/internal/apperr"
	"dermodazzle_back_end/internal/models"
)

type OrderRepository struct{ m *Mongo }

func (m *Mongo) Orders() *OrderRepository { return &OrderRepository{m: m} }

func (r *OrderRepository) Insert(ctx context.Context, o *models.Order) error {
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	_, err := r.m.col(ColOrders).InsertOne(ctx, o)
	return err
}

func (r *OrderRepository) Get(ctx context.Context, id string) (*models.Order, error) {
	oid, err := objectID(id, "commande")
	if err != nil {
		return nil, err
	}
	var o models.Order
	if err := r.m.col(ColOrders).FindOne(ctx, bson.M{"_id": oid}).Decode(&o); err != nil {
		return nil, notFound(err, "Commande introuvable")
	}
	return &o, nil
}

func (r *OrderRepository) set(ctx context.Context, id string, fields bson.M) error {
	oid, err := objectID(id, "commande")
	if err != nil {
		return err
	}
	fields["updatedAt"] = time.Now()
	res, err := r.m.col(ColOrders).UpdateByID(ctx, oid, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("Commande introuvable")
	}
	return nil
}

func (r *OrderRepository) SetPayment(ctx context.Context, id string, paid bool) error {
	return r.set(ctx, id, bson.M{"payment": paid})
}

func (r *OrderRepository) SetStatus(ctx context.Context, id, status string) error {
	return r.set(ctx, id, bson.M{"status": status})
}

// SetTracking écrit suivi, transporteur et statut en une seule mise à jour.
func (r *OrderRepository) SetTracking(ctx context.Context, id, trackingID, courier, status string) (*models.Order, error) {
	oid, err := objectID(id, "commande")
	if err != nil {
		return nil, err
	}
	update := bson.M{"$set": bson.M{
		"trackingId":     trackingID,
		"courierPartner": courier,
		"status":         status,
		"updatedAt":      time.Now(),
	}}
	var o models.Order
	err = r.m.col(ColOrders).FindOneAndUpdate(ctx, bson.M{"_id": oid}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&o)
	if err != nil {
		return nil, notFound(err, "Commande introuvable")
	}
	return &o, nil
}

func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id, "commande")
	if err != nil {
		return err
	}
	_, err = r.m.col(ColOrders).DeleteOne(ctx, bson.M{"_id": oid})
	return err
}

func (r *OrderRepository) List(ctx context.Context) ([]models.Order, error) {
	return r.find(ctx, bson.M{})
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	return r.find(ctx, bson.M{"userId": userID})
}

func (r *OrderRepository) find(ctx context.Context, filter bson.M) ([]models.Order, error) {
	cur, err := r.m.col(ColOrders).Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, err
	}
	orders := []models.Order{}
	if err := cur.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}
