package database

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"dermodazzle_back_end/internal/apperr"
	"dermodazzle_back_end/internal/models"
)

type UserRepository struct{ m *Mongo }

func (m *Mongo) Users() *UserRepository { return &UserRepository{m: m} }

func (r *UserRepository) Insert(ctx context.Context, u *models.User) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.Email = strings.ToLower(u.Email)
	_, err := r.m.col(ColUsers).InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return apperr.Conflict("Cet email est déjà utilisé")
	}
	return err
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.m.col(ColUsers).FindOne(ctx, bson.M{"email": strings.ToLower(email)}).Decode(&u)
	if err != nil {
		return nil, notFound(err, "Utilisateur introuvable")
	}
	return &u, nil
}

func (r *UserRepository) Get(ctx context.Context, id string) (*models.User, error) {
	oid, err := objectID(id, "utilisateur")
	if err != nil {
		return nil, err
	}
	var u models.User
	if err := r.m.col(ColUsers).FindOne(ctx, bson.M{"_id": oid}).Decode(&u); err != nil {
		return nil, notFound(err, "Utilisateur introuvable")
	}
	return &u, nil
}

// UpsertOAuth crée le compte social ou le rattache à l'email existant.
func (r *UserRepository) UpsertOAuth(ctx context.Context, provider, providerID, email, name string) (*models.User, error) {
	email = strings.ToLower(email)
	filter := bson.M{"email": email}
	update := bson.M{
		"$setOnInsert": bson.M{
			"name":       name,
			"email":      email,
			"provider":   provider,
			"providerId": providerID,
			"createdAt":  time.Now(),
		},
	}
	var u models.User
	err := r.m.col(ColUsers).FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)).Decode(&u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) SetPassword(ctx context.Context, id, hash string) error {
	oid, err := objectID(id, "utilisateur")
	if err != nil {
		return err
	}
	res, err := r.m.col(ColUsers).UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"password": hash}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("Utilisateur introuvable")
	}
	return nil
}
