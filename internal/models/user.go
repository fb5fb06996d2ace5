package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID         primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name       string             `json:"name" bson:"name"`
	Email      string             `json:"email" bson:"email"`
	Password   string             `json:"-" bson:"password"`
	Provider   string             `json:"provider,omitempty" bson:"provider,omitempty"`
	ProviderID string             `json:"-" bson:"providerId,omitempty"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
}
