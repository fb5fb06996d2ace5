package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Review struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	ProductID string             `json:"productId" bson:"productId"`
	UserID    string             `json:"userId" bson:"userId"`
	Name      string             `json:"name" bson:"name"` // nom figé à la publication
	Rating    int                `json:"rating" bson:"rating"`
	Comment   string             `json:"comment" bson:"comment"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

type ProductRating struct {
	ProductID     string  `json:"productId"`
	AverageRating float64 `json:"averageRating"`
	TotalReviews  int     `json:"totalReviews"`
}
