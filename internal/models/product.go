package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type Product struct {
	ID             primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name           string             `json:"name" bson:"name"`
	Description    string             `json:"description" bson:"description"`
	Price          float64            `json:"price" bson:"price"`
	Images         []string           `json:"image" bson:"image"`
	Bestseller     bool               `json:"bestseller" bson:"bestseller"`
	Benefits       string             `json:"benefits" bson:"benefits"`
	KeyIngredients string             `json:"keyIngredients" bson:"keyIngredients"`
	SkinType       string             `json:"skinType" bson:"skinType"`
	Volume         float64            `json:"volume" bson:"volume"`
	Rating         float64            `json:"rating" bson:"rating"`           // 0-5, recalculé par les avis
	ReviewCount    int                `json:"reviewCount" bson:"reviewCount"` // jamais négatif
	Date           int64              `json:"date" bson:"date"`
}
