package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderItem est une copie du produit au moment de la commande,
// les modifications ultérieures du catalogue ne la touchent pas.
type OrderItem struct {
	ProductID string   `json:"productId" bson:"productId"`
	Name      string   `json:"name" bson:"name"`
	Price     float64  `json:"price" bson:"price"`
	Quantity  int      `json:"quantity" bson:"quantity"`
	Images    []string `json:"image" bson:"image"`
	SkinType  string   `json:"skinType,omitempty" bson:"skinType,omitempty"`
	Volume    float64  `json:"volume,omitempty" bson:"volume,omitempty"`
}

// Address reste un objet libre, comme saisi au checkout.
type Address map[string]any

type Order struct {
	ID             primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	UserID         string             `json:"userId" bson:"userId"`
	Items          []OrderItem        `json:"items" bson:"items"`
	Amount         float64            `json:"amount" bson:"amount"`
	Address        Address            `json:"address" bson:"address"`
	Status         string             `json:"status" bson:"status"`
	PaymentMethod  string             `json:"paymentMethod" bson:"paymentMethod"`
	Payment        bool               `json:"payment" bson:"payment"`
	TrackingID     string             `json:"trackingId,omitempty" bson:"trackingId,omitempty"`
	CourierPartner string             `json:"courierPartner,omitempty" bson:"courierPartner,omitempty"`
	Date           int64              `json:"date" bson:"date"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updatedAt"`
}
