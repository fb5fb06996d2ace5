package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IssueTypes liste les catégories acceptées par le formulaire de contact.
var IssueTypes = []string{"general", "order", "return", "technical", "billing"}

type Contact struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name      string             `json:"name,omitempty" bson:"name,omitempty"`
	Email     string             `json:"email" bson:"email"`
	Subject   string             `json:"subject" bson:"subject"`
	Message   string             `json:"message" bson:"message"`
	IssueType string             `json:"issueType" bson:"issueType"`
	Status    string             `json:"status" bson:"status"` // new, in_progress, resolved
	Response  string             `json:"response,omitempty" bson:"response,omitempty"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}
