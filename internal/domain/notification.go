package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationType string

const (
	NotificationTypeOrder   NotificationType = "order"
	NotificationTypeProduct NotificationType = "product"
	NotificationTypeSystem  NotificationType = "system"
)

// Notification is an admin-facing feed entry. Only the read flag changes after creation.
type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Type      NotificationType   `bson:"type" json:"type"`
	Message   string             `bson:"message" json:"message"`
	Read      bool               `bson:"read" json:"read"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	Meta      map[string]any     `bson:"meta,omitempty" json:"meta,omitempty"`
}
