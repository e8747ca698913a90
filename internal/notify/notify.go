// Package notify maintains each user's notification inbox.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Notification struct {
	ID        string `bson:"_id" json:"id"`
	UserID    string `bson:"user_id" json:"-"`
	Title     string `bson:"title" json:"title"`
	Message   string `bson:"message" json:"message"`
	Timestamp int64  `bson:"timestamp" json:"timestamp"`
}

type Inbox struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewInbox(client *mongo.Client, dbName, collName string) *Inbox {
	return &Inbox{
		coll: client.Database(dbName).Collection(collName),
		now:  time.Now,
	}
}

// Push appends a notification to the user's inbox and returns its ID.
func (i *Inbox) Push(ctx context.Context, userID, title, message string) (string, error) {
	n := Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Timestamp: i.now().UnixMilli(),
	}
	if _, err := i.coll.InsertOne(ctx, n); err != nil {
		return "", fmt.Errorf("failed to insert notification: %w", err)
	}
	return n.ID, nil
}

// List returns the user's notifications, newest first.
func (i *Inbox) List(ctx context.Context, userID string) ([]Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cursor, err := i.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer cursor.Close(ctx)

	var notifications []Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %w", err)
	}
	return notifications, nil
}
