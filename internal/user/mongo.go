package user

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore は MongoDB の users コレクションを使った Store 実装です。
type MongoStore struct {
	col *mongo.Collection
}

// NewMongoStore は MongoStore を作成します。
func NewMongoStore(col *mongo.Collection) *MongoStore {
	return &MongoStore{col: col}
}

// EnsureIndexes はメールアドレスのユニークインデックスを作成します。
// 起動時に一度呼び出します（既に存在する場合は何もしません）。
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create email index: %w", err)
	}
	return nil
}

// Insert は新しいユーザーを保存します。
func (s *MongoStore) Insert(ctx context.Context, u *User) error {
	if u == nil {
		return fmt.Errorf("user is nil")
	}
	if _, err := s.col.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// FindByEmail はメールアドレスが一致するユーザーをすべて返します。
func (s *MongoStore) FindByEmail(ctx context.Context, email string) ([]User, error) {
	return s.find(ctx, bson.D{{Key: "email", Value: email}})
}

// FindByName は名前が一致するユーザーをすべて返します。
func (s *MongoStore) FindByName(ctx context.Context, name string) ([]User, error) {
	return s.find(ctx, bson.D{{Key: "name", Value: name}})
}

func (s *MongoStore) find(ctx context.Context, filter bson.D) ([]User, error) {
	cursor, err := s.col.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}
