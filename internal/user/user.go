// Package user はユーザー資格情報ストアを提供します。
package user

import (
	"context"
	"errors"
)

// ErrEmailTaken は同じメールアドレスのユーザーが既に存在する場合に返されます。
var ErrEmailTaken = errors.New("email is already registered")

// User は資格情報ストアに保存されるユーザーレコードです。
// PasswordHash には bcrypt ダイジェストのみを保存し、平文は決して保存しません。
type User struct {
	ID           string `bson:"_id"`
	Name         string `bson:"name"`
	Email        string `bson:"email"`
	PasswordHash string `bson:"password"`
}

// Store は資格情報ストアへのアクセスを抽象化します。
type Store interface {
	// Insert は新しいユーザーを保存します。
	// メールアドレスが重複している場合は ErrEmailTaken を返します。
	Insert(ctx context.Context, u *User) error

	// FindByEmail はメールアドレスが一致するユーザーをすべて返します。
	// 認証の判定（件数がちょうど1件か）は呼び出し側が行います。
	FindByEmail(ctx context.Context, email string) ([]User, error)

	// FindByName は名前が一致するユーザーをすべて返します。
	FindByName(ctx context.Context, name string) ([]User, error)
}
