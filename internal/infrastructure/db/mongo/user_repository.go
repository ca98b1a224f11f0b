package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/identikit/identity-api/internal/core/domain"
)

const userCollection = "identities"

// UserRepository persists identities in MongoDB. Updates are optimistic:
// the filter matches _id plus the version read earlier, so a lost race
// surfaces as domain.ErrVersionConflict instead of a silent overwrite.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(userCollection)}
}

// EnsureIndexes creates the unique email index. Call once at startup.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("ensure email index: %w", err)
	}
	return nil
}

type mongoUser struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Email          string             `bson:"email"`
	FullName       string             `bson:"full_name,omitempty"`
	IsActive       bool               `bson:"is_active"`
	IsSuperuser    bool               `bson:"is_superuser"`
	HashedPassword string             `bson:"hashed_password,omitempty"`
	PasswordSet    bool               `bson:"password_set"`
	PasswordExpire *time.Time         `bson:"password_expire,omitempty"`
	LoginRetry     int                `bson:"login_retry"`
	Version        int64              `bson:"version"`
	TimeCreation   time.Time          `bson:"time_creation"`
	TimeUpdated    time.Time          `bson:"time_updated"`
}

func toDoc(u *domain.User) mongoUser {
	return mongoUser{
		Email:          u.Email,
		FullName:       u.FullName,
		IsActive:       u.IsActive,
		IsSuperuser:    u.IsSuperuser,
		HashedPassword: u.HashedPassword,
		PasswordSet:    u.PasswordSet,
		PasswordExpire: u.PasswordExpire,
		LoginRetry:     u.LoginRetry,
		Version:        u.Version,
		TimeCreation:   u.TimeCreation,
		TimeUpdated:    u.TimeUpdated,
	}
}

func (m mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:             m.ID.Hex(),
		Email:          m.Email,
		FullName:       m.FullName,
		IsActive:       m.IsActive,
		IsSuperuser:    m.IsSuperuser,
		HashedPassword: m.HashedPassword,
		PasswordSet:    m.PasswordSet,
		PasswordExpire: m.PasswordExpire,
		LoginRetry:     m.LoginRetry,
		Version:        m.Version,
		TimeCreation:   m.TimeCreation,
		TimeUpdated:    m.TimeUpdated,
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	doc := toDoc(user)
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	created := *user
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var mu mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

// Update rewrites the mutable fields where both _id and version still
// match, bumping the version. No match means either the user vanished or
// another writer won; the two are told apart with a follow-up lookup.
func (r *UserRepository) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	filter := bson.M{"_id": oid, "version": user.Version}
	update := bson.M{
		"$set": bson.M{
			"email":           user.Email,
			"full_name":       user.FullName,
			"is_active":       user.IsActive,
			"is_superuser":    user.IsSuperuser,
			"hashed_password": user.HashedPassword,
			"password_set":    user.PasswordSet,
			"password_expire": user.PasswordExpire,
			"login_retry":     user.LoginRetry,
			"time_updated":    user.TimeUpdated,
		},
		"$inc": bson.M{"version": 1},
	}

	var mu mongoUser
	err = r.coll.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&mu)
	if err == nil {
		return mu.toDomain(), nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return nil, domain.ErrUserExists
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("update user: %w", err)
	}

	if _, err := r.FindByID(ctx, user.ID); err != nil {
		return nil, err
	}
	return nil, domain.ErrVersionConflict
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context, page, limit int) ([]*domain.User, error) {
	if page < 0 {
		page = 0
	}
	if limit <= 0 {
		limit = 20
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64(page * limit)).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []*domain.User
	for cursor.Next(ctx) {
		var mu mongoUser
		if err := cursor.Decode(&mu); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		users = append(users, mu.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
