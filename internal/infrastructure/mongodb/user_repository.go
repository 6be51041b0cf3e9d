package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pricetrack/internal/domain/user"
)

type userDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	GitHubID  string             `bson:"githubId"`
	Username  string             `bson:"username"`
	CreatedAt time.Time          `bson:"createdAt,omitempty"`
}

func (d *userDoc) toDomain() *user.User {
	createdAt := d.CreatedAt
	if createdAt.IsZero() {
		// Documents written before createdAt existed carry it in the ObjectID.
		createdAt = d.ID.Timestamp()
	}
	return &user.User{
		ID:        d.ID.Hex(),
		GitHubID:  d.GitHubID,
		Username:  d.Username,
		CreatedAt: createdAt.UTC(),
	}
}

type UserRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

var _ user.Repository = (*UserRepository)(nil)

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{coll: db.collection(usersCollection), now: time.Now}
}

func (r *UserRepository) FindOrCreate(ctx context.Context, profile user.Profile) (u *user.User, err error) {
	ctx, span := startSpan(ctx, usersCollection, "findOneAndUpdate")
	defer func() { endSpan(span, err) }()

	if err := profile.Validate(); err != nil {
		return nil, err
	}

	filter := bson.D{{Key: "githubId", Value: profile.ID}}
	update := bson.D{{Key: "$setOnInsert", Value: bson.D{
		{Key: "githubId", Value: profile.ID},
		{Key: "username", Value: profile.Username},
		{Key: "createdAt", Value: r.now().UTC()},
	}}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc userDoc
	err = r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if mongo.IsDuplicateKeyError(err) {
		// Lost an upsert race with a concurrent first login; the winner's
		// document is there now.
		err = r.coll.FindOne(ctx, filter).Decode(&doc)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find or create user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (u *user.User, err error) {
	ctx, span := startSpan(ctx, usersCollection, "findOne")
	defer func() { endSpan(span, err) }()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, user.ErrUserNotFound
	}

	var doc userDoc
	if err = r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) List(ctx context.Context) (users []*user.User, err error) {
	ctx, span := startSpan(ctx, usersCollection, "find")
	defer func() { endSpan(span, err) }()

	cursor, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	var docs []userDoc
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}

	users = make([]*user.User, 0, len(docs))
	for i := range docs {
		users = append(users, docs[i].toDomain())
	}
	return users, nil
}
