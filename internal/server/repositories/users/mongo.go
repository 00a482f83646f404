package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/videotube/internal/common"
	"github.com/dmitrijs2005/videotube/internal/server/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the MongoDB collection holding accounts.
const CollectionName = "users"

// userDocument is the stored shape of an account.
type userDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	Email        string             `bson:"email"`
	FullName     string             `bson:"fullName"`
	Avatar       string             `bson:"avatar"`
	CoverImage   string             `bson:"coverImage"`
	Password     string             `bson:"password,omitempty"`
	RefreshToken string             `bson:"refreshToken,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

func toDocument(u *models.User) userDocument {
	return userDocument{
		Username:     u.Username,
		Email:        u.Email,
		FullName:     u.FullName,
		Avatar:       u.AvatarURL,
		CoverImage:   u.CoverImageURL,
		Password:     u.PasswordHash,
		RefreshToken: u.RefreshToken,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (d userDocument) toModel() *models.User {
	return &models.User{
		ID:            d.ID.Hex(),
		Username:      d.Username,
		Email:         d.Email,
		FullName:      d.FullName,
		AvatarURL:     d.Avatar,
		CoverImageURL: d.CoverImage,
		PasswordHash:  d.Password,
		RefreshToken:  d.RefreshToken,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

// secretsProjection drops the password hash and refresh token from results.
var secretsProjection = bson.M{"password": 0, "refreshToken": 0}

// identifierFilters returns one filter per non-empty identifier, username
// first. Lookups try them in order.
func identifierFilters(username, email string) []bson.M {
	var filters []bson.M
	if username != "" {
		filters = append(filters, bson.M{"username": username})
	}
	if email != "" {
		filters = append(filters, bson.M{"email": email})
	}
	return filters
}

// refreshTokenUpdate sets the token, or unsets the field for an empty token.
func refreshTokenUpdate(token string, now time.Time) bson.M {
	if token == "" {
		return bson.M{
			"$unset": bson.M{"refreshToken": ""},
			"$set":   bson.M{"updatedAt": now},
		}
	}
	return bson.M{"$set": bson.M{"refreshToken": token, "updatedAt": now}}
}

// MongoRepository is a Repository over the users collection.
type MongoRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewMongoRepository binds a repository to the users collection of db.
// Call EnsureIndexes before relying on uniqueness.
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(CollectionName), now: time.Now}
}

// EnsureIndexes creates the unique username and email indexes that make the
// store the authoritative uniqueness guard.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}

// mapMongoError translates driver errors into repository sentinels.
func mapMongoError(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return common.ErrorNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return common.ErrorConflict
	}
	return fmt.Errorf("db error: %w", err)
}

// FindByUsernameOrEmail looks up by username first, then by email.
func (r *MongoRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	for _, filter := range identifierFilters(username, email) {
		var doc userDocument
		err := r.coll.FindOne(ctx, filter).Decode(&doc)
		if err == nil {
			return doc.toModel(), nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mapMongoError(err)
		}
	}
	return nil, common.ErrorNotFound
}

// Create inserts user under a fresh ObjectID. Duplicate keys are
// reported as common.ErrorConflict.
func (r *MongoRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	doc := toDocument(user)
	doc.ID = primitive.NewObjectID()
	doc.CreatedAt = r.now().UTC().Truncate(time.Millisecond)
	doc.UpdatedAt = doc.CreatedAt

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, mapMongoError(err)
	}
	return doc.toModel(), nil
}

// FindByID loads the account with the given hex ObjectID, projecting out
// secrets when excludeSecrets is set.
func (r *MongoRepository) FindByID(ctx context.Context, id string, excludeSecrets bool) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, common.ErrorNotFound
	}

	opts := options.FindOne()
	if excludeSecrets {
		opts.SetProjection(secretsProjection)
	}

	var doc userDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}, opts).Decode(&doc); err != nil {
		return nil, mapMongoError(err)
	}
	return doc.toModel(), nil
}

// UpdateRefreshToken sets or unsets the refresh token and returns the
// updated account without secrets.
func (r *MongoRepository) UpdateRefreshToken(ctx context.Context, id, token string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, common.ErrorNotFound
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(secretsProjection)

	var doc userDocument
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, refreshTokenUpdate(token, r.now().UTC()), opts).Decode(&doc)
	if err != nil {
		return nil, mapMongoError(err)
	}
	return doc.toModel(), nil
}

// UpdatePasswordHash replaces the stored hash.
func (r *MongoRepository) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return common.ErrorNotFound
	}

	res, err := r.coll.UpdateByID(ctx, oid, bson.M{"$set": bson.M{"password": hash, "updatedAt": r.now().UTC()}})
	if err != nil {
		return mapMongoError(err)
	}
	if res.MatchedCount == 0 {
		return common.ErrorNotFound
	}
	return nil
}
