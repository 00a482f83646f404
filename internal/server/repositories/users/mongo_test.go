package users

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/dmitrijs2005/videotube/internal/common"
	"github.com/dmitrijs2005/videotube/internal/server/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func TestIdentifierFilters(t *testing.T) {
	assert.Empty(t, identifierFilters("", ""))
	assert.Equal(t, []bson.M{{"username": "alice"}}, identifierFilters("alice", ""))
	assert.Equal(t, []bson.M{{"email": "a@x.com"}}, identifierFilters("", "a@x.com"))
	assert.Equal(t,
		[]bson.M{{"username": "alice"}, {"email": "a@x.com"}},
		identifierFilters("alice", "a@x.com"))
}

func TestRefreshTokenUpdate(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	set := refreshTokenUpdate("tok", now)
	assert.Equal(t, bson.M{"$set": bson.M{"refreshToken": "tok", "updatedAt": now}}, set)

	unset := refreshTokenUpdate("", now)
	assert.Contains(t, unset, "$unset")
	assert.Equal(t, bson.M{"updatedAt": now}, unset["$set"])
}

func TestDocumentConversion(t *testing.T) {
	u := &models.User{
		Username: "alice", Email: "a@x.com", FullName: "Alice",
		AvatarURL: "http://m/a", CoverImageURL: "http://m/c",
		PasswordHash: "h", RefreshToken: "rt",
	}
	doc := toDocument(u)
	doc.ID = primitive.NewObjectID()

	got := doc.toModel()
	want := *u
	want.ID = doc.ID.Hex()
	if diff := cmp.Diff(&want, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	raw, err := bson.Marshal(userDocument{Username: "bob"})
	require.NoError(t, err)
	var m bson.M
	require.NoError(t, bson.Unmarshal(raw, &m))
	assert.NotContains(t, m, "password")
	assert.NotContains(t, m, "refreshToken")
	assert.NotContains(t, m, "_id")
}

// newMongoRepo connects to MONGODB_TEST_URI and returns a repository bound to
// a throwaway database.
func newMongoRepo(t *testing.T) *MongoRepository {
	t.Helper()
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)

	db := client.Database(fmt.Sprintf("videotube_test_%d", time.Now().UnixNano()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})

	repo := NewMongoRepository(db)
	require.NoError(t, repo.EnsureIndexes(ctx))
	return repo
}

func TestMongoRepository_Integration(t *testing.T) {
	repo := newMongoRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, &models.User{Username: "alice", Email: "alice@x.com", FullName: "Alice", AvatarURL: "a", PasswordHash: "h"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &models.User{Username: "alice", Email: "other@x.com"})
	assert.ErrorIs(t, err, common.ErrorConflict)

	found, err := repo.FindByUsernameOrEmail(ctx, "", "alice@x.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "h", found.PasswordHash)

	bob, err := repo.Create(ctx, &models.User{Username: "bob", Email: "bob@x.com"})
	require.NoError(t, err)
	preferred, err := repo.FindByUsernameOrEmail(ctx, "bob", "alice@x.com")
	require.NoError(t, err)
	assert.Equal(t, bob.ID, preferred.ID)

	pub, err := repo.UpdateRefreshToken(ctx, created.ID, "rt")
	require.NoError(t, err)
	assert.Empty(t, pub.RefreshToken)
	assert.Empty(t, pub.PasswordHash)

	full, err := repo.FindByID(ctx, created.ID, false)
	require.NoError(t, err)
	assert.Equal(t, "rt", full.RefreshToken)

	_, err = repo.UpdateRefreshToken(ctx, created.ID, "")
	require.NoError(t, err)
	full, err = repo.FindByID(ctx, created.ID, false)
	require.NoError(t, err)
	assert.Empty(t, full.RefreshToken)

	require.NoError(t, repo.UpdatePasswordHash(ctx, created.ID, "h2"))
	full, _ = repo.FindByID(ctx, created.ID, false)
	assert.Equal(t, "h2", full.PasswordHash)

	_, err = repo.FindByID(ctx, "not-an-object-id", true)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = repo.FindByID(ctx, primitive.NewObjectID().Hex(), true)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
