package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/siddeshwardm/chat-application/internal/models"
)

// setupTestDB opens a private in-memory SQLite database for one test.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func mustUser(t *testing.T, repo *UserRepo, email, name string) *models.User {
	t.Helper()
	u := &models.User{Email: email, FullName: name, PasswordHash: "x"}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func TestUserRepoLookups(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepo(setupTestDB(t))

	alice := mustUser(t, users, "  Alice@Example.org ", "Alice")
	assert.NotEqual(t, uuid.Nil, alice.ID)
	assert.Equal(t, "alice@example.org", alice.Email)

	got, err := users.FindByEmail(ctx, "ALICE@example.org")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	got, err = users.FindByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.FullName)

	_, err = users.FindByEmail(ctx, "nobody@example.org")
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = users.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepoRejectsDuplicateEmail(t *testing.T) {
	users := NewUserRepo(setupTestDB(t))
	mustUser(t, users, "dup@example.org", "One")

	err := users.Create(context.Background(), &models.User{Email: "DUP@example.org", FullName: "Two"})
	assert.Error(t, err)
}

func TestUserRepoListExceptAndUpdate(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepo(setupTestDB(t))
	me := mustUser(t, users, "me@example.org", "Me")
	bob := mustUser(t, users, "bob@example.org", "Bob")
	carol := mustUser(t, users, "carol@example.org", "Carol")

	list, err := users.ListExcept(ctx, me.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, bob.ID, list[0].ID)
	assert.Equal(t, carol.ID, list[1].ID)
	assert.Empty(t, list[0].PasswordHash)

	updated, err := users.UpdateProfilePic(ctx, bob.ID, "https://cdn.test/bob.png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/bob.png", updated.ProfilePic)

	_, err = users.UpdateProfilePic(ctx, uuid.New(), "x")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestMessageRepoConversationAndSeen(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	users, msgs := NewUserRepo(db), NewMessageRepo(db)
	a := mustUser(t, users, "a@example.org", "A")
	b := mustUser(t, users, "b@example.org", "B")
	c := mustUser(t, users, "c@example.org", "C")

	base := time.Now().Add(-time.Hour)
	for i, m := range []*models.Message{
		{SenderID: a.ID, ReceiverID: b.ID, Text: "one"},
		{SenderID: b.ID, ReceiverID: a.ID, Text: "two"},
		{SenderID: a.ID, ReceiverID: b.ID, Text: "three"},
		{SenderID: c.ID, ReceiverID: b.ID, Text: "other"},
	} {
		m.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, msgs.Create(ctx, m))
	}

	conv, err := msgs.Conversation(ctx, b.ID, a.ID)
	require.NoError(t, err)
	require.Len(t, conv, 3)
	assert.Equal(t, []string{"one", "two", "three"}, []string{conv[0].Text, conv[1].Text, conv[2].Text})

	counts, err := msgs.UnreadCountsBySender(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[a.ID])
	assert.Equal(t, int64(1), counts[c.ID])

	n, err := msgs.MarkSeen(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	counts, err = msgs.UnreadCountsBySender(ctx, b.ID)
	require.NoError(t, err)
	assert.Zero(t, counts[a.ID])
	assert.Equal(t, int64(1), counts[c.ID])

	// the reply from b to a is untouched
	counts, err = msgs.UnreadCountsBySender(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[b.ID])
}

func TestDeleteWithMessages(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	users, msgs := NewUserRepo(db), NewMessageRepo(db)
	keep := mustUser(t, users, "keep@example.org", "Keep")
	gone := mustUser(t, users, "gone@example.org", "Gone")
	require.NoError(t, msgs.Create(ctx, &models.Message{SenderID: keep.ID, ReceiverID: gone.ID, Text: "hi"}))
	require.NoError(t, msgs.Create(ctx, &models.Message{SenderID: gone.ID, ReceiverID: keep.ID, Text: "yo"}))

	u, m, err := users.DeleteWithMessages(ctx, []uuid.UUID{gone.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), u)
	assert.Equal(t, int64(2), m)

	all, err := users.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, keep.ID, all[0].ID)

	u, m, err = users.DeleteWithMessages(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, u+m)
}
