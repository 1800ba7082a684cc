package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/siddeshwardm/chat-application/internal/models"
	"github.com/siddeshwardm/chat-application/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	demoEmail = regexp.MustCompile(`(?i)^demo\d+_\d+@test\.com$`)
	seedEmail = regexp.MustCompile(`(?i)@example\.com$`)
)

// IsDemoEmail reports whether email belongs to a generated demo or seed account.
func IsDemoEmail(email string) bool {
	return demoEmail.MatchString(email) || seedEmail.MatchString(email)
}

// CleanupOptions selects which accounts survive. With KeepID or KeepEmail set
// exactly that user is kept and everyone else is removed; otherwise only demo
// accounts are removed.
type CleanupOptions struct {
	KeepID    string
	KeepEmail string
}

type CleanupResult struct {
	Kept     *models.User
	Users    int64
	Messages int64
}

// CleanupUsers deletes accounts and every message they sent or received.
func CleanupUsers(ctx context.Context, users *repository.UserRepo, opts CleanupOptions) (CleanupResult, error) {
	var res CleanupResult

	all, err := users.ListAll(ctx)
	if err != nil {
		return res, fmt.Errorf("list users: %w", err)
	}

	var keep *models.User
	if opts.KeepID != "" || opts.KeepEmail != "" {
		keep, err = findKeepUser(ctx, users, opts)
		if err != nil {
			return res, err
		}
	}

	var ids []uuid.UUID
	for _, u := range all {
		switch {
		case keep != nil && u.ID != keep.ID:
			ids = append(ids, u.ID)
		case keep == nil && IsDemoEmail(u.Email):
			ids = append(ids, u.ID)
		}
	}

	res.Kept = keep
	res.Users, res.Messages, err = users.DeleteWithMessages(ctx, ids)
	if err != nil {
		return res, fmt.Errorf("delete users: %w", err)
	}
	log.Ctx(ctx).Info().Int64("users", res.Users).Int64("messages", res.Messages).Msg("users cleaned up")
	return res, nil
}

func findKeepUser(ctx context.Context, users *repository.UserRepo, opts CleanupOptions) (*models.User, error) {
	var (
		u   *models.User
		err error
	)
	if opts.KeepID != "" {
		id, perr := uuid.Parse(opts.KeepID)
		if perr != nil {
			return nil, fmt.Errorf("%w (id=%s)", ErrKeepUserNotFound, opts.KeepID)
		}
		u, err = users.FindByID(ctx, id)
	} else {
		u, err = users.FindByEmail(ctx, opts.KeepEmail)
	}
	if errors.Is(err, repository.ErrUserNotFound) {
		if opts.KeepID != "" {
			return nil, fmt.Errorf("%w (id=%s)", ErrKeepUserNotFound, opts.KeepID)
		}
		return nil, fmt.Errorf("%w (email=%s)", ErrKeepUserNotFound, opts.KeepEmail)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup keep user: %w", err)
	}
	return u, nil
}
