package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"regexp"
	"time"

	"github.com/craftboard/craftboard/internal/craftboard/domain"
	"github.com/craftboard/craftboard/internal/craftboard/store"
	"github.com/craftboard/craftboard/pkg/slogx"
)

// Business-rule rejections of the linking protocol. These are terminal
// results for the current call, never retried here; the HTTP layer maps them
// to user-facing messages.
var (
	ErrInvalidCodeFormat   = errors.New("link code must be exactly 6 digits")
	ErrCodeNotFound        = errors.New("link code not found")
	ErrCodeExpired         = errors.New("link code expired")
	ErrCodeAlreadyUsed     = errors.New("link code already used")
	ErrUUIDLinkedElsewhere = errors.New("minecraft account already linked to another user")
	ErrOwnerAlreadyLinked  = errors.New("account already linked to another minecraft account")
)

// DefaultCodeTTL is the validity window of an issued linking code.
const DefaultCodeTTL = 10 * time.Minute

var codePattern = regexp.MustCompile(`^\d{6}$`)

// LinkService implements the one-time-code linking protocol that associates
// a web account with a Minecraft account. Codes are entered out-of-band in
// the game client, so the game side never performs any web authentication.
type LinkService struct {
	Store   store.Store
	CodeTTL time.Duration
}

// LinkResult reports a successful verification.
type LinkResult struct {
	OwnerID string

	// AlreadyLinked is true for the idempotent case: the Minecraft account
	// was already linked to the same owner.
	AlreadyLinked bool
}

func (s *LinkService) codeTTL() time.Duration {
	if s.CodeTTL > 0 {
		return s.CodeTTL
	}
	return DefaultCodeTTL
}

// IssueCode generates a fresh 6-digit code for ownerID and stores it. The
// code is uniformly distributed over 000000-999999; a same-code collision
// inside the validity window overwrites the older record, an accepted risk
// given the keyspace and the 10-minute window.
//
// The caller must already be authenticated; there is no precondition on
// ownerID here.
func (s *LinkService) IssueCode(ctx context.Context, ownerID string) (string, time.Time, error) {
	log := slogx.FromContext(ctx)

	code, err := generateCode()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("generate link code: %w", err)
	}

	now := time.Now()
	record := domain.LinkCode{
		Code:      code,
		OwnerID:   ownerID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.codeTTL()),
	}

	if err := s.Store.LinkCodes().Put(ctx, record); err != nil {
		log.Error("failed to store link code", slog.Any("error", err))
		return "", time.Time{}, err
	}

	log.Debug("link code issued",
		slog.String("owner_id", ownerID),
		slog.Time("expires_at", record.ExpiresAt),
	)

	return code, record.ExpiresAt, nil
}

// VerifyCode runs the verification state machine in its fixed precedence
// order: format, existence, expiry, consumption, conflicting link, then
// success. Expiry is enforced lazily here; there is no background sweep.
func (s *LinkService) VerifyCode(ctx context.Context, code, uuid, username string) (LinkResult, error) {
	log := slogx.FromContext(ctx)

	// 1. Format gate, before any store access.
	if !codePattern.MatchString(code) {
		return LinkResult{}, ErrInvalidCodeFormat
	}

	// 2. The code must exist.
	record, err := s.Store.LinkCodes().Get(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return LinkResult{}, ErrCodeNotFound
		}
		log.Error("failed to read link code", slog.Any("error", err))
		return LinkResult{}, err
	}

	// 3. Expired codes are deleted on sight.
	if record.Expired(time.Now()) {
		if err := s.Store.LinkCodes().Delete(ctx, code); err != nil {
			log.Error("failed to delete expired link code", slog.Any("error", err))
			return LinkResult{}, err
		}
		return LinkResult{}, ErrCodeExpired
	}

	// 4. Consumed records are deleted on success, so a Used record here
	// means the delete and this read raced. Kept as a guard.
	if record.Used {
		log.Warn("verification hit a consumed link code", slog.String("owner_id", record.OwnerID))
		return LinkResult{}, ErrCodeAlreadyUsed
	}

	// 5. A UUID linked to a different owner blocks; same owner is an
	// idempotent success and the existing link is left untouched.
	existing, err := s.Store.AccountLinks().GetByUUID(ctx, uuid)
	switch {
	case err == nil:
		if existing.OwnerID != record.OwnerID {
			// The code stays; it may still be used for another account or
			// simply expire.
			return LinkResult{}, ErrUUIDLinkedElsewhere
		}

		if err := s.Store.LinkCodes().Delete(ctx, code); err != nil {
			log.Error("failed to delete link code", slog.Any("error", err))
			return LinkResult{}, err
		}
		return LinkResult{OwnerID: record.OwnerID, AlreadyLinked: true}, nil

	case !errors.Is(err, store.ErrNotFound):
		log.Error("failed to read account link", slog.Any("error", err))
		return LinkResult{}, err
	}

	// 6. One link per owner: an owner already linked to a different UUID
	// must unlink first.
	if _, err := s.Store.AccountLinks().GetByOwner(ctx, record.OwnerID); err == nil {
		return LinkResult{}, ErrOwnerAlreadyLinked
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Error("failed to read owner link", slog.Any("error", err))
		return LinkResult{}, err
	}

	// 7. Create the link, consume the code.
	link := domain.AccountLink{
		MinecraftUUID:     uuid,
		OwnerID:           record.OwnerID,
		MinecraftUsername: username,
		LinkedAt:          time.Now(),
	}
	if err := s.Store.AccountLinks().Put(ctx, link); err != nil {
		log.Error("failed to store account link", slog.Any("error", err))
		return LinkResult{}, err
	}

	if err := s.Store.LinkCodes().Delete(ctx, code); err != nil {
		log.Error("failed to delete consumed link code", slog.Any("error", err))
		return LinkResult{}, err
	}

	log.Info("minecraft account linked",
		slog.String("owner_id", record.OwnerID),
		slog.String("minecraft_uuid", uuid),
		slog.String("minecraft_username", username),
	)

	return LinkResult{OwnerID: record.OwnerID}, nil
}

// Status reports whether a Minecraft UUID is linked. An unknown UUID is a
// valid unlinked result, not an error.
func (s *LinkService) Status(ctx context.Context, uuid string) (domain.AccountLink, bool, error) {
	link, err := s.Store.AccountLinks().GetByUUID(ctx, uuid)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.AccountLink{}, false, nil
		}
		return domain.AccountLink{}, false, err
	}
	return link, true, nil
}

// LinkedAccount returns the owner's current link via the owner index.
func (s *LinkService) LinkedAccount(ctx context.Context, ownerID string) (domain.AccountLink, bool, error) {
	link, err := s.Store.AccountLinks().GetByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.AccountLink{}, false, nil
		}
		return domain.AccountLink{}, false, err
	}
	return link, true, nil
}

// Unlink removes the owner's link, reporting whether one existed.
func (s *LinkService) Unlink(ctx context.Context, ownerID string) (bool, error) {
	removed, err := s.Store.AccountLinks().DeleteByOwner(ctx, ownerID)
	if err != nil {
		return false, err
	}

	if removed {
		slogx.FromContext(ctx).Info("minecraft account unlinked", slog.String("owner_id", ownerID))
	}
	return removed, nil
}

// generateCode draws a uniform 6-digit code from crypto/rand.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
