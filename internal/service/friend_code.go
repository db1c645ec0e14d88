package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/iliyamo/travel-agency/internal/model"
	"github.com/iliyamo/travel-agency/internal/repository"
)

const (
	// CodePrefix starts every friend code.
	CodePrefix   = "MOR-"
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6
	// DefaultCodeAttempts bounds the draws made by Generate.
	DefaultCodeAttempts = 10
)

// FriendCodes hands out the single invite code each user owns and
// resolves codes back to users.
type FriendCodes struct {
	store       FriendCodeStore
	maxAttempts int
	random      io.Reader
	clock       func() time.Time
}

// NewFriendCodes builds the generator.  maxAttempts below one falls back
// to DefaultCodeAttempts.
func NewFriendCodes(store FriendCodeStore, maxAttempts int) *FriendCodes {
	if maxAttempts < 1 {
		maxAttempts = DefaultCodeAttempts
	}
	return &FriendCodes{store: store, maxAttempts: maxAttempts, random: rand.Reader, clock: systemClock}
}

// Generate creates the user's code.  A user that already has one gets a
// *CodeExistsError carrying it.
func (s *FriendCodes) Generate(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", invalidInput("user id is required")
	}
	if err := s.existing(ctx, userID); err != nil {
		return "", err
	}
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		code, err := s.draw()
		if err != nil {
			return "", fmt.Errorf("draw friend code: %w", err)
		}
		if _, err := s.store.GetByCode(ctx, code); err == nil {
			continue
		} else if !errors.Is(err, repository.ErrNotFound) {
			return "", fmt.Errorf("check friend code: %w", err)
		}
		err = s.store.Insert(ctx, model.FriendCode{UserID: userID, Code: code, CreatedAt: s.clock()})
		if err == nil {
			return code, nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return "", fmt.Errorf("store friend code: %w", err)
		}
		// Either the code was taken in the meantime or a concurrent call
		// already gave this user a code.
		if err := s.existing(ctx, userID); err != nil {
			return "", err
		}
	}
	return "", ErrGenerationExhausted
}

// existing returns a *CodeExistsError when userID owns a code.
func (s *FriendCodes) existing(ctx context.Context, userID string) error {
	fc, err := s.store.GetByUser(ctx, userID)
	switch {
	case err == nil:
		return &CodeExistsError{Code: fc.Code}
	case errors.Is(err, repository.ErrNotFound):
		return nil
	default:
		return fmt.Errorf("load friend code: %w", err)
	}
}

// Lookup returns the user's code; ok is false when none was generated yet.
func (s *FriendCodes) Lookup(ctx context.Context, userID string) (code string, ok bool, err error) {
	fc, err := s.store.GetByUser(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load friend code: %w", err)
	}
	return fc.Code, true, nil
}

// Resolve returns the user owning code.  Codes are matched after trimming
// and upper-casing.
func (s *FriendCodes) Resolve(ctx context.Context, code string) (string, error) {
	code = NormalizeCode(code)
	if code == "" {
		return "", ErrNotFound
	}
	fc, err := s.store.GetByCode(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("resolve friend code: %w", err)
	}
	return fc.UserID, nil
}

// NormalizeCode trims and upper-cases a code typed by a user.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// draw samples codeLength characters uniformly from codeAlphabet.  Bytes
// at or above the largest multiple of the alphabet size are discarded.
func (s *FriendCodes) draw() (string, error) {
	const limit = 256 - 256%len(codeAlphabet)
	var (
		out = make([]byte, 0, codeLength)
		buf = make([]byte, codeLength*2)
	)
	for len(out) < codeLength {
		if _, err := io.ReadFull(s.random, buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, codeAlphabet[int(b)%len(codeAlphabet)])
			if len(out) == codeLength {
				break
			}
		}
	}
	return CodePrefix + string(out), nil
}
