package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/specboard/syncd/internal/errs"
	"github.com/specboard/syncd/internal/model"
	"github.com/specboard/syncd/internal/repository"
)

// Code alphabet excludes 0/O/1/I so codes survive being read aloud.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	codeLength      = 6
	maxCodeAttempts = 10
	minCodeHours    = 1
	maxCodeHours    = 168
)

// LinkService issues and redeems single-use project join codes.
type LinkService interface {
	// Generate creates a code valid for the given number of hours, clamped
	// to [1, 168]. Requires ADMIN on the project.
	Generate(ctx context.Context, projectID, userID uuid.UUID, hours int) (*model.LinkCode, error)
	// ListActive returns outstanding codes. Requires ADMIN.
	ListActive(ctx context.Context, projectID, userID uuid.UUID) ([]model.LinkCode, error)
	// Redeem joins the calling user to the code's project with EDIT role.
	Redeem(ctx context.Context, code string, userID uuid.UUID) (model.RedeemResult, error)
	// CleanupExpired removes expired codes and returns how many went away.
	CleanupExpired(ctx context.Context) (int64, error)
}

type LinkServiceImpl struct {
	access AccessService
	links  repository.LinkCodeRepository
}

// NewLinkService constructs the link code issuer.
func NewLinkService(access AccessService, links repository.LinkCodeRepository) *LinkServiceImpl {
	return &LinkServiceImpl{access: access, links: links}
}

// Generate issues a fresh code, retrying on the rare collision with an
// existing row. The database unique constraint is the arbiter; Exists is not
// consulted so two issuers cannot race past each other.
func (s *LinkServiceImpl) Generate(ctx context.Context, projectID, userID uuid.UUID, hours int) (*model.LinkCode, error) {
	if _, err := s.access.Authorize(ctx, projectID, userID, model.RoleAdmin); err != nil {
		return nil, err
	}
	if hours < minCodeHours {
		hours = minCodeHours
	}
	if hours > maxCodeHours {
		hours = maxCodeHours
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := randomCode()
		if err != nil {
			return nil, err
		}
		lc := &model.LinkCode{
			ProjectID: projectID,
			Code:      code,
			ExpiresAt: time.Now().UTC().Add(time.Duration(hours) * time.Hour),
		}
		err = s.links.Insert(ctx, lc)
		if err == nil {
			return lc, nil
		}
		if !errors.Is(err, errs.ErrAlreadyExists) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("generate link code: gave up after %d collisions", maxCodeAttempts)
}

// ListActive requires ADMIN and returns unexpired unused codes.
func (s *LinkServiceImpl) ListActive(ctx context.Context, projectID, userID uuid.UUID) ([]model.LinkCode, error) {
	if _, err := s.access.Authorize(ctx, projectID, userID, model.RoleAdmin); err != nil {
		return nil, err
	}
	return s.links.ListActive(ctx, projectID)
}

// Redeem validates and consumes the code for the calling user.
func (s *LinkServiceImpl) Redeem(ctx context.Context, code string, userID uuid.UUID) (model.RedeemResult, error) {
	if len(code) != codeLength {
		return model.RedeemResult{}, fmt.Errorf("%w: malformed code", errs.ErrValidation)
	}
	return s.links.Redeem(ctx, code, userID)
}

// CleanupExpired is called from the background sweeper.
func (s *LinkServiceImpl) CleanupExpired(ctx context.Context) (int64, error) {
	return s.links.DeleteExpired(ctx, time.Now().UTC())
}

// randomCode draws codeLength characters uniformly from codeAlphabet.
func randomCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, codeLength)
	for i, b := range buf {
		out[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(out), nil
}

var _ LinkService = (*LinkServiceImpl)(nil)
