// Copyright (c) 2026 Gukkan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package login

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/taibuivan/gukkan/internal/platform/apperr"
	"github.com/taibuivan/gukkan/internal/platform/ctxutil"
	"github.com/taibuivan/gukkan/internal/platform/supabase"
	"github.com/taibuivan/gukkan/internal/platform/validate"
	"github.com/taibuivan/gukkan/internal/session"
)

// Form field names.
const (
	FieldUserID   = "user_id"
	FieldPassword = "password"
)

// maxUserIDLength bounds the local part of the pseudo-email.
const maxUserIDLength = 64

// ErrInvalidCredentials is the only error sign-in ever returns.
//
// Blank fields, unknown users, wrong passwords and backend outages all map to it.
var ErrInvalidCredentials = apperr.Unauthorized("Invalid login credentials")

// Authenticator is the auth backend.
type Authenticator interface {
	SignInWithPassword(ctx context.Context, email, password string) (*supabase.Session, error)
	SignOut(ctx context.Context, accessToken string) error
}

// # Service

// Service signs users in and out.
type Service struct {
	auth        Authenticator
	revocations session.Revocations
	domain      string
	timeout     time.Duration
}

// ServiceConfig wires a [Service].
type ServiceConfig struct {
	Auth        Authenticator
	Revocations session.Revocations // optional
	EmailDomain string
	Timeout     time.Duration
}

func NewService(cfg ServiceConfig) *Service {
	revocations := cfg.Revocations
	if revocations == nil {
		revocations = session.NopRevocations{}
	}
	return &Service{
		auth:        cfg.Auth,
		revocations: revocations,
		domain:      cfg.EmailDomain,
		timeout:     cfg.Timeout,
	}
}

// PseudoEmail maps a user ID onto the email the auth backend knows it by.
func PseudoEmail(userID, domain string) string {
	return userID + "@" + domain
}

/*
SignIn exchanges a user ID and password for a session.

The ID is trimmed; the password is passed as typed. Every failure is logged
with its cause and returned as [ErrInvalidCredentials].
*/
func (service *Service) SignIn(parent context.Context, userID, password string) (*supabase.Session, error) {
	logger := ctxutil.GetLogger(parent)
	userID = strings.TrimSpace(userID)

	validator := &validate.Validator{}
	validator.Required(FieldUserID, userID).
		MaxLen(FieldUserID, userID, maxUserIDLength).
		NoSpace(FieldUserID, userID).
		Custom(FieldUserID, strings.Contains(userID, "@"), "Must not contain '@'").
		Required(FieldPassword, password)
	if err := validator.Err(); err != nil {
		logger.InfoContext(parent, "login_rejected", slog.String("reason", "validation"))
		return nil, ErrInvalidCredentials
	}

	ctx, cancel := context.WithTimeout(parent, service.timeout)
	defer cancel()

	issued, err := service.auth.SignInWithPassword(ctx, PseudoEmail(userID, service.domain), password)
	if err != nil {
		// The rendered response is the same either way; only the log tells
		// a refused credential from an unreachable backend.
		reason := "backend"
		if supabase.IsStatus(err, http.StatusBadRequest) {
			reason = "credentials"
		}
		logger.InfoContext(parent, "login_rejected",
			slog.String("reason", reason),
			slog.Any("error", err),
		)
		return nil, ErrInvalidCredentials
	}

	logger.InfoContext(parent, "login_succeeded", slog.String("user_id", userIDOf(issued)))
	return issued, nil
}

/*
SignOut ends current on the backend and revokes its access token locally.

Both steps are best effort: the caller clears the cookies regardless.
*/
func (service *Service) SignOut(parent context.Context, current *supabase.Session) error {
	ctx, cancel := context.WithTimeout(parent, service.timeout)
	defer cancel()

	var failures []error
	if err := service.auth.SignOut(ctx, current.AccessToken); err != nil {
		failures = append(failures, fmt.Errorf("logout_backend_failed: %w", err))
	}
	if err := service.revocations.Revoke(ctx, current.AccessToken, session.Expiry(current)); err != nil {
		failures = append(failures, fmt.Errorf("logout_revoke_failed: %w", err))
	}

	return errors.Join(failures...)
}

func userIDOf(issued *supabase.Session) string {
	if issued.User == nil {
		return ""
	}
	return issued.User.ID
}
