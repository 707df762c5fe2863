// internal/application/usecase/user_usecase.go
package usecase

import (
	"context"
	"errors"
	"log"
	"strings"

	"storefront/internal/domain/apperr"
	authdom "storefront/internal/domain/auth"
	"storefront/internal/domain/permission"
	userdom "storefront/internal/domain/user"
)

var (
	ErrMissingCredentials = apperr.New(apperr.KindValidation, "Please provide both username and password")
	ErrBadCredentials     = apperr.New(apperr.KindValidation, "Invalid username and/or password.")
)

// UserUsecase covers registration, login, token refresh, logout and
// profile maintenance.
type UserUsecase struct {
	users   userdom.Repository
	tokens  authdom.TokenService
	revoker authdom.Revoker
	clock   Clock
	ids     IDGenerator
}

func NewUserUsecase(users userdom.Repository, tokens authdom.TokenService, revoker authdom.Revoker) *UserUsecase {
	return &UserUsecase{users: users, tokens: tokens, revoker: revoker, clock: systemClock{}, ids: newID}
}

type RegisterInput struct {
	Username        string
	Email           string
	FirstName       string
	LastName        string
	Password        string
	PasswordConfirm string
}

// LoginResult is the user with a fresh token pair.
type LoginResult struct {
	User   userdom.User
	Tokens authdom.TokenPair
}

func (uc *UserUsecase) Register(ctx context.Context, in RegisterInput) (userdom.User, error) {
	u, err := userdom.New(uc.ids(), in.Username, in.Email, in.FirstName, in.LastName, uc.clock.Now())
	if err != nil {
		return userdom.User{}, err
	}
	if in.Password == "" {
		return userdom.User{}, apperr.Validation("password", "This field is required.")
	}
	if in.PasswordConfirm == "" {
		return userdom.User{}, apperr.Validation("password_confirm", "This field is required.")
	}
	if in.Password != in.PasswordConfirm {
		return userdom.User{}, userdom.ErrPasswordMismatch
	}
	if err := userdom.ValidatePassword("password", in.Password, u.Username, u.Email); err != nil {
		return userdom.User{}, err
	}
	if err := uc.ensureUnique(ctx, u, ""); err != nil {
		return userdom.User{}, err
	}
	if err := u.SetPassword(in.Password); err != nil {
		return userdom.User{}, err
	}
	created, err := uc.users.Create(ctx, u)
	if err != nil {
		return userdom.User{}, err
	}
	log.Printf("[user_uc] registered user=%s username=%s", created.ID, created.Username)
	return created, nil
}

func (uc *UserUsecase) Login(ctx context.Context, username, password string) (LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return LoginResult{}, ErrMissingCredentials
	}
	u, err := uc.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return LoginResult{}, ErrBadCredentials
		}
		return LoginResult{}, err
	}
	if !u.IsActive || !u.CheckPassword(password) {
		return LoginResult{}, ErrBadCredentials
	}

	pair, err := uc.tokens.IssuePair(subjectOf(u))
	if err != nil {
		return LoginResult{}, err
	}
	now := uc.clock.Now()
	u.LastLogin = &now
	if saved, sErr := uc.users.Save(ctx, u); sErr != nil {
		log.Printf("[user_uc] WARN: update last_login user=%s err=%v", u.ID, sErr)
	} else {
		u = saved
	}
	return LoginResult{User: u, Tokens: pair}, nil
}

// Refresh exchanges a refresh token for a new access token.
func (uc *UserUsecase) Refresh(ctx context.Context, refresh string) (string, error) {
	claims, err := uc.tokens.Parse(strings.TrimSpace(refresh), authdom.TokenRefresh)
	if err != nil {
		return "", err
	}
	if uc.revoker != nil {
		revoked, err := uc.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			return "", err
		}
		if revoked {
			return "", authdom.ErrRevoked
		}
	}
	u, err := uc.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", authdom.ErrInvalidToken
		}
		return "", err
	}
	if !u.IsActive {
		return "", authdom.ErrInvalidToken
	}
	return uc.tokens.IssueAccess(subjectOf(u))
}

// Logout revokes the presented access token and, when given, the refresh
// token until their natural expiry.
func (uc *UserUsecase) Logout(ctx context.Context, actor permission.Actor, access authdom.Claims, refresh string) error {
	if err := permission.RequireAuth(actor); err != nil {
		return err
	}
	if uc.revoker == nil {
		return nil
	}
	if access.ID != "" {
		if err := uc.revoker.Revoke(ctx, access.ID, access.ExpiresAt); err != nil {
			return err
		}
	}
	refresh = strings.TrimSpace(refresh)
	if refresh == "" {
		return nil
	}
	rc, err := uc.tokens.Parse(refresh, authdom.TokenRefresh)
	if err != nil {
		return apperr.Validation("refresh", "Token is invalid or expired")
	}
	if rc.Subject != actor.UserID {
		return apperr.Validation("refresh", "Token does not belong to the current user")
	}
	return uc.revoker.Revoke(ctx, rc.ID, rc.ExpiresAt)
}

func (uc *UserUsecase) Me(ctx context.Context, actor permission.Actor) (userdom.User, error) {
	if err := permission.RequireAuth(actor); err != nil {
		return userdom.User{}, err
	}
	return uc.users.GetByID(ctx, actor.UserID)
}

func (uc *UserUsecase) UpdateProfile(ctx context.Context, actor permission.Actor, p userdom.Patch) (userdom.User, error) {
	u, err := uc.Me(ctx, actor)
	if err != nil {
		return userdom.User{}, err
	}
	next, err := u.Apply(p)
	if err != nil {
		return userdom.User{}, err
	}
	if err := uc.ensureUnique(ctx, next, u.ID); err != nil {
		return userdom.User{}, err
	}
	return uc.users.Save(ctx, next)
}

func (uc *UserUsecase) ChangePassword(ctx context.Context, actor permission.Actor, oldPassword, newPassword, confirm string) error {
	u, err := uc.Me(ctx, actor)
	if err != nil {
		return err
	}
	switch {
	case oldPassword == "":
		return apperr.Validation("old_password", "This field is required.")
	case newPassword == "":
		return apperr.Validation("new_password", "This field is required.")
	case confirm == "":
		return apperr.Validation("new_password_confirm", "This field is required.")
	}
	if newPassword != confirm {
		return userdom.ErrPasswordMismatch
	}
	if err := userdom.ValidatePassword("new_password", newPassword, u.Username, u.Email); err != nil {
		return err
	}
	if !u.CheckPassword(oldPassword) {
		return userdom.ErrWrongPassword
	}
	if err := u.SetPassword(newPassword); err != nil {
		return err
	}
	_, err = uc.users.Save(ctx, u)
	return err
}

// CreateStaff creates a staff account or promotes an existing one. Used by
// the createstaff command.
func (uc *UserUsecase) CreateStaff(ctx context.Context, username, email, password string) (userdom.User, error) {
	existing, err := uc.users.GetByUsername(ctx, strings.TrimSpace(username))
	switch {
	case err == nil:
		existing.IsStaff = true
		if password != "" {
			if err := existing.SetPassword(password); err != nil {
				return userdom.User{}, err
			}
		}
		return uc.users.Save(ctx, existing)
	case !errors.Is(err, apperr.ErrNotFound):
		return userdom.User{}, err
	}

	u, err := userdom.New(uc.ids(), username, email, "", "", uc.clock.Now())
	if err != nil {
		return userdom.User{}, err
	}
	if err := userdom.ValidatePassword("password", password, u.Username, u.Email); err != nil {
		return userdom.User{}, err
	}
	if err := uc.ensureUnique(ctx, u, ""); err != nil {
		return userdom.User{}, err
	}
	u.IsStaff = true
	if err := u.SetPassword(password); err != nil {
		return userdom.User{}, err
	}
	return uc.users.Create(ctx, u)
}

func (uc *UserUsecase) ensureUnique(ctx context.Context, u userdom.User, excludeID string) error {
	taken, err := uc.users.ExistsUsername(ctx, u.Username, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return userdom.ErrUsernameTaken
	}
	taken, err = uc.users.ExistsEmail(ctx, u.Email, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return userdom.ErrEmailTaken
	}
	return nil
}

func subjectOf(u userdom.User) authdom.Subject {
	return authdom.Subject{UserID: u.ID, Username: u.Username, IsStaff: u.IsStaff}
}
