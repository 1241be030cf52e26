package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/example/camp-planner/internal/persistence"
)

const minPasswordLength = 8

// UserService orchestrates validation, authorization, and persistence for
// user accounts.
type UserService struct {
	users       persistence.UserRepository
	openSignup  bool
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewUserService wires dependencies for the user service.
func NewUserService(users persistence.UserRepository, openSignup bool, idGenerator func() string, now func() time.Time, logger *slog.Logger) *UserService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &UserService{users: users, openSignup: openSignup, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

// Signup registers a new account through the open registration endpoint.
// The account is always created as an active student regardless of the
// payload.
func (s *UserService) Signup(ctx context.Context, input SignupInput) (User, error) {
	if s == nil || s.users == nil {
		return User{}, fmt.Errorf("user service not configured")
	}
	if !s.openSignup {
		return User{}, ErrForbidden
	}
	logger := serviceLogger(ctx, s.logger, "user_service", "signup")

	normalized := UserInput{
		Email:    normalizeEmail(input.Email),
		Password: input.Password,
		FullName: strings.TrimSpace(input.FullName),
		Role:     persistence.RoleStudent,
		RoleCode: DefaultRoleCode(persistence.RoleStudent),
		IsActive: true,
	}
	if vErr := validateUserInput(normalized, true); vErr.HasErrors() {
		return User{}, vErr
	}

	user, err := s.insertUser(ctx, normalized)
	if err != nil {
		logger.Warn("signup failed", slog.String("error_kind", ErrorKind(err)))
		return User{}, err
	}
	logger.Info("user signed up", slog.String("user_id", user.ID))
	return user, nil
}

// CreateUser persists a new account for administrators, with the full set
// of role fields exposed.
func (s *UserService) CreateUser(ctx context.Context, params CreateUserParams) (User, error) {
	if s == nil || s.users == nil {
		return User{}, fmt.Errorf("user service not configured")
	}
	if !params.Principal.IsAdmin() {
		return User{}, ErrForbidden
	}
	logger := serviceLogger(ctx, s.logger, "user_service", "create_user", slog.String("actor_id", params.Principal.UserID))

	normalized := normalizeUserInput(params.Input)
	if normalized.RoleCode == "" && ValidRole(normalized.Role) {
		normalized.RoleCode = DefaultRoleCode(normalized.Role)
	}
	if vErr := validateUserInput(normalized, true); vErr.HasErrors() {
		return User{}, vErr
	}

	user, err := s.insertUser(ctx, normalized)
	if err != nil {
		logger.Warn("create rejected", slog.String("error_kind", ErrorKind(err)))
		return User{}, err
	}
	logger.Info("user created", slog.String("user_id", user.ID), slog.String("role", string(user.Role)))
	return user, nil
}

// GetUser returns one account. Administrators may read anyone, everyone
// else only themselves.
func (s *UserService) GetUser(ctx context.Context, principal Principal, userID string) (User, error) {
	if s == nil || s.users == nil {
		return User{}, fmt.Errorf("user service not configured")
	}
	if !principal.IsAdmin() && principal.UserID != userID {
		return User{}, ErrForbidden
	}
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return User{}, mapRepositoryError(err)
	}
	return user, nil
}

// GetMe returns the caller's own account.
func (s *UserService) GetMe(ctx context.Context, principal Principal) (User, error) {
	return s.GetUser(ctx, principal, principal.UserID)
}

// ListUsers returns a page of accounts for administrators.
func (s *UserService) ListUsers(ctx context.Context, principal Principal, page Page) ([]User, int, error) {
	if s == nil || s.users == nil {
		return nil, 0, fmt.Errorf("user service not configured")
	}
	if !principal.IsAdmin() {
		return nil, 0, ErrForbidden
	}
	users, total, err := s.users.ListUsers(ctx, page.Clamp())
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// UpdateMe applies self-service profile changes. Role, activity and
// password are out of reach here.
func (s *UserService) UpdateMe(ctx context.Context, principal Principal, input UpdateProfileInput) (User, error) {
	if s == nil || s.users == nil {
		return User{}, fmt.Errorf("user service not configured")
	}
	logger := serviceLogger(ctx, s.logger, "user_service", "update_me", slog.String("user_id", principal.UserID))

	existing, err := s.users.GetUser(ctx, principal.UserID)
	if err != nil {
		return User{}, mapRepositoryError(err)
	}

	vErr := newValidationError()
	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		if _, err := mail.ParseAddress(email); err != nil {
			vErr.add("email", "must be a valid email address")
		}
		existing.Email = email
	}
	if input.FullName != nil {
		name := strings.TrimSpace(*input.FullName)
		if name == "" {
			vErr.add("full_name", "must not be empty")
		}
		existing.FullName = name
	}
	if vErr.HasErrors() {
		return User{}, vErr
	}

	existing.UpdatedAt = s.now()
	if err := s.users.UpdateUser(ctx, existing); err != nil {
		logger.Warn("update rejected", slog.String("error_kind", ErrorKind(err)))
		return User{}, mapRepositoryError(err)
	}
	return existing, nil
}

// UpdateUser applies an administrator edit to any account. An empty
// password leaves the stored hash untouched.
func (s *UserService) UpdateUser(ctx context.Context, params UpdateUserParams) (User, error) {
	if s == nil || s.users == nil {
		return User{}, fmt.Errorf("user service not configured")
	}
	if !params.Principal.IsAdmin() {
		return User{}, ErrForbidden
	}
	logger := serviceLogger(ctx, s.logger, "user_service", "update_user",
		slog.String("actor_id", params.Principal.UserID), slog.String("user_id", params.UserID))

	existing, err := s.users.GetUser(ctx, params.UserID)
	if err != nil {
		return User{}, mapRepositoryError(err)
	}

	normalized := normalizeUserInput(params.Input)
	if normalized.RoleCode == "" && ValidRole(normalized.Role) {
		normalized.RoleCode = DefaultRoleCode(normalized.Role)
	}
	if vErr := validateUserInput(normalized, normalized.Password != ""); vErr.HasErrors() {
		return User{}, vErr
	}

	existing.Email = normalized.Email
	existing.FullName = normalized.FullName
	existing.Role = normalized.Role
	existing.RoleCode = normalized.RoleCode
	existing.IsActive = normalized.IsActive
	if normalized.Password != "" {
		hash, err := CreatePasswordHash(normalized.Password, DefaultArgon2idParams)
		if err != nil {
			return User{}, err
		}
		existing.PasswordHash = hash
	}
	existing.UpdatedAt = s.now()

	if err := s.users.UpdateUser(ctx, existing); err != nil {
		logger.Warn("update rejected", slog.String("error_kind", ErrorKind(err)))
		return User{}, mapRepositoryError(err)
	}
	logger.Info("user updated")
	return existing, nil
}

// DeleteUser removes an account for administrators. Self-deletion is
// rejected so the last admin cannot lock everyone out by accident.
func (s *UserService) DeleteUser(ctx context.Context, principal Principal, userID string) error {
	if s == nil || s.users == nil {
		return fmt.Errorf("user service not configured")
	}
	if !principal.IsAdmin() {
		return ErrForbidden
	}
	if principal.UserID == userID {
		return ErrConflict
	}
	logger := serviceLogger(ctx, s.logger, "user_service", "delete_user",
		slog.String("actor_id", principal.UserID), slog.String("user_id", userID))

	if err := s.users.DeleteUser(ctx, userID); err != nil {
		logger.Warn("delete rejected", slog.String("error_kind", ErrorKind(err)))
		return mapRepositoryError(err)
	}
	logger.Info("user deleted")
	return nil
}

func (s *UserService) insertUser(ctx context.Context, input UserInput) (User, error) {
	hash, err := CreatePasswordHash(input.Password, DefaultArgon2idParams)
	if err != nil {
		return User{}, err
	}

	createdAt := s.now()
	user := User{
		ID:           s.idGenerator(),
		Email:        input.Email,
		FullName:     input.FullName,
		PasswordHash: hash,
		Role:         input.Role,
		RoleCode:     input.RoleCode,
		IsActive:     input.IsActive,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return User{}, mapRepositoryError(err)
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeUserInput(input UserInput) UserInput {
	input.Email = normalizeEmail(input.Email)
	input.FullName = strings.TrimSpace(input.FullName)
	input.RoleCode = strings.TrimSpace(input.RoleCode)
	return input
}

func validateUserInput(input UserInput, requirePassword bool) *ValidationError {
	vErr := newValidationError()
	if input.Email == "" {
		vErr.add("email", "must not be empty")
	} else if _, err := mail.ParseAddress(input.Email); err != nil {
		vErr.add("email", "must be a valid email address")
	}
	if input.FullName == "" {
		vErr.add("full_name", "must not be empty")
	}
	if requirePassword && len(input.Password) < minPasswordLength {
		vErr.add("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	if !ValidRole(input.Role) {
		vErr.add("role", "must be one of student, staff, teacher, admin")
	} else if !ValidRoleCode(input.Role, input.RoleCode) {
		vErr.add("role_code", fmt.Sprintf("not a valid code for role %s", input.Role))
	}
	return vErr
}

// mapRepositoryError translates storage sentinels into the service error
// vocabulary.
func mapRepositoryError(err error) error {
	switch {
	case errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrDuplicate):
		return ErrConflict
	case errors.Is(err, persistence.ErrReferenced):
		return ErrConflict
	default:
		return err
	}
}
