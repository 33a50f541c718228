package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"custodial-wallet/internal/core/domain"
	"custodial-wallet/internal/core/ports"
	"custodial-wallet/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// IdentityServiceImpl implements ports.IdentityService.
type IdentityServiceImpl struct {
	users             ports.UserRepository
	admins            ports.AdminRepository
	ledger            ports.LedgerService
	audit             ports.AuditService
	transactor        ports.DBTransactor
	hashSvc           ports.HashService
	tokenSvc          ports.TokenService
	defaultCurrencies []domain.Currency
	log               zerolog.Logger
}

// NewIdentityService creates a new IdentityServiceImpl. New users get one
// wallet per entry of defaultCurrencies.
func NewIdentityService(
	users ports.UserRepository,
	admins ports.AdminRepository,
	ledger ports.LedgerService,
	audit ports.AuditService,
	transactor ports.DBTransactor,
	hashSvc ports.HashService,
	tokenSvc ports.TokenService,
	defaultCurrencies []domain.Currency,
	log zerolog.Logger,
) *IdentityServiceImpl {
	return &IdentityServiceImpl{
		users:             users,
		admins:            admins,
		ledger:            ledger,
		audit:             audit,
		transactor:        transactor,
		hashSvc:           hashSvc,
		tokenSvc:          tokenSvc,
		defaultCurrencies: defaultCurrencies,
		log:               log,
	}
}

// RegisterUser creates the account and its default wallets in one
// transaction, then opens a session.
func (s *IdentityServiceImpl) RegisterUser(ctx context.Context, req ports.RegisterUserRequest) (*ports.UserSession, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check username: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrUsernameExists()
	}
	existing, err = s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check email: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrEmailExists()
	}

	passwordHash, err := s.hashSvc.Hash(req.Password)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("hash password: %w", err))
	}

	var (
		user    *domain.User
		wallets []domain.Wallet
	)
	err = withRetry(ctx, func() error {
		now := time.Now().UTC()
		user = &domain.User{
			ID:           uuid.New(),
			Username:     req.Username,
			Email:        req.Email,
			PasswordHash: passwordHash,
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Phone:        req.Phone,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		wallets, err = s.createUser(ctx, user)
		return err
	})
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.tokenSvc.Issue(ports.Principal{Kind: domain.PrincipalUser, ID: user.ID})
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("issue token: %w", err))
	}

	s.log.Info().
		Str("user_id", user.ID.String()).
		Str("username", user.Username).
		Int("wallets", len(wallets)).
		Msg("user registered")

	return &ports.UserSession{User: user, Wallets: wallets, Token: token, ExpiresAt: expiresAt}, nil
}

func (s *IdentityServiceImpl) createUser(ctx context.Context, user *domain.User) ([]domain.Wallet, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.users.Create(ctx, dbTx, user); err != nil {
		switch {
		case ports.IsDuplicate(err, ports.ConstraintUserUsername):
			return nil, apperror.ErrUsernameExists()
		case ports.IsDuplicate(err, ports.ConstraintUserEmail):
			return nil, apperror.ErrEmailExists()
		}
		return nil, apperror.InternalError(fmt.Errorf("create user: %w", err))
	}

	wallets := make([]domain.Wallet, 0, len(s.defaultCurrencies))
	for _, currency := range s.defaultCurrencies {
		w, err := s.ledger.ProvisionTx(ctx, dbTx, user.ID, currency)
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, *w)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}
	return wallets, nil
}

// AuthenticateUser verifies credentials. Unknown usernames and wrong
// passwords are indistinguishable; blocked users learn why.
func (s *IdentityServiceImpl) AuthenticateUser(ctx context.Context, username, password string) (*ports.UserSession, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find user: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrInvalidCredentials()
	}
	if err := s.verifyPassword(password, user.PasswordHash); err != nil {
		return nil, err
	}
	if user.IsBlocked {
		return nil, apperror.ErrAccountBlocked(user.BlockReason(), user.BlockedAt)
	}

	wallets, err := s.ledger.Wallets(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.tokenSvc.Issue(ports.Principal{Kind: domain.PrincipalUser, ID: user.ID})
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("issue token: %w", err))
	}
	return &ports.UserSession{User: user, Wallets: wallets, Token: token, ExpiresAt: expiresAt}, nil
}

// AuthenticateAdmin verifies credentials and stamps last_login.
func (s *IdentityServiceImpl) AuthenticateAdmin(ctx context.Context, username, password string) (*ports.AdminSession, error) {
	admin, err := s.admins.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find admin: %w", err))
	}
	if admin == nil {
		return nil, apperror.ErrInvalidCredentials()
	}
	if err := s.verifyPassword(password, admin.PasswordHash); err != nil {
		return nil, err
	}
	if !admin.IsActive {
		return nil, apperror.ErrAdminInactive()
	}

	now := time.Now().UTC()
	if err := s.admins.TouchLastLogin(ctx, admin.ID, now); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("touch last login: %w", err))
	}
	admin.LastLogin = &now

	token, expiresAt, err := s.tokenSvc.Issue(ports.Principal{Kind: domain.PrincipalAdmin, ID: admin.ID, Role: admin.Role})
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("issue token: %w", err))
	}

	s.log.Info().Str("admin_id", admin.ID.String()).Msg("admin logged in")
	return &ports.AdminSession{Admin: admin, Token: token, ExpiresAt: expiresAt}, nil
}

func (s *IdentityServiceImpl) verifyPassword(password, hash string) error {
	ok, err := s.hashSvc.Verify(password, hash)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("verify password: %w", err))
	}
	if !ok {
		return apperror.ErrInvalidCredentials()
	}
	return nil
}

// RegisterAdmin creates an active operator account. The role defaults to admin.
// When an acting admin is named, create_admin commits with the account.
func (s *IdentityServiceImpl) RegisterAdmin(ctx context.Context, req ports.RegisterAdminRequest) (*domain.Admin, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Role == "" {
		req.Role = domain.AdminRoleAdmin
	}
	if !req.Role.IsValid() {
		return nil, apperror.Validation(fmt.Sprintf("invalid admin role %q", req.Role))
	}

	existing, err := s.admins.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check username: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrUsernameExists()
	}
	existing, err = s.admins.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check email: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrEmailExists()
	}

	passwordHash, err := s.hashSvc.Hash(req.Password)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("hash password: %w", err))
	}

	now := time.Now().UTC()
	admin := &domain.Admin{
		ID:           uuid.New(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         req.Role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.admins.Create(ctx, dbTx, admin); err != nil {
		switch {
		case ports.IsDuplicate(err, ports.ConstraintAdminUsername):
			return nil, apperror.ErrUsernameExists()
		case ports.IsDuplicate(err, ports.ConstraintAdminEmail):
			return nil, apperror.ErrEmailExists()
		}
		return nil, apperror.InternalError(fmt.Errorf("create admin: %w", err))
	}

	if req.ActingAdminID != nil {
		details := map[string]any{
			"admin_id": admin.ID.String(),
			"username": admin.Username,
			"role":     string(admin.Role),
		}
		if err := s.audit.RecordTx(ctx, dbTx, domain.NewAdminAction(*req.ActingAdminID, domain.ActionCreateAdmin, nil, details)); err != nil {
			return nil, err
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("admin_id", admin.ID.String()).
		Str("role", string(admin.Role)).
		Msg("admin registered")
	return admin, nil
}

func (s *IdentityServiceImpl) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find user: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrNotFound("User")
	}
	return user, nil
}

func (s *IdentityServiceImpl) GetAdmin(ctx context.Context, id uuid.UUID) (*domain.Admin, error) {
	admin, err := s.admins.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find admin: %w", err))
	}
	if admin == nil {
		return nil, apperror.ErrNotFound("Admin")
	}
	return admin, nil
}

// UpdateProfile applies the non-nil fields. Blocked users cannot update.
func (s *IdentityServiceImpl) UpdateProfile(ctx context.Context, id uuid.UUID, req ports.UpdateProfileRequest) (*domain.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.IsBlocked {
		return nil, apperror.ErrAccountBlocked(user.BlockReason(), user.BlockedAt)
	}

	if req.FirstName != nil {
		user.FirstName = req.FirstName
	}
	if req.LastName != nil {
		user.LastName = req.LastName
	}
	if req.Phone != nil {
		user.Phone = req.Phone
	}
	if req.ProfileImage != nil {
		user.ProfileImage = req.ProfileImage
	}
	if req.FingerprintEnabled != nil {
		user.FingerprintEnabled = *req.FingerprintEnabled
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update profile: %w", err))
	}
	return user, nil
}

// SetBlockState flips the block flag and records block_user or unblock_user
// in the same transaction. Requesting the current state is InvalidState.
func (s *IdentityServiceImpl) SetBlockState(ctx context.Context, req ports.SetBlockStateRequest) (*domain.User, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	user, err := s.users.GetByIDForUpdate(ctx, dbTx, req.UserID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock user: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrNotFound("User")
	}
	if user.IsBlocked == req.Blocked {
		if req.Blocked {
			return nil, apperror.ErrInvalidState("User is already blocked")
		}
		return nil, apperror.ErrInvalidState("User is not blocked")
	}

	now := time.Now().UTC()
	kind := domain.ActionUnblockUser
	details := map[string]any{"username": user.Username}
	if req.Blocked {
		user.Block(req.AdminID, strings.TrimSpace(req.Reason), now)
		kind = domain.ActionBlockUser
		details["reason"] = user.BlockReason()
	} else {
		details["previous_reason"] = user.BlockReason()
		user.Unblock(now)
	}

	if err := s.users.UpdateBlockState(ctx, dbTx, user); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update block state: %w", err))
	}
	if err := s.audit.RecordTx(ctx, dbTx, domain.NewAdminAction(req.AdminID, kind, &user.ID, details)); err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("user_id", user.ID.String()).
		Str("admin_id", req.AdminID.String()).
		Bool("blocked", user.IsBlocked).
		Msg("user block state changed")
	return user, nil
}
