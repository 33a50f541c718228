package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"custodial-wallet/internal/core/domain"
	"custodial-wallet/internal/core/ports"
	"custodial-wallet/pkg/apperror"
	"custodial-wallet/pkg/pagination"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	// dashboardRecentActions is the size of the dashboard activity feed.
	dashboardRecentActions = 10
	// userDetailsRecentTransactions bounds the history in a user drill-down.
	userDetailsRecentTransactions = 10
)

// AdminServiceImpl implements ports.AdminService. Reads are recorded after
// they succeed and before the result is returned; mutations record inside
// their own transaction.
type AdminServiceImpl struct {
	identity ports.IdentityService
	ledger   ports.LedgerService
	txLog    ports.TransactionLogService
	audit    ports.AuditService
	kyc      ports.KYCService
	users    ports.UserRepository
	wallets  ports.WalletRepository
	txs      ports.TransactionRepository
	log      zerolog.Logger
}

func NewAdminService(
	identity ports.IdentityService,
	ledger ports.LedgerService,
	txLog ports.TransactionLogService,
	audit ports.AuditService,
	kyc ports.KYCService,
	users ports.UserRepository,
	wallets ports.WalletRepository,
	txs ports.TransactionRepository,
	log zerolog.Logger,
) *AdminServiceImpl {
	return &AdminServiceImpl{
		identity: identity,
		ledger:   ledger,
		txLog:    txLog,
		audit:    audit,
		kyc:      kyc,
		users:    users,
		wallets:  wallets,
		txs:      txs,
		log:      log,
	}
}

func (s *AdminServiceImpl) record(ctx context.Context, actor uuid.UUID, kind domain.ActionKind, target *uuid.UUID, details map[string]any) error {
	return s.audit.Record(ctx, domain.NewAdminAction(actor, kind, target, details))
}

func (s *AdminServiceImpl) RegisterAdmin(ctx context.Context, actor uuid.UUID, req ports.RegisterAdminRequest) (*domain.Admin, error) {
	req.ActingAdminID = &actor
	return s.identity.RegisterAdmin(ctx, req)
}

func (s *AdminServiceImpl) ListUsers(ctx context.Context, actor uuid.UUID, params ports.UserListParams) (pagination.Page[domain.User], error) {
	params.Search = strings.TrimSpace(params.Search)
	if params.Status != "" && !params.Status.IsValid() {
		return pagination.Page[domain.User]{}, apperror.Validation(fmt.Sprintf("invalid status filter %q", params.Status))
	}

	items, total, err := s.users.List(ctx, params)
	if err != nil {
		return pagination.Page[domain.User]{}, apperror.InternalError(fmt.Errorf("list users: %w", err))
	}

	details := map[string]any{"page": params.Page.Page, "per_page": params.Page.PerPage}
	if params.Search != "" {
		details["search"] = params.Search
	}
	if params.Status != "" {
		details["status"] = string(params.Status)
	}
	if err := s.record(ctx, actor, domain.ActionViewUsers, nil, details); err != nil {
		return pagination.Page[domain.User]{}, err
	}
	return pagination.NewPage(items, total, params.Page), nil
}

func (s *AdminServiceImpl) UserDetails(ctx context.Context, actor uuid.UUID, userID uuid.UUID) (*ports.UserDetails, error) {
	user, err := s.identity.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	wallets, err := s.ledger.Wallets(ctx, userID)
	if err != nil {
		return nil, err
	}
	recent, err := s.txLog.ListForUser(ctx, ports.TransactionListParams{
		UserID: userID,
		Page:   pagination.New(1, userDetailsRecentTransactions, userDetailsRecentTransactions),
	})
	if err != nil {
		return nil, err
	}

	if err := s.record(ctx, actor, domain.ActionViewUserDetails, &userID, map[string]any{"username": user.Username}); err != nil {
		return nil, err
	}
	return &ports.UserDetails{User: user, Wallets: wallets, RecentTransactions: recent.Items}, nil
}

func (s *AdminServiceImpl) BlockUser(ctx context.Context, actor uuid.UUID, userID uuid.UUID, reason string) (*domain.User, error) {
	return s.identity.SetBlockState(ctx, ports.SetBlockStateRequest{
		UserID:  userID,
		Blocked: true,
		Reason:  reason,
		AdminID: actor,
	})
}

func (s *AdminServiceImpl) UnblockUser(ctx context.Context, actor uuid.UUID, userID uuid.UUID) (*domain.User, error) {
	return s.identity.SetBlockState(ctx, ports.SetBlockStateRequest{
		UserID:  userID,
		Blocked: false,
		AdminID: actor,
	})
}

func (s *AdminServiceImpl) ListWallets(ctx context.Context, actor uuid.UUID, params ports.WalletListParams) (pagination.Page[domain.WalletWithOwner], error) {
	details := map[string]any{"page": params.Page.Page, "per_page": params.Page.PerPage}
	if params.Currency != nil {
		c, ok := domain.ParseCurrency(string(*params.Currency))
		if !ok {
			return pagination.Page[domain.WalletWithOwner]{}, apperror.ErrUnsupportedCurrency(string(*params.Currency))
		}
		params.Currency = &c
		details["currency"] = string(c)
	}
	if params.UserID != nil {
		details["user_id"] = params.UserID.String()
	}

	items, total, err := s.wallets.List(ctx, params)
	if err != nil {
		return pagination.Page[domain.WalletWithOwner]{}, apperror.InternalError(fmt.Errorf("list wallets: %w", err))
	}
	if err := s.record(ctx, actor, domain.ActionViewWallets, params.UserID, details); err != nil {
		return pagination.Page[domain.WalletWithOwner]{}, err
	}
	return pagination.NewPage(items, total, params.Page), nil
}

func (s *AdminServiceImpl) UserWallets(ctx context.Context, actor uuid.UUID, userID uuid.UUID) ([]domain.Wallet, error) {
	user, err := s.identity.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	wallets, err := s.ledger.Wallets(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.record(ctx, actor, domain.ActionViewUserWallets, &userID, map[string]any{"username": user.Username}); err != nil {
		return nil, err
	}
	return wallets, nil
}

// SendCrypto credits the target named by id or username. Missing wallets
// are provisioned; blocked targets are allowed.
func (s *AdminServiceImpl) SendCrypto(ctx context.Context, actor uuid.UUID, req ports.SendCryptoRequest) (*ports.CreditResult, error) {
	var userID uuid.UUID
	switch {
	case req.UserID != nil:
		userID = *req.UserID
	case strings.TrimSpace(req.Username) != "":
		user, err := s.users.GetByUsername(ctx, strings.TrimSpace(req.Username))
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("find user: %w", err))
		}
		if user == nil {
			return nil, apperror.ErrNotFound("User")
		}
		userID = user.ID
	default:
		return nil, apperror.Validation("user_id or username is required")
	}

	return s.ledger.Credit(ctx, ports.CreditRequest{
		UserID:        userID,
		Currency:      req.Currency,
		Amount:        req.Amount,
		Source:        ports.CreditSourceAdmin,
		ActingAdminID: &actor,
		Note:          strings.TrimSpace(req.Note),
		AutoProvision: true,
	})
}

// CryptoTransfers lists the actor's own credits with their targets.
func (s *AdminServiceImpl) CryptoTransfers(ctx context.Context, actor uuid.UUID, page pagination.Params) (pagination.Page[ports.CryptoTransfer], error) {
	kind := domain.ActionSendCrypto
	actions, err := s.audit.List(ctx, ports.AdminActionListParams{AdminID: &actor, Kind: &kind, Page: page})
	if err != nil {
		return pagination.Page[ports.CryptoTransfer]{}, err
	}

	targets := make(map[uuid.UUID]*domain.UserSummary)
	for _, a := range actions.Items {
		if a.TargetUserID == nil {
			continue
		}
		if _, seen := targets[*a.TargetUserID]; seen {
			continue
		}
		user, err := s.users.GetByID(ctx, *a.TargetUserID)
		if err != nil {
			return pagination.Page[ports.CryptoTransfer]{}, apperror.InternalError(fmt.Errorf("find target user: %w", err))
		}
		var summary *domain.UserSummary
		if user != nil {
			sum := user.Summary()
			summary = &sum
		}
		targets[*a.TargetUserID] = summary
	}

	details := map[string]any{"view": "crypto_transfers", "page": page.Page, "per_page": page.PerPage}
	if err := s.record(ctx, actor, domain.ActionViewActions, nil, details); err != nil {
		return pagination.Page[ports.CryptoTransfer]{}, err
	}

	return pagination.Map(actions, func(a domain.AdminAction) ports.CryptoTransfer {
		t := ports.CryptoTransfer{Action: a}
		if a.TargetUserID != nil {
			t.Target = targets[*a.TargetUserID]
		}
		return t
	}), nil
}

func (s *AdminServiceImpl) ListTransactions(ctx context.Context, actor uuid.UUID, page pagination.Params) (pagination.Page[domain.TransactionWithOwner], error) {
	out, err := s.txLog.ListAll(ctx, page)
	if err != nil {
		return pagination.Page[domain.TransactionWithOwner]{}, err
	}
	details := map[string]any{"page": page.Page, "per_page": page.PerPage}
	if err := s.record(ctx, actor, domain.ActionViewTransactions, nil, details); err != nil {
		return pagination.Page[domain.TransactionWithOwner]{}, err
	}
	return out, nil
}

func (s *AdminServiceImpl) ListActions(ctx context.Context, actor uuid.UUID, params ports.AdminActionListParams) (pagination.Page[domain.AdminAction], error) {
	if params.Kind != nil && !params.Kind.IsValid() {
		return pagination.Page[domain.AdminAction]{}, apperror.Validation(fmt.Sprintf("invalid action type %q", *params.Kind))
	}
	out, err := s.audit.List(ctx, params)
	if err != nil {
		return pagination.Page[domain.AdminAction]{}, err
	}

	details := map[string]any{"page": params.Page.Page, "per_page": params.Page.PerPage}
	if params.AdminID != nil {
		details["admin_id"] = params.AdminID.String()
	}
	if params.Kind != nil {
		details["action_type"] = string(*params.Kind)
	}
	if err := s.record(ctx, actor, domain.ActionViewActions, nil, details); err != nil {
		return pagination.Page[domain.AdminAction]{}, err
	}
	return out, nil
}

// Dashboard gathers the four stat blocks concurrently.
func (s *AdminServiceImpl) Dashboard(ctx context.Context, actor uuid.UUID) (*ports.DashboardStats, error) {
	var stats ports.DashboardStats
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		u, err := s.users.Stats(gctx)
		if err != nil {
			return fmt.Errorf("user stats: %w", err)
		}
		stats.Users = *u
		return nil
	})
	g.Go(func() error {
		w, err := s.wallets.Stats(gctx)
		if err != nil {
			return fmt.Errorf("wallet stats: %w", err)
		}
		stats.Wallets = w
		return nil
	})
	g.Go(func() error {
		t, err := s.txs.Stats(gctx)
		if err != nil {
			return fmt.Errorf("transaction stats: %w", err)
		}
		stats.Transactions = *t
		return nil
	})
	g.Go(func() error {
		recent, err := s.audit.Recent(gctx, dashboardRecentActions)
		if err != nil {
			return err
		}
		stats.RecentActions = recent
		return nil
	})
	if err := g.Wait(); err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, apperror.InternalError(err)
	}

	if stats.Wallets == nil {
		stats.Wallets = []ports.CurrencyTotal{}
	}
	if stats.RecentActions == nil {
		stats.RecentActions = []domain.AdminAction{}
	}
	if err := s.record(ctx, actor, domain.ActionViewDashboard, nil, nil); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *AdminServiceImpl) ListKYC(ctx context.Context, actor uuid.UUID, params ports.KYCListParams) (pagination.Page[domain.KYCRecord], error) {
	details := map[string]any{"page": params.Page.Page, "per_page": params.Page.PerPage}
	if params.Status != nil {
		details["status"] = string(*params.Status)
	}
	out, err := s.kyc.List(ctx, params)
	if err != nil {
		return pagination.Page[domain.KYCRecord]{}, err
	}
	if err := s.record(ctx, actor, domain.ActionViewKYC, nil, details); err != nil {
		return pagination.Page[domain.KYCRecord]{}, err
	}
	return out, nil
}

func (s *AdminServiceImpl) ReviewKYC(ctx context.Context, actor uuid.UUID, req ports.ReviewKYCRequest) (*domain.KYCRecord, error) {
	req.AdminID = actor
	return s.kyc.Review(ctx, req)
}
