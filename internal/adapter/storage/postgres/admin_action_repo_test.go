package postgres

import (
	"context"
	"testing"

	"custodial-wallet/internal/core/domain"
	"custodial-wallet/internal/core/ports"
	"custodial-wallet/pkg/pagination"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminActionRepo_Create_InTx(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAdminActionRepo(mock)
	target := uuid.New()
	a := domain.NewAdminAction(uuid.New(), domain.ActionBlockUser, &target, map[string]any{"reason": "chargebacks"})

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO admin_actions").
		WithArgs(a.ID, a.AdminID, a.Kind, a.TargetUserID, []byte(`{"reason":"chargebacks"}`), a.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, a)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminActionRepo_Create_WithoutTx(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAdminActionRepo(mock)
	a := domain.NewAdminAction(uuid.New(), domain.ActionViewDashboard, nil, nil)

	mock.ExpectExec("INSERT INTO admin_actions").
		WithArgs(a.ID, a.AdminID, a.Kind, a.TargetUserID, []byte(nil), a.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Create(context.Background(), nil, a)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminActionRepo_List_ByKind(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAdminActionRepo(mock)
	a := domain.NewAdminAction(uuid.New(), domain.ActionSendCrypto, nil, nil)
	kind := domain.ActionSendCrypto

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM admin_actions WHERE action_type = \$1`).
		WithArgs(kind).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery(`SELECT .+ FROM admin_actions WHERE action_type = \$1 ORDER BY created_at DESC`).
		WithArgs(kind, 20, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "admin_id", "action_type", "target_user_id", "action_details", "created_at"}).
			AddRow(a.ID, a.AdminID, a.Kind, a.TargetUserID, []byte(`{"currency":"BTC","amount":"0.5"}`), a.CreatedAt))

	items, total, err := repo.List(context.Background(), ports.AdminActionListParams{Kind: &kind, Page: pagination.New(1, 20, 20)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, "BTC", items[0].Details["currency"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminActionRepo_Recent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAdminActionRepo(mock)
	mock.ExpectQuery("SELECT .+ FROM admin_actions ORDER BY created_at DESC LIMIT").
		WithArgs(10).
		WillReturnRows(pgxmock.NewRows([]string{"id", "admin_id", "action_type", "target_user_id", "action_details", "created_at"}))

	items, err := repo.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, items)
}
