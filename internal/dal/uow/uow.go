package uow

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/merchkit/storefront/internal/dal/interfaces/ichangelogrepo"
	"github.com/merchkit/storefront/internal/dal/interfaces/iorderrepo"
	"github.com/merchkit/storefront/internal/dal/postgres"
	changelogrepo "github.com/merchkit/storefront/internal/dal/repositories/changelog/postgres"
	orderrepo "github.com/merchkit/storefront/internal/dal/repositories/order/postgres"
)

// unitOfWork binds the order and change-log repositories to one transaction
// so the order insert and its change record commit atomically.
type unitOfWork struct {
	pool          *pgxpool.Pool
	tx            pgx.Tx
	orderRepo     iorderrepo.IOrderRepository
	changeLogRepo ichangelogrepo.IChangeLogRepository
}

func NewUnitOfWork(db *postgres.Client) *unitOfWork {
	return &unitOfWork{
		pool:          db.Pool(),
		orderRepo:     orderrepo.NewPostgresOrderRepository(db.Pool()),
		changeLogRepo: changelogrepo.NewChangeLogRepository(db.Pool()),
	}
}

func (u *unitOfWork) OrderRepository() iorderrepo.IOrderRepository {
	return u.orderRepo
}

func (u *unitOfWork) ChangeLogRepository() ichangelogrepo.IChangeLogRepository {
	return u.changeLogRepo
}

func (u *unitOfWork) Begin(ctx context.Context) error {
	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return err
	}

	u.tx = tx
	u.orderRepo = orderrepo.NewPostgresOrderRepository(tx)
	u.changeLogRepo = changelogrepo.NewChangeLogRepository(tx)

	return nil
}

func (u *unitOfWork) Commit(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}

	return u.tx.Commit(ctx)
}

func (u *unitOfWork) Rollback(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}

	err := u.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}

	return err
}
