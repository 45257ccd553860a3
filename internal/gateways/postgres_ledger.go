package gateways

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mychangex/app-wallet/internal/models"
	"github.com/mychangex/app-wallet/internal/utils"
)

// SQLSTATE raised by transfer_funds for business rule violations (RAISE EXCEPTION)
const raiseExceptionState = "P0001"

// querier is the part of *pgxpool.Pool the ledger uses
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresLedger calls the database-side transfer_funds procedure. The procedure
// owns atomicity; this type only passes arguments and maps its errors.
type PostgresLedger struct {
	db querier
}

// NewPostgresLedger creates a ledger on top of a pgx pool
func NewPostgresLedger(db querier) *PostgresLedger {
	return &PostgresLedger{db: db}
}

// TransferFunds moves transfer.AmountCents from sender to recipient
func (l *PostgresLedger) TransferFunds(ctx context.Context, transfer models.Transfer) error {
	ctx, span := utils.TraceExternalService(ctx, "postgres", "transfer_funds")
	defer span.End()
	utils.AddSpanAttribute(span, "transfer.amount_cents", transfer.AmountCents)

	_, err := l.db.Exec(ctx, `SELECT transfer_funds($1, $2, $3)`,
		transfer.From, transfer.To, transfer.AmountCents)
	if err != nil {
		utils.RecordErrorInSpan(span, err, nil)
		return ledgerError("transfer_funds", models.DefaultTransferFailureMessage, err)
	}
	return nil
}

// Balance returns the balance in cents of phone's wallet; a missing wallet holds nothing
func (l *PostgresLedger) Balance(ctx context.Context, phone string) (int64, error) {
	ctx, span := utils.TraceExternalService(ctx, "postgres", "balance")
	defer span.End()

	var cents int64
	err := l.db.QueryRow(ctx, `SELECT balance_cents FROM wallets WHERE phone = $1`, phone).Scan(&cents)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		utils.RecordErrorInSpan(span, err, nil)
		return 0, ledgerError("balance", "Failed to load balance", err)
	}
	return cents, nil
}

// ledgerError keeps the procedure's own message for business errors and hides driver details
func ledgerError(op, fallback string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == raiseExceptionState && pgErr.Message != "" {
		return errors.New(pgErr.Message)
	}
	return &models.ExternalError{Op: op, Message: fallback, Err: err}
}
