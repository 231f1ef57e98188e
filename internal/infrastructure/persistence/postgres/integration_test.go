//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microfin/loanbook/internal/domain/apperror"
	"github.com/microfin/loanbook/internal/domain/model"
	"github.com/microfin/loanbook/internal/domain/valueobject"
	"github.com/microfin/loanbook/internal/infrastructure/persistence/postgres"
	pkgpostgres "github.com/microfin/loanbook/pkg/postgres"
	"github.com/microfin/loanbook/pkg/testutil"
)

func setupDB(t *testing.T) *testutil.PostgresContainer {
	t.Helper()

	container := testutil.NewPostgresContainer(context.Background(), t)
	t.Cleanup(func() { container.Cleanup(t) })
	container.RunMigrations(t, "migrations")
	return container
}

func setupRepos(t *testing.T) (*postgres.LoanRepo, *postgres.CustomerRepo, *postgres.SequenceRepo) {
	t.Helper()
	container := setupDB(t)

	return postgres.NewLoanRepo(container.Pool),
		postgres.NewCustomerRepo(container.Pool),
		postgres.NewSequenceRepo(container.Pool)
}

func seedCustomer(t *testing.T, repo *postgres.CustomerRepo, id string) model.Customer {
	t.Helper()
	customer, err := model.NewCustomer(id, "Jane Perera", "nic-"+id, "+94771234567", "", "", time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), customer))
	return customer
}

func seedLoan(t *testing.T, repo *postgres.LoanRepo, id, customerID string, issued time.Time) model.Loan {
	t.Helper()
	loan, err := model.NewLoan(
		id, customerID,
		testutil.Dec("1000"), testutil.Dec("10"), decimal.Zero,
		valueobject.PaymentFrequencyMonthly, 3,
		issued, "", issued,
	)
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), loan))
	return loan
}

func TestLoanRepo_SaveAndFind(t *testing.T) {
	loanRepo, customerRepo, _ := setupRepos(t)
	ctx := context.Background()

	seedCustomer(t, customerRepo, testutil.TestCustomerID1)
	issued := time.Now().UTC().Truncate(time.Microsecond)
	loan := seedLoan(t, loanRepo, testutil.TestLoanID1, testutil.TestCustomerID1, issued)

	loan, err := loan.PayInstallment(1, testutil.Dec("200"), "first payment", nil, issued)
	require.NoError(t, err)
	require.NoError(t, loanRepo.Save(ctx, loan))

	found, err := loanRepo.FindByID(ctx, testutil.TestLoanID1)
	require.NoError(t, err)

	assert.Equal(t, loan.ID(), found.ID())
	assert.Equal(t, loan.CustomerID(), found.CustomerID())
	testutil.AssertDecimalEqual(t, "1100", found.TotalAmount())
	testutil.AssertDecimalEqual(t, "200", found.PaidAmount())
	require.Len(t, found.Installments(), 3)
	assert.Equal(t, valueobject.InstallmentStatusPartial, found.Installments()[0].Status)
	require.Len(t, found.PaymentHistory(), 1)
	assert.Equal(t, "Payment for installment 1. first payment", found.PaymentHistory()[0].Notes)
	// The second save bumps the persisted version.
	assert.Equal(t, 2, found.Version())
}

func TestLoanRepo_VersionConflict(t *testing.T) {
	loanRepo, customerRepo, _ := setupRepos(t)
	ctx := context.Background()

	seedCustomer(t, customerRepo, testutil.TestCustomerID1)
	issued := time.Now().UTC()
	stale := seedLoan(t, loanRepo, testutil.TestLoanID1, testutil.TestCustomerID1, issued)

	// A concurrent writer wins the race.
	fresh, err := loanRepo.FindByID(ctx, testutil.TestLoanID1)
	require.NoError(t, err)
	fresh, err = fresh.PayInstallment(1, testutil.Dec("100"), "", nil, issued)
	require.NoError(t, err)
	require.NoError(t, loanRepo.Save(ctx, fresh))

	stale, err = stale.PayInstallment(2, testutil.Dec("50"), "", nil, issued)
	require.NoError(t, err)
	err = loanRepo.Save(ctx, stale)
	assert.True(t, apperror.IsConflict(err), "expected a conflict error, got %v", err)

	// The winner's write is intact.
	found, err := loanRepo.FindByID(ctx, testutil.TestLoanID1)
	require.NoError(t, err)
	assert.True(t, testutil.Dec("100").Equal(found.PaidAmount()))
}

func TestLoanRepo_NotFound(t *testing.T) {
	loanRepo, _, _ := setupRepos(t)

	_, err := loanRepo.FindByID(context.Background(), "LON-9999")
	assert.True(t, apperror.IsNotFound(err), "expected a not-found error, got %v", err)

	err = loanRepo.Delete(context.Background(), "LON-9999")
	assert.True(t, apperror.IsNotFound(err), "expected a not-found error, got %v", err)
}

func TestLoanRepo_ListAndStats(t *testing.T) {
	loanRepo, customerRepo, _ := setupRepos(t)
	ctx := context.Background()

	seedCustomer(t, customerRepo, testutil.TestCustomerID1)
	seedCustomer(t, customerRepo, testutil.TestCustomerID2)

	now := time.Now().UTC()
	seedLoan(t, loanRepo, testutil.TestLoanID1, testutil.TestCustomerID1, now)
	seedLoan(t, loanRepo, testutil.TestLoanID2, testutil.TestCustomerID2, now)

	// A lapsed loan saved as overdue.
	lapsed, err := model.NewLoan(
		"LON-0003", testutil.TestCustomerID1,
		testutil.Dec("500"), testutil.Dec("0"), decimal.Zero,
		valueobject.PaymentFrequencyDaily, 2,
		testutil.TestIssueDate, "", testutil.TestIssueDate,
	)
	require.NoError(t, err)
	lapsed, _ = lapsed.RefreshStatus(now)
	require.NoError(t, loanRepo.Save(ctx, lapsed))

	t.Run("list by status", func(t *testing.T) {
		active, err := loanRepo.List(ctx, "active", 10, 0)
		require.NoError(t, err)
		assert.Len(t, active, 2)

		overdue, err := loanRepo.List(ctx, "overdue", 10, 0)
		require.NoError(t, err)
		assert.Len(t, overdue, 1)
	})

	t.Run("list by customer", func(t *testing.T) {
		loans, err := loanRepo.FindByCustomerID(ctx, testutil.TestCustomerID1)
		require.NoError(t, err)
		assert.Len(t, loans, 2)
	})

	t.Run("due loans", func(t *testing.T) {
		due, err := loanRepo.FindActiveDueBefore(ctx, now)
		require.NoError(t, err)
		require.Len(t, due, 1)
		assert.Equal(t, "LON-0003", due[0].ID())
	})

	t.Run("stats", func(t *testing.T) {
		stats, err := loanRepo.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), stats.TotalLoans)
		assert.Equal(t, int64(2), stats.ActiveLoans)
		assert.Equal(t, int64(1), stats.OverdueLoans)
		testutil.AssertDecimalEqual(t, "2700", stats.TotalLent)
		testutil.AssertDecimalEqual(t, "2700", stats.TotalOutstanding)
	})
}

func TestCustomerRepo(t *testing.T) {
	_, customerRepo, _ := setupRepos(t)
	ctx := context.Background()

	customer := seedCustomer(t, customerRepo, testutil.TestCustomerID1)

	t.Run("find by id and nic", func(t *testing.T) {
		found, err := customerRepo.FindByID(ctx, customer.ID())
		require.NoError(t, err)
		assert.Equal(t, customer.FullName(), found.FullName())

		found, err = customerRepo.FindByNIC(ctx, customer.NIC())
		require.NoError(t, err)
		assert.Equal(t, customer.ID(), found.ID())
	})

	t.Run("stale write conflicts", func(t *testing.T) {
		stale, err := customerRepo.FindByID(ctx, customer.ID())
		require.NoError(t, err)

		fresh := stale
		phone := "+94770000001"
		fresh, err = fresh.Apply(model.CustomerChanges{Phone: &phone}, time.Now().UTC())
		require.NoError(t, err)
		require.NoError(t, customerRepo.Save(ctx, fresh))

		other := "+94770000002"
		stale, err = stale.Apply(model.CustomerChanges{Phone: &other}, time.Now().UTC())
		require.NoError(t, err)
		err = customerRepo.Save(ctx, stale)
		assert.True(t, apperror.IsConflict(err), "expected a conflict error, got %v", err)
	})
}

func TestWithTransaction_SequenceAndInsertRollBackTogether(t *testing.T) {
	container := setupDB(t)
	ctx := context.Background()

	seedCustomer(t, postgres.NewCustomerRepo(container.Pool), testutil.TestCustomerID1)

	origin := func(fail bool) error {
		return pkgpostgres.WithTransaction(ctx, container.Pool, func(tx pgx.Tx) error {
			seq, err := postgres.NewSequenceRepo(tx).Next(ctx, "loan_id")
			if err != nil {
				return err
			}
			loan, err := model.NewLoan(
				fmt.Sprintf("LON-%04d", seq), testutil.TestCustomerID1,
				testutil.Dec("1000"), testutil.Dec("10"), decimal.Zero,
				valueobject.PaymentFrequencyMonthly, 3,
				time.Now().UTC(), "", time.Now().UTC(),
			)
			if err != nil {
				return err
			}
			if err := postgres.NewLoanRepo(tx).Save(ctx, loan); err != nil {
				return err
			}
			if fail {
				return errUndone
			}
			return nil
		})
	}

	require.ErrorIs(t, origin(true), errUndone)

	// The rollback returned the counter too, so the next origination gets
	// the same code and it is free.
	require.NoError(t, origin(false))

	loanRepo := postgres.NewLoanRepo(container.Pool)
	found, err := loanRepo.FindByID(ctx, "LON-0001")
	require.NoError(t, err)
	assert.Equal(t, "LON-0001", found.ID())

	_, err = loanRepo.FindByID(ctx, "LON-0002")
	assert.True(t, apperror.IsNotFound(err), "expected a not-found error, got %v", err)
}

var errUndone = errors.New("undone")

func TestSequenceRepo(t *testing.T) {
	_, _, sequences := setupRepos(t)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := sequences.Next(ctx, "loan_id")
		require.NoError(t, err)
		assert.Equal(t, want, got, fmt.Sprintf("call %d", want))
	}

	// Independent counters.
	got, err := sequences.Next(ctx, "customer_id")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
}
