package integrationtest

import (
	"context"
	"testing"
	"time"

	"github.com/DevMeza-lvl/api-transacciones/internal/domain"
	"github.com/DevMeza-lvl/api-transacciones/internal/transferrepo"
	"github.com/DevMeza-lvl/api-transacciones/internal/userrepo"
	"github.com/DevMeza-lvl/api-transacciones/pkg/dbpkg"
	"github.com/DevMeza-lvl/api-transacciones/pkg/passpkg"
	"github.com/DevMeza-lvl/api-transacciones/pkg/randompkg"
)

// SeedUser inserts a random user with a random balance.
func SeedUser(t *testing.T, db dbpkg.SQLInterface) domain.User {
	t.Helper()

	return SeedUserWithBalance(t, db, randompkg.MoneyAmountBetween(1000, 10_000))
}

// SeedUserWithBalance inserts a random user with the given balance.
func SeedUserWithBalance(t *testing.T, db dbpkg.SQLInterface, balance string) domain.User {
	t.Helper()

	hashedPassword, err := passpkg.Hash(randompkg.String(10))
	if err != nil {
		t.Fatalf("passpkg.Hash() returned error: %v", err)
	}

	repo := userrepo.NewRepoPGS(db)

	user, err := repo.Create(context.Background(), domain.CreateUserParams{
		Name:           randompkg.Name(),
		Email:          randompkg.Email(),
		HashedPassword: hashedPassword,
		Role:           domain.RoleUser,
		InitialBalance: balance,
	})
	if err != nil {
		t.Fatalf("repo.Create() returned error: %v", err)
	}

	return user
}

// SeedTransfer inserts a completed ledger entry without moving balances.
func SeedTransfer(t *testing.T, db dbpkg.SQLInterface, senderID, receiverID int64, amount, description string, date time.Time) domain.Transfer {
	t.Helper()

	repo := transferrepo.NewTxRepoPGS(db)

	transfer, err := repo.Create(context.Background(), domain.TransferTxParams{
		SenderID:     senderID,
		ReceiverID:   receiverID,
		Amount:       amount,
		Description:  description,
		TransferDate: date,
	})
	if err != nil {
		t.Fatalf("repo.Create() returned error: %v", err)
	}

	return transfer
}
