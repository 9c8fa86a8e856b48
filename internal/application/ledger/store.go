// Package ledger holds the atomic-unit boundary and the row-locking reads
// shared by the balance and trading services.
package ledger

import (
	"context"
	"errors"

	"digital-advisor/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WithTransaction runs fn inside one database transaction. It commits when fn
// returns nil and rolls back on any error or panic. Domain errors pass through
// unchanged; anything else is reported as a persistence failure.
func WithTransaction(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	err := db.WithContext(ctx).Transaction(fn)
	if err == nil {
		return nil
	}
	if domain.IsDomainError(err) {
		return err
	}
	return domain.Persistence(err)
}

// LockAccount reads the account row with SELECT ... FOR UPDATE. Every ledger
// mutation takes this lock first, which serialises all read-modify-write
// cycles of one user's balance and holdings.
func LockAccount(tx *gorm.DB, userID uuid.UUID) (*domain.Account, error) {
	var acct domain.Account
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&acct).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFound("User not found.")
	}
	if err != nil {
		return nil, err
	}
	return &acct, nil
}

// LockHolding returns the locked holding for (userID, ticker), or nil when the
// user does not hold the ticker.
func LockHolding(tx *gorm.DB, userID uuid.UUID, ticker string) (*domain.Holding, error) {
	var h domain.Holding
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND ticker = ?", userID, ticker).
		First(&h).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// SaveBalance persists a new balance for an account read with LockAccount.
func SaveBalance(tx *gorm.DB, acct *domain.Account) error {
	return tx.Model(acct).Update("balance", acct.Balance).Error
}

// GetAccount reads an account without locking.
func GetAccount(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*domain.Account, error) {
	var acct domain.Account
	err := db.WithContext(ctx).Where("user_id = ?", userID).First(&acct).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFound("User not found.")
	}
	if err != nil {
		return nil, err
	}
	return &acct, nil
}
