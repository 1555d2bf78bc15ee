// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"
	"fmt"

	"parish/internal/domain/repository"

	"gorm.io/gorm"
)

// gormTransactionManager implements the domain's TransactionManager interface using GORM.
type gormTransactionManager struct {
	db *gorm.DB
}

// gormRepositoryFactory implements the domain's RepositoryFactory interface.
// It holds a specific GORM transaction object and uses it to create repository
// instances that are bound to that single transaction.
type gormRepositoryFactory struct {
	tx *gorm.DB
}

// NewUserRepository creates a user repository bound to the transaction.
func (f *gormRepositoryFactory) NewUserRepository() repository.UserRepository {
	return NewUserRepository(f.tx)
}

// NewAuthRepository creates an auth repository bound to the transaction.
func (f *gormRepositoryFactory) NewAuthRepository() repository.AuthRepository {
	return NewAuthRepository(f.tx)
}

// NewDonationRepository creates a donation repository bound to the transaction.
func (f *gormRepositoryFactory) NewDonationRepository() repository.DonationRepository {
	return NewDonationRepository(f.tx)
}

// NewRefreshTokenRepository creates a refresh token repository bound to the transaction.
func (f *gormRepositoryFactory) NewRefreshTokenRepository() repository.RefreshTokenRepository {
	return NewRefreshTokenRepository(f.tx)
}

// NewTransactionManager is the constructor for gormTransactionManager.
func NewTransactionManager(db *gorm.DB) repository.TransactionManager {
	return &gormTransactionManager{db: db}
}

// Execute runs the given function within a single database transaction.
func (tm *gormTransactionManager) Execute(ctx context.Context, fn func(repoFactory repository.RepositoryFactory) error) error {
	tx := tm.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	// If the callback panics the transaction must still be rolled back.
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	factory := &gormRepositoryFactory{tx: tx}

	if err := fn(factory); err != nil {
		if rbErr := tx.Rollback().Error; rbErr != nil {
			return fmt.Errorf("transaction rollback failed: %v (original error: %w)", rbErr, err)
		}

		return err
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
