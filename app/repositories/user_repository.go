package repositories

import (
	"context"

	"inkpost/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerUserRepository implements UserRepository using BadgerDB
type BadgerUserRepository struct {
	db *badger.DB
}

// NewBadgerUserRepository creates a new BadgerUserRepository
func NewBadgerUserRepository(db *badger.DB) *BadgerUserRepository {
	return &BadgerUserRepository{db: db}
}

// Create stores a new identity, enforcing unique email and username.
func (r *BadgerUserRepository) Create(ctx context.Context, user *models.Identity) error {
	return update(ctx, r.db, func(txn *badger.Txn) error {
		emailKey := uniqueKey(UserEmailKeyPrefix, user.Email)
		nameKey := uniqueKey(UserNameKeyPrefix, user.Username)

		taken, err := keyExists(txn, emailKey)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateEmail
		}
		taken, err = keyExists(txn, nameKey)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateUsername
		}

		id, err := getNextID(txn, UserSeqKey)
		if err != nil {
			return err
		}
		user.ID = id

		if err := setEntity(txn, recordKey(UserKeyPrefix, id), user); err != nil {
			return err
		}
		if err := txn.Set(emailKey, encodeID(id)); err != nil {
			return err
		}
		return txn.Set(nameKey, encodeID(id))
	})
}

// GetByID retrieves an identity by ID
func (r *BadgerUserRepository) GetByID(ctx context.Context, id int64) (*models.Identity, error) {
	var user models.Identity
	err := view(ctx, r.db, func(txn *badger.Txn) error {
		return getEntity(txn, recordKey(UserKeyPrefix, id), &user)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves an identity by its exact email address
func (r *BadgerUserRepository) GetByEmail(ctx context.Context, email string) (*models.Identity, error) {
	var user models.Identity
	err := view(ctx, r.db, func(txn *badger.Txn) error {
		id, err := lookupID(txn, uniqueKey(UserEmailKeyPrefix, email))
		if err != nil {
			return err
		}
		return getEntity(txn, recordKey(UserKeyPrefix, id), &user)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}
