package repositories

import (
	"context"

	"inkpost/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerCategoryRepository implements CategoryRepository using BadgerDB
type BadgerCategoryRepository struct {
	db *badger.DB
}

// NewBadgerCategoryRepository creates a new BadgerCategoryRepository
func NewBadgerCategoryRepository(db *badger.DB) *BadgerCategoryRepository {
	return &BadgerCategoryRepository{db: db}
}

// Create stores a new category. Names are compared exactly, case included.
func (r *BadgerCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	return update(ctx, r.db, func(txn *badger.Txn) error {
		nameKey := uniqueKey(CategoryNameKeyPrefix, category.Name)
		taken, err := keyExists(txn, nameKey)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateName
		}

		id, err := getNextID(txn, CategorySeqKey)
		if err != nil {
			return err
		}
		category.ID = id

		if err := setEntity(txn, recordKey(CategoryKeyPrefix, id), category); err != nil {
			return err
		}
		return txn.Set(nameKey, encodeID(id))
	})
}

// GetByID retrieves a category by ID
func (r *BadgerCategoryRepository) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	var category models.Category
	err := view(ctx, r.db, func(txn *badger.Txn) error {
		return getEntity(txn, recordKey(CategoryKeyPrefix, id), &category)
	})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// List returns every category in insertion order
func (r *BadgerCategoryRepository) List(ctx context.Context) ([]*models.Category, error) {
	categories := []*models.Category{}
	err := view(ctx, r.db, func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(CategoryKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var category models.Category
			err := it.Item().Value(func(val []byte) error {
				return unmarshalEntity(val, &category)
			})
			if err != nil {
				return err
			}
			categories = append(categories, &category)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return categories, nil
}
