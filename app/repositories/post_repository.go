package repositories

import (
	"context"
	"fmt"

	"inkpost/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerPostRepository implements PostRepository using BadgerDB.
//
// Besides the record itself every post owns a slug key, a creation-time index
// key, an author index key and, when categorized, a category index key. All of
// them are written and removed in the same transaction as the record.
type BadgerPostRepository struct {
	db *badger.DB
}

// NewBadgerPostRepository creates a new BadgerPostRepository
func NewBadgerPostRepository(db *badger.DB) *BadgerPostRepository {
	return &BadgerPostRepository{db: db}
}

// Create creates a new post
func (r *BadgerPostRepository) Create(ctx context.Context, post *models.Post) error {
	return update(ctx, r.db, func(txn *badger.Txn) error {
		slugKey := uniqueKey(PostSlugKeyPrefix, post.Slug)
		taken, err := keyExists(txn, slugKey)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateSlug
		}

		id, err := getNextID(txn, PostSeqKey)
		if err != nil {
			return err
		}
		post.ID = id

		if err := setEntity(txn, recordKey(PostKeyPrefix, id), post); err != nil {
			return err
		}
		if err := txn.Set(slugKey, encodeID(id)); err != nil {
			return err
		}
		if err := txn.Set(createdIndexKey(post.CreatedAt, id), []byte{}); err != nil {
			return err
		}
		if err := txn.Set(authorIndexKey(post.AuthorID, id), []byte{}); err != nil {
			return err
		}
		if post.CategoryID > 0 {
			return txn.Set(categoryIndexKey(post.CategoryID, post.CreatedAt, id), []byte{})
		}
		return nil
	})
}

// GetByID retrieves a post by ID
func (r *BadgerPostRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	var post models.Post
	err := view(ctx, r.db, func(txn *badger.Txn) error {
		return getEntity(txn, recordKey(PostKeyPrefix, id), &post)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// List walks the creation-time index (or the category's index when filtered)
// in the requested direction. Counting and page collection happen in one pass
// over a single snapshot, so total and the page always agree.
func (r *BadgerPostRepository) List(ctx context.Context, q PostQuery) ([]*models.Post, int, error) {
	posts := []*models.Post{}
	total := 0

	err := view(ctx, r.db, func(txn *badger.Txn) error {
		prefix := []byte(PostCreatedIndexPrefix)
		if q.CategoryID > 0 {
			prefix = categoryIndexPrefix(q.CategoryID)
		}

		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Reverse = q.Descending
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		seek := prefix
		if q.Descending {
			seek = append(append([]byte{}, prefix...), 0xFF)
		}

		var ids []int64
		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			if total >= q.Offset && len(ids) < q.Limit {
				id, err := idFromIndexKey(it.Item().Key())
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			total++
			if total%1024 == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
		}

		for _, id := range ids {
			var post models.Post
			if err := getEntity(txn, recordKey(PostKeyPrefix, id), &post); err != nil {
				return fmt.Errorf("index entry for post %d: %w", id, err)
			}
			posts = append(posts, &post)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// Update replaces the mutable fields of an existing post. Author and creation
// time always keep their stored values.
func (r *BadgerPostRepository) Update(ctx context.Context, post *models.Post) error {
	return update(ctx, r.db, func(txn *badger.Txn) error {
		var existing models.Post
		if err := getEntity(txn, recordKey(PostKeyPrefix, post.ID), &existing); err != nil {
			return err
		}
		post.AuthorID = existing.AuthorID
		post.CreatedAt = existing.CreatedAt

		if post.Slug != existing.Slug {
			slugKey := uniqueKey(PostSlugKeyPrefix, post.Slug)
			taken, err := keyExists(txn, slugKey)
			if err != nil {
				return err
			}
			if taken {
				return ErrDuplicateSlug
			}
			if err := txn.Delete(uniqueKey(PostSlugKeyPrefix, existing.Slug)); err != nil {
				return err
			}
			if err := txn.Set(slugKey, encodeID(post.ID)); err != nil {
				return err
			}
		}

		if post.CategoryID != existing.CategoryID {
			if existing.CategoryID > 0 {
				if err := txn.Delete(categoryIndexKey(existing.CategoryID, existing.CreatedAt, post.ID)); err != nil {
					return err
				}
			}
			if post.CategoryID > 0 {
				if err := txn.Set(categoryIndexKey(post.CategoryID, post.CreatedAt, post.ID), []byte{}); err != nil {
					return err
				}
			}
		}

		return setEntity(txn, recordKey(PostKeyPrefix, post.ID), post)
	})
}

// Delete deletes a post by ID along with its index entries
func (r *BadgerPostRepository) Delete(ctx context.Context, id int64) error {
	return update(ctx, r.db, func(txn *badger.Txn) error {
		var existing models.Post
		if err := getEntity(txn, recordKey(PostKeyPrefix, id), &existing); err != nil {
			return err
		}

		keys := [][]byte{
			recordKey(PostKeyPrefix, id),
			uniqueKey(PostSlugKeyPrefix, existing.Slug),
			createdIndexKey(existing.CreatedAt, id),
			authorIndexKey(existing.AuthorID, id),
		}
		if existing.CategoryID > 0 {
			keys = append(keys, categoryIndexKey(existing.CategoryID, existing.CreatedAt, id))
		}
		for _, key := range keys {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
}

// CountByAuthor counts the posts written by authorID
func (r *BadgerPostRepository) CountByAuthor(ctx context.Context, authorID int64) (int, error) {
	count := 0
	err := view(ctx, r.db, func(txn *badger.Txn) error {
		prefix := authorIndexPrefix(authorID)
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}
