package repositories

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const (
	// Key prefixes for different entity types
	UserKeyPrefix     = "user:"
	CategoryKeyPrefix = "category:"
	PostKeyPrefix     = "post:"

	// Sequence keys for auto-incrementing IDs
	UserSeqKey     = "seq:user"
	CategorySeqKey = "seq:category"
	PostSeqKey     = "seq:post"

	// Unique indexes, value is the owning record's id
	UserEmailKeyPrefix    = "uniq:user:email:"
	UserNameKeyPrefix     = "uniq:user:name:"
	CategoryNameKeyPrefix = "uniq:category:name:"
	PostSlugKeyPrefix     = "uniq:post:slug:"

	// Ordering indexes, the id is the last idWidth bytes of the key
	PostCreatedIndexPrefix  = "idx:post:created:"
	PostCategoryIndexPrefix = "idx:post:cat:"
	PostAuthorIndexPrefix   = "idx:post:author:"

	idWidth = 20

	// maxTxnAttempts bounds retries of write transactions that lost an
	// optimistic concurrency race.
	maxTxnAttempts = 5
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicateEmail    = errors.New("email already exists")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateName     = errors.New("name already exists")
	ErrDuplicateSlug     = errors.New("slug already exists")
	ErrInvalidEntity     = errors.New("invalid entity")
)

func recordKey(prefix string, id int64) []byte {
	return []byte(fmt.Sprintf("%s%0*d", prefix, idWidth, id))
}

func uniqueKey(prefix, value string) []byte {
	return []byte(prefix + value)
}

func createdIndexKey(ts time.Time, id int64) []byte {
	return []byte(fmt.Sprintf("%s%0*d:%0*d", PostCreatedIndexPrefix, idWidth, ts.UnixNano(), idWidth, id))
}

func categoryIndexPrefix(categoryID int64) []byte {
	return []byte(fmt.Sprintf("%s%0*d:", PostCategoryIndexPrefix, idWidth, categoryID))
}

func categoryIndexKey(categoryID int64, ts time.Time, id int64) []byte {
	return []byte(fmt.Sprintf("%s%0*d:%0*d", categoryIndexPrefix(categoryID), idWidth, ts.UnixNano(), idWidth, id))
}

func authorIndexPrefix(authorID int64) []byte {
	return []byte(fmt.Sprintf("%s%0*d:", PostAuthorIndexPrefix, idWidth, authorID))
}

func authorIndexKey(authorID, id int64) []byte {
	return []byte(fmt.Sprintf("%s%0*d", authorIndexPrefix(authorID), idWidth, id))
}

// idFromIndexKey extracts the trailing record id of an index key.
func idFromIndexKey(key []byte) (int64, error) {
	if len(key) < idWidth {
		return 0, fmt.Errorf("malformed index key %q", key)
	}
	return strconv.ParseInt(string(key[len(key)-idWidth:]), 10, 64)
}

func encodeID(id int64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(id))
	return buf
}

func decodeID(val []byte) (int64, error) {
	if len(val) != 8 {
		return 0, fmt.Errorf("malformed id value of %d bytes", len(val))
	}
	return int64(binary.BigEndian.Uint64(val)), nil
}

// getNextID gets the next available ID for a given sequence key
func getNextID(txn *badger.Txn, seqKey string) (int64, error) {
	var id int64
	item, err := txn.Get([]byte(seqKey))
	if errors.Is(err, badger.ErrKeyNotFound) {
		id = 1
	} else if err != nil {
		return 0, err
	} else {
		err = item.Value(func(val []byte) error {
			current, err := decodeID(val)
			id = current
			return err
		})
		if err != nil {
			return 0, err
		}
		id++
	}

	// Store new ID
	if err := txn.Set([]byte(seqKey), encodeID(id)); err != nil {
		return 0, err
	}

	return id, nil
}

// lookupID resolves a unique index key to the id it points at.
func lookupID(txn *badger.Txn, key []byte) (int64, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	var id int64
	err = item.Value(func(val []byte) error {
		id, err = decodeID(val)
		return err
	})
	return id, err
}

func keyExists(txn *badger.Txn, key []byte) (bool, error) {
	_, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// getEntity loads and unmarshals the record stored at key.
func getEntity(txn *badger.Txn, key []byte, entity interface{}) error {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return unmarshalEntity(val, entity)
	})
}

// setEntity marshals entity and stores it at key.
func setEntity(txn *badger.Txn, key []byte, entity interface{}) error {
	if v, ok := entity.(validatable); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidEntity, err)
		}
	}
	data, err := marshalEntity(entity)
	if err != nil {
		return err
	}
	return txn.Set(key, data)
}

// validatable is implemented by every stored model.
type validatable interface {
	Validate() error
}

// marshalEntity marshals an entity to JSON
func marshalEntity(entity interface{}) ([]byte, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	return data, nil
}

// unmarshalEntity unmarshals JSON data into an entity
func unmarshalEntity(data []byte, entity interface{}) error {
	if err := json.Unmarshal(data, entity); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return nil
}

// update runs fn in a read-write transaction, retrying when Badger reports a
// conflict with a concurrently committed transaction.
func update(ctx context.Context, db *badger.DB, fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt < maxTxnAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err = db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return fmt.Errorf("transaction retries exhausted: %w", err)
}

// view runs fn in a read-only transaction unless ctx is already done.
func view(ctx context.Context, db *badger.DB, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return db.View(fn)
}
