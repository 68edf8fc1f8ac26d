package repositories

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"
)

// StoreOptions controls how the backing Badger database is opened.
type StoreOptions struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path     string
	InMemory bool
	// Logger receives Badger's own log output. Nil silences it.
	Logger *logrus.Logger
}

// Store owns the Badger database and the repositories built on it.
type Store struct {
	db    *badger.DB
	mutex sync.Mutex

	Users      *BadgerUserRepository
	Categories *BadgerCategoryRepository
	Posts      *BadgerPostRepository
}

// Open opens (creating if needed) the database described by opts.
func Open(opts StoreOptions) (*Store, error) {
	var badgerOpts badger.Options
	if opts.InMemory {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if opts.Path == "" {
			return nil, fmt.Errorf("database path is required")
		}
		if err := os.MkdirAll(opts.Path, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		badgerOpts = badger.DefaultOptions(opts.Path)
	}
	badgerOpts = badgerOpts.WithNumVersionsToKeep(1)
	if opts.Logger != nil {
		badgerOpts = badgerOpts.WithLogger(opts.Logger.WithField("component", "badger"))
	} else {
		badgerOpts = badgerOpts.WithLogger(nil)
	}

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}
	return NewStore(db), nil
}

// NewStore wraps an already opened database.
func NewStore(db *badger.DB) *Store {
	return &Store{
		db:         db,
		Users:      NewBadgerUserRepository(db),
		Categories: NewBadgerCategoryRepository(db),
		Posts:      NewBadgerPostRepository(db),
	}
}

// DB exposes the underlying database for maintenance commands.
func (s *Store) DB() *badger.DB {
	return s.db
}

// Backup writes a full backup of the database to w.
func (s *Store) Backup(w io.Writer) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	_, err := s.db.Backup(w, 0)
	return err
}

// Restore loads a backup produced by Backup into the database.
func (s *Store) Restore(r io.Reader) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.db.Load(r, 16)
}

// Clear drops every key. Intended for tests and the clean command.
func (s *Store) Clear() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.db.DropAll()
}

func (s *Store) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.db.Close()
}
