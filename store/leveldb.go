package store

import (
	"fmt"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	leveldberrors "github.com/syndtr/goleveldb/leveldb/errors"
)

// LevelDB holds a datastore name and its leveldb instance
type LevelDB struct {
	Name     string
	database *leveldb.DB
}

// NewLevelDB instantiates and opens a new LevelDB instance backed by a leveldb
// database. If the leveldb database doesn't exist, one is created
func NewLevelDB(name string, storagePath string) (ldb *LevelDB, err error) {
	// Expand '~' as the full home directory path if appropriate
	path, err := homedir.Expand(storagePath)
	if err != nil {
		return nil, err
	}

	fullPath := filepath.Join(path, name)
	db, err := leveldb.OpenFile(fullPath, nil)

	if _, ok := err.(*leveldberrors.ErrCorrupted); ok {
		return nil, errors.Wrap(err, fmt.Sprintf("leveldb corrupted. Consider deleting [%s] and restarting if you don't mind losing data", fullPath))
	} else if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("failed to open file with path [%s]", fullPath))
	}

	return &LevelDB{Name: name, database: db}, nil
}

// Close closes the underlying leveldb database
func (ldb *LevelDB) Close() (err error) {
	return ldb.database.Close()
}

// GetString retrieves the value associated to the key
func (ldb *LevelDB) GetString(key string) (value string, err error) {
	data, err := ldb.database.Get([]byte(key), nil)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

// PutString adds or updates the value associated to the key
func (ldb *LevelDB) PutString(key string, value string) (err error) {
	return ldb.database.Put([]byte(key), []byte(value), nil)
}

// DeleteString deletes the entry for the given key
func (ldb *LevelDB) DeleteString(key string) (err error) {
	return ldb.database.Delete([]byte(key), nil)
}

// Scan returns the complete set of key/values from the database
func (ldb *LevelDB) Scan() (entries map[string]string, err error) {
	entries = map[string]string{}
	iter := ldb.database.NewIterator(nil, nil)
	for iter.Next() {
		key := string(iter.Key())
		value := string(iter.Value())
		entries[key] = value
	}

	iter.Release()
	err = iter.Error()

	return entries, err
}
