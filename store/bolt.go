package store

import (
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/tailored-agentic-units/formstate/form"
)

const bucketCheckpoints = "checkpoints"

// BoltStore keeps checkpoints in a bbolt database, one protobuf-encoded
// value per form ID in the "checkpoints" bucket. It is safe for concurrent
// use; bbolt serializes writers.
type BoltStore struct {
	db *bbolt.DB
}

// OpenBolt opens or creates the database at path. Only one process may hold
// the file; a second opener fails after a one second wait.
func OpenBolt(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketCheckpoints))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize %s: %w", path, err)
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Save(cp form.Checkpoint) error {
	if err := checkID(cp.FormID); err != nil {
		return err
	}

	data, err := EncodeCheckpoint(cp)
	if err != nil {
		return err
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketCheckpoints)).Put([]byte(cp.FormID), data)
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, cp.FormID, err)
	}
	return nil
}

func (s *BoltStore) Load(formID string) (form.Checkpoint, error) {
	var data []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket([]byte(bucketCheckpoints)).Get([]byte(formID))
		if v == nil {
			return fmt.Errorf("%w: %s", form.ErrCheckpointNotFound, formID)
		}
		// v is only valid inside the transaction.
		data = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return form.Checkpoint{}, err
	}

	return DecodeCheckpoint(data)
}

func (s *BoltStore) Delete(formID string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketCheckpoints)).Delete([]byte(formID))
	})
}

// List returns form IDs in key order, which bbolt keeps sorted.
func (s *BoltStore) List() ([]string, error) {
	ids := []string{}
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketCheckpoints)).ForEach(func(k, _ []byte) error {
			ids = append(ids, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}
	return ids, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
