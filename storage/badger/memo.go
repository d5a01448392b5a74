package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/answerdesk/core"
	"github.com/poiesic/answerdesk/storage"
)

// MemoRepository implements storage.MemoRepository for BadgerDB.
type MemoRepository struct {
	backend *Backend
}

var _ storage.MemoRepository = (*MemoRepository)(nil)

// NewMemoRepository creates a new MemoRepository.
func NewMemoRepository(backend *Backend) (*MemoRepository, error) {
	return &MemoRepository{backend: backend}, nil
}

// Close is a no-op; the backend owns the database.
func (r *MemoRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *MemoRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// PutMemo creates or replaces the memo for an answer record.
func (r *MemoRepository) PutMemo(ctx context.Context, memo *core.AnswerMemo) (*core.AnswerMemo, error) {
	err := r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		memo.ModifiedAt = time.Now().UTC().Truncate(time.Microsecond)
		if err := tx.Set(makeMemoKey(memo.AnswerID), storage.MarshalMemo(memo)); err != nil {
			return err
		}
		return nil
	}, true)
	if err != nil {
		return nil, err
	}
	return memo, nil
}

// GetMemo retrieves the memo for an answer record.
func (r *MemoRepository) GetMemo(ctx context.Context, answerID int64) (*core.AnswerMemo, error) {
	var result *core.AnswerMemo
	err := r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		item, err := tx.Get(makeMemoKey(answerID))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			result, err = storage.UnmarshalMemo(val)
			return err
		})
	}, false)
	return result, err
}

// DeleteMemo removes the memo for an answer record.
func (r *MemoRepository) DeleteMemo(ctx context.Context, answerID int64) error {
	return r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		key := makeMemoKey(answerID)
		exists, err := keyExists(tx, key)
		if err != nil {
			return err
		}
		if !exists {
			return storage.ErrNotFound
		}
		if err := tx.Delete(key); err != nil {
			return err
		}
		return nil
	}, true)
}

// ListMemos returns every memo ordered by answer ID.
func (r *MemoRepository) ListMemos(ctx context.Context) ([]*core.AnswerMemo, error) {
	results := []*core.AnswerMemo{}
	err := r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(memoPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var memo *core.AnswerMemo
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				memo, err = storage.UnmarshalMemo(val)
				return err
			}); err != nil {
				return err
			}
			results = append(results, memo)
		}
		return nil
	}, false)
	return results, err
}
