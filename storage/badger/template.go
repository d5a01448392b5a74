// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/answerdesk/core"
	"github.com/poiesic/answerdesk/storage"
)

// TemplateRepository implements storage.TemplateRepository for BadgerDB.
type TemplateRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.TemplateRepository = (*TemplateRepository)(nil)

// NewTemplateRepository creates a new TemplateRepository.
func NewTemplateRepository(backend *Backend) (*TemplateRepository, error) {
	idSeq, err := backend.GetSequence(templateIDSeq)
	if err != nil {
		return nil, err
	}

	return &TemplateRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *TemplateRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *TemplateRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddTemplate stores a new template.
func (r *TemplateRepository) AddTemplate(ctx context.Context, template *core.Template) (*core.Template, error) {
	err := r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		titleKey := makeTemplateTitleKey(template.Title)
		exists, err := keyExists(tx, titleKey)
		if err != nil {
			return err
		}
		if exists {
			return storage.ErrDuplicateKey
		}

		nextID, err := r.idSeq.Next()
		if err != nil {
			return err
		}
		// BadgerDB sequences can return 0 on first call, so we skip it
		if nextID == 0 {
			nextID, err = r.idSeq.Next()
			if err != nil {
				return err
			}
		}
		template.ID = core.ID(nextID)

		// Stored timestamps have microsecond precision
		now := time.Now().UTC().Truncate(time.Microsecond)
		template.CreatedAt = now
		template.ModifiedAt = now

		if err := r.writeTemplate(tx, template); err != nil {
			return err
		}
		return nil
	}, true)
	if err != nil {
		return nil, err
	}
	return template, nil
}

// UpdateTemplate replaces an existing template.
func (r *TemplateRepository) UpdateTemplate(ctx context.Context, template *core.Template) (*core.Template, error) {
	err := r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		old, err := r.readTemplate(tx, makeTemplateKey(template.ID))
		if err != nil {
			return err
		}
		if old == nil {
			return storage.ErrNotFound
		}

		if old.Title != template.Title {
			exists, err := keyExists(tx, makeTemplateTitleKey(template.Title))
			if err != nil {
				return err
			}
			if exists {
				return storage.ErrDuplicateKey
			}
		}
		if err := r.deleteIndexes(tx, old); err != nil {
			return err
		}

		template.CreatedAt = old.CreatedAt
		template.ModifiedAt = time.Now().UTC().Truncate(time.Microsecond)
		if err := r.writeTemplate(tx, template); err != nil {
			return err
		}
		return nil
	}, true)
	if err != nil {
		return nil, err
	}
	return template, nil
}

// DeleteTemplate removes a template by ID.
func (r *TemplateRepository) DeleteTemplate(ctx context.Context, id core.ID) error {
	return r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		key := makeTemplateKey(id)
		template, err := r.readTemplate(tx, key)
		if err != nil {
			return err
		}
		if template == nil {
			return storage.ErrNotFound
		}
		if err := r.deleteIndexes(tx, template); err != nil {
			return err
		}
		if err := tx.Delete(key); err != nil {
			return err
		}
		return nil
	}, true)
}

// GetTemplate retrieves a template by ID.
func (r *TemplateRepository) GetTemplate(ctx context.Context, id core.ID) (*core.Template, error) {
	var result *core.Template
	err := r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		var err error
		result, err = r.readTemplate(tx, makeTemplateKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetTemplateByTitle retrieves a template by its exact title.
func (r *TemplateRepository) GetTemplateByTitle(ctx context.Context, title string) (*core.Template, error) {
	var result *core.Template
	err := r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		id, err := readID(tx, makeTemplateTitleKey(title))
		if err != nil {
			return err
		}
		result, err = r.readTemplate(tx, makeTemplateKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// ListTemplates returns every template, most recently modified first.
func (r *TemplateRepository) ListTemplates(ctx context.Context) ([]*core.Template, error) {
	results := []*core.Template{}
	err := r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		// Use reverse iterator to get most recent templates first
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true

		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Seek to the last possible key of the modification index
		startKey := makeTemplateModifiedKey(time.Date(9999, 12, 31, 23, 59, 59, 999999999, time.UTC), core.ID(^uint64(0)))
		prefix := []byte(templateModifiedPrefix + ":")

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if len(key) < len(prefix) || slices.Compare(key[:len(prefix)], prefix) != 0 {
				break
			}

			var id core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			template, err := r.readTemplate(tx, makeTemplateKey(id))
			if err != nil {
				return err
			}
			if template != nil {
				results = append(results, template)
			}
		}
		return nil
	}, false)
	return results, err
}

// writeTemplate stores the primary record and both indexes.
func (r *TemplateRepository) writeTemplate(tx *badger.Txn, template *core.Template) error {
	if err := tx.Set(makeTemplateKey(template.ID), storage.MarshalTemplate(template)); err != nil {
		return err
	}
	idValue := storage.MarshalID(template.ID)
	if err := tx.Set(makeTemplateTitleKey(template.Title), idValue); err != nil {
		return err
	}
	return tx.Set(makeTemplateModifiedKey(template.ModifiedAt, template.ID), idValue)
}

func (r *TemplateRepository) deleteIndexes(tx *badger.Txn, template *core.Template) error {
	if err := tx.Delete(makeTemplateTitleKey(template.Title)); err != nil {
		return err
	}
	return tx.Delete(makeTemplateModifiedKey(template.ModifiedAt, template.ID))
}

func (r *TemplateRepository) readTemplate(tx *badger.Txn, key []byte) (*core.Template, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var template *core.Template
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		template, unmarshalErr = storage.UnmarshalTemplate(val)
		return unmarshalErr
	})
	return template, err
}

// readID reads an index entry. A missing key is storage.ErrNotFound.
func readID(tx *badger.Txn, key []byte) (core.ID, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return 0, storage.ErrNotFound
		}
		return 0, err
	}
	var id core.ID
	err = item.Value(func(val []byte) error {
		var err error
		id, err = storage.UnmarshalID(val)
		return err
	})
	return id, err
}

func keyExists(tx *badger.Txn, key []byte) (bool, error) {
	_, err := tx.Get(key)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	return false, err
}
