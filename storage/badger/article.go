package badger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/statute/core"
	"github.com/poiesic/statute/storage"
)

// ArticleRepository implements storage.ArticleRepository for BadgerDB.
type ArticleRepository struct {
	backend     *Backend
	ownsBackend bool
	logger      *slog.Logger
}

var _ storage.ArticleRepository = (*ArticleRepository)(nil)

// NewArticleRepository creates a repository over an already opened backend.
// The caller keeps ownership of the backend.
func NewArticleRepository(backend *Backend) (*ArticleRepository, error) {
	if backend == nil {
		return nil, errors.New("badger: backend is required")
	}
	return &ArticleRepository{
		backend: backend,
		logger:  slog.Default().With("component", "article-repository"),
	}, nil
}

// NewRepository opens (or creates) a database directory and returns a repository owning it.
//
// Returns storage.ArticleRepository interface to enforce abstraction.
func NewRepository(path string) (storage.ArticleRepository, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	repo, err := NewArticleRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	repo.ownsBackend = true
	return repo, nil
}

// Close releases the backend when the repository opened it.
func (r *ArticleRepository) Close() error {
	if r.ownsBackend {
		return r.backend.Close()
	}
	return nil
}

// FindSimilar delegates to the backend.
func (r *ArticleRepository) FindSimilar(ctx context.Context, vector []float32, candidates, limit int) ([]*core.SearchResult, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", storage.ErrInvalidQuery)
	}
	return r.backend.FindSimilar(ctx, vector, limit)
}

// AddArticles upserts articles keyed by document and position.
// A label that moved to another position replaces its previous record.
func (r *ArticleRepository) AddArticles(ctx context.Context, articles ...*core.Article) ([]*core.Article, error) {
	for _, article := range articles {
		if err := core.ValidateArticle(article); err != nil {
			return nil, err
		}
		if strings.IndexByte(article.DocumentID, keySeparator) >= 0 {
			return nil, fmt.Errorf("%w: document ID contains a NUL byte", core.ErrInvalidArticle)
		}
	}

	now := time.Now().UTC()
	touched := make(map[string]struct{})

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, article := range articles {
			if err := ctx.Err(); err != nil {
				return err
			}

			if article.Id == 0 {
				article.Id = core.ArticleID(article.DocumentID, article.Label)
			}
			if article.InsertedAt.IsZero() {
				article.InsertedAt = now
			}

			key := makeArticleKey(article.DocumentID, article.Position)
			labelKey := makeLabelKey(article.DocumentID, article.Label)

			// Drop the label's record at its old position
			oldKey, err := getValue(tx, labelKey)
			if err != nil {
				return err
			}
			if oldKey != nil && !bytes.Equal(oldKey, key) {
				if err := tx.Delete(oldKey); err != nil {
					return err
				}
			}

			// Unindex a different label previously stored at this position
			if previous, err := readArticle(tx, key); err != nil {
				return err
			} else if previous != nil && previous.Label != article.Label {
				if err := tx.Delete(makeLabelKey(previous.DocumentID, previous.Label)); err != nil {
					return err
				}
			}

			if err := tx.Set(key, storage.MarshalArticle(article)); err != nil {
				return err
			}
			if err := tx.Set(labelKey, key); err != nil {
				return err
			}
			touched[article.DocumentID] = struct{}{}
		}

		for documentID := range touched {
			if err := r.refreshSummary(tx, documentID, now); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("stored articles", "count", len(articles), "documents", len(touched))
	return articles, nil
}

// refreshSummary recounts a document's articles inside tx.
func (r *ArticleRepository) refreshSummary(tx *badger.Txn, documentID string, now time.Time) error {
	count := 0
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = makeDocumentArticlesPrefix(documentID)
	iter := tx.NewIterator(opts)
	for iter.Rewind(); iter.Valid(); iter.Next() {
		count++
	}
	iter.Close()

	summary := core.DocumentSummary{DocumentID: documentID, Articles: count, InsertedAt: now}
	data, err := getValue(tx, makeDocumentKey(documentID))
	if err != nil {
		return err
	}
	if data != nil {
		existing, err := storage.UnmarshalDocumentSummary(documentID, data)
		if err != nil {
			return err
		}
		summary.InsertedAt = existing.InsertedAt
	}

	return tx.Set(makeDocumentKey(documentID), storage.MarshalDocumentSummary(summary))
}

// DeleteDocument removes every article, label index entry and the summary of a document.
func (r *ArticleRepository) DeleteDocument(ctx context.Context, documentID string) (int, error) {
	if documentID == "" {
		return 0, core.ErrEmptyDocumentID
	}

	deleted := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		keys := collectKeys(tx, makeDocumentArticlesPrefix(documentID))
		deleted = len(keys)
		keys = append(keys, collectKeys(tx, makeDocumentLabelsPrefix(documentID))...)
		keys = append(keys, makeDocumentKey(documentID))

		for _, key := range keys {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return 0, err
	}

	r.logger.Debug("deleted document", "document", documentID, "articles", deleted)
	return deleted, nil
}

// FindArticleByPattern scans articles in document then position order and
// returns the first whose text matches pattern case-insensitively.
func (r *ArticleRepository) FindArticleByPattern(ctx context.Context, pattern string) (*core.Article, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrInvalidQuery, err)
	}

	var found *core.Article
	err = r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(articlePrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			article, err := readItem(iter.Item())
			if err != nil {
				return err
			}
			if re.MatchString(article.Text) {
				found = article
				return nil
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, storage.ErrNotFound
	}
	return found, nil
}

// GetDocumentArticles returns a document's articles in position order.
func (r *ArticleRepository) GetDocumentArticles(ctx context.Context, documentID string) ([]*core.Article, error) {
	articles := []*core.Article{}
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeDocumentArticlesPrefix(documentID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			article, err := readItem(iter.Item())
			if err != nil {
				return err
			}
			articles = append(articles, article)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return articles, nil
}

// ListDocuments returns every document summary ordered by document ID.
func (r *ArticleRepository) ListDocuments(ctx context.Context) ([]core.DocumentSummary, error) {
	summaries := []core.DocumentSummary{}
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := iter.Item()
			documentID := string(item.Key()[len(documentPrefix):])
			err := item.Value(func(val []byte) error {
				summary, err := storage.UnmarshalDocumentSummary(documentID, val)
				if err != nil {
					return err
				}
				summaries = append(summaries, summary)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

// readArticle reads an article by key, returning nil when it does not exist.
func readArticle(tx *badger.Txn, key []byte) (*core.Article, error) {
	item, err := tx.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return readItem(item)
}

// getValue returns a copy of the value at key, or nil when it does not exist.
func getValue(tx *badger.Txn, key []byte) ([]byte, error) {
	item, err := tx.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

// collectKeys returns copies of every key under prefix.
func collectKeys(tx *badger.Txn, prefix []byte) [][]byte {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix
	iter := tx.NewIterator(opts)
	defer iter.Close()

	var keys [][]byte
	for iter.Rewind(); iter.Valid(); iter.Next() {
		keys = append(keys, iter.Item().KeyCopy(nil))
	}
	return keys
}
