package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/laconfrerie/confrerie-api/internal/domain"
)

var (
	ErrPersistence = domain.ErrPersistence
	ErrInvalidJSON = errors.New("invalid json document")
)

type DocumentDAO interface {
	Ensure(ctx context.Context, seed []byte) error
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, body []byte) error
}

// Transactor is implemented by DAOs able to hold their write lock across a
// whole read-modify-write cycle.
type Transactor interface {
	Transact(ctx context.Context, fn func(current []byte) ([]byte, error)) error
}

type DocumentRepository struct {
	dao  DocumentDAO
	norm *Normalizer

	ensureMu sync.Mutex
	ensured  bool
}

func NewDocumentRepository(dao DocumentDAO, norm *Normalizer) *DocumentRepository {
	return &DocumentRepository{
		dao:  dao,
		norm: norm,
	}
}

func (r *DocumentRepository) ensure(ctx context.Context) error {
	r.ensureMu.Lock()
	defer r.ensureMu.Unlock()

	if r.ensured {
		return nil
	}

	seed, err := r.Encode(r.norm.Default())
	if err != nil {
		return err
	}

	if err = r.dao.Ensure(ctx, seed); err != nil {
		return fmt.Errorf("r.dao.Ensure -> %w: %w", ErrPersistence, err)
	}
	r.ensured = true

	return nil
}

// Load reads and normalizes the stored document. Unreadable content yields the default document.
func (r *DocumentRepository) Load(ctx context.Context) (domain.Document, error) {
	if err := r.ensure(ctx); err != nil {
		return domain.Document{}, err
	}

	body, err := r.dao.Read(ctx)
	if err != nil {
		return domain.Document{}, fmt.Errorf("r.dao.Read -> %w: %w", ErrPersistence, err)
	}

	return r.decode(body), nil
}

// Save normalizes doc again and overwrites the stored document.
func (r *DocumentRepository) Save(ctx context.Context, doc domain.Document) error {
	if err := r.ensure(ctx); err != nil {
		return err
	}

	body, err := r.Encode(r.norm.NormalizeDocument(doc))
	if err != nil {
		return err
	}

	if err = r.dao.Write(ctx, body); err != nil {
		return fmt.Errorf("r.dao.Write -> %w: %w", ErrPersistence, err)
	}

	return nil
}

// Update applies fn to a fresh copy of the document and persists the result.
// An error from fn leaves storage untouched and is returned as is.
func (r *DocumentRepository) Update(ctx context.Context, fn func(doc *domain.Document) error) (domain.Document, error) {
	if err := r.ensure(ctx); err != nil {
		return domain.Document{}, err
	}

	tx, ok := r.dao.(Transactor)
	if !ok {
		return r.updateUnlocked(ctx, fn)
	}

	var (
		out   domain.Document
		fnErr error
	)
	err := tx.Transact(ctx, func(current []byte) ([]byte, error) {
		doc := r.decode(current)
		if fnErr = fn(&doc); fnErr != nil {
			return nil, fnErr
		}

		out = r.norm.NormalizeDocument(doc)
		return r.Encode(out)
	})
	if fnErr != nil {
		return domain.Document{}, fnErr
	}
	if err != nil {
		return domain.Document{}, fmt.Errorf("tx.Transact -> %w: %w", ErrPersistence, err)
	}

	return out, nil
}

func (r *DocumentRepository) updateUnlocked(ctx context.Context, fn func(doc *domain.Document) error) (domain.Document, error) {
	doc, err := r.Load(ctx)
	if err != nil {
		return domain.Document{}, err
	}

	if err = fn(&doc); err != nil {
		return domain.Document{}, err
	}

	out := r.norm.NormalizeDocument(doc)
	body, err := r.Encode(out)
	if err != nil {
		return domain.Document{}, err
	}

	if err = r.dao.Write(ctx, body); err != nil {
		return domain.Document{}, fmt.Errorf("r.dao.Write -> %w: %w", ErrPersistence, err)
	}

	return out, nil
}

// Decode parses an uploaded backup. Unlike Load it rejects malformed input.
func (r *DocumentRepository) Decode(body []byte) (domain.Document, error) {
	raw, err := decodeRaw(body)
	if err != nil {
		return domain.Document{}, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}

	if _, ok := raw.(map[string]any); !ok {
		return domain.Document{}, ErrInvalidJSON
	}

	return r.norm.Normalize(raw), nil
}

// Encode renders doc as indented UTF-8 JSON, the on-disk and backup format.
func (r *DocumentRepository) Encode(doc domain.Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")

	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("enc.Encode -> %w", err)
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func (r *DocumentRepository) Normalizer() *Normalizer {
	return r.norm
}

func (r *DocumentRepository) decode(body []byte) domain.Document {
	if len(bytes.TrimSpace(body)) == 0 {
		return r.norm.Default()
	}

	raw, err := decodeRaw(body)
	if err != nil {
		zap.L().Warn("stored document is not valid json, serving defaults", zap.Error(err))
		return r.norm.Default()
	}

	return r.norm.Normalize(raw)
}
