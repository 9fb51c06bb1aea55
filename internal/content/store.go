package content

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/JaimeStill/intake/pkg/formatting"
	"github.com/JaimeStill/intake/pkg/repository"
	"github.com/JaimeStill/intake/pkg/storage"
)

// System stores and retrieves content-addressed blobs.
type System interface {
	// Store persists data under its content hash. When a blob with the same
	// hash already exists the bytes are not rewritten and Deduplicated is true.
	Store(ctx context.Context, data []byte, contentType string) (*Object, error)
	// Open returns the bytes stored under hash.
	Open(ctx context.Context, hash string) ([]byte, error)
}

type store struct {
	db     *sql.DB
	blobs  storage.System
	logger *slog.Logger
}

// New creates a content store backed by the given blob storage and database.
func New(db *sql.DB, blobs storage.System, logger *slog.Logger) System {
	return &store{
		db:     db,
		blobs:  blobs,
		logger: logger.With("system", "content"),
	}
}

func (s *store) Store(ctx context.Context, data []byte, contentType string) (*Object, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}

	hash := Hash(data)
	key := StorageKey(hash)
	contentType = DetectContentType(contentType, data)

	exists, err := s.blobs.Exists(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: check %s: %w", ErrStorage, hash, err)
	}

	if !exists {
		if err := s.blobs.Upload(ctx, key, bytes.NewReader(data), contentType); err != nil {
			return nil, fmt.Errorf("%w: upload %s: %w", ErrStorage, hash, err)
		}
	}

	q := `
		INSERT INTO content_objects(sha256, storage_key, size_bytes, content_type)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (sha256) DO NOTHING`

	if _, err := s.db.ExecContext(ctx, q, hash, key, int64(len(data)), contentType); err != nil {
		return nil, fmt.Errorf("%w: index %s: %w", ErrStorage, hash, err)
	}

	obj, err := s.find(ctx, s.db, hash)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	obj.Deduplicated = exists

	s.logger.InfoContext(ctx, "content stored",
		"sha256", hash,
		"size", formatting.FormatBytes(obj.SizeBytes, 1),
		"deduplicated", exists,
	)
	return obj, nil
}

func (s *store) Open(ctx context.Context, hash string) ([]byte, error) {
	if !validHash(hash) {
		return nil, ErrInvalidHash
	}

	rc, err := s.blobs.Download(ctx, StorageKey(hash))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: download %s: %w", ErrStorage, hash, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrStorage, hash, err)
	}

	return data, nil
}

func (s *store) find(ctx context.Context, q repository.Querier, hash string) (*Object, error) {
	query := `
		SELECT sha256, storage_key, size_bytes, content_type, created_at
		FROM content_objects
		WHERE sha256 = $1`

	obj, err := repository.QueryOne(ctx, q, query, []any{hash}, scanObject)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrNotFound)
	}
	return &obj, nil
}

func scanObject(s repository.Scanner) (Object, error) {
	var o Object
	err := s.Scan(
		&o.SHA256,
		&o.StorageKey,
		&o.SizeBytes,
		&o.ContentType,
		&o.CreatedAt,
	)
	return o, err
}
