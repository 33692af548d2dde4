// Copyright (c) 2026 Yomikata. All rights reserved.

package library

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yomikata/ingest/internal/platform/apperr"
	"github.com/yomikata/ingest/internal/platform/dberr"
)

// # PostgreSQL Repositories
//
// All four repositories share one pool and operate against the "ingest"
// schema (see constants.SchemaIngest). They are split by aggregate, not by
// file, to mirror how the scan subsystem consumes them.

type libraryRepository struct {
	pool *pgxpool.Pool
}

// NewLibraryRepository constructs a PostgreSQL-backed LibraryRepository.
func NewLibraryRepository(pool *pgxpool.Pool) LibraryRepository {
	return &libraryRepository{pool: pool}
}

type scanPathRepository struct {
	pool *pgxpool.Pool
}

// NewScanPathRepository constructs a PostgreSQL-backed ScanPathRepository.
func NewScanPathRepository(pool *pgxpool.Pool) ScanPathRepository {
	return &scanPathRepository{pool: pool}
}

type contentRepository struct {
	pool *pgxpool.Pool
}

// NewContentRepository constructs a PostgreSQL-backed ContentRepository.
func NewContentRepository(pool *pgxpool.Pool) ContentRepository {
	return &contentRepository{pool: pool}
}

type chapterRepository struct {
	pool *pgxpool.Pool
}

// NewChapterRepository constructs a PostgreSQL-backed ChapterRepository.
func NewChapterRepository(pool *pgxpool.Pool) ChapterRepository {
	return &chapterRepository{pool: pool}
}

// # Library Repository Implementation

func (r *libraryRepository) List(ctx context.Context) ([]*Library, error) {
	query := `
		SELECT id, name, scan_interval_minutes, watch_mode, created_at, updated_at
		FROM ingest.library
		ORDER BY name
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list_libraries")
	}
	defer rows.Close()

	var libraries []*Library
	for rows.Next() {
		l := &Library{}
		if err := rows.Scan(&l.ID, &l.Name, &l.ScanIntervalMinutes, &l.WatchMode, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, dberr.Wrap(err, "list_libraries")
		}
		libraries = append(libraries, l)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "list_libraries")
	}

	return libraries, nil
}

func (r *libraryRepository) FindByID(ctx context.Context, id string) (*Library, error) {
	query := `
		SELECT id, name, scan_interval_minutes, watch_mode, created_at, updated_at
		FROM ingest.library
		WHERE id = $1
	`

	l := &Library{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&l.ID, &l.Name, &l.ScanIntervalMinutes, &l.WatchMode, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "find_library_by_id")
	}

	return l, nil
}

func (r *libraryRepository) Create(ctx context.Context, l *Library) error {
	query := `
		INSERT INTO ingest.library (id, name, scan_interval_minutes, watch_mode, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	return dberr.Wrap(
		r.pool.QueryRow(ctx, query, l.ID, l.Name, l.ScanIntervalMinutes, l.WatchMode).Scan(&l.CreatedAt, &l.UpdatedAt),
		"create_library",
	)
}

func (r *libraryRepository) Update(ctx context.Context, l *Library) error {
	query := `
		UPDATE ingest.library
		SET name = $1, scan_interval_minutes = $2, watch_mode = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at
	`

	err := r.pool.QueryRow(ctx, query, l.Name, l.ScanIntervalMinutes, l.WatchMode, l.ID).Scan(&l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("library")
	}
	return dberr.Wrap(err, "update_library")
}

// Delete removes the library row. ScanPaths, Contents, and Chapters cascade
// via foreign key ON DELETE CASCADE (migrations/0001_init_schema.up.sql).
func (r *libraryRepository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM ingest.library WHERE id = $1`, id)
	if err != nil {
		return dberr.Wrap(err, "delete_library")
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("library")
	}
	return nil
}

// # ScanPath Repository Implementation

func (r *scanPathRepository) ListByLibrary(ctx context.Context, libraryID string) ([]*ScanPath, error) {
	query := `
		SELECT id, library_id, path, created_at
		FROM ingest.scan_path
		WHERE library_id = $1
		ORDER BY path
	`

	rows, err := r.pool.Query(ctx, query, libraryID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_scan_paths_by_library")
	}
	defer rows.Close()

	var paths []*ScanPath
	for rows.Next() {
		p := &ScanPath{}
		if err := rows.Scan(&p.ID, &p.LibraryID, &p.Path, &p.CreatedAt); err != nil {
			return nil, dberr.Wrap(err, "list_scan_paths_by_library")
		}
		paths = append(paths, p)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "list_scan_paths_by_library")
	}

	return paths, nil
}

func (r *scanPathRepository) FindByID(ctx context.Context, id string) (*ScanPath, error) {
	query := `SELECT id, library_id, path, created_at FROM ingest.scan_path WHERE id = $1`

	p := &ScanPath{}
	err := r.pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.LibraryID, &p.Path, &p.CreatedAt)
	if err != nil {
		return nil, dberr.Wrap(err, "find_scan_path_by_id")
	}

	return p, nil
}

// Create inserts a scan path. The (library_id, path) uniqueness invariant
// is enforced by a database constraint.
func (r *scanPathRepository) Create(ctx context.Context, p *ScanPath) error {
	query := `
		INSERT INTO ingest.scan_path (id, library_id, path, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING created_at
	`

	return dberr.Wrap(
		r.pool.QueryRow(ctx, query, p.ID, p.LibraryID, p.Path).Scan(&p.CreatedAt),
		"create_scan_path",
	)
}

// Delete removes the scan path row. Contents and their Chapters cascade.
func (r *scanPathRepository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM ingest.scan_path WHERE id = $1`, id)
	if err != nil {
		return dberr.Wrap(err, "delete_scan_path")
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("scan_path")
	}
	return nil
}

// # Content Repository Implementation

func (r *contentRepository) FindByID(ctx context.Context, id string) (*Content, error) {
	query := `
		SELECT id, library_id, scan_path_id, classification, title, folder_path,
			chapter_count, thumbnail, metadata, created_at, updated_at
		FROM ingest.content
		WHERE id = $1
	`

	c := &Content{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.LibraryID, &c.ScanPathID, &c.Classification, &c.Title, &c.FolderPath,
		&c.ChapterCount, &c.Thumbnail, &c.Metadata, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "find_content_by_id")
	}

	return c, nil
}

func (r *contentRepository) FindByFolderPath(ctx context.Context, libraryID, folderPath string) (*Content, error) {
	query := `
		SELECT id, library_id, scan_path_id, classification, title, folder_path,
			chapter_count, thumbnail, metadata, created_at, updated_at
		FROM ingest.content
		WHERE library_id = $1 AND folder_path = $2
	`

	c := &Content{}
	err := r.pool.QueryRow(ctx, query, libraryID, folderPath).Scan(
		&c.ID, &c.LibraryID, &c.ScanPathID, &c.Classification, &c.Title, &c.FolderPath,
		&c.ChapterCount, &c.Thumbnail, &c.Metadata, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "find_content_by_folder_path")
	}

	return c, nil
}

func (r *contentRepository) ListByScanPath(ctx context.Context, scanPathID string) ([]*Content, error) {
	query := `
		SELECT id, library_id, scan_path_id, classification, title, folder_path,
			chapter_count, thumbnail, metadata, created_at, updated_at
		FROM ingest.content
		WHERE scan_path_id = $1
		ORDER BY folder_path
	`

	rows, err := r.pool.Query(ctx, query, scanPathID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_content_by_scan_path")
	}
	defer rows.Close()

	var contents []*Content
	for rows.Next() {
		c := &Content{}
		if err := rows.Scan(
			&c.ID, &c.LibraryID, &c.ScanPathID, &c.Classification, &c.Title, &c.FolderPath,
			&c.ChapterCount, &c.Thumbnail, &c.Metadata, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, dberr.Wrap(err, "list_content_by_scan_path")
		}
		contents = append(contents, c)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "list_content_by_scan_path")
	}

	return contents, nil
}

// ListFolderPathsByScanPath backs the removal pass of the scan pipeline: the
// caller diffs this set against what it finds walking the filesystem.
func (r *contentRepository) ListFolderPathsByScanPath(ctx context.Context, scanPathID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT folder_path FROM ingest.content WHERE scan_path_id = $1`, scanPathID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_folder_paths_by_scan_path")
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, dberr.Wrap(err, "list_folder_paths_by_scan_path")
		}
		paths = append(paths, p)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "list_folder_paths_by_scan_path")
	}

	return paths, nil
}

// Create inserts a content row. The (library_id, folder_path) uniqueness
// invariant is enforced by a database constraint.
func (r *contentRepository) Create(ctx context.Context, c *Content) error {
	query := `
		INSERT INTO ingest.content (
			id, library_id, scan_path_id, classification, title, folder_path,
			chapter_count, thumbnail, metadata, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	return dberr.Wrap(
		r.pool.QueryRow(ctx, query,
			c.ID, c.LibraryID, c.ScanPathID, c.Classification, c.Title, c.FolderPath,
			c.ChapterCount, c.Thumbnail, c.Metadata,
		).Scan(&c.CreatedAt, &c.UpdatedAt),
		"create_content",
	)
}

// Delete removes the content row. Its Chapters cascade.
func (r *contentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM ingest.content WHERE id = $1`, id)
	if err != nil {
		return dberr.Wrap(err, "delete_content")
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("content")
	}
	return nil
}

func (r *contentRepository) UpdateThumbnail(ctx context.Context, contentID string, thumbnail []byte) error {
	query := `UPDATE ingest.content SET thumbnail = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.pool.Exec(ctx, query, thumbnail, contentID)
	if err != nil {
		return dberr.Wrap(err, "update_thumbnail")
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("content")
	}
	return nil
}

func (r *contentRepository) UpdateMetadata(ctx context.Context, contentID string, metadata []byte) error {
	query := `UPDATE ingest.content SET metadata = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.pool.Exec(ctx, query, metadata, contentID)
	if err != nil {
		return dberr.Wrap(err, "update_metadata")
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("content")
	}
	return nil
}

func (r *contentRepository) UpdateChapterCount(ctx context.Context, contentID string, count int) error {
	query := `UPDATE ingest.content SET chapter_count = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.pool.Exec(ctx, query, count, contentID)
	if err != nil {
		return dberr.Wrap(err, "update_chapter_count")
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("content")
	}
	return nil
}

// # Chapter Repository Implementation

func (r *chapterRepository) ListByContent(ctx context.Context, contentID string) ([]*Chapter, error) {
	query := `
		SELECT id, content_id, title, file_path, sort_order, page_count, file_size_bytes
		FROM ingest.chapter
		WHERE content_id = $1
		ORDER BY sort_order
	`

	rows, err := r.pool.Query(ctx, query, contentID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_chapters_by_content")
	}
	defer rows.Close()

	var chapters []*Chapter
	for rows.Next() {
		c := &Chapter{}
		if err := rows.Scan(&c.ID, &c.ContentID, &c.Title, &c.FilePath, &c.SortOrder, &c.PageCount, &c.FileSizeBytes); err != nil {
			return nil, dberr.Wrap(err, "list_chapters_by_content")
		}
		chapters = append(chapters, c)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "list_chapters_by_content")
	}

	return chapters, nil
}

// CreateBatch replaces the full chapter set for every content id present in
// chapters, inside one transaction: a rescan recomputes sort_order for the
// whole folder, so a partial overwrite would leave stale rows behind.
func (r *chapterRepository) CreateBatch(ctx context.Context, chapters []*Chapter) error {
	if len(chapters) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return dberr.Wrap(err, "create_batch_chapters")
	}
	defer tx.Rollback(ctx)

	contentIDs := make(map[string]struct{})
	for _, c := range chapters {
		contentIDs[c.ContentID] = struct{}{}
	}
	for contentID := range contentIDs {
		if _, err := tx.Exec(ctx, `DELETE FROM ingest.chapter WHERE content_id = $1`, contentID); err != nil {
			return dberr.Wrap(err, "create_batch_chapters")
		}
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO ingest.chapter (id, content_id, title, file_path, sort_order, page_count, file_size_bytes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for _, c := range chapters {
		batch.Queue(query, c.ID, c.ContentID, c.Title, c.FilePath, c.SortOrder, c.PageCount, c.FileSizeBytes)
	}

	results := tx.SendBatch(ctx, batch)
	for range chapters {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return dberr.Wrap(err, "create_batch_chapters")
		}
	}
	if err := results.Close(); err != nil {
		return dberr.Wrap(err, "create_batch_chapters")
	}

	return dberr.Wrap(tx.Commit(ctx), "create_batch_chapters")
}
