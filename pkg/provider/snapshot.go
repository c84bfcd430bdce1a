package provider

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/licensegate/licensegate/pkg/model"
)

// SnapshotStore persists one metadata snapshot in a SQLite database.
// Saving replaces the previous snapshot wholesale: the store always
// holds exactly one immutable set of records, so a re-audit reads the
// same bytes the original run saw.
type SnapshotStore struct {
	db *sql.DB
}

// OpenSnapshotStore opens (or creates) a snapshot database at path
// using the pure-Go sqlite driver.
func OpenSnapshotStore(path string) (*SnapshotStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot db: %w", err)
	}
	return NewSnapshotStore(db)
}

// NewSnapshotStore wraps an existing connection and ensures the schema.
func NewSnapshotStore(db *sql.DB) (*SnapshotStore, error) {
	s := &SnapshotStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SnapshotStore) migrate() error {
	query := `
    CREATE TABLE IF NOT EXISTS packages (
        name TEXT PRIMARY KEY,
        version TEXT,
        license_field TEXT,
        classifiers JSON,
        license_file_path TEXT,
        license_file_text TEXT,
        notice_file_path TEXT,
        notice_text TEXT,
        author TEXT,
        maintainer TEXT,
        summary TEXT,
        home_page TEXT,
        project_urls JSON,
        requires JSON
    );
    CREATE TABLE IF NOT EXISTS snapshot_meta (
        id INTEGER PRIMARY KEY CHECK (id = 1),
        taken_at DATETIME
    );`
	_, err := s.db.ExecContext(context.Background(), query)
	return err
}

// Save replaces the stored snapshot with records.
func (s *SnapshotStore) Save(ctx context.Context, records []model.RawPackageRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM packages`); err != nil {
		return err
	}

	const insert = `INSERT INTO packages (
        name, version, license_field, classifiers,
        license_file_path, license_file_text, notice_file_path, notice_text,
        author, maintainer, summary, home_page, project_urls, requires
    ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for _, r := range records {
		classifiers, _ := json.Marshal(r.Classifiers)
		projectURLs, _ := json.Marshal(r.ProjectURLs)
		requires, _ := json.Marshal(r.Requires)
		if _, err := tx.ExecContext(ctx, insert,
			r.Name, r.Version, r.LicenseField, string(classifiers),
			r.LicenseFilePath, r.LicenseFileText, r.NoticeFilePath, r.NoticeText,
			r.Author, r.Maintainer, r.Summary, r.HomePage,
			string(projectURLs), string(requires),
		); err != nil {
			return fmt.Errorf("insert package %s: %w", r.Name, err)
		}
	}

	takenAt := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshot_meta (id, taken_at) VALUES (1, ?)
         ON CONFLICT(id) DO UPDATE SET taken_at = excluded.taken_at`, takenAt); err != nil {
		return err
	}
	return tx.Commit()
}

// Load returns the stored snapshot. Implements Provider.
func (s *SnapshotStore) Load(ctx context.Context) ([]model.RawPackageRecord, error) {
	const query = `
        SELECT name, version, license_field, classifiers,
               license_file_path, license_file_text, notice_file_path, notice_text,
               author, maintainer, summary, home_page, project_urls, requires
        FROM packages
        ORDER BY name
    `
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var records []model.RawPackageRecord
	for rows.Next() {
		rec, err := scanPackageRow(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// Packages implements Provider by reading the stored snapshot.
func (s *SnapshotStore) Packages(ctx context.Context) ([]model.RawPackageRecord, error) {
	return s.Load(ctx)
}

// TakenAt reports when the stored snapshot was saved.
func (s *SnapshotStore) TakenAt(ctx context.Context) (time.Time, error) {
	row := s.db.QueryRowContext(ctx, `SELECT taken_at FROM snapshot_meta WHERE id = 1`)
	var raw string
	if err := row.Scan(&raw); err != nil {
		if err == sql.ErrNoRows {
			return time.Time{}, fmt.Errorf("no snapshot stored")
		}
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse snapshot timestamp: %w", err)
	}
	return t, nil
}

func (s *SnapshotStore) Close() error {
	return s.db.Close()
}

func scanPackageRow(rows *sql.Rows) (model.RawPackageRecord, error) {
	var rec model.RawPackageRecord
	var licenseField, licensePath, licenseText sql.NullString
	var noticePath, noticeText sql.NullString
	var author, maintainer, summary, home sql.NullString
	var classifiers, projectURLs, requires sql.NullString
	if err := rows.Scan(
		&rec.Name, &rec.Version, &licenseField, &classifiers,
		&licensePath, &licenseText, &noticePath, &noticeText,
		&author, &maintainer, &summary, &home, &projectURLs, &requires,
	); err != nil {
		return model.RawPackageRecord{}, err
	}
	rec.LicenseField = licenseField.String
	rec.LicenseFilePath = licensePath.String
	rec.LicenseFileText = licenseText.String
	rec.NoticeFilePath = noticePath.String
	rec.NoticeText = noticeText.String
	rec.Author = author.String
	rec.Maintainer = maintainer.String
	rec.Summary = summary.String
	rec.HomePage = home.String
	if classifiers.Valid && classifiers.String != "" {
		_ = json.Unmarshal([]byte(classifiers.String), &rec.Classifiers)
	}
	if projectURLs.Valid && projectURLs.String != "" {
		_ = json.Unmarshal([]byte(projectURLs.String), &rec.ProjectURLs)
	}
	if requires.Valid && requires.String != "" {
		_ = json.Unmarshal([]byte(requires.String), &rec.Requires)
	}
	return rec, nil
}
