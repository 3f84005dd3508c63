package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nikbrunner/bmtab/internal/model"
)

const currentSchemaVersion = 1

// Fixed ids of the rows every database starts with.
const sqliteRootID = "0"

// SQLiteStorage implements BookmarkStore using a SQLite database laid out
// like the browser tree: one root holding the bookmark bar and other
// bookmarks containers.
type SQLiteStorage struct {
	db   *sql.DB
	path string
}

// NewSQLiteStorage opens (and if needed creates) the database at path.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	db, err := openSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	s := &SQLiteStorage{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: migrate: %v", ErrUnavailable, err)
	}

	return s, nil
}

// openSQLite opens a database with the pragmas every store uses.
func openSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Pragmas are per connection.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// migrate runs database migrations.
func (s *SQLiteStorage) migrate() error {
	var version int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		// Table doesn't exist or is empty, start fresh
		version = 0
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}
	return nil
}

// migrateV1 creates the node table and the fixed containers.
func (s *SQLiteStorage) migrateV1() error {
	now := time.Now().UTC().Format(time.RFC3339)
	schema := `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS nodes (
			id TEXT PRIMARY KEY NOT NULL,
			parent_id TEXT,
			title TEXT NOT NULL DEFAULT '',
			url TEXT,
			position INTEGER NOT NULL DEFAULT 0,
			date_added TEXT,
			date_group_modified TEXT,
			FOREIGN KEY (parent_id) REFERENCES nodes(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_nodes_parent_id ON nodes(parent_id, position);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	seed := []struct {
		id, parent, title string
		position          int
	}{
		{sqliteRootID, "", "", 0},
		{model.RootBookmarkBarID, sqliteRootID, "Bookmarks bar", 0},
		{model.RootOtherBookmarksID, sqliteRootID, "Other bookmarks", 1},
	}
	for _, row := range seed {
		var parent any
		if row.parent != "" {
			parent = row.parent
		}
		if _, err := s.db.Exec(`
			INSERT OR IGNORE INTO nodes (id, parent_id, title, url, position, date_added, date_group_modified)
			VALUES (?, ?, ?, NULL, ?, ?, ?)
		`, row.id, parent, row.title, row.position, now, now); err != nil {
			return err
		}
	}

	_, err := s.db.Exec("INSERT OR REPLACE INTO schema_version (version) VALUES (?)", currentSchemaVersion)
	return err
}

// nodeRow is one row of the nodes table.
type nodeRow struct {
	id, parentID, title string
	url                 sql.NullString
	dateAdded, modified sql.NullString
}

// GetTree loads every node and assembles the tree under the root.
func (s *SQLiteStorage) GetTree(ctx context.Context) (*model.Node, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, COALESCE(parent_id, ''), title, url, date_added, date_group_modified
		FROM nodes
		ORDER BY parent_id, position, rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	byParent := make(map[string][]nodeRow)
	var root *nodeRow
	for rows.Next() {
		var r nodeRow
		if err := rows.Scan(&r.id, &r.parentID, &r.title, &r.url, &r.dateAdded, &r.modified); err != nil {
			return nil, err
		}
		if r.id == sqliteRootID {
			rootRow := r
			root = &rootRow
			continue
		}
		byParent[r.parentID] = append(byParent[r.parentID], r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if root == nil {
		return nil, fmt.Errorf("%w: root node missing", ErrUnavailable)
	}

	tree := buildSQLiteNode(*root, byParent)
	return &tree, nil
}

// buildSQLiteNode converts a row and its descendants into a model.Node.
func buildSQLiteNode(r nodeRow, byParent map[string][]nodeRow) model.Node {
	n := model.Node{
		ID:        r.id,
		Title:     r.title,
		ParentID:  r.parentID,
		DateAdded: parseSQLiteTime(r.dateAdded),
	}
	if r.url.Valid {
		url := r.url.String
		n.URL = &url
		return n
	}

	n.DateGroupModified = parseSQLiteTime(r.modified)
	children := byParent[r.id]
	n.Children = make([]model.Node, 0, len(children))
	for _, c := range children {
		n.Children = append(n.Children, buildSQLiteNode(c, byParent))
	}
	return n
}

func parseSQLiteTime(s sql.NullString) *time.Time {
	if !s.Valid {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil
	}
	return &t
}

// Update sets title and URL. Folders keep their NULL url.
func (s *SQLiteStorage) Update(ctx context.Context, id string, changes model.BookmarkChanges) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE nodes
		SET title = ?, url = CASE WHEN url IS NULL THEN NULL ELSE ? END
		WHERE id = ?
	`, changes.Title, changes.URL, id)
	if err != nil {
		return err
	}
	return expectOneRow(res, "update", id)
}

// Remove deletes the node and, for folders, everything below it.
// The fixed containers cannot be removed.
func (s *SQLiteStorage) Remove(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM nodes WHERE id = ? AND id NOT IN (?, ?, ?)
	`, id, sqliteRootID, model.RootBookmarkBarID, model.RootOtherBookmarksID)
	if err != nil {
		return err
	}
	return expectOneRow(res, "remove", id)
}

func expectOneRow(res sql.Result, op, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", op, id, ErrNotFound)
	}
	return nil
}

// Insert appends nodes (and their children) to the end of parentID.
// Nodes without an id get a generated one. Returns the number of bookmarks
// inserted. Uses a transaction for atomicity - all or nothing.
func (s *SQLiteStorage) Insert(ctx context.Context, parentID string, nodes []model.Node) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM nodes WHERE id = ? AND url IS NULL", parentID).Scan(&exists); err != nil {
		return 0, err
	}
	if exists == 0 {
		return 0, fmt.Errorf("insert into %s: %w", parentID, ErrNotFound)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO nodes (id, parent_id, title, url, position, date_added, date_group_modified)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	var next int
	if err := tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(position) + 1, 0) FROM nodes WHERE parent_id = ?", parentID,
	).Scan(&next); err != nil {
		return 0, err
	}

	added := 0
	var insert func(parent string, position int, n model.Node) error
	insert = func(parent string, position int, n model.Node) error {
		id := n.ID
		if id == "" {
			id = model.GenerateUUID()
		}
		stamp := time.Now().UTC()
		if n.DateAdded != nil {
			stamp = n.DateAdded.UTC()
		}
		dateAdded := stamp.Format(time.RFC3339)

		var url, modified any
		if n.URL != nil {
			url = *n.URL
			added++
		} else {
			modified = dateAdded
		}

		if _, err := stmt.ExecContext(ctx, id, parent, n.Title, url, position, dateAdded, modified); err != nil {
			return err
		}
		for i, child := range n.Children {
			if n.URL != nil {
				break // bookmarks never own rows
			}
			if err := insert(id, i, child); err != nil {
				return err
			}
		}
		return nil
	}

	for i, n := range nodes {
		if err := insert(parentID, next+i, n); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return added, nil
}
