package backup

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/lromerof/comite-agua/internal/apperr"
)

// SQLite file header, used to reject non-database files before a restore.
var sqliteMagic = []byte("SQLite format 3\x00")

// Service copies the database file out for safekeeping and back in to
// recover. Backups go through VACUUM INTO so the copy is a consistent,
// compacted snapshot even while the service is handling writes.
type Service struct {
	db     *sql.DB
	dbPath string
	dir    string
}

func NewService(db *sql.DB, dbPath, dir string) *Service {
	return &Service{db: db, dbPath: dbPath, dir: dir}
}

// Backup snapshots the database into the backup directory and returns the
// path of the new file.
func (s *Service) Backup(ctx context.Context) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", apperr.Storage("create backup directory", err)
	}

	name := fmt.Sprintf("respaldo_%s.db", time.Now().Format("20060102_150405"))
	path := filepath.Join(s.dir, name)

	if _, err := s.db.ExecContext(ctx, `VACUUM INTO ?`, path); err != nil {
		return "", apperr.Storage("vacuum into backup", err)
	}
	return path, nil
}

// List returns the backup files available for restore, most recent first.
func (s *Service) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, apperr.Storage("read backup directory", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".db" {
			continue
		}
		names = append(names, entry.Name())
	}

	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return names, nil
}

// Restore overwrites the live database file with the named backup. The name
// must refer to a file inside the backup directory. The process must be
// restarted afterwards so open connections pick up the restored file.
func (s *Service) Restore(ctx context.Context, name string) error {
	if name == "" {
		return apperr.Validation("backup file name is required")
	}
	if filepath.Base(name) != name {
		return apperr.Validation("backup name must not contain path separators")
	}

	src := filepath.Join(s.dir, name)
	in, err := os.Open(src)
	if err != nil {
		if os.IsNotExist(err) {
			return apperr.NotFound("backup %s not found", name)
		}
		return apperr.Storage("open backup file", err)
	}
	defer in.Close()

	header := make([]byte, len(sqliteMagic))
	if _, err := io.ReadFull(in, header); err != nil || !bytes.Equal(header, sqliteMagic) {
		return apperr.Validation("backup %s is not a SQLite database", name)
	}
	if _, err := in.Seek(0, io.SeekStart); err != nil {
		return apperr.Storage("rewind backup file", err)
	}

	out, err := os.CreateTemp(filepath.Dir(s.dbPath), ".restore-*")
	if err != nil {
		return apperr.Storage("create restore staging file", err)
	}
	defer os.Remove(out.Name())

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return apperr.Storage("copy backup file", err)
	}
	if err := out.Close(); err != nil {
		return apperr.Storage("flush restore staging file", err)
	}

	if err := os.Rename(out.Name(), s.dbPath); err != nil {
		return apperr.Storage("replace database file", err)
	}
	return nil
}
