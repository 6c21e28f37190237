// Package backup snapshots a data directory into a tar.xz archive and
// restores it.
package backup

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ulikunitz/xz"

	"minirdb/internal/logging"
	"minirdb/internal/storage"
	"minirdb/internal/storage/filestore"
)

// maxEntrySize bounds a single archive member read during restore.
const maxEntrySize = 1 << 30

// Write archives the schema and row files of every table in dataDir to w.
// It returns the archived table names.
func Write(dataDir string, w io.Writer) ([]string, error) {
	fs, err := filestore.New(dataDir)
	if err != nil {
		return nil, err
	}
	tables, err := fs.ListTables()
	if err != nil {
		return nil, err
	}

	xw, err := xz.NewWriter(w)
	if err != nil {
		return nil, fmt.Errorf("backup: create xz writer: %w", err)
	}
	tw := tar.NewWriter(xw)

	for _, table := range tables {
		// Fails on a damaged schema rather than archiving it.
		if _, err := fs.Describe(table); err != nil {
			return nil, fmt.Errorf("backup: %w", err)
		}
		for _, name := range []string{filestore.SchemaFile(table), filestore.DataFile(table)} {
			data, err := os.ReadFile(filepath.Join(dataDir, name))
			if err != nil {
				return nil, fmt.Errorf("backup: read %s: %w", name, err)
			}
			if err := writeToTar(tw, name, data); err != nil {
				return nil, fmt.Errorf("backup: write %s: %w", name, err)
			}
		}
	}

	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("backup: close tar: %w", err)
	}
	if err := xw.Close(); err != nil {
		return nil, fmt.Errorf("backup: close xz: %w", err)
	}

	logging.Info("backup written", "dir", dataDir, "tables", len(tables))
	return tables, nil
}

func writeToTar(tw *tar.Writer, name string, data []byte) error {
	header := &tar.Header{
		Name: name,
		Mode: 0o644,
		Size: int64(len(data)),
	}
	if err := tw.WriteHeader(header); err != nil {
		return err
	}
	_, err := tw.Write(data)
	return err
}

// Restore extracts an archive produced by Write into dataDir. It refuses to
// overwrite a table that already exists there, and checks every restored
// schema before returning. It returns the restored table names.
func Restore(r io.Reader, dataDir string) ([]string, error) {
	xr, err := xz.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("backup: open xz: %w", err)
	}
	tr := tar.NewReader(xr)

	files := make(map[string][]byte)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("backup: read tar: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			return nil, fmt.Errorf("backup: unexpected entry %q", hdr.Name)
		}
		if hdr.Size > maxEntrySize {
			return nil, fmt.Errorf("backup: entry %q too large", hdr.Name)
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("backup: read %q: %w", hdr.Name, err)
		}
		files[hdr.Name] = data
	}

	tables, err := tablesIn(files)
	if err != nil {
		return nil, err
	}

	fs, err := filestore.New(dataDir)
	if err != nil {
		return nil, err
	}
	existing, err := fs.ListTables()
	if err != nil {
		return nil, err
	}
	for _, t := range existing {
		if _, clash := files[filestore.SchemaFile(t)]; clash {
			return nil, &storage.SchemaError{Table: t, Reason: "table already exists"}
		}
	}

	var written []string
	cleanup := func() {
		for _, p := range written {
			_ = os.Remove(p)
		}
	}
	for _, table := range tables {
		for _, name := range []string{filestore.DataFile(table), filestore.SchemaFile(table)} {
			p := filepath.Join(dataDir, name)
			if err := os.WriteFile(p, files[name], 0o644); err != nil {
				cleanup()
				return nil, fmt.Errorf("backup: write %s: %w", name, err)
			}
			written = append(written, p)
		}
		if _, err := fs.Describe(table); err != nil {
			cleanup()
			return nil, fmt.Errorf("backup: restored table %q: %w", table, err)
		}
	}

	logging.Info("backup restored", "dir", dataDir, "tables", len(tables))
	return tables, nil
}

// tablesIn checks that files holds exactly a schema and a data file per
// table, with plain names, and returns the sorted table names.
func tablesIn(files map[string][]byte) ([]string, error) {
	var tables []string
	for name := range files {
		if table, ok := strings.CutSuffix(name, filestore.SchemaFile("")); ok {
			if err := storage.ValidateTableName(table); err != nil {
				return nil, fmt.Errorf("backup: entry %q: %w", name, err)
			}
			if _, ok := files[filestore.DataFile(table)]; !ok {
				return nil, fmt.Errorf("backup: table %q has no data file", table)
			}
			tables = append(tables, table)
			continue
		}
		table, ok := strings.CutSuffix(name, filestore.DataFile(""))
		if !ok || storage.ValidateTableName(table) != nil {
			return nil, fmt.Errorf("backup: unexpected entry %q", name)
		}
		if _, ok := files[filestore.SchemaFile(table)]; !ok {
			return nil, fmt.Errorf("backup: table %q has no schema file", table)
		}
	}
	sort.Strings(tables)
	return tables, nil
}
