package results

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"hypotest/adapters/excel"
	"hypotest/domain/analysis"
	"hypotest/domain/core"
	"hypotest/internal"
	"hypotest/internal/errors"
	"hypotest/ports"
)

const (
	resultExt  = ".xlsx"
	tempPrefix = ".result-"

	// Used in download names when a result has no metadata
	unknownOriginalName = "uploaded_file"
	unknownTestName     = "result"
)

// Options tunes a Store
type Options struct {
	TTL             time.Duration
	OriginalNameMax int
	Logger          *internal.Logger
}

// DefaultOptions mirrors the configuration defaults
func DefaultOptions() Options {
	return Options{
		TTL:             10 * time.Minute,
		OriginalNameMax: 30,
	}
}

// Store keeps result workbooks in a directory for a limited time and hands
// them out by task id.
type Store struct {
	dir    string
	meta   ports.ResultMetaStore
	opts   Options
	logger *internal.Logger
	now    func() time.Time
}

// NewStore creates the result directory if needed. A nil meta store keeps
// metadata in .meta files inside dir.
func NewStore(dir string, meta ports.ResultMetaStore, opts Options) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create result directory: %w", err)
	}
	if meta == nil {
		meta = NewFileMetaStore(dir)
	}
	defaults := DefaultOptions()
	if opts.TTL <= 0 {
		opts.TTL = defaults.TTL
	}
	if opts.OriginalNameMax <= 0 {
		opts.OriginalNameMax = defaults.OriginalNameMax
	}
	logger := opts.Logger
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Store{
		dir:    dir,
		meta:   meta,
		opts:   opts,
		logger: logger.With("Results"),
		now:    time.Now,
	}, nil
}

// SaveRequest is one finished test run to be stored
type SaveRequest struct {
	Test             string
	TestDisplayName  string
	OriginalFilename string
	Result           *analysis.Result
}

// Save writes the result workbook and its metadata under a new task id
func (s *Store) Save(ctx context.Context, req SaveRequest) (*ports.ResultMeta, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id := core.NewTaskID()
	path := s.resultPath(id)

	if err := s.writeWorkbook(path, req.Result); err != nil {
		return nil, err
	}

	meta := ports.ResultMeta{
		TaskID:          id,
		OriginalName:    SanitizeFilename(req.OriginalFilename, s.opts.OriginalNameMax),
		Test:            req.Test,
		TestDisplayName: req.TestDisplayName,
		CreatedAt:       s.now().UTC(),
	}
	if err := s.meta.Put(ctx, meta); err != nil {
		os.Remove(path)
		return nil, errors.Wrap(err, "failed to store result metadata")
	}

	s.logger.Debug("stored %s result %s for %q", req.Test, id, meta.OriginalName)
	return &meta, nil
}

// writeWorkbook renders into a temp file first so readers never see a partial workbook
func (s *Store) writeWorkbook(path string, res *analysis.Result) error {
	tmp, err := os.CreateTemp(s.dir, tempPrefix+"*")
	if err != nil {
		return errors.Wrap(err, "failed to create result workbook")
	}
	if err := excel.WriteResult(tmp, res); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrap(err, "failed to write result workbook")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(err, "failed to write result workbook")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(err, "failed to store result workbook")
	}
	return nil
}

// Download is a stored result ready to be sent to a client
type Download struct {
	Path string
	Name string
}

// Open locates the workbook of a task. Missing or expired results are NOT_FOUND.
func (s *Store) Open(ctx context.Context, id core.TaskID) (*Download, error) {
	path := s.resultPath(id)
	info, err := os.Stat(path)
	if err != nil || s.expired(info.ModTime()) {
		return nil, errors.New(errors.CodeNotFound, "file missing or expired")
	}

	meta, err := s.meta.Get(ctx, id)
	if err != nil && !errors.Is(err, errors.CodeNotFound) {
		return nil, errors.Wrap(err, "failed to load result metadata")
	}
	return &Download{Path: path, Name: DownloadName(meta)}, nil
}

// DownloadName is "<original>_<test display name>.xlsx"
func DownloadName(meta *ports.ResultMeta) string {
	original, test := unknownOriginalName, unknownTestName
	if meta != nil {
		if meta.OriginalName != "" {
			original = meta.OriginalName
		}
		if meta.TestDisplayName != "" {
			test = meta.TestDisplayName
		}
	}
	return original + "_" + test + resultExt
}

// WriteZip streams the workbooks of ids into a zip archive. Missing or
// expired tasks are skipped and repeated names get a " (n)" suffix. It
// returns how many files were added.
func (s *Store) WriteZip(ctx context.Context, w io.Writer, ids []core.TaskID) (int, error) {
	zw := zip.NewWriter(w)
	used := make(map[string]int)
	added := 0

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			zw.Close()
			return added, err
		}
		dl, err := s.Open(ctx, id)
		if errors.Is(err, errors.CodeNotFound) {
			s.logger.Debug("zip skipped missing result %s", id)
			continue
		}
		if err != nil {
			zw.Close()
			return added, err
		}

		name := uniqueName(dl.Name, used)
		if err := addFileToZip(zw, dl.Path, name); err != nil {
			zw.Close()
			return added, errors.Wrap(err, "failed to build zip archive")
		}
		added++
	}

	if err := zw.Close(); err != nil {
		return added, errors.Wrap(err, "failed to finish zip archive")
	}
	return added, nil
}

func addFileToZip(zw *zip.Writer, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Deflate

	dst, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(dst, f)
	return err
}

// uniqueName returns name, or name with " (n)" before the extension when it was used before
func uniqueName(name string, used map[string]int) string {
	used[name]++
	n := used[name]
	if n == 1 {
		return name
	}
	ext := filepath.Ext(name)
	candidate := strings.TrimSuffix(name, ext) + " (" + strconv.Itoa(n) + ")" + ext
	return uniqueName(candidate, used)
}

// Cleanup removes result workbooks older than the TTL and expired metadata.
// It returns the number of removed entries.
func (s *Store) Cleanup(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to list result directory: %w", err)
	}

	logger := s.logger.With("Cleanup")
	removed := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		name := entry.Name()
		if entry.IsDir() || !(strings.HasSuffix(name, resultExt) || strings.HasPrefix(name, tempPrefix)) {
			continue
		}
		info, err := entry.Info()
		if err != nil || !s.expired(info.ModTime()) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
			logger.Error("failed to remove %s: %v", name, err)
			continue
		}
		logger.Info("removed %s", name)
		removed++
	}

	metaRemoved, err := s.meta.DeleteBefore(ctx, s.now().Add(-s.opts.TTL))
	removed += metaRemoved
	if err != nil {
		return removed, errors.Wrap(err, "failed to remove expired metadata")
	}
	return removed, nil
}

func (s *Store) expired(modTime time.Time) bool {
	return s.now().Sub(modTime) > s.opts.TTL
}

func (s *Store) resultPath(id core.TaskID) string {
	return filepath.Join(s.dir, id.String()+resultExt)
}
