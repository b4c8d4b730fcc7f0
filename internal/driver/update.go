package driver

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"orn/internal/consttable"
	"orn/internal/diag"
	"orn/internal/rewrite"
	"orn/internal/source"
)

// Mode selects what happens to a rewritten file.
type Mode uint8

const (
	// ModeWrite writes changed files back in place.
	ModeWrite Mode = iota
	// ModeCheck only reports which files would change.
	ModeCheck
	// ModeStdout returns the rewritten content of every file.
	ModeStdout
)

// UpdateOptions configures UpdatePaths.
type UpdateOptions struct {
	Mode           Mode
	Jobs           int // <= 0 means GOMAXPROCS
	MaxDiagnostics int
	Ext            string // defaults to MoveExt
	Sink           ProgressSink
	Cache          *Cache
	Logger         hclog.Logger
}

// FileResult содержит результат обработки одного файла
type FileResult struct {
	Path    string
	Changed bool
	Cached  bool
	Output  []byte // ModeStdout: содержимое с исходными BOM/CRLF
	Err     error
	Bag     *diag.Bag
	Rewrite rewrite.Result
}

// UpdatePaths collects the files named by patterns and brings each of them
// in line with table.
func UpdatePaths(ctx context.Context, table *consttable.Table, patterns []string, opts UpdateOptions) ([]FileResult, error) {
	ext := opts.Ext
	if ext == "" {
		ext = MoveExt
	}
	files, err := CollectFiles(ctx, patterns, ext)
	if err != nil {
		return nil, err
	}
	return UpdateFiles(ctx, table, files, opts)
}

// UpdateFiles rewrites files in parallel. Failures of single files are
// recorded in their results and never stop the others; the returned error
// is only set when ctx is cancelled.
func UpdateFiles(ctx context.Context, table *consttable.Table, files []string, opts UpdateOptions) ([]FileResult, error) {
	if len(files) == 0 {
		return nil, nil
	}
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	// Настраиваем параллелизм
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	for _, path := range files {
		emit(opts.Sink, Event{File: path, Stage: StageLoad, Status: StatusQueued})
	}

	fileSet := source.NewFileSet()
	// индексы уникальны для каждой горутины, мьютекс не нужен
	results := make([]FileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = updateFile(fileSet, table, path, opts, logger)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}

	if err := opts.Cache.Save(); err != nil {
		logger.Warn("failed to save cache", "error", err)
	}
	return results, nil
}

func updateFile(fileSet *source.FileSet, table *consttable.Table, path string, opts UpdateOptions, logger hclog.Logger) FileResult {
	start := time.Now()
	bag := diag.NewBag(opts.MaxDiagnostics)
	res := FileResult{Path: path, Bag: bag}
	reporter := diag.BagReporter{Bag: bag}

	fail := func(stage Stage, code diag.Code, err error) FileResult {
		res.Err = err
		diag.ReportError(reporter, code, path, "", err.Error())
		emit(opts.Sink, Event{File: path, Stage: stage, Status: StatusError, Err: err, Elapsed: time.Since(start)})
		logger.Debug("file failed", "path", path, "stage", stage, "error", err)
		return res
	}

	emit(opts.Sink, Event{File: path, Stage: StageLoad, Status: StatusWorking})
	id, err := fileSet.Load(path)
	if err != nil {
		return fail(StageLoad, diag.IOLoadFileError, fmt.Errorf("failed to load file: %w", err))
	}
	file := fileSet.Get(id)
	key := cacheKey(path)

	if opts.Mode != ModeStdout {
		if unused, ok := opts.Cache.Lookup(key, file.Hash); ok {
			for _, name := range unused {
				diag.ReportInfo(reporter, diag.ConstUnused, path, name, "Unused: "+name)
			}
			res.Cached = true
			res.Rewrite = rewrite.Result{Text: file.Text(), Unused: unused}
			emit(opts.Sink, Event{File: path, Stage: StageRewrite, Status: StatusCached, Elapsed: time.Since(start)})
			logger.Trace("cache hit", "path", path)
			return res
		}
	}

	emit(opts.Sink, Event{File: path, Stage: StageRewrite, Status: StatusWorking})
	out := rewrite.Rewrite(file.Text(), table, rewrite.Options{Reporter: reporter, Path: path})
	res.Rewrite = out
	res.Changed = out.Changed
	logger.Debug("rewritten", "path", path, "changed", out.Changed,
		"used", len(out.Used), "pruned", len(out.Pruned), "placement", out.BlockPlacement.String())

	switch opts.Mode {
	case ModeStdout:
		res.Output = file.Restore([]byte(out.Text))
	case ModeCheck:
		if out.Changed {
			diag.ReportInfo(reporter, diag.RewriteWouldChange, path, "", "would be updated")
		} else {
			opts.Cache.Record(key, file.Hash, out.Unused)
		}
	default:
		if out.Changed {
			emit(opts.Sink, Event{File: path, Stage: StageWrite, Status: StatusWorking})
			if err := writeFile(path, file.Restore([]byte(out.Text))); err != nil {
				opts.Cache.Forget(key)
				return fail(StageWrite, diag.IOWriteFileError, fmt.Errorf("failed to write file: %w", err))
			}
			diag.ReportInfo(reporter, diag.RewriteUpdated, path, "", "updated")
		}
		opts.Cache.Record(key, sha256.Sum256([]byte(out.Text)), out.Unused)
	}

	emit(opts.Sink, Event{File: path, Stage: StageRewrite, Status: StatusDone, Elapsed: time.Since(start)})
	return res
}

// writeFile replaces path atomically, keeping its permission bits.
func writeFile(path string, data []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Chmod(info.Mode().Perm()); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func cacheKey(path string) string {
	if abs, err := source.AbsolutePath(path); err == nil {
		return abs
	}
	return path
}
