// Package pack bundles a plugin folder into an .aml archive that Aurora
// Melody installs by drag and drop.
package pack

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/aurora-melody/sdk/internal/logger"
	"github.com/aurora-melody/sdk/sdk/contracts"
	"github.com/aurora-melody/sdk/sdk/manifest"
)

var (
	// ErrNotDirectory is returned when the plugin path is missing or not a folder.
	ErrNotDirectory = errors.New("plugin folder not found or not a directory")
	// ErrEntryNotFound is returned when the manifest's entry file is missing.
	ErrEntryNotFound = errors.New("entry point not found")
)

// Options configures Pack.
type Options struct {
	Output string // archive path; defaults to the id-derived name next to the folder
	Logger contracts.Logger
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithOutput sets the archive path.
func WithOutput(path string) Option {
	return func(o *Options) {
		o.Output = path
	}
}

// WithLogger reports each added file at debug level.
func WithLogger(l contracts.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// Result describes a written archive.
type Result struct {
	Path     string
	Size     int64
	Files    []string // archive names, slash separated
	Manifest *manifest.Manifest
}

// Pack validates dir and zips it. Hidden files and folders, __pycache__,
// *.pyc and the archive itself are left out.
func Pack(dir string, opts ...Option) (*Result, error) {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}
	if options.Logger == nil {
		options.Logger = logger.NewNopLogger()
	}
	log := options.Logger

	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}

	m, err := manifest.Load(root)
	if err != nil {
		return nil, err
	}
	if info, err := os.Stat(filepath.Join(root, filepath.FromSlash(m.Entry))); err != nil || info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, m.Entry)
	}

	out := options.Output
	if out == "" {
		out = filepath.Join(filepath.Dir(root), m.PackageName())
	}
	if out, err = filepath.Abs(out); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return nil, err
	}

	log.Info("packaging plugin",
		log.Field().String("plugin", m.Name),
		log.Field().String("version", m.Version),
		log.Field().String("output", out))

	files, err := write(root, out, log)
	if err != nil {
		_ = os.Remove(out)
		return nil, fmt.Errorf("create package: %w", err)
	}

	info, err := os.Stat(out)
	if err != nil {
		return nil, err
	}
	log.Debug("package written", log.Field().Strings("files", files), log.Field().Int64("bytes", info.Size()))
	return &Result{Path: out, Size: info.Size(), Files: files, Manifest: m}, nil
}

func write(root, out string, log contracts.Logger) ([]string, error) {
	f, err := os.Create(out)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	var files []string

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		if skip(d.Name(), d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || path == out {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if err := add(zw, path, name); err != nil {
			return err
		}
		log.Debug("added", log.Field().String("file", name))
		files = append(files, name)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return files, f.Close()
}

func skip(name string, dir bool) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	if dir {
		return name == "__pycache__"
	}
	return strings.HasSuffix(name, ".pyc")
}

func add(zw *zip.Writer, path, name string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}
