// Package archive implements the ingestion and packing pipelines for zip
// document containers: opening (with interactive password negotiation for
// encrypted containers) and bundling a document tree into a new, optionally
// encrypted container.
package archive

import (
	"bytes"
	"context"
	"io"
	"os"
	"sync"

	"github.com/yeka/zip"

	mderr "github.com/mdserve/mdserve/internal/errors"
	"github.com/mdserve/mdserve/internal/logging"
	"github.com/mdserve/mdserve/internal/vfs"
)

// OpenOptions configures the ingestion pipeline.
type OpenOptions struct {
	// CacheBudget bounds the archive backend's content cache in bytes.
	CacheBudget int64
	// PrecacheNames are well-known base names warmed into the cache after
	// open; failures there are best-effort and swallowed.
	PrecacheNames []string
	// Prompt is invoked once when the container holds encrypted entries.
	// Nil means no password can be obtained.
	Prompt PasswordPrompt
	// Logger receives pipeline progress; nil disables logging.
	Logger logging.Logger
}

// Open reads the container at path into memory, enumerates its entries,
// negotiates a password if any entry is encrypted, verifies the password by
// probing an encrypted entry, and returns the constructed archive backend
// together with a one-shot idempotent cleanup handle.
//
// A wrong password is terminal for this open attempt: the caller must
// re-invoke Open to retry, there is no internal prompt loop.
func Open(path string, opts OpenOptions) (*vfs.ArchiveBackend, func(), error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	ctx := context.Background()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, mderr.NotFound(path)
		}
		return nil, nil, err
	}

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, nil, mderr.Corrupt(path, err)
	}

	entries := vfs.EntriesFromZip(reader.File)

	password := ""
	if encrypted := anyEncrypted(entries); encrypted {
		if opts.Prompt != nil {
			password, err = opts.Prompt("Archive password: ")
			if err != nil {
				return nil, nil, err
			}
		}
		if password == "" {
			return nil, nil, mderr.Encrypted(path)
		}
		if err := verifyPassword(reader.File, password); err != nil {
			return nil, nil, err
		}
	}

	backend := vfs.NewArchive(reader.File, entries, password, opts.CacheBudget, nil)
	backend.WarmCache(opts.PrecacheNames)

	logger.Info(ctx, "archive opened",
		"path", path,
		"entries", len(entries),
		"encrypted", password != "",
		"precached_bytes", backend.CacheUsage(),
	)

	// The container lives in memory, so cleanup only has to release the
	// backend (which drops the cache). Guarded by a one-shot flag: the
	// serve command registers this for interrupt, terminate, and normal
	// exit, and may end up invoking it from more than one of those paths.
	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			if err := backend.Close(); err != nil {
				logger.Warn(ctx, err, "closing archive backend")
			}
		})
	}

	return backend, cleanup, nil
}

func anyEncrypted(entries []vfs.Entry) bool {
	for _, e := range entries {
		if e.Encrypted {
			return true
		}
	}
	return false
}

// verifyPassword probes the smallest encrypted entry with the supplied
// password. Extraction failure here cannot be attributed to either a wrong
// password or container damage, so it maps to the combined terminal
// category.
func verifyPassword(files []*zip.File, password string) error {
	var probe *zip.File
	for _, f := range files {
		if !f.IsEncrypted() || f.FileInfo().IsDir() {
			continue
		}
		if probe == nil || f.CompressedSize64 < probe.CompressedSize64 {
			probe = f
		}
	}
	if probe == nil {
		return nil
	}

	probe.SetPassword(password)
	rc, err := probe.Open()
	if err != nil {
		return mderr.BadPassword(err)
	}
	_, err = io.Copy(io.Discard, rc)
	closeErr := rc.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		return mderr.BadPassword(err)
	}
	return nil
}

// DefaultCacheBudget mirrors the config default for callers constructing
// backends outside the config layer (tests, the search subcommand).
const DefaultCacheBudget = int64(8 * 1024 * 1024)
