package archive

import (
	"compress/flate"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yeka/zip"

	mderr "github.com/mdserve/mdserve/internal/errors"
	"github.com/mdserve/mdserve/internal/logging"
	"github.com/mdserve/mdserve/internal/vfs"
)

// ContainerExt is the fixed extension for packed document containers.
const ContainerExt = ".zip"

// manifestNames are the conventional root manifest base names. If packing
// discovers none of them, a manifest is synthesized.
var manifestNames = []string{"readme.md", "index.md"}

// PackOptions configures the packing pipeline.
type PackOptions struct {
	// Pattern filters which file names count as documents.
	Pattern string
	// IgnoreFile is the per-root exclusion file name honored during
	// directory discovery.
	IgnoreFile string
	// OutputPath overrides the default <source-name>.zip next to the source.
	OutputPath string
	// Prompt asks for the pack password. Empty input packs unencrypted.
	// Nil skips the prompt entirely.
	Prompt PasswordPrompt
	// Logger receives pipeline progress; nil disables logging.
	Logger logging.Logger
}

// PackResult reports what a completed pack produced.
type PackResult struct {
	OutputPath string
	Documents  int
	Bytes      int64
	Encrypted  bool
}

// Pack discovers document files under sourcePath (directory recursive walk
// or single file), streams them into a new container with maximum
// compression, synthesizes a manifest when none was discovered, and waits
// for the output file to fully flush before reporting its size. Zero
// discovered documents is a fatal failure.
func Pack(sourcePath string, isDirectory bool, opts PackOptions) (*PackResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	ctx := context.Background()

	backend, err := discoveryBackend(sourcePath, isDirectory, opts)
	if err != nil {
		return nil, err
	}
	defer backend.Close()

	pattern := opts.Pattern
	if pattern == "" {
		pattern = "*.md"
	}
	docs, err := backend.List(pattern)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, mderr.NoDocuments(sourcePath)
	}
	sort.Strings(docs)

	password := ""
	if opts.Prompt != nil {
		password, err = opts.Prompt("Pack password (empty for none): ")
		if err != nil {
			return nil, err
		}
	}

	outputPath := opts.OutputPath
	if outputPath == "" {
		outputPath = defaultOutputPath(sourcePath)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("creating container: %w", err)
	}

	w := zip.NewWriter(out)
	w.RegisterCompressor(zip.Deflate, func(dst io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(dst, flate.BestCompression)
	})

	for _, doc := range docs {
		content, err := backend.Read(doc)
		if err != nil {
			out.Close()
			return nil, fmt.Errorf("reading %s: %w", doc, err)
		}
		if err := writeEntry(w, doc, []byte(content), password); err != nil {
			out.Close()
			return nil, err
		}
		logger.Debug(ctx, "packed document", "path", doc, "bytes", len(content))
	}

	if !hasManifest(docs) {
		manifest := synthesizeManifest(sourcePath, docs)
		if err := writeEntry(w, "README.md", []byte(manifest), password); err != nil {
			out.Close()
			return nil, err
		}
		logger.Debug(ctx, "synthesized manifest", "documents", len(docs))
	}

	if err := w.Close(); err != nil {
		out.Close()
		return nil, fmt.Errorf("finalizing container: %w", err)
	}
	// The reported size must reflect fully flushed output.
	if err := out.Sync(); err != nil {
		out.Close()
		return nil, fmt.Errorf("flushing container: %w", err)
	}
	if err := out.Close(); err != nil {
		return nil, fmt.Errorf("closing container: %w", err)
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "container packed",
		"output", outputPath,
		"documents", len(docs),
		"bytes", info.Size(),
		"encrypted", password != "",
	)

	return &PackResult{
		OutputPath: outputPath,
		Documents:  len(docs),
		Bytes:      info.Size(),
		Encrypted:  password != "",
	}, nil
}

// discoveryBackend reuses the virtual file layer for document discovery, so
// packing honors the same ignore rules and pattern semantics as serving.
func discoveryBackend(sourcePath string, isDirectory bool, opts PackOptions) (vfs.Backend, error) {
	if isDirectory {
		ignoreFile := opts.IgnoreFile
		if ignoreFile == "" {
			ignoreFile = ".mdignore"
		}
		return vfs.NewDisk(sourcePath, ignoreFile)
	}
	return vfs.NewSingleFile(sourcePath)
}

func writeEntry(w *zip.Writer, name string, content []byte, password string) error {
	var (
		entry io.Writer
		err   error
	)
	if password != "" {
		entry, err = w.Encrypt(name, password, zip.AES256Encryption)
	} else {
		entry, err = w.CreateHeader(&zip.FileHeader{
			Name:   name,
			Method: zip.Deflate,
		})
	}
	if err != nil {
		return fmt.Errorf("creating entry %s: %w", name, err)
	}
	if _, err := entry.Write(content); err != nil {
		return fmt.Errorf("writing entry %s: %w", name, err)
	}
	return nil
}

func hasManifest(docs []string) bool {
	for _, doc := range docs {
		base := strings.ToLower(path.Base(doc))
		for _, name := range manifestNames {
			if base == name {
				return true
			}
		}
	}
	return false
}

// synthesizeManifest generates a root README listing the packed documents.
func synthesizeManifest(sourcePath string, docs []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", filepath.Base(strings.TrimSuffix(sourcePath, "/")))
	fmt.Fprintf(&b, "Packed %d documents:\n\n", len(docs))
	for _, doc := range docs {
		fmt.Fprintf(&b, "- [%s](%s)\n", doc, doc)
	}
	return b.String()
}

func defaultOutputPath(sourcePath string) string {
	base := filepath.Base(filepath.Clean(sourcePath))
	if ext := filepath.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	return base + ContainerExt
}
