package secret

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Provider resolves secrets by reference string.
//
// Implementations must be safe for concurrent use and must not log secret values.
type Provider interface {
	Name() string
	Resolve(ctx context.Context, ref string) (string, error)
}

// EnvProvider resolves "secretref:env:NAME" from the process environment.
type EnvProvider struct {
	// Lookup defaults to os.LookupEnv.
	Lookup func(string) (string, bool)
}

// Name implements Provider.
func (p *EnvProvider) Name() string { return "env" }

// Resolve implements Provider.
func (p *EnvProvider) Resolve(_ context.Context, ref string) (string, error) {
	lookup := os.LookupEnv
	if p != nil && p.Lookup != nil {
		lookup = p.Lookup
	}
	v, ok := lookup(ref)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingEnv, ref)
	}
	return v, nil
}

// FileProvider resolves "secretref:file:/path" by reading the file.
//
// Trailing newlines are trimmed so mounted secrets (Docker, Kubernetes)
// work without preprocessing. Relative paths are joined to BaseDir.
type FileProvider struct {
	BaseDir string
}

// Name implements Provider.
func (p *FileProvider) Name() string { return "file" }

// Resolve implements Provider.
func (p *FileProvider) Resolve(ctx context.Context, ref string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path := ref
	if !filepath.IsAbs(path) && p != nil && p.BaseDir != "" {
		path = filepath.Join(p.BaseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("secret: read %s: %w", path, err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

var (
	_ Provider = (*EnvProvider)(nil)
	_ Provider = (*FileProvider)(nil)
)
