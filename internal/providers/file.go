package providers

import (
	"context"
	"os"

	"github.com/rLg1290/7crm-sub003/internal/models"
)

// FileProvider serves a recorded provider response from disk.
type FileProvider struct {
	path string
}

func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

func (p *FileProvider) Name() string {
	return "file"
}

func (p *FileProvider) Search(ctx context.Context, params models.SearchParams) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body, err := os.ReadFile(p.path)
	if err != nil {
		return nil, NewUpstreamError(p.Name(), 0, err)
	}
	return body, nil
}
