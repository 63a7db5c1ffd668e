package filesystem

import (
	"context"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/samestrin/mcp-hub/internal/mcp"
)

// ListResources walks every allowed root and exposes each file not matched
// by .gitignore as a resource, skipping only the .git directory; other
// dotfiles are listed. Directories are not listed individually;
// use the list_directory tool to browse structure.
func (p *Provider) ListResources(ctx context.Context) ([]mcp.Resource, error) {
	var resources []mcp.Resource
	for _, root := range p.allowedDirs {
		gi := loadGitignore(root)
		err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if info.IsDir() {
				if info.Name() == ".git" {
					return filepath.SkipDir
				}
				return nil
			}
			rel, relErr := filepath.Rel(root, path)
			if relErr == nil && gi != nil && gi.MatchesPath(rel) {
				return nil
			}
			resources = append(resources, mcp.Resource{
				URI:         pathToURI(path),
				Name:        filepath.Base(path),
				Description: humanize.Bytes(uint64(info.Size())),
				MimeType:    mime.TypeByExtension(filepath.Ext(path)),
			})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return resources, nil
}

// GetResource reads the file identified by a file:// URI. It returns
// (nil, nil) for any URI this provider doesn't own, per the §9 probe
// contract resources/read relies on.
func (p *Provider) GetResource(ctx context.Context, uri string) (*mcp.ResourceContent, error) {
	if !strings.HasPrefix(uri, uriScheme) {
		return nil, nil
	}
	path, err := uriToPath(uri)
	if err != nil {
		return nil, nil
	}

	result, err := readFile(path, 0, 0, p.allowedDirs)
	if err != nil {
		return nil, err
	}

	return &mcp.ResourceContent{
		URI:      pathToURI(result.Path),
		MimeType: mime.TypeByExtension(filepath.Ext(result.Path)),
		Text:     result.Content,
	}, nil
}
