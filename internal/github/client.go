package github

import (
	"context"
	"fmt"
	"os"
	"strings"

	gogithub "github.com/google/go-github/v47/github"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/oauth2"
)

// Client fetches repository source files over the GitHub API so remote
// targets can be scanned without a local checkout.
type Client struct {
	gh  *gogithub.Client
	log hclog.Logger
}

// NewClient builds a client authenticated from GITHUB_TOKEN when set;
// unauthenticated access works but rate limits apply.
func NewClient(ctx context.Context, log hclog.Logger) *Client {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		return &Client{gh: gogithub.NewClient(nil), log: log}
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &Client{gh: gogithub.NewClient(oauth2.NewClient(ctx, ts)), log: log}
}

// IsRepoURL reports whether target looks like a GitHub repository reference.
func IsRepoURL(target string) bool {
	for _, prefix := range []string{"https://github.com/", "http://github.com/", "github.com/"} {
		if strings.HasPrefix(target, prefix) {
			return true
		}
	}
	return false
}

// ParseRepoURL extracts owner and repo from a GitHub URL or owner/repo form.
func ParseRepoURL(raw string) (string, string, error) {
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "/")
	raw = strings.TrimPrefix(raw, "https://")
	raw = strings.TrimPrefix(raw, "http://")
	raw = strings.TrimPrefix(raw, "github.com/")
	parts := strings.Split(raw, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("cannot parse GitHub URL: %s", raw)
	}
	return parts[0], strings.TrimSuffix(parts[1], ".git"), nil
}

// FetchRepoFiles downloads up to maxFiles .rs files from the repository's
// default branch. Returns a map of repo-relative path to content.
func (c *Client) FetchRepoFiles(ctx context.Context, repoURL string, maxFiles int) (map[string]string, error) {
	if maxFiles <= 0 {
		maxFiles = 100
	}
	owner, repo, err := ParseRepoURL(repoURL)
	if err != nil {
		return nil, err
	}

	repoInfo, _, err := c.gh.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("could not access repository %s/%s: %w", owner, repo, err)
	}
	branch := repoInfo.GetDefaultBranch()

	tree, _, err := c.gh.Git.GetTree(ctx, owner, repo, branch, true)
	if err != nil {
		return nil, fmt.Errorf("could not list repository tree: %w", err)
	}
	if tree.GetTruncated() && c.log != nil {
		c.log.Warn("repository tree truncated by the API, scan may be partial", "repo", owner+"/"+repo)
	}

	files := make(map[string]string)
	for _, entry := range tree.Entries {
		if len(files) >= maxFiles {
			break
		}
		if entry.GetType() != "blob" || !strings.HasSuffix(entry.GetPath(), ".rs") {
			continue
		}
		path := entry.GetPath()
		if skipVendoredPath(path) {
			continue
		}
		content, _, err := c.gh.Git.GetBlobRaw(ctx, owner, repo, entry.GetSHA())
		if err != nil {
			if c.log != nil {
				c.log.Debug("blob fetch failed, skipping", "path", path, "error", err)
			}
			continue
		}
		files[path] = string(content)
	}
	return files, nil
}

func skipVendoredPath(path string) bool {
	for _, part := range strings.Split(path, "/") {
		switch part {
		case "target", "node_modules", "dist", "build":
			return true
		}
	}
	return false
}
