// Package download fetches remote model assets into a local cache directory.
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const userAgent = "configurator/1.0"

// DefaultTimeout bounds a whole download when the caller's context has no deadline.
const DefaultTimeout = 2 * time.Minute

// ProgressFunc receives the bytes read so far and the expected total (-1 when unknown).
type ProgressFunc func(read, total int64)

// Client downloads files. The zero value uses http.DefaultClient.
type Client struct {
	HTTP *http.Client
}

// Download fetches rawURL into destDir and returns the saved path. The file name comes from
// Content-Disposition or the URL path; the extension from Content-Type when the name has
// none. The file is written under a temporary name and renamed once complete, so a
// cancelled or failed download never leaves a partial model behind.
func (c *Client) Download(ctx context.Context, rawURL, destDir string, progress ProgressFunc) (string, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultTimeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download: %s: HTTP %d", rawURL, resp.StatusCode)
	}

	name := FileName(rawURL, resp.Header.Get("Content-Disposition"), resp.Header.Get("Content-Type"))
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	tmp, err := os.CreateTemp(destDir, ".part-*")
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	defer os.Remove(tmp.Name())

	var src io.Reader = resp.Body
	if progress != nil {
		src = &progressReader{r: resp.Body, total: resp.ContentLength, fn: progress}
	}
	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return "", fmt.Errorf("download: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	saved := filepath.Join(destDir, name)
	if err := os.Rename(tmp.Name(), saved); err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	return saved, nil
}

// IsURL reports whether source is an http(s) URL rather than a local path.
func IsURL(source string) bool {
	u, err := url.Parse(source)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

type progressReader struct {
	r     io.Reader
	read  int64
	total int64
	fn    ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.read += int64(n)
		p.fn(p.read, p.total)
	}
	return n, err
}

// FileName derives a safe local file name for a download.
func FileName(rawURL, contentDisposition, contentType string) string {
	name := nameFromContentDisposition(contentDisposition)
	if name == "" {
		name = nameFromURL(rawURL)
	}
	name = sanitize(name)
	if path.Ext(name) == "" {
		if ext := extFromContentType(contentType); ext != "" {
			name += ext
		}
	}
	return name
}

func nameFromContentDisposition(cd string) string {
	cd = strings.TrimSpace(cd)
	if i := strings.Index(cd, "filename*=UTF-8''"); i >= 0 {
		s := cd[i+len("filename*=UTF-8''"):]
		if j := strings.IndexAny(s, ";\r\n"); j >= 0 {
			s = s[:j]
		}
		if dec, err := url.PathUnescape(strings.Trim(s, "\"")); err == nil {
			return dec
		}
		return strings.Trim(s, "\"")
	}
	if i := strings.Index(cd, "filename="); i >= 0 {
		s := cd[i+len("filename="):]
		if j := strings.IndexAny(s, ";\r\n"); j >= 0 {
			s = s[:j]
		}
		return strings.Trim(s, "\" ")
	}
	return ""
}

func extFromContentType(ct string) string {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	switch ct {
	case "model/gltf-binary":
		return ".glb"
	case "model/gltf+json":
		return ".gltf"
	}
	return ""
}

func nameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	base := path.Base(u.Path)
	if base == "/" || base == "." {
		return ""
	}
	return base
}

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9_.-]+`)

func sanitize(name string) string {
	name = unsafeName.ReplaceAllString(name, "_")
	name = strings.TrimLeft(name, "._")
	if name == "" {
		return "model"
	}
	if len(name) > 96 {
		ext := path.Ext(name)
		if len(ext) > 8 {
			ext = ""
		}
		name = name[:96-len(ext)] + ext
	}
	return name
}
