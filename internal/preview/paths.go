package preview

import (
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// RewriteImagePaths turns relative img sources into file:// URLs under
// baseDir so the page can be opened from anywhere. Paths escaping baseDir,
// absolute paths and URLs are left alone. An empty baseDir is a no-op.
func RewriteImagePaths(page, baseDir string) (string, error) {
	if baseDir == "" {
		return page, nil
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", err
	}

	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return "", err
	}
	rewriteImages(doc, absBase)

	var buf strings.Builder
	if err := html.Render(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func rewriteImages(n *html.Node, baseDir string) {
	if n.Type == html.ElementNode && n.Data == "img" {
		for i, attr := range n.Attr {
			if attr.Key != "src" || !isRelativePath(attr.Val) {
				continue
			}
			rel, err := url.PathUnescape(attr.Val)
			if err != nil {
				continue
			}
			abs := filepath.Join(baseDir, filepath.FromSlash(rel))
			if !isPathUnderDir(abs, baseDir) {
				continue
			}
			n.Attr[i].Val = fileURL(abs)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		rewriteImages(c, baseDir)
	}
}

func isRelativePath(p string) bool {
	if p == "" || strings.HasPrefix(p, "#") || strings.HasPrefix(p, "//") {
		return false
	}
	if u, err := url.Parse(p); err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		return false
	}
	return !filepath.IsAbs(p) && !strings.HasPrefix(p, "/")
}

func isPathUnderDir(absPath, dir string) bool {
	dir = filepath.Clean(dir) + string(filepath.Separator)
	return strings.HasPrefix(filepath.Clean(absPath)+string(filepath.Separator), dir)
}

func fileURL(absPath string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(absPath)}
	return u.String()
}
