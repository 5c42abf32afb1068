package imagegroup

import (
	"crypto/md5" //nolint:gosec // content tag for filenames, not a security boundary
	"encoding/hex"
	"html"
	"net/url"
	"regexp"
	"strings"
)

// fallbackFilename is used when the URL path has no final segment.
const fallbackFilename = "downloaded_image.jpg"

// contentTagLen is the number of hex digits of the content hash in a name.
const contentTagLen = 8

var ogImageRe = regexp.MustCompile(
	`(?i)<meta\s+[^>]*property=["']og:image["'][^>]*content=["']([^"']+)["']|` +
		`<meta\s+[^>]*content=["']([^"']+)["'][^>]*property=["']og:image["']`,
)

// ExtractOGImageURL pulls the og:image URL from raw HTML.
// Returns empty string if not found.
func ExtractOGImageURL(pageHTML string) string {
	m := ogImageRe.FindStringSubmatch(pageHTML)
	if m == nil {
		return ""
	}
	img := m[1]
	if img == "" {
		img = m[2]
	}
	if img == "" {
		return ""
	}
	return html.UnescapeString(img)
}

// ParseURLList splits a comma-separated list of URLs, trimming blanks and
// dropping empty entries.
func ParseURLList(s string) []string {
	var urls []string
	for _, part := range strings.Split(s, ",") {
		if u := strings.TrimSpace(part); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// mimeExtensions maps image MIME types to the extension used when the URL
// carries none.
var mimeExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/bmp":  ".bmp",
	"image/webp": ".webp",
}

// StoredFilename derives the content-addressed name for data fetched from
// rawURL: the last URL path segment with the first eight hex digits of the
// content MD5 inserted before the extension, e.g. "cat_1a2b3c4d.png".
// A URL without a final path segment yields "downloaded_image_<tag>.jpg";
// a segment without extension gets one from mimeType, else ".jpg".
func StoredFilename(rawURL string, data []byte, mimeType string) string {
	sum := md5.Sum(data) //nolint:gosec // see import
	tag := hex.EncodeToString(sum[:])[:contentTagLen]

	base := urlBaseName(rawURL)
	if base == "" {
		base = fallbackFilename
	}

	stem, ext := splitExt(base)
	if ext == "" {
		ext = mimeExtensions[mimeType]
		if ext == "" {
			ext = ".jpg"
		}
	}
	return stem + "_" + tag + ext
}

// urlBaseName returns the final segment of the URL path, or "" when there
// is none or it is not a usable filename.
func urlBaseName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	p := u.Path
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		p = p[i+1:]
	}
	if p == "." || p == ".." || strings.ContainsAny(p, `/\`) {
		return ""
	}
	return p
}

// splitExt splits name at its last dot. A leading dot belongs to the stem,
// so ".hidden" has no extension.
func splitExt(name string) (stem, ext string) {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 {
		return name, ""
	}
	return name[:i], name[i:]
}
