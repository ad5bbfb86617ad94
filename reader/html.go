package reader

import (
	"io"
	"os"

	"golang.org/x/net/html/charset"
)

// readHTML returns file content converted to UTF-8. Encoding is detected from
// BOM, meta tags or content itself.
func readHTML(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	r, err := charset.NewReader(f, "text/html")
	if err != nil {
		return "", err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
