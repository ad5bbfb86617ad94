package reader

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/h2non/filetype"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"doc2scorm/config"
	"doc2scorm/utils/images"
)

const defaultImageMime = "image/png"

// NormalizeImages re-encodes every <img> with base64 data URI as JPEG of
// configured quality fitted into configured width. Pictures which could not
// be decoded keep original bytes with sniffed media type. Markup which cannot
// be parsed is returned unchanged.
func NormalizeImages(markup string, cfg *config.ImagesConfig, log *zap.Logger) (string, error) {
	if !strings.Contains(markup, "data:") {
		return markup, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		// images stay as they are, markup problems are reported by later steps
		log.Warn("Unable to parse markup, embedded images left intact", zap.Error(err))
		return markup, nil
	}

	var converted, kept int
	doc.Find("img[src]").Each(func(i int, sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		data, ok := decodeDataURI(src)
		if !ok {
			return
		}
		uri, reencoded := encodeImage(data, cfg, log.With(zap.Int("image", i)))
		if reencoded {
			converted++
		} else {
			kept++
		}
		sel.SetAttr("src", uri)
	})
	log.Debug("Embedded images processed", zap.Int("converted", converted), zap.Int("kept", kept))

	out, err := doc.Html()
	if err != nil {
		return "", fmt.Errorf("unable to serialize markup: %w", err)
	}
	return out, nil
}

// decodeDataURI returns payload of base64 encoded data URI.
func decodeDataURI(src string) ([]byte, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(src), "data:")
	if !ok {
		return nil, false
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(strings.ToLower(meta), ";base64") {
		return nil, false
	}
	data, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(payload), ""))
	if err != nil || len(data) == 0 {
		return nil, false
	}
	return data, true
}

func encodeImage(data []byte, cfg *config.ImagesConfig, log *zap.Logger) (string, bool) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err == nil {
		var out []byte
		if out, err = images.EncodeJPEG(images.Prepare(img, cfg.MaxWidth), cfg.JPEGQuality); err == nil {
			return dataURI("image/jpeg", out), true
		}
	}
	mime := sniffMime(data)
	log.Warn("Unable to re-encode image, keeping original", zap.String("mime", mime), zap.Error(err))
	return dataURI(mime, data), false
}

func sniffMime(data []byte) string {
	kind, err := filetype.Image(data)
	if err != nil || kind == filetype.Unknown {
		return defaultImageMime
	}
	return kind.MIME.Value
}

func dataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
