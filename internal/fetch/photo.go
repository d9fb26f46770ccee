package fetch

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// imageSelectors are tried in order on an HTML page to find its portrait.
var imageSelectors = []struct {
	selector string
	attr     string
}{
	{"meta[property='og:image']", "content"},
	{"meta[name='twitter:image']", "content"},
	{"link[rel='image_src']", "href"},
	{"img.avatar, img.profile-photo, img[itemprop='image']", "src"},
}

// Photo downloads an image. When the URL serves an HTML page instead, the
// page's og:image (or a similar portrait reference) is followed once.
func Photo(ctx context.Context, urlStr string, opts *Options) ([]byte, error) {
	res, err := URL(ctx, urlStr, opts)
	if err != nil {
		return nil, err
	}
	if isImage(res) {
		return res.Body, nil
	}
	if res.MediaType() != "text/html" {
		return nil, &Error{URL: urlStr, Message: "not an image: " + res.ContentType}
	}

	imageURL, err := PageImage(res.Body, urlStr)
	if err != nil {
		return nil, err
	}
	log.Debugf("following page image %s", imageURL)

	img, err := URL(ctx, imageURL, opts)
	if err != nil {
		return nil, err
	}
	if !isImage(img) {
		return nil, &Error{URL: imageURL, Message: "not an image: " + img.ContentType}
	}
	return img.Body, nil
}

// PageImage finds the portrait image an HTML page advertises and resolves it
// against base.
func PageImage(html []byte, base string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return "", &Error{URL: base, Message: "failed to parse HTML", Cause: err}
	}

	for _, s := range imageSelectors {
		ref, ok := doc.Find(s.selector).First().Attr(s.attr)
		ref = strings.TrimSpace(ref)
		if !ok || ref == "" {
			continue
		}
		return resolve(base, ref)
	}
	return "", &Error{URL: base, Message: "page has no image"}
}

func resolve(base, ref string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", &Error{URL: base, Message: "invalid base URL", Cause: err}
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", &Error{URL: ref, Message: "invalid image URL", Cause: err}
	}
	abs := b.ResolveReference(r).String()
	if !IsURL(abs) {
		return "", &Error{URL: abs, Message: "image URL is not http or https"}
	}
	return abs, nil
}

// isImage trusts an image/* content type and otherwise sniffs the body.
func isImage(res *Result) bool {
	if strings.HasPrefix(res.MediaType(), "image/") {
		return true
	}
	return strings.HasPrefix(http.DetectContentType(res.Body), "image/")
}
