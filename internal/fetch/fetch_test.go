package fetch

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 4, 4))))
	return buf.Bytes()
}

func TestURL_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("hello"))
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, server.URL, result.URL)
	assert.Equal(t, "hello", string(result.Body))
	assert.Equal(t, "text/plain", result.MediaType())
	assert.Equal(t, http.StatusOK, result.StatusCode)
}

func TestURL_InvalidURL(t *testing.T) {
	for _, u := range []string{"not-a-valid-url", "ftp://example.com/x", "/relative/path"} {
		_, err := URL(context.Background(), u, nil)
		require.Error(t, err)

		var fetchErr *Error
		assert.ErrorAs(t, err, &fetchErr)
		assert.Contains(t, err.Error(), "invalid URL")
	}
}

func TestURL_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.Error(t, err)
	assert.NotNil(t, result) // Result is returned even on error
	assert.Equal(t, http.StatusNotFound, result.StatusCode)

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "404")
}

func TestURL_TooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 100)))
	}))
	defer server.Close()

	opts := DefaultOptions()
	opts.MaxBytes = 99
	_, err := URL(context.Background(), server.URL, opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "larger than 99 bytes")

	opts.MaxBytes = 100
	_, err = URL(context.Background(), server.URL, opts)
	assert.NoError(t, err)
}

func TestPhoto_DirectImage(t *testing.T) {
	img := pngBytes(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(img)
	}))
	defer server.Close()

	got, err := Photo(context.Background(), server.URL+"/jane.png", nil)
	require.NoError(t, err)
	assert.Equal(t, img, got)
}

func TestPhoto_SniffsUnlabeledImage(t *testing.T) {
	img := pngBytes(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(img)
	}))
	defer server.Close()

	got, err := Photo(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, img, got)
}

func TestPhoto_FollowsPageImage(t *testing.T) {
	img := pngBytes(t)
	mux := http.NewServeMux()
	mux.HandleFunc("/about/jane", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><head><meta property="og:image" content="/img/jane.png"></head><body>Jane</body></html>`))
	})
	mux.HandleFunc("/img/jane.png", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(img)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	got, err := Photo(context.Background(), server.URL+"/about/jane", nil)
	require.NoError(t, err)
	assert.Equal(t, img, got)
}

func TestPhoto_Rejects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/text", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("just text"))
	})
	mux.HandleFunc("/page", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><p>No pictures</p></body></html>`))
	})
	mux.HandleFunc("/fake", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head><meta property="og:image" content="/text"></head></html>`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	for path, want := range map[string]string{
		"/text": "not an image",
		"/page": "page has no image",
		"/fake": "not an image",
	} {
		_, err := Photo(context.Background(), server.URL+path, nil)
		require.Error(t, err, path)
		assert.Contains(t, err.Error(), want, path)
	}
}

func TestPageImage(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "og image absolute",
			html: `<meta property="og:image" content="https://cdn.example.com/a.jpg">`,
			want: "https://cdn.example.com/a.jpg",
		},
		{
			name: "twitter image relative",
			html: `<meta name="twitter:image" content="img/b.jpg">`,
			want: "https://example.com/people/img/b.jpg",
		},
		{
			name: "image_src link",
			html: `<link rel="image_src" href="/c.png">`,
			want: "https://example.com/c.png",
		},
		{
			name: "avatar img",
			html: `<body><img src="/logo.png"><img class="avatar" src="/d.png"></body>`,
			want: "https://example.com/d.png",
		},
		{
			name: "og image wins",
			html: `<meta name="twitter:image" content="/t.png"><meta property="og:image" content="/o.png">`,
			want: "https://example.com/o.png",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PageImage([]byte(tt.html), "https://example.com/people/jane")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := PageImage([]byte(`<meta property="og:image" content="data:image/png;base64,AA==">`), "https://example.com/")
	assert.Error(t, err)
}

func TestHostedCard(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/jane.vcf", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/vcard")
		_, _ = w.Write([]byte("\xef\xbb\xbf\r\nBEGIN:VCARD\r\nVERSION:3.0\r\nFN:Jane\r\nEND:VCARD\r\n"))
	})
	mux.HandleFunc("/lower.vcf", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("begin:vcard\r\nend:vcard\r\n"))
	})
	mux.HandleFunc("/page", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html></html>"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	text, err := HostedCard(context.Background(), server.URL+"/jane.vcf", nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "BEGIN:VCARD\r\n"))
	assert.Contains(t, text, "FN:Jane")

	_, err = HostedCard(context.Background(), server.URL+"/lower.vcf", nil)
	assert.NoError(t, err)

	_, err = HostedCard(context.Background(), server.URL+"/page", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a vCard")

	_, err = HostedCard(context.Background(), server.URL+"/missing.vcf", nil)
	assert.Error(t, err)
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("https://example.com/a.jpg"))
	assert.True(t, IsURL("http://localhost:8080/x"))
	assert.False(t, IsURL("photo.jpg"))
	assert.False(t, IsURL("/tmp/photo.jpg"))
	assert.False(t, IsURL("file:///tmp/photo.jpg"))
	assert.False(t, IsURL("https://"))
}
