package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/contact-qr/internal/capacity"
	"github.com/jonathan/contact-qr/internal/config"
	"github.com/jonathan/contact-qr/internal/payload"
	"github.com/jonathan/contact-qr/internal/photo"
	"github.com/jonathan/contact-qr/internal/qr"
	"github.com/jonathan/contact-qr/internal/vcard"
)

func runMakeQR(t *testing.T, cfg *config.Config, opts qrOptions) (*payload.Payload, string, error) {
	t.Helper()
	return makeQR(context.Background(), cfg, opts, photo.NewJPEGCompressor(), qr.NewRenderer())
}

func TestMakeQR_RendersCard(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "codes", "jane.png")

	p, path, err := runMakeQR(t, config.Default(), qrOptions{
		ContactPath: writeTestFile(t, dir, "jane.json", janeJSON),
		OutputPath:  out,
	})
	require.NoError(t, err)

	assert.Equal(t, out, path)
	assert.Equal(t, payload.KindVCard, p.Kind)
	assert.Equal(t, capacity.M, p.Level)
	assert.False(t, p.Downgraded)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	text, err := qr.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, p.Text, text)
}

func TestMakeQR_DefaultOutputName(t *testing.T) {
	dir := t.TempDir()
	contact := writeTestFile(t, dir, "jane.json", janeJSON)
	t.Chdir(dir)

	_, path, err := runMakeQR(t, config.Default(), qrOptions{ContactPath: contact})
	require.NoError(t, err)

	assert.Equal(t, "Jane_Doe.png", path)
	assert.FileExists(t, filepath.Join(dir, "Jane_Doe.png"))
}

func TestMakeQR_HostedURL(t *testing.T) {
	dir := t.TempDir()
	link := "https://cards.example.com/jane.vcf"

	p, _, err := runMakeQR(t, config.Default(), qrOptions{
		ContactPath: writeTestFile(t, dir, "jane.json", janeJSON),
		OutputPath:  filepath.Join(dir, "jane.png"),
		HostedURL:   link,
		Level:       "H",
	})
	require.NoError(t, err)

	assert.Equal(t, payload.KindURL, p.Kind)
	assert.Equal(t, link, p.Text)
	assert.Equal(t, capacity.H, p.Level)
}

func TestMakeQR_InvalidHostedURL(t *testing.T) {
	dir := t.TempDir()

	_, _, err := runMakeQR(t, config.Default(), qrOptions{
		ContactPath: writeTestFile(t, dir, "jane.json", janeJSON),
		OutputPath:  filepath.Join(dir, "jane.png"),
		HostedURL:   "ftp://cards.example.com/jane.vcf",
	})
	assert.Error(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "jane.png"))
}

func TestMakeQR_Downgrade(t *testing.T) {
	dir := t.TempDir()
	contact := `{"firstName":"Jane","lastName":"Doe","note":"` + strings.Repeat("n", 1400) + `"}`

	p, _, err := runMakeQR(t, config.Default(), qrOptions{
		ContactPath: writeTestFile(t, dir, "jane.json", contact),
		OutputPath:  filepath.Join(dir, "jane.png"),
		Level:       "H",
	})
	require.NoError(t, err)

	assert.True(t, p.Downgraded)
	assert.Equal(t, capacity.H, p.Requested)
	assert.Equal(t, capacity.Q, p.Level)
}

func TestMakeQR_NoDowngrade(t *testing.T) {
	dir := t.TempDir()
	contact := `{"firstName":"Jane","lastName":"Doe","note":"` + strings.Repeat("n", 1400) + `"}`

	_, _, err := runMakeQR(t, config.Default(), qrOptions{
		ContactPath: writeTestFile(t, dir, "jane.json", contact),
		OutputPath:  filepath.Join(dir, "jane.png"),
		Level:       "H",
		NoDowngrade: true,
	})
	assert.True(t, errors.Is(err, capacity.ErrCapacityExceeded), "got %v", err)
}

func TestMakeQR_BadLevel(t *testing.T) {
	dir := t.TempDir()

	_, _, err := runMakeQR(t, config.Default(), qrOptions{
		ContactPath: writeTestFile(t, dir, "jane.json", janeJSON),
		OutputPath:  filepath.Join(dir, "jane.png"),
		Level:       "Z",
	})
	var perr *capacity.ParseError
	assert.True(t, errors.As(err, &perr), "got %v", err)
}

func TestMakeQR_EmbedsPhotoFile(t *testing.T) {
	dir := t.TempDir()
	embed := true

	p, _, err := runMakeQR(t, config.Default(), qrOptions{
		ContactPath: writeTestFile(t, dir, "jane.json", janeJSON),
		PhotoPath:   writeTestPNG(t, dir, 40, 30),
		OutputPath:  filepath.Join(dir, "jane.png"),
		EmbedPhoto:  &embed,
	})
	require.NoError(t, err)
	assert.Contains(t, p.Text, "PHOTO;ENCODING=b;TYPE=JPEG:")
	assert.Nil(t, p.Fit)
}

func TestMakeQR_PhotoLeftOutByDefault(t *testing.T) {
	dir := t.TempDir()

	p, _, err := runMakeQR(t, config.Default(), qrOptions{
		ContactPath: writeTestFile(t, dir, "jane.json", janeJSON),
		PhotoPath:   writeTestPNG(t, dir, 40, 30),
		OutputPath:  filepath.Join(dir, "jane.png"),
	})
	require.NoError(t, err)
	assert.NotContains(t, p.Text, "PHOTO")
}

func TestMakeQR_ColorsAndSize(t *testing.T) {
	dir := t.TempDir()

	_, path, err := runMakeQR(t, config.Default(), qrOptions{
		ContactPath: writeTestFile(t, dir, "jane.json", janeJSON),
		OutputPath:  filepath.Join(dir, "jane.png"),
		Size:        512,
		Dark:        "#102030",
		Light:       "#fafafa",
	})
	require.NoError(t, err)
	assert.FileExists(t, path)

	_, _, err = runMakeQR(t, config.Default(), qrOptions{
		ContactPath: writeTestFile(t, dir, "jane.json", janeJSON),
		OutputPath:  filepath.Join(dir, "bad.png"),
		Dark:        "navy",
	})
	var cerr *qr.ColorError
	assert.True(t, errors.As(err, &cerr), "got %v", err)
}

func TestFileBase(t *testing.T) {
	tests := []struct {
		name   string
		fields vcard.ContactFields
		want   string
	}{
		{name: "display name", fields: vcard.ContactFields{DisplayName: "Dr. Jane Doe"}, want: "Dr__Jane_Doe"},
		{name: "first and last", fields: vcard.ContactFields{FirstName: "Jane", LastName: "Doe"}, want: "Jane_Doe"},
		{name: "last only", fields: vcard.ContactFields{LastName: "Doe"}, want: "Doe"},
		{name: "no usable characters", fields: vcard.ContactFields{DisplayName: "李雷"}, want: ""},
		{name: "blank", fields: vcard.ContactFields{}, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fileBase(tt.fields))
		})
	}
}

func TestQRCommand_MissingContactFlag(t *testing.T) {
	binaryPath := getBinaryPath(t)

	output, err := exec.Command(binaryPath, "qr", "--output", filepath.Join(t.TempDir(), "x.png")).CombinedOutput()
	assert.Error(t, err)
	assert.Contains(t, string(output), "required flag(s) \"contact\" not set")
}

func TestMakeQR_VerifyHosted(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/jane.vcf", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("BEGIN:VCARD\r\nVERSION:3.0\r\nFN:Jane Doe\r\nEND:VCARD\r\n"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	dir := t.TempDir()
	contact := writeTestFile(t, dir, "jane.json", janeJSON)

	p, _, err := runMakeQR(t, config.Default(), qrOptions{
		ContactPath:  contact,
		OutputPath:   filepath.Join(dir, "ok.png"),
		HostedURL:    server.URL + "/jane.vcf",
		VerifyHosted: true,
	})
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/jane.vcf", p.Text)

	_, _, err = runMakeQR(t, config.Default(), qrOptions{
		ContactPath:  contact,
		OutputPath:   filepath.Join(dir, "missing.png"),
		HostedURL:    server.URL + "/gone.vcf",
		VerifyHosted: true,
	})
	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "missing.png"))
}

func TestMakeQR_PhotoURL(t *testing.T) {
	dir := t.TempDir()
	img, err := os.ReadFile(writeTestPNG(t, dir, 40, 30))
	require.NoError(t, err)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(img)
	}))
	defer server.Close()
	embed := true

	p, _, err := runMakeQR(t, config.Default(), qrOptions{
		ContactPath: writeTestFile(t, dir, "jane.json", janeJSON),
		PhotoPath:   server.URL + "/jane.png",
		OutputPath:  filepath.Join(dir, "jane.png"),
		EmbedPhoto:  &embed,
	})
	require.NoError(t, err)
	assert.Contains(t, p.Text, "PHOTO;ENCODING=b;TYPE=JPEG:")
}
