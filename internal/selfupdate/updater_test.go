package selfupdate

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecker_Asset(t *testing.T) {
	tests := []struct {
		goos, goarch string
		want         releaseAsset
		wantErr      bool
	}{
		{"darwin", "amd64", releaseAsset{Name: "docquiz_Darwin_x86_64.tar.gz", Binary: "docquiz"}, false},
		{"darwin", "arm64", releaseAsset{Name: "docquiz_Darwin_arm64.tar.gz", Binary: "docquiz"}, false},
		{"linux", "amd64", releaseAsset{Name: "docquiz_Linux_x86_64.tar.gz", Binary: "docquiz"}, false},
		{"linux", "arm64", releaseAsset{Name: "docquiz_Linux_arm64.tar.gz", Binary: "docquiz"}, false},
		{"windows", "amd64", releaseAsset{Name: "docquiz_Windows_x86_64.zip", Binary: "docquiz.exe", zipped: true}, false},
		{"plan9", "amd64", releaseAsset{}, true},
		{"linux", "mips", releaseAsset{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.goos+"/"+tt.goarch, func(t *testing.T) {
			got, err := NewChecker(withPlatform(tt.goos, tt.goarch)).asset()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChecksumFile(t *testing.T) {
	archive := []byte("release archive bytes")
	sum := sha256.Sum256(archive)
	digest := hex.EncodeToString(sum[:])

	sums := parseChecksumFile([]byte(strings.ToUpper(digest) + "  docquiz_Linux_x86_64.tar.gz\nbadline\n  \nfoo  bar  baz\ndef456  docquiz_Windows_x86_64.zip\n"))
	assert.Equal(t, checksumFile{
		"docquiz_Linux_x86_64.tar.gz": digest,
		"docquiz_Windows_x86_64.zip":  "def456",
	}, sums)
	assert.Empty(t, parseChecksumFile(nil))

	assert.NoError(t, sums.verify("docquiz_Linux_x86_64.tar.gz", archive))
	assert.ErrorIs(t, sums.verify("docquiz_Windows_x86_64.zip", archive), ErrChecksum)

	err := sums.verify("docquiz_Darwin_arm64.tar.gz", archive)
	assert.ErrorIs(t, err, ErrChecksum)
	assert.Contains(t, err.Error(), "not listed")
}

func TestReleaseAsset_Binary(t *testing.T) {
	content := []byte("#!/bin/sh\necho docquiz")
	tarAsset := releaseAsset{Name: "docquiz_Linux_x86_64.tar.gz", Binary: "docquiz"}
	zipAsset := releaseAsset{Name: "docquiz_Windows_x86_64.zip", Binary: "docquiz.exe", zipped: true}

	t.Run("tar.gz", func(t *testing.T) {
		got, err := tarAsset.binary(buildTarGz(t, "dist/docquiz", content))
		require.NoError(t, err)
		assert.Equal(t, content, got)
	})

	t.Run("zip", func(t *testing.T) {
		got, err := zipAsset.binary(buildZip(t, "docquiz.exe", content))
		require.NoError(t, err)
		assert.Equal(t, content, got)
	})

	t.Run("missing binary", func(t *testing.T) {
		_, err := tarAsset.binary(buildTarGz(t, "README.md", content))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "docquiz not found")
	})

	t.Run("wrong archive kind", func(t *testing.T) {
		_, err := zipAsset.binary(buildTarGz(t, "docquiz.exe", content))
		assert.ErrorContains(t, err, "open zip")
	})
}

func TestReplaceExecutable(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "docquiz")
	require.NoError(t, os.WriteFile(target, []byte("old"), 0o755))

	newData := []byte("new-binary-content")
	require.NoError(t, replaceExecutable(target, newData))

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, newData, got)

	info, err := os.Stat(target)
	require.NoError(t, err)
	if runtime.GOOS != "windows" {
		assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestReplaceExecutable_MissingTarget(t *testing.T) {
	dir := t.TempDir()
	err := replaceExecutable(filepath.Join(dir, "docquiz"), []byte("x"))
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func latestHandler(tag string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/abhisek/docquiz/releases/latest" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = fmt.Fprintf(w, `{"tag_name":%q,"html_url":"https://example.com/%s"}`, tag, tag)
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name      string
		current   string
		latest    string
		available bool
		wantErr   bool
	}{
		{"newer release", "v1.2.0", "v1.3.0", true, false},
		{"same version", "v1.3.0", "v1.3.0", false, false},
		{"missing v prefix", "1.2.9", "v1.2.10", true, false},
		{"ahead of release", "v2.0.0", "v1.9.9", false, false},
		{"bad current", "devel", "v1.0.0", false, true},
		{"bad tag", "v1.0.0", "nightly", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(latestHandler(tt.latest))
			defer server.Close()

			res, err := NewChecker(WithBaseURL(server.URL)).Check(context.Background(), &CheckInput{Version: tt.current})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.available, res.UpdateAvailable)
			assert.Equal(t, tt.latest, res.LatestVersion)
		})
	}
}

func TestCheck_CustomRepository(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/acme/quiz/releases/latest", r.URL.Path)
		_, _ = w.Write([]byte(`{"tag_name":"v0.2.0"}`))
	}))
	defer server.Close()

	res, err := NewChecker(WithBaseURL(server.URL), WithRepository("acme", "quiz")).
		Check(context.Background(), &CheckInput{Version: "v0.1.0"})
	require.NoError(t, err)
	assert.True(t, res.UpdateAvailable)
}

func TestUpdate(t *testing.T) {
	const asset = "docquiz_Linux_x86_64.tar.gz"
	binaryContent := []byte("new-docquiz-binary")
	archive := buildTarGz(t, "docquiz", binaryContent)
	archiveHash := sha256.Sum256(archive)
	archiveHex := hex.EncodeToString(archiveHash[:])

	releaseServer := func(checksum string) *httptest.Server {
		return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/repos/abhisek/docquiz/releases/latest":
				_, _ = w.Write([]byte(`{"tag_name":"v2.0.0","html_url":"https://example.com/v2.0.0"}`))
			case "/abhisek/docquiz/releases/download/v2.0.0/" + asset:
				_, _ = w.Write(archive)
			case "/abhisek/docquiz/releases/download/v2.0.0/checksums.txt":
				_, _ = fmt.Fprintf(w, "%s  %s\n", checksum, asset)
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}))
	}

	t.Run("happy path", func(t *testing.T) {
		execPath := filepath.Join(t.TempDir(), "docquiz")
		require.NoError(t, os.WriteFile(execPath, []byte("old"), 0o755))

		server := releaseServer(archiveHex)
		defer server.Close()

		checker := NewChecker(
			WithBaseURL(server.URL),
			WithDownloadBaseURL(server.URL),
			withPlatform("linux", "amd64"),
			withExecPath(func() (string, error) { return execPath, nil }),
		)

		var stages []string
		err := checker.Update(context.Background(), &UpdateInput{CurrentVersion: "v1.0.0"}, func(p UpdateProgress) {
			stages = append(stages, p.Stage)
		})
		require.NoError(t, err)

		got, err := os.ReadFile(execPath)
		require.NoError(t, err)
		assert.Equal(t, binaryContent, got)
		assert.Equal(t, []string{"check", "download", "verify", "extract", "apply", "done"}, stages)
	})

	t.Run("dev build", func(t *testing.T) {
		err := NewChecker().Update(context.Background(), &UpdateInput{CurrentVersion: "(devel)"}, func(UpdateProgress) {})
		assert.ErrorIs(t, err, ErrDevBuild)
	})

	t.Run("already latest", func(t *testing.T) {
		server := httptest.NewServer(latestHandler("v1.0.0"))
		defer server.Close()

		err := NewChecker(WithBaseURL(server.URL)).
			Update(context.Background(), &UpdateInput{CurrentVersion: "v1.0.0"}, func(UpdateProgress) {})
		assert.ErrorIs(t, err, ErrAlreadyLatest)
	})

	t.Run("checksum mismatch", func(t *testing.T) {
		server := releaseServer("0000000000000000000000000000000000000000000000000000000000000000")
		defer server.Close()

		err := NewChecker(WithBaseURL(server.URL), WithDownloadBaseURL(server.URL), withPlatform("linux", "amd64")).
			Update(context.Background(), &UpdateInput{CurrentVersion: "v1.0.0"}, func(UpdateProgress) {})
		assert.ErrorIs(t, err, ErrChecksum)
	})

	t.Run("download failure", func(t *testing.T) {
		server := httptest.NewServer(latestHandler("v2.0.0"))
		defer server.Close()

		err := NewChecker(WithBaseURL(server.URL), WithDownloadBaseURL(server.URL), withPlatform("linux", "amd64")).
			Update(context.Background(), &UpdateInput{CurrentVersion: "v1.0.0"}, func(UpdateProgress) {})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "download archive")
	})
}

func buildTarGz(t *testing.T, name string, content []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)

	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name:     name,
		Size:     int64(len(content)),
		Mode:     0o755,
		Typeflag: tar.TypeReg,
	}))
	_, err := tw.Write(content)
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, gw.Close())
	return buf.Bytes()
}

func buildZip(t *testing.T, name string, content []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(name)
	require.NoError(t, err)
	_, err = w.Write(content)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}
