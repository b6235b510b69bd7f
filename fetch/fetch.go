// Package fetch downloads source media to local disk and assembles
// chunked uploads, caching both by MediaID under a per-media temp
// directory. It never retries transport errors itself; the caller
// (the job runner) owns retry policy.
package fetch

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/videoedit/ai-edit-api/apierrors"
	"github.com/videoedit/ai-edit-api/config"
	"github.com/videoedit/ai-edit-api/log"
)

const defaultFilename = "source"

// Fetcher downloads a source URL (or passes through an existing local
// path) into the per-media temp directory, and assembles chunked
// uploads into the same layout.
type Fetcher struct {
	TempDir string
}

func New() *Fetcher {
	return &Fetcher{TempDir: config.TempDir}
}

func (f *Fetcher) mediaDir(mediaID string) string {
	return filepath.Join(f.TempDir, mediaID)
}

// Fetch resolves url to a local path under tmp/<media_id>/<filename>.
// http(s) URLs are streamed to disk; anything else is treated as a
// local path and returned as-is if it already exists. A previously
// fetched file at the target path is returned without refetching.
// Downloads are written to a temporary .part file beside the target
// and renamed into place only once complete.
func (f *Fetcher) Fetch(requestID, url, mediaID, filename string) (string, error) {
	if filename == "" {
		filename = defaultFilename
	}

	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		if _, err := os.Stat(url); err == nil {
			return url, nil
		}
		return "", apierrors.NewNotFound("local source file not found", fmt.Errorf("%s", url))
	}

	dir := f.mediaDir(mediaID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", apierrors.NewDependencyFailure("creating media temp dir", err)
	}
	dest := filepath.Join(dir, filename)

	if st, err := os.Stat(dest); err == nil && st.Size() > 0 {
		log.Log(requestID, "fetch: cache hit, skipping download", "media_id", mediaID, "dest", dest)
		return dest, nil
	}

	if err := f.download(requestID, url, dest); err != nil {
		return "", err
	}
	return dest, nil
}

func (f *Fetcher) download(requestID, url, dest string) error {
	resp, err := http.Get(url)
	if err != nil {
		return apierrors.NewDependencyUnavailable("fetching source url", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apierrors.NewDependencyFailure(
			fmt.Sprintf("non-2xx response fetching %s", url),
			fmt.Errorf("status %d", resp.StatusCode),
		)
	}

	out, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".*.part")
	if err != nil {
		return apierrors.NewDependencyFailure("creating destination file", err)
	}
	tmp := out.Name()
	defer os.Remove(tmp)
	defer out.Close()

	buf := make([]byte, 8*1024)
	var written int64
	var sinceLastLog int64
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				return apierrors.NewDependencyFailure("writing downloaded bytes", werr)
			}
			written += int64(n)
			sinceLastLog += int64(n)
			if sinceLastLog >= 10*1024*1024 {
				log.Log(requestID, "fetch: download progress", "url", url, "bytes", written)
				sinceLastLog = 0
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return apierrors.NewDependencyUnavailable("reading response body", readErr)
		}
	}
	if err := out.Close(); err != nil {
		return apierrors.NewDependencyFailure("closing downloaded file", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		return apierrors.NewDependencyFailure("moving downloaded file into place", err)
	}
	log.Log(requestID, "fetch: download complete", "url", url, "bytes", written)
	return nil
}

// chunkDir is the per-media scratch directory used while chunks
// trickle in from a caller-driven upload.
func (f *Fetcher) chunkDir(mediaID string) string {
	return filepath.Join(f.mediaDir(mediaID), "chunks")
}

// SaveChunk appends one numbered chunk to the media's chunk directory,
// recording its MD5 alongside it for later verification in Assemble.
func (f *Fetcher) SaveChunk(mediaID string, chunkNum int, data []byte) error {
	dir := f.chunkDir(mediaID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apierrors.NewDependencyFailure("creating chunk dir", err)
	}
	chunkPath := filepath.Join(dir, strconv.Itoa(chunkNum))
	if err := os.WriteFile(chunkPath, data, 0o644); err != nil {
		return apierrors.NewDependencyFailure("writing chunk", err)
	}
	sum := md5.Sum(data)
	sumPath := chunkPath + ".md5"
	if err := os.WriteFile(sumPath, []byte(hex.EncodeToString(sum[:])), 0o644); err != nil {
		return apierrors.NewDependencyFailure("writing chunk checksum", err)
	}
	return nil
}

// Assemble concatenates the total numbered chunks for mediaID, in
// order, into tmp/<media_id>/<filename>, verifying each chunk's MD5
// against the checksum SaveChunk recorded, then deletes the chunk
// directory.
func (f *Fetcher) Assemble(mediaID string, total int, filename string) (string, error) {
	if filename == "" {
		filename = defaultFilename
	}
	dir := f.chunkDir(mediaID)
	destDir := f.mediaDir(mediaID)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", apierrors.NewDependencyFailure("creating media dir", err)
	}
	dest := filepath.Join(destDir, filename)

	out, err := os.Create(dest)
	if err != nil {
		return "", apierrors.NewDependencyFailure("creating assembled file", err)
	}
	defer out.Close()

	nums := make([]int, total)
	for i := range nums {
		nums[i] = i
	}
	sort.Ints(nums)

	for _, n := range nums {
		chunkPath := filepath.Join(dir, strconv.Itoa(n))
		data, err := os.ReadFile(chunkPath)
		if err != nil {
			return "", apierrors.NewDependencyFailure(fmt.Sprintf("reading chunk %d", n), err)
		}
		wantSum, err := os.ReadFile(chunkPath + ".md5")
		if err != nil {
			return "", apierrors.NewDependencyFailure(fmt.Sprintf("reading chunk %d checksum", n), err)
		}
		gotSum := md5.Sum(data)
		if hex.EncodeToString(gotSum[:]) != string(wantSum) {
			return "", apierrors.Unretriable(apierrors.NewValidationFailure(
				fmt.Sprintf("checksum mismatch for chunk %d", n), nil,
			))
		}
		if _, err := out.Write(data); err != nil {
			return "", apierrors.NewDependencyFailure(fmt.Sprintf("appending chunk %d", n), err)
		}
	}

	if err := os.RemoveAll(dir); err != nil {
		log.LogNoRequestID("fetch: failed to clean up chunk dir", "media_id", mediaID, "error", err)
	}
	return dest, nil
}
