package webapi

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"
	"time"
)

// DiskCache is an http.RoundTripper that keeps successful GET responses on disk for TTL.
//
// It lets short-lived processes share recent responses.
type DiskCache struct {
	Base http.RoundTripper // defaults to http.DefaultTransport
	Dir  string            // defaults to DefaultCacheDir()
	TTL  time.Duration

	// Accept, when set, decides whether a 200 response body may be cached.
	// Some APIs report failures in 200 responses.
	Accept func(body []byte) bool

	now func() time.Time
}

// DefaultCacheDir returns the user cache directory for folio, or the temp dir.
func DefaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "folio")
	}
	return filepath.Join(dir, "folio")
}

// NewCachingClient returns an http.Client whose GET responses are cached on disk for 'ttl'.
func NewCachingClient(dir string, ttl time.Duration, accept func([]byte) bool) *http.Client {
	return &http.Client{
		Timeout:   15 * time.Second,
		Transport: &DiskCache{Dir: dir, TTL: ttl, Accept: accept},
	}
}

func (c *DiskCache) base() http.RoundTripper {
	if c.Base != nil {
		return c.Base
	}
	return http.DefaultTransport
}

func (c *DiskCache) dir() string {
	if c.Dir != "" {
		return c.Dir
	}
	return DefaultCacheDir()
}

func (c *DiskCache) clock() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}

// RoundTrip implements the http.RoundTripper interface. It checks for a fresh cached
// response on disk first, otherwise performs the request and caches a successful response.
func (c *DiskCache) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet || c.TTL <= 0 {
		return c.base().RoundTrip(req)
	}
	// the key covers the headers because some APIs take their key there.
	key := fmt.Sprintf("%s %s %s", req.Method, req.URL.String(), req.Header.Get("X-Api-Key"))
	file := filepath.Join(c.dir(), fmt.Sprintf("%x", sha1.Sum([]byte(key))))

	if cached, err := c.get(file, req); err == nil { // Cache hit
		return cached, nil
	}

	resp, err := c.base().RoundTrip(req)
	if err != nil {
		return nil, err
	}
	log.Printf("%v %v%v %v", req.Method, req.URL.Host, req.URL.Path, resp.Status)
	if resp.StatusCode != http.StatusOK {
		return resp, nil
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))
	if c.Accept != nil && !c.Accept(body) {
		return resp, nil
	}
	if err := c.put(file, resp); err != nil {
		log.Printf("cache write err (ignored): %v", err)
	}
	return resp, nil
}

// get retrieves a cached response from disk, if it has not expired.
func (c *DiskCache) get(file string, req *http.Request) (*http.Response, error) {
	info, err := os.Stat(file)
	if err != nil {
		return nil, err
	}
	if c.clock().Sub(info.ModTime()) > c.TTL {
		return nil, fmt.Errorf("cache entry expired")
	}
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewReader(content)), req)
}

// put stores a response to disk.
func (c *DiskCache) put(file string, resp *http.Response) error {
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(file, content, 0o600); err != nil {
		return err
	}
	return os.Chtimes(file, c.clock(), c.clock())
}
