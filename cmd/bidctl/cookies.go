package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
)

type savedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// cookieFile persists the cookies a jar holds for one base URL, so the
// refresh cookie survives between runs.
type cookieFile struct {
	path string
	base *url.URL
}

func newCookieFile(path, baseURL string) (*cookieFile, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("cookie file: %w", err)
	}
	return &cookieFile{path: path, base: u}, nil
}

// Load seeds jar from disk. A missing file leaves jar empty.
func (f *cookieFile) Load(jar http.CookieJar) error {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	var saved []savedCookie
	if err := json.Unmarshal(data, &saved); err != nil {
		return fmt.Errorf("cookie file %s: %w", f.path, err)
	}
	cookies := make([]*http.Cookie, 0, len(saved))
	for _, c := range saved {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}
	jar.SetCookies(f.base, cookies)
	return nil
}

// Save writes the jar's cookies for the base URL, or removes the file when
// there are none.
func (f *cookieFile) Save(jar http.CookieJar) error {
	cookies := jar.Cookies(f.base)
	if len(cookies) == 0 {
		if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	}

	saved := make([]savedCookie, 0, len(cookies))
	for _, c := range cookies {
		saved = append(saved, savedCookie{Name: c.Name, Value: c.Value})
	}
	data, err := json.MarshalIndent(saved, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(f.path, data, 0o600)
}
