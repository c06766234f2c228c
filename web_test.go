/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func get(t *testing.T, srv *httptest.Server, path string) (*http.Response, []byte) {
	t.Helper()

	resp, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return resp, body
}

func TestStaticRoutes(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		path        string
		contentType string
		contains    string
	}{
		{"/", "text/html", "<canvas"},
		{"/assets/app.js", "text/javascript", "join_room"},
		{"/assets/app.css", "text/css", "canvas"},
		{"/favicon.svg", "image/svg+xml", "<svg"},
		{"/healthz", "text/plain", "Ok"},
		{"/version", "text/plain", "ebe v" + releaseVersion},
		{"/robots.txt", "text/plain", "Disallow: /ws"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, body := get(t, srv, tt.path)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status %d", resp.StatusCode)
			}
			if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, tt.contentType) {
				t.Errorf("content type %q, want %q", ct, tt.contentType)
			}
			if !strings.Contains(string(body), tt.contains) {
				t.Errorf("body does not contain %q", tt.contains)
			}
			if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
				t.Error("security headers missing")
			}
		})
	}
}

func TestAssetTraversal(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := get(t, srv, "/assets/../favicons/favicon.svg")
	if resp.StatusCode == http.StatusOK {
		t.Error("served a file outside assets/")
	}

	resp, _ = get(t, srv, "/assets/missing.js")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestRoomListEndpoint(t *testing.T) {
	srv := newTestServer(t)
	alice := dial(t, srv)
	roomID := alice.createRoom("Bahçe")
	alice.join(roomID, "Alice")

	resp, body := get(t, srv, "/rooms")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}

	var rooms []RoomInfo
	if err := json.Unmarshal(body, &rooms); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rooms) != 1 {
		t.Fatalf("expected one room, got %v", rooms)
	}
	want := RoomInfo{ID: roomID, Name: "Bahçe", PlayerCount: 1}
	if rooms[0] != want {
		t.Errorf("got %+v, want %+v", rooms[0], want)
	}
}

func TestRoomQR(t *testing.T) {
	srv := newTestServer(t)
	alice := dial(t, srv)
	roomID := alice.createRoom("")

	resp, body := get(t, srv, "/rooms/"+roomID+"/qr")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if resp.Header.Get("Content-Type") != "image/png" {
		t.Errorf("unexpected content type %q", resp.Header.Get("Content-Type"))
	}
	if !bytes.HasPrefix(body, []byte("\x89PNG")) {
		t.Error("body is not a PNG")
	}

	resp, _ = get(t, srv, "/rooms/nonexistent/qr")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for missing room, got %d", resp.StatusCode)
	}
}

func TestRoomURL(t *testing.T) {
	cfg := testConfig()
	cfg.prefix = "/play"

	r := httptest.NewRequest(http.MethodGet, "http://example.com/play/rooms/abc/qr", nil)
	r.Header.Set("X-Forwarded-Proto", "https")

	if got := roomURL(cfg, r, "abc"); got != "https://example.com/play/?room=abc" {
		t.Errorf("unexpected url %q", got)
	}
}

func TestPrefixedRoutes(t *testing.T) {
	cfg := testConfig()
	cfg.prefix = "/play/"
	srv := httptest.NewServer(newRouter(cfg, make(chan error, 64)))
	t.Cleanup(srv.Close)

	resp, _ := get(t, srv, "/play/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("prefixed healthz returned %d", resp.StatusCode)
	}

	resp, _ = get(t, srv, "/healthz")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unprefixed healthz returned %d", resp.StatusCode)
	}

	page := newPage(cfg, "Server Error", "oops")
	if !strings.Contains(page, `href="/play/"`) {
		t.Errorf("error page does not link back under the prefix: %s", page)
	}
	if !strings.Contains(page, `href="/play/favicon.svg"`) {
		t.Errorf("error page favicon ignores the prefix: %s", page)
	}
}

func TestHumanReadableSize(t *testing.T) {
	tests := map[int64]string{
		0:       "0 B",
		999:     "999 B",
		1000:    "1.0 kB",
		1500000: "1.5 MB",
	}

	for in, want := range tests {
		if got := humanReadableSize(in); got != want {
			t.Errorf("humanReadableSize(%d) = %q, want %q", in, got, want)
		}
	}
}
