package firebase

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"catering-backend/catalog"
)

func TestSanitizeFilenameNormal(t *testing.T) {
	result := sanitizeFilename("image_test-file.jpg")
	if result != "image_test-file.jpg" {
		t.Errorf("expected 'image_test-file.jpg', got '%s'", result)
	}
}

func TestSanitizeFilenameSpecialChars(t *testing.T) {
	result := sanitizeFilename("my file (1)@#$.jpg")
	if strings.ContainsAny(result, " ()@#$") {
		t.Errorf("special chars not replaced: '%s'", result)
	}
}

func TestSanitizeFilenameTooLong(t *testing.T) {
	result := sanitizeFilename(strings.Repeat("a", 200))
	if len(result) != 100 {
		t.Errorf("expected length 100, got %d", len(result))
	}
}

func TestSanitizeFilenameEmptyOrDots(t *testing.T) {
	for _, in := range []string{"", ".", ".."} {
		if got := sanitizeFilename(in); got != "file" {
			t.Errorf("sanitizeFilename(%q) = %q, want 'file'", in, got)
		}
	}
}

func TestObjectPathUsesFolder(t *testing.T) {
	path := ObjectPath("gallery", "wedding buffet.png")
	if !strings.HasPrefix(path, "gallery/") {
		t.Errorf("expected gallery prefix, got %s", path)
	}
	if !strings.HasSuffix(path, "_wedding_buffet.png") {
		t.Errorf("expected sanitized name suffix, got %s", path)
	}
}

func TestIsPrivateIP(t *testing.T) {
	tests := []struct {
		ip       string
		expected bool
	}{
		{"10.0.0.1", true},
		{"172.16.0.1", true},
		{"192.168.1.1", true},
		{"127.0.0.1", true},
		{"::1", true},
		{"8.8.8.8", false},
		{"1.1.1.1", false},
	}
	for _, tc := range tests {
		if got := isPrivateIP(net.ParseIP(tc.ip)); got != tc.expected {
			t.Errorf("isPrivateIP(%s) = %v, want %v", tc.ip, got, tc.expected)
		}
	}
}

func TestParseCIDRInvalid(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for invalid CIDR")
		}
	}()
	parseCIDR("not-a-cidr")
}

func stubLookup(t *testing.T, ips ...string) {
	t.Helper()
	orig := lookupIP
	lookupIP = func(host string) ([]net.IP, error) {
		var out []net.IP
		for _, ip := range ips {
			out = append(out, net.ParseIP(ip))
		}
		return out, nil
	}
	t.Cleanup(func() { lookupIP = orig })
}

func TestValidateExternalURL(t *testing.T) {
	stubLookup(t, "93.184.216.34")

	rejected := []string{
		"ftp://example.com/file.txt",
		"http://localhost/image.jpg",
		"http:///path",
	}
	for _, u := range rejected {
		if err := validateExternalURL(u); err == nil {
			t.Errorf("expected %s to be rejected", u)
		}
	}
	if err := validateExternalURL("https://example.com/image.jpg"); err != nil {
		t.Errorf("expected public URL to pass, got %v", err)
	}
}

func TestValidateExternalURLPrivateResolution(t *testing.T) {
	stubLookup(t, "10.1.2.3")
	if err := validateExternalURL("https://internal.example.com/a.png"); err == nil {
		t.Error("expected private resolution to be rejected")
	}
}

// dialServer routes every outbound connection to srv. httptest listens on
// loopback, which the resolver check would otherwise reject.
func dialServer(t *testing.T, srv *httptest.Server) {
	t.Helper()
	orig := remoteClient
	remoteClient = &http.Client{Transport: &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, network, srv.Listener.Addr().String())
		},
	}}
	t.Cleanup(func() { remoteClient = orig })
}

func TestFetchRemoteImageRejectsNonImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html></html>")
	}))
	defer srv.Close()
	stubLookup(t, "93.184.216.34")
	dialServer(t, srv)

	if _, _, err := FetchRemoteImage("http://images.example.com/tray.jpg"); err == nil {
		t.Error("expected non-image content to be rejected")
	}
}

func TestFetchRemoteImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("png-bytes"))
	}))
	defer srv.Close()
	stubLookup(t, "93.184.216.34")
	dialServer(t, srv)

	body, contentType, err := FetchRemoteImage("http://images.example.com/tray.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer body.Close()
	if contentType != "image/png" {
		t.Errorf("expected image/png, got %s", contentType)
	}
}

func TestMapFirestoreError(t *testing.T) {
	if mapFirestoreError(nil) != nil {
		t.Error("nil should stay nil")
	}
	if err := mapFirestoreError(status.Error(codes.NotFound, "no doc")); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	other := status.Error(codes.Unavailable, "down")
	if err := mapFirestoreError(other); err != other {
		t.Errorf("expected other errors to pass through, got %v", err)
	}
}

func TestStorageOperationsRequireApp(t *testing.T) {
	App = nil
	if err := DeleteFile("menu/a.png"); err == nil {
		t.Error("expected error without an initialized app")
	}
	if _, err := UploadGalleryImage(nil, "a.png", "image/png"); err == nil {
		t.Error("expected error without an initialized app")
	}
}
