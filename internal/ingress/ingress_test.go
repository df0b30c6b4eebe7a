package ingress

import (
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/joseph-ayodele/label-scanner/internal/common"
)

func dataURL(mime string, payload []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(payload)
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []byte
		mime    string
		wantErr error
	}{
		{name: "empty is missing image", in: "", wantErr: common.ErrMissingImage},
		{name: "whitespace is missing image", in: "  ", wantErr: common.ErrMissingImage},
		{name: "no payload segment", in: "data:image/jpeg;base64", wantErr: common.ErrInvalidInput},
		{name: "bad base64", in: "data:image/jpeg;base64,!!!", wantErr: common.ErrInvalidInput},
		{name: "empty payload", in: "data:image/jpeg;base64,", wantErr: common.ErrMissingImage},
		{name: "jpeg", in: dataURL("image/jpeg", []byte{0xff, 0xd8, 0xff}), want: []byte{0xff, 0xd8, 0xff}, mime: "image/jpeg"},
		{name: "png", in: dataURL("image/png", []byte("fake-png")), want: []byte("fake-png"), mime: "image/png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, mime, err := Decode(tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if string(data) != string(tt.want) {
				t.Errorf("data = %q, want %q", data, tt.want)
			}
			if mime != tt.mime {
				t.Errorf("mime = %q, want %q", mime, tt.mime)
			}
		})
	}
}

func TestStoreSaveUniquePaths(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	a, err := store.Save([]byte("first"), "image/jpeg")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	b, err := store.Save([]byte("second"), "image/jpeg")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if a.Path == b.Path {
		t.Fatalf("two requests share the stored path %q", a.Path)
	}

	// second request must not observe the first's removed file
	a.Remove()
	if _, err := os.Stat(a.Path); !os.IsNotExist(err) {
		t.Errorf("stored image still present after Remove: %v", err)
	}
	got, err := os.ReadFile(b.Path)
	if err != nil || string(got) != "second" {
		t.Errorf("second stored image disturbed: %q, %v", got, err)
	}
	b.Remove()
}

func TestStoredImageRemoveIdempotent(t *testing.T) {
	store, err := NewStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	img, err := store.Save([]byte("x"), "image/png")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if filepath.Ext(img.Path) != ".png" {
		t.Errorf("path %q should carry the png extension", img.Path)
	}
	img.Remove()
	img.Remove() // second call must be a no-op
}

func TestNewStoreCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")
	if _, err := NewStore(dir, nil); err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("upload dir not created: %v", err)
	}
}
