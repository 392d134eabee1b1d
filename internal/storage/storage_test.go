package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"dqdash/internal/config"
)

func TestBuildObjectPath(t *testing.T) {
	at := time.Date(2024, 2, 3, 23, 30, 0, 0, time.FixedZone("X", 3*3600))

	tests := []struct {
		name string
		opts SaveOptions
		want string
	}{
		{
			name: "export layout",
			opts: SaveOptions{Category: "exports", Scope: "Orders", BaseName: "orders-1706992200", Extension: "json", At: at},
			want: "exports/orders/2024/02/03/orders-1706992200.json",
		},
		{
			name: "no scope",
			opts: SaveOptions{Category: "exports", BaseName: "x", Extension: ".JSON", At: at},
			want: "exports/2024/02/03/x.json",
		},
		{
			name: "hostile segments",
			opts: SaveOptions{Category: "../etc", Scope: "../../root", BaseName: "a b/c", Extension: "", At: at},
			want: "etc/root/2024/02/03/a-bc.bin",
		},
		{
			name: "empty category",
			opts: SaveOptions{BaseName: "f", Extension: "txt", At: at},
			want: "misc/2024/02/03/f.txt",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildObjectPath(tt.opts); got != tt.want {
				t.Fatalf("BuildObjectPath()=%q, want %q", got, tt.want)
			}
		})
	}
}

func TestScopeOf(t *testing.T) {
	cases := []struct {
		key  string
		want string
	}{
		{key: "exports/orders/2024/02/03/orders-1.json", want: "orders"},
		{key: "/exports/orders/2024/02/03/orders-1.json", want: "orders"},
		{key: "exports/../exports/orders/2024/02/03/o.json", want: "orders"},
		{key: "exports/orders/2024/02/03", want: ""},
		{key: "misc/orders/2024/02/03/orders-1.json", want: ""},
		{key: "exports/orders/2024/02/03/extra/orders-1.json", want: ""},
		{key: "", want: ""},
	}
	for _, tc := range cases {
		if got := ScopeOf("exports", tc.key); got != tc.want {
			t.Fatalf("ScopeOf(%q)=%q, want %q", tc.key, got, tc.want)
		}
	}
}

func TestLocalStorageSave(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	at := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	opts := SaveOptions{Category: "exports", Scope: "sample", BaseName: "sample-1", Extension: "json", At: at}

	key, err := store.Save(context.Background(), []byte(`{"a":1}`), opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "exports/sample/2024/05/06/sample-1.json" {
		t.Fatalf("unexpected key %q", key)
	}
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(key)))
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(data) != `{"a":1}` {
		t.Fatalf("unexpected content %q", data)
	}

	opts.SkipIfExists = true
	if _, err := store.Save(context.Background(), []byte(`{"a":2}`), opts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, _ = os.ReadFile(filepath.Join(dir, filepath.FromSlash(key)))
	if string(data) != `{"a":1}` {
		t.Fatalf("expected existing object to be kept, got %q", data)
	}
}

func TestLocalStorageRejectsEmptyAndCancelled(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.Save(context.Background(), nil, SaveOptions{}); !errors.Is(err, errEmptyPayload) {
		t.Fatalf("expected errEmptyPayload, got %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.Save(ctx, []byte("x"), SaveOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

type fakeBackend struct {
	objects map[string][]byte
	types   map[string]string
	failPut error
}

func (f *fakeBackend) exists(_ context.Context, key string) (bool, error) {
	_, ok := f.objects[key]
	return ok, nil
}

func (f *fakeBackend) put(_ context.Context, key string, data []byte, contentType string) error {
	if f.failPut != nil {
		return f.failPut
	}
	f.objects[key] = data
	f.types[key] = contentType
	return nil
}

func TestRemoteStorageAppliesPrefixAndContentType(t *testing.T) {
	backend := &fakeBackend{objects: map[string][]byte{}, types: map[string]string{}}
	store := newRemoteStorage(TypeS3, "/team/dq/", backend)
	at := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	key, err := store.Save(context.Background(), []byte("{}"), SaveOptions{
		Category: "exports", Scope: "sample", BaseName: "sample-9", Extension: "json", At: at,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "team/dq/exports/sample/2024/01/02/sample-9.json" {
		t.Fatalf("unexpected key %q", key)
	}
	if ct := backend.types[key]; ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}

	backend.failPut = errors.New("boom")
	if _, err := store.Save(context.Background(), []byte("{}"), SaveOptions{BaseName: "other", At: at}); err == nil {
		t.Fatal("expected put failure to surface")
	}
}

func TestRemoteStorageSkipIfExists(t *testing.T) {
	backend := &fakeBackend{objects: map[string][]byte{}, types: map[string]string{}}
	store := newRemoteStorage(TypeOSS, "", backend)
	opts := SaveOptions{Category: "exports", BaseName: "same", Extension: "json", At: time.Unix(0, 0), SkipIfExists: true}

	if _, err := store.Save(context.Background(), []byte("first"), opts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	key, err := store.Save(context.Background(), []byte("second"), opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(backend.objects[key]) != "first" {
		t.Fatalf("expected first write to win, got %q", backend.objects[key])
	}
}

func TestNewStorageValidatesSettings(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
	}{
		{name: "unknown type", cfg: config.Config{StorageType: "ftp"}},
		{name: "s3 without bucket", cfg: config.Config{StorageType: TypeS3, StorageS3Region: "us-east-1"}},
		{name: "r2 without endpoint", cfg: config.Config{StorageType: TypeR2, StorageR2Bucket: "b", StorageR2AccessKeyID: "k", StorageR2SecretAccessKey: "s"}},
		{name: "oss without credentials", cfg: config.Config{StorageType: TypeOSS, StorageOSSEndpoint: "e", StorageOSSBucket: "b"}},
		{name: "cos without url", cfg: config.Config{StorageType: TypeCOS}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewStorage(tt.cfg); err == nil {
				t.Fatal("expected error")
			}
		})
	}

	local, err := NewStorage(config.Config{StorageType: "LOCAL", StorageLocalDir: t.TempDir()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := local.(LocalBaseDirProvider); !ok {
		t.Fatal("expected local storage to expose its base dir")
	}
}
