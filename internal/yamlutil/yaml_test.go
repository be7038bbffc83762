package yamlutil_test

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/alnah/go-cv2pdf/internal/yamlutil"
)

type serverSection struct {
	Addr    string `yaml:"addr"`
	Workers int    `yaml:"workers"`
}

type testConfig struct {
	Backend string        `yaml:"backend"`
	Server  serverSection `yaml:"server"`
}

// ---------------------------------------------------------------------------
// TestUnmarshal - Lenient decoding
// ---------------------------------------------------------------------------

func TestUnmarshal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    []byte
		dest    any
		want    *testConfig
		wantErr error
	}{
		{
			name: "nested sections",
			data: []byte("backend: chrome\nserver:\n  addr: \":5000\"\n  workers: 2\n"),
			dest: &testConfig{},
			want: &testConfig{Backend: "chrome", Server: serverSection{Addr: ":5000", Workers: 2}},
		},
		{
			name: "unknown fields ignored",
			data: []byte("backend: native\ntheme: dark\n"),
			dest: &testConfig{},
			want: &testConfig{Backend: "native"},
		},
		{
			name: "unicode",
			data: []byte("backend: négatif\n"),
			dest: &testConfig{},
			want: &testConfig{Backend: "négatif"},
		},
		{name: "nil data", data: nil, dest: &testConfig{}, wantErr: yamlutil.ErrNilData},
		{name: "empty data", data: []byte{}, dest: &testConfig{}, wantErr: yamlutil.ErrNilData},
		{name: "nil destination", data: []byte("backend: x"), dest: nil, wantErr: yamlutil.ErrNilDestination},
		{
			name:    "too large",
			data:    make([]byte, yamlutil.MaxInputSize+1),
			dest:    &testConfig{},
			wantErr: yamlutil.ErrInputTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := yamlutil.Unmarshal(tt.data, tt.dest)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Unmarshal() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal() unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, tt.dest); diff != "" {
				t.Errorf("Unmarshal() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUnmarshal_SyntaxErrorIsPrefixed(t *testing.T) {
	t.Parallel()

	err := yamlutil.Unmarshal([]byte("backend: [unclosed"), &testConfig{})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.HasPrefix(err.Error(), "yamlutil:") {
		t.Errorf("error = %q, want prefix 'yamlutil:'", err)
	}
}

// ---------------------------------------------------------------------------
// TestUnmarshalStrict - Unknown fields rejected
// ---------------------------------------------------------------------------

func TestUnmarshalStrict(t *testing.T) {
	t.Parallel()

	var cfg testConfig
	if err := yamlutil.UnmarshalStrict([]byte("backend: native\n"), &cfg); err != nil {
		t.Fatalf("UnmarshalStrict() unexpected error: %v", err)
	}
	if cfg.Backend != "native" {
		t.Errorf("Backend = %q, want native", cfg.Backend)
	}

	err := yamlutil.UnmarshalStrict([]byte("backend: native\nserver:\n  port: 80\n"), &testConfig{})
	if err == nil {
		t.Fatal("UnmarshalStrict() should reject unknown nested field")
	}
	if !strings.HasPrefix(err.Error(), "yamlutil:") {
		t.Errorf("error = %q, want prefix 'yamlutil:'", err)
	}
}

// ---------------------------------------------------------------------------
// TestReadFileStrict - File decoding
// ---------------------------------------------------------------------------

func TestReadFileStrict(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	if err := os.WriteFile(good, []byte("server:\n  workers: 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	big := filepath.Join(dir, "big.yaml")
	if err := os.WriteFile(big, []byte(strings.Repeat("#", yamlutil.MaxInputSize+10)), 0o644); err != nil {
		t.Fatal(err)
	}

	var cfg testConfig
	if err := yamlutil.ReadFileStrict(good, &cfg); err != nil {
		t.Fatalf("ReadFileStrict() error = %v", err)
	}
	if cfg.Server.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Server.Workers)
	}

	if err := yamlutil.ReadFileStrict(filepath.Join(dir, "missing.yaml"), &cfg); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("missing file error = %v, want fs.ErrNotExist", err)
	}
	if err := yamlutil.ReadFileStrict(big, &cfg); !errors.Is(err, yamlutil.ErrInputTooLarge) {
		t.Errorf("large file error = %v, want ErrInputTooLarge", err)
	}
}

// ---------------------------------------------------------------------------
// TestMarshal - Encoding
// ---------------------------------------------------------------------------

func TestMarshal_RoundTrip(t *testing.T) {
	t.Parallel()

	in := testConfig{Backend: "chrome", Server: serverSection{Addr: ":8080", Workers: 3}}
	data, err := yamlutil.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(data), "workers: 3") {
		t.Errorf("output missing nested field, got:\n%s", data)
	}

	var out testConfig
	if err := yamlutil.UnmarshalStrict(data, &out); err != nil {
		t.Fatalf("UnmarshalStrict() error = %v", err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
