// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// fakeConverter implements Converter for testing. It returns canned bytes
// or an error and counts calls.
type fakeConverter struct {
	output []byte
	err    error
	calls  int
}

func (f *fakeConverter) Convert(_ context.Context, _ string) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.output, nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name       string
		file       string
		conv       *fakeConverter
		nilConv    bool
		wantOut    string // upgraded base name; empty means input unchanged
		wantErr    error
		wantAnyErr bool
		wantCalls  int
	}{
		{
			name:    "pptx passes through",
			file:    "deck.pptx",
			conv:    &fakeConverter{},
			wantOut: "",
		},
		{
			name:      "ppt is upgraded",
			file:      "deck.ppt",
			conv:      &fakeConverter{output: []byte("PK")},
			wantOut:   "deck.pptx",
			wantCalls: 1,
		},
		{
			name:      "upper-case extension is upgraded",
			file:      "OLD.PPT",
			conv:      &fakeConverter{output: []byte("PK")},
			wantOut:   "OLD.pptx",
			wantCalls: 1,
		},
		{
			name:    "unsupported extension",
			file:    "notes.key",
			conv:    &fakeConverter{},
			wantErr: ErrUnsupportedFormat,
		},
		{
			name:    "legacy without converter",
			file:    "deck.ppt",
			nilConv: true,
			wantErr: ErrUnsupportedFormat,
		},
		{
			name:       "converter failure",
			file:       "deck.ppt",
			conv:       &fakeConverter{err: errors.New("container crashed")},
			wantAnyErr: true,
			wantCalls:  1,
		},
		{
			name:       "empty converter output",
			file:       "deck.ppt",
			conv:       &fakeConverter{output: nil},
			wantAnyErr: true,
			wantCalls:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			src := filepath.Join(dir, tt.file)
			writeFile(t, src, "legacy")
			work := filepath.Join(dir, "work")

			var c Converter
			if !tt.nilConv {
				c = tt.conv
			}
			got, err := Normalize(context.Background(), c, src, work)

			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
			case tt.wantAnyErr:
				if err == nil {
					t.Fatal("expected error, got nil")
				}
			default:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if tt.wantOut == "" {
					if got != src {
						t.Errorf("path = %q, want %q", got, src)
					}
					break
				}
				want, err := UpgradePath(src, work)
				if err != nil {
					t.Fatal(err)
				}
				if got != want {
					t.Errorf("path = %q, want %q", got, want)
				}
				if filepath.Dir(got) != work || !strings.HasSuffix(got, "-"+tt.wantOut) {
					t.Errorf("path = %q, want %s/<hash>-%s", got, work, tt.wantOut)
				}
			}
			if tt.conv != nil && tt.conv.calls != tt.wantCalls {
				t.Errorf("converter calls = %d, want %d", tt.conv.calls, tt.wantCalls)
			}
		})
	}
}

func TestNormalize_ReusesFreshUpgrade(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "deck.ppt")
	writeFile(t, src, "legacy")
	work := filepath.Join(dir, "work")
	if err := os.MkdirAll(work, 0o755); err != nil {
		t.Fatal(err)
	}
	existing, err := UpgradePath(src, work)
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, existing, "already upgraded")
	later := time.Now().Add(time.Hour)
	if err := os.Chtimes(existing, later, later); err != nil {
		t.Fatal(err)
	}

	conv := &fakeConverter{output: []byte("new")}
	got, err := Normalize(context.Background(), conv, src, work)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != existing {
		t.Errorf("path = %q, want %q", got, existing)
	}
	if conv.calls != 0 {
		t.Errorf("converter should not run for a fresh upgrade, ran %d times", conv.calls)
	}
}

func TestNormalize_SameNameDifferentDirs(t *testing.T) {
	dir := t.TempDir()
	work := filepath.Join(dir, "work")
	var srcs []string
	for _, sub := range []string{"a", "b"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			t.Fatal(err)
		}
		src := filepath.Join(dir, sub, "programs.ppt")
		writeFile(t, src, "legacy "+sub)
		srcs = append(srcs, src)
	}

	conv := &fakeConverter{output: []byte("PK")}
	first, err := Normalize(context.Background(), conv, srcs[0], work)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Normalize(context.Background(), conv, srcs[1], work)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first == second {
		t.Errorf("both decks upgraded to %q", first)
	}
	if conv.calls != 2 {
		t.Errorf("converter calls = %d, want 2", conv.calls)
	}
}

func TestNeedsUpgrade(t *testing.T) {
	for path, want := range map[string]bool{
		"a.ppt":  true,
		"a.PPT":  true,
		"a.pptx": false,
		"a":      false,
	} {
		if got := NeedsUpgrade(path); got != want {
			t.Errorf("NeedsUpgrade(%q) = %v, want %v", path, got, want)
		}
	}
}

// fakeRuntime implements container.Runtime.
type fakeRuntime struct {
	imageErr error
	runErr   error
	gotImage string
	gotArgs  []string
}

func (f *fakeRuntime) Name() string                   { return "docker" }
func (f *fakeRuntime) Available(context.Context) bool { return true }
func (f *fakeRuntime) ImageExists(_ context.Context, image string) error {
	f.gotImage = image
	return f.imageErr
}
func (f *fakeRuntime) Run(_ context.Context, image string, args []string, stdin io.Reader, stdout io.Writer) error {
	if f.runErr != nil {
		return f.runErr
	}
	f.gotArgs = args
	data, _ := io.ReadAll(stdin)
	_, _ = stdout.Write(append([]byte("PK:"), data...))
	return nil
}

func TestOfficeConverter(t *testing.T) {
	rt := &fakeRuntime{}
	conv, err := NewOfficeConverter(context.Background(), rt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rt.gotImage != ImageOffice {
		t.Errorf("checked image %q, want %q", rt.gotImage, ImageOffice)
	}

	src := filepath.Join(t.TempDir(), "deck.ppt")
	writeFile(t, src, "legacy")
	out, err := conv.Convert(context.Background(), src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out) != "PK:legacy" {
		t.Errorf("output = %q", out)
	}
	if len(rt.gotArgs) != 1 || rt.gotArgs[0] != "pptx" {
		t.Errorf("args = %v, want [pptx]", rt.gotArgs)
	}
}

func TestNewOfficeConverter_MissingImage(t *testing.T) {
	_, err := NewOfficeConverter(context.Background(), &fakeRuntime{imageErr: errors.New("no such image")})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}
