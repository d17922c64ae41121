package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/mcp-training/rubertaxi/game/engine"
	"github.com/wricardo/mcp-training/rubertaxi/game/tilemap"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newCommand()
	cmd.Writer = &out
	cmd.ErrWriter = &out
	err := cmd.Run(context.Background(), append([]string{"mapedit"}, args...))
	return out.String(), err
}

func readMap(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read map: %v", err)
	}
	return string(data)
}

func TestNewPaintFill(t *testing.T) {
	path := filepath.Join(t.TempDir(), "city.txt")

	if _, err := run(t, "new", "--width", "5", "--height", "3", "--tile", "2", path); err != nil {
		t.Fatalf("new failed: %v", err)
	}
	if got := readMap(t, path); got != "2,2,2,2,2\n2,2,2,2,2\n2,2,2,2,2\n" {
		t.Fatalf("Unexpected blank map:\n%s", got)
	}

	out, err := run(t, "fill", path, "0", "1", "4", "1", "1")
	if err != nil {
		t.Fatalf("fill failed: %v", err)
	}
	if !strings.Contains(out, "5 tile(s) changed") {
		t.Errorf("Expected 5 changes, got %q", out)
	}

	if _, err := run(t, "paint", path, "0", "1", "3"); err != nil {
		t.Fatalf("paint failed: %v", err)
	}
	if _, err := run(t, "erase", path, "4", "1"); err != nil {
		t.Fatalf("erase failed: %v", err)
	}

	want := "2,2,2,2,2\n3,1,1,1,0\n2,2,2,2,2\n"
	if got := readMap(t, path); got != want {
		t.Errorf("Expected map\n%s\ngot\n%s", want, got)
	}
}

func TestNew_RefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "city.txt")
	if err := os.WriteFile(path, []byte("1,1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := run(t, "new", path); err == nil {
		t.Fatal("Expected an error for an existing file")
	}
	if _, err := run(t, "new", "--force", "--width", "2", "--height", "2", path); err != nil {
		t.Fatalf("new --force failed: %v", err)
	}
	if got := readMap(t, path); got != "0,0\n0,0\n" {
		t.Errorf("Expected a blank 2x2 map, got %q", got)
	}
}

func TestEditErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "city.txt")
	if err := os.WriteFile(path, []byte("1,1\n1,1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"out of bounds", []string{"paint", path, "5", "0", "1"}, "outside the 2x2 map"},
		{"not an integer", []string{"paint", path, "a", "0", "1"}, "is not an integer"},
		{"missing args", []string{"fill", path, "0", "0"}, "wrong number of arguments"},
		{"missing file", []string{"show", filepath.Join(filepath.Dir(path), "nope.txt")}, "nope.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			if err == nil {
				t.Fatal("Expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}

	if got := readMap(t, path); got != "1,1\n1,1\n" {
		t.Errorf("Failed edits must not touch the file, got %q", got)
	}
}

func TestMissingFileIsMapLoadError(t *testing.T) {
	_, err := run(t, "stats", filepath.Join(t.TempDir(), "missing.txt"))
	var loadErr *tilemap.MapLoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("Expected *tilemap.MapLoadError, got %T: %v", err, err)
	}
}

func TestShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "city.txt")
	if err := os.WriteFile(path, []byte("2,2,2\n3,1,4\n0,5,6\n"), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "show", path)
	if err != nil {
		t.Fatalf("show failed: %v", err)
	}
	for _, line := range []string{" 0 ###", " 1 T=F", " 2 .DG"} {
		if !strings.Contains(out, line) {
			t.Errorf("Expected line %q in\n%s", line, out)
		}
	}

	out, err = run(t, "show", "--ids", path)
	if err != nil {
		t.Fatalf("show --ids failed: %v", err)
	}
	if out != "2,2,2\n3,1,4\n0,5,6\n" {
		t.Errorf("Expected raw IDs, got %q", out)
	}
}

func TestStats(t *testing.T) {
	c, err := tilemap.NewCanvas(4, 2)
	if err != nil {
		t.Fatal(err)
	}
	c.Fill(0, 0, 3, 0, 1)
	c.Paint(0, 0, 3)
	c.Paint(3, 0, 3)
	c.Paint(1, 1, 4)

	var out bytes.Buffer
	stats(&out, c, engine.DefaultClassification())

	got := out.String()
	for _, want := range []string{"Size: 4x2 (8 tiles)", "    0 . 3", "    3 T 2", "Stands: 2, Pumps: 1, Diners: 0, Garages: 0"} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected %q in\n%s", want, got)
		}
	}
}

func TestGlyph(t *testing.T) {
	cls := engine.DefaultClassification()
	tests := map[int]byte{0: '.', 1: '=', 2: '#', 3: 'T', 4: 'F', 5: 'D', 6: 'G', 9: '#'}
	for id, want := range tests {
		if got := glyph(id, cls); got != want {
			t.Errorf("glyph(%d) = %q, want %q", id, got, want)
		}
	}
}
