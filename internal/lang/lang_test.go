package lang

import (
	"os"
	"path/filepath"
	"testing"
)

func writeDict(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("write dictionary: %v", err)
	}
	return dir
}

func TestLoadAndGet(t *testing.T) {
	dir := writeDict(t, "en.yaml", "watch: watch\nmadeBy: Made by %author\n")

	d, err := Load(dir, "en")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if v, ok := d.Get("madeBy"); !ok || v != "Made by %author" {
		t.Fatalf("forward lookup failed: %q, %v", v, ok)
	}
	if _, ok := d.Get("nope"); ok {
		t.Fatal("lookup of missing key reported found")
	}
	if d.Code() != "en" {
		t.Fatalf("unexpected code %q", d.Code())
	}
}

func TestLoadAcceptsYmlExtension(t *testing.T) {
	dir := writeDict(t, "de.yml", "watch: beobachten\n")
	d, err := Load(dir, "de")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if v, _ := d.Get("watch"); v != "beobachten" {
		t.Fatalf("unexpected value %q", v)
	}
}

func TestLoadMissingDictionary(t *testing.T) {
	if _, err := Load(t.TempDir(), "fr"); err == nil {
		t.Fatal("expected an error for a missing dictionary")
	}
}

func TestLoadRejectsNonStringValues(t *testing.T) {
	dir := writeDict(t, "en.yaml", "watch: watch\nbad:\n  nested: true\n")
	if _, err := Load(dir, "en"); err == nil {
		t.Fatal("expected load to fail on a non-string value")
	}
}

func TestReverseIsPartialInverse(t *testing.T) {
	d := New("en", map[string]string{
		"watch": "Watch",
		"list":  "List",
	})

	for key, text := range map[string]string{"watch": "watch", "list": "LIST"} {
		got, ok := d.Reverse(text)
		if !ok || got != key {
			t.Fatalf("reverse(%q) = %q, %v; want %q", text, got, ok, key)
		}
	}
	if _, ok := d.Reverse("unrelated"); ok {
		t.Fatal("reverse of unknown text reported found")
	}
}

func TestReverseAmbiguousValueIsDeterministic(t *testing.T) {
	d := New("en", map[string]string{
		"zeta":  "same",
		"alpha": "same",
		"mid":   "same",
	})

	// Lexicographically first key wins, every time.
	for i := 0; i < 10; i++ {
		got, ok := d.Reverse("same")
		if !ok || got != "alpha" {
			t.Fatalf("ambiguous reverse resolved to %q, want alpha", got)
		}
	}
}
