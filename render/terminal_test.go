package render

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWrapWidthNonTerminal(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out.txt"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if IsTerminal(f) {
		t.Fatal("regular file reported as terminal")
	}
	if got := WrapWidth(f, 72); got != 72 {
		t.Errorf("got width %d, expected 72", got)
	}
}
