package generator

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sarchlab/ramgen/tb"
)

// File is one artifact of a bundle as written to disk.
type File struct {
	Name string
	Text string
}

// Files lists the artifacts of b: the module, the testbench and, when it is
// not already the testbench, the verification environment.
func (b *Bundle) Files() []File {
	files := []File{{Name: b.ModuleName + ".sv", Text: b.ModuleText}}

	if b.Testbench == tb.VerificationEnv {
		return append(files, File{Name: b.ModuleName + "_uvm.sv", Text: b.TestbenchText})
	}

	files = append(files, File{Name: b.ModuleName + "_tb.sv", Text: b.TestbenchText})

	if b.HasVerification {
		files = append(files, File{Name: b.ModuleName + "_uvm.sv", Text: b.VerificationText})
	}

	return files
}

// FileNames lists the names Files would write.
func (b *Bundle) FileNames() []string {
	files := b.Files()

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}

	return names
}

// WriteFiles writes every artifact into dir, creating it when needed, and
// returns the written paths.
func (b *Bundle) WriteFiles(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	var paths []string

	for _, f := range b.Files() {
		path := filepath.Join(dir, f.Name)
		if err := os.WriteFile(path, []byte(f.Text), 0o644); err != nil {
			return paths, fmt.Errorf("writing %s: %w", path, err)
		}

		paths = append(paths, path)
	}

	return paths, nil
}
