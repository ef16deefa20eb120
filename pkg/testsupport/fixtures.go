package testsupport

import "os"

// LoadFixture reads a testdata file, keeping fixture access uniform across
// packages.
func LoadFixture(path string) ([]byte, error) {
	return os.ReadFile(path)
}
