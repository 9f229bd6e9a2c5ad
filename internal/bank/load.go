package bank

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
)

//go:embed data/bank.json
var defaultBankJSON []byte

// document is the on-disk bank format.
type document struct {
	Version  string `json:"version"`
	Metadata struct {
		Title   string   `json:"title"`
		Lessons []Lesson `json:"lessons"`
	} `json:"metadata"`
	Questions []Question `json:"questions"`
}

// Load reads, schema-validates and indexes a bank document.
func Load(r io.Reader) (*Bank, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read bank: %w", err)
	}

	if err := validateDocument(raw); err != nil {
		return nil, err
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrInvalidBank, err)
	}

	if err := checkVersion(doc.Version); err != nil {
		return nil, err
	}

	b, err := New(doc.Version, doc.Metadata.Lessons, doc.Questions)
	if err != nil {
		return nil, err
	}
	b.title = doc.Metadata.Title
	return b, nil
}

// LoadFile loads a bank from a JSON file on disk.
func LoadFile(path string) (*Bank, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bank %s: %w", path, err)
	}
	defer f.Close()

	b, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("load bank %s: %w", path, err)
	}
	return b, nil
}

var loadDefault = sync.OnceValues(func() (*Bank, error) {
	return Load(bytes.NewReader(defaultBankJSON))
})

// Default returns the embedded bank. It is parsed once per process.
func Default() (*Bank, error) {
	return loadDefault()
}

// Open returns the bank at path, or the embedded bank when path is empty.
func Open(path string) (*Bank, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}
