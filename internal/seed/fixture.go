package seed

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	models "portal/internal/domain/models/docsystem"
)

//go:embed fixtures/*.yaml
var fixtureFiles embed.FS

// Fixture is a YAML description of users and a folder forest
type Fixture struct {
	Users     []User     `yaml:"users"`
	Folders   []Folder   `yaml:"folders"`
	Documents []Document `yaml:"documents"` // unfiled
}

// User is a share candidate written to the user directory
type User struct {
	ID    string      `yaml:"id"`
	Label string      `yaml:"label"`
	Email string      `yaml:"email"`
	Role  models.Role `yaml:"role"`
}

// Folder nests subfolders and documents
type Folder struct {
	Name      string     `yaml:"name"`
	Folders   []Folder   `yaml:"folders"`
	Documents []Document `yaml:"documents"`
}

// Document is uploaded from inline content
type Document struct {
	Filename string  `yaml:"filename"`
	Title    string  `yaml:"title"` // defaults to the filename stem
	Content  string  `yaml:"content"`
	Shares   []Share `yaml:"shares"`
}

// Share grants the enclosing document to users
type Share struct {
	Grantees []string           `yaml:"grantees"`
	Role     models.Role        `yaml:"role"`
	Target   models.ShareTarget `yaml:"target"` // investors only
}

// Parse decodes a fixture; unknown keys are errors
func Parse(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f Fixture
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	return &f, nil
}

// Default returns the embedded demo fixture
func Default() (*Fixture, error) {
	data, err := fixtureFiles.ReadFile("fixtures/portal.yaml")
	if err != nil {
		return nil, fmt.Errorf("read default fixture: %w", err)
	}
	return Parse(bytes.NewReader(data))
}
