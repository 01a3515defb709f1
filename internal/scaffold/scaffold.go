package scaffold

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/tiagomgelias/kernel/internal/manifest"
	"github.com/tiagomgelias/kernel/internal/registry"
)

//go:embed scaffolds
var scaffoldFS embed.FS

// templatesDir is the embedded directory holding the module template set.
const templatesDir = "scaffolds/module"

// Directories created empty in every new module.
var moduleDirs = []string{"public", "migrations"}

// Data holds all template variables available to scaffold templates.
type Data struct {
	Name         string // e.g., "app/shop"
	Type         registry.ModuleType
	Description  string
	Version      string
	Bootstrapper string
	Priority     int
	Requires     []string
	Year         int
}

// Result holds the outcome of a scaffold generation.
type Result struct {
	OutputDir string
	Files     []string
	Warnings  []string
}

// NewData creates Data with defaults for a module called name.
func NewData(name string, typ registry.ModuleType) *Data {
	return &Data{
		Name:        name,
		Type:        typ,
		Description: fmt.Sprintf("The %s %s module", name, typ),
		Version:     "0.1.0",
		Year:        time.Now().Year(),
	}
}

// Generate writes a new module skeleton to outputDir and validates the
// generated manifest. outputDir must not exist or be empty.
func Generate(data *Data, outputDir string) (*Result, error) {
	entries, err := fs.ReadDir(scaffoldFS, templatesDir)
	if err != nil {
		return nil, fmt.Errorf("template set not found: %w", err)
	}

	if existing, err := os.ReadDir(outputDir); err == nil && len(existing) > 0 {
		return nil, fmt.Errorf("output directory %s is not empty; remove existing files first", outputDir)
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	result := &Result{OutputDir: outputDir}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		tmplBytes, err := fs.ReadFile(scaffoldFS, path.Join(templatesDir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", entry.Name(), err)
		}

		tmpl, err := template.New(entry.Name()).Parse(string(tmplBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", entry.Name(), err)
		}
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("executing template %s: %w", entry.Name(), err)
		}

		outName := strings.TrimSuffix(entry.Name(), ".tmpl")
		if err := os.WriteFile(filepath.Join(outputDir, outName), buf.Bytes(), 0644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", outName, err)
		}
		result.Files = append(result.Files, outName)
	}

	for _, d := range moduleDirs {
		if err := os.MkdirAll(filepath.Join(outputDir, d), 0755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", d, err)
		}
		result.Files = append(result.Files, d+"/")
	}

	valResult, err := manifest.ValidateFile(filepath.Join(outputDir, manifest.FileName))
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Could not validate manifest: %v", err))
	} else if !valResult.Valid {
		result.Warnings = append(result.Warnings, valResult.Messages()...)
	}

	return result, nil
}
