package prompts

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"github.com/pelletier/go-toml/v2"
)

//go:embed prompts.toml
var defaultDocument []byte

// ModelParams are the completion defaults shipped with the prompts.
type ModelParams struct {
	Name        string  `toml:"name"`
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float32 `toml:"temperature"`
}

type entry struct {
	Template string `toml:"template"`
}

type document struct {
	Model             ModelParams `toml:"model"`
	URLExtraction     entry       `toml:"url_extraction"`
	DescriptionLookup entry       `toml:"description_lookup"`
}

// Catalog renders the completion prompts. It is safe for concurrent use.
type Catalog struct {
	model             ModelParams
	urlExtraction     *template.Template
	descriptionLookup *template.Template
}

var (
	defaultCatalog *Catalog
	loadOnce       sync.Once
	loadErr        error
)

// Default returns the catalog built from the embedded prompts.toml.
// The document is parsed once and cached.
func Default() (*Catalog, error) {
	loadOnce.Do(func() {
		defaultCatalog, loadErr = Parse(defaultDocument)
	})
	if loadErr != nil {
		return nil, loadErr
	}
	return defaultCatalog, nil
}

// Parse builds a catalog from a TOML prompts document.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse prompts document: %w", err)
	}

	urlTmpl, err := compile("url_extraction", doc.URLExtraction.Template)
	if err != nil {
		return nil, err
	}
	descTmpl, err := compile("description_lookup", doc.DescriptionLookup.Template)
	if err != nil {
		return nil, err
	}

	return &Catalog{
		model:             doc.Model,
		urlExtraction:     urlTmpl,
		descriptionLookup: descTmpl,
	}, nil
}

func compile(name, text string) (*template.Template, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("prompt %q has no template", name)
	}
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse prompt %q: %w", name, err)
	}
	return tmpl, nil
}

// Model returns the default completion parameters.
func (c *Catalog) Model() ModelParams {
	return c.model
}

// URLExtraction asks for the description and cost of the product at url.
func (c *Catalog) URLExtraction(url string) (string, error) {
	return render(c.urlExtraction, url)
}

// DescriptionLookup asks for a vendor URL and cost matching description.
func (c *Catalog) DescriptionLookup(description string) (string, error) {
	return render(c.descriptionLookup, description)
}

func render(tmpl *template.Template, input string) (string, error) {
	var b strings.Builder
	if err := tmpl.Execute(&b, struct{ Input string }{Input: input}); err != nil {
		return "", fmt.Errorf("failed to render prompt %q: %w", tmpl.Name(), err)
	}
	return b.String(), nil
}
