package generator

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"

	"datamodeler/internal/digest"
)

const defaultTemplateName = "data_model"

// DefaultTemplate asks for warehouse DDL and load scripts for the digest.
const DefaultTemplate = `You are a senior data warehouse engineer.

Below is a subset of a PostgreSQL source schema. Each table lists only the
columns that must be carried into the warehouse, with their source types.

{{ .Schema }}
For every source table above:

1. Write a CREATE TABLE statement for the matching warehouse table. Keep the
   listed columns, map each source type to a suitable warehouse type and add
   these audit columns:
   - created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
   - updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
   - batch_id VARCHAR(64) NOT NULL
2. Write the load script (INSERT ... SELECT) that copies the listed columns
   from the source table into the warehouse table and fills the audit columns,
   taking batch_id from a :batch_id parameter.

Return SQL only, grouped per table, with a one-line comment above each statement.
`

// PromptData is what prompt templates are executed with.
type PromptData struct {
	Schema string
	Tables digest.Digest
}

// Composer renders the generation prompt from a schema digest.
type Composer struct {
	tmpl *template.Template
}

var funcMap = template.FuncMap{
	"toUpperCase": strings.ToUpper,
	"toLowerCase": strings.ToLower,
	"join":        strings.Join,
	"trim":        strings.TrimSpace,
}

// NewComposer parses the template at templatePath, or DefaultTemplate when
// templatePath is empty.
func NewComposer(templatePath string) (*Composer, error) {
	text := DefaultTemplate
	if templatePath != "" {
		content, err := os.ReadFile(templatePath)
		if err != nil {
			return nil, fmt.Errorf("error reading prompt template %s: %w", templatePath, err)
		}
		text = string(content)
	}

	tmpl, err := template.New(defaultTemplateName).Funcs(funcMap).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("error parsing prompt template: %w", err)
	}

	return &Composer{tmpl: tmpl}, nil
}

// Compose substitutes the rendered digest into the template. It does no I/O.
func (c *Composer) Compose(d digest.Digest) (string, error) {
	var buf bytes.Buffer
	if err := c.tmpl.Execute(&buf, PromptData{Schema: d.Render(), Tables: d}); err != nil {
		return "", fmt.Errorf("error executing prompt template: %w", err)
	}
	return buf.String(), nil
}
