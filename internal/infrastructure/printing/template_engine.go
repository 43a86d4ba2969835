package printing

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TemplateEngine renders html/template documents with formatting helpers
type TemplateEngine struct {
	funcMap   template.FuncMap
	templates map[string]*template.Template
}

// NewTemplateEngine creates an engine with the built-in templates parsed
func NewTemplateEngine() (*TemplateEngine, error) {
	e := &TemplateEngine{templates: make(map[string]*template.Template)}
	e.funcMap = template.FuncMap{
		"formatMoney": formatMoney,
		"formatDate":  formatDate,
		"title":       titleCase,
		"upper":       strings.ToUpper,
		"shortID":     shortID,
		"status":      statusText,
	}

	if err := e.Register(TemplatePackingSlip, packingSlipTemplate); err != nil {
		return nil, err
	}
	return e, nil
}

// Register parses and stores a named template
func (e *TemplateEngine) Register(name, content string) error {
	tmpl, err := template.New(name).Funcs(e.funcMap).Parse(content)
	if err != nil {
		return fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	e.templates[name] = tmpl
	return nil
}

// Render executes a registered template
func (e *TemplateEngine) Render(name string, data any) (string, error) {
	tmpl, ok := e.templates[name]
	if !ok {
		return "", fmt.Errorf("template %s not registered", name)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", name, err)
	}
	return buf.String(), nil
}

// formatMoney renders 1234.5 as "$1,234.50"
func formatMoney(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	intPart, decPart, _ := strings.Cut(d.StringFixed(2), ".")
	var b strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteRune(',')
		}
		b.WriteRune(c)
	}
	return sign + "$" + b.String() + "." + decPart
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("January 2, 2006")
}

// titleCase upper-cases the first letter of each word, leaving the rest alone
func titleCase(s string) string {
	return cases.Title(language.English, cases.NoLower).String(s)
}

// shortID returns the first 8 hex characters, upper-cased
func shortID(id uuid.UUID) string {
	return strings.ToUpper(id.String()[:8])
}

// statusText turns PROCESSING_AT_SUPPLIER into "Processing At Supplier"
func statusText(s fmt.Stringer) string {
	return titleCase(strings.ToLower(strings.ReplaceAll(s.String(), "_", " ")))
}
