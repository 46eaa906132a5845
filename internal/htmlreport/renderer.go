// =============================================================================
// Supplier Follow-up Mailer - HTML Report Renderer
// =============================================================================
//
// This module turns one supplier group into the HTML body of its follow-up
// email.
//
// BODY STRUCTURE:
//
//   <intro block>                        <!-- Markdown or inline HTML -->
//   <table ...>                          <!-- Fixed column order -->
//     <tr style="...">                   <!-- Header row, exact field names -->
//       <th>Department</th> ... <th>End User</th>
//     </tr>
//     <tr>                               <!-- One row per group row -->
//       <td>Maintenance</td> ... <td>J. Smith</td>
//     </tr>
//   </table>
//   <signature block>
//
// ESCAPING:
//   - Cell values are always HTML-escaped.
//   - Intro and signature are configuration, converted from Markdown and
//     passed through an allow-list sanitizer.
//
// =============================================================================

package htmlreport

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/ginjaninja78/po-followup-mailer/internal/grouper"
	"github.com/ginjaninja78/po-followup-mailer/internal/types"
)

// ErrRenderFailed wraps template and Markdown failures.
var ErrRenderFailed = errors.New("render failed")

// =============================================================================
// TEMPLATES
// =============================================================================

const tableTemplate = `<table border="1" cellpadding="5" cellspacing="0" style="border-collapse: collapse; font-family: Arial, sans-serif;">
<tr style="background-color: #f2f2f2;">{{range .Headers}}<th>{{.}}</th>{{end}}</tr>
{{range .Rows}}<tr>{{range .}}{{if .Highlight}}<td style="background-color: yellow;">{{else}}<td>{{end}}{{.Text}}</td>{{end}}</tr>
{{end}}</table>`

const bodyTemplate = `<div style="font-family: Arial, sans-serif;">
{{.Intro}}
{{.Table}}
<br>
{{.Signature}}
</div>`

type cell struct {
	Text      string
	Highlight bool
}

type tableData struct {
	Headers []string
	Rows    [][]cell
}

type bodyData struct {
	Intro     template.HTML
	Table     template.HTML
	Signature template.HTML
}

// =============================================================================
// RENDERER
// =============================================================================

// Options configures a Renderer.
type Options struct {
	// Columns is the table column order.
	// Default: types.RequiredFields
	Columns []string

	// HighlightFields are columns whose non-blank cells get a yellow
	// background.
	HighlightFields []string

	// Intro is placed above the table. Markdown with inline HTML.
	Intro string

	// Signature is placed below the table. Markdown with inline HTML.
	Signature string
}

// Renderer builds HTML email bodies for supplier groups. It is safe for
// concurrent use once constructed.
type Renderer struct {
	table     *template.Template
	body      *template.Template
	columns   []string
	highlight map[string]struct{}
	intro     template.HTML
	signature template.HTML
}

// New parses the templates and pre-renders the intro and signature.
func New(opts Options) (*Renderer, error) {
	if len(opts.Columns) == 0 {
		opts.Columns = types.RequiredFields
	}

	r := &Renderer{
		table:     template.Must(template.New("table").Parse(tableTemplate)),
		body:      template.Must(template.New("body").Parse(bodyTemplate)),
		columns:   opts.Columns,
		highlight: make(map[string]struct{}, len(opts.HighlightFields)),
	}
	for _, f := range opts.HighlightFields {
		r.highlight[f] = struct{}{}
	}

	md := goldmark.New(goldmark.WithRendererOptions(gmhtml.WithUnsafe()))
	policy := messagePolicy()

	var err error
	if r.intro, err = renderBlock(md, policy, opts.Intro); err != nil {
		return nil, fmt.Errorf("intro: %w", err)
	}
	if r.signature, err = renderBlock(md, policy, opts.Signature); err != nil {
		return nil, fmt.Errorf("signature: %w", err)
	}

	return r, nil
}

// Columns returns the table column order.
func (r *Renderer) Columns() []string {
	return r.columns
}

// RenderTable renders the group's rows as an HTML table: one header row with
// the column names, then one row per group row in group order.
func (r *Renderer) RenderTable(g grouper.Group) (string, error) {
	data := tableData{
		Headers: r.columns,
		Rows:    make([][]cell, 0, len(g.Rows)),
	}

	for _, row := range g.Rows {
		cells := make([]cell, 0, len(r.columns))
		for _, col := range r.columns {
			v := row.Get(col)
			_, hl := r.highlight[col]
			cells = append(cells, cell{Text: v.String(), Highlight: hl && !v.IsBlank()})
		}
		data.Rows = append(data.Rows, cells)
	}

	var buf bytes.Buffer
	if err := r.table.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: table: %v", ErrRenderFailed, err)
	}
	return buf.String(), nil
}

// RenderBody renders the complete HTML body: intro, table and signature.
func (r *Renderer) RenderBody(g grouper.Group) (string, error) {
	table, err := r.RenderTable(g)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	err = r.body.Execute(&buf, bodyData{
		Intro:     r.intro,
		Table:     template.HTML(table),
		Signature: r.signature,
	})
	if err != nil {
		return "", fmt.Errorf("%w: body: %v", ErrRenderFailed, err)
	}
	return buf.String(), nil
}

// =============================================================================
// MARKDOWN BLOCKS
// =============================================================================

func renderBlock(md goldmark.Markdown, policy *bluemonday.Policy, src string) (template.HTML, error) {
	if strings.TrimSpace(src) == "" {
		return "", nil
	}

	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("%w: markdown: %v", ErrRenderFailed, err)
	}

	return template.HTML(policy.Sanitize(buf.String())), nil
}

// messagePolicy allows the formatting used in business email copy.
func messagePolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowStandardURLs()
	p.AllowElements(
		"p", "br", "hr", "div", "span",
		"strong", "b", "em", "i", "u",
		"ul", "ol", "li",
		"h1", "h2", "h3", "h4",
		"blockquote",
	)
	p.AllowAttrs("href").OnElements("a")
	p.AllowStyles("background-color", "color", "font-weight").OnElements("span", "p", "div", "b", "strong")
	return p
}
