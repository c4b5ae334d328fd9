// Package notebook renders Jupyter notebooks to standalone HTML pages and
// keeps the published copies in sync with their sources.
package notebook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// multiline 兼容 nbformat 中字符串或字符串数组两种写法
type multiline string

func (m *multiline) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*m = multiline(s)
		return nil
	}
	var parts []string
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("expected string or list of strings: %w", err)
	}
	*m = multiline(strings.Join(parts, ""))
	return nil
}

type document struct {
	Cells    []cell `json:"cells"`
	Metadata struct {
		KernelSpec struct {
			DisplayName string `json:"display_name"`
		} `json:"kernelspec"`
		LanguageInfo struct {
			Name string `json:"name"`
		} `json:"language_info"`
	} `json:"metadata"`
	NBFormat int `json:"nbformat"`
}

type cell struct {
	CellType       string    `json:"cell_type"`
	Source         multiline `json:"source"`
	ExecutionCount *int      `json:"execution_count"`
	Outputs        []output  `json:"outputs"`
}

type output struct {
	OutputType     string               `json:"output_type"`
	Name           string               `json:"name"`
	Text           multiline            `json:"text"`
	Data           map[string]multiline `json:"data"`
	ExecutionCount *int                 `json:"execution_count"`
	EName          string               `json:"ename"`
	EValue         string               `json:"evalue"`
	Traceback      []string             `json:"traceback"`
}

var ansiEscape = regexp.MustCompile(`\x1b\[[0-9;]*[A-Za-z]`)

// renderedCell 模板使用的单元格
type renderedCell struct {
	Kind    string
	Prompt  string
	Body    template.HTML
	Outputs []template.HTML
}

type page struct {
	Title    string
	Language string
	Cells    []renderedCell
}

var pageTemplate = template.Must(template.New("notebook").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", Helvetica, Arial, sans-serif; margin: 0 auto; max-width: 980px; padding: 24px; color: #1f2328; }
.cell { margin: 16px 0; }
.prompt { color: #57606a; font-family: monospace; font-size: 12px; }
pre { background: #f6f8fa; border-radius: 6px; padding: 12px; overflow-x: auto; font-size: 13px; }
.output pre { background: #fff; border-left: 3px solid #d0d7de; }
.output.error pre { background: #fff5f5; border-left-color: #cf222e; }
.output img { max-width: 100%; }
table { border-collapse: collapse; }
td, th { border: 1px solid #d0d7de; padding: 4px 8px; }
</style>
</head>
<body data-language="{{.Language}}">
{{range .Cells}}<div class="cell {{.Kind}}">
{{if .Prompt}}<div class="prompt">{{.Prompt}}</div>{{end}}
{{.Body}}
{{range .Outputs}}{{.}}
{{end}}</div>
{{end}}</body>
</html>
`))

// Converter renders nbformat v4 documents.
type Converter struct {
	markdown goldmark.Markdown
}

func NewConverter() *Converter {
	return &Converter{
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
}

// Convert reads a notebook from r and writes a standalone HTML page to w.
func (c *Converter) Convert(r io.Reader, w io.Writer, title string) error {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return fmt.Errorf("decode notebook: %w", err)
	}
	if doc.NBFormat != 0 && doc.NBFormat < 4 {
		return fmt.Errorf("unsupported nbformat %d", doc.NBFormat)
	}

	p := page{Title: title, Language: doc.Metadata.LanguageInfo.Name}
	for i, cl := range doc.Cells {
		rendered, err := c.renderCell(cl)
		if err != nil {
			return fmt.Errorf("cell %d: %w", i, err)
		}
		p.Cells = append(p.Cells, rendered)
	}
	return pageTemplate.Execute(w, p)
}

func (c *Converter) renderCell(cl cell) (renderedCell, error) {
	switch cl.CellType {
	case "markdown":
		var buf bytes.Buffer
		if err := c.markdown.Convert([]byte(cl.Source), &buf); err != nil {
			return renderedCell{}, err
		}
		return renderedCell{Kind: "markdown", Body: template.HTML(buf.String())}, nil

	case "code":
		rc := renderedCell{
			Kind:   "code",
			Prompt: prompt("In", cl.ExecutionCount),
			Body:   preformatted(string(cl.Source)),
		}
		for _, out := range cl.Outputs {
			if rendered, ok := renderOutput(out); ok {
				rc.Outputs = append(rc.Outputs, rendered)
			}
		}
		return rc, nil

	default:
		// raw cells
		return renderedCell{Kind: "raw", Body: preformatted(string(cl.Source))}, nil
	}
}

func renderOutput(out output) (template.HTML, bool) {
	switch out.OutputType {
	case "stream":
		return wrap("output "+out.Name, preformatted(string(out.Text))), true

	case "execute_result", "display_data":
		if v, ok := out.Data["text/html"]; ok {
			return wrap("output", template.HTML(v)), true
		}
		for _, mime := range []string{"image/png", "image/jpeg"} {
			if v, ok := out.Data[mime]; ok {
				data := strings.Join(strings.Fields(string(v)), "")
				return wrap("output", template.HTML(`<img src="data:`+mime+`;base64,`+template.HTMLEscapeString(data)+`">`)), true
			}
		}
		if v, ok := out.Data["text/plain"]; ok {
			return wrap("output", preformatted(string(v))), true
		}
		return "", false

	case "error":
		lines := out.Traceback
		if len(lines) == 0 {
			lines = []string{out.EName + ": " + out.EValue}
		}
		text := ansiEscape.ReplaceAllString(strings.Join(lines, "\n"), "")
		return wrap("output error", preformatted(text)), true
	}
	return "", false
}

func prompt(label string, count *int) string {
	if count == nil {
		return label + " [ ]:"
	}
	return fmt.Sprintf("%s [%d]:", label, *count)
}

func preformatted(text string) template.HTML {
	return template.HTML("<pre>" + template.HTMLEscapeString(text) + "</pre>")
}

func wrap(class string, body template.HTML) template.HTML {
	return template.HTML(`<div class="` + template.HTMLEscapeString(class) + `">`) + body + "</div>"
}
