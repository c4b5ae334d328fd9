package notebook

import (
	"bytes"
	"strings"
	"testing"
)

const sampleNotebook = `{
 "nbformat": 4,
 "nbformat_minor": 5,
 "metadata": {"language_info": {"name": "python"}},
 "cells": [
  {"cell_type": "markdown", "source": ["# Heart Disease\n", "Uses <b>six</b> features."]},
  {"cell_type": "code", "execution_count": 3, "source": "df.head()\nprint(x < 5)",
   "outputs": [
    {"output_type": "stream", "name": "stdout", "text": ["rows: 270\n"]},
    {"output_type": "execute_result", "execution_count": 3, "data": {"text/plain": ["   Age  Sex\n"], "text/html": ["<table><tr><td>70</td></tr></table>"]}},
    {"output_type": "display_data", "data": {"image/png": "iVBORw0K\nGgo=", "text/plain": "<Figure>"}},
    {"output_type": "error", "ename": "ValueError", "evalue": "bad", "traceback": ["\u001b[0;31mValueError\u001b[0m: bad"]}
   ]},
  {"cell_type": "code", "execution_count": null, "source": [], "outputs": []}
 ]
}`

func convert(t *testing.T, src string) string {
	t.Helper()
	var out bytes.Buffer
	if err := NewConverter().Convert(strings.NewReader(src), &out, "Heart <Report>"); err != nil {
		t.Fatalf("convert: %v", err)
	}
	return out.String()
}

func TestConvert(t *testing.T) {
	page := convert(t, sampleNotebook)

	want := []string{
		"<title>Heart &lt;Report&gt;</title>",
		"<h1>Heart Disease</h1>",
		"<b>six</b>",
		"In [3]:",
		"In [ ]:",
		"print(x &lt; 5)",
		"rows: 270",
		"<table><tr><td>70</td></tr></table>",
		`<img src="data:image/png;base64,iVBORw0KGgo=">`,
		"ValueError: bad",
	}
	for _, w := range want {
		if !strings.Contains(page, w) {
			t.Errorf("page missing %q", w)
		}
	}
	if strings.Contains(page, "\x1b[") {
		t.Error("ANSI escapes were not stripped")
	}
	// text/html wins over text/plain for the same output
	if strings.Contains(page, "   Age  Sex") {
		t.Error("plain text rendered alongside html")
	}
}

func TestConvertErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{name: "not json", src: "not a notebook"},
		{name: "old format", src: `{"nbformat": 3, "cells": []}`},
		{name: "bad source", src: `{"nbformat": 4, "cells": [{"cell_type": "code", "source": 12}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			if err := NewConverter().Convert(strings.NewReader(tt.src), &out, "x"); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
