package notebook

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Document is a notebook source and the page it is published as.
type Document struct {
	Source string
	Output string
	Title  string
}

// Documents are the notebooks that ship with the service.
var Documents = []Document{
	{Source: "heart_disease.ipynb", Output: "heart_disease.html", Title: "Heart Disease Prediction"},
	{Source: "diabetese.ipynb", Output: "diabetes.html", Title: "Diabetes Prediction"},
}

// Publisher copies notebooks into the served directory and renders them.
type Publisher struct {
	sourceDir string
	outputDir string
	docs      []Document
	converter *Converter
	logger    *zap.Logger
}

func NewPublisher(sourceDir, outputDir string, docs []Document, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{
		sourceDir: sourceDir,
		outputDir: outputDir,
		docs:      docs,
		converter: NewConverter(),
		logger:    logger.Named("notebook"),
	}
}

func (p *Publisher) SourceDir() string {
	return p.sourceDir
}

// Lookup finds the document whose source file has the given base name.
func (p *Publisher) Lookup(source string) (Document, bool) {
	for _, d := range p.docs {
		if d.Source == source {
			return d, true
		}
	}
	return Document{}, false
}

// PublishAll publishes every document. Missing sources are skipped and
// conversion failures are logged; neither stops the others.
func (p *Publisher) PublishAll() (int, error) {
	if err := os.MkdirAll(p.outputDir, 0o755); err != nil {
		return 0, fmt.Errorf("create notebooks dir: %w", err)
	}

	published := 0
	for _, doc := range p.docs {
		err := p.Publish(doc)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			p.logger.Warn("notebook not found", zap.String("source", doc.Source))
		case err != nil:
			p.logger.Error("publish notebook failed", zap.String("source", doc.Source), zap.Error(err))
		default:
			published++
		}
	}
	return published, nil
}

// Publish copies the raw notebook next to its rendered page.
func (p *Publisher) Publish(doc Document) error {
	raw, err := os.ReadFile(filepath.Join(p.sourceDir, doc.Source))
	if err != nil {
		return err
	}
	if err := writeAtomic(filepath.Join(p.outputDir, doc.Source), raw); err != nil {
		return fmt.Errorf("copy notebook: %w", err)
	}

	var page bytes.Buffer
	if err := p.converter.Convert(bytes.NewReader(raw), &page, doc.Title); err != nil {
		return err
	}
	if err := writeAtomic(filepath.Join(p.outputDir, doc.Output), page.Bytes()); err != nil {
		return fmt.Errorf("write page: %w", err)
	}
	p.logger.Info("notebook published", zap.String("source", doc.Source), zap.String("output", doc.Output))
	return nil
}

// writeAtomic keeps readers from seeing a half-written page.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-"+filepath.Base(path))
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
