package main

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/sidetoc/internal/doctree"
	"github.com/dgallion1/sidetoc/internal/htmldoc"
	"github.com/dgallion1/sidetoc/internal/site"
	"github.com/dgallion1/sidetoc/internal/widget"
)

type options struct {
	contentClass string
	style        string
	verbose      bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "tocgen",
		Short: "Build and render article tables of contents",
		Long: `tocgen reads a markdown or HTML article, builds the nested outline of its
headings and either prints it or writes the page with the sidebar mounted.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.contentClass, "content-class", "prose", "class of the element holding the article in HTML input")
	root.PersistentFlags().StringVar(&opts.style, "style", "github", "syntax highlighting style for markdown input")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log widget activity to stderr")

	root.AddCommand(newOutlineCmd(opts), newRenderCmd(opts))
	return root
}

func (o *options) logger(cmd *cobra.Command) *slog.Logger {
	if !o.verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func (o *options) widgetConfig() widget.Config {
	cfg := widget.DefaultConfig()
	cfg.ContentClass = o.contentClass
	return cfg
}

func isMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// outline builds the outline of a markdown or HTML file.
func (o *options) outline(path string) (*doctree.Outline, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if isMarkdown(path) {
		r, err := site.NewMarkdown(o.style).Render(src)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", path, err)
		}
		return r.Outline, nil
	}
	outline, _, err := site.PageOutline(bytes.NewReader(src), o.contentClass)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return outline, nil
}

// prerender returns the page for path with the sidebar mounted.
func (o *options) prerender(path string, log *slog.Logger) (string, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	if isMarkdown(path) {
		r, err := site.NewMarkdown(o.style).Render(src)
		if err != nil {
			return "", fmt.Errorf("render %s: %w", path, err)
		}
		opts := site.PageOptions{Prerender: true, Widget: o.widgetConfig()}
		return site.Page(site.Slug(path), r, opts, log)
	}

	doc, err := htmldoc.Parse(bytes.NewReader(src))
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", path, err)
	}
	if err := site.Prerender(doc, o.widgetConfig(), log); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := doc.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
