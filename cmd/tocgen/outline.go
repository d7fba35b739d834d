package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/sidetoc/internal/doctree"
)

func newOutlineCmd(opts *options) *cobra.Command {
	var (
		asJSON  bool
		flat    bool
		heading string
	)
	cmd := &cobra.Command{
		Use:   "outline <file>",
		Short: "Print the nested outline of an article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := opts.outline(args[0])
			if err != nil {
				return err
			}
			if heading != "" {
				e := o.Find(heading)
				if e == nil {
					return fmt.Errorf("no heading %q in %s", heading, args[0])
				}
				fmt.Fprintln(cmd.OutOrStdout(), strings.Join(o.Breadcrumb(heading), " > "))
				o = &doctree.Outline{Entries: []*doctree.Entry{e}}
			}
			switch {
			case asJSON:
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(o)
			case flat:
				return printFlat(cmd.OutOrStdout(), o)
			}
			return printTree(cmd.OutOrStdout(), o)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the outline as JSON")
	cmd.Flags().BoolVar(&flat, "flat", false, "print one heading per line in document order")
	cmd.Flags().StringVar(&heading, "heading", "", "print only the section under this heading id, after its breadcrumb")
	return cmd
}

func printFlat(w io.Writer, o *doctree.Outline) error {
	for _, e := range o.Flatten() {
		if _, err := fmt.Fprintf(w, "h%d\t#%s\t%s\n", e.Level, e.HeadingID, e.Label); err != nil {
			return err
		}
	}
	return nil
}

func printTree(w io.Writer, o *doctree.Outline) error {
	if o.Len() == 0 {
		_, err := fmt.Fprintln(w, "(no headings)")
		return err
	}
	var err error
	o.Walk(func(e *doctree.Entry, depth int) {
		if err != nil {
			return
		}
		_, err = fmt.Fprintf(w, "%s- %s (#%s)\n", strings.Repeat("  ", depth), e.Label, e.HeadingID)
	})
	return err
}
