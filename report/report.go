// Package report renders a run's accumulated results into one of the
// output formats the command line exposes: text, json, xml, yaml,
// markdown, or a one-line-per-severity summary.
//
// Grounded in the teacher's ScanReport/ScanRecord json-tagged view struct
// (scanreport.go): results are first projected into a plain, tagged struct
// before being handed to the format-specific encoder, rather than encoding
// [rpminspect.Result] directly.
package report

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rpminspect/rpminspect"
)

// Record is the renderable, tagged view of one [rpminspect.Result].
type Record struct {
	Severity   string `json:"severity" yaml:"severity" xml:"severity"`
	Inspection string `json:"inspection" yaml:"inspection" xml:"inspection"`
	Message    string `json:"message" yaml:"message" xml:"message"`
	Verb       string `json:"verb,omitempty" yaml:"verb,omitempty" xml:"verb,omitempty"`
	Noun       string `json:"noun,omitempty" yaml:"noun,omitempty" xml:"noun,omitempty"`
	Arch       string `json:"arch,omitempty" yaml:"arch,omitempty" xml:"arch,omitempty"`
	File       string `json:"file,omitempty" yaml:"file,omitempty" xml:"file,omitempty"`
	Remedy     string `json:"remedy,omitempty" yaml:"remedy,omitempty" xml:"remedy,omitempty"`
	WaiverAuth string `json:"waiver_authority,omitempty" yaml:"waiver_authority,omitempty" xml:"waiver_authority,omitempty"`
}

// Document is the top-level renderable wrapper: every result plus the run's
// worst severity, the value the CLI's exit-code decision is based on.
type Document struct {
	XMLName xml.Name `json:"-" yaml:"-" xml:"rpminspect"`
	Worst   string   `json:"worst" yaml:"worst" xml:"worst"`
	Results []Record `json:"results" yaml:"results" xml:"result"`
}

// Build projects a [rpminspect.RunCtx]'s results into a [Document].
func Build(results []rpminspect.Result, worst rpminspect.Severity) Document {
	doc := Document{Worst: worst.String(), Results: make([]Record, len(results))}
	for i, r := range results {
		doc.Results[i] = Record{
			Severity:   r.Severity.String(),
			Inspection: r.Inspection,
			Message:    r.Message,
			Verb:       r.Verb,
			Noun:       r.Noun,
			Arch:       r.Arch,
			File:       r.File,
			Remedy:     r.Remedy,
			WaiverAuth: r.WaiverAuth.String(),
		}
	}
	return doc
}

// Render writes "doc" to "w" in the named format: text, json, xml, yaml,
// markdown, or summary. Returns an error for an unrecognized format name.
func Render(w io.Writer, doc Document, format string) error {
	switch format {
	case "", "text":
		return renderText(w, doc)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case "xml":
		enc := xml.NewEncoder(w)
		enc.Indent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return err
		}
		_, err := w.Write([]byte("\n"))
		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(doc)
	case "markdown":
		return renderMarkdown(w, doc)
	case "summary":
		return renderSummary(w, doc)
	default:
		return fmt.Errorf("report: unrecognized format %q", format)
	}
}

func renderText(w io.Writer, doc Document) error {
	for _, r := range doc.Results {
		line := fmt.Sprintf("%-10s %-14s %s", r.Severity, r.Inspection, r.Message)
		if r.File != "" {
			line += " (" + r.File + ")"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "\nworst severity: %s\n", doc.Worst)
	return err
}

func renderMarkdown(w io.Writer, doc Document) error {
	if _, err := fmt.Fprintln(w, "| Severity | Inspection | Message | File |"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "|---|---|---|---|"); err != nil {
		return err
	}
	for _, r := range doc.Results {
		if _, err := fmt.Fprintf(w, "| %s | %s | %s | %s |\n", r.Severity, r.Inspection, r.Message, r.File); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "\n**worst severity:** %s\n", doc.Worst)
	return err
}

func renderSummary(w io.Writer, doc Document) error {
	counts := make(map[string]int)
	for _, r := range doc.Results {
		counts[r.Severity]++
	}
	var keys []string
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%d ", k, counts[k])
	}
	_, err := fmt.Fprintf(w, "%sworst=%s\n", b.String(), doc.Worst)
	return err
}
