package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rpminspect/rpminspect"
)

func sampleResults() []rpminspect.Result {
	return []rpminspect.Result{
		{Severity: rpminspect.Bad, Inspection: "elf", Message: "missing PT_GNU_STACK", File: "/usr/bin/foo"},
		{Severity: rpminspect.Info, Inspection: "metadata", Message: "vendor unchanged"},
	}
}

func TestBuild(t *testing.T) {
	t.Parallel()
	doc := Build(sampleResults(), rpminspect.Bad)
	if doc.Worst != rpminspect.Bad.String() {
		t.Errorf("Worst = %q, want %q", doc.Worst, rpminspect.Bad.String())
	}
	if len(doc.Results) != 2 {
		t.Fatalf("len(Results) = %d, want 2", len(doc.Results))
	}
	if doc.Results[0].Inspection != "elf" || doc.Results[0].File != "/usr/bin/foo" {
		t.Errorf("unexpected first record: %+v", doc.Results[0])
	}
	if doc.Results[1].File != "" {
		t.Errorf("expected empty File for the second record, got %q", doc.Results[1].File)
	}
}

func TestRenderText(t *testing.T) {
	t.Parallel()
	doc := Build(sampleResults(), rpminspect.Bad)
	var buf bytes.Buffer
	if err := Render(&buf, doc, "text"); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "/usr/bin/foo") {
		t.Errorf("expected the file name in text output, got %q", out)
	}
	if !strings.Contains(out, "worst severity: BAD") {
		t.Errorf("expected a worst-severity trailer, got %q", out)
	}
}

func TestRenderJSON(t *testing.T) {
	t.Parallel()
	doc := Build(sampleResults(), rpminspect.Bad)
	var buf bytes.Buffer
	if err := Render(&buf, doc, "json"); err != nil {
		t.Fatal(err)
	}
	var decoded Document
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output did not round-trip as JSON: %v", err)
	}
	if len(decoded.Results) != 2 {
		t.Errorf("decoded %d results, want 2", len(decoded.Results))
	}
}

func TestRenderXML(t *testing.T) {
	t.Parallel()
	doc := Build(sampleResults(), rpminspect.Bad)
	var buf bytes.Buffer
	if err := Render(&buf, doc, "xml"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "<rpminspect>") {
		t.Errorf("expected the document root element, got %q", buf.String())
	}
}

func TestRenderYAML(t *testing.T) {
	t.Parallel()
	doc := Build(sampleResults(), rpminspect.Bad)
	var buf bytes.Buffer
	if err := Render(&buf, doc, "yaml"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "worst:") {
		t.Errorf("expected a worst key in yaml output, got %q", buf.String())
	}
}

func TestRenderMarkdown(t *testing.T) {
	t.Parallel()
	doc := Build(sampleResults(), rpminspect.Bad)
	var buf bytes.Buffer
	if err := Render(&buf, doc, "markdown"); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "| Severity |") {
		t.Errorf("expected a markdown table header, got %q", out)
	}
}

func TestRenderSummary(t *testing.T) {
	t.Parallel()
	doc := Build(sampleResults(), rpminspect.Bad)
	var buf bytes.Buffer
	if err := Render(&buf, doc, "summary"); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "worst=BAD") {
		t.Errorf("expected a worst= trailer, got %q", out)
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	t.Parallel()
	doc := Build(nil, rpminspect.OK)
	var buf bytes.Buffer
	if err := Render(&buf, doc, "pdf"); err == nil {
		t.Error("expected an error for an unrecognized format")
	}
}
