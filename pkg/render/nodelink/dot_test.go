package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/cximage/pkg/cx"
	"github.com/matzehuels/cximage/pkg/errors"
)

const testCX = `[{"networkAttributes":[{"n":"name","v":"p53"}]},` +
	`{"nodes":[{"@id":1,"n":"TP53","r":"hgnc:11998"},{"@id":2,"n":"MDM2"},{"@id":3}]},` +
	`{"edges":[{"@id":4,"s":1,"t":2,"i":"binds"},{"@id":5,"s":2,"t":99}]}]`

func testDoc(t *testing.T) *cx.Document {
	t.Helper()
	doc, err := cx.Parse([]byte(testCX))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestToDOT(t *testing.T) {
	dot, err := ToDOT(testDoc(t), Options{})
	if err != nil {
		t.Fatalf("ToDOT: %v", err)
	}

	for _, want := range []string{
		`label="p53";`,
		`n1 [label="TP53"];`,
		`n2 [label="MDM2"];`,
		`n3 [label="3"];`,
		`n1 -> n2;`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "n99") {
		t.Error("dangling edge should be skipped")
	}
}

func TestToDOT_Detailed(t *testing.T) {
	dot, err := ToDOT(testDoc(t), Options{Detailed: true})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(dot, `n1 -> n2 [label="binds"];`) {
		t.Errorf("missing interaction label:\n%s", dot)
	}
	if !strings.Contains(dot, `label="TP53\nhgnc:11998"`) {
		t.Errorf("missing represents line:\n%s", dot)
	}
}

func TestToDOT_MaxNodes(t *testing.T) {
	_, err := ToDOT(testDoc(t), Options{MaxNodes: 2})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
	if _, err := ToDOT(testDoc(t), Options{MaxNodes: -1}); err != nil {
		t.Errorf("unlimited: %v", err)
	}
}

func TestRenderSVG(t *testing.T) {
	dot, err := ToDOT(testDoc(t), Options{})
	if err != nil {
		t.Fatal(err)
	}
	svg, err := RenderSVG(context.Background(), dot)
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") || !strings.Contains(string(svg), "TP53") {
		t.Errorf("unexpected SVG output: %.200s", svg)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 100.00 50.00" xmlns="x"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50">`) {
		t.Errorf("normalizeViewBox = %s", out)
	}
}

func TestPathExt(t *testing.T) {
	tests := map[string]string{"a.png": ".png", "dir.v2/out": "", "x.SVG": ".SVG", "plain": ""}
	for in, want := range tests {
		if got := pathExt(in); got != want {
			t.Errorf("pathExt(%q) = %q, want %q", in, got, want)
		}
	}
}
