package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/JonMunkholm/rvforms/internal/core"
)

func TestIndex(t *testing.T) {
	infos := []core.TemplateInfo{
		{Variant: core.VariantInstrument, Label: "Instrument"},
		{Variant: core.VariantValve, Label: `Valve <b>&</b> "actuator"`},
	}

	var buf bytes.Buffer
	if err := Index(infos).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"<!doctype html>",
		`value="Instrument" checked>`,
		`value="Valve">`,
		"Valve &lt;b&gt;&amp;&lt;/b&gt; &#34;actuator&#34;",
		`name="header_row"`,
		`new EventSource(body.progress)`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered page missing %q", want)
		}
	}
	if strings.Contains(out, "<b>") {
		t.Error("label was not escaped")
	}
	if n := strings.Count(out, " checked"); n != 1 {
		t.Errorf("%d checked radios, want 1", n)
	}
}

func TestIndex_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Index(nil).Render(ctx, &bytes.Buffer{}); err == nil {
		t.Error("Render() with a canceled context should fail")
	}
}
