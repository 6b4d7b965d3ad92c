package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"text", FormatText},
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{"markdown", FormatMarkdown},
		{"md", FormatMarkdown},
		{"toon", FormatTOON},
		{"unknown", FormatText},
		{"", FormatText},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseFormat(tt.input); got != tt.want {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewFormatterWithFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	f, err := NewFormatter(fs, FormatJSON, "/out/report.json", true)
	if err != nil {
		t.Fatalf("NewFormatter() error: %v", err)
	}
	table := NewTable("", []string{"unused"}, [][]string{{"2"}}, nil, map[string]int{"unused": 2})
	if err := f.Output(table); err != nil {
		t.Fatalf("Output() error: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	data, err := afero.ReadFile(fs, "/out/report.json")
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if !strings.Contains(string(data), `"unused": 2`) {
		t.Errorf("file content = %q", data)
	}
}

func TestNewFormatterFileIsUncolored(t *testing.T) {
	fs := afero.NewMemMapFs()
	f, err := NewFormatter(fs, FormatText, "/report.txt", true)
	if err != nil {
		t.Fatalf("NewFormatter() error: %v", err)
	}
	f.Warning("stale")
	if err := f.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	data, _ := afero.ReadFile(fs, "/report.txt")
	if string(data) != "WARNING: stale\n" {
		t.Errorf("file content = %q", data)
	}
}

func TestNewFormatterInvalidPath(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	if _, err := NewFormatter(fs, FormatText, "/report.txt", false); err == nil {
		t.Error("NewFormatter() on a read-only filesystem should fail")
	}
}

func TestHeading(t *testing.T) {
	var buf bytes.Buffer
	Heading(&buf, false, "%d IGNORED", 3)

	if got, want := buf.String(), "\n\n==== 3 IGNORED ====\n"; got != want {
		t.Errorf("Heading() = %q, want %q", got, want)
	}
}

func TestTableRenderText(t *testing.T) {
	table := NewTable(
		"Unused functions",
		[]string{"Class", "Functions", "Lines"},
		[][]string{{`App\Invoice`, "2", "8"}},
		[]string{"Total", "2", "8"},
		nil,
	)

	var buf bytes.Buffer
	if err := table.RenderText(&buf, false); err != nil {
		t.Fatalf("RenderText() error: %v", err)
	}

	output := buf.String()
	for _, want := range []string{"==== Unused functions ====", "CLASS", "FUNCTIONS", `App\Invoice`, "Total"} {
		if !strings.Contains(output, want) {
			t.Errorf("RenderText() missing %q in output:\n%s", want, output)
		}
	}
}

func TestTableRenderMarkdown(t *testing.T) {
	table := NewTable("Summary", []string{"A", "B"}, [][]string{{"1", "2"}}, nil, nil)

	var buf bytes.Buffer
	if err := table.RenderMarkdown(&buf); err != nil {
		t.Fatalf("RenderMarkdown() error: %v", err)
	}

	want := "## Summary\n\n| A | B |\n| --- | --- |\n| 1 | 2 |\n\n"
	if got := buf.String(); got != want {
		t.Errorf("RenderMarkdown() = %q, want %q", got, want)
	}
}

func TestTableRenderData(t *testing.T) {
	table := NewTable("", []string{"A", "B"}, [][]string{{"1", "2"}}, nil, nil)

	rows, ok := table.RenderData().([]map[string]string)
	if !ok || len(rows) != 1 || rows[0]["A"] != "1" || rows[0]["B"] != "2" {
		t.Errorf("RenderData() = %#v", table.RenderData())
	}

	withData := NewTable("", nil, nil, nil, []int{1})
	if _, ok := withData.RenderData().([]int); !ok {
		t.Error("RenderData() should return the wrapped data")
	}
}

func TestReport(t *testing.T) {
	r := &Report{Title: "phprune"}
	r.Add("first", NewTable("One", []string{"A"}, [][]string{{"x"}}, nil, nil))
	r.Add("second", NewTable("Two", []string{"B"}, [][]string{{"y"}}, nil, []string{"y"}))

	var text bytes.Buffer
	if err := r.RenderText(&text, false); err != nil {
		t.Fatalf("RenderText() error: %v", err)
	}
	if !strings.Contains(text.String(), "==== One ====") || !strings.Contains(text.String(), "==== Two ====") {
		t.Errorf("RenderText() output:\n%s", text.String())
	}

	var md bytes.Buffer
	if err := r.RenderMarkdown(&md); err != nil {
		t.Fatalf("RenderMarkdown() error: %v", err)
	}
	if !strings.HasPrefix(md.String(), "# phprune\n\n## One") {
		t.Errorf("RenderMarkdown() output:\n%s", md.String())
	}

	data, ok := r.RenderData().(map[string]any)
	if !ok || len(data) != 2 {
		t.Fatalf("RenderData() = %#v", r.RenderData())
	}
	if got, ok := data["second"].([]string); !ok || got[0] != "y" {
		t.Errorf("RenderData()[second] = %#v", data["second"])
	}
}

func TestFormatterOutputRenderable(t *testing.T) {
	table := NewTable("T", []string{"Name"}, [][]string{{"value"}}, nil, nil)

	tests := []struct {
		format Format
		want   string
	}{
		{FormatText, "value"},
		{FormatMarkdown, "| value |"},
		{FormatJSON, `"Name": "value"`},
		{FormatTOON, "value"},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			var buf bytes.Buffer
			f := NewWriterFormatter(&buf, tt.format, false)
			if err := f.Output(table); err != nil {
				t.Fatalf("Output() error: %v", err)
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("Output() = %q, want it to contain %q", buf.String(), tt.want)
			}
		})
	}
}

func TestFormatterMessageMethods(t *testing.T) {
	var buf bytes.Buffer
	f := NewWriterFormatter(&buf, FormatText, false)

	f.Success("removed %d files", 2)
	f.Warning("stale %s", "a.php")
	f.Error("failed")
	f.Info("info")

	want := "removed 2 files\nWARNING: stale a.php\nERROR: failed\ninfo\n"
	if got := buf.String(); got != want {
		t.Errorf("messages = %q, want %q", got, want)
	}
}

func TestFormatterMessageMethodsColored(t *testing.T) {
	var buf bytes.Buffer
	f := NewWriterFormatter(&buf, FormatText, true)

	f.Warning("stale %s", "a.php")

	if strings.Contains(buf.String(), "WARNING:") {
		t.Errorf("colored warning should not carry a prefix: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "stale a.php") {
		t.Errorf("warning = %q", buf.String())
	}
}
