package sanitize

import "testing"

func TestTextEscapesMarkup(t *testing.T) {
	got := Text("  Vysoké <script>napětí</script>  ")
	want := "Vysoké &lt;script&gt;napětí&lt;/script&gt;"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestTextPtr(t *testing.T) {
	if TextPtr(nil) != nil {
		t.Fatal("nil input must stay nil")
	}

	blank := "   "
	if TextPtr(&blank) != nil {
		t.Fatal("blank input must collapse to nil")
	}

	value := " High voltage "
	got := TextPtr(&value)
	if got == nil || *got != "High voltage" {
		t.Fatalf("expected trimmed value, got %v", got)
	}
}

func TestMarkdownKeepsFormattingSubset(t *testing.T) {
	got := Markdown("<p>Hladina <strong>VN</strong><script>alert(1)</script></p>")
	want := "<p>Hladina <strong>VN</strong></p>"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestMarkdownStripsDisallowedAttributes(t *testing.T) {
	got := Markdown(`<p onclick="x()">text</p>`)
	if got != "<p>text</p>" {
		t.Fatalf("expected attributes stripped, got %q", got)
	}
}

func TestMarkdownPtrBlankCollapsesToNil(t *testing.T) {
	blank := "  "
	if MarkdownPtr(&blank) != nil {
		t.Fatal("blank input must collapse to nil")
	}
}
