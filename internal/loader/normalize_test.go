package loader

import "testing"

func TestMarkdownTextSeparatesBlocks(t *testing.T) {
	src := "# Setup\n\nInstall the package first.\n\n- restart the service\n- check the logs\n"
	got, err := MarkdownText(src)
	if err != nil {
		t.Fatalf("MarkdownText failed: %v", err)
	}
	want := "Setup\n\nInstall the package first.\n\nrestart the service\n\ncheck the logs"
	if got != want {
		t.Fatalf("unexpected text:\n%q\nwant\n%q", got, want)
	}
}

func TestHTMLTextDropsScriptsAndNestedDuplicates(t *testing.T) {
	src := `<html><head><style>p{}</style></head><body>
<p>First   paragraph
text.</p>
<ul><li><p>Inside item.</p></li></ul>
<script>var x = 1;</script>
</body></html>`
	got, err := HTMLText(src)
	if err != nil {
		t.Fatalf("HTMLText failed: %v", err)
	}
	want := "First paragraph text.\n\nInside item."
	if got != want {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestHTMLTextFallsBackToBody(t *testing.T) {
	got, err := HTMLText("<div>just a div</div>")
	if err != nil {
		t.Fatalf("HTMLText failed: %v", err)
	}
	if got != "just a div" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestNormalizeLeavesPlainText(t *testing.T) {
	got, err := Normalize("notes.txt", "line one\n\nline two")
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if got != "line one\n\nline two" {
		t.Fatalf("unexpected text: %q", got)
	}
}
