package services

import (
	"bytes"
	"fmt"
	"html"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Opener hands paths to the desktop: notes previews to the browser and
// folders to the file manager.
type Opener struct {
	tempDir string
	open    func(path string) error
}

// NewOpener creates an opener using the platform's default open command
func NewOpener() *Opener {
	return &Opener{
		tempDir: os.TempDir(),
		open:    openWithSystem,
	}
}

// Reveal shows a folder in the system file manager.
func (o *Opener) Reveal(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		path = filepath.Dir(path)
	}
	return o.open(path)
}

// Preview renders a note to HTML and opens it in the default browser.
func (o *Opener) Preview(note *Note) error {
	content, err := os.ReadFile(note.Path)
	if err != nil {
		return err
	}

	body, err := RenderMarkdown(string(content))
	if err != nil {
		return fmt.Errorf("failed to convert markdown: %w", err)
	}

	tempFile := filepath.Join(o.tempDir, "notedeck-preview.html")
	page := wrapHTML(body, note.Title, filepath.Dir(note.Path))
	if err := os.WriteFile(tempFile, []byte(page), 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := o.open(tempFile); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}

// RenderMarkdown converts a note body, without its frontmatter, to HTML.
func RenderMarkdown(markdown string) (string, error) {
	_, body := splitFrontMatter(markdown)

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Table,
			extension.Strikethrough,
			extension.TaskList,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithHardWraps(),
			gmhtml.WithXHTML(),
		),
	)

	var buf bytes.Buffer
	if err := md.Convert([]byte(body), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func wrapHTML(content, title, baseDir string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>%s</title>
    <base href="file://%s/">
    <style>
        body { max-width: 860px; margin: 2rem auto; padding: 0 1rem; font-family: -apple-system, "Segoe UI", sans-serif; line-height: 1.6; color: #24292e; }
        pre, code { background: #f6f8fa; border-radius: 4px; }
        pre { padding: 12px; overflow: auto; }
        table { border-collapse: collapse; }
        th, td { border: 1px solid #dfe2e5; padding: 6px 12px; }
        blockquote { color: #6a737d; border-left: 4px solid #dfe2e5; margin: 0; padding: 0 1em; }
    </style>
</head>
<body>
%s
</body>
</html>`, html.EscapeString(title), filepath.ToSlash(baseDir), content)
}

// openWithSystem starts the OS-specific open command without waiting for it
func openWithSystem(path string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", path)
	case "darwin":
		cmd = exec.Command("open", path)
	case "linux", "freebsd", "openbsd", "netbsd":
		cmd = exec.Command("xdg-open", path)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
