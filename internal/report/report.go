package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"vbridge/internal/lang"
	"vbridge/internal/semantic"
	"vbridge/internal/transpile"
)

// FileReport collects the outcome of converting one source file.
type FileReport struct {
	Path    string
	Summary semantic.Summary
	Result  transpile.Result
}

// WriteMigration renders a Markdown migration report for a batch
// conversion and writes it to outPath.
func WriteMigration(outPath string, source, target lang.Language, files []FileReport) error {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Migration Report: %s to %s\n\n", source, target))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", time.Now().UTC().Format(time.RFC3339)))

	var classes, methods, properties, warnings, errors int
	for _, f := range files {
		classes += len(f.Summary.Classes)
		methods += len(f.Summary.Methods)
		properties += len(f.Summary.Properties)
		warnings += len(f.Result.Warnings)
		errors += len(f.Result.Errors)
	}

	sb.WriteString("## Totals\n\n")
	sb.WriteString(fmt.Sprintf("- Files: %d\n", len(files)))
	sb.WriteString(fmt.Sprintf("- Classes: %d\n", classes))
	sb.WriteString(fmt.Sprintf("- Methods: %d\n", methods))
	sb.WriteString(fmt.Sprintf("- Properties: %d\n", properties))
	sb.WriteString(fmt.Sprintf("- Warnings: %d\n", warnings))
	sb.WriteString(fmt.Sprintf("- Errors: %d\n\n", errors))

	for _, f := range files {
		sb.WriteString(fmt.Sprintf("## %s\n\n", f.Path))
		sb.WriteString(fmt.Sprintf("Method: %s | Classes: %d | Methods: %d | Properties: %d\n\n",
			f.Result.Method, len(f.Summary.Classes), len(f.Summary.Methods), len(f.Summary.Properties)))

		if len(f.Result.Errors) > 0 {
			sb.WriteString("### Errors\n\n")
			for _, e := range f.Result.Errors {
				sb.WriteString(fmt.Sprintf("- %s\n", e))
			}
			sb.WriteString("\n")
		}
		if len(f.Result.Warnings) > 0 {
			sb.WriteString("### Warnings\n\n")
			for _, w := range f.Result.Warnings {
				sb.WriteString(fmt.Sprintf("- %s\n", w))
			}
			sb.WriteString("\n")
		}
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(outPath, []byte(sb.String()), 0o644)
}
