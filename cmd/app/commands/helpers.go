// Package commands implements the tokenauth CLI commands.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"

	"github.com/allisson/tokenauth/internal/app"
)

// IOTuple holds the reader and writer a command talks to.
type IOTuple struct {
	Reader io.Reader
	Writer io.Writer
}

// DefaultIO returns an IOTuple with os.Stdin and os.Stdout.
func DefaultIO() IOTuple {
	return IOTuple{
		Reader: os.Stdin,
		Writer: os.Stdout,
	}
}

func closeContainer(container *app.Container, logger *slog.Logger) {
	if err := container.Shutdown(context.Background()); err != nil {
		logger.Error("failed to shutdown container", slog.Any("error", err))
	}
}

func closeMigrate(m *migrate.Migrate, logger *slog.Logger) {
	sourceErr, databaseErr := m.Close()
	if sourceErr != nil || databaseErr != nil {
		logger.Error("failed to close migrate",
			slog.Any("source_error", sourceErr),
			slog.Any("database_error", databaseErr))
	}
}

func validateFormat(format string) error {
	switch format {
	case "text", "json":
		return nil
	default:
		return fmt.Errorf("invalid format: %s (valid options: text, json)", format)
	}
}

// outputLayout selects how fields render in text format.
type outputLayout int

const (
	// envLayout prints KEY=value lines that can be appended to a .env file.
	envLayout outputLayout = iota
	// labelLayout prints "Label: value" lines for people.
	labelLayout
)

type outputField struct {
	key   string
	label string
	value string
}

// writeOutput renders fields as text lines in declaration order, or as one JSON object
// keyed by field key.
func writeOutput(w io.Writer, format string, layout outputLayout, fields ...outputField) error {
	if format == "json" {
		object := make(map[string]string, len(fields))
		for _, f := range fields {
			object[f.key] = f.value
		}
		encoded, err := json.MarshalIndent(object, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(encoded))
		return err
	}

	for _, f := range fields {
		var err error
		if layout == envLayout {
			_, err = fmt.Fprintf(w, "%s=%s\n", f.key, f.value)
		} else {
			_, err = fmt.Fprintf(w, "%s: %s\n", f.label, f.value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
