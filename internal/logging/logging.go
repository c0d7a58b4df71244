// Package logging configures the process-wide structured logger.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/phuslu/log"

	"github.com/seenimoa/researchdesk/internal/config"
)

// Setup installs log.DefaultLogger from the logging config. Text format uses
// a console writer (colored on a terminal), json writes one object per line.
// When cfg.File is set entries are also written to that file. The returned
// func closes the file writer.
func Setup(cfg config.LoggingConfig, out io.Writer) (func() error, error) {
	if out == nil {
		out = os.Stderr
	}

	var console log.Writer
	if cfg.Format == "json" {
		console = &log.IOWriter{Writer: out}
	} else {
		console = &log.ConsoleWriter{
			ColorOutput:    isTerminal(out),
			EndWithMessage: true,
			Writer:         out,
		}
	}

	closer := func() error { return nil }
	writer := console
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return closer, err
		}
		fw := &log.FileWriter{
			Filename:     cfg.File,
			EnsureFolder: true,
			MaxBackups:   7,
		}
		writer = &log.MultiEntryWriter{console, fw}
		closer = fw.Close
	}

	log.DefaultLogger = log.Logger{
		Level:      log.ParseLevel(cfg.Level),
		TimeFormat: "15:04:05",
		Writer:     writer,
	}
	return closer, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && log.IsTerminal(f.Fd())
}
