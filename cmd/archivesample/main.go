// archivesample reads a document of polymorphic objects from JSON and
// writes it back in any supported format, either to stdout or into an
// archive container file.
//
//	archivesample --format yaml
//	archivesample -i scene.jsonc -f binary -o scene.arc -c zstd
package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/oy3o/archive"
	"github.com/oy3o/archive/archivefile"
	"github.com/oy3o/archive/jsonarchive"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	input       string
	format      string
	output      string
	compression string
	verbose     bool
}

func run(args []string, stdout, stderr io.Writer) error {
	var opts options
	flagSet := pflag.NewFlagSet("archivesample", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVarP(&opts.input, "input", "i", "", "JSON or JSONC document to read (default: built-in sample)")
	flagSet.StringVarP(&opts.format, "format", "f", "json", "output format: json, yaml, cbor, msgpack or binary")
	flagSet.StringVarP(&opts.output, "output", "o", "", "write an archive container to this path instead of stdout")
	flagSet.StringVarP(&opts.compression, "compression", "c", "none", "container compression: none, lz4 or zstd")
	flagSet.BoolVarP(&opts.verbose, "verbose", "v", false, "log debug events")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if flagSet.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", flagSet.Args())
	}

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	format, err := archivefile.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	compression, err := archivefile.ParseCompression(opts.compression)
	if err != nil {
		return err
	}

	registry := archive.NewRegistry(archive.WithRegistryLogger(logger))
	registerTypes(registry)
	archiveOpts := []archive.Option{archive.WithRegistry(registry), archive.WithLogger(logger)}

	doc, err := load(opts.input, archiveOpts)
	if err != nil {
		return err
	}
	logger.Info("sample array", "first", doc.SampleArray.First, "second", doc.SampleArray.Second)
	for i, obj := range doc.Objects {
		t, err := registry.GetPolymorphic(obj)
		if err != nil {
			return err
		}
		logger.Info("object", "index", i, "type", t.Name(), "value", obj.Describe())
	}

	if opts.output != "" {
		h, err := archivefile.WriteFile(opts.output, doc.archive,
			archivefile.WithFormat(format),
			archivefile.WithCompression(compression),
			archivefile.WithArchiveOptions(archiveOpts...),
			archivefile.WithLogger(logger))
		if err != nil {
			return fmt.Errorf("writing %s: %w", opts.output, err)
		}
		logger.Info("container written", "path", opts.output,
			"format", h.Format.String(), "compression", h.Compression.String(), "stored", h.StoredLen)
		return nil
	}

	w, err := format.NewWriter(stdout)
	if err != nil {
		return err
	}
	a := archive.NewWriting(w, archiveOpts...)
	if err := doc.archive(a); err != nil {
		return err
	}
	return a.Close()
}

// load reads the document at path, or the built-in sample when path is empty.
func load(path string, opts []archive.Option) (*document, error) {
	src := []byte(scenarioJSON)
	name := "built-in sample"
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		src, name = data, path
	}

	r, err := jsonarchive.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}
	var doc document
	a := archive.NewReading(r, opts...)
	if err := doc.archive(a); err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	if err := a.Close(); err != nil {
		return nil, err
	}
	return &doc, nil
}
