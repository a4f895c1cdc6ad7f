package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mkosieradzki/protogen/internal/config"
	"github.com/mkosieradzki/protogen/internal/generate"
	csgen "github.com/mkosieradzki/protogen/internal/generate/csharp"
	"github.com/mkosieradzki/protogen/internal/parser"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type stringList []string

func (s *stringList) String() string {
	return fmt.Sprint([]string(*s))
}

func (s *stringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}

func main() {
	var importPaths stringList
	var csOut string
	var namespace string
	var configPath string
	var verbose bool

	flag.Var(&importPaths, "proto_path", "proto import path (repeatable)")
	flag.StringVar(&csOut, "cs_out", "", "output directory for C#")
	flag.StringVar(&namespace, "namespace", "", "C# namespace for generated code")
	flag.StringVar(&configPath, "config", "", "path to a TOML run configuration")
	flag.BoolVar(&verbose, "v", false, "verbose logging")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	protoFiles := flag.Args()
	if configPath != "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("loading config")
		}
		importPaths = append(importPaths, cfg.ProtoPaths...)
		if len(protoFiles) == 0 {
			protoFiles = cfg.Files
		}
		if csOut == "" {
			csOut = cfg.CsOut
		}
		if namespace == "" {
			namespace = cfg.Namespace
		}
	}
	if len(protoFiles) == 0 {
		log.Fatal().Msg("no proto files provided")
	}
	if len(importPaths) == 0 {
		importPaths = append(importPaths, ".")
	}

	ctx := context.Background()
	p := parser.Parser{ImportPaths: importPaths}
	files, err := p.Parse(ctx, protoFiles)
	if err != nil {
		log.Fatal().Err(err).Msg("parsing protos")
	}
	if csOut == "" {
		hasOut := false
		for _, file := range files {
			if file.CsOut != "" {
				hasOut = true
				break
			}
		}
		if !hasOut {
			log.Fatal().Msg("one of -cs_out or option (protogen.cs_out) is required")
		}
	}

	options := generate.Options{
		Namespace: namespace,
		CsOut:     cleanPath(csOut),
	}

	generators := []generate.Generator{
		csgen.Generator{},
	}

	for _, gen := range generators {
		outputs, err := gen.Generate(files, options)
		if err != nil {
			log.Fatal().Err(err).Str("generator", gen.Name()).Msg("generating")
		}
		for _, out := range outputs {
			log.Debug().Str("path", out.Path).Int("bytes", len(out.Content)).Msg("writing")
		}
		if err := generate.WriteFiles(outputs); err != nil {
			log.Fatal().Err(err).Msg("writing outputs")
		}
		log.Info().Str("generator", gen.Name()).Int("files", len(outputs)).Msg("done")
	}
}

func cleanPath(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Clean(path)
}
