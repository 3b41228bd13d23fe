package main

import (
	"fmt"
	"os"

	cli "github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/jamescook/cataract/cataract"
	"github.com/jamescook/cataract/config"
	"github.com/jamescook/cataract/importresolver"
)

func main() {
	app := &cli.App{
		Name:  "cataractfmt",
		Usage: "parse, optionally flatten/resolve imports, and reserialize a CSS file",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "flatten", Usage: "cascade-flatten before serializing"},
			&cli.BoolFlag{Name: "resolve-imports", Usage: "resolve @import statements before serializing"},
			&cli.BoolFlag{Name: "formatted", Usage: "emit 2-space-indented CSS instead of compact"},
			&cli.StringSliceFlag{Name: "media", Usage: "restrict output to these media types (default: all)"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "write to `FILE` instead of stdout"},
			&cli.StringFlag{Name: "parser-config", Usage: "load cataract.ParserOptions from a YAML `FILE`"},
			&cli.StringFlag{Name: "import-config", Usage: "load importresolver.Options from a YAML `FILE`"},
			&cli.BoolFlag{Name: "strict", Usage: "fail on any parse error instead of skip-and-continue"},
		},
		ArgsUsage: "INPUT.css",
		Action:    run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "cataractfmt:", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("expected exactly one input file", 2)
	}
	inputPath := c.Args().Get(0)

	logger := zap.NewNop()
	if c.Bool("strict") {
		var err error
		logger, err = zap.NewProduction()
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
		}
		defer logger.Sync()
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", inputPath, err)
	}

	parserOpts := []cataract.Option{cataract.WithLogger(logger)}
	if c.Bool("strict") {
		parserOpts = append(parserOpts, cataract.WithRaiseParseErrors(true))
	}
	if path := c.String("parser-config"); path != "" {
		cfg, err := config.LoadParserConfig(path)
		if err != nil {
			return fmt.Errorf("load parser config: %w", err)
		}
		parserOpts = append(parserOpts, cfg.ParserOptions()...)
	}

	sheet, err := cataract.Parse(string(data), parserOpts...)
	if err != nil {
		return fmt.Errorf("parse %s: %w", inputPath, err)
	}

	if c.Bool("resolve-imports") {
		importOpts := importresolver.NewOptions(importresolver.WithLogger(logger))
		if path := c.String("import-config"); path != "" {
			cfg, err := config.LoadImportConfig(path)
			if err != nil {
				return fmt.Errorf("load import config: %w", err)
			}
			importOpts = importresolver.NewOptions(cfg.ImportOptions()...)
		}
		if err := importresolver.Resolve(sheet, importOpts); err != nil {
			return fmt.Errorf("resolve imports: %w", err)
		}
	}

	if c.Bool("flatten") {
		sheet = sheet.Flatten()
	}

	media := c.StringSlice("media")
	var out string
	if c.Bool("formatted") {
		out = sheet.ToFormattedCSS(media...)
	} else {
		out = sheet.ToCSS(media...)
	}

	if dest := c.String("out"); dest != "" {
		return os.WriteFile(dest, []byte(out), 0o644)
	}
	_, err = fmt.Fprint(os.Stdout, out)
	return err
}
