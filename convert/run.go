package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"doc2scorm/config"
	"doc2scorm/state"
)

var ErrConversionFailed = errors.New("conversion failed")

// Run is "convert" subcommand action.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("convert")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	if src, err = filepath.Abs(src); err != nil {
		return err
	}

	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	applyOverrides(cmd, &env.Cfg.Document)
	env.Overwrite = cmd.Bool("overwrite")

	if env.Cfg.Document.TemplatePath != "" {
		data, err := os.ReadFile(env.Cfg.Document.TemplatePath)
		if err != nil {
			return fmt.Errorf("unable to read page template from %q: %w", env.Cfg.Document.TemplatePath, err)
		}
		env.PageTemplate = data
	}

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst),
		zap.String("title", env.Cfg.Document.CourseTitle), zap.Strings("split", env.Cfg.Document.SplitTags))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, src, dst, log)
}

// applyOverrides puts command line values over configured ones.
func applyOverrides(cmd *cli.Command, doc *config.DocumentConfig) {
	if cmd.IsSet("title") {
		doc.CourseTitle = cmd.String("title")
	}
	if cmd.IsSet("split") {
		doc.SplitTags = cmd.StringSlice("split")
	}
	if cmd.IsSet("asset") {
		doc.Assets = append(doc.Assets, cmd.StringSlice("asset")...)
	}
}

// process handles conversion independently of CLI framework.
func process(ctx context.Context, src, dst string, log *zap.Logger) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	env := state.EnvFromContext(ctx)

	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("input source was not found (%s): %w", src, err)
	}

	outputName := buildOutputPath(src, dst, &env.Cfg.Document, log)
	if _, err := os.Stat(outputName); err == nil {
		if !env.Overwrite {
			return fmt.Errorf("output file already exists: %s", outputName)
		}
		log.Warn("Overwriting existing file", zap.String("file", outputName))
	} else if !os.IsNotExist(err) {
		return err
	}

	if !DocumentToPackage(ctx, src, outputName, &env.Cfg.Document, log) {
		return fmt.Errorf("%s: %w", src, ErrConversionFailed)
	}

	if env.Rpt != nil {
		env.Rpt.Store("result"+filepath.Ext(outputName), outputName)
	}
	return nil
}
