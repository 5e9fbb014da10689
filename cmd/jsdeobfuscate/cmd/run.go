package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	jsdeobfuscator "github.com/fxnatic/jsdeobfuscator"
	"github.com/fxnatic/jsdeobfuscator/internal/config"
	"github.com/fxnatic/jsdeobfuscator/sandbox/interp"
)

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Deobfuscate a JavaScript file",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

func init() {
	runCmd.Flags().String("out", "", "write the rewritten source here instead of stdout")
	runCmd.Flags().StringSlice("decoder", nil, "name of a decoder function the caller already knows about (repeatable)")
	runCmd.Flags().Int("call-count-threshold", 100, "minimum call-site count for the call-count decoder locator")
	runCmd.Flags().Int("array-size-threshold", 100, "minimum element count for the big-array decoder locator")
	runCmd.Flags().Int("iteration-cap", 100, "maximum fixpoint passes before giving up")
	runCmd.Flags().StringSlice("mark", nil, "keyword the comment-marker scan flags identifiers/strings against (repeatable)")
	runCmd.Flags().Bool("verbose", false, "raise log level to debug")
	runCmd.Flags().Bool("log-json", false, "emit logs as JSON instead of console text")
	runCmd.Flags().String("debug-dir", "", "directory to dump a failing intermediate source to on an internal error")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := buildLogger(cfg.Verbose, cfg.LogJSON)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer logger.Sync()

	input, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	opts := jsdeobfuscator.Options{
		Decoders:           cfg.Decoders,
		Sandbox:            interp.New(),
		CallCountThreshold: cfg.CallCountThreshold,
		ArraySizeThreshold: cfg.ArraySizeThreshold,
		IterationCap:       cfg.IterationCap,
		MarkKeywords:       cfg.MarkKeywords,
		Logger:             logger,
		DebugDir:           cfg.DebugDir,
	}

	result, err := jsdeobfuscator.Deobfuscate(context.Background(), string(input), opts)
	var decodeErr *jsdeobfuscator.DecodeError
	if err != nil && !errors.As(err, &decodeErr) {
		return err
	}

	if cfg.Out != "" {
		if err := os.WriteFile(cfg.Out, []byte(result.Code), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", cfg.Out, err)
		}
	} else {
		fmt.Println(result.Code)
	}

	logger.Info("deobfuscation complete", zap.Int("changes", result.Changes), zap.Int("marks", len(result.Marks)))
	if decodeErr != nil {
		logger.Warn("unresolved decoder calls remain", zap.Int("count", len(decodeErr.Failures)))
	}
	return nil
}
