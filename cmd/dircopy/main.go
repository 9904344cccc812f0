// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/dircopy/dircopy/pkg/lfs"
	"github.com/dircopy/dircopy/pkg/log"
	"github.com/dircopy/dircopy/pkg/sync"
	"github.com/dircopy/dircopy/pkg/ts"
)

const (
	DircopyVersion = "0.0.1"
)

// Sync Flags
const (
	flagOwner     = "owner"
	flagGroup     = "group"
	flagMode      = "mode"
	flagChdir     = "chdir"
	flagIdentical = "identical"
	flagVerbose   = "verbose"
	//
	flagThreads            = "threads"
	flagChecksumLimit      = "checksum-limit"
	flagTimestampPrecision = "timestamp-precision"
)

// Output Flags
const (
	flagFormat = "format"
)

// Debug Flag
const (
	flagDebug = "debug"
)

// Log Flags
const (
	flagLogPath         = "log-path"
	flagLogPerm         = "log-perm"
	flagLogTimeLayout   = "log-time-layout"
	flagLogTimeLocation = "log-time-zone"
)

// Sync Defaults
const (
	DefaultFormat             = "text"
	DefaultTimestampPrecision = time.Second
)

func initSyncFlags(flag *pflag.FlagSet) {
	flag.StringP(flagOwner, "o", "", "owner (name or numeric id) for synchronized entries")
	flag.StringP(flagGroup, "g", "", "group (name or numeric id) for synchronized entries")
	flag.StringP(flagMode, "m", "", "permissions for synchronized entries as an octal string, e.g. 0640")
	flag.Bool(flagChdir, false, "derive directory execute bits from the mode, so directories stay traversable by the parties that can read or write their files")
	flag.Bool(flagIdentical, false, "delete files at destination that do not exist at source")
	flag.BoolP(flagVerbose, "v", false, "report every path that changed, not just the counts")
	flag.Int(flagThreads, 1, "maximum number of parallel threads, or -1 for the number of cpus")
	flag.Int64(flagChecksumLimit, sync.DefaultChecksumLimit, "largest file size in bytes compared by checksum; larger same-size files are compared by modification time")
	flag.Duration(flagTimestampPrecision, DefaultTimestampPrecision, "precision to use when comparing timestamps")
	flag.StringP(flagFormat, "f", DefaultFormat, "output format.  Either text or jsonl.")
}

func initDebugFlags(flag *pflag.FlagSet) {
	flag.BoolP(flagDebug, "d", false, "print debug messages")
}

func initLogFlags(flag *pflag.FlagSet) {
	flag.String(flagLogPath, "-", "path to the log output.  Defaults to the operating system's stdout device.")
	flag.String(flagLogPerm, "0600", "file permissions for log output file as unix file mode.")
	flag.String(flagLogTimeLayout, "RFC3339", "layout for timestamps in logs.  Either a named layout or a custom layout.  Use the layouts command to show named layouts.")
	flag.String(flagLogTimeLocation, "Local", "location for timestamps in logs, e.g., Local, UTC, or America/Los_Angeles")
}

func initSyncCommandFlags(flag *pflag.FlagSet) {
	initSyncFlags(flag)
	initDebugFlags(flag)
	initLogFlags(flag)
}

func initViper(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	err := v.BindPFlags(cmd.Flags())
	if err != nil {
		return v, fmt.Errorf("error binding flag set to viper: %w", err)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv() // set environment variables to overwrite config
	return v, nil
}

func checkLogConfig(v *viper.Viper) error {
	logPath := v.GetString(flagLogPath)
	if len(logPath) == 0 {
		return fmt.Errorf("log path is missing")
	}
	logPerm := v.GetString(flagLogPerm)
	if len(logPerm) == 0 {
		return fmt.Errorf("log perm is missing")
	}
	_, err := strconv.ParseUint(logPerm, 8, 32)
	if err != nil {
		return fmt.Errorf("invalid format for log perm: %s", logPerm)
	}
	if _, err := ts.ParseLocation(v.GetString(flagLogTimeLocation)); err != nil {
		return fmt.Errorf("invalid log time zone: %w", err)
	}
	return nil
}

func checkSyncConfig(v *viper.Viper, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("expecting 2 positional arguments for source and destination, but found %d arguments", len(args))
	}
	sourcePath := strings.TrimPrefix(args[0], "file://")
	destinationPath := strings.TrimPrefix(args[1], "file://")
	// source and destination must name different trees and must not nest
	if err := lfs.Check(sourcePath, destinationPath); err != nil {
		return err
	}
	if mode := v.GetString(flagMode); len(mode) > 0 {
		if _, err := strconv.ParseUint(mode, 8, 32); err != nil {
			return fmt.Errorf("invalid format for mode: %s", mode)
		}
	}
	if threads := v.GetInt(flagThreads); threads == 0 {
		return errors.New("threads cannot be zero")
	}
	if format := v.GetString(flagFormat); format != "text" && format != "jsonl" {
		return fmt.Errorf("unknown format %q, expecting text or jsonl", format)
	}
	if err := checkLogConfig(v); err != nil {
		return fmt.Errorf("error with log configuration: %w", err)
	}
	return nil
}

func initLogger(v *viper.Viper) (*log.SimpleLogger, error) {

	path := v.GetString(flagLogPath)
	perm := v.GetString(flagLogPerm)

	layout := ts.ParseLayout(v.GetString(flagLogTimeLayout))

	location, err := ts.ParseLocation(v.GetString(flagLogTimeLocation))
	if err != nil {
		return nil, fmt.Errorf("error parsing log time zone: %w", err)
	}

	if path == os.DevNull {
		return log.NewSimpleLoggerWithOptions(io.Discard, layout, location), nil
	}

	if path == "-" {
		return log.NewSimpleLoggerWithOptions(os.Stdout, layout, location), nil
	}

	fileMode := os.FileMode(0600)

	if len(perm) > 0 {
		fm, err := strconv.ParseUint(perm, 8, 32)
		if err != nil {
			return nil, fmt.Errorf("error parsing file permissions for log file from %q", perm)
		}
		fileMode = os.FileMode(fm)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, fileMode)
	if err != nil {
		return nil, fmt.Errorf("error opening log file %q: %w", path, err)
	}

	return log.NewSimpleLoggerWithOptions(f, layout, location), nil
}

// syncOutput is the result contract serialized for callers: a changed flag,
// a failed flag, and a one-line message, plus per-path detail when verbose.
type syncOutput struct {
	Changed bool             `json:"changed"`
	Failed  bool             `json:"failed"`
	Msg     string           `json:"msg"`
	Entries []sync.SyncEntry `json:"entries,omitempty"`
	Errors  []sync.SyncError `json:"errors,omitempty"`
}

func main() {
	rootCommand := &cobra.Command{
		Use:                   `dircopy [flags]`,
		DisableFlagsInUseLine: true,
		Short: strings.Join([]string{
			"dircopy synchronizes the contents of a source directory tree onto a destination directory tree,",
			"reproducing structure, contents, ownership, and permissions.",
			"With --identical, files at the destination that do not exist at the source are deleted.",
		}, "\n"),
	}

	layoutsCommand := &cobra.Command{
		Use:                   `layouts`,
		DisableFlagsInUseLine: true,
		Short:                 "show supported timestamp layouts",
		SilenceErrors:         true,
		SilenceUsage:          true,
		RunE: func(cmd *cobra.Command, args []string) error {
			names := make([]string, 0, len(ts.NamedLayouts))
			for name := range ts.NamedLayouts {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Printf("%s: %s\n", name, ts.NamedLayouts[name])
			}
			return nil
		},
	}

	syncCommand := &cobra.Command{
		Use:                   "sync SOURCE DESTINATION",
		DisableFlagsInUseLine: true,
		Short:                 "sync",
		Long:                  "synchronize the destination directory from the source directory",
		SilenceErrors:         true,
		SilenceUsage:          true,
		RunE: func(cmd *cobra.Command, args []string) error {

			ctx := cmd.Context()

			v, err := initViper(cmd)
			if err != nil {
				return fmt.Errorf("error initializing viper: %w", err)
			}

			if errConfig := checkSyncConfig(v, args); errConfig != nil {
				return errConfig
			}

			debug := v.GetBool(flagDebug)

			logger, err := initLogger(v)
			if err != nil {
				return fmt.Errorf("error initializing logger: %w", err)
			}

			sourcePath := strings.TrimPrefix(args[0], "file://")
			destinationPath := strings.TrimPrefix(args[1], "file://")

			threads := v.GetInt(flagThreads)
			if threads == -1 {
				threads = runtime.NumCPU()
			}

			verbose := v.GetBool(flagVerbose)

			if debug {
				_ = logger.Log("Configuration", map[string]interface{}{
					"chdir":               v.GetBool(flagChdir),
					"checksum_limit":      v.GetInt64(flagChecksumLimit),
					"group":               v.GetString(flagGroup),
					"identical":           v.GetBool(flagIdentical),
					"mode":                v.GetString(flagMode),
					"owner":               v.GetString(flagOwner),
					"threads":             threads,
					"timestamp_precision": v.GetDuration(flagTimestampPrecision).String(),
					"verbose":             verbose,
				})
			}

			result, err := sync.Synchronize(ctx, &sync.SynchronizeInput{
				Source:                sourcePath,
				SourceFileSystem:      lfs.NewLocalFileSystem(""),
				Destination:           destinationPath,
				DestinationFileSystem: lfs.NewLocalFileSystem(""),
				Owner:                 v.GetString(flagOwner),
				Group:                 v.GetString(flagGroup),
				Mode:                  v.GetString(flagMode),
				Chdir:                 v.GetBool(flagChdir),
				Identical:             v.GetBool(flagIdentical),
				Verbose:               verbose,
				MaxThreads:            threads,
				ChecksumLimit:         v.GetInt64(flagChecksumLimit),
				TimestampPrecision:    v.GetDuration(flagTimestampPrecision),
				Logger:                logger,
			})
			if err != nil {
				_ = logger.Log("Error synchronizing", map[string]interface{}{
					"source":      sourcePath,
					"destination": destinationPath,
					"err":         err.Error(),
				})
				os.Exit(1)
			}

			switch v.GetString(flagFormat) {
			case "jsonl":
				output := syncOutput{
					Changed: result.Changed,
					Failed:  result.Failed(),
					Msg:     sync.FormatReport(result, false),
					Errors:  result.Errors,
				}
				if verbose {
					output.Entries = result.Entries
				}
				encoder := json.NewEncoder(os.Stdout)
				if err := encoder.Encode(output); err != nil {
					return fmt.Errorf("error encoding result: %w", err)
				}
			default:
				fmt.Println(sync.FormatReport(result, verbose))
			}

			if result.Failed() {
				os.Exit(1)
			}

			return nil

		},
	}
	initSyncCommandFlags(syncCommand.Flags())

	versionCommand := &cobra.Command{
		Use:                   `version`,
		DisableFlagsInUseLine: true,
		Short:                 "show version",
		SilenceErrors:         true,
		SilenceUsage:          true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(DircopyVersion)
			return nil
		},
	}

	rootCommand.AddCommand(layoutsCommand, syncCommand, versionCommand)

	if err := rootCommand.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "dircopy: "+err.Error())
		fmt.Fprintln(os.Stderr, "Try \"dircopy --help\" for more information.")
		os.Exit(1)
	}
}
