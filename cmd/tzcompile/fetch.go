package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tzcore/tzcore/tzdb/ianadist"
)

func newFetchCommand() *cobra.Command {
	var (
		etagFile string
		outDir   string
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Refresh a local tzdata source tree from IANA",
		RunE: func(cmd *cobra.Command, args []string) error {
			if outDir == "" {
				outDir = viper.GetString("tzdata_dir")
			}
			return runFetch(cmd.Context(), etagFile, outDir)
		},
	}

	cmd.Flags().StringVar(&etagFile, "etag-file", "", "path storing the ETag from the last successful fetch")
	cmd.Flags().StringVar(&outDir, "out-dir", os.Getenv("TZDATA_DIR"), "directory to write tzdata source files into")
	_ = viper.BindPFlag("tzdata_dir", cmd.Flags().Lookup("out-dir"))

	return cmd
}

func runFetch(ctx context.Context, etagFile, outDir string) error {
	if outDir == "" {
		return fmt.Errorf("--out-dir (or $TZDATA_DIR) is required")
	}

	var priorETag string
	if etagFile != "" {
		if b, err := os.ReadFile(etagFile); err == nil {
			priorETag = string(b)
		}
	}

	log.WithField("etag", priorETag).Info("checking IANA tzdata for updates")
	release, etag, err := ianadist.Latest(ctx, priorETag)
	if err != nil {
		return fmt.Errorf("fetch latest release: %w", err)
	}
	if release == nil {
		log.Info("tzdata is already up to date")
		return nil
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", outDir, err)
	}
	for name, contents := range release.DataFiles {
		if err := os.WriteFile(filepath.Join(outDir, name), contents, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	if len(release.LeapSecondsFile) > 0 {
		if err := os.WriteFile(filepath.Join(outDir, "leap-seconds.list"), release.LeapSecondsFile, 0o644); err != nil {
			return fmt.Errorf("write leap-seconds.list: %w", err)
		}
	}
	if err := os.WriteFile(filepath.Join(outDir, "VERSION"), []byte(release.Version), 0o644); err != nil {
		return fmt.Errorf("write VERSION: %w", err)
	}

	if etagFile != "" && etag != "" {
		if err := os.WriteFile(etagFile, []byte(etag), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", etagFile, err)
		}
	}

	log.WithFields(logrusFields{"version": release.Version, "dir": outDir}).Info("refreshed tzdata source tree")
	return nil
}
