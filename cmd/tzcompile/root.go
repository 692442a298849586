package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var log = logrus.New()

func run() int {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		diagf(err.Error())
		return 1
	}
	return 0
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tzcompile",
		Short:         "Compile and refresh IANA tzdata snapshots into packed tzpack datasets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	viper.SetEnvPrefix("tzcore")
	viper.AutomaticEnv()

	cmd.AddCommand(newCompileCommand())
	cmd.AddCommand(newFetchCommand())
	return cmd
}

// diagf writes one diagnostic line to stderr: a red "tzcompile: " prefix
// followed by the message. File and line appear only where the message
// itself carries them, as parse errors do. color.NoColor is set by the
// library itself from isatty/NO_COLOR detection, so callers need no extra
// wiring to stay plain when piped.
func diagf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, color.RedString("tzcompile: ")+msg)
}
