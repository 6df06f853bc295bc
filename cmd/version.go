package cmd

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/abhisek/mockprep/internal/question"
)

// version is stamped with -ldflags "-X github.com/abhisek/mockprep/cmd.version=v1.2.3".
var version = ""

func buildVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(devel)"
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the mockprep version and question bank version",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("mockprep %s\n", buildVersion())
		fmt.Printf("built-in question bank %s\n", question.DefaultBankVersion)
		return nil
	},
}
