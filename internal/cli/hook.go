package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/lazypower/curator/internal/hooks"
)

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Handle Claude Code hook events",
}

var hookStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Handle SessionStart hook",
	Run: func(cmd *cobra.Command, args []string) {
		hooks.Handle("start", os.Stdin)
	},
}

var hookEndCmd = &cobra.Command{
	Use:   "end",
	Short: "Handle SessionEnd hook",
	Run: func(cmd *cobra.Command, args []string) {
		hooks.Handle("end", os.Stdin)
	},
}

func init() {
	hookCmd.AddCommand(hookStartCmd)
	hookCmd.AddCommand(hookEndCmd)
}
