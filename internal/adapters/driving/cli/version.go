package cli

import (
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("tiffheif version %s\n", version)
		if encoderCheck == nil {
			return
		}
		if err := encoderCheck(); err != nil {
			cmd.Printf("encoder: %v\n", err)
			return
		}
		cmd.Println("encoder: available")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
