package cmd

import (
	"fmt"

	"github.com/sarchlab/audren/behaviour"
	"github.com/sarchlab/audren/renderer"
	"github.com/spf13/cobra"
)

var worksizeCmd = &cobra.Command{
	Use:   "worksize",
	Short: "Print the work buffer size a renderer needs.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		revision, _ := cmd.Flags().GetInt32("revision")
		effects, _ := cmd.Flags().GetUint32("effects")
		voices, _ := cmd.Flags().GetUint32("voices")

		cfg := renderer.Config{
			Revision:    behaviour.MakeRevision(revision),
			EffectCount: effects,
			VoiceCount:  voices,
		}

		if !behaviour.CheckValidRevision(cfg.Revision) {
			return fmt.Errorf("unknown revision %d", revision)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "0x%x\n", renderer.GetWorkBufferSize(cfg))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(worksizeCmd)
	worksizeCmd.Flags().Int32("revision", behaviour.LastRevision,
		"Revision number the guest speaks")
	worksizeCmd.Flags().Uint32("effects", 0, "Number of effect slots")
	worksizeCmd.Flags().Uint32("voices", 0, "Number of voices")
}
