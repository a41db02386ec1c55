package cmd

import (
	"errors"

	"placeprep_backend/pkg/diagnostics"
	"placeprep_backend/pkg/logger"

	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration and every external dependency",
	Long: `Validate the configuration and probe the database, Redis, object storage,
Supabase REST, the message broker, ffmpeg and the text generation provider.

Exits non-zero when any check fails. Warnings do not fail the run.`,
	RunE: runDoctor,
}

func init() {
	doctorCmd.Flags().Bool("live", false, "向文本生成服务发送一次真实请求")
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	live, _ := cmd.Flags().GetBool("live")

	report := diagnostics.Run(cmd.Context(), cfg, diagnostics.Options{Live: live, Log: logger.Log})
	report.Print(cmd.OutOrStdout())
	if report.Failed() {
		return errors.New("doctor: one or more checks failed")
	}
	return nil
}
