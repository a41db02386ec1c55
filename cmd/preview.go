package cmd

import (
	"encoding/json"
	"fmt"

	"placeprep_backend/internal/app"
	"placeprep_backend/internal/catalog"
	"placeprep_backend/internal/difficulty"
	"placeprep_backend/internal/questiongen"
	"placeprep_backend/pkg/logger"

	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Acquire a question set and print it with answers (no database)",
	Long: `Run the same acquisition path a quiz start uses, generation with retries
and the fallback bank, and print the result as JSON including the answers.

Useful for checking prompt quality against a provider.`,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().String("topic", "", "题目主题（必填）")
	previewCmd.Flags().String("subtopic", "", "子主题")
	previewCmd.Flags().String("difficulty", string(difficulty.Beginner), "beginner / intermediate / advanced")
	previewCmd.Flags().Int("count", 0, "题目数量，0 表示使用配置默认值")
	_ = previewCmd.MarkFlagRequired("topic")
}

func runPreview(cmd *cobra.Command, args []string) error {
	topic, _ := cmd.Flags().GetString("topic")
	subtopic, _ := cmd.Flags().GetString("subtopic")
	bandVal, _ := cmd.Flags().GetString("difficulty")
	count, _ := cmd.Flags().GetInt("count")

	band, ok := difficulty.Parse(bandVal)
	if !ok {
		return fmt.Errorf("invalid difficulty %q", bandVal)
	}
	if _, ok := catalog.Default.Lookup(topic); !ok {
		return fmt.Errorf("unknown topic %q", topic)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logger.Log.Sync()

	ctx := cmd.Context()
	acq := app.NewAcquirer(ctx, cfg, logger.Log)
	res, err := acq.Acquire(ctx, questiongen.Request{
		Topic:      topic,
		Subtopic:   subtopic,
		Difficulty: band,
		Count:      count,
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"topic":      topic,
		"subtopic":   subtopic,
		"difficulty": band,
		"source":     res.Source,
		"requested":  res.Requested,
		"attempts":   res.Attempts,
		"questions":  res.Questions,
	})
}
