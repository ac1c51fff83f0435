package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tingleradar/tingle-radar/internal/catalog"
	"github.com/tingleradar/tingle-radar/internal/tagging"
)

// NewClassifyCmd creates the 'classify' command for tagging raw text.
func NewClassifyCmd() *cobra.Command {
	var description string
	var labels []string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "classify <title>",
		Short: "Tag a title with the rule-based classifier",
		Long: `Run the keyword classifier over a title, optional description, and
creator labels without touching the catalog. Extra rules from the config
file are included.`,
		Example: `  tingle-radar classify "Whisper ear cleaning roleplay"
  tingle-radar classify "Sleep aid" --description "binaural rain sounds"
  tingle-radar classify "耳搔き" --label 耳搔 --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(cmd.OutOrStdout(), strings.Join(args, " "), description, labels, jsonOutput)
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Video description")
	cmd.Flags().StringSliceVarP(&labels, "label", "l", nil, "Creator label (repeatable)")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

func runClassify(w io.Writer, title, description string, labels []string, jsonOutput bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	classifier := tagging.NewClassifier(cfg.RuleTable())
	tags := classifier.Classify(tagging.Fields{Title: title, Description: description, Labels: labels})
	language := catalog.DetectLanguage(title)

	if jsonOutput {
		return printJSON(w, map[string]interface{}{
			"tags":     tags,
			"language": language,
		})
	}

	if len(tags) == 0 {
		fmt.Fprintln(w, "Tags:     (none)")
	} else {
		fmt.Fprintf(w, "Tags:     %s\n", strings.Join(tags, ", "))
	}
	fmt.Fprintf(w, "Language: %s\n", language)
	return nil
}
