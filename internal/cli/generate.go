package cli

import (
	"encoding/json"

	"artquiz-service/internal/app"
	"github.com/spf13/cobra"
)

// NewGenerateCmd prints one generated question set as JSON, ignoring unlock state.
func NewGenerateCmd(configPath *string) *cobra.Command {
	var (
		quizID string
		seed   int64
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate questions for a quiz and print them as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, err := loadDeps(ctx, *configPath)
			if err != nil {
				return err
			}
			defer d.Close()

			quiz, err := d.quizzes.GetQuiz(ctx, quizID)
			if err != nil {
				return err
			}
			cat, err := d.catalog(ctx)
			if err != nil {
				return err
			}

			gen := app.NewRandomGenerator()
			if cmd.Flags().Changed("seed") {
				gen = app.NewGenerator(seed)
			}
			questions := gen.Generate(cat.Paintings(), quiz)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(questions)
		},
	}
	cmd.Flags().StringVar(&quizID, "quiz", "", "quiz id")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed for a reproducible set")
	_ = cmd.MarkFlagRequired("quiz")
	return cmd
}
