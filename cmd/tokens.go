package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/xiaot623/gogo/askbot/internal/conversation"
	"github.com/xiaot623/gogo/askbot/internal/domain"
	"github.com/xiaot623/gogo/askbot/internal/tokens"
)

// NewTokensCmd creates the tokens command.
func NewTokensCmd() *cobra.Command {
	var model string

	cmd := &cobra.Command{
		Use:   "tokens [file]",
		Short: "Count the prompt tokens of a JSON list of turns",
		Long: `Reads a JSON array of {"role", "content", "name"} turns from file, or from
stdin when no file is given, and prints its prompt size for the model next
to the model's prompt budget.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			return runTokens(in, cmd.OutOrStdout(), model)
		},
	}
	cmd.Flags().StringVar(&model, "model", "gpt-3.5-turbo", "Model whose vocabulary is used")
	return cmd
}

func runTokens(in io.Reader, out io.Writer, model string) error {
	var turns []domain.Turn
	if err := json.NewDecoder(in).Decode(&turns); err != nil {
		return fmt.Errorf("failed to decode turns: %w", err)
	}

	encoder, err := tokens.NewTiktokenEncoder(model)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "tokens: %d\n", tokens.NewCounter(encoder).Count(turns))
	fmt.Fprintf(out, "budget: %d\n", conversation.PromptBudget(model))
	return nil
}
