package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/clario-app/clario/internal/suggestion"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Send feedback or a course suggestion to the Clario team",
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")
		message, _ := cmd.Flags().GetString("message")
		email, _ := cmd.Flags().GetString("email")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		log := newLogger(cmd, cfg)

		resolved := ""
		for _, c := range suggestion.Categories {
			if strings.EqualFold(c, strings.TrimSpace(category)) {
				resolved = c
			}
		}
		if resolved == "" {
			return fmt.Errorf("unknown category %q: choose one of %s", category, strings.Join(suggestion.Categories, ", "))
		}

		sc := cfg.Suggestions
		client := suggestion.NewClient(suggestion.ClientConfig{
			BaseURL: sc.APIURL,
			Timeout: sc.Timeout,
			Retry: suggestion.RetryConfig{
				MaxAttempts: sc.Retry.MaxAttempts,
				InitialWait: sc.Retry.InitialWait,
				MaxWait:     sc.Retry.MaxWait,
				Multiplier:  sc.Retry.Multiplier,
			},
		}, suggestion.WithClientLogger(log))

		err = client.Submit(cmd.Context(), suggestion.Suggestion{
			Category: resolved,
			Message:  message,
			Email:    email,
		})
		var ve *suggestion.ValidationError
		if errors.As(err, &ve) {
			return ve
		}
		if err != nil {
			log.Debug().Err(err).Msg("submit suggestion")
			return fmt.Errorf("unable to send right now, please try again: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Thank you! Your suggestion has been sent.")
		return nil
	},
}

func init() {
	suggestCmd.Flags().String("category", "General Feedback", "One of: "+strings.Join(suggestion.Categories, ", "))
	suggestCmd.Flags().StringP("message", "m", "", "Your suggestion (at least 10 characters)")
	suggestCmd.Flags().String("email", "", "Optional email address for a reply")
	_ = suggestCmd.MarkFlagRequired("message")
}
