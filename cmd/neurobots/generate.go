package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/yungbote/neurobots-backend/internal/app"
	"github.com/yungbote/neurobots-backend/internal/services"
)

var (
	generateTopic   string
	generateSubject string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one lesson and print the stored record as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(generateTopic) == "" {
			return errors.New("--topic is required")
		}
		ctx := cmd.Context()
		a, err := app.New(ctx)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			a.Close(shutdownCtx)
		}()

		res, err := a.Services.Lesson.Generate(ctx, services.GenerateInput{
			Topic:   generateTopic,
			Subject: generateSubject,
		})
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Record)
	},
}

func init() {
	generateCmd.Flags().StringVar(&generateTopic, "topic", "", "lesson topic")
	generateCmd.Flags().StringVar(&generateSubject, "subject", "", "override the planner's subject (Math, Physics, Chemistry)")
}
