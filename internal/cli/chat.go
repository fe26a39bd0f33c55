package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hikarile/ToyoAgent/config"
	"github.com/hikarile/ToyoAgent/internal/agent"
	"github.com/hikarile/ToyoAgent/internal/embedding"
	"github.com/hikarile/ToyoAgent/internal/history"
	"github.com/hikarile/ToyoAgent/internal/models"
	"github.com/hikarile/ToyoAgent/pkg/utils"
)

func newChatCmd() *cobra.Command {
	var showTools bool

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), showTools)
		},
	}
	cmd.Flags().BoolVar(&showTools, "show-tools", true, "show tool invocation details under each answer")
	return cmd
}

func runChat(ctx context.Context, showTools bool) error {
	cfg := config.DefaultConfig()
	if cfg.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		return err
	}
	defer logger.Sync()

	embedder, err := embedding.NewOpenAIEmbedder(ctx, cfg)
	if err != nil {
		return err
	}
	assistant, err := agent.New(ctx, cfg, embedder, logger)
	if err != nil {
		return err
	}

	store, err := history.Open(cfg.HistoryDB)
	if err != nil {
		return err
	}
	defer store.Close()

	sessionID, err := store.CreateSession(ctx, "chat")
	if err != nil {
		return err
	}
	logger.Info("chat session started", zap.Int64("session_id", sessionID))

	printWelcome()

	var transcript []models.ChatMessage
	for {
		var input string
		err := survey.AskOne(&survey.Input{Message: "You:"}, &input)
		if errors.Is(err, terminal.InterruptErr) {
			return nil
		}
		if err != nil {
			return err
		}

		input = strings.TrimSpace(input)
		switch strings.ToLower(input) {
		case "":
			continue
		case "exit", "quit":
			return nil
		case "history":
			printTranscript(transcript)
			continue
		}

		transcript = append(transcript, models.ChatMessage{Role: "user", Content: input})
		if err := store.SaveMessage(ctx, &history.Message{
			SessionID: sessionID, Role: "user", Content: input,
		}); err != nil {
			logger.Warn("persist user message", zap.Error(err))
		}

		answer, err := assistant.Answer(ctx, input)
		if err != nil {
			// No assistant turn is appended to the display transcript,
			// but the failure is kept in the audit store.
			printError(err)
			if saveErr := store.SaveMessage(ctx, &history.Message{
				SessionID: sessionID, Role: "assistant", Content: err.Error(), IsError: true,
			}); saveErr != nil {
				logger.Warn("persist error turn", zap.Error(saveErr))
			}
			continue
		}

		transcript = append(transcript, models.ChatMessage{
			Role:    "assistant",
			Content: answer.Text,
			Tools:   answer.ToolDetails,
		})
		if err := store.SaveMessage(ctx, &history.Message{
			SessionID: sessionID, Role: "assistant", Content: answer.Text, Tools: answer.ToolDetails,
		}); err != nil {
			logger.Warn("persist assistant message", zap.Error(err))
		}

		printAnswer(answer, showTools)
	}
}
