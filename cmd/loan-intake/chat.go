// cmd/loan-intake/chat.go
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"loan-intake/internal/chat"
	"loan-intake/internal/common/config"
	"loan-intake/internal/common/logger"
	"loan-intake/internal/common/observability"
	"loan-intake/internal/intake"
)

const (
	chatTitle = "🏡 Home Loan Application Chatbot"
	chatHint  = "Describe your job, property, or credit details to continue... (/panel, /reset, /quit)"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("51")).
			Bold(true).
			Padding(0, 1)

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("45")).
			Bold(true)

	botStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46")).
			Bold(true)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("51")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("45"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)
)

func newChatCmd() *cobra.Command {
	var provider string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Run an interactive intake session in the terminal",
		Long: `Run an interactive intake session on stdin/stdout. After every reply the
application overview is printed.

Commands:
  /panel   show the application overview
  /reset   discard the application and start over
  /quit    leave

Examples:
  # Use the configured oracle
  loan-intake chat

  # Run offline with the keyword extractor
  loan-intake chat --oracle rules`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			switch provider {
			case "":
			case config.OracleProviderLLM, config.OracleProviderRules:
				cfg.Oracle.Provider = provider
			default:
				return fmt.Errorf("--oracle must be %q or %q", config.OracleProviderLLM, config.OracleProviderRules)
			}

			// stdout belongs to the conversation.
			log := logger.NewStructured(cfg.Logging.Level, "console", "stderr")

			engine, cleanup, err := buildEngine(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer cleanup()

			obs := observability.New(cfg.App.Name)
			defer obs.Shutdown()

			sinks, err := openOfferSinks(cmd.Context(), cfg, obs, log)
			if err != nil {
				return err
			}
			defer sinks.Close()

			svc := chat.NewService(engine, log, chat.WithListeners(sinks.listeners...), chat.WithObservability(obs))
			return runChat(cmd.Context(), svc, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&provider, "oracle", "", "extraction oracle: llm or rules (default from config)")
	return cmd
}

func runChat(ctx context.Context, svc *chat.Service, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, titleStyle.Render(chatTitle))
	fmt.Fprintln(out, hintStyle.Render(chatHint))
	fmt.Fprintln(out, botStyle.Render("Bot:"), svc.NextPrompt())

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, userStyle.Render("You: "))
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/panel":
			fmt.Fprintln(out, renderPanel(intake.Panel(svc.Snapshot().Application)))
			continue
		case "/reset":
			svc.Reset()
			fmt.Fprintln(out, hintStyle.Render("Application cleared."))
			fmt.Fprintln(out, botStyle.Render("Bot:"), svc.NextPrompt())
			continue
		}

		reply, err := svc.Send(ctx, line)
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render(err.Error()))
			continue
		}
		fmt.Fprintln(out, botStyle.Render("Bot:"), reply.Reply)
		fmt.Fprintln(out, renderPanel(reply.Panel))
	}
}

func renderPanel(sections []intake.PanelSection) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("📄 Loan Application Overview"))
	for _, s := range sections {
		b.WriteString("\n\n")
		b.WriteString(sectionStyle.Render(s.Title))
		for _, f := range s.Fields {
			b.WriteString("\n")
			b.WriteString(labelStyle.Render(f.Label + ":"))
			b.WriteString(" ")
			b.WriteString(f.Value)
		}
	}
	return panelStyle.Render(b.String())
}
