package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hikarile/ToyoAgent/internal/models"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("160")).
			Padding(0, 2)

	userStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	assistantStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	toolBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("124")).
			Padding(0, 1)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

const welcomeTitle = "Toyota Agentic Assistant"

func printWelcome() {
	fmt.Println(titleStyle.Render(welcomeTitle))
	fmt.Println(hintStyle.Render("Ask about sales data, warranty contracts or owner manuals."))
	fmt.Println(hintStyle.Render("Commands: history, exit"))
	fmt.Println()
}

func printAnswer(answer *models.Answer, showTools bool) {
	fmt.Println(assistantStyle.Render(answer.Text))
	if showTools && answer.ToolDetails != "" {
		fmt.Println()
		fmt.Println(toolBoxStyle.Render("Tool Details\n\n" + answer.ToolDetails))
	}
	fmt.Println()
}

func renderError(err error) string {
	return errorStyle.Render(fmt.Sprintf("An error occurred: %v", err))
}

func printError(err error) {
	fmt.Println(renderError(err))
	fmt.Println()
}

func printTranscript(transcript []models.ChatMessage) {
	if len(transcript) == 0 {
		fmt.Println(hintStyle.Render("(empty transcript)"))
		fmt.Println()
		return
	}
	for _, msg := range transcript {
		switch msg.Role {
		case "user":
			fmt.Println(userStyle.Render("You: ") + msg.Content)
		default:
			fmt.Println(assistantStyle.Render("Assistant: " + msg.Content))
			if msg.Tools != "" {
				fmt.Println(toolBoxStyle.Render("Tool Details\n\n" + msg.Tools))
			}
		}
		fmt.Println(strings.Repeat("─", 40))
	}
	fmt.Println()
}
