package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/cximage/internal/cli"
	cxerrors "github.com/matzehuels/cximage/pkg/errors"
)

var styleError = lipgloss.NewStyle().Foreground(lipgloss.Color("167"))

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130) // Standard shell convention for SIGINT
		}
		fmt.Fprintln(os.Stderr, styleError.Render("✗ "+cxerrors.UserMessage(err)))
		if code := cxerrors.GetCode(err); code != "" {
			fmt.Fprintln(os.Stderr, lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render("  code: "+string(code)))
		}
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	c := cli.New(os.Stderr, cli.LogInfo)
	return c.RootCommand().ExecuteContext(ctx)
}
