package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/mmcdole/roster/internal/config"
	"github.com/mmcdole/roster/internal/domain"
	"github.com/mmcdole/roster/internal/prompt"
	"github.com/mmcdole/roster/internal/remote"
	"github.com/mmcdole/roster/internal/tui/styles"
)

// clearSpinnerLine clears the spinner line from the terminal
const clearSpinnerLine = "\r                                          \r"

// runSetupFlow asks for the site URL and token, verifies them and saves the config
func runSetupFlow(cfgManager *config.Manager, cfg *config.Config, logger *slog.Logger) error {
	fmt.Println()
	fmt.Println("Welcome to roster!")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)

	for {
		// Prompt for site URL
		fmt.Print("Enter your site URL (e.g., https://contoso.sharepoint.com/sites/hr): ")
		input, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		siteURL := strings.TrimSpace(input)
		if siteURL == "" {
			fmt.Println("Site URL cannot be empty. Please try again.")
			continue
		}

		token, err := prompt.ReadSecret(int(os.Stdin.Fd()), os.Stdout, "Access token")
		if err != nil {
			return err
		}
		if token == "" {
			fmt.Println("Token cannot be empty. Please try again.")
			continue
		}

		client := remote.NewClient(siteURL, token, logger, remote.WithTimeout(cfg.Server.Timeout))
		fmt.Println()
		if err := verifyWithSpinner(client, cfg.Server.Collection); err != nil {
			fmt.Printf("✗ Could not reach %q: %v\n", cfg.Server.Collection, err)
			if errors.Is(err, domain.ErrUnauthorized) {
				fmt.Println("The token was rejected. Please try again.")
			} else {
				fmt.Println("Please check the URL and try again.")
			}
			fmt.Println()
			continue
		}

		cfg.Server.SiteURL = siteURL
		cfg.Server.Token = token
		break
	}

	if err := cfgManager.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("✓ Configuration saved to " + cfgManager.File())
	fmt.Println()
	fmt.Println("Run roster again to start the application.")

	return nil
}

// verifyWithSpinner pings the list with a visual spinner
func verifyWithSpinner(client *remote.Client, collection string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	resultCh := make(chan error, 1)
	go func() {
		resultCh <- client.Ping(ctx, collection)
	}()

	frame := 0
	fmt.Printf("\r%s Connecting to %s...", styles.SpinnerFrames[frame], collection)

	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case err := <-resultCh:
			fmt.Print(clearSpinnerLine)
			if err != nil {
				return err
			}
			fmt.Printf("✓ Found list %s\n", collection)
			return nil

		case <-ticker.C:
			frame++
			fmt.Printf("\r%s Connecting to %s...", styles.SpinnerFrames[frame%len(styles.SpinnerFrames)], collection)

		case <-ctx.Done():
			fmt.Print(clearSpinnerLine)
			return errors.New("connection timed out")
		}
	}
}
