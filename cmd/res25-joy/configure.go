package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Write a starter config file interactively",
	Long: `Write a starter config.yaml interactively.

You will be prompted for the listen address, port, document root, and
upload size cap; everything else keeps its default and can be edited in
the generated file afterwards.`,
	RunE: runConfigure,
}

func init() {
	configureCmd.Flags().String("output", "config.yaml", "destination path for the generated config")
	rootCmd.AddCommand(configureCmd)
}

func runConfigure(cmd *cobra.Command, _ []string) error {
	output, _ := cmd.Flags().GetString("output")

	if _, err := os.Stat(output); err == nil {
		prompt := promptui.Prompt{
			Label:     fmt.Sprintf("%s already exists. Overwrite it", output),
			IsConfirm: true,
		}
		if _, promptErr := prompt.Run(); promptErr != nil {
			fmt.Println("Cancelled.")
			return nil //nolint:nilerr // User cancelled, not an error
		}
	}

	hostPrompt := promptui.Prompt{
		Label:   "Listen address",
		Default: "0.0.0.0",
		Validate: func(input string) error {
			if input == "" {
				return errors.New("listen address is required")
			}
			return nil
		},
	}
	hostVal, err := hostPrompt.Run()
	if err != nil {
		return handlePromptError(err)
	}

	portPrompt := promptui.Prompt{
		Label:   "Port",
		Default: "8000",
		Validate: func(input string) error {
			port, convErr := strconv.Atoi(input)
			if convErr != nil || port < 1 || port > 65535 {
				return errors.New("port must be an integer between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return handlePromptError(err)
	}
	portVal, _ := strconv.Atoi(portStr)

	rootPrompt := promptui.Prompt{
		Label:   "Document root",
		Default: ".",
	}
	rootVal, err := rootPrompt.Run()
	if err != nil {
		return handlePromptError(err)
	}

	maxUploadPrompt := promptui.Prompt{
		Label:   "Max upload size in bytes",
		Default: strconv.FormatInt(50<<20, 10),
		Validate: func(input string) error {
			size, convErr := strconv.ParseInt(input, 10, 64)
			if convErr != nil || size < 1 {
				return errors.New("max upload size must be a positive integer")
			}
			return nil
		},
	}
	maxUploadStr, err := maxUploadPrompt.Run()
	if err != nil {
		return handlePromptError(err)
	}
	maxUploadVal, _ := strconv.ParseInt(maxUploadStr, 10, 64)

	cfg := map[string]any{
		"server": map[string]any{
			"host":            hostVal,
			"port":            portVal,
			"root":            rootVal,
			"max_connections": 100,
			"timeout":         300,
		},
		"transfer": map[string]any{
			"chunk_size":      1 << 20,
			"max_upload_size": maxUploadVal,
		},
		"log": map[string]any{
			"level": "info",
			"file":  "server.log",
		},
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	fmt.Printf("Wrote %s (%s max upload, serving %s)\n", output,
		humanize.IBytes(uint64(maxUploadVal)), rootVal)
	return nil
}

func handlePromptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrAbort) {
		fmt.Println("Cancelled.")
		return nil
	}
	return fmt.Errorf("prompt: %w", err)
}
