package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newPromptsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompts",
		Short: "Manage system prompt files",
	}
	cmd.AddCommand(
		newPromptsListCmd(),
		newPromptsShowCmd(),
		newPromptsCreateCmd(),
		newPromptsUpdateCmd(),
		newPromptsDeleteCmd(),
	)
	return cmd
}

func newPromptsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List system prompts with previews",
		RunE: func(cmd *cobra.Command, _ []string) error {
			infos, err := svc.Prompts().List(cmd.Context())
			if err != nil {
				return err
			}
			if len(infos) == 0 {
				fmt.Println("No prompts.")
				return nil
			}
			for _, info := range infos {
				fmt.Printf("%s (%d words)\n  %s\n", info.Filename, info.WordCount, info.Preview)
			}
			return nil
		},
	}
}

func newPromptsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <filename>",
		Short: "Print a prompt's full content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := svc.Prompts().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Print(content)
			return nil
		},
	}
}

// promptContent reads the new prompt body from --file or stdin.
func promptContent(cmd *cobra.Command) (string, error) {
	if file, _ := cmd.Flags().GetString("file"); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read content from stdin: %w", err)
	}
	return string(data), nil
}

func newPromptsCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <filename>",
		Short: "Create a prompt from --file or stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := promptContent(cmd)
			if err != nil {
				return err
			}
			if err := svc.Prompts().Create(cmd.Context(), args[0], content); err != nil {
				return err
			}
			fmt.Printf("Created prompt %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().String("file", "", "read content from this file instead of stdin")
	return cmd
}

func newPromptsUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <filename>",
		Short: "Overwrite a prompt from --file or stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := promptContent(cmd)
			if err != nil {
				return err
			}
			if err := svc.Prompts().Update(cmd.Context(), args[0], content); err != nil {
				return err
			}
			fmt.Printf("Updated prompt %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().String("file", "", "read content from this file instead of stdin")
	return cmd
}

func newPromptsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <filename>",
		Short: "Delete a prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := svc.Prompts().Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted prompt %s\n", args[0])
			return nil
		},
	}
}
