package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mochi-chat/mochi/session"
	"github.com/mochi-chat/mochi/store"
)

func newSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage conversation sessions",
	}
	cmd.AddCommand(
		newSessionsListCmd(),
		newSessionsCreateCmd(),
		newSessionsShowCmd(),
		newSessionsUpdateCmd(),
		newSessionsEditCmd(),
		newSessionsDeleteCmd(),
	)
	return cmd
}

func newSessionsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all sessions, most recently touched first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sessions, err := svc.Sessions().List(cmd.Context())
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Println("No sessions.")
				return nil
			}
			for _, s := range sessions {
				fmt.Printf("%s  %-20s  %3d msgs  %s  %s\n",
					s.ID, s.Model, s.Metadata.MessageCount, s.Metadata.UpdatedAt,
					s.Preview(60))
			}
			return nil
		},
	}
}

func newSessionsCreateCmd() *cobra.Command {
	var (
		model      string
		promptFile string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := session.CreationOptions{Model: model}
			if promptFile != "" {
				content, err := svc.Prompts().Get(cmd.Context(), promptFile)
				if err != nil {
					return err
				}
				opts.SystemPrompt = content
				opts.SystemPromptSourceFile = promptFile
			}

			sess, err := svc.Sessions().Create(cmd.Context(), opts)
			if err != nil {
				return err
			}
			fmt.Printf("Created session %s with model %s\n", sess.ID, sess.Model)
			return nil
		},
	}
	cmd.Flags().StringVarP(&model, "model", "m", "", "model name (required)")
	cmd.Flags().StringVar(&promptFile, "prompt", "", "system prompt file to load")
	cmd.MarkFlagRequired("model")
	return cmd
}

func newSessionsShowCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <session-id>",
		Short: "Show a session's conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := svc.Sessions().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if asJSON {
				data, err := sess.Encode()
				if err != nil {
					return err
				}
				os.Stdout.Write(data)
				fmt.Println()
				return nil
			}

			fmt.Printf("Session %s (%s), %d messages\n\n", sess.ID, sess.Model, sess.Metadata.MessageCount)
			for i, msg := range sess.Messages {
				data, err := json.Marshal(msg)
				if err != nil {
					return err
				}
				fmt.Printf("[%d] %s\n", i, data)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw session document")
	return cmd
}

func newSessionsUpdateCmd() *cobra.Command {
	var model string
	cmd := &cobra.Command{
		Use:   "update <session-id>",
		Short: "Update a session's settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts store.UpdateOptions
			if model != "" {
				opts.Model = &model
			}
			sess, err := svc.Sessions().Update(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			fmt.Printf("Updated session %s (model %s)\n", sess.ID, sess.Model)
			return nil
		},
	}
	cmd.Flags().StringVarP(&model, "model", "m", "", "switch the session to this model")
	return cmd
}

func newSessionsEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <session-id> <index> <content>",
		Short: "Rewrite a user message, discarding everything after it",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var index int
			if _, err := fmt.Sscanf(args[1], "%d", &index); err != nil {
				return fmt.Errorf("invalid message index %q", args[1])
			}

			sess, err := svc.Sessions().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := sess.EditMessage(index, args[2]); err != nil {
				return err
			}
			if err := svc.Sessions().Save(cmd.Context(), sess); err != nil {
				return err
			}
			fmt.Printf("Edited message %d; session now has %d messages\n", index, sess.Metadata.MessageCount)
			return nil
		},
	}
	return cmd
}

func newSessionsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <session-id>",
		Short: "Delete a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := svc.Sessions().Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted session %s\n", args[0])
			return nil
		},
	}
}
