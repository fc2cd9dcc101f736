package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/capitalize-ai/claude-web-client/pkg/claude"
)

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List conversations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			convs, err := a.client.ListConversations(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(convs) == 0 {
				fmt.Fprintln(out, "No conversations.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "UUID\tNAME\tUPDATED")
			for _, c := range convs {
				fmt.Fprintf(w, "%s\t%s\t%s\n", c.UUID, displayName(c.Name), formatTime(c.UpdatedAt))
			}
			return w.Flush()
		},
	}
}

func (a *app) createCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create [name]",
		Short: "Create a conversation",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}

			conv, err := a.client.CreateConversation(cmd.Context(), name)
			if err != nil {
				return err
			}

			color.New(color.FgGreen).Fprint(cmd.OutOrStdout(), "Created ")
			fmt.Fprintln(cmd.OutOrStdout(), conv.UUID)
			return nil
		},
	}
}

func (a *app) historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <conversation-uuid>",
		Short: "Print the messages of a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msgs, err := a.client.ConversationHistory(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			human := color.New(color.FgCyan, color.Bold)
			assistant := color.New(color.FgGreen, color.Bold)
			dim := color.New(color.Faint)
			for _, m := range msgs {
				speaker := assistant
				if m.Sender == "human" {
					speaker = human
				}
				speaker.Fprintf(out, "%s:\n", m.Sender)
				for _, att := range m.Attachments {
					dim.Fprintf(out, "  [attachment] %s (%s)\n", att.FileName, formatSize(att.FileSize))
				}
				fmt.Fprintln(out, m.Text)
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <conversation-uuid>",
		Short: "Delete a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.DeleteConversation(cmd.Context(), args[0]); err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

func (a *app) renameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <conversation-uuid> <title>",
		Short: "Rename a conversation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.RenameConversation(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Renamed %s to %q\n", args[0], args[1])
			return nil
		},
	}
}

func (a *app) sendCmd() *cobra.Command {
	var (
		attachments []string
		timeout     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "send <conversation-uuid> <prompt>",
		Short: "Send a prompt, optionally with attachments, and print the answer",
		Example: `  chat send e56a5ab3-0eca-4a04-9c63-3fadaf14cd17 "Help me improve this CV" --attach tmp/cv.pdf
  chat send <uuid> "Compare these" -a a.pdf -a b.txt --timeout 2m`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			progress := cmd.ErrOrStderr()
			uploaded := color.New(color.Faint)

			answer, err := a.client.SendMessage(cmd.Context(), &claude.SendMessageRequest{
				ConversationID:  args[0],
				Prompt:          args[1],
				AttachmentPaths: attachments,
				Timeout:         timeout,
				OnAttachment: func(att claude.Attachment) {
					uploaded.Fprintf(progress, "uploaded %s (%s)\n", att.FileName, formatSize(att.FileSize))
				},
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(answer))
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&attachments, "attach", "a", nil, "file to upload before the prompt; repeat to keep several in order")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "deadline for the answer (default from CLAUDE_MESSAGE_TIMEOUT)")
	return cmd
}

func (a *app) resetCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("reset deletes every conversation; pass --yes to confirm")
			}
			if err := a.client.ResetAll(cmd.Context()); err != nil {
				return err
			}
			color.New(color.FgYellow).Fprintln(cmd.OutOrStdout(), "All conversations deleted")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}

func displayName(name string) string {
	if name == "" {
		return "(untitled)"
	}
	return name
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGT"[exp])
}

