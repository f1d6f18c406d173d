package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zhouzirui/z-notes/web/internal/model/note"
	"github.com/zhouzirui/z-notes/web/internal/service/page"
)

func (c *cli) mount(ctx context.Context) (*page.Page, error) {
	if c.token == "" {
		return nil, errNotSignedIn
	}
	p := page.New(c.client, c.token, page.WithLogger(c.log))
	if err := p.Mount(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

func newVerifyCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check the token against the identity endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.token == "" {
				return errNotSignedIn
			}
			user, err := c.client.Verify(cmd.Context(), c.token)
			if err != nil {
				return fmt.Errorf("%w: %w", page.ErrVerificationFailed, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", user.Name)
			return nil
		},
	}
}

func newListCmd(c *cli) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your notes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.mount(cmd.Context())
			if err != nil {
				return err
			}
			return writeNotes(cmd.OutOrStdout(), output, p.Snapshot(), c.cfg.Display.Location)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text, json or yaml")
	return cmd
}

func newCreateCmd(c *cli) *cobra.Command {
	var (
		draft  note.Draft
		output string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a note, then print the refreshed list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.mount(cmd.Context())
			if err != nil {
				return err
			}
			p.SetDraft(draft)
			if err := p.Submit(cmd.Context()); err != nil {
				return err
			}
			return writeNotes(cmd.OutOrStdout(), output, p.Snapshot(), c.cfg.Display.Location)
		},
	}
	cmd.Flags().StringVarP(&draft.Title, "title", "t", "", "Note title")
	cmd.Flags().StringVarP(&draft.Content, "content", "c", "", "Note content")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text, json or yaml")
	return cmd
}

func newShowCmd(c *cli) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one note in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.mount(cmd.Context())
			if err != nil {
				return err
			}
			if !p.Select(note.ID(args[0])) {
				return fmt.Errorf("note %q not found", args[0])
			}
			return writeNote(cmd.OutOrStdout(), output, *p.Snapshot().Selected, c.cfg.Display.Location)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text, json or yaml")
	return cmd
}
