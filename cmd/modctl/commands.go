package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/icar-directory/backend/internal/auth"
	"github.com/icar-directory/backend/internal/config"
	"github.com/icar-directory/backend/internal/models"
	"github.com/icar-directory/backend/internal/rbac"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func pendingCmd() *cobra.Command {
	pending := &cobra.Command{Use: "pending", Short: "Inspect the pending queue"}
	pending.AddCommand(pendingListCmd())
	return pending
}

func pendingListCmd() *cobra.Command {
	var entityType string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pending edits, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter *models.EntityType
			if entityType != "" {
				et, err := models.ParseEntityType(entityType)
				if err != nil {
					return err
				}
				filter = &et
			}
			return withService(cmd.Context(), func(ctx context.Context, e env) error {
				edits, err := e.edits.ListPendingEdits(ctx, filter)
				if err != nil {
					return err
				}
				return printEdits(cmd.OutOrStdout(), edits)
			})
		},
	}
	cmd.Flags().StringVar(&entityType, "entity-type", "", "stakeholder or project")
	return cmd
}

func editsCmd() *cobra.Command {
	edits := &cobra.Command{Use: "edits", Short: "Show and review individual edits"}
	edits.AddCommand(editShowCmd())
	edits.AddCommand(editReviewCmd("approve", models.EditStatusApproved))
	edits.AddCommand(editReviewCmd("reject", models.EditStatusRejected))
	return edits
}

func editShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <edit-id>",
		Short: "Show one edit with its change summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid edit id: %w", err)
			}
			return withService(cmd.Context(), func(ctx context.Context, e env) error {
				edit, err := e.edits.GetEdit(ctx, id)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), edit)
			})
		},
	}
}

func editReviewCmd(verb, decision string) *cobra.Command {
	var reviewer string
	cmd := &cobra.Command{
		Use:   verb + " <edit-id>",
		Short: strings.ToUpper(verb[:1]) + verb[1:] + " a pending edit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid edit id: %w", err)
			}
			return withService(cmd.Context(), func(ctx context.Context, e env) error {
				edit, err := e.edits.ReviewEdit(ctx, models.Actor{ID: reviewer, Role: rbac.RoleAdmin}, id, decision)
				if err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(cmd.OutOrStdout(), edit)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s/%s\n", edit.ID, edit.Status, edit.EntityType, edit.EntityID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&reviewer, "reviewer", "", "reviewing admin's user id")
	_ = cmd.MarkFlagRequired("reviewer")
	return cmd
}

func trustCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trust <actor-id>",
		Short: "Show an actor's approved edit count and trust status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), func(ctx context.Context, e env) error {
				st, err := e.edits.TrustStatus(ctx, args[0])
				if err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(cmd.OutOrStdout(), st)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d/%d approved, trusted=%t\n", st.ActorID, st.ApprovedEdits, st.Threshold, st.Trusted)
				return nil
			})
		},
	}
}

func historyCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history <entity-type> <entity-id>",
		Short: "List the edit history of one entity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			et, err := models.ParseEntityType(args[0])
			if err != nil {
				return err
			}
			return withService(cmd.Context(), func(ctx context.Context, e env) error {
				edits, err := e.edits.EditHistory(ctx, et, args[1], limit)
				if err != nil {
					return err
				}
				return printEdits(cmd.OutOrStdout(), edits)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum entries")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), func(ctx context.Context, e env) error {
				fmt.Fprintf(cmd.OutOrStdout(), "%s schema is up to date\n", e.store.Driver)
				return nil
			})
		},
	}
}

func tokenCmd() *cobra.Command {
	var userID, role, org string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed API token for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !rbac.IsValidRole(role) {
				return fmt.Errorf("unknown role %q", role)
			}
			cfg := config.Load()
			cfg.Validate(zap.NewNop())
			token, err := auth.GenerateJWT(cfg.JWTSecret, userID, role, org, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id")
	cmd.Flags().StringVar(&role, "role", rbac.RoleOrg, "role: public, org, funder or admin")
	cmd.Flags().StringVar(&org, "org", "", "organization (stakeholder) id")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func printEdits(w io.Writer, edits []models.EditRecord) error {
	if jsonOutput {
		return printJSON(w, edits)
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"ID", "Submitted", "Actor", "Entity", "Kind", "Status", "Fields"})
	for _, e := range edits {
		tw.AppendRow(table.Row{
			e.ID.String(),
			e.SubmittedAt.Format(time.RFC3339),
			e.ActorID,
			fmt.Sprintf("%s/%s", e.EntityType, e.EntityID),
			e.EditKind,
			e.Status,
			strings.Join(sortedKeys(e.ChangeSummary), ","),
		})
	}
	tw.Render()
	return nil
}

func sortedKeys(f models.Fields) []string {
	keys := f.Keys()
	sort.Strings(keys)
	return keys
}
