package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/icar-directory/backend/internal/models"
	"github.com/icar-directory/backend/internal/rbac"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func claimsCmd() *cobra.Command {
	claims := &cobra.Command{Use: "claims", Short: "Review organization claims"}
	claims.AddCommand(claimsListCmd())
	claims.AddCommand(claimReviewCmd("approve", models.ClaimStatusApproved))
	claims.AddCommand(claimReviewCmd("reject", models.ClaimStatusRejected))
	return claims
}

func claimsListCmd() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List organization claims, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), func(ctx context.Context, e env) error {
				claims, err := e.claims.ListClaims(ctx, status)
				if err != nil {
					return err
				}
				return printClaims(cmd.OutOrStdout(), claims)
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", models.ClaimStatusPending, "pending, approved, rejected, or empty for all")
	return cmd
}

func claimReviewCmd(verb, decision string) *cobra.Command {
	var reviewer string
	cmd := &cobra.Command{
		Use:   verb + " <claim-id>",
		Short: strings.ToUpper(verb[:1]) + verb[1:] + " a pending organization claim",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid claim id: %w", err)
			}
			return withService(cmd.Context(), func(ctx context.Context, e env) error {
				claim, err := e.claims.ReviewClaim(ctx, models.Actor{ID: reviewer, Role: rbac.RoleAdmin}, id, decision)
				if err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(cmd.OutOrStdout(), claim)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", claim.ID, claim.Status, claim.OrganizationID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&reviewer, "reviewer", "", "reviewing admin's user id")
	_ = cmd.MarkFlagRequired("reviewer")
	return cmd
}

func taxonomyCmd() *cobra.Command {
	tax := &cobra.Command{Use: "taxonomy", Short: "Show and edit the directory vocabularies"}
	tax.AddCommand(taxonomyShowCmd())
	tax.AddCommand(taxonomySetCmd())
	return tax
}

func taxonomyShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [type]",
		Short: "Show one vocabulary, or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), func(ctx context.Context, e env) error {
				if len(args) == 1 {
					items, err := e.taxonomy.Get(ctx, args[0])
					if err != nil {
						return err
					}
					if jsonOutput {
						return printJSON(cmd.OutOrStdout(), items)
					}
					fmt.Fprintln(cmd.OutOrStdout(), strings.Join(items, "\n"))
					return nil
				}
				all, err := e.taxonomy.All(ctx)
				if err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(cmd.OutOrStdout(), all)
				}
				for _, typ := range models.TaxonomyTypes {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", typ, strings.Join(all[typ], ", "))
				}
				return nil
			})
		},
	}
}

func taxonomySetCmd() *cobra.Command {
	var actor string
	cmd := &cobra.Command{
		Use:   "set <type> <item>...",
		Short: "Replace one vocabulary with the given items",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), func(ctx context.Context, e env) error {
				items, err := e.taxonomy.Set(ctx, models.Actor{ID: actor, Role: rbac.RoleAdmin}, args[0], args[1:])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d items\n", args[0], len(items))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&actor, "actor", "", "admin user id recorded in the log")
	return cmd
}

func printClaims(w io.Writer, claims []models.OrganizationClaim) error {
	if jsonOutput {
		return printJSON(w, claims)
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"ID", "Submitted", "Organization", "Claimant", "Email", "Status"})
	for _, c := range claims {
		tw.AppendRow(table.Row{
			c.ID.String(),
			c.SubmittedAt.Format(time.RFC3339),
			fmt.Sprintf("%s (%s)", c.OrganizationName, c.OrganizationID),
			c.ClaimantName,
			c.ClaimantEmail,
			c.Status,
		})
	}
	tw.Render()
	return nil
}
