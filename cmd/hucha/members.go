package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/hucha-app/hucha/internal/cli"
	"github.com/hucha-app/hucha/internal/model"
)

func membersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "members",
		Short: "Manage group members",
		Long:  `Register profiles, list the group, approve join requests, and remove members.`,
	}

	cmd.AddCommand(listMembersCmd())
	cmd.AddCommand(registerMemberCmd())
	cmd.AddCommand(approveMemberCmd())
	cmd.AddCommand(removeMemberCmd())
	cmd.AddCommand(joinGroupCmd())

	return cmd
}

func listMembersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List group members",
		RunE: func(cmd *cobra.Command, _ []string) error {
			led, _, cleanup, err := openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				cli.BoldStyle.Render("Name"),
				cli.BoldStyle.Render("Email"),
				cli.BoldStyle.Render("Role"),
				cli.BoldStyle.Render("Status"),
				cli.BoldStyle.Render("ID"))
			for _, m := range led.Members() {
				status := string(m.Status)
				if m.Status == model.MemberPending {
					status = cli.PendingStyle.Render(status)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					m.Name, m.Email, m.Role, status, cli.StyleSubtle(m.ID))
			}
			return nil
		},
	}
}

func registerMemberCmd() *cobra.Command {
	var (
		email    string
		password string
		groupID  string
		color    string
	)

	cmd := &cobra.Command{
		Use:   "register <name>",
		Short: "Register a new profile",
		Long: `Create a profile. Without --group the profile starts groupless and becomes
the admin of whatever group it founds; with --group it joins as a pending
member awaiting approval when the group already has members.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if len(password) < 6 {
				return fmt.Errorf("password must be at least 6 characters")
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}

			profile := model.Profile{
				ID:           uuid.NewString(),
				Name:         args[0],
				Email:        strings.ToLower(strings.TrimSpace(email)),
				Color:        color,
				GroupID:      groupID,
				PasswordHash: string(hash),
				Status:       model.MemberActive,
				Role:         model.RoleAdmin,
				CreatedAt:    time.Now(),
			}
			if groupID != "" {
				existing, err := store.GetProfilesByGroup(ctx, groupID)
				if err != nil {
					return err
				}
				if len(existing) > 0 {
					profile.Status = model.MemberPending
					profile.Role = model.RoleMember
				}
			}

			if err := store.SaveProfile(ctx, &profile); err != nil {
				return fmt.Errorf("failed to register profile: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Registered %s (%s)", profile.Name, profile.ID)))
			if profile.Status == model.MemberPending {
				fmt.Println(cli.FormatInfo("Awaiting approval by a group admin."))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "email address (required)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password for API access (required)")
	cmd.Flags().StringVarP(&groupID, "group", "g", "", "group to join")
	cmd.Flags().StringVar(&color, "color", "", "UI color token")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func approveMemberCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approve <id>",
		Short: "Approve a pending member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			acting, err := currentProfile(ctx, store)
			if err != nil {
				return err
			}
			if acting.Role != model.RoleAdmin {
				return fmt.Errorf("only group admins can approve members")
			}

			if err := store.ApproveMember(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to approve member: %w", err)
			}

			fmt.Println(cli.FormatSuccess("Member approved"))
			return nil
		},
	}
}

func removeMemberCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a member from the group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			acting, err := currentProfile(ctx, store)
			if err != nil {
				return err
			}
			if acting.Role != model.RoleAdmin {
				return fmt.Errorf("only group admins can remove members")
			}
			if acting.ID == args[0] {
				return fmt.Errorf("admins cannot remove themselves")
			}

			if err := store.RemoveMember(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to remove member: %w", err)
			}

			fmt.Println(cli.FormatSuccess("Member removed"))
			return nil
		},
	}
}

func joinGroupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <group-id>",
		Short: "Move the acting profile into a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			acting, err := currentProfile(ctx, store)
			if err != nil {
				return err
			}

			if err := store.UpdateProfileGroup(ctx, acting.ID, args[0]); err != nil {
				return fmt.Errorf("failed to join group: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Joined group %s", args[0])))
			return nil
		},
	}
}
