package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/bnema/uccx-chat-client/internal/domain"
	"github.com/spf13/cobra"
)

func newProfileCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage saved chat profiles",
	}

	cmd.AddCommand(
		newProfileSaveCmd(app),
		newProfileListCmd(app),
		newProfileShowCmd(app),
		newProfileRemoveCmd(app),
	)

	return cmd
}

func newProfileSaveCmd(app *app) *cobra.Command {
	flags := &paramFlags{}

	cmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Save chat parameters under a name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := domain.ProfileName(args[0])

			base := domain.ChatParams{}
			fromProfile := false
			if existing, err := app.profiles.Get(cmd.Context(), name); err == nil {
				base = existing.Params
				fromProfile = true
			}

			profile := domain.Profile{Name: name, Params: flags.apply(cmd, base, fromProfile)}
			if err := app.profiles.Save(cmd.Context(), profile); err != nil {
				return err
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "saved profile %s to %s\n", name, app.profilesPath)
			return err
		},
	}

	flags.register(cmd, app.defaultURLBase)

	return cmd
}

func newProfileListCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			profiles, err := app.profiles.List(cmd.Context())
			if err != nil {
				return err
			}

			if len(profiles) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "no profiles saved")
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "NAME\tURL BASE\tFORM\tCSQ")
			for _, profile := range profiles {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", profile.Name, profile.Params.URLBase, profile.Params.Form, profile.Params.CSQ)
			}

			return w.Flush()
		},
	}
}

func newProfileShowCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show a saved profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := app.profiles.Get(cmd.Context(), domain.ProfileName(args[0]))
			if err != nil {
				return err
			}

			p := profile.Params
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			rows := [][2]string{
				{"name", string(profile.Name)},
				{"url base", p.URLBase},
				{"form", fmt.Sprint(p.Form)},
				{"csq", p.CSQ},
				{"title", p.Title},
				{"customer", p.CustomerName},
				{"email", p.CustomerEmail},
				{"phone", p.CustomerPhone},
				{"author", p.Author},
				{"interval", p.PollInterval.String()},
				{"include own", fmt.Sprint(p.IncludeOwnEvents)},
			}
			if !profile.UpdatedAt.IsZero() {
				rows = append(rows, [2]string{"updated", profile.UpdatedAt.Format(time.RFC3339)})
			}
			for _, row := range rows {
				_, _ = fmt.Fprintf(w, "%s:\t%s\n", row[0], row[1])
			}

			return w.Flush()
		},
	}
}

func newProfileRemoveCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <name>",
		Aliases: []string{"rm"},
		Short:   "Remove a saved profile",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := domain.ProfileName(args[0])
			if err := app.profiles.Remove(cmd.Context(), name); err != nil {
				return err
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "removed profile %s\n", name)
			return err
		},
	}
}
