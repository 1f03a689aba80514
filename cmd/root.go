package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "uccx",
		Short:         "UCCX chat client (uccx): open customer chats against SocialMiner",
		Long:          "uccx opens a customer chat session on a Cisco UCCX/SocialMiner gateway, streams agent activity to the terminal and sends your input as customer messages.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.PersistentFlags().StringVar(&app.logLevel, "log-level", app.logLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		return app.configureLogger()
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newChatCmd(app),
		newProfileCmd(app),
	)

	return rootCmd
}
