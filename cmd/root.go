package cmd

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/stagechat/stagechat/internal/app"
)

var rootCmd = &cobra.Command{
	Use:   "stagechat",
	Short: "Terminal client for staged-generation chat servers",
	Long:  `stagechat connects to a staged-generation chat server, sends your messages and shows the assistant's reply as it moves through the generation stages.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Default behavior: run the chat application
		application, err := app.NewApplication()
		if err != nil {
			log.Fatalf("Failed to create application: %v", err)
		}
		defer application.Stop()

		if err := application.Start(); err != nil {
			log.Fatalf("Application error: %v", err)
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution error: %v", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(profileCmd)
}
