package cmd

import (
	"fmt"
	"log"
	"strconv"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/stagechat/stagechat/internal/config"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage server profiles",
	Long:  `Manage connection profiles for different chat servers.`,
}

var listProfilesCmd = &cobra.Command{
	Use:   "list",
	Short: "List all profiles",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		fmt.Printf("Active Profile: %s\n\n", cfg.ActiveProfile)
		fmt.Println("Available Profiles:")
		for name, profile := range cfg.Profiles {
			marker := ""
			if name == cfg.ActiveProfile {
				marker = " (active)"
			}
			fmt.Printf("  %s%s\n", name, marker)
			fmt.Printf("    Server URL: %s\n", profile.ServerURL)
			hasSession := "No"
			if profile.SessionCookie != "" {
				hasSession = "Yes"
			}
			fmt.Printf("    Session: %s\n", hasSession)
			fmt.Println()
		}
	},
}

var showProfileCmd = &cobra.Command{
	Use:   "show [profile-name]",
	Short: "Show profile details",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		profileName := args[0]
		profile, exists := cfg.Profiles[profileName]
		if !exists {
			log.Fatalf("Profile '%s' does not exist", profileName)
		}

		fmt.Printf("Profile: %s\n", profileName)
		fmt.Printf("Server URL: %s\n", profile.ServerURL)
		hasSession := "Not set"
		if profile.SessionCookie != "" {
			hasSession = "Set (hidden for security)"
		}
		fmt.Printf("Session cookie: %s\n", hasSession)
		hasToken := "Not set"
		if profile.CSRFToken != "" {
			hasToken = "Set (hidden for security)"
		}
		fmt.Printf("CSRF token: %s\n", hasToken)
		interval := profile.PollIntervalSeconds
		if interval <= 0 {
			interval = 3
		}
		fmt.Printf("Poll interval: %ds\n", interval)
	},
}

var addProfileCmd = &cobra.Command{
	Use:   "add [profile-name]",
	Short: "Add a new profile",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		var profileName string
		if len(args) > 0 {
			profileName = args[0]
		} else {
			prompt := promptui.Prompt{
				Label: "Profile name",
			}
			profileName, err = prompt.Run()
			if err != nil {
				log.Fatalf("Prompt failed: %v", err)
			}
		}

		if _, exists := cfg.Profiles[profileName]; exists {
			log.Fatalf("Profile '%s' already exists", profileName)
		}

		profile := config.Profile{PollIntervalSeconds: 3}

		urlPrompt := promptui.Prompt{
			Label:   "Server URL",
			Default: "http://localhost:8000",
		}
		profile.ServerURL, err = urlPrompt.Run()
		if err != nil {
			log.Fatalf("Prompt failed: %v", err)
		}

		sessionPrompt := promptui.Prompt{
			Label: "Session cookie",
			Mask:  '*',
		}
		profile.SessionCookie, err = sessionPrompt.Run()
		if err != nil {
			log.Fatalf("Prompt failed: %v", err)
		}

		tokenPrompt := promptui.Prompt{
			Label: "CSRF token",
			Mask:  '*',
		}
		profile.CSRFToken, err = tokenPrompt.Run()
		if err != nil {
			log.Fatalf("Prompt failed: %v", err)
		}

		intervalPrompt := promptui.Prompt{
			Label:   "Poll interval (seconds)",
			Default: "3",
			Validate: func(input string) error {
				_, err := strconv.Atoi(input)
				return err
			},
		}
		intervalStr, err := intervalPrompt.Run()
		if err != nil {
			log.Fatalf("Prompt failed: %v", err)
		}
		profile.PollIntervalSeconds, _ = strconv.Atoi(intervalStr)

		cfg.Profiles[profileName] = profile
		cfg.ActiveProfile = profileName

		if err := cfg.Save(); err != nil {
			log.Fatalf("Failed to save config: %v", err)
		}

		fmt.Printf("Profile '%s' added and activated\n", profileName)
	},
}

var removeProfileCmd = &cobra.Command{
	Use:   "remove [profile-name]",
	Short: "Remove a profile",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		profileName := args[0]
		if _, exists := cfg.Profiles[profileName]; !exists {
			log.Fatalf("Profile '%s' does not exist", profileName)
		}
		if len(cfg.Profiles) == 1 {
			log.Fatalf("Cannot remove the last remaining profile")
		}

		delete(cfg.Profiles, profileName)
		if cfg.ActiveProfile == profileName {
			for name := range cfg.Profiles {
				cfg.ActiveProfile = name
				break
			}
		}

		if err := cfg.Save(); err != nil {
			log.Fatalf("Failed to save config: %v", err)
		}

		fmt.Printf("Profile '%s' removed\n", profileName)
	},
}

func init() {
	profileCmd.AddCommand(listProfilesCmd)
	profileCmd.AddCommand(showProfileCmd)
	profileCmd.AddCommand(addProfileCmd)
	profileCmd.AddCommand(removeProfileCmd)
}
