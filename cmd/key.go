package cmd

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/paul5577/AI-analysis-of-scoliosis/config"
	"github.com/paul5577/AI-analysis-of-scoliosis/credential"
	"github.com/paul5577/AI-analysis-of-scoliosis/store"
)

func init() {
	rootCmd.AddCommand(keyCmd)
}

var keyCmd = &cobra.Command{
	Use:   "key [api-key]",
	Short: "Saves a Gemini API key to the on-device store",
	Long: `Saves a Gemini API key to the on-device store, for deployments
without an environment-injected key. Run without an argument to see which
key source the server would use.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.FromEnvfile()
		log.SetLevel(cfg.LogLevel)

		db, err := store.Open(cfg.StorePath)
		if err != nil {
			log.Fatalf("error opening store: %v", err)
		}
		defer db.Close()

		resolver := credential.NewResolver(cfg.Gemini.APIKey, db)

		if len(args) == 0 {
			fmt.Printf("key source: %s\n", resolver.Status())
			return
		}

		if err := resolver.Save(args[0]); err != nil {
			log.Fatalf("error saving key: %v", err)
		}
		fmt.Println("key saved")
	},
}
