package cmd

import (
	"context"
	"encoding/json"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/paul5577/AI-analysis-of-scoliosis/analysis"
	"github.com/paul5577/AI-analysis-of-scoliosis/config"
	"github.com/paul5577/AI-analysis-of-scoliosis/contact"
	"github.com/paul5577/AI-analysis-of-scoliosis/credential"
	"github.com/paul5577/AI-analysis-of-scoliosis/gemini"
	"github.com/paul5577/AI-analysis-of-scoliosis/server"
	"github.com/paul5577/AI-analysis-of-scoliosis/service"
	"github.com/paul5577/AI-analysis-of-scoliosis/store"
)

func init() {
	rootCmd.AddCommand(serverCmd)
}

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Runs the scoliscan server",
	Long:  `Runs the scoliscan server`,
	Run: func(cmd *cobra.Command, args []string) {

		cfg := config.FromEnvfile()

		log.SetLevel(cfg.LogLevel)

		switch cfg.LogFormat {
		case config.LogFormatJSON:
			log.SetFormatter(&log.JSONFormatter{})
		default:
			log.SetFormatter(&log.TextFormatter{})
		}

		if cfg.TestModeEnabled {
			log.Info("TEST MODE ENABLED")
		}

		deployKey := cfg.Gemini.APIKey
		if deployKey == "" && cfg.Gemini.SecretPath != "" {
			// The deployment keeps its key in AWS Secrets Manager instead
			// of the environment; fetch it once at startup.
			awsConfig, err := awsconfig.LoadDefaultConfig(context.Background())
			if err != nil {
				log.Fatal(err)
			}
			secretsManagerClient := secretsmanager.NewFromConfig(awsConfig)
			result, err := secretsManagerClient.GetSecretValue(context.Background(), &secretsmanager.GetSecretValueInput{SecretId: aws.String(cfg.Gemini.SecretPath)})
			if err != nil {
				log.Fatal(err.Error())
			}
			var geminiSecrets config.GeminiSecretData
			if err = json.Unmarshal([]byte(*result.SecretString), &geminiSecrets); err != nil {
				log.Fatalf("gemini secrets read error: %v", err)
			}
			deployKey = geminiSecrets.ApiKey
		}

		db, err := store.Open(cfg.StorePath)
		if err != nil {
			log.Fatalf("error opening store: %v", err)
		}
		defer db.Close()
		log.Infof("loaded %d past analyses from %s", len(db.LoadHistory()), cfg.StorePath)

		resolver := credential.NewResolver(deployKey, db)
		analyzer := analysis.NewAnalyzer(gemini.NewClient(cfg.Gemini.Model, cfg.Gemini.APIBaseURL))
		analysisService := service.NewAnalysisService(analyzer, resolver, db)
		contactService := service.NewContactService(
			contact.NewClient(""),
			service.EmailConfig(cfg.Email),
			db,
			analysisService,
			cfg.TestModeEnabled,
		)

		/*
			Graceful shutdown is possible with errgroup + signal.NotifyContext
			NotifyContext returns a context that will close on OS signals to terminate the process
			errgroup uses that context, and also closes it in case a goroutine errors out
		*/
		ctx, done := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer done()
		g, gCtx := errgroup.WithContext(ctx)

		srv := &http.Server{
			Addr:    cfg.ListenAddr,
			Handler: server.NewRouter(analysisService, contactService),
		}

		g.Go(func() error {
			log.Infof("listening on %s", cfg.ListenAddr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})
		// ...and shut down the server if the process needs to terminate
		g.Go(func() error {
			<-gCtx.Done()
			defer log.Info("exiting server")
			return srv.Shutdown(context.Background())
		})

		if err = g.Wait(); err != nil {
			log.Errorf("caught error: %v", err)
		}
	},
}
