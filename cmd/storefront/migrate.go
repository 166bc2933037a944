package main

import (
	"fmt"

	"github.com/fjod/saree_store/internal/config"
	"github.com/fjod/saree_store/internal/logger"
	"github.com/fjod/saree_store/internal/repository"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create collections and indexes in MongoDB",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			log, err := logger.New(cfg.LogLevel, cfg.IsDevelopment())
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer log.Sync() //nolint:errcheck

			if err := repository.RunMigrations(cfg.MongoURI, cfg.MongoDBName); err != nil {
				return err
			}
			log.Info("migrations applied", zap.String("database", cfg.MongoDBName))
			return nil
		},
	}
}
