package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/Regan831/five-crowns-scoreboard/config"
	"github.com/Regan831/five-crowns-scoreboard/handlers"
	"github.com/Regan831/five-crowns-scoreboard/models"
	"github.com/Regan831/five-crowns-scoreboard/routes"
	"github.com/Regan831/five-crowns-scoreboard/services"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func main() {
	log.SetFlags(0)
	cobra.CheckErr(newCmd(&config.Config{}).Execute())
}

func newCmd(cfg *config.Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("FIVECROWNS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "five-crowns-scoreboard",
		Short:         "Scorekeeping web backend for the card game 5 Crowns.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return serve(cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.BindAddress, "bind", "b", "0.0.0.0", "address to bind to (env: FIVECROWNS_BIND)")
	fs.IntVarP(&cfg.Port, "port", "p", 8080, "port to listen on (env: FIVECROWNS_PORT)")
	fs.StringVar(&cfg.DBDriver, "db-driver", "postgres", "database driver, postgres or sqlite (env: FIVECROWNS_DB_DRIVER)")
	fs.StringVar(&cfg.DBHost, "db-host", "localhost", "postgres host (env: FIVECROWNS_DB_HOST)")
	fs.StringVar(&cfg.DBPort, "db-port", "5432", "postgres port (env: FIVECROWNS_DB_PORT)")
	fs.StringVar(&cfg.DBUser, "db-user", "fivecrowns", "postgres user (env: FIVECROWNS_DB_USER)")
	fs.StringVar(&cfg.DBPassword, "db-password", "fivecrowns", "postgres password (env: FIVECROWNS_DB_PASSWORD)")
	fs.StringVar(&cfg.DBName, "db-name", "fivecrowns", "postgres database name (env: FIVECROWNS_DB_NAME)")
	fs.StringVar(&cfg.DBPath, "db-path", "fivecrowns.db", "sqlite database file (env: FIVECROWNS_DB_PATH)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	return cmd
}

func serve(cfg *config.Config) error {
	db, err := config.InitDB(cfg)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	err = db.AutoMigrate(
		&models.Player{},
		&models.Game{},
		&models.GamePlayer{},
		&models.Round{},
		&models.RoundScore{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	gameService := services.NewGameService(db)
	playerService := services.NewPlayerService(db)

	gameHandler := handlers.NewGameHandler(gameService)
	playerHandler := handlers.NewPlayerHandler(playerService)

	router := gin.Default()
	routes.SetupRoutes(router, gameHandler, playerHandler)

	log.Printf("server starting on %s", cfg.Addr())
	return router.Run(cfg.Addr())
}
