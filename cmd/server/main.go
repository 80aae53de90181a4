package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	_ "prodtrack/docs"
	"prodtrack/internal/config"
	"prodtrack/internal/logging"
	"prodtrack/internal/model"
	"prodtrack/internal/repository"
	"prodtrack/internal/server"
	"prodtrack/internal/service"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

// @title           Production Tracker API
// @version         1.0
// @description     Task lifecycle, comments and time tracking for animation and VFX productions.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @schemes http

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "prodtrack",
	Short: "Production task tracker",
	Long:  `An HTTP service tracking production tasks on shots, scenes, sequences and assets.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		logging.Init(logging.Options{
			SystemName: "prodtrack",
			File:       cfg.LogFile,
			Level:      cfg.LogLevel,
		})
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := server.Init(cfg)
		if err != nil {
			return fmt.Errorf("server initialization failed: %w", err)
		}
		s.Run()
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and the operational task statuses",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := server.OpenDB(cfg)
		if err != nil {
			return err
		}
		if err := repository.AutoMigrate(db); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}

		statuses := service.NewStatusRegistry(repository.NewStatusRepository(db), service.StatusNames{
			Done:     cfg.DoneStatus,
			Wip:      cfg.WipStatus,
			ToReview: cfg.ToReviewStatus,
		})
		ctx := cmd.Context()
		for _, get := range []func(context.Context) (*model.TaskStatus, error){
			statuses.Todo, statuses.Wip, statuses.ToReview, statuses.Done,
		} {
			if _, err := get(ctx); err != nil {
				return err
			}
		}

		logging.Logger.Info("database schema is up to date")
		return nil
	},
}

var personFlags struct {
	email     string
	password  string
	firstName string
	lastName  string
	manager   bool
}

var createPersonCmd = &cobra.Command{
	Use:   "create-person",
	Short: "Create a person who can log in",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := server.OpenDB(cfg)
		if err != nil {
			return err
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(personFlags.password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		role := model.RoleUser
		if personFlags.manager {
			role = model.RoleManager
		}
		person := &model.Person{
			FirstName:      personFlags.firstName,
			LastName:       personFlags.lastName,
			Email:          strings.ToLower(personFlags.email),
			HashedPassword: string(hash),
			Role:           role,
			Active:         true,
		}
		if err := repository.NewPersonRepository(db).Create(cmd.Context(), person); err != nil {
			return fmt.Errorf("create person: %w", err)
		}

		fmt.Printf("created %s (%s) with id %s\n", person.FullName(), person.Role, person.ID)
		return nil
	},
}

func init() {
	createPersonCmd.Flags().StringVar(&personFlags.email, "email", "", "login email")
	createPersonCmd.Flags().StringVar(&personFlags.password, "password", "", "login password")
	createPersonCmd.Flags().StringVar(&personFlags.firstName, "first-name", "", "first name")
	createPersonCmd.Flags().StringVar(&personFlags.lastName, "last-name", "", "last name")
	createPersonCmd.Flags().BoolVar(&personFlags.manager, "manager", false, "grant the manager role")
	_ = createPersonCmd.MarkFlagRequired("email")
	_ = createPersonCmd.MarkFlagRequired("password")
	_ = createPersonCmd.MarkFlagRequired("first-name")

	rootCmd.AddCommand(serveCmd, migrateCmd, createPersonCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
