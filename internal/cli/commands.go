// Package cli provides posctl, the operator tool for the POS inventory service.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go-pos-inventory/internal/flags"
	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/repository"
	"go-pos-inventory/pkg/database"
	"go-pos-inventory/pkg/jwt"
	applog "go-pos-inventory/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

var (
	rootCmd = &cobra.Command{
		Use:           "posctl",
		Short:         "Administer the POS inventory service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			log = applog.New(viper.GetString("log-level"))

			if secret := viper.GetString("jwt-secret"); secret != "" {
				os.Setenv("JWT_SECRET", secret)
			}
			return nil
		},
	}

	// db is opened on first use; tests set it up front.
	db  *gorm.DB
	log = logrus.New()
)

func init() {
	rootCmd.PersistentFlags().String("database-url", "", "PostgreSQL DSN (env DATABASE_URL)")
	rootCmd.PersistentFlags().String("jwt-secret", "", "token signing secret (env JWT_SECRET)")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level")

	viper.BindPFlag("database-url", rootCmd.PersistentFlags().Lookup("database-url"))
	viper.BindPFlag("jwt-secret", rootCmd.PersistentFlags().Lookup("jwt-secret"))
	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindEnv("database-url", "DATABASE_URL")
	viper.BindEnv("jwt-secret", "JWT_SECRET")
	viper.BindEnv("log-level", "LOG_LEVEL")

	rootCmd.AddCommand(migrateCmd(), supplierCmd(), flagCmd(), masterKeyCmd(), tokenCmd())
}

func openDB() (*gorm.DB, error) {
	if db != nil {
		return db, nil
	}
	dsn := viper.GetString("database-url")
	if dsn == "" {
		return nil, errors.New("database url required (--database-url or DATABASE_URL)")
	}
	conn, err := database.ConnectDB(dsn, log)
	if err != nil {
		return nil, err
	}
	db = conn
	return db, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := openDB()
			if err != nil {
				return err
			}
			if err := conn.AutoMigrate(model.All()...); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrated")
			return nil
		},
	}
}

func supplierCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "supplier", Short: "Manage the supplier catalog"}

	cmd.AddCommand(&cobra.Command{
		Use:   "add NAME",
		Short: "Add a supplier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if name == "" {
				return errors.New("name required")
			}
			conn, err := openDB()
			if err != nil {
				return err
			}
			s := model.Supplier{Name: name}
			if err := repository.NewSupplierRepo(conn).Create(cmd.Context(), &s); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", s.ID, s.Name)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List suppliers in catalog order",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := openDB()
			if err != nil {
				return err
			}
			list, err := repository.NewSupplierRepo(conn).FindAll(cmd.Context())
			if err != nil {
				return err
			}
			for _, s := range list {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", s.ID, s.Name)
			}
			return nil
		},
	})
	return cmd
}

func flagCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "flag", Short: "Manage configuration flags"}

	var typ, description string
	set := &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Store a typed configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			setting := &model.Setting{
				Key:         args[0],
				Value:       args[1],
				Type:        model.SettingType(typ),
				Description: description,
			}
			v, err := flags.Decode(*setting)
			if err != nil {
				return err
			}
			conn, err := openDB()
			if err != nil {
				return err
			}
			if err := repository.NewSettingRepo(conn).Set(cmd.Context(), setting); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %s (%s)\n", setting.Key, v, setting.Type)
			return nil
		},
	}
	set.Flags().StringVar(&typ, "type", string(model.SettingText), "boolean|integer|decimal|text")
	set.Flags().StringVar(&description, "description", "", "what the flag controls")
	cmd.AddCommand(set)

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the flags a new form session would use",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := openDB()
			if err != nil {
				return err
			}
			f := flags.NewProvider(repository.NewSettingRepo(conn), log).Load(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %t\n%s = %d\n",
				flags.KeyAllowZeroStockSale, f.AllowZeroStockSale,
				flags.KeyDefaultMinimumStock, f.DefaultMinimumStock)
			return nil
		},
	})
	return cmd
}

func masterKeyCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "master-key", Short: "Manage the stock master key"}
	cmd.AddCommand(&cobra.Command{
		Use:   "set VALUE",
		Short: "Replace the stock master key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "" {
				return errors.New("key must not be empty")
			}
			conn, err := openDB()
			if err != nil {
				return err
			}
			if err := repository.NewSecretRepo(conn).Set(cmd.Context(), model.StockMasterKey, args[0], "posctl"); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "master key updated")
			return nil
		},
	})
	return cmd
}

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "token", Short: "Bearer tokens for local testing"}

	var user, name, email string
	var privileges []string
	var ttl time.Duration
	issue := &cobra.Command{
		Use:   "issue",
		Short: "Sign a bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if user == "" {
				return errors.New("--user required")
			}
			token, err := jwt.GenerateToken(user, email, name, privileges, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	issue.Flags().StringVar(&user, "user", "", "user id")
	issue.Flags().StringVar(&name, "name", "", "display name")
	issue.Flags().StringVar(&email, "email", "", "email")
	issue.Flags().StringSliceVar(&privileges, "privilege", []string{"product:create", "product:update"}, "granted privileges")
	issue.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	cmd.AddCommand(issue)
	return cmd
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}
