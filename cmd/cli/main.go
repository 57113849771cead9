package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iho/gowallet/internal/infrastructure/config"
	"github.com/iho/gowallet/internal/infrastructure/postgres"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		baseURL string
		timeout time.Duration
	)

	rootCmd := &cobra.Command{
		Use:           "gowallet-cli",
		Short:         "GoWallet CLI tool",
		Long:          `A command line interface for the GoWallet API and database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the GoWallet API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	client := func(cmd *cobra.Command) *apiClient {
		return newAPIClient(baseURL, timeout, cmd.OutOrStdout())
	}

	rootCmd.AddCommand(walletCmd(client), itemCmd(client), migrateCmd())

	return rootCmd
}

func walletCmd(client func(*cobra.Command) *apiClient) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wallet",
		Short: "Wallet operations",
	}

	var name, value string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a wallet",
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{"name": name}
			if value != "" {
				body["value"] = value
			}
			return client(cmd).do(cmd.Context(), "POST", "/api/v1/wallets", body)
		},
	}
	createCmd.Flags().StringVar(&name, "name", "", "Wallet name")
	createCmd.Flags().StringVar(&value, "value", "", "Opening balance")
	_ = createCmd.MarkFlagRequired("name")

	getCmd := &cobra.Command{
		Use:   "get <wallet-id>",
		Short: "Show a wallet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return client(cmd).do(cmd.Context(), "GET", "/api/v1/wallets/"+args[0], nil)
		},
	}

	var limit, offset int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List wallets",
		RunE: func(cmd *cobra.Command, args []string) error {
			return client(cmd).do(cmd.Context(), "GET", fmt.Sprintf("/api/v1/wallets?limit=%d&offset=%d", limit, offset), nil)
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 20, "Page size")
	listCmd.Flags().IntVar(&offset, "offset", 0, "Offset")

	totalCmd := &cobra.Command{
		Use:   "total <wallet-id>",
		Short: "Show the signed sum of a wallet's items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return client(cmd).do(cmd.Context(), "GET", "/api/v1/wallets/"+args[0]+"/total", nil)
		},
	}

	var start, end string
	var page, size int
	itemsCmd := &cobra.Command{
		Use:   "items <wallet-id>",
		Short: "List a wallet's items between two dates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("/api/v1/wallets/%s/items?start=%s&end=%s&page=%d&size=%d", args[0], start, end, page, size)
			return client(cmd).do(cmd.Context(), "GET", path, nil)
		},
	}
	itemsCmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD)")
	itemsCmd.Flags().StringVar(&end, "end", "", "End date (YYYY-MM-DD)")
	itemsCmd.Flags().IntVar(&page, "page", 0, "Zero-based page")
	itemsCmd.Flags().IntVar(&size, "size", 20, "Page size")
	_ = itemsCmd.MarkFlagRequired("start")
	_ = itemsCmd.MarkFlagRequired("end")

	var repair bool
	reconcileCmd := &cobra.Command{
		Use:   "reconcile <wallet-id>",
		Short: "Compare a wallet's balance with its items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			method := "GET"
			if repair {
				method = "POST"
			}
			return client(cmd).do(cmd.Context(), method, "/api/v1/wallets/"+args[0]+"/reconcile", nil)
		},
	}
	reconcileCmd.Flags().BoolVar(&repair, "repair", false, "Rewrite the balance from the item sum")

	cmd.AddCommand(createCmd, getCmd, listCmd, totalCmd, itemsCmd, reconcileCmd)
	return cmd
}

func itemCmd(client func(*cobra.Command) *apiClient) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Wallet item operations",
	}

	var walletID, date, itemType, description, value string
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Record an INFLOW or OUTFLOW",
		RunE: func(cmd *cobra.Command, args []string) error {
			return client(cmd).do(cmd.Context(), "POST", "/api/v1/wallet-items", map[string]any{
				"wallet_id":   walletID,
				"date":        date,
				"type":        itemType,
				"description": description,
				"value":       value,
			})
		},
	}
	addCmd.Flags().StringVar(&walletID, "wallet", "", "Wallet ID")
	addCmd.Flags().StringVar(&date, "date", time.Now().UTC().Format("2006-01-02"), "Item date (YYYY-MM-DD)")
	addCmd.Flags().StringVar(&itemType, "type", "", "INFLOW or OUTFLOW")
	addCmd.Flags().StringVar(&description, "description", "", "Description")
	addCmd.Flags().StringVar(&value, "value", "", "Positive amount")

	deleteCmd := &cobra.Command{
		Use:   "delete <item-id>",
		Short: "Delete an item and reverse its contribution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return client(cmd).do(cmd.Context(), "DELETE", "/api/v1/wallet-items/"+args[0], nil)
		},
	}

	cmd.AddCommand(addCmd, deleteCmd)
	return cmd
}

func migrateCmd() *cobra.Command {
	var databaseURL string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}
	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "PostgreSQL URL (defaults to DATABASE_URL)")

	resolveURL := func() (string, error) {
		if databaseURL != "" {
			return databaseURL, nil
		}
		cfg, err := config.Load()
		if err != nil {
			return "", err
		}
		return cfg.DatabaseURL, nil
	}

	logger := func(cmd *cobra.Command) zerolog.Logger {
		return zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).With().Timestamp().Logger()
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := resolveURL()
			if err != nil {
				return err
			}
			return postgres.RunMigrations(url, logger(cmd))
		},
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := resolveURL()
			if err != nil {
				return err
			}
			return postgres.RunMigrationsDown(url, logger(cmd))
		},
	}

	cmd.AddCommand(upCmd, downCmd)
	return cmd
}
