package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/finhelm/taxengine/internal/migrate"
)

// newMigrator connects to DATABASE_URL and returns a migrator over the
// default chain. The returned func closes the pool.
func newMigrator(ctx context.Context) (*migrate.Migrator, func(), error) {
	_ = godotenv.Load()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return nil, nil, fmt.Errorf("DATABASE_URL is not set")
	}
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	m := migrate.New(migrate.NewPostgresBackend(pool), migrate.DefaultChain())
	return m, pool.Close, nil
}

// chainOnly builds a migrator for commands that never touch the database.
func chainOnly() *migrate.Migrator {
	return migrate.New(migrate.NewMemoryBackend(), migrate.DefaultChain())
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the report store schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show current revision, head, and pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, closer, err := newMigrator(cmd.Context())
			if err != nil {
				return err
			}
			defer closer()
			st, err := m.Status(cmd.Context())
			if err != nil {
				return err
			}
			current := st.Current
			if current == "" {
				current = "(none)"
			}
			fmt.Printf("Current: %s\nHead:    %s\n", current, st.Head)
			if st.UpToDate() {
				fmt.Println("Schema is up to date.")
				return nil
			}
			fmt.Println("Pending:")
			for _, rev := range st.Pending {
				fmt.Printf("  %s\n", rev)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "upgrade [revision]",
		Short: "Apply pending migrations up to a revision (default: head)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := ""
			if len(args) == 1 {
				target = args[0]
			}
			m, closer, err := newMigrator(cmd.Context())
			if err != nil {
				return err
			}
			defer closer()
			if err := m.Upgrade(cmd.Context(), target); err != nil {
				return err
			}
			current, err := m.Current(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Upgraded to %s\n", current)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "downgrade <revision>",
		Short: "Revert migrations down to a revision",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, closer, err := newMigrator(cmd.Context())
			if err != nil {
				return err
			}
			defer closer()
			if err := m.Downgrade(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Downgraded to %s\n", args[0])
			return nil
		},
	})

	revisionCmd := &cobra.Command{
		Use:   "revision <message>",
		Short: "Allocate a new revision identifier",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			mig := migrate.NewRevision(args[0])
			fmt.Printf("Revision: %s\nMessage:  %s\n", mig.Revision, mig.Message)
			if skeleton, _ := cmd.Flags().GetBool("autogenerate"); skeleton {
				fmt.Printf("UpSQL:   -- migration for %q\nDownSQL: -- revert %q\n", mig.Message, mig.Message)
			}
			fmt.Println("Add the revision with its SQL to the migration chain.")
		},
	}
	revisionCmd.Flags().BoolP("autogenerate", "a", false, "Emit an UpSQL/DownSQL skeleton alongside the identifier")
	cmd.AddCommand(revisionCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "history",
		Short: "List the full migration chain, oldest first",
		Run: func(cmd *cobra.Command, args []string) {
			for _, mig := range chainOnly().History() {
				fmt.Printf("%s  %s\n", mig.Revision, mig.Message)
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "current",
		Short: "Show the currently applied revision",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, closer, err := newMigrator(cmd.Context())
			if err != nil {
				return err
			}
			defer closer()
			current, err := m.Current(cmd.Context())
			if err != nil {
				return err
			}
			if current == "" {
				current = "(none)"
			}
			fmt.Println(current)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "head",
		Short: "Show the newest revision in the chain",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(chainOnly().Head())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "stamp <revision>",
		Short: "Record a revision without running migrations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, closer, err := newMigrator(cmd.Context())
			if err != nil {
				return err
			}
			defer closer()
			if err := m.Stamp(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Stamped %s\n", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Exit non-zero when the schema is behind head",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, closer, err := newMigrator(cmd.Context())
			if err != nil {
				return err
			}
			defer closer()
			ok, err := m.Check(cmd.Context())
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("schema is behind head; run migrate upgrade")
			}
			fmt.Println("Schema is at head.")
			return nil
		},
	})

	return cmd
}
