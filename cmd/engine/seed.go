package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"kaamkhojo-engine/internal/store"
)

var (
	seedFile      string
	seedIfMissing bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load records into the store",
	Long:  `Insert the built-in sample records, or the records of a YAML seed file, into the data dir's store.`,
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "", "YAML file with a top-level records list")
	seedCmd.Flags().BoolVar(&seedIfMissing, "if-empty", false, "only seed when the store has no records")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	env, err := loadRuntime()
	if err != nil {
		return err
	}
	lock, err := lockDataDir(env.dataDir)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()

	db, err := openStore(env.dataDir)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	if seedIfMissing {
		n, err := store.CountRecords(ctx, db.Pool)
		if err != nil {
			return err
		}
		if n > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "store already has %d records, nothing to do\n", n)
			return nil
		}
	}

	recs, err := seedRecords(seedFile)
	if err != nil {
		return err
	}
	added, err := store.Seed(ctx, db.Pool, recs)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d records\n", added)
	return nil
}
