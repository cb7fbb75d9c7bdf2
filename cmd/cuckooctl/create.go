package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ielm/cuckoofilter/pkg/filter"
)

func createCmd() *cobra.Command {
	var capacity uint64
	var fpp float64
	var out string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Dimension and serialize an empty cuckoo filter to a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(capacity, fpp, out)
		},
	}

	cmd.Flags().Uint64VarP(&capacity, "capacity", "n", 1000, "requested element capacity")
	cmd.Flags().Float64VarP(&fpp, "fpp", "e", 0.01, "target false-positive rate")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (required)")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func runCreate(capacity uint64, fpp float64, out string) error {
	cf, err := filter.NewCuckoo[string](capacity, fpp, filter.StringSerializer{})
	if err != nil {
		return fmt.Errorf("dimension filter: %w", err)
	}

	data, err := cf.MarshalBinary()
	if err != nil {
		return fmt.Errorf("serialize filter: %w", err)
	}

	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	dims := cf.Dimensions()
	fmt.Printf("created %s: B=%d E=%d f=%d capacity=%d fpp=%g\n", out, dims.Buckets, dims.EntriesPerBucket, dims.BitsPerEntry, capacity, fpp)
	return nil
}
