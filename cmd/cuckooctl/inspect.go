package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func inspectCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print a filter file's dimensioning, size, checksum, and current fpp",
		RunE: func(cmd *cobra.Command, args []string) error {
			cf, err := loadCuckoo(path)
			if err != nil {
				return err
			}
			dims := cf.Dimensions()
			fmt.Printf("buckets=%d entriesPerBucket=%d bitsPerEntry=%d\n", dims.Buckets, dims.EntriesPerBucket, dims.BitsPerEntry)
			fmt.Printf("capacity=%d fpp=%g\n", cf.Capacity(), cf.FPP())
			fmt.Printf("size=%d checksum=%d currentFpp=%g\n", cf.SizeLong(), cf.Checksum(), cf.CurrentFPP())
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "file", "f", "", "filter file (required)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
