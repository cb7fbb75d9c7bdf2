package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ielm/cuckoofilter/pkg/filter"
	"github.com/ielm/cuckoofilter/pkg/hash"
)

func loadCuckoo(path string) (*filter.CuckooFilter[string], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	cf, err := filter.DeserializeCuckoo[string](data, filter.StringSerializer{}, hash.NewMurmur3Hasher(hash.DefaultMurmur3Seed))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return cf, nil
}

func saveCuckoo(path string, cf *filter.CuckooFilter[string]) error {
	data, err := cf.MarshalBinary()
	if err != nil {
		return fmt.Errorf("serialize filter: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func addCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "add [elements...]",
		Short: "Insert elements into a filter file, rewriting it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cf, err := loadCuckoo(path)
			if err != nil {
				return err
			}
			for _, e := range args {
				ok, err := cf.Add(e)
				if err != nil {
					return fmt.Errorf("add %q: %w", e, err)
				}
				if !ok {
					fmt.Printf("add %q: filter saturated, rejected\n", e)
					continue
				}
				fmt.Printf("add %q: ok\n", e)
			}
			return saveCuckoo(path, cf)
		},
	}
	cmd.Flags().StringVarP(&path, "file", "f", "", "filter file (required)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func containsCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "contains [elements...]",
		Short: "Query whether elements are (probably) present",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cf, err := loadCuckoo(path)
			if err != nil {
				return err
			}
			for _, e := range args {
				ok, err := cf.Contains(e)
				if err != nil {
					return fmt.Errorf("contains %q: %w", e, err)
				}
				fmt.Printf("%q: %t\n", e, ok)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "file", "f", "", "filter file (required)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func removeCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "remove [elements...]",
		Short: "Remove at most one occurrence of each element, rewriting the file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cf, err := loadCuckoo(path)
			if err != nil {
				return err
			}
			for _, e := range args {
				ok, err := cf.Remove(e)
				if err != nil {
					return fmt.Errorf("remove %q: %w", e, err)
				}
				fmt.Printf("remove %q: %t\n", e, ok)
			}
			return saveCuckoo(path, cf)
		},
	}
	cmd.Flags().StringVarP(&path, "file", "f", "", "filter file (required)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
