package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"fare-insight-api/pkg/services"
)

func seedCmd() *cobra.Command {
	var (
		count int
		seed  int64
		reset bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert generated sample fares",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if count <= 0 {
				return fmt.Errorf("--count must be positive, got %d", count)
			}
			env, err := openEnvironment(cmd)
			if err != nil {
				return err
			}
			defer env.close()

			ctx := cmd.Context()
			if reset {
				if err := env.services.Flights.DeleteAll(ctx); err != nil {
					return err
				}
			}

			sampler := env.services.Sampler
			if cmd.Flags().Changed("seed") {
				sampler = services.NewSampleDataService(seed)
			}
			n, err := env.services.Flights.InsertFlights(ctx, sampler.Generate(count, time.Now()))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Inserted %d sample records\n", n)
			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", 500, "number of records to generate")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed for reproducible data")
	cmd.Flags().BoolVar(&reset, "reset", false, "delete existing flight records first")
	return cmd
}
