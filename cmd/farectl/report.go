package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fare-insight-api/pkg/analytics"
	"fare-insight-api/pkg/models"
)

func summaryCmd() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the summary handed to insight generation",
		Long:  "Prints the JSON summary for one kind: popular_routes, price_trends or demand_analysis.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := openEnvironment(cmd)
			if err != nil {
				return err
			}
			defer env.close()

			records, err := env.services.Flights.ListFlights(cmd.Context(), models.FlightFilter{})
			if err != nil {
				return err
			}

			var summary interface{}
			switch models.InsightKind(kind) {
			case models.InsightPopularRoutes:
				summary, err = analytics.BuildRouteSummary(records)
			case models.InsightPriceTrends:
				summary, err = analytics.BuildPriceSummary(records)
			case models.InsightDemandAnalysis:
				summary, err = analytics.BuildDemandSummary(records)
			default:
				return fmt.Errorf("%w: %q", analytics.ErrUnknownInsightKind, kind)
			}
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), summary)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", string(models.InsightPopularRoutes), "summary kind")
	return cmd
}

func alertsCmd() *cobra.Command {
	opts := analytics.DefaultAlertOptions()

	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "List routes whose average fare moved past the threshold",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := openEnvironment(cmd)
			if err != nil {
				return err
			}
			defer env.close()

			alerts, err := env.services.Fares.PriceAlerts(cmd.Context(), opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(alerts) == 0 {
				fmt.Fprintln(out, "No price alerts")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ROUTE\tOLD\tNEW\tCHANGE\tTYPE")
			for _, a := range alerts {
				fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%+.2f%%\t%s\n", a.Route, a.PriorAvgPrice, a.RecentAvgPrice, a.PercentageChange, a.AlertType)
			}
			return w.Flush()
		},
	}

	cmd.Flags().Float64Var(&opts.ThresholdPct, "threshold", opts.ThresholdPct, "minimum absolute percentage change")
	cmd.Flags().IntVar(&opts.RecentWindowDays, "recent-days", opts.RecentWindowDays, "recent window length in days")
	cmd.Flags().IntVar(&opts.PriorWindowDays, "prior-days", opts.PriorWindowDays, "prior window length in days")
	return cmd
}

func routeStatsCmd() *cobra.Command {
	var route string

	cmd := &cobra.Command{
		Use:   "route-stats",
		Short: "Print detailed statistics for one route",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if route == "" {
				return fmt.Errorf("--route is required")
			}
			env, err := openEnvironment(cmd)
			if err != nil {
				return err
			}
			defer env.close()

			stats, found, err := env.services.Fares.RouteStatistics(cmd.Context(), route)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("no data found for route %q", route)
			}
			return writeJSON(cmd.OutOrStdout(), stats)
		},
	}

	cmd.Flags().StringVar(&route, "route", "", `route label, e.g. "LAX → JFK"`)
	return cmd
}
