package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"finplan/internal/config"
	"finplan/internal/domain"
	"finplan/internal/executor"
	"finplan/internal/plan"
	"finplan/internal/server"
	"finplan/internal/sim"
	"finplan/internal/strategy"
)

var rootCmd = &cobra.Command{
	Use:   "fp",
	Short: "Finplan CLI",
	Long: `Finplan turns financial strategies into concrete plan events.
A plan is a YAML file holding a profile and an event ledger. Strategies from
the catalog read the plan, check whether they apply, and emit dated
contribution, allocation, payoff, and transfer events you can merge back in.`,
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("FINPLAN")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().StringP("config", "c", "finplan.yml", "engine config file")
	rootCmd.PersistentFlags().StringP("plan", "p", "plan.yaml", "plan file")
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("plan", rootCmd.PersistentFlags().Lookup("plan"))
}

func registerCommands() {
	rootCmd.AddCommand(strategyCmd())
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(planCmd())
	rootCmd.AddCommand(serveCmd())
}

func loadEngine() (*config.Config, *strategy.Registry, *executor.Service, error) {
	cfg, err := config.Load(viper.GetString("config"))
	if err != nil {
		return nil, nil, nil, err
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	reg := strategy.DefaultRegistry(cfg, sim.Noop{})
	return cfg, reg, executor.New(reg, log), nil
}

func strategyCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "strategy", Short: "Browse the strategy catalog"}
	cmd.AddCommand(strategyListCmd())
	cmd.AddCommand(strategyShowCmd())
	return cmd
}

func strategyListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List strategies",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, reg, _, err := loadEngine()
			if err != nil {
				return err
			}
			all := reg.All()
			if viper.GetBool("json") {
				defs := make([]domain.StrategyDefinition, 0, len(all))
				for _, s := range all {
					defs = append(defs, s.Definition())
				}
				return printJSON(defs)
			}
			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"ID", "Name", "Category", "Tier", "Difficulty"})
			for _, s := range all {
				d := s.Definition()
				tw.AppendRow(table.Row{d.ID, d.Name, d.Category, d.Tier, d.Difficulty})
			}
			tw.Render()
			return nil
		},
	}
}

func strategyShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <strategy-id>",
		Short: "Show a strategy and its parameters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, reg, _, err := loadEngine()
			if err != nil {
				return err
			}
			s, err := reg.ByID(args[0])
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(map[string]any{
					"definition": s.Definition(),
					"parameters": s.Parameters(),
				})
			}
			d := s.Definition()
			fmt.Printf("%s (%s)\n", d.Name, d.ID)
			fmt.Printf("category: %s  tier: %d  difficulty: %s\n", d.Category, d.Tier, d.Difficulty)
			if len(d.Tags) > 0 {
				fmt.Printf("tags: %s\n", strings.Join(d.Tags, ", "))
			}
			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"Parameter", "Type", "Required", "Default", "Range"})
			for _, p := range s.Parameters() {
				tw.AppendRow(table.Row{p.Name, p.Type, p.Required, defaultString(p), rangeString(p)})
			}
			tw.Render()
			return nil
		},
	}
}

func runCmd() *cobra.Command {
	var strategyID string
	var inputPairs []string
	var apply bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a strategy against the plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strategyID == "" {
				return fmt.Errorf("--strategy required")
			}
			_, reg, svc, err := loadEngine()
			if err != nil {
				return err
			}
			s, err := reg.ByID(strategyID)
			if err != nil {
				return err
			}
			p, err := plan.Load(viper.GetString("plan"))
			if err != nil {
				return err
			}
			inputs, err := parseInputs(s.Parameters(), inputPairs)
			if err != nil {
				return err
			}
			res := svc.Run(cmd.Context(), strategyID, p.Context(), inputs)
			if apply && res.Success {
				log := slog.New(slog.NewTextHandler(os.Stderr, nil))
				p.Events = plan.Compose(p.Events, res, log)
				if err := p.Save(viper.GetString("plan")); err != nil {
					return err
				}
			}
			if viper.GetBool("json") {
				return printJSON(res)
			}
			printResult(res)
			return nil
		},
	}
	cmd.Flags().StringVarP(&strategyID, "strategy", "s", "", "strategy id")
	cmd.Flags().StringArrayVarP(&inputPairs, "input", "i", nil, "strategy input as key=value (repeatable)")
	cmd.Flags().BoolVar(&apply, "apply", false, "merge the result back into the plan file")
	_ = cmd.MarkFlagRequired("strategy")
	return cmd
}

func planCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "plan", Short: "Inspect the plan file"}
	cmd.AddCommand(planShowCmd())
	return cmd
}

func planShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the plan's event ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := plan.Load(viper.GetString("plan"))
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(p)
			}
			fmt.Printf("%s, age %d (%d)\n", orUnnamed(p.Profile.Name), p.Profile.CurrentAge, p.Profile.CurrentYear)
			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"Month", "Type", "Name", "Amount", "Account", "Strategy"})
			for _, ev := range p.Events {
				tw.AppendRow(table.Row{ev.MonthOffset, ev.Type, ev.Name, ev.Amount.String(), ev.TargetAccount, ev.Metadata.StrategyID})
			}
			tw.Render()
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	var addr, basePath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, reg, svc, err := loadEngine()
			if err != nil {
				return err
			}
			log := slog.New(slog.NewTextHandler(os.Stderr, nil))
			handler, err := server.New(server.Config{
				Registry: reg,
				Executor: svc,
				Log:      log,
				BasePath: basePath,
			})
			if err != nil {
				return err
			}
			srv := &http.Server{Addr: addr, Handler: handler}
			go func() {
				<-cmd.Context().Done()
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(ctx)
			}()
			fmt.Printf("Serving Finplan API on http://%s%s (OpenAPI at %s/openapi.json)\n", addr, basePath, basePath)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8715", "listen address")
	cmd.Flags().StringVar(&basePath, "base-path", "/v0", "API base path")
	return cmd
}

// parseInputs coerces key=value flags using the parameter schema, so numbers
// and booleans reach the strategy typed rather than as strings.
func parseInputs(params []domain.Parameter, pairs []string) (map[string]any, error) {
	types := make(map[string]domain.ParamType, len(params))
	for _, p := range params {
		types[p.Name] = p.Type
	}
	inputs := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("input %q must look like key=value", pair)
		}
		switch types[key] {
		case domain.ParamNumber, domain.ParamPercentage:
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return nil, fmt.Errorf("input %s: %q is not a number", key, value)
			}
			inputs[key] = f
		case domain.ParamBoolean:
			b, err := strconv.ParseBool(value)
			if err != nil {
				return nil, fmt.Errorf("input %s: %q is not a boolean", key, value)
			}
			inputs[key] = b
		default:
			inputs[key] = value
		}
	}
	return inputs, nil
}

func printResult(res domain.StrategyResult) {
	if !res.Success {
		fmt.Printf("%s failed\n", res.StrategyID)
		for _, w := range res.Warnings {
			fmt.Printf("  warning: %s\n", w)
		}
		return
	}
	fmt.Printf("%s succeeded\n", res.StrategyID)
	if len(res.GeneratedEvents) > 0 {
		tw := table.NewWriter()
		tw.SetOutputMirror(os.Stdout)
		tw.AppendHeader(table.Row{"Month", "Type", "Name", "Amount", "Reason"})
		for _, ge := range res.GeneratedEvents {
			tw.AppendRow(table.Row{ge.Event.MonthOffset, ge.Event.Type, ge.Event.Name, ge.Event.Amount.String(), ge.Reason})
		}
		tw.Render()
	}
	for _, me := range res.ModifiedEvents {
		fmt.Printf("modified %q", me.Event.Name)
		for _, ch := range me.Changes {
			fmt.Printf(" %s: %s -> %s", ch.Field, ch.Old, ch.New)
		}
		fmt.Println()
	}
	for _, rec := range res.Recommendations {
		fmt.Printf("[%s] %s: %s\n", rec.Importance, rec.Title, rec.Description)
	}
	if res.EstimatedImpact != nil && res.EstimatedImpact.Summary != "" {
		fmt.Println(res.EstimatedImpact.Summary)
	}
	for _, w := range res.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
	for _, step := range res.NextSteps {
		fmt.Printf("next: %s\n", step)
	}
}

func defaultString(p domain.Parameter) string {
	if p.Default == nil {
		return ""
	}
	return fmt.Sprintf("%v", p.Default)
}

func rangeString(p domain.Parameter) string {
	if len(p.Options) > 0 {
		return strings.Join(p.Options, "|")
	}
	switch {
	case p.Min != nil && p.Max != nil:
		return fmt.Sprintf("%v..%v", *p.Min, *p.Max)
	case p.Min != nil:
		return fmt.Sprintf(">= %v", *p.Min)
	case p.Max != nil:
		return fmt.Sprintf("<= %v", *p.Max)
	}
	return ""
}

func orUnnamed(name string) string {
	if name == "" {
		return "unnamed plan"
	}
	return name
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
