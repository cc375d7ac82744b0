package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/devs-sim/devs-sim/devs"
)

var (
	cfgFile  string // optional YAML scenario file
	logLevel string // log verbosity level

	// CLI flags mirroring the Scenario fields; a scenario file overrides
	// the defaults, explicit flags override the file.
	network           string  // named model network to build
	formalism         string  // cdevs or pdevs
	endTime           float64 // simulation horizon
	maintainHierarchy bool    // false = flatten the coupled hierarchy
	meanInterarrival  float64 // generator mean interarrival time
	jobs              int     // jobs per generator (0 = unbounded)
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "devs-sim",
	Short: "Hierarchical DEVS simulator (classic and parallel formalisms)",
}

// runCmd builds the selected scenario and runs it to the horizon
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation scenario",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		sc := scenarioFromFlags(cmd)
		f, err := sc.FormalismTag()
		if err != nil {
			logrus.Fatalf("Invalid scenario: %v", err)
		}
		model, err := sc.Build()
		if err != nil {
			logrus.Fatalf("Cannot build scenario %q: %v", sc.Network, err)
		}

		logrus.Infof("Scenario %q: formalism=%s, end_time=%g, maintain_hierarchy=%v",
			sc.Network, f, sc.EndTime, sc.MaintainHierarchy)

		root := devs.NewRootCoordinator(model, devs.Config{
			Formalism: f,
			Flatten:   !sc.MaintainHierarchy,
		})
		root.Simulate(sc.EndTime)
		root.Stats().Print(os.Stdout)
	},
}

// scenarioFromFlags layers the viper-loaded scenario file (when given)
// under the explicit CLI flags.
func scenarioFromFlags(cmd *cobra.Command) *Scenario {
	sc := DefaultScenario()
	if cfgFile != "" {
		loaded, err := LoadScenario(cfgFile)
		if err != nil {
			logrus.Fatalf("Cannot read scenario file: %v", err)
		}
		sc = loaded
	}
	if cmd.Flags().Changed("network") || cfgFile == "" {
		sc.Network = network
	}
	if cmd.Flags().Changed("formalism") || cfgFile == "" {
		sc.Formalism = formalism
	}
	if cmd.Flags().Changed("end-time") || cfgFile == "" {
		sc.EndTime = endTime
	}
	if cmd.Flags().Changed("maintain-hierarchy") || cfgFile == "" {
		sc.MaintainHierarchy = maintainHierarchy
	}
	if cmd.Flags().Changed("mean-interarrival") || cfgFile == "" {
		sc.MeanInterarrival = meanInterarrival
	}
	if cmd.Flags().Changed("jobs") || cfgFile == "" {
		sc.Jobs = jobs
	}
	return sc
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML scenario file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")

	runCmd.Flags().StringVar(&network, "network", "gen2recv", "Model network: gen2recv, gen2recv-hier, pipeline")
	runCmd.Flags().StringVar(&formalism, "formalism", "pdevs", "Formalism: cdevs or pdevs")
	runCmd.Flags().Float64Var(&endTime, "end-time", 100, "Simulation horizon")
	runCmd.Flags().BoolVar(&maintainHierarchy, "maintain-hierarchy", true, "Keep the coupled hierarchy instead of flattening it")
	runCmd.Flags().Float64Var(&meanInterarrival, "mean-interarrival", 5, "Generator mean interarrival time")
	runCmd.Flags().IntVar(&jobs, "jobs", 10, "Jobs per generator (0 = unbounded)")

	viper.BindPFlag("network", runCmd.Flags().Lookup("network"))
	viper.BindPFlag("formalism", runCmd.Flags().Lookup("formalism"))
	viper.BindPFlag("end_time", runCmd.Flags().Lookup("end-time"))

	rootCmd.AddCommand(runCmd)
}

// initConfig points viper at the scenario file and at DEVSSIM_* environment
// variables. The run command builds its scenario from the flag variables and
// LoadScenario, not from viper, so those environment variables do not change
// the scenario that runs.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
	viper.SetEnvPrefix("devssim")
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err == nil {
		logrus.Debugf("Using config file: %s", viper.ConfigFileUsed())
	}
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
