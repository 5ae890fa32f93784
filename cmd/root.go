package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/z9wen/toolsss/pkg/config"
	"github.com/z9wen/toolsss/pkg/telemetry"
)

var (
	cfgFile string
	verbose bool
	noColor bool
	// Version, GitCommit, and BuildTime are set via ldflags during build
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sitemgr",
	Short: "Provision and maintain TLS-enabled nginx virtual hosts",
	Long: `sitemgr manages nginx virtual hosts and their Let's Encrypt (or other CA)
certificates on a single host. Both nginx and the acme.sh client can run
either as managed docker containers or as native installations; the active
backend is detected automatically once per invocation.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := telemetry.Init(telemetry.DefaultConfig(Version)); err != nil {
		fmt.Fprintln(os.Stderr, "Warning: telemetry init failed:", err)
	}
	defer telemetry.Shutdown(context.Background())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.SetVersionTemplate(fmt.Sprintf(`sitemgr {{.Version}}
Commit:  %s
Built:   %s
`, GitCommit, BuildTime))

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./sitemgr.yaml or /etc/sitemgr/sitemgr.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// findEnvFile searches for a .env file in the current and parent directories
func findEnvFile() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for i := 0; i < 10; i++ {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if envFile := findEnvFile(); envFile != "" {
		_ = godotenv.Load(envFile)
	}

	config.SetDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc/sitemgr")
		viper.SetConfigType("yaml")
		viper.SetConfigName("sitemgr")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("SITEMGR")

	if err := viper.ReadInConfig(); err == nil {
		if verbose {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}
