package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	port       string
	configPath string
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quizly",
		Short: "Real-time multiplayer quiz rooms over Gorilla WebSocket",
	}

	fs := cmd.PersistentFlags()
	fs.StringVar(&port, "port", "8080", "port to listen on (env: QUIZLY_PORT)")
	fs.StringVar(&configPath, "config", "config/config.yaml", "path to YAML config (env: QUIZLY_CONFIG)")

	// Flags may also be set from the environment, QUIZLY_ prefixed.
	v := viper.New()
	v.SetEnvPrefix("QUIZLY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.AddCommand(NewStartCmd(&configPath, &port))
	cmd.AddCommand(NewMigrateCmd(&configPath))
	return cmd
}
