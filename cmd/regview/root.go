package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/registry-tools/regview"
)

var flags struct {
	registry    string
	username    string
	password    string
	insecure    bool
	plainHTTP   bool
	timeout     time.Duration
	authRealm   string
	authService string
	configFile  string
	debug       bool
}

var rootCmd = &cobra.Command{
	Use:   "regview",
	Short: "Browse and prune Docker v2 container registries",
	Long: `regview navigates a container registry as an object graph:
repositories, their tags, the manifests behind them and the image
creation times derived from config blobs. Read and delete only; it
never pushes.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.registry, "registry", "r", "", "registry host, e.g. registry.example.com:5000")
	pf.StringVarP(&flags.username, "username", "u", "", "username for the registry / token endpoint")
	pf.StringVarP(&flags.password, "password", "p", "", "password for the registry / token endpoint")
	pf.BoolVar(&flags.insecure, "insecure", false, "skip TLS certificate verification")
	pf.BoolVar(&flags.plainHTTP, "plain-http", false, "use plain HTTP for hosts given without a scheme")
	pf.DurationVar(&flags.timeout, "timeout", 30*time.Second, "per-request timeout")
	pf.StringVar(&flags.authRealm, "auth-realm", "", "token endpoint URL (default: discovered from the registry challenge)")
	pf.StringVar(&flags.authService, "auth-service", "", "service name sent on token requests")
	pf.StringVar(&flags.configFile, "config", "", "config file (default: $XDG_CONFIG_HOME/regview/config.yaml)")
	pf.BoolVar(&flags.debug, "debug", false, "log registry requests")

	_ = rootCmd.MarkPersistentFlagRequired("registry")
}

// logger builds the slog logger backed by a charmbracelet handler.
func logger() *slog.Logger {
	handler := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
	})
	if flags.debug {
		handler.SetLevel(log.DebugLevel)
	}
	return slog.New(handler)
}

// newRegistry connects to the registry selected by flags, layering
// flag values over the config file entry for the host.
func newRegistry(ctx context.Context, extra ...regview.Option) (*regview.Registry, error) {
	cfg, err := loadConfig(flags.configFile)
	if err != nil {
		return nil, err
	}
	entry := cfg.Registries[flags.registry]

	username, password := entry.Username, entry.Password
	if flags.username != "" {
		username, password = flags.username, flags.password
	}

	opts := []regview.Option{
		regview.WithTimeout(flags.timeout),
		regview.WithLogger(logger()),
		regview.WithUserAgent("regview"),
	}
	if username != "" {
		opts = append(opts, regview.WithCredentials(username, password))
	}
	if flags.insecure || entry.Insecure {
		opts = append(opts, regview.WithInsecureSkipVerify(true))
	}
	if flags.plainHTTP || entry.PlainHTTP {
		opts = append(opts, regview.WithPlainHTTP(true))
	}
	realm, service := flags.authRealm, flags.authService
	if realm == "" {
		realm, service = entry.AuthRealm, entry.AuthService
	}
	if realm != "" {
		opts = append(opts, regview.WithAuthEndpoint(realm, service))
	}
	opts = append(opts, extra...)

	reg, err := regview.New(ctx, flags.registry, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", flags.registry, err)
	}
	return reg, nil
}
