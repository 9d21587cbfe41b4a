package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the CLI settings.
type Config struct {
	ServerURL string
	SessionDB string
}

func defaultSessionDB() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "taskctl-session.db"
	}
	return filepath.Join(home, ".taskctl", "session.db")
}

// LoadConfig reads TASKCTL_* env vars, then lets leading global flags
// override them. It returns the remaining arguments.
func LoadConfig(args []string, errOut io.Writer) (Config, []string, error) {
	v := viper.New()
	v.SetEnvPrefix("TASKCTL")
	v.AutomaticEnv()
	v.SetDefault("SERVER_URL", "http://localhost:8080")
	v.SetDefault("SESSION_DB", defaultSessionDB())

	fs := flag.NewFlagSet("taskctl", flag.ContinueOnError)
	fs.SetOutput(errOut)
	server := fs.String("server", v.GetString("SERVER_URL"), "taskboard server base URL")
	sessionDB := fs.String("session-db", v.GetString("SESSION_DB"), "path of the local session database")
	fs.Usage = func() { usage(errOut) }
	if err := fs.Parse(args); err != nil {
		return Config{}, nil, err
	}

	cfg := Config{
		ServerURL: strings.TrimRight(strings.TrimSpace(*server), "/"),
		SessionDB: strings.TrimSpace(*sessionDB),
	}
	if cfg.ServerURL == "" {
		return Config{}, nil, fmt.Errorf("server URL is required")
	}
	if cfg.SessionDB == "" {
		return Config{}, nil, fmt.Errorf("session db path is required")
	}
	return cfg, fs.Args(), nil
}
