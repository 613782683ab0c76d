package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"folio/api/internal/remote"
	"folio/api/internal/session"
)

var cfgFile string

type ctlConfig struct {
	ServerURL string `mapstructure:"serverUrl"`
	Author    string `mapstructure:"author"`
	DraftPath string `mapstructure:"draftPath"`
}

var ctlCfg ctlConfig

var rootCmd = &cobra.Command{
	Use:   "folioctl",
	Short: "Manage the personal-site configuration document",
	Long: `folioctl keeps a local draft of the site configuration document,
applies edits to it, and publishes it to the folio API when ready.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./folioctl.yaml)")
}

func initializeConfig() error {
	v := viper.New()

	v.SetDefault("serverUrl", "http://localhost:8788")
	v.SetDefault("author", "")
	v.SetDefault("draftPath", "./folio-draft.json")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("folioctl")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("FOLIO")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if cfgFile != "" {
			return fmt.Errorf("read config file %s: %w", cfgFile, err)
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("read config file: %w", err)
		}
	}

	if err := v.Unmarshal(&ctlCfg); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

// newSession builds the working-copy session over the configured draft slot
// and server. Commands that need existing content call ensureLoaded.
func newSession() (*session.Session, *remote.Client) {
	client := remote.NewClient(ctlCfg.ServerURL, ctlCfg.Author)
	draft := session.NewDraftStore(ctlCfg.DraftPath)
	return session.New(draft, client), client
}

// ensureLoaded restores the local draft, falling back to the remote document
// when no draft exists yet.
func ensureLoaded(cmd *cobra.Command, sess *session.Session) error {
	ok, err := sess.LoadLocalDraft()
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	cmd.Println("No local draft, pulling from server...")
	return sess.LoadFromRemote(cmd.Context())
}
