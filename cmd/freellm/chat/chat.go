package chatcmder

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/freellmlabs/freellm-go/client"
	"github.com/freellmlabs/freellm-go/pkg/logger"
)

const chatLongDesc string = `Send a chat message to the FreeLLM API.

Configuration is resolved in order of precedence: command line flags,
the TOML config file given via --config, FREELLM_* environment
variables, then built-in defaults.

Examples:
  freellm chat "Hello AI!"
  freellm chat --model llama3 --temperature 0.2 "Summarize Go contexts"
  freellm chat --interactive`

const chatShortDesc string = "Send a chat message to the FreeLLM API"

type chatCommander struct {
	configPath  string
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	timeout     time.Duration
	retries     int
	maxHistory  int
	interactive bool
	debug       bool
}

// fileConfig is the TOML config file shape.
type fileConfig struct {
	BaseURL     string   `toml:"base_url"`
	Model       string   `toml:"model"`
	Temperature *float64 `toml:"temperature"`
	MaxTokens   *int     `toml:"max_tokens"`
	TimeoutSec  *float64 `toml:"timeout_sec"`
	MaxRetries  *int     `toml:"max_retries"`
	MaxHistory  *int     `toml:"max_history"`
}

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd, args)
		},
	}

	cmd.Flags().StringVarP(&cmder.configPath, "config", "c", "", "Path to a TOML config file")
	cmd.Flags().StringVar(&cmder.baseURL, "base-url", "", "Base URL of the FreeLLM API")
	cmd.Flags().StringVarP(&cmder.model, "model", "m", "", "Model to use")
	cmd.Flags().Float64VarP(&cmder.temperature, "temperature", "t", 0, "Sampling temperature (0.0-2.0)")
	cmd.Flags().IntVar(&cmder.maxTokens, "max-tokens", 0, "Maximum tokens to generate")
	cmd.Flags().DurationVar(&cmder.timeout, "timeout", 0, "Per-attempt request timeout")
	cmd.Flags().IntVar(&cmder.retries, "retries", -1, "Retries after the first attempt for transient failures")
	cmd.Flags().IntVar(&cmder.maxHistory, "max-history", 0, "Conversation history capacity")
	cmd.Flags().BoolVarP(&cmder.interactive, "interactive", "i", false, "Multi-turn session reading messages from stdin")
	cmd.Flags().BoolVar(&cmder.debug, "debug", false, "Enable debug logging")

	return cmd
}

func (c *chatCommander) run(ctx context.Context, cmd *cobra.Command, args []string) error {
	cfg, err := c.resolveConfig(cmd)
	if err != nil {
		return err
	}

	log := logger.NewLogger(c.debug)
	defer log.Sync()

	cl, err := client.New(cfg, log)
	if err != nil {
		return fmt.Errorf("could not create client: %w", err)
	}
	defer cl.Close()

	if c.interactive {
		return c.runInteractive(ctx, cmd, cl)
	}

	if len(args) == 0 {
		return fmt.Errorf("a message argument is required unless --interactive is set")
	}

	resp, err := cl.Chat(ctx, args[0])
	if err != nil {
		return fmt.Errorf("chat failed: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), resp.Response)
	return nil
}

// runInteractive reads messages line by line and keeps the conversation
// context between turns. An empty line or EOF ends the session.
func (c *chatCommander) runInteractive(ctx context.Context, cmd *cobra.Command, cl *client.Client) error {
	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(cmd.InOrStdin())

	fmt.Fprintln(out, "Starting interactive session. Empty line to exit.")
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		message := strings.TrimSpace(scanner.Text())
		if message == "" {
			break
		}

		resp, err := cl.ChatWithContext(ctx, message)
		if err != nil {
			return fmt.Errorf("chat failed: %w", err)
		}
		fmt.Fprintln(out, resp.Response)
	}

	return scanner.Err()
}

// resolveConfig layers the config file and flags over the environment.
func (c *chatCommander) resolveConfig(cmd *cobra.Command) (client.Config, error) {
	cfg := client.ConfigFromEnv()

	if c.configPath != "" {
		var fc fileConfig
		if _, err := toml.DecodeFile(c.configPath, &fc); err != nil {
			return cfg, fmt.Errorf("could not read config file %s: %w", c.configPath, err)
		}
		if fc.BaseURL != "" {
			cfg.BaseURL = fc.BaseURL
		}
		if fc.Model != "" {
			cfg.DefaultModel = fc.Model
		}
		if fc.Temperature != nil {
			cfg.DefaultTemperature = fc.Temperature
		}
		if fc.MaxTokens != nil {
			cfg.DefaultMaxTokens = fc.MaxTokens
		}
		if fc.TimeoutSec != nil {
			cfg.Timeout = time.Duration(*fc.TimeoutSec * float64(time.Second))
		}
		if fc.MaxRetries != nil {
			cfg.MaxRetries = *fc.MaxRetries
		}
		if fc.MaxHistory != nil {
			cfg.MaxHistory = *fc.MaxHistory
		}
	}

	flags := cmd.Flags()
	if c.baseURL != "" {
		cfg.BaseURL = c.baseURL
	}
	if c.model != "" {
		cfg.DefaultModel = c.model
	}
	if flags.Changed("temperature") {
		temp := c.temperature
		cfg.DefaultTemperature = &temp
	}
	if flags.Changed("max-tokens") {
		maxTokens := c.maxTokens
		cfg.DefaultMaxTokens = &maxTokens
	}
	if flags.Changed("timeout") {
		cfg.Timeout = c.timeout
	}
	if flags.Changed("retries") {
		cfg.MaxRetries = c.retries
	}
	if flags.Changed("max-history") {
		cfg.MaxHistory = c.maxHistory
	}

	return cfg, nil
}
