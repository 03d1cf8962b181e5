// Command rangefpe encrypts and decrypts integers without leaving their range.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/tink/go/keyset"
	"github.com/spf13/cobra"

	fpe "github.com/vdparikh/rangefpe"
	"github.com/vdparikh/rangefpe/internal/config"
	"github.com/vdparikh/rangefpe/internal/logging"
	"github.com/vdparikh/rangefpe/subtle"
	"github.com/vdparikh/rangefpe/tinkfpe"
)

const version = "1.0.0"

// cli holds state shared by the subcommands of one invocation.
type cli struct {
	envFile string
	cfg     *config.Config
	logger  *slog.Logger
	logOut  io.Writer
}

func main() {
	if err := newRootCmd(os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(logOut io.Writer) *cobra.Command {
	c := &cli{logOut: logOut}

	rootCmd := &cobra.Command{
		Use:          "rangefpe",
		Short:        "Range-preserving encryption of integers",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.configure(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&c.envFile, "env-file", ".env", "Optional .env file to load")
	flags.String("cipher", "", "Cipher identifier (or set RANGEFPE_CIPHER)")
	flags.Int("rounds", 0, "Odd number of Feistel rounds >= 3 (or set RANGEFPE_ROUNDS)")
	flags.String("keyset", "", "Keyset file holding the base key (or set RANGEFPE_KEYSET)")
	flags.String("min", "", "Minimum domain value (or set RANGEFPE_MIN)")
	flags.String("max", "", "Maximum domain value (or set RANGEFPE_MAX)")
	flags.Int("max-cycle-walks", 0, "Cap on Feistel passes per call, 0 for none (or set RANGEFPE_MAX_CYCLE_WALKS)")
	flags.String("log-level", "", "DEBUG, INFO, WARN or ERROR (or set LOG_LEVEL)")

	rootCmd.AddCommand(c.encryptCmd())
	rootCmd.AddCommand(c.decryptCmd())
	rootCmd.AddCommand(c.keygenCmd())
	rootCmd.AddCommand(c.nonceCmd())
	rootCmd.AddCommand(c.sampleCmd())
	rootCmd.AddCommand(c.ciphersCmd())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

// configure loads the environment config and applies explicitly set flags on top.
func (c *cli) configure(cmd *cobra.Command) error {
	cfg, err := config.Load(c.envFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("cipher") {
		cfg.Cipher, _ = flags.GetString("cipher")
	}
	if flags.Changed("rounds") {
		cfg.Rounds, _ = flags.GetInt("rounds")
	}
	if flags.Changed("keyset") {
		cfg.KeysetPath, _ = flags.GetString("keyset")
	}
	if flags.Changed("min") {
		cfg.MinValue, _ = flags.GetString("min")
	}
	if flags.Changed("max") {
		cfg.MaxValue, _ = flags.GetString("max")
	}
	if flags.Changed("max-cycle-walks") {
		cfg.MaxCycleWalks, _ = flags.GetInt("max-cycle-walks")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.Setup(c.logOut, cfg.LogLevel)
	if err != nil {
		return err
	}

	c.cfg = cfg
	c.logger = logger
	return nil
}

// engine builds an Engine from the configured keyset, cipher, rounds and range.
func (c *cli) engine() (*fpe.Engine, error) {
	if err := tinkfpe.Register(); err != nil {
		return nil, fmt.Errorf("failed to register key manager: %w", err)
	}

	handle, err := loadKeyset(c.cfg.KeysetPath)
	if err != nil {
		return nil, err
	}

	engine, err := tinkfpe.New(handle, c.cfg.Cipher, c.cfg.Rounds,
		fpe.WithLogger(c.logger),
		fpe.WithMaxCycleWalks(c.cfg.MaxCycleWalks))
	if err != nil {
		return nil, err
	}
	return engine.SetRange(c.cfg.MinValue, c.cfg.MaxValue)
}

type opFlags struct {
	base     int
	pad      bool
	password string
	nonce    string
}

func (o *opFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&o.base, "base", 10, "Input and output base: 2, 10 or 16")
	cmd.Flags().BoolVar(&o.pad, "pad", false, "Left-pad output with zeros to the domain width")
	cmd.Flags().StringVar(&o.password, "password", "", "Password (or set RANGEFPE_PASSWORD)")
	cmd.Flags().StringVar(&o.nonce, "nonce", "", "Hex-encoded nonce sized for the cipher")
}

func (o *opFlags) secrets() ([]byte, []byte, error) {
	password := o.password
	if password == "" {
		password = os.Getenv("RANGEFPE_PASSWORD")
	}
	if password == "" {
		return nil, nil, errors.New("--password is required (or set RANGEFPE_PASSWORD)")
	}

	nonce, err := hex.DecodeString(o.nonce)
	if err != nil {
		return nil, nil, fmt.Errorf("--nonce must be hex encoded: %w", err)
	}
	return []byte(password), nonce, nil
}

func (c *cli) encryptCmd() *cobra.Command {
	var o opFlags
	cmd := &cobra.Command{
		Use:   "encrypt <value>",
		Short: "Encrypt a value within the configured range",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, &o, args[0], "encrypt")
		},
	}
	o.register(cmd)
	return cmd
}

func (c *cli) decryptCmd() *cobra.Command {
	var o opFlags
	cmd := &cobra.Command{
		Use:   "decrypt <value>",
		Short: "Decrypt a value produced by encrypt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, &o, args[0], "decrypt")
		},
	}
	o.register(cmd)
	return cmd
}

func (c *cli) run(cmd *cobra.Command, o *opFlags, input, op string) error {
	password, nonce, err := o.secrets()
	if err != nil {
		return err
	}

	engine, err := c.engine()
	if err != nil {
		return err
	}

	var out string
	if op == "encrypt" {
		out, err = engine.Encrypt(input, fpe.Base(o.base), o.pad, password, nonce)
	} else {
		out, err = engine.Decrypt(input, fpe.Base(o.base), o.pad, password, nonce)
	}
	if err != nil {
		c.logger.Error(op+" failed", slog.String("cipher", engine.Cipher()), slog.Any("error", err))
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func (c *cli) keygenCmd() *cobra.Command {
	var size int
	var force bool
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a keyset holding a new random base key",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := tinkfpe.Register(); err != nil {
				return fmt.Errorf("failed to register key manager: %w", err)
			}

			path := c.cfg.KeysetPath
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("keyset %s already exists (use --force to overwrite)", path)
			}

			handle, err := keyset.NewHandle(tinkfpe.KeyTemplateSize(size))
			if err != nil {
				return fmt.Errorf("failed to create keyset handle: %w", err)
			}
			if err := storeKeyset(handle, path); err != nil {
				return err
			}

			c.logger.Info("keyset written", slog.String("path", path), slog.Int("key_bytes", size))
			fmt.Fprintf(cmd.OutOrStdout(), "Keyset stored to %s\n", path)
			return nil
		},
	}
	cmd.Flags().IntVar(&size, "size", 32, "Base key size in bytes: 16, 24 or 32")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing keyset")
	return cmd
}

func (c *cli) nonceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "nonce",
		Short: "Print a random hex nonce sized for the configured cipher",
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := subtle.Lookup(c.cfg.Cipher)
			if err != nil {
				return err
			}
			if !profile.UsesIV {
				return fmt.Errorf("cipher %s does not use a nonce", profile.ID)
			}

			nonce := make([]byte, profile.IVBytes)
			if _, err := rand.Read(nonce); err != nil {
				return fmt.Errorf("failed to generate nonce: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(nonce))
			return nil
		},
	}
}

func (c *cli) sampleCmd() *cobra.Command {
	var o opFlags
	var count int
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Round-trip random values from the configured range and print them",
		RunE: func(cmd *cobra.Command, args []string) error {
			password, nonce, err := o.secrets()
			if err != nil {
				return err
			}
			engine, err := c.engine()
			if err != nil {
				return err
			}

			width := engine.Domain().DecDigits()
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%-*s | %-*s | %-*s | %s\n", width, "PLAINTEXT", width, "CIPHERTEXT", width, "DECRYPTED", "MATCH")

			failed := 0
			for i := 0; i < count; i++ {
				plaintext, err := engine.RandomValue()
				if err != nil {
					return err
				}
				ciphertext, err := engine.Encrypt(plaintext, fpe.Decimal, false, password, nonce)
				if err != nil {
					return err
				}
				decrypted, err := engine.Decrypt(ciphertext, fpe.Decimal, false, password, nonce)
				if err != nil {
					return err
				}

				match := plaintext == decrypted
				if !match {
					failed++
				}
				fmt.Fprintf(w, "%-*s | %-*s | %-*s | %t\n", width, plaintext, width, ciphertext, width, decrypted, match)
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d values did not round-trip", failed, count)
			}
			return nil
		},
	}
	o.register(cmd)
	cmd.Flags().IntVar(&count, "count", 10, "Number of random values")
	return cmd
}

func (c *cli) ciphersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ciphers",
		Short: "List supported ciphers",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%-16s %-6s %-9s %s\n", "CIPHER", "NONCE", "KEY BITS", "MAX SIDE BITS")
			fmt.Fprintln(w, strings.Repeat("-", 46))
			for _, id := range subtle.Supported() {
				p, _ := subtle.Lookup(id)
				nonce := "-"
				if p.UsesIV {
					nonce = fmt.Sprintf("%dB", p.IVBytes)
				}
				fmt.Fprintf(w, "%-16s %-6s %-9d %d\n", p.ID, nonce, p.KeyBytes*8, p.BlockBits)
			}
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "rangefpe version %s\n", version)
		},
	}
}
