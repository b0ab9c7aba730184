package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/absfs/securedata"
	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

const defaultPasswordEnv = "SECUREDATA_PASSWORD"

type options struct {
	file        string
	passwordEnv string
	plain       bool
	iterations  int
	algorithm   string
	verbose     bool

	logger *logrus.Logger
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "securedata",
		Short: "Password-protected envelopes and a small encrypted key/value store",
		Long: `securedata encrypts files into password-protected envelopes and manages
a single encrypted JSON document of key/value pairs.

The password is read from the environment variable named by --password-env
(default ` + defaultPasswordEnv + `), or prompted for when running in a terminal.

Usage:
  securedata encrypt <input> <output>
  securedata decrypt <input> <output>
  securedata put <key> <value> [--type string|int|float|bool|json|null]
  securedata get <key>
  securedata rm <key>
  securedata list
  securedata clear
  securedata rekey [--new-password-env VAR] [--dry-run]
`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.logger = newLogger(cmd.ErrOrStderr(), opts.verbose)
			opts.logger.Debugf("running %s", cmd.CommandPath())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.file, "file", "f", "", "store file (default: <user config dir>/securedata/data)")
	flags.StringVar(&opts.passwordEnv, "password-env", defaultPasswordEnv, "environment variable holding the password")
	flags.BoolVar(&opts.plain, "plain", false, "keep the store as plain JSON without a password")
	flags.IntVar(&opts.iterations, "iterations", 0, "PBKDF2 iterations (default: 10000 for envelopes, 128 for the store)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")

	root.AddCommand(
		newEncryptCmd(opts),
		newDecryptCmd(opts),
		newPutCmd(opts),
		newGetCmd(opts),
		newRemoveCmd(opts),
		newListCmd(opts),
		newClearCmd(opts),
		newRekeyCmd(opts),
	)
	return root
}

func addSpecFlags(fs *pflag.FlagSet, opts *options) {
	fs.StringVarP(&opts.algorithm, "algorithm", "a", securedata.AES256.String(),
		"cipher: aes-128, aes-192, aes-256, des, 3des, cast, rc4, rc2, blowfish")
}

func newLogger(w io.Writer, verbose bool) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	l.SetLevel(logrus.WarnLevel)
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}

// envelopeSpec returns the spec used by encrypt and decrypt
func (o *options) envelopeSpec() (securedata.Spec, error) {
	spec := securedata.DefaultSpec()
	if o.algorithm != "" {
		alg, err := securedata.ParseAlgorithm(o.algorithm)
		if err != nil {
			return spec, err
		}
		spec = spec.WithAlgorithm(alg)
	}
	if o.iterations != 0 {
		spec = spec.WithIterations(o.iterations)
	}
	return spec, spec.Validate()
}

// storeSpec returns the spec used for the document store
func (o *options) storeSpec() (securedata.Spec, error) {
	spec := securedata.DocumentSpec()
	if o.iterations != 0 {
		spec = spec.WithIterations(o.iterations)
	}
	return spec, spec.Validate()
}

func (o *options) storePath() (string, error) {
	if o.file != "" {
		return o.file, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot locate a config directory, use --file: %w", err)
	}
	return securedata.DefaultStorePath(filepath.Join(dir, "securedata")), nil
}

// password reads the password from the environment, falling back to an
// interactive prompt on stdin.
func (o *options) password() ([]byte, error) {
	if v := os.Getenv(o.passwordEnv); v != "" {
		o.logger.Debugf("using password from $%s", o.passwordEnv)
		return []byte(v), nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("no password: set $%s or run in a terminal", o.passwordEnv)
	}

	fmt.Fprint(os.Stderr, "Password: ")
	p, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	if len(p) == 0 {
		return nil, fmt.Errorf("password cannot be empty")
	}
	return p, nil
}

// openStore opens the document store. When forWrite is set it refuses a
// store whose existing file could not be read, since saving would replace
// it with the new, mostly empty document.
func (o *options) openStore(forWrite bool) (*securedata.Store, error) {
	path, err := o.storePath()
	if err != nil {
		return nil, err
	}
	spec, err := o.storeSpec()
	if err != nil {
		return nil, err
	}

	var password []byte
	if !o.plain {
		if password, err = o.password(); err != nil {
			return nil, err
		}
	}

	store, err := securedata.OpenStore(&securedata.StoreConfig{
		FileSystem: securedata.NewOSFileSystem(""),
		Path:       path,
		Password:   password,
		Spec:       &spec,
		Logger:     o.logger,
	})
	if err != nil {
		return nil, err
	}

	if store.Document().Status() == securedata.LoadStatusFallback {
		if forWrite {
			return nil, fmt.Errorf("store %s could not be read with this password; refusing to overwrite it", path)
		}
		o.logger.Warnf("store %s could not be read with this password", path)
	}
	return store, nil
}

// save writes the store and waits for the background writer
func (o *options) save(cmd *cobra.Command, store *securedata.Store, done string) error {
	s, cleanup := startSpinner(cmd.ErrOrStderr(), "Saving "+store.Path()+"...", o.verbose)
	defer cleanup()

	err := <-store.Save()
	store.Wait()
	if err != nil {
		s.FinalMSG = color.RedString("✗") + " Failed to save " + color.YellowString(store.Path()) + "\n"
		return err
	}
	s.FinalMSG = color.GreenString("✓") + " " + done + "\n"
	return nil
}

func startSpinner(w io.Writer, message string, verbose bool) (*spinner.Spinner, func()) {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " " + message
	_ = s.Color("cyan")

	active := !verbose && isTerminal(w)
	if active {
		s.Start()
	}

	cleanup := func() {
		msg := s.FinalMSG
		s.FinalMSG = ""
		if active {
			s.Stop()
		}
		if msg != "" {
			if !strings.HasSuffix(msg, "\n") {
				msg += "\n"
			}
			fmt.Fprint(w, msg)
		}
	}
	return s, cleanup
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
