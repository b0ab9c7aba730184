package main

import (
	"fmt"
	"os"

	"github.com/absfs/securedata"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newEncryptCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encrypt <input> <output>",
		Short: "Encrypt a file into a password-protected envelope",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCrypt(cmd, opts, args[0], args[1], true)
		},
	}
	addSpecFlags(cmd.Flags(), opts)
	return cmd
}

func newDecryptCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decrypt <input> <output>",
		Short: "Decrypt an envelope made by encrypt",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCrypt(cmd, opts, args[0], args[1], false)
		},
	}
	addSpecFlags(cmd.Flags(), opts)
	return cmd
}

func runCrypt(cmd *cobra.Command, opts *options, input, output string, encrypt bool) error {
	spec, err := opts.envelopeSpec()
	if err != nil {
		return err
	}
	codec, err := securedata.NewCodec(spec)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", input, err)
	}
	password, err := opts.password()
	if err != nil {
		return err
	}

	verb := "Decrypting"
	if encrypt {
		verb = "Encrypting"
	}
	s, cleanup := startSpinner(cmd.ErrOrStderr(), verb+" "+input+"...", opts.verbose)
	defer cleanup()

	opts.logger.WithField("spec", spec.String()).Debugf("%s %d bytes", verb, len(data))

	var result []byte
	if encrypt {
		result, err = codec.Encode(data, password)
	} else {
		result, err = codec.Decode(data, password)
	}
	if err != nil {
		if securedata.IsDecryptionFailure(err) {
			s.FinalMSG = color.RedString("✗") + " Could not decrypt " + color.YellowString(input) + "\n" +
				color.CyanString("→") + " Check the password and the " + color.YellowString("--algorithm") + " and " +
				color.YellowString("--iterations") + " used to encrypt it\n"
		}
		return err
	}

	if err := os.WriteFile(output, result, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}

	s.FinalMSG = color.GreenString("✓") + fmt.Sprintf(" Wrote %d bytes to ", len(result)) + color.YellowString(output) + "\n"
	return nil
}
