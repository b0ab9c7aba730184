package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/absfs/securedata"
	"github.com/fatih/color"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

func newPutCmd(opts *options) *cobra.Command {
	var valueType string

	cmd := &cobra.Command{
		Use:   "put <key> [value]",
		Short: "Store a value under a key",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			raw := ""
			if len(args) == 2 {
				raw = args[1]
			} else if valueType != "null" {
				return fmt.Errorf("a value is required for --type %s", valueType)
			}

			store, err := opts.openStore(true)
			if err != nil {
				return err
			}
			if err := putValue(store.Document(), key, raw, valueType); err != nil {
				return err
			}
			return opts.save(cmd, store, "Stored "+color.YellowString(key))
		},
	}
	cmd.Flags().StringVarP(&valueType, "type", "t", "string", "value type: string, int, float, bool, json, null")
	return cmd
}

func putValue(doc *securedata.Document, key, raw, valueType string) error {
	switch valueType {
	case "string":
		doc.PutString(key, raw)
	case "int":
		n, err := cast.ToIntE(raw)
		if err != nil {
			return fmt.Errorf("invalid int %q: %w", raw, err)
		}
		doc.PutInt(key, n)
	case "float":
		f, err := cast.ToFloat64E(raw)
		if err != nil {
			return fmt.Errorf("invalid float %q: %w", raw, err)
		}
		return doc.PutFloat64(key, f)
	case "bool":
		b, err := cast.ToBoolE(raw)
		if err != nil {
			return fmt.Errorf("invalid bool %q: %w", raw, err)
		}
		doc.PutBool(key, b)
	case "json":
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return fmt.Errorf("invalid json: %w", err)
		}
		return doc.PutValue(key, v)
	case "null":
		doc.PutNull(key)
	default:
		return fmt.Errorf("unknown value type %q", valueType)
	}
	return nil
}

func newGetCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print the value stored under a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.openStore(false)
			if err != nil {
				return err
			}
			v, ok := store.Document().Tree().Get(args[0])
			if !ok {
				return fmt.Errorf("key %q not found", args[0])
			}
			if s, ok := v.(string); ok {
				fmt.Fprintln(cmd.OutOrStdout(), s)
				return nil
			}
			b, err := json.Marshal(v)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	}
}

func newRemoveCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <key>",
		Aliases: []string{"remove"},
		Short:   "Remove a key",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.openStore(true)
			if err != nil {
				return err
			}
			doc := store.Document()
			if !doc.Has(args[0]) {
				return fmt.Errorf("key %q not found", args[0])
			}
			doc.Remove(args[0])
			return opts.save(cmd, store, "Removed "+color.YellowString(args[0]))
		},
	}
}

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the stored keys",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.openStore(false)
			if err != nil {
				return err
			}
			for _, k := range store.Document().Keys() {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		},
	}
}

func newClearCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.openStore(true)
			if err != nil {
				return err
			}
			n := store.Document().Len()
			store.Document().Clear()
			return opts.save(cmd, store, fmt.Sprintf("Removed %d keys", n))
		},
	}
}

func newRekeyCmd(opts *options) *cobra.Command {
	var newPasswordEnv string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "rekey",
		Short: "Re-encrypt the store under a new password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.openStore(true)
			if err != nil {
				return err
			}

			newPassword := []byte(os.Getenv(newPasswordEnv))
			if len(newPassword) == 0 {
				return fmt.Errorf("no new password: set $%s", newPasswordEnv)
			}

			s, cleanup := startSpinner(cmd.ErrOrStderr(), "Re-encrypting "+store.Path()+"...", opts.verbose)
			defer cleanup()

			if err := store.Rotate(securedata.RotationOptions{NewPassword: newPassword, DryRun: dryRun}); err != nil {
				s.FinalMSG = color.RedString("✗") + " Failed to re-encrypt " + color.YellowString(store.Path()) + "\n"
				return err
			}
			if dryRun {
				s.FinalMSG = color.GreenString("✓") + " Dry run passed, nothing written\n"
				return nil
			}
			s.FinalMSG = color.GreenString("✓") + " Store re-encrypted\n" +
				color.CyanString("→") + " Use " + color.YellowString("$"+newPasswordEnv) + " as " +
				color.YellowString("$"+opts.passwordEnv) + " from now on\n"
			return nil
		},
	}
	cmd.Flags().StringVar(&newPasswordEnv, "new-password-env", "SECUREDATA_NEW_PASSWORD", "environment variable holding the new password")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "check the store can be re-encrypted without writing")
	return cmd
}
