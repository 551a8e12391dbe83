// Copyright (c) 2026 Lorekeeper Team
// Lorekeeper - community record privacy vault
// This source code is licensed under the MIT license found in the LICENSE file.

// vault.go implements the privacy engine commands: sealing records into
// encrypted envelopes, opening them again, previewing redaction and
// evaluating the access decision table.

package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/atotto/clipboard"
	log "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/lorekeeper/lorekeeper/internal/db"
	"github.com/lorekeeper/lorekeeper/internal/i18n"
	"github.com/lorekeeper/lorekeeper/internal/logging"
	"github.com/lorekeeper/lorekeeper/internal/model"
	"github.com/lorekeeper/lorekeeper/internal/privacy"
)

var passphrase string // Flag for seal/open

// newEngine builds a privacy engine that logs through the shared logger.
func newEngine() *privacy.Engine {
	return privacy.New(privacy.WithLogger(logging.L))
}

// sealCmd represents the 'seal' command.
var sealCmd = &cobra.Command{
	Use:   "seal <record-id>",
	Short: "Encrypt a record into a sealed envelope",
	Long: `Seals a record under a passphrase and stores the resulting envelope.
The effective policy starts from the defaults (encryption on, restricted
access, medium sensitivity, anonymization on); flags override individual
fields. Sealing replaces any previous envelope for the record.

The passphrase is prompted for when not given via --passphrase.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: setupDefaultServices,
	RunE: func(cmd *cobra.Command, args []string) error {
		record, err := db.GetRecord(args[0])
		if err != nil {
			return fmt.Errorf("failed to load record: %w", err)
		}
		if record == nil {
			return fmt.Errorf("record not found: %s", args[0])
		}

		overrides, err := policyOverridesFromFlags(cmd)
		if err != nil {
			return err
		}

		pass, err := resolvePassphrase(i18n.T("seal.cli_passphrase_prompt"))
		if err != nil {
			return err
		}
		if pass == "" {
			return errors.New(i18n.T("seal.cli_error_empty_passphrase"))
		}

		envelope, err := newEngine().Encrypt(*record, pass, overrides)
		if err != nil {
			if errors.Is(err, privacy.ErrEncryptionDisabled) {
				return errors.New(i18n.T("seal.cli_error_encryption_disabled"))
			}
			return fmt.Errorf("failed to seal record: %w", err)
		}

		sealed := model.SealedRecord{
			RecordID:  record.ID,
			Envelope:  envelope,
			Policy:    overrides.Merge(),
			CreatedAt: time.Now().UTC(),
		}
		if err := db.SaveSealedRecord(sealed); err != nil {
			return fmt.Errorf("failed to store sealed envelope: %w", err)
		}

		fmt.Println(i18n.T("seal.cli_success", record.Name, record.ID))
		return nil
	},
}

// openCmd represents the 'open' command.
var openCmd = &cobra.Command{
	Use:   "open <record-id>",
	Short: "Decrypt a sealed record envelope",
	Long: `Opens the sealed envelope for a record and prints the decrypted record.
The passphrase must match the one the envelope was sealed under; a wrong
passphrase and a tampered envelope produce the same authentication error,
so the failure carries no hint about which one it was.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: setupDefaultServices,
	RunE: func(cmd *cobra.Command, args []string) error {
		copyContent, _ := cmd.Flags().GetBool("copy")

		sealed, err := db.GetSealedRecord(args[0])
		if err != nil {
			return fmt.Errorf("failed to load sealed envelope: %w", err)
		}
		if sealed == nil {
			return fmt.Errorf("no sealed envelope for record: %s", args[0])
		}

		pass, err := resolvePassphrase(i18n.T("open.cli_passphrase_prompt"))
		if err != nil {
			return err
		}

		record, err := newEngine().Decrypt(sealed.Envelope, pass)
		if err != nil {
			if privacy.IsAuthenticationError(err) {
				return errors.New(i18n.T("open.cli_error_auth"))
			}
			if privacy.IsEnvelopeFormatError(err) {
				return errors.New(i18n.T("open.cli_error_envelope", err))
			}
			return fmt.Errorf("failed to open record: %w", err)
		}

		printRecordDetails(record)

		if copyContent {
			if err := clipboard.WriteAll(record.Content); err != nil {
				log.Warnf("could not copy content to clipboard: %v", err)
			} else {
				fmt.Println(i18n.T("open.cli_copied"))
			}
		}
		return nil
	},
}

// redactCmd represents the 'redact' command.
var redactCmd = &cobra.Command{
	Use:   "redact <record-id>",
	Short: "Apply sensitivity redaction to a record",
	Long: `Applies the redaction rules of the effective policy and prints the result.
High sensitivity masks the cultural context; anonymization replaces the
record name with "Anonymous Community". The stored record is left
untouched unless --write is given.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: setupDefaultServices,
	RunE: func(cmd *cobra.Command, args []string) error {
		write, _ := cmd.Flags().GetBool("write")

		record, err := db.GetRecord(args[0])
		if err != nil {
			return fmt.Errorf("failed to load record: %w", err)
		}
		if record == nil {
			return fmt.Errorf("record not found: %s", args[0])
		}

		overrides, err := policyOverridesFromFlags(cmd)
		if err != nil {
			return err
		}

		redacted := newEngine().ApplyPolicy(*record, overrides)
		printRecordDetails(&redacted)

		if write {
			if err := db.UpdateRecord(redacted); err != nil {
				return fmt.Errorf("failed to persist redacted record: %w", err)
			}
			fmt.Println(i18n.T("redact.cli_written"))
		}
		return nil
	},
}

// accessCmd represents the 'access' command.
var accessCmd = &cobra.Command{
	Use:   "access <role>",
	Short: "Check whether a role may read records under a policy",
	Long: `Evaluates the access decision table for a role: public records are
readable by everyone, private records by admins and moderators, and
restricted records by admins only. Unknown access levels are treated
as restricted.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: setupDefaultServices,
	RunE: func(cmd *cobra.Command, args []string) error {
		role := args[0]

		overrides, err := policyOverridesFromFlags(cmd)
		if err != nil {
			return err
		}
		policy := overrides.Merge()

		if newEngine().CheckAccess(role, overrides) {
			fmt.Println(i18n.T("access.cli_granted", role, string(policy.AccessLevel)))
		} else {
			fmt.Println(i18n.T("access.cli_denied", role, string(policy.AccessLevel)))
		}
		return nil
	},
}

// policyOverridesFromFlags collects explicitly set policy flags into
// overrides. Flags the user did not set stay nil so the defaults apply.
func policyOverridesFromFlags(cmd *cobra.Command) (*model.PolicyOverrides, error) {
	overrides := &model.PolicyOverrides{}

	if cmd.Flags().Changed("access") {
		value, _ := cmd.Flags().GetString("access")
		level := model.AccessLevel(value)
		if !level.Valid() {
			return nil, fmt.Errorf("invalid access level %q (expected public, private or restricted)", value)
		}
		overrides.AccessLevel = &level
	}
	if cmd.Flags().Changed("sensitivity") {
		value, _ := cmd.Flags().GetString("sensitivity")
		level := model.SensitivityLevel(value)
		if !level.Valid() {
			return nil, fmt.Errorf("invalid sensitivity level %q (expected low, medium or high)", value)
		}
		overrides.SensitivityLevel = &level
	}
	if cmd.Flags().Changed("anonymize") {
		value, _ := cmd.Flags().GetBool("anonymize")
		overrides.Anonymize = &value
	}
	if cmd.Flags().Changed("no-encrypt") {
		value, _ := cmd.Flags().GetBool("no-encrypt")
		enabled := !value
		overrides.EncryptionEnabled = &enabled
	}

	return overrides, nil
}

// resolvePassphrase returns the --passphrase flag value, or prompts on the
// terminal without echoing when the flag is empty and stdin is a TTY.
func resolvePassphrase(prompt string) (string, error) {
	if passphrase != "" {
		return passphrase, nil
	}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Print(prompt)
		bytePassphrase, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return "", errors.New(i18n.T("vault.cli_error_read_passphrase", err))
		}
		fmt.Println()
		return string(bytePassphrase), nil
	}
	return "", nil
}

func init() {
	registerVaultCommands()
}

// registerVaultCommands sets up the flags for the vault commands.
func registerVaultCommands() {
	if sealCmd.Flags().Lookup("access") == nil {
		sealCmd.Flags().String("access", "", "Access level (public, private, restricted)")
		sealCmd.Flags().String("sensitivity", "", "Sensitivity level (low, medium, high)")
		sealCmd.Flags().Bool("anonymize", true, "Replace the record name with an anonymous placeholder")
		sealCmd.Flags().Bool("no-encrypt", false, "Disable encryption in the policy (sealing will be refused)")
		sealCmd.Flags().StringVarP(&passphrase, "passphrase", "p", "", "Passphrase (prompted for when omitted)")
	}
	if openCmd.Flags().Lookup("passphrase") == nil {
		openCmd.Flags().StringVarP(&passphrase, "passphrase", "p", "", "Passphrase (prompted for when omitted)")
		openCmd.Flags().Bool("copy", false, "Copy the decrypted content to the clipboard")
	}
	if redactCmd.Flags().Lookup("sensitivity") == nil {
		redactCmd.Flags().String("sensitivity", "", "Sensitivity level (low, medium, high)")
		redactCmd.Flags().Bool("anonymize", true, "Replace the record name with an anonymous placeholder")
		redactCmd.Flags().Bool("write", false, "Persist the redacted copy to the database")
	}
	if accessCmd.Flags().Lookup("access") == nil {
		accessCmd.Flags().String("access", "", "Access level (public, private, restricted)")
	}

	applyDefaultFlags(sealCmd)
	applyDefaultFlags(openCmd)
	applyDefaultFlags(redactCmd)
	applyDefaultFlags(accessCmd)
}
