package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rshade/wardboard/internal/api"
	"github.com/rshade/wardboard/internal/logging"
)

// stdinPath reads a payload from standard input.
const stdinPath = "-"

// NewCreateCmd creates the create command, which posts a JSON payload file.
func NewCreateCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "create <collection> --file payload.json",
		Short: "Create a record from a JSON payload",
		Long: `Reads a JSON object, checks the fields the backend requires, and posts it.

Required fields per collection:
  patients        name, age, gender
  doctors         name, specialization, consultation_fee
  appointments    patient_id, doctor_id, date, time
  bills           patient_id, amount
  records         patient_id, diagnosis
  departments     name
  staff           name, role
  insurance       name
  tests/types     name, cost
  tests/patients  patient_id, test_id
  inventory       name, category, quantity, unit, price

Bills also take "items", a list of line items such as
[{"description": "Consultation", "amount": 100}]. Fields the backend does not
read are rejected.`,
		Example: `  # Add a patient
  wardboard create patients --file patient.json

  # Generate a bill from stdin
  echo '{"patient_id": 3, "amount": 120}' | wardboard create bills --file -`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeCollections,
		RunE: func(cmd *cobra.Command, args []string) error {
			coll, err := lookupCollection(args[0])
			if err != nil {
				return err
			}
			raw, err := readPayload(cmd, file)
			if err != nil {
				return err
			}
			payload, err := api.DecodeCreatePayload(coll.Key, raw)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			client, err := newClient(ctx)
			if err != nil {
				return err
			}
			res, err := client.Create(ctx, coll.Path, payload)
			if err != nil {
				return fmt.Errorf("creating %s: %w", coll.Key, err)
			}

			log := logging.FromContext(ctx)
			log.Info().Ctx(ctx).Str("collection", coll.Key).Int("id", res.ID).Msg("record created")
			printMutation(cmd, res)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON payload file, or - for stdin")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// NewUpdateCmd creates the update command, which puts a partial JSON payload.
func NewUpdateCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "update <collection> <id> --file changes.json",
		Short: "Update fields of a record from a JSON object",
		Example: `  # Change a patient's phone number
  echo '{"phone": "(555) 123-4567"}' | wardboard update patients 12 --file -`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeCollections,
		RunE: func(cmd *cobra.Command, args []string) error {
			coll, err := lookupCollection(args[0])
			if err != nil {
				return err
			}
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			raw, err := readPayload(cmd, file)
			if err != nil {
				return err
			}

			var changes map[string]any
			if err = json.Unmarshal(raw, &changes); err != nil {
				return fmt.Errorf("%w: %w", api.ErrInvalidPayload, err)
			}

			ctx := cmd.Context()
			client, err := newClient(ctx)
			if err != nil {
				return err
			}
			res, err := client.Update(ctx, coll.Path, id, changes)
			if err != nil {
				return fmt.Errorf("updating %s %d: %w", coll.Key, id, err)
			}
			printMutation(cmd, res)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON object file, or - for stdin")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// NewDeleteCmd creates the delete command.
func NewDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <collection> <id>",
		Short: "Delete a record",
		Example: `  # Delete appointment 41 after confirming
  wardboard delete appointments 41

  # Delete without a prompt
  wardboard delete appointments 41 --yes`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeCollections,
		RunE: func(cmd *cobra.Command, args []string) error {
			coll, err := lookupCollection(args[0])
			if err != nil {
				return err
			}
			id, err := parseID(args[1])
			if err != nil {
				return err
			}

			if !yes {
				answer, promptErr := Confirm(cmd.OutOrStdout(), cmd.InOrStdin(),
					fmt.Sprintf("Delete %s %d?", coll.Title, id))
				if promptErr != nil {
					return promptErr
				}
				if !answer.Accepted {
					cmd.Println("Aborted")
					return nil
				}
			}

			ctx := cmd.Context()
			client, err := newClient(ctx)
			if err != nil {
				return err
			}
			res, err := client.Delete(ctx, coll.Path, id)
			if err != nil {
				return fmt.Errorf("deleting %s %d: %w", coll.Key, id, err)
			}
			log := logging.FromContext(ctx)
			log.Info().Ctx(ctx).Str("collection", coll.Key).Int("id", id).Msg("record deleted")
			printMutation(cmd, res)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func readPayload(cmd *cobra.Command, file string) ([]byte, error) {
	if file == stdinPath {
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("reading payload from stdin: %w", err)
		}
		return raw, nil
	}
	raw, err := os.ReadFile(file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("payload file not found: %s", file)
		}
		return nil, fmt.Errorf("reading payload file: %w", err)
	}
	return raw, nil
}

func printMutation(cmd *cobra.Command, res api.MutationResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, res.Message)
	if res.ID > 0 {
		fmt.Fprintf(out, "ID: %d\n", res.ID)
	}
	if res.InvoiceNumber != "" {
		fmt.Fprintf(out, "Invoice: %s\n", res.InvoiceNumber)
	}
}
