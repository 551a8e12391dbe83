// Copyright (c) 2026 Lorekeeper Team
// Lorekeeper - community record privacy vault
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lorekeeper/lorekeeper/internal/db"
	"github.com/lorekeeper/lorekeeper/internal/model"
)

// recordCmd is the root command for record management operations.
var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Manage community records (list, add, show, delete)",
	Long: `The 'record' command group provides plain record management:
  - List all records with their sealed status
  - View detailed record information including cultural context
  - Add new records with optional context key=value pairs
  - Delete records (removes any sealed envelope as well)

Sealing and opening envelopes is handled by the top-level 'seal' and
'open' commands.`,
}

// recordListCmd lists all records with optional filtering.
var recordListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all records",
	Long: `Display all records in table format with their names and sealed status.
You can search by name or content.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		searchTerm, _ := cmd.Flags().GetString("search")

		records, err := db.GetAllRecords()
		if err != nil {
			return fmt.Errorf("failed to list records: %w", err)
		}

		// Filter by search term
		if searchTerm != "" {
			searchLower := strings.ToLower(searchTerm)
			filtered := []model.CommunityRecord{}
			for _, rec := range records {
				if strings.Contains(strings.ToLower(rec.Name), searchLower) ||
					strings.Contains(strings.ToLower(rec.Content), searchLower) {
					filtered = append(filtered, rec)
				}
			}
			records = filtered
		}

		if len(records) == 0 {
			fmt.Println("No records found.")
			return nil
		}

		sealedIDs, err := sealedRecordIDs()
		if err != nil {
			return err
		}

		// Display as table
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCONTEXT\tSEALED")
		for _, rec := range records {
			sealed := "no"
			if sealedIDs[rec.ID] {
				sealed = "yes"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				rec.ID, rec.Name, contextSummary(rec.CulturalContext), sealed)
		}
		w.Flush()

		return nil
	},
}

// recordShowCmd displays detailed information about a specific record.
var recordShowCmd = &cobra.Command{
	Use:   "show <id or name>",
	Short: "Show detailed record information",
	Long:  `Display full details of a record including cultural context and sealed status.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		record, err := findRecord(args[0])
		if err != nil {
			return err
		}

		printRecordDetails(record)

		sealed, err := db.GetSealedRecord(record.ID)
		if err != nil {
			return fmt.Errorf("failed to load sealed envelope: %w", err)
		}
		if sealed == nil {
			fmt.Println("Sealed:   no")
			return nil
		}
		fmt.Println("Sealed:   yes")
		fmt.Printf("  Access:       %s\n", sealed.Policy.AccessLevel)
		fmt.Printf("  Sensitivity:  %s\n", sealed.Policy.SensitivityLevel)
		fmt.Printf("  Anonymize:    %t\n", sealed.Policy.Anonymize)
		fmt.Printf("  Sealed at:    %s\n", sealed.CreatedAt.Format("2006-01-02 15:04:05 MST"))

		return nil
	},
}

// recordAddCmd adds a new record.
var recordAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new record",
	Long: `Add a new community record with a name, content and optional cultural
context pairs. When no --id is given, a random UUID is assigned.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		content, _ := cmd.Flags().GetString("content")
		id, _ := cmd.Flags().GetString("id")
		contextPairs, _ := cmd.Flags().GetStringArray("context")

		if name == "" {
			return fmt.Errorf("--name is required")
		}
		if content == "" {
			return fmt.Errorf("--content is required")
		}
		if id == "" {
			id = uuid.NewString()
		}

		context, err := parseContextPairs(contextPairs)
		if err != nil {
			return err
		}

		record := model.CommunityRecord{
			ID:              id,
			Name:            name,
			Content:         content,
			CulturalContext: context,
		}
		if err := db.AddRecord(record); err != nil {
			return fmt.Errorf("failed to add record: %w", err)
		}

		fmt.Printf("Record created successfully with ID: %s\n", id)
		return nil
	},
}

// recordDeleteCmd deletes a record.
var recordDeleteCmd = &cobra.Command{
	Use:   "delete <id or name>",
	Short: "Delete a record",
	Long:  `Delete a record and its sealed envelope, if one exists.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		record, err := findRecord(args[0])
		if err != nil {
			return err
		}

		// Confirm deletion unless --force is used
		if !force {
			fmt.Printf("Delete record: %s (ID: %s)? (yes/no): ", record.Name, record.ID)
			var response string
			fmt.Scanln(&response)
			if strings.ToLower(response) != "yes" {
				fmt.Println("Deletion cancelled.")
				return nil
			}
		}

		if err := db.DeleteRecord(record.ID); err != nil {
			return fmt.Errorf("failed to delete record: %w", err)
		}

		fmt.Printf("Record deleted: %s\n", record.Name)
		return nil
	},
}

// printRecordDetails prints the core fields of a record, with the cultural
// context pairs in stable key order.
func printRecordDetails(record *model.CommunityRecord) {
	fmt.Printf("ID:       %s\n", record.ID)
	fmt.Printf("Name:     %s\n", record.Name)
	fmt.Printf("Content:  %s\n", record.Content)
	if len(record.CulturalContext) > 0 {
		fmt.Println("Context:")
		keys := make([]string, 0, len(record.CulturalContext))
		for k := range record.CulturalContext {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("  %s: %v\n", k, record.CulturalContext[k])
		}
	}
}

// findRecord looks a record up by ID first, then by exact name.
func findRecord(identifier string) (*model.CommunityRecord, error) {
	record, err := db.GetRecord(identifier)
	if err != nil {
		return nil, fmt.Errorf("failed to load record: %w", err)
	}
	if record != nil {
		return record, nil
	}

	records, err := db.GetAllRecords()
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}
	for i, rec := range records {
		if rec.Name == identifier {
			return &records[i], nil
		}
	}

	return nil, fmt.Errorf("record not found: %s", identifier)
}

// sealedRecordIDs returns the set of record IDs that have a sealed envelope.
func sealedRecordIDs() (map[string]bool, error) {
	sealed, err := db.GetAllSealedRecords()
	if err != nil {
		return nil, fmt.Errorf("failed to load sealed envelopes: %w", err)
	}
	ids := make(map[string]bool, len(sealed))
	for _, s := range sealed {
		ids[s.RecordID] = true
	}
	return ids, nil
}

// contextSummary renders the context keys for the list view.
func contextSummary(context map[string]any) string {
	if len(context) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(context))
	for k := range context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ",")
}

// parseContextPairs turns repeated key=value flags into a context map.
func parseContextPairs(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	context := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid context pair %q (expected key=value)", pair)
		}
		context[key] = value
	}
	return context, nil
}

func init() {
	registerRecordCommands()
}

// registerRecordCommands registers all record-related subcommands.
func registerRecordCommands() {
	// Register subcommands with the main record command
	recordCmd.AddCommand(recordListCmd)
	recordCmd.AddCommand(recordShowCmd)
	recordCmd.AddCommand(recordAddCmd)
	recordCmd.AddCommand(recordDeleteCmd)

	// Setup flags for add (only if not already defined)
	if recordAddCmd.Flags().Lookup("name") == nil {
		recordAddCmd.Flags().StringP("name", "n", "", "Record name (required)")
		recordAddCmd.Flags().StringP("content", "c", "", "Record content (required)")
		recordAddCmd.Flags().String("id", "", "Record ID (default: random UUID)")
		recordAddCmd.Flags().StringArray("context", nil, "Cultural context pair (key=value, repeatable)")
	}

	// Setup flags for delete (only if not already defined)
	if recordDeleteCmd.Flags().Lookup("force") == nil {
		recordDeleteCmd.Flags().BoolP("force", "f", false, "Skip confirmation prompt")
	}

	// Setup flags for list (only if not already defined)
	if recordListCmd.Flags().Lookup("search") == nil {
		recordListCmd.Flags().String("search", "", "Search by name or content")
	}
}
