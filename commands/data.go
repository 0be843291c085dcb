package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
)

func DataCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "data",
		Short: "Export and import business data",
	}

	export := &cobra.Command{
		Use:   "export",
		Short: "Write an export archive to EXPORT_DIR",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			entities, _ := cmd.Flags().GetStringSlice("entities")

			svc, err := bootstrap(false)
			if err != nil {
				return err
			}
			file, err := svc.Exports.Export(format, entities)
			if err != nil {
				return err
			}
			fmt.Println(filepath.Join(svc.Exports.Dir, file.Name))
			return nil
		},
	}
	export.Flags().String("format", "json", "Archive format: json or csv")
	export.Flags().StringSlice("entities", nil, "Entities to export (default all)")

	imp := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a .zip export, .json or .csv file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, _ := cmd.Flags().GetString("entity")

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			svc, err := bootstrap(true)
			if err != nil {
				return err
			}
			result, err := svc.Imports.ImportFile(filepath.Base(args[0]), data, entity)
			if err != nil {
				return err
			}

			names := make([]string, 0, len(result))
			for name := range result {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Printf("%-20s imported %d, skipped %d\n", name, result[name].Imported, result[name].Skipped)
			}
			return nil
		},
	}
	imp.Flags().String("entity", "", "Entity for a single-entity .json or .csv file")

	cmd.AddCommand(export, imp)
	return cmd
}
