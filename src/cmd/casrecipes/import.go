package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/casapps/casrecipes/src/internal/importer"
)

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import reference data from JSON files",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "ingredients <file>",
		Short: "Import ingredients from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := openDatabase()
			if err != nil {
				return err
			}
			count, err := importer.New(db, cfg).ImportIngredients(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Imported %d ingredients\n", count)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "tags <file>",
		Short: "Import tags from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := openDatabase()
			if err != nil {
				return err
			}
			count, err := importer.New(db, cfg).ImportTags(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Imported %d tags\n", count)
			return nil
		},
	})

	return cmd
}
