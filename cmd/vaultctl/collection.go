package main

import (
	"github.com/spf13/cobra"

	"github.com/your-org/identity-vault/pkg/dto"
)

var collectionCmd = &cobra.Command{
	Use:   "collection",
	Short: "Manage the face collection of authorized users",
}

var collectionCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create the configured collection (no-op if it exists)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runCollection(cmd, dto.CollectionRequest{Action: dto.ActionCreate})
	},
}

var collectionIndexCmd = &cobra.Command{
	Use:     "index <bucket> <photo>",
	Short:   "Register the face in a photo under --name",
	Example: `  vaultctl collection index staff jane.jpg --name "Jane Doe"`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		return runCollection(cmd, dto.CollectionRequest{
			Action: dto.ActionIndex,
			Bucket: args[0],
			Photo:  args[1],
			Name:   name,
		})
	},
}

var collectionSearchCmd = &cobra.Command{
	Use:   "search <bucket> <photo>",
	Short: "Look up the face in a photo among registered users",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCollection(cmd, dto.CollectionRequest{
			Action: dto.ActionSearch,
			Bucket: args[0],
			Photo:  args[1],
		})
	},
}

func init() {
	rootCmd.AddCommand(collectionCmd)
	collectionCmd.AddCommand(collectionCreateCmd, collectionIndexCmd, collectionSearchCmd)

	collectionIndexCmd.Flags().String("name", "", "Display name of the person (defaults to "+dto.DefaultCollectionUserName+")")
}

func runCollection(cmd *cobra.Command, req dto.CollectionRequest) error {
	ctx := cmd.Context()

	app, err := loadApp(cmd, false)
	if err != nil {
		return err
	}
	defer app.Close()

	res, err := app.CollectionHandler().Handle(ctx, req)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), res)
}
