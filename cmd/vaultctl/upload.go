package main

import (
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/spf13/cobra"
)

var labelsCmd = &cobra.Command{
	Use:   "labels <bucket> <key>",
	Short: "Detect labels in an uploaded image and store them",
	Long: `Simulates an upload notification for the given object and runs the label
analyzer. Only jpg, jpeg and png objects are analyzed; anything else is skipped.

Examples:
  vaultctl labels uploads "holiday/beach photo.jpg"
  vaultctl labels uploads already%2Bencoded.png --raw`,
	Args: cobra.ExactArgs(2),
	RunE: runLabels,
}

var accessCmd = &cobra.Command{
	Use:   "access <bucket> <key>",
	Short: "Log an access attempt for an uploaded photo",
	Args:  cobra.ExactArgs(2),
	RunE:  runAccess,
}

func init() {
	rootCmd.AddCommand(labelsCmd, accessCmd)

	for _, cmd := range []*cobra.Command{labelsCmd, accessCmd} {
		cmd.Flags().Bool("raw", false, "Pass the key through as-is instead of encoding it like S3 does")
	}
}

func runLabels(cmd *cobra.Command, args []string) error {
	raw, _ := cmd.Flags().GetBool("raw")
	ctx := cmd.Context()

	app, err := loadApp(cmd, true)
	if err != nil {
		return err
	}
	defer app.Close()

	res, err := app.LabelsHandler().Handle(ctx, uploadEvent(args[0], args[1], raw))
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), res)
}

func runAccess(cmd *cobra.Command, args []string) error {
	raw, _ := cmd.Flags().GetBool("raw")
	ctx := cmd.Context()

	app, err := loadApp(cmd, true)
	if err != nil {
		return err
	}
	defer app.Close()

	res, err := app.BiometricHandler().Handle(ctx, uploadEvent(args[0], args[1], raw))
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), res)
}

// uploadEvent builds the notification S3 would send for bucket/key. S3
// form-encodes keys but leaves the slashes alone.
func uploadEvent(bucket, key string, raw bool) events.S3Event {
	if !raw {
		key = strings.ReplaceAll(url.QueryEscape(key), "%2F", "/")
	}
	return events.S3Event{
		Records: []events.S3EventRecord{{
			EventSource: "aws:s3",
			EventName:   "ObjectCreated:Put",
			S3: events.S3Entity{
				Bucket: events.S3Bucket{Name: bucket},
				Object: events.S3Object{Key: key},
			},
		}},
	}
}
