package cmd

import (
	"fmt"

	"github.com/abdul-hamid-achik/hitrack/packages/core/environ"
	"github.com/abdul-hamid-achik/hitrack/packages/multipart"
	"github.com/spf13/cobra"
)

var multipartCmd = &cobra.Command{
	Use:   "multipart <name=value|name=@file>...",
	Short: "Encode a multipart/form-data body",
	Long: `Encode fields and files as a multipart/form-data body and write it to
stdout. The matching Content-Type header is written to stderr.

Examples:
  hitrack multipart title=report doc=@report.pdf > body.bin
  hitrack multipart --boundary abc123 name1=value1 name2=value2`,
	Args: cobra.MinimumNArgs(1),
	RunE: multipartCommand,
}

var boundaryFlag string

func init() {
	multipartCmd.Flags().StringVar(&boundaryFlag, "boundary", "", "Boundary to use instead of a random one")
}

func multipartCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}

	fields, cleanup, err := parseFields(args)
	if err != nil {
		return err
	}
	defer cleanup()

	b := multipart.New(boundaryFlag)
	if err := fields.AppendTo(b); err != nil {
		return withCode(ExitIOError, err)
	}
	logger.Debug("encoded multipart body", "boundary", b.Boundary(), "parts", b.Len())

	fmt.Fprintf(cmd.ErrOrStderr(), "Content-Type: %s; boundary=%s\n", environ.MultipartContentType, b.Boundary())
	if _, err := cmd.OutOrStdout().Write(b.Bytes()); err != nil {
		return withCode(ExitIOError, err)
	}
	return nil
}
