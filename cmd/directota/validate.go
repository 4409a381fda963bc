package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rescp17/directOTA/internal/config"
	"github.com/rescp17/directOTA/internal/style"
	"github.com/rescp17/directOTA/internal/util"
	"github.com/rescp17/directOTA/pkg/discovery"
	"github.com/rescp17/directOTA/pkg/fileInfo"
)

const fieldWidth = 12

func newValidateCmd() *cobra.Command {
	target := &targetFlags{}
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the OTA inputs without touching the network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := target.settings(cmd)
			if err != nil {
				return err
			}
			req := settings.Request()
			node, err := req.Validate()
			if err != nil {
				return err
			}
			if err := node.Sniff(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printField(out, "device", req.Target())
			printNode(out, node)
			fmt.Fprintln(out, style.SuccessStyle.Render("inputs are valid"))
			return nil
		},
	}
	target.register(cmd)
	return cmd
}

func newInspectCmd() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show the size, type, checksum and identify message of an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			node, err := fileInfo.CreateNode(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printNode(out, node)
			printField(out, "identify", string(discovery.IdentifyMessage(port, node.Size)))
			return nil
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", config.DefaultPort, "port written into the identify message")
	return cmd
}

func printNode(w io.Writer, node fileInfo.FileNode) {
	printField(w, "image", node.Path)
	printField(w, "size", fmt.Sprintf("%s (%d bytes)", util.FormatSize(node.Size), node.Size))
	printField(w, "mime", node.MimeType)
	printField(w, "sha256", node.Checksum)
}

func printField(w io.Writer, label, value string) {
	fmt.Fprintf(w, "%s %s\n", style.LabelStyle.Render(util.PadRight(label, fieldWidth)), style.FileStyle.Render(value))
}
