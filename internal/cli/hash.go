package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/johan-st/toolbox/internal/applet"
	"github.com/johan-st/toolbox/internal/digest"
	"github.com/spf13/cobra"
)

// hashOutput is the JSON shape of a hash run.
type hashOutput struct {
	InputType digest.InputType `json:"input_type"`
	Bytes     int64            `json:"bytes"`
	Digests   []digest.Result  `json:"digests"`
}

func (h *Handler) newHashCommand(ctx *CommandContext) *cobra.Command {
	var (
		inputType string
		algorithm string
		format    string
	)

	cmd := &cobra.Command{
		Use:   "hash [input | path]",
		Short: "Compute MD5, SHA1, SHA256, SHA384 and SHA512 digests",
		Long: `Compute digests of text, Base64, hex or file input.

Input is taken from the argument or, when there is none, from stdin.
With --type=file the argument is a path on the local machine; over SSH
the file content must be piped to stdin instead.`,
		Example: `  toolbox hash "hello world"
  toolbox hash --type=hex 616263 --algorithm=sha256
  toolbox hash --type=file ./image.png --format=json
  ssh host hash --type=file < image.png`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := digest.ParseInputType(inputType)
			if err != nil {
				return err
			}
			var algo digest.Algorithm
			if algorithm != "" {
				if algo, err = digest.ParseAlgorithm(algorithm); err != nil {
					return err
				}
			}
			if err := checkFormat(format, formatTable, formatJSON, formatPlain); err != nil {
				return err
			}

			results, n, err := h.runHash(ctx, t, args)
			h.recordRun(ctx, applet.PathHashDigest, map[string]string{"type": string(t), "algorithm": string(algo)},
				len(results), n, err)
			if err != nil {
				return err
			}

			if algo != "" {
				hex, _ := digest.Lookup(results, algo)
				results = []digest.Result{{Algorithm: algo, Hex: hex}}
			}

			switch format {
			case formatJSON:
				printJSON(ctx.Out, hashOutput{InputType: t, Bytes: n, Digests: results})
			case formatPlain:
				for _, r := range results {
					fmt.Fprintln(ctx.Out, r.Hex)
				}
			default:
				fmt.Fprintln(ctx.Out, "ALGORITHM\tDIGEST")
				for _, r := range results {
					fmt.Fprintf(ctx.Out, "%s\t%s\n", r.Algorithm, r.Hex)
				}
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&inputType, "type", "t", string(h.manager.HashDefault()), "input type: text, base64, hex or file")
	f.StringVarP(&algorithm, "algorithm", "a", "", "only show one algorithm (md5, sha1, sha256, sha384, sha512)")
	f.StringVarP(&format, "format", "f", formatTable, "output format: table, json or plain")

	return cmd
}

// runHash digests the input and returns the decoded input size in bytes.
func (h *Handler) runHash(ctx *CommandContext, t digest.InputType, args []string) ([]digest.Result, int64, error) {
	if t == digest.File {
		if len(args) == 0 {
			return h.manager.HashReader(ctx.User, ctx.In)
		}
		if ctx.IsRemote() {
			return nil, 0, errors.New("file paths are not accepted over SSH, pipe the file to stdin")
		}
		return h.manager.HashFile(ctx.User, args[0])
	}

	var input string
	if len(args) == 1 {
		input = args[0]
	} else {
		data, err := io.ReadAll(ctx.In)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to read stdin: %w", err)
		}
		input = string(data)
	}

	return h.manager.Hash(ctx.User, input, t)
}
