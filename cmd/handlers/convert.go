package handlers

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"seosuite/internal/logger"
	"seosuite/internal/parser"
)

// NewConvertCmd creates the convert command group
func NewConvertCmd() *cobra.Command {
	convertCmd := &cobra.Command{
		Use:   "convert",
		Short: "Build bulk article lines from URL lists or separate columns",
	}

	convertCmd.AddCommand(newConvertURLsCmd())
	convertCmd.AddCommand(newConvertColumnsCmd())

	return convertCmd
}

func newConvertURLsCmd() *cobra.Command {
	var input, output string

	cmd := &cobra.Command{
		Use:   "urls",
		Short: "Turn a URL list into \"keyword | url | keyword\" lines",
		Long: `Derive a keyword from each URL's last path segment and print one bulk
line per URL. Lines that cannot be converted are reported and skipped.

Example:
  seosuite convert urls -i urls.txt -o articles.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, input)
			if err != nil {
				return err
			}

			converted := parser.ConvertURLs(string(data))
			failed := 0
			err = withOutput(cmd, output, func(w io.Writer) error {
				for _, c := range converted {
					if c.Error != "" {
						failed++
						logger.Warn("Skipped URL", "url", c.URL, "reason", c.Error)
						continue
					}
					if _, err := fmt.Fprintln(w, c.Line); err != nil {
						return err
					}
				}
				return nil
			})
			if err != nil {
				return err
			}
			if failed == len(converted) {
				return fmt.Errorf("none of the %d lines could be converted", len(converted))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "-", "file with one URL per line, or - for stdin")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write lines to this file instead of stdout")

	return cmd
}

func newConvertColumnsCmd() *cobra.Command {
	var titles, urls, keywords, output string

	cmd := &cobra.Command{
		Use:   "columns",
		Short: "Zip title, URL and keyword column files into bulk lines",
		Long: `Read three files holding one value per line and join them line by line.
All three must have the same number of non-empty lines.

Example:
  seosuite convert columns --titles titles.txt --urls urls.txt --keywords keywords.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			columns := make([]string, 3)
			for i, path := range []string{titles, urls, keywords} {
				data, err := readInput(cmd, path)
				if err != nil {
					return err
				}
				columns[i] = string(data)
			}

			bulk, err := parser.CombineColumns(columns[0], columns[1], columns[2])
			if err != nil {
				return err
			}
			return withOutput(cmd, output, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, bulk)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&titles, "titles", "", "file with one title per line")
	cmd.Flags().StringVar(&urls, "urls", "", "file with one URL per line")
	cmd.Flags().StringVar(&keywords, "keywords", "", "file with one keyword per line")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write lines to this file instead of stdout")
	_ = cmd.MarkFlagRequired("titles")
	_ = cmd.MarkFlagRequired("urls")
	_ = cmd.MarkFlagRequired("keywords")

	return cmd
}
