package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"darkroom/internal/api"
)

func newProfilesCommand(ctx *commandContext) *cobra.Command {
	var imageType string

	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List the editing profiles available to the account",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.newClient()
			if err != nil {
				return err
			}
			profiles, err := client.GetProfiles(cmd.Context())
			if err != nil {
				return err
			}

			if imageType != "" {
				filter := api.ImageType(strings.ToUpper(strings.TrimSpace(imageType)))
				filtered := profiles[:0]
				for _, p := range profiles {
					if p.ImageType == filter {
						filtered = append(filtered, p)
					}
				}
				profiles = filtered
			}

			out := cmd.OutOrStdout()
			if len(profiles) == 0 {
				fmt.Fprintln(out, "No profiles found")
				return nil
			}

			caser := cases.Title(language.English)
			rows := make([][]string, 0, len(profiles))
			for _, p := range profiles {
				rows = append(rows, []string{
					strconv.Itoa(p.Key),
					p.Name,
					caser.String(strings.ToLower(p.Type)),
					string(p.ImageType),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Key", "Name", "Type", "File Type"},
				rows,
				0,
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&imageType, "image-type", "", "Only show profiles for this file type (RAW or JPG)")
	return cmd
}
