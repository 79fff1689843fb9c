package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"darkroom/internal/api"
	"darkroom/internal/workflow"
)

func newEditCommand(ctx *commandContext) *cobra.Command {
	var (
		profileKey      int
		projectName     string
		photographyType string
		outputDir       string
		export          bool
		noDownload      bool

		crop                  bool
		portraitCrop          bool
		headshotCrop          bool
		cropAspectRatio       string
		straighten            bool
		perspectiveCorrection bool
		hdrMerge              bool
		smoothSkin            bool
		subjectMask           bool
		skyReplacement        bool
		skyTemplate           int
		windowPull            bool
	)

	cmd := &cobra.Command{
		Use:   "edit [files...]",
		Short: "Upload a batch, edit it with a profile, and download the results",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			client, err := ctx.newClient()
			if err != nil {
				return err
			}

			var ptype api.PhotographyType
			if photographyType != "" {
				ptype, err = api.ParsePhotographyType(photographyType)
				if err != nil {
					return err
				}
			}

			options := buildEditOptions(cmd, editOptionFlags{
				crop:                  crop,
				portraitCrop:          portraitCrop,
				headshotCrop:          headshotCrop,
				cropAspectRatio:       cropAspectRatio,
				straighten:            straighten,
				perspectiveCorrection: perspectiveCorrection,
				hdrMerge:              hdrMerge,
				smoothSkin:            smoothSkin,
				subjectMask:           subjectMask,
				skyReplacement:        skyReplacement,
				skyTemplate:           skyTemplate,
				windowPull:            windowPull,
			})
			if err := options.Validate(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Uploading %d files (%s)\n", len(args), humanize.Bytes(batchSize(args)))

			uploadBar := newTransferBar(len(args), "uploading")
			downloadBar := func(completed, total int, message string) {}
			if !noDownload {
				downloadBar = func(completed, total int, message string) {
					// The bar total is unknown until the link list arrives.
					fmt.Fprintf(os.Stderr, "\rdownloaded %d/%d", completed, total)
					if completed == total {
						fmt.Fprintln(os.Stderr)
					}
				}
			}

			mgr := workflow.NewManager(client, cfg, logger)
			result, err := mgr.QuickEdit(cmd.Context(), workflow.Request{
				ProjectName:     projectName,
				ProfileKey:      profileKey,
				Paths:           args,
				PhotographyType: ptype,
				EditOptions:     options,
				Download:        !noDownload,
				DownloadDir:     outputDir,
				Export:          export,
				UploadProgress: func(completed, total int, message string) {
					_ = uploadBar.Set(completed)
				},
				DownloadProgress: downloadBar,
			})
			_ = uploadBar.Finish()
			if err != nil {
				if result.ProjectUUID != "" {
					fmt.Fprintf(out, "Project: %s\n", result.ProjectUUID)
				}
				return err
			}

			renderEditResult(out, result)
			return nil
		},
	}

	cmd.Flags().IntVarP(&profileKey, "profile", "p", 0, "Profile key to edit with (see `darkroom profiles`)")
	cmd.Flags().StringVarP(&projectName, "name", "n", "", "Project name (auto-generated when omitted)")
	cmd.Flags().StringVar(&photographyType, "photography-type", "", "Shoot genre hint (e.g. wedding, portraits)")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Directory for downloaded results")
	cmd.Flags().BoolVar(&export, "export", false, "Export delivery-format files after editing")
	cmd.Flags().BoolVar(&noDownload, "no-download", false, "Skip downloading; print result links only")

	cmd.Flags().BoolVar(&crop, "crop", false, "Enable AI cropping")
	cmd.Flags().BoolVar(&portraitCrop, "portrait-crop", false, "Enable portrait cropping")
	cmd.Flags().BoolVar(&headshotCrop, "headshot-crop", false, "Enable headshot cropping")
	cmd.Flags().StringVar(&cropAspectRatio, "crop-aspect-ratio", "", "Aspect ratio for cropping (e.g. 2x3)")
	cmd.Flags().BoolVar(&straighten, "straighten", false, "Enable straightening")
	cmd.Flags().BoolVar(&perspectiveCorrection, "perspective-correction", false, "Enable perspective correction")
	cmd.Flags().BoolVar(&hdrMerge, "hdr-merge", false, "Enable HDR merge")
	cmd.Flags().BoolVar(&smoothSkin, "smooth-skin", false, "Enable skin smoothing")
	cmd.Flags().BoolVar(&subjectMask, "subject-mask", false, "Enable subject masking")
	cmd.Flags().BoolVar(&skyReplacement, "sky-replacement", false, "Enable sky replacement")
	cmd.Flags().IntVar(&skyTemplate, "sky-template", 0, "Sky replacement template id")
	cmd.Flags().BoolVar(&windowPull, "window-pull", false, "Enable window pull")

	_ = cmd.MarkFlagRequired("profile")

	return cmd
}

type editOptionFlags struct {
	crop                  bool
	portraitCrop          bool
	headshotCrop          bool
	cropAspectRatio       string
	straighten            bool
	perspectiveCorrection bool
	hdrMerge              bool
	smoothSkin            bool
	subjectMask           bool
	skyReplacement        bool
	skyTemplate           int
	windowPull            bool
}

// buildEditOptions maps only the flags the user actually set, so unset
// toggles stay on the service default instead of being sent as false.
func buildEditOptions(cmd *cobra.Command, flags editOptionFlags) *api.EditOptions {
	options := &api.EditOptions{}
	set := false

	mark := func(name string, apply func()) {
		if cmd.Flags().Changed(name) {
			apply()
			set = true
		}
	}

	mark("crop", func() { options.Crop = api.Bool(flags.crop) })
	mark("portrait-crop", func() { options.PortraitCrop = api.Bool(flags.portraitCrop) })
	mark("headshot-crop", func() { options.HeadshotCrop = api.Bool(flags.headshotCrop) })
	mark("crop-aspect-ratio", func() { options.CropAspectRatio = flags.cropAspectRatio })
	mark("straighten", func() { options.Straighten = api.Bool(flags.straighten) })
	mark("perspective-correction", func() { options.PerspectiveCorrection = api.Bool(flags.perspectiveCorrection) })
	mark("hdr-merge", func() { options.HDRMerge = api.Bool(flags.hdrMerge) })
	mark("smooth-skin", func() { options.SmoothSkin = api.Bool(flags.smoothSkin) })
	mark("subject-mask", func() { options.SubjectMask = api.Bool(flags.subjectMask) })
	mark("sky-replacement", func() { options.SkyReplacement = api.Bool(flags.skyReplacement) })
	mark("sky-template", func() { options.SkyReplacementTemplateID = api.Int(flags.skyTemplate) })
	mark("window-pull", func() { options.WindowPull = api.Bool(flags.windowPull) })

	if !set {
		return nil
	}
	return options
}

func batchSize(paths []string) uint64 {
	var total uint64
	for _, path := range paths {
		if info, err := os.Stat(path); err == nil {
			total += uint64(info.Size())
		}
	}
	return total
}

func newTransferBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func renderEditResult(out io.Writer, result workflow.Result) {
	rows := [][]string{
		{"Project", result.ProjectUUID},
		{"Uploaded", fmt.Sprintf("%d/%d", result.UploadSummary.Successful, result.UploadSummary.Total)},
	}
	if len(result.DownloadedFiles) > 0 {
		rows = append(rows, []string{"Downloaded", strconv.Itoa(len(result.DownloadedFiles))})
	} else {
		rows = append(rows, []string{"Result links", strconv.Itoa(len(result.DownloadLinks))})
	}
	if len(result.ExportedFiles) > 0 {
		rows = append(rows, []string{"Exported", strconv.Itoa(len(result.ExportedFiles))})
	} else if len(result.ExportLinks) > 0 {
		rows = append(rows, []string{"Export links", strconv.Itoa(len(result.ExportLinks))})
	}
	fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows))

	if result.UploadSummary.Failed > 0 {
		fmt.Fprintf(out, "%d files failed to upload:\n", result.UploadSummary.Failed)
		for _, r := range result.UploadSummary.Results {
			if !r.Success {
				fmt.Fprintf(out, "  %s: %v\n", r.File, r.Error)
			}
		}
	}
	if len(result.DownloadedFiles) == 0 {
		for _, link := range result.DownloadLinks {
			fmt.Fprintln(out, link)
		}
	}
}
