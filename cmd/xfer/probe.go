package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bamsammich/xfer/internal/platform"
	"github.com/bamsammich/xfer/internal/ui"
)

type probeReport struct {
	Kernel               string `json:"kernel"`
	ExtendedStat         bool   `json:"statx"`
	RangeCopy            bool   `json:"copy_file_range"`
	ExtendedStatDetected bool   `json:"statx_detected"`
	RangeCopyDetected    bool   `json:"copy_file_range_detected"`
	CrossFSRangeCopy     bool   `json:"copy_file_range_cross_fs"`
}

func newProbeCmd(a *app) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Report which optional kernel features are available",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			detected := platform.Detect()
			report := probeReport{
				Kernel:               a.caps.Kernel.String(),
				ExtendedStat:         a.caps.ExtendedStat,
				RangeCopy:            a.caps.RangeCopy,
				ExtendedStatDetected: detected.ExtendedStat,
				RangeCopyDetected:    detected.RangeCopy,
				CrossFSRangeCopy:     a.caps.CrossFilesystemRangeCopy(),
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}

			styled := ui.IsTerminal(out)
			fmt.Fprint(out, ui.Table("capabilities", []ui.Field{
				{Key: "kernel", Value: report.Kernel},
				{Key: "statx", Value: featureValue(report.ExtendedStat, report.ExtendedStatDetected, styled)},
				{Key: "copy_file_range", Value: featureValue(report.RangeCopy, report.RangeCopyDetected, styled)},
				{Key: "cross-filesystem", Value: ui.YesNo(report.CrossFSRangeCopy, styled)},
			}, styled))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the table as JSON")
	return cmd
}

func featureValue(effective, detected, styled bool) string {
	v := ui.YesNo(effective, styled)
	if detected && !effective {
		v += " (disabled by config)"
	}
	return v
}
