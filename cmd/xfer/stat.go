package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/bamsammich/xfer/internal/metadata"
	"github.com/bamsammich/xfer/internal/ui"
)

type statOptions struct {
	noFollow  bool
	useFd     bool
	statxOnly bool
	jsonOut   bool
}

// statReport is the JSON form of one metadata record.
type statReport struct {
	Path      string     `json:"path"`
	Source    string     `json:"source"`
	Type      string     `json:"type"`
	Mode      string     `json:"mode"`
	Size      int64      `json:"size"`
	Inode     uint64     `json:"inode"`
	Device    string     `json:"device"`
	Rdev      string     `json:"rdev,omitempty"`
	Links     uint32     `json:"links"`
	UID       uint32     `json:"uid"`
	GID       uint32     `json:"gid"`
	Atime     time.Time  `json:"atime"`
	Mtime     time.Time  `json:"mtime"`
	Ctime     time.Time  `json:"ctime"`
	Birthtime *time.Time `json:"birthtime,omitempty"`
}

func newStatCmd(a *app) *cobra.Command {
	var o statOptions
	cmd := &cobra.Command{
		Use:   "stat [flags] PATH...",
		Short: "Show file metadata, using statx(2) when the kernel has it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.useFd && o.noFollow {
				return errors.New("--fd always follows symlinks; drop --no-follow")
			}
			q := metadata.New(a.caps)
			out := cmd.OutOrStdout()

			var failed bool
			reports := make([]statReport, 0, len(args))
			for _, path := range args {
				rec, err := statOne(q, path, o)
				if err != nil {
					a.logger.Error("stat failed", "path", path, "error", err)
					failed = true
					continue
				}
				reports = append(reports, newStatReport(path, source(q, o), rec))
			}

			if o.jsonOut {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(reports); err != nil {
					return err
				}
			} else {
				styled := ui.IsTerminal(out)
				for _, r := range reports {
					printStat(out, r, styled)
				}
			}
			if failed {
				return &exitError{code: 1}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&o.noFollow, "no-follow", false, "report on a symlink itself instead of its target")
	cmd.Flags().BoolVar(&o.useFd, "fd", false, "open each path and query the descriptor")
	cmd.Flags().BoolVar(&o.statxOnly, "statx-only", false, "fail instead of falling back to stat(2)")
	cmd.Flags().BoolVar(&o.jsonOut, "json", false, "print records as JSON")
	return cmd
}

func statOne(q *metadata.Querier, path string, o statOptions) (metadata.Record, error) {
	if !o.useFd {
		if o.statxOnly {
			return q.QueryPath(path, !o.noFollow)
		}
		return q.Stat(path, !o.noFollow)
	}

	f, err := os.Open(path)
	if err != nil {
		return metadata.Record{}, err
	}
	defer f.Close()

	fd := int(f.Fd()) //nolint:gosec // G115: descriptors fit in int
	if o.statxOnly {
		return q.QueryFd(fd)
	}
	return q.StatFd(fd)
}

func source(q *metadata.Querier, o statOptions) string {
	name := "statx"
	if !q.Capabilities().ExtendedStat {
		name = "fstatat"
		if o.useFd {
			name = "fstat"
		}
	}
	return name
}

func newStatReport(path, src string, rec metadata.Record) statReport {
	mode := rec.FileMode()
	r := statReport{
		Path:   path,
		Source: src,
		Type:   fileType(mode),
		Mode:   mode.String(),
		Size:   rec.Size,
		Inode:  rec.Ino,
		Device: devString(rec.Dev),
		Links:  rec.Nlink,
		UID:    rec.UID,
		GID:    rec.GID,
		Atime:  rec.Atime.Time(),
		Mtime:  rec.Mtime.Time(),
		Ctime:  rec.Ctime.Time(),
	}
	if rec.Rdev != 0 {
		r.Rdev = devString(rec.Rdev)
	}
	if rec.HasBirthTime {
		bt := rec.Btime.Time()
		r.Birthtime = &bt
	}
	return r
}

func fileType(mode fs.FileMode) string {
	switch {
	case mode.IsRegular():
		return "regular file"
	case mode.IsDir():
		return "directory"
	case mode&fs.ModeSymlink != 0:
		return "symbolic link"
	case mode&fs.ModeNamedPipe != 0:
		return "fifo"
	case mode&fs.ModeSocket != 0:
		return "socket"
	case mode&fs.ModeCharDevice != 0:
		return "character device"
	case mode&fs.ModeDevice != 0:
		return "block device"
	}
	return "unknown"
}

func devString(dev uint64) string {
	return strconv.FormatUint(uint64(metadata.Major(dev)), 10) + ":" +
		strconv.FormatUint(uint64(metadata.Minor(dev)), 10)
}

func printStat(w io.Writer, r statReport, styled bool) {
	fields := []ui.Field{
		{Key: "type", Value: r.Type},
		{Key: "mode", Value: r.Mode},
		{Key: "size", Value: fmt.Sprintf("%s (%d bytes)", humanize.IBytes(uint64(max(r.Size, 0))), r.Size)},
		{Key: "inode", Value: strconv.FormatUint(r.Inode, 10)},
		{Key: "device", Value: r.Device},
	}
	if r.Rdev != "" {
		fields = append(fields, ui.Field{Key: "rdev", Value: r.Rdev})
	}
	fields = append(fields,
		ui.Field{Key: "links", Value: strconv.FormatUint(uint64(r.Links), 10)},
		ui.Field{Key: "uid/gid", Value: fmt.Sprintf("%d/%d", r.UID, r.GID)},
		ui.Field{Key: "access", Value: timeValue(r.Atime)},
		ui.Field{Key: "modify", Value: timeValue(r.Mtime)},
		ui.Field{Key: "change", Value: timeValue(r.Ctime)},
	)
	birth := "-"
	if r.Birthtime != nil {
		birth = timeValue(*r.Birthtime)
	}
	fields = append(fields,
		ui.Field{Key: "birth", Value: birth},
		ui.Field{Key: "source", Value: r.Source},
	)
	fmt.Fprint(w, ui.Table(r.Path, fields, styled))
}

func timeValue(t time.Time) string {
	return t.Format("2006-01-02 15:04:05.000000000 -0700") + " (" + humanize.Time(t) + ")"
}
