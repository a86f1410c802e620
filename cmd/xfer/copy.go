package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/time/rate"

	"github.com/bamsammich/xfer/internal/config"
	"github.com/bamsammich/xfer/internal/event"
	"github.com/bamsammich/xfer/internal/platform"
	"github.com/bamsammich/xfer/internal/stats"
	"github.com/bamsammich/xfer/internal/transfer"
	"github.com/bamsammich/xfer/internal/ui"
	"github.com/bamsammich/xfer/internal/verify"
)

// sizeFlag is a pflag.Value accepting human-readable byte counts such as
// "100M" or "1.5 GiB".
type sizeFlag struct {
	raw   string
	bytes int64
}

var _ pflag.Value = (*sizeFlag)(nil)

func (f *sizeFlag) String() string { return f.raw }
func (*sizeFlag) Type() string     { return "size" }

func (f *sizeFlag) Set(val string) error {
	n, err := config.ParseSize(val)
	if err != nil {
		return err
	}
	if n < 0 {
		return fmt.Errorf("negative size: %q", val)
	}
	f.raw, f.bytes = val, n
	return nil
}

type copyOptions struct {
	checksum   string
	bwLimit    sizeFlag
	verify     bool
	progress   bool
	noFadvise  bool
	noBuffered bool
}

func newCopyCmd(a *app) *cobra.Command {
	var o copyOptions
	cmd := &cobra.Command{
		Use:   "copy [flags] SRC DST",
		Short: "Copy a file in-kernel with copy_file_range(2) or sendfile(2)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := applyCopyDefaults(cmd, a.cfg.Copy, &o); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.runCopy(ctx, o, args[0], args[1])
		},
	}
	cmd.Flags().BoolVar(&o.verify, "verify", false, "verify checksums after copy")
	cmd.Flags().StringVar(&o.checksum, "checksum", "blake3", "checksum for --verify (blake3 or xxhash)")
	cmd.Flags().Var(&o.bwLimit, "bwlimit", "bandwidth limit (e.g. 100M, 1G)")
	cmd.Flags().BoolVar(&o.progress, "progress", true, "show progress while copying")
	cmd.Flags().BoolVar(&o.noFadvise, "no-fadvise", false, "skip the sequential access hint on the source")
	cmd.Flags().BoolVar(&o.noBuffered, "no-buffered", false, "fail instead of falling back to a read/write copy")
	return cmd
}

// applyCopyDefaults applies config file defaults for flags not explicitly set on the CLI.
func applyCopyDefaults(cmd *cobra.Command, defaults config.CopyConfig, o *copyOptions) error {
	if !cmd.Flags().Changed("verify") && defaults.Verify != nil {
		o.verify = *defaults.Verify
	}
	if !cmd.Flags().Changed("checksum") && defaults.Checksum != nil {
		o.checksum = *defaults.Checksum
	}
	if !cmd.Flags().Changed("progress") && defaults.Progress != nil {
		o.progress = *defaults.Progress
	}
	if !cmd.Flags().Changed("bwlimit") && defaults.BWLimit != nil {
		if err := o.bwLimit.Set(*defaults.BWLimit); err != nil {
			return fmt.Errorf("invalid bwlimit in config: %w", err)
		}
	}
	return nil
}

func (a *app) runCopy(ctx context.Context, o copyOptions, srcPath, dstPath string) error {
	alg, err := verify.ParseAlgorithm(o.checksum)
	if err != nil {
		return fmt.Errorf("invalid --checksum: %w", err)
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("source %s is a directory", srcPath)
	}

	dst, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("open destination: %w", err)
	}
	defer dst.Close()

	//nolint:gosec // G115: descriptors fit in int
	srcFd, dstFd := int(src.Fd()), int(dst.Fd())

	id := uuid.New().String()
	logger := a.logger.With("transfer", id)

	if !o.noFadvise {
		if err := platform.Fadvise(srcFd, 0, 0, platform.AdviceSequential); err != nil {
			logger.Debug("fadvise", "error", err)
		}
	}
	if info.Mode().IsRegular() {
		platform.Preallocate(dstFd, info.Size())
	}

	cancel, release := transfer.CancelOnDone(ctx)
	defer release()

	collector := stats.NewCollector()
	if info.Mode().IsRegular() {
		collector.SetTotal(info.Size())
	}

	var limiter *rate.Limiter
	if o.bwLimit.bytes > 0 {
		limiter = transfer.NewBWLimiter(o.bwLimit.bytes)
	}

	events := make(chan event.Event, 256)
	presenter := ui.NewPresenter(ui.Config{
		Writer:     os.Stdout,
		ErrWriter:  os.Stderr,
		Stats:      collector,
		Label:      dstPath,
		IsTTY:      ui.IsTerminal(os.Stderr),
		Quiet:      a.quiet,
		NoProgress: !o.progress,
	})

	var presenterErr error
	var presenterWg sync.WaitGroup
	presenterWg.Add(1)
	go func() {
		defer presenterWg.Done()
		presenterErr = presenter.Run(teeEvents(logger, events))
	}()

	logger.Debug("starting copy", "src", srcPath, "dst", dstPath, "size", info.Size(), "caps", a.caps)

	eng := transfer.New(a.caps, transfer.Options{
		Logger:  logger,
		Stats:   collector,
		Events:  events,
		Limiter: limiter,
	})
	res := eng.Copy(transfer.Request{Dst: dstFd, Src: srcFd, Cancel: cancel})

	if res.Outcome.Unsupported() && !o.noBuffered {
		logger.Info("no in-kernel copy path, using buffered copy", "outcome", res.Outcome, "errno", res.Err)
		res = copyBuffered(dstFd, srcFd, cancel, collector, events, res.BytesWritten)
	}

	var mismatch bool
	if res.Outcome == transfer.Success && o.verify {
		mismatch, err = verifyCopy(logger, events, srcPath, dstPath, alg, info.Mode().IsRegular())
	}

	close(events)
	presenterWg.Wait()
	if presenterErr != nil {
		fmt.Fprintf(os.Stderr, "presenter: %v\n", presenterErr)
	}
	if !a.quiet {
		if summary := presenter.Summary(); summary != "" {
			fmt.Fprintln(os.Stderr, summary)
		}
	}
	logger.Debug("copy finished", "outcome", res.Outcome, "method", res.Method, "bytes", res.BytesWritten,
		"stats", collector.Snapshot())

	switch {
	case err != nil:
		return err
	case mismatch:
		return &exitError{code: 1}
	case res.Outcome == transfer.Success:
		return nil
	case res.Outcome == transfer.Cancelled:
		logger.Warn("copy cancelled", "bytes", res.BytesWritten)
		return &exitError{code: 130}
	}
	return fmt.Errorf("copy %s to %s: %s: %w", srcPath, dstPath, res.Outcome, res.Err)
}

// copyBuffered finishes a copy the kernel could not do in place, picking up
// at the offsets the engine left behind, and reports it like the engine does.
func copyBuffered(
	dst, src int,
	cancel *transfer.CancelFlag,
	collector *stats.Collector,
	events chan<- event.Event,
	already int64,
) transfer.Result {
	// The engine already counted this transfer as unsupported; the buffered
	// copy decides its final outcome instead.
	collector.AddTransfersUnsupported(-1)
	collector.AddFallbacks(1)
	events <- event.Event{Type: event.TierStarted, Method: transfer.ReadWrite.String(), Total: already}

	res := transfer.CopyBuffered(dst, src, cancel, collector)
	res.BytesWritten += already

	typ := event.TransferFailed
	switch res.Outcome {
	case transfer.Success:
		collector.AddTransfersSucceeded(1)
		typ = event.TransferCompleted
	case transfer.Cancelled:
		collector.AddTransfersCancelled(1)
		typ = event.TransferCancelled
	case transfer.WouldBlock:
		collector.AddTransfersWouldBlock(1)
		typ = event.TransferWouldBlock
	default:
		collector.AddTransfersFailed(1)
	}
	events <- event.Event{Type: typ, Method: res.Method.String(), Total: res.BytesWritten, Error: res.Err}
	return res
}

// verifyCopy compares source and destination digests. Non-regular sources
// cannot be re-read, so they are skipped.
func verifyCopy(
	logger *slog.Logger,
	events chan<- event.Event,
	srcPath, dstPath string,
	alg verify.Algorithm,
	regular bool,
) (bool, error) {
	if !regular {
		logger.Warn("skipping verification of non-regular source", "src", srcPath)
		return false, nil
	}

	events <- event.Event{Type: event.VerifyStarted}
	res, err := verify.Files(srcPath, dstPath, alg)
	if err != nil {
		events <- event.Event{Type: event.VerifyFailed, Error: err}
		return false, fmt.Errorf("verify: %w", err)
	}
	if !res.Match() {
		logger.Error("checksum mismatch", "algorithm", alg, "src", res.SrcHash, "dst", res.DstHash)
		events <- event.Event{Type: event.VerifyFailed, Error: errors.New("checksum mismatch")}
		return true, nil
	}
	logger.Debug("checksum ok", "algorithm", alg, "digest", res.SrcHash)
	events <- event.Event{Type: event.VerifyOK}
	return false, nil
}

// teeEvents writes each event except per-chunk progress to logger as an
// xfer.event record before forwarding it to the presenter.
func teeEvents(logger *slog.Logger, in <-chan event.Event) <-chan event.Event {
	out := make(chan event.Event, cap(in))
	go func() {
		defer close(out)
		for ev := range in {
			if ev.Type != event.ChunkCopied {
				logEvent(logger, ev)
			}
			out <- ev
		}
	}()
	return out
}

func logEvent(logger *slog.Logger, ev event.Event) {
	attrs := []slog.Attr{
		slog.String("type", ev.Type.String()),
		slog.Int64("total", ev.Total),
	}
	if ev.Method != "" {
		attrs = append(attrs, slog.String("method", ev.Method))
	}
	if ev.Size > 0 {
		attrs = append(attrs, slog.Int64("size", ev.Size))
	}
	if ev.Error != nil {
		attrs = append(attrs, slog.String("error", ev.Error.Error()))
	}
	logger.LogAttrs(context.Background(), slog.LevelDebug, "xfer.event", attrs...)
}
