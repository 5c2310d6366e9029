package logwatcher

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/hpcloud/tail"
)

// Stream tails the service log file and prints each new line until ctx is
// cancelled. It is best effort: the caller runs it in the background while
// waiting on the service process.
func Stream(ctx context.Context, logPath string) error {
	t, err := tail.TailFile(logPath, tail.Config{
		Follow:   true,
		ReOpen:   true,
		Location: &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd},
		Logger:   tail.DiscardingLogger,
	})
	if err != nil {
		return err
	}
	defer t.Stop()

	for {
		select {
		case line := <-t.Lines:
			if line == nil {
				return nil
			}
			if line.Err != nil {
				return fmt.Errorf("error reading log file: %w", line.Err)
			}
			fmt.Println(color.HiBlackString("  %s", line.Text))
		case <-ctx.Done():
			return nil
		}
	}
}
