package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
)

// GrayFrames streams the video as downscaled 8-bit grayscale raw frames and
// calls fn once per frame with the pixel buffer. The buffer is reused between
// calls; fn must copy anything it wants to keep. Returning a non-nil error
// from fn stops the stream.
func (d *Decoder) GrayFrames(ctx context.Context, videoPath string, width, height int, maxDuration float64, fn func(index int, pixels []byte) error) error {
	args := []string{"-i", videoPath}
	if maxDuration > 0 {
		args = append(args, "-t", fmt.Sprintf("%.3f", maxDuration))
	}
	args = append(args,
		"-vf", fmt.Sprintf("scale=%d:%d", width, height),
		"-f", "rawvideo",
		"-pix_fmt", "gray",
		"-",
	)

	cmd := exec.CommandContext(ctx, d.ffmpegBin, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("ffmpeg stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	frameSize := width * height
	buf := make([]byte, frameSize)
	index := 0
	var fnErr error
	for {
		_, err := io.ReadFull(stdout, buf)
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			break
		}
		if err != nil {
			_ = cmd.Process.Kill()
			_ = cmd.Wait()
			return fmt.Errorf("read gray frame %d: %w", index, err)
		}
		if fnErr = fn(index, buf); fnErr != nil {
			_ = cmd.Process.Kill()
			_ = cmd.Wait()
			return fnErr
		}
		index++
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg gray stream: %w", err)
	}
	return nil
}
