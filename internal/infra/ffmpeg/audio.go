package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"

	"go.uber.org/zap"
)

// ExtractAudio writes the first audio stream of the video as 16 kHz mono WAV,
// the format the speech engines expect. A permissive fallback command handles
// containers too corrupted for strict error detection.
func (d *Decoder) ExtractAudio(ctx context.Context, videoPath, audioPath string, maxDuration float64) error {
	args := []string{"-y", "-err_detect", "ignore_err", "-i", videoPath, "-map", "0:a:0", "-vn"}
	if maxDuration > 0 {
		args = append(args, "-t", fmt.Sprintf("%.3f", maxDuration))
	}
	args = append(args,
		"-acodec", "pcm_s16le",
		"-ar", "16000", "-ac", "1", "-af", "aresample=async=1",
		audioPath,
	)

	cmd := exec.CommandContext(ctx, d.ffmpegBin, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		d.logger.Warn("strict audio extraction failed, trying permissive fallback",
			zap.Error(err), zap.ByteString("output", tail(output, 512)),
		)
		return d.extractAudioPermissive(ctx, videoPath, audioPath, maxDuration)
	}
	return nil
}

func (d *Decoder) extractAudioPermissive(ctx context.Context, videoPath, audioPath string, maxDuration float64) error {
	args := []string{"-y", "-i", videoPath, "-vn"}
	if maxDuration > 0 {
		args = append(args, "-t", fmt.Sprintf("%.3f", maxDuration))
	}
	args = append(args, "-ar", "16000", "-ac", "1", audioPath)

	cmd := exec.CommandContext(ctx, d.ffmpegBin, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("extract audio: %w, output: %s", err, tail(output, 512))
	}
	return nil
}

func tail(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[len(b)-n:]
}
