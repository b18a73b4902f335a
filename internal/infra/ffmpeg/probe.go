package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/taconotsandwich/meme-i-recalled-from-a-video/internal/domain/entity"
)

func (d *Decoder) probe(ctx context.Context, videoPath string) (entity.VideoInfo, error) {
	cmd := exec.CommandContext(ctx, d.ffprobeBin,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,avg_frame_rate",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1",
		videoPath,
	)
	output, err := cmd.Output()
	if err != nil {
		return entity.VideoInfo{}, fmt.Errorf("ffprobe: %w", err)
	}

	info := entity.VideoInfo{}
	for _, line := range strings.Split(strings.TrimSpace(string(output)), "\n") {
		key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
		if !ok {
			continue
		}
		switch key {
		case "duration":
			info.Duration, _ = strconv.ParseFloat(value, 64)
		case "width":
			info.Width, _ = strconv.Atoi(value)
		case "height":
			info.Height, _ = strconv.Atoi(value)
		case "avg_frame_rate":
			info.FPS = parseRate(value)
		}
	}

	if info.Duration <= 0 {
		return info, fmt.Errorf("ffprobe reported no duration for %s", videoPath)
	}
	return info, nil
}

// parseRate converts ffprobe's rational frame rate ("30000/1001") to a float.
func parseRate(value string) float64 {
	num, den, ok := strings.Cut(value, "/")
	if !ok {
		f, _ := strconv.ParseFloat(value, 64)
		return f
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}
