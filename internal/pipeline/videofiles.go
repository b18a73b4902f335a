package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var videoExtensions = map[string]bool{
	".mp4": true, ".avi": true, ".mov": true, ".mkv": true,
	".wmv": true, ".flv": true, ".webm": true,
}

// FindVideos resolves an input path to the list of videos to process: the
// file itself, or every supported video directly inside a directory, sorted.
func FindVideos(inputPath string) ([]string, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, fmt.Errorf("input path %s: %w", inputPath, err)
	}

	if !info.IsDir() {
		if !videoExtensions[strings.ToLower(filepath.Ext(inputPath))] {
			return nil, fmt.Errorf("file %s is not a supported video format", inputPath)
		}
		return []string{inputPath}, nil
	}

	entries, err := os.ReadDir(inputPath)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", inputPath, err)
	}

	var videos []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if videoExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			videos = append(videos, filepath.Join(inputPath, entry.Name()))
		}
	}
	if len(videos) == 0 {
		return nil, fmt.Errorf("no video files found in directory %s", inputPath)
	}

	sort.Strings(videos)
	return videos, nil
}
