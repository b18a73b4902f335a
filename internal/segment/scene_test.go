package segment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taconotsandwich/meme-i-recalled-from-a-video/internal/domain/entity"
)

// fakeGrayStreamer replays canned frames: each entry is the uniform pixel
// value of one frame.
type fakeGrayStreamer struct {
	fps    float64
	frames []byte
}

func (f *fakeGrayStreamer) Probe(context.Context, string) (entity.VideoInfo, error) {
	return entity.VideoInfo{Duration: float64(len(f.frames)) / f.fps, FPS: f.fps}, nil
}

func (f *fakeGrayStreamer) GrayFrames(_ context.Context, _ string, width, height int, _ float64, fn func(int, []byte) error) error {
	buf := make([]byte, width*height)
	for i, v := range f.frames {
		for j := range buf {
			buf[j] = v
		}
		if err := fn(i, buf); err != nil {
			return err
		}
	}
	return nil
}

func uniformFrames(value byte, n int) []byte {
	frames := make([]byte, n)
	for i := range frames {
		frames[i] = value
	}
	return frames
}

func TestSceneSegmenterDetectsCut(t *testing.T) {
	// 20 dark frames then 20 bright frames at 10 fps: one cut at frame 20.
	frames := append(uniformFrames(10, 20), uniformFrames(200, 20)...)
	video := &fakeGrayStreamer{fps: 10, frames: frames}

	seg := NewSceneSegmenter(video, SceneConfig{
		Threshold:         30,
		MinSceneLen:       5,
		KeyframesPerScene: 3,
	}, zap.NewNop())

	segments, err := seg.Segments(context.Background(), "test.mp4")
	require.NoError(t, err)
	require.Len(t, segments, 2)

	assert.Equal(t, 0.0, segments[0].Start)
	assert.Equal(t, 2.0, segments[0].End)
	assert.Equal(t, 2.0, segments[1].Start)
	assert.Equal(t, 4.0, segments[1].End)
	for _, s := range segments {
		assert.Equal(t, entity.SourceScene, s.Kind)
		assert.Empty(t, s.Caption)
		assert.Len(t, s.Keyframes, 3)
	}
}

func TestSceneSegmenterMinSceneLenSuppressesFlicker(t *testing.T) {
	// Alternating frames flip every frame; only cuts at least 10 frames apart
	// survive.
	frames := make([]byte, 40)
	for i := range frames {
		if i%2 == 1 {
			frames[i] = 255
		}
	}
	video := &fakeGrayStreamer{fps: 10, frames: frames}

	seg := NewSceneSegmenter(video, SceneConfig{
		Threshold:         30,
		MinSceneLen:       10,
		KeyframesPerScene: 1,
	}, zap.NewNop())

	segments, err := seg.Segments(context.Background(), "test.mp4")
	require.NoError(t, err)
	// Cuts land every 10 frames, so 40 frames split into 4 scenes.
	assert.Len(t, segments, 4)
}

func TestSceneSegmenterNoFramesIsEmptyResult(t *testing.T) {
	video := &fakeGrayStreamer{fps: 10}
	seg := NewSceneSegmenter(video, SceneConfig{Threshold: 30, MinSceneLen: 5, KeyframesPerScene: 3}, zap.NewNop())

	segments, err := seg.Segments(context.Background(), "empty.mp4")
	require.NoError(t, err)
	assert.Empty(t, segments)
}

func TestSceneSegmenterStaticVideoIsOneScene(t *testing.T) {
	video := &fakeGrayStreamer{fps: 25, frames: uniformFrames(128, 100)}
	seg := NewSceneSegmenter(video, SceneConfig{Threshold: 30, MinSceneLen: 15, KeyframesPerScene: 3}, zap.NewNop())

	segments, err := seg.Segments(context.Background(), "static.mp4")
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, 0.0, segments[0].Start)
	assert.Equal(t, 4.0, segments[0].End)
}

func TestMeanAbsDiff(t *testing.T) {
	assert.Equal(t, 0.0, meanAbsDiff([]byte{10, 20}, []byte{10, 20}))
	assert.Equal(t, 255.0, meanAbsDiff([]byte{0, 255}, []byte{255, 0}))
	assert.Equal(t, 5.0, meanAbsDiff([]byte{10, 10}, []byte{15, 5}))
	assert.Equal(t, 0.0, meanAbsDiff(nil, nil))
	assert.Equal(t, 0.0, meanAbsDiff([]byte{1}, []byte{1, 2}))
}

func TestSceneSpans(t *testing.T) {
	tests := []struct {
		name        string
		cuts        []int
		totalFrames int
		want        [][2]int
	}{
		{"no cuts", nil, 100, [][2]int{{0, 100}}},
		{"one cut", []int{40}, 100, [][2]int{{0, 40}, {40, 100}}},
		{"two cuts", []int{30, 60}, 100, [][2]int{{0, 30}, {30, 60}, {60, 100}}},
		{"cut at start ignored", []int{0}, 50, [][2]int{{0, 50}}},
		{"no frames", nil, 0, [][2]int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sceneSpans(tt.cuts, tt.totalFrames))
		})
	}
}

func TestSceneKeyframes(t *testing.T) {
	// Long scene: n evenly spaced frames.
	assert.Equal(t, []int{0, 10, 20}, sceneKeyframes(0, 30, 3))
	assert.Equal(t, []int{100, 110, 120}, sceneKeyframes(100, 130, 3))

	// Scene shorter than n: every frame.
	assert.Equal(t, []int{5, 6}, sceneKeyframes(5, 7, 3))

	// Degenerate spans.
	assert.Empty(t, sceneKeyframes(10, 10, 3))
	assert.Empty(t, sceneKeyframes(10, 5, 3))

	// Non-positive n falls back to a single frame.
	assert.Equal(t, []int{0}, sceneKeyframes(0, 30, 0))
}
