package segment

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taconotsandwich/meme-i-recalled-from-a-video/internal/domain/entity"
	"github.com/taconotsandwich/meme-i-recalled-from-a-video/internal/stt"
)

type fakeAudioExtractor struct {
	err   error
	calls int
}

func (f *fakeAudioExtractor) ExtractAudio(_ context.Context, _, audioPath string, _ float64) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(audioPath, []byte("riff"), 0644)
}

func TestSpeechSegmenterHappyPath(t *testing.T) {
	engine := &stt.StubEngine{Utterances: []stt.Utterance{
		{Start: 0.5, End: 2.5, Text: "  first   line "},
		{Start: 3.0, End: 5.0, Text: "second line"},
	}}
	audio := &fakeAudioExtractor{}
	seg := NewSpeechSegmenter(engine, audio, SpeechConfig{
		MinUtterance: 0.5,
		TempDir:      t.TempDir(),
	}, zap.NewNop())

	segments, err := seg.Segments(context.Background(), "talk.mp4")
	require.NoError(t, err)
	require.Len(t, segments, 2)

	assert.Equal(t, 1, audio.calls)
	assert.Equal(t, entity.SourceSpeech, segments[0].Kind)
	assert.Equal(t, "first line", segments[0].Caption)
	assert.Equal(t, 0.5, segments[0].Start)
	assert.Equal(t, 2.5, segments[0].End)
	assert.Equal(t, "second line", segments[1].Caption)
}

func TestSpeechSegmenterSilentVideo(t *testing.T) {
	seg := NewSpeechSegmenter(&stt.StubEngine{}, &fakeAudioExtractor{}, SpeechConfig{
		MinUtterance: 0.5,
		TempDir:      t.TempDir(),
	}, zap.NewNop())

	segments, err := seg.Segments(context.Background(), "silent.mp4")
	require.NoError(t, err)
	assert.Empty(t, segments)
}

func TestSpeechSegmenterAudioExtractionFails(t *testing.T) {
	audio := &fakeAudioExtractor{err: errors.New("no audio track")}
	seg := NewSpeechSegmenter(&stt.StubEngine{}, audio, SpeechConfig{TempDir: t.TempDir()}, zap.NewNop())

	_, err := seg.Segments(context.Background(), "broken.mp4")
	assert.Error(t, err)
}

func TestSpeechSegmenterTranscribeFails(t *testing.T) {
	engine := &stt.StubEngine{Err: errors.New("model crashed")}
	seg := NewSpeechSegmenter(engine, &fakeAudioExtractor{}, SpeechConfig{TempDir: t.TempDir()}, zap.NewNop())

	_, err := seg.Segments(context.Background(), "talk.mp4")
	assert.Error(t, err)
}

func TestFilterUtterances(t *testing.T) {
	tests := []struct {
		name         string
		utterances   []stt.Utterance
		minUtterance float64
		wantCaptions []string
	}{
		{
			name: "keeps distinct utterances",
			utterances: []stt.Utterance{
				{Start: 0, End: 2, Text: "hello there"},
				{Start: 2, End: 4, Text: "general kenobi"},
			},
			minUtterance: 0.5,
			wantCaptions: []string{"hello there", "general kenobi"},
		},
		{
			name: "drops zero and negative durations",
			utterances: []stt.Utterance{
				{Start: 1, End: 1, Text: "instant"},
				{Start: 3, End: 2, Text: "backwards"},
				{Start: 4, End: 6, Text: "fine"},
			},
			minUtterance: 0.5,
			wantCaptions: []string{"fine"},
		},
		{
			name: "drops repeated start times",
			utterances: []stt.Utterance{
				{Start: 0, End: 2, Text: "original"},
				{Start: 0, End: 3, Text: "overlapping rerun"},
			},
			minUtterance: 0.5,
			wantCaptions: []string{"original"},
		},
		{
			name: "drops short hallucinated repeats",
			utterances: []stt.Utterance{
				{Start: 0, End: 2, Text: "thanks"},
				{Start: 2, End: 3, Text: "thanks"},
				{Start: 3, End: 4, Text: "thanks"},
			},
			minUtterance: 0.5,
			wantCaptions: []string{"thanks"},
		},
		{
			name: "keeps long genuine repeats",
			utterances: []stt.Utterance{
				{Start: 0, End: 6, Text: "repeated chorus line"},
				{Start: 6, End: 12, Text: "repeated chorus line"},
			},
			minUtterance: 0.5,
			wantCaptions: []string{"repeated chorus line", "repeated chorus line"},
		},
		{
			name: "drops utterances below minimum duration",
			utterances: []stt.Utterance{
				{Start: 0, End: 0.2, Text: "uh"},
				{Start: 1, End: 3, Text: "actual sentence"},
			},
			minUtterance: 0.5,
			wantCaptions: []string{"actual sentence"},
		},
		{
			name:         "empty input",
			utterances:   nil,
			minUtterance: 0.5,
			wantCaptions: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segments := filterUtterances(tt.utterances, tt.minUtterance)
			captions := make([]string, 0, len(segments))
			for _, s := range segments {
				captions = append(captions, s.Caption)
			}
			assert.Equal(t, tt.wantCaptions, captions)
		})
	}
}
