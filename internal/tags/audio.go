package tags

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/llehouerou/go-m4a"
	"github.com/llehouerou/go-mp3"
	"go.senan.xyz/taglib"
)

// ReadAudioInfo reads audio stream properties (duration, format, sample rate).
// Container-specific readers are tried first; TagLib covers WAV and any file
// those readers reject.
func ReadAudioInfo(path string) (*AudioInfo, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !IsMusicFile(path) {
		return nil, fmt.Errorf("unsupported format: %s", ext)
	}

	var (
		info *AudioInfo
		err  error
	)
	switch ext {
	case ExtMP3:
		info, err = readMP3AudioInfo(path)
	case ExtM4A, ExtMP4, ExtM4V:
		info, err = readM4AAudioInfo(path)
	case ExtWAV:
		err = errors.New("wav: no native reader")
	}
	if err == nil {
		return info, nil
	}

	return readTaglibAudioInfo(path, formatFromExt(path))
}

// readMP3AudioInfo extracts audio info from an MP3 file.
func readMP3AudioInfo(path string) (*AudioInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, err
	}

	sampleRate := decoder.SampleRate()
	if sampleRate == 0 {
		return nil, errors.New("mp3: invalid sample rate")
	}

	sampleCount := max(decoder.SampleCount(), 0)

	return &AudioInfo{
		Duration:   time.Duration(float64(sampleCount) / float64(sampleRate) * float64(time.Second)),
		Format:     "MP3",
		SampleRate: sampleRate,
	}, nil
}

// readM4AAudioInfo extracts audio info from an MP4 container.
func readM4AAudioInfo(path string) (*AudioInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	container, err := m4a.Open(f)
	if err != nil {
		return nil, err
	}

	format := "M4A"
	switch container.Codec() {
	case m4a.CodecAAC:
		format = "AAC"
	case m4a.CodecALAC:
		format = "ALAC"
	case m4a.CodecUnknown:
	}

	return &AudioInfo{
		Duration:   container.Duration(),
		Format:     format,
		SampleRate: int(container.SampleRate()),
	}, nil
}

func readTaglibAudioInfo(path, format string) (*AudioInfo, error) {
	props, err := taglib.ReadProperties(path)
	if err != nil {
		return nil, err
	}
	return &AudioInfo{
		Duration:   props.Length,
		Format:     format,
		SampleRate: int(props.SampleRate),
	}, nil
}
