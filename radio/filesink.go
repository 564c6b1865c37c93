package radio

import (
	"encoding/binary"
	"os"

	"github.com/charmbracelet/log"
)

// FileSink writes the same interleaved CS16 stream a radio would see to
// a file, little-endian, I then Q per sample. Useful for inspecting the
// waveform offline or replaying it through a pipe.
type FileSink struct {
	path string
	f    *os.File
}

func NewFileSink(path string) (*FileSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	log.Infof("Writing CS16 samples to %s", path)
	return &FileSink{path: path, f: f}, nil
}

func (s *FileSink) Write(iq []int16, numSamples uint) (uint, error) {
	if err := binary.Write(s.f, binary.LittleEndian, iq[:2*numSamples]); err != nil {
		return 0, err
	}
	return numSamples, nil
}

func (s *FileSink) Mute(numSamples uint) error {
	_, err := s.Write(make([]int16, 2*numSamples), numSamples)
	return err
}

func (s *FileSink) Close() {
	if err := s.f.Close(); err != nil {
		log.Errorf("Could not close %s: %v", s.path, err)
	}
}
