package loader

import (
	"bytes"
	"io"
	"io/ioutil"
	"os"

	"github.com/pkg/errors"

	"github.com/binspect/autodis/logflags"
	"github.com/binspect/autodis/models"
)

// StdinPath is the sentinel accepted anywhere a path is expected,
// meaning "read the image bytes from standard input".
const StdinPath = "-"

// ReadFile reads the raw bytes of path, or of stdin for the sentinel.
// A path that is not the sentinel and does not exist fails with the
// underlying not-found error; no fallback applies at this stage.
func ReadFile(path string) ([]byte, error) {
	if path == StdinPath {
		p, err := ioutil.ReadAll(os.Stdin)
		return p, errors.Wrap(err, "reading stdin")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(err, "no such file or directory: '%s'", path)
	}
	return ioutil.ReadFile(path)
}

// Load identifies the format by magic and constructs the matching
// loader. Readable bytes never fail to load: unrecognized magic and
// structured parses that fail both fall back to a byte-only raw image
// so every later command still has an image to operate against.
func Load(r io.ReaderAt) (models.Loader, error) {
	var l models.Loader
	var err error
	if MatchElf(r) {
		l, err = NewElfLoader(r)
	} else if MatchCoff(r) {
		l, err = NewCoffLoader(r)
	} else {
		return NewRawLoader(r)
	}
	if err != nil {
		logflags.LoaderLogger().WithError(err).Warn("unknown file format, falling back to raw bytes")
		return NewRawLoader(r)
	}
	return l, nil
}

// LoadFile reads path (or stdin) and dispatches on its magic.
func LoadFile(path string) (models.Loader, error) {
	p, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(bytes.NewReader(p))
}
