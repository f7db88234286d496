package sumstats

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
)

// Opener opens association files for sequential reading. Paths beginning with
// gs:// are read from Google Storage through Client, which may be nil when no
// such paths are used. All other paths are local; a leading ~/ is expanded.
// Compressed inputs are transparently decompressed.
type Opener struct {
	Client  *storage.Client
	Context context.Context
}

// DefaultOpener reads local files only.
var DefaultOpener = &Opener{}

func (o *Opener) ctx() context.Context {
	if o == nil || o.Context == nil {
		return context.Background()
	}

	return o.Context
}

// Open returns a reader over the decompressed contents of path.
func (o *Opener) Open(path string) (io.ReadCloser, error) {
	raw, err := o.openRaw(path)
	if err != nil {
		return nil, err
	}

	rc, _, err := MaybeDecompressReadCloser(raw)
	if err != nil {
		raw.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return rc, nil
}

// ModTime reports when path was last modified. The boolean is false if path
// does not exist.
func (o *Opener) ModTime(path string) (time.Time, bool, error) {
	if IsGoogleStoragePath(path) {
		handle, err := o.objectHandle(path)
		if err != nil {
			return time.Time{}, false, err
		}
		attrs, err := handle.Attrs(o.ctx())
		if errors.Is(err, storage.ErrObjectNotExist) {
			return time.Time{}, false, nil
		} else if err != nil {
			return time.Time{}, false, pfx.Err(fmt.Errorf("%s: %w", path, err))
		}
		return attrs.Updated, true, nil
	}

	fi, err := os.Stat(ExpandHome(path))
	if os.IsNotExist(err) {
		return time.Time{}, false, nil
	} else if err != nil {
		return time.Time{}, false, err
	}

	return fi.ModTime(), true, nil
}

func (o *Opener) openRaw(path string) (io.ReadCloser, error) {
	if !IsGoogleStoragePath(path) {
		f, err := os.Open(ExpandHome(path))
		if err != nil {
			return nil, err
		}
		return f, nil
	}

	handle, err := o.objectHandle(path)
	if err != nil {
		return nil, err
	}

	r, err := handle.NewReader(o.ctx())
	if err != nil {
		return nil, pfx.Err(fmt.Errorf("%s: %w", path, err))
	}

	return r, nil
}

func (o *Opener) objectHandle(path string) (*storage.ObjectHandle, error) {
	if o == nil || o.Client == nil {
		return nil, fmt.Errorf("%s: a Google Storage client is required to read gs:// paths", path)
	}

	// Detect the bucket and the path to the actual file
	pathParts := strings.SplitN(strings.TrimPrefix(path, "gs://"), "/", 2)
	if len(pathParts) != 2 {
		return nil, fmt.Errorf("Tried to split your google storage path into 2 parts, but got %d: %v", len(pathParts), pathParts)
	}

	return o.Client.Bucket(pathParts[0]).Object(pathParts[1]), nil
}

// IsGoogleStoragePath reports whether path names a Google Storage object.
func IsGoogleStoragePath(path string) bool {
	return strings.HasPrefix(path, "gs://")
}
